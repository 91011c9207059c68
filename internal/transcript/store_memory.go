package transcript

import (
	"time"

	"github.com/divyampandey/pixel-llm-server-go/internal/llm"
)

func (s *Store) getHistoryMemory(visitorID string) []llm.HistoryEntry {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneExpiredLocked(now)

	history := s.history[visitorID]
	if len(history) == 0 {
		return nil
	}
	return append([]llm.HistoryEntry(nil), history...)
}

func (s *Store) appendHistoryMemory(visitorID string, entries ...llm.HistoryEntry) error {
	now := time.Now()
	expiresAt := s.computeExpiry(now)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneExpiredLocked(now)

	existing := append(s.history[visitorID], entries...)
	maxPairs := s.cfg.Transcript.HistoryMaxPairs
	if maxPairs > 0 {
		maxEntries := maxPairs * 2
		if len(existing) > maxEntries {
			existing = existing[len(existing)-maxEntries:]
		}
	}

	s.history[visitorID] = existing
	if !expiresAt.IsZero() {
		s.historyExpireAt[visitorID] = expiresAt
	} else {
		delete(s.historyExpireAt, visitorID)
	}
	return nil
}

func (s *Store) deleteHistoryMemory(visitorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.history, visitorID)
	delete(s.historyExpireAt, visitorID)
	return nil
}

func (s *Store) visitorCountMemory() int {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneExpiredLocked(now)
	return len(s.history)
}

func (s *Store) computeExpiry(now time.Time) time.Time {
	ttl := s.ttl()
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}

// pruneExpiredLocked drops expired transcripts. Caller holds the lock.
func (s *Store) pruneExpiredLocked(now time.Time) {
	for visitorID, expiresAt := range s.historyExpireAt {
		if expiresAt.IsZero() || now.Before(expiresAt) {
			continue
		}
		delete(s.historyExpireAt, visitorID)
		delete(s.history, visitorID)
	}
}
