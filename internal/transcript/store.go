package transcript

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/valkey-io/valkey-go"

	"github.com/divyampandey/pixel-llm-server-go/internal/config"
	"github.com/divyampandey/pixel-llm-server-go/internal/llm"
)

// ErrStoreDisabled is returned when the transcript store is off.
var ErrStoreDisabled = errors.New("transcript store disabled")

type storeBackend int

const (
	storeBackendMemory storeBackend = iota
	storeBackendValkey
)

// Store keeps recent question/answer exchanges per visitor so
// follow-up questions carry context. Valkey-backed when configured,
// in-memory otherwise.
type Store struct {
	client  valkey.Client
	cfg     *config.Config
	enabled bool
	backend storeBackend

	mu              sync.Mutex
	history         map[string][]llm.HistoryEntry
	historyExpireAt map[string]time.Time
}

// NewStore creates the transcript store.
func NewStore(cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	if !cfg.Transcript.Enabled {
		if cfg.Transcript.Required {
			return nil, errors.New("transcript store required but disabled")
		}
		return newMemoryStore(cfg), nil
	}

	if strings.TrimSpace(cfg.Transcript.URL) == "" {
		if cfg.Transcript.Required {
			return nil, errors.New("transcript store required but no url configured")
		}
		return newMemoryStore(cfg), nil
	}

	conn, err := parseStoreURL(cfg.Transcript.URL)
	if err != nil {
		return nil, fmt.Errorf("parse transcript store url: %w", err)
	}

	var tlsConfig *tls.Config
	if conn.useTLS {
		host, _, splitErr := net.SplitHostPort(conn.addr)
		if splitErr != nil {
			return nil, fmt.Errorf("parse transcript store addr: %w", splitErr)
		}
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12, ServerName: host}
	}

	client, err := valkey.NewClient(valkey.ClientOption{
		TLSConfig:    tlsConfig,
		Username:     conn.username,
		Password:     conn.password,
		InitAddress:  []string{conn.addr},
		SelectDB:     conn.selectDB,
		DisableCache: cfg.Transcript.DisableCache,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to valkey: %w", err)
	}

	return &Store{
		client:  client,
		cfg:     cfg,
		enabled: true,
		backend: storeBackendValkey,
	}, nil
}

func newMemoryStore(cfg *config.Config) *Store {
	return &Store{
		cfg:             cfg,
		enabled:         true,
		backend:         storeBackendMemory,
		history:         make(map[string][]llm.HistoryEntry),
		historyExpireAt: make(map[string]time.Time),
	}
}

// IsEnabled reports whether the store accepts transcripts.
func (s *Store) IsEnabled() bool {
	return s.enabled
}

// Backend names the active backend.
func (s *Store) Backend() string {
	if s.backend == storeBackendValkey {
		return "valkey"
	}
	return "memory"
}

// Close shuts down the Valkey connection.
func (s *Store) Close() {
	if s == nil {
		return
	}
	if s.backend == storeBackendValkey && s.client != nil {
		s.client.Close()
	}
}

func (s *Store) historyKey(visitorID string) string {
	return fmt.Sprintf("transcript:%s:history", visitorID)
}

func (s *Store) ttl() time.Duration {
	return time.Duration(s.cfg.Transcript.TTLMinutes) * time.Minute
}

// GetHistory returns the retained exchanges for a visitor, oldest
// first. Corrupt entries are skipped.
func (s *Store) GetHistory(ctx context.Context, visitorID string) ([]llm.HistoryEntry, error) {
	if !s.enabled {
		return nil, ErrStoreDisabled
	}
	if s.backend == storeBackendMemory {
		return s.getHistoryMemory(visitorID), nil
	}

	cmd := s.client.B().Lrange().Key(s.historyKey(visitorID)).Start(0).Stop(-1).Build()
	results, err := s.client.Do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("get transcript: %w", err)
	}

	history := make([]llm.HistoryEntry, 0, len(results))
	for _, item := range results {
		entry, err := decodeEntry([]byte(item))
		if err != nil {
			continue
		}
		history = append(history, entry)
	}
	return history, nil
}

// AppendExchange records one question/answer pair. RPUSH, TTL refresh
// and trim run as a single DoMulti batch.
func (s *Store) AppendExchange(ctx context.Context, visitorID, question, answer string) error {
	if !s.enabled {
		return ErrStoreDisabled
	}

	entries := []llm.HistoryEntry{
		{Role: "user", Content: question},
		{Role: "assistant", Content: answer},
	}
	if s.backend == storeBackendMemory {
		return s.appendHistoryMemory(visitorID, entries...)
	}

	historyKey := s.historyKey(visitorID)
	elements := make([]string, 0, len(entries))
	for _, entry := range entries {
		data, err := s.encodeEntry(entry)
		if err != nil {
			return fmt.Errorf("encode transcript entry: %w", err)
		}
		elements = append(elements, string(data))
	}

	cmds := make([]valkey.Completed, 0, 3)
	cmds = append(cmds, s.client.B().Rpush().Key(historyKey).Element(elements...).Build())
	cmds = append(cmds, s.client.B().Expire().Key(historyKey).Seconds(int64(s.ttl().Seconds())).Build())
	maxPairs := s.cfg.Transcript.HistoryMaxPairs
	if maxPairs > 0 {
		cmds = append(cmds, s.client.B().Ltrim().Key(historyKey).Start(int64(-maxPairs*2)).Stop(-1).Build())
	}

	results := s.client.DoMulti(ctx, cmds...)
	if err := results[0].Error(); err != nil {
		return fmt.Errorf("append transcript: %w", err)
	}
	return nil
}

// Delete removes a visitor's transcript.
func (s *Store) Delete(ctx context.Context, visitorID string) error {
	if !s.enabled {
		return ErrStoreDisabled
	}
	if s.backend == storeBackendMemory {
		return s.deleteHistoryMemory(visitorID)
	}

	cmd := s.client.B().Del().Key(s.historyKey(visitorID)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil && !valkey.IsValkeyNil(err) {
		return fmt.Errorf("delete transcript: %w", err)
	}
	return nil
}

// VisitorCount approximates how many visitors have live transcripts.
// SCAN based so it never blocks the server.
func (s *Store) VisitorCount(ctx context.Context) (int, error) {
	if !s.enabled {
		return 0, nil
	}
	if s.backend == storeBackendMemory {
		return s.visitorCountMemory(), nil
	}

	var count int
	var cursor uint64
	for {
		cmd := s.client.B().Scan().Cursor(cursor).Match("transcript:*:history").Count(100).Build()
		result, err := s.client.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return 0, fmt.Errorf("scan transcripts: %w", err)
		}
		count += len(result.Elements)
		cursor = result.Cursor
		if cursor == 0 {
			break
		}
	}
	return count, nil
}

// Ping verifies the Valkey connection.
func (s *Store) Ping(ctx context.Context) error {
	if !s.enabled {
		return ErrStoreDisabled
	}
	if s.backend == storeBackendMemory {
		return nil
	}

	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping valkey: %w", err)
	}
	return nil
}

// encodeEntry serializes one entry, zstd-compressing long ones when
// compression is on. Compressed payloads are recognized on read by
// the zstd frame magic.
func (s *Store) encodeEntry(entry llm.HistoryEntry) ([]byte, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}
	if !s.cfg.Transcript.Compress || len(data) < compressMinBytes {
		return data, nil
	}
	return compressZstd(data)
}

func decodeEntry(data []byte) (llm.HistoryEntry, error) {
	if isZstdFrame(data) {
		decoded, err := decompressZstd(data)
		if err != nil {
			return llm.HistoryEntry{}, err
		}
		data = decoded
	}

	var entry llm.HistoryEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return llm.HistoryEntry{}, err
	}
	return entry, nil
}
