package chatlog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/divyampandey/pixel-llm-server-go/internal/animation"
	"github.com/divyampandey/pixel-llm-server-go/internal/config"
	"github.com/divyampandey/pixel-llm-server-go/internal/llm"
)

// Recorder buffers chat increments off the request path and flushes
// them to the repository on an interval. Nil-safe when logging is
// disabled: every method is a no-op on a nil receiver.
type Recorder struct {
	repo          *Repository
	logger        *slog.Logger
	flushInterval time.Duration
	flushTimeout  time.Duration

	mu      sync.Mutex
	pending Delta

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewRecorder starts the flush loop. Returns nil when chat logging is
// disabled.
func NewRecorder(cfg *config.Config, repo *Repository, logger *slog.Logger) *Recorder {
	if cfg == nil || !cfg.ChatLog.Enabled || repo == nil {
		return nil
	}

	recorder := &Recorder{
		repo:          repo,
		logger:        logger,
		flushInterval: time.Duration(cfg.ChatLog.FlushIntervalSeconds) * time.Second,
		flushTimeout:  time.Duration(cfg.ChatLog.FlushTimeoutSeconds) * time.Second,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
	go recorder.loop()

	if logger != nil {
		logger.Info(
			"chatlog_recorder_started",
			"flush_interval_seconds", cfg.ChatLog.FlushIntervalSeconds,
			"flush_timeout_seconds", cfg.ChatLog.FlushTimeoutSeconds,
		)
	}
	return recorder
}

// Record buffers one served chat.
func (r *Recorder) Record(tag animation.Tag, usage llm.Usage) {
	if r == nil {
		return
	}

	r.mu.Lock()
	r.pending.add(Delta{
		Chats:        1,
		InputTokens:  int64(usage.InputTokens),
		OutputTokens: int64(usage.OutputTokens),
		Tags:         map[animation.Tag]int64{tag: 1},
	})
	r.mu.Unlock()
}

// Close stops the flush loop after a final flush.
func (r *Recorder) Close() {
	if r == nil {
		return
	}
	r.stopOnce.Do(func() {
		close(r.stopCh)
	})
	<-r.doneCh
}

func (r *Recorder) loop() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.flush()
		case <-r.stopCh:
			r.flush()
			return
		}
	}
}

func (r *Recorder) flush() {
	r.mu.Lock()
	delta := r.pending
	r.pending = Delta{}
	r.mu.Unlock()

	if delta.empty() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.flushTimeout)
	defer cancel()

	if err := r.repo.RecordDelta(ctx, delta, time.Time{}); err != nil {
		if r.logger != nil {
			r.logger.Warn("chatlog_flush_failed", "err", err, "chats", delta.Chats)
		}
		// Re-queue so the next flush retries the failed delta.
		r.mu.Lock()
		delta.add(r.pending)
		r.pending = delta
		r.mu.Unlock()
	}
}
