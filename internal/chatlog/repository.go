package chatlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/divyampandey/pixel-llm-server-go/internal/animation"
	"github.com/divyampandey/pixel-llm-server-go/internal/config"
)

// Repository persists daily chat aggregates to Postgres. The
// connection opens lazily on first use.
type Repository struct {
	cfg    *config.Config
	logger *slog.Logger
	mu     sync.Mutex
	db     *gorm.DB
	sqlDB  *sql.DB
}

// NewRepository creates the chat stats repository.
func NewRepository(cfg *config.Config, logger *slog.Logger) *Repository {
	return &Repository{
		cfg:    cfg,
		logger: logger,
	}
}

// RecordDelta accumulates a pending delta into the row for the given
// date (today when zero) with an upsert.
func (r *Repository) RecordDelta(ctx context.Context, delta Delta, chatDate time.Time) error {
	if delta.empty() {
		return nil
	}

	db, err := r.getDB(ctx)
	if err != nil {
		return err
	}

	targetDate := chatDate
	if targetDate.IsZero() {
		targetDate = todayDate()
	}

	row := ChatStat{
		ChatDate:     targetDate,
		Chats:        delta.Chats,
		InputTokens:  delta.InputTokens,
		OutputTokens: delta.OutputTokens,
		Punches:      delta.Tags[animation.TagPunch],
		Nos:          delta.Tags[animation.TagNo],
		Jumps:        delta.Tags[animation.TagJump],
		Waves:        delta.Tags[animation.TagWave],
		ThumbsUps:    delta.Tags[animation.TagThumbsUp],
		Yeses:        delta.Tags[animation.TagYes],
		Version:      0,
	}

	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "chat_date"}},
		DoUpdates: clause.Assignments(map[string]any{
			"chats":         gorm.Expr("chat_stats.chats + EXCLUDED.chats"),
			"input_tokens":  gorm.Expr("chat_stats.input_tokens + EXCLUDED.input_tokens"),
			"output_tokens": gorm.Expr("chat_stats.output_tokens + EXCLUDED.output_tokens"),
			"punches":       gorm.Expr("chat_stats.punches + EXCLUDED.punches"),
			"nos":           gorm.Expr("chat_stats.nos + EXCLUDED.nos"),
			"jumps":         gorm.Expr("chat_stats.jumps + EXCLUDED.jumps"),
			"waves":         gorm.Expr("chat_stats.waves + EXCLUDED.waves"),
			"thumbs_ups":    gorm.Expr("chat_stats.thumbs_ups + EXCLUDED.thumbs_ups"),
			"yeses":         gorm.Expr("chat_stats.yeses + EXCLUDED.yeses"),
			"version":       gorm.Expr("chat_stats.version + 1"),
		}),
	}).Create(&row).Error
}

// GetDailyStat returns one day's aggregate, nil when the day has no
// recorded chats.
func (r *Repository) GetDailyStat(ctx context.Context, chatDate time.Time) (*DailyStat, error) {
	db, err := r.getDB(ctx)
	if err != nil {
		return nil, err
	}

	targetDate := chatDate
	if targetDate.IsZero() {
		targetDate = todayDate()
	}

	var row ChatStat
	result := db.WithContext(ctx).Where("chat_date = ?", targetDate).First(&row)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}

	daily := statToDaily(row)
	return &daily, nil
}

// GetRecentStats returns the last N days of aggregates, newest first.
func (r *Repository) GetRecentStats(ctx context.Context, days int) ([]DailyStat, error) {
	db, err := r.getDB(ctx)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 7
	}

	var rows []ChatStat
	if err := db.WithContext(ctx).Order("chat_date desc").Limit(days).Find(&rows).Error; err != nil {
		return nil, err
	}

	stats := make([]DailyStat, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, statToDaily(row))
	}
	return stats, nil
}

// Ping verifies the DB connection.
func (r *Repository) Ping(ctx context.Context) error {
	db, err := r.getDB(ctx)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close shuts down the DB connection.
func (r *Repository) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sqlDB == nil {
		return
	}
	_ = r.sqlDB.Close()
	r.sqlDB = nil
	r.db = nil
}

func (r *Repository) getDB(ctx context.Context) (*gorm.DB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db != nil {
		return r.db, nil
	}
	if r.cfg == nil {
		return nil, errors.New("chatlog config is nil")
	}

	hostUsed := r.cfg.ChatLog.Host
	dsn := r.cfg.ChatLog.DSN()
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	db, err := gorm.Open(postgres.Open(dsn), gormCfg)
	if err != nil && shouldFallbackToLocalhost(err, r.cfg.ChatLog.Host) {
		fallback := r.cfg.ChatLog
		fallback.Host = "127.0.0.1"
		db, err = gorm.Open(postgres.Open(fallback.DSN()), gormCfg)
		if err == nil {
			hostUsed = fallback.Host
			if r.logger != nil {
				r.logger.Warn(
					"chatlog_db_host_fallback",
					"configured_host", r.cfg.ChatLog.Host,
					"effective_host", hostUsed,
				)
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open chatlog db: %w", err)
	}

	if schemaErr := ensureSchema(db); schemaErr != nil {
		return nil, fmt.Errorf("prepare chatlog db: %w", schemaErr)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get chatlog db handle: %w", err)
	}

	sqlDB.SetMaxIdleConns(r.cfg.ChatLog.MinPool)
	sqlDB.SetMaxOpenConns(r.cfg.ChatLog.MaxPool)
	if r.cfg.ChatLog.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(r.cfg.ChatLog.ConnMaxLifetimeMinutes) * time.Minute)
	}
	if r.cfg.ChatLog.ConnMaxIdleTimeMinutes > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(r.cfg.ChatLog.ConnMaxIdleTimeMinutes) * time.Minute)
	}

	if r.logger != nil {
		r.logger.Info("chatlog_db_connected", "host", hostUsed, "name", r.cfg.ChatLog.Name)
	}

	r.db = db
	r.sqlDB = sqlDB
	return db, nil
}

func ensureSchema(db *gorm.DB) error {
	if db == nil {
		return errors.New("db is nil")
	}

	if err := db.Exec(`
			CREATE TABLE IF NOT EXISTS chat_stats (
				id BIGSERIAL PRIMARY KEY,
				chat_date DATE NOT NULL,
				chats BIGINT NOT NULL DEFAULT 0,
				input_tokens BIGINT NOT NULL DEFAULT 0,
				output_tokens BIGINT NOT NULL DEFAULT 0,
				punches BIGINT NOT NULL DEFAULT 0,
				nos BIGINT NOT NULL DEFAULT 0,
				jumps BIGINT NOT NULL DEFAULT 0,
				waves BIGINT NOT NULL DEFAULT 0,
				thumbs_ups BIGINT NOT NULL DEFAULT 0,
				yeses BIGINT NOT NULL DEFAULT 0,
				version BIGINT NOT NULL DEFAULT 0
			)
		`).Error; err != nil {
		return fmt.Errorf("create chat_stats table: %w", err)
	}

	if err := db.Exec(`
			CREATE UNIQUE INDEX IF NOT EXISTS idx_chat_stats_chat_date
			ON chat_stats (chat_date)
		`).Error; err != nil {
		return fmt.Errorf("create chat_stats chat_date unique index: %w", err)
	}

	return nil
}

func todayDate() time.Time {
	now := time.Now().In(time.Local)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func shouldFallbackToLocalhost(err error, host string) bool {
	if err == nil {
		return false
	}
	if host == "" || host == "127.0.0.1" || strings.EqualFold(host, "localhost") {
		return false
	}
	if !strings.EqualFold(host, "postgres") {
		return false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return strings.EqualFold(dnsErr.Name, host)
	}

	lower := strings.ToLower(err.Error())
	hostLower := strings.ToLower(host)
	if strings.Contains(lower, "lookup "+hostLower) && strings.Contains(lower, "no such host") {
		return true
	}
	return strings.Contains(lower, "no such host") && strings.Contains(lower, hostLower)
}
