package config

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/joho/godotenv"
)

var (
	configOnce  sync.Once
	configValue *Config
)

// Load reads configuration from the environment (and .env, if present).
func Load() *Config {
	configOnce.Do(func() {
		_ = godotenv.Load()
		configValue = buildConfig()
	})
	return configValue
}

// ProvideConfig loads and validates the configuration.
func ProvideConfig() (*Config, error) {
	cfg := Load()
	if cfg == nil {
		return nil, errors.New("config not initialized")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Persona.SentenceCap <= 0 {
		return fmt.Errorf("persona sentence cap must be positive: %d", c.Persona.SentenceCap)
	}
	if c.Persona.FallbackGreeting == "" {
		return errors.New("persona fallback greeting must not be empty")
	}
	if c.Persona.DefaultEmoji == "" {
		return errors.New("persona default emoji must not be empty")
	}
	if c.Gemini.Model == "" {
		return errors.New("gemini model must not be empty")
	}
	return nil
}

// LogEnvStatus logs a masked summary of the effective environment.
func LogEnvStatus(cfg *Config, logger *slog.Logger) {
	if logger == nil || cfg == nil {
		return
	}

	envFilePresent := fileExists(".env")
	primaryKey := maskSecret(cfg.Gemini.PrimaryKey())
	logger.Debug(
		"env_status",
		"env_file", envFilePresent,
		"gemini_keys", len(cfg.Gemini.APIKeys),
		"primary_key", primaryKey,
		"model", cfg.Gemini.Model,
		"fallback_models", len(cfg.Gemini.FallbackModels),
		"timeout", cfg.Gemini.TimeoutSeconds,
		"sentence_cap", cfg.Persona.SentenceCap,
		"transcript_url", cfg.Transcript.URL,
		"transcript_enabled", cfg.Transcript.Enabled,
		"chatlog_enabled", cfg.ChatLog.Enabled,
	)

	if len(cfg.Gemini.APIKeys) == 0 {
		logger.Error("env_missing_google_api_key")
	}
}

func buildConfig() *Config {
	return &Config{
		Gemini: GeminiConfig{
			APIKeys:         parseAPIKeys(),
			Model:           getEnvString("GEMINI_MODEL", "gemini-2.5-flash"),
			FallbackModels:  getEnvStringSlice("GEMINI_FALLBACK_MODELS", []string{"gemini-2.5-flash-lite"}),
			Temperature:     getEnvFloat("GEMINI_TEMPERATURE", 0.7),
			MaxOutputTokens: getEnvInt("GEMINI_MAX_TOKENS", 1024),
			MaxRetries:      max(1, getEnvInt("GEMINI_MAX_RETRIES", 2)),
			TimeoutSeconds:  getEnvInt("GEMINI_TIMEOUT", 30),
		},
		Persona: PersonaConfig{
			SentenceCap:      getEnvInt("PERSONA_SENTENCE_CAP", 3),
			FallbackGreeting: getEnvString("PERSONA_FALLBACK_GREETING", "Hey! I'm Pixel, Divyam's assistant. Ask me anything about his work! 🤖"),
			DefaultEmoji:     getEnvString("PERSONA_DEFAULT_EMOJI", "😊"),
			RulesDir:         getEnvString("PERSONA_RULES_DIR", ""),
			CacheMaxSize:     getEnvInt("PERSONA_CACHE_SIZE", 1000),
			CacheTTLSeconds:  getEnvInt("PERSONA_CACHE_TTL", 600),
		},
		Transcript: TranscriptConfig{
			URL:             getEnvString("TRANSCRIPT_STORE_URL", "redis://localhost:6379"),
			Enabled:         getEnvBool("TRANSCRIPT_STORE_ENABLED", false),
			Required:        getEnvBool("TRANSCRIPT_STORE_REQUIRED", false),
			DisableCache:    getEnvBool("TRANSCRIPT_STORE_DISABLE_CACHE", false),
			TTLMinutes:      getEnvInt("TRANSCRIPT_TTL_MINUTES", 120),
			HistoryMaxPairs: getEnvNonNegativeInt("TRANSCRIPT_HISTORY_MAX_PAIRS", 6),
			Compress:        getEnvBool("TRANSCRIPT_COMPRESS", true),
		},
		ChatLog: ChatLogConfig{
			Enabled:                getEnvBool("CHATLOG_ENABLED", false),
			Host:                   getEnvString("CHATLOG_DB_HOST", "localhost"),
			Port:                   getEnvInt("CHATLOG_DB_PORT", 5432),
			Name:                   getEnvString("CHATLOG_DB_NAME", "pixel"),
			User:                   getEnvString("CHATLOG_DB_USER", "pixel"),
			Password:               getEnvString("CHATLOG_DB_PASSWORD", ""),
			MinPool:                getEnvInt("CHATLOG_DB_MIN_POOL", 1),
			MaxPool:                getEnvInt("CHATLOG_DB_MAX_POOL", 4),
			ConnMaxLifetimeMinutes: getEnvNonNegativeInt("CHATLOG_DB_CONN_MAX_LIFETIME_MINUTES", 60),
			ConnMaxIdleTimeMinutes: getEnvNonNegativeInt("CHATLOG_DB_CONN_MAX_IDLE_TIME_MINUTES", 10),
			FlushIntervalSeconds:   max(1, getEnvNonNegativeInt("CHATLOG_FLUSH_INTERVAL_SECONDS", 2)),
			FlushTimeoutSeconds:    max(1, getEnvNonNegativeInt("CHATLOG_FLUSH_TIMEOUT_SECONDS", 5)),
		},
		Logging: LoggingConfig{
			Level:      getEnvString("LOG_LEVEL", "info"),
			LogDir:     getEnvString("LOG_DIR", ""),
			MaxSizeMB:  getEnvInt("LOG_FILE_MAX_SIZE_MB", 1),
			MaxBackups: getEnvInt("LOG_FILE_MAX_BACKUPS", 30),
			MaxAgeDays: getEnvInt("LOG_FILE_MAX_AGE_DAYS", 7),
			Compress:   getEnvBool("LOG_FILE_COMPRESS", true),
		},
		HTTP: HTTPConfig{
			Host:         getEnvString("HTTP_HOST", "127.0.0.1"),
			Port:         getEnvInt("HTTP_PORT", 40611),
			HTTP2Enabled: getEnvBool("HTTP2_ENABLED", true),
		},
		HTTPAuth: HTTPAuthConfig{
			APIKey: getEnvString("HTTP_API_KEY", ""),
		},
		HTTPRateLimit: HTTPRateLimitConfig{
			RequestsPerMinute: getEnvNonNegativeInt("HTTP_RATE_LIMIT_RPM", 0),
			CacheSize:         max(1, getEnvNonNegativeInt("HTTP_RATE_LIMIT_CACHE_SIZE", 10000)),
			CacheTTLSeconds:   max(1, getEnvNonNegativeInt("HTTP_RATE_LIMIT_CACHE_TTL_SECONDS", 120)),
		},
		CORS: CORSConfig{
			AllowOrigins: getEnvStringSlice("CORS_ALLOW_ORIGINS", []string{"*"}),
			AllowMethods: getEnvStringSlice("CORS_ALLOW_METHODS", []string{"POST", "OPTIONS"}),
			AllowHeaders: getEnvStringSlice("CORS_ALLOW_HEADERS", []string{"Content-Type"}),
		},
		Telemetry: readTelemetryConfig(),
	}
}

func readTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:        getEnvBool("OTEL_ENABLED", false),
		ServiceName:    getEnvString("OTEL_SERVICE_NAME", "pixel-llm-server"),
		ServiceVersion: getEnvString("OTEL_SERVICE_VERSION", "1.0.0"),
		Environment:    getEnvString("OTEL_ENVIRONMENT", "production"),
		OTLPEndpoint:   getEnvString("OTEL_EXPORTER_OTLP_ENDPOINT", "jaeger:4317"),
		OTLPInsecure:   getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		SampleRate:     getEnvFloat("OTEL_SAMPLE_RATE", 1.0),
	}
}
