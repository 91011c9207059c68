package config

import (
	"net"
	"net/url"
	"strconv"
)

// GeminiConfig holds upstream model settings.
type GeminiConfig struct {
	APIKeys         []string
	Model           string
	FallbackModels  []string
	Temperature     float64
	MaxOutputTokens int
	MaxRetries      int
	TimeoutSeconds  int
}

// PrimaryKey returns the first configured API key.
func (g GeminiConfig) PrimaryKey() string {
	if len(g.APIKeys) == 0 {
		return ""
	}
	return g.APIKeys[0]
}

// ModelCandidates returns the default model followed by its fallbacks,
// in failover order.
func (g GeminiConfig) ModelCandidates() []string {
	candidates := make([]string, 0, len(g.FallbackModels)+1)
	if g.Model != "" {
		candidates = append(candidates, g.Model)
	}
	for _, model := range g.FallbackModels {
		if model == "" || model == g.Model {
			continue
		}
		candidates = append(candidates, model)
	}
	return candidates
}

// PersonaConfig controls the response sanitization pipeline.
type PersonaConfig struct {
	SentenceCap      int
	FallbackGreeting string
	DefaultEmoji     string
	RulesDir         string
	CacheMaxSize     int
	CacheTTLSeconds  int
}

// TranscriptConfig holds visitor-history store settings.
type TranscriptConfig struct {
	URL             string
	Enabled         bool
	Required        bool
	DisableCache    bool
	TTLMinutes      int
	HistoryMaxPairs int
	Compress        bool
}

// ChatLogConfig holds the optional Postgres chat-log settings.
type ChatLogConfig struct {
	Enabled                bool
	Host                   string
	Port                   int
	Name                   string
	User                   string
	Password               string
	MinPool                int
	MaxPool                int
	ConnMaxLifetimeMinutes int
	ConnMaxIdleTimeMinutes int
	FlushIntervalSeconds   int
	FlushTimeoutSeconds    int
}

// DSN returns the Postgres connection string.
func (c ChatLogConfig) DSN() string {
	host := net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	u := &url.URL{
		Scheme: "postgresql",
		Host:   host,
		Path:   "/" + c.Name,
	}
	if c.Password == "" {
		u.User = url.User(c.User)
	} else {
		u.User = url.UserPassword(c.User, c.Password)
	}
	return u.String()
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level      string
	LogDir     string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Host         string
	Port         int
	HTTP2Enabled bool
}

// HTTPAuthConfig holds API key auth for the /api surface.
type HTTPAuthConfig struct {
	APIKey string
}

// HTTPRateLimitConfig holds request throttle settings.
type HTTPRateLimitConfig struct {
	RequestsPerMinute int
	CacheSize         int
	CacheTTLSeconds   int
}

// CORSConfig holds the browser-facing CORS policy.
// The chat widget is embedded on the portfolio site, so the defaults are
// deliberately permissive.
type CORSConfig struct {
	AllowOrigins []string
	AllowMethods []string
	AllowHeaders []string
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string
	OTLPInsecure   bool
	SampleRate     float64
}

// Config is the full application configuration.
type Config struct {
	Gemini        GeminiConfig
	Persona       PersonaConfig
	Transcript    TranscriptConfig
	ChatLog       ChatLogConfig
	Logging       LoggingConfig
	HTTP          HTTPConfig
	HTTPAuth      HTTPAuthConfig
	HTTPRateLimit HTTPRateLimitConfig
	CORS          CORSConfig
	Telemetry     TelemetryConfig
}
