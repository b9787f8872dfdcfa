package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	StoreClickHouse = "clickhouse"
	StorePostgres   = "postgres"
	StoreMemory     = "memory"
)

type ClickHouse struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Database string `koanf:"database"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

type Postgres struct {
	URL string `koanf:"url"`
}

type Auth struct {
	JWTSecret            string        `koanf:"jwt_secret"`
	TokenTTL             time.Duration `koanf:"token_ttl"`
	OperatorEmail        string        `koanf:"operator_email"`
	OperatorPasswordHash string        `koanf:"operator_password_hash"`
	// DashboardAPIKey is an optional static key accepted in X-API-KEY.
	DashboardAPIKey string `koanf:"dashboard_api_key"`
}

type Tracking struct {
	TrackedPrefixes   []string `koanf:"tracked_prefixes"`
	SearchEngineHosts []string `koanf:"search_engine_hosts"`
	MaxRangeDays      int      `koanf:"max_range_days"`
	RatePerSec        float64  `koanf:"rate_per_sec"`
	RateBurst         int      `koanf:"rate_burst"`
}

type Config struct {
	Environment string     `koanf:"environment"`
	Port        string     `koanf:"port"`
	FrontendURL string     `koanf:"frontend_url"`
	EventStore  string     `koanf:"event_store"`
	ClickHouse  ClickHouse `koanf:"clickhouse"`
	Postgres    Postgres   `koanf:"postgres"`
	Auth        Auth       `koanf:"auth"`
	Tracking    Tracking   `koanf:"tracking"`
}

// envKeys maps environment variables to config paths.
var envKeys = map[string]string{
	"SERVICE_ENVIRONMENT":    "environment",
	"PORT":                   "port",
	"FE_ORIGIN":              "frontend_url",
	"EVENT_STORE":            "event_store",
	"CLICKHOUSE_HOST":        "clickhouse.host",
	"CLICKHOUSE_NATIVE_PORT": "clickhouse.port",
	"CLICKHOUSE_DB_NAME":     "clickhouse.database",
	"CLICKHOUSE_USERNAME":    "clickhouse.username",
	"CLICKHOUSE_PASSWORD":    "clickhouse.password",
	"DATABASE_URL":           "postgres.url",
	"JWT_SECRET_KEY":         "auth.jwt_secret",
	"JWT_TTL":                "auth.token_ttl",
	"OPERATOR_EMAIL":         "auth.operator_email",
	"OPERATOR_PASSWORD_HASH": "auth.operator_password_hash",
	"DASHBOARD_API_KEY":      "auth.dashboard_api_key",
	"TRACKED_PREFIXES":       "tracking.tracked_prefixes",
	"SEARCH_ENGINE_HOSTS":    "tracking.search_engine_hosts",
	"MAX_RANGE_DAYS":         "tracking.max_range_days",
	"TRACK_RATE_PER_SEC":     "tracking.rate_per_sec",
	"TRACK_RATE_BURST":       "tracking.rate_burst",
}

// listKeys are comma-separated in the environment.
var listKeys = map[string]bool{
	"tracking.tracked_prefixes":    true,
	"tracking.search_engine_hosts": true,
}

func defaultConfig() Config {
	return Config{
		Environment: "development",
		Port:        "8080",
		FrontendURL: "http://localhost:3000",
		EventStore:  StoreClickHouse,
		ClickHouse:  ClickHouse{Port: 9000},
		Auth:        Auth{TokenTTL: 24 * time.Hour},
		Tracking: Tracking{
			TrackedPrefixes: []string{"/blog"},
			MaxRangeDays:    366,
			RatePerSec:      5,
			RateBurst:       20,
		},
	}
}

// Load reads the configuration from built-in defaults overridden by the
// environment. Call godotenv.Load first to pick up a local .env file.
// Blank variables count as unset.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(env.ProviderWithValue("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.EventStore = strings.ToLower(cfg.EventStore)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envTransformFunc maps a known variable to its config path. Unknown and
// blank variables are skipped by returning an empty key.
func envTransformFunc(key, value string) (string, interface{}) {
	path, ok := envKeys[key]
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return "", nil
	}
	if listKeys[path] {
		return path, splitList(value)
	}
	return path, value
}

// Validate checks the settings that depend on each other.
func (c *Config) Validate() error {
	switch c.EventStore {
	case StoreClickHouse:
		if c.ClickHouse.Host == "" || c.ClickHouse.Database == "" {
			return fmt.Errorf("CLICKHOUSE_HOST and CLICKHOUSE_DB_NAME are required when EVENT_STORE=%s", StoreClickHouse)
		}
	case StorePostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when EVENT_STORE=%s", StorePostgres)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unsupported EVENT_STORE %q (supported: clickhouse, postgres, memory)", c.EventStore)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Tracking.MaxRangeDays < 1 {
		return fmt.Errorf("MAX_RANGE_DAYS must be positive")
	}
	if c.Tracking.RatePerSec <= 0 || c.Tracking.RateBurst < 1 {
		return fmt.Errorf("TRACK_RATE_PER_SEC and TRACK_RATE_BURST must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
