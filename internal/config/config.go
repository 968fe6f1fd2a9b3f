package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ConfigPathEnvVar points at an optional YAML file layered under the environment.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfigPaths are probed when CONFIG_PATH is unset.
var defaultConfigPaths = []string{"config.yaml", "config.yml"}

// Config captures all runtime configuration. Values come from defaults, an
// optional YAML file and environment variables, in increasing priority.
type Config struct {
	Port      string `koanf:"port"`
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	DBDriver          string `koanf:"db_driver"`
	DBURL             string `koanf:"db_url"`
	DBPath            string `koanf:"db_path"`
	DBMaxConns        int    `koanf:"db_max_conns"`
	DBMinConns        int    `koanf:"db_min_conns"`
	DBMaxIdleSecs     int    `koanf:"db_max_conn_idle_secs"`
	DBMaxLifeSecs     int    `koanf:"db_max_conn_lifetime_secs"`
	DBConnTimeoutSecs int    `koanf:"db_conn_timeout_secs"`
	DBStatementCache  int    `koanf:"db_statement_cache_capacity"`

	ReviewsAPIURL      string `koanf:"reviews_api_url"`
	ReviewsAPIPath     string `koanf:"reviews_api_path"`
	ReviewsAPIKey      string `koanf:"reviews_api_key"`
	ReviewsTimeoutSecs int    `koanf:"reviews_timeout_secs"`

	ReadTimeoutSecs  int `koanf:"server_read_timeout"`
	WriteTimeoutSecs int `koanf:"server_write_timeout"`
	IdleTimeoutSecs  int `koanf:"server_idle_timeout"`

	CORSAllowedOrigins  []string `koanf:"cors_allowed_origins"`
	RateLimitRequests   int      `koanf:"rate_limit_requests"`
	RateLimitWindowSecs int      `koanf:"rate_limit_window_secs"`
}

func defaultConfig() Config {
	return Config{
		Port:      "8080",
		LogLevel:  "info",
		LogFormat: "json",

		DBDriver:          DriverPostgres,
		DBPath:            "db/database.db",
		DBMaxConns:        20,
		DBMinConns:        2,
		DBMaxIdleSecs:     300,
		DBMaxLifeSecs:     3600,
		DBConnTimeoutSecs: 10,
		DBStatementCache:  256,

		ReviewsAPIURL:      "http://credentials-api.generalassemb.ly",
		ReviewsAPIPath:     "/4576f55f-c427-4cfc-a11c-5bfe914ca6c1",
		ReviewsTimeoutSecs: 5,

		ReadTimeoutSecs:  15,
		WriteTimeoutSecs: 15,
		IdleTimeoutSecs:  60,

		CORSAllowedOrigins:  []string{"*"},
		RateLimitRequests:   100,
		RateLimitWindowSecs: 60,
	}
}

// Load reads configuration, applying defaults and validation.
func Load() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	if err := splitList(k, "cors_allowed_origins"); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decode configuration: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg Config) validate() error {
	switch cfg.DBDriver {
	case DriverPostgres:
		if cfg.DBURL == "" {
			return fmt.Errorf("DB_URL is required")
		}
	case DriverSQLite:
		if cfg.DBPath == "" {
			return fmt.Errorf("DB_PATH is required")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q", DriverPostgres, DriverSQLite)
	}
	if cfg.ReviewsAPIURL == "" {
		return fmt.Errorf("REVIEWS_API_URL is required")
	}
	if cfg.ReviewsTimeoutSecs <= 0 {
		return fmt.Errorf("REVIEWS_TIMEOUT_SECS must be positive")
	}
	if cfg.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.DBMinConns < 0 {
		return fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.DBMinConns > cfg.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if cfg.DBStatementCache < 0 {
		return fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}
	if cfg.RateLimitRequests < 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be non-negative")
	}
	if cfg.RateLimitRequests > 0 && cfg.RateLimitWindowSecs <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW_SECS must be positive")
	}
	return nil
}

// envKey maps recognised environment variables to config keys. Anything else
// is ignored so unrelated process environment never leaks into Config.
func envKey(name string) string {
	key := strings.ToLower(name)
	if _, ok := knownKeys[key]; ok {
		return key
	}
	return ""
}

var knownKeys = func() map[string]struct{} {
	defaults, _ := structs.Provider(defaultConfig(), "koanf").Read()
	keys := make(map[string]struct{}, len(defaults))
	for k := range defaults {
		keys[k] = struct{}{}
	}
	return keys
}()

func splitList(k *koanf.Koanf, key string) error {
	raw, ok := k.Get(key).(string)
	if !ok {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	if err := k.Set(key, values); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	for _, path := range defaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
