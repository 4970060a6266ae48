package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App     AppConfig
	API     APIConfig
	Store   StoreConfig
	HTTP    HTTPConfig
	Voice   VoiceConfig
	Log     LogConfig
	Metrics MetricsConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// APIConfig points at the remote POA backend
type APIConfig struct {
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	MaxRetryDelay  time.Duration
	RateLimitRPS   float64 // 0 disables client-side limiting
	RateLimitBurst int
}

// StoreConfig selects the persisted session store driver
type StoreConfig struct {
	Driver        string // memory, sqlite, redis
	SQLitePath    string
	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
	Fallback      bool // fall back to memory when the driver cannot start
}

// HTTPConfig holds the presentation surface settings
type HTTPConfig struct {
	Port             string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	CORSAllowOrigins []string
}

// VoiceConfig holds speech recognition settings
type VoiceConfig struct {
	Enabled       bool
	Locale        string
	ListenTimeout time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// MetricsConfig holds prometheus settings
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with POA_ prefix (e.g., POA_API_BASE_URL)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom reads the given config file instead of searching for config.toml
func LoadFrom(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/poa")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// zero is a meaningful value here, so it cannot go through applyDefaults
	v.SetDefault("api.max_retries", 2)

	v.SetEnvPrefix("POA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		API: APIConfig{
			BaseURL:        v.GetString("api.base_url"),
			Timeout:        v.GetDuration("api.timeout"),
			MaxRetries:     v.GetInt("api.max_retries"),
			RetryDelay:     v.GetDuration("api.retry_delay"),
			MaxRetryDelay:  v.GetDuration("api.max_retry_delay"),
			RateLimitRPS:   v.GetFloat64("api.rate_limit_rps"),
			RateLimitBurst: v.GetInt("api.rate_limit_burst"),
		},
		Store: StoreConfig{
			Driver:        v.GetString("store.driver"),
			SQLitePath:    v.GetString("store.sqlite_path"),
			RedisHost:     v.GetString("store.redis_host"),
			RedisPort:     v.GetInt("store.redis_port"),
			RedisPassword: v.GetString("store.redis_password"),
			RedisDB:       v.GetInt("store.redis_db"),
			KeyPrefix:     v.GetString("store.key_prefix"),
			Fallback:      v.GetBool("store.fallback"),
		},
		HTTP: HTTPConfig{
			Port:             v.GetString("http.port"),
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
		},
		Voice: VoiceConfig{
			Enabled:       !v.IsSet("voice.enabled") || v.GetBool("voice.enabled"),
			Locale:        v.GetString("voice.locale"),
			ListenTimeout: v.GetDuration("voice.listen_timeout"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Metrics: MetricsConfig{
			Enabled: !v.IsSet("metrics.enabled") || v.GetBool("metrics.enabled"),
			Path:    v.GetString("metrics.path"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "poa-dashboard"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8000"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 15 * time.Second
	}
	if cfg.API.RetryDelay == 0 {
		cfg.API.RetryDelay = 500 * time.Millisecond
	}
	if cfg.API.MaxRetryDelay == 0 {
		cfg.API.MaxRetryDelay = 5 * time.Second
	}
	if cfg.API.RateLimitBurst == 0 {
		cfg.API.RateLimitBurst = 10
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "sqlite"
	}
	if cfg.Store.SQLitePath == "" {
		cfg.Store.SQLitePath = "poa-session.db"
	}
	if cfg.Store.RedisHost == "" {
		cfg.Store.RedisHost = "localhost"
	}
	if cfg.Store.RedisPort == 0 {
		cfg.Store.RedisPort = 6379
	}
	if cfg.Store.KeyPrefix == "" {
		cfg.Store.KeyPrefix = "poa:session:"
	}
	if cfg.HTTP.Port == "" {
		cfg.HTTP.Port = "3080"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.Voice.Locale == "" {
		cfg.Voice.Locale = "es-MX"
	}
	if cfg.Voice.ListenTimeout == 0 {
		cfg.Voice.ListenTimeout = 10 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stderr"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.MaxRetries < 0 {
		return fmt.Errorf("api.max_retries cannot be negative")
	}
	if c.API.RateLimitRPS < 0 {
		return fmt.Errorf("api.rate_limit_rps cannot be negative")
	}
	switch c.Store.Driver {
	case "memory", "sqlite", "redis":
	default:
		return fmt.Errorf("store.driver must be one of memory, sqlite, redis, got %q", c.Store.Driver)
	}
	if c.App.Env == "production" && c.Store.Driver == "memory" {
		return fmt.Errorf("store.driver cannot be 'memory' in production (sessions would not survive restarts)")
	}
	return nil
}

// RedisAddr returns host:port for the redis driver
func (s *StoreConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", s.RedisHost, s.RedisPort)
}
