package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Datasets DatasetsConfig `mapstructure:"datasets" yaml:"datasets"`
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Security SecurityConfig `mapstructure:"security" yaml:"security"`
	Cache    CacheConfig    `mapstructure:"cache" yaml:"cache"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type DatasetsConfig struct {
	OrdersFile   string        `mapstructure:"orders_file" yaml:"orders_file"`
	SegmentsFile string        `mapstructure:"segments_file" yaml:"segments_file"`
	LoadTimeout  time.Duration `mapstructure:"load_timeout" yaml:"load_timeout"`
	// SnapshotDir holds gob snapshots of parsed datasets. Empty disables them.
	SnapshotDir string `mapstructure:"snapshot_dir" yaml:"snapshot_dir"`
}

type LoggerConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type SecurityConfig struct {
	EnableRateLimit bool     `mapstructure:"rate_limit_enabled" yaml:"rate_limit_enabled"`
	RateLimitRPS    int      `mapstructure:"rate_limit_rps" yaml:"rate_limit_rps"`
	RateLimitBurst  int      `mapstructure:"rate_limit_burst" yaml:"rate_limit_burst"`
	AllowedOrigins  []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	TrustedProxies  []string `mapstructure:"trusted_proxies" yaml:"trusted_proxies"`
}

// CacheConfig bounds the memoized dashboard views.
type CacheConfig struct {
	ViewTTL      time.Duration `mapstructure:"view_ttl" yaml:"view_ttl"`
	ViewCapacity uint64        `mapstructure:"view_capacity" yaml:"view_capacity"`
}

// envBindings keeps the flat variable names operators already use.
var envBindings = map[string]string{
	"server.host":                 "SERVER_HOST",
	"server.port":                 "SERVER_PORT",
	"server.read_timeout":         "SERVER_READ_TIMEOUT",
	"server.write_timeout":        "SERVER_WRITE_TIMEOUT",
	"server.idle_timeout":         "SERVER_IDLE_TIMEOUT",
	"server.shutdown_timeout":     "SERVER_SHUTDOWN_TIMEOUT",
	"datasets.orders_file":        "ORDERS_FILE",
	"datasets.segments_file":      "SEGMENTS_FILE",
	"datasets.load_timeout":       "DATASETS_LOAD_TIMEOUT",
	"datasets.snapshot_dir":       "SNAPSHOT_DIR",
	"logger.level":                "LOG_LEVEL",
	"logger.format":               "LOG_FORMAT",
	"security.rate_limit_enabled": "SECURITY_RATE_LIMIT_ENABLED",
	"security.rate_limit_rps":     "SECURITY_RATE_LIMIT_RPS",
	"security.rate_limit_burst":   "SECURITY_RATE_LIMIT_BURST",
	"security.allowed_origins":    "SECURITY_ALLOWED_ORIGINS",
	"security.trusted_proxies":    "SECURITY_TRUSTED_PROXIES",
	"cache.view_ttl":              "CACHE_VIEW_TTL",
	"cache.view_capacity":         "CACHE_VIEW_CAPACITY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8084)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("datasets.orders_file", "all_data.csv")
	v.SetDefault("datasets.segments_file", "rfm_data.csv")
	v.SetDefault("datasets.load_timeout", 30*time.Second)
	v.SetDefault("datasets.snapshot_dir", ".cache")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")

	v.SetDefault("security.rate_limit_enabled", true)
	v.SetDefault("security.rate_limit_rps", 100)
	v.SetDefault("security.rate_limit_burst", 20)
	v.SetDefault("security.allowed_origins", []string{"http://localhost:8084"})
	v.SetDefault("security.trusted_proxies", []string{"127.0.0.1"})

	v.SetDefault("cache.view_ttl", 10*time.Minute)
	v.SetDefault("cache.view_capacity", 256)
}

// Load reads configuration with precedence env > config file > defaults.
// An explicit cfgFile must exist; otherwise ./config.yaml is read if present.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Security.AllowedOrigins = splitList(cfg.Security.AllowedOrigins)
	cfg.Security.TrustedProxies = splitList(cfg.Security.TrustedProxies)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Datasets.OrdersFile == "" {
		return fmt.Errorf("orders file path cannot be empty")
	}

	if c.Datasets.SegmentsFile == "" {
		return fmt.Errorf("segments file path cannot be empty")
	}

	if c.Datasets.LoadTimeout <= 0 {
		return fmt.Errorf("dataset load timeout must be positive")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !slices.Contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	if c.Cache.ViewTTL <= 0 {
		return fmt.Errorf("view cache TTL must be positive")
	}

	return nil
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
