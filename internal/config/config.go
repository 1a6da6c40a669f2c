package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

// Config holds all configuration
type Config struct {
	MySQL    MySQLConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Log      LogConfig
	Label    LabelConfig
	Warmer   WarmerConfig
	Migrate  bool
	HTTPAddr string
}

// MySQLConfig holds MySQL configuration
type MySQLConfig struct {
	DSN string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
	Issuer string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string
}

// LabelConfig holds product label configuration
type LabelConfig struct {
	CacheTTLSec  int // 0 keeps the list until the cache tag is flushed
	ImageBaseURL string
}

// WarmerConfig holds label cache warmer configuration
type WarmerConfig struct {
	Enabled     bool
	IntervalSec int
}

// source resolves one setting; ini may be nil.
type source struct {
	ini *ini.File
}

// Priority: environment variable > INI file > default value
func (s source) getString(envKey, section, key, defaultValue string) string {
	if value := os.Getenv(envKey); value != "" {
		return value
	}
	if s.ini != nil {
		if value := s.ini.Section(section).Key(key).String(); value != "" {
			return value
		}
	}
	return defaultValue
}

func (s source) getInt(envKey, section, key string, defaultValue int) int {
	if value := os.Getenv(envKey); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	if s.ini != nil && s.ini.Section(section).HasKey(key) {
		if value, err := s.ini.Section(section).Key(key).Int(); err == nil {
			return value
		}
	}
	return defaultValue
}

func (s source) getBool(envKey, section, key string, defaultValue bool) bool {
	if value := os.Getenv(envKey); value != "" {
		return value == "1" || value == "true"
	}
	if s.ini != nil && s.ini.Section(section).HasKey(key) {
		if value, err := s.ini.Section(section).Key(key).Bool(); err == nil {
			return value
		}
	}
	return defaultValue
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	return build(source{})
}

// LoadFromINI loads configuration from INI file with environment variable override
func LoadFromINI(iniPath string) (*Config, error) {
	_ = godotenv.Load()

	cfgFile, err := ini.Load(iniPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load INI file: %w", err)
	}

	return build(source{ini: cfgFile})
}

func build(s source) (*Config, error) {
	cfg := &Config{
		MySQL: MySQLConfig{
			DSN: s.getString("MYSQL_DSN", "mysql", "dsn", ""),
		},
		Redis: RedisConfig{
			Addr:     s.getString("REDIS_ADDR", "redis", "addr", "localhost:6379"),
			Password: s.getString("REDIS_PASS", "redis", "pass", ""),
			DB:       s.getInt("REDIS_DB", "redis", "db", 0),
		},
		JWT: JWTConfig{
			Secret: s.getString("JWT_SECRET", "jwt", "secret", ""),
			Issuer: s.getString("JWT_ISSUER", "jwt", "issuer", "go_productlabel"),
		},
		Log: LogConfig{
			Level:  s.getString("LOG_LEVEL", "log", "level", "info"),
			Format: s.getString("LOG_FORMAT", "log", "format", "text"),
		},
		Label: LabelConfig{
			CacheTTLSec:  s.getInt("LABEL_CACHE_TTL_SEC", "label", "cache_ttl_sec", 0),
			ImageBaseURL: s.getString("LABEL_IMAGE_BASE_URL", "label", "image_base_url", "/media/smile_productlabel/imagelabel"),
		},
		Warmer: WarmerConfig{
			Enabled:     s.getBool("LABEL_WARMER_ENABLED", "label_warmer", "enabled", true),
			IntervalSec: s.getInt("LABEL_WARMER_INTERVAL_SEC", "label_warmer", "interval_sec", 60),
		},
		Migrate:  s.getBool("MIGRATE", "app", "migrate", false),
		HTTPAddr: s.getString("HTTP_ADDR", "http", "addr", ":8080"),
	}

	// Validate required fields
	if cfg.MySQL.DSN == "" {
		return nil, fmt.Errorf("MYSQL_DSN is required")
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Warmer.Enabled && cfg.Warmer.IntervalSec <= 0 {
		return nil, fmt.Errorf("LABEL_WARMER_INTERVAL_SEC must be positive")
	}
	if cfg.Label.CacheTTLSec < 0 {
		return nil, fmt.Errorf("LABEL_CACHE_TTL_SEC must not be negative")
	}

	return cfg, nil
}
