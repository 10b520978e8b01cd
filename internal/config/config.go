package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")
	ErrMissingAPIURL    = errors.New("KANSO_API_URL must be set")
	ErrMissingAPIKey    = errors.New("KANSO_API_KEY must be set")
)

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN builds the postgres connection string handed to sqlx.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type Config struct {
	Port               string         `yaml:"port"`
	GinMode            string         `yaml:"gin_mode"`
	JWTSecret          string         `yaml:"jwt_secret"`
	JWTIssuer          string         `yaml:"jwt_issuer"`
	TokenTTL           time.Duration  `yaml:"token_ttl"`
	RateLimitPerMinute int            `yaml:"rate_limit_per_minute"`
	AllowedOrigins     []string       `yaml:"allowed_origins"`
	Database           DatabaseConfig `yaml:"database"`
	Redis              RedisConfig    `yaml:"redis"`
	Log                LogConfig      `yaml:"log"`
}

// Load reads configuration with the precedence YAML file, then defaults, then
// environment variables. A .env file in the working directory is loaded first
// when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadYAML(path, cfg); err != nil {
			return nil, err
		}
	}

	applyDefaults(cfg)
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}
	return cfg, nil
}

func loadYAML(path string, out *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config: invalid yaml in %s: %w", path, err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	setDefault(&cfg.Port, "8080")
	setDefault(&cfg.GinMode, "release")
	setDefault(&cfg.JWTIssuer, "kanso-challenge")
	setDefault(&cfg.Database.Host, "localhost")
	setDefault(&cfg.Database.Port, "5432")
	setDefault(&cfg.Database.SSLMode, "disable")
	setDefault(&cfg.Redis.Addr, "localhost:6379")
	setDefault(&cfg.Log.Level, "info")

	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.RateLimitPerMinute == 0 {
		cfg.RateLimitPerMinute = 100
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
}

func applyEnvOverrides(cfg *Config) error {
	overrideString(&cfg.Port, "PORT")
	overrideString(&cfg.GinMode, "GIN_MODE")
	overrideString(&cfg.JWTSecret, "JWT_SECRET")
	overrideString(&cfg.JWTIssuer, "JWT_ISSUER")
	overrideString(&cfg.Database.Host, "DB_HOST")
	overrideString(&cfg.Database.Port, "DB_PORT")
	overrideString(&cfg.Database.User, "DB_USER")
	overrideString(&cfg.Database.Password, "DB_PASSWORD")
	overrideString(&cfg.Database.Name, "DB_NAME")
	overrideString(&cfg.Database.SSLMode, "DB_SSLMODE")
	overrideString(&cfg.Redis.Addr, "REDIS_ADDR")
	overrideString(&cfg.Redis.Password, "REDIS_PASSWORD")
	overrideString(&cfg.Log.Level, "LOG_LEVEL")
	overrideString(&cfg.Log.Path, "LOG_PATH")

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("LOG_COMPRESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: LOG_COMPRESS: %w", err)
		}
		cfg.Log.Compress = b
	}
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: TOKEN_TTL: %w", err)
		}
		cfg.TokenTTL = d
	}

	for key, dst := range map[string]*int{
		"REDIS_DB":              &cfg.Redis.DB,
		"RATE_LIMIT_PER_MINUTE": &cfg.RateLimitPerMinute,
		"LOG_MAX_SIZE_MB":       &cfg.Log.MaxSizeMB,
		"LOG_MAX_BACKUPS":       &cfg.Log.MaxBackups,
		"LOG_MAX_AGE_DAYS":      &cfg.Log.MaxAgeDays,
	} {
		if err := overrideInt(dst, key); err != nil {
			return err
		}
	}
	return nil
}

// CLIConfig is what challengectl needs to reach the API.
type CLIConfig struct {
	APIURL string
	APIKey string
}

func LoadCLI() (*CLIConfig, error) {
	_ = godotenv.Load()

	cfg := &CLIConfig{
		APIURL: strings.TrimRight(strings.TrimSpace(os.Getenv("KANSO_API_URL")), "/"),
		APIKey: strings.TrimSpace(os.Getenv("KANSO_API_KEY")),
	}

	var errs []error
	if cfg.APIURL == "" {
		errs = append(errs, ErrMissingAPIURL)
	}
	if cfg.APIKey == "" {
		errs = append(errs, ErrMissingAPIKey)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func setDefault(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func overrideInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = n
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
