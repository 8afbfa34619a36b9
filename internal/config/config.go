package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yml"

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Logging    LoggingConfig    `yaml:"logging"`
	Repository RepositoryConfig `yaml:"repository"`
	Auth       AuthConfig       `yaml:"auth"`
	Sessions   SessionsConfig   `yaml:"sessions"`
	CORS       CORSConfig       `yaml:"cors"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Tasks      TasksConfig      `yaml:"tasks"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Host            string        `yaml:"host"`
	BasePath        string        `yaml:"base_path"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL            string        `yaml:"url"`
	MaxConnections int32         `yaml:"max_connections"`
	MinConnections int32         `yaml:"min_connections"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	Migrate        bool          `yaml:"migrate"`
}

type LoggingConfig struct {
	Development bool   `yaml:"development"`
	Level       string `yaml:"level"`
}

type RepositoryConfig struct {
	Type string `yaml:"type"` // "postgres" или "inmemory"
}

type AuthConfig struct {
	// false включает открытый режим: задачи видны всем, владелец пишется по возможности
	EnforceOwnership *bool         `yaml:"enforce_ownership"`
	SessionCookie    string        `yaml:"session_cookie"`
	SessionTTL       time.Duration `yaml:"session_ttl"`
	SecureCookie     bool          `yaml:"secure_cookie"`
	BcryptCost       int           `yaml:"bcrypt_cost"`
	FallbackHeaders  []string      `yaml:"fallback_headers"`
	SeedUsers        []SeedUser    `yaml:"seed_users"`
}

type SeedUser struct {
	Username    string `yaml:"username"`
	Email       string `yaml:"email"`
	DisplayName string `yaml:"display_name"`
	Password    string `yaml:"password"`
}

type SessionsConfig struct {
	Type          string        `yaml:"type"` // "redis" или "inmemory"
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	KeyPrefix     string        `yaml:"key_prefix"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAge           int      `yaml:"max_age"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

type TasksConfig struct {
	Timezone string `yaml:"timezone"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не могу открыть %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse подставляет ${VAR} из окружения, разбирает yaml и заполняет значения по умолчанию
func Parse(raw []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(raw))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфига: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.BasePath == "" {
		c.Server.BasePath = "/tasks/v1"
	}
	c.Server.BasePath = "/" + strings.Trim(c.Server.BasePath, "/")
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}

	if c.Database.MaxConnections == 0 {
		c.Database.MaxConnections = 10
	}
	if c.Database.MinConnections == 0 {
		c.Database.MinConnections = 2
	}
	if c.Database.IdleTimeout == 0 {
		c.Database.IdleTimeout = 5 * time.Minute
	}

	if c.Repository.Type == "" {
		c.Repository.Type = "inmemory"
	}

	if c.Auth.EnforceOwnership == nil {
		enforce := true
		c.Auth.EnforceOwnership = &enforce
	}
	if c.Auth.SessionCookie == "" {
		c.Auth.SessionCookie = "todo_session"
	}
	if c.Auth.SessionTTL == 0 {
		c.Auth.SessionTTL = 24 * time.Hour
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = 12
	}
	if c.Auth.FallbackHeaders == nil {
		c.Auth.FallbackHeaders = []string{"X-Authorization"}
	}

	if c.Sessions.Type == "" {
		c.Sessions.Type = "inmemory"
	}
	if c.Sessions.KeyPrefix == "" {
		c.Sessions.KeyPrefix = "todo:session:"
	}
	if c.Sessions.SweepInterval == 0 {
		c.Sessions.SweepInterval = 5 * time.Minute
	}

	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"http://localhost:5173"}
	}

	if c.RateLimit.RequestsPerMinute == 0 {
		c.RateLimit.RequestsPerMinute = 100
	}

	if c.Tasks.Timezone == "" {
		c.Tasks.Timezone = "UTC"
	}
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Repository.Type {
	case "inmemory":
	case "postgres":
		if c.Database.URL == "" {
			errs = append(errs, errors.New("database.url обязателен для repository.type=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("неизвестный repository.type %q", c.Repository.Type))
	}

	switch c.Sessions.Type {
	case "inmemory":
	case "redis":
		if c.Sessions.RedisAddr == "" {
			errs = append(errs, errors.New("sessions.redis_addr обязателен для sessions.type=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("неизвестный sessions.type %q", c.Sessions.Type))
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		errs = append(errs, errors.New("database.min_connections больше max_connections"))
	}

	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("auth.bcrypt_cost %d вне диапазона 4..31", c.Auth.BcryptCost))
	}

	if _, err := time.LoadLocation(c.Tasks.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("tasks.timezone: %w", err))
	}

	for i, u := range c.Auth.SeedUsers {
		if u.Username == "" || u.Password == "" {
			errs = append(errs, fmt.Errorf("auth.seed_users[%d]: нужны username и password", i))
		}
	}

	return errors.Join(errs...)
}

func (c *Config) OwnershipEnforced() bool {
	return c.Auth.EnforceOwnership == nil || *c.Auth.EnforceOwnership
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Tasks.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
