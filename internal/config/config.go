package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type Config struct {
	Env   string      `yaml:"env" env:"ROOMKEEPER_ENV" env-default:"local"`
	HTTP  HTTPConfig  `yaml:"http"`
	Auth  AuthConfig  `yaml:"auth"`
	Store StoreConfig `yaml:"store"`
	Feed  FeedConfig  `yaml:"feed"`
}

type HTTPConfig struct {
	Address         string        `yaml:"address" env:"ROOMKEEPER_HTTP_ADDRESS" env-default:""`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"ROOMKEEPER_ALLOWED_ORIGINS" env-separator:","`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

type AuthConfig struct {
	SessionSecret string        `yaml:"session_secret" env:"ROOMKEEPER_SESSION_SECRET"`
	CookieName    string        `yaml:"cookie_name" env-default:"session"`
	SessionTTL    time.Duration `yaml:"session_ttl" env-default:"168h"`
}

type StoreConfig struct {
	Driver       string        `yaml:"driver" env:"ROOMKEEPER_STORE_DRIVER" env-default:"memory"`
	RedisURL     string        `yaml:"redis_url" env:"REDIS_URL"`
	RedisPrefix  string        `yaml:"redis_prefix" env-default:"roomkeeper:"`
	PostgresDSN  string        `yaml:"postgres_dsn" env:"DATABASE_DSN"`
	PollInterval time.Duration `yaml:"poll_interval" env-default:"2s"`
}

type FeedConfig struct {
	Buffer int `yaml:"buffer" env-default:"8"`
}

func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		panic("config path is empty")
	}

	return MustLoadPath(configPath)
}

func MustLoadPath(configPath string) *Config {
	cfg, err := LoadPath(configPath)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

// LoadPath reads the YAML file at configPath, applies env overrides and
// defaults, and validates the result.
func LoadPath(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	if res == "" {
		res = "config/local.yaml"
	}

	return res
}

func (c *Config) setDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if len(c.HTTP.AllowedOrigins) == 0 {
		c.HTTP.AllowedOrigins = []string{"http://localhost:5173"}
	}
	if c.Auth.CookieName == "" {
		c.Auth.CookieName = "session"
	}
	if c.Auth.SessionTTL <= 0 {
		c.Auth.SessionTTL = 7 * 24 * time.Hour
	}
	if c.Store.PollInterval <= 0 {
		c.Store.PollInterval = 2 * time.Second
	}
	if c.Feed.Buffer <= 0 {
		c.Feed.Buffer = 8
	}
}

func (c *Config) Validate() error {
	if c.Auth.SessionSecret == "" {
		return errors.New("auth.session_secret is required")
	}

	switch c.Store.Driver {
	case StoreMemory:
	case StoreRedis:
		if c.Store.RedisURL == "" {
			return errors.New("store.redis_url is required for the redis driver")
		}
	case StorePostgres:
		if c.Store.PostgresDSN == "" {
			return errors.New("store.postgres_dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	return nil
}
