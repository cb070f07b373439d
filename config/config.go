package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"food-ordering/events"
	"food-ordering/store"
)

type Server struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"`
}

type Storage struct {
	// Driver is memory, sqlite or postgres.
	Driver      string `yaml:"driver"`
	SQLitePath  string `yaml:"sqlite_path"`
	DatabaseURL string `yaml:"database_url"`
}

type Auth struct {
	JWTSecret     string `yaml:"jwt_secret"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`
	BcryptCost    int    `yaml:"bcrypt_cost"`
}

type Events struct {
	// Driver is none or rabbitmq.
	Driver    string `yaml:"driver"`
	RabbitURL string `yaml:"rabbitmq_url"`
	Exchange  string `yaml:"exchange"`
}

type Log struct {
	Service string `yaml:"service"`
	Debug   bool   `yaml:"debug"`
}

type Config struct {
	Server  Server  `yaml:"server"`
	Storage Storage `yaml:"storage"`
	Auth    Auth    `yaml:"auth"`
	Events  Events  `yaml:"events"`
	Log     Log     `yaml:"log"`
}

func Default() Config {
	return Config{
		Server:  Server{Port: "8080", Mode: "debug"},
		Storage: Storage{Driver: "sqlite", SQLitePath: "food_ordering.db"},
		Auth: Auth{
			JWTSecret:     "food_ordering_dev_secret",
			TokenTTLHours: 24,
			BcryptCost:    bcrypt.DefaultCost,
		},
		Events: Events{Driver: "none", Exchange: events.DefaultExchange},
		Log:    Log{Service: "food-ordering"},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Server.Mode = getEnv("GIN_MODE", cfg.Server.Mode)
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.BcryptCost = getEnvAsInt("BCRYPT_COST", cfg.Auth.BcryptCost)
	cfg.Storage.Driver = getEnv("STORAGE_DRIVER", cfg.Storage.Driver)
	cfg.Storage.SQLitePath = getEnv("SQLITE_PATH", cfg.Storage.SQLitePath)
	cfg.Storage.DatabaseURL = getEnv("DATABASE_URL", cfg.Storage.DatabaseURL)
	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		cfg.Events.RabbitURL = url
		if cfg.Events.Driver == "none" || cfg.Events.Driver == "" {
			cfg.Events.Driver = "rabbitmq"
		}
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unknown server mode %q", c.Server.Mode)
	}
	switch c.Storage.Driver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "postgres" && c.Storage.DatabaseURL == "" {
		return errors.New("postgres storage requires database_url")
	}
	switch c.Events.Driver {
	case "", "none", "rabbitmq":
	default:
		return fmt.Errorf("unknown events driver %q", c.Events.Driver)
	}
	if c.Events.Driver == "rabbitmq" && c.Events.RabbitURL == "" {
		return errors.New("rabbitmq events require rabbitmq_url")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("jwt_secret must not be empty")
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}

func (c Config) TokenTTL() time.Duration {
	if c.Auth.TokenTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Auth.TokenTTLHours) * time.Hour
}

// OpenStore opens the configured document store.
func OpenStore(ctx context.Context, cfg Config) (store.Store, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return store.NewMemoryStore(), nil
	case "postgres":
		pg, err := store.OpenPostgres(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return pg, nil
	default:
		lite, err := store.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		return lite, nil
	}
}

// OpenPublisher connects the configured order event publisher.
func OpenPublisher(cfg Config) (events.Publisher, error) {
	if cfg.Events.Driver != "rabbitmq" {
		return events.NopPublisher{}, nil
	}
	pub, err := events.DialRabbit(cfg.Events.RabbitURL, cfg.Events.Exchange)
	if err != nil {
		return nil, err
	}
	return pub, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
