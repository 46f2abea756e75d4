// Package config loads service configuration: compiled defaults, overridden
// by an optional YAML file, overridden by environment variables.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServiceName string `yaml:"service_name"`
	ListenAddr  string `yaml:"listen_addr"`
	DBPath      string `yaml:"db_path"`
	RedisAddr   string `yaml:"redis_addr"`

	Payment PaymentConfig `yaml:"payment"`
}

type PaymentConfig struct {
	APIBase string `yaml:"api_base"`
	// APISecret is only read from the PORTONE_API_SECRET env var, never
	// from the file.
	APISecret string `yaml:"-"`
}

func defaults() *Config {
	return &Config{
		ServiceName: "sneakershop",
		ListenAddr:  ":8080",
		DBPath:      "./data/shop.db",
		RedisAddr:   "localhost:6379",
		Payment: PaymentConfig{
			APIBase: "https://api.portone.io",
		},
	}
}

// Load reads path if it exists (path may be empty to skip the file layer),
// then applies env overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// optional file
		case err != nil:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	overrideEnv(&cfg.ServiceName, "SERVICE_NAME")
	overrideEnv(&cfg.ListenAddr, "LISTEN_ADDR")
	overrideEnv(&cfg.DBPath, "DB_PATH")
	overrideEnv(&cfg.RedisAddr, "REDIS_ADDR")
	overrideEnv(&cfg.Payment.APIBase, "PAYMENT_API_BASE")
	overrideEnv(&cfg.Payment.APISecret, "PORTONE_API_SECRET")

	return cfg, nil
}

func overrideEnv(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}
