package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Storage struct {
		Keys struct {
			User    string `yaml:"user"`
			Tests   string `yaml:"tests"`
			Results string `yaml:"results"`
		} `yaml:"keys"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		SQLitePath string `yaml:"sqlitePath"`
	} `yaml:"storage"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Dashboard struct {
		PollInterval string `yaml:"pollInterval"`
	} `yaml:"dashboard"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
}

// Load reads YAML config from path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg.applyDefaults()
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Default returns the zero-file configuration.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Storage.Keys.User == "" {
		c.Storage.Keys.User = "cquiz_user_v2"
	}
	if c.Storage.Keys.Tests == "" {
		c.Storage.Keys.Tests = "cquiz_tests_v2"
	}
	if c.Storage.Keys.Results == "" {
		c.Storage.Keys.Results = "cquiz_results_v2"
	}
	if c.Storage.Redis.Prefix == "" {
		c.Storage.Redis.Prefix = "cquiz:"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// IntervalDuration parses a duration string or returns the fallback if empty
// or malformed.
func IntervalDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
