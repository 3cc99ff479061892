package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "TASKLIST"

type Config struct {
	DBPath     string `mapstructure:"db_path" yaml:"db_path"`
	StorageKey string `mapstructure:"storage_key" yaml:"storage_key"`
	HTTPAddr   string `mapstructure:"http_addr" yaml:"http_addr"`
	Memory     bool   `mapstructure:"memory" yaml:"memory"`
}

func DefaultConfig() *Config {
	return &Config{
		DBPath:     "./tasks.db",
		StorageKey: "todos",
		HTTPAddr:   "127.0.0.1:3000",
	}
}

// Load merges defaults, a .env file in the working directory, the optional
// YAML file at path, and TASKLIST_* environment variables (highest wins last).
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	def := DefaultConfig()
	v := viper.New()
	v.SetDefault("db_path", def.DBPath)
	v.SetDefault("storage_key", def.StorageKey)
	v.SetDefault("http_addr", def.HTTPAddr)
	v.SetDefault("memory", def.Memory)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.StorageKey) == "" {
		return errors.New("storage_key must not be empty")
	}
	if !c.Memory && strings.TrimSpace(c.DBPath) == "" {
		return errors.New("db_path must not be empty")
	}
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return errors.New("http_addr must not be empty")
	}
	return nil
}
