package config

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/spf13/viper"
)

const FileName = "dotaseed.config.json"

type Config struct {
	Version   string    `json:"version" mapstructure:"version"`
	Database  Database  `json:"database" mapstructure:"database"`
	Reference Reference `json:"reference" mapstructure:"reference"`
	Seed      Seed      `json:"seed" mapstructure:"seed"`
}

type Database struct {
	Provider string `json:"provider" mapstructure:"provider"`
	URLEnv   string `json:"url_env" mapstructure:"url_env"`
}

type Reference struct {
	BaseURL string        `json:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

type Seed struct {
	Accounts      int    `json:"accounts" mapstructure:"accounts"`
	Players       int    `json:"players" mapstructure:"players"`
	Matches       int    `json:"matches" mapstructure:"matches"`
	RandomSeed    uint64 `json:"random_seed" mapstructure:"random_seed"` // 0 = time based
	RandomOffsets bool   `json:"random_offsets" mapstructure:"random_offsets"`
	ReportPath    string `json:"report_path,omitempty" mapstructure:"report_path"`
}

var SupportedProviders = []string{"postgresql", "postgres", "mysql", "sqlite", "sqlite3"}

func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Database: Database{
			Provider: "postgresql",
			URLEnv:   "DATABASE_URL",
		},
		Reference: Reference{
			BaseURL: "https://api.opendota.com/api",
			Timeout: 30 * time.Second,
		},
		Seed: Seed{
			Accounts:      2000,
			Players:       1252,
			Matches:       500,
			RandomOffsets: true,
		},
	}
}

func Load() (*Config, error) {
	var cfg Config

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	def := DefaultConfig()
	if cfg.Version == "" {
		cfg.Version = def.Version
	}
	if cfg.Database.Provider == "" {
		cfg.Database.Provider = def.Database.Provider
	}
	if cfg.Database.URLEnv == "" {
		cfg.Database.URLEnv = def.Database.URLEnv
	}
	if cfg.Reference.BaseURL == "" {
		cfg.Reference.BaseURL = def.Reference.BaseURL
	}
	if cfg.Reference.Timeout == 0 {
		cfg.Reference.Timeout = def.Reference.Timeout
	}
	if !viper.IsSet("seed.accounts") {
		cfg.Seed.Accounts = def.Seed.Accounts
	}
	if !viper.IsSet("seed.players") {
		cfg.Seed.Players = def.Seed.Players
	}
	if !viper.IsSet("seed.matches") {
		cfg.Seed.Matches = def.Seed.Matches
	}
	if !viper.IsSet("seed.random_offsets") {
		cfg.Seed.RandomOffsets = def.Seed.RandomOffsets
	}

	return &cfg, nil
}

func (c *Config) GetDatabaseURL() (string, error) {
	dbURL := os.Getenv(c.Database.URLEnv)
	if dbURL == "" {
		return "", fmt.Errorf("database URL not found in environment variable %s", c.Database.URLEnv)
	}
	return dbURL, nil
}

func (c *Config) Validate() error {
	if !slices.Contains(SupportedProviders, c.Database.Provider) {
		return fmt.Errorf("unsupported database provider: %s. Supported providers: %v", c.Database.Provider, SupportedProviders)
	}
	if c.Seed.Accounts <= 0 {
		return fmt.Errorf("seed.accounts must be positive, got %d", c.Seed.Accounts)
	}
	if c.Seed.Players <= 0 {
		return fmt.Errorf("seed.players must be positive, got %d", c.Seed.Players)
	}
	if c.Seed.Matches <= 0 {
		return fmt.Errorf("seed.matches must be positive, got %d", c.Seed.Matches)
	}
	if c.Reference.Timeout < 0 {
		return fmt.Errorf("reference.timeout cannot be negative")
	}
	return nil
}

// InitializeProject writes a default config file into the current directory.
// It refuses to overwrite an existing one.
func InitializeProject(provider string) error {
	if _, err := os.Stat(FileName); err == nil {
		return fmt.Errorf("%s already exists", FileName)
	}

	cfg := DefaultConfig()
	if provider != "" {
		cfg.Database.Provider = provider
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(fileConfig(cfg), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(FileName, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", FileName, err)
	}
	return nil
}

// fileConfig renders durations as strings so viper can read them back.
func fileConfig(c *Config) map[string]any {
	return map[string]any{
		"version":  c.Version,
		"database": c.Database,
		"reference": map[string]any{
			"base_url": c.Reference.BaseURL,
			"timeout":  c.Reference.Timeout.String(),
		},
		"seed": c.Seed,
	}
}
