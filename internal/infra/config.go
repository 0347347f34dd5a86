package infra

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application settings. Secrets may be supplied in the
// file for development, but environment variables always win.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Trading struct {
		InstID            string `yaml:"inst_id"`
		Size              string `yaml:"size"`
		Leverage          string `yaml:"leverage"`
		MarginMode        string `yaml:"margin_mode"`
		PositionSide      string `yaml:"position_side"`
		Channel           string `yaml:"channel"`
		ConfirmTimeoutSec int    `yaml:"confirm_timeout_sec"`
	} `yaml:"trading"`

	API struct {
		Blofin struct {
			RestURL      string `yaml:"rest_url"`
			PrivateWSURL string `yaml:"private_ws_url"`
			APIKey       string `yaml:"api_key"`
			SecretKey    string `yaml:"secret_key"`
			Passphrase   string `yaml:"passphrase"`
		} `yaml:"blofin"`
	} `yaml:"api"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the config file, applies environment
// overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	b := &c.API.Blofin
	if !strings.HasPrefix(b.RestURL, "http://") && !strings.HasPrefix(b.RestURL, "https://") {
		return fmt.Errorf("invalid Blofin REST URL: %s", b.RestURL)
	}
	if !strings.HasPrefix(b.PrivateWSURL, "ws://") && !strings.HasPrefix(b.PrivateWSURL, "wss://") {
		return fmt.Errorf("invalid Blofin WS URL: %s", b.PrivateWSURL)
	}
	if b.APIKey == "" || b.SecretKey == "" || b.Passphrase == "" {
		return fmt.Errorf("missing Blofin credentials (set BLOFIN_API_KEY / BLOFIN_SECRET_KEY / BLOFIN_PASSPHRASE)")
	}

	t := &c.Trading
	if t.InstID == "" {
		return fmt.Errorf("trading instrument is required")
	}
	if t.Size == "" {
		return fmt.Errorf("order size is required")
	}
	if t.ConfirmTimeoutSec <= 0 {
		return fmt.Errorf("confirm timeout must be positive")
	}

	return nil
}

// overrideWithEnv replaces file-supplied secrets with environment values
// when present. Environment variables take precedence over the file.
func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("BLOFIN_API_KEY"); v != "" {
		cfg.API.Blofin.APIKey = v
	}
	if v := os.Getenv("BLOFIN_SECRET_KEY"); v != "" {
		cfg.API.Blofin.SecretKey = v
	}
	if v := os.Getenv("BLOFIN_PASSPHRASE"); v != "" {
		cfg.API.Blofin.Passphrase = v
	}
	if v := os.Getenv("BLOFIN_REST_URL"); v != "" {
		cfg.API.Blofin.RestURL = v
	}
	if v := os.Getenv("BLOFIN_PRIVATE_WS_URL"); v != "" {
		cfg.API.Blofin.PrivateWSURL = v
	}
}
