package infra

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
app:
  name: blofin-data
  version: 1.0.0
trading:
  inst_id: BTC-USDT
  size: "0.1"
  leverage: "3"
  margin_mode: cross
  position_side: long
  channel: orders
  confirm_timeout_sec: 10
api:
  blofin:
    rest_url: https://openapi.blofin.com
    private_ws_url: wss://openapi.blofin.com/ws/private
    api_key: file-key
    secret_key: file-secret
    passphrase: file-phrase
logging:
  level: info
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Trading.InstID != "BTC-USDT" {
		t.Errorf("instId = %s", cfg.Trading.InstID)
	}
	if cfg.Trading.ConfirmTimeoutSec != 10 {
		t.Errorf("confirm timeout = %d", cfg.Trading.ConfirmTimeoutSec)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	t.Setenv("BLOFIN_API_KEY", "env-key")
	t.Setenv("BLOFIN_SECRET_KEY", "env-secret")

	cfg, err := LoadConfig(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.API.Blofin.APIKey != "env-key" {
		t.Errorf("env override lost for api key: %s", cfg.API.Blofin.APIKey)
	}
	if cfg.API.Blofin.SecretKey != "env-secret" {
		t.Errorf("env override lost for secret: %s", cfg.API.Blofin.SecretKey)
	}
	if cfg.API.Blofin.Passphrase != "file-phrase" {
		t.Errorf("file value should survive when env unset: %s", cfg.API.Blofin.Passphrase)
	}
}

func TestLoadConfig_RejectsBadURLs(t *testing.T) {
	bad := validYAML
	cfg := writeConfig(t, bad)
	t.Setenv("BLOFIN_PRIVATE_WS_URL", "http://not-a-ws-url")

	if _, err := LoadConfig(cfg); err == nil {
		t.Fatal("expected validation failure for non-ws URL")
	}
}

func TestConfig_Validate_MissingFields(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	cfg.Trading.InstID = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected failure for missing instrument")
	}

	cfg.Trading.InstID = "BTC-USDT"
	cfg.Trading.ConfirmTimeoutSec = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected failure for zero confirm timeout")
	}

	cfg.Trading.ConfirmTimeoutSec = 10
	cfg.API.Blofin.SecretKey = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected failure for missing secret")
	}
}
