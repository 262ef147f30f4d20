package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "agent.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Address != ":8080" {
		t.Fatalf("unexpected server address: %s", cfg.Server.Address)
	}
	if cfg.LLM.DeepSeek.APIKeyEnv != "DEEPSEEK_API_KEY" {
		t.Fatalf("unexpected api key env: %s", cfg.LLM.DeepSeek.APIKeyEnv)
	}
	if cfg.Agent.HistoryLimit != 20 {
		t.Fatalf("unexpected history limit: %d", cfg.Agent.HistoryLimit)
	}
	if cfg.History.Driver != "memory" || cfg.Cache.Driver != "memory" || cfg.Events.Driver != "nop" {
		t.Fatalf("unexpected drivers: %s/%s/%s", cfg.History.Driver, cfg.Cache.Driver, cfg.Events.Driver)
	}
	if cfg.Networks.Active != "mainnet" {
		t.Fatalf("unexpected active network: %s", cfg.Networks.Active)
	}
	if cfg.Runtime.DataDir != filepath.Join(dir, "data") {
		t.Fatalf("unexpected data dir: %s", cfg.Runtime.DataDir)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Fatalf("unexpected logging defaults: %s/%s", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestLoadRelativePathsJoinedToBaseDir(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{
		"networks": {"path": "networks.yaml", "active": "testnet"},
		"tokens": {"path": "tokens.json"},
		"runtime": {"data_dir": "state"}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Networks.Path != filepath.Join(dir, "networks.yaml") {
		t.Fatalf("unexpected networks path: %s", cfg.Networks.Path)
	}
	if cfg.Tokens.Path != filepath.Join(dir, "tokens.json") {
		t.Fatalf("unexpected tokens path: %s", cfg.Tokens.Path)
	}
	if cfg.Runtime.DataDir != filepath.Join(dir, "state") {
		t.Fatalf("unexpected data dir: %s", cfg.Runtime.DataDir)
	}
	if cfg.Networks.Active != "testnet" {
		t.Fatalf("unexpected active network: %s", cfg.Networks.Active)
	}
}

func TestLoadExplicitValuesKept(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{
		"server": {"address": ":9000", "metrics_address": ":9100"},
		"llm": {"deepseek": {"model": "deepseek/deepseek-r1", "timeout_seconds": 30}},
		"history": {"driver": "mysql", "dsn": "user:pass@tcp(localhost:3306)/agent"}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Address != ":9000" || cfg.Server.MetricsAddress != ":9100" {
		t.Fatalf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.LLM.DeepSeek.Model != "deepseek/deepseek-r1" {
		t.Fatalf("unexpected model: %s", cfg.LLM.DeepSeek.Model)
	}
	if cfg.LLM.DeepSeek.Timeout().Seconds() != 30 {
		t.Fatalf("unexpected timeout: %v", cfg.LLM.DeepSeek.Timeout())
	}
	if cfg.History.Driver != "mysql" {
		t.Fatalf("unexpected history driver: %s", cfg.History.Driver)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}

	dir := t.TempDir()
	path := writeConfig(t, dir, `{broken`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for malformed JSON")
	}
}

func TestDeepSeekTimeoutZero(t *testing.T) {
	cfg := DeepSeekConfig{}
	if cfg.Timeout() != 0 {
		t.Fatalf("expected zero timeout when unset")
	}
}
