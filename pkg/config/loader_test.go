package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Listen.Host != "127.0.0.1" || cfg.Listen.Port != 7425 {
		t.Errorf("listen defaults = %s:%d, want 127.0.0.1:7425", cfg.Listen.Host, cfg.Listen.Port)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level default = %q, want info", cfg.Log.Level)
	}
	if cfg.Suggest.Provider != "anthropic" {
		t.Errorf("suggest provider default = %q, want anthropic", cfg.Suggest.Provider)
	}
}

func TestLoadConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	in := &Config{
		Listen:  Listen{Host: "0.0.0.0", Port: 9000},
		Auth:    Auth{Token: "secret"},
		Log:     Log{Level: "debug"},
		Suggest: Suggest{Provider: "ollama", Model: "llama3"},
		DryRun:  true,
	}
	if err := SaveConfig(path, in); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	out, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if out.Listen.Host != "0.0.0.0" || out.Listen.Port != 9000 {
		t.Errorf("listen = %s:%d, want 0.0.0.0:9000", out.Listen.Host, out.Listen.Port)
	}
	if out.Auth.Token != "secret" || out.Log.Level != "debug" || !out.DryRun {
		t.Errorf("round trip lost fields: %+v", out)
	}
}

func TestLoadConfigInvalidYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("listen: ["), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}

func TestLoadConfigBadPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("listen:\n  port: 70000\n"), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := LoadConfig(path)
	if !errors.Is(err, ErrInvalidPort) {
		t.Fatalf("expected ErrInvalidPort, got %v", err)
	}
}
