package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	p := writeConfig(t, `server: {}
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != DefaultHTTPPort {
		t.Errorf("http_port: got %d, want %d", cfg.Server.HTTPPort, DefaultHTTPPort)
	}
	if cfg.Server.BroadcastInterval != DefaultBroadcastInterval {
		t.Errorf("broadcast_interval: got %v, want %v", cfg.Server.BroadcastInterval, DefaultBroadcastInterval)
	}
	if cfg.Server.Notify.Floor != DefaultNotifyFloor {
		t.Errorf("notify.floor: got %q, want %q", cfg.Server.Notify.Floor, DefaultNotifyFloor)
	}
	if cfg.Server.Notify.Cooldown != DefaultNotifyCooldown {
		t.Errorf("notify.cooldown: got %v, want %v", cfg.Server.Notify.Cooldown, DefaultNotifyCooldown)
	}
}

func TestLoad_Full(t *testing.T) {
	p := writeConfig(t, `server:
  http_port: 9091
  auth:
    mode: apikey
    key_env: ARENA_KEY
    header: x-arena-key
  broadcast_interval: 2s
  notify:
    floor: suspicious
    cooldown: 5m
    webhooks:
      - type: slack
        url_env: SLACK_HOOK
      - type: http
        url_env: GENERIC_HOOK
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != 9091 {
		t.Errorf("http_port = %d", cfg.Server.HTTPPort)
	}
	if cfg.Server.Auth.Mode != "apikey" || cfg.Server.Auth.EffectiveHeader() != "x-arena-key" {
		t.Errorf("auth = %+v", cfg.Server.Auth)
	}
	if cfg.Server.BroadcastInterval != 2*time.Second {
		t.Errorf("broadcast_interval = %v", cfg.Server.BroadcastInterval)
	}
	if cfg.Server.Notify.Floor != "suspicious" || cfg.Server.Notify.Cooldown != 5*time.Minute {
		t.Errorf("notify = %+v", cfg.Server.Notify)
	}
	if len(cfg.Server.Notify.Webhooks) != 2 || cfg.Server.Notify.Webhooks[0].Type != "slack" {
		t.Errorf("webhooks = %+v", cfg.Server.Notify.Webhooks)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad port", "server:\n  http_port: -1\n"},
		{"bad auth mode", "server:\n  auth:\n    mode: oauth\n"},
		{"bad notify floor", "server:\n  notify:\n    floor: normal\n"},
		{"bad webhook type", "server:\n  notify:\n    webhooks:\n      - type: pigeon\n"},
		{"broken yaml", "server: [\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := writeConfig(t, tc.content)
			if _, err := Load(p); err == nil {
				t.Error("Load accepted invalid config")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load accepted a missing file")
	}
}

// startWatch runs Watch in the background and returns a channel of
// applied configs.
func startWatch(t *testing.T, path string) <-chan *Config {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	applied := make(chan *Config, 4)
	go func() {
		if err := Watch(ctx, path, func(c *Config) { applied <- c }); err != nil {
			t.Errorf("Watch: %v", err)
		}
	}()
	// Let the watcher arm before the test touches the file.
	time.Sleep(100 * time.Millisecond)
	return applied
}

func TestWatch_AppliesReloadOnWrite(t *testing.T) {
	p := writeConfig(t, "server:\n  http_port: 8080\n")
	applied := startWatch(t, p)

	if err := os.WriteFile(p, []byte("server:\n  http_port: 9090\n"), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case cfg := <-applied:
		if cfg.Server.HTTPPort != 9090 {
			t.Errorf("http_port after reload = %d, want 9090", cfg.Server.HTTPPort)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload observed after write")
	}
}

func TestWatch_KeepsPreviousOnInvalidConfig(t *testing.T) {
	p := writeConfig(t, "server:\n  http_port: 8080\n")
	applied := startWatch(t, p)

	if err := os.WriteFile(p, []byte("server:\n  http_port: -1\n"), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	// The invalid write must not be applied.
	select {
	case cfg := <-applied:
		t.Fatalf("invalid config was applied: %+v", cfg)
	case <-time.After(500 * time.Millisecond):
	}

	// A following valid write still reloads.
	if err := os.WriteFile(p, []byte("server:\n  http_port: 9191\n"), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	select {
	case cfg := <-applied:
		if cfg.Server.HTTPPort != 9191 {
			t.Errorf("http_port after recovery = %d, want 9191", cfg.Server.HTTPPort)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload observed after the config was fixed")
	}
}

func TestAuthConfig_KeyFromEnv(t *testing.T) {
	t.Setenv("ARENA_TEST_KEY", "s3cret")
	a := AuthConfig{Mode: "apikey", KeyEnv: "ARENA_TEST_KEY"}
	if a.Key() != "s3cret" {
		t.Errorf("Key() = %q", a.Key())
	}
	if (AuthConfig{}).Key() != "" {
		t.Error("empty KeyEnv should resolve to empty key")
	}
	if (AuthConfig{}).EffectiveHeader() != "x-api-key" {
		t.Errorf("default header = %q", (AuthConfig{}).EffectiveHeader())
	}
}
