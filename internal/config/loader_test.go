package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConf(t *testing.T, body string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "conf"), 0o755); err != nil {
		t.Fatal(err)
	}
	if body != "" {
		if err := os.WriteFile(filepath.Join(root, "conf", "informer.yaml"), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestLoad_YAMLAndEnvOverlay(t *testing.T) {
	root := writeConf(t, `
dashboard:
  base_url: http://dash.local:9000
  request_timeout: 5s
registry:
  manifests: true
`)
	t.Setenv("INFORMER_ROOT", root)
	t.Setenv("INFORMER_HTTP__LISTEN_ADDR", "0.0.0.0:9999")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTP.ListenAddr != "0.0.0.0:9999" {
		t.Fatalf("listen_addr = %q", cfg.HTTP.ListenAddr)
	}
	if cfg.Dashboard.BaseURL != "http://dash.local:9000" {
		t.Fatalf("base_url = %q", cfg.Dashboard.BaseURL)
	}
	if cfg.Dashboard.RequestTimeout != 5*time.Second {
		t.Fatalf("request_timeout = %v", cfg.Dashboard.RequestTimeout)
	}
	if !cfg.Registry.Manifests || cfg.Registry.Suffix != ".js" {
		t.Fatalf("registry = %+v", cfg.Registry)
	}
	if cfg.Paths.Root != root {
		t.Fatalf("root = %q", cfg.Paths.Root)
	}
	if Get() != cfg {
		t.Fatalf("Get did not return the cached config")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("INFORMER_ROOT", writeConf(t, ""))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Registry.BasePath != "/static/widgets" {
		t.Fatalf("base_path = %q", cfg.Registry.BasePath)
	}
}

func TestLoad_ValidationFails(t *testing.T) {
	t.Setenv("INFORMER_ROOT", writeConf(t, "registry:\n  base_path: widgets\n"))

	if _, err := Load(); err == nil {
		t.Fatalf("expected validation error for relative base_path")
	}
}
