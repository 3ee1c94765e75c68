package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadJSONAndYAML(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "config.json")
	yamlPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(jsonPath, []byte(`{"format":"pdf","target_dpi":150,"redis_addr":"localhost:6379"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(yamlPath, []byte("format: pdf\ntarget_dpi: 150\nredis_addr: localhost:6379\n"), 0644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{jsonPath, yamlPath} {
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s): %v", path, err)
		}
		if cfg.Format != "pdf" || cfg.TargetDPI != 150 || cfg.RedisAddr != "localhost:6379" {
			t.Fatalf("Load(%s) = %+v", path, cfg)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected read error")
	}
	bad := filepath.Join(t.TempDir(), "bad.json")
	_ = os.WriteFile(bad, []byte("{"), 0644)
	if _, err := Load(bad); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestResolveDefaults(t *testing.T) {
	var cfg Config
	cfg.Resolve(Flags{BaseDir: "/data"})
	if cfg.Format != "png" || cfg.TargetDPI != 300 || cfg.Quality != 95 || cfg.Workers != 1 {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.Pacing() != 300*time.Millisecond {
		t.Fatalf("pacing = %v", cfg.Pacing())
	}
	if cfg.OutputDir != filepath.Join("/data", "exports") {
		t.Fatalf("output = %s", cfg.OutputDir)
	}
}

func TestResolveFlagsOverride(t *testing.T) {
	cfg := Config{Format: "png", OutputDir: "out", FontDir: "fonts", Workers: 2, PacingMs: -1}
	cfg.Resolve(Flags{BaseDir: "/data", Format: "webp", Workers: 4, IncludeBleed: true})
	if cfg.Format != "webp" || cfg.Workers != 4 || !cfg.IncludeBleed {
		t.Fatalf("flags not applied: %+v", cfg)
	}
	if cfg.OutputDir != filepath.Join("/data", "out") || cfg.FontDir != filepath.Join("/data", "fonts") {
		t.Fatalf("paths not resolved: %+v", cfg)
	}
	if cfg.Pacing() != 0 {
		t.Fatalf("negative pacing should disable pauses, got %v", cfg.Pacing())
	}
}
