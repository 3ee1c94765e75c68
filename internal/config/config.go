package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configurable paths, service endpoints and export settings.
type Config struct {
	// Paths
	BaseDir   string `json:"base_dir" yaml:"base_dir"`
	OutputDir string `json:"output_dir" yaml:"output_dir"`
	FontDir   string `json:"font_dir" yaml:"font_dir"`

	// Export settings
	Format       string  `json:"format" yaml:"format"`
	TargetDPI    float64 `json:"target_dpi" yaml:"target_dpi"`
	IncludeBleed bool    `json:"include_bleed" yaml:"include_bleed"`
	Quality      int     `json:"quality" yaml:"quality"`
	Workers      int     `json:"workers" yaml:"workers"`
	PacingMs     int     `json:"pacing_ms" yaml:"pacing_ms"`

	// Image fetching
	ProxyURL  string `json:"proxy_url" yaml:"proxy_url"`
	ProxyHost string `json:"proxy_host" yaml:"proxy_host"`
	AppOrigin string `json:"app_origin" yaml:"app_origin"`
	Token     string `json:"token" yaml:"token"`

	// Export configuration service; built-in defaults when empty.
	ConfigEndpoint string `json:"config_endpoint" yaml:"config_endpoint"`

	// Shared image cache; disabled when RedisAddr is empty.
	RedisAddr     string `json:"redis_addr" yaml:"redis_addr"`
	RedisPassword string `json:"redis_password" yaml:"redis_password"`
	RedisDB       int    `json:"redis_db" yaml:"redis_db"`

	LogMode    string `json:"log_mode" yaml:"log_mode"`
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`
}

// Load reads a JSON or YAML config file, chosen by extension.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.BaseDir != "" {
		c.BaseDir = flags.BaseDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.TargetDPI > 0 {
		c.TargetDPI = flags.TargetDPI
	}
	if flags.IncludeBleed {
		c.IncludeBleed = true
	}
	if flags.Quality > 0 {
		c.Quality = flags.Quality
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.ConfigEndpoint != "" {
		c.ConfigEndpoint = flags.ConfigEndpoint
	}
	if flags.RedisAddr != "" {
		c.RedisAddr = flags.RedisAddr
	}
	if flags.ListenAddr != "" {
		c.ListenAddr = flags.ListenAddr
	}
	if c.Token == "" {
		c.Token = os.Getenv("PHOTOBOOK_TOKEN")
	}

	// Base dir defaults to the working directory
	if c.BaseDir == "" {
		c.BaseDir, _ = os.Getwd()
	}

	// Resolve relative paths against base dir
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(c.BaseDir, "exports")
	} else if !filepath.IsAbs(c.OutputDir) {
		c.OutputDir = filepath.Join(c.BaseDir, c.OutputDir)
	}
	if c.FontDir != "" && !filepath.IsAbs(c.FontDir) {
		c.FontDir = filepath.Join(c.BaseDir, c.FontDir)
	}

	// Defaults for export settings
	if c.Format == "" {
		c.Format = "png"
	}
	if c.TargetDPI <= 0 {
		c.TargetDPI = 300
	}
	if c.Quality <= 0 || c.Quality > 100 {
		c.Quality = 95
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.PacingMs < 0 {
		c.PacingMs = 0
	} else if c.PacingMs == 0 {
		c.PacingMs = 300
	}
	if c.LogMode == "" {
		c.LogMode = "dev"
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
}

// Pacing is the pause between image artifacts.
func (c Config) Pacing() time.Duration {
	return time.Duration(c.PacingMs) * time.Millisecond
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	BaseDir        string
	OutputDir      string
	Format         string
	TargetDPI      float64
	IncludeBleed   bool
	Quality        int
	Workers        int
	ConfigEndpoint string
	RedisAddr      string
	ListenAddr     string
}
