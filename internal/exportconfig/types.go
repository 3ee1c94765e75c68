package exportconfig

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"photobook-render/internal/design"
)

// Format is an export output format.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	WebP Format = "webp"
	PDF  Format = "pdf"
)

// ParseFormat normalizes a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "webp":
		return WebP, nil
	case "pdf":
		return PDF, nil
	}
	return "", fmt.Errorf("exportconfig: unknown format %q", s)
}

// Document reports whether f produces one paginated artifact.
func (f Format) Document() bool { return f == PDF }

// Ext is the file extension without the dot.
func (f Format) Ext() string {
	if f == JPEG {
		return "jpg"
	}
	return string(f)
}

// DPIPreset is a selectable output resolution.
type DPIPreset struct {
	Value string  `json:"value"`
	Label string  `json:"label"`
	DPI   float64 `json:"dpi"`
}

// Config is what a product category allows at export time.
type Config struct {
	Category     string               `json:"category"`
	Formats      []Format             `json:"formats"`
	DPIPresets   []DPIPreset          `json:"dpiPresets"`
	DefaultDPI   float64              `json:"defaultDpi"`
	Orientations []design.Orientation `json:"orientations"`
	Bleed        bool                 `json:"bleed"`
}

// Supports reports whether f is offered.
func (c Config) Supports(f Format) bool {
	for _, x := range c.Formats {
		if x == f {
			return true
		}
	}
	return false
}

// Preset looks up a DPI preset by value.
func (c Config) Preset(value string) (DPIPreset, bool) {
	for _, p := range c.DPIPresets {
		if p.Value == value {
			return p, true
		}
	}
	return DPIPreset{}, false
}

// Provider resolves export configuration by category identifier.
type Provider interface {
	Get(ctx context.Context, category string) (Config, error)
}

// ErrUnknownCategory is returned when no configuration exists.
var ErrUnknownCategory = errors.New("exportconfig: unknown category")

// ConfigFetchError means the configuration could not be loaded. It is not
// retried.
type ConfigFetchError struct {
	Category   string
	StatusCode int
	Err        error
}

func (e *ConfigFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("exportconfig: fetch %q: HTTP %d", e.Category, e.StatusCode)
	}
	return fmt.Sprintf("exportconfig: fetch %q: %v", e.Category, e.Err)
}

func (e *ConfigFetchError) Unwrap() error { return e.Err }
