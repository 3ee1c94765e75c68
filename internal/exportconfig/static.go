package exportconfig

import (
	"context"
	"fmt"

	"photobook-render/internal/design"
)

// Static is an in-process Provider.
type Static map[string]Config

// Get implements Provider.
func (s Static) Get(_ context.Context, category string) (Config, error) {
	c, ok := s[category]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return c, nil
}

var printPresets = []DPIPreset{
	{Value: "screen", Label: "Screen (96 DPI)", DPI: 96},
	{Value: "standard", Label: "Standard print (150 DPI)", DPI: 150},
	{Value: "high", Label: "High quality print (300 DPI)", DPI: 300},
}

// Defaults is the built-in category table used when no remote endpoint is
// configured.
func Defaults() Static {
	both := []design.Orientation{design.Portrait, design.Landscape}
	return Static{
		"photobook": {
			Category:     "photobook",
			Formats:      []Format{PDF, JPEG, PNG},
			DPIPresets:   printPresets,
			DefaultDPI:   300,
			Orientations: both,
			Bleed:        true,
		},
		"postcard": {
			Category:     "postcard",
			Formats:      []Format{PNG, JPEG, WebP, PDF},
			DPIPresets:   printPresets,
			DefaultDPI:   300,
			Orientations: both,
			Bleed:        true,
		},
		"mobile": {
			Category:     "mobile",
			Formats:      []Format{PNG, JPEG, WebP},
			DPIPresets:   printPresets[:1],
			DefaultDPI:   96,
			Orientations: []design.Orientation{design.Portrait},
		},
	}
}
