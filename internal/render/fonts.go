package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultFamily is used for empty or unknown font families.
const DefaultFamily = "go"

var builtinFonts = map[string][]byte{
	"go":         goregular.TTF,
	"sans-serif": goregular.TTF,
	"sans":       goregular.TTF,
	"bold":       gobold.TTF,
	"italic":     goitalic.TTF,
	"monospace":  gomono.TTF,
	"mono":       gomono.TTF,
}

// Fonts resolves font families to faces. Families are looked up first in
// an optional directory of .ttf files (by lowercase file stem), then among
// the built-in Go fonts. Parsed fonts are cached.
type Fonts struct {
	mu    sync.RWMutex
	paths map[string]string // stem.lower() → full path
	fonts map[string]*truetype.Font
}

// NewFonts indexes dir (may be empty) for .ttf files.
func NewFonts(dir string) *Fonts {
	f := &Fonts{
		paths: make(map[string]string),
		fonts: make(map[string]*truetype.Font),
	}
	if dir == "" {
		return f
	}
	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if strings.ToLower(filepath.Ext(path)) != ".ttf" {
			return nil
		}
		stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		if _, exists := f.paths[stem]; !exists {
			f.paths[stem] = path
		}
		return nil
	})
	return f
}

// Len returns the number of indexed font files.
func (f *Fonts) Len() int {
	return len(f.paths)
}

// normalizeFamily takes the first entry of a CSS font-family list.
func normalizeFamily(family string) string {
	first, _, _ := strings.Cut(family, ",")
	first = strings.Trim(strings.TrimSpace(first), `"'`)
	return strings.ToLower(first)
}

// Face returns a new face for family at size pixels. Faces keep glyph
// caches and are not safe for concurrent use, so callers own the result;
// the parsed font behind it is shared.
func (f *Fonts) Face(family string, size float64) (font.Face, error) {
	tt, err := f.font(normalizeFamily(family))
	if err != nil {
		return nil, err
	}
	// DPI 72 makes one point one pixel, matching CSS px font sizes.
	return truetype.NewFace(tt, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull}), nil
}

func (f *Fonts) font(family string) (*truetype.Font, error) {
	f.mu.RLock()
	if tt, ok := f.fonts[family]; ok {
		f.mu.RUnlock()
		return tt, nil
	}
	f.mu.RUnlock()

	var data []byte
	if path, ok := f.paths[family]; ok {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("render: read font %s: %w", path, err)
		}
		data = raw
	} else if raw, ok := builtinFonts[family]; ok {
		data = raw
	} else {
		data = builtinFonts[DefaultFamily]
	}

	tt, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("render: parse font %q: %w", family, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.fonts[family]; ok {
		return existing, nil
	}
	f.fonts[family] = tt
	return tt, nil
}
