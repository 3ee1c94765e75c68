// Package dimension resolves a variant's physical size against a design's
// orientation.
package dimension

import (
	"math"

	"photobook-render/internal/design"
)

// MmPerInch is the millimetre/inch conversion factor.
const MmPerInch = 25.4

// Effective is the physical and editor-pixel size of a design once its
// orientation is applied.
type Effective struct {
	WidthMm  float64
	HeightMm float64
	WidthPx  int
	HeightPx int
}

// Resolve swaps the variant's sides so that a landscape design is wider than
// tall and a portrait one taller than wide. Pixel sizes are in editor DPI.
func Resolve(v design.VariantConfig, o design.Orientation) Effective {
	w, h := v.WidthMm, v.HeightMm
	switch o {
	case design.Landscape:
		if w < h {
			w, h = h, w
		}
	case design.Portrait:
		if w > h {
			w, h = h, w
		}
	}
	return Effective{
		WidthMm:  w,
		HeightMm: h,
		WidthPx:  MmToPx(w, v.EditorDPI),
		HeightPx: MmToPx(h, v.EditorDPI),
	}
}

// MmToPx converts millimetres to whole pixels at dpi.
func MmToPx(mm, dpi float64) int {
	return int(math.Round(mm * dpi / MmPerInch))
}

// BleedPx returns the bleed in (fractional) pixels at dpi.
func BleedPx(v design.VariantConfig) float64 {
	return v.BleedMm * v.EditorDPI / MmPerInch
}
