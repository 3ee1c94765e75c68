// Package render composites a design onto a raster surface at a target
// print resolution.
package render

import (
	"context"
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"photobook-render/internal/design"
	"photobook-render/internal/dimension"
	"photobook-render/internal/imageload"
	"photobook-render/internal/logger"
	"photobook-render/internal/mathutil"
)

// Options select the output resolution.
type Options struct {
	TargetDPI    float64
	IncludeBleed bool
}

// Surface is a composited design.
type Surface struct {
	Image       *image.RGBA
	Effective   dimension.Effective
	DPIRatio    float64
	BleedOffset float64 // canvas pixels from the edge to the trim box
}

// Compositor renders designs. It is safe for concurrent use as long as the
// Loader is.
type Compositor struct {
	Loader imageload.Loader
	Fonts  *Fonts
	Log    *logger.Logger
}

// NewCompositor returns a compositor using loader for images and fonts for
// text. fonts may be nil.
func NewCompositor(loader imageload.Loader, fonts *Fonts, log *logger.Logger) *Compositor {
	if fonts == nil {
		fonts = NewFonts("")
	}
	return &Compositor{Loader: loader, Fonts: fonts, Log: logger.OrNop(log)}
}

// Geometry computes the canvas size, dpi ratio and bleed offset for a
// design without rendering it.
func Geometry(v design.VariantConfig, o design.Orientation, opts Options) (w, h int, ratio, offset float64, eff dimension.Effective) {
	eff = dimension.Resolve(v, o)
	ratio = 1
	if v.EditorDPI > 0 && opts.TargetDPI > 0 {
		ratio = opts.TargetDPI / v.EditorDPI
	}
	bleed := 0.0
	if opts.IncludeBleed {
		bleed = dimension.BleedPx(v)
	}
	w = int(math.Round((float64(eff.WidthPx) + 2*bleed) * ratio))
	h = int(math.Round((float64(eff.HeightPx) + 2*bleed) * ratio))
	return w, h, ratio, bleed * ratio, eff
}

// Render composites d. Image objects that fail to load are logged and
// skipped; the rest of the design is still drawn.
func (c *Compositor) Render(ctx context.Context, d design.Design, v design.VariantConfig, opts Options) (*Surface, error) {
	w, h, ratio, offset, eff := Geometry(v, d.Orientation, opts)
	log := c.log().With("design", d.ID)

	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()
	c.paintBackground(ctx, dc, d.Background, log)

	objects := make([]design.Object, len(d.Objects))
	copy(objects, d.Objects)
	sort.SliceStable(objects, func(i, j int) bool { return objects[i].ZIndex < objects[j].ZIndex })

	faces := map[faceKey]font.Face{}
	for _, o := range objects {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch o.Kind {
		case design.KindImage:
			c.paintImage(ctx, dc, o, ratio, offset, log)
		case design.KindText:
			c.paintText(dc, o, ratio, offset, faces, log)
		}
	}

	return &Surface{
		Image:       dc.Image().(*image.RGBA),
		Effective:   eff,
		DPIRatio:    ratio,
		BleedOffset: offset,
	}, nil
}

type faceKey struct {
	family string
	size   float64
}

func (c *Compositor) paintBackground(ctx context.Context, dc *gg.Context, bg design.Background, log *logger.Logger) {
	if bg.Image != "" && c.Loader != nil {
		img, err := c.Loader.Load(ctx, bg.Image)
		if err == nil {
			dc.DrawImage(scaleTo(img, dc.Width(), dc.Height(), 1), 0, 0)
			return
		}
		log.Warn("background image skipped", "ref", bg.Image, "error", err)
	}
	if bg.Color == "" {
		return
	}
	col, err := ParseColor(bg.Color)
	if err != nil {
		log.Warn("background color ignored", "color", bg.Color, "error", err)
		return
	}
	dc.SetColor(col)
	dc.DrawRectangle(0, 0, float64(dc.Width()), float64(dc.Height()))
	dc.Fill()
}

// place moves the origin to the object's top-left and rotates about its
// centre. It returns the object's scaled size.
func place(dc *gg.Context, f design.Frame, ratio, offset float64) (w, h float64) {
	w, h = f.Width*ratio, f.Height*ratio
	dc.Translate(f.X*ratio+offset, f.Y*ratio+offset)
	if f.Rotation != 0 {
		dc.RotateAbout(mathutil.Deg2Rad(f.Rotation), w/2, h/2)
	}
	return w, h
}

func (c *Compositor) paintImage(ctx context.Context, dc *gg.Context, o design.Object, ratio, offset float64, log *logger.Logger) {
	if o.Image == nil || o.Image.Src == "" || c.Loader == nil {
		return
	}
	src, err := c.Loader.Load(ctx, o.Image.Src)
	if err != nil {
		log.Warn("image object skipped", "object", o.ID, "ref", o.Image.Src, "error", err)
		return
	}

	dc.Push()
	defer dc.Pop()

	w, h := place(dc, o.Frame, ratio, offset)
	dc.DrawRectangle(0, 0, w, h)
	dc.Clip()

	win := o.Window()
	cx, cy := win.X*ratio, win.Y*ratio
	cw, ch := win.Width*ratio, win.Height*ratio
	if o.Image.FlipX || o.Image.FlipY {
		sx, sy := 1.0, 1.0
		if o.Image.FlipX {
			sx = -1
			cx = w - cx - cw
		}
		if o.Image.FlipY {
			sy = -1
			cy = h - cy - ch
		}
		dc.ScaleAbout(sx, sy, w/2, h/2)
	}

	scaled := scaleTo(src, int(math.Round(cw)), int(math.Round(ch)), o.Opacity)
	dc.Translate(cx, cy)
	dc.DrawImage(scaled, 0, 0)
}

func (c *Compositor) paintText(dc *gg.Context, o design.Object, ratio, offset float64, faces map[faceKey]font.Face, log *logger.Logger) {
	t := o.Text
	if t == nil || t.Text == "" || t.FontSize <= 0 {
		return
	}
	key := faceKey{t.FontFamily, t.FontSize * ratio}
	face, ok := faces[key]
	if !ok {
		var err error
		if face, err = c.Fonts.Face(key.family, key.size); err != nil {
			log.Warn("text object skipped", "object", o.ID, "font", t.FontFamily, "error", err)
			return
		}
		faces[key] = face
	}

	col := color.NRGBA{A: 255}
	if t.Color != "" {
		parsed, err := ParseColor(t.Color)
		if err != nil {
			log.Warn("text color ignored", "object", o.ID, "color", t.Color, "error", err)
		} else {
			col = parsed
		}
	}

	dc.Push()
	defer dc.Pop()

	place(dc, o.Frame, ratio, offset)
	dc.SetFontFace(face)
	dc.SetColor(withOpacity(col, o.Opacity))
	// Top baseline: the ascent sits at the frame's top edge.
	ascent := float64(face.Metrics().Ascent) / 64
	dc.DrawString(t.Text, 0, ascent)
}

func (c *Compositor) log() *logger.Logger {
	if c.Log == nil {
		return logger.Nop()
	}
	return c.Log
}
