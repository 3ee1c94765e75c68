// Package transform holds the move/rotate/resize/pan math applied to design
// objects and the drag gestures that drive it.
package transform

import (
	"math"

	"photobook-render/internal/design"
	"photobook-render/internal/mathutil"
)

// Minimum frame sizes after a resize.
const (
	MinCornerSize = 50
	MinEdgeSize   = 20
)

// Handle names a resize grip.
type Handle string

const (
	NW Handle = "nw"
	NE Handle = "ne"
	SW Handle = "sw"
	SE Handle = "se"
	N  Handle = "n"
	S  Handle = "s"
	E  Handle = "e"
	W  Handle = "w"
)

// sides returns which frame sides the handle drags: sx is -1 for west,
// +1 for east, sy is -1 for north, +1 for south, 0 when untouched.
func (h Handle) sides() (sx, sy float64, ok bool) {
	switch h {
	case NW:
		return -1, -1, true
	case NE:
		return 1, -1, true
	case SW:
		return -1, 1, true
	case SE:
		return 1, 1, true
	case N:
		return 0, -1, true
	case S:
		return 0, 1, true
	case E:
		return 1, 0, true
	case W:
		return -1, 0, true
	}
	return 0, 0, false
}

// Corner reports whether h is a corner grip.
func (h Handle) Corner() bool {
	sx, sy, ok := h.sides()
	return ok && sx != 0 && sy != 0
}

// Move offsets the start position by delta.
func Move(start design.Frame, delta mathutil.Vec2) design.Patch {
	return design.Patch{
		X: design.F(mathutil.Round(start.X + delta.X)),
		Y: design.F(mathutil.Round(start.Y + delta.Y)),
	}
}

// Rotate adds an accumulated angular sweep (degrees) to the start rotation.
// The result is not wrapped into [0, 360).
func Rotate(startRotation, sweep float64) design.Patch {
	return design.Patch{Rotation: design.F(mathutil.Round(startRotation + sweep))}
}

// Resize applies a drag of handle h by delta (design units, screen axes) to
// the start frame. ok is false for an unknown handle or a degenerate frame.
func Resize(start design.Frame, h Handle, delta mathutil.Vec2) (design.Patch, bool) {
	sx, sy, ok := h.sides()
	if !ok || start.Width <= 0 || start.Height <= 0 {
		return design.Patch{}, false
	}
	d := mathutil.ToLocal(delta, start.Rotation)
	if sx != 0 && sy != 0 {
		return resizeCorner(start, sx, sy, d), true
	}
	return resizeEdge(start, sx, sy, d), true
}

func resizeCorner(start design.Frame, sx, sy float64, d mathutil.Vec2) design.Patch {
	ratio := start.Width / start.Height

	w := start.Width + sx*d.X
	minW := math.Max(MinCornerSize, MinCornerSize*ratio)
	if w < minW {
		w = minW
	}
	h := w / ratio

	x, y := anchored(start, w, h, -sx, -sy)
	p := design.Patch{
		X:      design.F(mathutil.Round(x)),
		Y:      design.F(mathutil.Round(y)),
		Width:  design.F(mathutil.Round(w)),
		Height: design.F(mathutil.Round(h)),
	}
	if c := start.Content; c != nil {
		sf := w / start.Width
		p.ContentX = design.F(mathutil.Round(c.X * sf))
		p.ContentY = design.F(mathutil.Round(c.Y * sf))
		p.ContentWidth = design.F(mathutil.Round(c.Width * sf))
		p.ContentHeight = design.F(mathutil.Round(c.Height * sf))
	}
	return p
}

func resizeEdge(start design.Frame, sx, sy float64, d mathutil.Vec2) design.Patch {
	win := start.Window()
	cropped := start.Content != nil
	w, h := start.Width, start.Height
	var p design.Patch

	if sx != 0 {
		var off float64
		w, off = edgeAxis(start.Width, win.X, win.Width, cropped, sx, d.X)
		if cropped && sx < 0 {
			p.ContentX = design.F(mathutil.Round(off))
		}
		p.Width = design.F(mathutil.Round(w))
	} else {
		var off float64
		h, off = edgeAxis(start.Height, win.Y, win.Height, cropped, sy, d.Y)
		if cropped && sy < 0 {
			p.ContentY = design.F(mathutil.Round(off))
		}
		p.Height = design.F(mathutil.Round(h))
	}

	x, y := anchored(start, w, h, -sx, -sy)
	p.X = design.F(mathutil.Round(x))
	p.Y = design.F(mathutil.Round(y))
	return p
}

// edgeAxis resizes one axis from a single edge. side is +1 for the far edge
// (east/south) and -1 for the near edge (west/north). It returns the new
// extent and the new crop offset on that axis.
func edgeAxis(extent, offset, content float64, cropped bool, side, delta float64) (float64, float64) {
	if side > 0 {
		hi := math.Inf(1)
		if cropped {
			hi = offset + content
		}
		return mathutil.Clamp(extent+delta, MinEdgeSize, hi), offset
	}
	lo := math.Inf(-1)
	if cropped {
		lo = offset
	}
	dd := mathutil.Clamp(delta, lo, extent-MinEdgeSize)
	return extent - dd, offset - dd
}

// anchored returns the new top-left for a frame resized to w×h such that the
// point at local (ax, ay) (each in {-1,0,1}, relative to the centre) stays at
// the same world position under the frame's rotation about its centre.
func anchored(start design.Frame, w, h, ax, ay float64) (float64, float64) {
	c0 := mathutil.Vec2{X: start.X + start.Width/2, Y: start.Y + start.Height/2}
	a0 := mathutil.Vec2{X: ax * start.Width / 2, Y: ay * start.Height / 2}
	world := c0.Add(mathutil.ToWorld(a0, start.Rotation))

	a1 := mathutil.Vec2{X: ax * w / 2, Y: ay * h / 2}
	c1 := world.Sub(mathutil.ToWorld(a1, start.Rotation))
	return c1.X - w/2, c1.Y - h/2
}

// Pan moves the crop window of oversized media. ok is false when the media
// fits the frame on both axes.
func Pan(start design.Frame, delta mathutil.Vec2) (design.Patch, bool) {
	if !start.Pannable() {
		return design.Patch{}, false
	}
	win := start.Window()
	d := mathutil.ToLocal(delta, start.Rotation)

	cx, cy := win.X, win.Y
	if win.Width > start.Width {
		cx = mathutil.Clamp(mathutil.Round(win.X+d.X), math.Ceil(start.Width-win.Width), 0)
	}
	if win.Height > start.Height {
		cy = mathutil.Clamp(mathutil.Round(win.Y+d.Y), math.Ceil(start.Height-win.Height), 0)
	}
	return design.Patch{ContentX: design.F(cx), ContentY: design.F(cy)}, true
}
