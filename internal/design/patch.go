package design

// Patch is a partial attribute update for one object. Nil fields are left
// untouched.
type Patch struct {
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Width    *float64 `json:"width,omitempty"`
	Height   *float64 `json:"height,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`

	ContentX      *float64 `json:"contentX,omitempty"`
	ContentY      *float64 `json:"contentY,omitempty"`
	ContentWidth  *float64 `json:"contentWidth,omitempty"`
	ContentHeight *float64 `json:"contentHeight,omitempty"`
}

// F is a helper for building patches.
func F(v float64) *float64 { return &v }

// Empty reports whether p changes nothing.
func (p Patch) Empty() bool {
	return p.X == nil && p.Y == nil && p.Width == nil && p.Height == nil && p.Rotation == nil &&
		p.ContentX == nil && p.ContentY == nil && p.ContentWidth == nil && p.ContentHeight == nil
}

// Apply returns f with p merged in. A content field on a frame without a
// crop window materializes the window from the frame first.
func (p Patch) Apply(f Frame) Frame {
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&f.X, p.X)
	set(&f.Y, p.Y)
	set(&f.Width, p.Width)
	set(&f.Height, p.Height)
	set(&f.Rotation, p.Rotation)

	if p.ContentX != nil || p.ContentY != nil || p.ContentWidth != nil || p.ContentHeight != nil {
		c := f.Window()
		set(&c.X, p.ContentX)
		set(&c.Y, p.ContentY)
		set(&c.Width, p.ContentWidth)
		set(&c.Height, p.ContentHeight)
		f.Content = &c
	}
	return f
}
