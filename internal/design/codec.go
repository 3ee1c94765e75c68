package design

import (
	"encoding/json"
	"fmt"
)

// wireObject is the flat JSON shape the editor stores.
type wireObject struct {
	Frame
	Kind    Kind     `json:"kind"`
	Opacity *float64 `json:"opacity,omitempty"`
	ZIndex  int      `json:"zIndex"`

	Src   string `json:"src,omitempty"`
	FlipX bool   `json:"flipX,omitempty"`
	FlipY bool   `json:"flipY,omitempty"`

	Text       string  `json:"text,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`
	Color      string  `json:"color,omitempty"`
}

// UnmarshalJSON decodes the flat editor record into the variant matching its
// kind. Opacity defaults to 1.
func (o *Object) UnmarshalJSON(data []byte) error {
	var w wireObject
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	obj := Object{Frame: w.Frame, Kind: w.Kind, ZIndex: w.ZIndex, Opacity: 1}
	if w.Opacity != nil {
		obj.Opacity = *w.Opacity
	}
	switch w.Kind {
	case KindImage:
		obj.Image = &ImageAttrs{Src: w.Src, FlipX: w.FlipX, FlipY: w.FlipY}
	case KindText:
		obj.Text = &TextAttrs{Text: w.Text, FontSize: w.FontSize, FontFamily: w.FontFamily, Color: w.Color}
	default:
		return fmt.Errorf("design: object %q: unknown kind %q", w.ID, w.Kind)
	}
	*o = obj
	return nil
}

// MarshalJSON writes the flat editor record.
func (o Object) MarshalJSON() ([]byte, error) {
	op := o.Opacity
	w := wireObject{Frame: o.Frame, Kind: o.Kind, Opacity: &op, ZIndex: o.ZIndex}
	if o.Image != nil {
		w.Src, w.FlipX, w.FlipY = o.Image.Src, o.Image.FlipX, o.Image.FlipY
	}
	if o.Text != nil {
		w.Text, w.FontSize, w.FontFamily, w.Color = o.Text.Text, o.Text.FontSize, o.Text.FontFamily, o.Text.Color
	}
	return json.Marshal(w)
}

// Set is the on-disk shape of an export request: one variant, many designs.
type Set struct {
	Name     string        `json:"name"`
	Category string        `json:"category,omitempty"`
	Variant  VariantConfig `json:"variant"`
	Designs  []Design      `json:"designs"`
}

// ParseSet decodes a design set.
func ParseSet(data []byte) (Set, error) {
	var s Set
	if err := json.Unmarshal(data, &s); err != nil {
		return Set{}, fmt.Errorf("design: parse set: %w", err)
	}
	return s, nil
}
