package design

// Frame is the transformable part of every design object. Coordinates are
// design-space units as authored in the editor.
type Frame struct {
	ID       string  `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"` // degrees, accumulated, never wrapped

	// Content is the visible crop window of oversized media, relative to the
	// frame's top-left. Nil means the window is the frame itself.
	Content *Content `json:"content,omitempty"`
}

// Content is a crop window.
type Content struct {
	X      float64 `json:"contentX"`
	Y      float64 `json:"contentY"`
	Width  float64 `json:"contentWidth"`
	Height float64 `json:"contentHeight"`
}

// Window returns the effective crop window.
func (f Frame) Window() Content {
	if f.Content != nil {
		return *f.Content
	}
	return Content{Width: f.Width, Height: f.Height}
}

// Pannable reports whether the media is larger than the frame on either axis.
func (f Frame) Pannable() bool {
	w := f.Window()
	return w.Width > f.Width || w.Height > f.Height
}

// Kind discriminates design objects.
type Kind string

const (
	KindImage Kind = "image"
	KindText  Kind = "text"
)

// ImageAttrs are the image-only attributes.
type ImageAttrs struct {
	Src   string `json:"src"`
	FlipX bool   `json:"flipX,omitempty"`
	FlipY bool   `json:"flipY,omitempty"`
}

// TextAttrs are the text-only attributes.
type TextAttrs struct {
	Text       string  `json:"text"`
	FontSize   float64 `json:"fontSize"`
	FontFamily string  `json:"fontFamily,omitempty"`
	Color      string  `json:"color,omitempty"`
}

// Object is a design object. Exactly one of Image and Text is set, matching
// Kind.
type Object struct {
	Frame
	Kind    Kind
	Opacity float64
	ZIndex  int

	Image *ImageAttrs
	Text  *TextAttrs
}

// Orientation of a printed design.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// Background is either a solid color or an image reference.
type Background struct {
	Color string `json:"color,omitempty"`
	Image string `json:"image,omitempty"`
}

// Design is one page/card of a product.
type Design struct {
	ID          string      `json:"id"`
	Objects     []Object    `json:"objects"`
	Background  Background  `json:"background"`
	Orientation Orientation `json:"orientation"`
	Quantity    int         `json:"quantity,omitempty"`
}

// VariantConfig is the physical product the designs are printed on.
type VariantConfig struct {
	WidthMm   float64 `json:"widthMm"`
	HeightMm  float64 `json:"heightMm"`
	BleedMm   float64 `json:"bleedMm"`
	EditorDPI float64 `json:"editorDpi"`
}
