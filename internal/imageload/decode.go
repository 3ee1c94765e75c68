package imageload

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"net/http"
	"path"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/webp"
)

// Decode sniffs data and decodes it with the matching codec. TGA has no
// magic number, so it is only chosen by name hint (".tga" suffix).
func Decode(data []byte, nameHint string) (image.Image, error) {
	if strings.EqualFold(path.Ext(nameHint), ".tga") {
		return tga.Decode(bytes.NewReader(data))
	}
	r := bytes.NewReader(data)
	switch ct := http.DetectContentType(data); ct {
	case "image/png":
		return png.Decode(r)
	case "image/jpeg":
		return jpeg.Decode(r)
	case "image/gif":
		return gif.Decode(r)
	case "image/webp":
		return webp.Decode(r)
	default:
		return nil, fmt.Errorf("imageload: unsupported content type %s", ct)
	}
}

// ToNRGBA converts any image to a zero-origin NRGBA.
func ToNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
