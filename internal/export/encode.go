package export

import (
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/HugoSmits86/nativewebp"

	"photobook-render/internal/exportconfig"
)

type encoder func(w io.Writer, img image.Image, quality int) error

var encoders = map[exportconfig.Format]encoder{
	exportconfig.PNG: func(w io.Writer, img image.Image, _ int) error {
		return png.Encode(w, img)
	},
	exportconfig.JPEG: func(w io.Writer, img image.Image, quality int) error {
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	},
	// nativewebp is lossless; quality does not apply.
	exportconfig.WebP: func(w io.Writer, img image.Image, _ int) error {
		return nativewebp.Encode(w, img, nil)
	},
}
