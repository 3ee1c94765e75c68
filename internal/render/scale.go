package render

import (
	"image"

	"golang.org/x/image/draw"
)

// scaleTo resamples src to w×h with CatmullRom. The destination is
// premultiplied RGBA, which keeps transparent edges free of dark halos;
// opacity below 1 is folded into every premultiplied channel.
func scaleTo(src image.Image, w, h int, opacity float64) *image.RGBA {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	if opacity < 1 {
		if opacity < 0 {
			opacity = 0
		}
		for i, v := range dst.Pix {
			dst.Pix[i] = uint8(float64(v)*opacity + 0.5)
		}
	}
	return dst
}
