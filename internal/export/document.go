package export

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"io"

	"github.com/go-pdf/fpdf"

	"photobook-render/internal/design"
	"photobook-render/internal/render"
)

// PageFor is the physical page of a design: its effective trim size plus
// bleed on every side when requested.
func PageFor(s *render.Surface, v design.VariantConfig, includeBleed bool) PageSize {
	w, h := s.Effective.WidthMm, s.Effective.HeightMm
	if includeBleed {
		w += 2 * v.BleedMm
		h += 2 * v.BleedMm
	}
	return PageSize{WidthMm: w, HeightMm: h}
}

// pageFormat picks the fpdf orientation from the page's aspect. fpdf swaps
// the size for "L", so the size is always passed short side first.
func pageFormat(p PageSize) (string, fpdf.SizeType) {
	short, long := p.WidthMm, p.HeightMm
	if short > long {
		short, long = long, short
	}
	orientation := "P"
	if p.WidthMm > p.HeightMm {
		orientation = "L"
	}
	return orientation, fpdf.SizeType{Wd: short, Ht: long}
}

func (p *Pipeline) exportDocument(ctx context.Context, designs []design.Design, v design.VariantConfig, opts Options, out Output, progress Progress, res *Result) error {
	total := len(designs)
	var doc *fpdf.Fpdf
	art := Artifact{Name: ArtifactName(opts.Basename, 0, 1, opts.Format), Format: opts.Format}

	err := p.renderInOrder(ctx, designs, v, opts, func(i int, s *render.Surface) error {
		page := PageFor(s, v, opts.IncludeBleed)
		orientation, size := pageFormat(page)
		if doc == nil {
			doc = fpdf.NewCustom(&fpdf.InitType{OrientationStr: orientation, UnitStr: "mm", Size: size})
			doc.SetMargins(0, 0, 0)
			doc.SetAutoPageBreak(false, 0)
			doc.SetCreator("photobook-render", true)
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, s.Image, &jpeg.Options{Quality: opts.Quality}); err != nil {
			return &ExportError{Unit: i + 1, DesignID: designs[i].ID, Err: err}
		}
		name := fmt.Sprintf("page-%d", i+1)
		imgOpts := fpdf.ImageOptions{ImageType: "JPG"}
		doc.RegisterImageOptionsReader(name, imgOpts, &buf)
		doc.AddPageFormat(orientation, size)
		doc.ImageOptions(name, 0, 0, page.WidthMm, page.HeightMm, false, imgOpts, 0, "")
		if err := doc.Error(); err != nil {
			return &ExportError{Unit: i + 1, DesignID: designs[i].ID, Err: err}
		}

		art.Pages = append(art.Pages, page)
		art.DesignIDs = append(art.DesignIDs, designs[i].ID)
		progress(i+1, total)
		return nil
	})
	if err != nil {
		return err
	}

	n, err := writeArtifact(out, art.Name, func(w io.Writer) error { return doc.Output(w) })
	if err != nil {
		return err
	}
	art.Bytes = n
	res.Artifacts = append(res.Artifacts, art)
	return nil
}
