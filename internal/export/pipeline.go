// Package export turns designs into output artifacts: one image file per
// design or a single paginated PDF.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"photobook-render/internal/design"
	"photobook-render/internal/exportconfig"
	"photobook-render/internal/logger"
	"photobook-render/internal/render"
)

var (
	// ErrNoDesigns is returned before any rendering when the input is empty.
	ErrNoDesigns = errors.New("export: no designs to export")
	// ErrUnsupportedFormat is returned for formats the pipeline cannot write
	// or the category does not offer.
	ErrUnsupportedFormat = errors.New("export: unsupported format")
)

// ExportError reports the unit that aborted an export. No artifact from the
// run is kept.
type ExportError struct {
	Unit     int // 1-based
	DesignID string
	Err      error
}

func (e *ExportError) Error() string {
	if e.Unit == 0 {
		return fmt.Sprintf("export: %v", e.Err)
	}
	return fmt.Sprintf("export: design %d (%s): %v", e.Unit, e.DesignID, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// DefaultPacing spaces out sequential image artifacts.
const DefaultPacing = 300 * time.Millisecond

// Options control one export run.
type Options struct {
	Format       exportconfig.Format
	TargetDPI    float64
	IncludeBleed bool
	// Basename names the artifacts; "design" when empty.
	Basename string
	// Quality is the JPEG quality used for jpeg artifacts and PDF pages.
	Quality int
	// Pacing is the pause between image artifacts.
	Pacing time.Duration
	// Workers > 1 renders that many designs ahead concurrently. Artifacts
	// and progress still follow input order.
	Workers int
}

// WithConfig validates o against a category's export configuration and
// fills the default DPI.
func (o Options) WithConfig(cfg exportconfig.Config) (Options, error) {
	if len(cfg.Formats) > 0 && !cfg.Supports(o.Format) {
		return o, fmt.Errorf("%w: %q not offered for %s", ErrUnsupportedFormat, o.Format, cfg.Category)
	}
	if o.IncludeBleed && !cfg.Bleed {
		o.IncludeBleed = false
	}
	if o.TargetDPI <= 0 {
		o.TargetDPI = cfg.DefaultDPI
	}
	return o, nil
}

// Progress is called with 1-based completed units.
type Progress func(current, total int)

// Renderer composites one design.
type Renderer interface {
	Render(ctx context.Context, d design.Design, v design.VariantConfig, opts render.Options) (*render.Surface, error)
}

// Artifact describes one committed output file.
type Artifact struct {
	Name      string              `json:"name"`
	Format    exportconfig.Format `json:"format"`
	DesignIDs []string            `json:"designIds"`
	Pages     []PageSize          `json:"pages,omitempty"`
	Bytes     int64               `json:"bytes"`
}

// PageSize is a document page in millimetres.
type PageSize struct {
	WidthMm  float64 `json:"widthMm"`
	HeightMm float64 `json:"heightMm"`
}

// Result is the outcome of a successful run.
type Result struct {
	RunID     string        `json:"runId"`
	Artifacts []Artifact    `json:"artifacts"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Pipeline runs exports.
type Pipeline struct {
	Renderer Renderer
	Log      *logger.Logger
}

// NewPipeline returns a pipeline rendering through r.
func NewPipeline(r Renderer, log *logger.Logger) *Pipeline {
	return &Pipeline{Renderer: r, Log: logger.OrNop(log)}
}

// Export renders designs in order and writes the artifacts to out. On any
// failure everything written during the run is discarded and the error is
// an *ExportError, except for ErrNoDesigns and ErrUnsupportedFormat which
// are returned before anything is rendered.
func (p *Pipeline) Export(ctx context.Context, designs []design.Design, v design.VariantConfig, opts Options, out Output, progress Progress) (*Result, error) {
	if len(designs) == 0 {
		return nil, ErrNoDesigns
	}
	enc, ok := encoders[opts.Format]
	if !ok && !opts.Format.Document() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, opts.Format)
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = 95
	}
	if progress == nil {
		progress = func(int, int) {}
	}

	res := &Result{RunID: uuid.NewString()}
	log := p.log().With("run", res.RunID, "format", opts.Format, "designs", len(designs))
	log.Info("export started", "dpi", opts.TargetDPI, "bleed", opts.IncludeBleed, "workers", opts.Workers)
	start := time.Now()

	var err error
	if opts.Format.Document() {
		err = p.exportDocument(ctx, designs, v, opts, out, progress, res)
	} else {
		err = p.exportImages(ctx, designs, v, opts, enc, out, progress, res)
	}
	if err == nil {
		if cerr := out.Commit(); cerr != nil {
			err = &ExportError{Err: cerr}
		}
	}
	if err != nil {
		if derr := out.Discard(); derr != nil {
			log.Warn("discard partial artifacts", "error", derr)
		}
		var ee *ExportError
		if !errors.As(err, &ee) {
			err = &ExportError{Err: err}
		}
		log.Error("export failed", "error", err)
		return nil, err
	}

	res.Elapsed = time.Since(start)
	log.Info("export finished", "artifacts", len(res.Artifacts), "elapsed", res.Elapsed)
	return res, nil
}

func (p *Pipeline) exportImages(ctx context.Context, designs []design.Design, v design.VariantConfig, opts Options, enc encoder, out Output, progress Progress, res *Result) error {
	total := len(designs)
	return p.renderInOrder(ctx, designs, v, opts, func(i int, s *render.Surface) error {
		if i > 0 {
			if err := pause(ctx, opts.Pacing); err != nil {
				return &ExportError{Unit: i + 1, DesignID: designs[i].ID, Err: err}
			}
		}
		name := ArtifactName(opts.Basename, i, total, opts.Format)
		n, err := writeArtifact(out, name, func(w io.Writer) error { return enc(w, s.Image, opts.Quality) })
		if err != nil {
			return &ExportError{Unit: i + 1, DesignID: designs[i].ID, Err: err}
		}
		res.Artifacts = append(res.Artifacts, Artifact{
			Name:      name,
			Format:    opts.Format,
			DesignIDs: []string{designs[i].ID},
			Bytes:     n,
		})
		progress(i+1, total)
		return nil
	})
}

// renderInOrder renders every design and hands the surfaces to commit in
// input order. With Workers > 1 up to Workers designs render concurrently,
// at most 2×Workers ahead of the commit point.
func (p *Pipeline) renderInOrder(ctx context.Context, designs []design.Design, v design.VariantConfig, opts Options, commit func(i int, s *render.Surface) error) error {
	ropts := render.Options{TargetDPI: opts.TargetDPI, IncludeBleed: opts.IncludeBleed}
	unitErr := func(i int, err error) error {
		return &ExportError{Unit: i + 1, DesignID: designs[i].ID, Err: err}
	}

	if opts.Workers <= 1 {
		for i, d := range designs {
			if err := ctx.Err(); err != nil {
				return unitErr(i, err)
			}
			s, err := p.Renderer.Render(ctx, d, v, ropts)
			if err != nil {
				return unitErr(i, err)
			}
			if err := commit(i, s); err != nil {
				return err
			}
		}
		return nil
	}

	type rendered struct {
		surface *render.Surface
		err     error
	}
	slots := make([]chan rendered, len(designs))
	for i := range slots {
		slots[i] = make(chan rendered, 1)
	}
	ahead := make(chan struct{}, opts.Workers*2)
	jobs := make(chan int)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for i := range designs {
			select {
			case ahead <- struct{}{}:
			case <-gctx.Done():
				return nil
			}
			select {
			case jobs <- i:
			case <-gctx.Done():
				return nil
			}
		}
		return nil
	})
	for w := 0; w < opts.Workers; w++ {
		g.Go(func() error {
			for i := range jobs {
				s, err := p.Renderer.Render(gctx, designs[i], v, ropts)
				slots[i] <- rendered{s, err}
			}
			return nil
		})
	}

	var err error
	for i := range designs {
		var r rendered
		select {
		case r = <-slots[i]:
		case <-ctx.Done():
			r.err = ctx.Err()
		}
		if r.err != nil {
			err = unitErr(i, r.err)
			break
		}
		if err = commit(i, r.surface); err != nil {
			break
		}
		<-ahead
	}
	cancel()
	_ = g.Wait()
	return err
}

// ArtifactName is "<base>.<ext>" for a single design and "<base>_<i>.<ext>"
// (1-based) when several are exported.
func ArtifactName(base string, i, total int, f exportconfig.Format) string {
	base = sanitizeBase(base)
	if total > 1 {
		return fmt.Sprintf("%s_%d.%s", base, i+1, f.Ext())
	}
	return fmt.Sprintf("%s.%s", base, f.Ext())
}

func sanitizeBase(base string) string {
	base = strings.TrimSpace(filepath.Base(base))
	if base == "" || base == "." || base == "/" {
		return "design"
	}
	return base
}

func writeArtifact(out Output, name string, write func(io.Writer) error) (int64, error) {
	w, err := out.Create(name)
	if err != nil {
		return 0, err
	}
	cw := &countWriter{w: w}
	if err := write(cw); err != nil {
		_ = w.Close()
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return cw.n, nil
}

type countWriter struct {
	w io.Writer
	n int64
}

func (c *countWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (p *Pipeline) log() *logger.Logger {
	if p.Log == nil {
		return logger.Nop()
	}
	return p.Log
}
