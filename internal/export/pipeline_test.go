package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"golang.org/x/image/webp"

	"photobook-render/internal/design"
	"photobook-render/internal/dimension"
	"photobook-render/internal/exportconfig"
	"photobook-render/internal/render"
)

var variant = design.VariantConfig{WidthMm: 100, HeightMm: 150, BleedMm: 3, EditorDPI: 96}

type fakeRenderer struct {
	mu     sync.Mutex
	calls  []string
	failOn string
	delay  func(id string) time.Duration
}

func (f *fakeRenderer) Render(ctx context.Context, d design.Design, v design.VariantConfig, _ render.Options) (*render.Surface, error) {
	f.mu.Lock()
	f.calls = append(f.calls, d.ID)
	f.mu.Unlock()
	if f.delay != nil {
		time.Sleep(f.delay(d.ID))
	}
	if d.ID == f.failOn {
		return nil, errors.New("boom")
	}
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	return &render.Surface{Image: img, Effective: dimension.Resolve(v, d.Orientation), DPIRatio: 1}, nil
}

func designs(ids ...string) []design.Design {
	out := make([]design.Design, len(ids))
	for i, id := range ids {
		out[i] = design.Design{ID: id, Orientation: design.Portrait}
	}
	return out
}

type progressLog struct {
	mu    sync.Mutex
	calls [][2]int
}

func (p *progressLog) fn(cur, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, [2]int{cur, total})
}

func TestImageExportThreeDesigns(t *testing.T) {
	out := NewMemoryOutput()
	prog := &progressLog{}
	p := NewPipeline(&fakeRenderer{}, nil)

	res, err := p.Export(context.Background(), designs("a", "b", "c"), variant,
		Options{Format: exportconfig.PNG, TargetDPI: 96, Basename: "card"}, out, prog.fn)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	files := out.Files()
	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	if want := []string{"card_1.png", "card_2.png", "card_3.png"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	if want := [][2]int{{1, 3}, {2, 3}, {3, 3}}; !reflect.DeepEqual(prog.calls, want) {
		t.Fatalf("progress = %v, want %v", prog.calls, want)
	}
	if len(res.Artifacts) != 3 || res.RunID == "" || res.Artifacts[1].DesignIDs[0] != "b" {
		t.Fatalf("result = %+v", res)
	}
}

func TestSingleDesignHasNoSuffix(t *testing.T) {
	out := NewMemoryOutput()
	_, err := NewPipeline(&fakeRenderer{}, nil).Export(context.Background(), designs("a"), variant,
		Options{Format: exportconfig.JPEG, Basename: "card"}, out, nil)
	if err != nil {
		t.Fatal(err)
	}
	files := out.Files()
	if len(files) != 1 || files[0].Name != "card.jpg" {
		t.Fatalf("files = %v", files)
	}
	if _, err := jpeg.Decode(bytes.NewReader(files[0].Data)); err != nil {
		t.Fatalf("artifact is not a JPEG: %v", err)
	}
}

func TestWebPArtifactDecodes(t *testing.T) {
	out := NewMemoryOutput()
	_, err := NewPipeline(&fakeRenderer{}, nil).Export(context.Background(), designs("a"), variant,
		Options{Format: exportconfig.WebP}, out, nil)
	if err != nil {
		t.Fatal(err)
	}
	files := out.Files()
	if files[0].Name != "design.webp" {
		t.Fatalf("name = %s", files[0].Name)
	}
	img, err := webp.Decode(bytes.NewReader(files[0].Data))
	if err != nil || img.Bounds().Dx() != 8 {
		t.Fatalf("decode: %v %v", img, err)
	}
}

func TestDocumentExportTwoDesigns(t *testing.T) {
	out := NewMemoryOutput()
	prog := &progressLog{}
	ds := designs("p", "l")
	ds[1].Orientation = design.Landscape

	res, err := NewPipeline(&fakeRenderer{}, nil).Export(context.Background(), ds, variant,
		Options{Format: exportconfig.PDF, IncludeBleed: true, Basename: "book"}, out, prog.fn)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	files := out.Files()
	if len(files) != 1 || files[0].Name != "book.pdf" {
		t.Fatalf("files = %v", files)
	}
	if !bytes.HasPrefix(files[0].Data, []byte("%PDF")) {
		t.Fatal("artifact is not a PDF")
	}
	pages := res.Artifacts[0].Pages
	want := []PageSize{{106, 156}, {156, 106}}
	if !reflect.DeepEqual(pages, want) {
		t.Fatalf("pages = %v, want %v", pages, want)
	}
	if want := [][2]int{{1, 2}, {2, 2}}; !reflect.DeepEqual(prog.calls, want) {
		t.Fatalf("progress = %v", prog.calls)
	}
}

func TestDocumentWithoutBleedUsesTrimSize(t *testing.T) {
	out := NewMemoryOutput()
	res, err := NewPipeline(&fakeRenderer{}, nil).Export(context.Background(), designs("p"), variant,
		Options{Format: exportconfig.PDF}, out, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Artifacts[0].Pages[0]; got != (PageSize{100, 150}) {
		t.Fatalf("page = %+v", got)
	}
}

func TestEmptyDesignListFailsFirst(t *testing.T) {
	r := &fakeRenderer{}
	out := NewMemoryOutput()
	called := false
	_, err := NewPipeline(r, nil).Export(context.Background(), nil, variant,
		Options{Format: exportconfig.PNG}, out, func(int, int) { called = true })
	if !errors.Is(err, ErrNoDesigns) {
		t.Fatalf("err = %v", err)
	}
	if len(r.calls) != 0 || called || len(out.Files()) != 0 {
		t.Fatal("side effects before validation")
	}
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := NewPipeline(&fakeRenderer{}, nil).Export(context.Background(), designs("a"), variant,
		Options{Format: "tiff"}, NewMemoryOutput(), nil)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v", err)
	}
}

func TestFailureDiscardsEverything(t *testing.T) {
	for _, f := range []exportconfig.Format{exportconfig.PNG, exportconfig.PDF} {
		t.Run(string(f), func(t *testing.T) {
			r := &fakeRenderer{failOn: "b"}
			out := NewMemoryOutput()
			_, err := NewPipeline(r, nil).Export(context.Background(), designs("a", "b", "c"), variant,
				Options{Format: f}, out, nil)
			var ee *ExportError
			if !errors.As(err, &ee) || ee.Unit != 2 || ee.DesignID != "b" {
				t.Fatalf("err = %v", err)
			}
			if len(out.Files()) != 0 {
				t.Fatalf("partial artifacts kept: %v", out.Files())
			}
			if !reflect.DeepEqual(r.calls, []string{"a", "b"}) {
				t.Fatalf("rendered %v after failure", r.calls)
			}
		})
	}
}

func TestDirOutputCommitAndDiscard(t *testing.T) {
	dir := t.TempDir()
	out, err := NewDirOutput(dir)
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewPipeline(&fakeRenderer{failOn: "c"}, nil).Export(context.Background(), designs("a", "b", "c"), variant,
		Options{Format: exportconfig.PNG}, out, nil)
	if err == nil {
		t.Fatal("expected failure")
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Fatalf("dir not clean after failure: %v", entries)
	}

	out, _ = NewDirOutput(dir)
	if _, err := NewPipeline(&fakeRenderer{}, nil).Export(context.Background(), designs("a", "b"), variant,
		Options{Format: exportconfig.PNG, Basename: "x"}, out, nil); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"x_1.png", "x_2.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("%s missing: %v", name, err)
		}
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 2 {
		t.Fatalf("unexpected files: %v", entries)
	}
}

func TestWorkersKeepOrder(t *testing.T) {
	// Later designs finish first.
	delays := map[string]time.Duration{"a": 30 * time.Millisecond, "b": 20 * time.Millisecond, "c": 10 * time.Millisecond, "d": 0}
	r := &fakeRenderer{delay: func(id string) time.Duration { return delays[id] }}
	out := NewMemoryOutput()
	prog := &progressLog{}
	_, err := NewPipeline(r, nil).Export(context.Background(), designs("a", "b", "c", "d"), variant,
		Options{Format: exportconfig.PNG, Workers: 3}, out, prog.fn)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, f := range out.Files() {
		names = append(names, f.Name)
	}
	if want := []string{"design_1.png", "design_2.png", "design_3.png", "design_4.png"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("names = %v", names)
	}
	if want := [][2]int{{1, 4}, {2, 4}, {3, 4}, {4, 4}}; !reflect.DeepEqual(prog.calls, want) {
		t.Fatalf("progress = %v", prog.calls)
	}
}

func TestWorkersFailureDiscards(t *testing.T) {
	out := NewMemoryOutput()
	_, err := NewPipeline(&fakeRenderer{failOn: "b"}, nil).Export(context.Background(), designs("a", "b", "c", "d"), variant,
		Options{Format: exportconfig.PNG, Workers: 2}, out, nil)
	var ee *ExportError
	if !errors.As(err, &ee) || ee.Unit != 2 {
		t.Fatalf("err = %v", err)
	}
	if len(out.Files()) != 0 {
		t.Fatal("partial artifacts kept")
	}
}

func TestPacingIsApplied(t *testing.T) {
	start := time.Now()
	_, err := NewPipeline(&fakeRenderer{}, nil).Export(context.Background(), designs("a", "b", "c"), variant,
		Options{Format: exportconfig.PNG, Pacing: 20 * time.Millisecond}, NewMemoryOutput(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if time.Since(start) < 40*time.Millisecond {
		t.Fatal("no pause between artifacts")
	}
}

func TestRealCompositorIntoPDF(t *testing.T) {
	c := render.NewCompositor(nil, nil, nil)
	d := designs("x")
	d[0].Background.Color = "#336699"
	res, err := NewPipeline(c, nil).Export(context.Background(), d, variant,
		Options{Format: exportconfig.PDF, TargetDPI: 50}, NewMemoryOutput(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Artifacts[0].Bytes == 0 {
		t.Fatal("empty document")
	}
}

func TestWithConfig(t *testing.T) {
	cfg := exportconfig.Config{Category: "mobile", Formats: []exportconfig.Format{exportconfig.PNG}, DefaultDPI: 96}
	o, err := Options{Format: exportconfig.PNG, IncludeBleed: true}.WithConfig(cfg)
	if err != nil || o.TargetDPI != 96 || o.IncludeBleed {
		t.Fatalf("o = %+v err = %v", o, err)
	}
	if _, err := (Options{Format: exportconfig.PDF}).WithConfig(cfg); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v", err)
	}
}

func TestArtifactName(t *testing.T) {
	if got := ArtifactName("../evil/name", 1, 3, exportconfig.JPEG); got != "name_2.jpg" {
		t.Fatalf("got %s", got)
	}
	if got := ArtifactName("", 0, 1, exportconfig.PDF); got != "design.pdf" {
		t.Fatalf("got %s", got)
	}
}

func TestWriteManifest(t *testing.T) {
	res := &Result{RunID: "run-1", Artifacts: []Artifact{{Name: "book.pdf", Format: exportconfig.PDF, DesignIDs: []string{"a", "b"}, Pages: []PageSize{{100, 150}}, Bytes: 42}}}
	path := filepath.Join(t.TempDir(), "manifest.json")
	if err := WriteManifest(path, res); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"run_id": "run-1"`, `"design_ids"`, `"book.pdf"`, `"bytes": 42`} {
		if !bytes.Contains(data, []byte(want)) {
			t.Fatalf("manifest missing %s:\n%s", want, data)
		}
	}
}
