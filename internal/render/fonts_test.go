package render

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/gomono"
)

func TestFontsIndexDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Brand.TTF"), gomono.TTF, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	f := NewFonts(dir)
	if f.Len() != 1 {
		t.Fatalf("indexed %d fonts", f.Len())
	}
	face, err := f.Face(`"Brand", sans-serif`, 16)
	if err != nil {
		t.Fatalf("Face: %v", err)
	}
	if face.Metrics().Ascent <= 0 {
		t.Fatal("empty face metrics")
	}
}

func TestFontsFallBackToBuiltin(t *testing.T) {
	f := NewFonts("")
	for _, fam := range []string{"", "mono", "Comic Whatever"} {
		if _, err := f.Face(fam, 12); err != nil {
			t.Fatalf("%q: %v", fam, err)
		}
	}
}
