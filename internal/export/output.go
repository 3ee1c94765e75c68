package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Output receives artifacts. Nothing is visible to readers until Commit;
// Discard drops everything written since the output was created.
type Output interface {
	Create(name string) (io.WriteCloser, error)
	Commit() error
	Discard() error
}

// DirOutput writes artifacts into a directory. Files are staged under a
// hidden per-run name and renamed into place on Commit.
type DirOutput struct {
	Dir string

	token  string
	staged []stagedFile
}

type stagedFile struct {
	tmp, final string
}

// NewDirOutput creates dir if needed.
func NewDirOutput(dir string) (*DirOutput, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("export: output dir %s: %w", dir, err)
	}
	return &DirOutput{Dir: dir, token: uuid.NewString()}, nil
}

// Create implements Output.
func (o *DirOutput) Create(name string) (io.WriteCloser, error) {
	final := filepath.Join(o.Dir, filepath.Base(name))
	tmp := filepath.Join(o.Dir, fmt.Sprintf(".%s.%s.part", filepath.Base(name), o.token))
	f, err := os.Create(tmp)
	if err != nil {
		return nil, err
	}
	o.staged = append(o.staged, stagedFile{tmp: tmp, final: final})
	return f, nil
}

// Commit implements Output.
func (o *DirOutput) Commit() error {
	for i, s := range o.staged {
		if err := os.Rename(s.tmp, s.final); err != nil {
			o.staged = o.staged[i:]
			return fmt.Errorf("export: commit %s: %w", s.final, err)
		}
	}
	o.staged = nil
	return nil
}

// Discard implements Output.
func (o *DirOutput) Discard() error {
	var errs []error
	for _, s := range o.staged {
		if err := os.Remove(s.tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	o.staged = nil
	return errors.Join(errs...)
}

// MemoryOutput keeps artifacts in memory.
type MemoryOutput struct {
	mu        sync.Mutex
	pending   []NamedFile
	bufs      []*bytes.Buffer
	committed []NamedFile
}

// NewMemoryOutput returns an empty in-memory output.
func NewMemoryOutput() *MemoryOutput {
	return &MemoryOutput{}
}

type memFile struct{ *bytes.Buffer }

func (memFile) Close() error { return nil }

// Create implements Output.
func (o *MemoryOutput) Create(name string) (io.WriteCloser, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	buf := &bytes.Buffer{}
	o.pending = append(o.pending, NamedFile{Name: name})
	o.bufs = append(o.bufs, buf)
	return memFile{buf}, nil
}

// Commit implements Output.
func (o *MemoryOutput) Commit() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, f := range o.pending {
		f.Data = o.bufs[i].Bytes()
		o.committed = append(o.committed, f)
	}
	o.pending, o.bufs = nil, nil
	return nil
}

// Discard implements Output.
func (o *MemoryOutput) Discard() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending, o.bufs = nil, nil
	return nil
}

// Files returns committed artifacts in creation order.
func (o *MemoryOutput) Files() []NamedFile {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]NamedFile(nil), o.committed...)
}

// NamedFile is a committed in-memory artifact.
type NamedFile struct {
	Name string
	Data []byte
}
