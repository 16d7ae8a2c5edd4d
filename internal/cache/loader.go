package cache

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// ModelLoader populates a cache from a gene model file.
type ModelLoader interface {
	Load(c *Cache) error
}

// LoadModel loads a gene model, picking the parser from the file name:
// ".gtf" and ".gtf.gz" are read as GTF, anything else as genePred.
func LoadModel(path string) (*Cache, error) {
	c := New()
	if err := NewModelLoader(path).Load(c); err != nil {
		return nil, err
	}
	return c, nil
}

// NewModelLoader returns the loader matching the file name.
func NewModelLoader(path string) ModelLoader {
	name := strings.TrimSuffix(strings.ToLower(path), ".gz")
	if strings.HasSuffix(name, ".gtf") {
		return NewGTFLoader(path)
	}
	return NewGenePredLoader(path)
}

// gzipFile closes both the gzip stream and the file beneath it.
type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipFile) Close() error {
	g.Reader.Close()
	return g.f.Close()
}

// openInput opens path, transparently decompressing gzip content.
func openInput(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	// Check for gzip magic number (0x1f, 0x8b)
	magic := make([]byte, 2)
	n, _ := io.ReadFull(f, magic)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("seek %s: %w", path, err)
	}
	if n < 2 || magic[0] != 0x1f || magic[1] != 0x8b {
		return f, nil
	}

	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open gzip reader: %w", err)
	}
	return &gzipFile{Reader: gz, f: f}, nil
}
