package duckdb

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/inodb/vibe-hgvs/internal/cache"
)

// FileFingerprint holds stat-based identity for a source file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// ModelCache keeps a gob-serialized copy of a parsed gene model:
//
//	{dir}/transcripts.gob       (serialized transcripts)
//	{dir}/transcripts.gob.meta  (source file fingerprints)
//
// The copy is valid while every source file keeps its size and mtime.
type ModelCache struct {
	dir string
}

// NewModelCache creates a model cache in dir.
func NewModelCache(dir string) *ModelCache {
	return &ModelCache{dir: dir}
}

func (mc *ModelCache) gobPath() string {
	return filepath.Join(mc.dir, "transcripts.gob")
}

func (mc *ModelCache) metaPath() string {
	return filepath.Join(mc.dir, "transcripts.gob.meta")
}

// Valid reports whether the cached model was built from exactly these
// source files.
func (mc *ModelCache) Valid(sources ...FileFingerprint) bool {
	meta, err := mc.readMeta()
	if err != nil {
		return false
	}
	if meta["sources"] != strconv.Itoa(len(sources)) {
		return false
	}
	for i, fp := range sources {
		for k, v := range fingerprintFields(i, fp) {
			if meta[k] != v {
				return false
			}
		}
	}

	if _, err := os.Stat(mc.gobPath()); err != nil {
		return false
	}
	return true
}

// Load reads serialized transcripts into c. Boundary tables are not stored
// and are recomputed on first use.
func (mc *ModelCache) Load(c *cache.Cache) error {
	f, err := os.Open(mc.gobPath())
	if err != nil {
		return fmt.Errorf("open model cache: %w", err)
	}
	defer f.Close()

	var data map[string][]*cache.Transcript
	if err := gob.NewDecoder(f).Decode(&data); err != nil {
		return fmt.Errorf("decode model cache: %w", err)
	}

	for _, transcripts := range data {
		for _, t := range transcripts {
			c.AddTranscript(t)
		}
	}
	return nil
}

// Write serializes every transcript in c and records the source
// fingerprints.
func (mc *ModelCache) Write(c *cache.Cache, sources ...FileFingerprint) error {
	if err := os.MkdirAll(mc.dir, 0755); err != nil {
		return fmt.Errorf("create model cache directory: %w", err)
	}

	data := make(map[string][]*cache.Transcript)
	for _, chrom := range c.Chromosomes() {
		data[chrom] = c.FindTranscriptsByChrom(chrom)
	}

	f, err := os.Create(mc.gobPath())
	if err != nil {
		return fmt.Errorf("create model cache: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(data); err != nil {
		f.Close()
		os.Remove(mc.gobPath())
		return fmt.Errorf("encode model cache: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close model cache: %w", err)
	}

	return mc.writeMeta(sources)
}

// Clear removes the cached model files.
func (mc *ModelCache) Clear() {
	os.Remove(mc.gobPath())
	os.Remove(mc.metaPath())
}

func fingerprintFields(i int, fp FileFingerprint) map[string]string {
	prefix := "source" + strconv.Itoa(i) + "_"
	return map[string]string{
		prefix + "size":    strconv.FormatInt(fp.Size, 10),
		prefix + "modtime": fp.ModTime.UTC().Format(time.RFC3339Nano),
	}
}

func (mc *ModelCache) writeMeta(sources []FileFingerprint) error {
	lines := []string{"sources=" + strconv.Itoa(len(sources))}
	for i, fp := range sources {
		for k, v := range fingerprintFields(i, fp) {
			lines = append(lines, k+"="+v)
		}
	}
	lines = append(lines, "created_at="+time.Now().UTC().Format(time.RFC3339), "")
	return os.WriteFile(mc.metaPath(), []byte(strings.Join(lines, "\n")), 0644)
}

func (mc *ModelCache) readMeta() (map[string]string, error) {
	data, err := os.ReadFile(mc.metaPath())
	if err != nil {
		return nil, err
	}

	meta := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		if k, v, ok := strings.Cut(line, "="); ok {
			meta[k] = v
		}
	}
	return meta, nil
}
