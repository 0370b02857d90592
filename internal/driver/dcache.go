package driver

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"uscript/internal/diag"
	"uscript/internal/source"
)

// Bump when DiskPayload changes shape.
const diskCacheSchemaVersion uint16 = 1

// Digest is a SHA-256 workspace fingerprint.
type Digest [32]byte

// DiskCache stores analysis results keyed by workspace digest.
// Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is the serialized form of a diagnostics run. Spans are
// stored as path plus byte offsets; file IDs are not stable across runs.
type DiskPayload struct {
	Schema uint16
	Items  []CachedDiag
}

// CachedDiag is one diagnostic in a DiskPayload.
type CachedDiag struct {
	Severity uint8
	Code     uint16
	Message  string
	Path     string
	Start    uint32
	End      uint32
	Notes    []CachedNote
}

// CachedNote is one note attached to a CachedDiag.
type CachedNote struct {
	Path    string
	Start   uint32
	End     uint32
	Message string
}

// OpenDiskCache initializes a disk cache at the standard user location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// OpenDiskCacheAt initializes a disk cache rooted at an explicit directory.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "diags", hex.EncodeToString(key[:])+".mp")
}

// Put serializes and writes a payload. The write is atomic: encode to a
// temp file, then rename into place.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads a payload. The first result is false on a clean miss.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

// packBag converts diagnostics into the cacheable form.
func packBag(bag *diag.Bag, fs *source.FileSet) *DiskPayload {
	payload := &DiskPayload{
		Schema: diskCacheSchemaVersion,
		Items:  make([]CachedDiag, 0, bag.Len()),
	}
	for _, d := range bag.Items() {
		item := CachedDiag{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Path:     cachePath(d.Primary.File, fs),
			Start:    d.Primary.Start,
			End:      d.Primary.End,
		}
		for _, note := range d.Notes {
			item.Notes = append(item.Notes, CachedNote{
				Path:    cachePath(note.Span.File, fs),
				Start:   note.Span.Start,
				End:     note.Span.End,
				Message: note.Msg,
			})
		}
		payload.Items = append(payload.Items, item)
	}
	return payload
}

// unpackBag rebinds cached diagnostics to the current file set. Paths the
// set no longer holds get empty spans.
func unpackBag(payload *DiskPayload, fs *source.FileSet, maxDiagnostics int) *diag.Bag {
	bag := diag.NewBag(maxDiagnostics)
	for _, item := range payload.Items {
		d := diag.New(
			diag.Severity(item.Severity),
			diag.Code(item.Code),
			cacheSpan(item.Path, item.Start, item.End, fs),
			item.Message)
		for _, note := range item.Notes {
			d = d.WithNote(cacheSpan(note.Path, note.Start, note.End, fs), note.Message)
		}
		bag.Add(d)
	}
	return bag
}

func cachePath(id source.FileID, fs *source.FileSet) string {
	if !fs.Has(id) {
		return ""
	}
	return fs.Get(id).Path
}

func cacheSpan(path string, start, end uint32, fs *source.FileSet) source.Span {
	if path == "" {
		return source.Span{}
	}
	id, ok := fs.GetLatest(path)
	if !ok {
		return source.Span{}
	}
	return source.Span{File: id, Start: start, End: end}
}
