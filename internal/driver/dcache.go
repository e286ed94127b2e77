package driver

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"llasm/internal/asm"
	"llasm/internal/diag"
	"llasm/internal/ir"
	"llasm/internal/source"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// CacheSchema is the payload version written by DiskCache.
const CacheSchema = diskCacheSchemaVersion

// DiskCache хранит итог разбора файла (статистику или первую ошибку)
// по хешу содержимого. Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is the cached outcome of reading one file.
type DiskPayload struct {
	Schema uint16
	Path   string
	Hash   [32]byte

	Stats ir.Stats

	// Failed is set when the file did not parse; the fields below describe
	// the single error.
	Failed  bool
	Class   string
	Code    uint16
	Message string
	Start   uint32
	End     uint32
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt uses dir as the cache root.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "files", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
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
	tmp := f.Name()
	defer func() {
		// после успешного Rename временного файла уже нет
		_ = os.Remove(tmp)
	}()

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(tmp, p)
}

// Get reads and deserializes a payload from the disk cache. Entries written
// with another schema are reported as misses.
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
		if errors.Is(err, os.ErrNotExist) {
			return os.MkdirAll(c.dir, 0o755)
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// payloadFor converts a parse outcome into its cached form.
func payloadFor(path string, hash [32]byte, mod *ir.Module, err error) *DiskPayload {
	payload := &DiskPayload{
		Schema: diskCacheSchemaVersion,
		Path:   path,
		Hash:   hash,
	}
	if mod != nil {
		payload.Stats = mod.Stats()
	}
	if err != nil {
		payload.Failed = true
		payload.Message = err.Error()
		var pe *asm.Error
		if errors.As(err, &pe) {
			payload.Class = string(pe.Class)
			payload.Code = uint16(pe.Code)
			payload.Message = pe.Msg
			payload.Start = pe.Span.Start
			payload.End = pe.Span.End
		}
	}
	return payload
}

// errorFromPayload rebuilds the parse error of a cached failure.
func errorFromPayload(p *DiskPayload, file source.FileID) error {
	if p == nil || !p.Failed {
		return nil
	}
	if p.Class == "" {
		return errors.New(p.Message)
	}
	e := &asm.Error{
		Class: asm.Class(p.Class),
		Code:  diag.Code(p.Code),
		Msg:   p.Message,
	}
	e.Span = source.Span{File: file, Start: p.Start, End: p.End}
	return e
}
