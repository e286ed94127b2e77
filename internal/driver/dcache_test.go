package driver

import (
	"context"
	"path/filepath"
	"testing"

	"llasm/internal/asm"
)

func TestDiskCachePutGet(t *testing.T) {
	c, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	var content [32]byte
	content[3] = 9
	key := cacheKey(content, asm.AlignMigrate)

	var out DiskPayload
	if hit, err := c.Get(key, &out); hit || err != nil {
		t.Fatalf("empty cache: hit=%v err=%v", hit, err)
	}

	in := &DiskPayload{Schema: diskCacheSchemaVersion, Path: "a.ll", Hash: content, Failed: true, Class: "SyntaxError", Code: 2001, Message: "boom", Start: 3, End: 5}
	if err := c.Put(key, in); err != nil {
		t.Fatalf("put: %v", err)
	}
	hit, err := c.Get(key, &out)
	if !hit || err != nil {
		t.Fatalf("get: hit=%v err=%v", hit, err)
	}
	if out.Path != in.Path || out.Message != in.Message || out.Start != 3 || out.End != 5 || !out.Failed {
		t.Fatalf("payload = %+v", out)
	}

	restored := errorFromPayload(&out, 0)
	if class, _ := asm.ClassOf(restored); class != asm.SyntaxError {
		t.Fatalf("restored class = %s", class)
	}

	if err := c.DropAll(); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if hit, _ := c.Get(key, &out); hit {
		t.Fatalf("entry survived DropAll")
	}
}

func TestCacheKeyDependsOnAlignPolicy(t *testing.T) {
	var content [32]byte
	if cacheKey(content, asm.AlignMigrate) == cacheKey(content, asm.AlignReject) {
		t.Fatalf("align policy must change the key")
	}
}

func TestParseFilesUsesDiskCache(t *testing.T) {
	c, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	paths := batchPaths(t)
	_, first, err := ParseFiles(context.Background(), paths, Options{Cache: c})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	_, second, err := ParseFiles(context.Background(), paths, Options{Cache: c})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	for i := range paths {
		name := filepath.Base(paths[i])
		if !second[i].Cached {
			t.Fatalf("%s: not served from cache", name)
		}
		if second[i].Stats != first[i].Stats {
			t.Fatalf("%s: stats %+v vs %+v", name, second[i].Stats, first[i].Stats)
		}
		if first[i].Failed() != second[i].Failed() {
			t.Fatalf("%s: failure state changed", name)
		}
	}
	if class, _ := asm.ClassOf(second[0].Err); class != asm.UnresolvedReference {
		t.Fatalf("cached failure class = %s", class)
	}
	if second[0].Bag.Len() != 1 {
		t.Fatalf("cached failure must carry one diagnostic")
	}
}
