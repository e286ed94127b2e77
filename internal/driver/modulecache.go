package driver

import (
	"sync"

	"llasm/internal/ir"
)

// в памяти храним только успешно прочитанные модули
type cached struct {
	content [32]byte
	mod     *ir.Module
}

// ModuleCache is a per-process cache keyed by file path and content hash.
// A nil *ModuleCache is valid and never hits.
type ModuleCache struct {
	mu     sync.RWMutex
	byPath map[string]cached
}

// NewModuleCache creates a ModuleCache with the given capacity hint.
func NewModuleCache(capHint int) *ModuleCache {
	return &ModuleCache{byPath: make(map[string]cached, capHint)}
}

// Lookup returns the module stored for path when its content hash matches.
func (c *ModuleCache) Lookup(path string, content [32]byte) (*ir.Module, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	rec, ok := c.byPath[path]
	c.mu.RUnlock()
	if !ok || rec.content != content {
		return nil, false
	}
	return rec.mod, true
}

// Store remembers mod for path; a later Store for the same path replaces it.
func (c *ModuleCache) Store(path string, content [32]byte, mod *ir.Module) {
	if c == nil || mod == nil {
		return
	}
	c.mu.Lock()
	c.byPath[path] = cached{content: content, mod: mod}
	c.mu.Unlock()
}

// Len returns the number of cached modules.
func (c *ModuleCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byPath)
}
