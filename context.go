package automaton

import (
	"sort"
	"sync"
)

// Context is the per-runner key/value scratch space handed to every action and guard.
//
// Each call is safe for concurrent use. When the same Context is injected into several
// runners, sequences of calls are not atomic; coordinating them is up to the caller.
type Context struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewContext creates an empty context
func NewContext() *Context {
	return &Context{values: make(map[string]any)}
}

func (c *Context) set(key string, v any) {
	c.mu.Lock()
	if c.values == nil {
		c.values = make(map[string]any)
	}
	c.values[key] = v
	c.mu.Unlock()
}

func (c *Context) get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok
}

// SetInt stores v at key, replacing any value of any type.
func (c *Context) SetInt(key string, v int) { c.set(key, v) }

// SetLong stores v at key. GetInt does not read it back.
func (c *Context) SetLong(key string, v int64) { c.set(key, v) }

// SetFloat stores v at key.
func (c *Context) SetFloat(key string, v float32) { c.set(key, v) }

// SetBool stores v at key. Guards built with Unless read it.
func (c *Context) SetBool(key string, v bool) { c.set(key, v) }

// SetString stores v at key.
func (c *Context) SetString(key string, v string) { c.set(key, v) }

// SetObject stores v at key. GetObject returns it unchanged, so callers
// sharing a mutable v must synchronize on their own.
func (c *Context) SetObject(key string, v any) { c.set(key, v) }

// GetInt returns the int stored at key, or def when missing or of another type.
func (c *Context) GetInt(key string, def int) int {
	return getAs(c, key, def)
}

// GetLong returns the int64 stored at key, or def.
func (c *Context) GetLong(key string, def int64) int64 {
	return getAs(c, key, def)
}

// GetFloat returns the float32 stored at key, or def.
func (c *Context) GetFloat(key string, def float32) float32 {
	return getAs(c, key, def)
}

// GetBool returns the bool stored at key, or def.
func (c *Context) GetBool(key string, def bool) bool {
	return getAs(c, key, def)
}

// GetString returns the string stored at key, or def.
func (c *Context) GetString(key string, def string) string {
	return getAs(c, key, def)
}

// GetObject returns whatever is stored at key, or def.
func (c *Context) GetObject(key string, def any) any {
	if v, ok := c.get(key); ok {
		return v
	}
	return def
}

// Has reports whether key is set
func (c *Context) Has(key string) bool {
	_, ok := c.get(key)
	return ok
}

// Remove deletes key. Removing a missing key is a no-op.
func (c *Context) Remove(key string) {
	c.mu.Lock()
	delete(c.values, key)
	c.mu.Unlock()
}

// Keys returns the keys in lexical order
func (c *Context) Keys() []string {
	c.mu.RLock()
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	c.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Len returns the number of entries
func (c *Context) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}

func getAs[T any](c *Context, key string, def T) T {
	v, ok := c.get(key)
	if !ok {
		return def
	}
	if tv, ok := v.(T); ok {
		return tv
	}
	return def
}
