package pipeline

import (
	"sort"
)

// Data is a set of named values merged into a flow context.
type Data map[string]any

// Context is an insertion ordered mapping of named values threaded through a pipeline.
// Every level works on its own Context: nested levels and fork branches start from a Clone.
type Context struct {
	keys   []string
	values map[string]any
}

// NewContext creates a context seeded with data, keys being inserted in sorted order.
func NewContext(data Data) *Context {
	c := &Context{
		values: make(map[string]any, len(data)),
	}
	c.Merge(data)

	return c
}

// Lookup returns the value stored under key.
func (c *Context) Lookup(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.values[key]

	return v, ok
}

// Get returns the value stored under key, nil if absent.
func (c *Context) Get(key string) any {
	v, _ := c.Lookup(key)

	return v
}

// Has reports whether key is set.
func (c *Context) Has(key string) bool {
	_, ok := c.Lookup(key)

	return ok
}

// Set stores value under key. An existing key keeps its position.
func (c *Context) Set(key string, value any) {
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.values[key] = value
}

// Merge sets every entry of data, in sorted key order.
func (c *Context) Merge(data Data) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		c.Set(k, data[k])
	}
}

// Keys returns the keys in insertion order.
func (c *Context) Keys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, len(c.keys))
	copy(keys, c.keys)

	return keys
}

func (c *Context) Len() int {
	if c == nil {
		return 0
	}

	return len(c.keys)
}

// Map returns a copy of the values.
func (c *Context) Map() map[string]any {
	out := make(map[string]any, c.Len())
	if c == nil {
		return out
	}
	for k, v := range c.values {
		out[k] = v
	}

	return out
}

// Clone returns a snapshot of the context. Values are copied shallowly.
func (c *Context) Clone() *Context {
	if c == nil {
		return NewContext(nil)
	}
	out := &Context{
		keys:   make([]string, len(c.keys)),
		values: make(map[string]any, len(c.values)),
	}
	copy(out.keys, c.keys)
	for k, v := range c.values {
		out.values[k] = v
	}

	return out
}

// Value returns the value stored under key when it holds a T.
func Value[T any](c *Context, key string) (T, bool) {
	v, ok := c.Lookup(key)
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)

	return t, ok
}
