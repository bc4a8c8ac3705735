// Package arc defines story arcs, the starter catalog every session begins with,
// and the rules that derive an arc's lifecycle state from a player's memory.
package arc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrDuplicateArc is returned when adding an arc whose key already exists.
var ErrDuplicateArc = errors.New("arc already exists")

// Definition lists the unlock tokens an arc is built from.
type Definition struct {
	Required []string `json:"required"`
	Optional []string `json:"optional"`
}

// Clone returns a deep copy of the definition.
func (d Definition) Clone() Definition {
	return Definition{
		Required: append([]string{}, d.Required...),
		Optional: append([]string{}, d.Optional...),
	}
}

// Tokens returns required followed by optional tokens.
func (d Definition) Tokens() []string {
	out := make([]string, 0, len(d.Required)+len(d.Optional))
	out = append(out, d.Required...)
	return append(out, d.Optional...)
}

// Catalog is an insertion-ordered set of arcs keyed by name.
// It is not safe for concurrent use; sessions guard their catalog.
type Catalog struct {
	keys []string
	defs map[string]Definition
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{defs: make(map[string]Definition)}
}

// Add appends an arc. Keys are unique.
func (c *Catalog) Add(key string, def Definition) error {
	if _, ok := c.defs[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateArc, key)
	}
	c.keys = append(c.keys, key)
	c.defs[key] = def.Clone()
	return nil
}

// Get returns a copy of the arc definition for key.
func (c *Catalog) Get(key string) (Definition, bool) {
	def, ok := c.defs[key]
	if !ok {
		return Definition{}, false
	}
	return def.Clone(), true
}

// Has reports whether key is in the catalog.
func (c *Catalog) Has(key string) bool {
	_, ok := c.defs[key]
	return ok
}

// Len returns the number of arcs.
func (c *Catalog) Len() int {
	return len(c.keys)
}

// Keys returns arc keys in insertion order.
func (c *Catalog) Keys() []string {
	return append([]string{}, c.keys...)
}

// Tokens returns every token referenced by any arc, in catalog order, without duplicates.
func (c *Catalog) Tokens() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, key := range c.keys {
		for _, tok := range c.defs[key].Tokens() {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			out = append(out, tok)
		}
	}
	return out
}

// Clone returns a deep copy that shares no backing storage with c.
func (c *Catalog) Clone() *Catalog {
	out := &Catalog{
		keys: append([]string{}, c.keys...),
		defs: make(map[string]Definition, len(c.defs)),
	}
	for k, d := range c.defs {
		out.defs[k] = d.Clone()
	}
	return out
}

// MarshalJSON encodes the catalog as an object in insertion order.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(c.defs[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
