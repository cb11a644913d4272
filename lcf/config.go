// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package lcf

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// A Config is a parsed document. The zero value is an empty document.
// Configs can be read by multiple concurrent goroutines.
type Config struct {
	tree   Map
	hidden []string
	keys   []hiddenKey
}

// New returns a Config that takes ownership of the given tree and hidden key
// paths, as returned by Parse. Configs built by Load, ParseFile, and Read also
// remember the section names of each hidden key, which New cannot recover
// from a path whose section names contain the separator.
func New(tree Map, hidden []string) *Config {
	keys := make([]hiddenKey, 0, len(hidden))
	for _, h := range hidden {
		keys = append(keys, hiddenKey{path: h, names: strings.Split(h, PathSeparator)})
	}
	return &Config{tree: tree, hidden: hidden, keys: keys}
}

// parseConfig parses content into a Config that keeps the full location of
// every hidden key.
func parseConfig(content string, opts *ParseOptions) *Config {
	tree, keys := parse(content, opts)
	return &Config{tree: tree, hidden: joinedPaths(keys), keys: keys}
}

// Load parses a document from nameOrContent. If nameOrContent names an
// existing regular file, the file's contents are parsed. Otherwise,
// nameOrContent is parsed as the document text itself. Load returns an error
// only if the file exists but cannot be read. Nil options are treated
// identically as passing the zero value.
func Load(nameOrContent string, opts *ParseOptions) (*Config, error) {
	if info, err := os.Stat(nameOrContent); err == nil && info.Mode().IsRegular() {
		return ParseFile(nameOrContent, opts)
	}
	return parseConfig(nameOrContent, opts), nil
}

// ParseFile parses the document at the given path.
func ParseFile(path string, opts *ParseOptions) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load lcf: %w", err)
	}
	return parseConfig(string(data), opts), nil
}

// Read reads r to EOF and parses the result.
func Read(r io.Reader, opts *ParseOptions) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read lcf: %w", err)
	}
	return parseConfig(string(data), opts), nil
}

// Lookup returns the value at the given colon-separated path, like
// "server:tls:enabled". Empty path segments are ignored, so the empty path
// refers to the whole document.
func (c *Config) Lookup(path string) (Value, bool) {
	if c == nil {
		return lookup(nil, path)
	}
	return lookup(c.tree, path)
}

func lookup(tree Map, path string) (Value, bool) {
	cur := MapValue(tree)
	for _, name := range strings.Split(path, PathSeparator) {
		if name == "" {
			continue
		}
		m, ok := cur.Map()
		if !ok {
			return Value{}, false
		}
		cur, ok = m[name]
		if !ok {
			return Value{}, false
		}
	}
	return cur, true
}

// Get returns the value at the given colon-separated path. If any segment is
// missing or an intermediate value is not a map, Get returns defaultValue.
func (c *Config) Get(path string, defaultValue Value) Value {
	v, ok := c.Lookup(path)
	if !ok {
		return defaultValue
	}
	return v
}

// Tree returns a deep copy of the document's values.
func (c *Config) Tree() Map {
	if c == nil {
		return make(Map)
	}
	return c.tree.Clone()
}

// Export returns the document as plain Go values. The result shares no memory
// with c.
func (c *Config) Export() map[string]interface{} {
	if c == nil {
		return make(map[string]interface{})
	}
	return c.tree.Interface()
}

// HiddenKeys returns the paths of keys that were marked hidden, in the order
// they first appeared in the document.
func (c *Config) HiddenKeys() []string {
	if c == nil || len(c.hidden) == 0 {
		return nil
	}
	return append([]string(nil), c.hidden...)
}

// IsHidden reports whether the key at the given path was marked hidden.
func (c *Config) IsHidden(path string) bool {
	if c == nil {
		return false
	}
	path = cleanPath(path)
	for _, h := range c.hidden {
		if h == path {
			return true
		}
	}
	return false
}

// Redacted returns the document like Export, but with the values of hidden
// keys replaced by mask.
func (c *Config) Redacted(mask string) map[string]interface{} {
	out := c.Export()
	if c == nil {
		return out
	}
	for _, k := range c.keys {
		m := out
		for _, name := range k.names[:len(k.names)-1] {
			next, ok := m[name].(map[string]interface{})
			if !ok {
				m = nil
				break
			}
			m = next
		}
		if m == nil {
			continue
		}
		key := k.names[len(k.names)-1]
		if _, ok := m[key]; ok {
			m[key] = mask
		}
	}
	return out
}

// MarshalJSON encodes the document as a JSON object. Non-finite numbers are
// written as null.
func (c *Config) MarshalJSON() ([]byte, error) {
	var tree Map
	if c != nil {
		tree = c.tree
	}
	return MapValue(tree).MarshalJSON()
}

// MarshalYAML returns the document's plain Go representation for
// gopkg.in/yaml.v3.
func (c *Config) MarshalYAML() (interface{}, error) {
	return c.Export(), nil
}

// UnmarshalText parses the document with default options, replacing any
// values in c.
func (c *Config) UnmarshalText(data []byte) error {
	*c = *parseConfig(string(data), nil)
	return nil
}

// cleanPath drops empty segments from a colon-separated path.
func cleanPath(path string) string {
	names := strings.Split(path, PathSeparator)
	n := 0
	for _, name := range names {
		if name != "" {
			names[n] = name
			n++
		}
	}
	return strings.Join(names[:n], PathSeparator)
}
