// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package lcf

import (
	"fmt"
	"os"
)

// ConfigSet is a list of documents to obtain configuration from in descending
// order of precedence. Nil elements are treated as empty documents.
type ConfigSet []*Config

// ParseFiles parses the files at the given paths and returns a ConfigSet.
// If the returned error is nil, the returned set's length will be the same as
// the number of arguments. ParseFiles will stop on the first error, but
// ignores missing file errors, instead filling the corresponding element of the
// set with a nil *Config.
func ParseFiles(opts *ParseOptions, paths ...string) (ConfigSet, error) {
	cset := make(ConfigSet, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if os.IsNotExist(err) {
			cset = append(cset, nil)
			continue
		}
		if err != nil {
			return cset, fmt.Errorf("parse lcf files: %w", err)
		}
		cset = append(cset, parseConfig(string(data), opts))
	}
	return cset, nil
}

// Lookup returns the value at the given path from the first document that
// defines it.
func (cset ConfigSet) Lookup(path string) (Value, bool) {
	for _, c := range cset {
		if v, ok := c.Lookup(path); ok {
			return v, true
		}
	}
	return Value{}, false
}

// Get returns the value at the given path from the first document that
// defines it, or defaultValue if none do.
func (cset ConfigSet) Get(path string, defaultValue Value) Value {
	v, ok := cset.Lookup(path)
	if !ok {
		return defaultValue
	}
	return v
}

// HiddenKeys returns the union of the documents' hidden key paths, in
// precedence order.
func (cset ConfigSet) HiddenKeys() []string {
	return joinedPaths(cset.hiddenKeys())
}

func (cset ConfigSet) hiddenKeys() []hiddenKey {
	var keys []hiddenKey
	for _, c := range cset {
		if c == nil {
			continue
		}
		for _, k := range c.keys {
			if !containsKey(keys, k) {
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// Merge returns a single document combining the set. Maps present in several
// documents are merged key by key. For any other value, the document with the
// highest precedence wins.
func (cset ConfigSet) Merge() *Config {
	merged := make(Map)
	for i := len(cset) - 1; i >= 0; i-- {
		if cset[i] != nil {
			overlay(merged, cset[i].tree)
		}
	}
	keys := cset.hiddenKeys()
	return &Config{tree: merged, hidden: joinedPaths(keys), keys: keys}
}

// Export returns the merged documents as plain Go values.
func (cset ConfigSet) Export() map[string]interface{} {
	return cset.Merge().Export()
}

// overlay deep-copies src into dst, merging nested maps.
func overlay(dst, src Map) {
	for k, v := range src {
		srcMap, srcOK := v.Map()
		dstMap, dstOK := dst[k].Map()
		if srcOK && dstOK {
			overlay(dstMap, srcMap)
			continue
		}
		dst[k] = v.Clone()
	}
}
