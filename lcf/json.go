// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package lcf

import (
	"math"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

var (
	json     jsoniter.API
	jsonOnce sync.Once
)

// jsonLibrary returns the "encoding/json" compatible API used for structured
// literals and for marshaling values.
func jsonLibrary() jsoniter.API {
	jsonOnce.Do(func() {
		json = jsoniter.ConfigCompatibleWithStandardLibrary
	})
	return json
}

// parseStructured decodes a JSON array or object literal. Trailing bytes after
// the literal are an error.
func parseStructured(s string) (Value, bool) {
	var x interface{}
	if err := jsonLibrary().UnmarshalFromString(s, &x); err != nil {
		return Value{}, false
	}
	return fromInterface(x), true
}

// Ensure Value satisfies yaml.Marshaler.
var _ yaml.Marshaler = Value{}

// MarshalJSON encodes v as JSON. Map keys are written in sorted order.
// JSON has no infinite numbers, so they are written as null.
func (v Value) MarshalJSON() ([]byte, error) {
	return jsonLibrary().Marshal(jsonInterface(v))
}

// jsonInterface is like Interface, but replaces non-finite numbers with nil.
func jsonInterface(v Value) interface{} {
	switch v.kind {
	case KindNumber:
		if math.IsInf(v.n, 0) || math.IsNaN(v.n) {
			return nil
		}
		return v.n
	case KindList:
		list := make([]interface{}, len(v.list))
		for i, elem := range v.list {
			list[i] = jsonInterface(elem)
		}
		return list
	case KindMap:
		m := make(map[string]interface{}, len(v.m))
		for k, elem := range v.m {
			m[k] = jsonInterface(elem)
		}
		return m
	default:
		return v.Interface()
	}
}

// MarshalYAML returns v's plain Go representation for gopkg.in/yaml.v3.
func (v Value) MarshalYAML() (interface{}, error) {
	return v.Interface(), nil
}
