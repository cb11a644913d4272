// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package lcf

import (
	"fmt"
	"sort"
	"strconv"
)

// Kind identifies the type of data held by a Value.
type Kind uint8

// Value kinds. The zero Kind is KindNull.
const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// A Value is a single node in a parsed document: a string, number, boolean,
// null, list of values, or map of values. The zero value is null.
//
// Values returned by this package should be treated as immutable. Use Clone
// to obtain a copy that is safe to modify.
type Value struct {
	kind Kind
	s    string
	n    float64
	b    bool
	list []Value
	m    Map
}

// StringValue returns a string Value.
func StringValue(s string) Value {
	return Value{kind: KindString, s: s}
}

// NumberValue returns a numeric Value.
func NumberValue(n float64) Value {
	return Value{kind: KindNumber, n: n}
}

// BoolValue returns a boolean Value.
func BoolValue(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// ListValue returns a list Value holding the given elements. The slice is
// retained, not copied.
func ListValue(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{kind: KindList, list: elems}
}

// MapValue returns a map Value. The map is retained, not copied: writes to m
// are visible through the returned Value. A nil map is replaced with an empty
// one.
func MapValue(m Map) Value {
	if m == nil {
		m = make(Map)
	}
	return Value{kind: KindMap, m: m}
}

// Kind returns the kind of data v holds.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Str returns v's string and whether v is a string.
func (v Value) Str() (string, bool) {
	return v.s, v.kind == KindString
}

// Float returns v's number and whether v is a number.
func (v Value) Float() (float64, bool) {
	return v.n, v.kind == KindNumber
}

// Bool returns v's boolean and whether v is a boolean.
func (v Value) Bool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// List returns v's elements and whether v is a list.
func (v Value) List() ([]Value, bool) {
	return v.list, v.kind == KindList
}

// Map returns v's entries and whether v is a map.
func (v Value) Map() (Map, bool) {
	return v.m, v.kind == KindMap
}

// Interface converts v into plain Go values: nil, string, float64, bool,
// []interface{}, or map[string]interface{}. The result never shares memory
// with v.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindString:
		return v.s
	case KindNumber:
		return v.n
	case KindBool:
		return v.b
	case KindList:
		list := make([]interface{}, len(v.list))
		for i, elem := range v.list {
			list[i] = elem.Interface()
		}
		return list
	case KindMap:
		return v.m.Interface()
	default:
		return nil
	}
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch v.kind {
	case KindList:
		list := make([]Value, len(v.list))
		for i, elem := range v.list {
			list[i] = elem.Clone()
		}
		return Value{kind: KindList, list: list}
	case KindMap:
		return Value{kind: KindMap, m: v.m.Clone()}
	default:
		return v
	}
}

// Equal reports whether v and w hold structurally equal data.
func (v Value) Equal(w Value) bool {
	if v.kind != w.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.s == w.s
	case KindNumber:
		return v.n == w.n
	case KindBool:
		return v.b == w.b
	case KindList:
		if len(v.list) != len(w.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(w.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		return v.m.Equal(w.m)
	default:
		return true
	}
}

// String formats v for debugging. Strings are quoted.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return strconv.Quote(v.s)
	case KindNumber:
		return strconv.FormatFloat(v.n, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindList:
		buf := []byte{'['}
		for i, elem := range v.list {
			if i > 0 {
				buf = append(buf, ", "...)
			}
			buf = append(buf, elem.String()...)
		}
		return string(append(buf, ']'))
	case KindMap:
		return v.m.String()
	case KindNull:
		return "null"
	default:
		return fmt.Sprintf("<invalid %v>", v.kind)
	}
}

// fromInterface converts the output of a JSON decode into a Value.
func fromInterface(x interface{}) Value {
	switch x := x.(type) {
	case string:
		return StringValue(x)
	case float64:
		return NumberValue(x)
	case bool:
		return BoolValue(x)
	case []interface{}:
		list := make([]Value, len(x))
		for i, elem := range x {
			list[i] = fromInterface(elem)
		}
		return ListValue(list...)
	case map[string]interface{}:
		m := make(Map, len(x))
		for k, elem := range x {
			m[k] = fromInterface(elem)
		}
		return MapValue(m)
	default:
		return Value{}
	}
}

// A Map is a set of named values. Sections in a document are Maps.
type Map map[string]Value

// Interface converts m into a map[string]interface{} that shares no memory
// with m.
func (m Map) Interface() map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v.Interface()
	}
	return out
}

// Clone returns a deep copy of m. Clone of a nil Map is an empty Map.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v.Clone()
	}
	return out
}

// Equal reports whether m and m2 have the same keys with equal values.
func (m Map) Equal(m2 Map) bool {
	if len(m) != len(m2) {
		return false
	}
	for k, v := range m {
		v2, ok := m2[k]
		if !ok || !v.Equal(v2) {
			return false
		}
	}
	return true
}

// Keys returns m's keys in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String formats m for debugging with keys in sorted order.
func (m Map) String() string {
	buf := []byte{'{'}
	for i, k := range m.Keys() {
		if i > 0 {
			buf = append(buf, ", "...)
		}
		buf = append(buf, k...)
		buf = append(buf, ": "...)
		buf = append(buf, m[k].String()...)
	}
	return string(append(buf, '}'))
}
