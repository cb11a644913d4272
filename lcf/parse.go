// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package lcf

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

const (
	sectionMarker = "::"
	valueMarker   = ">>"
	hiddenMarker  = "$"

	// PathSeparator joins section names and keys in paths like "server:tls:enabled".
	PathSeparator = ":"

	tabWidth = 4
)

var numberPattern = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// ParseOptions holds optional parameters for Parse.
type ParseOptions struct {
	// Trim is accepted for compatibility with other readers of the format.
	// Section names, keys, and values are always trimmed.
	Trim bool

	// NormalizeSection is called on each section name to apply text
	// transformations. If nil, no transformations are made.
	NormalizeSection func(name string) string

	// NormalizeKey is called on each key (after any hidden marker is removed)
	// to apply text transformations. section is the path of the enclosing
	// sections, or the empty string at the top level. If nil, no
	// transformations are made.
	NormalizeKey func(section, key string) string
}

// A frame is an open section. The root frame has an empty name and an indent
// lower than any line's.
type frame struct {
	name   string
	indent int
	ref    Map
}

// Parse parses the text of a document into a tree of values and the paths of
// the keys that were marked hidden, in the order they were first defined.
// Nil options are treated identically as passing the zero value.
//
// Parse never fails: lines that are neither section headers nor properties
// are skipped, and malformed structured values are kept as strings. See the
// package documentation for the syntax.
func Parse(content string, opts *ParseOptions) (tree Map, hidden []string) {
	tree, keys := parse(content, opts)
	return tree, joinedPaths(keys)
}

// A hiddenKey is the location of a key marked hidden. names holds the
// enclosing section names followed by the key, including empty section
// names, so it can be followed through the tree even when a name contains
// the path separator.
type hiddenKey struct {
	path  string
	names []string
}

func joinedPaths(keys []hiddenKey) []string {
	var paths []string
	seen := make(map[string]struct{})
	for _, k := range keys {
		if _, dup := seen[k.path]; dup {
			continue
		}
		seen[k.path] = struct{}{}
		paths = append(paths, k.path)
	}
	return paths
}

func parse(content string, opts *ParseOptions) (tree Map, hidden []hiddenKey) {
	if opts == nil {
		opts = new(ParseOptions)
	}
	tree = make(Map)
	stack := []frame{{indent: -1, ref: tree}}
	for _, line := range splitLines(content) {
		line = strings.ReplaceAll(line, "\t", strings.Repeat(" ", tabWidth))
		trimmed := strings.TrimFunc(line, isSpace)
		if trimmed == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " "))

		if strings.HasPrefix(trimmed, sectionMarker) {
			name := strings.TrimFunc(trimmed[len(sectionMarker):], isSpace)
			if opts.NormalizeSection != nil {
				name = opts.NormalizeSection(name)
			}
			stack = closeSections(stack, indent)
			parent := stack[len(stack)-1].ref
			sect, ok := parent[name].Map()
			if !ok {
				sect = make(Map)
				parent[name] = MapValue(sect)
			}
			stack = append(stack, frame{name: name, indent: indent, ref: sect})
			continue
		}

		i := strings.Index(trimmed, valueMarker)
		if i == -1 {
			continue
		}
		key := strings.TrimFunc(trimmed[:i], isSpace)
		value := ParseValue(trimmed[i+len(valueMarker):])
		isHidden := strings.HasPrefix(key, hiddenMarker)
		if isHidden {
			key = key[len(hiddenMarker):]
		}
		stack = closeSections(stack, indent)
		section := stackPath(stack)
		if opts.NormalizeKey != nil {
			key = opts.NormalizeKey(section, key)
		}
		stack[len(stack)-1].ref[key] = value
		if !isHidden {
			continue
		}
		k := hiddenKey{path: key, names: make([]string, 0, len(stack))}
		if section != "" {
			k.path = section + PathSeparator + key
		}
		for _, f := range stack[1:] {
			k.names = append(k.names, f.name)
		}
		k.names = append(k.names, key)
		if !containsKey(hidden, k) {
			hidden = append(hidden, k)
		}
	}
	return tree, hidden
}

func containsKey(keys []hiddenKey, k hiddenKey) bool {
	for _, other := range keys {
		if other.path != k.path || len(other.names) != len(k.names) {
			continue
		}
		same := true
		for i := range k.names {
			if other.names[i] != k.names[i] {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}

// splitLines splits s on line feeds, removing a carriage return that
// precedes a line feed.
func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	for i, line := range lines[:len(lines)-1] {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// closeSections pops every frame whose header was indented at least as far
// as the current line. The root frame is never popped.
func closeSections(stack []frame, indent int) []frame {
	for len(stack) > 1 && stack[len(stack)-1].indent >= indent {
		stack[len(stack)-1] = frame{}
		stack = stack[:len(stack)-1]
	}
	return stack
}

// stackPath joins the names of the open sections.
func stackPath(stack []frame) string {
	sb := new(strings.Builder)
	for _, f := range stack {
		if f.name == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(PathSeparator)
		}
		sb.WriteString(f.name)
	}
	return sb.String()
}

// ParseValue infers the type of a property value. After trimming
// surrounding whitespace, the first matching rule wins:
//
//	empty                             → empty string
//	true or false, in any case        → boolean
//	-?[0-9]+(\.[0-9]+)?               → number
//	[...] or {...} holding valid JSON → list or map
//	anything else                     → the trimmed string
func ParseValue(raw string) Value {
	v := strings.TrimFunc(raw, isSpace)
	switch {
	case v == "":
		return StringValue("")
	case strings.EqualFold(v, "true"):
		return BoolValue(true)
	case strings.EqualFold(v, "false"):
		return BoolValue(false)
	case numberPattern.MatchString(v):
		// Digit strings too long for a float64 become ±Inf with ErrRange.
		n, _ := strconv.ParseFloat(v, 64)
		return NumberValue(n)
	}
	if isBracketed(v, '[', ']') || isBracketed(v, '{', '}') {
		if parsed, ok := parseStructured(v); ok {
			return parsed
		}
	}
	return StringValue(v)
}

func isBracketed(s string, first, last byte) bool {
	return len(s) >= 2 && s[0] == first && s[len(s)-1] == last
}

// isSpace reports whether r is whitespace: Unicode white space other than
// U+0085 (NEL), plus the byte order mark so that documents saved with one
// parse the same way.
func isSpace(r rune) bool {
	if r == '\u0085' {
		return false
	}
	return unicode.IsSpace(r) || r == '\uFEFF'
}
