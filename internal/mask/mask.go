// Package mask implements the field-projection mask described in
// spec.md §4.1: a comma-delimited, path-aware include filter a subscriber
// installs to reduce a Frame's JSON payload before it crosses the wire.
package mask

import "strings"

// Mask decides which top-level sections and dotted sub-fields of a Frame
// to emit. Tokens are lowercased once at construction (spec.md §9: "no
// per-query string allocation in includes").
type Mask struct {
	all    bool
	tokens map[string]struct{}
}

// All returns a mask that includes everything, used when a subscriber
// installs no projection.
func All() *Mask {
	return &Mask{all: true}
}

// New parses a comma-delimited projection expression. Whitespace around
// tokens is trimmed, tokens are case-folded, and empty tokens are
// dropped. An expression with no surviving tokens behaves like All().
func New(expr string) *Mask {
	parts := strings.Split(expr, ",")
	tokens := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		tokens[p] = struct{}{}
	}
	if len(tokens) == 0 {
		return All()
	}
	return &Mask{tokens: tokens}
}

// IsAll reports whether this mask includes every path.
func (m *Mask) IsAll() bool {
	return m == nil || m.all
}

// Includes reports whether path ("vehicle" or "vehicle.speed") should be
// emitted, per the inclusion rule in spec.md §4.1.
func (m *Mask) Includes(path string) bool {
	if m == nil || m.all {
		return true
	}
	path = strings.ToLower(path)

	// Rule 2: exact match.
	if _, ok := m.tokens[path]; ok {
		return true
	}

	// Rule 3: the path's parent section is present in the mask wholesale.
	if parent, _, found := strings.Cut(path, "."); found {
		if _, ok := m.tokens[parent]; ok {
			return true
		}
	}

	// Rule 4: some requested token pins this path as a parent of a
	// requested child.
	prefix := path + "."
	for t := range m.tokens {
		if strings.HasPrefix(t, prefix) {
			return true
		}
	}

	return false
}

// HasExact reports whether path is present verbatim in the mask (used by
// section projection to distinguish "whole section requested" from
// "only specific children of this section were requested").
func (m *Mask) HasExact(path string) bool {
	if m == nil || m.all {
		return true
	}
	_, ok := m.tokens[strings.ToLower(path)]
	return ok
}
