// Package header provides an ordered, duplicate-preserving, byte-string
// header representation for HTTP/1.1 and HTTP/2 requests and responses.
//
// Go's net/textproto and net/http normalize header names (canonical casing),
// collapse duplicates into slices keyed by a folded name, and generally
// assume headers are well-formed text. None of that is acceptable here: the
// detection engine must be able to emit and observe headers whose names and
// values violate RFC 7230 token/vchar rules, and it must preserve exact
// case, exact duplicate order, and exact byte content throughout.
package header

import "bytes"

// Field is a single header name/value pair. Both are byte-strings, not
// character strings: they may contain bytes that are not valid UTF-8 and
// must never be normalized, folded, reordered, or deduplicated.
type Field struct {
	Name  []byte
	Value []byte
}

// NewField builds a Field from Go strings, for callers that only need ASCII
// convenience. The bytes are copied verbatim; no case or whitespace
// transformation is applied.
func NewField(name, value string) Field {
	return Field{Name: []byte(name), Value: []byte(value)}
}

// NameString returns the field name as a string, for display/comparison
// purposes. Byte-identity is preserved; this is not a canonicalization.
func (f Field) NameString() string { return string(f.Name) }

// ValueString returns the field value as a string.
func (f Field) ValueString() string { return string(f.Value) }

// EqualFold reports whether the field's name matches name under ASCII
// case-insensitive comparison, mirroring HTTP's case-insensitive header
// name semantics without canonicalizing the stored bytes.
func (f Field) EqualFold(name string) bool {
	return asciiEqualFold(f.Name, []byte(name))
}

// List is an ordered sequence of header fields. Duplicates are legal and
// retain their original position; callers that need "the value of X" must
// decide themselves whether they want the first, last, or all occurrences.
type List []Field

// Add appends a field, preserving order. It never merges with an existing
// entry of the same name.
func (l *List) Add(name, value string) {
	*l = append(*l, NewField(name, value))
}

// AddField appends a pre-built Field, preserving order.
func (l *List) AddField(f Field) {
	*l = append(*l, f)
}

// AddBytes appends a field built from raw byte slices, without any copy
// beyond what the caller already owns.
func (l *List) AddBytes(name, value []byte) {
	*l = append(*l, Field{Name: name, Value: value})
}

// Get returns the value of the first field matching name (case-insensitive),
// and whether it was found. Use All for every occurrence.
func (l List) Get(name string) (string, bool) {
	for _, f := range l {
		if f.EqualFold(name) {
			return f.ValueString(), true
		}
	}
	return "", false
}

// All returns every field matching name (case-insensitive), in order.
func (l List) All(name string) []Field {
	var out []Field
	for _, f := range l {
		if f.EqualFold(name) {
			out = append(out, f)
		}
	}
	return out
}

// Count returns how many fields match name (case-insensitive).
func (l List) Count(name string) int {
	n := 0
	for _, f := range l {
		if f.EqualFold(name) {
			n++
		}
	}
	return n
}

// Clone returns a deep copy: the List, its Fields, and their byte slices are
// all independent of the original.
func (l List) Clone() List {
	out := make(List, len(l))
	for i, f := range l {
		out[i] = Field{
			Name:  append([]byte(nil), f.Name...),
			Value: append([]byte(nil), f.Value...),
		}
	}
	return out
}

// Without returns a copy of l with every field matching name removed,
// leaving the relative order of the remaining fields unchanged. It is the
// caller's responsibility to decide when stripping is appropriate; nothing
// in this package strips headers implicitly.
func (l List) Without(name string) List {
	out := make(List, 0, len(l))
	for _, f := range l {
		if !f.EqualFold(name) {
			out = append(out, f)
		}
	}
	return out
}

func asciiEqualFold(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// HasToken reports whether value, interpreted as a comma-separated list per
// RFC 7230 Section 7, contains token (case-insensitive), ignoring
// surrounding optional whitespace around each comma-separated item. This is
// deliberately narrow: it does not attempt full RFC 7230 list-value parsing,
// only a comma split and whitespace trim. The token's position in the list is
// not considered; use LastToken to check the final coding.
func HasToken(value string, token string) bool {
	for _, part := range splitComma(value) {
		if asciiEqualFold(bytes.TrimSpace([]byte(part)), []byte(token)) {
			return true
		}
	}
	return false
}

// LastToken returns the last comma-separated token in value, with
// surrounding whitespace trimmed.
func LastToken(value string) string {
	parts := splitComma(value)
	if len(parts) == 0 {
		return ""
	}
	return string(bytes.TrimSpace([]byte(parts[len(parts)-1])))
}

func splitComma(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
