// Package schema maps the headers of a spreadsheet export to canonical fields.
package schema

import (
	"fmt"
	"strings"

	"github.com/iwvelando/roomrev/internal/synonym"
)

// SchemaResolutionError reports required fields with no matching header.
type SchemaResolutionError struct {
	Missing []synonym.Field
	Headers []string
}

func (e *SchemaResolutionError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return fmt.Sprintf("required fields not found in headers: %s", strings.Join(names, ", "))
}

// Mapping assigns header positions to canonical fields. Each field maps to at
// most one header and each header to at most one field.
type Mapping struct {
	Headers []string
	Columns map[synonym.Field]int
	// Absent lists the fields no header matched, in canonical order.
	Absent []synonym.Field
}

// Index returns the header position of a field.
func (m Mapping) Index(f synonym.Field) (int, bool) {
	i, ok := m.Columns[f]
	return i, ok
}

// Has reports whether the field was matched.
func (m Mapping) Has(f synonym.Field) bool {
	_, ok := m.Columns[f]
	return ok
}

// Field returns the field claimed by the header at position i.
func (m Mapping) Field(i int) (synonym.Field, bool) {
	for f, col := range m.Columns {
		if col == i {
			return f, true
		}
	}
	return "", false
}

// Fields returns the matched fields in canonical order.
func (m Mapping) Fields() []synonym.Field {
	var out []synonym.Field
	for _, f := range synonym.Order {
		if m.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Options adjusts resolution.
type Options struct {
	// Overrides pins fields to an explicit header name, bypassing aliases.
	Overrides map[synonym.Field]string
}

// Resolve maps headers to canonical fields and returns the unmatched fields.
// Fields are processed in canonical order and aliases in priority order; the
// leftmost unclaimed header equal to an alias wins. A header claimed by an
// earlier field is unavailable to later ones.
func Resolve(table *synonym.Table, headers []string) (Mapping, []synonym.Field, error) {
	return ResolveWithOptions(table, headers, Options{})
}

// ResolveWithOptions is Resolve with caller overrides applied first.
func ResolveWithOptions(table *synonym.Table, headers []string, opts Options) (Mapping, []synonym.Field, error) {
	m := Mapping{
		Headers: append([]string(nil), headers...),
		Columns: make(map[synonym.Field]int),
	}

	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = synonym.Normalize(h)
	}
	claimed := make([]bool, len(headers))

	for f := range opts.Overrides {
		if !f.Valid() {
			return Mapping{}, nil, fmt.Errorf("override for unknown field %q", f)
		}
	}
	for _, f := range synonym.Order {
		name, ok := opts.Overrides[f]
		if !ok {
			continue
		}
		i := find(normalized, claimed, synonym.Normalize(name))
		if i < 0 {
			return Mapping{}, nil, fmt.Errorf("override for %s names header %q which is not present", f, name)
		}
		m.Columns[f] = i
		claimed[i] = true
	}

	for _, f := range synonym.Order {
		if m.Has(f) {
			continue
		}
		for _, alias := range table.NormalizedCandidates(f) {
			if i := find(normalized, claimed, alias); i >= 0 {
				m.Columns[f] = i
				claimed[i] = true
				break
			}
		}
		if !m.Has(f) {
			m.Absent = append(m.Absent, f)
		}
	}

	var missing []synonym.Field
	for _, f := range synonym.Required {
		if !m.Has(f) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return m, m.Absent, &SchemaResolutionError{Missing: missing, Headers: m.Headers}
	}
	return m, m.Absent, nil
}

func find(normalized []string, claimed []bool, key string) int {
	for i, h := range normalized {
		if !claimed[i] && h == key {
			return i
		}
	}
	return -1
}
