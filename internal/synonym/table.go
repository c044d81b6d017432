package synonym

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// AmbiguousAliasError reports an alias listed under two canonical fields.
type AmbiguousAliasError struct {
	Alias  string
	First  Field
	Second Field
}

func (e *AmbiguousAliasError) Error() string {
	return fmt.Sprintf("alias %q is listed under both %s and %s", e.Alias, e.First, e.Second)
}

// Table maps canonical fields to their ordered aliases. A Table is immutable
// once built and safe for concurrent use.
type Table struct {
	aliases    map[Field][]string
	normalized map[Field][]string
}

// Normalize folds a header or alias for comparison: NFKC (full-width forms
// become half-width), Unicode case folding, and removal of all whitespace.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// New builds a validated table. Aliases that normalize to the same string
// within one field are collapsed; the same alias under two fields fails with
// an *AmbiguousAliasError.
func New(aliases map[Field][]string) (*Table, error) {
	for f := range aliases {
		if !f.Valid() {
			return nil, fmt.Errorf("unknown canonical field %q", f)
		}
	}

	t := &Table{
		aliases:    make(map[Field][]string, len(aliases)),
		normalized: make(map[Field][]string, len(aliases)),
	}
	owner := make(map[string]Field)
	for _, f := range Order {
		seen := make(map[string]bool)
		for _, alias := range aliases[f] {
			key := Normalize(alias)
			if key == "" {
				return nil, fmt.Errorf("empty alias for field %s", f)
			}
			if prev, ok := owner[key]; ok && prev != f {
				return nil, &AmbiguousAliasError{Alias: alias, First: prev, Second: f}
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			owner[key] = f
			t.aliases[f] = append(t.aliases[f], alias)
			t.normalized[f] = append(t.normalized[f], key)
		}
	}
	return t, nil
}

// MustNew is New that panics on error, for tables known to be valid.
func MustNew(aliases map[Field][]string) *Table {
	t, err := New(aliases)
	if err != nil {
		panic(err)
	}
	return t
}

// Default returns the built-in table.
func Default() *Table {
	return MustNew(defaultAliases)
}

// Candidates returns the aliases of a field in priority order.
func (t *Table) Candidates(f Field) []string {
	out := make([]string, len(t.aliases[f]))
	copy(out, t.aliases[f])
	return out
}

// NormalizedCandidates returns the normalized aliases of a field in priority
// order.
func (t *Table) NormalizedCandidates(f Field) []string {
	out := make([]string, len(t.normalized[f]))
	copy(out, t.normalized[f])
	return out
}

// Aliases returns a copy of the whole alias map.
func (t *Table) Aliases() map[Field][]string {
	out := make(map[Field][]string, len(t.aliases))
	for f := range t.aliases {
		out[f] = t.Candidates(f)
	}
	return out
}

// Merge returns a new table with extra aliases appended after the existing
// ones of each field. The result is validated like New.
func (t *Table) Merge(extra map[Field][]string) (*Table, error) {
	merged := t.Aliases()
	for f, aliases := range extra {
		merged[f] = append(merged[f], aliases...)
	}
	return New(merged)
}

// file is the YAML layout of an alias extension file:
//
//	fields:
//	  rooms_sold: [售出房數, "Rooms Occ"]
type file struct {
	Fields map[string][]string `yaml:"fields"`
}

// LoadFile reads alias extensions from a YAML file.
func LoadFile(path string) (map[Field][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read synonym file: %w", err)
	}
	return Parse(data)
}

// Parse decodes alias extensions from YAML.
func Parse(data []byte) (map[Field][]string, error) {
	var doc file
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse synonym file: %w", err)
	}
	out := make(map[Field][]string, len(doc.Fields))
	for name, aliases := range doc.Fields {
		f, ok := ParseField(name)
		if !ok {
			return nil, fmt.Errorf("unknown canonical field %q in synonym file", name)
		}
		out[f] = append(out[f], aliases...)
	}
	return out, nil
}

// Extend loads the YAML file at path and merges it into base. An empty path
// returns base unchanged.
func Extend(base *Table, path string) (*Table, error) {
	if path == "" {
		return base, nil
	}
	extra, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return base.Merge(extra)
}
