package record

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrMalformed marks every normalization failure.
var ErrMalformed = errors.New("malformed record")

// NormalizeError names the key path that could not be normalized.
type NormalizeError struct {
	Path   string
	Reason string
}

func (e *NormalizeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("malformed record: %s", e.Reason)
	}
	return fmt.Sprintf("malformed record at %s: %s", e.Path, e.Reason)
}

func (e *NormalizeError) Is(target error) bool { return target == ErrMalformed }

// Malformed builds a NormalizeError for path.
func Malformed(path, format string, args ...any) error {
	return &NormalizeError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// JoinPath appends key to a dotted key path.
func JoinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

var lower = cases.Lower(language.Und)

// CleanKey replaces dots with underscores and snake-cases the result.
func CleanKey(key string) string {
	return SnakeCase(strings.ReplaceAll(key, ".", "_"))
}

// SnakeCase inserts an underscore before each ASCII uppercase letter that
// starts an uppercase run not already preceded by an underscore, then
// lowercases the whole key. Acronyms stay together: "HRVValue" -> "hrvvalue".
func SnakeCase(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if i > 0 && isUpper(c) {
			prev := s[i-1]
			if !isUpper(prev) && prev != '_' {
				b.WriteByte('_')
			}
		}
		b.WriteByte(c)
	}
	return lower.String(b.String())
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

// Normalize rewrites m into canonical form and returns a new mapping. The
// input is not modified. Normalize is idempotent on its own output.
func Normalize(m *Mapping) (*Mapping, error) {
	return normalizeMapping(m, "")
}

func normalizeMapping(m *Mapping, path string) (*Mapping, error) {
	out := NewMapping()
	origin := make(map[string]string, m.Len())
	for _, key := range m.Keys() {
		clean := CleanKey(key)
		keyPath := JoinPath(path, key)
		if first, dup := origin[clean]; dup {
			return nil, Malformed(keyPath, "key collides with %q after rewrite to %q", first, clean)
		}
		origin[clean] = key

		v, _ := m.Get(key)
		nv, err := normalizeValue(v, keyPath)
		if err != nil {
			return nil, err
		}
		out.Set(clean, nv)
	}
	return out, nil
}

func normalizeValue(v Value, path string) (Value, error) {
	for v.Kind() == KindSequence && len(v.Sequence()) == 1 {
		v = v.Sequence()[0]
	}
	switch v.Kind() {
	case KindMapping:
		m, err := normalizeMapping(v.Mapping(), path)
		if err != nil {
			return Value{}, err
		}
		return MappingValue(m), nil
	case KindTable:
		if err := checkTable(v.Table(), path); err != nil {
			return Value{}, err
		}
		return v, nil
	default:
		return v, nil
	}
}

func checkTable(t *Table, path string) error {
	for _, name := range t.Columns() {
		cells, _ := t.Column(name)
		for row, cell := range cells {
			if cell.Kind() != KindScalar {
				return Malformed(JoinPath(path, name), "row %d holds a %s, tables hold scalars only", row, cell.Kind())
			}
		}
	}
	return nil
}
