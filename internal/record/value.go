package record

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindScalar Kind = iota
	KindSequence
	KindMapping
	KindTable
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	case KindTable:
		return "table"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is one node of an external record. The zero Value is a null scalar.
type Value struct {
	kind    Kind
	scalar  any
	seq     []Value
	mapping *Mapping
	table   *Table
}

// Scalar wraps a leaf value: nil, bool, float64, int, or string.
func Scalar(v any) Value { return Value{kind: KindScalar, scalar: v} }

// Sequence wraps an ordered list of values.
func Sequence(items ...Value) Value { return Value{kind: KindSequence, seq: items} }

// MappingValue wraps a nested mapping.
func MappingValue(m *Mapping) Value { return Value{kind: KindMapping, mapping: m} }

// TableValue wraps a columnar table.
func TableValue(t *Table) Value { return Value{kind: KindTable, table: t} }

func (v Value) Kind() Kind { return v.kind }

// Scalar returns the leaf value; nil for non-scalars.
func (v Value) Scalar() any {
	if v.kind != KindScalar {
		return nil
	}
	return v.scalar
}

func (v Value) Sequence() []Value {
	if v.kind != KindSequence {
		return nil
	}
	return v.seq
}

func (v Value) Mapping() *Mapping {
	if v.kind != KindMapping {
		return nil
	}
	return v.mapping
}

func (v Value) Table() *Table {
	if v.kind != KindTable {
		return nil
	}
	return v.table
}

// IsNull reports whether v is a null scalar.
func (v Value) IsNull() bool {
	return v.kind == KindScalar && v.scalar == nil
}

// Float converts a numeric or numeric-string scalar.
func (v Value) Float() (float64, bool) {
	if v.kind != KindScalar {
		return 0, false
	}
	switch s := v.scalar.(type) {
	case float64:
		return s, true
	case int:
		return float64(s), true
	case int64:
		return float64(s), true
	case bool:
		if s {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Int converts an integral scalar.
func (v Value) Int() (int, bool) {
	f, ok := v.Float()
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// Text returns string scalars verbatim; other scalars are not converted.
func (v Value) Text() (string, bool) {
	if v.kind != KindScalar {
		return "", false
	}
	s, ok := v.scalar.(string)
	return s, ok
}

// Equal reports deep structural equality.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindScalar:
		return reflect.DeepEqual(v.scalar, other.scalar)
	case KindSequence:
		if len(v.seq) != len(other.seq) {
			return false
		}
		for i := range v.seq {
			if !v.seq[i].Equal(other.seq[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		return v.mapping.Equal(other.mapping)
	case KindTable:
		return v.table.Equal(other.table)
	}
	return false
}
