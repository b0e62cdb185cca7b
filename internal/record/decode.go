package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// DecodeFile reads a toolchain JSON export from disk.
func DecodeFile(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open record: %w", err)
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return m, nil
}

// Decode reads one JSON object. Object key order is preserved, arrays whose
// elements are all flat objects of scalars become tables, and other arrays
// become sequences.
func Decode(r io.Reader) (*Mapping, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, Malformed("", "top level must be an object")
	}
	m, err := decodeObject(dec, "")
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, Malformed("", "trailing data after top-level object")
	}
	return m, nil
}

func decodeObject(dec *json.Decoder, path string) (*Mapping, error) {
	m := NewMapping()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read key at %s: %w", path, err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, Malformed(path, "expected object key, got %v", tok)
		}
		keyPath := JoinPath(path, key)
		v, err := decodeValue(dec, keyPath)
		if err != nil {
			return nil, err
		}
		m.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("close object at %s: %w", path, err)
	}
	return m, nil
}

func decodeValue(dec *json.Decoder, path string) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, fmt.Errorf("read value at %s: %w", path, err)
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m, err := decodeObject(dec, path)
			if err != nil {
				return Value{}, err
			}
			return MappingValue(m), nil
		case '[':
			return decodeArray(dec, path)
		default:
			return Value{}, Malformed(path, "unexpected delimiter %q", t)
		}
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, Malformed(path, "invalid number %q", t.String())
		}
		return Scalar(f), nil
	case string, bool, nil:
		return Scalar(t), nil
	default:
		return Value{}, Malformed(path, "unsupported token %T", tok)
	}
}

func decodeArray(dec *json.Decoder, path string) (Value, error) {
	var items []Value
	for i := 0; dec.More(); i++ {
		v, err := decodeValue(dec, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, fmt.Errorf("close array at %s: %w", path, err)
	}

	if len(items) == 0 {
		return Sequence(), nil
	}
	rows := make([]*Mapping, 0, len(items))
	for _, item := range items {
		if item.Kind() != KindMapping || !flat(item.Mapping()) {
			return Sequence(items...), nil
		}
		rows = append(rows, item.Mapping())
	}
	return TableValue(TableFromRows(rows)), nil
}

// flat reports whether every value of m is a scalar.
func flat(m *Mapping) bool {
	for _, key := range m.Keys() {
		if v, _ := m.Get(key); v.Kind() != KindScalar {
			return false
		}
	}
	return true
}
