package canonical

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf8"

	berrors "github.com/boldpkg/bold/internal/errors"
)

// Marshal returns the canonical text of v.
//
// Every map key occurring anywhere in v is collected into one set and sorted
// lexicographically; each map is then written with its own keys in that global
// order. Lists keep their positions. The output is compact JSON.
//
// Strings must be valid UTF-8 (see Validate); invalid bytes would be written
// as U+FFFD and collide with other values.
func Marshal(v Value) []byte {
	keys := map[string]struct{}{}
	collectKeys(v, keys)

	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	rank := make(map[string]int, len(sorted))
	for i, k := range sorted {
		rank[k] = i
	}

	var buf bytes.Buffer
	e := &encoder{buf: &buf, rank: rank}
	e.value(v)
	return buf.Bytes()
}

// MarshalAny converts v with FromAny and returns its canonical text.
func MarshalAny(v any) ([]byte, error) {
	val, err := FromAny(v)
	if err != nil {
		return nil, err
	}
	return Marshal(val), nil
}

// Parse decodes JSON text into a Value. Numbers are normalised.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", berrors.ErrSerialization, err)
	}
	return FromAny(raw)
}

// Validate reports an ErrSerialization if any string or map key in v is not
// valid UTF-8, since such text has no lossless canonical form.
func Validate(v Value) error {
	switch val := v.(type) {
	case String:
		if !utf8.ValidString(string(val)) {
			return fmt.Errorf("%w: invalid UTF-8 in string %q", berrors.ErrSerialization, string(val))
		}
	case List:
		for i, e := range val {
			if err := Validate(e); err != nil {
				return fmt.Errorf("index %d: %w", i, err)
			}
		}
	case Map:
		for k, e := range val {
			if !utf8.ValidString(k) {
				return fmt.Errorf("%w: invalid UTF-8 in key %q", berrors.ErrSerialization, k)
			}
			if err := Validate(e); err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
		}
	}
	return nil
}

// Equal reports whether a and b have the same canonical text.
func Equal(a, b Value) bool {
	return bytes.Equal(Marshal(a), Marshal(b))
}

func collectKeys(v Value, keys map[string]struct{}) {
	switch val := v.(type) {
	case Map:
		for k, e := range val {
			keys[k] = struct{}{}
			collectKeys(e, keys)
		}
	case List:
		for _, e := range val {
			collectKeys(e, keys)
		}
	}
}

type encoder struct {
	buf  *bytes.Buffer
	rank map[string]int
}

func (e *encoder) value(v Value) {
	switch val := v.(type) {
	case nil, Null:
		e.buf.WriteString("null")
	case Bool:
		if val {
			e.buf.WriteString("true")
		} else {
			e.buf.WriteString("false")
		}
	case Number:
		e.buf.WriteString(string(val))
	case String:
		e.str(string(val))
	case List:
		e.buf.WriteByte('[')
		for i, el := range val {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			e.value(el)
		}
		e.buf.WriteByte(']')
	case Map:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			return e.rank[keys[i]] < e.rank[keys[j]]
		})

		e.buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			e.str(k)
			e.buf.WriteByte(':')
			e.value(val[k])
		}
		e.buf.WriteByte('}')
	}
}

// str writes a JSON string literal without HTML escaping.
func (e *encoder) str(s string) {
	var scratch bytes.Buffer
	enc := json.NewEncoder(&scratch)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	e.buf.Write(bytes.TrimSuffix(scratch.Bytes(), []byte("\n")))
}
