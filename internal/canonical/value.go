// Package canonical provides the closed value model used for recipe metadata
// and its key-order independent text encoding.
//
// A Value is one of Null, Bool, Number, String, List or Map. Two values that
// differ only in the insertion order of map keys encode to identical bytes,
// which makes the encoding suitable as hashing input.
package canonical

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"unicode/utf8"

	berrors "github.com/boldpkg/bold/internal/errors"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is a node of a nested metadata document.
type Value interface {
	Kind() Kind
	sealed()
}

// Null is the JSON null.
type Null struct{}

// Bool is a boolean scalar.
type Bool bool

// Number is a numeric scalar held in its canonical decimal text form.
// Construct it with Int, Float or ParseNumber.
type Number string

// String is a text scalar.
type String string

// List is an ordered sequence. Order is significant and never sorted.
type List []Value

// Map is a string-keyed mapping. Key order carries no meaning.
type Map map[string]Value

func (Null) Kind() Kind   { return KindNull }
func (Bool) Kind() Kind   { return KindBool }
func (Number) Kind() Kind { return KindNumber }
func (String) Kind() Kind { return KindString }
func (List) Kind() Kind   { return KindList }
func (Map) Kind() Kind    { return KindMap }

func (Null) sealed()   {}
func (Bool) sealed()   {}
func (Number) sealed() {}
func (String) sealed() {}
func (List) sealed()   {}
func (Map) sealed()    {}

// Int returns the Number for an integer.
func Int(i int64) Number {
	return Number(strconv.FormatInt(i, 10))
}

// Float returns the Number for a float. NaN and infinities have no
// canonical form and are rejected.
func Float(f float64) (Number, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("%w: non-finite number %v", berrors.ErrSerialization, f)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return Int(int64(f)), nil
	}
	// encoding/json renders floats in the shortest round-trip form.
	b, err := json.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("%w: %v", berrors.ErrSerialization, err)
	}
	return Number(b), nil
}

// ParseNumber normalises numeric text, so "1.0" and "1" are the same Number.
// Integers that fit in int64 or uint64 keep their exact digits.
func ParseNumber(s string) (Number, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i), nil
	}
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return Number(strconv.FormatUint(u, 10)), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", fmt.Errorf("%w: invalid number %q", berrors.ErrSerialization, s)
	}
	return Float(f)
}

// Get returns the value at key when v is a Map.
func (m Map) Get(key string) (Value, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m[key]
	return v, ok
}

// GetString returns the string at key, or "" if absent or not a string.
func (m Map) GetString(key string) string {
	if s, ok := m[key].(String); ok {
		return string(s)
	}
	return ""
}

// GetMap returns the map at key, or nil if absent or not a map.
func (m Map) GetMap(key string) Map {
	if sub, ok := m[key].(Map); ok {
		return sub
	}
	return nil
}

// Clone returns a deep copy of v. Scalars are immutable and shared.
func Clone(v Value) Value {
	switch val := v.(type) {
	case Map:
		out := make(Map, len(val))
		for k, e := range val {
			out[k] = Clone(e)
		}
		return out
	case List:
		out := make(List, len(val))
		for i, e := range val {
			out[i] = Clone(e)
		}
		return out
	case nil:
		return Null{}
	default:
		return v
	}
}

// FromAny converts plain Go data (as produced by encoding/json, yaml or CUE
// decoding) into a Value. Maps must have string keys. Cyclic maps or slices
// and unsupported types (funcs, channels, structs) are serialization errors.
func FromAny(v any) (Value, error) {
	return fromAny(reflect.ValueOf(v), map[uintptr]bool{})
}

func fromAny(rv reflect.Value, path map[uintptr]bool) (Value, error) {
	if !rv.IsValid() {
		return Null{}, nil
	}
	if rv.CanInterface() {
		switch v := rv.Interface().(type) {
		case Value:
			return Clone(v), nil
		case json.Number:
			return ParseNumber(v.String())
		}
	}

	switch rv.Kind() {
	case reflect.Interface, reflect.Pointer:
		if rv.IsNil() {
			return Null{}, nil
		}
		return fromAny(rv.Elem(), path)
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.String:
		if !utf8.ValidString(rv.String()) {
			return nil, fmt.Errorf("%w: invalid UTF-8 in string %q", berrors.ErrSerialization, rv.String())
		}
		return String(rv.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Number(strconv.FormatUint(u, 10)), nil
		}
		return Int(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice {
			if rv.IsNil() {
				return List{}, nil
			}
			ptr := rv.Pointer()
			if path[ptr] && rv.Len() > 0 {
				return nil, fmt.Errorf("%w: cyclic slice", berrors.ErrSerialization)
			}
			path[ptr] = true
			defer delete(path, ptr)
		}
		out := make(List, rv.Len())
		for i := range rv.Len() {
			e, err := fromAny(rv.Index(i), path)
			if err != nil {
				return nil, err
			}
			out[i] = e
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: map key type %s", berrors.ErrSerialization, rv.Type().Key())
		}
		if rv.IsNil() {
			return Map{}, nil
		}
		ptr := rv.Pointer()
		if path[ptr] {
			return nil, fmt.Errorf("%w: cyclic map", berrors.ErrSerialization)
		}
		path[ptr] = true
		defer delete(path, ptr)

		out := make(Map, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			if !utf8.ValidString(iter.Key().String()) {
				return nil, fmt.Errorf("%w: invalid UTF-8 in key %q", berrors.ErrSerialization, iter.Key().String())
			}
			e, err := fromAny(iter.Value(), path)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", iter.Key().String(), err)
			}
			out[iter.Key().String()] = e
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unsupported type %s", berrors.ErrSerialization, rv.Type())
	}
}

// ToAny converts v back to plain Go data: nil, bool, json.Number, string,
// []any and map[string]any.
func ToAny(v Value) any {
	switch val := v.(type) {
	case Bool:
		return bool(val)
	case Number:
		return json.Number(val)
	case String:
		return string(val)
	case List:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = ToAny(e)
		}
		return out
	case Map:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = ToAny(e)
		}
		return out
	default:
		return nil
	}
}
