// Package expr defines the JSON-like expression value fed to the
// compiler: an int, a string, a bool, or an array of values. Decoding
// the raw bytes off a socket is internal/transport's job; this package
// only owns the value's shape and its JSON codec.
package expr

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind discriminates the variant held by a Value.
type Kind int

const (
	KindInt Kind = iota
	KindString
	KindBool
	KindArray
)

// Value is a tagged union over the handful of shapes a query
// expression can take: an integer tag id, a string (a word or a
// wildcard pattern), a bool, or a nested array. Built on encoding/json
// rather than a third-party JSON library — see DESIGN.md.
type Value struct {
	kind Kind
	i    int64
	s    string
	b    bool
	arr  []Value
}

// Int builds an integer expression value.
func Int(n int64) Value { return Value{kind: KindInt, i: n} }

// Str builds a string expression value.
func Str(s string) Value { return Value{kind: KindString, s: s} }

// Bool builds a boolean expression value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Arr builds an array expression value.
func Arr(vs ...Value) Value { return Value{kind: KindArray, arr: vs} }

func (v Value) Kind() Kind    { return v.kind }
func (v Value) Int() int64    { return v.i }
func (v Value) Str() string   { return v.s }
func (v Value) Bool() bool    { return v.b }
func (v Value) Arr() []Value  { return v.arr }

func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindString:
		return v.s
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindArray:
		return fmt.Sprintf("%v", v.arr)
	default:
		return "<invalid>"
	}
}

// UnmarshalJSON decodes an int, string, bool, or heterogeneous array into
// a Value, using json.Number to keep integers exact.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	val, err := fromAny(raw)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

func fromAny(raw interface{}) (Value, error) {
	switch t := raw.(type) {
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return Value{}, fmt.Errorf("tagd/expr: non-integer number %q: %w", t, err)
		}
		return Int(n), nil
	case string:
		return Str(t), nil
	case bool:
		return Bool(t), nil
	case []interface{}:
		vs := make([]Value, len(t))
		for i, e := range t {
			cv, err := fromAny(e)
			if err != nil {
				return Value{}, err
			}
			vs[i] = cv
		}
		return Arr(vs...), nil
	default:
		return Value{}, fmt.Errorf("tagd/expr: unsupported value of type %T", raw)
	}
}

// MarshalJSON encodes a Value back to its JSON form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInt:
		return json.Marshal(v.i)
	case KindString:
		return json.Marshal(v.s)
	case KindBool:
		return json.Marshal(v.b)
	case KindArray:
		return json.Marshal(v.arr)
	default:
		return nil, fmt.Errorf("tagd/expr: value has no kind set")
	}
}
