package postage

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Kind enumerates the types an additional data Value can hold.
type Kind uint8

const (
	KindString Kind = iota + 1
	KindInt
	KindFloat
	KindBool
	KindTime
	KindDecimal
)

// Value is a module specific datum stored alongside a postage, such as a
// pickup point name or a tracking service level. The zero Value is invalid.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
	t    time.Time
	d    decimal.Decimal
}

// String wraps a string.
func String(v string) Value { return Value{kind: KindString, s: v} }

// Int wraps an integer.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Float wraps a floating point number.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// Bool wraps a boolean.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Time wraps a point in time.
func Time(v time.Time) Value { return Value{kind: KindTime, t: v} }

// Decimal wraps a monetary or otherwise exact amount.
func Decimal(v decimal.Decimal) Value { return Value{kind: KindDecimal, d: v} }

// Kind returns the kind of v, 0 for the zero Value.
func (v Value) Kind() Kind { return v.kind }

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsInt returns the integer held by v.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsFloat returns the float held by v.
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsTime returns the time held by v.
func (v Value) AsTime() (time.Time, bool) { return v.t, v.kind == KindTime }

// AsDecimal returns the decimal held by v.
func (v Value) AsDecimal() (decimal.Decimal, bool) { return v.d, v.kind == KindDecimal }

// Any returns the wrapped value as a plain Go value. Decimals are rendered
// as strings so they survive JSON round trips without losing precision.
func (v Value) Any() any {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindTime:
		return v.t
	case KindDecimal:
		return v.d.String()
	default:
		return nil
	}
}

// MarshalJSON encodes the wrapped value.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

// AdditionalData maps keys to module specific values.
type AdditionalData map[string]Value

// Has reports whether key is set.
func (a AdditionalData) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// Get returns the value for key.
func (a AdditionalData) Get(key string) (Value, bool) {
	v, ok := a[key]
	return v, ok
}

// Plain converts the data to plain Go values, see Value.Any.
func (a AdditionalData) Plain() map[string]any {
	if len(a) == 0 {
		return nil
	}

	out := make(map[string]any, len(a))
	for k, v := range a {
		out[k] = v.Any()
	}

	return out
}
