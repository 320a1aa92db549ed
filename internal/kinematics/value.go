package kinematics

import (
	"math"
	"strconv"
)

// Value is an optional float64. The zero Value is undefined.
//
// Arithmetic on Values propagates undefinedness; NaN only appears when a
// Value is flattened with Float64 for serialization.
type Value struct {
	v  float64
	ok bool
}

// Some returns a defined Value. NaN and ±Inf are not representable and
// collapse to an undefined Value.
func Some(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}
	}
	return Value{v: v, ok: true}
}

// None returns an undefined Value.
func None() Value { return Value{} }

// Get returns the underlying number and whether it is defined.
func (v Value) Get() (float64, bool) { return v.v, v.ok }

// Valid reports whether v is defined.
func (v Value) Valid() bool { return v.ok }

// Float64 returns the number, or NaN when undefined.
func (v Value) Float64() float64 {
	if !v.ok {
		return math.NaN()
	}
	return v.v
}

// Sub returns v - o.
func (v Value) Sub(o Value) Value {
	if !v.ok || !o.ok {
		return Value{}
	}
	return Some(v.v - o.v)
}

// Div returns v / d. Division by a non-positive step is undefined.
func (v Value) Div(d float64) Value {
	if !v.ok || !(d > 0) {
		return Value{}
	}
	return Some(v.v / d)
}

// Mul returns v * k.
func (v Value) Mul(k float64) Value {
	if !v.ok {
		return Value{}
	}
	return Some(v.v * k)
}

func (v Value) String() string {
	if !v.ok {
		return "NaN"
	}
	return strconv.FormatFloat(v.v, 'g', -1, 64)
}
