package calc

import (
	"math"
	"strconv"
	"strings"
)

// Kind is the tag of a Number.
type Kind int8

const (
	// IntKind is an exact 64-bit integer.
	IntKind Kind = iota
	// FloatKind is a double-precision floating-point number.
	FloatKind
)

func (k Kind) String() string {
	switch k {
	case IntKind:
		return "int"
	case FloatKind:
		return "float"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Number is the result of an evaluation. Its zero value is the integer 0.
type Number struct {
	kind Kind
	i    int64
	f    float64
}

// Int creates an integer Number.
func Int(v int64) Number {
	return Number{kind: IntKind, i: v}
}

// Float creates a floating-point Number.
func Float(v float64) Number {
	return Number{kind: FloatKind, f: v}
}

// Kind returns the tag of n.
func (n Number) Kind() Kind {
	return n.kind
}

// IsInt returns whether n is an exact integer.
func (n Number) IsInt() bool {
	return n.kind == IntKind
}

// Int64 returns the value of n if it is an integer. The second result is
// false if n is a float, even if the float has an integral value.
func (n Number) Int64() (int64, bool) {
	if n.kind != IntKind {
		return 0, false
	}
	return n.i, true
}

// Float64 returns the value of n as a float. Integers with magnitude above
// 2^53 are rounded.
func (n Number) Float64() float64 {
	if n.kind == IntKind {
		return float64(n.i)
	}
	return n.f
}

// isZero reports whether n is an integer or float zero of either sign.
func (n Number) isZero() bool {
	if n.kind == IntKind {
		return n.i == 0
	}
	return n.f == 0
}

// String formats n. Integers have no decimal point. Floats use the shortest
// representation that round-trips, in positional notation when the decimal
// exponent is in [-4, 16) and always with a fractional part there, otherwise
// in scientific notation: 3.5, 1024.0, 1e+16, 1e-05, inf, nan.
func (n Number) String() string {
	if n.kind == IntKind {
		return strconv.FormatInt(n.i, 10)
	}
	return formatFloat(n.f)
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	k := strings.LastIndexByte(s, 'e')
	exp, err := strconv.Atoi(s[k+1:])
	if err != nil {
		panic("calc: bad float format " + s)
	}
	if exp < -4 || exp >= 16 {
		return s
	}
	s = strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// MarshalJSON encodes n as a JSON number. Non-finite floats, which JSON
// cannot represent, are encoded as the strings "inf", "-inf", and "nan".
func (n Number) MarshalJSON() ([]byte, error) {
	s := n.String()
	if n.kind == FloatKind && (math.IsInf(n.f, 0) || math.IsNaN(n.f)) {
		return []byte(strconv.Quote(s)), nil
	}
	return []byte(s), nil
}

// MarshalYAML encodes n as a YAML int or float.
func (n Number) MarshalYAML() (interface{}, error) {
	if n.kind == IntKind {
		return n.i, nil
	}
	return n.f, nil
}
