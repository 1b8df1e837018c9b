package calc

import (
	"math"
	"math/big"
	"math/bits"

	"github.com/zephyrtronium/bigfloat"
)

// unary applies a unary operator.
func unary(op UnaryOp, x Number) (Number, error) {
	switch op {
	case Neg:
		if x.kind == FloatKind {
			return Float(-x.f), nil
		}
		if x.i == math.MinInt64 {
			return Number{}, &ArithmeticError{Op: op.String(), Msg: "integer overflow: -(" + x.String() + ")", Err: ErrOverflow}
		}
		return Int(-x.i), nil
	default:
		return Number{}, &OperatorError{Operator: op.String(), Unary: true}
	}
}

// binary applies a binary operator. Integer operands give integer results
// except for division, which is always true division, and exponentiation by a
// negative power.
func binary(op BinaryOp, x, y Number) (Number, error) {
	switch op {
	case Add:
		if x.IsInt() && y.IsInt() {
			return intresult(op, x, y)(addInt(x.i, y.i))
		}
		return Float(x.Float64() + y.Float64()), nil
	case Sub:
		if x.IsInt() && y.IsInt() {
			return intresult(op, x, y)(subInt(x.i, y.i))
		}
		return Float(x.Float64() - y.Float64()), nil
	case Mul:
		if x.IsInt() && y.IsInt() {
			return intresult(op, x, y)(mulInt(x.i, y.i))
		}
		return Float(x.Float64() * y.Float64()), nil
	case Div:
		if y.isZero() {
			return Number{}, &ArithmeticError{Op: op.String(), Msg: "division by zero", Err: ErrDivisionByZero}
		}
		return Float(x.Float64() / y.Float64()), nil
	case Mod:
		if x.IsInt() && y.IsInt() {
			if y.i == 0 {
				return Number{}, &ArithmeticError{Op: op.String(), Msg: "integer modulo by zero", Err: ErrDivisionByZero}
			}
			return Int(modInt(x.i, y.i)), nil
		}
		if y.isZero() {
			return Number{}, &ArithmeticError{Op: op.String(), Msg: "float modulo by zero", Err: ErrDivisionByZero}
		}
		return Float(modFloat(x.Float64(), y.Float64())), nil
	case Pow:
		if x.IsInt() && y.IsInt() && y.i >= 0 {
			return intresult(op, x, y)(powInt(x.i, y.i))
		}
		return powFloat(x.Float64(), y.Float64())
	default:
		return Number{}, &OperatorError{Operator: op.String()}
	}
}

// intresult creates a function to convert the result of an integer operation,
// reporting overflow in terms of the original operands.
func intresult(op BinaryOp, x, y Number) func(int64, bool) (Number, error) {
	return func(r int64, ok bool) (Number, error) {
		if !ok {
			return Number{}, &ArithmeticError{
				Op:  op.String(),
				Msg: "integer overflow: " + x.String() + " " + op.String() + " " + y.String(),
				Err: ErrOverflow,
			}
		}
		return Int(r), nil
	}
}

func addInt(a, b int64) (int64, bool) {
	c := a + b
	return c, (c > a) == (b > 0)
}

func subInt(a, b int64) (int64, bool) {
	c := a - b
	return c, (c < a) == (b > 0)
}

func mulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) || c/b != a {
		return c, false
	}
	return c, true
}

// modInt is floor modulo: the result has the sign of b.
func modInt(a, b int64) int64 {
	r := a % b
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

// modFloat is floor modulo: the result has the sign of b, including a zero
// result.
func modFloat(a, b float64) float64 {
	r := math.Mod(a, b)
	if r == 0 {
		return math.Copysign(0, b)
	}
	if (r < 0) != (b < 0) {
		r += b
	}
	return r
}

// powInt computes a**b for b >= 0 by repeated squaring.
func powInt(a, b int64) (int64, bool) {
	r := int64(1)
	var ok bool
	for b > 0 {
		if b&1 == 1 {
			if r, ok = mulInt(r, a); !ok {
				return 0, false
			}
		}
		b >>= 1
		if b > 0 {
			// Squaring only overflows when |a| >= 2, in which case the
			// remaining factors overflow the result too.
			if a, ok = mulInt(a, a); !ok {
				return 0, false
			}
		}
	}
	return r, true
}

// powprec is the base precision in bits of intermediate powers. Rounding
// error grows with the exponent, so each power adds guard bits on top of it.
const powprec = 64

// powFloat computes x**y in floating-point.
func powFloat(x, y float64) (Number, error) {
	switch {
	case y == 0:
		return Float(1), nil
	case math.IsNaN(x):
		return Float(x), nil
	case math.IsNaN(y):
		if x == 1 {
			return Float(1), nil
		}
		return Float(y), nil
	case math.IsInf(y, 0):
		ax := math.Abs(x)
		switch {
		case ax == 1:
			return Float(1), nil
		case (y > 0) == (ax > 1):
			return Float(math.Inf(1)), nil
		default:
			return Float(0), nil
		}
	case math.IsInf(x, 0):
		odd := isOdd(y)
		switch {
		case y > 0 && odd:
			return Float(x), nil
		case y > 0:
			return Float(math.Inf(1)), nil
		case odd:
			return Float(math.Copysign(0, x)), nil
		default:
			return Float(0), nil
		}
	case x == 0:
		if y < 0 {
			return Number{}, &ArithmeticError{Op: Pow.String(), Msg: "0.0 cannot be raised to a negative power", Err: ErrDivisionByZero}
		}
		if isOdd(y) {
			return Float(x), nil
		}
		return Float(0), nil
	}
	neg := false
	if x < 0 {
		if y != math.Trunc(y) {
			return Number{}, &ArithmeticError{Op: Pow.String(), Msg: "negative number cannot be raised to a fractional power", Err: ErrDomain}
		}
		neg = isOdd(y)
		x = -x
	}
	// Decide clear overflow and underflow before doing any precise work.
	t := y * math.Log(x)
	switch {
	case t > 720:
		return Number{}, overflow()
	case t < -760:
		return Float(math.Copysign(0, sign(neg))), nil
	}
	r, _ := powpos(x, y).Float64()
	if math.IsInf(r, 0) {
		return Number{}, overflow()
	}
	if neg {
		r = -r
	}
	return Float(r), nil
}

func overflow() error {
	return &ArithmeticError{Op: Pow.String(), Msg: "numerical result out of range", Err: ErrOverflow}
}

func sign(neg bool) float64 {
	if neg {
		return -1
	}
	return 1
}

// isOdd returns whether y is an odd integer.
func isOdd(y float64) bool {
	return y == math.Trunc(y) && math.Mod(y, 2) != 0
}

// powpos computes x**y for finite x > 0 and finite y with |y*ln(x)| small
// enough that the result is near float64 range.
func powpos(x, y float64) *big.Float {
	if y == math.Trunc(y) && math.Abs(y) <= 1<<53 {
		e := uint64(math.Abs(y))
		// Each squaring doubles the relative error, so the error grows
		// linearly with e.
		prec := uint(powprec + bits.Len64(e) + 8)
		return powbig(new(big.Float).SetPrec(prec).SetFloat64(x), e, y < 0)
	}
	// exp(y*ln(x)) turns absolute error in y*ln(x), which is at most 760 in
	// magnitude, into relative error in the result.
	const prec = powprec + 16
	bx := new(big.Float).SetPrec(prec).SetFloat64(x)
	by := new(big.Float).SetPrec(prec).SetFloat64(y)
	z := new(big.Float).SetPrec(prec)
	bigfloat.Pow(z, bx, by)
	return z
}

// powbig computes b**e, or 1/b**e if recip, by repeated squaring at the
// precision of b. It modifies b.
func powbig(b *big.Float, e uint64, recip bool) *big.Float {
	r := new(big.Float).SetPrec(b.Prec()).SetInt64(1)
	for e > 0 {
		if e&1 == 1 {
			r.Mul(r, b)
		}
		e >>= 1
		if e > 0 {
			b.Mul(b, b)
		}
	}
	if recip {
		r.Quo(new(big.Float).SetPrec(r.Prec()).SetInt64(1), r)
	}
	return r
}
