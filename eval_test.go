package calc_test

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/calc"
)

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name string
		src  string
		r    calc.Number
	}{
		{"precedence", "2 + 3 * 4", calc.Int(14)},
		{"neg-add", "-5 + 2", calc.Int(-3)},
		{"true-div", "7 / 2", calc.Float(3.5)},
		{"exact-div", "4 / 2", calc.Float(2)},
		{"pow", "2 ** 10", calc.Int(1024)},
		{"pow-right", "2 ** 3 ** 2", calc.Int(512)},
		{"neg-pow", "-2 ** 2", calc.Int(-4)},
		{"paren-neg-pow", "(-2) ** 2", calc.Int(4)},
		{"paren-neg-cube", "(-2) ** 3", calc.Int(-8)},
		{"pow-neg", "2 ** -1", calc.Float(0.5)},
		{"pow-neg-mul", "2 ** -2 * 8", calc.Float(2)},
		{"pow-zero", "0 ** 0", calc.Int(1)},
		{"float-pow-zero", "0.0 ** 0", calc.Float(1)},
		{"float-pow", "2.0 ** 10", calc.Float(1024)},
		{"cube-float", "(-8) ** 3.0", calc.Float(-512)},
		{"sub-left", "10 - 4 - 3", calc.Int(3)},
		{"div-left", "64 / 4 / 2", calc.Float(8)},
		{"mod", "7 % 3", calc.Int(1)},
		{"mod-neg-dividend", "-7 % 3", calc.Int(2)},
		{"mod-neg-divisor", "7 % -3", calc.Int(-2)},
		{"mod-both-neg", "-7 % -3", calc.Int(-1)},
		{"mod-float", "-7.5 % 2", calc.Float(0.5)},
		{"mod-float-neg", "7.5 % -2", calc.Float(-0.5)},
		{"mix-add", "1.5 + 1", calc.Float(2.5)},
		{"mix-add-int-first", "1 + 2.0", calc.Float(3)},
		{"float-sum", "0.1 + 0.2", calc.Float(0.30000000000000004)},
		{"mul-neg", "2*-3", calc.Int(-6)},
		{"negneg", "--5", calc.Int(5)},
		{"spaced-neg", "- 5", calc.Int(-5)},
		{"parens", "((((1))))", calc.Int(1)},
		{"group", "(1 + 2) * 3", calc.Int(9)},
		{"underscores", "1_000 + 0x10", calc.Int(1016)},
		{"bases", "0o17 + 0b11", calc.Int(18)},
		{"exponent", "1e3", calc.Float(1000)},
		{"points", ".5 + 5.", calc.Float(5.5)},
		{"zero-prefix", "00 + 0", calc.Int(0)},
		{"newline", "  2 +\n 3 ", calc.Int(5)},
		{"comment", "1 + 2 # comment", calc.Int(3)},
		{"big", "10 ** 18", calc.Int(1000000000000000000)},
		{"max", "9223372036854775807", calc.Int(math.MaxInt64)},
		{"min", "-9223372036854775807 - 1", calc.Int(math.MinInt64)},
		{"min-pow", "(-2) ** 63", calc.Int(math.MinInt64)},
		{"float-inf", "1e308 * 10", calc.Float(math.Inf(1))},
		{"float-literal-inf", "1e400", calc.Float(math.Inf(1))},
		{"underflow", "2.0 ** -2000", calc.Float(0)},
		{"inf-pow-neg", "1e400 ** -1", calc.Float(0)},
		{"one-pow-inf", "1 ** 1e400", calc.Float(1)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := calc.Evaluate(c.src)
			require.NoError(t, err)
			assert.Equal(t, c.r.Kind(), r.Kind(), "result %v", r)
			assert.Equal(t, c.r.String(), r.String())
			if r.IsInt() {
				want, _ := c.r.Int64()
				got, _ := r.Int64()
				assert.Equal(t, want, got)
			} else {
				assert.Equal(t, c.r.Float64(), r.Float64())
			}
		})
	}
}

func TestEvaluateInexact(t *testing.T) {
	cases := []struct {
		src string
		r   float64
	}{
		{"4 ** 0.5", 2},
		{"2 ** 0.5", math.Sqrt2},
		{"10 ** -0.5", 1 / math.Sqrt(10)},
		{"1.5 ** 2.5", math.Pow(1.5, 2.5)},
		{"(-2.0) ** -3", -0.125},
		{"1.0000000000001 ** 1000000000000000", 2.481624081749353e+43},
		{"1.000000001 ** 500000000000", 1.4036499350118054e+217},
		{"0.9999999999999 ** 1000000000000000", 3.606181920889104e-44},
		{"1.0000000000001 ** -1000000000000000", 1 / 2.481624081749353e+43},
		{"(-1.0000000000001) ** 999999999999999", -2.481624081749353e+43 / 1.0000000000001},
		{"1.0000001 ** 7000000000.5", 1.0141970224558122e+304},
	}
	for _, c := range cases {
		r, err := calc.Evaluate(c.src)
		if !assert.NoError(t, err, c.src) {
			continue
		}
		assert.Equal(t, calc.FloatKind, r.Kind(), c.src)
		assert.InDelta(t, c.r, r.Float64(), 1e-15*math.Abs(c.r), c.src)
	}
}

func TestEvaluateNaN(t *testing.T) {
	r, err := calc.Evaluate("1e400 - 1e400")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(r.Float64()))
	assert.Equal(t, "nan", r.String())
}

func TestEvaluateErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		err  error
	}{
		// arithmetic
		{"mod-zero", "5 % 0", calc.ErrDivisionByZero},
		{"div-zero", "5 / 0", calc.ErrDivisionByZero},
		{"zero-div-zero", "0 / 0", calc.ErrDivisionByZero},
		{"float-div-zero", "5.0 / 0.0", calc.ErrDivisionByZero},
		{"div-neg-zero", "1 / -0.0", calc.ErrDivisionByZero},
		{"mod-float-zero", "5 % 0.0", calc.ErrDivisionByZero},
		{"zero-pow-neg", "0 ** -1", calc.ErrDivisionByZero},
		{"float-zero-pow-neg", "0.0 ** -2.5", calc.ErrDivisionByZero},
		{"nested-div-zero", "1 + (2 * (3 / (4 - 4)))", calc.ErrDivisionByZero},
		{"add-overflow", "9223372036854775807 + 1", calc.ErrOverflow},
		{"sub-overflow", "-9223372036854775807 - 2", calc.ErrOverflow},
		{"mul-overflow", "4611686018427387904 * 2", calc.ErrOverflow},
		{"neg-overflow", "-(-9223372036854775807 - 1)", calc.ErrOverflow},
		{"pow-overflow", "2 ** 63", calc.ErrOverflow},
		{"pow-overflow-big", "10 ** 19", calc.ErrOverflow},
		{"literal-overflow", "9223372036854775808", calc.ErrOverflow},
		{"float-pow-overflow", "10.0 ** 400", calc.ErrOverflow},
		{"float-pow-overflow-near", "2.0 ** 1024", calc.ErrOverflow},
		{"fractional-root", "(-8) ** (1/3)", calc.ErrDomain},
		{"fractional-root-float", "(-2.0) ** 0.5", calc.ErrDomain},
		// syntax
		{"dangling", "2 +", calc.ErrInvalidExpression},
		{"empty", "", calc.ErrInvalidExpression},
		{"blank", " \n\t", calc.ErrInvalidExpression},
		{"unbalanced", "(1 + 2", calc.ErrInvalidExpression},
		{"malformed", "1__0", calc.ErrInvalidExpression},
		{"keyword", "if", calc.ErrInvalidExpression},
		{"bare-else", "1 else 2", calc.ErrInvalidExpression},
		{"unopened", ")))", calc.ErrInvalidExpression},
		{"dict-and-set", "{1: 2, 3}", calc.ErrInvalidExpression},
		{"statement", "import os", calc.ErrInvalidExpression},
		// unsupported operators
		{"floordiv", "7 // 2", calc.ErrUnsupportedOperator},
		{"lshift", "1 << 2", calc.ErrUnsupportedOperator},
		{"rshift", "4 >> 1", calc.ErrUnsupportedOperator},
		{"bitand", "1 & 3", calc.ErrUnsupportedOperator},
		{"bitor", "1 | 2", calc.ErrUnsupportedOperator},
		{"bitxor", "1 ^ 2", calc.ErrUnsupportedOperator},
		{"matmul", "2 @ 3", calc.ErrUnsupportedOperator},
		{"pos", "+1", calc.ErrUnsupportedOperator},
		{"invert", "~1", calc.ErrUnsupportedOperator},
		{"not", "not 1", calc.ErrUnsupportedOperator},
		{"nested-pos", "-(+1)", calc.ErrUnsupportedOperator},
		// unsupported expressions
		{"import", "__import__('os')", calc.ErrUnsupportedExpression},
		{"name", "x", calc.ErrUnsupportedExpression},
		{"name-operand", "2 + x", calc.ErrUnsupportedExpression},
		{"neg-name", "-x", calc.ErrUnsupportedExpression},
		{"true", "True", calc.ErrUnsupportedExpression},
		{"none", "None", calc.ErrUnsupportedExpression},
		{"string", "'a'", calc.ErrUnsupportedExpression},
		{"bytes", "b'a'", calc.ErrUnsupportedExpression},
		{"concat", "'a' 'b'", calc.ErrUnsupportedExpression},
		{"string-operand", "1 + 'a'", calc.ErrUnsupportedExpression},
		{"call", "f()", calc.ErrUnsupportedExpression},
		{"call-number", "(1)(2)", calc.ErrUnsupportedExpression},
		{"attr", "a.b", calc.ErrUnsupportedExpression},
		{"attr-number", "1 .real", calc.ErrUnsupportedExpression},
		{"index", "x[0]", calc.ErrUnsupportedExpression},
		{"tuple", "(1, 2)", calc.ErrUnsupportedExpression},
		{"unit", "()", calc.ErrUnsupportedExpression},
		{"list", "[1]", calc.ErrUnsupportedExpression},
		{"set", "{1}", calc.ErrUnsupportedExpression},
		{"dict", "{}", calc.ErrUnsupportedExpression},
		{"dict-entry", "{1: 2}", calc.ErrUnsupportedExpression},
		{"dict-unpack", "{**d}", calc.ErrUnsupportedExpression},
		{"slice", "x[1:2]", calc.ErrUnsupportedExpression},
		{"slice-step", "x[::2]", calc.ErrUnsupportedExpression},
		{"kwarg", "f(x=1)", calc.ErrUnsupportedExpression},
		{"star-arg", "f(*a)", calc.ErrUnsupportedExpression},
		{"conditional", "1 if 1 else 2", calc.ErrUnsupportedExpression},
		{"conditional-operand", "2 * (1 if 0 else 3)", calc.ErrUnsupportedExpression},
		{"lambda", "lambda: 1", calc.ErrUnsupportedExpression},
		{"lambda-params", "lambda x, y: x + y", calc.ErrUnsupportedExpression},
		{"compare", "1 < 2", calc.ErrUnsupportedExpression},
		{"equal", "1 == 1", calc.ErrUnsupportedExpression},
		{"in", "1 in 2", calc.ErrUnsupportedExpression},
		{"and", "1 and 2", calc.ErrUnsupportedExpression},
		{"or", "1 or 2", calc.ErrUnsupportedExpression},
		{"not-compare", "not (1 < 2)", calc.ErrUnsupportedExpression},
		{"complex", "1j", calc.ErrUnsupportedExpression},
		{"complex-operand", "2 * 3.5J", calc.ErrUnsupportedExpression},
		{"operand-before-operator", "'a' // 2", calc.ErrUnsupportedExpression},
		{"validated-first", "1 / 0 + f()", calc.ErrUnsupportedExpression},
		// depth
		{"deep", strings.Repeat("(", 1000) + "1" + strings.Repeat(")", 1000), calc.ErrTooComplex},
		{"deep-neg", strings.Repeat("-", 1000) + "1", calc.ErrTooComplex},
	}
	kinds := []error{
		calc.ErrInvalidExpression,
		calc.ErrUnsupportedOperator,
		calc.ErrUnsupportedExpression,
		calc.ErrDivisionByZero,
		calc.ErrOverflow,
		calc.ErrDomain,
		calc.ErrTooComplex,
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := calc.Evaluate(c.src)
			require.Error(t, err, "result %v", r)
			assert.ErrorIs(t, err, c.err)
			for _, k := range kinds {
				if k != c.err {
					assert.NotErrorIs(t, err, k)
				}
			}
			assert.NotEmpty(t, err.Error())
		})
	}
}

func TestErrorPositions(t *testing.T) {
	cases := []struct {
		src string
		pos int
		msg string
	}{
		{"__import__('os')", 1, "1: unsupported expression: call to __import__"},
		{"1 + x", 5, `5: unsupported expression: name "x"`},
		{"1 + 2 // 3", 7, `7: unsupported binary operator "//"`},
		{"1 - ~2", 5, `5: unsupported unary operator "~"`},
		{"2 + 'a'", 5, "5: unsupported expression: string literal 'a'"},
		{"1 < 2", 3, `3: unsupported expression: comparison "<"`},
		{"1 + {2: 3}", 5, "5: unsupported expression: dict"},
		{"1 + {}", 5, "5: unsupported expression: dict"},
		{"1 + {2}", 5, "5: unsupported expression: set"},
		{"2 * (1 if 0 else 3)", 6, "6: unsupported expression: conditional expression"},
		{"1 - lambda: 2", 5, "5: unsupported expression: lambda"},
		{"x[1:2]", 1, "1: unsupported expression: subscript"},
		{"1 + 9223372036854775808", 5, "5: integer literal 9223372036854775808 is out of range"},
		{"-0x8000000000000000", 2, "2: integer literal 0x8000000000000000 is out of range"},
		{")))", 1, "1: invalid expression: close bracket ) with no open bracket"},
		{"(1 + 2", 1, "1: invalid expression: open bracket ( with no close bracket"},
		{"1 $ 2", 3, "3: invalid expression: unexpected character '$'"},
		{"(1)", 0, ""},
	}
	for _, c := range cases {
		_, err := calc.Parse(c.src)
		if c.pos == 0 {
			assert.NoError(t, err, c.src)
			continue
		}
		var ie calc.InputError
		if !assert.ErrorAs(t, err, &ie, c.src) {
			continue
		}
		assert.Equal(t, c.pos, ie.Pos(), c.src)
		assert.Equal(t, c.msg, err.Error(), c.src)
	}
}

func TestArithmeticErrorMessages(t *testing.T) {
	cases := []struct {
		src string
		msg string
	}{
		{"5 % 0", "integer modulo by zero"},
		{"5 / 0", "division by zero"},
		{"5.0 % 0", "float modulo by zero"},
		{"0 ** -1", "0.0 cannot be raised to a negative power"},
		{"(-8) ** 0.5", "negative number cannot be raised to a fractional power"},
		{"10.0 ** 400", "numerical result out of range"},
		{"9223372036854775807 + 1", "integer overflow: 9223372036854775807 + 1"},
	}
	for _, c := range cases {
		_, err := calc.Evaluate(c.src)
		var ae *calc.ArithmeticError
		if assert.ErrorAs(t, err, &ae, c.src) {
			assert.Equal(t, c.msg, ae.Error(), c.src)
		}
	}
}

func TestParseOnce(t *testing.T) {
	e, err := calc.Parse("2 ** -1 + 3 * (4 - 1)")
	require.NoError(t, err)
	assert.Equal(t, "([(2) ** (-[1])] + [(3) * ([4] - [1])])", e.String())
	for i := 0; i < 3; i++ {
		r, err := e.Eval()
		require.NoError(t, err)
		assert.Equal(t, "9.5", r.String())
	}
	r, err := calc.Eval(e.Root())
	require.NoError(t, err)
	assert.Equal(t, "9.5", r.String())
}

func TestTreeFormat(t *testing.T) {
	cases := []struct {
		src  string
		tree string
	}{
		{"1", "(1)"},
		{"1 + 2", "([1] + [2])"},
		{"-2 ** 2", "(-[(2) ** (2)])"},
		{"2 ** 3 ** 2", "([2] ** [(3) ** (2)])"},
		{"1 - 2 - 3", "([(1) - (2)] - [3])"},
		{"7 / 2.0", "([7] / [2.0])"},
	}
	for _, c := range cases {
		e, err := calc.Parse(c.src)
		if assert.NoError(t, err, c.src) {
			assert.Equal(t, c.tree, e.String(), c.src)
			assert.Equal(t, c.tree, calc.Format(e.Root()), c.src)
		}
	}
}

func TestTreeShape(t *testing.T) {
	e, err := calc.Parse("-2 ** 2")
	require.NoError(t, err)
	u, ok := e.Root().(*calc.Unary)
	require.True(t, ok, "root is %T", e.Root())
	assert.Equal(t, calc.Neg, u.Op)
	b, ok := u.X.(*calc.Binary)
	require.True(t, ok, "operand is %T", u.X)
	assert.Equal(t, calc.Pow, b.Op)
	assert.Equal(t, &calc.Literal{Value: calc.Int(2)}, b.Left)
	assert.Equal(t, &calc.Literal{Value: calc.Int(2)}, b.Right)
}

func TestEvalBuiltTree(t *testing.T) {
	tree := &calc.Binary{
		Op:    calc.Mod,
		Left:  &calc.Unary{Op: calc.Neg, X: &calc.Literal{Value: calc.Int(7)}},
		Right: &calc.Literal{Value: calc.Float(2)},
	}
	r, err := calc.Eval(tree)
	require.NoError(t, err)
	assert.Equal(t, "1.0", r.String())

	_, err = calc.Eval(&calc.Binary{Op: calc.Add, Left: &calc.Literal{}})
	assert.ErrorIs(t, err, calc.ErrUnsupportedExpression)
	_, err = calc.Eval(&calc.Binary{Op: calc.BinaryOp(99), Left: &calc.Literal{}, Right: &calc.Literal{}})
	assert.ErrorIs(t, err, calc.ErrUnsupportedOperator)
	_, err = calc.Eval(&calc.Unary{Op: calc.UnaryOp(99), X: &calc.Literal{}})
	assert.ErrorIs(t, err, calc.ErrUnsupportedOperator)
}

func TestMaxDepth(t *testing.T) {
	src := strings.Repeat("(", 10) + "1" + strings.Repeat(")", 10)
	_, err := calc.Evaluate(src)
	assert.NoError(t, err)
	_, err = calc.Evaluate(src, calc.MaxDepth(5))
	assert.ErrorIs(t, err, calc.ErrTooComplex)
	var de *calc.DepthError
	if assert.ErrorAs(t, err, &de) {
		assert.Equal(t, 5, de.Max)
		assert.Equal(t, 6, de.Pos())
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	srcs := []string{"2 + 3 * 4", "7 / 2", "5 % 0", "2 +", "x", "2 ** 0.5", "7 // 2"}
	for _, src := range srcs {
		r1, err1 := calc.Evaluate(src)
		r2, err2 := calc.Evaluate(src)
		assert.Equal(t, r1, r2, src)
		if err1 == nil {
			assert.NoError(t, err2, src)
			continue
		}
		require.Error(t, err2, src)
		assert.Equal(t, err1.Error(), err2.Error(), src)
	}
}

func TestEvaluateConcurrent(t *testing.T) {
	srcs := map[string]string{
		"2 + 3 * 4":      "14",
		"-5 + 2":         "-3",
		"7 / 2":          "3.5",
		"2 ** 10":        "1024",
		"(1 + 3) ** 0.5": "2.0",
		"-7 % 3":         "2",
	}
	shared, err := calc.Parse("(2 ** 62 - 1) * 2 + 1")
	require.NoError(t, err)
	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				for src, want := range srcs {
					r, err := calc.Evaluate(src)
					if err != nil {
						errs <- err
						return
					}
					if r.String() != want {
						errs <- fmt.Errorf("%s: want %s, got %v", src, want, r)
						return
					}
				}
				r, err := shared.Eval()
				if err != nil {
					errs <- err
					return
				}
				if r.String() != "9223372036854775807" {
					errs <- fmt.Errorf("shared tree gave %v", r)
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

// TestIntegerArithmetic checks random unparenthesized integer expressions
// against a direct evaluation with two precedence levels.
func TestIntegerArithmetic(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	ops := []string{"+", "-", "*", "%"}
	for i := 0; i < 500; i++ {
		n := 1 + rng.Intn(6)
		vals := []int64{1 + rng.Int63n(20)}
		var opers []string
		var b strings.Builder
		b.WriteString(strconv.FormatInt(vals[0], 10))
		for j := 1; j < n; j++ {
			op := ops[rng.Intn(len(ops))]
			v := 1 + rng.Int63n(20)
			opers = append(opers, op)
			vals = append(vals, v)
			fmt.Fprintf(&b, " %s %d", op, v)
		}
		want := reference(vals, opers)
		r, err := calc.Evaluate(b.String())
		if !assert.NoError(t, err, b.String()) {
			continue
		}
		got, ok := r.Int64()
		assert.True(t, ok, "%s gave non-integer %v", b.String(), r)
		assert.Equal(t, want, got, b.String())
	}
}

// reference evaluates alternating operands and operators with * and % binding
// more tightly than + and -, all left-associative. Divisors must be positive.
func reference(vals []int64, ops []string) int64 {
	terms := []int64{vals[0]}
	var signs []string
	for i, op := range ops {
		v := vals[i+1]
		last := &terms[len(terms)-1]
		switch op {
		case "*":
			*last *= v
		case "%":
			*last = (*last%v + v) % v
		default:
			terms = append(terms, v)
			signs = append(signs, op)
		}
	}
	r := terms[0]
	for i, s := range signs {
		if s == "+" {
			r += terms[i+1]
		} else {
			r -= terms[i+1]
		}
	}
	return r
}

func TestErrorKindsDistinct(t *testing.T) {
	kinds := []error{
		calc.ErrInvalidExpression,
		calc.ErrUnsupportedOperator,
		calc.ErrUnsupportedExpression,
		calc.ErrDivisionByZero,
		calc.ErrOverflow,
		calc.ErrDomain,
		calc.ErrTooComplex,
	}
	for i, a := range kinds {
		for j, b := range kinds {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v matches %v", a, b)
			}
		}
	}
}
