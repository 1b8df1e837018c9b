package calc

import (
	"errors"
	"strconv"
)

// Error kinds. Every error returned by Parse, Eval, and Evaluate matches
// exactly one of these with errors.Is.
var (
	// ErrInvalidExpression is the kind of errors for text that is not a
	// syntactically valid expression.
	ErrInvalidExpression = errors.New("invalid expression")
	// ErrUnsupportedOperator is the kind of errors for operators outside the
	// supported arithmetic set, e.g. // or unary ~.
	ErrUnsupportedOperator = errors.New("unsupported operator")
	// ErrUnsupportedExpression is the kind of errors for constructs which are
	// valid syntax but not arithmetic, e.g. calls, names, or strings.
	ErrUnsupportedExpression = errors.New("unsupported expression")
	// ErrDivisionByZero is the kind of errors for division or modulo by zero
	// and for raising zero to a negative power.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrOverflow is the kind of errors for results which cannot be
	// represented, e.g. integers outside the int64 range.
	ErrOverflow = errors.New("numeric result out of range")
	// ErrDomain is the kind of errors for operations with no real result.
	ErrDomain = errors.New("math domain error")
	// ErrTooComplex is the kind of errors for expressions nested too deeply.
	ErrTooComplex = errors.New("expression too complex")
)

// SyntaxError is an error indicating that the input is not a well-formed
// expression. It implements InputError and matches ErrInvalidExpression.
type SyntaxError struct {
	// Col is the column of the token where parsing failed.
	Col int
	// Msg describes the problem.
	Msg string
	// Err is the underlying parser error, if any.
	Err error
}

func (err *SyntaxError) Error() string {
	return errpos(err.Col, "invalid expression: "+err.Msg)
}

func (err *SyntaxError) Pos() int {
	return err.Col
}

func (err *SyntaxError) Unwrap() error {
	return err.Err
}

func (err *SyntaxError) Is(target error) bool {
	return target == ErrInvalidExpression
}

// OperatorError is an error indicating an operator that is outside the
// supported set. It implements InputError and matches ErrUnsupportedOperator.
type OperatorError struct {
	// Col is the position of the operator.
	Col int
	// Operator is the operator that is not supported.
	Operator string
	// Unary is whether the operator was used as a unary operator.
	Unary bool
}

func (err *OperatorError) Error() string {
	s := "binary"
	if err.Unary {
		s = "unary"
	}
	return errpos(err.Col, "unsupported "+s+" operator "+strconv.Quote(err.Operator))
}

func (err *OperatorError) Pos() int {
	return err.Col
}

func (err *OperatorError) Is(target error) bool {
	return target == ErrUnsupportedOperator
}

// ExpressionError is an error indicating a syntactically valid construct
// which is not part of arithmetic. It implements InputError and matches
// ErrUnsupportedExpression.
type ExpressionError struct {
	// Col is the position where the construct starts.
	Col int
	// Construct describes the construct, e.g. "call" or `name "x"`.
	Construct string
	// Source is the parsed form of the construct.
	Source string
}

func (err *ExpressionError) Error() string {
	return errpos(err.Col, "unsupported expression: "+err.Construct)
}

func (err *ExpressionError) Pos() int {
	return err.Col
}

func (err *ExpressionError) Is(target error) bool {
	return target == ErrUnsupportedExpression
}

// DepthError is an error indicating an expression nested beyond the
// configured limit. It implements InputError and matches ErrTooComplex.
type DepthError struct {
	// Col is the position of the token that exceeded the limit.
	Col int
	// Max is the limit.
	Max int
}

func (err *DepthError) Error() string {
	return errpos(err.Col, "expression nested more than "+strconv.Itoa(err.Max)+" levels deep")
}

func (err *DepthError) Pos() int {
	return err.Col
}

func (err *DepthError) Is(target error) bool {
	return target == ErrTooComplex
}

// LiteralError is an error indicating an integer literal outside the int64
// range. It implements InputError and matches ErrOverflow.
type LiteralError struct {
	// Col is the position of the literal.
	Col int
	// Literal is the text of the literal.
	Literal string
}

func (err *LiteralError) Error() string {
	return errpos(err.Col, "integer literal "+err.Literal+" is out of range")
}

func (err *LiteralError) Pos() int {
	return err.Col
}

func (err *LiteralError) Is(target error) bool {
	return target == ErrOverflow
}

// ArithmeticError is an error from applying an operator to values it cannot
// combine. Err is one of ErrDivisionByZero, ErrOverflow, or ErrDomain.
type ArithmeticError struct {
	// Op is the operator that failed.
	Op string
	// Msg describes the failure.
	Msg string
	// Err is the kind of the failure.
	Err error
}

func (err *ArithmeticError) Error() string {
	return err.Msg
}

func (err *ArithmeticError) Unwrap() error {
	return err.Err
}

// errpos is a shortcut to create an error message with a position. Positions
// less than 1 are unknown and omitted.
func errpos(pos int, msg string) string {
	if pos < 1 {
		return msg
	}
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid input text implements InputError.
type InputError interface {
	error
	// Pos returns the column of the error as the number of runes up to and
	// including the start of the token that caused the error.
	Pos() int
}

var (
	_ InputError = (*SyntaxError)(nil)
	_ InputError = (*OperatorError)(nil)
	_ InputError = (*ExpressionError)(nil)
	_ InputError = (*DepthError)(nil)
	_ InputError = (*LiteralError)(nil)
)
