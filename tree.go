package calc

import (
	"strconv"
	"strings"
)

// Node is a node of a validated arithmetic expression tree. The only
// implementations are *Literal, *Unary, and *Binary.
type Node interface {
	fmt(b *strings.Builder, square bool)
	arith()
}

// Literal is a numeric constant.
type Literal struct {
	Value Number
}

// Unary applies a unary operator to one operand.
type Unary struct {
	Op UnaryOp
	X  Node
}

// Binary applies a binary operator to two operands.
type Binary struct {
	Op          BinaryOp
	Left, Right Node
}

func (*Literal) arith() {}
func (*Unary) arith()   {}
func (*Binary) arith()  {}

// UnaryOp is a unary arithmetic operator.
type UnaryOp int8

const (
	// Neg is arithmetic negation.
	Neg UnaryOp = iota + 1
)

func (op UnaryOp) String() string {
	switch op {
	case Neg:
		return "-"
	default:
		return "UnaryOp(" + strconv.Itoa(int(op)) + ")"
	}
}

// BinaryOp is a binary arithmetic operator.
type BinaryOp int8

const (
	Add BinaryOp = iota + 1 // +
	Sub                     // -
	Mul                     // *
	Div                     // / (true division)
	Mod                     // % (floor modulo)
	Pow                     // **
)

func (op BinaryOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Mod:
		return "%"
	case Pow:
		return "**"
	default:
		return "BinaryOp(" + strconv.Itoa(int(op)) + ")"
	}
}

var (
	unaryops = map[string]UnaryOp{
		"-": Neg,
	}
	binaryops = map[string]BinaryOp{
		"+":  Add,
		"-":  Sub,
		"*":  Mul,
		"/":  Div,
		"%":  Mod,
		"**": Pow,
	}
)

func (n *Literal) fmt(b *strings.Builder, square bool) {
	bracket(b, square, func() { b.WriteString(n.Value.String()) })
}

func (n *Unary) fmt(b *strings.Builder, square bool) {
	bracket(b, square, func() {
		b.WriteString(n.Op.String())
		n.X.fmt(b, !square)
	})
}

func (n *Binary) fmt(b *strings.Builder, square bool) {
	bracket(b, square, func() {
		n.Left.fmt(b, !square)
		b.WriteByte(' ')
		b.WriteString(n.Op.String())
		b.WriteByte(' ')
		n.Right.fmt(b, !square)
	})
}

func bracket(b *strings.Builder, square bool, f func()) {
	var l, r byte = '(', ')'
	if square {
		l, r = '[', ']'
	}
	b.WriteByte(l)
	f()
	b.WriteByte(r)
}

// Format returns a representation of a tree with alternating round and square
// brackets grouping each term.
func Format(n Node) string {
	var b strings.Builder
	n.fmt(&b, false)
	return b.String()
}
