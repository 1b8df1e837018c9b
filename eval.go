package calc

// Eval evaluates a tree. Operands are evaluated before the operators that
// combine them, the left operand first. Eval is safe to call concurrently,
// including on the same tree.
func Eval(n Node) (Number, error) {
	switch n := n.(type) {
	case *Literal:
		return n.Value, nil
	case *Unary:
		x, err := Eval(n.X)
		if err != nil {
			return Number{}, err
		}
		return unary(n.Op, x)
	case *Binary:
		l, err := Eval(n.Left)
		if err != nil {
			return Number{}, err
		}
		r, err := Eval(n.Right)
		if err != nil {
			return Number{}, err
		}
		return binary(n.Op, l, r)
	case nil:
		return Number{}, &ExpressionError{Construct: "missing operand"}
	default:
		panic("calc: invalid node type")
	}
}

// Eval evaluates the expression.
func (e *Expr) Eval() (Number, error) {
	return Eval(e.root)
}

// Evaluate is a shortcut to parse and evaluate an expression.
func Evaluate(text string, opts ...Option) (Number, error) {
	e, err := Parse(text, opts...)
	if err != nil {
		return Number{}, err
	}
	return e.Eval()
}
