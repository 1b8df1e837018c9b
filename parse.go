package calc

import (
	"strconv"
	"strings"
)

// Expr is a parsed arithmetic expression.
type Expr struct {
	// root is the root node of the validated tree.
	root Node
}

// Parse parses text as a single arithmetic expression. Text that is not an
// expression at all fails with ErrInvalidExpression. Text that is a valid
// expression in the wider host grammar but uses constructs other than numeric
// literals, grouping, unary -, and binary + - * / % ** fails with
// ErrUnsupportedOperator or ErrUnsupportedExpression.
func Parse(text string, opts ...Option) (*Expr, error) {
	p := newparsectx(opts)
	n, err := parsesyntax(text, &p)
	if err != nil {
		return nil, err
	}
	root, err := validate(n)
	if err != nil {
		return nil, err
	}
	return &Expr{root: root}, nil
}

// Root returns the root of the expression tree.
func (e *Expr) Root() Node {
	return e.root
}

// String creates a string representation of the parsed expression, with
// alternating round and square brackets grouping each term.
func (e *Expr) String() string {
	return Format(e.root)
}

// parsesyntax parses text in the host grammar without deciding which
// constructs are allowed.
func parsesyntax(text string, p *parsectx) (*node, error) {
	toks, err := lexcheck(text, p.max)
	if err != nil {
		return nil, err
	}
	e, err := hostParser.ParseString("", text)
	if err != nil {
		return nil, syntaxerr(err, text, toks)
	}
	return parseexpr(e, p)
}

// parseexpr applies precedence to a flat expression.
func parseexpr(e *syntaxExpr, p *parsectx) (*node, error) {
	s := scan(e)
	n, err := parseterm(s, p, exprprec)
	if err != nil {
		return nil, err
	}
	if it := s.must(); it.kind != itemEnd {
		panic("calc: expression ended on " + it.String())
	}
	if e.Cond == nil {
		return n, nil
	}
	return parsecond(n, e.Cond, p)
}

// parsecond parses the test and alternative of a conditional expression.
func parsecond(body *node, c *syntaxCond, p *parsectx) (*node, error) {
	if err := p.enter(c.Pos.Column); err != nil {
		return nil, err
	}
	defer p.leave()
	test, err := parseexpr(c.Test, p)
	if err != nil {
		return nil, err
	}
	alt, err := parseexpr(c.Else, p)
	if err != nil {
		return nil, err
	}
	return &node{kind: nodeIf, pos: body.pos, left: body, right: alt, args: []*node{test}}, nil
}

// parseterm parses operators at least as binding as until. If there is no
// error, then parseterm pushes the last item it scans.
func parseterm(s *scanner, p *parsectx, until operator) (*node, error) {
	p.depth++
	defer p.leave()
	n, err := parselhs(s, p, until)
	if err != nil {
		return nil, err
	}
	for {
		it := s.next()
		switch it.kind {
		case itemOp:
			prec := binop(it.text)
			if prec.op == nodeNone {
				return nil, &SyntaxError{Col: it.pos, Msg: "unknown binary operator " + strconv.Quote(it.text)}
			}
			if !prec.moreBinding(until) {
				s.push(it)
				return n, nil
			}
			rhs, err := parseterm(s, p, prec)
			if err != nil {
				return nil, err
			}
			n = &node{kind: prec.op, name: it.text, pos: it.pos, left: n, right: rhs}
		case itemEnd:
			s.push(it)
			return n, nil
		default:
			panic("calc: unexpected item: " + it.String())
		}
	}
}

// parselhs parses the first component of a term. Operators here are unary.
func parselhs(s *scanner, p *parsectx, until operator) (*node, error) {
	it := s.next()
	if p.depth > p.max {
		return nil, &DepthError{Col: it.pos, Max: p.max}
	}
	switch it.kind {
	case itemTerm:
		return parseoperand(it.term, p)
	case itemOp:
		prec := unop(it.text)
		if prec.op == nodeNone {
			return nil, &SyntaxError{Col: it.pos, Msg: "unknown unary operator " + strconv.Quote(it.text)}
		}
		if !prec.moreBinding(until) {
			if it.text == "not" {
				// not cannot be an operand of a more binding operator.
				return nil, &SyntaxError{Col: it.pos, Msg: `"not" must be parenthesized here`}
			}
			// x**-y -> x**(-y)
			// Just use the new operator's precedence to simplify.
			prec.prec, prec.right = until.prec, until.right
		}
		rhs, err := parseterm(s, p, prec)
		if err != nil {
			return nil, err
		}
		return &node{kind: nodeUnary, name: it.text, pos: it.pos, left: rhs}, nil
	default:
		panic("calc: unexpected item: " + it.String())
	}
}

// parseoperand parses an atom and its trailers.
func parseoperand(o *syntaxOperand, p *parsectx) (*node, error) {
	n, err := parseatom(o.Atom, p)
	if err != nil {
		return nil, err
	}
	for _, t := range o.Trailers {
		if t.Attr != nil {
			n = &node{kind: nodeAttr, name: *t.Attr, pos: t.Pos.Column, left: n}
			continue
		}
		switch t.Group.Open {
		case "(":
			args, _, err := parseitems(t.Group, itemArgs, p)
			if err != nil {
				return nil, err
			}
			n = &node{kind: nodeCall, pos: n.pos, left: n, args: args}
		case "[":
			args, _, err := parseitems(t.Group, itemSubscript, p)
			if err != nil {
				return nil, err
			}
			if len(args) == 0 {
				return nil, &SyntaxError{Col: t.Pos.Column, Msg: "empty subscript"}
			}
			n = &node{kind: nodeIndex, pos: n.pos, left: n, args: args}
		default:
			return nil, &SyntaxError{Col: t.Pos.Column, Msg: "unexpected " + strconv.Quote(t.Group.Open)}
		}
	}
	return n, nil
}

func parseatom(a *syntaxAtom, p *parsectx) (*node, error) {
	col := a.Pos.Column
	switch {
	case a.Number != nil:
		if numkind(*a.Number) == numInvalid {
			return nil, &SyntaxError{Col: col, Msg: "invalid numeric literal " + strconv.Quote(*a.Number)}
		}
		return &node{kind: nodeNum, name: *a.Number, pos: col}, nil
	case len(a.String) > 0:
		return &node{kind: nodeStr, name: strings.Join(a.String, " "), pos: col}, nil
	case a.Lambda != nil:
		if err := p.enter(col); err != nil {
			return nil, err
		}
		defer p.leave()
		body, err := parseexpr(a.Lambda.Body, p)
		if err != nil {
			return nil, err
		}
		return &node{kind: nodeLambda, name: strings.Join(a.Lambda.Params, ", "), pos: col, left: body}, nil
	case a.Name != nil:
		if keywords[*a.Name] {
			return nil, &SyntaxError{Col: col, Msg: "unexpected keyword " + strconv.Quote(*a.Name)}
		}
		return &node{kind: nodeName, name: *a.Name, pos: col}, nil
	case a.Group != nil:
		return parsegroup(a.Group, p)
	default:
		panic("calc: empty atom")
	}
}

// parsegroup parses a parenthesized expression or a display.
func parsegroup(g *syntaxGroup, p *parsectx) (*node, error) {
	col := g.Pos.Column
	switch g.Open {
	case "(":
		items, comma, err := parseitems(g, itemTuple, p)
		if err != nil {
			return nil, err
		}
		if len(items) == 1 && !comma {
			if items[0].kind == nodeStar {
				return nil, &SyntaxError{Col: items[0].pos, Msg: "starred expression outside a tuple"}
			}
			return items[0], nil
		}
		return &node{kind: nodeTuple, pos: col, args: items}, nil
	case "[":
		items, _, err := parseitems(g, itemList, p)
		if err != nil {
			return nil, err
		}
		return &node{kind: nodeList, pos: col, args: items}, nil
	case "{":
		items, _, err := parseitems(g, itemBrace, p)
		if err != nil {
			return nil, err
		}
		return bracedisplay(col, items)
	default:
		panic("calc: invalid bracket " + strconv.Quote(g.Open))
	}
}

// bracedisplay decides whether the items of braces make a dict or a set.
func bracedisplay(col int, items []*node) (*node, error) {
	if len(items) == 0 {
		return &node{kind: nodeDict, pos: col}, nil
	}
	dict := isentry(items[0])
	for _, it := range items[1:] {
		if isentry(it) != dict {
			return nil, &SyntaxError{Col: it.pos, Msg: "dict entries and set elements in one display"}
		}
	}
	if dict {
		return &node{kind: nodeDict, pos: col, args: items}, nil
	}
	return &node{kind: nodeSet, pos: col, args: items}, nil
}

func isentry(n *node) bool {
	return n.kind == nodePair || n.kind == nodeStar && n.name == "**"
}

// itemContext is the kind of bracket that holds items, which decides which
// item forms are allowed.
type itemContext int8

const (
	itemTuple     itemContext = iota // parenthesized group or tuple
	itemList                         // list display
	itemBrace                        // dict or set display
	itemArgs                         // call arguments
	itemSubscript                    // subscript or slice
)

// parseitems parses the comma-separated contents of brackets. The second
// result is whether there is a trailing comma.
func parseitems(g *syntaxGroup, ctx itemContext, p *parsectx) ([]*node, bool, error) {
	raw, comma := g.Items, g.Comma
	// The grammar may give a trailing comma or empty brackets an empty item.
	if k := len(raw) - 1; k >= 0 && emptyitem(raw[k]) {
		raw, comma = raw[:k], comma || k > 0
	}
	if len(raw) == 0 && comma {
		return nil, false, &SyntaxError{Col: g.Pos.Column, Msg: "no expression before " + strconv.Quote(",")}
	}
	items := make([]*node, 0, len(raw))
	for _, it := range raw {
		if emptyitem(it) {
			return nil, false, &SyntaxError{Col: it.Pos.Column, Msg: "no expression before " + strconv.Quote(",")}
		}
		n, err := parseitem(it, ctx, p)
		if err != nil {
			return nil, false, err
		}
		items = append(items, n)
	}
	return items, comma, nil
}

func emptyitem(it *syntaxItem) bool {
	return it.Keyword == nil && it.Star == "" && it.Value == nil && len(it.Parts) == 0
}

// parseitem parses one element between brackets.
func parseitem(it *syntaxItem, ctx itemContext, p *parsectx) (*node, error) {
	col := it.Pos.Column
	var v *node
	if it.Value != nil {
		var err error
		if v, err = parseexpr(it.Value, p); err != nil {
			return nil, err
		}
	}
	switch {
	case it.Keyword != nil:
		if ctx != itemArgs || it.Star != "" || v == nil || len(it.Parts) != 0 {
			return nil, &SyntaxError{Col: col, Msg: "unexpected " + strconv.Quote("=")}
		}
		return &node{kind: nodeKeyword, name: *it.Keyword, pos: col, left: v}, nil
	case len(it.Parts) != 0:
		colon := it.Parts[0].Pos.Column
		if it.Star != "" {
			return nil, &SyntaxError{Col: colon, Msg: "unexpected " + strconv.Quote(":")}
		}
		parts := make([]*node, len(it.Parts))
		for i, c := range it.Parts {
			if c.Value == nil {
				continue
			}
			var err error
			if parts[i], err = parseexpr(c.Value, p); err != nil {
				return nil, err
			}
		}
		switch {
		case ctx == itemSubscript && len(parts) <= 2:
			n := &node{kind: nodeSlice, pos: col, left: v, right: parts[0]}
			if len(parts) == 2 {
				n.args = []*node{parts[1]}
			}
			return n, nil
		case ctx == itemBrace && len(parts) == 1 && v != nil && parts[0] != nil:
			return &node{kind: nodePair, pos: col, left: v, right: parts[0]}, nil
		default:
			return nil, &SyntaxError{Col: it.Parts[len(it.Parts)-1].Pos.Column, Msg: "unexpected " + strconv.Quote(":")}
		}
	case it.Star != "":
		if v == nil {
			return nil, &SyntaxError{Col: col, Msg: "no expression after " + strconv.Quote(it.Star)}
		}
		if it.Star == "**" && ctx != itemArgs && ctx != itemBrace {
			return nil, &SyntaxError{Col: col, Msg: "unexpected " + strconv.Quote(it.Star)}
		}
		return &node{kind: nodeStar, name: it.Star, pos: col, left: v}, nil
	default:
		return v, nil
	}
}

// closebracket gets the closing bracket for an opening bracket.
func closebracket(open string) string {
	switch open {
	case "(":
		return ")"
	case "[":
		return "]"
	case "{":
		return "}"
	default:
		panic("calc: invalid bracket " + strconv.Quote(open))
	}
}

// keywords are reserved words of the host grammar which cannot be names.
// True, False, and None are literals and are not included.
var keywords = map[string]bool{
	"and": true, "as": true, "assert": true, "async": true, "await": true,
	"break": true, "class": true, "continue": true, "def": true, "del": true,
	"elif": true, "else": true, "except": true, "finally": true, "for": true,
	"from": true, "global": true, "if": true, "import": true, "in": true,
	"is": true, "lambda": true, "nonlocal": true, "not": true, "or": true,
	"pass": true, "raise": true, "return": true, "try": true, "while": true,
	"with": true, "yield": true,
}

type operator struct {
	// prec is the precedence value. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
	// op is the node kind to use when this operator is selected.
	op nodeKind
}

func (p operator) moreBinding(than operator) bool {
	if p.prec != than.prec {
		return p.prec > than.prec
	}
	return p.right
}

// binop gets a binary operator for an operator string. If there is no such
// binary operator, then the result has an op of nodeNone.
func binop(text string) operator {
	switch text {
	case "or":
		return operator{1, false, nodeBool}
	case "and":
		return operator{2, false, nodeBool}
	case "<", ">", "==", ">=", "<=", "!=", "in", "not in", "is", "is not":
		return operator{4, false, nodeCompare}
	case "|":
		return operator{5, false, nodeBinary}
	case "^":
		return operator{6, false, nodeBinary}
	case "&":
		return operator{7, false, nodeBinary}
	case "<<", ">>":
		return operator{8, false, nodeBinary}
	case "+", "-":
		return operator{9, false, nodeBinary}
	case "*", "/", "//", "%", "@":
		return operator{10, false, nodeBinary}
	case "**":
		return operator{12, true, nodeBinary}
	default:
		return operator{}
	}
}

// unop gets a unary operator for an operator string. If there is no such
// unary operator, then the result has an op of nodeNone.
func unop(text string) operator {
	switch text {
	case "not":
		return operator{3, true, nodeUnary}
	case "+", "-", "~":
		return operator{11, true, nodeUnary}
	default:
		return operator{}
	}
}

// exprprec is the precedence required to parse an entire subexpression.
var exprprec = operator{-128, true, nodeNone}
