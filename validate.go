package calc

import (
	"errors"
	"strconv"
	"strings"
)

// validate converts a host syntax tree to an arithmetic tree. This is the one
// place that decides which constructs are allowed. Operands are validated
// before their operators, so the error for an unsupported operand takes
// precedence over the error for an unsupported operator.
func validate(n *node) (Node, error) {
	switch n.kind {
	case nodeNum:
		return literal(n)
	case nodeUnary:
		x, err := validate(n.left)
		if err != nil {
			return nil, err
		}
		op, ok := unaryops[n.name]
		if !ok {
			return nil, &OperatorError{Col: n.pos, Operator: n.name, Unary: true}
		}
		return &Unary{Op: op, X: x}, nil
	case nodeBinary:
		l, err := validate(n.left)
		if err != nil {
			return nil, err
		}
		r, err := validate(n.right)
		if err != nil {
			return nil, err
		}
		op, ok := binaryops[n.name]
		if !ok {
			return nil, &OperatorError{Col: n.pos, Operator: n.name}
		}
		return &Binary{Op: op, Left: l, Right: r}, nil
	default:
		return nil, &ExpressionError{Col: n.pos, Construct: describe(n), Source: n.String()}
	}
}

// literal converts a numeric literal.
func literal(n *node) (Node, error) {
	text := strings.ReplaceAll(n.name, "_", "")
	switch numkind(n.name) {
	case numInt:
		v, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return nil, &LiteralError{Col: n.pos, Literal: n.name}
			}
			return nil, &SyntaxError{Col: n.pos, Msg: "invalid numeric literal " + strconv.Quote(n.name), Err: err}
		}
		return &Literal{Value: Int(v)}, nil
	case numFloat:
		// Out of range literals become infinities.
		v, err := strconv.ParseFloat(text, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, &SyntaxError{Col: n.pos, Msg: "invalid numeric literal " + strconv.Quote(n.name), Err: err}
		}
		return &Literal{Value: Float(v)}, nil
	case numImag:
		return nil, &ExpressionError{Col: n.pos, Construct: describe(n), Source: n.String()}
	default:
		return nil, &SyntaxError{Col: n.pos, Msg: "invalid numeric literal " + strconv.Quote(n.name)}
	}
}

// describe names the construct that a node represents.
func describe(n *node) string {
	switch n.kind {
	case nodeNum:
		if numkind(n.name) == numImag {
			return "complex literal " + n.name
		}
		return "numeric literal " + n.name
	case nodeStr:
		if strings.ContainsAny(n.name[:strings.IndexAny(n.name, `"'`)], "bB") {
			return "bytes literal " + n.name
		}
		return "string literal " + n.name
	case nodeName:
		switch n.name {
		case "True", "False":
			return "boolean literal " + n.name
		case "None":
			return "None literal"
		}
		return "name " + strconv.Quote(n.name)
	case nodeUnary:
		return "unary operation " + strconv.Quote(n.name)
	case nodeBinary:
		return "binary operation " + strconv.Quote(n.name)
	case nodeCompare:
		return "comparison " + strconv.Quote(n.name)
	case nodeBool:
		return "boolean operation " + strconv.Quote(n.name)
	case nodeCall:
		if n.left.kind == nodeName {
			return "call to " + n.left.name
		}
		return "call"
	case nodeAttr:
		return "attribute access ." + n.name
	case nodeIndex:
		return "subscript"
	case nodeTuple:
		return "tuple"
	case nodeList:
		return "list"
	case nodeSet:
		return "set"
	case nodeDict:
		return "dict"
	case nodeIf:
		return "conditional expression"
	case nodeLambda:
		return "lambda"
	case nodeKeyword:
		return "keyword argument " + n.name
	case nodeStar:
		return "starred expression"
	case nodeSlice:
		return "slice"
	case nodePair:
		return "dict entry"
	default:
		return n.kind.String()
	}
}
