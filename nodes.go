package calc

import (
	"strconv"
	"strings"
)

// node is a node in the syntax tree of the host grammar. It can represent
// anything the grammar accepts; validation converts it to a Node.
type node struct {
	kind nodeKind

	// name is the literal text, identifier, operator, or attribute name.
	name string
	// pos is the column where the node's first token starts.
	pos int

	left  *node
	right *node
	// args holds the elements of calls, subscripts, and displays.
	args []*node
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeNum  // name is literal text
	nodeStr  // name is literal text including quotes
	nodeName // name is identifier

	nodeUnary   // name is operator, left is operand
	nodeBinary  // name is operator, left and right are operands
	nodeCompare // name is comparison operator, left and right are operands
	nodeBool    // name is and/or, left and right are operands

	nodeCall  // left is callee, args are arguments
	nodeAttr  // left is object, name is attribute
	nodeIndex // left is object, args are subscripts

	nodeTuple // args are elements
	nodeList  // args are elements
	nodeSet   // args are elements
	nodeDict  // args are entries

	nodeIf      // left is value, args[0] is test, right is alternative
	nodeLambda  // name is parameters, left is body
	nodeKeyword // name is keyword, left is value
	nodeStar    // name is * or **, left is operand
	nodeSlice   // left, right, and args[0] are start, stop, and step; any may be nil
	nodePair    // left is key, right is value
)

func (k nodeKind) String() string {
	switch k {
	case nodeNone:
		return "None"
	case nodeNum:
		return "Num"
	case nodeStr:
		return "Str"
	case nodeName:
		return "Name"
	case nodeUnary:
		return "Unary"
	case nodeBinary:
		return "Binary"
	case nodeCompare:
		return "Compare"
	case nodeBool:
		return "Bool"
	case nodeCall:
		return "Call"
	case nodeAttr:
		return "Attr"
	case nodeIndex:
		return "Index"
	case nodeTuple:
		return "Tuple"
	case nodeList:
		return "List"
	case nodeSet:
		return "Set"
	case nodeDict:
		return "Dict"
	case nodeIf:
		return "If"
	case nodeLambda:
		return "Lambda"
	case nodeKeyword:
		return "Keyword"
	case nodeStar:
		return "Star"
	case nodeSlice:
		return "Slice"
	case nodePair:
		return "Pair"
	default:
		return "nodeKind(" + strconv.Itoa(int(k)) + ")"
	}
}

func (n *node) String() string {
	var b strings.Builder
	n.fmt(&b, false)
	return b.String()
}

// fmt writes n with each term in brackets, alternating round and square so
// that the grouping is easy to follow.
func (n *node) fmt(b *strings.Builder, square bool) {
	var l, r byte = '(', ')'
	if square {
		l, r = '[', ']'
	}
	b.WriteByte(l)
	defer b.WriteByte(r)
	switch n.kind {
	case nodeNone:
		// Invalid nodes use invalid characters.
		b.WriteByte('$')
		if n.left != nil {
			n.left.fmt(b, !square)
		}
		b.WriteByte('#')
		if n.right != nil {
			n.right.fmt(b, !square)
		}
		b.WriteByte('$')
	case nodeNum, nodeStr, nodeName:
		b.WriteString(n.name)
	case nodeUnary:
		b.WriteString(n.name)
		if n.name == "not" {
			b.WriteByte(' ')
		}
		n.left.fmt(b, !square)
	case nodeBinary, nodeCompare, nodeBool:
		n.left.fmt(b, !square)
		b.WriteByte(' ')
		b.WriteString(n.name)
		b.WriteByte(' ')
		n.right.fmt(b, !square)
	case nodeCall:
		n.left.fmt(b, !square)
		fmtargs(b, n.args, "(", ")", !square)
	case nodeAttr:
		n.left.fmt(b, !square)
		b.WriteByte('.')
		b.WriteString(n.name)
	case nodeIndex:
		n.left.fmt(b, !square)
		fmtargs(b, n.args, "[", "]", !square)
	case nodeTuple:
		fmtargs(b, n.args, "", ",", !square)
	case nodeList:
		fmtargs(b, n.args, "[", "]", !square)
	case nodeSet, nodeDict:
		fmtargs(b, n.args, "{", "}", !square)
	case nodeIf:
		n.left.fmt(b, !square)
		b.WriteString(" if ")
		n.args[0].fmt(b, !square)
		b.WriteString(" else ")
		n.right.fmt(b, !square)
	case nodeLambda:
		b.WriteString("lambda")
		if n.name != "" {
			b.WriteByte(' ')
			b.WriteString(n.name)
		}
		b.WriteString(": ")
		n.left.fmt(b, !square)
	case nodeKeyword:
		b.WriteString(n.name)
		b.WriteByte('=')
		n.left.fmt(b, !square)
	case nodeStar:
		b.WriteString(n.name)
		n.left.fmt(b, !square)
	case nodeSlice:
		if n.left != nil {
			n.left.fmt(b, !square)
		}
		b.WriteByte(':')
		if n.right != nil {
			n.right.fmt(b, !square)
		}
		if len(n.args) != 0 {
			b.WriteByte(':')
			if n.args[0] != nil {
				n.args[0].fmt(b, !square)
			}
		}
	case nodePair:
		n.left.fmt(b, !square)
		b.WriteString(": ")
		n.right.fmt(b, !square)
	default:
		panic("calc: invalid node kind " + n.kind.String() + " after writing " + b.String())
	}
}

func fmtargs(b *strings.Builder, args []*node, open, close string, square bool) {
	b.WriteString(open)
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		a.fmt(b, square)
	}
	b.WriteString(close)
}
