package calc

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// item is one element of the flat operand/operator sequence produced by the
// host grammar.
type item struct {
	kind itemKind
	text string
	pos  int
	term *syntaxOperand
}

func (t item) String() string {
	return t.kind.String() + ":" + t.text + "@" + strconv.Itoa(t.pos)
}

type itemKind int8

const (
	itemNone itemKind = iota
	// itemEnd indicates the end of the sequence.
	itemEnd
	// itemTerm is an atom with its trailers. Its prefix operators are
	// separate items.
	itemTerm
	// itemOp is an operator. Whether it is unary or binary depends on where
	// it appears.
	itemOp
)

func (k itemKind) String() string {
	switch k {
	case itemNone:
		return "None"
	case itemEnd:
		return "End"
	case itemTerm:
		return "Term"
	case itemOp:
		return "Op"
	default:
		return "itemKind(" + strconv.Itoa(int(k)) + ")"
	}
}

type scanner struct {
	items []item
	i     int
	p     item
}

// scan flattens an expression into items.
func scan(e *syntaxExpr) *scanner {
	s := &scanner{items: make([]item, 0, 2*len(e.Tail)+2)}
	s.operand(e.Head)
	for _, b := range e.Tail {
		s.items = append(s.items, item{kind: itemOp, text: normop(b.Op), pos: b.Pos.Column})
		s.operand(b.Operand)
	}
	s.items = append(s.items, item{kind: itemEnd, pos: e.Pos.Column})
	return s
}

func (s *scanner) operand(o *syntaxOperand) {
	for _, pre := range o.Prefix {
		s.items = append(s.items, item{kind: itemOp, text: pre.Op, pos: pre.Pos.Column})
	}
	s.items = append(s.items, item{kind: itemTerm, pos: o.Atom.Pos.Column, term: o})
}

// normop gives the canonical spelling of two-word operators, which the
// grammar captures without a separator.
func normop(op string) string {
	switch strings.Join(strings.Fields(op), "") {
	case "notin":
		return "not in"
	case "isnot":
		return "is not"
	default:
		return op
	}
}

// push unreads an item so that it is the next item returned from next. Panics
// if there is already a pushed item.
func (s *scanner) push(it item) {
	if s.p.kind != itemNone {
		panic("calc: double push")
	}
	s.p = it
}

// must scans the pushed item. Panics if there is no pushed item.
func (s *scanner) must() item {
	it := s.p
	if it.kind == itemNone {
		panic("calc: no pushed item")
	}
	s.p = item{}
	return it
}

// next scans the next item. After the end of the sequence, next continues to
// return the end item.
func (s *scanner) next() item {
	if s.p.kind != itemNone {
		it := s.p
		s.p = item{}
		return it
	}
	if s.i >= len(s.items) {
		return s.items[len(s.items)-1]
	}
	it := s.items[s.i]
	s.i++
	return it
}

// lexcheck tokenizes text to find problems before the grammar runs: empty
// input, unbalanced brackets, and nesting deeper than max. The grammar
// recurses once per bracket, conditional, or lambda, so this bounds its stack
// use. The result is the significant tokens of text, ending with EOF.
func lexcheck(text string, max int) ([]lexer.Token, error) {
	lx, err := hostLexer.Lex("", strings.NewReader(text))
	if err != nil {
		return nil, syntaxerr(err, text, nil)
	}
	all, err := lexer.ConsumeAll(lx)
	if err != nil {
		return nil, syntaxerr(err, text, nil)
	}
	syms := hostLexer.Symbols()
	ws, comment, ident := syms["Whitespace"], syms["Comment"], syms["Ident"]
	toks := all[:0]
	var open []lexer.Token
	nest := 0
	for _, tok := range all {
		if tok.Type == ws || tok.Type == comment {
			continue
		}
		toks = append(toks, tok)
		if tok.EOF() {
			break
		}
		switch tok.Value {
		case "(", "[", "{":
			open = append(open, tok)
			if len(open)+nest > max {
				return nil, &DepthError{Col: tok.Pos.Column, Max: max}
			}
		case ")", "]", "}":
			if len(open) == 0 {
				return nil, &SyntaxError{Col: tok.Pos.Column, Msg: "close bracket " + tok.Value + " with no open bracket"}
			}
			l := open[len(open)-1]
			if closebracket(l.Value) != tok.Value {
				return nil, &SyntaxError{Col: tok.Pos.Column, Msg: "mismatched bracket: " + l.Value + "expr" + tok.Value}
			}
			open = open[:len(open)-1]
		case "if", "lambda":
			if tok.Type != ident {
				break
			}
			// Neither ever closes, so this overcounts sequential ones.
			nest++
			if len(open)+nest > max {
				return nil, &DepthError{Col: tok.Pos.Column, Max: max}
			}
		}
	}
	if len(toks) == 0 || toks[0].EOF() {
		return nil, &SyntaxError{Col: 1, Msg: "no expression"}
	}
	if len(open) != 0 {
		l := open[len(open)-1]
		return nil, &SyntaxError{Col: l.Pos.Column, Msg: "open bracket " + l.Value + " with no close bracket"}
	}
	return toks, nil
}

// syntaxerr converts an error from the host lexer or parser. toks are the
// significant tokens of text, used to name the token where parsing failed.
func syntaxerr(err error, text string, toks []lexer.Token) error {
	se := &SyntaxError{Msg: err.Error(), Err: err}
	var perr participle.Error
	var lerr *lexer.Error
	switch {
	case errors.As(err, &perr):
		pos := perr.Position()
		se.Col, se.Msg = pos.Column, perr.Message()
		for _, tok := range toks {
			if tok.Pos.Offset < pos.Offset {
				continue
			}
			se.Col = tok.Pos.Column
			if tok.EOF() {
				se.Msg = "unexpected end of expression"
			} else {
				se.Msg = "unexpected " + strconv.Quote(tok.Value)
			}
			break
		}
	case errors.As(err, &lerr):
		se.Col, se.Msg = lerr.Pos.Column, lerr.Msg
		if off := lerr.Pos.Offset; off >= 0 && off < len(text) {
			r, _ := utf8.DecodeRuneInString(text[off:])
			se.Msg = "unexpected character " + strconv.QuoteRune(r)
		}
	}
	return se
}

type numKind int8

const (
	numInvalid numKind = iota
	numInt
	numFloat
	numImag
)

const (
	digitpart  = `[0-9](?:_?[0-9])*`
	pointfloat = `(?:(?:` + digitpart + `)?\.` + digitpart + `|` + digitpart + `\.)`
	floatlit   = `(?:` + pointfloat + `|(?:` + digitpart + `|` + pointfloat + `)[eE][+-]?` + digitpart + `)`
)

var (
	intre   = regexp.MustCompile(`^(?:[1-9](?:_?[0-9])*|0+(?:_?0)*|0[xX](?:_?[0-9a-fA-F])+|0[oO](?:_?[0-7])+|0[bB](?:_?[01])+)$`)
	floatre = regexp.MustCompile(`^` + floatlit + `$`)
	imagre  = regexp.MustCompile(`^(?:` + floatlit + `|` + digitpart + `)[jJ]$`)
)

// numkind classifies a numeric literal. Underscores may appear only singly
// between digits or after a base prefix, and decimal integers other than zero
// may not start with 0.
func numkind(text string) numKind {
	switch {
	case intre.MatchString(text):
		return numInt
	case floatre.MatchString(text):
		return numFloat
	case imagre.MatchString(text):
		return numImag
	default:
		return numInvalid
	}
}
