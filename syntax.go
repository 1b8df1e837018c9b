package calc

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// The host grammar is deliberately much larger than arithmetic. It recognizes
// the expression syntax of a Python-like language so that constructs such as
// calls, names, strings, and comparisons parse successfully and are rejected
// by name during validation instead of failing as generic syntax errors.
//
// The grammar does not encode precedence. An expression is a flat sequence of
// operands separated by binary operators, and each operand carries its own
// prefix operators. Precedence is applied afterward in parse.go.
//
//	Expr    = Operand { BinOp Operand } [ "if" Expr "else" Expr ]
//	Operand = { "-" | "+" | "~" | "not" } Atom { Trailer }
//	Atom    = Number | String { String } | Lambda | Ident | Group
//	Lambda  = "lambda" [ Ident { "," Ident } ] ":" Expr
//	Trailer = Group | "." Ident
//	Group   = Open [ Item { "," Item } ] [ "," ] Close
//	Item    = [ Ident "=" ] [ "*" | "**" ] [ Expr ] { ":" [ Expr ] }
//
// Items are loose enough to hold arguments, keyword arguments, dict entries,
// and slices. parse.go decides which forms each kind of bracket allows.

var hostLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `[ \t\r\n\f\v]+`},
	{Name: "String", Pattern: `(?:[rRbBuUfF]{1,2})?(?:"(?:\\.|[^"\\\n])*"|'(?:\\.|[^'\\\n])*')`},
	// Numbers are lexed loosely; parse.go checks the exact literal syntax so
	// that malformed literals are reported as such.
	{Name: "Number", Pattern: `(?:0[xXoObB][_0-9a-zA-Z]*|(?:[0-9][_0-9]*(?:\.[_0-9]*)?|\.[0-9][_0-9]*)(?:[eE][+-]?[_0-9]*)?[jJ]?)`},
	{Name: "Ident", Pattern: `[\p{L}_][\p{L}\p{N}_]*`},
	{Name: "Operator", Pattern: `\*\*|//|<<|>>|<=|>=|==|!=|[-+*/%@&|^~<>]`},
	{Name: "Punct", Pattern: `[()\[\]{},.:;=]`},
})

// hostParser is safe for concurrent use.
var hostParser = participle.MustBuild[syntaxExpr](
	participle.Lexer(hostLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(4),
)

type syntaxExpr struct {
	Pos  lexer.Position
	Head *syntaxOperand  `@@`
	Tail []*syntaxBinary `@@*`
	Cond *syntaxCond     `@@?`
}

type syntaxBinary struct {
	Pos     lexer.Position
	Op      string         `@( "not" "in" | "is" "not" | "is" | "in" | "and" | "or" | "**" | "//" | "<<" | ">>" | "<=" | ">=" | "==" | "!=" | "+" | "-" | "*" | "/" | "%" | "@" | "&" | "|" | "^" | "<" | ">" )`
	Operand *syntaxOperand `@@`
}

// syntaxCond is the tail of a conditional expression, "body if test else alt".
type syntaxCond struct {
	Pos  lexer.Position
	Test *syntaxExpr `"if" @@`
	Else *syntaxExpr `"else" @@`
}

type syntaxOperand struct {
	Pos      lexer.Position
	Prefix   []*syntaxPrefix  `@@*`
	Atom     *syntaxAtom      `@@`
	Trailers []*syntaxTrailer `@@*`
}

type syntaxPrefix struct {
	Pos lexer.Position
	Op  string `@( "-" | "+" | "~" | "not" )`
}

type syntaxAtom struct {
	Pos    lexer.Position
	Number *string       `  @Number`
	String []string      `| @String+`
	Lambda *syntaxLambda `| @@`
	Name   *string       `| @Ident`
	Group  *syntaxGroup  `| @@`
}

type syntaxLambda struct {
	Pos    lexer.Position
	Params []string    `"lambda" ( @Ident ( "," @Ident )* )?`
	Body   *syntaxExpr `":" @@`
}

type syntaxTrailer struct {
	Pos   lexer.Position
	Group *syntaxGroup `  @@`
	Attr  *string      `| "." @Ident`
}

type syntaxGroup struct {
	Pos   lexer.Position
	Open  string        `@( "(" | "[" | "{" )`
	Items []*syntaxItem `( @@ ( "," @@ )* )?`
	Comma bool          `@","?`
	Close string        `@( ")" | "]" | "}" )`
}

type syntaxItem struct {
	Pos     lexer.Position
	Keyword *string        `( @Ident "=" )?`
	Star    string         `@( "**" | "*" )?`
	Value   *syntaxExpr    `@@?`
	Parts   []*syntaxColon `@@*`
}

// syntaxColon is a part of a slice or the value of a dict entry.
type syntaxColon struct {
	Pos   lexer.Position
	Value *syntaxExpr `":" @@?`
}
