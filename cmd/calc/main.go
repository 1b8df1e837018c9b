package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/davecgh/go-spew/spew"
	"gopkg.in/yaml.v3"

	"github.com/zephyrtronium/calc"
)

type cli struct {
	Expression string `arg:"" optional:"" help:"Arithmetic expression to evaluate. Read from standard input if not given."`
	Lines      bool   `short:"n" help:"Evaluate each line of input as a separate expression."`
	Tree       bool   `help:"Print parse trees."`
	Dump       bool   `help:"Print detailed parse tree dumps."`
	Output     string `short:"o" enum:"text,json,yaml" default:"text" help:"Result format: text, json, or yaml."`
	MaxDepth   int    `name:"max-depth" default:"200" help:"Maximum nesting depth of expressions."`
}

// stdio is the process boundary.
type stdio struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// exit is raised by kong when it wants to end the process, e.g. after --help.
type exit int

func main() {
	os.Exit(run(os.Args[1:], stdio{in: os.Stdin, out: os.Stdout, err: os.Stderr}))
}

// run runs the command with the given arguments and returns the exit status.
func run(args []string, sio stdio) (status int) {
	logger := log.New(sio.err, "", 0)
	var c cli
	parser, err := kong.New(&c,
		kong.Name("calc"),
		kong.Description("Evaluate arithmetic expressions."),
		kong.Writers(sio.out, sio.err),
		kong.Exit(func(code int) { panic(exit(code)) }),
	)
	if err != nil {
		panic(err)
	}
	defer func() {
		if r := recover(); r != nil {
			code, ok := r.(exit)
			if !ok {
				panic(r)
			}
			status = int(code)
		}
	}()
	if _, err := parser.Parse(exprargs(args)); err != nil {
		logger.Printf("calc: error: %v", err)
		return 2
	}

	p := &printer{
		cli:  &c,
		opts: []calc.Option{calc.MaxDepth(c.MaxDepth)},
		out:  sio.out,
		log:  logger,
	}
	defer p.close()

	text := c.Expression
	if text == "" {
		b, err := io.ReadAll(sio.in)
		if err != nil {
			logger.Printf("Error: %v", err)
			return 1
		}
		// Only input from stdin is trimmed. An argument is evaluated as given.
		text = strings.TrimSpace(string(b))
	}
	if !c.Lines {
		if text == "" {
			logger.Print("No expression provided")
			return 2
		}
		if !p.eval(text) {
			return 1
		}
		return 0
	}

	status = 2
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(nil, len(text)+1)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if status == 2 {
			status = 0
		}
		if !p.eval(line) {
			status = 1
		}
	}
	if status == 2 {
		logger.Print("No expression provided")
	}
	return status
}

// exprargs moves an argument that starts with "-" but is an expression
// rather than a flag, like "-5 + 2", after a "--" so that it is positional.
func exprargs(args []string) []string {
	for i, a := range args {
		if a == "--" {
			return args
		}
		if len(a) < 2 || a[0] != '-' || a[1] == '-' || 'a' <= a[1] && a[1] <= 'z' || 'A' <= a[1] && a[1] <= 'Z' {
			continue
		}
		r := make([]string, 0, len(args)+1)
		r = append(r, args[:i]...)
		r = append(r, args[i+1:]...)
		return append(r, "--", a)
	}
	return args
}

// printer evaluates expressions and writes their results.
type printer struct {
	cli  *cli
	opts []calc.Option
	out  io.Writer
	log  *log.Logger
	yaml *yaml.Encoder
}

// result is the structured form of a result.
type result struct {
	Expression string      `json:"expression" yaml:"expression"`
	Type       string      `json:"type" yaml:"type"`
	Value      calc.Number `json:"value" yaml:"value"`
}

// eval evaluates one expression and prints its result or error. The result
// is whether evaluation succeeded.
func (p *printer) eval(text string) bool {
	e, err := calc.Parse(text, p.opts...)
	if err != nil {
		p.log.Printf("Error: %v", err)
		return false
	}
	if p.cli.Tree {
		fmt.Fprintf(p.out, "%v : ", e)
	}
	if p.cli.Dump {
		spew.Fdump(p.out, e.Root())
	}
	r, err := e.Eval()
	if err != nil {
		if p.cli.Tree {
			fmt.Fprintln(p.out)
		}
		p.log.Printf("Error: %v", err)
		return false
	}
	switch p.cli.Output {
	case "json":
		err = json.NewEncoder(p.out).Encode(result{Expression: text, Type: r.Kind().String(), Value: r})
	case "yaml":
		if p.yaml == nil {
			p.yaml = yaml.NewEncoder(p.out)
		}
		err = p.yaml.Encode(result{Expression: text, Type: r.Kind().String(), Value: r})
	default:
		_, err = fmt.Fprintln(p.out, r)
	}
	if err != nil {
		p.log.Printf("Error: %v", err)
		return false
	}
	return true
}

func (p *printer) close() {
	if p.yaml != nil {
		if err := p.yaml.Close(); err != nil {
			p.log.Printf("Error: %v", err)
		}
	}
}
