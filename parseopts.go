package calc

// DefaultMaxDepth is the nesting limit used when no MaxDepth option is given.
const DefaultMaxDepth = 200

// Option is an option for parsing.
type Option interface {
	parseOption(parsectx) parsectx
}

// parsectx holds general data for parsing.
type parsectx struct {
	// max is the maximum nesting depth.
	max int
	// depth is the current nesting depth.
	depth int
}

type depthopt int

// MaxDepth limits how deeply an expression may nest brackets and operators.
// Parsing a deeper expression fails with ErrTooComplex. Values less than 1
// select DefaultMaxDepth.
func MaxDepth(n int) Option {
	return depthopt(n)
}

func (o depthopt) parseOption(p parsectx) parsectx {
	p.max = int(o)
	if p.max < 1 {
		p.max = DefaultMaxDepth
	}
	return p
}

func newparsectx(opts []Option) parsectx {
	p := parsectx{max: DefaultMaxDepth}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		p = opt.parseOption(p)
	}
	return p
}

// enter descends one nesting level for a construct starting at col.
func (p *parsectx) enter(col int) error {
	p.depth++
	if p.depth > p.max {
		p.depth--
		return &DepthError{Col: col, Max: p.max}
	}
	return nil
}

// leave ascends one nesting level.
func (p *parsectx) leave() {
	p.depth--
}
