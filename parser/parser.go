package parser

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/dbywalec/pymake/lexer"
)

func Parse(r io.Reader) (*File, error) {
	return ParseNamed("", r)
}

func ParseNamed(name string, r io.Reader) (*File, error) {
	toks, err := lexer.Tokenize(name, r)
	if err != nil {
		return nil, err
	}

	f, err := ParseTokens(toks)
	if f != nil {
		f.Path = name
	}
	return f, err
}

func ParseFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseNamed(path, f)
}

func ParseTokens(tokens []lexer.Token) (*File, error) {
	return (&Parser{
		tokens: tokens,
	}).parse()
}

// ParseValueString parses a raw value string into an expansion rooted at
// loc. This is the re-entry point used when a simple (`:=`) assignment
// resolves its value at definition time, and when recursive values are
// re-resolved on read.
func ParseValueString(s string, loc Location) (Expansion, error) {
	toks, err := lexer.Tokenize(loc.Path, strings.NewReader(s))
	if err != nil {
		return Expansion{Loc: loc}, err
	}

	p := &Parser{tokens: toks}
	n, err := p.expr(false, lexer.NewMatcher("EOF"))
	if err != nil {
		return Expansion{Loc: loc}, err
	}

	return Expansion{Node: n, Loc: loc}, nil
}

type Parser struct {
	tokens       []lexer.Token
	c            int
	lastComments []string
}

func (p *Parser) root(t lexer.Token) (outNode Node, rerr error) {
	defer func() {
		if rerr != nil {
			rerr = p.wrap("root", rerr)
		}
	}()

	if lexer.NewMatcher("Comment").Is(t) {
		p.advance()
		p.lastComments = append(p.lastComments, strings.TrimSuffix(t.Value, "\n"))
		return p.root(p.peekn(0))
	}

	if lexer.NewMatcher("Char", "-").Is(t) &&
		lexer.NewMatcher("Keyword", "include", "sinclude").Is(p.peekn(1)) {
		p.advance() // Eat -
		p.advance() // Eat keyword
		return p.include(false, p.loc(t))
	}

	defer func() {
		if outNode != nil && len(p.lastComments) > 0 {
			outNode.SetComments(p.lastComments)
			p.lastComments = nil
		}
	}()

	switch t.Type {
	case lexer.EOF:
		p.advance() // Eat EOF
		return nil, io.EOF
	case lexer.Symbol("Nl"):
		p.lastComments = nil
		p.advance() // Eat \n
		return p.root(p.peekn(0))
	case lexer.Symbol("Continuation"):
		p.advance()
		return p.root(p.peekn(0))
	case lexer.Symbol("Tab"):
		p.advance() // Eat \t
		cmd, err := p.expr(true, lexer.NewMatcher("Nl"))
		if err != nil {
			return nil, err
		}
		if cmd == nil {
			return p.root(p.peekn(0))
		}
		return &Command{Cmd: Expansion{Node: cmd, Loc: p.loc(t)}}, nil
	case lexer.Symbol("Define"):
		p.advance()
		return p.define(t)
	case lexer.Symbol("Override"):
		p.advance()
		p.eatspaces()
		n, err := p.root(p.peekn(0))
		if err != nil {
			return nil, err
		}
		if v, ok := n.(*Var); ok {
			v.Override = true
			return v, nil
		}
		return nil, p.errat(t, "override requires a variable assignment")
	case lexer.Symbol("Export"):
		p.advance()
		return p.export(t)
	case lexer.Symbol("Else"):
		return nil, p.ut(t)
	case lexer.Symbol("Keyword"):
		p.advance()
		switch t.Value {
		case "include":
			return p.include(true, p.loc(t))
		case "sinclude":
			return p.include(false, p.loc(t))
		case "vpath":
			return p.vpath(t)
		case "ifeq", "ifneq", "ifdef", "ifndef":
			return p.condBlock(t)
		case "endif", "endef":
			return nil, p.ut(t)
		}

		return nil, p.ut(t)
	}

	exp, err := p.expr(false, lexer.NewMultiMatcher(lexer.NewMatcher("Nl"), lexer.NewMatcher("Colon"), lexer.NewMatcher("AssignOp")))
	if err != nil {
		return nil, err
	}
	if exp != nil {
		opt := p.peekn(0)
		switch opt.Type {
		case lexer.Symbol("Nl"):
			p.advance()
		case lexer.Symbol("Colon"):
			p.advance() // Eat : or ::
			return p.target(Expansion{Node: exp, Loc: p.loc(t)}, opt.Value == "::")
		case lexer.Symbol("AssignOp"):
			p.advance() // Eat op
			return p.varass(Expansion{Node: exp, Loc: p.loc(t)}, opt)
		}

		return exp, nil
	}

	return nil, p.ut(t)
}

func (p *Parser) parse() (*File, error) {
	file := &File{}

	for {
		t := p.peekn(0)
		n, err := p.root(t)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return file, err
		}
		file.Nodes = append(file.Nodes, n)
	}

	return file, nil
}

func (p *Parser) include(required bool, loc Location) (*Include, error) {
	p.eatspaces()
	start := p.peekn(0)
	expr, err := p.expr(true, lexer.NewMatcher("Nl"))
	if err != nil {
		return nil, err
	}
	if expr == nil {
		return nil, p.errat(start, "include requires a file list")
	}

	return &Include{
		Path:     Expansion{Node: expr, Loc: p.loc(start)},
		Required: required,
	}, nil
}

func (p *Parser) vpath(t lexer.Token) (*VPath, error) {
	p.eatspaces()
	start := p.peekn(0)
	expr, err := p.expr(true, lexer.NewMatcher("Nl"))
	if err != nil {
		return nil, err
	}

	e := Expansion{Loc: p.loc(t)}
	if expr != nil {
		e = Expansion{Node: expr, Loc: p.loc(start)}
	}
	return &VPath{Value: e}, nil
}

func (p *Parser) export(t lexer.Token) (Node, error) {
	p.eatspaces()
	start := p.peekn(0)
	expr, err := p.expr(false, lexer.NewMultiMatcher(lexer.NewMatcher("Nl"), lexer.NewMatcher("AssignOp")))
	if err != nil {
		return nil, err
	}

	opt := p.peekn(0)
	if lexer.NewMatcher("AssignOp").Is(opt) {
		p.advance() // Eat op
		if expr == nil {
			return nil, p.ut(opt)
		}
		n, err := p.varass(Expansion{Node: expr, Loc: p.loc(start)}, opt)
		if err != nil {
			return nil, err
		}
		n.(*Var).Export = true
		return n, nil
	}
	p.eat(lexer.NewMatcher("Nl"))

	e := Expansion{Loc: p.loc(t)}
	if expr != nil {
		e = Expansion{Node: expr, Loc: p.loc(start)}
	}
	return &Export{Value: e}, nil
}

type UntilFunc func(token lexer.Token) (bool, bool)

func (p *Parser) expr(eat bool, matcher lexer.Matcher) (_ Node, rerr error) {
	return p._expr(exprOptions{
		matcher: matcher,
		eat:     eat,
		// Raw chunks also end where an expansion begins
		rawMatcher: lexer.NewMultiMatcher(matcher, lexer.NewMatcher("ExpStart")),
	})
}

type exprOptions struct {
	matcher lexer.Matcher
	eat     bool

	rawMatcher lexer.Matcher
}

func (p *Parser) _expr(o exprOptions) (_ Node, rerr error) {
	defer func() {
		if rerr != nil {
			rerr = p.wrap("expr", rerr)
		}
	}()

	expr := &Expr{}

	for {
		t := p.peekn(0)
		if stop := o.matcher.Is(t); stop {
			if o.eat {
				p.advance()
			}

			break
		}

		exp, err := p.exp()
		if err != nil {
			return nil, err
		}
		if exp != nil {
			expr.Parts = append(expr.Parts, exp)
			continue
		}

		raw, err := p.raw(func(t lexer.Token) (bool, bool) {
			return o.rawMatcher.Is(t), false
		})
		if err != nil {
			return nil, err
		}
		if raw != nil {
			expr.Parts = append(expr.Parts, raw)
			continue
		}

		break
	}

	switch len(expr.Parts) {
	case 0:
		return nil, nil
	case 1:
		return expr.Parts[0], nil
	}

	return expr, nil
}

func (p *Parser) exp() (_ Node, rerr error) {
	defer func() {
		if rerr != nil {
			rerr = p.wrap("exp", rerr)
		}
	}()

	if !lexer.NewMatcher("ExpStart").Is(p.peekn(0)) {
		return nil, nil
	}

	p.advance() // Eat $(
	exp := &Exp{}

	for {
		t := p.peekn(0)
		if t.IsEOF() {
			return nil, p.err("unexpected eof")
		}

		if lexer.NewMatcher("ExpEnd").Is(t) {
			p.advance() // Eat )
			return exp, nil
		}

		// Trailing comma
		if lexer.NewMatcher("Char", ",").Is(t) {
			if lexer.NewMatcher("ExpEnd").Is(p.peekn(1)) {
				p.advance() // Eat ,
				p.advance() // Eat )
				return exp, nil
			}
		}

		isFirst := len(exp.Parts) == 0
		sepMatcher := func() lexer.Matcher {
			if isFirst {
				return lexer.NewMatcher("Char", " ")
			}

			return lexer.NewMatcher("Char", ",")
		}()
		expMatcher := lexer.NewMultiMatcher(lexer.NewMatcher("ExpStart"), lexer.NewMatcher("ExpEnd"))

		part, err := p._expr(exprOptions{
			matcher:    sepMatcher,
			eat:        true,
			rawMatcher: lexer.NewMultiMatcher(expMatcher, sepMatcher),
		})
		if err != nil {
			return exp, err
		}

		if isFirst && part == nil {
			return exp, p.ut(t)
		}

		exp.Parts = append(exp.Parts, part)
	}
}

func (p *Parser) raw(until UntilFunc) (_ *Raw, rerr error) {
	defer func() {
		if rerr != nil {
			rerr = p.wrap("raw", rerr)
		}
	}()

	acc := ""
	for {
		t := p.peekn(0)
		if t.IsEOF() {
			break
		}

		if lexer.NewMatcher("Comment").Is(t) {
			break
		}

		if stop, eatTok := until(t); stop {
			if eatTok {
				p.advance()
			}
			break
		}

		p.advance()
		if lexer.NewMatcher("Continuation").Is(t) {
			// A continuation reads as a single space
			acc += " "
			continue
		}
		acc += t.Value
	}

	if acc == "" {
		return nil, nil
	}
	return &Raw{Text: acc}, nil
}

// rawline consumes the rest of the line verbatim, returning the text and
// the location of its first token.
func (p *Parser) rawline() (string, Location) {
	loc := p.loc(p.peekn(0))

	acc := ""
	for {
		t := p.peekn(0)
		if t.IsEOF() {
			break
		}
		if lexer.NewMatcher("Nl").Is(t) || lexer.NewMatcher("Comment").Is(t) {
			p.advance()
			break
		}

		p.advance()
		if lexer.NewMatcher("Continuation").Is(t) {
			acc += " "
			continue
		}
		acc += t.Value
	}

	return acc, loc
}

func (p *Parser) varass(name Expansion, opt lexer.Token) (_ Node, rerr error) {
	defer func() {
		if rerr != nil {
			rerr = p.wrap("varass", rerr)
		}
	}()

	raw, loc := p.rawline()
	value := strings.TrimLeft(raw, " \t")
	loc = loc.Advance(raw[:len(raw)-len(value)])

	op := opt.Value
	if op == "::=" {
		// POSIX spelling of simple assignment
		op = ":="
	}

	return &Var{
		Name:     name,
		Op:       op,
		Value:    value,
		ValueLoc: loc,
	}, nil
}

func (p *Parser) condBlock(t lexer.Token) (_ Node, rerr error) {
	defer func() {
		if rerr != nil {
			rerr = p.wrap("cond", rerr)
		}
	}()

	cond, err := p.condition(t)
	if err != nil {
		return nil, err
	}

	block := &CondBlock{Loc: p.loc(t)}
	clause := CondClause{Cond: cond}

	for {
		p.eatall(lexer.NewMultiMatcher(
			lexer.NewMatcher("Nl"),
			lexer.NewMatcher("Comment"),
			lexer.NewMatcher("Continuation"),
		))

		tt := p.peekn(0)
		if tt.IsEOF() {
			return nil, p.err("unexpected eof in condition block starting at %v", block.Loc)
		}

		if lexer.NewMatcher("Keyword", "endif").Is(tt) {
			p.advance() // Eat endif
			block.Clauses = append(block.Clauses, clause)
			return block, nil
		}

		if lexer.NewMatcher("Else").Is(tt) {
			p.advance() // Eat else
			block.Clauses = append(block.Clauses, clause)

			p.eatspaces()
			nt := p.peekn(0)
			if lexer.NewMatcher("Keyword", "ifeq", "ifneq", "ifdef", "ifndef").Is(nt) {
				p.advance()
				cond, err = p.condition(nt)
				if err != nil {
					return nil, err
				}
			} else {
				cond = Condition{Loc: p.loc(tt), Node: ElseCond{}}
			}
			clause = CondClause{Cond: cond}
			continue
		}

		n, err := p.root(tt)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return block, p.err("unexpected eof in condition block starting at %v", block.Loc)
			}
			return block, err
		}
		if n == nil {
			return block, p.ut(tt)
		}

		clause.Body = append(clause.Body, n)
	}
}

func (p *Parser) condition(t lexer.Token) (_ Condition, rerr error) {
	defer func() {
		if rerr != nil {
			rerr = p.wrap("condition", rerr)
		}
	}()

	loc := p.loc(t)
	switch t.Value {
	case "ifeq", "ifneq":
		p.eatspaces()
		if _, err := p.expect(lexer.NewMatcher("Char", "(")); err != nil {
			return Condition{}, err
		}

		left, err := p.expr(true, lexer.NewMatcher("Char", ","))
		if err != nil {
			return Condition{}, err
		}
		p.eatspaces()
		right, err := p.expr(true, lexer.NewMatcher("Char", ")"))
		if err != nil {
			return Condition{}, err
		}
		p.eatspaces()
		p.eat(lexer.NewMatcher("Nl"))

		return Condition{Loc: loc, Node: IfEqCond{
			Expected: t.Value == "ifeq",
			Left:     Expansion{Node: left, Loc: loc},
			Right:    Expansion{Node: right, Loc: loc},
		}}, nil
	case "ifdef", "ifndef":
		p.eatspaces()
		start := p.peekn(0)
		name, err := p.expr(true, lexer.NewMatcher("Nl"))
		if err != nil {
			return Condition{}, err
		}
		if name == nil {
			return Condition{}, p.errat(start, "expected variable name")
		}

		return Condition{Loc: loc, Node: IfDefCond{
			Expected: t.Value == "ifdef",
			Name:     Expansion{Node: name, Loc: p.loc(start)},
		}}, nil
	}

	return Condition{}, p.ut(t)
}

func (p *Parser) target(name Expansion, doubleColon bool) (_ Node, rerr error) {
	defer func() {
		if rerr != nil {
			rerr = p.wrap("target", rerr)
		}
	}()

	target := &Target{
		Name:        name,
		DoubleColon: doubleColon,
	}

	p.eatspaces()
	start := p.peekn(0)
	deps, err := p.expr(true, lexer.NewMatcher("TargetDepsEnd"))
	if err != nil {
		return target, err
	}
	if deps != nil {
		target.Deps = Expansion{Node: deps, Loc: p.loc(start)}
	}

	for {
		t := p.peekn(0)
		if !lexer.NewMatcher("Tab").Is(t) {
			break
		}

		p.advance() // Eat \t
		cmd, err := p.expr(true, lexer.NewMatcher("Nl"))
		if err != nil {
			return target, err
		}
		if cmd == nil {
			continue
		}

		target.Commands = append(target.Commands, Expansion{Node: cmd, Loc: p.loc(t)})
	}

	return target, nil
}

func (p *Parser) define(t lexer.Token) (_ Node, rerr error) {
	defer func() {
		if rerr != nil {
			rerr = p.wrap("define", rerr)
		}
	}()

	p.eatspaces()

	name, err := p.raw(func(tt lexer.Token) (bool, bool) {
		return lexer.NewMultiMatcher(
			lexer.NewMatcher("Char", " "),
			lexer.NewMatcher("Char", "\n"),
		).Is(tt), false
	})
	if err != nil {
		return nil, err
	}
	if name == nil {
		return nil, p.errat(p.peekn(0), "expected identifier")
	}

	body, err := p.raw(func(tt lexer.Token) (bool, bool) {
		return lexer.NewMatcher("Endef").Is(tt), true
	})
	if err != nil {
		return nil, err
	}

	value := ""
	if body != nil {
		value = strings.Trim(body.Text, "\n")
	}

	return &Define{
		Name:  name.Text,
		Value: value,
		Loc:   p.loc(t),
	}, nil
}
