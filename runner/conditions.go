package runner

import (
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/dbywalec/pymake/parser"
)

// Condition is one arm test of a conditional block.
type Condition interface {
	Evaluate(m *Makefile) (bool, error)
	String() string
}

// EqCondition compares two resolved expansions. Expected false encodes
// the negated form (ifneq).
type EqCondition struct {
	Expected bool
	Exp1     parser.Expansion
	Exp2     parser.Expansion
}

func (c EqCondition) Evaluate(m *Makefile) (bool, error) {
	r1, err := m.Expand(c.Exp1, m.Variables)
	if err != nil {
		return false, err
	}
	r2, err := m.Expand(c.Exp2, m.Variables)
	if err != nil {
		return false, err
	}

	return (r1 == r2) == c.Expected, nil
}

func (c EqCondition) String() string {
	return fmt.Sprintf("ifeq (expected=%v) %v %v", c.Expected, c.Exp1, c.Exp2)
}

// IfdefCondition tests whether a variable is bound to a non-empty
// stored value, without resolving it.
type IfdefCondition struct {
	Expected bool
	Exp      parser.Expansion
}

func (c IfdefCondition) Evaluate(m *Makefile) (bool, error) {
	vname, err := m.Expand(c.Exp, m.Variables)
	if err != nil {
		return false, err
	}
	vname = strings.TrimSpace(vname)

	_, _, value, ok := m.Variables.Get(vname)

	log.Debugf("ifdef at %v: %v is %q (bound=%v)", c.Exp.Loc, vname, value, ok)

	if !ok {
		return !c.Expected, nil
	}

	return (len(value) > 0) == c.Expected, nil
}

func (c IfdefCondition) String() string {
	return fmt.Sprintf("ifdef (expected=%v) %v", c.Expected, c.Exp)
}

type ElseCondition struct{}

func (ElseCondition) Evaluate(m *Makefile) (bool, error) {
	return true, nil
}

func (ElseCondition) String() string {
	return "else"
}

type condGroup struct {
	cond  Condition
	stmts StatementList
}

// ConditionBlock is an if/elseif/else chain: an ordered list of
// (condition, statements) clauses of which at most one executes.
type ConditionBlock struct {
	Loc    parser.Location
	groups []condGroup
}

func NewConditionBlock(loc parser.Location, cond Condition) *ConditionBlock {
	b := &ConditionBlock{Loc: loc}
	b.groups = append(b.groups, condGroup{cond: cond})
	return b
}

// AddCondition opens a new clause. A clause after an else-clause is
// rejected eagerly, leaving the block unmodified.
func (b *ConditionBlock) AddCondition(loc parser.Location, cond Condition) error {
	if len(b.groups) > 0 {
		if _, ok := b.groups[len(b.groups)-1].cond.(ElseCondition); ok {
			return parser.SyntaxErrorf(loc, "multiple else conditions for block starting at %v", b.Loc)
		}
	}

	b.groups = append(b.groups, condGroup{cond: cond})
	return nil
}

// Append adds a statement to the most recently opened clause.
func (b *ConditionBlock) Append(s Statement) {
	g := &b.groups[len(b.groups)-1]
	g.stmts.Append(s)
}

func (b *ConditionBlock) NumClauses() int {
	return len(b.groups)
}

func (b *ConditionBlock) Execute(m *Makefile, ctx *ExecutionContext) error {
	for i, g := range b.groups {
		ok, err := g.cond.Evaluate(m)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		log.Debugf("condition at %v met by clause #%v", b.Loc, i)
		return g.stmts.Execute(m, ctx)
	}

	return nil
}

func (b *ConditionBlock) Dump(w io.Writer, indent string) {
	fmt.Fprintf(w, "%vConditionBlock\n", indent)
	for _, g := range b.groups {
		fmt.Fprintf(w, "%v Condition %v\n", indent, g.cond)
		for _, s := range g.stmts {
			s.Dump(w, indent+"  ")
		}
	}
	fmt.Fprintf(w, "%v~ConditionBlock\n", indent)
}
