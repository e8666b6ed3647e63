package parser

import (
	"fmt"
	"strings"
)

type Node interface {
	SetComments(comments []string)
	Comments() []string
}

type Base []string

func (b *Base) SetComments(comments []string) {
	*b = comments
}

func (b Base) Comments() []string {
	return b
}

// Expansion is a parsed, not-yet-resolved value template together with
// the location it came from. A nil Node resolves to the empty string.
type Expansion struct {
	Node Node
	Loc  Location
}

func (e Expansion) Empty() bool {
	return e.Node == nil
}

// FromString wraps a literal string into an expansion that resolves to
// itself.
func FromString(s string) Expansion {
	return Expansion{Node: &Raw{Text: s}}
}

func (e Expansion) String() string {
	if e.Node == nil {
		return ""
	}
	return NodeString(e.Node)
}

// NodeString reconstructs an approximate source form of a value
// template, for dumps and error messages.
func NodeString(n Node) string {
	switch n := n.(type) {
	case nil:
		return ""
	case *Raw:
		return n.Text
	case *Expr:
		out := ""
		for _, p := range n.Parts {
			out += NodeString(p)
		}
		return out
	case *Exp:
		parts := make([]string, 0, len(n.Parts))
		for _, p := range n.Parts {
			parts = append(parts, NodeString(p))
		}
		if len(parts) <= 1 {
			return "$(" + strings.Join(parts, "") + ")"
		}
		return "$(" + parts[0] + " " + strings.Join(parts[1:], ",") + ")"
	}
	return fmt.Sprintf("<%T>", n)
}

type File struct {
	Base
	Path  string
	Nodes []Node
}

type Raw struct {
	Base
	Text string
}

type Expr struct {
	Base
	Parts []Node
}

type Exp struct {
	Base
	Parts []Node
}

// Target is a rule line `targets: deps` with its tab-indented command
// lines. Deps is the whole dependency list, unsplit; word splitting
// happens after resolution.
type Target struct {
	Base
	Name        Expansion
	DoubleColon bool
	Deps        Expansion
	Commands    []Expansion
}

// Var is an assignment line. Value is the raw right-hand side text, not
// parsed: recursive assignments re-parse it on every read, simple ones
// exactly once at execution.
type Var struct {
	Base
	Name     Expansion
	Op       string
	Value    string
	ValueLoc Location
	Override bool
	Export   bool
}

type Include struct {
	Base
	Path     Expansion
	Required bool
}

type CondNode interface {
	condNode()
}

type IfEqCond struct {
	Expected bool
	Left     Expansion
	Right    Expansion
}

type IfDefCond struct {
	Expected bool
	Name     Expansion
}

type ElseCond struct{}

func (IfEqCond) condNode()  {}
func (IfDefCond) condNode() {}
func (ElseCond) condNode()  {}

type CondClause struct {
	Cond Condition
	Body []Node
}

type Condition struct {
	Loc  Location
	Node CondNode
}

type CondBlock struct {
	Base
	Loc     Location
	Clauses []CondClause
}

type VPath struct {
	Base
	Value Expansion
}

type Export struct {
	Base
	Value Expansion
}

type Command struct {
	Base
	Cmd Expansion
}

type Define struct {
	Base
	Name  string
	Value string
	Loc   Location
}
