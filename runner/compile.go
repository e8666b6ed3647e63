package runner

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/dbywalec/pymake/parser"
)

// Compile lowers a parsed file into an executable statement list.
func Compile(f *parser.File) (StatementList, error) {
	stmts := StatementList{}
	if err := compileNodes(f.Nodes, stmts.Append); err != nil {
		return nil, err
	}
	return stmts, nil
}

func compileNodes(nodes []parser.Node, emit func(Statement)) error {
	for _, n := range nodes {
		if err := compileNode(n, emit); err != nil {
			return err
		}
	}
	return nil
}

func compileNode(n parser.Node, emit func(Statement)) error {
	switch n := n.(type) {
	case *parser.Target:
		return compileTarget(n, emit)
	case *parser.Var:
		compileVar(n, emit)
	case *parser.CondBlock:
		return compileCondBlock(n, emit)
	case *parser.Include:
		emit(&Include{Exp: n.Path, Required: n.Required})
	case *parser.VPath:
		emit(&VPathDirective{Exp: n.Value})
	case *parser.Export:
		emit(&ExportDirective{Exp: n.Value, Single: false})
	case *parser.Define:
		emit(&SetVariable{
			NameExp:  parser.FromString(n.Name),
			Token:    "=",
			Value:    n.Value,
			ValueLoc: n.Loc,
			Source:   SourceMakefile,
		})
	case *parser.Command:
		emit(&Command{Exp: n.Cmd})
	case *parser.Raw, *parser.Expr, *parser.Exp:
		emit(&EmptyDirective{Exp: parser.Expansion{Node: n}})
	default:
		return errors.Errorf("unhandled node %T", n)
	}
	return nil
}

func compileVar(v *parser.Var, emit func(Statement)) {
	source := SourceMakefile
	if v.Override {
		source = SourceOverride
	}
	emit(&SetVariable{
		NameExp:  v.Name,
		Token:    v.Op,
		Value:    v.Value,
		ValueLoc: v.ValueLoc,
		Source:   source,
	})
	if v.Export {
		emit(&ExportDirective{Exp: v.Name, Single: true})
	}
}

// compileTarget disambiguates the three shapes sharing rule syntax:
// plain rules, static pattern rules (`targets: pattern: deps`) and
// target-specific assignments (`targets: NAME = value`). The second
// colon or the assignment operator always sits in literal text, so the
// leading raw part of the dependency list decides.
func compileTarget(t *parser.Target, emit func(Statement)) error {
	prefix, rest, ok := depsPrefix(t.Deps)
	if ok {
		iColon := indexRuleColon(prefix)
		iEq := strings.IndexByte(prefix, '=')

		if iEq >= 0 && (iColon < 0 || iEq < iColon) {
			if name, op, value, ok := splitAssignment(prefix); ok {
				value += nodesString(rest)
				texp := t.Name
				emit(&SetVariable{
					NameExp:   parser.FromString(name),
					Token:     op,
					Value:     value,
					ValueLoc:  t.Deps.Loc,
					TargetExp: &texp,
					Source:    SourceMakefile,
				})
				return nil
			}
		}

		if iColon >= 0 {
			pattern := strings.TrimSpace(prefix[:iColon])
			depNodes := append([]parser.Node{&parser.Raw{Text: prefix[iColon+1:]}}, rest...)
			emit(&StaticPatternRule{
				TargetExp:   t.Name,
				PatternExp:  parser.Expansion{Node: &parser.Raw{Text: pattern}, Loc: t.Deps.Loc},
				DepExp:      parser.Expansion{Node: &parser.Expr{Parts: depNodes}, Loc: t.Deps.Loc},
				DoubleColon: t.DoubleColon,
			})
			emitCommands(t, emit)
			return nil
		}
	}

	emit(&Rule{TargetExp: t.Name, DepExp: t.Deps, DoubleColon: t.DoubleColon})
	emitCommands(t, emit)
	return nil
}

func emitCommands(t *parser.Target, emit func(Statement)) {
	for _, c := range t.Commands {
		emit(&Command{Exp: c})
	}
}

// indexRuleColon finds the colon that opens a second rule section.
// Colons that are part of a `:=` or `::=` assignment operator do not
// count.
func indexRuleColon(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] != ':' {
			continue
		}
		j := i
		for j < len(s) && s[j] == ':' {
			j++
		}
		if j < len(s) && s[j] == '=' {
			i = j
			continue
		}
		return i
	}
	return -1
}

// depsPrefix returns the literal text the dependency list starts with,
// plus any trailing nodes after it.
func depsPrefix(deps parser.Expansion) (string, []parser.Node, bool) {
	switch n := deps.Node.(type) {
	case *parser.Raw:
		return n.Text, nil, true
	case *parser.Expr:
		if len(n.Parts) > 0 {
			if raw, ok := n.Parts[0].(*parser.Raw); ok {
				return raw.Text, n.Parts[1:], true
			}
		}
	}
	return "", nil, false
}

func nodesString(nodes []parser.Node) string {
	out := ""
	for _, n := range nodes {
		out += parser.NodeString(n)
	}
	return out
}

func splitAssignment(s string) (string, string, string, bool) {
	i := strings.IndexByte(s, '=')
	if i < 0 {
		return "", "", "", false
	}
	op := "="
	start := i
	if i > 0 {
		switch s[i-1] {
		case ':', '+', '?':
			op = string(s[i-1]) + "="
			start = i - 1
		}
	}
	if op == ":=" && start > 0 && s[start-1] == ':' {
		start--
	}
	name := strings.TrimSpace(s[:start])
	if name == "" {
		return "", "", "", false
	}
	value := strings.TrimLeft(s[i+1:], " \t")
	return name, op, value, true
}

func compileCondBlock(n *parser.CondBlock, emit func(Statement)) error {
	if len(n.Clauses) == 0 {
		return nil
	}

	var block *ConditionBlock
	for _, cl := range n.Clauses {
		cond := compileCondition(cl.Cond)
		if block == nil {
			block = NewConditionBlock(n.Loc, cond)
		} else if err := block.AddCondition(cl.Cond.Loc, cond); err != nil {
			return err
		}
		if err := compileNodes(cl.Body, block.Append); err != nil {
			return err
		}
	}
	emit(block)
	return nil
}

func compileCondition(c parser.Condition) Condition {
	switch cn := c.Node.(type) {
	case parser.IfEqCond:
		return EqCondition{Expected: cn.Expected, Exp1: cn.Left, Exp2: cn.Right}
	case parser.IfDefCond:
		return IfdefCondition{Expected: cn.Expected, Exp: cn.Name}
	case parser.ElseCond:
		return ElseCondition{}
	}
	panic(fmt.Sprintf("unhandled condition %T", c.Node))
}
