package runner

import (
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/dbywalec/pymake/parser"
)

// Expand resolves an expansion to a string against the given scope.
func (m *Makefile) Expand(e parser.Expansion, scope *Variables) (string, error) {
	if e.Empty() {
		return "", nil
	}
	return m.Resolve(e.Node, scope)
}

// Resolve turns a parsed value template into its current string value.
func (m *Makefile) Resolve(n parser.Node, scope *Variables) (string, error) {
	switch n := n.(type) {
	case nil:
		return "", nil
	case *parser.Raw:
		return n.Text, nil
	case *parser.Expr:
		return m.resolveAllStr(n.Parts, scope, "")
	case *parser.Exp:
		return m.resolveExp(n, scope)
	}

	return "", errors.Errorf("unhandled node %T", n)
}

func (m *Makefile) resolveExp(exp *parser.Exp, scope *Variables) (_ string, rerr error) {
	if len(exp.Parts) == 0 {
		return "", nil
	}

	root, err := m.Resolve(exp.Parts[0], scope)
	if err != nil {
		return "", err
	}

	log.Tracef("> exp %v", root)
	defer func() {
		log.Tracef("< exp %v", root)
	}()

	if len(exp.Parts) == 1 {
		return m.expandVariable(root, scope)
	}

	if f, ok := Exps[root]; ok {
		args := exp.Parts[1:]
		if min := expMinArgs[root]; len(args) < min {
			return "", errors.Errorf("`%v` expects at least %v arguments, got %v", root, min, len(args))
		}
		return f(m, scope, root, args)
	}

	return "", errors.Errorf("unhandled function `%v`", root)
}

// expandVariable reads a variable and applies flavor timing: simple
// values are returned as stored, recursive ones are re-parsed and
// resolved now.
func (m *Makefile) expandVariable(name string, scope *Variables) (string, error) {
	flavor, _, value, ok := scope.Get(name)
	if !ok {
		log.Warnf("undefined variable %v", name)
		return "", nil
	}

	if flavor == FlavorSimple {
		return value, nil
	}

	return m.expandRaw(value, scope)
}

func (m *Makefile) expandRaw(raw string, scope *Variables) (string, error) {
	e, err := parser.ParseValueString(raw, parser.Location{Path: "<value>", Line: 1})
	if err != nil {
		return "", err
	}
	return m.Expand(e, scope)
}

func (m *Makefile) resolveAll(nodes []parser.Node, scope *Variables) ([]string, error) {
	out := make([]string, 0, len(nodes))

	for _, n := range nodes {
		s, err := m.Resolve(n, scope)
		if err != nil {
			return out, err
		}

		out = append(out, s)
	}

	return out, nil
}

func (m *Makefile) resolveAllStr(nodes []parser.Node, scope *Variables, sep string) (string, error) {
	outs, err := m.resolveAll(nodes, scope)
	if err != nil {
		return "", err
	}

	return strings.Join(outs, sep), nil
}

// Words splits a resolved value on whitespace.
func Words(s string) []string {
	return strings.Fields(s)
}
