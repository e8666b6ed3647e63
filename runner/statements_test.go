package runner

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbywalec/pymake/parser"
)

func compileStr(t *testing.T, src string) StatementList {
	f, err := parser.Parse(strings.NewReader(src))
	require.NoError(t, err)

	stmts, err := Compile(f)
	require.NoError(t, err)
	return stmts
}

func run(t *testing.T, m *Makefile, srcs ...string) {
	for _, src := range srcs {
		require.NoError(t, compileStr(t, src).Execute(m, nil))
	}
}

func runErr(t *testing.T, m *Makefile, src string) error {
	return compileStr(t, src).Execute(m, nil)
}

func varval(t *testing.T, m *Makefile, name string) string {
	v, err := m.expandVariable(name, m.Variables)
	require.NoError(t, err)
	return v
}

func TestSetVariableRecursive(t *testing.T) {
	m := NewEmpty()
	run(t, m, "X = 1\nY = $(X)\nX = 2\n")

	assert.Equal(t, "2", varval(t, m, "Y"))

	flavor, _, raw, ok := m.Variables.Get("Y")
	require.True(t, ok)
	assert.Equal(t, FlavorRecursive, flavor)
	assert.Equal(t, "$(X)", raw)
}

func TestSetVariableSimple(t *testing.T) {
	m := NewEmpty()
	run(t, m, "X = 1\nY := $(X)\nX = 2\n")

	assert.Equal(t, "1", varval(t, m, "Y"))

	flavor, _, raw, ok := m.Variables.Get("Y")
	require.True(t, ok)
	assert.Equal(t, FlavorSimple, flavor)
	assert.Equal(t, "1", raw)
}

func TestSetVariableConditional(t *testing.T) {
	m := NewEmpty()
	run(t, m, "X = 1\nX ?= 2\nZ ?= 3\n")

	assert.Equal(t, "1", varval(t, m, "X"))
	assert.Equal(t, "3", varval(t, m, "Z"))
}

func TestSetVariableAppendRecursive(t *testing.T) {
	m := NewEmpty()
	run(t, m, "X = a\nX += $(Y)\nY = b\n")

	// Recursive appends keep the unresolved text
	_, _, raw, _ := m.Variables.Get("X")
	assert.Equal(t, "a $(Y)", raw)
	assert.Equal(t, "a b", varval(t, m, "X"))
}

func TestSetVariableAppendSimple(t *testing.T) {
	m := NewEmpty()
	run(t, m, "Y := b\nX := a\nX += $(Y)\nY := c\n")

	assert.Equal(t, "a b", varval(t, m, "X"))
}

func TestSetVariableAppendUnbound(t *testing.T) {
	m := NewEmpty()
	run(t, m, "X += a\n")

	flavor, _, raw, ok := m.Variables.Get("X")
	require.True(t, ok)
	assert.Equal(t, FlavorRecursive, flavor)
	assert.Equal(t, "a", raw)
}

func TestSetVariableEmptyName(t *testing.T) {
	m := NewEmpty()
	err := runErr(t, m, "$(NOPE) = 1\n")

	var derr *DataError
	require.True(t, errors.As(err, &derr))
}

func TestRuleExplicit(t *testing.T) {
	m := NewEmpty()
	run(t, m, "all: a b\n\t@echo hi\nother:\n")

	require.True(t, m.HasTarget("all"))
	assert.Equal(t, "all", m.FirstTarget())

	target := m.GetTarget("all")
	require.Len(t, target.Rules, 1)
	assert.Equal(t, []string{"a", "b"}, target.Rules[0].Deps)
	require.Len(t, target.Rules[0].Commands, 1)
	assert.Equal(t, "@echo hi", target.Rules[0].Commands[0].String())
}

func TestRuleMultiTarget(t *testing.T) {
	m := NewEmpty()
	run(t, m, "a b: dep\n\t@echo\n")

	require.True(t, m.HasTarget("a"))
	require.True(t, m.HasTarget("b"))
	assert.Equal(t, "a", m.FirstTarget())

	// Both targets share the one rule
	assert.Same(t, m.GetTarget("a").Rules[0], m.GetTarget("b").Rules[0])
}

func TestRulePattern(t *testing.T) {
	m := NewEmpty()
	run(t, m, "%.o: %.c\n\tcc -c $<\n")

	require.Len(t, m.ImplicitRules(), 1)
	assert.False(t, m.HasTarget("%.o"))
	assert.Equal(t, "", m.FirstTarget())

	rule := m.ImplicitRules()[0]
	require.Len(t, rule.Commands, 1)
}

func TestRuleMixed(t *testing.T) {
	m := NewEmpty()
	err := runErr(t, m, "all %.o: x\n")

	var derr *DataError
	require.True(t, errors.As(err, &derr))
	assert.Contains(t, derr.Msg, "mixed")
}

func TestRuleEmptyTargets(t *testing.T) {
	m := NewEmpty()
	run(t, m, "$(EMPTY): foo\n\t@echo discarded\n")

	assert.Empty(t, m.TargetNames())
	assert.Empty(t, m.ImplicitRules())
}

func TestCommandWithoutRule(t *testing.T) {
	m := NewEmpty()
	err := runErr(t, m, "\t@echo\n")

	var derr *DataError
	require.True(t, errors.As(err, &derr))
	assert.Contains(t, derr.Msg, "recipe commences before first target")
}

func TestStaticPatternRule(t *testing.T) {
	m := NewEmpty()
	run(t, m, "objs = a.o b.o\n$(objs): %.o: %.c\n\tcc -c\n")

	require.True(t, m.HasTarget("a.o"))
	require.True(t, m.HasTarget("b.o"))
	assert.Equal(t, "a.o", m.FirstTarget())
	assert.Empty(t, m.ImplicitRules())

	ri := m.GetTarget("a.o").RuleInstances
	require.Len(t, ri, 1)
	assert.Equal(t, "a", ri[0].Stem)
	assert.False(t, ri[0].MatchAny)
	require.Len(t, ri[0].Rule.Commands, 1)

	// One shared rule behind both instances
	assert.Same(t, ri[0].Rule, m.GetTarget("b.o").RuleInstances[0].Rule)
}

func TestStaticPatternRuleNoMatch(t *testing.T) {
	m := NewEmpty()
	err := runErr(t, m, "a.x: %.o: %.c\n")

	var derr *DataError
	require.True(t, errors.As(err, &derr))
	assert.Contains(t, derr.Msg, "does not match")
}

func TestStaticPatternRuleMultiplePatterns(t *testing.T) {
	m := NewEmpty()
	err := runErr(t, m, "a.o: %.o %.x: %.c\n")

	var derr *DataError
	require.True(t, errors.As(err, &derr))
}

func TestTargetVariable(t *testing.T) {
	m := NewEmpty()
	run(t, m, "t: X = 1\n")

	assert.False(t, m.Variables.Len() > 0)

	flavor, _, raw, ok := m.GetTarget("t").Variables.Get("X")
	require.True(t, ok)
	assert.Equal(t, FlavorRecursive, flavor)
	assert.Equal(t, "1", raw)
}

func TestTargetVariableSimple(t *testing.T) {
	m := NewEmpty()
	run(t, m, "X = 1\nt: Y := $(X)\nX = 2\n")

	assert.Empty(t, m.ImplicitRules())
	require.NotContains(t, m.TargetNames(), "Y")

	flavor, _, raw, ok := m.GetTarget("t").Variables.Get("Y")
	require.True(t, ok)
	assert.Equal(t, FlavorSimple, flavor)
	assert.Equal(t, "1", raw)
}

func TestTargetVariableConditional(t *testing.T) {
	m := NewEmpty()
	run(t, m, "t: X ?= a\nt: X ?= b\n")

	flavor, _, raw, ok := m.GetTarget("t").Variables.Get("X")
	require.True(t, ok)
	assert.Equal(t, FlavorRecursive, flavor)
	assert.Equal(t, "a", raw)
}

func TestTargetVariableAppend(t *testing.T) {
	m := NewEmpty()
	run(t, m, "t: X = a\nt: X += b\n")

	flavor, _, raw, ok := m.GetTarget("t").Variables.Get("X")
	require.True(t, ok)
	assert.Equal(t, FlavorRecursive, flavor)
	assert.Equal(t, "a b", raw)
}

func TestPatternVariable(t *testing.T) {
	m := NewEmpty()
	run(t, m, "%.o: FLAGS = -g\n")

	_, _, raw, ok := m.GetPatternVariables(NewPattern("%.o")).Get("FLAGS")
	require.True(t, ok)
	assert.Equal(t, "-g", raw)
}

func TestVPathDirective(t *testing.T) {
	m := NewEmpty()
	run(t, m, "vpath %.c src:gen other\n")

	assert.Equal(t, []string{"src", "gen", "other"}, m.VPathSearch("foo.c"))
	assert.Empty(t, m.VPathSearch("foo.h"))

	run(t, m, "vpath %.c\n")
	assert.Empty(t, m.VPathSearch("foo.c"))
}

func TestVPathClearAll(t *testing.T) {
	m := NewEmpty()
	run(t, m, "vpath %.c src\nvpath %.h include\nvpath\n")

	assert.Empty(t, m.VPathSearch("foo.c"))
	assert.Empty(t, m.VPathSearch("foo.h"))
}

func TestExportDirective(t *testing.T) {
	m := NewEmpty()
	run(t, m, "export A B\n")

	assert.True(t, m.ExportedVars["A"])
	assert.True(t, m.ExportedVars["B"])
}

func TestExportAssign(t *testing.T) {
	m := NewEmpty()
	run(t, m, "export A = 1\n")

	assert.True(t, m.ExportedVars["A"])
	assert.Equal(t, "1", varval(t, m, "A"))
}

func TestExportAll(t *testing.T) {
	m := NewEmpty()
	err := runErr(t, m, "export $(NOTHING)\n")

	var derr *DataError
	require.True(t, errors.As(err, &derr))
	assert.Contains(t, derr.Msg, "exporting all variables")
}

func TestEmptyDirective(t *testing.T) {
	m := NewEmpty()
	run(t, m, "X =\n$(X)\n")

	err := runErr(t, m, "Y = y\n$(Y)\n")
	var derr *DataError
	require.True(t, errors.As(err, &derr))
	assert.Contains(t, derr.Msg, "expands to non-empty")
}

func TestOverrideStatement(t *testing.T) {
	m := NewEmpty()
	stmts, _ := ParseCommandLineArgs([]string{"CC=gcc"})
	require.NoError(t, stmts.Execute(m, nil))

	assert.Equal(t, []string{"CC=gcc"}, m.Overrides)
}

func TestDefine(t *testing.T) {
	m := NewEmpty()
	run(t, m, "define greeting\nhello $(1)\nendef\n")

	flavor, _, raw, ok := m.Variables.Get("greeting")
	require.True(t, ok)
	assert.Equal(t, FlavorRecursive, flavor)
	assert.Equal(t, "hello $(1)", raw)
}
