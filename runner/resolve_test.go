package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbywalec/pymake/parser"
)

func resolveStr(t *testing.T, m *Makefile, src string) string {
	e, err := parser.ParseValueString(src, parser.Location{Path: "<test>", Line: 1})
	require.NoError(t, err)

	out, err := m.Expand(e, m.Variables)
	require.NoError(t, err)
	return out
}

func TestResolveVariable(t *testing.T) {
	m := NewEmpty()
	run(t, m, "TEST = value\n")

	assert.Equal(t, "value", resolveStr(t, m, "$(TEST)"))
}

func TestResolveUndefined(t *testing.T) {
	m := NewEmpty()
	assert.Equal(t, "", resolveStr(t, m, "$(NOPE)"))
}

func TestResolveNested(t *testing.T) {
	m := NewEmpty()
	run(t, m, "TEST = value\ntest-value = 42\n")

	assert.Equal(t, "42", resolveStr(t, m, "$(test-$(TEST))"))
}

func TestResolveSubst(t *testing.T) {
	m := NewEmpty()
	assert.Equal(t, "fEEt on the strEEt", resolveStr(t, m, "$(subst ee,EE,feet on the street)"))
}

func TestResolveWords(t *testing.T) {
	m := NewEmpty()
	assert.Equal(t, "3", resolveStr(t, m, "$(words a b c)"))
	assert.Equal(t, "a", resolveStr(t, m, "$(firstword a b c)"))
	assert.Equal(t, "c", resolveStr(t, m, "$(lastword a b c)"))
}

func TestResolveStrip(t *testing.T) {
	m := NewEmpty()
	assert.Equal(t, "a b", resolveStr(t, m, "$(strip  a   b )"))
}

func TestResolveIf(t *testing.T) {
	m := NewEmpty()
	run(t, m, "COND = x\n")

	assert.Equal(t, "yes", resolveStr(t, m, "$(if $(COND),yes,no)"))
	assert.Equal(t, "no", resolveStr(t, m, "$(if $(NOPE),yes,no)"))
}

func TestResolveFilter(t *testing.T) {
	m := NewEmpty()
	assert.Equal(t, "a.c c.h", resolveStr(t, m, "$(filter %.c %.h,a.c b.o c.h)"))
	assert.Equal(t, "b.o", resolveStr(t, m, "$(filter-out %.c %.h,a.c b.o c.h)"))
}

func TestResolvePatsubst(t *testing.T) {
	m := NewEmpty()
	assert.Equal(t, "a.o b.o", resolveStr(t, m, "$(patsubst %.c,%.o,a.c b.c)"))
}

func TestResolveAddfix(t *testing.T) {
	m := NewEmpty()
	assert.Equal(t, "src/a src/b", resolveStr(t, m, "$(addprefix src/,a b)"))
	assert.Equal(t, "a.o b.o", resolveStr(t, m, "$(addsuffix .o,a b)"))
}

func TestResolvePathFunctions(t *testing.T) {
	m := NewEmpty()
	assert.Equal(t, "src/ ./", resolveStr(t, m, "$(dir src/foo.c bar)"))
	assert.Equal(t, "foo.c bar", resolveStr(t, m, "$(notdir src/foo.c bar)"))
	assert.Equal(t, "src/foo", resolveStr(t, m, "$(basename src/foo.c)"))
}

func TestResolveForeach(t *testing.T) {
	m := NewEmpty()
	assert.Equal(t, "a.o b.o", resolveStr(t, m, "$(foreach x,a b,$(x).o)"))
}

func TestResolveCall(t *testing.T) {
	m := NewEmpty()
	run(t, m, "define template\n$(1)-$(2)\nendef\n")

	assert.Equal(t, "a-b", resolveStr(t, m, "$(call template,a,b)"))
}

func TestResolveValue(t *testing.T) {
	m := NewEmpty()
	run(t, m, "X = $(Y)\n")

	assert.Equal(t, "$(Y)", resolveStr(t, m, "$(value X)"))
}

func TestResolveEval(t *testing.T) {
	m := NewEmpty()
	assert.Equal(t, "", resolveStr(t, m, "$(eval Z = 9)"))
	assert.Equal(t, "9", varval(t, m, "Z"))
}

func TestResolveShell(t *testing.T) {
	m := NewEmpty()
	assert.Equal(t, "hi", resolveStr(t, m, "$(shell echo hi)"))
}

func TestResolveWildcard(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.c", "b.c", "c.h"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	m := NewEmpty()
	m.Workdir = dir

	assert.Equal(t, "a.c b.c", resolveStr(t, m, "$(wildcard *.c)"))
	assert.Equal(t, "", resolveStr(t, m, "$(wildcard *.zzz)"))
}

func TestResolveError(t *testing.T) {
	m := NewEmpty()

	e, err := parser.ParseValueString("$(error boom)", parser.Location{})
	require.NoError(t, err)

	_, err = m.Expand(e, m.Variables)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestResolveMissingArguments(t *testing.T) {
	m := NewEmpty()

	for _, src := range []string{
		"$(subst x)",
		"$(patsubst %.c,%.o)",
		"$(foreach v,a b)",
		"$(filter %.c)",
		"$(if cond)",
		"$(addprefix p)",
	} {
		e, err := parser.ParseValueString(src, parser.Location{})
		require.NoError(t, err)

		_, err = m.Expand(e, m.Variables)
		require.Error(t, err, src)
		assert.Contains(t, err.Error(), "arguments", src)
	}
}
