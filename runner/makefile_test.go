package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "inc.mk"), "FROM_INC = yes\n")

	m := NewEmpty()
	m.Workdir = dir
	run(t, m, "include inc.mk\n")

	assert.Equal(t, "yes", varval(t, m, "FROM_INC"))
	assert.Contains(t, varval(t, m, "MAKEFILE_LIST"), "inc.mk")
}

func TestIncludeMissingOptional(t *testing.T) {
	m := NewEmpty()
	m.Workdir = t.TempDir()

	run(t, m, "-include nope.mk\nsinclude nope2.mk\n")
}

func TestIncludeMissingRequired(t *testing.T) {
	m := NewEmpty()
	m.Workdir = t.TempDir()

	err := runErr(t, m, "include nope.mk\n")
	require.Error(t, err)
}

func TestIncludeSibling(t *testing.T) {
	// A nested include is looked up next to the including file first
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sub", "a.mk"), "include b.mk\n")
	writeFile(t, filepath.Join(dir, "sub", "b.mk"), "B = set\n")

	m := NewEmpty()
	m.Workdir = dir
	run(t, m, "include sub/a.mk\n")

	assert.Equal(t, "set", varval(t, m, "B"))
}

func TestIncludeResolvedPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "cfg.mk"), "C = 1\n")

	m := NewEmpty()
	m.Workdir = dir
	run(t, m, "NAME = cfg\ninclude $(NAME).mk\n")

	assert.Equal(t, "1", varval(t, m, "C"))
}

func TestSetEnvironment(t *testing.T) {
	m := NewEmpty()
	m.SetEnvironment([]string{"FOO=bar", "garbage"})

	flavor, source, v, ok := m.Variables.Get("FOO")
	require.True(t, ok)
	assert.Equal(t, FlavorRecursive, flavor)
	assert.Equal(t, SourceEnvironment, source)
	assert.Equal(t, "bar", v)
}

func TestMakefileOutranksEnvironment(t *testing.T) {
	m := NewEmpty()
	m.SetEnvironment([]string{"FOO=bar"})

	run(t, m, "FOO = mk\n")

	assert.Equal(t, "mk", varval(t, m, "FOO"))
}

func TestRuleWildcardTargets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.c"), "")
	writeFile(t, filepath.Join(dir, "b.c"), "")

	m := NewEmpty()
	m.Workdir = dir
	run(t, m, "srcs: *.c\n")

	target := m.GetTarget("srcs")
	require.Len(t, target.Rules, 1)
	assert.Equal(t, []string{"a.c", "b.c"}, target.Rules[0].Deps)
}

func TestRuleWildcardNoMatch(t *testing.T) {
	m := NewEmpty()
	m.Workdir = t.TempDir()
	run(t, m, "none: *.zzz\n")

	assert.Empty(t, m.GetTarget("none").Rules[0].Deps)
}

func TestGetTargetScope(t *testing.T) {
	m := NewEmpty()
	m.Variables.Set("G", FlavorRecursive, SourceMakefile, "global")

	target := m.GetTarget("t")
	_, _, v, ok := target.Variables.Get("G")
	require.True(t, ok)
	assert.Equal(t, "global", v)
}

func TestVPathMerge(t *testing.T) {
	m := NewEmpty()
	m.AddVPath(NewPattern("%.c"), []string{"a"})
	m.AddVPath(NewPattern("%.c"), []string{"b"})

	assert.Equal(t, []string{"a", "b"}, m.VPathSearch("x.c"))
}
