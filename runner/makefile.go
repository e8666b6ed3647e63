package runner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/dbywalec/pymake/parser"
)

type vpathEntry struct {
	Pattern Pattern
	Dirs    []string
}

// Makefile is the build model the statement engine mutates: variable
// scopes, the target table, implicit rules, search paths, exports and
// command-line overrides. It is written by a single execution pass at a
// time.
type Makefile struct {
	Workdir      string
	Variables    *Variables
	Overrides    []string
	ExportedVars map[string]bool

	targets       map[string]*Target
	implicitRules []*PatternRule
	patternVars   map[string]*Variables
	vpaths        []vpathEntry
	firstTarget   string
	files         []string
}

// New returns a model seeded with the process environment at
// environment-source rank, so makefile assignments out-rank inherited
// values.
func New() *Makefile {
	m := NewEmpty()
	m.Workdir, _ = os.Getwd()
	m.SetEnvironment(os.Environ())
	return m
}

func NewEmpty() *Makefile {
	return &Makefile{
		Variables:    NewVariables(nil),
		ExportedVars: map[string]bool{},
		targets:      map[string]*Target{},
		patternVars:  map[string]*Variables{},
	}
}

func (m *Makefile) SetEnvironment(environ []string) {
	for _, item := range environ {
		splits := strings.SplitN(item, "=", 2)
		if len(splits) != 2 {
			continue
		}

		m.Variables.Set(splits[0], FlavorRecursive, SourceEnvironment, splits[1])
	}
}

// GetTarget returns the table entry for name, creating it on demand.
func (m *Makefile) GetTarget(name string) *Target {
	t, ok := m.targets[name]
	if !ok {
		t = &Target{
			Name:      name,
			Variables: NewVariables(m.Variables),
		}
		m.targets[name] = t
	}
	return t
}

// HasTarget reports whether name has a table entry, without creating
// one.
func (m *Makefile) HasTarget(name string) bool {
	_, ok := m.targets[name]
	return ok
}

func (m *Makefile) TargetNames() []string {
	names := make([]string, 0, len(m.targets))
	for name := range m.targets {
		names = append(names, name)
	}
	return names
}

func (m *Makefile) AppendImplicitRule(r *PatternRule) {
	m.implicitRules = append(m.implicitRules, r)
}

func (m *Makefile) ImplicitRules() []*PatternRule {
	return m.implicitRules
}

// FoundTarget records the first discovered build goal.
func (m *Makefile) FoundTarget(name string) {
	if m.firstTarget == "" {
		log.Debugf("found default target %v", name)
		m.firstTarget = name
	}
}

func (m *Makefile) FirstTarget() string {
	return m.firstTarget
}

// GetPatternVariables returns the variable scope keyed by the pattern,
// creating it on demand.
func (m *Makefile) GetPatternVariables(p Pattern) *Variables {
	key := p.String()
	v, ok := m.patternVars[key]
	if !ok {
		v = NewVariables(nil)
		m.patternVars[key] = v
	}
	return v
}

func (m *Makefile) ClearAllVPaths() {
	m.vpaths = nil
}

func (m *Makefile) ClearVPath(p Pattern) {
	key := p.String()
	entries := m.vpaths[:0]
	for _, e := range m.vpaths {
		if e.Pattern.String() != key {
			entries = append(entries, e)
		}
	}
	m.vpaths = entries
}

// AddVPath merges dirs into the search path for the pattern.
func (m *Makefile) AddVPath(p Pattern, dirs []string) {
	key := p.String()
	for i, e := range m.vpaths {
		if e.Pattern.String() == key {
			m.vpaths[i].Dirs = append(e.Dirs, dirs...)
			return
		}
	}
	m.vpaths = append(m.vpaths, vpathEntry{Pattern: p, Dirs: dirs})
}

// VPathSearch returns the directories registered for patterns matching
// name, in registration order.
func (m *Makefile) VPathSearch(name string) []string {
	var dirs []string
	for _, e := range m.vpaths {
		if _, ok := e.Pattern.Match(name); ok {
			dirs = append(dirs, e.Dirs...)
		}
	}
	return dirs
}

// Include parses, lowers and executes another makefile against this
// model. Relative paths are tried next to the including file first, then
// under the working directory. A missing optional include is skipped.
func (m *Makefile) Include(file string, required bool, loc parser.Location) error {
	path := file
	if !filepath.IsAbs(path) {
		sibling := filepath.Join(m.curdir(), file)
		if _, err := os.Stat(sibling); err == nil {
			path = sibling
		} else {
			path = filepath.Join(m.Workdir, file)
		}
	}

	log.Tracef("%v: including %v", loc, path)

	f, err := parser.ParseFile(path)
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) && !required {
			log.Debugf("%v: skipping missing include %v", loc, file)
			return nil
		}
		return errors.Wrapf(err, "%v: including %v", loc, file)
	}

	m.files = append(m.files, path)
	m.Variables.Set("MAKEFILE_LIST", FlavorRecursive, SourceMakefile, strings.Join(m.files, " "))

	stmts, err := Compile(f)
	if err != nil {
		return errors.Wrapf(err, "%v: including %v", loc, file)
	}

	return stmts.Execute(m, nil)
}

func (m *Makefile) curdir() string {
	if len(m.files) > 0 {
		return filepath.Dir(m.files[len(m.files)-1])
	}
	return m.Workdir
}

func hasGlob(s string) bool {
	return strings.ContainsAny(s, "*?[")
}

// glob expands a wildcard word against the working directory. No match
// (or a bad pattern) expands to nothing, never an error.
func (m *Makefile) glob(w string) []string {
	pat := w
	rel := !filepath.IsAbs(w)
	if rel {
		pat = filepath.Join(m.Workdir, w)
	}

	matches, err := filepath.Glob(pat)
	if err != nil || len(matches) == 0 {
		return nil
	}

	if rel {
		for i, match := range matches {
			if r, rerr := filepath.Rel(m.Workdir, match); rerr == nil {
				matches[i] = r
			}
		}
	}
	return matches
}

func expandWildcards(m *Makefile, words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if !hasGlob(w) {
			out = append(out, w)
			continue
		}

		out = append(out, m.glob(w)...)
	}
	return out
}
