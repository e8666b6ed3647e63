package runner

import (
	log "github.com/sirupsen/logrus"
)

// Flavor is the evaluation timing of a stored value: recursive values
// are re-resolved on every read, simple values were resolved once at
// assignment and stored as plain text.
type Flavor int

const (
	FlavorRecursive Flavor = iota
	FlavorSimple
)

func (f Flavor) String() string {
	switch f {
	case FlavorRecursive:
		return "recursive"
	case FlavorSimple:
		return "simple"
	}
	return "unknown"
}

// Source ranks where a binding came from. Lower values out-rank higher
// ones on conflicting plain assignment.
type Source int

const (
	SourceOverride Source = iota
	SourceCommandLine
	SourceMakefile
	SourceEnvironment
)

func (s Source) String() string {
	switch s {
	case SourceOverride:
		return "override"
	case SourceCommandLine:
		return "command-line"
	case SourceMakefile:
		return "makefile"
	case SourceEnvironment:
		return "environment"
	}
	return "unknown"
}

type binding struct {
	flavor Flavor
	source Source
	value  string
}

// Variables is one scope of bindings: the global scope, a scope keyed by
// a pattern, or a scope keyed by a target. Reads fall back to the parent
// scope, writes always land locally.
type Variables struct {
	parent *Variables
	vars   map[string]binding
}

func NewVariables(parent *Variables) *Variables {
	return &Variables{
		parent: parent,
		vars:   map[string]binding{},
	}
}

// Get returns the stored value of name without resolving it, along with
// its flavor, source and whether it is bound at all.
func (v *Variables) Get(name string) (Flavor, Source, string, bool) {
	for s := v; s != nil; s = s.parent {
		if b, ok := s.vars[name]; ok {
			return b.flavor, b.source, b.value, true
		}
	}
	return 0, 0, "", false
}

// Set binds name, unless an existing binding came from a stronger
// source.
func (v *Variables) Set(name string, flavor Flavor, source Source, value string) {
	if b, ok := v.vars[name]; ok && b.source < source {
		log.Debugf("not setting %v: %v binding out-ranks %v", name, b.source, source)
		return
	}

	v.vars[name] = binding{flavor: flavor, source: source, value: value}
}

// Append implements `+=`. The appended text inherits the flavor of the
// prior binding: recursive values grow by raw text, simple values by the
// text resolved now against the global scope. An unbound name behaves
// like a plain recursive assignment.
func (v *Variables) Append(name string, source Source, value string, global *Variables, m *Makefile) error {
	flavor, _, old, ok := v.Get(name)
	if !ok {
		v.Set(name, FlavorRecursive, source, value)
		return nil
	}

	if flavor == FlavorSimple {
		resolved, err := m.expandRaw(value, global)
		if err != nil {
			return err
		}
		value = resolved
	}

	if old != "" {
		value = old + " " + value
	}
	v.vars[name] = binding{flavor: flavor, source: source, value: value}
	return nil
}

// Names returns the locally bound names, unordered.
func (v *Variables) Names() []string {
	names := make([]string, 0, len(v.vars))
	for name := range v.vars {
		names = append(names, name)
	}
	return names
}

func (v *Variables) Len() int {
	return len(v.vars)
}
