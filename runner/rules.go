package runner

import (
	log "github.com/sirupsen/logrus"

	"github.com/dbywalec/pymake/parser"
)

// CommandSink is what the execution context's current rule exposes:
// trailing command lines are appended to it.
type CommandSink interface {
	AddCommand(c parser.Expansion)
}

// ExplicitRule is a rule attached to named targets.
type ExplicitRule struct {
	Deps        []string
	DoubleColon bool
	Loc         parser.Location
	Commands    []parser.Expansion
}

func (r *ExplicitRule) AddCommand(c parser.Expansion) {
	r.Commands = append(r.Commands, c)
}

// PatternRule is a rule template keyed by wildcard patterns, tried in
// registration order during dependency resolution.
type PatternRule struct {
	Targets     []Pattern
	Deps        []Pattern
	DoubleColon bool
	Loc         parser.Location
	Commands    []parser.Expansion
}

func (r *PatternRule) AddCommand(c parser.Expansion) {
	r.Commands = append(r.Commands, c)
}

// PatternRuleInstance binds a shared pattern rule to one explicit
// target, with the stem the target matched.
type PatternRuleInstance struct {
	Rule      *PatternRule
	Dir       string
	Stem      string
	MatchAny  bool
	Variables *Variables
}

// DummyRule swallows commands attached to a rule whose target list
// resolved to nothing.
type DummyRule struct{}

func (DummyRule) AddCommand(c parser.Expansion) {
	log.Debugf("discarding command at %v", c.Loc)
}
