package runner

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/dbywalec/pymake/parser"
)

// Statement is a single executable chunk of makefile syntax. Executing
// one mutates the build model; the context carries the rule that
// trailing command lines attach to.
type Statement interface {
	Execute(m *Makefile, ctx *ExecutionContext) error
	Dump(w io.Writer, indent string)
}

// ExecutionContext is the mutable cursor of one execution pass.
type ExecutionContext struct {
	CurRule CommandSink
}

// StatementList is an ordered, append-only sequence of statements.
type StatementList []Statement

func (l *StatementList) Append(s Statement) {
	*l = append(*l, s)
}

// Execute runs the statements in order, stopping at the first failure.
// A nil context starts a fresh pass.
func (l StatementList) Execute(m *Makefile, ctx *ExecutionContext) error {
	if ctx == nil {
		ctx = &ExecutionContext{}
	}

	for _, s := range l {
		log.Tracef("> %-20T", s)
		if err := s.Execute(m, ctx); err != nil {
			return err
		}
	}

	return nil
}

func (l StatementList) Dump(w io.Writer, indent string) {
	fmt.Fprintf(w, "%vStatementList\n", indent)
	for _, s := range l {
		s.Dump(w, indent+" ")
	}
	fmt.Fprintf(w, "%v~StatementList\n", indent)
}

// Override records a raw command-line override string on the model.
type Override struct {
	S string
}

func (s *Override) Execute(m *Makefile, ctx *ExecutionContext) error {
	m.Overrides = append(m.Overrides, s.S)
	return nil
}

func (s *Override) Dump(w io.Writer, indent string) {
	fmt.Fprintf(w, "%vOverride: %q\n", indent, s.S)
}

// Rule defines explicit or pattern rules, depending on what its target
// list resolves to.
type Rule struct {
	TargetExp   parser.Expansion
	DepExp      parser.Expansion
	DoubleColon bool
}

func (s *Rule) Execute(m *Makefile, ctx *ExecutionContext) error {
	resolved, err := m.Expand(s.TargetExp, m.Variables)
	if err != nil {
		return err
	}

	targets := make([]Pattern, 0)
	for _, t := range expandWildcards(m, Words(resolved)) {
		targets = append(targets, NewPattern(t))
	}

	if len(targets) == 0 {
		ctx.CurRule = DummyRule{}
		return nil
	}

	ispattern := targets[0].IsPattern()
	for _, t := range targets {
		if t.IsPattern() != ispattern {
			return dataErrorf(s.TargetExp.Loc, "mixed implicit and normal rule")
		}
	}

	resolvedDeps, err := m.Expand(s.DepExp, m.Variables)
	if err != nil {
		return err
	}
	deps := expandWildcards(m, Words(resolvedDeps))

	if ispattern {
		depPatterns := make([]Pattern, 0, len(deps))
		for _, d := range deps {
			depPatterns = append(depPatterns, NewPattern(d))
		}

		rule := &PatternRule{
			Targets:     targets,
			Deps:        depPatterns,
			DoubleColon: s.DoubleColon,
			Loc:         s.TargetExp.Loc,
		}
		m.AppendImplicitRule(rule)
		ctx.CurRule = rule
		return nil
	}

	rule := &ExplicitRule{
		Deps:        deps,
		DoubleColon: s.DoubleColon,
		Loc:         s.TargetExp.Loc,
	}
	for _, t := range targets {
		m.GetTarget(t.Target()).AddRule(rule)
	}
	m.FoundTarget(targets[0].Target())

	ctx.CurRule = rule
	return nil
}

func (s *Rule) Dump(w io.Writer, indent string) {
	fmt.Fprintf(w, "%vRule %v: %v\n", indent, s.TargetExp, s.DepExp)
}

// StaticPatternRule defines a pattern rule instantiated per explicit
// target.
type StaticPatternRule struct {
	TargetExp   parser.Expansion
	PatternExp  parser.Expansion
	DepExp      parser.Expansion
	DoubleColon bool
}

func (s *StaticPatternRule) Execute(m *Makefile, ctx *ExecutionContext) error {
	resolved, err := m.Expand(s.TargetExp, m.Variables)
	if err != nil {
		return err
	}
	targets := expandWildcards(m, Words(resolved))

	if len(targets) == 0 {
		ctx.CurRule = DummyRule{}
		return nil
	}

	resolvedPatterns, err := m.Expand(s.PatternExp, m.Variables)
	if err != nil {
		return err
	}
	patterns := Words(resolvedPatterns)
	if len(patterns) != 1 {
		return dataErrorf(s.PatternExp.Loc, "static pattern rules must have a single pattern")
	}
	pattern := NewPattern(patterns[0])

	resolvedDeps, err := m.Expand(s.DepExp, m.Variables)
	if err != nil {
		return err
	}
	deps := make([]Pattern, 0)
	for _, d := range expandWildcards(m, Words(resolvedDeps)) {
		deps = append(deps, NewPattern(d))
	}

	rule := &PatternRule{
		Targets:     []Pattern{pattern},
		Deps:        deps,
		DoubleColon: s.DoubleColon,
		Loc:         s.TargetExp.Loc,
	}

	for _, t := range targets {
		if NewPattern(t).IsPattern() {
			return dataErrorf(s.TargetExp.Loc, "target '%v' of a static pattern rule must not be a pattern", t)
		}
		stem, ok := pattern.Match(t)
		if !ok {
			return dataErrorf(s.TargetExp.Loc, "target '%v' does not match the static pattern '%v'", t, pattern)
		}

		m.GetTarget(t).AddRuleInstance(&PatternRuleInstance{
			Rule:      rule,
			Stem:      stem,
			MatchAny:  pattern.MatchAny(),
			Variables: NewVariables(nil),
		})
	}

	m.FoundTarget(targets[0])
	ctx.CurRule = rule
	return nil
}

func (s *StaticPatternRule) Dump(w io.Writer, indent string) {
	fmt.Fprintf(w, "%vStaticPatternRule %v: %v: %v\n", indent, s.TargetExp, s.PatternExp, s.DepExp)
}

// Command appends a command line to the context's current rule.
type Command struct {
	Exp parser.Expansion
}

func (s *Command) Execute(m *Makefile, ctx *ExecutionContext) error {
	if ctx.CurRule == nil {
		return dataErrorf(s.Exp.Loc, "recipe commences before first target")
	}

	ctx.CurRule.AddCommand(s.Exp)
	return nil
}

func (s *Command) Dump(w io.Writer, indent string) {
	fmt.Fprintf(w, "%vCommand %v\n", indent, s.Exp)
}

// SetVariable mutates one or more variable scopes, with evaluation
// timing dictated by the operator token.
type SetVariable struct {
	NameExp   parser.Expansion
	Token     string
	Value     string
	ValueLoc  parser.Location
	TargetExp *parser.Expansion
	Source    Source
}

func (s *SetVariable) Execute(m *Makefile, ctx *ExecutionContext) error {
	vname, err := m.Expand(s.NameExp, m.Variables)
	if err != nil {
		return err
	}
	vname = strings.TrimSpace(vname)
	if len(vname) == 0 {
		return dataErrorf(s.NameExp.Loc, "empty variable name")
	}

	setvariables := []*Variables{m.Variables}
	if s.TargetExp != nil {
		setvariables = setvariables[:0]

		resolved, err := m.Expand(*s.TargetExp, m.Variables)
		if err != nil {
			return err
		}
		for _, t := range Words(resolved) {
			p := NewPattern(t)
			if p.IsPattern() {
				setvariables = append(setvariables, m.GetPatternVariables(p))
			} else {
				setvariables = append(setvariables, m.GetTarget(p.Target()).Variables)
			}
		}
	}

	for _, v := range setvariables {
		switch s.Token {
		case "+=":
			if err := v.Append(vname, s.Source, s.Value, m.Variables, m); err != nil {
				return err
			}
		case "?=":
			if _, _, _, ok := v.Get(vname); ok {
				continue
			}
			v.Set(vname, FlavorRecursive, s.Source, s.Value)
		case "=":
			v.Set(vname, FlavorRecursive, s.Source, s.Value)
		case ":=":
			e, err := parser.ParseValueString(s.Value, s.ValueLoc)
			if err != nil {
				return err
			}
			value, err := m.Expand(e, m.Variables)
			if err != nil {
				return err
			}
			v.Set(vname, FlavorSimple, s.Source, value)
		default:
			// Upstream parsing defect, not a user error
			return errors.Errorf("unexpected assignment operator %q", s.Token)
		}
	}

	return nil
}

func (s *SetVariable) Dump(w io.Writer, indent string) {
	fmt.Fprintf(w, "%vSetVariable %v %v value=%q\n", indent, s.NameExp, s.Token, s.Value)
}

// Include loads and executes other makefiles.
type Include struct {
	Exp      parser.Expansion
	Required bool
}

func (s *Include) Execute(m *Makefile, ctx *ExecutionContext) error {
	resolved, err := m.Expand(s.Exp, m.Variables)
	if err != nil {
		return err
	}

	for _, f := range Words(resolved) {
		if err := m.Include(f, s.Required, s.Exp.Loc); err != nil {
			return err
		}
	}
	return nil
}

func (s *Include) Dump(w io.Writer, indent string) {
	fmt.Fprintf(w, "%vInclude (required=%v) %v\n", indent, s.Required, s.Exp)
}

// VPathDirective mutates the model's search-path rules. No words clears
// everything, a single word clears one pattern, further words are
// colon-separated directory lists to register.
type VPathDirective struct {
	Exp parser.Expansion
}

func (s *VPathDirective) Execute(m *Makefile, ctx *ExecutionContext) error {
	resolved, err := m.Expand(s.Exp, m.Variables)
	if err != nil {
		return err
	}

	words := Words(resolved)
	if len(words) == 0 {
		m.ClearAllVPaths()
		return nil
	}

	pattern := NewPattern(words[0])
	mpaths := words[1:]

	if len(mpaths) == 0 {
		m.ClearVPath(pattern)
		return nil
	}

	dirs := make([]string, 0)
	for _, mpath := range mpaths {
		for _, dir := range strings.Split(mpath, ":") {
			if dir != "" {
				dirs = append(dirs, dir)
			}
		}
	}
	if len(dirs) > 0 {
		m.AddVPath(pattern, dirs)
	}
	return nil
}

func (s *VPathDirective) Dump(w io.Writer, indent string) {
	fmt.Fprintf(w, "%vVPath %v\n", indent, s.Exp)
}

// ExportDirective adds names to the exported set.
type ExportDirective struct {
	Exp    parser.Expansion
	Single bool
}

func (s *ExportDirective) Execute(m *Makefile, ctx *ExecutionContext) error {
	resolved, err := m.Expand(s.Exp, m.Variables)
	if err != nil {
		return err
	}

	var vlist []string
	if s.Single {
		vlist = []string{strings.TrimSpace(resolved)}
	} else {
		vlist = Words(resolved)
		if len(vlist) == 0 {
			return dataErrorf(s.Exp.Loc, "exporting all variables is not supported")
		}
	}

	for _, v := range vlist {
		m.ExportedVars[v] = true
	}
	return nil
}

func (s *ExportDirective) Dump(w io.Writer, indent string) {
	fmt.Fprintf(w, "%vExport (single=%v) %v\n", indent, s.Single, s.Exp)
}

// EmptyDirective asserts that a line expands to whitespace only.
type EmptyDirective struct {
	Exp parser.Expansion
}

func (s *EmptyDirective) Execute(m *Makefile, ctx *ExecutionContext) error {
	resolved, err := m.Expand(s.Exp, m.Variables)
	if err != nil {
		return err
	}

	if strings.TrimSpace(resolved) != "" {
		return dataErrorf(s.Exp.Loc, "line expands to non-empty value")
	}
	return nil
}

func (s *EmptyDirective) Dump(w io.Writer, indent string) {
	fmt.Fprintf(w, "%vEmptyDirective: %v\n", indent, s.Exp)
}
