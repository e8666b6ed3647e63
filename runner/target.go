package runner

// Target is one entry of the makefile's target table: the rules that
// build it and its target-specific variable scope.
type Target struct {
	Name          string
	Rules         []*ExplicitRule
	RuleInstances []*PatternRuleInstance
	Variables     *Variables
}

func (t *Target) AddRule(r *ExplicitRule) {
	t.Rules = append(t.Rules, r)
}

func (t *Target) AddRuleInstance(ri *PatternRuleInstance) {
	t.RuleInstances = append(t.RuleInstances, ri)
}
