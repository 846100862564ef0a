package pipeline

import (
	"errors"
	"fmt"
)

// Reason names the dominant rule of an evaluation and, within it, the
// most influential antecedent term.
type Reason struct {
	Rule     string
	Variable string
	Label    string
	Sentence string
}

// Explain finds the rule with the maximum activation strength in the
// main stage and the antecedent with the maximum fuzzified degree
// inside it; ties resolve to the first in declared order. When the
// dominant antecedent is itself a sub stage's output variable, the
// search descends into that stage's trace so the reported cause is a
// raw design variable rather than an opaque intermediate.
func (p *Pipeline) Explain(res Result) (Reason, error) {
	stage := p.Main
	if stage == nil {
		return Reason{}, ErrNoStages
	}
	record := res.Main

	for depth := 0; depth <= len(p.Subs); depth++ {
		trace, ok := record.StrongestRule()
		if !ok {
			return Reason{}, fmt.Errorf("stage %s produced no rule trace", stage.Name)
		}
		rule, ok := stage.Rule(trace.Rule)
		if !ok {
			return Reason{}, fmt.Errorf("stage %s has no rule %s", stage.Name, trace.Rule)
		}
		best := 0
		for i, d := range trace.Degrees {
			if d > trace.Degrees[best] {
				best = i
			}
		}
		if best >= len(rule.When) {
			return Reason{}, fmt.Errorf("rule %s trace does not match its antecedents", rule.Name)
		}
		ant := rule.When[best]

		if sub, subRecord, ok := p.subByOutput(ant.Variable, res); ok && sub != stage {
			stage = sub
			record = subRecord
			continue
		}
		return Reason{
			Rule:     rule.Name,
			Variable: ant.Variable,
			Label:    ant.Label,
			Sentence: fmt.Sprintf("In rule %q: %q is %q", rule.Name, ant.Variable, ant.Label),
		}, nil
	}
	return Reason{}, errors.New("explanation did not terminate")
}
