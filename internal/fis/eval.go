package fis

import (
	"fmt"
)

// RuleTrace records one rule's evaluation: its activation strength and
// the raw fuzzified degree of every antecedent in declared order.
type RuleTrace struct {
	Rule     string
	Strength float64
	Degrees  []float64
}

// Result is the full record of one evaluation. Evaluate is a pure
// function of its inputs; everything the explainer or a sensitivity
// pass needs lives in the returned record, so concurrent evaluations of
// the same System do not race on shared trace state.
type Result struct {
	// Value is the crisp value of the first declared output variable.
	Value float64
	// Values holds the crisp value per output variable.
	Values map[string]float64
	// Rules holds one trace per rule, in rule order.
	Rules []RuleTrace
	// Degrees is the fuzzification table: variable -> label -> degree.
	Degrees map[string]map[string]float64
}

// StrongestRule returns the trace with the maximum activation strength.
// The first rule in declared order wins ties.
func (r Result) StrongestRule() (RuleTrace, bool) {
	if len(r.Rules) == 0 {
		return RuleTrace{}, false
	}
	best := r.Rules[0]
	for _, rt := range r.Rules[1:] {
		if rt.Strength > best.Strength {
			best = rt
		}
	}
	return best, true
}

// Evaluate runs the full pass: fuzzify every term of every input
// variable against the crisp inputs, reduce each rule's antecedent
// degrees into an activation strength, aggregate the clipped or scaled
// consequent shapes per output variable and defuzzify by centroid of
// area.
func (s *System) Evaluate(inputs map[string]float64) (Result, error) {
	degrees, err := s.fuzzify(inputs)
	if err != nil {
		return Result{}, err
	}

	traces := make([]RuleTrace, 0, len(s.Rules))
	for _, rule := range s.Rules {
		trace, err := s.imply(rule, degrees)
		if err != nil {
			return Result{}, err
		}
		traces = append(traces, trace)
	}

	if len(s.Outputs) == 0 {
		return Result{}, fmt.Errorf("system %s has no output variables", s.Name)
	}
	values := make(map[string]float64, len(s.Outputs))
	for _, out := range s.Outputs {
		value, err := s.defuzzify(out, traces)
		if err != nil {
			return Result{}, err
		}
		values[out.Name] = value
	}

	return Result{
		Value:   values[s.Outputs[0].Name],
		Values:  values,
		Rules:   traces,
		Degrees: degrees,
	}, nil
}

// fuzzify evaluates every membership function of every input variable,
// not only those referenced by rules. Inputs outside the declared range
// are fuzzified like any other value; membership functions are total.
func (s *System) fuzzify(inputs map[string]float64) (map[string]map[string]float64, error) {
	degrees := make(map[string]map[string]float64, len(s.Inputs))
	for _, v := range s.Inputs {
		x, ok := inputs[v.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s of system %s", ErrMissingInput, v.Name, s.Name)
		}
		byLabel := make(map[string]float64, len(v.Terms))
		for _, t := range v.Terms {
			byLabel[t.Label] = t.MF.Evaluate(x)
		}
		degrees[v.Name] = byLabel
	}
	return degrees, nil
}

func (s *System) imply(rule Rule, degrees map[string]map[string]float64) (RuleTrace, error) {
	list := make([]float64, 0, len(rule.When))
	for _, a := range rule.When {
		byLabel, ok := degrees[a.Variable]
		if !ok {
			return RuleTrace{}, fmt.Errorf("%w: %s in rule %s", ErrUnknownVariable, a.Variable, rule.Name)
		}
		d, ok := byLabel[a.Label]
		if !ok {
			return RuleTrace{}, fmt.Errorf("%w: %s of variable %s in rule %s", ErrUnknownLabel, a.Label, a.Variable, rule.Name)
		}
		list = append(list, d)
	}

	var reducer Reducer
	switch rule.Op {
	case And:
		reducer = s.And
	case Or:
		reducer = s.Or
	default:
		return RuleTrace{}, fmt.Errorf("%w: %s in rule %s", ErrUnsupportedCombinator, rule.Op, rule.Name)
	}

	// Sum-OR may exceed 1; the strength is kept unclamped.
	strength := list[0]
	for _, d := range list[1:] {
		switch reducer {
		case ReduceMin:
			if d < strength {
				strength = d
			}
		case ReduceProd:
			strength *= d
		case ReduceMax:
			if d > strength {
				strength = d
			}
		case ReduceSum:
			strength += d
		}
	}
	return RuleTrace{Rule: rule.Name, Strength: strength, Degrees: list}, nil
}

type firedRule struct {
	consequent func(float64) float64
	strength   float64
}

// defuzzify samples the aggregated fuzzy set of one output variable
// over its range and returns the centroid of area under the sampled
// curve via trapezoidal integration.
func (s *System) defuzzify(out Variable, traces []RuleTrace) (float64, error) {
	fired := make([]firedRule, 0, len(traces))
	for i, rule := range s.Rules {
		if rule.Then.Variable != out.Name {
			continue
		}
		cons, ok := out.Term(rule.Then.Label)
		if !ok {
			return 0, fmt.Errorf("%w: %s of output %s in rule %s", ErrUnknownLabel, rule.Then.Label, out.Name, rule.Name)
		}
		fired = append(fired, firedRule{consequent: cons.Evaluate, strength: traces[i].Strength})
	}
	if len(fired) == 0 {
		return 0, fmt.Errorf("%w: %s of system %s", ErrNoRules, out.Name, s.Name)
	}

	step := (out.Max - out.Min) / float64(defuzzSamples-1)
	var area, centroid float64
	prevX := out.Min
	prevY := s.aggregate(fired, prevX)
	for i := 1; i < defuzzSamples; i++ {
		x := out.Min + float64(i)*step
		y := s.aggregate(fired, x)
		slice := (x - prevX) * (y + prevY) * 0.5
		area += slice
		centroid += slice * ((x-prevX)*0.5 + prevX)
		prevX, prevY = x, y
	}
	if area == 0 {
		return 0, fmt.Errorf("%w: output %s of system %s", ErrZeroArea, out.Name, s.Name)
	}
	return centroid / area, nil
}

// aggregate computes the aggregated membership value at one sample
// point. Implication min clips the consequent at the rule strength,
// prod scales it; aggregation sum adds contributions, max keeps the
// largest. Sum aggregation may exceed 1 and is not renormalized.
func (s *System) aggregate(fired []firedRule, x float64) float64 {
	var total float64
	for i, f := range fired {
		y := f.consequent(x)
		if s.Implication == ReduceMin {
			if y > f.strength {
				y = f.strength
			}
		} else {
			y *= f.strength
		}
		if s.Aggregation == ReduceSum {
			total += y
		} else if i == 0 || y > total {
			total = y
		}
	}
	return total
}
