package fis

import (
	"errors"
	"math"
	"testing"

	"fuzzyme/internal/mf"
)

func mustSystem(t *testing.T, cfg Config) *System {
	t.Helper()
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("new system failed: %v", err)
	}
	return s
}

func constantRuleSystem(t *testing.T, and Reducer) *System {
	t.Helper()
	s := mustSystem(t, Config{Name: "const", And: and})
	for _, name := range []string{"X", "Y"} {
		if err := s.AddInput(Variable{
			Name: name, Min: 0, Max: 1,
			Terms: []Term{{Label: "Label1", MF: mf.Constant(1.0)}},
		}); err != nil {
			t.Fatalf("add input failed: %v", err)
		}
	}
	if err := s.AddOutput(Variable{
		Name: "Z", Min: 0, Max: 1,
		Terms: []Term{{Label: "LabelOut", MF: mf.Constant(0.5)}},
	}); err != nil {
		t.Fatalf("add output failed: %v", err)
	}
	if err := s.AddRule(Rule{
		Name: "only",
		Op:   And,
		When: []Antecedent{{Variable: "X", Label: "Label1"}, {Variable: "Y", Label: "Label1"}},
		Then: Antecedent{Variable: "Z", Label: "LabelOut"},
	}); err != nil {
		t.Fatalf("add rule failed: %v", err)
	}
	return s
}

func TestEndToEndConstantRule(t *testing.T) {
	s := constantRuleSystem(t, ReduceMin)
	for _, in := range []map[string]float64{
		{"X": 0, "Y": 0},
		{"X": 42, "Y": -7},
	} {
		res, err := s.Evaluate(in)
		if err != nil {
			t.Fatalf("evaluate failed: %v", err)
		}
		if math.Abs(res.Value-0.5) > 1e-9 {
			t.Fatalf("expected crisp 0.5, got=%f", res.Value)
		}
	}
}

func TestEvaluateIsBitIdenticallyRepeatable(t *testing.T) {
	s := gaussSystem(t, Config{Name: "repeat", And: ReduceMin})
	in := map[string]float64{"A": 0.3, "B": 0.7}
	first, err := s.Evaluate(in)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	second, err := s.Evaluate(in)
	if err != nil {
		t.Fatalf("re-evaluate failed: %v", err)
	}
	if first.Value != second.Value {
		t.Fatalf("expected bit-identical output, got %v and %v", first.Value, second.Value)
	}
	for i := range first.Rules {
		if first.Rules[i].Strength != second.Rules[i].Strength {
			t.Fatalf("rule %s strength differs between runs", first.Rules[i].Rule)
		}
	}
}

// gaussSystem builds a two-input two-rule system over [0,1] ranges.
func gaussSystem(t *testing.T, cfg Config) *System {
	t.Helper()
	s := mustSystem(t, cfg)
	for _, name := range []string{"A", "B"} {
		if err := s.AddInput(Variable{
			Name: name, Min: 0, Max: 1,
			Terms: []Term{
				{Label: "Low", MF: mf.Gaussian(0.2, 0.0)},
				{Label: "High", MF: mf.Gaussian(0.2, 1.0)},
			},
		}); err != nil {
			t.Fatalf("add input failed: %v", err)
		}
	}
	if err := s.AddOutput(Variable{
		Name: "Out", Min: 0, Max: 1,
		Terms: []Term{
			{Label: "Small", MF: mf.Gaussian(0.1, 0.2)},
			{Label: "Large", MF: mf.Gaussian(0.1, 0.8)},
		},
	}); err != nil {
		t.Fatalf("add output failed: %v", err)
	}
	if err := s.AddRule(Rule{
		Name: "bothLow", Op: And,
		When: []Antecedent{{Variable: "A", Label: "Low"}, {Variable: "B", Label: "Low"}},
		Then: Antecedent{Variable: "Out", Label: "Small"},
	}); err != nil {
		t.Fatalf("add rule failed: %v", err)
	}
	if err := s.AddRule(Rule{
		Name: "anyHigh", Op: Or,
		When: []Antecedent{{Variable: "A", Label: "High"}, {Variable: "B", Label: "High"}},
		Then: Antecedent{Variable: "Out", Label: "Large"},
	}); err != nil {
		t.Fatalf("add rule failed: %v", err)
	}
	return s
}

func TestAndReducers(t *testing.T) {
	// Both antecedent degrees are 0.3: min gives 0.3, prod gives 0.09.
	term := Term{Label: "L", MF: mf.Constant(0.3)}
	for _, tc := range []struct {
		and  Reducer
		want float64
	}{
		{ReduceMin, 0.3},
		{ReduceProd, 0.09},
	} {
		s := mustSystem(t, Config{Name: "and", And: tc.and})
		for _, name := range []string{"P", "Q"} {
			if err := s.AddInput(Variable{Name: name, Min: 0, Max: 1, Terms: []Term{term}}); err != nil {
				t.Fatalf("add input failed: %v", err)
			}
		}
		if err := s.AddOutput(Variable{Name: "R", Min: 0, Max: 1, Terms: []Term{{Label: "O", MF: mf.Constant(1)}}}); err != nil {
			t.Fatalf("add output failed: %v", err)
		}
		if err := s.AddRule(Rule{
			Name: "r", Op: And,
			When: []Antecedent{{Variable: "P", Label: "L"}, {Variable: "Q", Label: "L"}},
			Then: Antecedent{Variable: "R", Label: "O"},
		}); err != nil {
			t.Fatalf("add rule failed: %v", err)
		}
		res, err := s.Evaluate(map[string]float64{"P": 0, "Q": 0})
		if err != nil {
			t.Fatalf("evaluate failed: %v", err)
		}
		if math.Abs(res.Rules[0].Strength-tc.want) > 1e-12 {
			t.Fatalf("AND=%s: expected strength %f, got=%f", tc.and, tc.want, res.Rules[0].Strength)
		}
	}
}

func TestSumOrExceedsOneUnclamped(t *testing.T) {
	s := mustSystem(t, Config{Name: "sumor", Or: ReduceSum})
	for _, name := range []string{"P", "Q"} {
		if err := s.AddInput(Variable{Name: name, Min: 0, Max: 1, Terms: []Term{{Label: "L", MF: mf.Constant(0.8)}}}); err != nil {
			t.Fatalf("add input failed: %v", err)
		}
	}
	if err := s.AddOutput(Variable{Name: "R", Min: 0, Max: 1, Terms: []Term{{Label: "O", MF: mf.Gaussian(0.1, 0.5)}}}); err != nil {
		t.Fatalf("add output failed: %v", err)
	}
	if err := s.AddRule(Rule{
		Name: "r", Op: Or,
		When: []Antecedent{{Variable: "P", Label: "L"}, {Variable: "Q", Label: "L"}},
		Then: Antecedent{Variable: "R", Label: "O"},
	}); err != nil {
		t.Fatalf("add rule failed: %v", err)
	}
	res, err := s.Evaluate(map[string]float64{"P": 0, "Q": 0})
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if math.Abs(res.Rules[0].Strength-1.6) > 1e-12 {
		t.Fatalf("expected unclamped strength 1.6, got=%f", res.Rules[0].Strength)
	}
	// The symmetric consequent still defuzzifies to its center.
	if math.Abs(res.Value-0.5) > 1e-3 {
		t.Fatalf("expected centroid near 0.5, got=%f", res.Value)
	}
}

func TestStrongestRuleFirstWinsTies(t *testing.T) {
	s := mustSystem(t, Config{Name: "ties"})
	if err := s.AddInput(Variable{Name: "A", Min: 0, Max: 1, Terms: []Term{{Label: "L", MF: mf.Constant(0.7)}}}); err != nil {
		t.Fatalf("add input failed: %v", err)
	}
	if err := s.AddOutput(Variable{Name: "O", Min: 0, Max: 1, Terms: []Term{{Label: "T", MF: mf.Constant(1)}}}); err != nil {
		t.Fatalf("add output failed: %v", err)
	}
	for _, name := range []string{"first", "second"} {
		if err := s.AddRule(Rule{
			Name: name, Op: And,
			When: []Antecedent{{Variable: "A", Label: "L"}},
			Then: Antecedent{Variable: "O", Label: "T"},
		}); err != nil {
			t.Fatalf("add rule failed: %v", err)
		}
	}
	res, err := s.Evaluate(map[string]float64{"A": 0})
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	best, ok := res.StrongestRule()
	if !ok || best.Rule != "first" {
		t.Fatalf("expected first rule to win the tie, got=%q", best.Rule)
	}
}

func TestZeroAreaFails(t *testing.T) {
	s := mustSystem(t, Config{Name: "zero"})
	if err := s.AddInput(Variable{Name: "A", Min: 0, Max: 1, Terms: []Term{{Label: "L", MF: mf.Constant(0)}}}); err != nil {
		t.Fatalf("add input failed: %v", err)
	}
	if err := s.AddOutput(Variable{Name: "O", Min: 0, Max: 1, Terms: []Term{{Label: "T", MF: mf.Gaussian(0.1, 0.5)}}}); err != nil {
		t.Fatalf("add output failed: %v", err)
	}
	if err := s.AddRule(Rule{
		Name: "r", Op: And,
		When: []Antecedent{{Variable: "A", Label: "L"}},
		Then: Antecedent{Variable: "O", Label: "T"},
	}); err != nil {
		t.Fatalf("add rule failed: %v", err)
	}
	_, err := s.Evaluate(map[string]float64{"A": 0.5})
	if !errors.Is(err, ErrZeroArea) {
		t.Fatalf("expected ErrZeroArea, got: %v", err)
	}
}

func TestLazyReferenceValidation(t *testing.T) {
	s := mustSystem(t, Config{Name: "lazy"})
	if err := s.AddInput(Variable{Name: "A", Min: 0, Max: 1, Terms: []Term{{Label: "L", MF: mf.Constant(1)}}}); err != nil {
		t.Fatalf("add input failed: %v", err)
	}
	if err := s.AddOutput(Variable{Name: "O", Min: 0, Max: 1, Terms: []Term{{Label: "T", MF: mf.Constant(1)}}}); err != nil {
		t.Fatalf("add output failed: %v", err)
	}
	// References to undefined variables and labels are accepted here...
	if err := s.AddRule(Rule{
		Name: "ghost", Op: And,
		When: []Antecedent{{Variable: "Nope", Label: "L"}},
		Then: Antecedent{Variable: "O", Label: "T"},
	}); err != nil {
		t.Fatalf("add rule should defer reference checks: %v", err)
	}
	// ...and rejected at evaluation time.
	_, err := s.Evaluate(map[string]float64{"A": 0})
	if !errors.Is(err, ErrUnknownVariable) {
		t.Fatalf("expected ErrUnknownVariable, got: %v", err)
	}
}

func TestUnknownLabelAtEvaluation(t *testing.T) {
	s := mustSystem(t, Config{Name: "label"})
	if err := s.AddInput(Variable{Name: "A", Min: 0, Max: 1, Terms: []Term{{Label: "L", MF: mf.Constant(1)}}}); err != nil {
		t.Fatalf("add input failed: %v", err)
	}
	if err := s.AddOutput(Variable{Name: "O", Min: 0, Max: 1, Terms: []Term{{Label: "T", MF: mf.Constant(1)}}}); err != nil {
		t.Fatalf("add output failed: %v", err)
	}
	if err := s.AddRule(Rule{
		Name: "r", Op: And,
		When: []Antecedent{{Variable: "A", Label: "Missing"}},
		Then: Antecedent{Variable: "O", Label: "T"},
	}); err != nil {
		t.Fatalf("add rule failed: %v", err)
	}
	_, err := s.Evaluate(map[string]float64{"A": 0})
	if !errors.Is(err, ErrUnknownLabel) {
		t.Fatalf("expected ErrUnknownLabel, got: %v", err)
	}
}

func TestOutputWithoutRulesFails(t *testing.T) {
	s := constantRuleSystem(t, ReduceMin)
	if err := s.AddOutput(Variable{Name: "Orphan", Min: 0, Max: 1, Terms: []Term{{Label: "T", MF: mf.Constant(1)}}}); err != nil {
		t.Fatalf("add output failed: %v", err)
	}
	_, err := s.Evaluate(map[string]float64{"X": 0, "Y": 0})
	if !errors.Is(err, ErrNoRules) {
		t.Fatalf("expected ErrNoRules, got: %v", err)
	}
}

func TestMissingInputFails(t *testing.T) {
	s := constantRuleSystem(t, ReduceMin)
	_, err := s.Evaluate(map[string]float64{"X": 0})
	if !errors.Is(err, ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got: %v", err)
	}
}

func TestUnsupportedReducerFailsAtConstruction(t *testing.T) {
	if _, err := New(Config{And: Reducer("avg")}); !errors.Is(err, ErrUnsupportedReducer) {
		t.Fatalf("expected ErrUnsupportedReducer, got: %v", err)
	}
	if _, err := New(Config{Aggregation: ReduceProd}); !errors.Is(err, ErrUnsupportedReducer) {
		t.Fatalf("expected aggregation reducer rejection, got: %v", err)
	}
}

func TestUnsupportedCombinatorFailsAtAddRule(t *testing.T) {
	s := mustSystem(t, Config{})
	err := s.AddRule(Rule{
		Name: "r", Op: Combinator("XOR"),
		When: []Antecedent{{Variable: "A", Label: "L"}},
		Then: Antecedent{Variable: "O", Label: "T"},
	})
	if !errors.Is(err, ErrUnsupportedCombinator) {
		t.Fatalf("expected ErrUnsupportedCombinator, got: %v", err)
	}
}

func TestDuplicateNamesRejected(t *testing.T) {
	s := mustSystem(t, Config{})
	v := Variable{Name: "A", Min: 0, Max: 1, Terms: []Term{{Label: "L", MF: mf.Constant(1)}}}
	if err := s.AddInput(v); err != nil {
		t.Fatalf("add input failed: %v", err)
	}
	if err := s.AddInput(v); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected duplicate input rejection, got: %v", err)
	}
	dup := Variable{Name: "B", Min: 0, Max: 1, Terms: []Term{
		{Label: "L", MF: mf.Constant(1)},
		{Label: "L", MF: mf.Constant(0)},
	}}
	if err := s.AddInput(dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected duplicate label rejection, got: %v", err)
	}
}

func TestDefuzzifyCentroidOfSymmetricTriangle(t *testing.T) {
	s := mustSystem(t, Config{Name: "tri", Aggregation: ReduceMax})
	if err := s.AddInput(Variable{Name: "A", Min: 0, Max: 1, Terms: []Term{{Label: "L", MF: mf.Constant(1)}}}); err != nil {
		t.Fatalf("add input failed: %v", err)
	}
	if err := s.AddOutput(Variable{Name: "O", Min: 0, Max: 10, Terms: []Term{{Label: "T", MF: mf.Triangle(2, 5, 8)}}}); err != nil {
		t.Fatalf("add output failed: %v", err)
	}
	if err := s.AddRule(Rule{
		Name: "r", Op: And,
		When: []Antecedent{{Variable: "A", Label: "L"}},
		Then: Antecedent{Variable: "O", Label: "T"},
	}); err != nil {
		t.Fatalf("add rule failed: %v", err)
	}
	res, err := s.Evaluate(map[string]float64{"A": 0})
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if math.Abs(res.Value-5) > 1e-2 {
		t.Fatalf("expected centroid near 5, got=%f", res.Value)
	}
}
