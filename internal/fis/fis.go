// Package fis implements a Mamdani-style fuzzy inference system:
// fuzzification of crisp inputs against linguistic variables, rule
// implication, aggregation and centroid defuzzification.
package fis

import (
	"errors"
	"fmt"

	"fuzzyme/internal/mf"
)

// Number of equally spaced samples per output range used by the
// centroid integration.
const defuzzSamples = 1000

var (
	ErrMissingInput          = errors.New("missing crisp input")
	ErrUnknownVariable       = errors.New("unknown variable")
	ErrUnknownLabel          = errors.New("unknown label")
	ErrNoRules               = errors.New("output variable has no rules")
	ErrZeroArea              = errors.New("aggregated area is zero")
	ErrUnsupportedReducer    = errors.New("unsupported reducer")
	ErrUnsupportedCombinator = errors.New("unsupported combinator")
	ErrDuplicate             = errors.New("duplicate name")
)

// Combinator joins a rule's antecedent degrees.
type Combinator string

const (
	And Combinator = "AND"
	Or  Combinator = "OR"
)

// Reducer selects how degree lists and consequent shapes are combined.
type Reducer string

const (
	ReduceMin  Reducer = "min"
	ReduceProd Reducer = "prod"
	ReduceMax  Reducer = "max"
	ReduceSum  Reducer = "sum"
)

// Term binds a linguistic label to its membership function.
type Term struct {
	Label string
	MF    mf.Func
}

// Variable is a named input or output with a numeric range and an
// ordered list of terms. The range bounds only the output integration;
// fuzzification is total over the reals.
type Variable struct {
	Name     string
	Min, Max float64
	Terms    []Term
}

// Term returns the membership function for label.
func (v Variable) Term(label string) (mf.Func, bool) {
	for _, t := range v.Terms {
		if t.Label == label {
			return t.MF, true
		}
	}
	return mf.Func{}, false
}

// Antecedent is a (variable, label) pair; the same shape serves as a
// rule consequent.
type Antecedent struct {
	Variable string
	Label    string
}

// Rule combines antecedents with one combinator into one consequent.
type Rule struct {
	Name string
	Op   Combinator
	When []Antecedent
	Then Antecedent
}

// Config selects the reducers of a System. Zero values take the
// reference defaults: AND=prod, OR=max, implication=min,
// aggregation=sum.
type Config struct {
	Name        string
	And         Reducer
	Or          Reducer
	Implication Reducer
	Aggregation Reducer
}

// System is a fuzzy inference system: variables, an ordered rule list
// and the configured reducers. Rules keep insertion order; all
// first-wins tie-breaking is defined by that order.
type System struct {
	Name        string
	And         Reducer
	Or          Reducer
	Implication Reducer
	Aggregation Reducer

	Inputs  []Variable
	Outputs []Variable
	Rules   []Rule

	inputIndex  map[string]int
	outputIndex map[string]int
	ruleIndex   map[string]int
}

// New validates the reducer configuration and returns an empty system.
// Unsupported reducers fail here, not at evaluation time.
func New(cfg Config) (*System, error) {
	s := &System{
		Name:        cfg.Name,
		And:         cfg.And,
		Or:          cfg.Or,
		Implication: cfg.Implication,
		Aggregation: cfg.Aggregation,
		inputIndex:  make(map[string]int),
		outputIndex: make(map[string]int),
		ruleIndex:   make(map[string]int),
	}
	if s.And == "" {
		s.And = ReduceProd
	}
	if s.Or == "" {
		s.Or = ReduceMax
	}
	if s.Implication == "" {
		s.Implication = ReduceMin
	}
	if s.Aggregation == "" {
		s.Aggregation = ReduceSum
	}
	if s.And != ReduceMin && s.And != ReduceProd {
		return nil, fmt.Errorf("%w: AND=%s", ErrUnsupportedReducer, s.And)
	}
	if s.Or != ReduceMax && s.Or != ReduceSum {
		return nil, fmt.Errorf("%w: OR=%s", ErrUnsupportedReducer, s.Or)
	}
	if s.Implication != ReduceMin && s.Implication != ReduceProd {
		return nil, fmt.Errorf("%w: implication=%s", ErrUnsupportedReducer, s.Implication)
	}
	if s.Aggregation != ReduceMax && s.Aggregation != ReduceSum {
		return nil, fmt.Errorf("%w: aggregation=%s", ErrUnsupportedReducer, s.Aggregation)
	}
	return s, nil
}

// AddInput appends an input variable. Names and labels must be unique.
func (s *System) AddInput(v Variable) error {
	if err := checkVariable(v); err != nil {
		return err
	}
	if _, exists := s.inputIndex[v.Name]; exists {
		return fmt.Errorf("%w: input %s", ErrDuplicate, v.Name)
	}
	s.inputIndex[v.Name] = len(s.Inputs)
	s.Inputs = append(s.Inputs, v)
	return nil
}

// AddOutput appends an output variable.
func (s *System) AddOutput(v Variable) error {
	if err := checkVariable(v); err != nil {
		return err
	}
	if _, exists := s.outputIndex[v.Name]; exists {
		return fmt.Errorf("%w: output %s", ErrDuplicate, v.Name)
	}
	s.outputIndex[v.Name] = len(s.Outputs)
	s.Outputs = append(s.Outputs, v)
	return nil
}

// AddRule appends a rule. The combinator must be AND or OR; variable
// and label references stay unchecked until evaluation.
func (s *System) AddRule(r Rule) error {
	if r.Name == "" {
		return errors.New("rule name is required")
	}
	if r.Op != And && r.Op != Or {
		return fmt.Errorf("%w: %s in rule %s", ErrUnsupportedCombinator, r.Op, r.Name)
	}
	if len(r.When) == 0 {
		return fmt.Errorf("rule %s has no antecedents", r.Name)
	}
	if _, exists := s.ruleIndex[r.Name]; exists {
		return fmt.Errorf("%w: rule %s", ErrDuplicate, r.Name)
	}
	s.ruleIndex[r.Name] = len(s.Rules)
	s.Rules = append(s.Rules, r)
	return nil
}

// Rule returns the rule registered under name.
func (s *System) Rule(name string) (Rule, bool) {
	i, ok := s.ruleIndex[name]
	if !ok {
		return Rule{}, false
	}
	return s.Rules[i], true
}

// Input returns the input variable registered under name.
func (s *System) Input(name string) (Variable, bool) {
	i, ok := s.inputIndex[name]
	if !ok {
		return Variable{}, false
	}
	return s.Inputs[i], true
}

// Output returns the output variable registered under name.
func (s *System) Output(name string) (Variable, bool) {
	i, ok := s.outputIndex[name]
	if !ok {
		return Variable{}, false
	}
	return s.Outputs[i], true
}

func checkVariable(v Variable) error {
	if v.Name == "" {
		return errors.New("variable name is required")
	}
	seen := make(map[string]struct{}, len(v.Terms))
	for _, t := range v.Terms {
		if t.Label == "" {
			return fmt.Errorf("variable %s has an unnamed term", v.Name)
		}
		if _, exists := seen[t.Label]; exists {
			return fmt.Errorf("%w: label %s of variable %s", ErrDuplicate, t.Label, v.Name)
		}
		seen[t.Label] = struct{}{}
		if err := t.MF.Validate(); err != nil {
			return fmt.Errorf("variable %s label %s: %w", v.Name, t.Label, err)
		}
	}
	return nil
}
