package fis

import (
	"fmt"

	"fuzzyme/internal/mf"
	"fuzzyme/internal/model"
)

// FromDef builds a System from its serialized definition. Reducers,
// combinators and membership parameters are checked here; variable and
// label references inside rules stay unchecked until evaluation.
func FromDef(def model.SystemDef) (*System, error) {
	s, err := New(Config{
		Name:        def.Name,
		And:         Reducer(def.And),
		Or:          Reducer(def.Or),
		Implication: Reducer(def.Implication),
		Aggregation: Reducer(def.Aggregation),
	})
	if err != nil {
		return nil, fmt.Errorf("system %s: %w", def.Name, err)
	}
	for _, v := range def.Inputs {
		if err := s.AddInput(variableFromDef(v)); err != nil {
			return nil, fmt.Errorf("system %s: %w", def.Name, err)
		}
	}
	for _, v := range def.Outputs {
		if err := s.AddOutput(variableFromDef(v)); err != nil {
			return nil, fmt.Errorf("system %s: %w", def.Name, err)
		}
	}
	for _, r := range def.Rules {
		rule := Rule{
			Name: r.Name,
			Op:   Combinator(r.Op),
			Then: Antecedent{Variable: r.Then.Variable, Label: r.Then.Label},
		}
		for _, a := range r.When {
			rule.When = append(rule.When, Antecedent{Variable: a.Variable, Label: a.Label})
		}
		if err := s.AddRule(rule); err != nil {
			return nil, fmt.Errorf("system %s: %w", def.Name, err)
		}
	}
	return s, nil
}

// Def returns the serialized definition of the system.
func (s *System) Def() model.SystemDef {
	def := model.SystemDef{
		Name:        s.Name,
		And:         string(s.And),
		Or:          string(s.Or),
		Implication: string(s.Implication),
		Aggregation: string(s.Aggregation),
	}
	for _, v := range s.Inputs {
		def.Inputs = append(def.Inputs, variableToDef(v))
	}
	for _, v := range s.Outputs {
		def.Outputs = append(def.Outputs, variableToDef(v))
	}
	for _, r := range s.Rules {
		rd := model.RuleDef{
			Name: r.Name,
			Op:   string(r.Op),
			Then: model.AntecedentDef{Variable: r.Then.Variable, Label: r.Then.Label},
		}
		for _, a := range r.When {
			rd.When = append(rd.When, model.AntecedentDef{Variable: a.Variable, Label: a.Label})
		}
		def.Rules = append(def.Rules, rd)
	}
	return def
}

func variableFromDef(def model.VariableDef) Variable {
	v := Variable{Name: def.Name, Min: def.Range[0], Max: def.Range[1]}
	for _, t := range def.Terms {
		params := make([]float64, len(t.MF.Params))
		copy(params, t.MF.Params)
		v.Terms = append(v.Terms, Term{
			Label: t.Label,
			MF:    mf.Func{Kind: mf.Kind(t.MF.Kind), Params: params},
		})
	}
	return v
}

func variableToDef(v Variable) model.VariableDef {
	def := model.VariableDef{Name: v.Name, Range: [2]float64{v.Min, v.Max}}
	for _, t := range v.Terms {
		params := make([]float64, len(t.MF.Params))
		copy(params, t.MF.Params)
		def.Terms = append(def.Terms, model.TermDef{
			Label: t.Label,
			MF:    model.MembershipDef{Kind: string(t.MF.Kind), Params: params},
		})
	}
	return def
}
