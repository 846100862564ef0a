// Package pipeline composes fuzzy inference systems into a hierarchy,
// extends the composed response beyond the validated input domain, and
// derives explanations and finite-difference sensitivities from
// evaluation records.
package pipeline

import (
	"errors"
	"fmt"

	"fuzzyme/internal/fis"
)

var (
	ErrNoStages     = errors.New("pipeline has no main stage")
	ErrMissingSeeds = errors.New("no sensitivity directions supplied")
)

// Pipeline is an ordered hierarchy: every sub stage is evaluated
// against the caller's raw input vector, its crisp outputs are injected
// under their output-variable names, and the main stage runs last over
// the merged vector.
type Pipeline struct {
	Name string
	Subs []*fis.System
	Main *fis.System
}

func New(name string, main *fis.System, subs ...*fis.System) *Pipeline {
	return &Pipeline{Name: name, Main: main, Subs: subs}
}

// StageResult pairs a sub stage name with its evaluation record.
type StageResult struct {
	Stage  string
	Result fis.Result
}

// Result is the record of one pipeline evaluation. When the input
// vector violated declared bounds, Value carries the extrapolated
// response while the traces describe the clamped probe evaluation.
type Result struct {
	Value        float64
	Main         fis.Result
	Subs         []StageResult
	Extrapolated bool
}

// Evaluate runs all sub stages, injects their outputs, and evaluates
// the main stage. Sub stages are independent of each other; only the
// main stage sees their outputs.
func (p *Pipeline) Evaluate(inputs map[string]float64) (Result, error) {
	if p.Main == nil {
		return Result{}, ErrNoStages
	}
	merged := make(map[string]float64, len(inputs)+len(p.Subs))
	for k, v := range inputs {
		merged[k] = v
	}

	subResults := make([]StageResult, 0, len(p.Subs))
	for _, sub := range p.Subs {
		res, err := sub.Evaluate(inputs)
		if err != nil {
			return Result{}, fmt.Errorf("sub stage %s: %w", sub.Name, err)
		}
		for name, value := range res.Values {
			merged[name] = value
		}
		subResults = append(subResults, StageResult{Stage: sub.Name, Result: res})
	}

	mainRes, err := p.Main.Evaluate(merged)
	if err != nil {
		return Result{}, fmt.Errorf("main stage %s: %w", p.Main.Name, err)
	}
	return Result{Value: mainRes.Value, Main: mainRes, Subs: subResults}, nil
}

// subByOutput returns the sub stage producing the named output variable
// together with its result from res.
func (p *Pipeline) subByOutput(variable string, res Result) (*fis.System, fis.Result, bool) {
	for i, sub := range p.Subs {
		if _, ok := sub.Output(variable); ok && i < len(res.Subs) {
			return sub, res.Subs[i].Result, true
		}
	}
	return nil, fis.Result{}, false
}
