package pipeline

import (
	"fmt"
)

// Bound is one row of the extrapolation table: the validated interval
// for one input variable, a probe point beyond each edge, and the
// precomputed pipeline response at each probe. Responses at the probes
// are table constants, not re-evaluated.
type Bound struct {
	Variable      string
	Lower, Upper  float64
	ProbeBelow    float64
	ProbeAbove    float64
	ResponseBelow float64
	ResponseAbove float64
}

// Extrapolator wraps a pipeline with linear out-of-range behavior.
// While every input sits inside its bounds the pipeline is evaluated
// directly. Once a component leaves its interval, all out-of-range
// components are clamped to the nearest edge, the pipeline is evaluated
// at that probe vector, and one first-order linear correction per
// violating component is added to the baseline. Corrections are
// additive; simultaneous violations are not recomputed jointly.
type Extrapolator struct {
	Pipeline *Pipeline
	Bounds   []Bound
}

func NewExtrapolator(p *Pipeline, bounds []Bound) *Extrapolator {
	return &Extrapolator{Pipeline: p, Bounds: bounds}
}

// Evaluate runs the wrapped pipeline, extending linearly beyond the
// bounds table. The returned traces always describe the clamped
// evaluation; only Value carries the correction.
func (e *Extrapolator) Evaluate(inputs map[string]float64) (Result, error) {
	probe := make(map[string]float64, len(inputs))
	for k, v := range inputs {
		probe[k] = v
	}

	violated := false
	for _, b := range e.Bounds {
		x, ok := inputs[b.Variable]
		if !ok {
			return Result{}, fmt.Errorf("extrapolation bound %s: no input value", b.Variable)
		}
		if x < b.Lower {
			probe[b.Variable] = b.Lower
			violated = true
		} else if x > b.Upper {
			probe[b.Variable] = b.Upper
			violated = true
		}
	}

	res, err := e.Pipeline.Evaluate(probe)
	if err != nil {
		return Result{}, err
	}
	if !violated {
		return res, nil
	}

	value := res.Value
	for _, b := range e.Bounds {
		x := inputs[b.Variable]
		if x < b.Lower {
			value += (b.ResponseBelow - res.Value) / (b.ProbeBelow - b.Lower) * (x - b.Lower)
		} else if x > b.Upper {
			value += (b.ResponseAbove - res.Value) / (b.ProbeAbove - b.Upper) * (x - b.Upper)
		}
	}
	res.Value = value
	res.Extrapolated = true
	return res, nil
}
