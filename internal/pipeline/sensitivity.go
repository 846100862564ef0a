package pipeline

import (
	"fmt"
)

// DefaultTolerance is the forward finite-difference step.
const DefaultTolerance = 1e-4

// Evaluator is the crisp-in/crisp-out surface shared by Pipeline and
// Extrapolator.
type Evaluator interface {
	Evaluate(inputs map[string]float64) (Result, error)
}

// Gradient is one component of a sensitivity vector.
type Gradient struct {
	Variable string
	Value    float64
}

// Sensitivity computes a forward finite-difference gradient of the
// evaluator output with respect to each named input, re-running the
// full pipeline once per component. The variables slice fixes the
// gradient ordering and must not be empty.
func Sensitivity(ev Evaluator, inputs map[string]float64, variables []string, tol float64) (Result, []Gradient, error) {
	if len(variables) == 0 {
		return Result{}, nil, fmt.Errorf("%w: no variables to perturb", ErrMissingSeeds)
	}
	if tol == 0 {
		tol = DefaultTolerance
	}

	base, err := ev.Evaluate(inputs)
	if err != nil {
		return Result{}, nil, err
	}

	grads := make([]Gradient, 0, len(variables))
	for _, name := range variables {
		x, ok := inputs[name]
		if !ok {
			return Result{}, nil, fmt.Errorf("sensitivity variable %s: no input value", name)
		}
		perturbed := make(map[string]float64, len(inputs))
		for k, v := range inputs {
			perturbed[k] = v
		}
		perturbed[name] = x + tol
		res, err := ev.Evaluate(perturbed)
		if err != nil {
			return Result{}, nil, fmt.Errorf("perturbing %s: %w", name, err)
		}
		grads = append(grads, Gradient{Variable: name, Value: (res.Value - base.Value) / tol})
	}
	return base, grads, nil
}
