// Package braid holds the manufacturing-effort model for 2D braiding:
// three sub-stages scoring machine-speed, angle-curvature and
// width-curvature interactions, fused by a main stage with the geometry
// and layup inputs, wrapped in an out-of-range linear extension.
package braid

import (
	"fmt"
	"math"

	"fuzzyme/internal/pipeline"
)

const (
	// Carriers on the reference radial braider, 16 horn gears of 12.
	Bobbins = 16.0 * 12.0

	// MaxPatches is the raw patch-count ceiling. The effort stage works
	// on a 0..5 scale, see NormalizePatchCount.
	MaxPatches = 15.0

	// DefaultTolerance is the forward-difference step for sensitivities.
	DefaultTolerance = 1e-4
)

// YarnWidth derives the deposited yarn width in mm from the profile
// circumference in mm and the braiding angle in degrees.
func YarnWidth(circumference, angleDeg float64) float64 {
	return math.Cos(angleDeg*math.Pi/180.0) * 2.0 * circumference / Bobbins
}

// RadiusDiameterRatio relates a path curvature radius to the mandrel
// diameter implied by the profile circumference.
func RadiusDiameterRatio(radius, circumference float64) float64 {
	return radius / (circumference / math.Pi)
}

// NormalizePatchCount maps a raw UD-patch count in [0, MaxPatches] onto
// the 0..5 scale the effort stage is partitioned over.
func NormalizePatchCount(n float64) float64 {
	return n * 5.0 / MaxPatches
}

// Inputs is one design point. PatchNum is the raw patch count.
type Inputs struct {
	BraidAngle          float64
	YarnWidth           float64
	RadiusDiameterRatio float64
	EdgeRadius          float64
	AspectRatio         float64
	PlyNum              float64
	PatchNum            float64
}

func (in Inputs) values() map[string]float64 {
	return map[string]float64{
		"BraidAngle":          in.BraidAngle,
		"YarnWidth":           in.YarnWidth,
		"RadiusDiameterRatio": in.RadiusDiameterRatio,
		"EdgeRadius":          in.EdgeRadius,
		"AspectRatio":         in.AspectRatio,
		"PlyNum":              in.PlyNum,
		"PatchNum":            NormalizePatchCount(in.PatchNum),
	}
}

// inputOrder fixes the variable order for gradients.
var inputOrder = []string{
	"BraidAngle", "YarnWidth", "RadiusDiameterRatio",
	"EdgeRadius", "AspectRatio", "PlyNum", "PatchNum",
}

// BestInputs is the lowest-effort configuration of the model.
func BestInputs() Inputs {
	return Inputs{BraidAngle: 25, YarnWidth: 2.7, RadiusDiameterRatio: 10, EdgeRadius: 5, AspectRatio: 2, PlyNum: 5, PatchNum: 0}
}

// WorstInputs is the highest-effort configuration of the model.
func WorstInputs() Inputs {
	return Inputs{BraidAngle: 75, YarnWidth: 4, RadiusDiameterRatio: 0, EdgeRadius: 3, AspectRatio: 4, PlyNum: 20, PatchNum: MaxPatches}
}

// Model is the assembled effort model.
type Model struct {
	ex *pipeline.Extrapolator

	// Tolerance is the forward-difference step used by the
	// sensitivity methods.
	Tolerance float64
}

func New() (*Model, error) {
	ex, err := newExtrapolator()
	if err != nil {
		return nil, fmt.Errorf("building braid model: %w", err)
	}
	return &Model{ex: ex, Tolerance: DefaultTolerance}, nil
}

// Extrapolator exposes the underlying pipeline, mainly for persistence.
func (m *Model) Extrapolator() *pipeline.Extrapolator {
	return m.ex
}

// Evaluation is one scored design point with its dominant reasoning.
type Evaluation struct {
	Inputs       Inputs
	Value        float64
	Extrapolated bool
	Reason       pipeline.Reason
	Hint         string

	result pipeline.Result
}

// Evaluate scores one design point and explains the dominant rule.
func (m *Model) Evaluate(in Inputs) (Evaluation, error) {
	res, err := m.ex.Evaluate(in.values())
	if err != nil {
		return Evaluation{}, err
	}
	reason, err := m.ex.Pipeline.Explain(res)
	if err != nil {
		return Evaluation{}, err
	}
	hint, _ := lookupHint(reason.Rule, reason.Variable)
	return Evaluation{
		Inputs:       in,
		Value:        res.Value,
		Extrapolated: res.Extrapolated,
		Reason:       reason,
		Hint:         hint,
		result:       res,
	}, nil
}

// Sensitivity scores a design point and differentiates the score by
// forward finite differences over the raw inputs, patch count included.
func (m *Model) Sensitivity(in Inputs) (Evaluation, []pipeline.Gradient, error) {
	base, err := m.Evaluate(in)
	if err != nil {
		return Evaluation{}, nil, err
	}
	grads := make([]pipeline.Gradient, 0, len(inputOrder))
	for _, name := range inputOrder {
		shifted := in
		switch name {
		case "BraidAngle":
			shifted.BraidAngle += m.Tolerance
		case "YarnWidth":
			shifted.YarnWidth += m.Tolerance
		case "RadiusDiameterRatio":
			shifted.RadiusDiameterRatio += m.Tolerance
		case "EdgeRadius":
			shifted.EdgeRadius += m.Tolerance
		case "AspectRatio":
			shifted.AspectRatio += m.Tolerance
		case "PlyNum":
			shifted.PlyNum += m.Tolerance
		case "PatchNum":
			shifted.PatchNum += m.Tolerance
		}
		res, err := m.ex.Evaluate(shifted.values())
		if err != nil {
			return Evaluation{}, nil, fmt.Errorf("perturbing %s: %w", name, err)
		}
		grads = append(grads, pipeline.Gradient{
			Variable: name,
			Value:    (res.Value - base.Value) / m.Tolerance,
		})
	}
	return base, grads, nil
}
