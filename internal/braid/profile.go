package braid

import (
	"fmt"

	"fuzzyme/internal/pipeline"
)

// Profile describes a braided component along its path: one entry per
// section, with segment lengths between consecutive sections. Only
// BraidingAngle and Circumferences are required; absent lists fall back
// to benign defaults.
type Profile struct {
	BraidingAngle  []float64
	Circumferences []float64
	SegmentLengths []float64
	MinRadius      []float64
	PathRadii      []float64
	Aspect         []float64
	Plies          []float64
	Patches        []float64
}

const (
	defaultMinRadius  = 5.0
	defaultCurvature  = 10.0
	defaultAspect     = 2.0
	defaultPlies      = 5.0
	defaultPatchCount = 0.0
)

func (p Profile) clone() Profile {
	cp := func(s []float64) []float64 {
		if s == nil {
			return nil
		}
		out := make([]float64, len(s))
		copy(out, s)
		return out
	}
	return Profile{
		BraidingAngle:  cp(p.BraidingAngle),
		Circumferences: cp(p.Circumferences),
		SegmentLengths: cp(p.SegmentLengths),
		MinRadius:      cp(p.MinRadius),
		PathRadii:      cp(p.PathRadii),
		Aspect:         cp(p.Aspect),
		Plies:          cp(p.Plies),
		Patches:        cp(p.Patches),
	}
}

func (p *Profile) field(name string) (*[]float64, error) {
	switch name {
	case "BraidingAngle":
		return &p.BraidingAngle, nil
	case "Circumferences":
		return &p.Circumferences, nil
	case "SegmentLengths":
		return &p.SegmentLengths, nil
	case "MinRadius":
		return &p.MinRadius, nil
	case "PathRadii":
		return &p.PathRadii, nil
	case "Aspect":
		return &p.Aspect, nil
	case "Plies":
		return &p.Plies, nil
	case "Patches":
		return &p.Patches, nil
	default:
		return nil, fmt.Errorf("profile has no field %q", name)
	}
}

// curvatureRadii aligns path radii to the section count. Radii given
// per segment are spread to sections by taking the first radius, the
// minimum of each neighboring pair, then the last radius.
func curvatureRadii(radii []float64, sections int) ([]float64, error) {
	if len(radii) == sections {
		return radii, nil
	}
	if len(radii)+1 != sections {
		return nil, fmt.Errorf("profile has %d sections but %d path radii", sections, len(radii))
	}
	out := make([]float64, 0, sections)
	out = append(out, radii[0])
	for i := 0; i+1 < len(radii); i++ {
		r := radii[i]
		if radii[i+1] < r {
			r = radii[i+1]
		}
		out = append(out, r)
	}
	out = append(out, radii[len(radii)-1])
	return out, nil
}

func (p Profile) sections() ([]Inputs, error) {
	n := len(p.BraidingAngle)
	if n == 0 {
		return nil, fmt.Errorf("profile has no sections")
	}
	if len(p.Circumferences) != n {
		return nil, fmt.Errorf("profile has %d braiding angles but %d circumferences", n, len(p.Circumferences))
	}
	if n > 1 && len(p.SegmentLengths) != n-1 {
		return nil, fmt.Errorf("profile with %d sections needs %d segment lengths, got %d", n, n-1, len(p.SegmentLengths))
	}
	optional := func(name string, list []float64, fallback float64) ([]float64, error) {
		if list == nil {
			out := make([]float64, n)
			for i := range out {
				out[i] = fallback
			}
			return out, nil
		}
		if len(list) != n {
			return nil, fmt.Errorf("profile has %d sections but %d %s values", n, len(list), name)
		}
		return list, nil
	}

	radii, err := optional("min radius", p.MinRadius, defaultMinRadius)
	if err != nil {
		return nil, err
	}
	aspect, err := optional("aspect", p.Aspect, defaultAspect)
	if err != nil {
		return nil, err
	}
	plies, err := optional("ply", p.Plies, defaultPlies)
	if err != nil {
		return nil, err
	}
	patches, err := optional("patch", p.Patches, defaultPatchCount)
	if err != nil {
		return nil, err
	}

	var curvature []float64
	if p.PathRadii != nil {
		pathRadii, err := curvatureRadii(p.PathRadii, n)
		if err != nil {
			return nil, err
		}
		curvature = make([]float64, n)
		for i, r := range pathRadii {
			curvature[i] = RadiusDiameterRatio(r, p.Circumferences[i])
		}
	} else {
		curvature, _ = optional("curvature", nil, defaultCurvature)
	}

	out := make([]Inputs, n)
	for i := 0; i < n; i++ {
		out[i] = Inputs{
			BraidAngle:          p.BraidingAngle[i],
			YarnWidth:           YarnWidth(p.Circumferences[i], p.BraidingAngle[i]),
			RadiusDiameterRatio: curvature[i],
			EdgeRadius:          radii[i],
			AspectRatio:         aspect[i],
			PlyNum:              plies[i],
			PatchNum:            patches[i],
		}
	}
	return out, nil
}

// ProfileEvaluation is the length-weighted effort of a whole component
// with the per-section evaluations behind it.
type ProfileEvaluation struct {
	Value    float64
	Sections []Evaluation
}

// EvaluateProfile scores every section of a component and folds the
// section scores into one trapezoidal length-weighted mean.
func (m *Model) EvaluateProfile(p Profile) (ProfileEvaluation, error) {
	inputs, err := p.sections()
	if err != nil {
		return ProfileEvaluation{}, err
	}
	prof := pipeline.Profile{Sections: make([]map[string]float64, len(inputs))}
	for i, in := range inputs {
		prof.Sections[i] = in.values()
	}
	if len(inputs) > 1 {
		prof.SegmentLengths = p.SegmentLengths
	}
	res, err := pipeline.EvaluateProfile(m.ex, prof)
	if err != nil {
		return ProfileEvaluation{}, err
	}

	out := ProfileEvaluation{Value: res.Value, Sections: make([]Evaluation, len(inputs))}
	for i, sec := range res.Sections {
		reason, err := m.ex.Pipeline.Explain(sec)
		if err != nil {
			return ProfileEvaluation{}, fmt.Errorf("section %d: %w", i, err)
		}
		hint, _ := lookupHint(reason.Rule, reason.Variable)
		out.Sections[i] = Evaluation{
			Inputs:       inputs[i],
			Value:        sec.Value,
			Extrapolated: sec.Extrapolated,
			Reason:       reason,
			Hint:         hint,
			result:       sec,
		}
	}
	return out, nil
}

// Seeds carries, per profile field, one gradient row per list entry:
// the derivative of that entry with respect to each design variable.
type Seeds map[string][][]float64

// seedOrder fixes accumulation order across the seeds map.
var seedOrder = []string{
	"BraidingAngle", "Circumferences", "SegmentLengths",
	"MinRadius", "PathRadii", "Aspect", "Plies", "Patches",
}

// ProfileSensitivity differentiates the profile effort with respect to
// the design variables by perturbing each seeded profile entry and
// chaining the forward difference through its seed row.
func (m *Model) ProfileSensitivity(p Profile, seeds Seeds) (ProfileEvaluation, []float64, error) {
	if len(seeds) == 0 {
		return ProfileEvaluation{}, nil, fmt.Errorf("%w: profile carries no seed rows", pipeline.ErrMissingSeeds)
	}
	base, err := m.EvaluateProfile(p)
	if err != nil {
		return ProfileEvaluation{}, nil, err
	}

	var sens []float64
	for _, name := range seedOrder {
		rows, ok := seeds[name]
		if !ok {
			continue
		}
		values, err := p.field(name)
		if err != nil {
			return ProfileEvaluation{}, nil, err
		}
		if len(rows) != len(*values) {
			return ProfileEvaluation{}, nil, fmt.Errorf("%s: %d seed rows for %d entries", name, len(rows), len(*values))
		}
		for i, row := range rows {
			if sens == nil {
				sens = make([]float64, len(row))
			}
			if len(row) != len(sens) {
				return ProfileEvaluation{}, nil, fmt.Errorf("%s entry %d: seed row length %d, want %d", name, i, len(row), len(sens))
			}
			shifted := p.clone()
			target, err := shifted.field(name)
			if err != nil {
				return ProfileEvaluation{}, nil, err
			}
			(*target)[i] += m.Tolerance
			res, err := m.EvaluateProfile(shifted)
			if err != nil {
				return ProfileEvaluation{}, nil, fmt.Errorf("perturbing %s entry %d: %w", name, i, err)
			}
			d := (res.Value - base.Value) / m.Tolerance
			for j, seed := range row {
				sens[j] += d * seed
			}
		}
	}
	if sens == nil {
		return ProfileEvaluation{}, nil, fmt.Errorf("%w: no seed rows matched a profile field", pipeline.ErrMissingSeeds)
	}
	return base, sens, nil
}
