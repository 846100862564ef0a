package pipeline

import (
	"fmt"
)

// Profile is a per-section sequence of input vectors along a part,
// with the segment lengths between consecutive sections. A profile
// with a single section needs no segment lengths.
type Profile struct {
	Sections       []map[string]float64
	SegmentLengths []float64
}

func (p Profile) validate() error {
	if len(p.Sections) == 0 {
		return fmt.Errorf("profile has no sections")
	}
	if len(p.Sections) == 1 {
		if len(p.SegmentLengths) != 0 {
			return fmt.Errorf("single-section profile must not carry segment lengths")
		}
		return nil
	}
	if len(p.SegmentLengths) != len(p.Sections)-1 {
		return fmt.Errorf("profile with %d sections needs %d segment lengths, got %d",
			len(p.Sections), len(p.Sections)-1, len(p.SegmentLengths))
	}
	return nil
}

// ProfileResult carries the length-weighted aggregate and the
// per-section evaluation records.
type ProfileResult struct {
	Value    float64
	Sections []Result
}

// EvaluateProfile evaluates every section independently and combines
// the crisp values by a length-weighted trapezoidal average:
// sum(l_i * (v_i + v_{i+1}) / 2) / sum(l_i). Adjacent sections share
// segments, so a single section's value enters up to two terms.
func EvaluateProfile(ev Evaluator, prof Profile) (ProfileResult, error) {
	if err := prof.validate(); err != nil {
		return ProfileResult{}, err
	}

	results := make([]Result, 0, len(prof.Sections))
	for i, section := range prof.Sections {
		res, err := ev.Evaluate(section)
		if err != nil {
			return ProfileResult{}, fmt.Errorf("section %d: %w", i, err)
		}
		results = append(results, res)
	}

	if len(results) == 1 {
		return ProfileResult{Value: results[0].Value, Sections: results}, nil
	}

	var weighted, total float64
	for i, l := range prof.SegmentLengths {
		weighted += l / 2 * (results[i].Value + results[i+1].Value)
		total += l
	}
	if total == 0 {
		return ProfileResult{}, fmt.Errorf("profile segment lengths sum to zero")
	}
	return ProfileResult{Value: weighted / total, Sections: results}, nil
}
