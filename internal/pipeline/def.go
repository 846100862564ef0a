package pipeline

import (
	"fmt"

	"fuzzyme/internal/fis"
	"fuzzyme/internal/model"
)

// FromDef builds an extrapolator-wrapped pipeline from its serialized
// definition.
func FromDef(def model.PipelineDef) (*Extrapolator, error) {
	main, err := fis.FromDef(def.Main)
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", def.Name, err)
	}
	subs := make([]*fis.System, 0, len(def.Subs))
	for _, sd := range def.Subs {
		sub, err := fis.FromDef(sd)
		if err != nil {
			return nil, fmt.Errorf("pipeline %s: %w", def.Name, err)
		}
		subs = append(subs, sub)
	}
	bounds := make([]Bound, 0, len(def.Bounds))
	for _, b := range def.Bounds {
		bounds = append(bounds, Bound{
			Variable:      b.Variable,
			Lower:         b.Lower,
			Upper:         b.Upper,
			ProbeBelow:    b.ProbeBelow,
			ProbeAbove:    b.ProbeAbove,
			ResponseBelow: b.ResponseBelow,
			ResponseAbove: b.ResponseAbove,
		})
	}
	return NewExtrapolator(New(def.Name, main, subs...), bounds), nil
}

// Def returns the serialized definition of the wrapped pipeline.
// Version stamps and the record ID are the caller's concern.
func (e *Extrapolator) Def() model.PipelineDef {
	def := model.PipelineDef{
		Name: e.Pipeline.Name,
		Main: e.Pipeline.Main.Def(),
	}
	for _, sub := range e.Pipeline.Subs {
		def.Subs = append(def.Subs, sub.Def())
	}
	for _, b := range e.Bounds {
		def.Bounds = append(def.Bounds, model.BoundDef{
			Variable:      b.Variable,
			Lower:         b.Lower,
			Upper:         b.Upper,
			ProbeBelow:    b.ProbeBelow,
			ProbeAbove:    b.ProbeAbove,
			ResponseBelow: b.ResponseBelow,
			ResponseAbove: b.ResponseAbove,
		})
	}
	return def
}
