package braid

import (
	"errors"
	"math"
	"testing"

	"fuzzyme/internal/pipeline"
)

func newModel(t *testing.T) *Model {
	t.Helper()
	m, err := New()
	if err != nil {
		t.Fatalf("building model failed: %v", err)
	}
	return m
}

func TestYarnWidth(t *testing.T) {
	// cos(25 deg) * 2 * 260 / 192
	got := YarnWidth(260, 25)
	want := math.Cos(25*math.Pi/180) * 2 * 260 / 192
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("yarn width: got=%f want=%f", got, want)
	}
	if w := YarnWidth(260, 90); math.Abs(w) > 1e-12 {
		t.Fatalf("yarn width at 90 degrees must vanish, got=%f", w)
	}
}

func TestRadiusDiameterRatio(t *testing.T) {
	// R=100, U=100pi -> d=100 -> ratio 1
	got := RadiusDiameterRatio(100, 100*math.Pi)
	if math.Abs(got-1) > 1e-12 {
		t.Fatalf("ratio: got=%f want=1", got)
	}
}

func TestNormalizePatchCount(t *testing.T) {
	if got := NormalizePatchCount(MaxPatches); math.Abs(got-5) > 1e-12 {
		t.Fatalf("max patches must normalize to 5, got=%f", got)
	}
	if got := NormalizePatchCount(0); got != 0 {
		t.Fatalf("zero patches must stay zero, got=%f", got)
	}
}

func TestExtremalConfigurations(t *testing.T) {
	m := newModel(t)
	best, err := m.Evaluate(BestInputs())
	if err != nil {
		t.Fatalf("best evaluate failed: %v", err)
	}
	worst, err := m.Evaluate(WorstInputs())
	if err != nil {
		t.Fatalf("worst evaluate failed: %v", err)
	}
	if best.Extrapolated || worst.Extrapolated {
		t.Fatal("extremal configurations sit on the bounds, not outside them")
	}
	if best.Value >= worst.Value {
		t.Fatalf("best effort %f not below worst effort %f", best.Value, worst.Value)
	}
	if best.Value > 0.3 {
		t.Fatalf("best configuration scores too high: %f", best.Value)
	}
	if worst.Value < 0.7 {
		t.Fatalf("worst configuration scores too low: %f", worst.Value)
	}
}

func TestEvaluateIsRepeatable(t *testing.T) {
	m := newModel(t)
	in := Inputs{BraidAngle: 40, YarnWidth: 3, RadiusDiameterRatio: 4, EdgeRadius: 4, AspectRatio: 3, PlyNum: 10, PatchNum: 4}
	first, err := m.Evaluate(in)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	second, err := m.Evaluate(in)
	if err != nil {
		t.Fatalf("second evaluate failed: %v", err)
	}
	if first.Value != second.Value {
		t.Fatalf("evaluation not repeatable: %v vs %v", first.Value, second.Value)
	}
}

func TestOutOfRangeAngleExtrapolates(t *testing.T) {
	m := newModel(t)
	inside, err := m.Evaluate(Inputs{BraidAngle: 75, YarnWidth: 2.7, RadiusDiameterRatio: 10, EdgeRadius: 5, AspectRatio: 2, PlyNum: 5, PatchNum: 0})
	if err != nil {
		t.Fatalf("evaluate at bound failed: %v", err)
	}
	outside, err := m.Evaluate(Inputs{BraidAngle: 80, YarnWidth: 2.7, RadiusDiameterRatio: 10, EdgeRadius: 5, AspectRatio: 2, PlyNum: 5, PatchNum: 0})
	if err != nil {
		t.Fatalf("evaluate outside bound failed: %v", err)
	}
	if !outside.Extrapolated {
		t.Fatal("80 degree braiding angle must extrapolate")
	}
	// The probe response above the angle bound is 1.1, so the score
	// must climb beyond the in-range value toward it.
	if outside.Value <= inside.Value {
		t.Fatalf("extrapolated score %f not above boundary score %f", outside.Value, inside.Value)
	}
}

func TestWorstConfigurationExplainsItself(t *testing.T) {
	m := newModel(t)
	ev, err := m.Evaluate(WorstInputs())
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if ev.Reason.Rule == "" || ev.Reason.Variable == "" || ev.Reason.Label == "" {
		t.Fatalf("expected a populated reason, got %+v", ev.Reason)
	}
	if ev.Reason.Sentence == "" {
		t.Fatal("expected a reason sentence")
	}
}

func TestHintLookup(t *testing.T) {
	hint, ok := lookupHint("AllBad", "EdgeRadius")
	if !ok || hint != "Increase edge radii {1}" {
		t.Fatalf("unexpected hint: %q ok=%v", hint, ok)
	}
	hint, ok = lookupHint("OverCompTakeUpSpeedInfinity", "BraidAngle")
	if !ok || hint != "Reduce take-up speed {1}; Increase horn gear speed {2}" {
		t.Fatalf("unexpected hint: %q ok=%v", hint, ok)
	}
	// Same rule, different dominant variable, different advice.
	hint, ok = lookupHint("OverCompTakeUpSpeedInfinity", "YarnWidth")
	if !ok || hint == "Reduce take-up speed {1}; Increase horn gear speed {2}" {
		t.Fatalf("expected the yarn-width advice, got %q ok=%v", hint, ok)
	}
	if _, ok := lookupHint("NoSuchRule", "BraidAngle"); ok {
		t.Fatal("unknown rule must not produce a hint")
	}
}

func TestSensitivityOverSevenInputs(t *testing.T) {
	m := newModel(t)
	in := Inputs{BraidAngle: 40, YarnWidth: 3, RadiusDiameterRatio: 4, EdgeRadius: 4, AspectRatio: 3, PlyNum: 10, PatchNum: 4}
	_, grads, err := m.Sensitivity(in)
	if err != nil {
		t.Fatalf("sensitivity failed: %v", err)
	}
	if len(grads) != len(inputOrder) {
		t.Fatalf("expected %d gradients, got %d", len(inputOrder), len(grads))
	}
	for i, g := range grads {
		if g.Variable != inputOrder[i] {
			t.Fatalf("gradient %d out of order: %s", i, g.Variable)
		}
	}
}

func TestProfileDefaults(t *testing.T) {
	p := Profile{
		BraidingAngle:  []float64{25, 30},
		Circumferences: []float64{300, 320},
		SegmentLengths: []float64{100},
	}
	sections, err := p.sections()
	if err != nil {
		t.Fatalf("sections failed: %v", err)
	}
	for i, s := range sections {
		if s.RadiusDiameterRatio != defaultCurvature {
			t.Fatalf("section %d: curvature default not applied: %f", i, s.RadiusDiameterRatio)
		}
		if s.EdgeRadius != defaultMinRadius || s.AspectRatio != defaultAspect {
			t.Fatalf("section %d: geometry defaults not applied: %+v", i, s)
		}
		if s.PlyNum != defaultPlies || s.PatchNum != defaultPatchCount {
			t.Fatalf("section %d: layup defaults not applied: %+v", i, s)
		}
	}
	if w := sections[0].YarnWidth; math.Abs(w-YarnWidth(300, 25)) > 1e-12 {
		t.Fatalf("yarn width not derived from circumference: %f", w)
	}
}

func TestProfileCurvatureResampling(t *testing.T) {
	p := Profile{
		BraidingAngle:  []float64{25, 30, 35},
		Circumferences: []float64{300, 300, 300},
		SegmentLengths: []float64{100, 100},
		PathRadii:      []float64{200, 150},
	}
	sections, err := p.sections()
	if err != nil {
		t.Fatalf("sections failed: %v", err)
	}
	// first, min of neighbors, last
	wantRadii := []float64{200, 150, 150}
	for i, s := range sections {
		want := RadiusDiameterRatio(wantRadii[i], 300)
		if math.Abs(s.RadiusDiameterRatio-want) > 1e-12 {
			t.Fatalf("section %d: curvature %f, want %f", i, s.RadiusDiameterRatio, want)
		}
	}

	p.PathRadii = []float64{200, 150, 120, 90}
	if _, err := p.sections(); err == nil {
		t.Fatal("expected rejection of unalignable path radii")
	}
}

func TestProfileValidation(t *testing.T) {
	if _, err := (Profile{}).sections(); err == nil {
		t.Fatal("expected empty profile rejection")
	}
	p := Profile{
		BraidingAngle:  []float64{25, 30},
		Circumferences: []float64{300},
	}
	if _, err := p.sections(); err == nil {
		t.Fatal("expected circumference count mismatch rejection")
	}
	p = Profile{
		BraidingAngle:  []float64{25, 30},
		Circumferences: []float64{300, 320},
		SegmentLengths: []float64{100, 100},
	}
	if _, err := p.sections(); err == nil {
		t.Fatal("expected segment length mismatch rejection")
	}
}

func TestEvaluateProfileWeighting(t *testing.T) {
	m := newModel(t)
	uniform := Profile{
		BraidingAngle:  []float64{25, 25, 25},
		Circumferences: []float64{300, 300, 300},
		SegmentLengths: []float64{50, 200},
	}
	res, err := m.EvaluateProfile(uniform)
	if err != nil {
		t.Fatalf("profile evaluate failed: %v", err)
	}
	if len(res.Sections) != 3 {
		t.Fatalf("expected three section evaluations, got %d", len(res.Sections))
	}
	// All sections identical, so the weighted mean equals any section.
	if math.Abs(res.Value-res.Sections[0].Value) > 1e-12 {
		t.Fatalf("uniform profile value %f differs from section value %f", res.Value, res.Sections[0].Value)
	}
	for i, sec := range res.Sections {
		if sec.Reason.Rule == "" {
			t.Fatalf("section %d carries no reasoning", i)
		}
	}
}

func TestProfileSensitivityChainsSeeds(t *testing.T) {
	m := newModel(t)
	p := Profile{
		BraidingAngle:  []float64{30, 40},
		Circumferences: []float64{300, 320},
		SegmentLengths: []float64{100},
	}
	// One design variable driving both angles one-to-one.
	seeds := Seeds{"BraidingAngle": {{1}, {1}}}
	base, sens, err := m.ProfileSensitivity(p, seeds)
	if err != nil {
		t.Fatalf("profile sensitivity failed: %v", err)
	}
	if len(sens) != 1 {
		t.Fatalf("expected one design-variable gradient, got %d", len(sens))
	}

	// The chained gradient must match summing the per-entry forward
	// differences directly.
	var want float64
	for i := range p.BraidingAngle {
		shifted := p.clone()
		shifted.BraidingAngle[i] += m.Tolerance
		res, err := m.EvaluateProfile(shifted)
		if err != nil {
			t.Fatalf("perturbed evaluate failed: %v", err)
		}
		want += (res.Value - base.Value) / m.Tolerance
	}
	if math.Abs(sens[0]-want) > 1e-9 {
		t.Fatalf("chained gradient %f, want %f", sens[0], want)
	}
}

func TestProfileSensitivityScalesBySeed(t *testing.T) {
	m := newModel(t)
	p := Profile{
		BraidingAngle:  []float64{30, 40},
		Circumferences: []float64{300, 320},
		SegmentLengths: []float64{100},
	}
	_, unit, err := m.ProfileSensitivity(p, Seeds{"BraidingAngle": {{1}, {1}}})
	if err != nil {
		t.Fatalf("unit seeds failed: %v", err)
	}
	_, doubled, err := m.ProfileSensitivity(p, Seeds{"BraidingAngle": {{2}, {2}}})
	if err != nil {
		t.Fatalf("doubled seeds failed: %v", err)
	}
	if math.Abs(doubled[0]-2*unit[0]) > 1e-9 {
		t.Fatalf("seed scaling broken: unit=%f doubled=%f", unit[0], doubled[0])
	}
}

func TestProfileSensitivityRequiresSeeds(t *testing.T) {
	m := newModel(t)
	p := Profile{BraidingAngle: []float64{30}, Circumferences: []float64{300}}
	if _, _, err := m.ProfileSensitivity(p, nil); !errors.Is(err, pipeline.ErrMissingSeeds) {
		t.Fatalf("expected ErrMissingSeeds, got: %v", err)
	}
	_, _, err := m.ProfileSensitivity(p, Seeds{"BraidingAngle": {{1}, {1}}})
	if err == nil {
		t.Fatal("expected seed row count mismatch rejection")
	}
}
