package braid

import (
	"fuzzyme/internal/fis"
	"fuzzyme/internal/mf"
	"fuzzyme/internal/pipeline"
)

// Linguistic output scale shared by every stage. Centers are spaced so
// the region above 0.8 reads as "do not manufacture".
func effortTerms() []fis.Term {
	return []fis.Term{
		{Label: "VeryLow", MF: mf.Gaussian(0.082, 0.0)},
		{Label: "Low", MF: mf.Gaussian(0.082, 0.1)},
		{Label: "Moderate", MF: mf.Gaussian(0.082, 0.2)},
		{Label: "High", MF: mf.Gaussian(0.082, 0.4)},
		{Label: "VeryHigh", MF: mf.Gaussian(0.082, 0.8)},
		{Label: "NotManufacturable", MF: mf.Gaussian(0.082, 1.0)},
	}
}

func angleTerms() []fis.Term {
	return []fis.Term{
		{Label: "VerySmall", MF: mf.Gaussian2(2, 10, 4, 15)},
		{Label: "Small", MF: mf.Gaussian(4, 25)},
		{Label: "Moderatesmall", MF: mf.Gaussian(4, 35)},
		{Label: "Moderate", MF: mf.Gaussian(4, 45)},
		{Label: "ModerateBig", MF: mf.Gaussian(4, 55)},
		{Label: "Big", MF: mf.Gaussian(4, 65)},
		{Label: "VeryBig", MF: mf.Gaussian2(4, 75, 2, 80)},
		{Label: "Any", MF: mf.Constant(1)},
	}
}

func curvatureTerms() []fis.Term {
	return []fis.Term{
		{Label: "VerySmall", MF: mf.Gaussian(0.5, 0)},
		{Label: "Small", MF: mf.Gaussian(0.5, 1.2)},
		{Label: "Moderate", MF: mf.Gaussian(0.6, 2.4)},
		{Label: "Big", MF: mf.Gaussian(0.7, 4.0)},
		{Label: "Bigger", MF: mf.Gaussian(0.8, 6.0)},
		{Label: "VeryBig", MF: mf.Gaussian(0.8, 7.8)},
		{Label: "NoCurvature", MF: mf.Gaussian(0.9, 10)},
	}
}

// stageSpec is the compact rule-table form the stage builders consume:
// combinator, antecedent variable/label pairs, then the consequent label.
type stageRule struct {
	name string
	op   fis.Combinator
	when []string
	then string
}

func buildStage(cfg fis.Config, inputs []fis.Variable, output fis.Variable, rules []stageRule) (*fis.System, error) {
	s, err := fis.New(cfg)
	if err != nil {
		return nil, err
	}
	for _, v := range inputs {
		if err := s.AddInput(v); err != nil {
			return nil, err
		}
	}
	if err := s.AddOutput(output); err != nil {
		return nil, err
	}
	for _, r := range rules {
		rule := fis.Rule{
			Name: r.name,
			Op:   r.op,
			Then: fis.Antecedent{Variable: output.Name, Label: r.then},
		}
		for i := 0; i+1 < len(r.when); i += 2 {
			rule.When = append(rule.When, fis.Antecedent{Variable: r.when[i], Label: r.when[i+1]})
		}
		if err := s.AddRule(rule); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// takeUpStage rates over-compaction, braid opening and production time
// from braiding angle and yarn width. Extreme angles paired with extreme
// yarn widths drive take-up or horn gear speed out of machine limits.
func takeUpStage() (*fis.System, error) {
	return buildStage(
		fis.Config{Name: "take-up"},
		[]fis.Variable{
			{Name: "BraidAngle", Min: 15, Max: 75, Terms: angleTerms()},
			{Name: "YarnWidth", Min: 1.5, Max: 4, Terms: []fis.Term{
				{Label: "TooSmall", MF: mf.Gaussian2(0.22, 1.0, 0.22, 1.5)},
				{Label: "Moderate", MF: mf.Gaussian2(0.22, 2.25, 0.22, 3.25)},
				{Label: "TooBig", MF: mf.Gaussian2(0.22, 4.0, 0.22, 4.5)},
				{Label: "Any", MF: mf.Constant(1)},
			}},
		},
		fis.Variable{Name: "Sub1", Min: 0, Max: 1, Terms: effortTerms()},
		[]stageRule{
			{"OverCompTakeUpSpeedInfinity", fis.Or, []string{"BraidAngle", "VerySmall", "YarnWidth", "TooSmall"}, "NotManufacturable"},
			{"BraidOpenHornGearSpeedInfinity", fis.Or, []string{"BraidAngle", "VeryBig", "YarnWidth", "TooBig"}, "NotManufacturable"},
			{"VLowestPTimes", fis.And, []string{"BraidAngle", "Small", "YarnWidth", "Moderate"}, "VeryLow"},
			{"LowPTimes", fis.And, []string{"BraidAngle", "Moderatesmall", "YarnWidth", "Moderate"}, "Low"},
			{"ModeratePTimes", fis.And, []string{"BraidAngle", "Moderate", "YarnWidth", "Moderate"}, "Moderate"},
			{"HighPTimes", fis.And, []string{"BraidAngle", "ModerateBig", "YarnWidth", "Moderate"}, "High"},
			{"VeryHighPTimes", fis.And, []string{"BraidAngle", "Big", "YarnWidth", "Moderate"}, "VeryHigh"},
		},
	)
}

// angleCurvatureStage combines braiding angle with the radius-to-diameter
// ratio of the braiding path.
func angleCurvatureStage() (*fis.System, error) {
	return buildStage(
		fis.Config{Name: "angle-curvature"},
		[]fis.Variable{
			{Name: "BraidAngle", Min: 15, Max: 75, Terms: angleTerms()},
			{Name: "RadiusDiameterRatio", Min: 0.5, Max: 10, Terms: curvatureTerms()},
		},
		fis.Variable{Name: "Sub2", Min: 0, Max: 1, Terms: effortTerms()},
		[]stageRule{
			{"CurvatureTooGreatTakeUp", fis.Or, []string{"BraidAngle", "VerySmall", "RadiusDiameterRatio", "VerySmall"}, "NotManufacturable"},
			{"CurvatureTooGreatHornGear", fis.Or, []string{"BraidAngle", "VeryBig", "RadiusDiameterRatio", "VerySmall"}, "NotManufacturable"},
			{"OverCriticalCombAngleCurvature1", fis.And, []string{"BraidAngle", "Small", "RadiusDiameterRatio", "Small"}, "NotManufacturable"},
			{"OverCriticalCombAngleCurvature2", fis.And, []string{"BraidAngle", "Small", "RadiusDiameterRatio", "Moderate"}, "NotManufacturable"},
			{"CriticalCombAngleCurvature1", fis.And, []string{"BraidAngle", "Small", "RadiusDiameterRatio", "Big"}, "VeryHigh"},
			{"ModerateCombAngleCurvature1", fis.And, []string{"BraidAngle", "Small", "RadiusDiameterRatio", "Bigger"}, "Moderate"},
			{"AlmostNoCurvature1", fis.And, []string{"BraidAngle", "Small", "RadiusDiameterRatio", "VeryBig"}, "VeryLow"},
			{"NoCurvature1", fis.And, []string{"BraidAngle", "Small", "RadiusDiameterRatio", "NoCurvature"}, "VeryLow"},
			{"OverCriticalCombAngleCurvature3", fis.And, []string{"BraidAngle", "Moderatesmall", "RadiusDiameterRatio", "Small"}, "NotManufacturable"},
			{"CriticalCombAngleCurvature2", fis.And, []string{"BraidAngle", "Moderatesmall", "RadiusDiameterRatio", "Moderate"}, "VeryHigh"},
			{"CombAngleCurvature1", fis.And, []string{"BraidAngle", "Moderatesmall", "RadiusDiameterRatio", "Big"}, "Moderate"},
			{"AlmostNoCurvature2", fis.And, []string{"BraidAngle", "Moderatesmall", "RadiusDiameterRatio", "Bigger"}, "Low"},
			{"AlmostNoCurvature3", fis.And, []string{"BraidAngle", "Moderatesmall", "RadiusDiameterRatio", "VeryBig"}, "VeryLow"},
			{"NoCurvature2", fis.And, []string{"BraidAngle", "Moderatesmall", "RadiusDiameterRatio", "NoCurvature"}, "VeryLow"},
			{"CriticalCombAngleCurvature3", fis.And, []string{"BraidAngle", "Moderate", "RadiusDiameterRatio", "Small"}, "VeryHigh"},
			{"CriticalCombAngleCurvature4", fis.And, []string{"BraidAngle", "Moderate", "RadiusDiameterRatio", "Moderate"}, "High"},
			{"CombAngleCurvature2", fis.And, []string{"BraidAngle", "Moderate", "RadiusDiameterRatio", "Big"}, "Moderate"},
			{"AlmostNoCurvature4", fis.And, []string{"BraidAngle", "Moderate", "RadiusDiameterRatio", "Bigger"}, "Low"},
			{"AlmostNoCurvature5", fis.And, []string{"BraidAngle", "Moderate", "RadiusDiameterRatio", "VeryBig"}, "VeryLow"},
			{"NoCurvature3", fis.And, []string{"BraidAngle", "Moderate", "RadiusDiameterRatio", "NoCurvature"}, "VeryLow"},
			{"OverCriticalCombAngleCurvature4", fis.And, []string{"BraidAngle", "ModerateBig", "RadiusDiameterRatio", "Small"}, "NotManufacturable"},
			{"CriticalCombAngleCurvature5", fis.And, []string{"BraidAngle", "ModerateBig", "RadiusDiameterRatio", "Moderate"}, "VeryHigh"},
			{"CombAngleCurvature3", fis.And, []string{"BraidAngle", "ModerateBig", "RadiusDiameterRatio", "Big"}, "Moderate"},
			{"AlmostNoCurvature6", fis.And, []string{"BraidAngle", "ModerateBig", "RadiusDiameterRatio", "Bigger"}, "Low"},
			{"AlmostNoCurvature7", fis.And, []string{"BraidAngle", "ModerateBig", "RadiusDiameterRatio", "VeryBig"}, "VeryLow"},
			{"NoCurvature4", fis.And, []string{"BraidAngle", "ModerateBig", "RadiusDiameterRatio", "NoCurvature"}, "VeryLow"},
			{"OverCriticalCombAngleCurvature5", fis.And, []string{"BraidAngle", "Big", "RadiusDiameterRatio", "Small"}, "NotManufacturable"},
			{"OverCriticalCombAngleCurvature6", fis.And, []string{"BraidAngle", "Big", "RadiusDiameterRatio", "Moderate"}, "NotManufacturable"},
			{"CriticalCombAngleCurvature6", fis.And, []string{"BraidAngle", "Big", "RadiusDiameterRatio", "Big"}, "VeryHigh"},
			{"ModerateCombAngleCurvature2", fis.And, []string{"BraidAngle", "Big", "RadiusDiameterRatio", "Bigger"}, "Moderate"},
			{"AlmostNoCurvature8", fis.And, []string{"BraidAngle", "Big", "RadiusDiameterRatio", "VeryBig"}, "VeryLow"},
			{"NoCurvature5", fis.And, []string{"BraidAngle", "Big", "RadiusDiameterRatio", "NoCurvature"}, "VeryLow"},
		},
	)
}

// widthCurvatureStage combines yarn width with the radius-to-diameter
// ratio. The yarn width partition is finer than the take-up stage's.
func widthCurvatureStage() (*fis.System, error) {
	return buildStage(
		fis.Config{Name: "width-curvature"},
		[]fis.Variable{
			{Name: "YarnWidth", Min: 1.5, Max: 4, Terms: []fis.Term{
				{Label: "TooSmall", MF: mf.Gaussian2(0.28, 1.0, 0.28, 1.5)},
				{Label: "Small", MF: mf.Gaussian(0.28, 2.14)},
				{Label: "Moderate", MF: mf.Gaussian2(0.28, 2.7, 0.28, 2.8)},
				{Label: "Big", MF: mf.Gaussian(0.28, 3.36)},
				{Label: "TooBig", MF: mf.Gaussian2(0.28, 4.0, 0.28, 4.5)},
			}},
			{Name: "RadiusDiameterRatio", Min: 0.5, Max: 10, Terms: curvatureTerms()},
		},
		fis.Variable{Name: "Sub3", Min: 0, Max: 1, Terms: effortTerms()},
		[]stageRule{
			{"CurvatureTooGreatOverCompact", fis.Or, []string{"YarnWidth", "TooSmall", "RadiusDiameterRatio", "VerySmall"}, "NotManufacturable"},
			{"CurvatureTooGreatBraidOpen", fis.Or, []string{"YarnWidth", "TooBig", "RadiusDiameterRatio", "VerySmall"}, "NotManufacturable"},
			{"OverCriticalCombWidthCurvature1", fis.And, []string{"YarnWidth", "Small", "RadiusDiameterRatio", "Small"}, "NotManufacturable"},
			{"OverCriticalCombWidthCurvature2", fis.And, []string{"YarnWidth", "Small", "RadiusDiameterRatio", "Moderate"}, "NotManufacturable"},
			{"CriticalCombWidthCurvature1", fis.And, []string{"YarnWidth", "Small", "RadiusDiameterRatio", "Big"}, "High"},
			{"LowCurvature1", fis.And, []string{"YarnWidth", "Small", "RadiusDiameterRatio", "Bigger"}, "Low"},
			{"LowCurvature2", fis.And, []string{"YarnWidth", "Small", "RadiusDiameterRatio", "VeryBig"}, "Low"},
			{"NoCurvatureW1", fis.And, []string{"YarnWidth", "Small", "RadiusDiameterRatio", "NoCurvature"}, "VeryLow"},
			{"OverCriticalCombWidthCurvature3", fis.And, []string{"YarnWidth", "Moderate", "RadiusDiameterRatio", "Small"}, "VeryHigh"},
			{"CriticalCombWidthCurvature2", fis.And, []string{"YarnWidth", "Moderate", "RadiusDiameterRatio", "Moderate"}, "High"},
			{"ModerateCurvature1", fis.And, []string{"YarnWidth", "Moderate", "RadiusDiameterRatio", "Big"}, "Moderate"},
			{"LowCurvature3", fis.And, []string{"YarnWidth", "Moderate", "RadiusDiameterRatio", "Bigger"}, "Low"},
			{"NoCurvatureW2", fis.And, []string{"YarnWidth", "Moderate", "RadiusDiameterRatio", "VeryBig"}, "VeryLow"},
			{"NoCurvatureW3", fis.And, []string{"YarnWidth", "Moderate", "RadiusDiameterRatio", "NoCurvature"}, "VeryLow"},
			{"OverCriticalCombWidthCurvature4", fis.And, []string{"YarnWidth", "Big", "RadiusDiameterRatio", "Small"}, "NotManufacturable"},
			{"OverCriticalCombWidthCurvature5", fis.And, []string{"YarnWidth", "Big", "RadiusDiameterRatio", "Moderate"}, "NotManufacturable"},
			{"CriticalCombWidthCurvature3", fis.And, []string{"YarnWidth", "Big", "RadiusDiameterRatio", "Big"}, "High"},
			{"LowCurvature4", fis.And, []string{"YarnWidth", "Big", "RadiusDiameterRatio", "Bigger"}, "Low"},
			{"LowCurvature5", fis.And, []string{"YarnWidth", "Big", "RadiusDiameterRatio", "VeryBig"}, "Low"},
			{"NoCurvatureW4", fis.And, []string{"YarnWidth", "Big", "RadiusDiameterRatio", "NoCurvature"}, "VeryLow"},
		},
	)
}

// effortStage fuses the three stage scores with the geometry and layup
// inputs the sub-stages do not see. The AND reducer is min here so a
// single good sub-score cannot be diluted away by multiplication across
// seven antecedents.
func effortStage() (*fis.System, error) {
	scoreTerms := func() []fis.Term {
		return []fis.Term{
			{Label: "Good", MF: mf.Triangle(-1, 0, 1)},
			{Label: "Bad", MF: mf.Triangle(0, 1, 2)},
			{Label: "Any", MF: mf.Constant(1)},
		}
	}
	return buildStage(
		fis.Config{Name: "effort", And: fis.ReduceMin},
		[]fis.Variable{
			{Name: "Sub1", Min: 0, Max: 1, Terms: scoreTerms()},
			{Name: "Sub2", Min: 0, Max: 1, Terms: scoreTerms()},
			{Name: "Sub3", Min: 0, Max: 1, Terms: scoreTerms()},
			{Name: "EdgeRadius", Min: 3, Max: 5, Terms: []fis.Term{
				{Label: "TooSmall", MF: mf.Pi(1.0, 2.8, 2.9, 5.1)},
				{Label: "Moderate", MF: mf.Pi(2.9, 5.1, 5.317, 6.8)},
				{Label: "Any", MF: mf.Constant(1)},
			}},
			{Name: "AspectRatio", Min: 2, Max: 4, Terms: []fis.Term{
				{Label: "Moderate", MF: mf.Pi(0.0, 1.8, 1.9, 4.1)},
				{Label: "TooBig", MF: mf.Pi(1.9, 4.1, 4.317, 5.8)},
				{Label: "Any", MF: mf.Constant(1)},
			}},
			{Name: "PlyNum", Min: 5, Max: 20, Terms: []fis.Term{
				{Label: "Few", MF: mf.Pi(-16.9, -0.1, 4.1, 20.9)},
				{Label: "TooMany", MF: mf.Pi(4.1, 20.9, 25.1, 41.9)},
				{Label: "Any", MF: mf.Constant(1)},
			}},
			{Name: "PatchNum", Min: 0, Max: 5, Terms: []fis.Term{
				{Label: "Few", MF: mf.Pi(-7.3, -1.7, -0.3, 5.3)},
				{Label: "TooMany", MF: mf.Pi(-0.3, 5.3, 6.7, 12.3)},
				{Label: "Any", MF: mf.Constant(1)},
			}},
		},
		fis.Variable{Name: "ME", Min: 0, Max: 1, Terms: effortTerms()},
		[]stageRule{
			{"AllGood", fis.And, []string{
				"Sub1", "Good", "Sub2", "Good", "Sub3", "Good",
				"EdgeRadius", "Moderate", "AspectRatio", "Moderate",
				"PlyNum", "Few", "PatchNum", "Few",
			}, "VeryLow"},
			{"AllBad", fis.Or, []string{
				"Sub1", "Bad", "Sub2", "Bad", "Sub3", "Bad",
				"EdgeRadius", "TooSmall", "AspectRatio", "TooBig",
				"PlyNum", "TooMany", "PatchNum", "TooMany",
			}, "NotManufacturable"},
		},
	)
}

// bounds is the validated interval per model input with the precomputed
// probe responses used for linear extension outside it. Patch counts are
// in normalized units, see NormalizePatchCount.
func bounds() []pipeline.Bound {
	return []pipeline.Bound{
		{Variable: "BraidAngle", Lower: 15, Upper: 75, ProbeBelow: 0, ProbeAbove: 90, ResponseBelow: 1.1, ResponseAbove: 1.1},
		{Variable: "YarnWidth", Lower: 1.5, Upper: 4, ProbeBelow: 0.1, ProbeAbove: 10, ResponseBelow: 1.1, ResponseAbove: 1.1},
		{Variable: "RadiusDiameterRatio", Lower: 0, Upper: 10, ProbeBelow: -1, ProbeAbove: 1e6, ResponseBelow: 1.1, ResponseAbove: 0.1},
		{Variable: "EdgeRadius", Lower: 3, Upper: 5, ProbeBelow: 0.1, ProbeAbove: 1e6, ResponseBelow: 1.1, ResponseAbove: 0.1},
		{Variable: "AspectRatio", Lower: 2, Upper: 4, ProbeBelow: -1000, ProbeAbove: 1e3, ResponseBelow: 0.1, ResponseAbove: 1.1},
		{Variable: "PlyNum", Lower: 5, Upper: 20, ProbeBelow: -40, ProbeAbove: 100, ResponseBelow: 0.1, ResponseAbove: 1.1},
		{Variable: "PatchNum", Lower: 0, Upper: 5, ProbeBelow: -1, ProbeAbove: 50, ResponseBelow: 0.1, ResponseAbove: 1.1},
	}
}

func newExtrapolator() (*pipeline.Extrapolator, error) {
	sub1, err := takeUpStage()
	if err != nil {
		return nil, err
	}
	sub2, err := angleCurvatureStage()
	if err != nil {
		return nil, err
	}
	sub3, err := widthCurvatureStage()
	if err != nil {
		return nil, err
	}
	main, err := effortStage()
	if err != nil {
		return nil, err
	}
	p := pipeline.New("braid-effort", main, sub1, sub2, sub3)
	return pipeline.NewExtrapolator(p, bounds()), nil
}
