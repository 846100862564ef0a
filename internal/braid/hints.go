package braid

// hint pairs an elaboration suggestion with the rule/variable
// combinations it answers. Machine parameter placeholders: {1} take-up,
// {2} horn gear, {3} carriers.
type hint struct {
	text      string
	rules     []string
	variables []string
}

// hintTable is scanned in order; the first entry listing both the
// dominant rule and its dominant variable wins.
var hintTable = []hint{
	{
		text: "Increase take-up speed {1}; Reduce horn gear speed {2}",
		rules: []string{
			"BraidOpenHornGearSpeedInfinity", "CurvatureTooGreatHornGear",
			"OverCriticalCombAngleCurvature4", "CriticalCombAngleCurvature5", "CombAngleCurvature3",
			"AlmostNoCurvature6", "OverCriticalCombAngleCurvature5", "OverCriticalCombAngleCurvature6",
			"CriticalCombAngleCurvature6", "ModerateCombAngleCurvature2",
		},
		variables: []string{"BraidAngle"},
	},
	{
		text: "Increase take-up speed {1}; Roving with more filaments {1}; Reduce horn gear speed {2}; Increase carrier number {3}",
		rules: []string{
			"BraidOpenHornGearSpeedInfinity", "CurvatureTooGreatBraidOpen",
			"OverCriticalCombWidthCurvature4", "OverCriticalCombWidthCurvature5",
			"CriticalCombWidthCurvature3", "LowCurvature4", "LowCurvature5",
		},
		variables: []string{"YarnWidth"},
	},
	{
		text: "Reduce take-up speed {1}; Increase horn gear speed {2}",
		rules: []string{
			"OverCompTakeUpSpeedInfinity", "CurvatureTooGreatTakeUp",
			"OverCriticalCombAngleCurvature1", "OverCriticalCombAngleCurvature2", "CriticalCombAngleCurvature1",
			"ModerateCombAngleCurvature1", "AlmostNoCurvature1", "OverCriticalCombAngleCurvature3",
			"CriticalCombAngleCurvature2", "CombAngleCurvature1", "AlmostNoCurvature2",
		},
		variables: []string{"BraidAngle"},
	},
	{
		text: "Reduce take-up speed {1}; Roving with less filaments {1}; Increase horn gear speed {2}; Reduce carrier number {3}",
		rules: []string{
			"OverCompTakeUpSpeedInfinity", "CurvatureTooGreatOverCompact",
			"OverCriticalCombWidthCurvature1", "OverCriticalCombWidthCurvature2",
			"CriticalCombWidthCurvature1", "LowCurvature1", "LowCurvature2", "NoCurvatureW1",
		},
		variables: []string{"YarnWidth"},
	},
	{
		text: "Reduce braid layers (if possible)",
		rules: []string{
			"VLowestPTimes", "NoCurvature2", "NoCurvature3", "NoCurvature4",
			"NoCurvatureW2", "NoCurvatureW3", "NoCurvatureW4", "AllGood",
		},
		variables: []string{"BraidAngle", "YarnWidth", "EdgeRadius", "AspectRatio", "PlyNum", "PatchNum"},
	},
	{
		text: "Increase take-up speed {1}",
		rules: []string{
			"LowPTimes", "ModeratePTimes", "HighPTimes", "VeryHighPTimes",
			"NoCurvature1", "AlmostNoCurvature3", "NoCurvature2", "AlmostNoCurvature5", "NoCurvature3",
			"AlmostNoCurvature7", "NoCurvature4", "AlmostNoCurvature8", "NoCurvature5",
			"NoCurvatureW1", "NoCurvatureW2", "NoCurvatureW3", "NoCurvatureW4",
		},
		variables: []string{"BraidAngle", "YarnWidth"},
	},
	{
		text: "Increase radius of lengthwise curvature {1}; Reduce diameter of mandrel {1}",
		rules: []string{
			"CurvatureTooGreatTakeUp", "CurvatureTooGreatHornGear",
			"OverCriticalCombAngleCurvature1", "OverCriticalCombAngleCurvature2", "OverCriticalCombAngleCurvature3",
			"OverCriticalCombAngleCurvature4", "OverCriticalCombAngleCurvature5", "OverCriticalCombAngleCurvature6",
			"CriticalCombAngleCurvature1", "CriticalCombAngleCurvature2", "CriticalCombAngleCurvature3",
			"CriticalCombAngleCurvature4", "CriticalCombAngleCurvature5", "CriticalCombAngleCurvature6",
			"CombAngleCurvature1", "CombAngleCurvature2", "CombAngleCurvature3",
			"ModerateCombAngleCurvature1", "ModerateCombAngleCurvature2",
			"AlmostNoCurvature1", "AlmostNoCurvature2", "AlmostNoCurvature4", "AlmostNoCurvature6",
			"CurvatureTooGreatOverCompact", "CurvatureTooGreatBraidOpen",
			"OverCriticalCombWidthCurvature1", "OverCriticalCombWidthCurvature2", "OverCriticalCombWidthCurvature3",
			"OverCriticalCombWidthCurvature4", "OverCriticalCombWidthCurvature5",
			"CriticalCombWidthCurvature1", "CriticalCombWidthCurvature2", "CriticalCombWidthCurvature3",
			"ModerateCurvature1", "LowCurvature1", "LowCurvature2", "LowCurvature3",
			"LowCurvature4", "LowCurvature5", "NoCurvatureW1",
		},
		variables: []string{"RadiusDiameterRatio"},
	},
	{
		text: "May reduce number of layers (if possible)",
		rules: []string{
			"NoCurvature1", "NoCurvature2", "NoCurvature3", "NoCurvature4", "NoCurvature5",
			"AlmostNoCurvature3", "AlmostNoCurvature5", "AlmostNoCurvature7", "AlmostNoCurvature8",
			"NoCurvatureW2", "NoCurvatureW3", "NoCurvatureW4",
		},
		variables: []string{"RadiusDiameterRatio"},
	},
	{
		text: "Increase radius of lengthwise curvature {1}; Reduce diameter of mandrel {1}",
		rules: []string{
			"CriticalCombAngleCurvature3", "CriticalCombAngleCurvature4",
			"CombAngleCurvature2", "AlmostNoCurvature4",
		},
		variables: []string{"BraidAngle"},
	},
	{
		text: "Increase radius of lengthwise curvature {1}; Reduce diameter of mandrel {1}",
		rules: []string{
			"OverCriticalCombWidthCurvature3", "CriticalCombWidthCurvature2",
			"ModerateCurvature1", "LowCurvature3",
		},
		variables: []string{"YarnWidth"},
	},
	{text: "Increase edge radii {1}", rules: []string{"AllBad"}, variables: []string{"EdgeRadius"}},
	{text: "Reduce aspect ratio {1}", rules: []string{"AllBad"}, variables: []string{"AspectRatio"}},
	{text: "Reduce number of braid layers {1}", rules: []string{"AllBad"}, variables: []string{"PlyNum"}},
	{text: "Reduce number of UD patches {1}", rules: []string{"AllBad"}, variables: []string{"PatchNum"}},
}

func lookupHint(rule, variable string) (string, bool) {
	for _, h := range hintTable {
		if !contains(h.rules, rule) {
			continue
		}
		if contains(h.variables, variable) {
			return h.text, true
		}
	}
	return "", false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
