package mf

import (
	"math"
	"testing"
)

func TestShapedKindsStayWithinUnitInterval(t *testing.T) {
	funcs := []Func{
		Gaussian(4, 45),
		Gaussian2(2, 10, 4, 15),
		Triangle(-1, 0, 1),
		Pi(1, 2.8, 2.9, 5.1),
		Constant(1),
	}
	for _, f := range funcs {
		for x := -50.0; x <= 150.0; x += 0.25 {
			y := f.Evaluate(x)
			if y < 0 || y > 1 {
				t.Fatalf("%s(%f)=%f outside [0,1]", f.Kind, x, y)
			}
		}
	}
}

func TestGaussian(t *testing.T) {
	f := Gaussian(4, 45)
	if got := f.Evaluate(45); got != 1 {
		t.Fatalf("expected 1 at center, got=%f", got)
	}
	want := math.Exp(-0.5)
	if got := f.Evaluate(49); math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected one-sigma value %f, got=%f", want, got)
	}
}

func TestGaussian2Plateau(t *testing.T) {
	f := Gaussian2(0.22, 2.25, 0.22, 3.25)
	for _, x := range []float64{2.25, 2.5, 3.0, 3.25} {
		if got := f.Evaluate(x); got != 1 {
			t.Fatalf("expected plateau value 1 at %f, got=%f", x, got)
		}
	}
	if got := f.Evaluate(2.0); got >= 1 {
		t.Fatalf("expected tail below plateau, got=%f", got)
	}
	if got := f.Evaluate(3.5); got >= 1 {
		t.Fatalf("expected tail above plateau, got=%f", got)
	}
}

func TestTrianglePeakIsExact(t *testing.T) {
	f := Triangle(0, 1, 2)
	if got := f.Evaluate(1); got != 1.0 {
		t.Fatalf("expected exact 1.0 at peak, got=%f", got)
	}
	if got := f.Evaluate(0.5); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("expected 0.5 on rising ramp, got=%f", got)
	}
	if got := f.Evaluate(1.5); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("expected 0.5 on falling ramp, got=%f", got)
	}
	if got := f.Evaluate(2); got != 0 {
		t.Fatalf("expected 0 at right foot, got=%f", got)
	}
}

func TestTriangleDegenerateSlopes(t *testing.T) {
	left := Triangle(0, 0, 1)
	if got := left.Evaluate(0); got != 0 {
		t.Fatalf("expected 0 at vertical left edge, got=%f", got)
	}
	if got := left.Evaluate(0.5); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("expected falling ramp after vertical edge, got=%f", got)
	}
	right := Triangle(0, 1, 1)
	if got := right.Evaluate(1); got != 0 {
		t.Fatalf("expected 0 at vertical right edge, got=%f", got)
	}
	if got := right.Evaluate(0.5); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("expected rising ramp before vertical edge, got=%f", got)
	}
}

func TestSCurveSpline(t *testing.T) {
	if got := SCurve(0, 0, 2); got != 0 {
		t.Fatalf("expected 0 at left foot, got=%f", got)
	}
	if got := SCurve(2, 0, 2); got != 1 {
		t.Fatalf("expected 1 at right shoulder, got=%f", got)
	}
	if got := SCurve(1, 0, 2); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("expected 0.5 at inflection, got=%f", got)
	}
	if got := SCurve(0.5, 0, 2); math.Abs(got-0.125) > 1e-12 {
		t.Fatalf("expected quadratic rise value 0.125, got=%f", got)
	}
}

func TestDegenerateCurvesCollapseToStep(t *testing.T) {
	if got := SCurve(1.9, 2, 2); got != 0 {
		t.Fatalf("expected step low side, got=%f", got)
	}
	if got := SCurve(2.1, 2, 2); got != 1 {
		t.Fatalf("expected step high side, got=%f", got)
	}
	if got := ZCurve(1.9, 2, 2); got != 1 {
		t.Fatalf("expected z-step high side, got=%f", got)
	}
	if got := ZCurve(2.1, 2, 2); got != 0 {
		t.Fatalf("expected z-step low side, got=%f", got)
	}
}

func TestPiCombinesRiseAndFall(t *testing.T) {
	f := Pi(0, 2, 4, 6)
	if got := f.Evaluate(3); got != 1 {
		t.Fatalf("expected 1 on plateau, got=%f", got)
	}
	if got := f.Evaluate(-1); got != 0 {
		t.Fatalf("expected 0 left of support, got=%f", got)
	}
	if got := f.Evaluate(7); got != 0 {
		t.Fatalf("expected 0 right of support, got=%f", got)
	}
}

func TestConstantIgnoresInput(t *testing.T) {
	f := Constant(0.5)
	for _, x := range []float64{-1e9, 0, 1e9} {
		if got := f.Evaluate(x); got != 0.5 {
			t.Fatalf("expected constant 0.5, got=%f", got)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := Gaussian(1, 0).Validate(); err != nil {
		t.Fatalf("gaussian validate failed: %v", err)
	}
	bad := Func{Kind: Kind("spline"), Params: []float64{1}}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected unsupported kind error")
	}
	short := Func{Kind: KindTriangle, Params: []float64{1, 2}}
	if err := short.Validate(); err == nil {
		t.Fatal("expected param arity error")
	}
}
