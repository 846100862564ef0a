package mf

import (
	"fmt"
	"math"
)

// Kind identifies a membership-function shape.
type Kind string

const (
	KindGaussian  Kind = "gauss"
	KindGaussian2 Kind = "gauss2"
	KindTriangle  Kind = "tri"
	KindPi        Kind = "pi"
	KindConstant  Kind = "const"
)

// Func is a membership function: a stateless mapping from a crisp value
// to a degree of truth. The parameter slice layout depends on the kind:
//
//	gauss:  [sigma, center]
//	gauss2: [sigma1, c1, sigma2, c2] (plateau of 1.0 on [c1, c2])
//	tri:    [a, b, c] with a <= b <= c
//	pi:     [a, b, c, d] (S-rise on [a,b] times Z-fall on [c,d])
//	const:  [value]
type Func struct {
	Kind   Kind
	Params []float64
}

func Gaussian(sigma, center float64) Func {
	return Func{Kind: KindGaussian, Params: []float64{sigma, center}}
}

func Gaussian2(sigma1, c1, sigma2, c2 float64) Func {
	return Func{Kind: KindGaussian2, Params: []float64{sigma1, c1, sigma2, c2}}
}

func Triangle(a, b, c float64) Func {
	return Func{Kind: KindTriangle, Params: []float64{a, b, c}}
}

func Pi(a, b, c, d float64) Func {
	return Func{Kind: KindPi, Params: []float64{a, b, c, d}}
}

func Constant(value float64) Func {
	return Func{Kind: KindConstant, Params: []float64{value}}
}

func paramCount(kind Kind) (int, error) {
	switch kind {
	case KindGaussian:
		return 2, nil
	case KindGaussian2:
		return 4, nil
	case KindTriangle:
		return 3, nil
	case KindPi:
		return 4, nil
	case KindConstant:
		return 1, nil
	default:
		return 0, fmt.Errorf("unsupported membership kind: %s", kind)
	}
}

// Validate checks the kind and parameter arity.
func (f Func) Validate() error {
	n, err := paramCount(f.Kind)
	if err != nil {
		return err
	}
	if len(f.Params) != n {
		return fmt.Errorf("membership kind %s expects %d params, got %d", f.Kind, n, len(f.Params))
	}
	return nil
}

// Evaluate maps x to a truth degree. All kinds are total functions over
// the reals; the shaped kinds stay within [0, 1] for any input.
func (f Func) Evaluate(x float64) float64 {
	switch f.Kind {
	case KindGaussian:
		return gaussian(x, f.Params[0], f.Params[1])
	case KindGaussian2:
		return gaussian2(x, f.Params[0], f.Params[1], f.Params[2], f.Params[3])
	case KindTriangle:
		return triangle(x, f.Params[0], f.Params[1], f.Params[2])
	case KindPi:
		return SCurve(x, f.Params[0], f.Params[1]) * ZCurve(x, f.Params[2], f.Params[3])
	case KindConstant:
		return f.Params[0]
	default:
		return 0
	}
}

func gaussian(x, sigma, c float64) float64 {
	d := x - c
	return math.Exp(-(d * d) / (2 * sigma * sigma))
}

// gaussian2 has a Gaussian tail below c1, a plateau of 1.0 on [c1, c2]
// and a Gaussian tail above c2.
func gaussian2(x, sigma1, c1, sigma2, c2 float64) float64 {
	y1 := 1.0
	if x <= c1 {
		y1 = gaussian(x, sigma1, c1)
	}
	y2 := 1.0
	if x >= c2 {
		y2 = gaussian(x, sigma2, c2)
	}
	return y1 * y2
}

func triangle(x, a, b, c float64) float64 {
	if x <= a || c <= x {
		return 0
	}
	if x == b {
		return 1
	}
	if a != b && x < b {
		return (x - a) / (b - a)
	}
	if b != c && b < x {
		return (c - x) / (c - b)
	}
	// Degenerate slope (a == b or b == c) acts as a vertical edge.
	return 0
}

// SCurve is the rising quadratic-quadratic spline: zero below a, one
// above b, inflection at the midpoint. a >= b collapses it to a step at
// the midpoint.
func SCurve(x, a, b float64) float64 {
	if a >= b {
		if x >= (a+b)/2 {
			return 1
		}
		return 0
	}
	mid := (a + b) / 2
	switch {
	case x <= a:
		return 0
	case x <= mid:
		t := (x - a) / (b - a)
		return 2 * t * t
	case x <= b:
		t := (x - b) / (b - a)
		return 1 - 2*t*t
	default:
		return 1
	}
}

// ZCurve is the falling mirror of SCurve: one below c, zero above d.
func ZCurve(x, c, d float64) float64 {
	if c >= d {
		if x <= (c+d)/2 {
			return 1
		}
		return 0
	}
	mid := (c + d) / 2
	switch {
	case x <= c:
		return 1
	case x <= mid:
		t := (x - c) / (c - d)
		return 1 - 2*t*t
	case x <= d:
		t := (d - x) / (c - d)
		return 2 * t * t
	default:
		return 0
	}
}
