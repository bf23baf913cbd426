package kernel

import (
	"fmt"
	"math"
)

// RBF is the squared-exponential kernel v·exp(−½·(d/ℓ)²).
type RBF struct {
	LengthScale float64
	Variance    float64
}

// NewRBF validates lengthScale and variance and returns an RBF kernel.
func NewRBF(lengthScale, variance float64) (*RBF, error) {
	if err := checkPositive(ParamLengthScale, lengthScale); err != nil {
		return nil, err
	}
	if err := checkPositive(ParamVariance, variance); err != nil {
		return nil, err
	}
	return &RBF{LengthScale: lengthScale, Variance: variance}, nil
}

func (k *RBF) Compute(x1, x2 []float64) float64 {
	r := distance(x1, x2) / k.LengthScale
	return k.Variance * math.Exp(-0.5*r*r)
}

func (k *RBF) Kind() Kind             { return KindRBF }
func (k *RBF) PriorVariance() float64 { return k.Variance }
func (k *RBF) sealed()                {}

func (k *RBF) Params() Params {
	return Params{ParamLengthScale: k.LengthScale, ParamVariance: k.Variance}
}

func (k *RBF) String() string {
	return fmt.Sprintf("RBF(length_scale=%g, variance=%g)", k.LengthScale, k.Variance)
}

// Periodic is the exp-sine-squared kernel v·exp(−2·(sin(π·d/p)/ℓ)²).
type Periodic struct {
	LengthScale float64
	Periodicity float64
	Variance    float64
}

// NewPeriodic validates its parameters and returns a Periodic kernel.
func NewPeriodic(lengthScale, periodicity, variance float64) (*Periodic, error) {
	if err := checkPositive(ParamLengthScale, lengthScale); err != nil {
		return nil, err
	}
	if err := checkPositive(ParamPeriodicity, periodicity); err != nil {
		return nil, err
	}
	if err := checkPositive(ParamVariance, variance); err != nil {
		return nil, err
	}
	return &Periodic{LengthScale: lengthScale, Periodicity: periodicity, Variance: variance}, nil
}

func (k *Periodic) Compute(x1, x2 []float64) float64 {
	s := math.Sin(math.Pi*distance(x1, x2)/k.Periodicity) / k.LengthScale
	return k.Variance * math.Exp(-2*s*s)
}

func (k *Periodic) Kind() Kind             { return KindPeriodic }
func (k *Periodic) PriorVariance() float64 { return k.Variance }
func (k *Periodic) sealed()                {}

func (k *Periodic) Params() Params {
	return Params{
		ParamLengthScale: k.LengthScale,
		ParamPeriodicity: k.Periodicity,
		ParamVariance:    k.Variance,
	}
}

func (k *Periodic) String() string {
	return fmt.Sprintf("Periodic(length_scale=%g, periodicity=%g, variance=%g)",
		k.LengthScale, k.Periodicity, k.Variance)
}

// RationalQuadratic is v·(1 + d²/(2·α·ℓ²))^(−α), a scale mixture of RBF
// kernels. Alpha is the shape parameter; as it grows the kernel approaches
// RBF.
type RationalQuadratic struct {
	LengthScale float64
	Alpha       float64
	Variance    float64
}

// NewRationalQuadratic validates its parameters and returns the kernel.
func NewRationalQuadratic(lengthScale, alpha, variance float64) (*RationalQuadratic, error) {
	if err := checkPositive(ParamLengthScale, lengthScale); err != nil {
		return nil, err
	}
	if err := checkPositive(ParamAlpha, alpha); err != nil {
		return nil, err
	}
	if err := checkPositive(ParamVariance, variance); err != nil {
		return nil, err
	}
	return &RationalQuadratic{LengthScale: lengthScale, Alpha: alpha, Variance: variance}, nil
}

func (k *RationalQuadratic) Compute(x1, x2 []float64) float64 {
	d2 := squaredDistance(x1, x2)
	return k.Variance * math.Pow(1+d2/(2*k.Alpha*k.LengthScale*k.LengthScale), -k.Alpha)
}

func (k *RationalQuadratic) Kind() Kind             { return KindRationalQuadratic }
func (k *RationalQuadratic) PriorVariance() float64 { return k.Variance }
func (k *RationalQuadratic) sealed()                {}

func (k *RationalQuadratic) Params() Params {
	return Params{
		ParamLengthScale: k.LengthScale,
		ParamAlpha:       k.Alpha,
		ParamVariance:    k.Variance,
	}
}

func (k *RationalQuadratic) String() string {
	return fmt.Sprintf("RationalQuadratic(length_scale=%g, alpha=%g, variance=%g)",
		k.LengthScale, k.Alpha, k.Variance)
}
