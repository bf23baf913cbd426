// Package kernel provides the covariance functions a Gaussian process is
// parameterised by, and the Gram-matrix builder that evaluates them over
// sets of points.
//
// The family is closed: RBF, Periodic and RationalQuadratic. Each variant is
// an immutable value; Kind and Params describe it without reflection, and New
// rebuilds a kernel from that description (used when a fitted model is
// persisted).
package kernel

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/YuminosukeSato/gaussproc/pkg/errors"
)

// Kernel is a positive-definite covariance function k(x1, x2).
//
// Compute panics if x1 and x2 have different lengths; Gram checks feature
// counts before calling it.
type Kernel interface {
	Compute(x1, x2 []float64) float64
	Kind() Kind
	Params() Params
	// PriorVariance is k(x, x), the same at every point for these
	// stationary kernels.
	PriorVariance() float64
	String() string

	sealed()
}

// Kind identifies a kernel variant.
type Kind int

const (
	KindRBF Kind = iota + 1
	KindPeriodic
	KindRationalQuadratic
)

var kindNames = map[Kind]string{
	KindRBF:               "rbf",
	KindPeriodic:          "periodic",
	KindRationalQuadratic: "rational_quadratic",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps "rbf", "periodic" or "rational_quadratic" to a Kind.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, v := range kindNames {
		if v == name {
			return k, nil
		}
	}
	return 0, errors.NewValidationError("kernel", "unknown kernel kind", s)
}

// Parameter names used in Params.
const (
	ParamLengthScale = "length_scale"
	ParamVariance    = "variance"
	ParamPeriodicity = "periodicity"
	ParamAlpha       = "alpha"
)

// Params holds a kernel's hyperparameters by name.
type Params map[string]float64

// String renders params in a stable order.
func (p Params) String() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, p[k])
	}
	return strings.Join(parts, ", ")
}

func (p Params) require(kind Kind, names ...string) ([]float64, error) {
	out := make([]float64, len(names))
	for i, name := range names {
		v, ok := p[name]
		if !ok {
			return nil, errors.NewValidationError(name, fmt.Sprintf("missing parameter for %s kernel", kind), nil)
		}
		out[i] = v
	}
	return out, nil
}

// New builds a kernel from its Kind and Params. Missing or invalid parameters
// yield a ValidationError.
func New(kind Kind, p Params) (Kernel, error) {
	switch kind {
	case KindRBF:
		v, err := p.require(kind, ParamLengthScale, ParamVariance)
		if err != nil {
			return nil, err
		}
		return NewRBF(v[0], v[1])
	case KindPeriodic:
		v, err := p.require(kind, ParamLengthScale, ParamPeriodicity, ParamVariance)
		if err != nil {
			return nil, err
		}
		return NewPeriodic(v[0], v[1], v[2])
	case KindRationalQuadratic:
		v, err := p.require(kind, ParamLengthScale, ParamAlpha, ParamVariance)
		if err != nil {
			return nil, err
		}
		return NewRationalQuadratic(v[0], v[1], v[2])
	default:
		return nil, errors.NewValidationError("kind", "unknown kernel kind", int(kind))
	}
}

func checkPositive(name string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return errors.NewValidationError(name, "must be positive and finite", v)
	}
	return nil
}

// distance returns the Euclidean distance between x1 and x2.
func distance(x1, x2 []float64) float64 {
	return math.Sqrt(squaredDistance(x1, x2))
}

func squaredDistance(x1, x2 []float64) float64 {
	if len(x1) != len(x2) {
		panic(fmt.Sprintf("kernel: vector length mismatch %d != %d", len(x1), len(x2)))
	}
	var s float64
	for i, a := range x1 {
		d := a - x2[i]
		s += d * d
	}
	return s
}
