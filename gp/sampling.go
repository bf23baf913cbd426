package gp

import (
	"math"

	"github.com/YuminosukeSato/gaussproc/core/model"
)

// stdNormal turns uniform variates into standard normal ones with the
// Box–Muller transform. Each pair of uniforms yields two normals; the second
// is kept for the next call.
type stdNormal struct {
	src      model.Source
	spare    float64
	hasSpare bool
}

func newStdNormal(src model.Source) *stdNormal {
	return &stdNormal{src: src}
}

func (n *stdNormal) next() float64 {
	if n.hasSpare {
		n.hasSpare = false
		return n.spare
	}
	// Float64 is in [0, 1); shift u1 into (0, 1] so the log is finite
	u1 := 1 - n.src.Float64()
	u2 := n.src.Float64()
	r := math.Sqrt(-2 * math.Log(u1))
	theta := 2 * math.Pi * u2
	n.spare = r * math.Sin(theta)
	n.hasSpare = true
	return r * math.Cos(theta)
}
