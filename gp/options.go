package gp

import (
	"github.com/YuminosukeSato/gaussproc/core/parallel"
	"github.com/YuminosukeSato/gaussproc/pkg/log"
)

// DefaultNoiseVariance is the jitter added to the Gram diagonal when no
// WithNoiseVariance option is given.
const DefaultNoiseVariance = 1e-10

// Option is a function that configures GaussianProcessRegressor
type Option func(*GaussianProcessRegressor)

// WithNoiseVariance sets the variance added to the diagonal of the training
// Gram matrix. It models observation noise and keeps the Cholesky
// factorisation stable; a larger value trades interpolation for robustness.
func WithNoiseVariance(v float64) Option {
	return func(g *GaussianProcessRegressor) {
		g.noiseVariance = v
	}
}

// WithNormalizeY standardises targets to zero mean and unit variance before
// fitting. Predictions are returned on the original scale.
func WithNormalizeY(normalize bool) Option {
	return func(g *GaussianProcessRegressor) {
		g.normalizeY = normalize
	}
}

// WithLogger sets the logger. The default is the package-level logger named
// "gp.regressor".
func WithLogger(l log.Logger) Option {
	return func(g *GaussianProcessRegressor) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithParallelThreshold sets the row count above which Gram matrices and
// predictive variances are computed on several goroutines. Negative
// disables parallelism.
func WithParallelThreshold(n int) Option {
	return func(g *GaussianProcessRegressor) {
		g.parallelThreshold = n
	}
}

func defaultOptions(g *GaussianProcessRegressor) {
	g.noiseVariance = DefaultNoiseVariance
	g.parallelThreshold = parallel.DefaultThreshold
	g.logger = log.GetLoggerWithName("gp.regressor")
}
