// Package gaussproc provides Gaussian process regression for Go services
// that need a prediction together with how sure it is.
//
// A fitted model answers three questions about unseen inputs: the most
// likely value (the posterior mean), the uncertainty around it (the
// posterior standard deviation) and what plausible functions consistent with
// the data look like (posterior samples). The log marginal likelihood scores
// a kernel choice against the training data.
//
// # Installation
//
//	go get github.com/YuminosukeSato/gaussproc
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//	    "math/rand/v2"
//
//	    "github.com/YuminosukeSato/gaussproc/core/matrix"
//	    "github.com/YuminosukeSato/gaussproc/gp"
//	    "github.com/YuminosukeSato/gaussproc/kernel"
//	)
//
//	func main() {
//	    X := matrix.FromColumn([]float64{0, 1, 2, 3, 4})
//	    y := []float64{0, 1, 4, 9, 16}
//
//	    k, err := kernel.NewRBF(1.0, 1.0)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    reg := gp.NewGaussianProcessRegressor(k, gp.WithNoiseVariance(1e-8))
//	    if err := reg.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    pred, err := reg.PredictWithUncertainty(matrix.FromColumn([]float64{2.5, 10}))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(pred.Mean, pred.Std)
//
//	    draws, _ := reg.Sample(matrix.FromColumn([]float64{2.5}), 5, rand.New(rand.NewPCG(1, 2)))
//	    fmt.Println(draws)
//	}
//
// # Packages
//
//   - gp: GaussianProcessRegressor and its fitted Posterior
//   - kernel: RBF, Periodic and RationalQuadratic covariance functions, Gram matrices
//   - core/matrix: dense row-major matrix interoperable with gonum
//   - core/linalg: Cholesky factorisation and triangular solves
//   - core/model: estimator interfaces, fitted-state management, persistence
//   - core/parallel: chunked parallel loops
//   - metrics: R², MSE and probabilistic scores (NLPD, MSLL, coverage)
//   - preprocessing: StandardScaler, used for target normalisation
//   - sklearn/gaussian_process: scikit-learn style wrapper on gonum matrices
//   - plotting: posterior band and sample plots with gonum/plot
//   - pkg/errors, pkg/log: structured errors and logging
//
// # Numerical notes
//
// Fitting factors K + noise_variance·I. Duplicate inputs or a very long
// length scale make K singular; Fit then fails with
// errors.NotPositiveDefiniteError and the regressor stays unfitted. Raising
// the noise variance is the usual fix.
package gaussproc
