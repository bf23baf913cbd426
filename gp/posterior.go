package gp

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gaussproc/core/linalg"
	"github.com/YuminosukeSato/gaussproc/core/matrix"
	"github.com/YuminosukeSato/gaussproc/core/model"
	"github.com/YuminosukeSato/gaussproc/core/parallel"
	"github.com/YuminosukeSato/gaussproc/kernel"
	"github.com/YuminosukeSato/gaussproc/pkg/errors"
	"github.com/YuminosukeSato/gaussproc/preprocessing"
)

// negativeVarianceTolerance is the relative size below zero a predictive
// variance may reach from rounding alone before a warning is raised.
const negativeVarianceTolerance = 1e-8

var _ model.PosteriorSource = (*Posterior)(nil)

// Posterior is a fitted Gaussian process: the training data together with
// the Cholesky factor L of K + noiseVariance·I and the dual coefficients
// alpha = (L·Lᵗ)⁻¹·y. It is immutable once built and safe for concurrent use.
type Posterior struct {
	kernel        kernel.Kernel
	noiseVariance float64
	threshold     int

	xTrain *matrix.Matrix
	yTrain []float64 // original scale
	yFit   []float64 // targets the factorisation was solved for
	l      *matrix.Matrix
	alpha  []float64
	lml    float64

	// nil unless targets were normalised
	yScaler *preprocessing.StandardScaler
}

func newPosterior(k kernel.Kernel, noiseVariance float64, normalizeY bool, threshold int, X *matrix.Matrix, y []float64) (*Posterior, error) {
	const op = "GaussianProcessRegressor.Fit"

	if k == nil {
		return nil, errors.NewValidationError("kernel", "kernel is nil", nil)
	}
	if noiseVariance < 0 || math.IsNaN(noiseVariance) || math.IsInf(noiseVariance, 0) {
		return nil, errors.NewValidationError("noise_variance", "must be non-negative and finite", noiseVariance)
	}
	if X == nil || X.IsEmpty() {
		return nil, errors.NewShapeError(op, "training set is empty", nil, nil)
	}
	n := X.Rows()
	if len(y) != n {
		return nil, errors.NewShapeError(op, "X and y lengths differ", []int{n}, []int{len(y)})
	}
	if err := errors.CheckMatrix(op, X); err != nil {
		return nil, err
	}
	if err := errors.CheckNumericalStability(op, y); err != nil {
		return nil, err
	}

	p := &Posterior{
		kernel:        k,
		noiseVariance: noiseVariance,
		threshold:     threshold,
		xTrain:        X.Clone(),
		yTrain:        append([]float64(nil), y...),
	}

	p.yFit = p.yTrain
	if normalizeY {
		p.yScaler = preprocessing.NewStandardScalerDefault()
		if err := p.yScaler.Fit(mat.NewVecDense(n, append([]float64(nil), y...))); err != nil {
			return nil, err
		}
		yFit, err := p.yScaler.TransformVector(y)
		if err != nil {
			return nil, err
		}
		p.yFit = yFit
	}

	K, err := kernel.GramWithThreshold(k, p.xTrain, nil, threshold)
	if err != nil {
		return nil, err
	}
	K, err = K.AddDiagonal(noiseVariance)
	if err != nil {
		return nil, err
	}
	if p.l, err = linalg.Cholesky(K); err != nil {
		return nil, errors.Wrapf(err, "%s", op)
	}
	if p.alpha, err = linalg.CholeskySolve(p.l, p.yFit); err != nil {
		return nil, err
	}

	p.lml = -0.5*floats.Dot(p.yFit, p.alpha) -
		0.5*linalg.LogDetFromCholesky(p.l) -
		0.5*float64(n)*math.Log(2*math.Pi)
	if err := errors.CheckScalar(op+": log marginal likelihood", p.lml); err != nil {
		return nil, err
	}
	return p, nil
}

// Kernel returns the kernel the posterior was fitted with.
func (p *Posterior) Kernel() kernel.Kernel { return p.kernel }

// NoiseVariance returns the diagonal jitter used in the fit.
func (p *Posterior) NoiseVariance() float64 { return p.noiseVariance }

// NSamples returns the number of training points.
func (p *Posterior) NSamples() int { return p.xTrain.Rows() }

// NFeatures returns the number of input features.
func (p *Posterior) NFeatures() int { return p.xTrain.Cols() }

// Factor returns a copy of the lower Cholesky factor of the training
// covariance.
func (p *Posterior) Factor() *matrix.Matrix { return p.l.Clone() }

// Alpha returns a copy of the dual coefficients.
func (p *Posterior) Alpha() []float64 { return append([]float64(nil), p.alpha...) }

// LogMarginalLikelihood returns log p(y | X) under the fitted kernel. With
// target normalisation it refers to the normalised targets.
func (p *Posterior) LogMarginalLikelihood() float64 { return p.lml }

func (p *Posterior) checkTest(op string, X *matrix.Matrix) error {
	if X == nil {
		return errors.NewValidationError("X", "test matrix is nil", nil)
	}
	if X.Rows() > 0 && X.Cols() != p.xTrain.Cols() {
		return errors.NewDimensionError(op, p.xTrain.Cols(), X.Cols(), 1)
	}
	return errors.CheckMatrix(op, X)
}

// crossCovariance returns Kstarᵗ: one row per test point, one column per
// training point.
func (p *Posterior) crossCovariance(X *matrix.Matrix) (*matrix.Matrix, error) {
	return kernel.GramWithThreshold(p.kernel, X, p.xTrain, p.threshold)
}

// Predict returns the posterior mean Kstarᵗ·alpha at every row of X.
func (p *Posterior) Predict(X *matrix.Matrix) ([]float64, error) {
	if err := p.checkTest("GaussianProcessRegressor.Predict", X); err != nil {
		return nil, err
	}
	if X.Rows() == 0 {
		return []float64{}, nil
	}
	kStarT, err := p.crossCovariance(X)
	if err != nil {
		return nil, err
	}
	mean, err := kStarT.MulVec(p.alpha)
	if err != nil {
		return nil, err
	}
	return p.denormalizeMean(mean)
}

// PredictReturnStd returns the posterior mean and, when returnStd is set,
// the predictive standard deviation.
func (p *Posterior) PredictReturnStd(X *matrix.Matrix, returnStd bool) (*model.Prediction, error) {
	if !returnStd {
		mean, err := p.Predict(X)
		if err != nil {
			return nil, err
		}
		return &model.Prediction{Mean: mean}, nil
	}
	return p.PredictWithUncertainty(X)
}

// PredictWithUncertainty returns the posterior mean and standard deviation at
// every row of X. For test point x with cross-covariance column kₓ,
// v = L⁻¹·kₓ and var = max(0, k(x,x) − vᵗv).
func (p *Posterior) PredictWithUncertainty(X *matrix.Matrix) (*model.Prediction, error) {
	return p.predictWithUncertainty(X, 0)
}

// predictWithUncertainty treats row j of X as test point offset+j when
// reporting clipped variances.
func (p *Posterior) predictWithUncertainty(X *matrix.Matrix, offset int) (*model.Prediction, error) {
	const op = "GaussianProcessRegressor.PredictWithUncertainty"
	if err := p.checkTest(op, X); err != nil {
		return nil, err
	}
	m := X.Rows()
	if m == 0 {
		return &model.Prediction{Mean: []float64{}, Std: []float64{}}, nil
	}
	kStarT, err := p.crossCovariance(X)
	if err != nil {
		return nil, err
	}
	mean, err := kStarT.MulVec(p.alpha)
	if err != nil {
		return nil, err
	}

	std := make([]float64, m)
	err = parallel.ParallelizeErr(m, p.threshold, op, func(start, end int) error {
		for j := start; j < end; j++ {
			v, err := linalg.ForwardSubstitution(p.l, kStarT.RowView(j))
			if err != nil {
				return err
			}
			x := X.RowView(j)
			prior := p.kernel.Compute(x, x)
			variance := prior - floats.Dot(v, v)
			if variance < 0 {
				if variance < -negativeVarianceTolerance*prior {
					errors.Warn(errors.NewNegativeVarianceWarning(offset+j, variance, prior))
				}
				variance = 0
			}
			std[j] = math.Sqrt(variance)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if mean, err = p.denormalizeMean(mean); err != nil {
		return nil, err
	}
	if p.yScaler != nil {
		floats.Scale(p.yScaler.Scale[0], std)
	}
	return &model.Prediction{Mean: mean, Std: std}, nil
}

// PredictCovariance returns the full posterior covariance K** − VᵗV between
// the rows of X, where V = L⁻¹·Kstar.
func (p *Posterior) PredictCovariance(X *matrix.Matrix) (*mat.SymDense, error) {
	const op = "GaussianProcessRegressor.PredictCovariance"
	if err := p.checkTest(op, X); err != nil {
		return nil, err
	}
	m := X.Rows()
	if m == 0 {
		return &mat.SymDense{}, nil
	}
	kStarT, err := p.crossCovariance(X)
	if err != nil {
		return nil, err
	}
	kss, err := kernel.GramWithThreshold(p.kernel, X, nil, p.threshold)
	if err != nil {
		return nil, err
	}

	n := p.xTrain.Rows()
	vt := mat.NewDense(m, n, nil)
	err = parallel.ParallelizeErr(m, p.threshold, op, func(start, end int) error {
		for j := start; j < end; j++ {
			v, err := linalg.ForwardSubstitution(p.l, kStarT.RowView(j))
			if err != nil {
				return err
			}
			vt.SetRow(j, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cov := mat.NewSymDense(m, nil)
	cov.SymOuterK(-1, vt)
	for i := 0; i < m; i++ {
		for j := i; j < m; j++ {
			c := kss.At(i, j) + cov.At(i, j)
			if i == j && c < 0 {
				c = 0
			}
			cov.SetSym(i, j, c)
		}
	}
	if p.yScaler != nil {
		s := p.yScaler.Scale[0]
		cov.ScaleSym(s*s, cov)
	}
	return cov, nil
}

func (p *Posterior) denormalizeMean(mean []float64) ([]float64, error) {
	if p.yScaler == nil {
		return mean, nil
	}
	return p.yScaler.InverseTransformVector(mean)
}

// Sample draws nSamples realisations at the rows of X, each of which is a
// slice with one value per test point. Every point is drawn independently
// from its marginal N(mean, std²), so correlations between test points are
// ignored; use SampleJoint for coherent curves.
func (p *Posterior) Sample(X *matrix.Matrix, nSamples int, rng model.Source) ([][]float64, error) {
	if err := checkSampleArgs(nSamples, rng); err != nil {
		return nil, err
	}
	pred, err := p.PredictWithUncertainty(X)
	if err != nil {
		return nil, err
	}
	normal := newStdNormal(rng)
	out := make([][]float64, nSamples)
	for s := range out {
		draw := make([]float64, len(pred.Mean))
		for i := range draw {
			draw[i] = pred.Mean[i] + pred.Std[i]*normal.next()
		}
		out[s] = draw
	}
	return out, nil
}

// SampleJoint draws nSamples realisations from the full multivariate
// posterior at the rows of X: mean + Lc·z, where Lc is the Cholesky factor of
// the posterior covariance.
func (p *Posterior) SampleJoint(X *matrix.Matrix, nSamples int, rng model.Source) ([][]float64, error) {
	if err := checkSampleArgs(nSamples, rng); err != nil {
		return nil, err
	}
	mean, err := p.Predict(X)
	if err != nil {
		return nil, err
	}
	m := len(mean)
	out := make([][]float64, nSamples)
	if m == 0 {
		for s := range out {
			out[s] = []float64{}
		}
		return out, nil
	}
	cov, err := p.PredictCovariance(X)
	if err != nil {
		return nil, err
	}
	chol, err := factorCovariance(cov)
	if err != nil {
		return nil, err
	}
	var lc mat.TriDense
	chol.LTo(&lc)

	normal := newStdNormal(rng)
	z := mat.NewVecDense(m, nil)
	var draw mat.VecDense
	for s := range out {
		for i := 0; i < m; i++ {
			z.SetVec(i, normal.next())
		}
		draw.MulVec(&lc, z)
		row := make([]float64, m)
		for i := range row {
			row[i] = mean[i] + draw.AtVec(i)
		}
		out[s] = row
	}
	return out, nil
}

// factorCovariance factors a posterior covariance, adding growing diagonal
// jitter because the covariance between nearby test points is often
// numerically singular.
func factorCovariance(cov *mat.SymDense) (*mat.Cholesky, error) {
	m := cov.SymmetricDim()
	var trace float64
	for i := 0; i < m; i++ {
		trace += cov.At(i, i)
	}
	base := trace / float64(m)
	if base <= 0 {
		base = 1
	}

	work := mat.NewSymDense(m, nil)
	var chol mat.Cholesky
	for _, rel := range []float64{0, 1e-12, 1e-10, 1e-8, 1e-6} {
		work.CopySym(cov)
		for i := 0; i < m; i++ {
			work.SetSym(i, i, work.At(i, i)+rel*base)
		}
		if chol.Factorize(work) {
			return &chol, nil
		}
	}
	return nil, errors.NewNotPositiveDefiniteError("GaussianProcessRegressor.SampleJoint", -1, base)
}

func checkSampleArgs(nSamples int, rng model.Source) error {
	if nSamples < 1 {
		return errors.NewValidationError("n_samples", "must be at least 1", nSamples)
	}
	if rng == nil {
		return errors.NewValidationError("rng", "random source is nil", nil)
	}
	return nil
}
