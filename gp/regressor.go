// Package gp implements Gaussian process regression with exact inference.
//
// A GaussianProcessRegressor is either unfitted or holds a Posterior. Fit
// factors K + noiseVariance·I once with a Cholesky decomposition; every
// prediction, sample and likelihood query reuses that factor.
//
//	k, _ := kernel.NewRBF(1.0, 1.0)
//	reg := gp.NewGaussianProcessRegressor(k, gp.WithNoiseVariance(1e-6))
//	if err := reg.Fit(X, y); err != nil {
//	    // NotPositiveDefiniteError: raise the noise variance and refit
//	}
//	pred, _ := reg.PredictWithUncertainty(XTest)
package gp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gaussproc/core/matrix"
	"github.com/YuminosukeSato/gaussproc/core/model"
	"github.com/YuminosukeSato/gaussproc/kernel"
	"github.com/YuminosukeSato/gaussproc/metrics"
	"github.com/YuminosukeSato/gaussproc/pkg/errors"
	"github.com/YuminosukeSato/gaussproc/pkg/log"
)

const modelName = "GaussianProcessRegressor"

// Source supplies uniform variates in [0, 1) for sampling.
type Source = model.Source

// Prediction is a predictive mean with optional standard deviation.
type Prediction = model.Prediction

var (
	_ model.PosteriorSource = (*GaussianProcessRegressor)(nil)
	_ model.Estimator       = (*GaussianProcessRegressor)(nil)
	_ model.Scorer          = (*GaussianProcessRegressor)(nil)
	_ model.StateExporter   = (*GaussianProcessRegressor)(nil)
	_ model.ParameterGetter = (*GaussianProcessRegressor)(nil)
	_ model.ParameterSetter = (*GaussianProcessRegressor)(nil)
)

// GaussianProcessRegressor is a Gaussian process regression model.
//
// Methods are safe for concurrent use: Fit swaps the posterior under a write
// lock and predictions work on a snapshot taken under the read lock.
// Hyperparameters have their own lock; Fit reads them once, so a concurrent
// SetParams applies to the next Fit.
type GaussianProcessRegressor struct {
	state *model.StateManager[Posterior]

	// Hyperparameters, guarded by mu
	mu                sync.RWMutex
	kernel            kernel.Kernel
	noiseVariance     float64
	normalizeY        bool
	parallelThreshold int

	logger log.Logger
}

// NewGaussianProcessRegressor は新しいGaussianProcessRegressorを作成
func NewGaussianProcessRegressor(k kernel.Kernel, opts ...Option) *GaussianProcessRegressor {
	g := &GaussianProcessRegressor{
		state:  model.NewStateManager[Posterior](),
		kernel: k,
	}
	defaultOptions(g)
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With(log.ModelNameKey, modelName)
	return g
}

// Fit は訓練データで事後分布を計算する
//
// X is n×d with one training point per row and y holds the n targets. On
// any failure the regressor is left unfitted; a previous fit is discarded,
// not restored.
func (g *GaussianProcessRegressor) Fit(X *matrix.Matrix, y []float64) error {
	_, err := g.FitPosterior(X, y)
	return err
}

// FitPosterior fits like Fit and also returns the resulting Posterior, which
// can be queried without going through the regressor.
func (g *GaussianProcessRegressor) FitPosterior(X *matrix.Matrix, y []float64) (*Posterior, error) {
	return g.fitWith(g.hyperparams(), X, y)
}

// hyperparams is a consistent copy of the settings a fit uses.
type hyperparams struct {
	kernel            kernel.Kernel
	noiseVariance     float64
	normalizeY        bool
	parallelThreshold int
}

func (g *GaussianProcessRegressor) hyperparams() hyperparams {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return hyperparams{
		kernel:            g.kernel,
		noiseVariance:     g.noiseVariance,
		normalizeY:        g.normalizeY,
		parallelThreshold: g.parallelThreshold,
	}
}

func (g *GaussianProcessRegressor) setHyperparams(hp hyperparams) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.kernel = hp.kernel
	g.noiseVariance = hp.noiseVariance
	g.normalizeY = hp.normalizeY
	g.parallelThreshold = hp.parallelThreshold
}

func (g *GaussianProcessRegressor) fitWith(hp hyperparams, X *matrix.Matrix, y []float64) (*Posterior, error) {
	start := time.Now()
	var post *Posterior
	err := g.state.Replace(modelName+".Fit", func() (*Posterior, int, int, error) {
		p, err := newPosterior(hp.kernel, hp.noiseVariance, hp.normalizeY, hp.parallelThreshold, X, y)
		if err != nil {
			return nil, 0, 0, err
		}
		post = p
		return p, p.NFeatures(), p.NSamples(), nil
	})
	if err != nil {
		g.logFitFailure(err, hp.noiseVariance)
		return nil, err
	}

	if g.logger.Enabled(context.Background(), log.LevelDebug) {
		g.logger.Debug("fit completed",
			log.OperationKey, log.OperationFit,
			log.PhaseKey, log.PhaseTraining,
			log.SamplesKey, post.NSamples(),
			log.FeaturesKey, post.NFeatures(),
			log.KernelKindKey, post.kernel.Kind().String(),
			log.KernelParamsKey, post.kernel.Params().String(),
			log.NoiseVarianceKey, post.noiseVariance,
			log.NormalizeYKey, post.yScaler != nil,
			log.LogMarginalLikelihoodKey, post.lml,
			log.DurationMsKey, float64(time.Since(start).Microseconds())/1000,
		)
	}
	return post, nil
}

func (g *GaussianProcessRegressor) logFitFailure(err error, noiseVariance float64) {
	fields := []any{err,
		log.OperationKey, log.OperationFit,
		log.ErrorTypeKey, fmt.Sprintf("%T", errors.UnwrapAll(err)),
	}
	var npd *errors.NotPositiveDefiniteError
	switch {
	case errors.As(err, &npd):
		fields = append(fields,
			log.ErrorCodeKey, log.ErrorNotPositiveDefinite,
			log.FailedRowKey, npd.Row,
			log.NoiseVarianceKey, noiseVariance,
			log.SuggestionKey, "increase noise_variance and refit",
		)
	case isShapeError(err):
		fields = append(fields, log.ErrorCodeKey, log.ErrorShape)
	default:
		fields = append(fields, log.ErrorCodeKey, log.ErrorInvalidInput)
	}
	g.logger.Warn("fit failed", fields...)
}

func isShapeError(err error) bool {
	var se *errors.ShapeError
	return errors.As(err, &se)
}

func (g *GaussianProcessRegressor) posterior(method string) (*Posterior, error) {
	p, err := g.state.RequireFitted(modelName, method)
	if err != nil {
		g.logger.Debug("called before fit", err, log.ErrorCodeKey, log.ErrorNotFitted)
	}
	return p, err
}

func (g *GaussianProcessRegressor) logInference(op string, X *matrix.Matrix, fields ...any) {
	if !g.logger.Enabled(context.Background(), log.LevelDebug) || X == nil {
		return
	}
	g.logger.Debug("inference",
		append([]any{
			log.OperationKey, op,
			log.PhaseKey, log.PhaseInference,
			log.TestSamplesKey, X.Rows(),
		}, fields...)...)
}

// IsFitted reports whether the regressor holds a posterior.
func (g *GaussianProcessRegressor) IsFitted() bool { return g.state.IsFitted() }

// Posterior returns the fitted posterior, or NotFittedError.
func (g *GaussianProcessRegressor) Posterior() (*Posterior, error) {
	return g.posterior("Posterior")
}

// Predict は各テスト点の事後平均を返す
func (g *GaussianProcessRegressor) Predict(X *matrix.Matrix) ([]float64, error) {
	p, err := g.posterior("Predict")
	if err != nil {
		return nil, err
	}
	g.logInference(log.OperationPredict, X)
	return p.Predict(X)
}

// PredictReturnStd returns the posterior mean and, when returnStd is true,
// the predictive standard deviation. Std is nil otherwise.
func (g *GaussianProcessRegressor) PredictReturnStd(X *matrix.Matrix, returnStd bool) (*Prediction, error) {
	p, err := g.posterior("Predict")
	if err != nil {
		return nil, err
	}
	g.logInference(log.OperationPredictStd, X)
	return p.PredictReturnStd(X, returnStd)
}

// PredictWithUncertainty は事後平均と標準偏差を返す
func (g *GaussianProcessRegressor) PredictWithUncertainty(X *matrix.Matrix) (*Prediction, error) {
	p, err := g.posterior("PredictWithUncertainty")
	if err != nil {
		return nil, err
	}
	g.logInference(log.OperationPredictStd, X)
	return p.PredictWithUncertainty(X)
}

// PredictCovariance returns the full m×m posterior covariance at the rows of X.
func (g *GaussianProcessRegressor) PredictCovariance(X *matrix.Matrix) (*mat.SymDense, error) {
	p, err := g.posterior("PredictCovariance")
	if err != nil {
		return nil, err
	}
	g.logInference(log.OperationPredictCovariance, X)
	return p.PredictCovariance(X)
}

// Sample draws nSamples realisations from the per-point marginals at the rows
// of X. See Posterior.Sample.
func (g *GaussianProcessRegressor) Sample(X *matrix.Matrix, nSamples int, rng Source) ([][]float64, error) {
	p, err := g.posterior("Sample")
	if err != nil {
		return nil, err
	}
	g.logInference(log.OperationSample, X, log.DrawsKey, nSamples)
	return p.Sample(X, nSamples, rng)
}

// SampleY is Sample under the scikit-learn name.
func (g *GaussianProcessRegressor) SampleY(X *matrix.Matrix, nSamples int, rng Source) ([][]float64, error) {
	return g.Sample(X, nSamples, rng)
}

// SampleJoint draws nSamples correlated realisations from the full posterior.
// See Posterior.SampleJoint.
func (g *GaussianProcessRegressor) SampleJoint(X *matrix.Matrix, nSamples int, rng Source) ([][]float64, error) {
	p, err := g.posterior("SampleJoint")
	if err != nil {
		return nil, err
	}
	g.logInference(log.OperationSampleJoint, X, log.DrawsKey, nSamples)
	return p.SampleJoint(X, nSamples, rng)
}

// LogMarginalLikelihood returns −½·yᵗα − Σ log L_ii − (n/2)·log 2π for the
// training data.
func (g *GaussianProcessRegressor) LogMarginalLikelihood() (float64, error) {
	p, err := g.posterior("LogMarginalLikelihood")
	if err != nil {
		return 0, err
	}
	return p.LogMarginalLikelihood(), nil
}

// Score returns the coefficient of determination R² of the posterior mean
// against y.
func (g *GaussianProcessRegressor) Score(X *matrix.Matrix, y []float64) (float64, error) {
	mean, err := g.Predict(X)
	if err != nil {
		return 0, err
	}
	if len(y) != len(mean) {
		return 0, errors.NewShapeError(modelName+".Score", "X and y lengths differ", []int{len(mean)}, []int{len(y)})
	}
	if len(y) == 0 {
		return 0, errors.Wrap(errors.ErrEmptyData, modelName+".Score")
	}
	r2, err := metrics.R2Score(
		mat.NewVecDense(len(y), append([]float64(nil), y...)),
		mat.NewVecDense(len(mean), mean),
	)
	if err != nil {
		return 0, err
	}
	g.logger.Debug("score", log.OperationKey, log.OperationScore, log.R2ScoreKey, r2)
	return r2, nil
}

// GetParams はハイパーパラメータを取得
func (g *GaussianProcessRegressor) GetParams() map[string]interface{} {
	hp := g.hyperparams()
	return map[string]interface{}{
		"kernel":             hp.kernel,
		"noise_variance":     hp.noiseVariance,
		"normalize_y":        hp.normalizeY,
		"parallel_threshold": hp.parallelThreshold,
	}
}

// SetParams はハイパーパラメータを設定する。
// A fitted posterior keeps the hyperparameters it was fitted with until the
// next Fit. On error no parameter is changed.
func (g *GaussianProcessRegressor) SetParams(params map[string]interface{}) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	hp := hyperparams{
		kernel:            g.kernel,
		noiseVariance:     g.noiseVariance,
		normalizeY:        g.normalizeY,
		parallelThreshold: g.parallelThreshold,
	}
	for key, value := range params {
		switch key {
		case "kernel":
			k, ok := value.(kernel.Kernel)
			if !ok || k == nil {
				return errors.NewValidationError(key, "must be a kernel.Kernel", value)
			}
			hp.kernel = k
		case "noise_variance":
			v, ok := value.(float64)
			if !ok || v < 0 {
				return errors.NewValidationError(key, "must be a non-negative float64", value)
			}
			hp.noiseVariance = v
		case "normalize_y":
			v, ok := value.(bool)
			if !ok {
				return errors.NewValidationError(key, "must be a bool", value)
			}
			hp.normalizeY = v
		case "parallel_threshold":
			v, ok := value.(int)
			if !ok {
				return errors.NewValidationError(key, "must be an int", value)
			}
			hp.parallelThreshold = v
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	g.kernel = hp.kernel
	g.noiseVariance = hp.noiseVariance
	g.normalizeY = hp.normalizeY
	g.parallelThreshold = hp.parallelThreshold
	return nil
}

// String returns a short description of the regressor.
func (g *GaussianProcessRegressor) String() string {
	hp := g.hyperparams()
	k := "<nil>"
	if hp.kernel != nil {
		k = hp.kernel.String()
	}
	return fmt.Sprintf("GaussianProcessRegressor(kernel=%s, noise_variance=%g, normalize_y=%t, fitted=%t)",
		k, hp.noiseVariance, hp.normalizeY, g.state.IsFitted())
}
