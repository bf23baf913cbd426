// Package gaussian_process wraps gp.GaussianProcessRegressor behind the
// scikit-learn style estimator API used across the module: gonum matrices
// in and out, alpha as the name of the noise term and nested
// "kernel__<param>" keys in GetParams/SetParams.
package gaussian_process

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gaussproc/core/matrix"
	"github.com/YuminosukeSato/gaussproc/core/model"
	"github.com/YuminosukeSato/gaussproc/gp"
	"github.com/YuminosukeSato/gaussproc/kernel"
	"github.com/YuminosukeSato/gaussproc/metrics"
	"github.com/YuminosukeSato/gaussproc/pkg/errors"
	"github.com/YuminosukeSato/gaussproc/pkg/log"
)

const (
	modelName       = "GaussianProcessRegressor"
	kernelParamSep  = "__"
	checksumMetaKey = "checksum"
)

var _ model.ProbabilisticRegressorMixin = (*GaussianProcessRegressor)(nil)

// GaussianProcessRegressor is a scikit-learn compatible Gaussian process
// regressor.
type GaussianProcessRegressor struct {
	gpr *gp.GaussianProcessRegressor

	// Hyperparameters
	kernel      kernel.Kernel
	alpha       float64
	normalizeY  bool
	randomState uint64
	logger      log.Logger
}

// Option configures GaussianProcessRegressor.
type Option func(*GaussianProcessRegressor)

// WithAlpha sets the value added to the diagonal of the kernel matrix
// during fitting (scikit-learn's alpha).
func WithAlpha(alpha float64) Option {
	return func(r *GaussianProcessRegressor) { r.alpha = alpha }
}

// WithNormalizeY は目的変数の標準化を設定
func WithNormalizeY(normalize bool) Option {
	return func(r *GaussianProcessRegressor) { r.normalizeY = normalize }
}

// WithRandomState sets the seed SampleY uses when no source is passed.
func WithRandomState(seed uint64) Option {
	return func(r *GaussianProcessRegressor) { r.randomState = seed }
}

// WithLogger sets the logger handed to the underlying regressor.
func WithLogger(l log.Logger) Option {
	return func(r *GaussianProcessRegressor) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewGaussianProcessRegressor は新しいGaussianProcessRegressorを作成
func NewGaussianProcessRegressor(k kernel.Kernel, opts ...Option) *GaussianProcessRegressor {
	r := &GaussianProcessRegressor{
		kernel: k,
		alpha:  gp.DefaultNoiseVariance,
		logger: log.GetLoggerWithName("sklearn.gaussian_process"),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.gpr = gp.NewGaussianProcessRegressor(r.kernel,
		gp.WithNoiseVariance(r.alpha),
		gp.WithNormalizeY(r.normalizeY),
		gp.WithLogger(r.logger),
	)
	return r
}

// syncParams pushes the wrapper's hyperparameters to the inner regressor.
func (r *GaussianProcessRegressor) syncParams() error {
	return r.gpr.SetParams(map[string]interface{}{
		"kernel":         r.kernel,
		"noise_variance": r.alpha,
		"normalize_y":    r.normalizeY,
	})
}

// toColumn checks that y is n×1 and returns its values.
func toColumn(op string, y mat.Matrix, n int) ([]float64, error) {
	rows, cols := y.Dims()
	if cols != 1 {
		return nil, errors.NewDimensionError(op, 1, cols, 1)
	}
	if rows != n {
		return nil, errors.NewDimensionError(op, n, rows, 0)
	}
	return mat.Col(nil, 0, y), nil
}

// Fit は n_samples × n_features の X と n_samples × 1 の y で学習
func (r *GaussianProcessRegressor) Fit(X, y mat.Matrix) error {
	rows, _ := X.Dims()
	yv, err := toColumn(modelName+".Fit", y, rows)
	if err != nil {
		return err
	}
	if err := r.syncParams(); err != nil {
		return err
	}
	return r.gpr.Fit(matrix.FromGonum(X), yv)
}

// Predict は n_samples × 1 の予測平均を返す
func (r *GaussianProcessRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	mean, err := r.gpr.Predict(matrix.FromGonum(X))
	if err != nil {
		return nil, err
	}
	return column(mean), nil
}

// PredictStd returns the predictive mean and standard deviation, both
// n_samples × 1. It mirrors predict(X, return_std=True).
func (r *GaussianProcessRegressor) PredictStd(X mat.Matrix) (mean, std mat.Matrix, err error) {
	pred, err := r.gpr.PredictWithUncertainty(matrix.FromGonum(X))
	if err != nil {
		return nil, nil, err
	}
	return column(pred.Mean), column(pred.Std), nil
}

// PredictCov returns the m×m posterior covariance, like
// predict(X, return_cov=True).
func (r *GaussianProcessRegressor) PredictCov(X mat.Matrix) (*mat.SymDense, error) {
	return r.gpr.PredictCovariance(matrix.FromGonum(X))
}

// SampleY draws nDraws independent posterior realisations and returns them
// as an n_samples × nDraws matrix, one draw per column. A nil rng uses a
// generator seeded from the random state, so repeated calls are
// reproducible.
func (r *GaussianProcessRegressor) SampleY(X mat.Matrix, nDraws int, rng model.Source) (mat.Matrix, error) {
	if rng == nil {
		rng = rand.New(rand.NewPCG(r.randomState, r.randomState))
	}
	draws, err := r.gpr.Sample(matrix.FromGonum(X), nDraws, rng)
	if err != nil {
		return nil, err
	}
	m := 0
	if len(draws) > 0 {
		m = len(draws[0])
	}
	if m == 0 {
		return &mat.Dense{}, nil
	}
	out := mat.NewDense(m, nDraws, nil)
	for s, draw := range draws {
		out.SetCol(s, draw)
	}
	return out, nil
}

// LogMarginalLikelihood は学習データの対数周辺尤度を返す
func (r *GaussianProcessRegressor) LogMarginalLikelihood() (float64, error) {
	return r.gpr.LogMarginalLikelihood()
}

// Score は決定係数R²を計算
func (r *GaussianProcessRegressor) Score(X, y mat.Matrix) (float64, error) {
	rows, _ := X.Dims()
	yv, err := toColumn(modelName+".Score", y, rows)
	if err != nil {
		return 0, err
	}
	return r.gpr.Score(matrix.FromGonum(X), yv)
}

// MSE returns the mean squared error of the posterior mean against y.
func (r *GaussianProcessRegressor) MSE(X, y mat.Matrix) (float64, error) {
	pred, err := r.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.MSEMatrix(y, pred)
}

// IsFitted returns whether the model has been fitted.
func (r *GaussianProcessRegressor) IsFitted() bool { return r.gpr.IsFitted() }

// GetParams returns the hyperparameters. With deep set, the kernel's own
// parameters are included as "kernel__<name>".
func (r *GaussianProcessRegressor) GetParams(deep bool) map[string]interface{} {
	params := map[string]interface{}{
		"kernel":       r.kernel,
		"alpha":        r.alpha,
		"normalize_y":  r.normalizeY,
		"random_state": r.randomState,
	}
	if deep && r.kernel != nil {
		for name, v := range r.kernel.Params() {
			params["kernel"+kernelParamSep+name] = v
		}
	}
	return params
}

// SetParams sets hyperparameters. "kernel__<name>" keys rebuild the kernel
// with that parameter replaced; they are applied after a "kernel" key in
// the same call.
func (r *GaussianProcessRegressor) SetParams(params map[string]interface{}) error {
	nested := kernel.Params{}
	for key, value := range params {
		if name, ok := strings.CutPrefix(key, "kernel"+kernelParamSep); ok {
			v, ok := value.(float64)
			if !ok {
				return errors.NewValidationError(key, "must be a float64", value)
			}
			nested[name] = v
			continue
		}
		switch key {
		case "kernel":
			k, ok := value.(kernel.Kernel)
			if !ok || k == nil {
				return errors.NewValidationError(key, "must be a kernel.Kernel", value)
			}
			r.kernel = k
		case "alpha":
			v, ok := value.(float64)
			if !ok || v < 0 {
				return errors.NewValidationError(key, "must be a non-negative float64", value)
			}
			r.alpha = v
		case "normalize_y":
			v, ok := value.(bool)
			if !ok {
				return errors.NewValidationError(key, "must be a bool", value)
			}
			r.normalizeY = v
		case "random_state":
			v, ok := value.(uint64)
			if !ok {
				return errors.NewValidationError(key, "must be a uint64", value)
			}
			r.randomState = v
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}

	if len(nested) > 0 {
		if r.kernel == nil {
			return errors.NewValidationError("kernel", "kernel__ parameters need a kernel", nil)
		}
		merged := r.kernel.Params()
		for name, v := range nested {
			if _, ok := merged[name]; !ok {
				return errors.NewValidationError("kernel"+kernelParamSep+name,
					"not a parameter of "+r.kernel.Kind().String(), v)
			}
			merged[name] = v
		}
		k, err := kernel.New(r.kernel.Kind(), merged)
		if err != nil {
			return err
		}
		r.kernel = k
	}
	return r.syncParams()
}

// Clone はモデルの新しいインスタンスを作成（同じハイパーパラメータ、未学習）
func (r *GaussianProcessRegressor) Clone() model.SKLearnCompatible {
	return NewGaussianProcessRegressor(r.kernel,
		WithAlpha(r.alpha),
		WithNormalizeY(r.normalizeY),
		WithRandomState(r.randomState),
		WithLogger(r.logger),
	)
}

// ExportWeights exports the fitted model with a checksum over the training
// data and kernel parameters, so a corrupted file is rejected on import.
func (r *GaussianProcessRegressor) ExportWeights() (*model.GPState, error) {
	state, err := r.gpr.ExportState()
	if err != nil {
		return nil, err
	}
	sum, err := checksum(state)
	if err != nil {
		return nil, err
	}
	state.Metadata[checksumMetaKey] = sum
	return state, nil
}

// ImportWeights restores a model written by ExportWeights and refits it.
// States without a checksum are rejected.
func (r *GaussianProcessRegressor) ImportWeights(state *model.GPState) error {
	if state == nil {
		return errors.NewValidationError("state", "is nil", nil)
	}
	want, ok := state.Metadata[checksumMetaKey].(string)
	if !ok || want == "" {
		return errors.NewValidationError("metadata.checksum", "is required", state.Metadata[checksumMetaKey])
	}
	got, err := checksum(state)
	if err != nil {
		return err
	}
	if got != want {
		return errors.Newf("%s.ImportWeights: checksum mismatch: weights may be corrupted", modelName)
	}
	if err := r.gpr.ImportState(state); err != nil {
		return err
	}
	params := r.gpr.GetParams()
	r.kernel = params["kernel"].(kernel.Kernel)
	r.alpha = params["noise_variance"].(float64)
	r.normalizeY = params["normalize_y"].(bool)
	return nil
}

// GetWeightHash returns the checksum ExportWeights would record, or "" when
// unfitted.
func (r *GaussianProcessRegressor) GetWeightHash() string {
	state, err := r.gpr.ExportState()
	if err != nil {
		return ""
	}
	sum, err := checksum(state)
	if err != nil {
		return ""
	}
	return sum
}

func checksum(state *model.GPState) (string, error) {
	data, err := json.Marshal(struct {
		Kind   string             `json:"kind"`
		Params map[string]float64 `json:"params"`
		Noise  float64            `json:"noise"`
		X      [][]float64        `json:"x"`
		Y      []float64          `json:"y"`
	}{state.KernelKind, state.KernelParams, state.NoiseVariance, state.XTrain, state.YTrain})
	if err != nil {
		return "", errors.Wrap(err, "checksum")
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

func column(v []float64) *mat.Dense {
	if len(v) == 0 {
		return &mat.Dense{}
	}
	return mat.NewDense(len(v), 1, v)
}

// String returns a short description.
func (r *GaussianProcessRegressor) String() string {
	return r.gpr.String()
}
