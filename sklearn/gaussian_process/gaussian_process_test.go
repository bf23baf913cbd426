package gaussian_process

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gaussproc/kernel"
	"github.com/YuminosukeSato/gaussproc/pkg/errors"
	"github.com/YuminosukeSato/gaussproc/pkg/log"
)

func sineData(n int) (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x := float64(i) * 0.5
		X.Set(i, 0, x)
		y.Set(i, 0, math.Sin(x))
	}
	return X, y
}

func newRegressor(t *testing.T, opts ...Option) *GaussianProcessRegressor {
	t.Helper()
	k, err := kernel.NewRBF(1, 1)
	require.NoError(t, err)
	opts = append([]Option{WithLogger(log.NewNopLogger())}, opts...)
	return NewGaussianProcessRegressor(k, opts...)
}

func TestGaussianProcessRegressor_FitPredict(t *testing.T) {
	X, y := sineData(10)
	reg := newRegressor(t, WithAlpha(1e-8))
	require.NoError(t, reg.Fit(X, y))
	assert.True(t, reg.IsFitted())

	pred, err := reg.Predict(X)
	require.NoError(t, err)
	r, c := pred.Dims()
	assert.Equal(t, 10, r)
	assert.Equal(t, 1, c)
	for i := 0; i < r; i++ {
		assert.InDelta(t, y.At(i, 0), pred.At(i, 0), 1e-4)
	}

	mean, std, err := reg.PredictStd(mat.NewDense(2, 1, []float64{1.25, 50}))
	require.NoError(t, err)
	assert.InDelta(t, math.Sin(1.25), mean.At(0, 0), 1e-2)
	assert.Less(t, std.At(0, 0), std.At(1, 0))

	score, err := reg.Score(X, y)
	require.NoError(t, err)
	assert.InDelta(t, 1, score, 1e-6)

	mse, err := reg.MSE(X, y)
	require.NoError(t, err)
	assert.Less(t, mse, 1e-8)

	lml, err := reg.LogMarginalLikelihood()
	require.NoError(t, err)
	assert.False(t, math.IsNaN(lml))

	cov, err := reg.PredictCov(mat.NewDense(2, 1, []float64{1.25, 50}))
	require.NoError(t, err)
	assert.InDelta(t, std.At(1, 0)*std.At(1, 0), cov.At(1, 1), 1e-9)
}

func TestGaussianProcessRegressor_FitShapeErrors(t *testing.T) {
	X, _ := sineData(4)
	reg := newRegressor(t)

	var de *errors.DimensionError
	err := reg.Fit(X, mat.NewDense(4, 2, nil))
	assert.True(t, errors.As(err, &de), "got %v", err)
	err = reg.Fit(X, mat.NewDense(3, 1, nil))
	assert.True(t, errors.As(err, &de), "got %v", err)

	_, err = reg.Predict(X)
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))
}

func TestGaussianProcessRegressor_SampleY(t *testing.T) {
	X, y := sineData(6)
	reg := newRegressor(t, WithRandomState(7))
	require.NoError(t, reg.Fit(X, y))

	Xs := mat.NewDense(3, 1, []float64{0.25, 1.75, 20})
	a, err := reg.SampleY(Xs, 5, nil)
	require.NoError(t, err)
	r, c := a.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 5, c)

	b, err := reg.SampleY(Xs, 5, nil)
	require.NoError(t, err)
	assert.True(t, mat.Equal(a, b), "random_state makes SampleY reproducible")

	other, err := reg.SampleY(Xs, 5, rand.New(rand.NewPCG(1, 99)))
	require.NoError(t, err)
	assert.False(t, mat.Equal(a, other))

	_, err = reg.SampleY(Xs, 0, nil)
	assert.Error(t, err)
}

func TestGaussianProcessRegressor_Params(t *testing.T) {
	reg := newRegressor(t, WithAlpha(0.01), WithNormalizeY(true), WithRandomState(3))

	shallow := reg.GetParams(false)
	assert.Equal(t, 0.01, shallow["alpha"])
	assert.Equal(t, true, shallow["normalize_y"])
	assert.Equal(t, uint64(3), shallow["random_state"])
	assert.NotContains(t, shallow, "kernel__length_scale")

	deep := reg.GetParams(true)
	assert.Equal(t, 1.0, deep["kernel__length_scale"])
	assert.Equal(t, 1.0, deep["kernel__variance"])

	require.NoError(t, reg.SetParams(map[string]interface{}{
		"kernel__length_scale": 2.5,
		"alpha":                0.1,
	}))
	deep = reg.GetParams(true)
	assert.Equal(t, 2.5, deep["kernel__length_scale"])
	assert.Equal(t, 1.0, deep["kernel__variance"])
	assert.Equal(t, 0.1, deep["alpha"])

	// the inner regressor sees the new hyperparameters on the next fit
	X, y := sineData(5)
	require.NoError(t, reg.Fit(X, y))
	assert.Contains(t, reg.String(), "length_scale=2.5")

	var ve *errors.ValidationError
	for _, bad := range []map[string]interface{}{
		{"kernel__periodicity": 2.0},
		{"kernel__length_scale": -1.0},
		{"kernel__length_scale": "wide"},
		{"alpha": -1.0},
		{"random_state": 3},
		{"n_restarts_optimizer": 2},
	} {
		assert.True(t, errors.As(reg.SetParams(bad), &ve), "%v", bad)
	}
}

func TestGaussianProcessRegressor_Clone(t *testing.T) {
	X, y := sineData(5)
	reg := newRegressor(t, WithAlpha(0.05))
	require.NoError(t, reg.Fit(X, y))

	clone, ok := reg.Clone().(*GaussianProcessRegressor)
	require.True(t, ok)
	assert.False(t, clone.IsFitted())
	assert.Equal(t, reg.GetParams(true), clone.GetParams(true))
}

func TestGaussianProcessRegressor_Weights(t *testing.T) {
	X, y := sineData(8)
	periodic, err := kernel.NewPeriodic(1, 5, 2)
	require.NoError(t, err)
	reg := NewGaussianProcessRegressor(periodic, WithAlpha(1e-6), WithLogger(log.NewNopLogger()))
	assert.Empty(t, reg.GetWeightHash())
	require.NoError(t, reg.Fit(X, y))

	state, err := reg.ExportWeights()
	require.NoError(t, err)
	assert.Equal(t, reg.GetWeightHash(), state.Metadata[checksumMetaKey])

	restored := newRegressor(t)
	require.NoError(t, restored.ImportWeights(state.Clone()))
	assert.Equal(t, reg.GetWeightHash(), restored.GetWeightHash())
	assert.Equal(t, "periodic", restored.GetParams(false)["kernel"].(kernel.Kernel).Kind().String())

	Xs := mat.NewDense(2, 1, []float64{0.3, 7})
	want, err := reg.Predict(Xs)
	require.NoError(t, err)
	got, err := restored.Predict(Xs)
	require.NoError(t, err)
	assert.True(t, mat.Equal(want, got))

	tampered := state.Clone()
	tampered.YTrain[0] += 1
	err = newRegressor(t).ImportWeights(tampered)
	assert.ErrorContains(t, err, "checksum mismatch")
}

func TestGaussianProcessRegressor_ImportWeightsRequiresChecksum(t *testing.T) {
	X, y := sineData(6)
	reg := newRegressor(t)
	require.NoError(t, reg.Fit(X, y))
	state, err := reg.ExportWeights()
	require.NoError(t, err)

	stripped := state.Clone()
	delete(stripped.Metadata, checksumMetaKey)
	restored := newRegressor(t)
	err = restored.ImportWeights(stripped)
	var ve *errors.ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
	assert.Equal(t, "metadata.checksum", ve.ParamName)
	assert.False(t, restored.IsFitted())

	// a state from the regressor's ExportState carries no checksum either
	raw, err := reg.gpr.ExportState()
	require.NoError(t, err)
	assert.Error(t, newRegressor(t).ImportWeights(raw))
}
