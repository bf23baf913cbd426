package preprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gaussproc/pkg/errors"
)

func TestStandardScaler_FitTransform(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 10,
		3, 10,
		4, 10,
	})
	s := NewStandardScalerDefault()

	out, err := s.FitTransform(X)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, s.Mean[0], 1e-12)
	assert.InDelta(t, math.Sqrt(1.25), s.Scale[0], 1e-12)
	// constant column keeps unit scale
	assert.Equal(t, 1.0, s.Scale[1])

	col := mat.Col(nil, 0, out)
	var sum float64
	for _, v := range col {
		sum += v
	}
	assert.InDelta(t, 0, sum, 1e-12)
	assert.Equal(t, 0.0, out.At(2, 1))

	back, err := s.InverseTransform(out)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(X, back, 1e-12))
}

func TestStandardScaler_Vector(t *testing.T) {
	y := []float64{0, 1, 4, 9, 16}
	s := NewStandardScalerDefault()
	require.NoError(t, s.Fit(mat.NewVecDense(len(y), append([]float64(nil), y...))))

	z, err := s.TransformVector(y)
	require.NoError(t, err)
	back, err := s.InverseTransformVector(z)
	require.NoError(t, err)
	assert.InDeltaSlice(t, y, back, 1e-12)
	assert.Equal(t, []float64{0, 1, 4, 9, 16}, y, "input must not be modified")
}

func TestStandardScaler_WithoutMeanOrStd(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{2, 4})
	s := NewStandardScaler(false, false)
	out, err := s.FitTransform(X)
	require.NoError(t, err)
	assert.True(t, mat.Equal(X, out))
}

func TestStandardScaler_Errors(t *testing.T) {
	s := NewStandardScalerDefault()

	_, err := s.Transform(mat.NewDense(1, 1, nil))
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	assert.True(t, errors.Is(s.Fit(&mat.Dense{}), errors.ErrEmptyData))

	require.NoError(t, s.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4})))
	_, err = s.Transform(mat.NewDense(1, 3, nil))
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
	assert.Contains(t, s.String(), "n_features=2")
}
