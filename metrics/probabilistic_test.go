package metrics

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestNLPD_StandardNormal(t *testing.T) {
	// y = mean, std = 1: -log N(0|0,1) = 0.5·log 2π
	got, err := NLPD(vec(0, 3), vec(0, 3), vec(1, 1))
	require.NoError(t, err)
	assert.InDelta(t, 0.5*math.Log(2*math.Pi), got, 1e-12)

	// zero std at an exact hit stays finite
	got, err = NLPD(vec(1), vec(1), vec(0))
	require.NoError(t, err)
	assert.False(t, math.IsInf(got, 0))

	_, err = NLPD(vec(1), vec(1), vec(-1))
	assert.Error(t, err)
	_, err = NLPD(vec(1, 2), vec(1, 2), vec(1))
	assert.Error(t, err)
}

func TestMSLL(t *testing.T) {
	yTrain := vec(-1, 1, -1, 1)
	// predicting the training distribution scores exactly 0
	got, err := MSLL(vec(0.3, -0.2), vec(0, 0), vec(1, 1), yTrain)
	require.NoError(t, err)
	assert.InDelta(t, 0, got, 1e-12)

	// a sharper correct model is better than the baseline
	got, err = MSLL(vec(0.3, -0.2), vec(0.3, -0.2), vec(0.1, 0.1), yTrain)
	require.NoError(t, err)
	assert.Less(t, got, 0.0)

	_, err = MSLL(vec(1), vec(1), vec(1), &mat.VecDense{})
	assert.Error(t, err)
}

func TestCoverage_Calibrated(t *testing.T) {
	n := 20000
	dist := distuv.Normal{Mu: 0, Sigma: 2, Src: rand.NewPCG(1, 2)}

	y := mat.NewVecDense(n, nil)
	mean := mat.NewVecDense(n, nil)
	std := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		y.SetVec(i, dist.Rand())
		std.SetVec(i, 2)
	}

	got, err := Coverage(y, mean, std, 1.96)
	require.NoError(t, err)
	assert.InDelta(t, 0.95, got, 0.01)

	_, err = Coverage(y, mean, std, 0)
	assert.Error(t, err)
}
