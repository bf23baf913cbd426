package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/gaussproc/pkg/errors"
)

type fakeState struct{ alpha []float64 }

func TestStateManager_Lifecycle(t *testing.T) {
	sm := NewStateManager[fakeState]()
	assert.False(t, sm.IsFitted())
	assert.Nil(t, sm.Load())

	_, err := sm.RequireFitted("GaussianProcessRegressor", "Predict")
	var nf *errors.NotFittedError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Predict", nf.Method)

	sm.Store(&fakeState{alpha: []float64{1, 2}}, 3, 2)
	assert.True(t, sm.IsFitted())
	nFeatures, nSamples := sm.GetDimensions()
	assert.Equal(t, 3, nFeatures)
	assert.Equal(t, 2, nSamples)

	st, err := sm.RequireFitted("GaussianProcessRegressor", "Predict")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, st.alpha)

	sm.Reset()
	assert.False(t, sm.IsFitted())
	assert.Equal(t, ModelState{}, sm.GetState())
}

func TestStateManager_ReplaceFailureLeavesUnfitted(t *testing.T) {
	sm := NewStateManager[fakeState]()
	sm.Store(&fakeState{alpha: []float64{1}}, 1, 1)

	err := sm.Replace("Fit", func() (*fakeState, int, int, error) {
		return nil, 0, 0, errors.NewNotPositiveDefiniteError("linalg.Cholesky", 1, 0)
	})
	require.Error(t, err)
	assert.False(t, sm.IsFitted(), "old state must be discarded")

	sm.Store(&fakeState{}, 1, 1)
	err = sm.Replace("Fit", func() (*fakeState, int, int, error) {
		panic("boom")
	})
	var pe *errors.PanicError
	require.True(t, errors.As(err, &pe))
	assert.False(t, sm.IsFitted())

	err = sm.Replace("Fit", func() (*fakeState, int, int, error) {
		return &fakeState{alpha: []float64{4}}, 2, 5, nil
	})
	require.NoError(t, err)
	assert.Equal(t, ModelState{Fitted: true, NFeatures: 2, NSamples: 5}, sm.GetState())
}

func TestStateManager_ConcurrentReaders(t *testing.T) {
	sm := NewStateManager[fakeState]()
	sm.Store(&fakeState{alpha: []float64{1}}, 1, 1)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = sm.Load()
		}()
		go func() {
			defer wg.Done()
			_ = sm.Replace("Fit", func() (*fakeState, int, int, error) {
				return &fakeState{}, 1, 1, nil
			})
		}()
	}
	wg.Wait()
	assert.True(t, sm.IsFitted())
}
