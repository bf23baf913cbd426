package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/gaussproc/pkg/errors"
)

func TestParallelize_CoversEveryIndexOnce(t *testing.T) {
	for _, n := range []int{1, 7, 64, 1000} {
		hits := make([]int32, n)
		Parallelize(n, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			require.EqualValuesf(t, 1, h, "n=%d index %d", n, i)
		}
	}
}

func TestParallelizeWithThreshold_Sequential(t *testing.T) {
	var calls int
	ParallelizeWithThreshold(10, 64, func(start, end int) {
		calls++
		assert.Equal(t, 0, start)
		assert.Equal(t, 10, end)
	})
	assert.Equal(t, 1, calls)

	ParallelizeWithThreshold(0, 64, func(start, end int) {
		t.Fatal("fn must not run for zero items")
	})
}

func TestParallelizeErr(t *testing.T) {
	err := ParallelizeErr(100, 0, "test", func(start, end int) error {
		if start <= 50 && 50 < end {
			return errors.New("boom")
		}
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	err = ParallelizeErr(8, 64, "kernel.Gram", func(start, end int) error {
		panic("index out of range")
	})
	var pe *errors.PanicError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "kernel.Gram", pe.Operation)

	assert.NoError(t, ParallelizeErr(8, 0, "ok", func(start, end int) error { return nil }))
}
