package kernel

import (
	"github.com/YuminosukeSato/gaussproc/core/matrix"
	"github.com/YuminosukeSato/gaussproc/core/parallel"
	"github.com/YuminosukeSato/gaussproc/pkg/errors"
)

// Gram returns the covariance matrix K[i][j] = k(X1[i], X2[j]).
//
// When X2 is nil the self-covariance of X1 is built: only the upper triangle
// is evaluated and mirrored, so the result is exactly symmetric. Rows are
// split across goroutines once X1 has more than parallel.DefaultThreshold
// rows; the values do not depend on the split.
func Gram(k Kernel, X1, X2 *matrix.Matrix) (*matrix.Matrix, error) {
	return GramWithThreshold(k, X1, X2, parallel.DefaultThreshold)
}

// GramWithThreshold is Gram with an explicit sequential/parallel cut-over.
// A negative threshold disables parallelism.
func GramWithThreshold(k Kernel, X1, X2 *matrix.Matrix, threshold int) (*matrix.Matrix, error) {
	if k == nil {
		return nil, errors.NewValidationError("kernel", "kernel is nil", nil)
	}
	symmetric := X2 == nil
	if symmetric {
		X2 = X1
	}
	if X1.Cols() != X2.Cols() {
		return nil, errors.NewDimensionError("kernel.Gram", X1.Cols(), X2.Cols(), 1)
	}

	n, m := X1.Rows(), X2.Rows()
	data := make([]float64, n*m)

	parallel.ParallelizeWithThreshold(n, threshold, func(start, end int) {
		for i := start; i < end; i++ {
			xi := X1.RowView(i)
			if symmetric {
				// each cell is owned by exactly one row i <= j
				for j := i; j < m; j++ {
					v := k.Compute(xi, X2.RowView(j))
					data[i*m+j] = v
					data[j*m+i] = v
				}
				continue
			}
			for j := 0; j < m; j++ {
				data[i*m+j] = k.Compute(xi, X2.RowView(j))
			}
		}
	})

	return matrix.NewFromData(n, m, data)
}

// Diagonal returns k(x, x) for every row of X.
func Diagonal(k Kernel, X *matrix.Matrix) []float64 {
	out := make([]float64, X.Rows())
	for i := range out {
		row := X.RowView(i)
		out[i] = k.Compute(row, row)
	}
	return out
}
