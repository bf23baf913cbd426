// Package linalg implements the Cholesky factorisation and triangular solves
// the Gaussian process regressor is built on.
package linalg

import (
	"math"

	"github.com/YuminosukeSato/gaussproc/core/matrix"
	"github.com/YuminosukeSato/gaussproc/pkg/errors"
)

// Cholesky factors a symmetric positive-definite K as L·Lᵗ and returns the
// lower-triangular L. Rows are filled top to bottom (Cholesky–Banachiewicz).
// A pivot that is not strictly positive yields NotPositiveDefiniteError
// naming the row; the factorisation is not retried with extra jitter.
func Cholesky(K *matrix.Matrix) (*matrix.Matrix, error) {
	n, c := K.Dims()
	if n != c {
		return nil, errors.NewShapeError("linalg.Cholesky", "matrix is not square", []int{n, n}, []int{n, c})
	}

	L, err := matrix.New(n, n)
	if err != nil {
		return nil, err
	}
	// work on raw rows; L is private until returned
	l := make([][]float64, n)
	for i := range l {
		l[i] = make([]float64, i+1)
	}

	for i := 0; i < n; i++ {
		ki := K.RowView(i)
		for j := 0; j <= i; j++ {
			sum := ki[j]
			li, lj := l[i], l[j]
			for k := 0; k < j; k++ {
				sum -= li[k] * lj[k]
			}
			if i == j {
				// !(sum > 0) also catches NaN
				if !(sum > 0) {
					return nil, errors.NewNotPositiveDefiniteError("linalg.Cholesky", i, sum)
				}
				li[j] = math.Sqrt(sum)
				continue
			}
			li[j] = sum / lj[j]
		}
	}

	for i, row := range l {
		for j, v := range row {
			if err := L.Set(i, j, v); err != nil {
				return nil, err
			}
		}
	}
	return L, nil
}

// ForwardSubstitution solves L·x = b for lower-triangular L.
func ForwardSubstitution(L *matrix.Matrix, b []float64) ([]float64, error) {
	n, err := checkTriangular("linalg.ForwardSubstitution", L, b)
	if err != nil {
		return nil, err
	}
	x := make([]float64, n)
	for i := 0; i < n; i++ {
		row := L.RowView(i)
		sum := b[i]
		for k := 0; k < i; k++ {
			sum -= row[k] * x[k]
		}
		x[i] = sum / row[i]
	}
	return x, nil
}

// BackwardSubstitution solves Lᵗ·x = b for lower-triangular L. The transpose
// is never formed; entry (i, j) of Lᵗ is read as L[j][i].
func BackwardSubstitution(L *matrix.Matrix, b []float64) ([]float64, error) {
	n, err := checkTriangular("linalg.BackwardSubstitution", L, b)
	if err != nil {
		return nil, err
	}
	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := b[i]
		for j := i + 1; j < n; j++ {
			sum -= L.At(j, i) * x[j]
		}
		x[i] = sum / L.At(i, i)
	}
	return x, nil
}

// CholeskySolve solves (L·Lᵗ)·x = b given the factor L.
func CholeskySolve(L *matrix.Matrix, b []float64) ([]float64, error) {
	z, err := ForwardSubstitution(L, b)
	if err != nil {
		return nil, err
	}
	return BackwardSubstitution(L, z)
}

// LogDetFromCholesky returns log|L·Lᵗ| = 2·Σ log L_ii.
func LogDetFromCholesky(L *matrix.Matrix) float64 {
	n := L.Rows()
	var s float64
	for i := 0; i < n; i++ {
		s += math.Log(L.At(i, i))
	}
	return 2 * s
}

func checkTriangular(op string, L *matrix.Matrix, b []float64) (int, error) {
	n, c := L.Dims()
	if n != c {
		return 0, errors.NewShapeError(op, "factor is not square", []int{n, n}, []int{n, c})
	}
	if len(b) != n {
		return 0, errors.NewShapeError(op, "right-hand side length differs from factor", []int{n}, []int{len(b)})
	}
	return n, nil
}
