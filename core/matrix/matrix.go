// Package matrix provides the dense, row-major, bounds-checked matrix used by
// the kernel, linalg and gp packages.
//
// Every transformation returns a new Matrix; nothing aliases another
// Matrix's storage. *Matrix implements gonum's mat.Matrix so it can be
// handed to gonum routines directly, and FromGonum/Dense convert in the other
// direction.
package matrix

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gaussproc/pkg/errors"
)

// Matrix is a dense rows×cols matrix of float64 stored row-major.
type Matrix struct {
	rows, cols int
	data       []float64
}

var _ mat.Matrix = (*Matrix)(nil)

// New returns a zero-filled rows×cols matrix.
func New(rows, cols int) (*Matrix, error) {
	if rows < 0 || cols < 0 {
		return nil, errors.NewShapeError("matrix.New", "negative dimension", nil, []int{rows, cols})
	}
	return &Matrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}, nil
}

// NewFromData wraps data, which must hold rows*cols values in row-major
// order. The Matrix takes ownership of data.
func NewFromData(rows, cols int, data []float64) (*Matrix, error) {
	if rows < 0 || cols < 0 {
		return nil, errors.NewShapeError("matrix.NewFromData", "negative dimension", nil, []int{rows, cols})
	}
	if len(data) != rows*cols {
		return nil, errors.NewShapeError("matrix.NewFromData", "data length does not match shape",
			[]int{rows * cols}, []int{len(data)})
	}
	return &Matrix{rows: rows, cols: cols, data: data}, nil
}

// FromRows copies a [][]float64 into a new Matrix. All rows must have the
// same length. An empty slice yields a 0×0 matrix.
func FromRows(rows [][]float64) (*Matrix, error) {
	if len(rows) == 0 {
		return &Matrix{}, nil
	}
	cols := len(rows[0])
	m := &Matrix{rows: len(rows), cols: cols, data: make([]float64, len(rows)*cols)}
	for i, r := range rows {
		if len(r) != cols {
			return nil, errors.NewShapeError("matrix.FromRows",
				fmt.Sprintf("ragged row %d", i), []int{cols}, []int{len(r)})
		}
		copy(m.data[i*cols:(i+1)*cols], r)
	}
	return m, nil
}

// FromColumn builds an n×1 matrix from a slice of scalars. Handy for the
// one-dimensional inputs most GP demos use.
func FromColumn(values []float64) *Matrix {
	data := make([]float64, len(values))
	copy(data, values)
	return &Matrix{rows: len(values), cols: 1, data: data}
}

// Identity returns the n×n identity matrix.
func Identity(n int) *Matrix {
	m := &Matrix{rows: n, cols: n, data: make([]float64, n*n)}
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m
}

// FromGonum copies any gonum matrix into a new Matrix.
func FromGonum(a mat.Matrix) *Matrix {
	r, c := a.Dims()
	m := &Matrix{rows: r, cols: c, data: make([]float64, r*c)}
	if d, ok := a.(*mat.Dense); ok {
		raw := d.RawMatrix()
		for i := 0; i < r; i++ {
			copy(m.data[i*c:(i+1)*c], raw.Data[i*raw.Stride:i*raw.Stride+c])
		}
		return m
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.data[i*c+j] = a.At(i, j)
		}
	}
	return m
}

// Dense returns a gonum copy of m.
func (m *Matrix) Dense() *mat.Dense {
	if m.rows == 0 || m.cols == 0 {
		return &mat.Dense{}
	}
	data := make([]float64, len(m.data))
	copy(data, m.data)
	return mat.NewDense(m.rows, m.cols, data)
}

// Dims returns the number of rows and columns.
func (m *Matrix) Dims() (int, int) { return m.rows, m.cols }

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// IsEmpty reports whether the matrix has no elements.
func (m *Matrix) IsEmpty() bool { return m.rows == 0 || m.cols == 0 }

func (m *Matrix) inBounds(r, c int) bool {
	return r >= 0 && r < m.rows && c >= 0 && c < m.cols
}

// Get returns element (r, c).
func (m *Matrix) Get(r, c int) (float64, error) {
	if !m.inBounds(r, c) {
		return 0, errors.NewIndexError("Matrix.Get", r, c, m.rows, m.cols)
	}
	return m.data[r*m.cols+c], nil
}

// Set writes element (r, c).
func (m *Matrix) Set(r, c int, v float64) error {
	if !m.inBounds(r, c) {
		return errors.NewIndexError("Matrix.Set", r, c, m.rows, m.cols)
	}
	m.data[r*m.cols+c] = v
	return nil
}

// At implements mat.Matrix. Like gonum, it panics on an out-of-range index;
// use Get for the checked path.
func (m *Matrix) At(r, c int) float64 {
	if !m.inBounds(r, c) {
		panic(mat.ErrIndexOutOfRange)
	}
	return m.data[r*m.cols+c]
}

// T implements mat.Matrix by returning a lazy gonum transpose view.
func (m *Matrix) T() mat.Matrix { return mat.Transpose{Matrix: m} }

// Row returns a copy of row i.
func (m *Matrix) Row(i int) ([]float64, error) {
	if i < 0 || i >= m.rows {
		return nil, errors.NewIndexError("Matrix.Row", i, 0, m.rows, m.cols)
	}
	out := make([]float64, m.cols)
	copy(out, m.data[i*m.cols:(i+1)*m.cols])
	return out, nil
}

// Column returns a copy of column j.
func (m *Matrix) Column(j int) ([]float64, error) {
	if j < 0 || j >= m.cols {
		return nil, errors.NewIndexError("Matrix.Column", 0, j, m.rows, m.cols)
	}
	out := make([]float64, m.rows)
	for i := 0; i < m.rows; i++ {
		out[i] = m.data[i*m.cols+j]
	}
	return out, nil
}

// RowView returns row i without copying. Callers must not modify it.
// It panics on an out-of-range index.
func (m *Matrix) RowView(i int) []float64 {
	if i < 0 || i >= m.rows {
		panic(mat.ErrRowAccess)
	}
	return m.data[i*m.cols : (i+1)*m.cols : (i+1)*m.cols]
}

// SliceRows returns rows [start, end) as a Matrix sharing m's storage.
func (m *Matrix) SliceRows(start, end int) (*Matrix, error) {
	if start < 0 || end > m.rows || start > end {
		return nil, errors.NewShapeError("Matrix.SliceRows", "row range out of bounds", []int{m.rows}, []int{start, end})
	}
	return &Matrix{rows: end - start, cols: m.cols, data: m.data[start*m.cols : end*m.cols : end*m.cols]}, nil
}

// Transpose returns a new cols×rows matrix.
func (m *Matrix) Transpose() *Matrix {
	t := &Matrix{rows: m.cols, cols: m.rows, data: make([]float64, len(m.data))}
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			t.data[j*m.rows+i] = m.data[i*m.cols+j]
		}
	}
	return t
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	data := make([]float64, len(m.data))
	copy(data, m.data)
	return &Matrix{rows: m.rows, cols: m.cols, data: data}
}

// ToRows returns the contents as freshly allocated rows.
func (m *Matrix) ToRows() [][]float64 {
	out := make([][]float64, m.rows)
	for i := range out {
		out[i] = make([]float64, m.cols)
		copy(out[i], m.data[i*m.cols:(i+1)*m.cols])
	}
	return out
}

// AddDiagonal returns m + v·I. m must be square.
func (m *Matrix) AddDiagonal(v float64) (*Matrix, error) {
	if m.rows != m.cols {
		return nil, errors.NewShapeError("Matrix.AddDiagonal", "matrix is not square", []int{m.rows, m.rows}, []int{m.rows, m.cols})
	}
	out := m.Clone()
	for i := 0; i < m.rows; i++ {
		out.data[i*m.cols+i] += v
	}
	return out, nil
}

// Mul returns the product m·b.
func (m *Matrix) Mul(b *Matrix) (*Matrix, error) {
	if m.cols != b.rows {
		return nil, errors.NewDimensionError("Matrix.Mul", m.cols, b.rows, 0)
	}
	out := &Matrix{rows: m.rows, cols: b.cols, data: make([]float64, m.rows*b.cols)}
	for i := 0; i < m.rows; i++ {
		for k := 0; k < m.cols; k++ {
			a := m.data[i*m.cols+k]
			if a == 0 {
				continue
			}
			for j := 0; j < b.cols; j++ {
				out.data[i*b.cols+j] += a * b.data[k*b.cols+j]
			}
		}
	}
	return out, nil
}

// MulVec returns m·x.
func (m *Matrix) MulVec(x []float64) ([]float64, error) {
	if len(x) != m.cols {
		return nil, errors.NewDimensionError("Matrix.MulVec", m.cols, len(x), 1)
	}
	out := make([]float64, m.rows)
	for i := 0; i < m.rows; i++ {
		var s float64
		row := m.data[i*m.cols : (i+1)*m.cols]
		for j, v := range row {
			s += v * x[j]
		}
		out[i] = s
	}
	return out, nil
}

// String formats the matrix one row per line.
func (m *Matrix) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Matrix(%dx%d)", m.rows, m.cols)
	for i := 0; i < m.rows; i++ {
		b.WriteString("\n[")
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%.6g", m.data[i*m.cols+j])
		}
		b.WriteByte(']')
	}
	return b.String()
}
