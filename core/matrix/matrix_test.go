package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gaussproc/pkg/errors"
)

func TestNew(t *testing.T) {
	m, err := New(2, 3)
	require.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	v, err := m.Get(1, 2)
	require.NoError(t, err)
	assert.Zero(t, v)

	_, err = New(-1, 2)
	var shapeErr *errors.ShapeError
	assert.True(t, errors.As(err, &shapeErr))
}

func TestFromRows(t *testing.T) {
	tests := []struct {
		name    string
		rows    [][]float64
		wantR   int
		wantC   int
		wantErr bool
	}{
		{"2x2", [][]float64{{1, 2}, {3, 4}}, 2, 2, false},
		{"column", [][]float64{{1}, {2}, {3}}, 3, 1, false},
		{"empty", nil, 0, 0, false},
		{"ragged", [][]float64{{1, 2}, {3}}, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := FromRows(tt.rows)
			if tt.wantErr {
				var shapeErr *errors.ShapeError
				require.True(t, errors.As(err, &shapeErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantR, m.Rows())
			assert.Equal(t, tt.wantC, m.Cols())
		})
	}
}

func TestFromRows_CopiesInput(t *testing.T) {
	src := [][]float64{{1, 2}}
	m, err := FromRows(src)
	require.NoError(t, err)
	src[0][0] = 99
	v, _ := m.Get(0, 0)
	assert.Equal(t, 1.0, v)
}

func TestGetSet_OutOfRange(t *testing.T) {
	m, _ := FromRows([][]float64{{1, 2}, {3, 4}})

	for _, idx := range [][2]int{{2, 0}, {0, 2}, {-1, 0}, {0, -1}} {
		_, err := m.Get(idx[0], idx[1])
		var indexErr *errors.IndexError
		require.True(t, errors.As(err, &indexErr), "Get%v", idx)
		assert.Equal(t, idx[0], indexErr.Row)

		err = m.Set(idx[0], idx[1], 1)
		require.True(t, errors.As(err, &indexErr), "Set%v", idx)
	}

	require.NoError(t, m.Set(1, 0, 7))
	v, _ := m.Get(1, 0)
	assert.Equal(t, 7.0, v)
}

func TestRowColumn_AreCopies(t *testing.T) {
	m, _ := FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})

	row, err := m.Row(1)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 5, 6}, row)
	row[0] = -1
	v, _ := m.Get(1, 0)
	assert.Equal(t, 4.0, v)

	col, err := m.Column(2)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 6}, col)

	_, err = m.Row(2)
	assert.Error(t, err)
	_, err = m.Column(3)
	assert.Error(t, err)
}

func TestTranspose(t *testing.T) {
	m, _ := FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
	tr := m.Transpose()

	assert.Equal(t, [][]float64{{1, 4}, {2, 5}, {3, 6}}, tr.ToRows())
	assert.Equal(t, m.ToRows(), tr.Transpose().ToRows())
	// original untouched
	assert.Equal(t, 2, m.Rows())
}

func TestCloneIndependent(t *testing.T) {
	m, _ := FromRows([][]float64{{1, 2}, {3, 4}})
	c := m.Clone()
	require.NoError(t, c.Set(0, 0, 100))
	v, _ := m.Get(0, 0)
	assert.Equal(t, 1.0, v)
}

func TestAddDiagonalAndIdentity(t *testing.T) {
	m, _ := FromRows([][]float64{{1, 2}, {3, 4}})
	out, err := m.AddDiagonal(0.5)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1.5, 2}, {3, 4.5}}, out.ToRows())

	_, err = FromColumn([]float64{1, 2}).AddDiagonal(1)
	assert.Error(t, err)

	assert.Equal(t, [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, Identity(3).ToRows())
}

func TestMul(t *testing.T) {
	a, _ := FromRows([][]float64{{1, 2}, {3, 4}})
	b, _ := FromRows([][]float64{{5}, {6}})

	p, err := a.Mul(b)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{17}, {39}}, p.ToRows())

	v, err := a.MulVec([]float64{1, 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 7}, v)

	_, err = b.Mul(b)
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}

func TestGonumInterop(t *testing.T) {
	m, _ := FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})

	d := m.Dense()
	assert.True(t, mat.Equal(d, m))

	var prod mat.Dense
	prod.Mul(m, m.T())
	assert.Equal(t, 14.0, prod.At(0, 0))
	assert.Equal(t, 77.0, prod.At(1, 1))

	back := FromGonum(&prod)
	assert.Equal(t, [][]float64{{14, 32}, {32, 77}}, back.ToRows())

	sub := d.Slice(0, 2, 1, 3)
	assert.Equal(t, [][]float64{{2, 3}, {5, 6}}, FromGonum(sub).ToRows())

	assert.Panics(t, func() { m.At(5, 0) })
}

func TestMatrix_SliceRows(t *testing.T) {
	m, err := FromRows([][]float64{{1, 2}, {3, 4}, {5, 6}})
	require.NoError(t, err)

	s, err := m.SliceRows(1, 3)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{3, 4}, {5, 6}}, s.ToRows())

	// the slice shares storage with its parent
	require.NoError(t, s.Set(0, 0, 30))
	assert.Equal(t, 30.0, m.At(1, 0))

	empty, err := m.SliceRows(2, 2)
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	for _, r := range [][2]int{{-1, 1}, {2, 1}, {0, 4}} {
		_, err := m.SliceRows(r[0], r[1])
		assert.Error(t, err, "%v", r)
	}
}
