package errors

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("GaussianProcessRegressor", "Predict")

	want := "gaussproc: GaussianProcessRegressor: this model is not fitted yet. Call Fit() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var notFittedErr *NotFittedError
	if !As(err, &notFittedErr) {
		t.Fatal("Error should be castable to *NotFittedError")
	}
	if notFittedErr.Method != "Predict" {
		t.Errorf("Method = %q, want Predict", notFittedErr.Method)
	}

	// スタックトレースの存在確認
	formatted := fmt.Sprintf("%+v", err)
	if !strings.Contains(formatted, "errors_test.go") {
		t.Error("Expected stack trace to contain test file name")
	}
}

func TestNewShapeError(t *testing.T) {
	tests := []struct {
		name     string
		expected []int
		got      []int
		wantMsg  string
	}{
		{
			name:     "with shapes",
			expected: []int{3},
			got:      []int{2},
			wantMsg:  "gaussproc: Fit: shape error: X and y lengths differ. Expected shape [3], got [2]",
		},
		{
			name:    "reason only",
			wantMsg: "gaussproc: Fit: shape error: X and y lengths differ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewShapeError("Fit", "X and y lengths differ", tt.expected, tt.got)
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}
			var shapeErr *ShapeError
			if !As(err, &shapeErr) {
				t.Error("Error should be castable to *ShapeError")
			}
		})
	}
}

func TestNewIndexError(t *testing.T) {
	err := NewIndexError("Matrix.Get", 3, 0, 2, 2)

	want := "gaussproc: Matrix.Get: index (3, 0) out of range for 2x2 matrix"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
	var indexErr *IndexError
	if !As(err, &indexErr) {
		t.Fatal("Error should be castable to *IndexError")
	}
	if indexErr.Row != 3 || indexErr.Rows != 2 {
		t.Errorf("unexpected fields %+v", indexErr)
	}
}

func TestNewNotPositiveDefiniteError(t *testing.T) {
	err := NewNotPositiveDefiniteError("Cholesky", 1, 0)

	var npdErr *NotPositiveDefiniteError
	if !As(err, &npdErr) {
		t.Fatal("Error should be castable to *NotPositiveDefiniteError")
	}
	if npdErr.Row != 1 {
		t.Errorf("Row = %d, want 1", npdErr.Row)
	}
	if !strings.Contains(err.Error(), "row 1") {
		t.Errorf("message should name the row: %s", err.Error())
	}

	wrapped := Wrap(err, "fit failed")
	if !As(wrapped, &npdErr) {
		t.Error("wrapped error should still be castable")
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Predict", 1, 2, 1)

	want := "gaussproc: Predict: dimension mismatch on axis 1 (features). Expected 1, got 2"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("length_scale", "must be positive", -1.0)

	want := "gaussproc: validation failed for parameter 'length_scale': must be positive (got: -1)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestMarshalZerologObject(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	logger.Error().EmbedObject(&NotPositiveDefiniteError{Op: "Cholesky", Row: 2, Value: -1e-12}).Msg("fit failed")

	out := buf.String()
	for _, want := range []string{`"type":"NotPositiveDefiniteError"`, `"row":2`, `"operation":"Cholesky"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %s missing %s", out, want)
		}
	}
}

func TestWarn(t *testing.T) {
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(func(w error) {})

	Warn(NewNegativeVarianceWarning(4, -0.3, 1.0))

	if len(got) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(got))
	}
	var nv *NegativeVarianceWarning
	if !As(got[0], &nv) || nv.Index != 4 {
		t.Errorf("unexpected warning %v", got[0])
	}
}

func TestWarn_ZerologTakesPrecedence(t *testing.T) {
	var plain, structured int
	SetWarningHandler(func(w error) { plain++ })
	SetZerologWarnFunc(func(w error) { structured++ })
	defer func() {
		SetZerologWarnFunc(nil)
		SetWarningHandler(func(w error) {})
	}()

	Warn(NewNegativeVarianceWarning(0, -1, 1))

	if plain != 0 || structured != 1 {
		t.Errorf("plain=%d structured=%d, want 0 and 1", plain, structured)
	}
}

func TestCheckNumericalStability(t *testing.T) {
	if err := CheckNumericalStability("Fit", []float64{1, 2, 3}); err != nil {
		t.Errorf("unexpected error %v", err)
	}

	err := CheckNumericalStability("Fit", []float64{1, math.NaN(), math.Inf(1)})
	var numErr *NumericalInstabilityError
	if !As(err, &numErr) {
		t.Fatalf("expected NumericalInstabilityError, got %v", err)
	}
	if len(numErr.Values) != 2 {
		t.Errorf("expected 2 offending values, got %d", len(numErr.Values))
	}

	if err := CheckScalar("LogMarginalLikelihood", math.Inf(-1)); err == nil {
		t.Error("CheckScalar should reject -Inf")
	}
}

type tinyMatrix [][]float64

func (m tinyMatrix) Dims() (int, int)    { return len(m), len(m[0]) }
func (m tinyMatrix) At(i, j int) float64 { return m[i][j] }

func TestCheckMatrix(t *testing.T) {
	if err := CheckMatrix("Fit", tinyMatrix{{1, 2}, {3, 4}}); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	if err := CheckMatrix("Fit", tinyMatrix{{1, 2}, {math.NaN(), 4}}); err == nil {
		t.Error("expected error for NaN entry")
	}
}

func TestWrapAndIs(t *testing.T) {
	wrapped := Wrapf(ErrEmptyData, "in %s", "Fit")

	if !Is(wrapped, ErrEmptyData) {
		t.Error("Expected Is(wrapped, ErrEmptyData) to be true")
	}
	if !strings.Contains(wrapped.Error(), "in Fit") {
		t.Error("Expected wrapped error to contain wrapping message")
	}
}
