// Package metrics provides point-prediction regression scores and scores
// for probabilistic (mean and standard deviation) predictions.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/gaussproc/pkg/errors"
)

// checkPair validates that yTrue and yPred are non-empty and the same length.
func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.Wrapf(errors.ErrEmptyData, "%s", op)
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

// residuals returns yTrue − yPred.
func residuals(yTrue, yPred *mat.VecDense) []float64 {
	var r mat.VecDense
	r.SubVec(yTrue, yPred)
	return r.RawVector().Data
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	r := residuals(yTrue, yPred)
	return floats.Dot(r, r) / float64(n), nil
}

// MSEMatrix は n×1 行列形式の入力に対してMSEを計算する
func MSEMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()
	if rTrue == 0 || cTrue == 0 {
		return 0, errors.Wrap(errors.ErrEmptyData, "MSEMatrix")
	}
	if cTrue != 1 || cPred != 1 {
		return 0, errors.NewShapeError("MSEMatrix", "must be a column vector (n×1 matrix)", []int{rTrue, 1}, []int{rPred, cPred})
	}
	if rTrue != rPred {
		return 0, errors.NewDimensionError("MSEMatrix", rTrue, rPred, 0)
	}
	return MSE(mat.NewVecDense(rTrue, mat.Col(nil, 0, yTrue)), mat.NewVecDense(rPred, mat.Col(nil, 0, yPred)))
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return floats.Norm(residuals(yTrue, yPred), 1) / float64(n), nil
}

// R2Score は決定係数（R²）を計算する。
// yTrue が定数の場合はエラーを返す。
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	if _, err := checkPair("R2Score", yTrue, yPred); err != nil {
		return 0, err
	}
	y := mat.Col(nil, 0, yTrue)
	mean := stat.Mean(y, nil)

	var tss float64
	for _, v := range y {
		tss += (v - mean) * (v - mean)
	}
	if tss == 0 {
		return 0, errors.NewValidationError("y_true", "total sum of squares is zero (no variance)", mean)
	}
	r := residuals(yTrue, yPred)
	return 1 - floats.Dot(r, r)/tss, nil
}

// MAPE は平均絶対パーセンテージ誤差を計算する。yTrue が0の点は除外する。
func MAPE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MAPE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	var sum float64
	valid := 0
	for i := 0; i < n; i++ {
		t := yTrue.AtVec(i)
		if t == 0 {
			continue
		}
		sum += math.Abs(t-yPred.AtVec(i)) / math.Abs(t)
		valid++
	}
	if valid == 0 {
		return 0, errors.NewValidationError("y_true", "all values are zero", n)
	}
	return sum / float64(valid) * 100, nil
}

// ExplainedVarianceScore は説明分散スコア 1 − Var(yTrue − yPred)/Var(yTrue) を計算する
func ExplainedVarianceScore(yTrue, yPred *mat.VecDense) (float64, error) {
	if _, err := checkPair("ExplainedVarianceScore", yTrue, yPred); err != nil {
		return 0, err
	}
	_, varTrue := stat.PopMeanVariance(mat.Col(nil, 0, yTrue), nil)
	if varTrue == 0 {
		return 0, errors.NewValidationError("y_true", "no variance", varTrue)
	}
	_, varDiff := stat.PopMeanVariance(residuals(yTrue, yPred), nil)
	return 1 - varDiff/varTrue, nil
}
