package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/gaussproc/pkg/errors"
)

// minStd floors predictive standard deviations so a zero-variance prediction
// at a training point does not produce an infinite log density.
const minStd = 1e-9

func checkProbabilistic(op string, yTrue, mean, std *mat.VecDense) (int, error) {
	n, err := checkPair(op, yTrue, mean)
	if err != nil {
		return 0, err
	}
	if std.Len() != n {
		return 0, errors.NewDimensionError(op, n, std.Len(), 0)
	}
	for i := 0; i < n; i++ {
		if s := std.AtVec(i); s < 0 || math.IsNaN(s) {
			return 0, errors.NewValidationError("std", "must be non-negative", s)
		}
	}
	return n, nil
}

// NLPD は負の対数予測密度（Negative Log Predictive Density）の平均を計算する。
// Each target is scored under N(mean_i, std_i²); lower is better.
func NLPD(yTrue, mean, std *mat.VecDense) (float64, error) {
	n, err := checkProbabilistic("NLPD", yTrue, mean, std)
	if err != nil {
		return 0, err
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := distuv.Normal{Mu: mean.AtVec(i), Sigma: math.Max(std.AtVec(i), minStd)}
		sum -= d.LogProb(yTrue.AtVec(i))
	}
	return sum / float64(n), nil
}

// MSLL は平均標準化対数損失（Mean Standardised Log Loss）を計算する。
// It is the NLPD minus the loss of a trivial model that predicts the
// training mean and variance everywhere, so 0 means no better than that
// baseline and negative values are better.
func MSLL(yTrue, mean, std, yTrain *mat.VecDense) (float64, error) {
	n, err := checkProbabilistic("MSLL", yTrue, mean, std)
	if err != nil {
		return 0, err
	}
	if yTrain.Len() == 0 {
		return 0, errors.Wrap(errors.ErrEmptyData, "MSLL: training targets")
	}
	trainMean, trainVar := stat.PopMeanVariance(mat.Col(nil, 0, yTrain), nil)
	baseline := distuv.Normal{Mu: trainMean, Sigma: math.Max(math.Sqrt(trainVar), minStd)}

	var sum float64
	for i := 0; i < n; i++ {
		y := yTrue.AtVec(i)
		model := distuv.Normal{Mu: mean.AtVec(i), Sigma: math.Max(std.AtVec(i), minStd)}
		sum += baseline.LogProb(y) - model.LogProb(y)
	}
	return sum / float64(n), nil
}

// Coverage returns the fraction of targets that fall inside
// mean ± z·std. For calibrated Gaussian predictions z = 1.96 covers about 95%.
func Coverage(yTrue, mean, std *mat.VecDense, z float64) (float64, error) {
	n, err := checkProbabilistic("Coverage", yTrue, mean, std)
	if err != nil {
		return 0, err
	}
	if !(z > 0) {
		return 0, errors.NewValidationError("z", "must be positive", z)
	}
	inside := 0
	for i := 0; i < n; i++ {
		if math.Abs(yTrue.AtVec(i)-mean.AtVec(i)) <= z*std.AtVec(i) {
			inside++
		}
	}
	return float64(inside) / float64(n), nil
}
