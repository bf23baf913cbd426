// Package model はgaussprocの推定器が満たすインターフェースと、
// 学習済み状態の保持・永続化のための型を提供します。
package model

import (
	"github.com/YuminosukeSato/gaussproc/core/matrix"
)

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X *matrix.Matrix, y []float64) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は各テスト点の予測平均を返す
	Predict(X *matrix.Matrix) ([]float64, error)
}

// Prediction holds a predictive mean and, when requested, the predictive
// standard deviation at each test point. Std is nil when it was not asked for.
type Prediction struct {
	Mean []float64
	Std  []float64
}

// UncertaintyPredictor は予測平均と標準偏差を返すモデルのインターフェース
type UncertaintyPredictor interface {
	PredictWithUncertainty(X *matrix.Matrix) (*Prediction, error)
}

// Source supplies uniform variates in [0, 1). *rand.Rand from math/rand/v2
// satisfies it, so callers can seed it for reproducible draws.
type Source interface {
	Float64() float64
}

// Sampler は事後分布からサンプルを生成するモデルのインターフェース
type Sampler interface {
	// Sample returns nSamples realisations, each with one value per row of X.
	Sample(X *matrix.Matrix, nSamples int, rng Source) ([][]float64, error)
}

// PosteriorSource is everything a downstream consumer needs from a fitted
// Gaussian process: means, uncertainties and sampled curves.
type PosteriorSource interface {
	Predictor
	UncertaintyPredictor
	Sampler
}

// Estimator は学習と予測の両方を行うモデル
type Estimator interface {
	Fitter
	Predictor
}

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns the coefficient of determination R² of the prediction.
	Score(X *matrix.Matrix, y []float64) (float64, error)
}

// ParameterGetter is the interface for models that expose their parameters.
type ParameterGetter interface {
	GetParams() map[string]interface{}
}

// ParameterSetter is the interface for models that allow parameter modification.
type ParameterSetter interface {
	SetParams(params map[string]interface{}) error
}

// StateExporter は学習済み状態を書き出し・復元できるモデルのインターフェース
type StateExporter interface {
	ExportState() (*GPState, error)
	ImportState(state *GPState) error
}
