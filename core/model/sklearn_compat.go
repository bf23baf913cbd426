package model

import (
	"gonum.org/v1/gonum/mat"
)

// SKLearnCompatible はscikit-learn互換のインターフェース
type SKLearnCompatible interface {
	// GetParams はモデルのハイパーパラメータを取得
	GetParams(deep bool) map[string]interface{}

	// SetParams はモデルのハイパーパラメータを設定
	SetParams(params map[string]interface{}) error
}

// RegressorMixin はgonum行列を受け取る回帰器のインターフェース
type RegressorMixin interface {
	SKLearnCompatible

	// Fit は n_samples × n_features の X と n_samples × 1 の y で学習
	Fit(X, y mat.Matrix) error

	// Predict は n_samples × 1 の予測平均を返す
	Predict(X mat.Matrix) (mat.Matrix, error)

	// Score は決定係数R²を計算
	Score(X, y mat.Matrix) (float64, error)
}

// ProbabilisticRegressorMixin は予測分布を返す回帰器のインターフェース
// (scikit-learn の predict(return_std=True) / sample_y に相当)
type ProbabilisticRegressorMixin interface {
	RegressorMixin

	// PredictStd は予測平均と標準偏差をそれぞれ n_samples × 1 で返す
	PredictStd(X mat.Matrix) (mean, std mat.Matrix, err error)

	// SampleY は n_samples × nDraws の事後サンプルを返す
	SampleY(X mat.Matrix, nDraws int, rng Source) (mat.Matrix, error)

	// LogMarginalLikelihood は学習データの対数周辺尤度を返す
	LogMarginalLikelihood() (float64, error)
}

// Transformer はデータ変換のインターフェース
type Transformer interface {
	// Fit は変換に必要なパラメータを学習する
	Fit(X mat.Matrix) error

	// Transform はデータを変換する
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform はFitとTransformを同時に実行する
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// InverseTransformer は逆変換可能な変換器のインターフェース
type InverseTransformer interface {
	Transformer

	// InverseTransform は変換を逆方向に適用
	InverseTransform(X mat.Matrix) (mat.Matrix, error)
}
