package model

import (
	"encoding/json"
	"math"

	"github.com/YuminosukeSato/gaussproc/pkg/errors"
)

// GPStateVersion is written into every exported GPState.
const GPStateVersion = "1"

// GPState は学習済みガウス過程回帰モデルの状態（シリアライゼーション用）
//
// The Cholesky factor and dual coefficients are not stored; they are
// recomputed from the training data on import, so a tampered state cannot
// smuggle in an inconsistent factorisation.
type GPState struct {
	// ModelType はモデルの種類
	ModelType string `json:"model_type"`

	// Version は互換性チェック用のバージョン
	Version string `json:"version"`

	// KernelKind はカーネルの種類 ("rbf", "periodic", "rational_quadratic")
	KernelKind string `json:"kernel_kind"`

	// KernelParams はカーネルのハイパーパラメータ
	KernelParams map[string]float64 `json:"kernel_params"`

	// NoiseVariance はGram行列の対角に加えるノイズ分散
	NoiseVariance float64 `json:"noise_variance"`

	// NormalizeY は目的変数を標準化して学習したかどうか
	NormalizeY bool `json:"normalize_y"`

	// XTrain は n_samples 行の訓練入力
	XTrain [][]float64 `json:"x_train"`

	// YTrain は元のスケールの訓練目的変数
	YTrain []float64 `json:"y_train"`

	// Metadata は追加のメタデータ（対数周辺尤度など）
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// ToJSON はGPStateをJSON形式にシリアライズ
func (s *GPState) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshal GPState")
	}
	return data, nil
}

// FromJSON はJSON形式からGPStateをデシリアライズ
func (s *GPState) FromJSON(data []byte) error {
	if err := json.Unmarshal(data, s); err != nil {
		return errors.Wrap(err, "unmarshal GPState")
	}
	return nil
}

// Validate はGPStateの妥当性を検証
func (s *GPState) Validate() error {
	if s.ModelType == "" {
		return errors.NewValidationError("model_type", "is required", s.ModelType)
	}
	if s.Version != GPStateVersion {
		return errors.NewValidationError("version", "unsupported state version", s.Version)
	}
	if s.KernelKind == "" {
		return errors.NewValidationError("kernel_kind", "is required", s.KernelKind)
	}
	if s.NoiseVariance < 0 || math.IsNaN(s.NoiseVariance) {
		return errors.NewValidationError("noise_variance", "must be non-negative", s.NoiseVariance)
	}
	if len(s.XTrain) == 0 {
		return errors.NewShapeError("GPState.Validate", "no training rows", nil, nil)
	}
	if len(s.XTrain) != len(s.YTrain) {
		return errors.NewShapeError("GPState.Validate", "x_train and y_train lengths differ",
			[]int{len(s.XTrain)}, []int{len(s.YTrain)})
	}
	return nil
}

// Clone はGPStateのディープコピーを作成
func (s *GPState) Clone() *GPState {
	clone := &GPState{
		ModelType:     s.ModelType,
		Version:       s.Version,
		KernelKind:    s.KernelKind,
		NoiseVariance: s.NoiseVariance,
		NormalizeY:    s.NormalizeY,
		KernelParams:  make(map[string]float64, len(s.KernelParams)),
		XTrain:        make([][]float64, len(s.XTrain)),
		YTrain:        make([]float64, len(s.YTrain)),
		Metadata:      make(map[string]interface{}, len(s.Metadata)),
	}
	for k, v := range s.KernelParams {
		clone.KernelParams[k] = v
	}
	for i, row := range s.XTrain {
		clone.XTrain[i] = append([]float64(nil), row...)
	}
	copy(clone.YTrain, s.YTrain)
	for k, v := range s.Metadata {
		clone.Metadata[k] = v
	}
	return clone
}
