package model

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/gaussproc/pkg/errors"
)

func sampleState() *GPState {
	return &GPState{
		ModelType:     "GaussianProcessRegressor",
		Version:       GPStateVersion,
		KernelKind:    "rbf",
		KernelParams:  map[string]float64{"length_scale": 1, "variance": 1},
		NoiseVariance: 1e-10,
		XTrain:        [][]float64{{0}, {1}, {2}},
		YTrain:        []float64{0, 1, 4},
		Metadata:      map[string]interface{}{"log_marginal_likelihood": -3.5},
	}
}

func TestGPState_Validate(t *testing.T) {
	require.NoError(t, sampleState().Validate())

	tests := []struct {
		name   string
		mutate func(s *GPState)
	}{
		{"missing model type", func(s *GPState) { s.ModelType = "" }},
		{"bad version", func(s *GPState) { s.Version = "0" }},
		{"missing kernel", func(s *GPState) { s.KernelKind = "" }},
		{"negative noise", func(s *GPState) { s.NoiseVariance = -1 }},
		{"no rows", func(s *GPState) { s.XTrain = nil; s.YTrain = nil }},
		{"length mismatch", func(s *GPState) { s.YTrain = s.YTrain[:2] }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sampleState()
			tt.mutate(s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestGPState_CloneIsDeep(t *testing.T) {
	s := sampleState()
	c := s.Clone()
	require.Equal(t, s, c)

	c.XTrain[0][0] = 99
	c.YTrain[0] = 99
	c.KernelParams["variance"] = 99
	assert.Equal(t, 0.0, s.XTrain[0][0])
	assert.Equal(t, 0.0, s.YTrain[0])
	assert.Equal(t, 1.0, s.KernelParams["variance"])
}

func TestGPState_JSONRoundTrip(t *testing.T) {
	data, err := sampleState().ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kernel_kind": "rbf"`)

	var back GPState
	require.NoError(t, back.FromJSON(data))
	assert.Equal(t, sampleState(), &back)

	assert.Error(t, back.FromJSON([]byte("{not json")))
}

func TestSaveLoadModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gp.gob")
	require.NoError(t, SaveModel(sampleState(), path))

	loaded, err := LoadModel(path)
	require.NoError(t, err)
	assert.Equal(t, sampleState(), loaded)

	_, err = LoadModel(filepath.Join(t.TempDir(), "missing.gob"))
	assert.Error(t, err)
}

func TestLoadModelFromReader_ValidatesState(t *testing.T) {
	bad := sampleState()
	bad.YTrain = bad.YTrain[:1]

	var buf bytes.Buffer
	require.NoError(t, SaveModelToWriter(bad, &buf))

	_, err := LoadModelFromReader(&buf)
	var shapeErr *errors.ShapeError
	assert.True(t, errors.As(err, &shapeErr))

	assert.Error(t, SaveModelToWriter(nil, &buf))
}
