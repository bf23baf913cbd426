package model

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/YuminosukeSato/gaussproc/pkg/errors"
)

// SaveModel はGPStateをgob形式でファイルに保存する
//
// 使用例:
//
//	state, err := reg.ExportState()
//	if err != nil { ... }
//	err = model.SaveModel(state, "gp.gob")
func SaveModel(state *GPState, filename string) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "failed to close file")
		}
	}()
	return SaveModelToWriter(state, file)
}

// LoadModel はファイルからGPStateを読み込み、検証する
//
//	state, err := model.LoadModel("gp.gob")
//	if err != nil { ... }
//	err = reg.ImportState(state)
func LoadModel(filename string) (*GPState, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer file.Close()
	return LoadModelFromReader(file)
}

// SaveModelToWriter はGPStateをio.Writerに保存する
func SaveModelToWriter(state *GPState, w io.Writer) error {
	if state == nil {
		return errors.NewValidationError("state", "is nil", nil)
	}
	if err := gob.NewEncoder(w).Encode(state); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadModelFromReader はio.ReaderからGPStateを読み込む
func LoadModelFromReader(r io.Reader) (*GPState, error) {
	var state GPState
	if err := gob.NewDecoder(r).Decode(&state); err != nil {
		return nil, errors.Wrap(err, "failed to decode model")
	}
	if err := state.Validate(); err != nil {
		return nil, err
	}
	return &state, nil
}
