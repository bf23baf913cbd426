package gp

import (
	"github.com/YuminosukeSato/gaussproc/core/matrix"
	"github.com/YuminosukeSato/gaussproc/core/model"
	"github.com/YuminosukeSato/gaussproc/pkg/errors"
	"github.com/YuminosukeSato/gaussproc/pkg/log"
)

// DefaultBatchSize is the number of test rows PredictWithUncertaintyBatched
// evaluates at once when batchSize is not positive.
const DefaultBatchSize = 1024

// iterateChunks calls fn on consecutive blocks of at most chunkSize rows of
// X. Chunks share storage with X.
func iterateChunks(X *matrix.Matrix, chunkSize int, fn func(chunk *matrix.Matrix, startRow int) error) error {
	for start := 0; start < X.Rows(); start += chunkSize {
		end := min(start+chunkSize, X.Rows())
		chunk, err := X.SliceRows(start, end)
		if err != nil {
			return err
		}
		if err := fn(chunk, start); err != nil {
			return errors.Wrapf(err, "rows %d-%d", start, end)
		}
	}
	return nil
}

// PredictWithUncertaintyBatched is PredictWithUncertainty for large test
// sets. Rows are evaluated batchSize at a time, so the cross-covariance held
// in memory is at most batchSize×n instead of m×n. Results are identical to
// the unbatched call.
func (p *Posterior) PredictWithUncertaintyBatched(X *matrix.Matrix, batchSize int) (*model.Prediction, error) {
	const op = "GaussianProcessRegressor.PredictWithUncertaintyBatched"
	if err := p.checkTest(op, X); err != nil {
		return nil, err
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if X.Rows() <= batchSize {
		return p.PredictWithUncertainty(X)
	}

	out := &model.Prediction{
		Mean: make([]float64, X.Rows()),
		Std:  make([]float64, X.Rows()),
	}
	err := iterateChunks(X, batchSize, func(chunk *matrix.Matrix, start int) error {
		pred, err := p.predictWithUncertainty(chunk, start)
		if err != nil {
			return err
		}
		copy(out.Mean[start:], pred.Mean)
		copy(out.Std[start:], pred.Std)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PredictWithUncertaintyBatched evaluates X in blocks of batchSize rows.
// See Posterior.PredictWithUncertaintyBatched.
func (g *GaussianProcessRegressor) PredictWithUncertaintyBatched(X *matrix.Matrix, batchSize int) (*Prediction, error) {
	p, err := g.posterior("PredictWithUncertaintyBatched")
	if err != nil {
		return nil, err
	}
	g.logInference(log.OperationPredictStd, X, log.BatchSizeKey, batchSize)
	return p.PredictWithUncertaintyBatched(X, batchSize)
}
