package gp

import (
	"github.com/YuminosukeSato/gaussproc/core/matrix"
	"github.com/YuminosukeSato/gaussproc/core/model"
	"github.com/YuminosukeSato/gaussproc/kernel"
	"github.com/YuminosukeSato/gaussproc/pkg/errors"
	"github.com/YuminosukeSato/gaussproc/pkg/log"
)

// ExportState は学習済みモデルをシリアライズ可能な形で書き出す
func (g *GaussianProcessRegressor) ExportState() (*model.GPState, error) {
	p, err := g.posterior("ExportState")
	if err != nil {
		return nil, err
	}
	return &model.GPState{
		ModelType:     modelName,
		Version:       model.GPStateVersion,
		KernelKind:    p.kernel.Kind().String(),
		KernelParams:  p.kernel.Params(),
		NoiseVariance: p.noiseVariance,
		NormalizeY:    p.yScaler != nil,
		XTrain:        p.xTrain.ToRows(),
		YTrain:        append([]float64(nil), p.yTrain...),
		Metadata: map[string]interface{}{
			"log_marginal_likelihood": p.lml,
			"n_features":              p.NFeatures(),
		},
	}, nil
}

// ImportState restores a model written by ExportState. The kernel and noise
// settings are taken from the state and the posterior is refitted, so an
// inconsistent state fails the same way Fit would and leaves the regressor
// unfitted with its previous hyperparameters.
func (g *GaussianProcessRegressor) ImportState(state *model.GPState) error {
	if err := g.importState(state); err != nil {
		g.state.Reset()
		g.logger.Warn("import failed", err, log.OperationKey, log.OperationImportState)
		return err
	}
	return nil
}

func (g *GaussianProcessRegressor) importState(state *model.GPState) error {
	if state == nil {
		return errors.NewValidationError("state", "is nil", nil)
	}
	if err := state.Validate(); err != nil {
		return err
	}
	kind, err := kernel.ParseKind(state.KernelKind)
	if err != nil {
		return err
	}
	k, err := kernel.New(kind, state.KernelParams)
	if err != nil {
		return err
	}
	X, err := matrix.FromRows(state.XTrain)
	if err != nil {
		return err
	}

	hp := g.hyperparams()
	hp.kernel = k
	hp.noiseVariance = state.NoiseVariance
	hp.normalizeY = state.NormalizeY
	if _, err := g.fitWith(hp, X, state.YTrain); err != nil {
		return err
	}
	g.setHyperparams(hp)
	return nil
}
