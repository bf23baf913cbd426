// Package plotting renders fitted Gaussian processes with gonum/plot: the
// posterior mean, a shaded ±z·σ band, optional posterior draws and the
// training points.
package plotting

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/YuminosukeSato/gaussproc/core/matrix"
	"github.com/YuminosukeSato/gaussproc/core/model"
	"github.com/YuminosukeSato/gaussproc/pkg/errors"
)

// DefaultWidth and DefaultHeight are the canvas size Save uses for zero
// dimensions.
const (
	DefaultWidth  = 6 * vg.Inch
	DefaultHeight = 4 * vg.Inch
)

var bandColor = color.NRGBA{R: 70, G: 130, B: 180, A: 64}

// jointSampler is implemented by posteriors that can draw correlated
// curves; Posterior prefers it so samples look smooth.
type jointSampler interface {
	SampleJoint(X *matrix.Matrix, nSamples int, rng model.Source) ([][]float64, error)
}

// Config controls what Posterior draws.
type Config struct {
	Title  string
	XLabel string
	YLabel string

	// Z is the half-width of the band in standard deviations.
	Z float64

	// Samples posterior draws are overlaid when positive. Rng must be set.
	Samples int
	Rng     model.Source

	// TrainX and TrainY are scattered on top when non-empty.
	TrainX []float64
	TrainY []float64
}

// DefaultConfig returns a Config with a ±2σ band and no samples.
func DefaultConfig() Config {
	return Config{
		Title:  "Gaussian process posterior",
		XLabel: "x",
		YLabel: "y",
		Z:      2,
	}
}

func (c Config) validate(grid []float64) error {
	if len(grid) < 2 {
		return errors.NewValidationError("grid", "needs at least two points", len(grid))
	}
	for i := 1; i < len(grid); i++ {
		if !(grid[i] > grid[i-1]) {
			return errors.NewValidationError("grid", "must be strictly increasing", grid[i])
		}
	}
	if !(c.Z > 0) || math.IsInf(c.Z, 0) {
		return errors.NewValidationError("z", "must be positive and finite", c.Z)
	}
	if c.Samples < 0 {
		return errors.NewValidationError("samples", "must be non-negative", c.Samples)
	}
	if c.Samples > 0 && c.Rng == nil {
		return errors.NewValidationError("rng", "is required when samples > 0", nil)
	}
	if len(c.TrainX) != len(c.TrainY) {
		return errors.NewShapeError("plotting.Posterior", "train_x and train_y lengths differ",
			[]int{len(c.TrainX)}, []int{len(c.TrainY)})
	}
	return nil
}

// Posterior plots a one-dimensional posterior evaluated on grid.
//
//	cfg := plotting.DefaultConfig()
//	cfg.Samples, cfg.Rng = 3, rand.New(rand.NewPCG(1, 2))
//	p, err := plotting.Posterior(reg, grid, cfg)
//	if err == nil {
//	    err = plotting.Save(p, 0, 0, "posterior.png")
//	}
func Posterior(src model.PosteriorSource, grid []float64, cfg Config) (*plot.Plot, error) {
	if src == nil {
		return nil, errors.NewValidationError("source", "is nil", nil)
	}
	if err := cfg.validate(grid); err != nil {
		return nil, err
	}

	X := matrix.FromColumn(grid)
	pred, err := src.PredictWithUncertainty(X)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = cfg.Title
	p.X.Label.Text = cfg.XLabel
	p.Y.Label.Text = cfg.YLabel
	p.Legend.Top = true

	band, err := plotter.NewPolygon(bandXYs(grid, pred.Mean, pred.Std, cfg.Z))
	if err != nil {
		return nil, errors.Wrap(err, "plotting: band")
	}
	band.Color = bandColor
	band.LineStyle.Width = 0
	p.Add(band)
	p.Legend.Add(bandLabel(cfg.Z), band)

	if cfg.Samples > 0 {
		draws, err := sample(src, X, cfg.Samples, cfg.Rng)
		if err != nil {
			return nil, err
		}
		for i, d := range draws {
			l, err := plotter.NewLine(lineXYs(grid, d))
			if err != nil {
				return nil, errors.Wrapf(err, "plotting: sample %d", i)
			}
			l.LineStyle.Color = plotutil.Color(i + 1)
			l.LineStyle.Width = vg.Points(0.75)
			l.LineStyle.Dashes = plotutil.Dashes(1)
			p.Add(l)
		}
	}

	mean, err := plotter.NewLine(lineXYs(grid, pred.Mean))
	if err != nil {
		return nil, errors.Wrap(err, "plotting: mean")
	}
	mean.LineStyle.Color = plotutil.Color(0)
	mean.LineStyle.Width = vg.Points(1.5)
	p.Add(mean)
	p.Legend.Add("mean", mean)

	if len(cfg.TrainX) > 0 {
		sc, err := plotter.NewScatter(lineXYs(cfg.TrainX, cfg.TrainY))
		if err != nil {
			return nil, errors.Wrap(err, "plotting: training data")
		}
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Color = color.Black
		sc.GlyphStyle.Radius = vg.Points(2.5)
		p.Add(sc)
		p.Legend.Add("training data", sc)
	}
	return p, nil
}

func sample(src model.PosteriorSource, X *matrix.Matrix, n int, rng model.Source) ([][]float64, error) {
	if js, ok := src.(jointSampler); ok {
		return js.SampleJoint(X, n, rng)
	}
	return src.Sample(X, n, rng)
}

func bandLabel(z float64) string {
	return fmt.Sprintf("mean ± %gσ", z)
}

func lineXYs(x, y []float64) plotter.XYs {
	xys := make(plotter.XYs, len(x))
	for i := range x {
		xys[i].X, xys[i].Y = x[i], y[i]
	}
	return xys
}

// bandXYs traces the upper edge left to right and the lower edge back.
func bandXYs(x, mean, std []float64, z float64) plotter.XYs {
	n := len(x)
	xys := make(plotter.XYs, 2*n)
	for i := 0; i < n; i++ {
		xys[i].X, xys[i].Y = x[i], mean[i]+z*std[i]
		j := 2*n - 1 - i
		xys[j].X, xys[j].Y = x[i], mean[i]-z*std[i]
	}
	return xys
}

var formats = map[string]bool{
	"eps": true, "jpg": true, "jpeg": true, "pdf": true,
	"png": true, "svg": true, "tex": true, "tif": true, "tiff": true,
}

func format(name string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if !formats[ext] {
		return "", errors.NewValidationError("format", "unsupported image format", name)
	}
	return ext, nil
}

func size(width, height vg.Length) (vg.Length, vg.Length) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return width, height
}

// Save writes p to filename; the extension picks the format. Zero width or
// height fall back to the defaults.
func Save(p *plot.Plot, width, height vg.Length, filename string) error {
	if _, err := format(filename); err != nil {
		return err
	}
	width, height = size(width, height)
	if err := p.Save(width, height, filename); err != nil {
		return errors.Wrapf(err, "plotting: save %s", filename)
	}
	return nil
}

// Write renders p in the named format ("png", "svg", ...) to w.
func Write(p *plot.Plot, width, height vg.Length, formatName string, w io.Writer) error {
	ext, err := format("." + formatName)
	if err != nil {
		return err
	}
	width, height = size(width, height)
	wt, err := p.WriterTo(width, height, ext)
	if err != nil {
		return errors.Wrap(err, "plotting: writer")
	}
	if _, err := wt.WriteTo(w); err != nil {
		return errors.Wrap(err, "plotting: write")
	}
	return nil
}
