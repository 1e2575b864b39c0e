// Package volcano renders volcano plots from differential-expression tables:
// log2 fold-change against -log10 adjusted p-value, with optional threshold
// coloring, cutoff reference lines and gene labeling.
package volcano

import (
	"fmt"
	"image/color"
	"math"
	"os"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"

	"github.com/mkuiper/deplot/internal/detable"
)

// Default rendering parameters.
const (
	DefaultWidth     = 8.0 // inches
	DefaultHeight    = 6.0 // inches
	DefaultLabelSize = 8.0 // points
)

// Default point colors.
var (
	defaultPointColor = color.RGBA{R: 0x59, G: 0x59, B: 0x59, A: 0xff}
	defaultSigColor   = color.RGBA{R: 0xcc, G: 0x26, B: 0x1c, A: 0xff}
)

// Renderer draws volcano plots.
type Renderer struct {
	logger *zap.Logger
}

// NewRenderer creates a renderer.
func NewRenderer() *Renderer {
	return &Renderer{logger: zap.NewNop()}
}

// SetLogger sets the logger for progress messages.
func (r *Renderer) SetLogger(l *zap.Logger) {
	r.logger = l
}

// Render draws tbl as a volcano plot and writes a single-page PDF to the
// configured target. The configuration is validated up front, so no output
// file exists when an error is returned from validation.
func (r *Renderer) Render(tbl *detable.Table, cfg Config) error {
	if tbl == nil {
		return &detable.DataError{Msg: "nil results table"}
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	p, err := r.build(tbl, &cfg)
	if err != nil {
		return err
	}

	return r.emit(p, &cfg)
}

// build assembles the plot: points, reference lines, axis ranges and labels.
func (r *Renderer) build(tbl *detable.Table, cfg *Config) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = cfg.Title
	p.X.Label.Text = cfg.XLabel
	if p.X.Label.Text == "" {
		p.X.Label.Text = "log2 fold change"
	}
	p.Y.Label.Text = cfg.YLabel
	if p.Y.Label.Text == "" {
		p.Y.Label.Text = "-log10 adjusted p-value"
	}

	if err := r.addPoints(p, tbl, cfg); err != nil {
		return nil, err
	}
	r.addCutoffLines(p, cfg)

	xr, yr := r.resolveLimits(tbl, cfg)
	if xr != nil {
		p.X.Min, p.X.Max = xr.Min, xr.Max
	}
	if yr != nil {
		p.Y.Min, p.Y.Max = yr.Min, yr.Max
	}

	if cfg.LabelMode != LabelNone {
		if err := r.addLabels(p, tbl, cfg, yr); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// resolveLimits turns the configured axis limits into concrete ranges. Nil
// means the axis is left to the plot's autoscaling; a degenerate estimated
// range (empty table, no floor) falls back to autoscaling too.
func (r *Renderer) resolveLimits(tbl *detable.Table, cfg *Config) (x, y *Range) {
	if cfg.XLimit.IsAuto() || cfg.YLimit.IsAuto() {
		var fcFloor, logPFloor *float64
		if cfg.FoldChangeCutoff != nil {
			f := math.Abs(*cfg.FoldChangeCutoff)
			fcFloor = &f
		}
		if cfg.PValueCutoff != nil {
			f := -math.Log10(*cfg.PValueCutoff)
			logPFloor = &f
		}
		xr, yr := EstimateRanges(tbl, fcFloor, logPFloor)
		if cfg.XLimit.IsAuto() && xr.Max > xr.Min {
			x = &xr
		}
		if cfg.YLimit.IsAuto() && yr.Max > yr.Min {
			y = &yr
		}
	}

	if cfg.XLimit.IsFixed() {
		min, max := cfg.XLimit.Bounds()
		x = &Range{Min: min, Max: max}
	}
	if cfg.YLimit.IsFixed() {
		min, max := cfg.YLimit.Bounds()
		y = &Range{Min: min, Max: max}
	}
	return x, y
}

// addPoints adds the scatter layer, split into significant and
// non-significant groups when threshold coloring is on.
func (r *Renderer) addPoints(p *plot.Plot, tbl *detable.Table, cfg *Config) error {
	baseColor := cfg.PointColor
	if baseColor == nil {
		baseColor = defaultPointColor
	}

	if !cfg.ColorByThreshold {
		xys := make(plotter.XYs, 0, tbl.Len())
		for i := 0; i < tbl.Len(); i++ {
			rec := tbl.Record(i)
			xys = append(xys, plotter.XY{X: rec.LogFC, Y: -math.Log10(rec.AdjP)})
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("build scatter: %w", err)
		}
		s.GlyphStyle = pointStyle(baseColor)
		p.Add(s)
		return nil
	}

	sigColor := cfg.SigColor
	if sigColor == nil {
		sigColor = defaultSigColor
	}

	// Precomputed flags win over derived ones
	flagged := tbl
	if !tbl.HasSignificance() {
		flagged = tbl.WithSignificance(*cfg.FoldChangeCutoff, *cfg.PValueCutoff)
	}

	var sig, rest plotter.XYs
	for i := 0; i < flagged.Len(); i++ {
		rec := flagged.Record(i)
		xy := plotter.XY{X: rec.LogFC, Y: -math.Log10(rec.AdjP)}
		if rec.Significant {
			sig = append(sig, xy)
		} else {
			rest = append(rest, xy)
		}
	}

	if len(rest) > 0 {
		s, err := plotter.NewScatter(rest)
		if err != nil {
			return fmt.Errorf("build scatter: %w", err)
		}
		s.GlyphStyle = pointStyle(baseColor)
		p.Add(s)
		p.Legend.Add("not significant", s)
	}
	if len(sig) > 0 {
		s, err := plotter.NewScatter(sig)
		if err != nil {
			return fmt.Errorf("build scatter: %w", err)
		}
		s.GlyphStyle = pointStyle(sigColor)
		p.Add(s)
		p.Legend.Add("significant", s)
	}
	p.Legend.Top = true

	r.logger.Info("split points by significance",
		zap.Int("significant", len(sig)),
		zap.Int("total", flagged.Len()))
	return nil
}

func pointStyle(c color.Color) draw.GlyphStyle {
	return draw.GlyphStyle{Color: c, Radius: vg.Points(2), Shape: draw.CircleGlyph{}}
}

// addCutoffLines adds dotted reference lines at the significance cutoffs:
// vertical at plus and minus the fold-change cutoff, horizontal at the
// -log10 p-value cutoff.
func (r *Renderer) addCutoffLines(p *plot.Plot, cfg *Config) {
	style := cutoffStyle()
	if cfg.FoldChangeCutoff != nil {
		cut := math.Abs(*cfg.FoldChangeCutoff)
		p.Add(vLine{X: -cut, Style: style}, vLine{X: cut, Style: style})
	}
	if cfg.PValueCutoff != nil {
		p.Add(hLine{Y: -math.Log10(*cfg.PValueCutoff), Style: style})
	}
}

// addLabels selects, optionally repels and draws the gene labels.
func (r *Renderer) addLabels(p *plot.Plot, tbl *detable.Table, cfg *Config, yr *Range) error {
	pts := selectLabels(tbl, cfg)
	if len(pts) == 0 {
		return nil
	}

	size := cfg.LabelSize
	if size == 0 {
		size = DefaultLabelSize
	}

	if cfg.RepelLabels {
		repelLabels(pts, r.labelGap(tbl, cfg, yr, size))
	}

	xys := make(plotter.XYs, len(pts))
	names := make([]string, len(pts))
	for i, lp := range pts {
		xys[i] = plotter.XY{X: lp.x, Y: lp.y}
		names[i] = lp.gene
	}

	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: names})
	if err != nil {
		return fmt.Errorf("build labels: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Font.Size = vg.Points(size)
	}
	labels.Offset = vg.Point{X: vg.Points(3), Y: vg.Points(2)}
	p.Add(labels)

	r.logger.Info("labeled genes", zap.Int("count", len(pts)))
	return nil
}

// labelGap converts the label font height into y data units so repelled
// labels clear each other vertically.
func (r *Renderer) labelGap(tbl *detable.Table, cfg *Config, yr *Range, size float64) float64 {
	height := cfg.Height
	if height == 0 {
		height = DefaultHeight
	}

	var span float64
	if yr != nil {
		span = yr.Max - yr.Min
	} else {
		_, est := EstimateRanges(tbl, nil, nil)
		span = est.Max - est.Min
	}
	if span <= 0 {
		return 0
	}

	return 1.2 * size * span / (height * 72)
}

// emit draws the assembled plot exactly once onto a PDF canvas and writes it
// to the configured target. The output file handle is scoped to this call
// and closed on every path.
func (r *Renderer) emit(p *plot.Plot, cfg *Config) error {
	width := cfg.Width
	if width == 0 {
		width = DefaultWidth
	}
	height := cfg.Height
	if height == 0 {
		height = DefaultHeight
	}

	canvas := vgpdf.New(vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch)
	p.Draw(draw.New(canvas))

	if cfg.FilePrefix == "" {
		if _, err := canvas.WriteTo(cfg.Display); err != nil {
			return fmt.Errorf("write plot: %w", err)
		}
		return nil
	}

	path := cfg.FilePrefix + ".pdf"
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plot file: %w", err)
	}
	if _, err := canvas.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write plot file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close plot file: %w", err)
	}

	r.logger.Info("wrote volcano plot", zap.String("path", path))
	return nil
}
