package main

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/image/colornames"

	"github.com/mkuiper/deplot/internal/detable"
	"github.com/mkuiper/deplot/internal/volcano"
)

type volcanoOptions struct {
	*rootOptions
	tableOptions

	Out    string
	Title  string
	XLabel string
	YLabel string
	Width  float64
	Height float64

	Color      bool
	PointColor string
	SigColor   string
	FCCutoff   float64
	PCutoff    float64

	XLim string
	YLim string

	LabelMode      string
	LabelX         float64
	LabelY         float64
	LabelDirection string
	Repel          bool
	LabelSize      float64
}

func newVolcanoCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &volcanoOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "volcano [flags] <results.tsv>",
		Short: "Render a volcano plot from a results table",
		Long: `Render a volcano plot (log2 fold change against -log10 adjusted p-value)
from a differential-expression results table.

With --out the plot is written to <prefix>.pdf; otherwise the PDF streams
to stdout. Cutoffs draw dotted reference lines, drive --color grouping
and floor the automatic axis ranges.`,
		Example: `  deplot volcano -o study results.tsv
  deplot volcano --color --fc-cutoff 0.585 --p-cutoff 0.05 -o study results.tsv
  deplot volcano --label ellipse --label-x 2 --label-y 3 -o study results.tsv
  deplot volcano --db stats.duckdb --dataset exp1 > plot.pdf`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVolcano(cmd, opts, args)
		},
	}

	addTableFlags(cmd, &opts.tableOptions)
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file prefix, writes <prefix>.pdf (default: PDF to stdout)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "plot title")
	cmd.Flags().StringVar(&opts.XLabel, "xlab", "", "x axis label")
	cmd.Flags().StringVar(&opts.YLabel, "ylab", "", "y axis label")
	cmd.Flags().Float64Var(&opts.Width, "width", 0, "canvas width in inches (default 8)")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "canvas height in inches (default 6)")
	cmd.Flags().BoolVar(&opts.Color, "color", false, "color points passing both cutoffs")
	cmd.Flags().StringVar(&opts.PointColor, "point-color", "", "point color (SVG name or #rrggbb)")
	cmd.Flags().StringVar(&opts.SigColor, "sig-color", "", "significant point color (SVG name or #rrggbb)")
	cmd.Flags().Float64Var(&opts.FCCutoff, "fc-cutoff", 0, "absolute log2 fold-change cutoff")
	cmd.Flags().Float64Var(&opts.PCutoff, "p-cutoff", 0, "adjusted p-value cutoff")
	cmd.Flags().StringVar(&opts.XLim, "xlim", "auto", "x axis range: auto, default, or min:max")
	cmd.Flags().StringVar(&opts.YLim, "ylim", "auto", "y axis range: auto, default, or min:max")
	cmd.Flags().StringVar(&opts.LabelMode, "label", "none", "gene labeling: none, threshold or ellipse")
	cmd.Flags().Float64Var(&opts.LabelX, "label-x", 0, "labeling fold-change cutoff or ellipse x radius")
	cmd.Flags().Float64Var(&opts.LabelY, "label-y", 0, "labeling -log10 p cutoff or ellipse y radius")
	cmd.Flags().StringVar(&opts.LabelDirection, "direction", "both", "threshold labeling side: both, lower or upper")
	cmd.Flags().BoolVar(&opts.Repel, "repel", false, "nudge overlapping labels apart")
	cmd.Flags().Float64Var(&opts.LabelSize, "label-size", 0, "label font size in points (default 8)")

	return cmd
}

func runVolcano(cmd *cobra.Command, opts *volcanoOptions, args []string) error {
	logger := opts.logger()

	tbl, err := loadTable(&opts.tableOptions, args)
	if err != nil {
		return err
	}
	logger.Info("loaded results table", zap.Int("genes", tbl.Len()))

	cfg := volcano.Config{
		FilePrefix:       opts.Out,
		Width:            floatOrConfig(cmd, "width", opts.Width, "plot.width"),
		Height:           floatOrConfig(cmd, "height", opts.Height, "plot.height"),
		Title:            opts.Title,
		XLabel:           opts.XLabel,
		YLabel:           opts.YLabel,
		ColorByThreshold: opts.Color,
		LabelXCut:        opts.LabelX,
		LabelYCut:        opts.LabelY,
		RepelLabels:      opts.Repel,
		LabelSize:        floatOrConfig(cmd, "label-size", opts.LabelSize, "plot.label_size"),
	}
	if opts.Out == "" {
		cfg.Display = cmd.OutOrStdout()
	}

	if cmd.Flags().Changed("fc-cutoff") || viper.IsSet("plot.fc_cutoff") {
		v := floatOrConfig(cmd, "fc-cutoff", opts.FCCutoff, "plot.fc_cutoff")
		cfg.FoldChangeCutoff = &v
	}
	if cmd.Flags().Changed("p-cutoff") || viper.IsSet("plot.p_cutoff") {
		v := floatOrConfig(cmd, "p-cutoff", opts.PCutoff, "plot.p_cutoff")
		cfg.PValueCutoff = &v
	}

	if cfg.XLimit, err = parseAxisLimit(opts.XLim); err != nil {
		return err
	}
	if cfg.YLimit, err = parseAxisLimit(opts.YLim); err != nil {
		return err
	}

	if cfg.LabelMode, err = volcano.ParseLabelMode(opts.LabelMode); err != nil {
		return err
	}
	if cfg.LabelDirection, err = volcano.ParseDirection(opts.LabelDirection); err != nil {
		return err
	}

	pointColor := stringOrConfig(cmd, "point-color", opts.PointColor, "plot.point_color")
	if cfg.PointColor, err = parseColor(pointColor); err != nil {
		return err
	}
	sigColor := stringOrConfig(cmd, "sig-color", opts.SigColor, "plot.sig_color")
	if cfg.SigColor, err = parseColor(sigColor); err != nil {
		return err
	}

	r := volcano.NewRenderer()
	r.SetLogger(logger)
	return r.Render(tbl, cfg)
}

// parseAxisLimit understands "auto" (data-derived, floored at the cutoffs),
// "default" (the plot library's own scaling) and explicit "min:max" ranges.
func parseAxisLimit(s string) (volcano.AxisLimit, error) {
	switch s {
	case "", "default":
		return volcano.AxisLimit{}, nil
	case "auto":
		return volcano.AutoLimit(), nil
	}

	lo, hi, ok := strings.Cut(s, ":")
	if !ok {
		return volcano.AxisLimit{}, &detable.ConfigError{
			Msg: fmt.Sprintf("invalid axis limit %q (want auto, default or min:max)", s),
		}
	}
	min, err := strconv.ParseFloat(lo, 64)
	if err != nil {
		return volcano.AxisLimit{}, &detable.ConfigError{Msg: fmt.Sprintf("invalid axis minimum %q", lo)}
	}
	max, err := strconv.ParseFloat(hi, 64)
	if err != nil {
		return volcano.AxisLimit{}, &detable.ConfigError{Msg: fmt.Sprintf("invalid axis maximum %q", hi)}
	}
	return volcano.FixedLimit(min, max), nil
}

// parseColor resolves an SVG 1.1 color name or a #rrggbb hex value. Empty
// input selects the renderer's defaults.
func parseColor(s string) (color.Color, error) {
	if s == "" {
		return nil, nil
	}
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return c, nil
	}
	if hex, ok := strings.CutPrefix(s, "#"); ok && len(hex) == 6 {
		if v, err := strconv.ParseUint(hex, 16, 32); err == nil {
			return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
		}
	}
	return nil, &detable.ConfigError{Msg: fmt.Sprintf("unknown color %q (use an SVG name or #rrggbb)", s)}
}
