package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mkuiper/deplot/internal/genelist"
)

type genesOptions struct {
	*rootOptions
	tableOptions

	Out      string
	Methods  []string
	PCutoff  float64
	FCCutoff float64
	FCAdjust float64
}

func newGenesCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &genesOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "genes [flags] <results.tsv>",
		Short: "Export ranked and thresholded gene lists",
		Long: `Export gene list files for downstream enrichment tools, one gene
identifier per line.

Methods:
  ranked_list  every gene, ranked by raw p-value
               -> <prefix>.all_genes_ranked_pval.txt
  combined     genes passing both cutoffs, either direction
               -> <prefix>.genes<cutoffs>.txt
  directional  up- and down-regulated genes in separate files
               -> <prefix>.genes<cutoffs>.up.txt / .down.txt

Unambiguous method prefixes are accepted. Written paths print to stdout.`,
		Example: `  deplot genes -o study results.tsv
  deplot genes -o study -m ranked,dir --fc-cutoff 0.585 results.tsv
  deplot genes -o study --db stats.duckdb --dataset exp1`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenes(cmd, opts, args)
		},
	}

	addTableFlags(cmd, &opts.tableOptions)
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file prefix (required)")
	cmd.Flags().StringSliceVarP(&opts.Methods, "methods", "m", []string{"combined"}, "export methods")
	cmd.Flags().Float64Var(&opts.PCutoff, "p-cutoff", genelist.DefaultAdjPCutoff, "adjusted p-value cutoff")
	cmd.Flags().Float64Var(&opts.FCCutoff, "fc-cutoff", 0, "absolute log2 fold-change cutoff (0: no fold-change filter)")
	cmd.Flags().Float64Var(&opts.FCAdjust, "fc-adjust", 1, "rescale the fold-change cutoff in filenames")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runGenes(cmd *cobra.Command, opts *genesOptions, args []string) error {
	logger := opts.logger()

	tbl, err := loadTable(&opts.tableOptions, args)
	if err != nil {
		return err
	}
	logger.Info("loaded results table", zap.Int("genes", tbl.Len()))

	names := opts.Methods
	if !cmd.Flags().Changed("methods") && viper.IsSet("genes.methods") {
		names = viper.GetStringSlice("genes.methods")
	}
	methods, err := genelist.ParseMethods(names)
	if err != nil {
		return err
	}

	cfg := genelist.Config{
		AdjPCutoff:       floatOrConfig(cmd, "p-cutoff", opts.PCutoff, "genes.p_cutoff"),
		FoldChangeCutoff: floatOrConfig(cmd, "fc-cutoff", opts.FCCutoff, "genes.fc_cutoff"),
		FoldChangeAdjust: floatOrConfig(cmd, "fc-adjust", opts.FCAdjust, "genes.fc_adjust"),
	}

	exp := genelist.NewExporter()
	exp.SetLogger(logger)

	written, err := exp.Export(tbl, opts.Out, methods, cfg)
	for _, p := range written {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return err
}
