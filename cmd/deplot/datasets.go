package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkuiper/deplot/internal/duckdb"
)

type datasetsOptions struct {
	*rootOptions
	Database string
}

func newDatasetsCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &datasetsOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "datasets --db <file>",
		Short:         "List datasets imported into a DuckDB database",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDatasets(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "DuckDB database of imported datasets (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runDatasets(cmd *cobra.Command, opts *datasetsOptions) error {
	store, err := duckdb.Open(opts.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	datasets, err := store.Datasets()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(datasets) == 0 {
		fmt.Fprintln(out, "No datasets imported.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tGENES\tFLAGGED\tIMPORTED")
	for _, d := range datasets {
		fmt.Fprintf(w, "%s\t%d\t%v\t%s\n",
			d.Name, d.Genes, d.HasSignificance, d.ImportedAt.Format(time.RFC3339))
	}
	return w.Flush()
}
