package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkuiper/deplot/internal/detable"
	"github.com/mkuiper/deplot/internal/duckdb"
)

type importOptions struct {
	*rootOptions
	tableOptions
}

func newImportCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &importOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import --db <file> --dataset <name> <results.tsv>",
		Short: "Import a results table into a DuckDB database",
		Long: `Parse a results table once and store it as a named dataset, replacing
any previous import with the same name. Later volcano and genes runs can
read it back with --db/--dataset instead of re-parsing the file.`,
		Example: `  deplot import --db stats.duckdb --dataset exp1 results.tsv
  deplot volcano --db stats.duckdb --dataset exp1 -o exp1`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts, args[0])
		},
	}

	addTableFlags(cmd, &opts.tableOptions)
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

func runImport(cmd *cobra.Command, opts *importOptions, path string) error {
	logger := opts.logger()

	tbl, err := detable.ReadTable(path, opts.columnMap())
	if err != nil {
		return err
	}

	store, err := duckdb.Open(opts.Database)
	if err != nil {
		return err
	}
	defer store.Close()
	store.SetLogger(logger)

	if err := store.ImportTable(opts.Dataset, tbl); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d genes into dataset %q\n", tbl.Len(), opts.Dataset)
	return nil
}
