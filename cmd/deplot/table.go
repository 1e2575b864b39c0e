package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mkuiper/deplot/internal/detable"
	"github.com/mkuiper/deplot/internal/duckdb"
)

// tableOptions selects where a results table comes from: a TSV path
// argument (or '-' for stdin), or a dataset previously imported into a
// DuckDB database.
type tableOptions struct {
	GeneCol string
	FCCol   string
	PCol    string
	AdjPCol string
	SigCol  string

	Database string
	Dataset  string
}

func addTableFlags(cmd *cobra.Command, opts *tableOptions) {
	cmd.Flags().StringVar(&opts.GeneCol, "gene-col", "", "gene identifier column (default: auto-detect)")
	cmd.Flags().StringVar(&opts.FCCol, "fc-col", "", "log2 fold-change column (default: auto-detect)")
	cmd.Flags().StringVar(&opts.PCol, "p-col", "", "raw p-value column (default: auto-detect)")
	cmd.Flags().StringVar(&opts.AdjPCol, "adjp-col", "", "adjusted p-value column (default: auto-detect)")
	cmd.Flags().StringVar(&opts.SigCol, "sig-col", "", "significance flag column (default: auto-detect)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "DuckDB database of imported datasets")
	cmd.Flags().StringVar(&opts.Dataset, "dataset", "", "dataset name inside --db")
}

// columnMap resolves explicit column flags, falling back to config file
// values. Empty fields leave the reader's header detection in charge.
func (o *tableOptions) columnMap() detable.ColumnMap {
	pick := func(flag, key string) string {
		if flag != "" {
			return flag
		}
		return viper.GetString(key)
	}
	return detable.ColumnMap{
		Gene:        pick(o.GeneCol, "columns.gene"),
		LogFC:       pick(o.FCCol, "columns.log_fc"),
		PValue:      pick(o.PCol, "columns.p_value"),
		AdjP:        pick(o.AdjPCol, "columns.adj_p"),
		Significant: pick(o.SigCol, "columns.significant"),
	}
}

// loadTable reads the results table named by args or by --db/--dataset.
func loadTable(opts *tableOptions, args []string) (*detable.Table, error) {
	if opts.Database != "" || opts.Dataset != "" {
		if opts.Database == "" || opts.Dataset == "" {
			return nil, &detable.ConfigError{Msg: "--db and --dataset must be used together"}
		}
		if len(args) > 0 {
			return nil, &detable.ConfigError{Msg: "give either an input file or --db/--dataset, not both"}
		}

		store, err := duckdb.Open(opts.Database)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.LoadTable(opts.Dataset)
	}

	if len(args) != 1 {
		return nil, &detable.ConfigError{Msg: "exactly one input file required (use '-' for stdin)"}
	}
	return detable.ReadTable(args[0], opts.columnMap())
}
