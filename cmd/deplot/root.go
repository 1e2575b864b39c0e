package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// rootOptions holds global flags shared by all subcommands.
type rootOptions struct {
	Verbose    bool
	ConfigFile string
}

// logger builds the process logger. Quiet runs log nothing; failures stay
// on stderr via error returns.
func (o *rootOptions) logger() *zap.Logger {
	if !o.Verbose {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "deplot",
		Short: "Volcano plots and gene lists from differential-expression tables",
		Long: `deplot renders volcano plots and exports ranked gene lists from
differential-expression result tables (limma, DESeq2, edgeR and
compatible tab-separated formats).`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(opts)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose progress logging")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default: ~/.deplot.yaml)")

	cmd.AddCommand(newVolcanoCommand(opts))
	cmd.AddCommand(newGenesCommand(opts))
	cmd.AddCommand(newImportCommand(opts))
	cmd.AddCommand(newDatasetsCommand(opts))
	cmd.AddCommand(newConfigCommand())

	return cmd
}

// initConfig points viper at the config file. A missing file is fine; flags
// and built-in defaults cover everything.
func initConfig(opts *rootOptions) error {
	if opts.ConfigFile != "" {
		viper.SetConfigFile(opts.ConfigFile)
		if err := viper.ReadInConfig(); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("read config: %w", err)
		}
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	viper.AddConfigPath(home)
	viper.SetConfigName(".deplot")
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// floatOrConfig prefers an explicitly set flag, then a config file value,
// then the flag's default.
func floatOrConfig(cmd *cobra.Command, flag string, flagVal float64, key string) float64 {
	if cmd.Flags().Changed(flag) || !viper.IsSet(key) {
		return flagVal
	}
	return viper.GetFloat64(key)
}

// stringOrConfig is floatOrConfig for string flags.
func stringOrConfig(cmd *cobra.Command, flag string, flagVal string, key string) string {
	if cmd.Flags().Changed(flag) || !viper.IsSet(key) {
		return flagVal
	}
	return viper.GetString(key)
}
