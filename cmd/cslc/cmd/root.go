// Package cmd implements the cslc command-line interface.
//
// Grounded on CWBudde-go-dws/cmd/dwscript/cmd/root.go's rootCmd/init()/
// Execute() shape and persistent-flag idiom.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Version is set by build flags.
	Version = "0.1.0-dev"

	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "cslc",
	Short: "CSL compiler",
	Long: `cslc compiles CSL (C-like Statically-typed Language) source files
to textual LLVM IR.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML policy-flag config file")
}
