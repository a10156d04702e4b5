package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long:  "Prints the merged configuration from file, environment, and defaults, with credentials masked.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, err := cfg.Dump()
		if err != nil {
			return eris.Wrap(err, "dump config")
		}
		cmd.Print(out)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
