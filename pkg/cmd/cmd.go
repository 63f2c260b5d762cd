// Package cmd contains the command line applications for the project.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool

	rootCmd = &cobra.Command{
		Use:   "docshield",
		Short: "Document upload and verification service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "verbose debug output")

	registerServeCommand()
	registerKeysCommand()
	registerConfigsCommands()
	registerDBCommands()
	registerKVCommands()
	registerMQCommands()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
