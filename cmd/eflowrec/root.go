package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banshee-data/eflowrec/internal/version"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "eflowrec",
		Short:         "Energy-flow reconstruction of tracks and calorimeter clusters",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newParamsCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}
}
