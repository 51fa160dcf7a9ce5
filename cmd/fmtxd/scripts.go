package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robotalks/fmtx/pkg/script"
)

var (
	scriptsCmd = &cobra.Command{
		Use:   "scripts",
		Short: "Inspect chip scripts",
	}

	scriptsValidateCmd = &cobra.Command{
		Use:   "validate DIR",
		Short: "Compile every script file in DIR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := script.ValidateDir(args[0])
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", name)
			}
			return err
		},
	}

	scriptsListCmd = &cobra.Command{
		Use:   "builtin",
		Short: "List built-in scripts",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for name, s := range script.Builtins() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d steps\n", name, len(s.Steps))
			}
		},
	}
)

func init() {
	scriptsCmd.AddCommand(scriptsValidateCmd, scriptsListCmd)
}
