package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBlacklistCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blacklist",
		Short: "Inspect the source blacklist",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show configured blacklist entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			validator, err := ctx.validator()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			entries := validator.Blacklist()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Blacklist is empty")
				return nil
			}
			for _, entry := range entries {
				fmt.Fprintln(out, entry)
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "check <path>",
		Short: "Report whether a source path is blacklisted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			validator, err := ctx.validator()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if entry, ok := validator.BlacklistMatch(args[0]); ok {
				fmt.Fprintf(out, "%s is blacklisted (matches %q)\n", args[0], entry)
				return nil
			}
			fmt.Fprintf(out, "%s is not blacklisted\n", args[0])
			return nil
		},
	})
	return cmd
}
