package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"clipgen/internal/deps"
	"clipgen/internal/preflight"
)

var errDoctorFailed = errors.New("required checks failed")

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check encoder binaries and output directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			statuses := preflight.CheckSystemDeps(cfg)
			healthy := len(deps.Missing(statuses)) == 0
			var rows [][]string
			for _, status := range statuses {
				label, target := "ok", status.Path
				if !status.Available {
					label, target = "missing", status.Command
					if status.Optional {
						label = "missing (optional)"
					}
				}
				rows = append(rows, []string{status.Name, colorizeStatus(status.Available, label, colorize), target, status.Detail})
			}
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				label := "ok"
				if !result.Passed {
					label = "failed"
					healthy = false
				}
				rows = append(rows, []string{result.Name, colorizeStatus(result.Passed, label, colorize), "", result.Detail})
			}

			fmt.Fprint(out, renderTable(
				[]string{"Check", "Status", "Command", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			if !healthy {
				return errDoctorFailed
			}
			fmt.Fprintln(out, "All required checks passed")
			return nil
		},
	}
}
