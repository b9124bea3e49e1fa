package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"shotrouter/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(c *client) error {
				var status api.DaemonStatus
				if err := c.get(cmd.Context(), "/api/status", &status); err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, status)
				}
				renderStatus(cmd, status)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of text")
	return cmd
}

func renderStatus(cmd *cobra.Command, status api.DaemonStatus) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	kind := statusOK
	state := "running"
	if !status.Running {
		kind = statusError
		state = "stopped"
	}
	fmt.Fprintln(out, renderStatusLine("Daemon", kind, fmt.Sprintf("%s (pid %d)", state, status.PID), colorize))
	fmt.Fprintln(out, renderStatusLine("Database", statusInfo, status.DBPath, colorize))
	fmt.Fprintln(out, renderStatusLine("Lock file", statusInfo, status.LockFilePath, colorize))

	statuses := make([]string, 0, len(status.Counts))
	for name := range status.Counts {
		statuses = append(statuses, name)
	}
	sort.Strings(statuses)
	countRows := make([][]string, 0, len(statuses))
	for _, name := range statuses {
		countRows = append(countRows, []string{name, strconv.Itoa(status.Counts[name])})
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable(
		[]string{"Status", "Count"},
		countRows,
		[]columnAlignment{alignLeft, alignRight},
	))

	sourceRows := make([][]string, 0, len(status.Sources))
	for _, src := range status.Sources {
		sourceRows = append(sourceRows, []string{src.Path, strconv.Itoa(src.DebounceMs), yesNo(src.Running)})
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable(
		[]string{"Source", "Debounce (ms)", "Running"},
		sourceRows,
		[]columnAlignment{alignLeft, alignRight, alignLeft},
	))
}
