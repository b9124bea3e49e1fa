package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"shotrouter/internal/api"
)

func newSourcesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Manage watched directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listSources(cmd, ctx)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List watched directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listSources(cmd, ctx)
		},
	})

	var debounceMs int
	watchCmd := &cobra.Command{
		Use:   "watch <path>",
		Short: "Start watching a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(c *client) error {
				req := api.WatchRequest{Path: args[0], DebounceMs: debounceMs}
				var resp api.SourceListResponse
				if err := c.post(cmd.Context(), "/api/sources/watch", req, &resp); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "watching %s\n", args[0])
				return nil
			})
		},
	}
	watchCmd.Flags().IntVar(&debounceMs, "debounce", 0, "Stabilization debounce in milliseconds")
	cmd.AddCommand(watchCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "unwatch <path>",
		Short: "Stop watching a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(c *client) error {
				req := api.WatchRequest{Path: args[0]}
				var resp api.SourceListResponse
				if err := c.post(cmd.Context(), "/api/sources/unwatch", req, &resp); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "stopped watching %s\n", args[0])
				return nil
			})
		},
	})

	return cmd
}

func listSources(cmd *cobra.Command, ctx *commandContext) error {
	return ctx.withClient(func(c *client) error {
		var resp api.SourceListResponse
		if err := c.get(cmd.Context(), "/api/sources", &resp); err != nil {
			return err
		}
		rows := make([][]string, 0, len(resp.Items))
		for _, src := range resp.Items {
			rows = append(rows, []string{src.Path, strconv.Itoa(src.DebounceMs), yesNo(src.Running)})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(
			[]string{"Source", "Debounce (ms)", "Running"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignLeft},
		))
		return nil
	})
}
