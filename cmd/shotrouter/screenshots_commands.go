package main

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"shotrouter/internal/api"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var (
		status  string
		limit   int
		offset  int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List screenshot records, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(c *client) error {
				query := url.Values{}
				if status != "" {
					query.Set("status", status)
				}
				if limit > 0 {
					query.Set("limit", strconv.Itoa(limit))
				}
				if offset > 0 {
					query.Set("offset", strconv.Itoa(offset))
				}
				path := "/api/screenshots"
				if encoded := query.Encode(); encoded != "" {
					path += "?" + encoded
				}

				var resp api.ScreenshotListResponse
				if err := c.get(cmd.Context(), path, &resp); err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, resp)
				}

				rows := make([][]string, 0, len(resp.Items))
				for _, item := range resp.Items {
					rows = append(rows, []string{
						item.ID,
						item.Status,
						strconv.FormatInt(item.Size, 10),
						item.SourcePath,
						item.DestPath,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Status", "Size", "Source", "Destination"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (inbox, routed, quarantined)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum records to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "Records to skip")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one screenshot record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(c *client) error {
				var resp api.ScreenshotResponse
				if err := c.get(cmd.Context(), "/api/screenshots/"+url.PathEscape(args[0]), &resp); err != nil {
					return err
				}
				return writeJSON(cmd, resp.Item)
			})
		},
	}
}

func newRouteCommand(ctx *commandContext) *cobra.Command {
	var targetDir string

	cmd := &cobra.Command{
		Use:   "route <id> <destination>",
		Short: "Move an inbox record to a destination",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(c *client) error {
				req := api.RouteScreenshotRequest{DestPath: args[1], TargetDir: targetDir}
				var resp api.ScreenshotResponse
				if err := c.post(cmd.Context(), "/api/screenshots/"+url.PathEscape(args[0])+"/route", req, &resp); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "routed %s -> %s\n", resp.Item.ID, resp.Item.DestPath)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&targetDir, "target-dir", "", "Subdirectory under the destination root")
	return cmd
}

func newQuarantineCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "quarantine <id>",
		Short: "Park a record out of the inbox",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(c *client) error {
				var resp api.ScreenshotResponse
				if err := c.post(cmd.Context(), "/api/screenshots/"+url.PathEscape(args[0])+"/quarantine", nil, &resp); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "quarantined %s\n", resp.Item.ID)
				return nil
			})
		},
	}
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	var removeFile bool

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a screenshot record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(c *client) error {
				path := "/api/screenshots/" + url.PathEscape(args[0])
				if removeFile {
					path += "?remove_file=1"
				}
				if err := c.delete(cmd.Context(), path, nil); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&removeFile, "remove-file", false, "Also delete the file on disk")
	return cmd
}
