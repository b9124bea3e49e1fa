package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"shotrouter/internal/api"
)

func newDestinationsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "destinations",
		Short: "Manage routing destinations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listDestinations(cmd, ctx)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List destinations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listDestinations(cmd, ctx)
		},
	})

	var (
		targetDir string
		name      string
		icon      string
	)
	addCmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Register a destination, or update its metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(c *client) error {
				req := api.DestinationRequest{Path: args[0], TargetDir: targetDir, Name: name, Icon: icon}
				var resp api.DestinationResponse
				if err := c.post(cmd.Context(), "/api/destinations", req, &resp); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "destination %s (%s)\n", resp.Item.Path, resp.Item.ID)
				return nil
			})
		},
	}
	addCmd.Flags().StringVar(&targetDir, "target-dir", "", "Subdirectory files land in")
	addCmd.Flags().StringVar(&name, "name", "", "Display name")
	addCmd.Flags().StringVar(&icon, "icon", "", "Display icon")
	cmd.AddCommand(addCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <path>",
		Short: "Delete a destination; routes pointing at it survive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(c *client) error {
				if err := c.delete(cmd.Context(), "/api/destinations?path="+url.QueryEscape(args[0]), nil); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted destination %s\n", args[0])
				return nil
			})
		},
	})

	return cmd
}

func listDestinations(cmd *cobra.Command, ctx *commandContext) error {
	return ctx.withClient(func(c *client) error {
		var resp api.DestinationListResponse
		if err := c.get(cmd.Context(), "/api/destinations", &resp); err != nil {
			return err
		}
		rows := make([][]string, 0, len(resp.Items))
		for _, dest := range resp.Items {
			rows = append(rows, []string{dest.ID, dest.Path, dest.TargetDir, dest.Name})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(
			[]string{"ID", "Path", "Target dir", "Name"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
		))
		return nil
	})
}
