package main

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"shotrouter/internal/api"
)

func newRoutesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Manage routing rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRoutes(cmd, ctx, "")
		},
	}

	var sourceFilter string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List routing rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRoutes(cmd, ctx, sourceFilter)
		},
	}
	listCmd.Flags().StringVar(&sourceFilter, "source", "", "Only rules for this source directory")
	cmd.AddCommand(listCmd)

	var (
		priority int
		inactive bool
	)
	addCmd := &cobra.Command{
		Use:   "add <source> <destination>",
		Short: "Add a routing rule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(c *client) error {
				active := !inactive
				req := api.RouteRequest{
					SourcePath: args[0],
					DestPath:   args[1],
					Priority:   priority,
					Active:     &active,
				}
				var resp api.RouteResponse
				if err := c.post(cmd.Context(), "/api/routes", req, &resp); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added route %s\n", resp.Item.ID)
				return nil
			})
		},
	}
	addCmd.Flags().IntVar(&priority, "priority", 0, "Rule priority; lower wins")
	addCmd.Flags().BoolVar(&inactive, "inactive", false, "Create the rule disabled")
	cmd.AddCommand(addCmd)

	var (
		setPriority int
		setActive   bool
		setInactive bool
	)
	setCmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Update a routing rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req api.RouteUpdateRequest
			if cmd.Flags().Changed("priority") {
				req.Priority = &setPriority
			}
			switch {
			case setActive && setInactive:
				return fmt.Errorf("--active and --inactive are mutually exclusive")
			case setActive:
				value := true
				req.Active = &value
			case setInactive:
				value := false
				req.Active = &value
			}
			if req.Priority == nil && req.Active == nil {
				return fmt.Errorf("nothing to update; pass --priority, --active, or --inactive")
			}
			return ctx.withClient(func(c *client) error {
				var resp api.RouteResponse
				if err := c.patch(cmd.Context(), "/api/routes/"+url.PathEscape(args[0]), req, &resp); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "updated route %s\n", resp.Item.ID)
				return nil
			})
		},
	}
	setCmd.Flags().IntVar(&setPriority, "priority", 0, "New priority; lower wins")
	setCmd.Flags().BoolVar(&setActive, "active", false, "Enable the rule")
	setCmd.Flags().BoolVar(&setInactive, "inactive", false, "Disable the rule")
	cmd.AddCommand(setCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a routing rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(c *client) error {
				if err := c.delete(cmd.Context(), "/api/routes/"+url.PathEscape(args[0]), nil); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted route %s\n", args[0])
				return nil
			})
		},
	})

	return cmd
}

func listRoutes(cmd *cobra.Command, ctx *commandContext, source string) error {
	return ctx.withClient(func(c *client) error {
		path := "/api/routes"
		if source != "" {
			path += "?source=" + url.QueryEscape(source)
		}
		var resp api.RouteListResponse
		if err := c.get(cmd.Context(), path, &resp); err != nil {
			return err
		}
		rows := make([][]string, 0, len(resp.Items))
		for _, route := range resp.Items {
			rows = append(rows, []string{
				route.ID,
				route.SourcePath,
				route.DestPath,
				strconv.Itoa(route.Priority),
				yesNo(route.Active),
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(
			[]string{"ID", "Source", "Destination", "Priority", "Active"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
		))
		return nil
	})
}
