package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"shotrouter/internal/api"
)

func newEventsCommand(ctx *commandContext) *cobra.Command {
	var since uint64

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show buffered daemon events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(c *client) error {
				path := "/api/events"
				if since > 0 {
					path += "?since=" + strconv.FormatUint(since, 10)
				}
				var resp api.EventsResponse
				if err := c.get(cmd.Context(), path, &resp); err != nil {
					return err
				}
				return writeJSON(cmd, resp)
			})
		},
	}
	cmd.Flags().Uint64Var(&since, "since", 0, "Only events after this sequence number")
	return cmd
}
