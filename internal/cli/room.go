package cli

import (
	"net/url"

	"github.com/spf13/cobra"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room lookups",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <code>",
		Short: "Show a room by its invite code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Room
			if err := client.Get("/api/v1/rooms/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	})

	return cmd
}
