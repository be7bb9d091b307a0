package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list <url>",
		Short: "Enumerate a playlist, channel, or single item into the catalogue",
		Long: "Submits a listing request to the daemon. The first page is shown " +
			"immediately; for playlists, remaining pages are fetched in the background.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *daemonClient) error {
				resp, err := client.List(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}

				out := cmd.OutOrStdout()
				if resp.Playlist != nil {
					fmt.Fprintf(out, "Playlist: %s\n", resp.Playlist.Title)
					if !resp.ShouldStopProcessing {
						fmt.Fprintln(out, "Continuing enumeration in the background.")
					}
				}

				rows := make([][]string, 0, len(resp.Items))
				for _, item := range resp.Items {
					rows = append(rows, []string{
						truncate(item.Title, 50),
						item.ExternalID,
						formatSize(item.ApproxSize),
						yesNo(item.Downloaded),
						yesNo(item.Available),
					})
				}
				fmt.Fprintln(out, renderTable(out, []string{"TITLE", "ID", "SIZE", "DOWNLOADED", "AVAILABLE"}, rows, 3))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the first page as JSON")
	return cmd
}
