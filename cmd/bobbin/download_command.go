package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bobbin/internal/api"
)

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var playlistURL string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "download <url>...",
		Short: "Queue catalogue items for download",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *daemonClient) error {
				items := make([]api.DownloadItem, 0, len(args))
				for _, url := range args {
					items = append(items, api.DownloadItem{URL: url, PlaylistURL: playlistURL})
				}
				resp, err := client.Download(cmd.Context(), items)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Queued %d download(s)\n", len(resp.Accepted))
				for _, skip := range resp.Skipped {
					fmt.Fprintf(out, "Skipped %s: %s\n", skip.URL, skip.Reason)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&playlistURL, "playlist", "", "Playlist whose save directory receives the items")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the batch result as JSON")
	return cmd
}
