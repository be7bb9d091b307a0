package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newPlaylistsCommand(ctx *commandContext) *cobra.Command {
	var videosOf string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "playlists",
		Short: "List known playlists, or one playlist's items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *daemonClient) error {
				if videosOf != "" {
					items, err := client.PlaylistVideos(cmd.Context(), videosOf)
					if err != nil {
						return err
					}
					if asJSON {
						return writeJSON(cmd, items)
					}
					rows := make([][]string, 0, len(items))
					for i, item := range items {
						rows = append(rows, []string{
							strconv.Itoa(i),
							truncate(item.Title, 50),
							formatSize(item.ApproxSize),
							yesNo(item.Downloaded),
						})
					}
					fmt.Fprintln(cmd.OutOrStdout(),
						renderTable(cmd.OutOrStdout(), []string{"#", "TITLE", "SIZE", "DOWNLOADED"}, rows, 1, 3))
					return nil
				}

				playlists, err := client.Playlists(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, playlists)
				}
				out := cmd.OutOrStdout()
				if len(playlists) == 0 {
					fmt.Fprintln(out, "No playlists recorded yet.")
					return nil
				}
				rows := make([][]string, 0, len(playlists))
				for _, playlist := range playlists {
					rows = append(rows, []string{
						truncate(playlist.Title, 40),
						truncate(playlist.URL, 60),
						playlist.SaveDir,
					})
				}
				fmt.Fprintln(out, renderTable(out, []string{"TITLE", "URL", "SAVE DIR"}, rows))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&videosOf, "videos", "", "Show the items of the given playlist URL")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit playlists as JSON")
	return cmd
}
