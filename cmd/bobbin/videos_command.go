package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVideosCommand(ctx *commandContext) *cobra.Command {
	var titleFilter string
	var offset, limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "videos",
		Short: "List catalogue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *daemonClient) error {
				items, err := client.Videos(cmd.Context(), titleFilter, offset, limit)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, items)
				}

				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "No catalogue items found.")
					return nil
				}
				rows := make([][]string, 0, len(items))
				for _, item := range items {
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

	cmd.Flags().StringVar(&titleFilter, "title", "", "Case-insensitive title substring filter")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of items to skip")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of items to return")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit items as JSON")
	return cmd
}
