package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and catalogue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *daemonClient) error {
				status, err := client.Status(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, status)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Daemon:    running (pid %d)\n", status.PID)
				fmt.Fprintf(out, "Catalogue: %s\n", status.CatalogDBPath)
				fmt.Fprintf(out, "Videos:    %d (%d downloaded)\n", status.Stats.Videos, status.Stats.Downloaded)
				fmt.Fprintf(out, "Playlists: %d\n", status.Stats.Playlists)
				fmt.Fprintf(out, "Listings:  %d/%d running, %d waiting\n",
					status.Listings.Held, status.Listings.Limit, status.Listings.Waiting)
				fmt.Fprintf(out, "Downloads: %d/%d running, %d waiting\n",
					status.Downloads.Held, status.Downloads.Limit, status.Downloads.Waiting)

				if len(status.Tasks) > 0 {
					rows := make([][]string, 0, len(status.Tasks))
					for _, task := range status.Tasks {
						rows = append(rows, []string{
							task.ID,
							task.Kind,
							task.Status,
							formatPercent(task.Progress),
							truncate(task.URL, 60),
						})
					}
					fmt.Fprintln(out)
					fmt.Fprintln(out, renderTable(out, []string{"TASK", "KIND", "STATUS", "PROGRESS", "URL"}, rows, 4))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit status as JSON")
	return cmd
}
