package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newTasksCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Show in-flight listing and download tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *daemonClient) error {
				tasks, err := client.Tasks(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, tasks)
				}

				out := cmd.OutOrStdout()
				if len(tasks) == 0 {
					fmt.Fprintln(out, "No tasks in flight.")
					return nil
				}
				rows := make([][]string, 0, len(tasks))
				for _, task := range tasks {
					pid := "-"
					if task.PID > 0 {
						pid = strconv.Itoa(task.PID)
					}
					rows = append(rows, []string{
						task.ID,
						task.Kind,
						task.Status,
						pid,
						formatPercent(task.Progress),
						truncate(task.URL, 50),
					})
				}
				fmt.Fprintln(out, renderTable(out, []string{"TASK", "KIND", "STATUS", "PID", "PROGRESS", "URL"}, rows, 4, 5))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit tasks as JSON")
	return cmd
}
