package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newWorkersCommand(ctx *commandContext) *cobra.Command {
	var listings, downloadLimit int

	cmd := &cobra.Command{
		Use:   "workers",
		Short: "Adjust concurrent listing and download limits",
		RunE: func(cmd *cobra.Command, args []string) error {
			if listings <= 0 && downloadLimit <= 0 {
				return errors.New("pass --listings and/or --downloads with a positive value")
			}
			return ctx.withClient(func(client *daemonClient) error {
				status, err := client.SetWorkerLimits(cmd.Context(), listings, downloadLimit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Listings:  limit %d\n", status.Listings.Limit)
				fmt.Fprintf(out, "Downloads: limit %d\n", status.Downloads.Limit)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&listings, "listings", 0, "New concurrent listing limit")
	cmd.Flags().IntVar(&downloadLimit, "downloads", 0, "New concurrent download limit")
	return cmd
}
