package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := apiClient.Health(context.Background())
			if err != nil {
				fatal("health check", err)
			}
			output(resp, resp.Status)
		},
	}
	cmd.AddCommand(readyCmd())
	return cmd
}

func readyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ready",
		Short: "Check server readiness",
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := apiClient.Ready(context.Background())
			if err != nil {
				fatal("readiness check", err)
			}
			output(resp, resp.Status)
		},
	}
}
