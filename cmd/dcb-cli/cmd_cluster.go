package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newClusterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Inspect clusters",
	}
	cmd.AddCommand(clusterGetCmd())
	cmd.AddCommand(clusterBibsCmd())
	return cmd
}

func clusterGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a cluster by ID",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cluster, err := apiClient.Clusters.Get(context.Background(), args[0])
			if err != nil {
				fatal("get cluster", err)
			}
			output(cluster, cluster.ID)
		},
	}
}

func clusterBibsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bibs <id>",
		Short: "List the member bibs of a cluster",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			bibs, err := apiClient.Clusters.Bibs(context.Background(), args[0])
			if err != nil {
				fatal("list cluster bibs", err)
			}
			if flagFmt == "table" {
				headers := []string{"ID", "TITLE", "TYPE", "SCORE", "SOURCE"}
				var rows [][]string
				for _, b := range bibs {
					rows = append(rows, []string{
						b.ID, b.Title, b.DerivedType,
						fmt.Sprintf("%d", b.MetadataScore),
						b.SourceRecordID,
					})
				}
				formatTable(headers, rows)
				return
			}
			if flagFmt == "quiet" {
				for _, b := range bibs {
					fmt.Println(b.ID)
				}
				return
			}
			output(bibs, "")
		},
	}
}
