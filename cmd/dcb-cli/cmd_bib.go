package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newBibCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bib",
		Short: "Inspect bib records",
	}
	cmd.AddCommand(bibGetCmd())
	cmd.AddCommand(bibClusterCmd())
	cmd.AddCommand(bibIdentifiersCmd())
	return cmd
}

func bibGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a bib by ID",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			bib, err := apiClient.Bibs.Get(context.Background(), args[0])
			if err != nil {
				fatal("get bib", err)
			}
			output(bib, bib.ID)
		},
	}
}

func bibClusterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cluster <id>",
		Short: "Show the cluster a bib contributes to",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cluster, err := apiClient.Bibs.Cluster(context.Background(), args[0])
			if err != nil {
				fatal("get cluster for bib", err)
			}
			output(cluster, cluster.ID)
		},
	}
}

func bibIdentifiersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "identifiers <id>",
		Short: "List the identifiers attached to a bib",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			identifiers, err := apiClient.Bibs.Identifiers(context.Background(), args[0])
			if err != nil {
				fatal("list identifiers", err)
			}
			if flagFmt == "table" {
				headers := []string{"NAMESPACE", "VALUE"}
				var rows [][]string
				for _, id := range identifiers {
					rows = append(rows, []string{id.Namespace, id.Value})
				}
				formatTable(headers, rows)
				return
			}
			if flagFmt == "quiet" {
				for _, id := range identifiers {
					fmt.Println(id.ID)
				}
				return
			}
			output(identifiers, "")
		},
	}
}
