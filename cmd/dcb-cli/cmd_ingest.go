package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openlibraryenvironment/dcb-clustering/client"
)

func newIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Submit records for clustering",
	}
	cmd.AddCommand(ingestFileCmd())
	cmd.AddCommand(ingestRecordCmd())
	return cmd
}

// ingestBatchSize is the number of records submitted per batch request.
const ingestBatchSize = 500

func ingestFileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "file <path>",
		Short: "Submit records from a JSON lines file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			f, err := os.Open(args[0])
			if err != nil {
				fatal("open file", err)
			}
			defer f.Close()

			var (
				batch   []client.IngestRecord
				queued  int
				dropped int
				line    int
			)

			flush := func() {
				if len(batch) == 0 {
					return
				}
				resp, err := apiClient.Ingest.SubmitBatch(context.Background(), batch)
				if err != nil {
					fatal("submit batch", err)
				}
				queued += resp.Queued
				dropped += resp.Dropped
				batch = batch[:0]
			}

			scanner := bufio.NewScanner(f)
			scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
			for scanner.Scan() {
				line++
				if len(scanner.Bytes()) == 0 {
					continue
				}
				var rec client.IngestRecord
				if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
					fatal(fmt.Sprintf("parse line %d", line), err)
				}
				batch = append(batch, rec)
				if len(batch) >= ingestBatchSize {
					flush()
				}
			}
			if err := scanner.Err(); err != nil {
				fatal("read file", err)
			}
			flush()

			output(map[string]int{"queued": queued, "dropped": dropped}, fmt.Sprintf("%d", queued))
		},
	}
}

func ingestRecordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "record <json>",
		Short: "Submit a single record as a JSON string",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			var rec client.IngestRecord
			if err := json.Unmarshal([]byte(args[0]), &rec); err != nil {
				fatal("parse record", err)
			}
			resp, err := apiClient.Ingest.Submit(context.Background(), &rec)
			if err != nil {
				fatal("submit record", err)
			}
			output(resp, resp.BibID)
		},
	}
}
