package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLearnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "learn <source-code>",
		Short: "Learn a field mapping from a source's latest raw batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			code := args[0]

			if _, ok := a.Catalog.ByCode(code); !ok {
				return fmt.Errorf("unknown source %q", code)
			}
			latest, err := a.RawStore.LatestBatch(cmd.Context(), code)
			if err != nil {
				return fmt.Errorf("load latest batch: %w", err)
			}
			if latest == nil || len(latest.Records) == 0 {
				return fmt.Errorf("no raw batches stored for %q; scrape it first", code)
			}
			samples := latest.Records
			if len(samples) > 5 {
				samples = samples[:5]
			}
			mapped, err := a.Mapper.LearnMapping(cmd.Context(), code, samples)
			if err != nil {
				return fmt.Errorf("learn mapping: %w", err)
			}
			cmd.Printf("learned %d field mappings for %s from batch %s\n", mapped, code, latest.BatchID)
			for from, to := range a.Mapper.Mapping(code) {
				cmd.Printf("  %s -> %s\n", from, to)
			}
			return nil
		},
	}
}
