package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/feedprism/internal/core/domain"
)

var (
	fetchBatchSize int
	fetchLookback  int
	fetchJSON      bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "List unprocessed newsletter emails",
	Long: `Queries the mailbox for candidate emails within the lookback window
and lists the ones that have not been through extraction yet.`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().IntVar(&fetchBatchSize, "batch-size", 0, "override the configured batch size")
	fetchCmd.Flags().IntVar(&fetchLookback, "lookback-hours", 0, "override the configured lookback window")
	fetchCmd.Flags().BoolVar(&fetchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	if pipelineService == nil || settingsService == nil {
		return errors.New("pipeline not configured")
	}

	ctx := context.Background()
	settings, err := settingsService.Get(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if fetchBatchSize > 0 {
		settings.MaxBatchSize = fetchBatchSize
	}
	if fetchLookback > 0 {
		settings.LookbackHours = fetchLookback
	}

	result, err := pipelineService.ListUnprocessed(ctx, settings)
	if err != nil {
		if errors.Is(err, domain.ErrFetchInProgress) {
			return errors.New("a fetch is already running; try again shortly or run reset-fetch-lock")
		}
		return fmt.Errorf("fetch failed: %w", err)
	}

	if fetchJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Listed %d candidates in the last %dh (%d already processed)\n",
		result.TotalListed, result.LookbackHours, result.ProcessedCount)
	if len(result.Documents) == 0 {
		cmd.Println("Nothing new to extract.")
		return nil
	}

	cmd.Printf("\n%d unprocessed:\n", len(result.Documents))
	for _, doc := range result.Documents {
		cmd.Printf("  %s  %s  (%s)\n", doc.ID, doc.Subject, doc.Sender)
	}
	cmd.Println("\nRun 'feedprism extract' to process them.")
	return nil
}
