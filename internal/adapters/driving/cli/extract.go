package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/feedprism/internal/core/domain"
)

var extractCmd = &cobra.Command{
	Use:   "extract [messageID...]",
	Short: "Extract items from newsletter emails",
	Long: `Runs the extraction cycle: fetch each email, extract events, courses
and articles, deduplicate and index them. Without arguments, a fresh
batch of unprocessed emails is fetched first.`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if pipelineService == nil {
		return errors.New("pipeline not configured")
	}

	ctx := context.Background()
	ids := args
	if len(ids) == 0 {
		settings, err := settingsService.Get(ctx)
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}
		result, err := pipelineService.ListUnprocessed(ctx, settings)
		if err != nil {
			return fmt.Errorf("fetch batch: %w", err)
		}
		for _, doc := range result.Documents {
			ids = append(ids, doc.ID)
		}
		if len(ids) == 0 {
			cmd.Println("Nothing new to extract.")
			return nil
		}
	}

	events, err := pipelineService.Extract(ctx, ids)
	if err != nil {
		if errors.Is(err, domain.ErrExtractionInProgress) {
			return errors.New("an extraction run is already active")
		}
		return fmt.Errorf("start extraction: %w", err)
	}

	return renderRun(cmd, events)
}

// renderRun consumes a pipeline event stream and prints progress.
func renderRun(cmd *cobra.Command, events <-chan domain.PipelineEvent) error {
	var final domain.PipelineEvent
	for ev := range events {
		switch ev.Kind {
		case domain.EventStart:
			cmd.Printf("Extracting %d emails...\n", ev.Total)
		case domain.EventExtract:
			cmd.Printf("  [%d/%d] %s\n", ev.Current, ev.Total, ev.Subject)
		case domain.EventSkip:
			cmd.Printf("  [%d/%d] skipped %s: %s\n", ev.Current, ev.Total, ev.DocumentID, ev.Reason)
		case domain.EventError:
			cmd.Printf("  [%d/%d] error %s: %s\n", ev.Current, ev.Total, ev.DocumentID, ev.Reason)
		case domain.EventComplete:
			final = ev
		}
	}

	cmd.Printf("\nDone: %d emails processed, %d errors\n", final.Processed, final.Errors)
	cmd.Printf("Indexed %d items (%d events, %d courses, %d articles)\n",
		final.Counts.Total(), final.Counts.Events, final.Counts.Courses, final.Counts.Articles)
	if final.Message != "" {
		cmd.Printf("Note: %s\n", final.Message)
	}
	return nil
}
