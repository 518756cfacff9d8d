package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the pipeline state",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var resetFetchLockCmd = &cobra.Command{
	Use:   "reset-fetch-lock",
	Short: "Force-release a stuck fetch lock",
	Args:  cobra.NoArgs,
	RunE:  runResetFetchLock,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resetFetchLockCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if pipelineService == nil {
		return errors.New("pipeline not configured")
	}

	status := pipelineService.Status(context.Background())

	if status.FetchLocked {
		cmd.Printf("Fetch: running since %s\n", status.FetchStartedAt.Format(time.RFC3339))
	} else {
		cmd.Println("Fetch: idle")
	}

	if status.Extracting {
		p := status.Progress
		cmd.Printf("Extraction: running since %s\n", status.ExtractionStartedAt.Format(time.RFC3339))
		cmd.Printf("  %d/%d emails, %d processed, %d errors\n", p.Current, p.Total, p.Processed, p.Errors)
		cmd.Printf("  items so far: %d events, %d courses, %d articles\n", p.Events, p.Courses, p.Articles)
	} else {
		cmd.Println("Extraction: idle")
	}
	return nil
}

func runResetFetchLock(cmd *cobra.Command, _ []string) error {
	if pipelineService == nil {
		return errors.New("pipeline not configured")
	}

	if pipelineService.ResetFetchLock(context.Background()) {
		cmd.Println("Fetch lock released.")
	} else {
		cmd.Println("Fetch lock was not held.")
	}
	return nil
}
