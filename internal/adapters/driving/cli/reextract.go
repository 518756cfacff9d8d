package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var reextractAll bool

var reextractCmd = &cobra.Command{
	Use:   "reextract [messageID...]",
	Short: "Re-run extraction over already processed emails",
	Long: `Deletes all indexed items derived from the given emails, then runs a
fresh extraction cycle over them. With --all, every processed email is
redone, typically after a prompt or model change.`,
	RunE: runReExtract,
}

func init() {
	reextractCmd.Flags().BoolVar(&reextractAll, "all", false, "re-extract every processed email")
	rootCmd.AddCommand(reextractCmd)
}

func runReExtract(cmd *cobra.Command, args []string) error {
	if pipelineService == nil {
		return errors.New("pipeline not configured")
	}
	if len(args) == 0 && !reextractAll {
		return errors.New("pass message IDs or --all")
	}

	events, err := pipelineService.ReExtract(context.Background(), args)
	if err != nil {
		return fmt.Errorf("start re-extraction: %w", err)
	}
	return renderRun(cmd, events)
}
