package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/feedprism/internal/core/domain"
)

var recentLimit int

var recentCmd = &cobra.Command{
	Use:   "recent [type]",
	Short: "List the newest extracted items of a type",
	Long:  `Lists the most recently extracted items: event, course or article.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runRecent,
}

func init() {
	recentCmd.Flags().IntVarP(&recentLimit, "limit", "n", 10, "maximum number of items")
	rootCmd.AddCommand(recentCmd)
}

func runRecent(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	ct, err := domain.ParseContentType(args[0])
	if err != nil {
		return err
	}

	items, err := retrievalService.Recent(context.Background(), ct, recentLimit)
	if err != nil {
		return fmt.Errorf("list recent %ss: %w", ct, err)
	}

	if len(items) == 0 {
		cmd.Printf("No %ss extracted yet.\n", ct)
		return nil
	}
	for i, item := range items {
		cmd.Printf("  [%d] %s\n", i+1, item.Title)
		if item.ExtractedAt != "" {
			cmd.Printf("      extracted %s, via %s\n", item.ExtractedAt, item.SourceSender)
		}
	}
	return nil
}
