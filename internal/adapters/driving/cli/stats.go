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
	statsJSON bool
	statsDays int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	Long: `Shows index statistics: per-collection counts, upstream health, and
an aggregation of what was extracted within the last --days days (top
organizers, providers and tags, average items per week).`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
	statsCmd.Flags().IntVar(&statsDays, "days", 30, "aggregation window in days")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if statsService == nil {
		return errors.New("stats service not configured")
	}

	overview, err := statsService.Overview(context.Background(), statsDays)
	if err != nil {
		return fmt.Errorf("gather stats: %w", err)
	}

	if statsJSON {
		data, err := json.MarshalIndent(overview, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal stats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Indexed items: %d\n", overview.TotalItems)
	for _, ct := range domain.AllContentTypes() {
		cmd.Printf("  %-10s %d\n", ct.CollectionName()+":", overview.CollectionCounts[ct])
	}
	cmd.Printf("Processed emails: %d\n", overview.ProcessedDocuments)

	cmd.Printf("\nLast %d days: %d items (%.1f/week)\n",
		overview.WindowDays, overview.WindowItems, overview.AvgItemsPerWeek)
	printRanking(cmd, "Top organizers", overview.TopOrganizers)
	printRanking(cmd, "Top providers", overview.TopProviders)
	printRanking(cmd, "Top tags", overview.TopTags)

	cmd.Printf("\nVector index: %s\n", health(overview.IndexHealthy))
	if overview.EmbeddingHealthy {
		cmd.Printf("Embeddings: ok (%s, %d dimensions)\n",
			overview.EmbeddingModel, overview.EmbeddingDimensions)
	} else {
		cmd.Println("Embeddings: unreachable")
	}
	return nil
}

func printRanking(cmd *cobra.Command, label string, ranking []domain.NameCount) {
	if len(ranking) == 0 {
		return
	}
	cmd.Printf("%s:\n", label)
	for _, entry := range ranking {
		cmd.Printf("  %-30s %d\n", entry.Name, entry.Count)
	}
}

func health(ok bool) string {
	if ok {
		return "ok"
	}
	return "unreachable"
}
