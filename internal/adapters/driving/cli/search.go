package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/feedprism/internal/core/domain"
)

var (
	searchLimit   int
	searchTypes   []string
	searchGrouped bool
	searchJSON    bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search extracted items",
	Long: `Performs hybrid search over extracted items, fusing semantic and
keyword matches. With --grouped, items mentioned by several newsletters
collapse into one result with its source count.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().StringSliceVarP(&searchTypes, "type", "t", nil, "restrict to content types (event, course, article)")
	searchCmd.Flags().BoolVar(&searchGrouped, "grouped", false, "collapse duplicates across newsletters")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	opts := domain.SearchOptions{Limit: searchLimit}
	for _, raw := range searchTypes {
		ct, err := domain.ParseContentType(strings.TrimSpace(raw))
		if err != nil {
			return err
		}
		opts.Types = append(opts.Types, ct)
	}

	ctx := context.Background()
	query := args[0]

	if searchGrouped {
		groups, err := retrievalService.GroupedSearch(ctx, query, opts)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		return outputGroups(cmd, groups)
	}

	items, err := retrievalService.HybridSearch(ctx, query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return outputItems(cmd, items)
}

func outputItems(cmd *cobra.Command, items []domain.FeedItem) error {
	if searchJSON {
		data, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(items) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	for i, item := range items {
		cmd.Printf("  [%d] %s (%s)\n", i+1, item.Title, item.Type)
		if item.Description != "" {
			cmd.Printf("      %s\n", truncate(item.Description, 120))
		}
		if item.URL != "" {
			cmd.Printf("      %s\n", item.URL)
		}
		cmd.Printf("      via %s\n", item.SourceSender)
		cmd.Println()
	}
	return nil
}

func outputGroups(cmd *cobra.Command, groups []domain.Group) error {
	if searchJSON {
		data, err := json.MarshalIndent(groups, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(groups) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	for i, group := range groups {
		if len(group.Hits) == 0 {
			continue
		}
		rep := group.Hits[0]
		title, _ := rep.Payload[domain.FieldTitle].(string)
		cmd.Printf("  [%d] %s\n", i+1, title)
		if group.SourceCount > 1 {
			cmd.Printf("      mentioned by %d newsletters\n", group.SourceCount)
		}
		cmd.Println()
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
