// Package cli implements the feedprism command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/feedprism/internal/core/ports/driving"
	"github.com/custodia-labs/feedprism/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Services injected by the composition root before Execute.
var (
	pipelineService  driving.PipelineService
	retrievalService driving.RetrievalService
	statsService     driving.StatsService
	settingsService  driving.SettingsService
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "feedprism",
	Short: "Extract events, courses and articles from newsletter email",
	Long: `FeedPrism turns a newsletter-filled inbox into a searchable feed.
It fetches candidate emails, extracts typed items (events, courses,
articles), deduplicates them and indexes them for hybrid search.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Services bundles the driving ports the commands call.
type Services struct {
	Pipeline  driving.PipelineService
	Retrieval driving.RetrievalService
	Stats     driving.StatsService
	Settings  driving.SettingsService
}

// SetServices injects the service implementations.
func SetServices(s Services) {
	pipelineService = s.Pipeline
	retrievalService = s.Retrieval
	statsService = s.Stats
	settingsService = s.Settings
}

// SetVersion sets the version string printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
