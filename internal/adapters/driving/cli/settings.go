package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/feedprism/internal/core/domain"
)

var (
	setBatchSize int
	setLookback  int
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show pipeline settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update pipeline settings",
	Long: fmt.Sprintf(`Updates pipeline settings. Values are clamped to the hard caps
(batch size %d, lookback %dh).`, domain.MaxBatchSizeCap, domain.LookbackHoursCap),
	Args: cobra.NoArgs,
	RunE: runSettingsSet,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset pipeline settings to defaults",
	Args:  cobra.NoArgs,
	RunE:  runSettingsReset,
}

func init() {
	settingsSetCmd.Flags().IntVar(&setBatchSize, "batch-size", 0, "documents per batch")
	settingsSetCmd.Flags().IntVar(&setLookback, "lookback-hours", 0, "mailbox lookback window in hours")

	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsResetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get(context.Background())
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	cmd.Printf("batch-size:     %d (max %d)\n", settings.MaxBatchSize, domain.MaxBatchSizeCap)
	cmd.Printf("lookback-hours: %d (max %d)\n", settings.LookbackHours, domain.LookbackHoursCap)
	return nil
}

func runSettingsSet(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if setBatchSize == 0 && setLookback == 0 {
		return errors.New("pass --batch-size and/or --lookback-hours")
	}

	ctx := context.Background()
	settings, err := settingsService.Get(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if setBatchSize > 0 {
		settings.MaxBatchSize = setBatchSize
	}
	if setLookback > 0 {
		settings.LookbackHours = setLookback
	}

	stored, err := settingsService.Update(ctx, settings)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	cmd.Printf("batch-size:     %d\n", stored.MaxBatchSize)
	cmd.Printf("lookback-hours: %d\n", stored.LookbackHours)
	return nil
}

func runSettingsReset(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Reset(context.Background()); err != nil {
		return fmt.Errorf("reset settings: %w", err)
	}
	cmd.Println("Settings reset to defaults.")
	return nil
}
