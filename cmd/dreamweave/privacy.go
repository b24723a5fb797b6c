package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/oneirolab/dreamweave/pkg/dreams"

	"github.com/spf13/cobra"
)

var (
	retentionDaysFlag int
	purgeYesFlag      bool
)

var privacyCmd = &cobra.Command{
	Use:   "privacy",
	Short: "Manage data retention and privacy",
	Long:  `Enforce data retention, inspect and change privacy settings, and erase all stored data.`,
}

var retentionCmd = &cobra.Command{
	Use:   "retention",
	Short: "Enforce the data retention policy",
	Long: `Delete dream entries older than their retention window, expired voice
recordings, and analytics older than the default retention window. Recording
files are removed from disk before their rows, so an interrupted run can be
safely repeated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConn, err := openDB()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		days := retentionDaysFlag
		if days <= 0 {
			settings, err := dreams.GetPrivacySettings(cmd.Context(), dbConn)
			if err != nil {
				return fmt.Errorf("failed to load privacy settings: %w", err)
			}
			days = settings.RetentionDays
		}

		report, err := dreams.EnforceRetention(cmd.Context(), dbConn, days, os.Remove)
		if err != nil {
			return fmt.Errorf("retention enforcement failed: %w", err)
		}

		fmt.Printf("Retention enforced (%d days, cutoff %s):\n", report.RetentionDays, report.CutoffDate)
		fmt.Printf("Dream entries deleted:    %d\n", report.EntriesDeleted)
		fmt.Printf("Voice recordings deleted: %d\n", report.AudioFilesDeleted)
		fmt.Printf("Analytics events deleted: %d\n", report.AnalyticsDeleted)
		fmt.Printf("Cost records deleted:     %d\n", report.CostRowsDeleted)
		return nil
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Permanently erase all stored data for a user",
	Long: `Permanently delete every dream entry, recording, analysis, prompt, image
record, character, preference, cost record and analytics event stored for the
user. This cannot be undone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !purgeYesFlag {
			return errors.New("refusing to erase data without --yes")
		}

		dbConn, err := openDB()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		deleted, err := dreams.DeleteUserData(cmd.Context(), dbConn, userID(), os.Remove)
		if err != nil {
			return fmt.Errorf("failed to erase user data: %w", err)
		}

		mirrorPurgeNote(deleted)
		fmt.Printf("Erased %d dream entries and all associated data for user %s.\n", deleted, userID())
		return nil
	},
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show the current privacy settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConn, err := openDB()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		settings, err := dreams.GetPrivacySettings(cmd.Context(), dbConn)
		if err != nil {
			return fmt.Errorf("failed to load privacy settings: %w", err)
		}

		fmt.Println("Privacy Settings:")
		fmt.Printf("Retention days:    %d\n", settings.RetentionDays)
		fmt.Printf("Analytics enabled: %t\n", settings.AnalyticsEnabled)
		fmt.Printf("Auto-delete audio: %t\n", settings.AutoDeleteAudio)
		return nil
	},
}

var setSettingsCmd = &cobra.Command{
	Use:   "set",
	Short: "Change privacy settings",
	Long:  `Change privacy settings. Only flags that are set are written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConn, err := openDB()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		settings, err := dreams.GetPrivacySettings(cmd.Context(), dbConn)
		if err != nil {
			return fmt.Errorf("failed to load privacy settings: %w", err)
		}

		changed := false
		if cmd.Flags().Changed("retention-days") {
			v, _ := cmd.Flags().GetInt("retention-days")
			settings.RetentionDays = v
			changed = true
		}
		if cmd.Flags().Changed("analytics") {
			v, _ := cmd.Flags().GetBool("analytics")
			settings.AnalyticsEnabled = v
			changed = true
		}
		if cmd.Flags().Changed("auto-delete-audio") {
			v, _ := cmd.Flags().GetBool("auto-delete-audio")
			settings.AutoDeleteAudio = v
			changed = true
		}
		if !changed {
			return errors.New("nothing to change: set at least one of --retention-days, --analytics, --auto-delete-audio")
		}

		if err := dreams.SetPrivacySettings(cmd.Context(), dbConn, settings); err != nil {
			return fmt.Errorf("failed to save privacy settings: %w", err)
		}

		fmt.Println("Privacy settings saved.")
		return nil
	},
}

func initPrivacyCmd() {
	retentionCmd.Flags().IntVar(&retentionDaysFlag, "days", 0, "Override the retention window in days (defaults to the privacy setting)")

	purgeCmd.Flags().BoolVar(&purgeYesFlag, "yes", false, "Confirm the irreversible erase")

	setSettingsCmd.Flags().Int("retention-days", 0, "Days to keep dream data before automatic deletion")
	setSettingsCmd.Flags().Bool("analytics", false, "Enable local analytics collection")
	setSettingsCmd.Flags().Bool("auto-delete-audio", false, "Automatically delete expired voice recordings")

	settingsCmd.AddCommand(setSettingsCmd)
	privacyCmd.AddCommand(retentionCmd, purgeCmd, settingsCmd)
}

// mirrorPurgeNote reminds the user that a configured mirror holds copies the
// purge cannot reach.
func mirrorPurgeNote(deleted int64) {
	cfg, err := loadConfig()
	if err != nil || cfg.Mirror.URL == "" {
		return
	}
	if deleted > 0 {
		fmt.Printf("Note: a mirror is configured at %s; delete the mirrored copies there as well.\n", cfg.Mirror.URL)
	}
}
