package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/oneirolab/dreamweave/pkg/analysis"
	"github.com/oneirolab/dreamweave/pkg/dreams"
	"github.com/oneirolab/dreamweave/pkg/mirror"

	"github.com/spf13/cobra"
)

var (
	dateFromFlag   string
	dateToFlag     string
	statusFlag     string
	searchFlag     string
	limitFlag      int
	offsetFlag     int
	showDetailFlag bool
)

var dreamsCmd = &cobra.Command{
	Use:   "dreams",
	Short: "Manage dream entries",
	Long:  `Create, list, update, and delete dream journal entries.`,
}

var createDreamCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new dream entry",
	Long:  `Create a new dream entry with its text and optional title, date and 0-5 levels.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		text, _ := cmd.Flags().GetString("text")
		date, _ := cmd.Flags().GetString("date")
		lucidity, _ := cmd.Flags().GetInt("lucidity")
		vividness, _ := cmd.Flags().GetInt("vividness")
		intensity, _ := cmd.Flags().GetInt("intensity")

		if text == "" {
			return errors.New("dream text is required")
		}

		dbConn, err := openDB()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		entry, err := dreams.CreateEntry(cmd.Context(), dbConn, dreams.NewEntry{
			UserID:             userID(),
			EntryDate:          date,
			Title:              title,
			Transcription:      text,
			LucidityLevel:      lucidity,
			VividnessLevel:     vividness,
			EmotionalIntensity: intensity,
		})
		if err != nil {
			return fmt.Errorf("failed to create dream entry: %w", err)
		}

		mirrorUpsert(entry)
		printEntry(entry)
		return nil
	},
}

var getDreamCmd = &cobra.Command{
	Use:     "get [dream-id]",
	Aliases: []string{"show"},
	Short:   "Get a dream entry by ID",
	Long:    `Retrieve a dream entry by its ID, optionally with everything attached to it.`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entryID, err := parseEntryID(args[0])
		if err != nil {
			return err
		}

		dbConn, err := openDB()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		if showDetailFlag {
			detail, err := dreams.GetEntryDetail(cmd.Context(), dbConn, entryID)
			if errors.Is(err, dreams.ErrEntryNotFound) {
				return fmt.Errorf("dream entry not found: %s", args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to get dream entry: %w", err)
			}
			return printJSON(detail)
		}

		entry, err := dreams.GetEntry(cmd.Context(), dbConn, entryID)
		if errors.Is(err, dreams.ErrEntryNotFound) {
			return fmt.Errorf("dream entry not found: %s", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to get dream entry: %w", err)
		}

		printEntry(entry)
		return nil
	},
}

var listDreamsCmd = &cobra.Command{
	Use:   "list",
	Short: "List dream entries",
	Long:  `List dream entries, newest first, with optional date range, status and text filters.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConn, err := openDB()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		page, err := dreams.ListEntries(cmd.Context(), dbConn, dreams.Filter{
			UserID:   userID(),
			DateFrom: dateFromFlag,
			DateTo:   dateToFlag,
			Status:   statusFlag,
			Search:   searchFlag,
		}, dreams.Page{Limit: limitFlag, Offset: offsetFlag})
		if err != nil {
			return fmt.Errorf("failed to list dream entries: %w", err)
		}

		if len(page.Items) == 0 {
			fmt.Println("No dream entries found.")
			return nil
		}

		fmt.Printf("Dreams (%d-%d of %d):\n", page.Offset+1, page.Offset+len(page.Items), page.Total)
		fmt.Println("ID | Date | Title | Status | Lucidity | Created At")
		fmt.Println("------------------------------------------------------------")
		for _, e := range page.Items {
			title := e.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Printf("%d | %s | %s | %s | %d/5 | %s\n",
				e.ID, e.EntryDate, title, e.Status, e.LucidityLevel, formatTimestamp(e.CreatedAt))
		}
		if page.HasMore {
			fmt.Printf("\nMore entries available. Rerun with --offset %d\n", page.Offset+len(page.Items))
		}
		return nil
	},
}

var updateDreamCmd = &cobra.Command{
	Use:     "update [dream-id]",
	Aliases: []string{"edit"},
	Short:   "Update a dream entry",
	Long:    `Update a dream entry's title, text, levels or status. Only flags that are set are written.`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entryID, err := parseEntryID(args[0])
		if err != nil {
			return err
		}

		var update dreams.EntryUpdate
		if cmd.Flags().Changed("title") {
			v, _ := cmd.Flags().GetString("title")
			update.Title = &v
		}
		if cmd.Flags().Changed("text") {
			v, _ := cmd.Flags().GetString("text")
			update.Transcription = &v
		}
		if cmd.Flags().Changed("description") {
			v, _ := cmd.Flags().GetString("description")
			update.Description = &v
		}
		if cmd.Flags().Changed("lucidity") {
			v, _ := cmd.Flags().GetInt("lucidity")
			update.LucidityLevel = &v
		}
		if cmd.Flags().Changed("vividness") {
			v, _ := cmd.Flags().GetInt("vividness")
			update.VividnessLevel = &v
		}
		if cmd.Flags().Changed("intensity") {
			v, _ := cmd.Flags().GetInt("intensity")
			update.EmotionalIntensity = &v
		}
		if cmd.Flags().Changed("status") {
			v, _ := cmd.Flags().GetString("status")
			update.Status = &v
		}

		dbConn, err := openDB()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		entry, err := dreams.UpdateEntry(cmd.Context(), dbConn, entryID, update)
		if errors.Is(err, dreams.ErrEntryNotFound) {
			return fmt.Errorf("dream entry not found: %s", args[0])
		}
		if errors.Is(err, dreams.ErrNoFields) {
			return errors.New("nothing to update: set at least one of --title, --text, --description, --lucidity, --vividness, --intensity, --status")
		}
		if err != nil {
			return fmt.Errorf("failed to update dream entry: %w", err)
		}

		mirrorUpsert(entry)
		fmt.Println("Dream entry updated successfully!")
		printEntry(entry)
		return nil
	},
}

var deleteDreamCmd = &cobra.Command{
	Use:   "delete [dream-id]",
	Short: "Delete a dream entry",
	Long:  `Permanently delete a dream entry together with its recordings, analyses, prompts and image records.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entryID, err := parseEntryID(args[0])
		if err != nil {
			return err
		}

		dbConn, err := openDB()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		err = dreams.DeleteEntry(cmd.Context(), dbConn, entryID, os.Remove)
		if errors.Is(err, dreams.ErrEntryNotFound) {
			return fmt.Errorf("dream entry not found: %s", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to delete dream entry: %w", err)
		}

		mirrorDelete(entryID)
		fmt.Printf("Dream entry %s deleted.\n", args[0])
		return nil
	},
}

var analyzeDreamCmd = &cobra.Command{
	Use:   "analyze [dream-id]",
	Short: "Analyze a dream entry",
	Long:  `Run the keyword analysis over a dream entry's text and store the result.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entryID, err := parseEntryID(args[0])
		if err != nil {
			return err
		}

		dbConn, err := openDB()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		entry, err := dreams.GetEntry(cmd.Context(), dbConn, entryID)
		if errors.Is(err, dreams.ErrEntryNotFound) {
			return fmt.Errorf("dream entry not found: %s", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to get dream entry: %w", err)
		}

		started := time.Now()
		result := analysis.Analyze(strings.TrimSpace(entry.Transcription + " " + entry.Description))
		stored, err := dreams.SaveAnalysis(cmd.Context(), dbConn, entryID, dreams.Analysis{
			ConfidenceScore:     captureConfidence(result),
			Emotions:            result.Emotions,
			Themes:              result.Themes,
			Symbols:             result.Symbols,
			DominantEmotion:     result.DominantEmotion(),
			DominantTheme:       result.DominantTheme(),
			EmotionalComplexity: result.EmotionalComplexity(),
			SymbolicDensity:     result.SymbolicDensity(),
			AnalysisDurationMs:  time.Since(started).Milliseconds(),
		})
		if err != nil {
			return fmt.Errorf("failed to store analysis: %w", err)
		}

		fmt.Printf("Analysis %d stored for dream %d:\n", stored.ID, entryID)
		fmt.Printf("Emotions:   %s\n", joinOrNone(stored.Emotions))
		fmt.Printf("Themes:     %s\n", joinOrNone(stored.Themes))
		fmt.Printf("Symbols:    %s\n", joinOrNone(stored.Symbols))
		if stored.DominantEmotion != "" {
			fmt.Printf("Dominant:   %s / %s\n", stored.DominantEmotion, stored.DominantTheme)
		}
		fmt.Printf("Confidence: %.2f\n", stored.ConfidenceScore)
		return nil
	},
}

func initDreamsCmd() {
	createDreamCmd.Flags().String("title", "", "Title of the dream")
	createDreamCmd.Flags().String("text", "", "Dream text (required)")
	createDreamCmd.Flags().String("date", "", "Entry date in YYYY-MM-DD format (defaults to today)")
	createDreamCmd.Flags().Int("lucidity", 0, "Lucidity level 0-5")
	createDreamCmd.Flags().Int("vividness", 0, "Vividness level 0-5")
	createDreamCmd.Flags().Int("intensity", 0, "Emotional intensity 0-5")
	createDreamCmd.MarkFlagRequired("text")

	getDreamCmd.Flags().BoolVar(&showDetailFlag, "full", false, "Include recordings, analysis, prompts and image records as JSON")

	listDreamsCmd.Flags().StringVar(&dateFromFlag, "from", "", "Earliest entry date to include (YYYY-MM-DD)")
	listDreamsCmd.Flags().StringVar(&dateToFlag, "to", "", "Latest entry date to include (YYYY-MM-DD)")
	listDreamsCmd.Flags().StringVar(&statusFlag, "status", "", "Filter by status (draft, processing, complete, archived)")
	listDreamsCmd.Flags().StringVar(&searchFlag, "search", "", "Filter by text match over title and dream text")
	listDreamsCmd.Flags().IntVar(&limitFlag, "limit", 0, "Maximum number of entries to return")
	listDreamsCmd.Flags().IntVar(&offsetFlag, "offset", 0, "Number of entries to skip")

	updateDreamCmd.Flags().String("title", "", "New title for the dream")
	updateDreamCmd.Flags().String("text", "", "New dream text")
	updateDreamCmd.Flags().String("description", "", "New enriched description")
	updateDreamCmd.Flags().Int("lucidity", 0, "New lucidity level 0-5")
	updateDreamCmd.Flags().Int("vividness", 0, "New vividness level 0-5")
	updateDreamCmd.Flags().Int("intensity", 0, "New emotional intensity 0-5")
	updateDreamCmd.Flags().String("status", "", "New status (draft, processing, complete, archived)")

	dreamsCmd.AddCommand(
		createDreamCmd,
		getDreamCmd,
		listDreamsCmd,
		updateDreamCmd,
		deleteDreamCmd,
		analyzeDreamCmd,
	)
}

func parseEntryID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid dream ID: %s", raw)
	}
	return id, nil
}

// mirrorUpsert copies entry metadata to the configured remote backup. Best
// effort: a mirror failure never fails the local write. Synchronous because
// the process exits right after the command returns.
func mirrorUpsert(entry dreams.Entry) {
	cfg, err := loadConfig()
	if err != nil {
		return
	}
	m := mirror.New(cfg.Mirror.URL, cfg.Mirror.APIKey)
	record := mirror.EntryRecord{
		EntryID:            entry.ID,
		UserID:             entry.UserID,
		EntryDate:          entry.EntryDate,
		Title:              entry.Title,
		Transcription:      entry.Transcription,
		LucidityLevel:      entry.LucidityLevel,
		VividnessLevel:     entry.VividnessLevel,
		EmotionalIntensity: entry.EmotionalIntensity,
		ImageURL:           entry.ImageURL,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.UpsertEntry(ctx, record); err != nil {
		slog.Warn("mirror call failed", "op", "upsert_entry", "error", err)
	}
}

func mirrorDelete(entryID int64) {
	cfg, err := loadConfig()
	if err != nil {
		return
	}
	m := mirror.New(cfg.Mirror.URL, cfg.Mirror.APIKey)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.DeleteEntry(ctx, entryID); err != nil {
		slog.Warn("mirror call failed", "op", "delete_entry", "error", err)
	}
}
