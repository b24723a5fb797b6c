package main

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oneirolab/dreamweave/pkg/dreams"
	"github.com/oneirolab/dreamweave/pkg/imagegen"

	"github.com/spf13/cobra"
)

var (
	generateQualityFlag string
	generateSizeFlag    string
)

var generateCmd = &cobra.Command{
	Use:   "generate [dream-id]",
	Short: "Generate the dream image from the approved prompt",
	Long: `Submit the dream's approved prompt to the image generation API and record the
outcome. The prompt must be approved first with 'dreamweave prompt approve'.
Failed attempts are recorded too, together with the API's error message.`,
	Args: cobra.ExactArgs(1),
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

		enhancements, err := dreams.ListEnhancements(cmd.Context(), dbConn, entryID)
		if err != nil {
			return fmt.Errorf("failed to list prompt enhancements: %w", err)
		}

		// Newest approved prompt wins.
		var approved *dreams.Enhancement
		for i := range enhancements {
			if enhancements[i].FinalApprovedPrompt != "" {
				approved = &enhancements[i]
				break
			}
		}
		if approved == nil {
			return fmt.Errorf("no approved prompt for dream %d: build one with 'dreamweave prompt build %d' and approve it first", entryID, entryID)
		}

		return runGeneration(cmd, dbConn, entry, *approved)
	},
}

// runGeneration submits one approved prompt to the image API and records the
// outcome, success or failure. Shared by 'generate' and 'capture --generate'.
func runGeneration(cmd *cobra.Command, dbConn *sql.DB, entry dreams.Entry, approved dreams.Enhancement) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var analysisSummary string
	if stored, err := dreams.GetLatestAnalysis(cmd.Context(), dbConn, entry.ID); err == nil {
		analysisSummary = fmt.Sprintf("emotions: %s; themes: %s; symbols: %s",
			joinOrNone(stored.Emotions), joinOrNone(stored.Themes), joinOrNone(stored.Symbols))
	}

	client := imagegen.New(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSeconds)*time.Second)

	fmt.Printf("Submitting prompt for dream %d to %s ...\n", entry.ID, cfg.API.BaseURL)
	started := time.Now()
	resp, genErr := client.Generate(cmd.Context(), imagegen.Request{
		DreamPrompt:     approved.FinalApprovedPrompt,
		Style:           approved.ArtStyle,
		Quality:         generateQualityFlag,
		OriginalDream:   entry.Transcription,
		AnalysisSummary: analysisSummary,
	})
	elapsed := time.Since(started).Seconds()

	if genErr != nil {
		if _, recordErr := dreams.RecordFailedGeneration(cmd.Context(), dbConn, entry.ID, dreams.NewGeneration{
			EnhancementID:         approved.ID,
			Quality:               generateQualityFlag,
			Size:                  generateSizeFlag,
			SubmittedPrompt:       approved.FinalApprovedPrompt,
			GenerationTimeSeconds: elapsed,
			ErrorMessage:          genErr.Error(),
		}); recordErr != nil {
			cmd.PrintErrf("Failed to record the failed attempt: %v\n", recordErr)
		}
		if errors.Is(genErr, imagegen.ErrTimeout) {
			return fmt.Errorf("image generation timed out after %.0fs: the image may still have been produced upstream", elapsed)
		}
		return fmt.Errorf("image generation failed: %w", genErr)
	}

	generationTime := resp.GenerationTime
	if generationTime == 0 {
		generationTime = elapsed
	}

	generation, err := dreams.RecordSuccessfulGeneration(cmd.Context(), dbConn, entry.ID, dreams.NewGeneration{
		EnhancementID:         approved.ID,
		Quality:               generateQualityFlag,
		Size:                  generateSizeFlag,
		SubmittedPrompt:       approved.FinalApprovedPrompt,
		RevisedPrompt:         resp.RevisedPrompt,
		ImageURL:              resp.ImageURL,
		GenerationTimeSeconds: generationTime,
		CostEstimate:          resp.CostEstimate,
	})
	if err != nil {
		return fmt.Errorf("the image was generated but recording it failed: %w", err)
	}

	if resp.CostEstimate > 0 {
		if err := dreams.RecordCost(cmd.Context(), dbConn, dreams.NewCost{
			OperationType: "image_generation",
			OperationID:   generation.ID,
			Provider:      generation.Provider,
			CostAmount:    resp.CostEstimate,
			UnitsUsed:     1,
			UserID:        userID(),
			DreamEntryID:  entry.ID,
		}); err != nil {
			cmd.PrintErrf("Failed to record generation cost: %v\n", err)
		}
	}

	entry.ImageURL = generation.ImageURL
	mirrorUpsert(entry)

	fmt.Printf("Image generated in %.1fs.\n", generationTime)
	fmt.Printf("URL: %s\n", generation.ImageURL)
	if generation.RevisedPrompt != "" {
		fmt.Printf("Revised prompt: %s\n", generation.RevisedPrompt)
	}
	if generation.CostEstimate > 0 {
		fmt.Printf("Estimated cost: $%.4f\n", generation.CostEstimate)
	}
	return nil
}

func initGenerateCmd() {
	generateCmd.Flags().StringVar(&generateQualityFlag, "quality", "standard", "Image quality (standard or hd)")
	generateCmd.Flags().StringVar(&generateSizeFlag, "size", "1024x1024", "Image size")
}
