package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oneirolab/dreamweave/pkg/analysis"
	"github.com/oneirolab/dreamweave/pkg/dreams"
	"github.com/oneirolab/dreamweave/pkg/prompt"
	"github.com/oneirolab/dreamweave/pkg/transcribe"

	"github.com/spf13/cobra"
)

var (
	captureAudioFlag    string
	captureStyleFlag    string
	captureSkipAnalyze  bool
	captureSkipPrompt   bool
	captureGenerateFlag bool
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture a dream through the full pipeline",
	Long: `Capture a dream in one step: store the entry, attach the voice recording if
one is provided, run the keyword analysis and build an image generation prompt.

The transcript is taken from --text. On the mobile shell the on-device speech
recognizer produces it; the CLI accepts it directly and records the recognizer
confidence alongside any attached recording.

Examples:
  dreamweave capture --text "I was flying over a glowing city"
  dreamweave capture --text "..." --audio ~/recordings/dream.m4a --style cosmic
  dreamweave capture --text "..." --no-prompt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		title, _ := cmd.Flags().GetString("title")
		date, _ := cmd.Flags().GetString("date")
		lucidity, _ := cmd.Flags().GetInt("lucidity")
		vividness, _ := cmd.Flags().GetInt("vividness")
		intensity, _ := cmd.Flags().GetInt("intensity")

		if text == "" {
			return errors.New("dream text is required")
		}
		if captureStyleFlag != "" && !prompt.KnownStyle(captureStyleFlag) {
			return fmt.Errorf("unknown art style: %s (run 'dreamweave prompt styles' for options)", captureStyleFlag)
		}

		// The recognizer boundary. The CLI has no microphone, so the stub
		// stands in and supplies the confidence recorded with the audio row.
		var recognizer transcribe.Transcriber = transcribe.Stub{Text: text}
		transcript, err := recognizer.Transcribe(cmd.Context(), captureAudioFlag)
		if err != nil {
			return fmt.Errorf("transcription failed: %w", err)
		}

		var audio *dreams.NewAudioFile
		if captureAudioFlag != "" {
			info, err := os.Stat(captureAudioFlag)
			if err != nil {
				return fmt.Errorf("cannot read audio file: %w", err)
			}
			format := filepath.Ext(captureAudioFlag)
			if format != "" {
				format = format[1:]
			}
			audio = &dreams.NewAudioFile{
				FilePath:                captureAudioFlag,
				FileName:                filepath.Base(captureAudioFlag),
				FileSize:                info.Size(),
				AudioFormat:             format,
				AudioType:               dreams.AudioOriginalDream,
				TranscriptionConfidence: transcript.Confidence,
			}
		}

		var storedAnalysis *dreams.Analysis
		var enhancement *dreams.NewEnhancement
		var builtPrompt string
		styleID := captureStyleFlag
		if styleID == "" {
			styleID = prompt.DefaultStyleID
		}

		if !captureSkipAnalyze {
			started := time.Now()
			result := analysis.Analyze(transcript.Text)
			storedAnalysis = &dreams.Analysis{
				ConfidenceScore:     captureConfidence(result),
				Emotions:            result.Emotions,
				Themes:              result.Themes,
				Symbols:             result.Symbols,
				DominantEmotion:     result.DominantEmotion(),
				DominantTheme:       result.DominantTheme(),
				EmotionalComplexity: result.EmotionalComplexity(),
				SymbolicDensity:     result.SymbolicDensity(),
				AnalysisDurationMs:  time.Since(started).Milliseconds(),
			}

			if !captureSkipPrompt {
				promptStarted := time.Now()
				builtPrompt = prompt.Build(transcript.Text, styleID, result)
				enhancement = &dreams.NewEnhancement{
					OriginalPrompt:  transcript.Text,
					EnhancedPrompt:  builtPrompt,
					ArtStyle:        styleID,
					Emotions:        result.Emotions,
					Themes:          result.Themes,
					Symbols:         result.Symbols,
					DurationMs:      time.Since(promptStarted).Milliseconds(),
					TokensEstimated: len(builtPrompt) / 4,
				}
			}
		}

		dbConn, err := openDB()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		detail, err := dreams.CreateCompleteEntry(cmd.Context(), dbConn, dreams.NewEntry{
			UserID:             userID(),
			EntryDate:          date,
			Title:              title,
			Transcription:      transcript.Text,
			LucidityLevel:      lucidity,
			VividnessLevel:     vividness,
			EmotionalIntensity: intensity,
			ArtStyle:           styleID,
		}, audio, storedAnalysis, enhancement)
		if err != nil {
			return fmt.Errorf("failed to capture dream: %w", err)
		}

		if enhancement != nil {
			if err := dreams.TouchStylePreference(cmd.Context(), dbConn, userID(), styleID); err != nil {
				cmd.PrintErrf("Failed to record style preference: %v\n", err)
			}
		}
		if err := dreams.LogEvent(cmd.Context(), dbConn, dreams.NewEvent{
			EventType:     "pipeline",
			EventName:     "dream_captured",
			EventCategory: "capture",
			UserID:        userID(),
			DreamEntryID:  detail.ID,
			Properties: map[string]any{
				"has_audio":    audio != nil,
				"has_analysis": storedAnalysis != nil,
				"has_prompt":   enhancement != nil,
			},
		}); err != nil {
			cmd.PrintErrf("Failed to log capture event: %v\n", err)
		}

		mirrorUpsert(detail.Entry)
		printEntry(detail.Entry)

		if detail.Analysis != nil {
			fmt.Println("\nAnalysis:")
			fmt.Printf("Emotions:   %s\n", joinOrNone(detail.Analysis.Emotions))
			fmt.Printf("Themes:     %s\n", joinOrNone(detail.Analysis.Themes))
			fmt.Printf("Symbols:    %s\n", joinOrNone(detail.Analysis.Symbols))
			fmt.Printf("Confidence: %.2f\n", detail.Analysis.ConfidenceScore)
		}
		if len(detail.Enhancements) > 0 {
			fmt.Println("\nGenerated Prompt:")
			fmt.Println("------------------------------------------------------------")
			fmt.Println(detail.Enhancements[0].EnhancedPrompt)
			fmt.Println("------------------------------------------------------------")

			if captureGenerateFlag {
				// --generate stands in for the interactive approval step.
				enhancementID := detail.Enhancements[0].ID
				if _, err := dreams.SaveApproval(cmd.Context(), dbConn, enhancementID, dreams.NewApproval{
					Status: dreams.ApprovalApproved,
					Method: "auto",
					Reason: "approved automatically by capture --generate",
				}); err != nil {
					return fmt.Errorf("failed to auto-approve the prompt: %w", err)
				}
				approved, err := dreams.GetEnhancement(cmd.Context(), dbConn, enhancementID)
				if err != nil {
					return fmt.Errorf("failed to reload the approved prompt: %w", err)
				}
				return runGeneration(cmd, dbConn, detail.Entry, approved)
			}

			fmt.Printf("Approve it with: dreamweave prompt approve %d\n", detail.Enhancements[0].ID)
		}
		return nil
	},
}

func initCaptureCmd() {
	captureCmd.Flags().String("text", "", "Dream text (required)")
	captureCmd.Flags().String("title", "", "Title of the dream")
	captureCmd.Flags().String("date", "", "Entry date in YYYY-MM-DD format (defaults to today)")
	captureCmd.Flags().Int("lucidity", 0, "Lucidity level 0-5")
	captureCmd.Flags().Int("vividness", 0, "Vividness level 0-5")
	captureCmd.Flags().Int("intensity", 0, "Emotional intensity 0-5")
	captureCmd.Flags().StringVar(&captureAudioFlag, "audio", "", "Path to the voice recording to attach")
	captureCmd.Flags().StringVar(&captureStyleFlag, "style", "", "Art style for the generated prompt (defaults to ethereal)")
	captureCmd.Flags().BoolVar(&captureSkipAnalyze, "no-analyze", false, "Skip the keyword analysis step")
	captureCmd.Flags().BoolVar(&captureSkipPrompt, "no-prompt", false, "Skip building the image generation prompt")
	captureCmd.Flags().BoolVar(&captureGenerateFlag, "generate", false, "Auto-approve the built prompt and generate the image immediately")
	captureCmd.MarkFlagRequired("text")
}

// captureConfidence grades how much signal the analyzer found. Keyword
// matching is crude, so the ceiling stays well below 1.
func captureConfidence(result analysis.Result) float64 {
	matches := len(result.Emotions) + len(result.Themes) + len(result.Symbols)
	confidence := 0.3 + 0.1*float64(matches)
	if confidence > 0.8 {
		confidence = 0.8
	}
	return confidence
}

func joinOrNone(tags []string) string {
	if len(tags) == 0 {
		return "none"
	}
	out := tags[0]
	for _, t := range tags[1:] {
		out += ", " + t
	}
	return out
}
