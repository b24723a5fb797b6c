package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oneirolab/dreamweave/pkg/analysis"
	"github.com/oneirolab/dreamweave/pkg/dreams"
	"github.com/oneirolab/dreamweave/pkg/prompt"

	"github.com/spf13/cobra"
)

var promptStyleFlag string

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Build and approve image generation prompts",
	Long:  `Build image generation prompts from analyzed dreams, review them, and record approval decisions.`,
}

var buildPromptCmd = &cobra.Command{
	Use:   "build [dream-id]",
	Short: "Build an image generation prompt for a dream",
	Long: `Build an image generation prompt from a dream entry and store it for approval.
Reuses the stored analysis when one exists, otherwise analyzes the text on the fly.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entryID, err := parseEntryID(args[0])
		if err != nil {
			return err
		}

		styleID := promptStyleFlag
		if styleID == "" {
			styleID = prompt.DefaultStyleID
		}
		if !prompt.KnownStyle(styleID) {
			return fmt.Errorf("unknown art style: %s (run 'dreamweave prompt styles' for options)", styleID)
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

		dreamText := entry.Transcription
		if dreamText == "" {
			dreamText = entry.Description
		}

		var result analysis.Result
		stored, err := dreams.GetLatestAnalysis(cmd.Context(), dbConn, entryID)
		switch {
		case err == nil:
			result = analysis.Result{Emotions: stored.Emotions, Themes: stored.Themes, Symbols: stored.Symbols}
		case errors.Is(err, dreams.ErrAnalysisNotFound):
			result = analysis.Analyze(dreamText)
		default:
			return fmt.Errorf("failed to load analysis: %w", err)
		}

		started := time.Now()
		enhanced := prompt.Build(dreamText, styleID, result)
		enhancement, err := dreams.SaveEnhancement(cmd.Context(), dbConn, entryID, dreams.NewEnhancement{
			OriginalPrompt:  dreamText,
			EnhancedPrompt:  enhanced,
			ArtStyle:        styleID,
			Emotions:        result.Emotions,
			Themes:          result.Themes,
			Symbols:         result.Symbols,
			DurationMs:      time.Since(started).Milliseconds(),
			TokensEstimated: len(enhanced) / 4,
		}, prompt.ComplexityScore(enhanced), prompt.ReadabilityScore(enhanced))
		if err != nil {
			return fmt.Errorf("failed to store prompt enhancement: %w", err)
		}

		if err := dreams.TouchStylePreference(cmd.Context(), dbConn, userID(), styleID); err != nil {
			cmd.PrintErrf("Failed to record style preference: %v\n", err)
		}

		fmt.Printf("Prompt enhancement %d (style: %s, %d chars):\n", enhancement.ID, enhancement.ArtStyle, enhancement.PromptLength)
		fmt.Println("------------------------------------------------------------")
		fmt.Println(enhancement.EnhancedPrompt)
		fmt.Println("------------------------------------------------------------")
		fmt.Printf("Approve it with: dreamweave prompt approve %d\n", enhancement.ID)
		return nil
	},
}

var approvePromptCmd = &cobra.Command{
	Use:   "approve [enhancement-id]",
	Short: "Record the approval decision for a prompt",
	Long: `Record the user's decision on a prompt enhancement. Approving finalizes the
built prompt; --modify finalizes your edited text instead; --reject leaves the
enhancement without a final prompt.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		enhancementID, err := parseEntryID(args[0])
		if err != nil {
			return fmt.Errorf("invalid enhancement ID: %s", args[0])
		}

		modifications, _ := cmd.Flags().GetString("modify")
		reject, _ := cmd.Flags().GetBool("reject")
		reason, _ := cmd.Flags().GetString("reason")
		rating, _ := cmd.Flags().GetInt("rating")
		feedback, _ := cmd.Flags().GetString("feedback")

		status := dreams.ApprovalApproved
		if modifications != "" {
			status = dreams.ApprovalModified
		}
		if reject {
			if modifications != "" {
				return errors.New("--reject and --modify are mutually exclusive")
			}
			status = dreams.ApprovalRejected
		}

		dbConn, err := openDB()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		approval, err := dreams.SaveApproval(cmd.Context(), dbConn, enhancementID, dreams.NewApproval{
			Status:             status,
			UserModifications:  modifications,
			Reason:             reason,
			Method:             "manual",
			SatisfactionRating: rating,
			UserFeedback:       feedback,
		})
		if errors.Is(err, dreams.ErrEnhancementNotFound) {
			return fmt.Errorf("prompt enhancement not found: %s", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to record approval: %w", err)
		}

		fmt.Printf("Recorded %s decision for enhancement %d.\n", approval.Status, enhancementID)
		if approval.Status != dreams.ApprovalRejected {
			enhancement, err := dreams.GetEnhancement(cmd.Context(), dbConn, enhancementID)
			if err == nil && enhancement.FinalApprovedPrompt != "" {
				fmt.Println("\nFinal prompt:")
				fmt.Println("------------------------------------------------------------")
				fmt.Println(enhancement.FinalApprovedPrompt)
				fmt.Println("------------------------------------------------------------")
				fmt.Printf("Generate the image with: dreamweave generate %d\n", enhancement.DreamEntryID)
			}
		}
		return nil
	},
}

var listPromptsCmd = &cobra.Command{
	Use:   "list [dream-id]",
	Short: "List prompt enhancements for a dream",
	Long:  `List every prompt enhancement built for a dream entry, newest first, with approval state.`,
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

		enhancements, err := dreams.ListEnhancements(cmd.Context(), dbConn, entryID)
		if err != nil {
			return fmt.Errorf("failed to list prompt enhancements: %w", err)
		}
		if len(enhancements) == 0 {
			fmt.Println("No prompt enhancements found for this dream.")
			return nil
		}
		return printJSON(enhancements)
	},
}

var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "List art styles and your usage of them",
	Long:  `List the selectable art styles and quality options, along with your style usage history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Art Styles:")
		fmt.Println("ID | Name | Description")
		fmt.Println("------------------------------------------------------------")
		for _, s := range prompt.Styles() {
			marker := " "
			if s.ID == prompt.DefaultStyleID {
				marker = "*"
			}
			fmt.Printf("%s %s | %s | %s\n", marker, s.ID, s.Name, s.Description)
		}

		fmt.Println("\nQuality Options:")
		for _, q := range prompt.QualityOptions() {
			fmt.Printf("%s | %s | %s\n", q.ID, q.Name, q.Description)
		}

		dbConn, err := openDB()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		prefs, err := dreams.ListStylePreferences(cmd.Context(), dbConn, userID())
		if err != nil {
			return fmt.Errorf("failed to list style preferences: %w", err)
		}
		if len(prefs) == 0 {
			return nil
		}

		fmt.Println("\nYour Usage:")
		fmt.Println("Style | Uses | Avg Rating | Favorite")
		fmt.Println("------------------------------------------------------------")
		for _, p := range prefs {
			fmt.Printf("%s | %d | %.1f | %t\n", p.StyleName, p.UsageCount, p.AverageRating, p.IsFavorite)
		}
		return nil
	},
}

var questionsCmd = &cobra.Command{
	Use:   "questions [dream-id]",
	Short: "Suggest follow-up questions for a dream",
	Long: `Suggest up to three follow-up questions to enrich a dream entry, based on what
the dream text is missing. Asked questions are recorded with the entry, so a
later run skips their categories automatically; --asked adds further
categories to skip. Record an answer with 'dreamweave prompt answer'.`,
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

		stored, err := dreams.AskedPromptCategories(cmd.Context(), dbConn, entryID)
		if err != nil {
			return fmt.Errorf("failed to load asked questions: %w", err)
		}
		var asked []analysis.Category
		for _, c := range stored {
			asked = append(asked, analysis.Category(c))
		}
		askedRaw, _ := cmd.Flags().GetString("asked")
		if askedRaw != "" {
			for _, part := range strings.Split(askedRaw, ",") {
				asked = append(asked, analysis.Category(strings.TrimSpace(part)))
			}
		}

		questions := analysis.SelectQuestions(entry.Transcription, asked)
		if len(questions) == 0 {
			fmt.Println("No further questions - the dream is already richly described.")
			return nil
		}

		toSave := make([]dreams.NewJournalPrompt, len(questions))
		for i, q := range questions {
			toSave[i] = dreams.NewJournalPrompt{PromptText: q.Prompt, PromptCategory: string(q.Category)}
		}
		saved, err := dreams.SaveJournalPrompts(cmd.Context(), dbConn, entryID, toSave)
		if err != nil {
			return fmt.Errorf("failed to record asked questions: %w", err)
		}

		for i, jp := range saved {
			fmt.Printf("%d. [%s] %s (question %d)\n", i+1, jp.PromptCategory, jp.PromptText, jp.ID)
		}
		fmt.Println("\nAnswer one with: dreamweave prompt answer [question-id] --text \"...\"")
		return nil
	},
}

var answerPromptCmd = &cobra.Command{
	Use:   "answer [question-id]",
	Short: "Record the answer to a follow-up question",
	Long: `Record the answer to a question asked by 'dreamweave prompt questions'. The
answer is stored with the question and the question is marked completed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		promptID, err := parseEntryID(args[0])
		if err != nil {
			return fmt.Errorf("invalid question ID: %s", args[0])
		}

		text, _ := cmd.Flags().GetString("text")
		audio, _ := cmd.Flags().GetString("audio")

		dbConn, err := openDB()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		answered, err := dreams.AnswerJournalPrompt(cmd.Context(), dbConn, promptID, text, audio)
		if errors.Is(err, dreams.ErrJournalPromptNotFound) {
			return fmt.Errorf("question not found: %s", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to record answer: %w", err)
		}

		fmt.Printf("Recorded answer to question %d (dream %d, category %s).\n",
			answered.ID, answered.DreamEntryID, answered.PromptCategory)
		return nil
	},
}

func initPromptCmd() {
	buildPromptCmd.Flags().StringVar(&promptStyleFlag, "style", "", "Art style id (defaults to ethereal)")

	approvePromptCmd.Flags().String("modify", "", "Approve with your edited prompt text instead of the built one")
	approvePromptCmd.Flags().Bool("reject", false, "Reject the prompt")
	approvePromptCmd.Flags().String("reason", "", "Reason for the decision")
	approvePromptCmd.Flags().Int("rating", 0, "Satisfaction rating 1-5")
	approvePromptCmd.Flags().String("feedback", "", "Free-form feedback on the prompt")

	questionsCmd.Flags().String("asked", "", "Comma-separated question categories to skip, on top of those already recorded")

	answerPromptCmd.Flags().String("text", "", "Answer text (required)")
	answerPromptCmd.Flags().String("audio", "", "Path to a voice recording of the answer")
	answerPromptCmd.MarkFlagRequired("text")

	promptCmd.AddCommand(
		buildPromptCmd,
		approvePromptCmd,
		listPromptsCmd,
		stylesCmd,
		questionsCmd,
		answerPromptCmd,
	)
}
