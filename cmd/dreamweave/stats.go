package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/oneirolab/dreamweave/pkg/dreams"

	"github.com/spf13/cobra"
)

var (
	statsJSONFlag       bool
	charactersAllFlag   bool
	characterTypeFlag   string
	characterDescFlag   string
	characterRelateFlag string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show journal statistics",
	Long:  `Show journal, analysis, prompt and image generation statistics, plus this month's spend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConn, err := openDB()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		stats, err := dreams.GetDashboardStats(cmd.Context(), dbConn, userID())
		if err != nil {
			return fmt.Errorf("failed to compute statistics: %w", err)
		}

		if statsJSONFlag {
			return printJSON(stats)
		}

		fmt.Println("Journal:")
		fmt.Printf("Dreams recorded:    %d\n", stats.Entries.TotalEntries)
		if stats.Entries.FirstEntryDate != "" {
			fmt.Printf("First / latest:     %s / %s\n", stats.Entries.FirstEntryDate, stats.Entries.MostRecentDate)
		}
		fmt.Printf("Avg lucidity:       %.1f/5\n", stats.Entries.AvgLucidity)
		fmt.Printf("Avg vividness:      %.1f/5\n", stats.Entries.AvgVividness)
		fmt.Printf("Avg intensity:      %.1f/5\n", stats.Entries.AvgIntensity)
		fmt.Printf("Dreams with images: %d\n", stats.Entries.EntriesWithImages)

		printTagFrequencies("Top Emotions", stats.Analysis.TopEmotions)
		printTagFrequencies("Top Themes", stats.Analysis.TopThemes)
		printTagFrequencies("Top Symbols", stats.Analysis.TopSymbols)

		fmt.Println("\nPrompts:")
		fmt.Printf("Built:    %d\n", stats.Enhancements.TotalEnhancements)
		fmt.Printf("Approved: %d\n", stats.Enhancements.ApprovedCount)

		fmt.Println("\nImages:")
		fmt.Printf("Generated: %d\n", stats.Generations.Successful)
		fmt.Printf("Failed:    %d\n", stats.Generations.Failed)
		fmt.Printf("Est. cost: $%.2f\n", stats.Generations.EstimatedCost)

		month := time.Now().Format("2006-01")
		spend, err := dreams.MonthlySpend(cmd.Context(), dbConn, userID(), month)
		if err != nil {
			return fmt.Errorf("failed to compute monthly spend: %w", err)
		}
		fmt.Printf("\nSpend this month (%s): $%.2f\n", month, spend)
		return nil
	},
}

var charactersCmd = &cobra.Command{
	Use:   "characters",
	Short: "Manage recurring dream characters",
	Long:  `Track people and figures that recur across your dreams.`,
}

var addCharacterCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a recurring dream character",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConn, err := openDB()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		character, err := dreams.SaveCharacter(cmd.Context(), dbConn, dreams.NewCharacter{
			UserID:        userID(),
			Name:          args[0],
			Description:   characterDescFlag,
			CharacterType: characterTypeFlag,
			Relationship:  characterRelateFlag,
		})
		if err != nil {
			return fmt.Errorf("failed to save character: %w", err)
		}

		fmt.Printf("Character %d saved: %s (%s)\n", character.ID, character.Name, character.CharacterType)
		return nil
	},
}

var listCharactersCmd = &cobra.Command{
	Use:   "list",
	Short: "List recurring dream characters",
	Long:  `List recurring dream characters, most frequently appearing first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConn, err := openDB()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		characters, err := dreams.ListCharacters(cmd.Context(), dbConn, userID(), !charactersAllFlag)
		if err != nil {
			return fmt.Errorf("failed to list characters: %w", err)
		}
		if len(characters) == 0 {
			fmt.Println("No characters recorded yet.")
			return nil
		}

		fmt.Println("ID | Name | Type | Relationship | Appearances | Active")
		fmt.Println("------------------------------------------------------------")
		for _, c := range characters {
			relationship := c.Relationship
			if relationship == "" {
				relationship = "-"
			}
			fmt.Printf("%d | %s | %s | %s | %d | %t\n",
				c.ID, c.Name, c.CharacterType, relationship, c.UsageCount, c.IsActive)
		}
		return nil
	},
}

var touchCharacterCmd = &cobra.Command{
	Use:   "seen [character-id]",
	Short: "Record one more appearance of a character",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		characterID, err := parseEntryID(args[0])
		if err != nil {
			return fmt.Errorf("invalid character ID: %s", args[0])
		}

		dbConn, err := openDB()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		err = dreams.TouchCharacter(cmd.Context(), dbConn, characterID)
		if errors.Is(err, dreams.ErrCharacterNotFound) {
			return fmt.Errorf("character not found: %s", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to record appearance: %w", err)
		}

		fmt.Printf("Recorded an appearance for character %s.\n", args[0])
		return nil
	},
}

var retireCharacterCmd = &cobra.Command{
	Use:   "retire [character-id]",
	Short: "Retire a character from suggestions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		characterID, err := parseEntryID(args[0])
		if err != nil {
			return fmt.Errorf("invalid character ID: %s", args[0])
		}

		dbConn, err := openDB()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		err = dreams.DeactivateCharacter(cmd.Context(), dbConn, characterID)
		if errors.Is(err, dreams.ErrCharacterNotFound) {
			return fmt.Errorf("character not found: %s", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to retire character: %w", err)
		}

		fmt.Printf("Character %s retired.\n", args[0])
		return nil
	},
}

func initStatsCmd() {
	statsCmd.Flags().BoolVar(&statsJSONFlag, "json", false, "Output the statistics as JSON")

	addCharacterCmd.Flags().StringVar(&characterTypeFlag, "type", "", "Character type (defaults to dream_figure)")
	addCharacterCmd.Flags().StringVar(&characterDescFlag, "description", "", "Description of the character")
	addCharacterCmd.Flags().StringVar(&characterRelateFlag, "relationship", "", "Your relationship to the character")

	listCharactersCmd.Flags().BoolVar(&charactersAllFlag, "all", false, "Include retired characters")

	charactersCmd.AddCommand(
		addCharacterCmd,
		listCharactersCmd,
		touchCharacterCmd,
		retireCharacterCmd,
	)
}

func printTagFrequencies(heading string, tags []dreams.TagFrequency) {
	if len(tags) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", heading)
	for _, t := range tags {
		fmt.Printf("%-12s %d\n", t.Tag, t.Count)
	}
}
