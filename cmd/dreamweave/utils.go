package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oneirolab/dreamweave/pkg/config"
	pkgdb "github.com/oneirolab/dreamweave/pkg/db"
	"github.com/oneirolab/dreamweave/pkg/dreams"
	"github.com/oneirolab/dreamweave/pkg/utils"
)

var (
	dbPath     string
	walMode    bool
	syncMode   string
	configPath string
	userIDFlag string
)

// openDB resolves the database path, opens the connection and brings the
// schema up to date. Resolution order: --db flag, config file, system default.
func openDB() (*sql.DB, error) {
	target := dbPath
	if target == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		target = cfg.DB.Path
	}

	resolved, err := utils.ResolveAndEnsureDBPath(target)
	if err != nil {
		return nil, err
	}

	dbConn, err := pkgdb.Open(resolved, walMode, syncMode)
	if err != nil {
		return nil, err
	}

	if err := pkgdb.Upgrade(dbConn, resolved, pkgdb.TargetSchemaVersion); err != nil {
		dbConn.Close()
		return nil, err
	}
	return dbConn, nil
}

func loadConfig() (config.Config, error) {
	return config.Load(configPath)
}

func userID() string {
	if userIDFlag != "" {
		return userIDFlag
	}
	return dreams.DefaultUserID
}

// formatTimestamp converts a Unix timestamp (float64, seconds since epoch)
// to a human-readable string in RFC3339 format.
func formatTimestamp(timestamp float64) string {
	timeObj := time.Unix(int64(timestamp), 0)
	return timeObj.Format(time.RFC3339)
}

// printJSON renders a result as indented JSON for commands whose output is
// structured data rather than a single record.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func printEntry(entry dreams.Entry) {
	fmt.Println("Dream Details:")
	fmt.Printf("ID:          %d\n", entry.ID)
	fmt.Printf("Date:        %s\n", entry.EntryDate)
	fmt.Printf("Title:       %s\n", entry.Title)
	fmt.Printf("Status:      %s\n", entry.Status)
	fmt.Printf("Lucidity:    %d/5\n", entry.LucidityLevel)
	fmt.Printf("Vividness:   %d/5\n", entry.VividnessLevel)
	fmt.Printf("Intensity:   %d/5\n", entry.EmotionalIntensity)
	if entry.ArtStyle != "" {
		fmt.Printf("Art Style:   %s\n", entry.ArtStyle)
	}
	if entry.ImageURL != "" {
		fmt.Printf("Image:       %s\n", entry.ImageURL)
	}
	fmt.Printf("Created At:  %s\n", formatTimestamp(entry.CreatedAt))
	fmt.Printf("Updated At:  %s\n", formatTimestamp(entry.UpdatedAt))
	fmt.Println("\nDream:")
	fmt.Println("------------------------------------------------------------")
	fmt.Println(entry.Transcription)
	if entry.Description != "" {
		fmt.Println()
		fmt.Println(entry.Description)
	}
	fmt.Println("------------------------------------------------------------")
}
