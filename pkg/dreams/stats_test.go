package dreams

import (
	"context"
	"testing"
	"time"
)

func TestDashboardStats(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	first, err := CreateEntry(ctx, testDB, NewEntry{Title: "One", EntryDate: "2026-08-01", LucidityLevel: 2, VividnessLevel: 4})
	if err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}
	second, err := CreateEntry(ctx, testDB, NewEntry{Title: "Two", EntryDate: "2026-08-05", LucidityLevel: 4, VividnessLevel: 2})
	if err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	for _, a := range []struct {
		entryID int64
		labels  []string
	}{
		{first.ID, []string{"fear", "joy"}},
		{second.ID, []string{"joy"}},
	} {
		if _, err := SaveAnalysis(ctx, testDB, a.entryID, Analysis{Emotions: a.labels}); err != nil {
			t.Fatalf("SaveAnalysis failed: %v", err)
		}
	}

	if _, err := SaveEnhancement(ctx, testDB, first.ID, NewEnhancement{EnhancedPrompt: "prompt one"}, 0.5, 0.5); err != nil {
		t.Fatalf("SaveEnhancement failed: %v", err)
	}
	if _, err := RecordSuccessfulGeneration(ctx, testDB, first.ID, NewGeneration{
		SubmittedPrompt: "prompt one",
		ImageURL:        "https://img.example/1.png",
		CostEstimate:    0.04,
	}); err != nil {
		t.Fatalf("RecordSuccessfulGeneration failed: %v", err)
	}

	stats, err := GetDashboardStats(ctx, testDB, "")
	if err != nil {
		t.Fatalf("GetDashboardStats failed: %v", err)
	}

	if stats.Entries.TotalEntries != 2 {
		t.Errorf("Expected 2 entries, got %d", stats.Entries.TotalEntries)
	}
	if stats.Entries.AvgLucidity != 3 {
		t.Errorf("Expected avg lucidity 3, got %f", stats.Entries.AvgLucidity)
	}
	if stats.Entries.EntriesWithImages != 1 {
		t.Errorf("Expected 1 entry with image, got %d", stats.Entries.EntriesWithImages)
	}
	if stats.Entries.FirstEntryDate != "2026-08-01" || stats.Entries.MostRecentDate != "2026-08-05" {
		t.Errorf("Unexpected date range: %s .. %s", stats.Entries.FirstEntryDate, stats.Entries.MostRecentDate)
	}

	// joy appears twice, fear once; frequency descending, alphabetical tie-break.
	top := stats.Analysis.TopEmotions
	if len(top) != 2 || top[0].Tag != "joy" || top[0].Count != 2 || top[1].Tag != "fear" {
		t.Errorf("Unexpected top emotions: %+v", top)
	}

	if stats.Enhancements.TotalEnhancements != 1 {
		t.Errorf("Expected 1 enhancement, got %d", stats.Enhancements.TotalEnhancements)
	}
	if stats.Generations.Successful != 1 || stats.Generations.EstimatedCost != 0.04 {
		t.Errorf("Unexpected generation stats: %+v", stats.Generations)
	}
}

func TestTopTagsTieBreakAlphabetical(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	entry := createTestEntry(t, ctx, testDB, "Tied", "dream text")
	if _, err := SaveAnalysis(ctx, testDB, entry.ID, Analysis{Themes: []string{"water", "chase", "flying"}}); err != nil {
		t.Fatalf("SaveAnalysis failed: %v", err)
	}

	stats, err := GetAnalysisStats(ctx, testDB, "")
	if err != nil {
		t.Fatalf("GetAnalysisStats failed: %v", err)
	}

	themes := stats.TopThemes
	if len(themes) != 3 || themes[0].Tag != "chase" || themes[1].Tag != "flying" || themes[2].Tag != "water" {
		t.Errorf("Tie-break should sort alphabetically: %+v", themes)
	}
}

func TestMonthlySpend(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	month := time.Now().Format("2006-01")

	for _, c := range []NewCost{
		{OperationType: "image_generation", CostAmount: 0.04, BillingDate: month + "-02"},
		{OperationType: "image_generation", CostAmount: 0.08, BillingDate: month + "-15"},
		{OperationType: "image_generation", CostAmount: 0.50, BillingDate: "2020-01-01"},
	} {
		if err := RecordCost(ctx, testDB, c); err != nil {
			t.Fatalf("RecordCost failed: %v", err)
		}
	}

	total, err := MonthlySpend(ctx, testDB, "", month)
	if err != nil {
		t.Fatalf("MonthlySpend failed: %v", err)
	}
	if total < 0.119 || total > 0.121 {
		t.Errorf("Expected monthly spend ~0.12, got %f", total)
	}
}

func TestPrivacySettingsRoundTrip(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()

	defaults, err := GetPrivacySettings(ctx, testDB)
	if err != nil {
		t.Fatalf("GetPrivacySettings failed: %v", err)
	}
	if defaults.RetentionDays != DefaultRetentionDays || !defaults.AutoDeleteAudio {
		t.Errorf("Unexpected defaults: %+v", defaults)
	}

	want := PrivacySettings{RetentionDays: 90, AnalyticsEnabled: true, AutoDeleteAudio: false}
	if err := SetPrivacySettings(ctx, testDB, want); err != nil {
		t.Fatalf("SetPrivacySettings failed: %v", err)
	}

	got, err := GetPrivacySettings(ctx, testDB)
	if err != nil {
		t.Fatalf("GetPrivacySettings failed: %v", err)
	}
	if got != want {
		t.Errorf("Privacy settings round trip mismatch: got %+v, want %+v", got, want)
	}

	if err := SetPrivacySettings(ctx, testDB, PrivacySettings{RetentionDays: 0}); err == nil {
		t.Errorf("Expected validation error for zero retention days")
	}
}

func TestCharacters(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	c, err := SaveCharacter(ctx, testDB, NewCharacter{Name: "The guide", Relationship: "stranger"})
	if err != nil {
		t.Fatalf("SaveCharacter failed: %v", err)
	}
	if c.CharacterType != "dream_figure" || !c.IsActive {
		t.Errorf("Unexpected character defaults: %+v", c)
	}

	if err := TouchCharacter(ctx, testDB, c.ID); err != nil {
		t.Fatalf("TouchCharacter failed: %v", err)
	}
	after, err := GetCharacter(ctx, testDB, c.ID)
	if err != nil {
		t.Fatalf("GetCharacter failed: %v", err)
	}
	if after.UsageCount != 1 {
		t.Errorf("Expected usage count 1, got %d", after.UsageCount)
	}

	if err := DeactivateCharacter(ctx, testDB, c.ID); err != nil {
		t.Fatalf("DeactivateCharacter failed: %v", err)
	}
	active, err := ListCharacters(ctx, testDB, "", true)
	if err != nil {
		t.Fatalf("ListCharacters failed: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("Deactivated character still listed as active: %+v", active)
	}
	all, err := ListCharacters(ctx, testDB, "", false)
	if err != nil {
		t.Fatalf("ListCharacters failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("Expected 1 character overall, got %d", len(all))
	}
}

func TestStylePreferences(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := TouchStylePreference(ctx, testDB, "", "ethereal"); err != nil {
			t.Fatalf("TouchStylePreference failed: %v", err)
		}
	}
	if err := TouchStylePreference(ctx, testDB, "", "cosmic"); err != nil {
		t.Fatalf("TouchStylePreference failed: %v", err)
	}
	if err := SetFavoriteStyle(ctx, testDB, "", "cosmic", true); err != nil {
		t.Fatalf("SetFavoriteStyle failed: %v", err)
	}

	prefs, err := ListStylePreferences(ctx, testDB, "")
	if err != nil {
		t.Fatalf("ListStylePreferences failed: %v", err)
	}
	if len(prefs) != 2 {
		t.Fatalf("Expected 2 preferences, got %d", len(prefs))
	}
	if prefs[0].StyleName != "ethereal" || prefs[0].UsageCount != 3 {
		t.Errorf("Most used style should sort first: %+v", prefs[0])
	}
	if prefs[1].StyleName != "cosmic" || !prefs[1].IsFavorite {
		t.Errorf("Favorite flag not stored: %+v", prefs[1])
	}
}
