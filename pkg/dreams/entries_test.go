package dreams

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/oneirolab/dreamweave/pkg/db"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := db.Open(":memory:", true, "NORMAL")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	if err := db.InitializeSchema(testDB, db.TargetSchemaVersion); err != nil {
		t.Fatalf("Failed to initialize schema: %v", err)
	}

	return testDB
}

func createTestEntry(t *testing.T, ctx context.Context, testDB *sql.DB, title, transcription string) Entry {
	t.Helper()
	entry, err := CreateEntry(ctx, testDB, NewEntry{Title: title, Transcription: transcription})
	if err != nil {
		t.Fatalf("CreateEntry failed in createTestEntry: %v", err)
	}
	return entry
}

func TestCreateEntryDefaults(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	entry, err := CreateEntry(ctx, testDB, NewEntry{
		Title:         "Flying over the city",
		Transcription: "I was flying over the city at night",
	})
	if err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	if entry.ID == 0 {
		t.Errorf("Expected entry ID to be set")
	}
	if entry.UserID != DefaultUserID {
		t.Errorf("Expected default user id, got %s", entry.UserID)
	}
	if entry.Status != StatusDraft {
		t.Errorf("Expected draft status, got %s", entry.Status)
	}
	if entry.EntryDate == "" {
		t.Errorf("Expected entry_date to default to today")
	}
	if entry.RetentionDays != DefaultRetentionDays {
		t.Errorf("Expected retention_days %d, got %d", DefaultRetentionDays, entry.RetentionDays)
	}
	if entry.CreatedAt <= 0 || entry.UpdatedAt <= 0 {
		t.Errorf("Expected timestamps to be set, got %f / %f", entry.CreatedAt, entry.UpdatedAt)
	}
}

func TestCreateEntryValidation(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()

	_, err := CreateEntry(ctx, testDB, NewEntry{LucidityLevel: 7})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected ValidationError for lucidity 7, got %v", err)
	}
	if vErr.Field != "lucidity_level" {
		t.Errorf("Expected lucidity_level field in error, got %s", vErr.Field)
	}

	_, err = CreateEntry(ctx, testDB, NewEntry{EntryDate: "not-a-date"})
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected ValidationError for bad entry_date, got %v", err)
	}
}

func TestGetEntryNotFound(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	_, err := GetEntry(context.Background(), testDB, 12345)
	if !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Expected ErrEntryNotFound, got %v", err)
	}
}

func TestListEntriesFilterAndPaging(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	for _, in := range []NewEntry{
		{Title: "Ocean dream", Transcription: "swimming in the ocean", EntryDate: "2026-08-01"},
		{Title: "Chase dream", Transcription: "being chased through alleys", EntryDate: "2026-08-02"},
		{Title: "Ocean again", Transcription: "waves and the ocean shore", EntryDate: "2026-08-03"},
	} {
		if _, err := CreateEntry(ctx, testDB, in); err != nil {
			t.Fatalf("CreateEntry failed: %v", err)
		}
	}

	page, err := ListEntries(ctx, testDB, Filter{}, Page{Limit: 2})
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if page.Total != 3 {
		t.Errorf("Expected total 3, got %d", page.Total)
	}
	if len(page.Items) != 2 {
		t.Fatalf("Expected 2 items on first page, got %d", len(page.Items))
	}
	if !page.HasMore {
		t.Errorf("Expected HasMore on first page")
	}
	if page.Items[0].EntryDate != "2026-08-03" {
		t.Errorf("Expected newest entry first, got %s", page.Items[0].EntryDate)
	}

	search, err := ListEntries(ctx, testDB, Filter{Search: "ocean"}, Page{})
	if err != nil {
		t.Fatalf("ListEntries with search failed: %v", err)
	}
	if search.Total != 2 {
		t.Errorf("Expected 2 ocean matches, got %d", search.Total)
	}

	ranged, err := ListEntries(ctx, testDB, Filter{DateFrom: "2026-08-02", DateTo: "2026-08-02"}, Page{})
	if err != nil {
		t.Fatalf("ListEntries with date range failed: %v", err)
	}
	if ranged.Total != 1 || ranged.Items[0].Title != "Chase dream" {
		t.Errorf("Date range filter returned wrong rows: %+v", ranged.Items)
	}
}

func TestListEntriesHasAnalysisFilter(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	analyzed := createTestEntry(t, ctx, testDB, "Analyzed", "a dream about water")
	createTestEntry(t, ctx, testDB, "Raw", "a dream never analyzed")

	if _, err := SaveAnalysis(ctx, testDB, analyzed.ID, Analysis{Emotions: []string{"joy"}}); err != nil {
		t.Fatalf("SaveAnalysis failed: %v", err)
	}

	yes := true
	withAnalysis, err := ListEntries(ctx, testDB, Filter{HasAnalysis: &yes}, Page{})
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if withAnalysis.Total != 1 || withAnalysis.Items[0].ID != analyzed.ID {
		t.Errorf("HasAnalysis filter returned wrong rows: %+v", withAnalysis.Items)
	}

	no := false
	withoutAnalysis, err := ListEntries(ctx, testDB, Filter{HasAnalysis: &no}, Page{})
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if withoutAnalysis.Total != 1 || withoutAnalysis.Items[0].Title != "Raw" {
		t.Errorf("Negated HasAnalysis filter returned wrong rows: %+v", withoutAnalysis.Items)
	}
}

func TestUpdateEntry(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	entry := createTestEntry(t, ctx, testDB, "Before", "original text")

	newTitle := "After"
	lucidity := 4
	status := StatusComplete
	updated, err := UpdateEntry(ctx, testDB, entry.ID, EntryUpdate{
		Title:         &newTitle,
		LucidityLevel: &lucidity,
		Status:        &status,
	})
	if err != nil {
		t.Fatalf("UpdateEntry failed: %v", err)
	}
	if updated.Title != "After" || updated.LucidityLevel != 4 || updated.Status != StatusComplete {
		t.Errorf("Update not applied: %+v", updated)
	}
	if updated.Transcription != "original text" {
		t.Errorf("Untouched field changed: %q", updated.Transcription)
	}

	if _, err := UpdateEntry(ctx, testDB, entry.ID, EntryUpdate{}); !errors.Is(err, ErrNoFields) {
		t.Errorf("Expected ErrNoFields for empty update, got %v", err)
	}

	bad := "sleepwalking"
	if _, err := UpdateEntry(ctx, testDB, entry.ID, EntryUpdate{Status: &bad}); err == nil {
		t.Errorf("Expected validation error for unknown status")
	}

	if _, err := UpdateEntry(ctx, testDB, 9999, EntryUpdate{Title: &newTitle}); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Expected ErrEntryNotFound, got %v", err)
	}
}

func TestDeleteEntryCascadesAndRemovesBlobs(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	entry := createTestEntry(t, ctx, testDB, "Doomed", "short lived dream")

	if _, err := SaveAudioFile(ctx, testDB, entry.ID, NewAudioFile{FilePath: "/tmp/doomed.m4a", AudioType: AudioOriginalDream}); err != nil {
		t.Fatalf("SaveAudioFile failed: %v", err)
	}
	if _, err := SaveAnalysis(ctx, testDB, entry.ID, Analysis{Emotions: []string{"fear"}}); err != nil {
		t.Fatalf("SaveAnalysis failed: %v", err)
	}

	var removed []string
	remove := func(path string) error {
		removed = append(removed, path)
		return nil
	}

	if err := DeleteEntry(ctx, testDB, entry.ID, remove); err != nil {
		t.Fatalf("DeleteEntry failed: %v", err)
	}
	if len(removed) != 1 || removed[0] != "/tmp/doomed.m4a" {
		t.Errorf("Expected audio blob removal, got %v", removed)
	}

	if _, err := GetEntry(ctx, testDB, entry.ID); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Expected entry gone, got %v", err)
	}

	var count int
	if err := testDB.QueryRow("SELECT COUNT(*) FROM dream_analysis WHERE dream_entry_id = ?", entry.ID).Scan(&count); err != nil {
		t.Fatalf("Count query failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected analysis rows cascaded, found %d", count)
	}

	if err := DeleteEntry(ctx, testDB, entry.ID, remove); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Expected ErrEntryNotFound on second delete, got %v", err)
	}
}

func TestCreateCompleteEntry(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	detail, err := CreateCompleteEntry(ctx, testDB,
		NewEntry{Title: "Full capture", Transcription: "I was flying over water, it was peaceful"},
		&NewAudioFile{FilePath: "/tmp/capture.m4a", DurationSeconds: 42},
		&Analysis{Emotions: []string{"peace"}, Themes: []string{"flying", "water"}, Symbols: []string{}, DominantEmotion: "peace", DominantTheme: "flying"},
		&NewEnhancement{OriginalPrompt: "I was flying over water", EnhancedPrompt: "A vivid dream visualization: flying over water", ArtStyle: "ethereal"},
	)
	if err != nil {
		t.Fatalf("CreateCompleteEntry failed: %v", err)
	}

	if detail.Status != StatusComplete {
		t.Errorf("Expected complete status, got %s", detail.Status)
	}
	if len(detail.AudioFiles) != 1 {
		t.Errorf("Expected 1 audio file, got %d", len(detail.AudioFiles))
	}
	if detail.Analysis == nil || detail.Analysis.DominantEmotion != "peace" {
		t.Errorf("Expected attached analysis with dominant emotion, got %+v", detail.Analysis)
	}
	if len(detail.Enhancements) != 1 {
		t.Errorf("Expected 1 enhancement, got %d", len(detail.Enhancements))
	}
	if got := detail.Analysis.Themes; len(got) != 2 || got[0] != "flying" || got[1] != "water" {
		t.Errorf("Theme order not preserved: %v", got)
	}
}

func TestCreateCompleteEntryRollsBack(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	_, err := CreateCompleteEntry(ctx, testDB,
		NewEntry{Title: "Half capture"},
		nil,
		nil,
		&NewEnhancement{EnhancedPrompt: ""}, // invalid, forces rollback
	)
	if err == nil {
		t.Fatalf("Expected error from invalid enhancement")
	}

	page, err := ListEntries(ctx, testDB, Filter{}, Page{})
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if page.Total != 0 {
		t.Errorf("Expected rollback to leave no entries, found %d", page.Total)
	}
}
