package dreams

import (
	"context"
	"errors"
	"testing"
)

func TestSaveJournalPromptsAssignsOrder(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	entry := createTestEntry(t, ctx, testDB, "Questioned dream", "I was somewhere")

	first, err := SaveJournalPrompts(ctx, testDB, entry.ID, []NewJournalPrompt{
		{PromptText: "What emotions did you feel?", PromptCategory: "emotions"},
		{PromptText: "Where did it take place?", PromptCategory: "setting"},
	})
	if err != nil {
		t.Fatalf("SaveJournalPrompts failed: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("Expected 2 saved prompts, got %d", len(first))
	}
	if first[0].PromptOrder != 0 || first[1].PromptOrder != 1 {
		t.Errorf("Expected orders 0,1, got %d,%d", first[0].PromptOrder, first[1].PromptOrder)
	}

	// A later session continues the sequence.
	second, err := SaveJournalPrompts(ctx, testDB, entry.ID, []NewJournalPrompt{
		{PromptText: "Who else was there?", PromptCategory: "people"},
	})
	if err != nil {
		t.Fatalf("SaveJournalPrompts failed: %v", err)
	}
	if second[0].PromptOrder != 2 {
		t.Errorf("Expected order 2 for continued sequence, got %d", second[0].PromptOrder)
	}

	listed, err := ListJournalPrompts(ctx, testDB, entry.ID)
	if err != nil {
		t.Fatalf("ListJournalPrompts failed: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("Expected 3 listed prompts, got %d", len(listed))
	}
	if listed[2].PromptText != "Who else was there?" {
		t.Errorf("Prompts not listed in ask order: %+v", listed)
	}
}

func TestSaveJournalPromptsValidation(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	entry := createTestEntry(t, ctx, testDB, "Strict dream", "text")

	if _, err := SaveJournalPrompts(ctx, testDB, entry.ID, []NewJournalPrompt{{PromptText: ""}}); err == nil {
		t.Errorf("Expected validation error for empty prompt text")
	}
	if _, err := SaveJournalPrompts(ctx, testDB, 9999, []NewJournalPrompt{{PromptText: "q"}}); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Expected ErrEntryNotFound for missing entry, got %v", err)
	}
}

func TestAskedPromptCategories(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	entry := createTestEntry(t, ctx, testDB, "Recurring dream", "again and again")

	if _, err := SaveJournalPrompts(ctx, testDB, entry.ID, []NewJournalPrompt{
		{PromptText: "What emotions did you feel?", PromptCategory: "emotions"},
		{PromptText: "What else did you feel?", PromptCategory: "emotions"},
		{PromptText: "Where did it take place?", PromptCategory: "setting"},
	}); err != nil {
		t.Fatalf("SaveJournalPrompts failed: %v", err)
	}

	categories, err := AskedPromptCategories(ctx, testDB, entry.ID)
	if err != nil {
		t.Fatalf("AskedPromptCategories failed: %v", err)
	}
	if len(categories) != 2 || categories[0] != "emotions" || categories[1] != "setting" {
		t.Errorf("Expected distinct sorted categories [emotions setting], got %v", categories)
	}

	other := createTestEntry(t, ctx, testDB, "Other dream", "unrelated")
	categories, err = AskedPromptCategories(ctx, testDB, other.ID)
	if err != nil {
		t.Fatalf("AskedPromptCategories failed for fresh entry: %v", err)
	}
	if len(categories) != 0 {
		t.Errorf("Expected no categories for an entry without questions, got %v", categories)
	}
}

func TestAnswerJournalPrompt(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	entry := createTestEntry(t, ctx, testDB, "Answered dream", "a story")

	saved, err := SaveJournalPrompts(ctx, testDB, entry.ID, []NewJournalPrompt{
		{PromptText: "What emotions did you feel?", PromptCategory: "emotions"},
	})
	if err != nil {
		t.Fatalf("SaveJournalPrompts failed: %v", err)
	}
	if saved[0].CompletedAt != 0 {
		t.Errorf("Fresh question should not be completed")
	}

	answered, err := AnswerJournalPrompt(ctx, testDB, saved[0].ID, "Mostly wonder, a little fear", "")
	if err != nil {
		t.Fatalf("AnswerJournalPrompt failed: %v", err)
	}
	if answered.ResponseTranscription != "Mostly wonder, a little fear" {
		t.Errorf("Answer not stored: %+v", answered)
	}
	if answered.CompletedAt == 0 {
		t.Errorf("Answered question should carry a completion timestamp")
	}
	if answered.ResponseAudioPath != "" {
		t.Errorf("No audio path was given, got %q", answered.ResponseAudioPath)
	}

	if _, err := AnswerJournalPrompt(ctx, testDB, saved[0].ID, "", ""); err == nil {
		t.Errorf("Expected validation error for empty answer")
	}
	if _, err := AnswerJournalPrompt(ctx, testDB, 9999, "an answer", ""); !errors.Is(err, ErrJournalPromptNotFound) {
		t.Errorf("Expected ErrJournalPromptNotFound, got %v", err)
	}
}

func TestJournalPromptsCascadeWithEntry(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	entry := createTestEntry(t, ctx, testDB, "Doomed dream", "soon gone")

	saved, err := SaveJournalPrompts(ctx, testDB, entry.ID, []NewJournalPrompt{
		{PromptText: "Where did it take place?", PromptCategory: "setting"},
	})
	if err != nil {
		t.Fatalf("SaveJournalPrompts failed: %v", err)
	}

	if err := DeleteEntry(ctx, testDB, entry.ID, func(string) error { return nil }); err != nil {
		t.Fatalf("DeleteEntry failed: %v", err)
	}

	if _, err := GetJournalPrompt(ctx, testDB, saved[0].ID); !errors.Is(err, ErrJournalPromptNotFound) {
		t.Errorf("Expected cascade delete of journal prompts, got %v", err)
	}
}
