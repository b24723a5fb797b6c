package dreams

import (
	"context"
	"errors"
	"testing"
)

func TestSaveEnhancement(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	entry := createTestEntry(t, ctx, testDB, "Enhanced dream", "a dream about mirrors")

	enhanced := "A vivid dream visualization: a dream about mirrors. With symbolic depth: reflective surfaces"
	e, err := SaveEnhancement(ctx, testDB, entry.ID, NewEnhancement{
		OriginalPrompt: "a dream about mirrors",
		EnhancedPrompt: enhanced,
		ArtStyle:       "surreal",
		Emotions:       []string{"confusion"},
		Symbols:        []string{"mirror"},
	}, 0.4, 0.6)
	if err != nil {
		t.Fatalf("SaveEnhancement failed: %v", err)
	}

	if e.PromptLength != len(enhanced) {
		t.Errorf("Expected prompt_length %d, got %d", len(enhanced), e.PromptLength)
	}
	if e.ComplexityScore != 0.4 || e.ReadabilityScore != 0.6 {
		t.Errorf("Scores not stored: %f / %f", e.ComplexityScore, e.ReadabilityScore)
	}
	if e.FinalApprovedPrompt != "" {
		t.Errorf("Expected no final prompt before approval, got %q", e.FinalApprovedPrompt)
	}
	if e.StyleIntensity != 1.0 {
		t.Errorf("Expected default style intensity 1.0, got %f", e.StyleIntensity)
	}
	if len(e.Symbols) != 1 || e.Symbols[0] != "mirror" {
		t.Errorf("Symbols not stored: %v", e.Symbols)
	}
}

func TestSaveApprovalSetsFinalPrompt(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	entry := createTestEntry(t, ctx, testDB, "Entry", "dream text")

	e, err := SaveEnhancement(ctx, testDB, entry.ID, NewEnhancement{
		EnhancedPrompt: "built prompt",
	}, 0, 0)
	if err != nil {
		t.Fatalf("SaveEnhancement failed: %v", err)
	}

	approval, err := SaveApproval(ctx, testDB, e.ID, NewApproval{
		Status:             ApprovalApproved,
		SatisfactionRating: 5,
	})
	if err != nil {
		t.Fatalf("SaveApproval failed: %v", err)
	}
	if approval.ApprovedAt <= 0 {
		t.Errorf("Expected approved_at to be stamped")
	}

	after, err := GetEnhancement(ctx, testDB, e.ID)
	if err != nil {
		t.Fatalf("GetEnhancement failed: %v", err)
	}
	if after.FinalApprovedPrompt != "built prompt" {
		t.Errorf("Approval without modifications should finalize the built prompt, got %q", after.FinalApprovedPrompt)
	}
	if after.Approval == nil || after.Approval.Status != ApprovalApproved {
		t.Errorf("Expected latest approval attached, got %+v", after.Approval)
	}
}

func TestSaveApprovalModifiedUsesUserText(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	entry := createTestEntry(t, ctx, testDB, "Entry", "dream text")

	e, err := SaveEnhancement(ctx, testDB, entry.ID, NewEnhancement{EnhancedPrompt: "built prompt"}, 0, 0)
	if err != nil {
		t.Fatalf("SaveEnhancement failed: %v", err)
	}

	if _, err := SaveApproval(ctx, testDB, e.ID, NewApproval{
		Status:            ApprovalModified,
		UserModifications: "my own wording",
	}); err != nil {
		t.Fatalf("SaveApproval failed: %v", err)
	}

	after, err := GetEnhancement(ctx, testDB, e.ID)
	if err != nil {
		t.Fatalf("GetEnhancement failed: %v", err)
	}
	if after.FinalApprovedPrompt != "my own wording" {
		t.Errorf("Modified approval should finalize the user's wording, got %q", after.FinalApprovedPrompt)
	}
}

func TestSaveApprovalRejectedLeavesFinalPromptEmpty(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	entry := createTestEntry(t, ctx, testDB, "Entry", "dream text")

	e, err := SaveEnhancement(ctx, testDB, entry.ID, NewEnhancement{EnhancedPrompt: "built prompt"}, 0, 0)
	if err != nil {
		t.Fatalf("SaveEnhancement failed: %v", err)
	}

	if _, err := SaveApproval(ctx, testDB, e.ID, NewApproval{Status: ApprovalRejected}); err != nil {
		t.Fatalf("SaveApproval failed: %v", err)
	}

	after, err := GetEnhancement(ctx, testDB, e.ID)
	if err != nil {
		t.Fatalf("GetEnhancement failed: %v", err)
	}
	if after.FinalApprovedPrompt != "" {
		t.Errorf("Rejected approval must not finalize a prompt, got %q", after.FinalApprovedPrompt)
	}
}

func TestSaveApprovalValidation(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	entry := createTestEntry(t, ctx, testDB, "Entry", "dream text")
	e, err := SaveEnhancement(ctx, testDB, entry.ID, NewEnhancement{EnhancedPrompt: "p"}, 0, 0)
	if err != nil {
		t.Fatalf("SaveEnhancement failed: %v", err)
	}

	if _, err := SaveApproval(ctx, testDB, e.ID, NewApproval{Status: "maybe"}); err == nil {
		t.Errorf("Expected validation error for unknown approval status")
	}
	if _, err := SaveApproval(ctx, testDB, e.ID, NewApproval{Status: ApprovalApproved, SatisfactionRating: 6}); err == nil {
		t.Errorf("Expected validation error for rating 6")
	}
	if _, err := SaveApproval(ctx, testDB, 9999, NewApproval{Status: ApprovalApproved}); !errors.Is(err, ErrEnhancementNotFound) {
		t.Errorf("Expected ErrEnhancementNotFound, got %v", err)
	}
}

func TestRecordGenerations(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	entry := createTestEntry(t, ctx, testDB, "Imaged dream", "dream text")

	success, err := RecordSuccessfulGeneration(ctx, testDB, entry.ID, NewGeneration{
		SubmittedPrompt:       "the prompt",
		ImageURL:              "https://img.example/1.png",
		GenerationTimeSeconds: 8.2,
		CostEstimate:          0.04,
	})
	if err != nil {
		t.Fatalf("RecordSuccessfulGeneration failed: %v", err)
	}
	if success.Status != GenerationSuccess || success.Provider != "openai" || success.Model != "dall-e-3" {
		t.Errorf("Unexpected generation row: %+v", success)
	}
	if success.CompletedAt <= 0 {
		t.Errorf("Expected completed_at to be stamped")
	}

	after, err := GetEntry(ctx, testDB, entry.ID)
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if after.ImageURL != "https://img.example/1.png" {
		t.Errorf("Successful generation should stamp the entry image_url, got %q", after.ImageURL)
	}

	failed, err := RecordFailedGeneration(ctx, testDB, entry.ID, NewGeneration{
		SubmittedPrompt: "the prompt",
		ErrorMessage:    "content policy violation",
	})
	if err != nil {
		t.Fatalf("RecordFailedGeneration failed: %v", err)
	}
	if failed.Status != GenerationFailed || failed.ErrorMessage == "" {
		t.Errorf("Unexpected failed generation row: %+v", failed)
	}

	generations, err := ListGenerations(ctx, testDB, entry.ID)
	if err != nil {
		t.Fatalf("ListGenerations failed: %v", err)
	}
	if len(generations) != 2 {
		t.Errorf("Expected 2 generations, got %d", len(generations))
	}

	if _, err := RecordSuccessfulGeneration(ctx, testDB, entry.ID, NewGeneration{SubmittedPrompt: "p"}); err == nil {
		t.Errorf("Expected validation error for success without image_url")
	}
}
