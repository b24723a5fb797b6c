package analysis

import (
	"reflect"
	"testing"
)

func TestAnalyzeEmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		result := Analyze(text)
		if result.Emotions == nil || result.Themes == nil || result.Symbols == nil {
			t.Fatalf("Analyze(%q) returned nil slices, want empty non-nil slices", text)
		}
		if len(result.Emotions) != 0 || len(result.Themes) != 0 || len(result.Symbols) != 0 {
			t.Errorf("Analyze(%q) = %+v, want empty result", text, result)
		}
	}
}

func TestAnalyzeKeywordContract(t *testing.T) {
	result := Analyze("I felt happy and saw my mother")

	if !contains(result.Emotions, "joy") {
		t.Errorf("Expected 'joy' in emotions, got %v", result.Emotions)
	}
	if !contains(result.Themes, "family") {
		t.Errorf("Expected 'family' in themes, got %v", result.Themes)
	}
}

func TestAnalyzeScenario(t *testing.T) {
	result := Analyze("I was flying over water with my mother, it was peaceful")

	if !contains(result.Emotions, "peace") {
		t.Errorf("Expected 'peace' in emotions, got %v", result.Emotions)
	}
	for _, theme := range []string{"flying", "water", "family"} {
		if !contains(result.Themes, theme) {
			t.Errorf("Expected %q in themes, got %v", theme, result.Themes)
		}
	}
}

func TestAnalyzeCaseInsensitive(t *testing.T) {
	lower := Analyze("i was terrified of the dark stairs")
	upper := Analyze("I WAS TERRIFIED OF THE DARK STAIRS")

	if !reflect.DeepEqual(lower, upper) {
		t.Errorf("Case should not affect results: %+v vs %+v", lower, upper)
	}
	if !contains(lower.Emotions, "fear") {
		t.Errorf("Expected 'fear' in emotions, got %v", lower.Emotions)
	}
	if !contains(lower.Symbols, "darkness") || !contains(lower.Symbols, "stairs") {
		t.Errorf("Expected 'darkness' and 'stairs' in symbols, got %v", lower.Symbols)
	}
}

func TestAnalyzeDeterministicOrdering(t *testing.T) {
	text := "burning fire near the water, I was happy then sad, flying over my house"

	first := Analyze(text)
	second := Analyze(text)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Analyze is not deterministic: %+v vs %+v", first, second)
	}

	// joy is declared before sadness, flying before house.
	if idx(first.Emotions, "joy") > idx(first.Emotions, "sadness") {
		t.Errorf("Emotions not in lexicon declaration order: %v", first.Emotions)
	}
	if idx(first.Themes, "flying") > idx(first.Themes, "house") {
		t.Errorf("Themes not in lexicon declaration order: %v", first.Themes)
	}
}

func TestAnalyzeNoNegationHandling(t *testing.T) {
	// Preserved contract: negation is not understood.
	result := Analyze("I was not happy at all")
	if !contains(result.Emotions, "joy") {
		t.Errorf("Negated keyword should still match, got %v", result.Emotions)
	}
}

func TestResultDerivedMetrics(t *testing.T) {
	result := Analyze("a mirror behind a locked door near the fire")

	if got := result.SymbolicDensity(); got != float64(len(result.Symbols))/10.0 {
		t.Errorf("SymbolicDensity() = %f, want %f", got, float64(len(result.Symbols))/10.0)
	}
	if result.DominantEmotion() != "" {
		t.Errorf("Expected no dominant emotion, got %q", result.DominantEmotion())
	}
	if result.Symbols[0] != "mirror" {
		t.Errorf("Expected 'mirror' first (declaration order), got %v", result.Symbols)
	}

	empty := Analyze("")
	if empty.DominantEmotion() != "" || empty.DominantTheme() != "" {
		t.Errorf("Empty analysis should have empty dominants")
	}
}

func TestKnownLabels(t *testing.T) {
	if got := len(KnownEmotions()); got != 8 {
		t.Errorf("Expected 8 emotion labels, got %d", got)
	}
	if got := len(KnownThemes()); got != 10 {
		t.Errorf("Expected 10 theme labels, got %d", got)
	}
	if got := len(KnownSymbols()); got != 10 {
		t.Errorf("Expected 10 symbol labels, got %d", got)
	}
	if KnownEmotions()[0] != "fear" || KnownEmotions()[7] != "love" {
		t.Errorf("Emotion label order changed: %v", KnownEmotions())
	}
}

func contains(labels []string, want string) bool {
	for _, label := range labels {
		if label == want {
			return true
		}
	}
	return false
}

func idx(labels []string, want string) int {
	for i, label := range labels {
		if label == want {
			return i
		}
	}
	return -1
}
