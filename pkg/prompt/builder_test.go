package prompt

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/oneirolab/dreamweave/pkg/analysis"
)

func TestBuildScenario(t *testing.T) {
	text := "I was flying over water with my mother, it was peaceful"
	result := analysis.Analyze(text)

	enhanced := Build(text, "ethereal", result)

	if !strings.HasPrefix(enhanced, "A vivid dream visualization: I was flying") {
		t.Errorf("Unexpected prompt prefix: %q", enhanced[:60])
	}
	if !strings.Contains(enhanced, "serene, tranquil ambiance") {
		t.Errorf("Expected the peace descriptor in prompt: %q", enhanced)
	}
	if !strings.Contains(enhanced, "Rendered in Soft, flowing, mystical atmosphere style.") {
		t.Errorf("Expected ethereal style clause in prompt: %q", enhanced)
	}
	if !strings.HasSuffix(enhanced, "Masterpiece digital art, trending on ArtStation, dream journal illustration style, psychological depth.") {
		t.Errorf("Expected fixed boilerplate suffix: %q", enhanced)
	}
	if len(enhanced) > MaxPromptLength+3 {
		t.Errorf("Prompt length %d exceeds bound %d", len(enhanced), MaxPromptLength+3)
	}
}

func TestBuildDeterminism(t *testing.T) {
	text := "chasing shadows through a burning house"
	result := analysis.Analyze(text)

	first := Build(text, "nightmare", result)
	second := Build(text, "nightmare", result)
	if first != second {
		t.Errorf("Build is not deterministic")
	}
}

func TestBuildLengthBound(t *testing.T) {
	long := strings.Repeat("I was flying over the ocean with my mother and a burning key. ", 200)
	result := analysis.Analyze(long)

	enhanced := Build(long, "cosmic", result)
	if len(enhanced) > MaxPromptLength+3 {
		t.Fatalf("Prompt length %d exceeds bound %d", len(enhanced), MaxPromptLength+3)
	}
	if !strings.HasSuffix(enhanced, "...") {
		t.Errorf("Truncated prompt should end with ellipsis marker")
	}
}

func TestBuildTruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("é", 4000)
	enhanced := Build(long, "ethereal", analysis.Result{})

	if len(enhanced) > MaxPromptLength+3 {
		t.Fatalf("Prompt length %d exceeds bound %d", len(enhanced), MaxPromptLength+3)
	}
	if !utf8.ValidString(enhanced) {
		t.Errorf("Truncated prompt is not valid UTF-8")
	}
	if !strings.HasSuffix(enhanced, "...") {
		t.Errorf("Truncated prompt should end with ellipsis marker")
	}
}

func TestBuildUnknownStyleFallsBack(t *testing.T) {
	enhanced := Build("a quiet dream", "vaporwave", analysis.Result{})
	if !strings.Contains(enhanced, "Rendered in "+FallbackStyleDescription+" style.") {
		t.Errorf("Unknown style should fall back to %q: %q", FallbackStyleDescription, enhanced)
	}
}

func TestBuildUnknownCategoryValuesDropped(t *testing.T) {
	a := analysis.Result{
		Emotions: []string{"joy", "nostalgia-overload"},
		Themes:   []string{"spelunking"},
		Symbols:  []string{},
	}
	enhanced := Build("dream", "ethereal", a)

	if !strings.Contains(enhanced, "uplifting, radiant energy") {
		t.Errorf("Known emotion descriptor missing: %q", enhanced)
	}
	if strings.Contains(enhanced, "nostalgia-overload") || strings.Contains(enhanced, "spelunking") {
		t.Errorf("Unknown category values must be dropped silently: %q", enhanced)
	}
	// Theme list had no mappable values, so no theme connector either.
	if strings.Contains(enhanced, "Incorporating") {
		t.Errorf("Empty mapped theme clause should be omitted: %q", enhanced)
	}
}

func TestBuildEmptyAnalysis(t *testing.T) {
	enhanced := Build("a dream with nothing detectable", "ethereal", analysis.Result{})
	if strings.Contains(enhanced, " with ,") || strings.Contains(enhanced, "Incorporating") || strings.Contains(enhanced, "symbolic depth") {
		t.Errorf("No category clauses expected for empty analysis: %q", enhanced)
	}
}

func TestStyleTable(t *testing.T) {
	if len(Styles()) != 6 {
		t.Errorf("Expected 6 styles, got %d", len(Styles()))
	}
	if !KnownStyle("surreal") || KnownStyle("vaporwave") {
		t.Errorf("KnownStyle misclassified a style id")
	}
	if StyleDescription("nostalgic") != "Vintage, warm sepia tones, soft focus" {
		t.Errorf("Nostalgic descriptor changed: %q", StyleDescription("nostalgic"))
	}
}

func TestComplexityScoreBounds(t *testing.T) {
	if got := ComplexityScore(""); got != 0 {
		t.Errorf("ComplexityScore(\"\") = %f, want 0", got)
	}
	long := strings.Repeat("extraordinarily complicated subterranean architecture ", 40)
	if got := ComplexityScore(long); got < 0 || got > 1 {
		t.Errorf("ComplexityScore out of [0,1]: %f", got)
	}
}

func TestReadabilityScoreBounds(t *testing.T) {
	for _, text := range []string{"", "The cat sat.", strings.Repeat("incomprehensibilities ", 50)} {
		if got := ReadabilityScore(text); got < 0 || got > 1 {
			t.Errorf("ReadabilityScore(%q) out of [0,1]: %f", text, got)
		}
	}
}

func TestCountSyllables(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"cat", 1},
		{"water", 2},
		{"dream journal", 3},
	}
	for _, tc := range cases {
		if got := CountSyllables(tc.text); got != tc.want {
			t.Errorf("CountSyllables(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}
