package analysis

import "strings"

// Result holds the categories detected in a dream text. The slices are never
// nil and preserve lexicon declaration order.
type Result struct {
	Emotions []string `json:"emotions"`
	Themes   []string `json:"themes"`
	Symbols  []string `json:"symbols"`
}

// Analyze runs keyword matching against the emotion, theme and symbol
// lexicons. It is a pure function: same text in, same result out, and an
// empty or whitespace-only text yields empty slices.
//
// Matching is plain case-insensitive substring containment, applied uniformly
// to all three tables. Negation is not handled ("not happy" still matches
// "happy"); that is the accepted contract, not an oversight.
func Analyze(text string) Result {
	lowered := strings.ToLower(text)
	return Result{
		Emotions: matchLexicon(lowered, emotionLexicon),
		Themes:   matchLexicon(lowered, themeLexicon),
		Symbols:  matchLexicon(lowered, symbolLexicon),
	}
}

func matchLexicon(lowered string, lex []lexiconEntry) []string {
	found := []string{}
	if lowered == "" {
		return found
	}
	for _, entry := range lex {
		for _, keyword := range entry.Keywords {
			if strings.Contains(lowered, keyword) {
				found = append(found, entry.Label)
				break
			}
		}
	}
	return found
}

// DominantEmotion returns the first detected emotion, or "" when none.
func (r Result) DominantEmotion() string { return firstOrEmpty(r.Emotions) }

// DominantTheme returns the first detected theme, or "" when none.
func (r Result) DominantTheme() string { return firstOrEmpty(r.Themes) }

// SymbolicDensity normalizes the symbol count to a rough 0-1 scale.
func (r Result) SymbolicDensity() float64 { return float64(len(r.Symbols)) / 10.0 }

// EmotionalComplexity is the number of distinct emotions detected.
func (r Result) EmotionalComplexity() int { return len(r.Emotions) }

func firstOrEmpty(labels []string) string {
	if len(labels) == 0 {
		return ""
	}
	return labels[0]
}
