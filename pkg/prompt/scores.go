package prompt

import (
	"regexp"
	"strings"
)

var (
	sentenceSplit = regexp.MustCompile(`[.!?]+`)
	nonLetter     = regexp.MustCompile(`[^a-z]`)
	vowelRun      = regexp.MustCompile(`[aeiouy]+`)
)

// ComplexityScore rates a prompt on a 0-1 scale from average sentence length
// and the share of long words. A crude heuristic kept for prompt analytics.
func ComplexityScore(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	sentences := len(sentenceSplit.Split(text, -1))
	if sentences == 0 {
		sentences = 1
	}

	avgWordsPerSentence := float64(len(words)) / float64(sentences)
	longWords := 0
	for _, word := range words {
		if len(word) > 6 {
			longWords++
		}
	}

	score := avgWordsPerSentence/20 + float64(longWords)/float64(len(words))
	if score > 1 {
		score = 1
	}
	return score
}

// ReadabilityScore is a simplified Flesch reading ease normalized to [0, 1].
func ReadabilityScore(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	sentences := len(sentenceSplit.Split(text, -1))
	if sentences == 0 {
		sentences = 1
	}
	syllables := CountSyllables(text)

	flesch := 206.835 - 1.015*(float64(len(words))/float64(sentences)) - 84.6*(float64(syllables)/float64(len(words)))
	normalized := flesch / 100
	if normalized < 0 {
		return 0
	}
	if normalized > 1 {
		return 1
	}
	return normalized
}

// CountSyllables approximates syllable count as vowel runs per word, with a
// floor of one per word that has any letters.
func CountSyllables(text string) int {
	count := 0
	for _, word := range strings.Fields(strings.ToLower(text)) {
		cleaned := nonLetter.ReplaceAllString(word, "")
		if cleaned == "" {
			continue
		}
		runs := len(vowelRun.FindAllString(cleaned, -1))
		if runs == 0 {
			runs = 1
		}
		count += runs
	}
	return count
}
