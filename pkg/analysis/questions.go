package analysis

import "regexp"

// Category identifies a follow-up question category.
type Category string

const (
	CategoryInitial     Category = "initial"
	CategoryEmotions    Category = "emotions"
	CategoryCharacters  Category = "characters"
	CategoryEnvironment Category = "environment"
	CategorySensory     Category = "sensory"
	CategorySymbols     Category = "symbols"
)

// Question is one follow-up prompt chosen for the user, with the remaining
// prompts of its category offered as alternatives.
type Question struct {
	Category     Category `json:"category"`
	Prompt       string   `json:"prompt"`
	Alternatives []string `json:"alternatives"`
}

// MaxQuestions caps how many follow-up questions one selection round returns.
const MaxQuestions = 3

var enhancementPrompts = map[Category][]string{
	CategoryInitial: {
		"What was the first thing you remember from your dream?",
		"How did the dream begin - were you already in the scene or did you enter it?",
		"What was your immediate feeling when the dream started?",
	},
	CategoryEmotions: {
		"What emotions did you experience most strongly during the dream?",
		"Did your feelings change throughout the dream?",
		"How did you feel when you woke up from this dream?",
		"Were there any surprising emotional reactions in the dream?",
	},
	CategoryCharacters: {
		"Did you see any people in your dream?",
		"Who else was in your dream - friends, family, strangers?",
		"How did you interact with other people in the dream?",
		"Did anyone in the dream feel familiar or completely unknown?",
		"Were there any famous people or fictional characters?",
	},
	CategoryEnvironment: {
		"Where did your dream take place?",
		"Describe the setting or location in more detail",
		"Did the environment change during the dream?",
		"What stood out most about the place you were in?",
		"Were you indoors, outdoors, or somewhere unusual?",
	},
	CategorySensory: {
		"What colors do you remember most vividly?",
		"Did you hear any specific sounds or music?",
		"Were there any particular smells or tastes?",
		"How did things feel to the touch in your dream?",
		"Was the lighting bright, dim, or changing?",
	},
	CategorySymbols: {
		"What objects seemed important or stood out to you?",
		"Did anything unusual or impossible happen?",
		"Were there any symbols or recurring elements?",
		"What felt most significant about this dream?",
		"Did anything remind you of your waking life?",
	},
}

// Whole-word signals that make the optional categories eligible.
var (
	peopleSignal   = regexp.MustCompile(`(?i)\b(person|people|someone|man|woman|friend|family|he|she|they|we)\b`)
	sensorySignal  = regexp.MustCompile(`(?i)\b(color|sound|music|bright|dark|loud|quiet|smell|taste)\b`)
	locationSignal = regexp.MustCompile(`(?i)\b(room|house|outside|building|street|forest|water|sky)\b`)
)

// SelectQuestions picks up to MaxQuestions follow-up questions for a dream
// text. Eligibility is evaluated in a fixed order: emotions (always),
// characters (person signal), sensory (sensory signal), environment (location
// signal), symbols (always). Categories already asked are skipped. Selection
// is greedy and deterministic.
func SelectQuestions(dreamText string, asked []Category) []Question {
	askedSet := make(map[Category]bool, len(asked))
	for _, c := range asked {
		askedSet[c] = true
	}

	var eligible []Category
	if !askedSet[CategoryEmotions] {
		eligible = append(eligible, CategoryEmotions)
	}
	if peopleSignal.MatchString(dreamText) && !askedSet[CategoryCharacters] {
		eligible = append(eligible, CategoryCharacters)
	}
	if sensorySignal.MatchString(dreamText) && !askedSet[CategorySensory] {
		eligible = append(eligible, CategorySensory)
	}
	if locationSignal.MatchString(dreamText) && !askedSet[CategoryEnvironment] {
		eligible = append(eligible, CategoryEnvironment)
	}
	if !askedSet[CategorySymbols] {
		eligible = append(eligible, CategorySymbols)
	}

	if len(eligible) > MaxQuestions {
		eligible = eligible[:MaxQuestions]
	}

	questions := make([]Question, 0, len(eligible))
	for _, category := range eligible {
		prompts := enhancementPrompts[category]
		if len(prompts) == 0 {
			continue
		}
		questions = append(questions, Question{
			Category:     category,
			Prompt:       prompts[0],
			Alternatives: prompts[1:],
		})
	}
	return questions
}

// InitialQuestions returns the fixed opening prompts shown before any
// adaptive selection happens.
func InitialQuestions() []string {
	prompts := enhancementPrompts[CategoryInitial]
	out := make([]string, len(prompts))
	copy(out, prompts)
	return out
}

// Character detection patterns, used to offer reference-photo prompts when a
// dream mentions people.
var characterPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(person|people|someone|anybody|everyone)\b`),
	regexp.MustCompile(`(?i)\b(man|woman|boy|girl|child|adult)\b`),
	regexp.MustCompile(`(?i)\b(friend|family|mother|father|sister|brother|parent)\b`),
	regexp.MustCompile(`(?i)\b(he|she|they|him|her|them)\b`),
	regexp.MustCompile(`(?i)\b(teacher|doctor|stranger|neighbor|boss|colleague)\b`),
	regexp.MustCompile(`(?i)\b(celebrity|actor|singer|famous)\b`),
}

// CharacterQuestions are offered when DetectCharacters reports a match.
var CharacterQuestions = []string{
	"I noticed you mentioned people in your dream. Would you like to add photos of anyone who appeared?",
	"You can upload up to 2 photos of people from your dream to make the artwork more personal.",
	"Adding character photos helps create more accurate dream visualizations.",
}

// DetectCharacters reports whether the dream text mentions a person by any of
// the whole-word character patterns.
func DetectCharacters(dreamText string) bool {
	for _, pattern := range characterPatterns {
		if pattern.MatchString(dreamText) {
			return true
		}
	}
	return false
}
