package analysis

import "testing"

func TestSelectQuestionsCap(t *testing.T) {
	// Text triggering every optional category still yields at most three.
	text := "someone in a bright room by the water played loud music"
	questions := SelectQuestions(text, nil)

	if len(questions) > MaxQuestions {
		t.Fatalf("Expected at most %d questions, got %d", MaxQuestions, len(questions))
	}
	if len(questions) != MaxQuestions {
		t.Fatalf("Expected exactly %d questions for a text matching all signals, got %d", MaxQuestions, len(questions))
	}

	// Greedy fixed order: emotions first, then characters, then sensory.
	want := []Category{CategoryEmotions, CategoryCharacters, CategorySensory}
	for i, q := range questions {
		if q.Category != want[i] {
			t.Errorf("Question %d category = %s, want %s", i, q.Category, want[i])
		}
	}
}

func TestSelectQuestionsExcludesAsked(t *testing.T) {
	text := "someone in a bright room by the water"
	asked := []Category{CategoryEmotions, CategoryCharacters}

	questions := SelectQuestions(text, asked)
	for _, q := range questions {
		for _, a := range asked {
			if q.Category == a {
				t.Errorf("Asked category %s reappeared in selection", a)
			}
		}
	}
}

func TestSelectQuestionsDefaultCategories(t *testing.T) {
	// No signals in the text: only the always-eligible categories remain.
	questions := SelectQuestions("zzzz qqqq", nil)

	if len(questions) != 2 {
		t.Fatalf("Expected 2 questions (emotions, symbols), got %d", len(questions))
	}
	if questions[0].Category != CategoryEmotions || questions[1].Category != CategorySymbols {
		t.Errorf("Unexpected categories: %s, %s", questions[0].Category, questions[1].Category)
	}
}

func TestSelectQuestionsPromptAndAlternatives(t *testing.T) {
	questions := SelectQuestions("zzzz", nil)
	if len(questions) == 0 {
		t.Fatal("Expected at least one question")
	}

	q := questions[0]
	if q.Prompt != "What emotions did you experience most strongly during the dream?" {
		t.Errorf("First emotions prompt changed: %q", q.Prompt)
	}
	if len(q.Alternatives) != len(enhancementPrompts[CategoryEmotions])-1 {
		t.Errorf("Expected %d alternatives, got %d", len(enhancementPrompts[CategoryEmotions])-1, len(q.Alternatives))
	}
}

func TestSelectQuestionsWholeWordMatching(t *testing.T) {
	// "theme" contains "he" but only as a substring; whole-word matching must
	// not flag it as a person reference.
	questions := SelectQuestions("theme park without visitors", []Category{CategoryEmotions, CategorySymbols})
	for _, q := range questions {
		if q.Category == CategoryCharacters {
			t.Errorf("Substring 'he' inside 'theme' should not trigger the characters category")
		}
	}

	withPerson := SelectQuestions("he was standing there", []Category{CategoryEmotions, CategorySymbols})
	foundCharacters := false
	for _, q := range withPerson {
		if q.Category == CategoryCharacters {
			foundCharacters = true
		}
	}
	if !foundCharacters {
		t.Errorf("Whole word 'he' should trigger the characters category")
	}
}

func TestSelectQuestionsAllAsked(t *testing.T) {
	asked := []Category{CategoryEmotions, CategoryCharacters, CategorySensory, CategoryEnvironment, CategorySymbols}
	questions := SelectQuestions("someone in a bright room", asked)
	if len(questions) != 0 {
		t.Errorf("Expected no questions when every category was asked, got %d", len(questions))
	}
}

func TestDetectCharacters(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"my mother was there", true},
		{"a stranger followed me", true},
		{"I saw them in the distance", true},
		{"an empty field of grass", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := DetectCharacters(tc.text); got != tc.want {
			t.Errorf("DetectCharacters(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestInitialQuestionsCopy(t *testing.T) {
	first := InitialQuestions()
	first[0] = "mutated"
	if InitialQuestions()[0] == "mutated" {
		t.Errorf("InitialQuestions must return a copy")
	}
}
