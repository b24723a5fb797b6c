package analysis

// The keyword lexicon is the analysis contract: a dream text matches a
// category when any of its trigger words occurs as a case-insensitive
// substring. Categories are tested and reported in declaration order.

type lexiconEntry struct {
	Label    string
	Keywords []string
}

var emotionLexicon = []lexiconEntry{
	{"fear", []string{"scared", "frightened", "terrified", "afraid", "horror", "nightmare"}},
	{"joy", []string{"happy", "joyful", "elated", "excited", "cheerful", "blissful"}},
	{"anxiety", []string{"anxious", "worried", "nervous", "stressed", "panic"}},
	{"sadness", []string{"sad", "depressed", "melancholy", "grief", "sorrow"}},
	{"anger", []string{"angry", "furious", "rage", "mad", "irritated"}},
	{"peace", []string{"calm", "peaceful", "serene", "tranquil", "relaxed"}},
	{"confusion", []string{"confused", "lost", "bewildered", "puzzled"}},
	{"love", []string{"love", "affection", "warmth", "caring", "tender"}},
}

var themeLexicon = []lexiconEntry{
	{"flying", []string{"flying", "soaring", "floating", "hovering", "airborne"}},
	{"water", []string{"water", "ocean", "sea", "river", "swimming", "drowning"}},
	{"chase", []string{"chasing", "running", "escaping", "pursuit", "fleeing"}},
	{"falling", []string{"falling", "dropping", "plummeting", "tumbling"}},
	{"death", []string{"death", "dying", "deceased", "funeral", "grave"}},
	{"family", []string{"mother", "father", "parent", "sibling", "family"}},
	{"school", []string{"school", "teacher", "classroom", "exam", "studying"}},
	{"work", []string{"work", "job", "office", "boss", "colleague"}},
	{"animals", []string{"dog", "cat", "bird", "animal", "pet"}},
	{"house", []string{"house", "home", "room", "building", "apartment"}},
}

var symbolLexicon = []lexiconEntry{
	{"mirror", []string{"mirror", "reflection", "looking glass"}},
	{"door", []string{"door", "doorway", "entrance", "exit"}},
	{"key", []string{"key", "lock", "unlock", "locked"}},
	{"fire", []string{"fire", "flame", "burning", "blaze"}},
	{"light", []string{"light", "bright", "illumination", "glow"}},
	{"darkness", []string{"dark", "shadow", "blackness", "night"}},
	{"bridge", []string{"bridge", "crossing", "span"}},
	{"stairs", []string{"stairs", "steps", "climbing", "ascending"}},
	{"circle", []string{"circle", "round", "wheel", "cycle"}},
	{"color", []string{"red", "blue", "green", "yellow", "purple", "black", "white"}},
}

// KnownEmotions returns the emotion labels in declaration order.
func KnownEmotions() []string { return lexiconLabels(emotionLexicon) }

// KnownThemes returns the theme labels in declaration order.
func KnownThemes() []string { return lexiconLabels(themeLexicon) }

// KnownSymbols returns the symbol labels in declaration order.
func KnownSymbols() []string { return lexiconLabels(symbolLexicon) }

func lexiconLabels(lex []lexiconEntry) []string {
	labels := make([]string, 0, len(lex))
	for _, entry := range lex {
		labels = append(labels, entry.Label)
	}
	return labels
}
