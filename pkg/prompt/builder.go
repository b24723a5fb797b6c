package prompt

import (
	"strings"
	"unicode/utf8"

	"github.com/oneirolab/dreamweave/pkg/analysis"
)

// MaxPromptLength is the hard cap imposed by the downstream image API.
// A prompt exceeding it is cut back to the nearest rune boundary at or
// below MaxPromptLength bytes plus the ellipsis marker, so
// len(Build(...)) <= MaxPromptLength+3 always holds and the output stays
// valid UTF-8.
const MaxPromptLength = 3900

var emotionDescriptors = map[string]string{
	"fear":      "tense, foreboding atmosphere",
	"joy":       "uplifting, radiant energy",
	"anxiety":   "unsettling, nervous tension",
	"sadness":   "melancholic, somber mood",
	"anger":     "intense, fiery energy",
	"peace":     "serene, tranquil ambiance",
	"confusion": "disorienting, fragmented reality",
	"love":      "warm, affectionate glow",
}

var themeDescriptors = map[string]string{
	"flying":  "aerial perspective, weightless movement, soaring through space",
	"water":   "flowing water elements, aquatic environment, liquid dynamics",
	"chase":   "dynamic motion, sense of urgency, kinetic energy",
	"falling": "gravitational pull, descending movement, vertigo perspective",
	"death":   "transition imagery, ethereal boundaries, liminal spaces",
	"family":  "familiar faces, emotional connections, intimate relationships",
	"school":  "institutional architecture, learning environments, structured spaces",
	"work":    "professional settings, structured environments, task-oriented scenes",
	"animals": "creature companions, natural instincts, primal energy",
	"house":   "domestic spaces, architectural elements, shelter symbolism",
}

var symbolDescriptors = map[string]string{
	"mirror":   "reflective surfaces, dual perspectives, self-reflection imagery",
	"door":     "portals, transitions, threshold symbolism",
	"key":      "unlocking elements, access symbols, revelation imagery",
	"fire":     "flame elements, passionate energy, transformative power",
	"light":    "luminous symbolism, illumination, divine radiance",
	"darkness": "shadow play, mysterious depths, hidden elements",
	"bridge":   "connection pathways, crossing elements, transitional structures",
	"stairs":   "ascending/descending elements, hierarchical movement, spiritual progression",
	"circle":   "cyclical patterns, wholeness symbols, eternal forms",
	"color":    "vivid color symbolism, chromatic significance, emotional color palette",
}

// Build composes the enhanced prompt sent to the image generation API from
// the raw dream text, the chosen style and the analysis result. The output is
// deterministic: identical inputs produce a byte-identical string.
//
// Detected values missing from a descriptor table are dropped silently; that
// keeps the builder total over any analysis input and must not be "fixed"
// into an error path.
func Build(dreamText, styleID string, a analysis.Result) string {
	var b strings.Builder
	b.WriteString("A vivid dream visualization: ")
	b.WriteString(dreamText)

	if clause := mapDescriptors(a.Emotions, emotionDescriptors); clause != "" {
		b.WriteString(" with ")
		b.WriteString(clause)
	}
	if clause := mapDescriptors(a.Themes, themeDescriptors); clause != "" {
		b.WriteString(". Incorporating ")
		b.WriteString(clause)
	}
	if clause := mapDescriptors(a.Symbols, symbolDescriptors); clause != "" {
		b.WriteString(". With symbolic depth: ")
		b.WriteString(clause)
	}

	b.WriteString(". Rendered in ")
	b.WriteString(StyleDescription(styleID))
	b.WriteString(" style. Dream-like quality with soft edges, emotional atmosphere, subconscious symbolism.")
	b.WriteString(" Masterpiece digital art, trending on ArtStation, dream journal illustration style, psychological depth.")

	enhanced := b.String()
	if len(enhanced) > MaxPromptLength {
		// Never slice through a multi-byte rune.
		cut := MaxPromptLength
		for cut > 0 && !utf8.RuneStart(enhanced[cut]) {
			cut--
		}
		enhanced = enhanced[:cut] + "..."
	}
	return enhanced
}

func mapDescriptors(labels []string, table map[string]string) string {
	fragments := make([]string, 0, len(labels))
	for _, label := range labels {
		if descriptor, ok := table[label]; ok {
			fragments = append(fragments, descriptor)
		}
	}
	return strings.Join(fragments, ", ")
}
