package prompt

// Style is one selectable art direction for image generation.
type Style struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DefaultStyleID is used when the caller does not pick a style.
const DefaultStyleID = "ethereal"

// FallbackStyleDescription is used when a style id is unknown.
const FallbackStyleDescription = "ethereal atmosphere"

var styles = []Style{
	{ID: "ethereal", Name: "Ethereal", Description: "Soft, flowing, mystical atmosphere"},
	{ID: "surreal", Name: "Surreal", Description: "Salvador Dali inspired, impossible geometry"},
	{ID: "nightmare", Name: "Nightmare", Description: "Dark fantasy, gothic atmosphere"},
	{ID: "cosmic", Name: "Cosmic", Description: "Celestial bodies, stardust, otherworldly"},
	{ID: "mystical", Name: "Mystical", Description: "Magical, enchanted, mystical elements"},
	{ID: "nostalgic", Name: "Nostalgic", Description: "Vintage, warm sepia tones, soft focus"},
}

// Styles returns the selectable art styles in display order.
func Styles() []Style {
	out := make([]Style, len(styles))
	copy(out, styles)
	return out
}

// StyleDescription resolves a style id to its descriptor, falling back to
// FallbackStyleDescription for unknown ids. Never fails.
func StyleDescription(styleID string) string {
	for _, s := range styles {
		if s.ID == styleID {
			return s.Description
		}
	}
	return FallbackStyleDescription
}

// KnownStyle reports whether the style id is one of the fixed styles.
func KnownStyle(styleID string) bool {
	for _, s := range styles {
		if s.ID == styleID {
			return true
		}
	}
	return false
}

// QualityOption describes a generation quality setting.
type QualityOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// QualityOptions returns the supported image generation quality settings.
func QualityOptions() []QualityOption {
	return []QualityOption{
		{ID: "standard", Name: "Standard", Description: "Good quality, faster generation"},
		{ID: "hd", Name: "HD", Description: "High definition, slower generation"},
	}
}
