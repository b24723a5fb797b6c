package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"

	"github.com/oneirolab/dreamweave/pkg/dreams"
)

// ImportJSON reads an export envelope and recreates its dreams as new
// entries for userID, each with its latest analysis when present. Audio
// rows are not recreated: their paths were redacted on export and point at
// nothing. Returns the number of entries imported.
func ImportJSON(ctx context.Context, db *sql.DB, userID string, r io.Reader) (int, error) {
	var envelope Envelope
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&envelope); err != nil {
		return 0, fmt.Errorf("parsing export document: %w", err)
	}
	if envelope.Dreams == nil {
		return 0, fmt.Errorf("export document has no dreams list")
	}

	imported := 0
	for i, d := range envelope.Dreams {
		in := dreams.NewEntry{
			UserID:             userID,
			EntryDate:          d.EntryDate,
			Title:              d.Title,
			Transcription:      d.Transcription,
			Description:        d.Description,
			LucidityLevel:      d.LucidityLevel,
			VividnessLevel:     d.VividnessLevel,
			EmotionalIntensity: d.EmotionalIntensity,
			ArtStyle:           d.ArtStyle,
			RetentionDays:      d.RetentionDays,
		}

		var analysis *dreams.Analysis
		if d.Analysis != nil {
			analysis = &dreams.Analysis{
				AnalysisVersion:     d.Analysis.AnalysisVersion,
				AnalysisMethod:      d.Analysis.AnalysisMethod,
				ConfidenceScore:     d.Analysis.ConfidenceScore,
				Emotions:            d.Analysis.Emotions,
				Themes:              d.Analysis.Themes,
				Symbols:             d.Analysis.Symbols,
				DominantEmotion:     d.Analysis.DominantEmotion,
				DominantTheme:       d.Analysis.DominantTheme,
				EmotionalComplexity: d.Analysis.EmotionalComplexity,
				SymbolicDensity:     d.Analysis.SymbolicDensity,
			}
		}

		if _, err := dreams.CreateCompleteEntry(ctx, db, in, nil, analysis, nil); err != nil {
			return imported, fmt.Errorf("importing dream %d: %w", i+1, err)
		}
		imported++
	}

	return imported, nil
}
