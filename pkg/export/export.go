// Package export renders a user's dream journal to portable formats: a JSON
// envelope for re-import, CSV for spreadsheets and self-contained HTML for
// reading. Local audio paths never leave the device; every format replaces
// them with RedactedPath.
package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/oneirolab/dreamweave/pkg/dreams"
)

// RedactedPath replaces local audio file paths in every export format.
const RedactedPath = "[REDACTED - PRIVATE LOCAL FILE]"

// pageSize bounds each listing round-trip while collecting the full journal.
const pageSize = 200

// Envelope is the top-level JSON export document.
type Envelope struct {
	ExportDate  string               `json:"export_date"`
	TotalDreams int                  `json:"total_dreams"`
	DateRange   DateRange            `json:"date_range"`
	Dreams      []dreams.EntryDetail `json:"dreams"`
}

// DateRange bounds an export by entry date, inclusive on both ends. Either
// side may be empty for an open bound; the zero value exports everything. In
// the JSON envelope it records the span actually covered by the entries.
type DateRange struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// Collect loads every entry for a user within rng, fully detailed and
// redacted, oldest entry date last (listing order: newest first).
func Collect(ctx context.Context, db *sql.DB, userID string, rng DateRange) ([]dreams.EntryDetail, error) {
	var details []dreams.EntryDetail
	filter := dreams.Filter{UserID: userID, DateFrom: rng.From, DateTo: rng.To}
	offset := 0
	for {
		page, err := dreams.ListEntries(ctx, db, filter, dreams.Page{Limit: pageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		for _, entry := range page.Items {
			detail, err := dreams.GetEntryDetail(ctx, db, entry.ID)
			if err != nil {
				return nil, err
			}
			redact(&detail)
			details = append(details, detail)
		}
		if !page.HasMore {
			break
		}
		offset += pageSize
	}
	return details, nil
}

func redact(detail *dreams.EntryDetail) {
	for i := range detail.AudioFiles {
		detail.AudioFiles[i].FilePath = RedactedPath
	}
	for i := range detail.Generations {
		if detail.Generations[i].LocalImagePath != "" {
			detail.Generations[i].LocalImagePath = RedactedPath
		}
	}
}

func buildEnvelope(details []dreams.EntryDetail) Envelope {
	envelope := Envelope{
		ExportDate:  time.Now().Format(time.RFC3339),
		TotalDreams: len(details),
		Dreams:      details,
	}
	if envelope.Dreams == nil {
		envelope.Dreams = []dreams.EntryDetail{}
	}
	for _, d := range details {
		if envelope.DateRange.From == "" || d.EntryDate < envelope.DateRange.From {
			envelope.DateRange.From = d.EntryDate
		}
		if d.EntryDate > envelope.DateRange.To {
			envelope.DateRange.To = d.EntryDate
		}
	}
	return envelope
}

// WriteJSON writes the journal within rng as a pretty-printed JSON envelope.
func WriteJSON(ctx context.Context, db *sql.DB, userID string, rng DateRange, w io.Writer) error {
	details, err := Collect(ctx, db, userID, rng)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildEnvelope(details))
}

var csvHeader = []string{
	"id", "entry_date", "title", "status", "transcription", "description",
	"lucidity_level", "vividness_level", "emotional_intensity",
	"dominant_emotion", "dominant_theme", "emotions", "themes", "symbols",
	"art_style", "image_url", "audio_files", "created_at",
}

// WriteCSV writes one row per entry. Every field is quoted, embedded quotes
// doubled, so the output survives spreadsheet imports regardless of content.
func WriteCSV(ctx context.Context, db *sql.DB, userID string, rng DateRange, w io.Writer) error {
	details, err := Collect(ctx, db, userID, rng)
	if err != nil {
		return err
	}

	if err := writeCSVRow(w, csvHeader); err != nil {
		return err
	}
	for _, d := range details {
		var emotions, themes, symbols []string
		var dominantEmotion, dominantTheme string
		if d.Analysis != nil {
			emotions = d.Analysis.Emotions
			themes = d.Analysis.Themes
			symbols = d.Analysis.Symbols
			dominantEmotion = d.Analysis.DominantEmotion
			dominantTheme = d.Analysis.DominantTheme
		}

		audio := make([]string, len(d.AudioFiles))
		for i := range d.AudioFiles {
			audio[i] = d.AudioFiles[i].FilePath
		}

		row := []string{
			fmt.Sprintf("%d", d.ID),
			d.EntryDate,
			d.Title,
			d.Status,
			d.Transcription,
			d.Description,
			fmt.Sprintf("%d", d.LucidityLevel),
			fmt.Sprintf("%d", d.VividnessLevel),
			fmt.Sprintf("%d", d.EmotionalIntensity),
			dominantEmotion,
			dominantTheme,
			strings.Join(emotions, "; "),
			strings.Join(themes, "; "),
			strings.Join(symbols, "; "),
			d.ArtStyle,
			d.ImageURL,
			strings.Join(audio, "; "),
			time.Unix(int64(d.CreatedAt), 0).UTC().Format(time.RFC3339),
		}
		if err := writeCSVRow(w, row); err != nil {
			return err
		}
	}
	return nil
}

// writeCSVRow quotes every field unconditionally. encoding/csv only quotes
// when it must, which breaks consumers that expect a uniform quoted grid.
func writeCSVRow(w io.Writer, fields []string) error {
	quoted := make([]string, len(fields))
	for i, field := range fields {
		quoted[i] = `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
	}
	_, err := io.WriteString(w, strings.Join(quoted, ",")+"\r\n")
	return err
}
