package export

import (
	"context"
	"database/sql"
	"html/template"
	"io"
	"time"

	"github.com/oneirolab/dreamweave/pkg/dreams"
)

// journalTemplate is self-contained: inline styles only, no external assets,
// so the file reads the same offline.
var journalTemplate = template.Must(template.New("journal").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Dream Journal</title>
</head>
<body style="font-family: Georgia, serif; max-width: 720px; margin: 0 auto; padding: 24px; color: #2d2a3e; background: #faf8ff;">
<h1 style="color: #4a3d6b;">Dream Journal</h1>
<p style="color: #6b6485;">Exported {{.ExportDate}} &middot; {{.TotalDreams}} dreams{{if .DateRange.From}} &middot; {{.DateRange.From}} to {{.DateRange.To}}{{end}}</p>
{{range .Dreams}}
<div style="background: #fff; border: 1px solid #e2dcf2; border-radius: 8px; padding: 16px; margin-bottom: 16px;">
<h2 style="margin-top: 0; color: #4a3d6b;">{{if .Title}}{{.Title}}{{else}}Untitled dream{{end}}</h2>
<p style="color: #6b6485; font-size: 0.9em;">{{.EntryDate}} &middot; lucidity {{.LucidityLevel}}/5 &middot; vividness {{.VividnessLevel}}/5 &middot; intensity {{.EmotionalIntensity}}/5</p>
{{if .Transcription}}<p>{{.Transcription}}</p>{{end}}
{{if .Description}}<p style="font-style: italic;">{{.Description}}</p>{{end}}
{{if .Analysis}}
<p style="font-size: 0.9em;">
{{if .Analysis.DominantEmotion}}<strong>Dominant emotion:</strong> {{.Analysis.DominantEmotion}}&nbsp;{{end}}
{{if .Analysis.DominantTheme}}<strong>Dominant theme:</strong> {{.Analysis.DominantTheme}}{{end}}
</p>
{{if .Analysis.Emotions}}<p style="font-size: 0.85em; color: #6b6485;">Emotions: {{range $i, $e := .Analysis.Emotions}}{{if $i}}, {{end}}{{$e}}{{end}}</p>{{end}}
{{if .Analysis.Themes}}<p style="font-size: 0.85em; color: #6b6485;">Themes: {{range $i, $e := .Analysis.Themes}}{{if $i}}, {{end}}{{$e}}{{end}}</p>{{end}}
{{if .Analysis.Symbols}}<p style="font-size: 0.85em; color: #6b6485;">Symbols: {{range $i, $e := .Analysis.Symbols}}{{if $i}}, {{end}}{{$e}}{{end}}</p>{{end}}
{{end}}
{{if .ImageURL}}<p><img src="{{.ImageURL}}" alt="Dream visualization" style="max-width: 100%; border-radius: 6px;"></p>{{end}}
</div>
{{end}}
</body>
</html>
`))

var statisticsTemplate = template.Must(template.New("statistics").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Dream Journal Statistics</title>
</head>
<body style="font-family: Georgia, serif; max-width: 720px; margin: 0 auto; padding: 24px; color: #2d2a3e; background: #faf8ff;">
<h1 style="color: #4a3d6b;">Dream Journal Statistics</h1>
<p style="color: #6b6485;">Generated {{.GeneratedAt}}</p>
<h2 style="color: #4a3d6b;">Journal</h2>
<ul>
<li>Total dreams: {{.Stats.Entries.TotalEntries}}</li>
<li>Dreams with images: {{.Stats.Entries.EntriesWithImages}}</li>
<li>Average lucidity: {{printf "%.1f" .Stats.Entries.AvgLucidity}}/5</li>
<li>Average vividness: {{printf "%.1f" .Stats.Entries.AvgVividness}}/5</li>
<li>Average emotional intensity: {{printf "%.1f" .Stats.Entries.AvgIntensity}}/5</li>
{{if .Stats.Entries.FirstEntryDate}}<li>Journaling since {{.Stats.Entries.FirstEntryDate}}</li>{{end}}
</ul>
<h2 style="color: #4a3d6b;">Most frequent emotions</h2>
<ul>{{range .Stats.Analysis.TopEmotions}}<li>{{.Tag}} ({{.Count}})</li>{{else}}<li>No analyses yet</li>{{end}}</ul>
<h2 style="color: #4a3d6b;">Most frequent themes</h2>
<ul>{{range .Stats.Analysis.TopThemes}}<li>{{.Tag}} ({{.Count}})</li>{{else}}<li>No analyses yet</li>{{end}}</ul>
<h2 style="color: #4a3d6b;">Most frequent symbols</h2>
<ul>{{range .Stats.Analysis.TopSymbols}}<li>{{.Tag}} ({{.Count}})</li>{{else}}<li>No analyses yet</li>{{end}}</ul>
<h2 style="color: #4a3d6b;">Visualization</h2>
<ul>
<li>Prompts built: {{.Stats.Enhancements.TotalEnhancements}} ({{.Stats.Enhancements.ApprovedCount}} approved)</li>
<li>Images generated: {{.Stats.Generations.Successful}} ({{.Stats.Generations.Failed}} failed)</li>
<li>Estimated spend: ${{printf "%.2f" .Stats.Generations.EstimatedCost}}</li>
</ul>
</body>
</html>
`))

// WriteHTML writes the journal within rng as one self-contained HTML document.
func WriteHTML(ctx context.Context, db *sql.DB, userID string, rng DateRange, w io.Writer) error {
	details, err := Collect(ctx, db, userID, rng)
	if err != nil {
		return err
	}
	return journalTemplate.Execute(w, buildEnvelope(details))
}

// WriteStatisticsHTML writes the aggregate stats views as a self-contained
// HTML document.
func WriteStatisticsHTML(ctx context.Context, db *sql.DB, userID string, w io.Writer) error {
	stats, err := dreams.GetDashboardStats(ctx, db, userID)
	if err != nil {
		return err
	}
	return statisticsTemplate.Execute(w, struct {
		GeneratedAt string
		Stats       dreams.DashboardStats
	}{
		GeneratedAt: time.Now().Format("2006-01-02"),
		Stats:       stats,
	})
}
