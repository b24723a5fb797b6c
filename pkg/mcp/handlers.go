package mcp

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/oneirolab/dreamweave/pkg/analysis"
	"github.com/oneirolab/dreamweave/pkg/dreams"
	"github.com/oneirolab/dreamweave/pkg/export"
	"github.com/oneirolab/dreamweave/pkg/prompt"
)

// RegisterAllTools wires every tool onto the server.
func RegisterAllTools(s *server.MCPServer, db *sql.DB) {
	RegisterPingTool(s)
	RegisterCreateDreamTool(s, db)
	RegisterGetDreamTool(s, db)
	RegisterListDreamsTool(s, db)
	RegisterDeleteDreamTool(s, db)
	RegisterAnalyzeDreamTool(s, db)
	RegisterBuildPromptTool(s, db)
	RegisterSuggestQuestionsTool(s, db)
	RegisterExportDreamsTool(s, db)
	RegisterEnforceRetentionTool(s, db)
}

// RegisterPingTool registers the simple ping tool.
func RegisterPingTool(s *server.MCPServer) {
	pingTool := mcp.NewTool("ping",
		mcp.WithDescription("Responds with 'pong' to check if the DreamWeave MCP server is alive."),
	)
	s.AddTool(pingTool, pingHandler)
}

func pingHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("pong_dreamweave"), nil
}

// RegisterCreateDreamTool registers the create_dream tool.
func RegisterCreateDreamTool(s *server.MCPServer, db *sql.DB) {
	createDream := mcp.NewTool("create_dream",
		mcp.WithDescription("Records a new dream journal entry."),
		mcp.WithString("transcription", mcp.Required(), mcp.Description("The dream as told, usually a voice transcription.")),
		mcp.WithString("title", mcp.Description("Optional title for the entry.")),
		mcp.WithString("description", mcp.Description("Optional notes added after the fact.")),
		mcp.WithString("entry_date", mcp.Description("Date of the dream (YYYY-MM-DD). Defaults to today.")),
		mcp.WithNumber("lucidity", mcp.Description("Lucidity level 0-5.")),
		mcp.WithNumber("vividness", mcp.Description("Vividness level 0-5.")),
		mcp.WithNumber("intensity", mcp.Description("Emotional intensity 0-5.")),
		mcp.WithString("art_style", mcp.Description("Preferred art style for visualization.")),
	)
	s.AddTool(createDream, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		transcription, ok := request.Params.Arguments["transcription"].(string)
		if !ok || transcription == "" {
			return mcp.NewToolResultError("'transcription' parameter is required and must be a non-empty string."), nil
		}

		in := dreams.NewEntry{Transcription: transcription}
		if title, ok := request.Params.Arguments["title"].(string); ok {
			in.Title = title
		}
		if description, ok := request.Params.Arguments["description"].(string); ok {
			in.Description = description
		}
		if entryDate, ok := request.Params.Arguments["entry_date"].(string); ok {
			in.EntryDate = entryDate
		}
		if lucidity, ok := request.Params.Arguments["lucidity"].(float64); ok {
			in.LucidityLevel = int(lucidity)
		}
		if vividness, ok := request.Params.Arguments["vividness"].(float64); ok {
			in.VividnessLevel = int(vividness)
		}
		if intensity, ok := request.Params.Arguments["intensity"].(float64); ok {
			in.EmotionalIntensity = int(intensity)
		}
		if artStyle, ok := request.Params.Arguments["art_style"].(string); ok {
			in.ArtStyle = artStyle
		}

		entry, err := dreams.CreateEntry(ctx, db, in)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to create dream entry: %v", err)), nil
		}

		return jsonResult(entry)
	})
}

// RegisterGetDreamTool registers the get_dream tool.
func RegisterGetDreamTool(s *server.MCPServer, db *sql.DB) {
	getDream := mcp.NewTool("get_dream",
		mcp.WithDescription("Retrieves one dream entry with its audio files, analysis, prompts and generated images."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("The entry id.")),
	)
	s.AddTool(getDream, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, ok := requireID(request)
		if !ok {
			return mcp.NewToolResultError("'id' parameter is required and must be a number."), nil
		}

		detail, err := dreams.GetEntryDetail(ctx, db, id)
		if err != nil {
			if errors.Is(err, dreams.ErrEntryNotFound) {
				return mcp.NewToolResultError(fmt.Sprintf("Dream entry %d not found.", id)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("Error retrieving dream entry %d: %v", id, err)), nil
		}

		return jsonResult(detail)
	})
}

// RegisterListDreamsTool registers the list_dreams tool.
func RegisterListDreamsTool(s *server.MCPServer, db *sql.DB) {
	listDreams := mcp.NewTool("list_dreams",
		mcp.WithDescription("Lists dream entries, newest first, with optional filters."),
		mcp.WithString("search", mcp.Description("Text to search for in titles and dream text.")),
		mcp.WithString("status", mcp.Description("Filter by status: draft, processing, complete or archived.")),
		mcp.WithString("date_from", mcp.Description("Earliest entry date to include (YYYY-MM-DD).")),
		mcp.WithString("date_to", mcp.Description("Latest entry date to include (YYYY-MM-DD).")),
		mcp.WithNumber("limit", mcp.Description("Page size, defaults to 50.")),
		mcp.WithNumber("offset", mcp.Description("Page offset, defaults to 0.")),
	)
	s.AddTool(listDreams, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var filter dreams.Filter
		var page dreams.Page

		if search, ok := request.Params.Arguments["search"].(string); ok {
			filter.Search = search
		}
		if status, ok := request.Params.Arguments["status"].(string); ok {
			filter.Status = status
		}
		if from, ok := request.Params.Arguments["date_from"].(string); ok {
			filter.DateFrom = from
		}
		if to, ok := request.Params.Arguments["date_to"].(string); ok {
			filter.DateTo = to
		}
		if limit, ok := request.Params.Arguments["limit"].(float64); ok {
			page.Limit = int(limit)
		}
		if offset, ok := request.Params.Arguments["offset"].(float64); ok {
			page.Offset = int(offset)
		}

		result, err := dreams.ListEntries(ctx, db, filter, page)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list dreams: %v", err)), nil
		}

		return jsonResult(result)
	})
}

// RegisterDeleteDreamTool registers the delete_dream tool.
func RegisterDeleteDreamTool(s *server.MCPServer, db *sql.DB) {
	deleteDream := mcp.NewTool("delete_dream",
		mcp.WithDescription("Deletes a dream entry, everything attached to it, and its audio recordings on disk."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("The entry id.")),
	)
	s.AddTool(deleteDream, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, ok := requireID(request)
		if !ok {
			return mcp.NewToolResultError("'id' parameter is required and must be a number."), nil
		}

		if err := dreams.DeleteEntry(ctx, db, id, os.Remove); err != nil {
			if errors.Is(err, dreams.ErrEntryNotFound) {
				return mcp.NewToolResultError(fmt.Sprintf("Dream entry %d not found.", id)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("Failed to delete dream entry %d: %v", id, err)), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Dream entry %d deleted.", id)), nil
	})
}

// RegisterAnalyzeDreamTool registers the analyze_dream tool.
func RegisterAnalyzeDreamTool(s *server.MCPServer, db *sql.DB) {
	analyzeDream := mcp.NewTool("analyze_dream",
		mcp.WithDescription("Runs keyword analysis over a dream entry's text and stores the result."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("The entry id.")),
	)
	s.AddTool(analyzeDream, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, ok := requireID(request)
		if !ok {
			return mcp.NewToolResultError("'id' parameter is required and must be a number."), nil
		}

		entry, err := dreams.GetEntry(ctx, db, id)
		if err != nil {
			if errors.Is(err, dreams.ErrEntryNotFound) {
				return mcp.NewToolResultError(fmt.Sprintf("Dream entry %d not found.", id)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("Error retrieving dream entry %d: %v", id, err)), nil
		}

		saved, err := analyzeAndStore(ctx, db, entry)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to store analysis: %v", err)), nil
		}

		return jsonResult(saved)
	})
}

// RegisterBuildPromptTool registers the build_prompt tool.
func RegisterBuildPromptTool(s *server.MCPServer, db *sql.DB) {
	buildPrompt := mcp.NewTool("build_prompt",
		mcp.WithDescription("Builds an image generation prompt from a dream entry and stores it for approval."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("The entry id.")),
		mcp.WithString("style", mcp.Description("Art style id: ethereal, surreal, nightmare, cosmic, mystical or nostalgic.")),
	)
	s.AddTool(buildPrompt, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, ok := requireID(request)
		if !ok {
			return mcp.NewToolResultError("'id' parameter is required and must be a number."), nil
		}

		styleID := prompt.DefaultStyleID
		if style, ok := request.Params.Arguments["style"].(string); ok && style != "" {
			styleID = style
		}

		entry, err := dreams.GetEntry(ctx, db, id)
		if err != nil {
			if errors.Is(err, dreams.ErrEntryNotFound) {
				return mcp.NewToolResultError(fmt.Sprintf("Dream entry %d not found.", id)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("Error retrieving dream entry %d: %v", id, err)), nil
		}

		dreamText := entryText(entry)

		// Reuse the stored analysis when present, otherwise analyze on the fly.
		var result analysis.Result
		stored, err := dreams.GetLatestAnalysis(ctx, db, id)
		switch {
		case err == nil:
			result = analysis.Result{Emotions: stored.Emotions, Themes: stored.Themes, Symbols: stored.Symbols}
		case errors.Is(err, dreams.ErrAnalysisNotFound):
			result = analysis.Analyze(dreamText)
		default:
			return mcp.NewToolResultError(fmt.Sprintf("Error loading analysis for entry %d: %v", id, err)), nil
		}

		started := time.Now()
		enhanced := prompt.Build(dreamText, styleID, result)
		enhancement, err := dreams.SaveEnhancement(ctx, db, id, dreams.NewEnhancement{
			OriginalPrompt:  dreamText,
			EnhancedPrompt:  enhanced,
			ArtStyle:        styleID,
			Emotions:        result.Emotions,
			Themes:          result.Themes,
			Symbols:         result.Symbols,
			DurationMs:      time.Since(started).Milliseconds(),
			TokensEstimated: len(enhanced) / 4,
		}, prompt.ComplexityScore(enhanced), prompt.ReadabilityScore(enhanced))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to store prompt enhancement: %v", err)), nil
		}

		return jsonResult(enhancement)
	})
}

// RegisterSuggestQuestionsTool registers the suggest_questions tool.
func RegisterSuggestQuestionsTool(s *server.MCPServer, db *sql.DB) {
	suggestQuestions := mcp.NewTool("suggest_questions",
		mcp.WithDescription("Suggests up to three follow-up questions to enrich a dream entry. Asked questions are recorded with the entry, so repeat calls move on to new categories."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("The entry id.")),
		mcp.WithString("asked", mcp.Description("Comma-separated question categories to skip, on top of those already recorded.")),
	)
	s.AddTool(suggestQuestions, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, ok := requireID(request)
		if !ok {
			return mcp.NewToolResultError("'id' parameter is required and must be a number."), nil
		}

		entry, err := dreams.GetEntry(ctx, db, id)
		if err != nil {
			if errors.Is(err, dreams.ErrEntryNotFound) {
				return mcp.NewToolResultError(fmt.Sprintf("Dream entry %d not found.", id)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("Error retrieving dream entry %d: %v", id, err)), nil
		}

		stored, err := dreams.AskedPromptCategories(ctx, db, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error loading asked questions for entry %d: %v", id, err)), nil
		}
		var asked []analysis.Category
		for _, c := range stored {
			asked = append(asked, analysis.Category(c))
		}
		if raw, ok := request.Params.Arguments["asked"].(string); ok && raw != "" {
			for _, part := range strings.Split(raw, ",") {
				asked = append(asked, analysis.Category(strings.TrimSpace(part)))
			}
		}

		questions := analysis.SelectQuestions(entryText(entry), asked)

		toSave := make([]dreams.NewJournalPrompt, len(questions))
		for i, q := range questions {
			toSave[i] = dreams.NewJournalPrompt{PromptText: q.Prompt, PromptCategory: string(q.Category)}
		}
		if _, err := dreams.SaveJournalPrompts(ctx, db, id, toSave); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error recording asked questions for entry %d: %v", id, err)), nil
		}

		return jsonResult(questions)
	})
}

// RegisterExportDreamsTool registers the export_dreams tool.
func RegisterExportDreamsTool(s *server.MCPServer, db *sql.DB) {
	exportDreams := mcp.NewTool("export_dreams",
		mcp.WithDescription("Exports the dream journal, optionally bounded by entry date. Local audio paths are redacted."),
		mcp.WithString("format", mcp.Description("Export format: json (default), csv or html.")),
		mcp.WithString("date_from", mcp.Description("Only export entries on or after this date (YYYY-MM-DD).")),
		mcp.WithString("date_to", mcp.Description("Only export entries on or before this date (YYYY-MM-DD).")),
	)
	s.AddTool(exportDreams, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		format := "json"
		if f, ok := request.Params.Arguments["format"].(string); ok && f != "" {
			format = strings.ToLower(f)
		}
		var rng export.DateRange
		if from, ok := request.Params.Arguments["date_from"].(string); ok {
			rng.From = from
		}
		if to, ok := request.Params.Arguments["date_to"].(string); ok {
			rng.To = to
		}

		var buf bytes.Buffer
		var err error
		switch format {
		case "json":
			err = export.WriteJSON(ctx, db, dreams.DefaultUserID, rng, &buf)
		case "csv":
			err = export.WriteCSV(ctx, db, dreams.DefaultUserID, rng, &buf)
		case "html":
			err = export.WriteHTML(ctx, db, dreams.DefaultUserID, rng, &buf)
		default:
			return mcp.NewToolResultError(fmt.Sprintf("Unknown export format '%s'. Use json, csv or html.", format)), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to export dreams: %v", err)), nil
		}

		return mcp.NewToolResultText(buf.String()), nil
	})
}

// RegisterEnforceRetentionTool registers the enforce_retention tool.
func RegisterEnforceRetentionTool(s *server.MCPServer, db *sql.DB) {
	enforceRetention := mcp.NewTool("enforce_retention",
		mcp.WithDescription("Deletes entries, recordings and analytics past their retention window."),
		mcp.WithNumber("days", mcp.Description("Retention window for analytics and cost rows. Defaults to the privacy setting.")),
	)
	s.AddTool(enforceRetention, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		days := 0
		if d, ok := request.Params.Arguments["days"].(float64); ok {
			days = int(d)
		}
		if days <= 0 {
			settings, err := dreams.GetPrivacySettings(ctx, db)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to load privacy settings: %v", err)), nil
			}
			days = settings.RetentionDays
		}

		report, err := dreams.EnforceRetention(ctx, db, days, os.Remove)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Retention enforcement failed: %v", err)), nil
		}

		return jsonResult(report)
	})
}

// analyzeAndStore runs the keyword analyzer over an entry's text and
// persists the result.
func analyzeAndStore(ctx context.Context, db *sql.DB, entry dreams.Entry) (dreams.Analysis, error) {
	started := time.Now()
	result := analysis.Analyze(entryText(entry))

	return dreams.SaveAnalysis(ctx, db, entry.ID, dreams.Analysis{
		ConfidenceScore:     keywordConfidence(result),
		Emotions:            result.Emotions,
		Themes:              result.Themes,
		Symbols:             result.Symbols,
		DominantEmotion:     result.DominantEmotion(),
		DominantTheme:       result.DominantTheme(),
		EmotionalComplexity: result.EmotionalComplexity(),
		SymbolicDensity:     result.SymbolicDensity(),
		AnalysisDurationMs:  time.Since(started).Milliseconds(),
	})
}

// keywordConfidence grades how much signal the analyzer found. Keyword
// matching is crude, so the ceiling stays well below 1.
func keywordConfidence(result analysis.Result) float64 {
	matches := len(result.Emotions) + len(result.Themes) + len(result.Symbols)
	confidence := 0.3 + 0.1*float64(matches)
	if confidence > 0.8 {
		confidence = 0.8
	}
	return confidence
}

func entryText(entry dreams.Entry) string {
	if entry.Description != "" && entry.Transcription != "" {
		return entry.Transcription + " " + entry.Description
	}
	if entry.Transcription != "" {
		return entry.Transcription
	}
	return entry.Description
}

func requireID(request mcp.CallToolRequest) (int64, bool) {
	raw, ok := request.Params.Arguments["id"].(float64)
	if !ok || raw <= 0 {
		return 0, false
	}
	return int64(raw), true
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize result to JSON: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
