package dreams

import (
	"context"
	"database/sql"
	"errors"
)

const (
	createAnalysisStatement = `
	INSERT INTO dream_analysis (dream_entry_id, analysis_version, analysis_method,
		confidence_score, dominant_emotion, dominant_theme, emotional_complexity,
		symbolic_density, analysis_duration_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	createAnalysisTagStatement = `
	INSERT INTO analysis_tags (analysis_id, category, position, tag)
	VALUES (?, ?, ?, ?)
	`

	getAnalysisStatement = `
	SELECT id, dream_entry_id, analysis_version, analysis_method, confidence_score,
		dominant_emotion, dominant_theme, emotional_complexity, symbolic_density,
		analysis_duration_ms, created_at
	FROM dream_analysis
	WHERE id = ?
	`

	latestAnalysisStatement = `
	SELECT id, dream_entry_id, analysis_version, analysis_method, confidence_score,
		dominant_emotion, dominant_theme, emotional_complexity, symbolic_density,
		analysis_duration_ms, created_at
	FROM dream_analysis
	WHERE dream_entry_id = ?
	ORDER BY created_at DESC, id DESC
	LIMIT 1
	`

	analysisTagsStatement = `
	SELECT category, tag FROM analysis_tags
	WHERE analysis_id = ?
	ORDER BY category, position
	`
)

// Tag categories shared by analysis_tags and enhancement_tags.
const (
	tagEmotion = "emotion"
	tagTheme   = "theme"
	tagSymbol  = "symbol"
)

func insertAnalysis(ctx context.Context, q execer, entryID int64, a Analysis) (int64, error) {
	if a.AnalysisVersion == "" {
		a.AnalysisVersion = "v1.0"
	}
	if a.AnalysisMethod == "" {
		a.AnalysisMethod = "keyword_matching"
	}

	res, err := q.ExecContext(
		ctx,
		createAnalysisStatement,
		entryID,
		a.AnalysisVersion,
		a.AnalysisMethod,
		a.ConfidenceScore,
		nullIfEmpty(a.DominantEmotion),
		nullIfEmpty(a.DominantTheme),
		a.EmotionalComplexity,
		a.SymbolicDensity,
		a.AnalysisDurationMs,
	)
	if err != nil {
		return 0, err
	}
	analysisID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err := insertTags(ctx, q, createAnalysisTagStatement, analysisID, a.Emotions, a.Themes, a.Symbols); err != nil {
		return 0, err
	}

	return analysisID, nil
}

func insertTags(ctx context.Context, q execer, statement string, ownerID int64, emotions, themes, symbols []string) error {
	write := func(category string, tags []string) error {
		for position, tag := range tags {
			if _, err := q.ExecContext(ctx, statement, ownerID, category, position, tag); err != nil {
				return err
			}
		}
		return nil
	}

	if err := write(tagEmotion, emotions); err != nil {
		return err
	}
	if err := write(tagTheme, themes); err != nil {
		return err
	}
	return write(tagSymbol, symbols)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// SaveAnalysis stores one analyzer run for an entry, detected tag lists
// included, and reads the row back with its tags.
func SaveAnalysis(ctx context.Context, db *sql.DB, entryID int64, a Analysis) (Analysis, error) {
	if _, err := GetEntry(ctx, db, entryID); err != nil {
		return Analysis{}, err
	}
	if a.ConfidenceScore < 0 || a.ConfidenceScore > 1 {
		return Analysis{}, &ValidationError{Field: "confidence_score", Reason: "must be between 0 and 1"}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Analysis{}, err
	}
	defer tx.Rollback()

	id, err := insertAnalysis(ctx, tx, entryID, a)
	if err != nil {
		return Analysis{}, err
	}
	if err := tx.Commit(); err != nil {
		return Analysis{}, err
	}

	return GetAnalysis(ctx, db, id)
}

func GetAnalysis(ctx context.Context, db *sql.DB, id int64) (Analysis, error) {
	a, err := scanAnalysis(db.QueryRowContext(ctx, getAnalysisStatement, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrAnalysisNotFound
		}
		return Analysis{}, err
	}

	if err := loadAnalysisTags(ctx, db, &a); err != nil {
		return Analysis{}, err
	}
	return a, nil
}

// GetLatestAnalysis returns the most recent analysis for an entry, with its
// tag lists in detection order.
func GetLatestAnalysis(ctx context.Context, db *sql.DB, entryID int64) (Analysis, error) {
	a, err := scanAnalysis(db.QueryRowContext(ctx, latestAnalysisStatement, entryID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrAnalysisNotFound
		}
		return Analysis{}, err
	}

	if err := loadAnalysisTags(ctx, db, &a); err != nil {
		return Analysis{}, err
	}
	return a, nil
}

func scanAnalysis(row interface{ Scan(...any) error }) (Analysis, error) {
	var a Analysis
	var dominantEmotion, dominantTheme sql.NullString

	err := row.Scan(
		&a.ID,
		&a.DreamEntryID,
		&a.AnalysisVersion,
		&a.AnalysisMethod,
		&a.ConfidenceScore,
		&dominantEmotion,
		&dominantTheme,
		&a.EmotionalComplexity,
		&a.SymbolicDensity,
		&a.AnalysisDurationMs,
		&a.CreatedAt,
	)
	if err != nil {
		return Analysis{}, err
	}
	a.DominantEmotion = dominantEmotion.String
	a.DominantTheme = dominantTheme.String
	return a, nil
}

func loadAnalysisTags(ctx context.Context, db *sql.DB, a *Analysis) error {
	emotions, themes, symbols, err := loadTags(ctx, db, analysisTagsStatement, a.ID)
	if err != nil {
		return err
	}
	a.Emotions = emotions
	a.Themes = themes
	a.Symbols = symbols
	return nil
}

func loadTags(ctx context.Context, db *sql.DB, statement string, ownerID int64) (emotions, themes, symbols []string, err error) {
	emotions, themes, symbols = []string{}, []string{}, []string{}

	rows, err := db.QueryContext(ctx, statement, ownerID)
	if err != nil {
		return nil, nil, nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var category, tag string
		if err := rows.Scan(&category, &tag); err != nil {
			return nil, nil, nil, err
		}
		switch category {
		case tagEmotion:
			emotions = append(emotions, tag)
		case tagTheme:
			themes = append(themes, tag)
		case tagSymbol:
			symbols = append(symbols, tag)
		}
	}
	if err = rows.Err(); err != nil {
		return nil, nil, nil, err
	}

	return emotions, themes, symbols, nil
}
