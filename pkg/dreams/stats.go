package dreams

import (
	"context"
	"database/sql"
)

const (
	entryStatsStatement = `
	SELECT COUNT(*),
		COALESCE(AVG(lucidity_level), 0),
		COALESCE(AVG(vividness_level), 0),
		COALESCE(AVG(emotional_intensity), 0),
		COALESCE(SUM(CASE WHEN image_url != '' THEN 1 ELSE 0 END), 0),
		COALESCE(MIN(entry_date), ''),
		COALESCE(MAX(entry_date), '')
	FROM dream_entries
	WHERE user_id = ?
	`

	tagFrequencyStatement = `
	SELECT t.tag, COUNT(*) AS freq
	FROM analysis_tags t
	JOIN dream_analysis a ON a.id = t.analysis_id
	JOIN dream_entries e ON e.id = a.dream_entry_id
	WHERE e.user_id = ? AND t.category = ?
	GROUP BY t.tag
	ORDER BY freq DESC, t.tag ASC
	LIMIT ?
	`

	enhancementStatsStatement = `
	SELECT COUNT(*),
		COALESCE(AVG(pe.prompt_length), 0),
		COALESCE(AVG(pe.complexity_score), 0),
		COALESCE(AVG(pe.readability_score), 0),
		COALESCE(SUM(CASE WHEN pe.final_approved_prompt IS NOT NULL THEN 1 ELSE 0 END), 0)
	FROM prompt_enhancements pe
	JOIN dream_entries e ON e.id = pe.dream_entry_id
	WHERE e.user_id = ?
	`

	generationStatsStatement = `
	SELECT
		COALESCE(SUM(CASE WHEN g.status = 'success' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN g.status = 'failed' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(g.cost_estimate), 0)
	FROM image_generations g
	JOIN dream_entries e ON e.id = g.dream_entry_id
	WHERE e.user_id = ?
	`
)

// topTagLimit caps the per-category frequency lists in AnalysisStats.
const topTagLimit = 5

// TagFrequency is one label with its occurrence count across all analyses.
type TagFrequency struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// EntryStats summarizes a user's journal.
type EntryStats struct {
	TotalEntries      int     `json:"total_entries"`
	AvgLucidity       float64 `json:"avg_lucidity"`
	AvgVividness      float64 `json:"avg_vividness"`
	AvgIntensity      float64 `json:"avg_emotional_intensity"`
	EntriesWithImages int     `json:"entries_with_images"`
	FirstEntryDate    string  `json:"first_entry_date,omitempty"`
	MostRecentDate    string  `json:"most_recent_date,omitempty"`
}

// AnalysisStats lists the most frequent detected labels per category,
// frequency descending with alphabetical tie-break.
type AnalysisStats struct {
	TopEmotions []TagFrequency `json:"top_emotions"`
	TopThemes   []TagFrequency `json:"top_themes"`
	TopSymbols  []TagFrequency `json:"top_symbols"`
}

// EnhancementStats summarizes prompt building and approval activity.
type EnhancementStats struct {
	TotalEnhancements int     `json:"total_enhancements"`
	AvgPromptLength   float64 `json:"avg_prompt_length"`
	AvgComplexity     float64 `json:"avg_complexity_score"`
	AvgReadability    float64 `json:"avg_readability_score"`
	ApprovedCount     int     `json:"approved_count"`
}

// GenerationStats summarizes image generation outcomes and spend.
type GenerationStats struct {
	Successful    int     `json:"successful"`
	Failed        int     `json:"failed"`
	EstimatedCost float64 `json:"estimated_cost"`
}

// DashboardStats is everything the stats views need in one call.
type DashboardStats struct {
	Entries      EntryStats       `json:"entries"`
	Analysis     AnalysisStats    `json:"analysis"`
	Enhancements EnhancementStats `json:"enhancements"`
	Generations  GenerationStats  `json:"generations"`
}

func GetEntryStats(ctx context.Context, db *sql.DB, userID string) (EntryStats, error) {
	if userID == "" {
		userID = DefaultUserID
	}

	var stats EntryStats
	err := db.QueryRowContext(ctx, entryStatsStatement, userID).Scan(
		&stats.TotalEntries,
		&stats.AvgLucidity,
		&stats.AvgVividness,
		&stats.AvgIntensity,
		&stats.EntriesWithImages,
		&stats.FirstEntryDate,
		&stats.MostRecentDate,
	)
	return stats, err
}

func GetAnalysisStats(ctx context.Context, db *sql.DB, userID string) (AnalysisStats, error) {
	if userID == "" {
		userID = DefaultUserID
	}

	var stats AnalysisStats
	var err error

	stats.TopEmotions, err = topTags(ctx, db, userID, tagEmotion)
	if err != nil {
		return AnalysisStats{}, err
	}
	stats.TopThemes, err = topTags(ctx, db, userID, tagTheme)
	if err != nil {
		return AnalysisStats{}, err
	}
	stats.TopSymbols, err = topTags(ctx, db, userID, tagSymbol)
	if err != nil {
		return AnalysisStats{}, err
	}

	return stats, nil
}

func topTags(ctx context.Context, db *sql.DB, userID, category string) ([]TagFrequency, error) {
	rows, err := db.QueryContext(ctx, tagFrequencyStatement, userID, category, topTagLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	frequencies := []TagFrequency{}
	for rows.Next() {
		var tf TagFrequency
		if err := rows.Scan(&tf.Tag, &tf.Count); err != nil {
			return nil, err
		}
		frequencies = append(frequencies, tf)
	}
	return frequencies, rows.Err()
}

func GetEnhancementStats(ctx context.Context, db *sql.DB, userID string) (EnhancementStats, error) {
	if userID == "" {
		userID = DefaultUserID
	}

	var stats EnhancementStats
	err := db.QueryRowContext(ctx, enhancementStatsStatement, userID).Scan(
		&stats.TotalEnhancements,
		&stats.AvgPromptLength,
		&stats.AvgComplexity,
		&stats.AvgReadability,
		&stats.ApprovedCount,
	)
	return stats, err
}

func GetGenerationStats(ctx context.Context, db *sql.DB, userID string) (GenerationStats, error) {
	if userID == "" {
		userID = DefaultUserID
	}

	var stats GenerationStats
	err := db.QueryRowContext(ctx, generationStatsStatement, userID).Scan(
		&stats.Successful,
		&stats.Failed,
		&stats.EstimatedCost,
	)
	return stats, err
}

// GetDashboardStats bundles all stat groups for one user.
func GetDashboardStats(ctx context.Context, db *sql.DB, userID string) (DashboardStats, error) {
	entries, err := GetEntryStats(ctx, db, userID)
	if err != nil {
		return DashboardStats{}, err
	}
	analysis, err := GetAnalysisStats(ctx, db, userID)
	if err != nil {
		return DashboardStats{}, err
	}
	enhancements, err := GetEnhancementStats(ctx, db, userID)
	if err != nil {
		return DashboardStats{}, err
	}
	generations, err := GetGenerationStats(ctx, db, userID)
	if err != nil {
		return DashboardStats{}, err
	}

	return DashboardStats{
		Entries:      entries,
		Analysis:     analysis,
		Enhancements: enhancements,
		Generations:  generations,
	}, nil
}
