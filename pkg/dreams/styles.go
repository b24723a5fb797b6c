package dreams

import (
	"context"
	"database/sql"
)

const (
	touchStylePreferenceStatement = `
	INSERT INTO art_style_preferences (user_id, style_name, usage_count, last_used_at)
	VALUES (?, ?, 1, unixepoch())
	ON CONFLICT (user_id, style_name)
	DO UPDATE SET usage_count = usage_count + 1, last_used_at = unixepoch(), updated_at = unixepoch()
	`

	rateStylePreferenceStatement = `
	UPDATE art_style_preferences
	SET average_rating = (average_rating * (usage_count - 1) + ?) / usage_count,
		updated_at = unixepoch()
	WHERE user_id = ? AND style_name = ?
	`

	setFavoriteStyleStatement = `
	UPDATE art_style_preferences
	SET is_favorite = ?, updated_at = unixepoch()
	WHERE user_id = ? AND style_name = ?
	`

	listStylePreferencesStatement = `
	SELECT style_name, usage_count, average_rating, is_favorite, last_used_at
	FROM art_style_preferences
	WHERE user_id = ?
	ORDER BY usage_count DESC, style_name ASC
	`
)

// StylePreference tracks how often a user picks an art style and how they
// rate the results.
type StylePreference struct {
	StyleName     string  `json:"style_name"`
	UsageCount    int     `json:"usage_count"`
	AverageRating float64 `json:"average_rating"`
	IsFavorite    bool    `json:"is_favorite"`
	LastUsedAt    float64 `json:"last_used_at,omitempty"`
}

// TouchStylePreference records one more use of a style, creating the
// preference row on first use.
func TouchStylePreference(ctx context.Context, db *sql.DB, userID, styleName string) error {
	if styleName == "" {
		return &ValidationError{Field: "style_name", Reason: "must not be empty"}
	}
	if userID == "" {
		userID = DefaultUserID
	}
	_, err := db.ExecContext(ctx, touchStylePreferenceStatement, userID, styleName)
	return err
}

// RateStylePreference folds one rating into the style's running average.
func RateStylePreference(ctx context.Context, db *sql.DB, userID, styleName string, rating int) error {
	if rating < 1 || rating > 5 {
		return &ValidationError{Field: "rating", Reason: "must be between 1 and 5"}
	}
	if userID == "" {
		userID = DefaultUserID
	}
	_, err := db.ExecContext(ctx, rateStylePreferenceStatement, rating, userID, styleName)
	return err
}

// SetFavoriteStyle marks or unmarks a style as the user's favorite.
func SetFavoriteStyle(ctx context.Context, db *sql.DB, userID, styleName string, favorite bool) error {
	if userID == "" {
		userID = DefaultUserID
	}
	_, err := db.ExecContext(ctx, setFavoriteStyleStatement, favorite, userID, styleName)
	return err
}

// ListStylePreferences returns a user's style usage, most used first.
func ListStylePreferences(ctx context.Context, db *sql.DB, userID string) ([]StylePreference, error) {
	if userID == "" {
		userID = DefaultUserID
	}

	rows, err := db.QueryContext(ctx, listStylePreferencesStatement, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prefs := []StylePreference{}
	for rows.Next() {
		var p StylePreference
		var lastUsedAt sql.NullFloat64
		if err := rows.Scan(&p.StyleName, &p.UsageCount, &p.AverageRating, &p.IsFavorite, &lastUsedAt); err != nil {
			return nil, err
		}
		p.LastUsedAt = lastUsedAt.Float64
		prefs = append(prefs, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return prefs, nil
}
