package dreams

import (
	"context"
	"database/sql"
	"errors"
)

const (
	createEnhancementStatement = `
	INSERT INTO prompt_enhancements (dream_entry_id, original_prompt, enhanced_prompt,
		enhancement_method, art_style, style_intensity, prompt_length, complexity_score,
		readability_score, enhancement_duration_ms, tokens_estimated)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	createEnhancementTagStatement = `
	INSERT INTO enhancement_tags (enhancement_id, category, position, tag)
	VALUES (?, ?, ?, ?)
	`

	getEnhancementStatement = `
	SELECT id, dream_entry_id, original_prompt, enhanced_prompt, final_approved_prompt,
		enhancement_method, art_style, style_intensity, prompt_length, complexity_score,
		readability_score, enhancement_duration_ms, tokens_estimated, created_at
	FROM prompt_enhancements
	WHERE id = ?
	`

	listEnhancementsStatement = `
	SELECT id, dream_entry_id, original_prompt, enhanced_prompt, final_approved_prompt,
		enhancement_method, art_style, style_intensity, prompt_length, complexity_score,
		readability_score, enhancement_duration_ms, tokens_estimated, created_at
	FROM prompt_enhancements
	WHERE dream_entry_id = ?
	ORDER BY created_at DESC, id DESC
	`

	enhancementTagsStatement = `
	SELECT category, tag FROM enhancement_tags
	WHERE enhancement_id = ?
	ORDER BY category, position
	`

	createApprovalStatement = `
	INSERT INTO prompt_approvals (enhancement_id, approval_status, user_modifications,
		approval_reason, data_sharing_consent, analytics_consent, improvement_consent,
		time_to_approve_seconds, approval_method, satisfaction_rating, user_feedback, approved_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	getApprovalStatement = `
	SELECT id, enhancement_id, approval_status, user_modifications, approval_reason,
		data_sharing_consent, analytics_consent, improvement_consent, time_to_approve_seconds,
		approval_method, satisfaction_rating, user_feedback, approved_at, created_at
	FROM prompt_approvals
	WHERE id = ?
	`

	latestApprovalStatement = `
	SELECT id, enhancement_id, approval_status, user_modifications, approval_reason,
		data_sharing_consent, analytics_consent, improvement_consent, time_to_approve_seconds,
		approval_method, satisfaction_rating, user_feedback, approved_at, created_at
	FROM prompt_approvals
	WHERE enhancement_id = ?
	ORDER BY created_at DESC, id DESC
	LIMIT 1
	`

	setFinalPromptStatement = `
	UPDATE prompt_enhancements
	SET final_approved_prompt = ?
	WHERE id = ?
	`
)

var ErrApprovalNotFound = errors.New("prompt approval not found")

func insertEnhancement(ctx context.Context, q execer, entryID int64, in NewEnhancement) (int64, error) {
	if in.EnhancedPrompt == "" {
		return 0, &ValidationError{Field: "enhanced_prompt", Reason: "must not be empty"}
	}
	if in.ArtStyle == "" {
		in.ArtStyle = "ethereal"
	}
	if in.StyleIntensity == 0 {
		in.StyleIntensity = 1.0
	}

	res, err := q.ExecContext(
		ctx,
		createEnhancementStatement,
		entryID,
		in.OriginalPrompt,
		in.EnhancedPrompt,
		"psychological_analysis",
		in.ArtStyle,
		in.StyleIntensity,
		len(in.EnhancedPrompt),
		0.0, // complexity and readability are filled by the caller via scores
		0.0,
		in.DurationMs,
		in.TokensEstimated,
	)
	if err != nil {
		return 0, err
	}
	enhancementID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err := insertTags(ctx, q, createEnhancementTagStatement, enhancementID, in.Emotions, in.Themes, in.Symbols); err != nil {
		return 0, err
	}

	return enhancementID, nil
}

// SaveEnhancement stores one built prompt for an entry. Complexity and
// readability scores are written afterwards because they are derived from
// the enhanced text by the prompt package, not chosen by the caller.
func SaveEnhancement(ctx context.Context, db *sql.DB, entryID int64, in NewEnhancement, complexityScore, readabilityScore float64) (Enhancement, error) {
	if _, err := GetEntry(ctx, db, entryID); err != nil {
		return Enhancement{}, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Enhancement{}, err
	}
	defer tx.Rollback()

	id, err := insertEnhancement(ctx, tx, entryID, in)
	if err != nil {
		return Enhancement{}, err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE prompt_enhancements SET complexity_score = ?, readability_score = ? WHERE id = ?",
		complexityScore, readabilityScore, id,
	); err != nil {
		return Enhancement{}, err
	}
	if err := tx.Commit(); err != nil {
		return Enhancement{}, err
	}

	return GetEnhancement(ctx, db, id)
}

func GetEnhancement(ctx context.Context, db *sql.DB, id int64) (Enhancement, error) {
	e, err := scanEnhancement(db.QueryRowContext(ctx, getEnhancementStatement, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Enhancement{}, ErrEnhancementNotFound
		}
		return Enhancement{}, err
	}

	if err := attachEnhancementChildren(ctx, db, &e); err != nil {
		return Enhancement{}, err
	}
	return e, nil
}

// ListEnhancements returns an entry's enhancements newest-first, each with
// its tag lists and latest approval attached.
func ListEnhancements(ctx context.Context, db *sql.DB, entryID int64) ([]Enhancement, error) {
	rows, err := db.QueryContext(ctx, listEnhancementsStatement, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	enhancements := []Enhancement{}
	for rows.Next() {
		e, err := scanEnhancement(rows)
		if err != nil {
			return nil, err
		}
		enhancements = append(enhancements, e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for i := range enhancements {
		if err := attachEnhancementChildren(ctx, db, &enhancements[i]); err != nil {
			return nil, err
		}
	}

	return enhancements, nil
}

func scanEnhancement(row interface{ Scan(...any) error }) (Enhancement, error) {
	var e Enhancement
	var finalPrompt sql.NullString

	err := row.Scan(
		&e.ID,
		&e.DreamEntryID,
		&e.OriginalPrompt,
		&e.EnhancedPrompt,
		&finalPrompt,
		&e.EnhancementMethod,
		&e.ArtStyle,
		&e.StyleIntensity,
		&e.PromptLength,
		&e.ComplexityScore,
		&e.ReadabilityScore,
		&e.DurationMs,
		&e.TokensEstimated,
		&e.CreatedAt,
	)
	if err != nil {
		return Enhancement{}, err
	}
	e.FinalApprovedPrompt = finalPrompt.String
	return e, nil
}

func attachEnhancementChildren(ctx context.Context, db *sql.DB, e *Enhancement) error {
	emotions, themes, symbols, err := loadTags(ctx, db, enhancementTagsStatement, e.ID)
	if err != nil {
		return err
	}
	e.Emotions = emotions
	e.Themes = themes
	e.Symbols = symbols

	approval, err := getLatestApproval(ctx, db, e.ID)
	if err != nil {
		if errors.Is(err, ErrApprovalNotFound) {
			return nil
		}
		return err
	}
	e.Approval = &approval
	return nil
}

// SaveApproval records the user's decision on an enhancement. When the
// decision is approved or modified, the enhancement's final_approved_prompt
// is set to the user's modification if present, otherwise the enhanced
// prompt as built.
func SaveApproval(ctx context.Context, db *sql.DB, enhancementID int64, in NewApproval) (Approval, error) {
	enhancement, err := GetEnhancement(ctx, db, enhancementID)
	if err != nil {
		return Approval{}, err
	}

	switch in.Status {
	case ApprovalPending, ApprovalApproved, ApprovalRejected, ApprovalModified:
	default:
		return Approval{}, &ValidationError{Field: "approval_status", Reason: "unknown status " + in.Status}
	}
	if in.SatisfactionRating != 0 && (in.SatisfactionRating < 1 || in.SatisfactionRating > 5) {
		return Approval{}, &ValidationError{Field: "satisfaction_rating", Reason: "must be between 1 and 5"}
	}
	if in.Method == "" {
		in.Method = "manual"
	}

	decided := in.Status == ApprovalApproved || in.Status == ApprovalModified
	var approvedAt any
	if decided || in.Status == ApprovalRejected {
		approvedAt = nowUnix()
	}

	var satisfaction any
	if in.SatisfactionRating != 0 {
		satisfaction = in.SatisfactionRating
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Approval{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(
		ctx,
		createApprovalStatement,
		enhancementID,
		in.Status,
		nullIfEmpty(in.UserModifications),
		in.Reason,
		in.DataSharingConsent,
		in.AnalyticsConsent,
		in.ImprovementConsent,
		in.TimeToApproveSeconds,
		in.Method,
		satisfaction,
		in.UserFeedback,
		approvedAt,
	)
	if err != nil {
		return Approval{}, err
	}
	approvalID, err := res.LastInsertId()
	if err != nil {
		return Approval{}, err
	}

	if decided {
		final := enhancement.EnhancedPrompt
		if in.UserModifications != "" {
			final = in.UserModifications
		}
		if _, err := tx.ExecContext(ctx, setFinalPromptStatement, final, enhancementID); err != nil {
			return Approval{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Approval{}, err
	}

	return getApproval(ctx, db, approvalID)
}

func getApproval(ctx context.Context, db *sql.DB, id int64) (Approval, error) {
	return scanApproval(db.QueryRowContext(ctx, getApprovalStatement, id))
}

func getLatestApproval(ctx context.Context, db *sql.DB, enhancementID int64) (Approval, error) {
	return scanApproval(db.QueryRowContext(ctx, latestApprovalStatement, enhancementID))
}

func scanApproval(row interface{ Scan(...any) error }) (Approval, error) {
	var a Approval
	var modifications sql.NullString
	var satisfaction sql.NullInt64
	var approvedAt sql.NullFloat64

	err := row.Scan(
		&a.ID,
		&a.EnhancementID,
		&a.Status,
		&modifications,
		&a.Reason,
		&a.DataSharingConsent,
		&a.AnalyticsConsent,
		&a.ImprovementConsent,
		&a.TimeToApproveSeconds,
		&a.Method,
		&satisfaction,
		&a.UserFeedback,
		&approvedAt,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Approval{}, ErrApprovalNotFound
		}
		return Approval{}, err
	}
	a.UserModifications = modifications.String
	a.SatisfactionRating = int(satisfaction.Int64)
	a.ApprovedAt = approvedAt.Float64
	return a, nil
}
