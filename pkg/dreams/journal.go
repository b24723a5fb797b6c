package dreams

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const (
	createJournalPromptStatement = `
	INSERT INTO journal_prompts (dream_entry_id, prompt_text, prompt_category, prompt_order)
	VALUES (?, ?, ?, ?)
	`

	getJournalPromptStatement = `
	SELECT id, dream_entry_id, prompt_text, prompt_category, prompt_order,
		response_audio_path, response_transcription, created_at, completed_at
	FROM journal_prompts
	WHERE id = ?
	`

	listJournalPromptsStatement = `
	SELECT id, dream_entry_id, prompt_text, prompt_category, prompt_order,
		response_audio_path, response_transcription, created_at, completed_at
	FROM journal_prompts
	WHERE dream_entry_id = ?
	ORDER BY prompt_order ASC, id ASC
	`

	nextJournalPromptOrderStatement = `
	SELECT COALESCE(MAX(prompt_order) + 1, 0) FROM journal_prompts WHERE dream_entry_id = ?
	`

	askedPromptCategoriesStatement = `
	SELECT DISTINCT prompt_category FROM journal_prompts
	WHERE dream_entry_id = ? AND prompt_category != ''
	ORDER BY prompt_category ASC
	`

	answerJournalPromptStatement = `
	UPDATE journal_prompts
	SET response_transcription = ?, response_audio_path = ?, completed_at = ?
	WHERE id = ?
	`
)

var ErrJournalPromptNotFound = errors.New("journal prompt not found")

// SaveJournalPrompts records the questions asked for an entry, in the given
// order, continuing the entry's existing sequence. The stored categories feed
// later question selection so sessions do not repeat themselves.
func SaveJournalPrompts(ctx context.Context, db *sql.DB, entryID int64, prompts []NewJournalPrompt) ([]JournalPrompt, error) {
	if _, err := GetEntry(ctx, db, entryID); err != nil {
		return nil, err
	}

	var next int
	if err := db.QueryRowContext(ctx, nextJournalPromptOrderStatement, entryID).Scan(&next); err != nil {
		return nil, err
	}

	saved := make([]JournalPrompt, 0, len(prompts))
	for i, p := range prompts {
		if p.PromptText == "" {
			return nil, &ValidationError{Field: "prompt_text", Reason: "must not be empty"}
		}
		res, err := db.ExecContext(ctx, createJournalPromptStatement, entryID, p.PromptText, p.PromptCategory, next+i)
		if err != nil {
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		row, err := GetJournalPrompt(ctx, db, id)
		if err != nil {
			return nil, err
		}
		saved = append(saved, row)
	}
	return saved, nil
}

func GetJournalPrompt(ctx context.Context, db *sql.DB, id int64) (JournalPrompt, error) {
	row := db.QueryRowContext(ctx, getJournalPromptStatement, id)
	jp, err := scanJournalPrompt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return JournalPrompt{}, ErrJournalPromptNotFound
	}
	return jp, err
}

func ListJournalPrompts(ctx context.Context, db *sql.DB, entryID int64) ([]JournalPrompt, error) {
	rows, err := db.QueryContext(ctx, listJournalPromptsStatement, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prompts := []JournalPrompt{}
	for rows.Next() {
		jp, err := scanJournalPrompt(rows)
		if err != nil {
			return nil, err
		}
		prompts = append(prompts, jp)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return prompts, nil
}

// AskedPromptCategories returns the distinct categories already asked for an
// entry, sorted.
func AskedPromptCategories(ctx context.Context, db *sql.DB, entryID int64) ([]string, error) {
	rows, err := db.QueryContext(ctx, askedPromptCategoriesStatement, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return categories, nil
}

// AnswerJournalPrompt stores the user's answer and stamps the question
// completed. audioPath may be empty for a typed answer.
func AnswerJournalPrompt(ctx context.Context, db *sql.DB, id int64, transcription, audioPath string) (JournalPrompt, error) {
	if transcription == "" {
		return JournalPrompt{}, &ValidationError{Field: "response_transcription", Reason: "must not be empty"}
	}

	var path any
	if audioPath != "" {
		path = audioPath
	}

	res, err := db.ExecContext(ctx, answerJournalPromptStatement, transcription, path, float64(time.Now().Unix()), id)
	if err != nil {
		return JournalPrompt{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return JournalPrompt{}, err
	}
	if affected == 0 {
		return JournalPrompt{}, ErrJournalPromptNotFound
	}

	return GetJournalPrompt(ctx, db, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJournalPrompt(row rowScanner) (JournalPrompt, error) {
	var jp JournalPrompt
	var audioPath, transcription sql.NullString
	var completedAt sql.NullFloat64

	err := row.Scan(
		&jp.ID,
		&jp.DreamEntryID,
		&jp.PromptText,
		&jp.PromptCategory,
		&jp.PromptOrder,
		&audioPath,
		&transcription,
		&jp.CreatedAt,
		&completedAt,
	)
	if err != nil {
		return JournalPrompt{}, err
	}
	jp.ResponseAudioPath = audioPath.String
	jp.ResponseTranscription = transcription.String
	jp.CompletedAt = completedAt.Float64

	return jp, nil
}
