package dreams

import (
	"context"
	"database/sql"
	"errors"
)

const (
	createGenerationStatement = `
	INSERT INTO image_generations (dream_entry_id, enhancement_id, provider, model,
		quality, size, submitted_prompt, revised_prompt, image_url, local_image_path,
		status, generation_time_seconds, cost_estimate, error_message, completed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	getGenerationStatement = `
	SELECT id, dream_entry_id, enhancement_id, provider, model, quality, size,
		submitted_prompt, revised_prompt, image_url, local_image_path, status,
		generation_time_seconds, cost_estimate, error_message, created_at, completed_at
	FROM image_generations
	WHERE id = ?
	`

	listGenerationsStatement = `
	SELECT id, dream_entry_id, enhancement_id, provider, model, quality, size,
		submitted_prompt, revised_prompt, image_url, local_image_path, status,
		generation_time_seconds, cost_estimate, error_message, created_at, completed_at
	FROM image_generations
	WHERE dream_entry_id = ?
	ORDER BY created_at DESC, id DESC
	`

	setEntryImageStatement = `
	UPDATE dream_entries
	SET image_url = ?, updated_at = unixepoch()
	WHERE id = ?
	`
)

// NewGeneration carries the fields accepted when recording an image
// generation attempt. A row is recorded only after the external call has
// resolved, success or failure, so there is no in-flight state to clean up.
type NewGeneration struct {
	EnhancementID         int64
	Provider              string
	Model                 string
	Quality               string
	Size                  string
	SubmittedPrompt       string
	RevisedPrompt         string
	ImageURL              string
	LocalImagePath        string
	GenerationTimeSeconds float64
	CostEstimate          float64
	ErrorMessage          string
}

func (in *NewGeneration) applyDefaults() {
	if in.Provider == "" {
		in.Provider = "openai"
	}
	if in.Model == "" {
		in.Model = "dall-e-3"
	}
	if in.Quality == "" {
		in.Quality = "standard"
	}
	if in.Size == "" {
		in.Size = "1024x1024"
	}
}

// RecordSuccessfulGeneration stores a resolved, successful image generation
// and stamps the entry's image_url with the returned image in the same
// transaction.
func RecordSuccessfulGeneration(ctx context.Context, db *sql.DB, entryID int64, in NewGeneration) (Generation, error) {
	if in.ImageURL == "" {
		return Generation{}, &ValidationError{Field: "image_url", Reason: "must not be empty for a successful generation"}
	}
	if _, err := GetEntry(ctx, db, entryID); err != nil {
		return Generation{}, err
	}
	in.applyDefaults()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Generation{}, err
	}
	defer tx.Rollback()

	id, err := insertGeneration(ctx, tx, entryID, in, GenerationSuccess)
	if err != nil {
		return Generation{}, err
	}
	if _, err := tx.ExecContext(ctx, setEntryImageStatement, in.ImageURL, entryID); err != nil {
		return Generation{}, err
	}
	if err := tx.Commit(); err != nil {
		return Generation{}, err
	}

	return GetGeneration(ctx, db, id)
}

// RecordFailedGeneration stores a resolved, failed image generation attempt
// with its error message. The entry is left untouched.
func RecordFailedGeneration(ctx context.Context, db *sql.DB, entryID int64, in NewGeneration) (Generation, error) {
	if in.ErrorMessage == "" {
		return Generation{}, &ValidationError{Field: "error_message", Reason: "must not be empty for a failed generation"}
	}
	if _, err := GetEntry(ctx, db, entryID); err != nil {
		return Generation{}, err
	}
	in.applyDefaults()
	in.ImageURL = ""
	in.LocalImagePath = ""

	id, err := insertGeneration(ctx, db, entryID, in, GenerationFailed)
	if err != nil {
		return Generation{}, err
	}
	return GetGeneration(ctx, db, id)
}

func insertGeneration(ctx context.Context, q execer, entryID int64, in NewGeneration, status string) (int64, error) {
	var enhancementID any
	if in.EnhancementID != 0 {
		enhancementID = in.EnhancementID
	}

	res, err := q.ExecContext(
		ctx,
		createGenerationStatement,
		entryID,
		enhancementID,
		in.Provider,
		in.Model,
		in.Quality,
		in.Size,
		in.SubmittedPrompt,
		in.RevisedPrompt,
		in.ImageURL,
		in.LocalImagePath,
		status,
		in.GenerationTimeSeconds,
		in.CostEstimate,
		in.ErrorMessage,
		nowUnix(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func GetGeneration(ctx context.Context, db *sql.DB, id int64) (Generation, error) {
	g, err := scanGeneration(db.QueryRowContext(ctx, getGenerationStatement, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Generation{}, ErrGenerationNotFound
		}
		return Generation{}, err
	}
	return g, nil
}

func ListGenerations(ctx context.Context, db *sql.DB, entryID int64) ([]Generation, error) {
	rows, err := db.QueryContext(ctx, listGenerationsStatement, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	generations := []Generation{}
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		generations = append(generations, g)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return generations, nil
}

func scanGeneration(row interface{ Scan(...any) error }) (Generation, error) {
	var g Generation
	var enhancementID sql.NullInt64
	var completedAt sql.NullFloat64

	err := row.Scan(
		&g.ID,
		&g.DreamEntryID,
		&enhancementID,
		&g.Provider,
		&g.Model,
		&g.Quality,
		&g.Size,
		&g.SubmittedPrompt,
		&g.RevisedPrompt,
		&g.ImageURL,
		&g.LocalImagePath,
		&g.Status,
		&g.GenerationTimeSeconds,
		&g.CostEstimate,
		&g.ErrorMessage,
		&g.CreatedAt,
		&completedAt,
	)
	if err != nil {
		return Generation{}, err
	}
	g.EnhancementID = enhancementID.Int64
	g.CompletedAt = completedAt.Float64
	return g, nil
}
