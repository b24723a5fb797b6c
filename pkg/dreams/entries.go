package dreams

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	createEntryStatement = `
	INSERT INTO dream_entries (user_id, entry_date, title, status, transcription, description,
		lucidity_level, vividness_level, emotional_intensity, art_style, retention_days)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	getEntryStatement = `
	SELECT id, user_id, entry_date, title, status, transcription, description,
		lucidity_level, vividness_level, emotional_intensity, art_style, image_url,
		retention_days, created_at, updated_at
	FROM dream_entries
	WHERE id = ?
	`

	deleteEntryStatement = `
	DELETE FROM dream_entries
	WHERE id = ?
	`

	entryAudioPathsStatement = `
	SELECT file_path FROM audio_files
	WHERE dream_entry_id = ?
	`
)

const entryColumns = `id, user_id, entry_date, title, status, transcription, description,
	lucidity_level, vividness_level, emotional_intensity, art_style, image_url,
	retention_days, created_at, updated_at`

func scanEntry(row interface{ Scan(...any) error }) (Entry, error) {
	var entry Entry
	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.EntryDate,
		&entry.Title,
		&entry.Status,
		&entry.Transcription,
		&entry.Description,
		&entry.LucidityLevel,
		&entry.VividnessLevel,
		&entry.EmotionalIntensity,
		&entry.ArtStyle,
		&entry.ImageURL,
		&entry.RetentionDays,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	return entry, err
}

func validateNewEntry(in *NewEntry) error {
	if err := validateLevel("lucidity_level", in.LucidityLevel); err != nil {
		return err
	}
	if err := validateLevel("vividness_level", in.VividnessLevel); err != nil {
		return err
	}
	if err := validateLevel("emotional_intensity", in.EmotionalIntensity); err != nil {
		return err
	}
	if in.EntryDate != "" {
		if _, err := time.Parse("2006-01-02", in.EntryDate); err != nil {
			return &ValidationError{Field: "entry_date", Reason: "must be YYYY-MM-DD"}
		}
	}
	if in.RetentionDays < 0 {
		return &ValidationError{Field: "retention_days", Reason: "must not be negative"}
	}
	return nil
}

// CreateEntry inserts one dream entry and reads it back. Missing user,
// date and retention fields get their defaults before the insert.
func CreateEntry(ctx context.Context, db *sql.DB, in NewEntry) (Entry, error) {
	if err := validateNewEntry(&in); err != nil {
		return Entry{}, err
	}
	if in.UserID == "" {
		in.UserID = DefaultUserID
	}
	if in.EntryDate == "" {
		in.EntryDate = time.Now().Format("2006-01-02")
	}
	if in.RetentionDays == 0 {
		in.RetentionDays = DefaultRetentionDays
	}

	res, err := db.ExecContext(
		ctx,
		createEntryStatement,
		in.UserID,
		in.EntryDate,
		in.Title,
		StatusDraft,
		in.Transcription,
		in.Description,
		in.LucidityLevel,
		in.VividnessLevel,
		in.EmotionalIntensity,
		in.ArtStyle,
		in.RetentionDays,
	)
	if err != nil {
		return Entry{}, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Entry{}, err
	}

	return GetEntry(ctx, db, id)
}

func GetEntry(ctx context.Context, db *sql.DB, id int64) (Entry, error) {
	entry, err := scanEntry(db.QueryRowContext(ctx, getEntryStatement, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, ErrEntryNotFound
		}
		return Entry{}, err
	}
	return entry, nil
}

// GetEntryDetail loads an entry plus its audio files, latest analysis,
// enhancements (with approvals) and image generations.
func GetEntryDetail(ctx context.Context, db *sql.DB, id int64) (EntryDetail, error) {
	entry, err := GetEntry(ctx, db, id)
	if err != nil {
		return EntryDetail{}, err
	}

	detail := EntryDetail{Entry: entry}

	detail.AudioFiles, err = ListAudioFiles(ctx, db, id)
	if err != nil {
		return EntryDetail{}, err
	}

	latest, err := GetLatestAnalysis(ctx, db, id)
	if err != nil && !errors.Is(err, ErrAnalysisNotFound) {
		return EntryDetail{}, err
	}
	if err == nil {
		detail.Analysis = &latest
	}

	detail.Enhancements, err = ListEnhancements(ctx, db, id)
	if err != nil {
		return EntryDetail{}, err
	}

	detail.Generations, err = ListGenerations(ctx, db, id)
	if err != nil {
		return EntryDetail{}, err
	}

	return detail, nil
}

// ListEntries returns one page of entries matching the filter, newest
// entry_date first (created_at breaks ties). Total counts all matches
// regardless of the page window.
func ListEntries(ctx context.Context, db *sql.DB, filter Filter, page Page) (EntryPage, error) {
	if page.Limit <= 0 {
		page.Limit = 50
	}
	if page.Offset < 0 {
		page.Offset = 0
	}

	where, args := buildEntryFilter(filter)

	countQuery := "SELECT COUNT(*) FROM dream_entries" + where
	var total int
	if err := db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return EntryPage{}, err
	}

	listQuery := "SELECT " + entryColumns + " FROM dream_entries" + where +
		" ORDER BY entry_date DESC, created_at DESC LIMIT ? OFFSET ?"
	rows, err := db.QueryContext(ctx, listQuery, append(args, page.Limit, page.Offset)...)
	if err != nil {
		return EntryPage{}, err
	}
	defer rows.Close()

	items := []Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return EntryPage{}, err
		}
		items = append(items, entry)
	}
	if err = rows.Err(); err != nil {
		return EntryPage{}, err
	}

	return EntryPage{
		Items:   items,
		Total:   total,
		Limit:   page.Limit,
		Offset:  page.Offset,
		HasMore: page.Offset+len(items) < total,
	}, nil
}

func buildEntryFilter(filter Filter) (string, []any) {
	clauses := []string{}
	args := []any{}

	if filter.UserID != "" {
		clauses = append(clauses, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.DateFrom != "" {
		clauses = append(clauses, "entry_date >= ?")
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != "" {
		clauses = append(clauses, "entry_date <= ?")
		args = append(args, filter.DateTo)
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		clauses = append(clauses, "(title LIKE ? OR transcription LIKE ? OR description LIKE ?)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if filter.HasAnalysis != nil {
		op := "IN"
		if !*filter.HasAnalysis {
			op = "NOT IN"
		}
		clauses = append(clauses, "id "+op+" (SELECT dream_entry_id FROM dream_analysis)")
	}
	if filter.HasImage != nil {
		if *filter.HasImage {
			clauses = append(clauses, "image_url != ''")
		} else {
			clauses = append(clauses, "image_url = ''")
		}
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// UpdateEntry writes the non-nil fields of the update and reads the row
// back. An update with no fields set returns ErrNoFields without touching
// the database.
func UpdateEntry(ctx context.Context, db *sql.DB, id int64, update EntryUpdate) (Entry, error) {
	sets := []string{}
	args := []any{}

	appendSet := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if update.Title != nil {
		appendSet("title", *update.Title)
	}
	if update.Description != nil {
		appendSet("description", *update.Description)
	}
	if update.Transcription != nil {
		appendSet("transcription", *update.Transcription)
	}
	if update.LucidityLevel != nil {
		if err := validateLevel("lucidity_level", *update.LucidityLevel); err != nil {
			return Entry{}, err
		}
		appendSet("lucidity_level", *update.LucidityLevel)
	}
	if update.VividnessLevel != nil {
		if err := validateLevel("vividness_level", *update.VividnessLevel); err != nil {
			return Entry{}, err
		}
		appendSet("vividness_level", *update.VividnessLevel)
	}
	if update.EmotionalIntensity != nil {
		if err := validateLevel("emotional_intensity", *update.EmotionalIntensity); err != nil {
			return Entry{}, err
		}
		appendSet("emotional_intensity", *update.EmotionalIntensity)
	}
	if update.Status != nil {
		switch *update.Status {
		case StatusDraft, StatusProcessing, StatusComplete, StatusArchived:
		default:
			return Entry{}, &ValidationError{Field: "status", Reason: "unknown status " + *update.Status}
		}
		appendSet("status", *update.Status)
	}
	if update.ArtStyle != nil {
		appendSet("art_style", *update.ArtStyle)
	}
	if update.ImageURL != nil {
		appendSet("image_url", *update.ImageURL)
	}

	if len(sets) == 0 {
		return Entry{}, ErrNoFields
	}

	query := "UPDATE dream_entries SET " + strings.Join(sets, ", ") +
		", updated_at = unixepoch() WHERE id = ?"
	res, err := db.ExecContext(ctx, query, append(args, id)...)
	if err != nil {
		return Entry{}, err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return Entry{}, err
	}
	if rowsAffected == 0 {
		return Entry{}, ErrEntryNotFound
	}

	return GetEntry(ctx, db, id)
}

// DeleteEntry removes the entry row and everything cascading from it, then
// removes the entry's audio blobs via removeFile. Blob removal failures are
// logged, not returned: the database delete already succeeded and a retry
// would not bring the rows back.
func DeleteEntry(ctx context.Context, db *sql.DB, id int64, removeFile RemoveFile) error {
	rows, err := db.QueryContext(ctx, entryAudioPathsStatement, id)
	if err != nil {
		return err
	}
	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return err
		}
		paths = append(paths, p)
	}
	if err = rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	res, err := db.ExecContext(ctx, deleteEntryStatement, id)
	if err != nil {
		return err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrEntryNotFound
	}

	if removeFile != nil {
		for _, p := range paths {
			if err := removeFile(p); err != nil {
				slog.Warn("failed to remove audio blob", "path", p, "error", err)
			}
		}
	}

	return nil
}

// CreateCompleteEntry persists an entry together with its recording,
// analysis and enhancement in one transaction. Either everything commits
// or nothing does.
func CreateCompleteEntry(ctx context.Context, db *sql.DB, in NewEntry, audio *NewAudioFile, a *Analysis, enh *NewEnhancement) (EntryDetail, error) {
	if err := validateNewEntry(&in); err != nil {
		return EntryDetail{}, err
	}
	if in.UserID == "" {
		in.UserID = DefaultUserID
	}
	if in.EntryDate == "" {
		in.EntryDate = time.Now().Format("2006-01-02")
	}
	if in.RetentionDays == 0 {
		in.RetentionDays = DefaultRetentionDays
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return EntryDetail{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(
		ctx,
		createEntryStatement,
		in.UserID,
		in.EntryDate,
		in.Title,
		StatusComplete,
		in.Transcription,
		in.Description,
		in.LucidityLevel,
		in.VividnessLevel,
		in.EmotionalIntensity,
		in.ArtStyle,
		in.RetentionDays,
	)
	if err != nil {
		return EntryDetail{}, err
	}
	entryID, err := res.LastInsertId()
	if err != nil {
		return EntryDetail{}, err
	}

	if audio != nil {
		if _, err := insertAudioFile(ctx, tx, entryID, *audio); err != nil {
			return EntryDetail{}, err
		}
	}
	if a != nil {
		if _, err := insertAnalysis(ctx, tx, entryID, *a); err != nil {
			return EntryDetail{}, err
		}
	}
	if enh != nil {
		if _, err := insertEnhancement(ctx, tx, entryID, *enh); err != nil {
			return EntryDetail{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return EntryDetail{}, fmt.Errorf("committing complete entry: %w", err)
	}

	return GetEntryDetail(ctx, db, entryID)
}
