package dreams

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// execer is satisfied by both *sql.DB and *sql.Tx so the insert helpers can
// run standalone or inside CreateCompleteEntry's transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const (
	createAudioFileStatement = `
	INSERT INTO audio_files (dream_entry_id, file_path, file_name, file_size,
		duration_seconds, audio_format, audio_type, transcription_confidence, auto_delete_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	getAudioFileStatement = `
	SELECT id, dream_entry_id, file_path, file_name, file_size, duration_seconds,
		audio_format, audio_type, transcription_confidence, auto_delete_at, created_at
	FROM audio_files
	WHERE id = ?
	`

	listAudioFilesStatement = `
	SELECT id, dream_entry_id, file_path, file_name, file_size, duration_seconds,
		audio_format, audio_type, transcription_confidence, auto_delete_at, created_at
	FROM audio_files
	WHERE dream_entry_id = ?
	ORDER BY created_at ASC, id ASC
	`
)

var ErrAudioFileNotFound = errors.New("audio file not found")

func insertAudioFile(ctx context.Context, q execer, entryID int64, in NewAudioFile) (int64, error) {
	if in.FilePath == "" {
		return 0, &ValidationError{Field: "file_path", Reason: "must not be empty"}
	}
	if in.AudioType == "" {
		in.AudioType = AudioOriginalDream
	}
	if in.AudioFormat == "" {
		in.AudioFormat = "m4a"
	}

	var autoDeleteAt any
	if in.RetentionDays > 0 {
		autoDeleteAt = float64(time.Now().AddDate(0, 0, in.RetentionDays).Unix())
	}

	res, err := q.ExecContext(
		ctx,
		createAudioFileStatement,
		entryID,
		in.FilePath,
		in.FileName,
		in.FileSize,
		in.DurationSeconds,
		in.AudioFormat,
		in.AudioType,
		in.TranscriptionConfidence,
		autoDeleteAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// SaveAudioFile attaches a recording to an existing entry and reads it back.
func SaveAudioFile(ctx context.Context, db *sql.DB, entryID int64, in NewAudioFile) (AudioFile, error) {
	if _, err := GetEntry(ctx, db, entryID); err != nil {
		return AudioFile{}, err
	}

	id, err := insertAudioFile(ctx, db, entryID, in)
	if err != nil {
		return AudioFile{}, err
	}
	return GetAudioFile(ctx, db, id)
}

func GetAudioFile(ctx context.Context, db *sql.DB, id int64) (AudioFile, error) {
	var af AudioFile
	var autoDeleteAt sql.NullFloat64

	err := db.QueryRowContext(ctx, getAudioFileStatement, id).Scan(
		&af.ID,
		&af.DreamEntryID,
		&af.FilePath,
		&af.FileName,
		&af.FileSize,
		&af.DurationSeconds,
		&af.AudioFormat,
		&af.AudioType,
		&af.TranscriptionConfidence,
		&autoDeleteAt,
		&af.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AudioFile{}, ErrAudioFileNotFound
		}
		return AudioFile{}, err
	}
	af.AutoDeleteAt = autoDeleteAt.Float64

	return af, nil
}

func ListAudioFiles(ctx context.Context, db *sql.DB, entryID int64) ([]AudioFile, error) {
	rows, err := db.QueryContext(ctx, listAudioFilesStatement, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := []AudioFile{}
	for rows.Next() {
		var af AudioFile
		var autoDeleteAt sql.NullFloat64
		err := rows.Scan(
			&af.ID,
			&af.DreamEntryID,
			&af.FilePath,
			&af.FileName,
			&af.FileSize,
			&af.DurationSeconds,
			&af.AudioFormat,
			&af.AudioType,
			&af.TranscriptionConfidence,
			&autoDeleteAt,
			&af.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		af.AutoDeleteAt = autoDeleteAt.Float64
		files = append(files, af)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return files, nil
}
