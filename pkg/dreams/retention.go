package dreams

import (
	"context"
	"database/sql"
	"log/slog"
	"time"
)

const (
	expiredEntryPathsStatement = `
	SELECT a.file_path
	FROM audio_files a
	JOIN dream_entries e ON e.id = a.dream_entry_id
	WHERE unixepoch() - e.created_at > e.retention_days * 86400
	`

	deleteExpiredEntriesStatement = `
	DELETE FROM dream_entries
	WHERE unixepoch() - created_at > retention_days * 86400
	`

	expiredAudioPathsStatement = `
	SELECT file_path FROM audio_files
	WHERE auto_delete_at IS NOT NULL AND auto_delete_at < unixepoch()
	`

	deleteExpiredAudioStatement = `
	DELETE FROM audio_files
	WHERE auto_delete_at IS NOT NULL AND auto_delete_at < unixepoch()
	`

	deleteOldAnalyticsStatement = `
	DELETE FROM analytics_events
	WHERE created_at < ?
	`

	deleteOldCostRowsStatement = `
	DELETE FROM cost_tracking
	WHERE created_at < ?
	`
)

// EnforceRetention deletes everything past its retention window: entries
// older than their own retention_days (cascading to analysis, enhancements,
// approvals and generations), audio rows whose auto_delete_at has passed,
// and analytics plus cost rows older than defaultDays.
//
// Blobs are removed before their rows so a crash between the two leaves a
// re-runnable state, never an orphaned file with no row pointing at it.
// The run is idempotent: a second invocation finds nothing left to delete.
func EnforceRetention(ctx context.Context, db *sql.DB, defaultDays int, removeFile RemoveFile) (RetentionReport, error) {
	if defaultDays <= 0 {
		defaultDays = DefaultRetentionDays
	}
	cutoff := time.Now().AddDate(0, 0, -defaultDays)
	report := RetentionReport{
		RetentionDays: defaultDays,
		CutoffUnix:    cutoff.Unix(),
		CutoffDate:    cutoff.Format("2006-01-02"),
	}

	paths, err := collectPaths(ctx, db, expiredEntryPathsStatement)
	if err != nil {
		return report, err
	}
	expiredAudio, err := collectPaths(ctx, db, expiredAudioPathsStatement)
	if err != nil {
		return report, err
	}
	paths = append(paths, expiredAudio...)

	removeBlobs(paths, removeFile)

	res, err := db.ExecContext(ctx, deleteExpiredEntriesStatement)
	if err != nil {
		return report, err
	}
	report.EntriesDeleted, _ = res.RowsAffected()

	res, err = db.ExecContext(ctx, deleteExpiredAudioStatement)
	if err != nil {
		return report, err
	}
	report.AudioFilesDeleted, _ = res.RowsAffected()

	res, err = db.ExecContext(ctx, deleteOldAnalyticsStatement, float64(cutoff.Unix()))
	if err != nil {
		return report, err
	}
	report.AnalyticsDeleted, _ = res.RowsAffected()

	res, err = db.ExecContext(ctx, deleteOldCostRowsStatement, float64(cutoff.Unix()))
	if err != nil {
		return report, err
	}
	report.CostRowsDeleted, _ = res.RowsAffected()

	return report, nil
}

// DeleteUserData removes every row belonging to a user: entries with all
// cascading children, characters, art style preferences, cost tracking and
// analytics events. Audio blobs are removed first, like EnforceRetention.
// Returns the number of entries deleted.
func DeleteUserData(ctx context.Context, db *sql.DB, userID string, removeFile RemoveFile) (int64, error) {
	if userID == "" {
		userID = DefaultUserID
	}

	rows, err := db.QueryContext(ctx, `
	SELECT a.file_path
	FROM audio_files a
	JOIN dream_entries e ON e.id = a.dream_entry_id
	WHERE e.user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return 0, err
		}
		paths = append(paths, p)
	}
	if err = rows.Err(); err != nil {
		rows.Close()
		return 0, err
	}
	rows.Close()

	removeBlobs(paths, removeFile)

	res, err := db.ExecContext(ctx, "DELETE FROM dream_entries WHERE user_id = ?", userID)
	if err != nil {
		return 0, err
	}
	entriesDeleted, _ := res.RowsAffected()

	for _, statement := range []string{
		"DELETE FROM user_characters WHERE user_id = ?",
		"DELETE FROM art_style_preferences WHERE user_id = ?",
		"DELETE FROM cost_tracking WHERE user_id = ?",
		"DELETE FROM analytics_events WHERE user_id = ?",
	} {
		if _, err := db.ExecContext(ctx, statement, userID); err != nil {
			return entriesDeleted, err
		}
	}

	// Anonymized audit trail: record that an erasure happened without
	// recording whose data it was.
	if err := LogEvent(ctx, db, NewEvent{
		EventType:     "privacy",
		EventName:     "user_data_deleted",
		EventCategory: "gdpr",
		UserID:        "anonymous",
		Properties:    map[string]any{"entries_deleted": entriesDeleted},
		IsAnonymous:   true,
	}); err != nil {
		slog.Warn("failed to record erasure audit event", "error", err)
	}

	return entriesDeleted, nil
}

func collectPaths(ctx context.Context, db *sql.DB, statement string) ([]string, error) {
	rows, err := db.QueryContext(ctx, statement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

func removeBlobs(paths []string, removeFile RemoveFile) {
	if removeFile == nil {
		return
	}
	for _, p := range paths {
		if err := removeFile(p); err != nil {
			slog.Warn("failed to remove expired audio blob", "path", p, "error", err)
		}
	}
}
