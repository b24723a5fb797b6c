package db

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/mattn/go-sqlite3" // SQLite driver, needed for tests
)

// checkTableExists is a test helper to verify if a table exists in the database.
func checkTableExists(t *testing.T, conn *sql.DB, tableName string) {
	t.Helper()
	query := fmt.Sprintf("SELECT name FROM sqlite_master WHERE type='table' AND name='%s';", tableName)
	var name string
	err := conn.QueryRow(query).Scan(&name)
	if err != nil {
		if err == sql.ErrNoRows {
			t.Errorf("Table '%s' does not exist, but it should.", tableName)
			return
		}
		t.Fatalf("Error checking if table '%s' exists: %v", tableName, err)
	}
	if name != tableName {
		t.Errorf("Table check query returned '%s' but expected '%s'", name, tableName)
	}
}

func TestUpgrade_NewDatabase(t *testing.T) {
	conn, err := Open(":memory:", true, "NORMAL")
	if err != nil {
		t.Fatalf("Open failed for in-memory DB: %v", err)
	}
	defer conn.Close()

	if err := Upgrade(conn, ":memory:", TargetSchemaVersion); err != nil {
		t.Fatalf("Upgrade failed on a new in-memory database: %v", err)
	}

	expectedTables := []string{
		"dreamweave_versions",
		"core_settings",
		"dream_entries",
		"audio_files",
		"dream_analysis",
		"analysis_tags",
		"prompt_enhancements",
		"enhancement_tags",
		"prompt_approvals",
		"journal_prompts",
		"user_characters",
		"art_style_preferences",
		"image_generations",
		"cost_tracking",
		"analytics_events",
	}
	for _, tableName := range expectedTables {
		checkTableExists(t, conn, tableName)
	}

	version, err := GetComponentSchemaVersion(conn, DreamsDBComponent)
	if err != nil {
		t.Fatalf("GetComponentSchemaVersion failed after Upgrade: %v", err)
	}
	if version != TargetSchemaVersion {
		t.Errorf("Expected component '%s' to be at version %d, but got %d", DreamsDBComponent, TargetSchemaVersion, version)
	}
}

func TestUpgrade_AlreadyCurrent(t *testing.T) {
	conn, err := Open(":memory:", true, "NORMAL")
	if err != nil {
		t.Fatalf("Open failed for in-memory DB: %v", err)
	}
	defer conn.Close()

	if err := Upgrade(conn, ":memory:", TargetSchemaVersion); err != nil {
		t.Fatalf("First Upgrade failed: %v", err)
	}
	if err := Upgrade(conn, ":memory:", TargetSchemaVersion); err != nil {
		t.Fatalf("Second Upgrade on current database should be a no-op, got: %v", err)
	}
}

func TestUpgrade_NewerDatabaseRejected(t *testing.T) {
	conn, err := Open(":memory:", true, "NORMAL")
	if err != nil {
		t.Fatalf("Open failed for in-memory DB: %v", err)
	}
	defer conn.Close()

	if err := InitializeSchema(conn, TargetSchemaVersion+1); err != nil {
		t.Fatalf("InitializeSchema failed: %v", err)
	}

	if err := Upgrade(conn, ":memory:", TargetSchemaVersion); err == nil {
		t.Errorf("Expected Upgrade to reject a database newer than the application, got nil error")
	}
}

func TestOpen_InvalidSyncPragma(t *testing.T) {
	if _, err := Open(":memory:", false, "BOGUS"); err == nil {
		t.Errorf("Expected error for invalid sync pragma, got nil")
	}
}

func TestOpen_ForeignKeysOnEveryPooledConnection(t *testing.T) {
	conn, err := Open(":memory:", true, "NORMAL")
	if err != nil {
		t.Fatalf("Open failed for in-memory DB: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()

	// Hold two connections at once so the pool has to hand out distinct ones.
	first, err := conn.Conn(ctx)
	if err != nil {
		t.Fatalf("Checking out first connection failed: %v", err)
	}
	defer first.Close()
	second, err := conn.Conn(ctx)
	if err != nil {
		t.Fatalf("Checking out second connection failed: %v", err)
	}
	defer second.Close()

	for i, c := range []*sql.Conn{first, second} {
		var enabled int
		if err := c.QueryRowContext(ctx, "PRAGMA foreign_keys;").Scan(&enabled); err != nil {
			t.Fatalf("Querying foreign_keys pragma on connection %d failed: %v", i, err)
		}
		if enabled != 1 {
			t.Errorf("Connection %d has foreign_keys=%d, expected 1", i, enabled)
		}
	}
}

func TestLevelCheckConstraints(t *testing.T) {
	conn, err := Open(":memory:", true, "NORMAL")
	if err != nil {
		t.Fatalf("Open failed for in-memory DB: %v", err)
	}
	defer conn.Close()

	if err := Upgrade(conn, ":memory:", TargetSchemaVersion); err != nil {
		t.Fatalf("Upgrade failed: %v", err)
	}

	_, err = conn.Exec(`INSERT INTO dream_entries (entry_date, lucidity_level) VALUES ('2026-01-01', 9)`)
	if err == nil {
		t.Errorf("Expected CHECK constraint violation for lucidity_level=9, got nil error")
	}
}
