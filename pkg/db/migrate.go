package db

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
)

const (
	// TargetSchemaVersion is the highest schema version this version of the
	// code supports for the dreamsdb component.
	TargetSchemaVersion int64 = 1
	// DreamsDBComponent is the name for the main dream journal database component.
	DreamsDBComponent = "dreamsdb"
)

// GetComponentSchemaVersion retrieves the schema version for a given component.
// Returns 0 if the component is not found, the versions table is uninitialized,
// or the table doesn't exist.
func GetComponentSchemaVersion(conn *sql.DB, componentName string) (int64, error) {
	query := `SELECT version FROM dreamweave_versions WHERE component = ?;`
	row := conn.QueryRow(query, componentName)

	var version int64
	err := row.Scan(&version)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		if strings.Contains(err.Error(), "no such table") && strings.Contains(err.Error(), "dreamweave_versions") {
			// The versions table itself doesn't exist yet, so definitely version 0.
			return 0, nil
		}
		return 0, fmt.Errorf("failed to scan version for component '%s': %w", componentName, err)
	}
	return version, nil
}

// InitializeSchema creates the database schema (all tables for dreamsdb)
// and sets the specified schema version for the dreamsdb component.
func InitializeSchema(conn *sql.DB, schemaVersionToSet int64) error {
	_, err := conn.Exec(SchemaV1)
	if err != nil {
		return fmt.Errorf("failed to execute schema v1 SQL: %w", err)
	}

	insertVersionSQL := `
INSERT INTO dreamweave_versions (component, version) VALUES (?, ?)
ON CONFLICT(component) DO UPDATE SET version = excluded.version, created_at = unixepoch();`

	_, err = conn.Exec(insertVersionSQL, DreamsDBComponent, schemaVersionToSet)
	if err != nil {
		return fmt.Errorf("failed to insert/update version for component %s to %d: %w", DreamsDBComponent, schemaVersionToSet, err)
	}

	fmt.Fprintf(os.Stderr, "Component %s initialized/updated to schema version %d\n", DreamsDBComponent, schemaVersionToSet)
	return nil
}

// Upgrade applies necessary migrations to bring the database, represented by
// the *sql.DB connection, for the DreamsDBComponent to appTargetSchemaVersion.
// dbIdentifierForLog is used for logging purposes only.
func Upgrade(conn *sql.DB, dbIdentifierForLog string, appTargetSchemaVersion int64) error {
	currentDBVersion, err := GetComponentSchemaVersion(conn, DreamsDBComponent)
	if err != nil {
		return err
	}

	switch {
	case currentDBVersion == 0:
		fmt.Fprintf(os.Stderr, "Component %s in database '%s' appears to be uninitialized or at version 0. Initializing to schema version %d...\n", DreamsDBComponent, dbIdentifierForLog, appTargetSchemaVersion)
		if err := InitializeSchema(conn, appTargetSchemaVersion); err != nil {
			return fmt.Errorf("failed to initialize component %s in database '%s': %w", DreamsDBComponent, dbIdentifierForLog, err)
		}
		return nil
	case currentDBVersion == appTargetSchemaVersion:
		return nil
	case currentDBVersion < appTargetSchemaVersion:
		return fmt.Errorf("component %s in database '%s' has schema version %d, which is older than application's target schema version %d. Automatic migration from this older version is not yet supported", DreamsDBComponent, dbIdentifierForLog, currentDBVersion, appTargetSchemaVersion)
	default:
		return fmt.Errorf("component %s in database '%s' has schema version %d, which is newer than application's target schema version %d. Please upgrade the application", DreamsDBComponent, dbIdentifierForLog, currentDBVersion, appTargetSchemaVersion)
	}
}
