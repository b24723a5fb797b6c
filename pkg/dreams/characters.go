package dreams

import (
	"context"
	"database/sql"
	"errors"
)

const (
	createCharacterStatement = `
	INSERT INTO user_characters (user_id, name, description, character_type, image_url, relationship)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	getCharacterStatement = `
	SELECT id, user_id, name, description, character_type, image_url, relationship,
		usage_count, is_active, created_at, updated_at
	FROM user_characters
	WHERE id = ?
	`

	listCharactersStatement = `
	SELECT id, user_id, name, description, character_type, image_url, relationship,
		usage_count, is_active, created_at, updated_at
	FROM user_characters
	WHERE user_id = ? AND (is_active = 1 OR ? = 0)
	ORDER BY usage_count DESC, name ASC
	`

	touchCharacterStatement = `
	UPDATE user_characters
	SET usage_count = usage_count + 1, updated_at = unixepoch()
	WHERE id = ?
	`

	deactivateCharacterStatement = `
	UPDATE user_characters
	SET is_active = 0, updated_at = unixepoch()
	WHERE id = ?
	`
)

// NewCharacter carries the fields accepted when saving a recurring figure.
type NewCharacter struct {
	UserID        string
	Name          string
	Description   string
	CharacterType string
	ImageURL      string
	Relationship  string
}

// SaveCharacter stores a recurring dream figure and reads it back.
func SaveCharacter(ctx context.Context, db *sql.DB, in NewCharacter) (Character, error) {
	if in.Name == "" {
		return Character{}, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if in.UserID == "" {
		in.UserID = DefaultUserID
	}
	if in.CharacterType == "" {
		in.CharacterType = "dream_figure"
	}

	res, err := db.ExecContext(
		ctx,
		createCharacterStatement,
		in.UserID,
		in.Name,
		in.Description,
		in.CharacterType,
		in.ImageURL,
		in.Relationship,
	)
	if err != nil {
		return Character{}, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Character{}, err
	}

	return GetCharacter(ctx, db, id)
}

func GetCharacter(ctx context.Context, db *sql.DB, id int64) (Character, error) {
	var c Character

	err := db.QueryRowContext(ctx, getCharacterStatement, id).Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&c.Description,
		&c.CharacterType,
		&c.ImageURL,
		&c.Relationship,
		&c.UsageCount,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Character{}, ErrCharacterNotFound
		}
		return Character{}, err
	}

	return c, nil
}

// ListCharacters returns a user's figures, most used first.
func ListCharacters(ctx context.Context, db *sql.DB, userID string, activeOnly bool) ([]Character, error) {
	if userID == "" {
		userID = DefaultUserID
	}

	rows, err := db.QueryContext(ctx, listCharactersStatement, userID, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	characters := []Character{}
	for rows.Next() {
		var c Character
		err := rows.Scan(
			&c.ID,
			&c.UserID,
			&c.Name,
			&c.Description,
			&c.CharacterType,
			&c.ImageURL,
			&c.Relationship,
			&c.UsageCount,
			&c.IsActive,
			&c.CreatedAt,
			&c.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		characters = append(characters, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return characters, nil
}

// TouchCharacter bumps a figure's usage counter when it appears in a dream.
func TouchCharacter(ctx context.Context, db *sql.DB, id int64) error {
	res, err := db.ExecContext(ctx, touchCharacterStatement, id)
	if err != nil {
		return err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCharacterNotFound
	}
	return nil
}

// DeactivateCharacter hides a figure without losing its history.
func DeactivateCharacter(ctx context.Context, db *sql.DB, id int64) error {
	res, err := db.ExecContext(ctx, deactivateCharacterStatement, id)
	if err != nil {
		return err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCharacterNotFound
	}
	return nil
}
