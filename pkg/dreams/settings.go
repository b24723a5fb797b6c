package dreams

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
)

const (
	getSettingStatement = `
	SELECT setting_value, setting_type FROM core_settings
	WHERE setting_key = ?
	`

	setSettingStatement = `
	INSERT INTO core_settings (setting_key, setting_value, setting_type)
	VALUES (?, ?, ?)
	ON CONFLICT (setting_key)
	DO UPDATE SET setting_value = excluded.setting_value,
		setting_type = excluded.setting_type,
		updated_at = unixepoch()
	`
)

var ErrSettingNotFound = errors.New("setting not found")

// Privacy setting keys.
const (
	settingRetentionDays    = "privacy.retention_days"
	settingAnalyticsEnabled = "privacy.analytics_enabled"
	settingAutoDeleteAudio  = "privacy.auto_delete_audio"
)

// PrivacySettings are the user-facing privacy knobs, stored as individual
// rows in core_settings.
type PrivacySettings struct {
	RetentionDays    int  `json:"retention_days"`
	AnalyticsEnabled bool `json:"analytics_enabled"`
	AutoDeleteAudio  bool `json:"auto_delete_audio"`
}

// DefaultPrivacySettings returns the values used until the user changes them.
func DefaultPrivacySettings() PrivacySettings {
	return PrivacySettings{
		RetentionDays:    DefaultRetentionDays,
		AnalyticsEnabled: false,
		AutoDeleteAudio:  true,
	}
}

func GetSetting(ctx context.Context, db *sql.DB, key string) (string, error) {
	var value string
	var settingType string
	err := db.QueryRowContext(ctx, getSettingStatement, key).Scan(&value, &settingType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrSettingNotFound
		}
		return "", err
	}
	return value, nil
}

func SetSetting(ctx context.Context, db *sql.DB, key, value, settingType string) error {
	if key == "" {
		return &ValidationError{Field: "setting_key", Reason: "must not be empty"}
	}
	if settingType == "" {
		settingType = "string"
	}
	_, err := db.ExecContext(ctx, setSettingStatement, key, value, settingType)
	return err
}

// GetPrivacySettings reads the privacy knobs, falling back to defaults for
// any key never written.
func GetPrivacySettings(ctx context.Context, db *sql.DB) (PrivacySettings, error) {
	settings := DefaultPrivacySettings()

	if raw, err := GetSetting(ctx, db, settingRetentionDays); err == nil {
		if days, convErr := strconv.Atoi(raw); convErr == nil && days > 0 {
			settings.RetentionDays = days
		}
	} else if !errors.Is(err, ErrSettingNotFound) {
		return settings, err
	}

	if raw, err := GetSetting(ctx, db, settingAnalyticsEnabled); err == nil {
		settings.AnalyticsEnabled = raw == "true"
	} else if !errors.Is(err, ErrSettingNotFound) {
		return settings, err
	}

	if raw, err := GetSetting(ctx, db, settingAutoDeleteAudio); err == nil {
		settings.AutoDeleteAudio = raw == "true"
	} else if !errors.Is(err, ErrSettingNotFound) {
		return settings, err
	}

	return settings, nil
}

// SetPrivacySettings writes all privacy knobs.
func SetPrivacySettings(ctx context.Context, db *sql.DB, settings PrivacySettings) error {
	if settings.RetentionDays <= 0 {
		return &ValidationError{Field: "retention_days", Reason: "must be positive"}
	}

	if err := SetSetting(ctx, db, settingRetentionDays, strconv.Itoa(settings.RetentionDays), "number"); err != nil {
		return err
	}
	if err := SetSetting(ctx, db, settingAnalyticsEnabled, strconv.FormatBool(settings.AnalyticsEnabled), "boolean"); err != nil {
		return err
	}
	return SetSetting(ctx, db, settingAutoDeleteAudio, strconv.FormatBool(settings.AutoDeleteAudio), "boolean")
}
