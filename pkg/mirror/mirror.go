// Package mirror optionally copies entry metadata to a remote backup
// endpoint. The journal is local-first: mirroring is fire-and-forget and a
// mirror failure never fails the local write.
package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// EntryRecord is the subset of an entry that may leave the device when the
// user has configured a mirror. Audio paths and raw blobs never do.
type EntryRecord struct {
	EntryID            int64  `json:"entry_id"`
	UserID             string `json:"user_id"`
	EntryDate          string `json:"entry_date"`
	Title              string `json:"title"`
	Transcription      string `json:"transcription"`
	LucidityLevel      int    `json:"lucidity_level"`
	VividnessLevel     int    `json:"vividness_level"`
	EmotionalIntensity int    `json:"emotional_intensity"`
	ImageURL           string `json:"image_url,omitempty"`
}

// Mirror receives entry writes and deletes.
type Mirror interface {
	UpsertEntry(ctx context.Context, record EntryRecord) error
	DeleteEntry(ctx context.Context, entryID int64) error
}

// New returns an HTTP mirror when both URL and key are configured, a no-op
// otherwise.
func New(url, apiKey string) Mirror {
	if url == "" || apiKey == "" {
		return Disabled{}
	}
	return &HTTPMirror{
		URL:        url,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Disabled drops every call. Used when no mirror is configured.
type Disabled struct{}

func (Disabled) UpsertEntry(ctx context.Context, record EntryRecord) error { return nil }
func (Disabled) DeleteEntry(ctx context.Context, entryID int64) error      { return nil }

// HTTPMirror posts records to a REST endpoint authenticated with an apikey
// header.
type HTTPMirror struct {
	URL        string
	APIKey     string
	HTTPClient *http.Client
}

func (m *HTTPMirror) UpsertEntry(ctx context.Context, record EntryRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.URL+"/entries", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", m.APIKey)

	return m.do(req)
}

func (m *HTTPMirror) DeleteEntry(ctx context.Context, entryID int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/entries/%d", m.URL, entryID), nil)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", m.APIKey)

	return m.do(req)
}

func (m *HTTPMirror) do(req *http.Request) error {
	resp, err := m.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mirror endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// Background fires a mirror call without blocking the local write. Errors
// are logged and dropped.
func Background(m Mirror, op string, call func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := call(ctx); err != nil {
			slog.Warn("mirror call failed", "op", op, "error", err)
		}
	}()
}
