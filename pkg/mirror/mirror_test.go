package mirror

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewDisabledWithoutCredentials(t *testing.T) {
	if _, ok := New("", "").(Disabled); !ok {
		t.Errorf("Expected Disabled mirror without credentials")
	}
	if _, ok := New("https://backup.example", "").(Disabled); !ok {
		t.Errorf("Expected Disabled mirror without API key")
	}
	if _, ok := New("https://backup.example", "key").(*HTTPMirror); !ok {
		t.Errorf("Expected HTTPMirror with full credentials")
	}
}

func TestHTTPMirrorUpsert(t *testing.T) {
	var gotKey string
	var gotRecord EntryRecord
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/entries" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotKey = r.Header.Get("apikey")
		if err := json.NewDecoder(r.Body).Decode(&gotRecord); err != nil {
			t.Errorf("Bad payload: %v", err)
		}
	}))
	defer server.Close()

	m := New(server.URL, "secret").(*HTTPMirror)
	err := m.UpsertEntry(context.Background(), EntryRecord{EntryID: 7, Title: "Mirrored dream"})
	if err != nil {
		t.Fatalf("UpsertEntry failed: %v", err)
	}
	if gotKey != "secret" {
		t.Errorf("Expected apikey header, got %q", gotKey)
	}
	if gotRecord.EntryID != 7 || gotRecord.Title != "Mirrored dream" {
		t.Errorf("Unexpected record: %+v", gotRecord)
	}
}

func TestHTTPMirrorDelete(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("Unexpected method %s", r.Method)
		}
		gotPath = r.URL.Path
	}))
	defer server.Close()

	m := New(server.URL, "secret").(*HTTPMirror)
	if err := m.DeleteEntry(context.Background(), 42); err != nil {
		t.Fatalf("DeleteEntry failed: %v", err)
	}
	if gotPath != "/entries/42" {
		t.Errorf("Unexpected path %q", gotPath)
	}
}

func TestHTTPMirrorErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	m := New(server.URL, "secret").(*HTTPMirror)
	if err := m.UpsertEntry(context.Background(), EntryRecord{EntryID: 1}); err == nil {
		t.Errorf("Expected error for 503 response")
	}
}
