package imagegen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGenerateSuccess(t *testing.T) {
	var received Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/generate" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("Bad request payload: %v", err)
		}
		json.NewEncoder(w).Encode(Response{
			ImageURL:       "https://img.example/dream.png",
			RevisedPrompt:  "a revised prompt",
			CostEstimate:   0.04,
			GenerationTime: 7.5,
		})
	}))
	defer server.Close()

	client := New(server.URL, 0)
	resp, err := client.Generate(context.Background(), Request{
		DreamPrompt: "A vivid dream visualization: flying",
		Style:       "ethereal",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if resp.ImageURL != "https://img.example/dream.png" {
		t.Errorf("Unexpected image URL: %s", resp.ImageURL)
	}
	if resp.CostEstimate != 0.04 {
		t.Errorf("Unexpected cost estimate: %f", resp.CostEstimate)
	}
	if received.Quality != "standard" {
		t.Errorf("Expected quality to default to standard, got %q", received.Quality)
	}
	if received.Style != "ethereal" {
		t.Errorf("Style not forwarded: %q", received.Style)
	}
}

func TestGenerateAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "content policy violation"})
	}))
	defer server.Close()

	client := New(server.URL, 0)
	_, err := client.Generate(context.Background(), Request{DreamPrompt: "p"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "content policy violation" {
		t.Errorf("Expected server message in error, got %q", apiErr.Message)
	}
}

func TestGenerateTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := New(server.URL, 20*time.Millisecond)
	_, err := client.Generate(context.Background(), Request{DreamPrompt: "p"})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Expected ErrTimeout, got %v", err)
	}
}

func TestGenerateContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := New(server.URL, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Generate(ctx, Request{DreamPrompt: "p"})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Expected ErrTimeout for context deadline, got %v", err)
	}
}

func TestGenerateMissingPrompt(t *testing.T) {
	client := New("http://unused.example", 0)
	if _, err := client.Generate(context.Background(), Request{}); err == nil {
		t.Errorf("Expected error for empty dream_prompt")
	}
}

func TestGenerateMissingImageURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"cost_estimate": 0.04})
	}))
	defer server.Close()

	client := New(server.URL, 0)
	if _, err := client.Generate(context.Background(), Request{DreamPrompt: "p"}); err == nil {
		t.Errorf("Expected error for response without image_url")
	}
}
