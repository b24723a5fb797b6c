// Package imagegen is the HTTP client for the external image generation
// API. The API wraps the actual provider; this client never talks to the
// provider directly and never sends anything beyond the prompt payload.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds one generation call end to end.
const DefaultTimeout = 60 * time.Second

// ErrTimeout reports that the generation call exceeded its deadline. Callers
// distinguish it from other failures because the image may still have been
// produced and billed upstream.
var ErrTimeout = errors.New("image generation timed out")

// APIError is a non-2xx response from the generation API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("image generation API returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("image generation API returned %d", e.StatusCode)
}

// Request is one generation job.
type Request struct {
	DreamPrompt     string `json:"dream_prompt"`
	Style           string `json:"style"`
	Quality         string `json:"quality"`
	OriginalDream   string `json:"original_dream,omitempty"`
	AnalysisSummary string `json:"analysis_summary,omitempty"`
}

// Response is a resolved generation.
type Response struct {
	ImageURL       string  `json:"image_url"`
	EnhancedPrompt string  `json:"enhanced_prompt,omitempty"`
	RevisedPrompt  string  `json:"revised_prompt,omitempty"`
	CostEstimate   float64 `json:"cost_estimate"`
	GenerationTime float64 `json:"generation_time"`
}

// Client calls the generation API. The zero value is not usable; construct
// with New.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Generate submits one job and waits for it to resolve. A deadline or
// client timeout surfaces as ErrTimeout; any non-2xx status surfaces as
// *APIError with the server's error message when one was sent.
func (c *Client) Generate(ctx context.Context, req Request) (Response, error) {
	if req.DreamPrompt == "" {
		return Response{}, errors.New("dream_prompt is required")
	}
	if req.Quality == "" {
		req.Quality = "standard"
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return Response{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/generate", bytes.NewReader(payload))
	if err != nil {
		return Response{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isClientTimeout(err) {
			return Response{}, ErrTimeout
		}
		return Response{}, fmt.Errorf("calling image generation API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Response{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var serverError struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &serverError) == nil {
			apiErr.Message = serverError.Error
		}
		return Response{}, apiErr
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return Response{}, fmt.Errorf("parsing generation response: %w", err)
	}
	if out.ImageURL == "" {
		return Response{}, errors.New("generation response missing image_url")
	}

	return out, nil
}

func isClientTimeout(err error) bool {
	var timeoutErr interface{ Timeout() bool }
	return errors.As(err, &timeoutErr) && timeoutErr.Timeout()
}
