// Package transcribe turns recorded audio into dream text. On-device
// speech recognition happens in the mobile shell; this package defines the
// boundary the rest of the pipeline depends on, plus a stub for development
// and tests.
package transcribe

import "context"

// Result is one transcription with the recognizer's confidence.
type Result struct {
	Text       string
	Confidence float64
}

// Transcriber converts one audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (Result, error)
}

// Stub returns a fixed transcript for any input. Useful wherever a real
// recognizer is unavailable.
type Stub struct {
	Text       string
	Confidence float64
	Err        error
}

func (s Stub) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	if s.Err != nil {
		return Result{}, s.Err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	confidence := s.Confidence
	if confidence == 0 {
		confidence = 0.9
	}
	return Result{Text: s.Text, Confidence: confidence}, nil
}
