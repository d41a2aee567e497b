// Package speech turns recorded complaints into text.
package speech

import (
	"context"

	"civicecho-be/logger"
)

// SampleTranscript is returned while no speech-to-text backend is configured.
const SampleTranscript = "This is a sample transcription of your recorded complaint about local civic issues."

// Transcriber converts an audio recording into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, languageCode string) (string, error)
}

// MockTranscriber always returns SampleTranscript.
type MockTranscriber struct {
	log logger.Logger
}

// NewMockTranscriber returns the canned transcriber.
func NewMockTranscriber(log logger.Logger) *MockTranscriber {
	if log == nil {
		log = logger.NewNop()
	}
	return &MockTranscriber{log: log}
}

// Transcribe implements Transcriber.
func (m *MockTranscriber) Transcribe(ctx context.Context, audio []byte, languageCode string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if languageCode == "" {
		languageCode = "en-US"
	}
	m.log.Debug("Transcribing audio (mock mode)",
		logger.Int("bytes", len(audio)),
		logger.String("language", languageCode),
	)
	return SampleTranscript, nil
}
