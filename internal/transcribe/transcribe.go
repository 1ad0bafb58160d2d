// Package transcribe converts audio artifacts into plain text.
package transcribe

import (
	"context"
	"fmt"

	"github.com/predictcheck/hindsight/internal/config"
	"github.com/predictcheck/hindsight/internal/models"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// Transcriber is a pluggable speech-to-text backend.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// WhisperTranscriber implements Transcriber using the OpenAI Whisper API.
type WhisperTranscriber struct {
	client *openai.Client
	model  string
}

// NewWhisperTranscriber creates a Whisper-backed transcriber.
func NewWhisperTranscriber(apiKey string, cfg *config.TranscribeConfig) (*WhisperTranscriber, error) {
	if apiKey == "" {
		return nil, models.NewConfigurationError("llm.api_key", "OpenAI API key is required for transcription")
	}

	model := cfg.Model
	if model == "" {
		model = openai.Whisper1
	}

	return &WhisperTranscriber{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

// Transcribe sends the audio file to the Whisper API and returns the text.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	log.Info().Str("file", audioPath).Str("model", t.model).Msg("Transcribing audio")

	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: audioPath,
	})
	if err != nil {
		return "", &models.UpstreamServiceError{Service: "whisper", Err: fmt.Errorf("transcription failed: %w", err)}
	}

	return resp.Text, nil
}
