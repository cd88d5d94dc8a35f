package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/alerts"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/metrics"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/ports"
)

// === unified service (both STT and TTS) ===

type service struct {
	stt      Transcriber
	tts      Synthesizer
	storage  ports.S3Service
	notifier alerts.Notifier
}

func NewService(stt Transcriber, tts Synthesizer, storage ports.S3Service, notifier alerts.Notifier) Service {
	return &service{
		stt:      stt,
		tts:      tts,
		storage:  storage,
		notifier: notifier,
	}
}

func (s *service) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	text, err := s.stt.Transcribe(ctx, audio, filename)
	metrics.IncTranscription(err)
	if err != nil {
		_ = s.notifier.Notify(ctx, "speech", err, "transcription failed, file "+filename)
		return "", fmt.Errorf("transcribe: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}

func (s *service) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("nothing to synthesize")
	}

	audio, err := s.tts.Synthesize(ctx, text)
	metrics.IncSynthesis(err)
	if err != nil {
		_ = s.notifier.Notify(ctx, "speech", err, "synthesis failed")
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	return audio, nil
}

// Speak renders text to mp3 and uploads it under the session's prefix.
func (s *service) Speak(ctx context.Context, sessionID, text string) ([]byte, string, error) {
	audio, err := s.Synthesize(ctx, text)
	if err != nil {
		return nil, "", err
	}

	filename := uuid.NewString() + ".mp3"
	url, err := s.storage.SaveAudio(ctx, sessionID, bytes.NewReader(audio), filename, "audio/mpeg")
	if err != nil {
		_ = s.notifier.Notify(ctx, "speech", err, "audio upload failed, session "+sessionID)
		return nil, "", fmt.Errorf("store audio: %w", err)
	}
	return audio, url, nil
}
