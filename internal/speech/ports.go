package speech

import (
	"context"
	"errors"
	"io"
)

// ErrNoSpeech is returned when the model produced an empty transcript.
var ErrNoSpeech = errors.New("no speech recognized in audio")

type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) // voice → text
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error) // text → voice
}

type Service interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
	Synthesize(ctx context.Context, text string) ([]byte, error)
	// Speak synthesizes text and stores the clip, returning both the mp3
	// bytes and the public URL.
	Speak(ctx context.Context, sessionID, text string) ([]byte, string, error)
}
