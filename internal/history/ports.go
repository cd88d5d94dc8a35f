package history

import (
	"context"
	"time"
)

// Message is one turn of a conversation. Assistant turns carry the agent
// that produced them, the spoken summary and, for voice turns, the audio URL.
type Message struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"` // user | assistant
	Agent     string    `json:"agent,omitempty"`
	Content   string    `json:"content"`
	Summary   string    `json:"summary,omitempty"`
	AudioURL  string    `json:"audio_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Postgres repository, the durable transcript.
type Repo interface {
	Create(ctx context.Context, m Message) (int64, error)
	// BySession returns the newest messages in ascending order. limit <= 0
	// means the whole transcript.
	BySession(ctx context.Context, sessionID string, limit int) ([]Message, error)
	SetAudioURL(ctx context.Context, id int64, url string) error
	DeleteBySession(ctx context.Context, sessionID string) error
}

// Redis cache, the hot window the model prompt is built from.
type Cache interface {
	PushMessage(ctx context.Context, sessionID string, m Message) error
	Window(ctx context.Context, sessionID string) ([]Message, error)
	Fill(ctx context.Context, sessionID string, messages []Message) error
	SetLastAgent(ctx context.Context, sessionID, agent string) error
	LastAgent(ctx context.Context, sessionID string) (string, error)
	Clear(ctx context.Context, sessionID string) error
}

// TokenCounter measures prompt cost. Production uses tiktoken, tests fake it.
type TokenCounter interface {
	Count(text string) int
}

type Service interface {
	Append(ctx context.Context, m Message) (Message, error)
	// Window returns the recent turns that fit the model's token budget,
	// oldest first.
	Window(ctx context.Context, sessionID string) ([]Message, error)
	Transcript(ctx context.Context, sessionID string, limit int) ([]Message, error)
	AttachAudio(ctx context.Context, id int64, url string) error
	SetLastAgent(ctx context.Context, sessionID, agent string) error
	LastAgent(ctx context.Context, sessionID string) (string, error)
	ClearSession(ctx context.Context, sessionID string) error
}
