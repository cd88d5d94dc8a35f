package sessions

import (
	"context"
	"time"
)

type Session struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	DisplayName string     `json:"display_name"`
	CreatedAt   time.Time  `json:"created_at"`
	LastSeenAt  time.Time  `json:"last_seen_at"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
}

// Identity is what a verified token carries.
type Identity struct {
	UserID    string
	SessionID string
}

type Repo interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	Touch(ctx context.Context, id string, at time.Time) error
	End(ctx context.Context, id string, at time.Time) error
	// EndIdleBefore closes every open session not seen since the cutoff and
	// returns their ids.
	EndIdleBefore(ctx context.Context, cutoff time.Time) ([]string, error)
}

// WindowClearer drops a session's hot conversation window when it ends.
type WindowClearer interface {
	Clear(ctx context.Context, sessionID string) error
}

type Service interface {
	// Start opens a session for a display name and returns it with a signed
	// bearer token.
	Start(ctx context.Context, displayName string) (Session, string, error)
	Verify(token string) (Identity, error)
	Get(ctx context.Context, id string) (Session, error)
	Touch(ctx context.Context, id string)
	End(ctx context.Context, id string) error
	// EndIdle closes sessions idle longer than the ttl. Returns how many.
	EndIdle(ctx context.Context, idle time.Duration) (int, error)
}
