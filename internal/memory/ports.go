package memory

import (
	"context"
	"time"
)

// Memory is one long-term fact about a user, kept across sessions.
type Memory struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Postgres repository
type Repo interface {
	Create(ctx context.Context, m Memory) (string, error)
	Search(ctx context.Context, userID, query string, limit int) ([]Memory, error)
	List(ctx context.Context, userID string, limit int) ([]Memory, error)
	Delete(ctx context.Context, userID, id string) error
}

type Service interface {
	Add(ctx context.Context, userID, content string, metadata map[string]string) (Memory, error)
	// Recall ranks by relevance when query is set, by recency otherwise.
	Recall(ctx context.Context, userID, query string, limit int) ([]Memory, error)
	List(ctx context.Context, userID string, limit int) ([]Memory, error)
	Delete(ctx context.Context, userID, id string) error
}
