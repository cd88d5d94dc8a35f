package sessions

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/memory"
)

type sessionService struct {
	repo     Repo
	memories memory.Service
	windows  WindowClearer
	secret   []byte
}

func NewService(repo Repo, memories memory.Service, windows WindowClearer) Service {
	secret := os.Getenv("AUTH_SECRET")
	if secret == "" {
		log.Fatal("AUTH_SECRET not set")
	}
	return &sessionService{
		repo:     repo,
		memories: memories,
		windows:  windows,
		secret:   []byte(secret),
	}
}

func (s *sessionService) Start(ctx context.Context, displayName string) (Session, string, error) {
	userID := slugify(displayName)
	if userID == "" {
		return Session{}, "", fmt.Errorf("display name required")
	}

	sess := Session{
		ID:          "session-" + uuid.NewString(),
		UserID:      userID,
		DisplayName: displayName,
		CreatedAt:   time.Now(),
	}
	sess.LastSeenAt = sess.CreatedAt

	if err := s.repo.Create(ctx, sess); err != nil {
		return Session{}, "", err
	}

	// greet the long-term memory so returning users are recognized
	if _, err := s.memories.Add(ctx, userID,
		fmt.Sprintf("Session started for %s", displayName),
		map[string]string{"session_id": sess.ID},
	); err != nil {
		log.Printf("[sessions] session-start memory failed for %s: %v", userID, err)
	}

	token, err := issueToken(s.secret, userID, sess.ID)
	if err != nil {
		return Session{}, "", fmt.Errorf("sign session token: %w", err)
	}
	return sess, token, nil
}

func (s *sessionService) Verify(token string) (Identity, error) {
	return parseToken(s.secret, token)
}

func (s *sessionService) Get(ctx context.Context, id string) (Session, error) {
	return s.repo.Get(ctx, id)
}

// Touch is fire-and-forget: a failed bump only delays idle cleanup.
func (s *sessionService) Touch(ctx context.Context, id string) {
	if err := s.repo.Touch(ctx, id, time.Now()); err != nil {
		log.Printf("[sessions] touch failed for %s: %v", id, err)
	}
}

func (s *sessionService) End(ctx context.Context, id string) error {
	if err := s.repo.End(ctx, id, time.Now()); err != nil {
		return err
	}
	if err := s.windows.Clear(ctx, id); err != nil {
		log.Printf("[sessions] window clear failed for %s: %v", id, err)
	}
	return nil
}

func (s *sessionService) EndIdle(ctx context.Context, idle time.Duration) (int, error) {
	ids, err := s.repo.EndIdleBefore(ctx, time.Now().Add(-idle))
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		if err := s.windows.Clear(ctx, id); err != nil {
			log.Printf("[sessions] window clear failed for %s: %v", id, err)
		}
	}
	return len(ids), nil
}
