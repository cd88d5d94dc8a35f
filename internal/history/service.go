package history

import (
	"context"
	"fmt"
	"log"

	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/alerts"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/metrics"
)

// tokenBudget bounds the prompt cost of the history window.
const tokenBudget = 8000

type historyService struct {
	repo     Repo
	cache    Cache
	tokens   TokenCounter
	notifier alerts.Notifier
}

func NewService(repo Repo, cache Cache, tokens TokenCounter, notifier alerts.Notifier) Service {
	return &historyService{
		repo:     repo,
		cache:    cache,
		tokens:   tokens,
		notifier: notifier,
	}
}

// Append writes the turn to postgres and mirrors it into the redis window.
// A cache failure is reported but does not fail the turn.
func (s *historyService) Append(ctx context.Context, m Message) (Message, error) {
	if m.SessionID == "" || m.UserID == "" {
		return Message{}, fmt.Errorf("session_id and user_id required")
	}
	if m.Role != "user" && m.Role != "assistant" {
		return Message{}, fmt.Errorf("unknown role %q", m.Role)
	}

	id, err := s.repo.Create(ctx, m)
	if err != nil {
		s.notifier.Notify(ctx, "history", err,
			fmt.Sprintf("failed to persist %s message for session %s", m.Role, m.SessionID))
		return Message{}, err
	}
	m.ID = id

	if err := s.cache.PushMessage(ctx, m.SessionID, m); err != nil {
		log.Printf("[history] window push failed for %s: %v", m.SessionID, err)
	}
	return m, nil
}

// Window returns the turns the prompt can afford: redis window first,
// postgres backfill on a cold cache, then newest-backwards until the token
// budget is spent.
func (s *historyService) Window(ctx context.Context, sessionID string) ([]Message, error) {
	messages, err := s.cache.Window(ctx, sessionID)
	if err != nil {
		s.notifier.Notify(ctx, "history", err,
			fmt.Sprintf("window read failed for session %s, serving from postgres", sessionID))
		messages = nil
	}

	if len(messages) == 0 {
		messages, err = s.repo.BySession(ctx, sessionID, windowSize)
		if err != nil {
			return nil, err
		}
		if len(messages) > 0 {
			if err := s.cache.Fill(ctx, sessionID, messages); err != nil {
				log.Printf("[history] window refill failed for %s: %v", sessionID, err)
			}
		}
	}

	return s.fit(messages), nil
}

// fit keeps the newest messages whose summed token count stays inside the
// budget, preserving chronological order.
func (s *historyService) fit(messages []Message) []Message {
	total := 0
	start := len(messages)
	for i := len(messages) - 1; i >= 0; i-- {
		tokens := s.tokens.Count(messages[i].Content)
		if total+tokens > tokenBudget {
			break
		}
		total += tokens
		start = i
	}
	metrics.RecordHistoryWindowTokens(total)
	return messages[start:]
}

func (s *historyService) Transcript(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session_id required")
	}
	return s.repo.BySession(ctx, sessionID, limit)
}

// AttachAudio records the spoken clip on an already stored turn. The cached
// window copy is left alone, prompts do not read audio URLs.
func (s *historyService) AttachAudio(ctx context.Context, id int64, url string) error {
	return s.repo.SetAudioURL(ctx, id, url)
}

func (s *historyService) SetLastAgent(ctx context.Context, sessionID, agent string) error {
	return s.cache.SetLastAgent(ctx, sessionID, agent)
}

func (s *historyService) LastAgent(ctx context.Context, sessionID string) (string, error) {
	return s.cache.LastAgent(ctx, sessionID)
}

// ClearSession drops both the durable transcript and the hot window.
func (s *historyService) ClearSession(ctx context.Context, sessionID string) error {
	if err := s.repo.DeleteBySession(ctx, sessionID); err != nil {
		return err
	}
	if err := s.cache.Clear(ctx, sessionID); err != nil {
		log.Printf("[history] window clear failed for %s: %v", sessionID, err)
	}
	return nil
}
