package memory

import (
	"context"
	"fmt"
	"strings"
)

const defaultRecallLimit = 10

type memoryService struct {
	repo Repo
}

func NewService(repo Repo) Service {
	return &memoryService{repo: repo}
}

func (s *memoryService) Add(ctx context.Context, userID, content string, metadata map[string]string) (Memory, error) {
	content = strings.TrimSpace(content)
	if userID == "" {
		return Memory{}, fmt.Errorf("user_id required")
	}
	if content == "" {
		return Memory{}, fmt.Errorf("content required")
	}

	m := Memory{UserID: userID, Content: content, Metadata: metadata}
	id, err := s.repo.Create(ctx, m)
	if err != nil {
		return Memory{}, err
	}
	m.ID = id
	return m, nil
}

func (s *memoryService) Recall(ctx context.Context, userID, query string, limit int) ([]Memory, error) {
	if limit <= 0 {
		limit = defaultRecallLimit
	}
	if strings.TrimSpace(query) == "" {
		return s.repo.List(ctx, userID, limit)
	}
	return s.repo.Search(ctx, userID, query, limit)
}

func (s *memoryService) List(ctx context.Context, userID string, limit int) ([]Memory, error) {
	if limit <= 0 {
		limit = defaultRecallLimit
	}
	return s.repo.List(ctx, userID, limit)
}

func (s *memoryService) Delete(ctx context.Context, userID, id string) error {
	if userID == "" || id == "" {
		return fmt.Errorf("user_id and id required")
	}
	return s.repo.Delete(ctx, userID, id)
}
