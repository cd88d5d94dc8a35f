package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	created    []Memory
	searched   []string
	listed     int
	searchHits []Memory
	listHits   []Memory
}

func (f *fakeRepo) Create(_ context.Context, m Memory) (string, error) {
	f.created = append(f.created, m)
	return "mem-1", nil
}

func (f *fakeRepo) Search(_ context.Context, _, query string, _ int) ([]Memory, error) {
	f.searched = append(f.searched, query)
	return f.searchHits, nil
}

func (f *fakeRepo) List(_ context.Context, _ string, _ int) ([]Memory, error) {
	f.listed++
	return f.listHits, nil
}

func (f *fakeRepo) Delete(_ context.Context, _, _ string) error { return nil }

func TestAddValidates(t *testing.T) {
	svc := NewService(&fakeRepo{})

	_, err := svc.Add(context.Background(), "", "likes tea", nil)
	assert.Error(t, err)

	_, err = svc.Add(context.Background(), "hamna", "   ", nil)
	assert.Error(t, err)

	m, err := svc.Add(context.Background(), "hamna", "  prefers morning flights  ", map[string]string{"source": "chat"})
	require.NoError(t, err)
	assert.Equal(t, "mem-1", m.ID)
	assert.Equal(t, "prefers morning flights", m.Content)
}

func TestRecallRoutesByQuery(t *testing.T) {
	repo := &fakeRepo{
		searchHits: []Memory{{ID: "a", Content: "prefers morning flights"}},
		listHits:   []Memory{{ID: "b", Content: "vegetarian"}},
	}
	svc := NewService(repo)

	// blank query lists by recency
	got, err := svc.Recall(context.Background(), "hamna", "   ", 0)
	require.NoError(t, err)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, 1, repo.listed)
	assert.Empty(t, repo.searched)

	// a real query hits full-text search
	got, err = svc.Recall(context.Background(), "hamna", "flights to dubai", 5)
	require.NoError(t, err)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, []string{"flights to dubai"}, repo.searched)
}

func TestDeleteValidates(t *testing.T) {
	svc := NewService(&fakeRepo{})

	assert.Error(t, svc.Delete(context.Background(), "", "id"))
	assert.Error(t, svc.Delete(context.Background(), "user", ""))
	assert.NoError(t, svc.Delete(context.Background(), "user", "id"))
}
