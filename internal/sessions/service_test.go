package sessions

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/memory"
)

type fakeRepo struct {
	created   []Session
	ended     []string
	idleEnded []string
}

func (f *fakeRepo) Create(_ context.Context, s Session) error {
	f.created = append(f.created, s)
	return nil
}

func (f *fakeRepo) Get(_ context.Context, id string) (Session, error) {
	return Session{ID: id}, nil
}

func (f *fakeRepo) Touch(_ context.Context, _ string, _ time.Time) error { return nil }

func (f *fakeRepo) End(_ context.Context, id string, _ time.Time) error {
	f.ended = append(f.ended, id)
	return nil
}

func (f *fakeRepo) EndIdleBefore(_ context.Context, _ time.Time) ([]string, error) {
	return f.idleEnded, nil
}

type fakeMemories struct {
	added []string
}

func (f *fakeMemories) Add(_ context.Context, _, content string, _ map[string]string) (memory.Memory, error) {
	f.added = append(f.added, content)
	return memory.Memory{ID: "m-1", Content: content}, nil
}

func (f *fakeMemories) Recall(_ context.Context, _, _ string, _ int) ([]memory.Memory, error) {
	return nil, nil
}

func (f *fakeMemories) List(_ context.Context, _ string, _ int) ([]memory.Memory, error) {
	return nil, nil
}

func (f *fakeMemories) Delete(_ context.Context, _, _ string) error { return nil }

type fakeWindows struct {
	cleared []string
}

func (f *fakeWindows) Clear(_ context.Context, sessionID string) error {
	f.cleared = append(f.cleared, sessionID)
	return nil
}

func newTestService(t *testing.T) (Service, *fakeRepo, *fakeMemories, *fakeWindows) {
	t.Helper()
	t.Setenv("AUTH_SECRET", "test-secret-please-rotate")
	repo := &fakeRepo{}
	mems := &fakeMemories{}
	windows := &fakeWindows{}
	return NewService(repo, mems, windows), repo, mems, windows
}

func TestStartCreatesSessionAndToken(t *testing.T) {
	svc, repo, mems, _ := newTestService(t)

	sess, token, err := svc.Start(context.Background(), "Demo User")
	require.NoError(t, err)

	assert.Equal(t, "demo-user", sess.UserID)
	assert.True(t, strings.HasPrefix(sess.ID, "session-"), "got %q", sess.ID)
	assert.NotEmpty(t, token)

	require.Len(t, repo.created, 1)
	require.Len(t, mems.added, 1)
	assert.Equal(t, "Session started for Demo User", mems.added[0])

	// the token verifies back to the same identity
	id, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, id.UserID)
	assert.Equal(t, sess.ID, id.SessionID)
}

func TestStartRejectsEmptyName(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, _, err := svc.Start(context.Background(), "   !!! ")
	assert.Error(t, err)
}

func TestStartDistinctSessionsPerInit(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	a, _, err := svc.Start(context.Background(), "Demo User")
	require.NoError(t, err)
	b, _, err := svc.Start(context.Background(), "Demo User")
	require.NoError(t, err)

	assert.Equal(t, a.UserID, b.UserID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestVerifyRejectsForeignToken(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Verify("not-a-token")
	assert.Error(t, err)

	// token signed with another secret
	other, err := issueToken([]byte("other-secret"), "demo-user", "session-x")
	require.NoError(t, err)
	_, err = svc.Verify(other)
	assert.Error(t, err)
}

func TestEndClearsWindow(t *testing.T) {
	svc, repo, _, windows := newTestService(t)

	require.NoError(t, svc.End(context.Background(), "session-1"))
	assert.Equal(t, []string{"session-1"}, repo.ended)
	assert.Equal(t, []string{"session-1"}, windows.cleared)
}

func TestEndIdleClearsEveryWindow(t *testing.T) {
	t.Setenv("AUTH_SECRET", "test-secret-please-rotate")
	repo := &fakeRepo{idleEnded: []string{"session-1", "session-2"}}
	windows := &fakeWindows{}
	svc := NewService(repo, &fakeMemories{}, windows)

	n, err := svc.EndIdle(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"session-1", "session-2"}, windows.cleared)
}
