package delivery

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/agents"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/ai"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/avatar"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/history"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/memory"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/rag"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/sessions"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/speech"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/status"
)

const testToken = "test-token"

// --- sessions ---

type fakeSessions struct {
	mu       sync.Mutex
	session  sessions.Session
	identity sessions.Identity
	startErr error
	endErr   error
	touched  []string
	ended    []string
}

func (f *fakeSessions) Start(_ context.Context, displayName string) (sessions.Session, string, error) {
	if f.startErr != nil {
		return sessions.Session{}, "", f.startErr
	}
	s := f.session
	s.DisplayName = displayName
	return s, testToken, nil
}

func (f *fakeSessions) Verify(token string) (sessions.Identity, error) {
	if token != testToken {
		return sessions.Identity{}, fmt.Errorf("bad token")
	}
	return f.identity, nil
}

func (f *fakeSessions) Get(_ context.Context, id string) (sessions.Session, error) {
	if id != f.session.ID {
		return sessions.Session{}, sql.ErrNoRows
	}
	return f.session, nil
}

func (f *fakeSessions) Touch(_ context.Context, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched = append(f.touched, id)
}

func (f *fakeSessions) End(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.endErr != nil {
		return f.endErr
	}
	f.ended = append(f.ended, id)
	return nil
}

func (f *fakeSessions) EndIdle(context.Context, time.Duration) (int, error) { return 0, nil }

// --- ai ---

type fakeAI struct {
	mu         sync.Mutex
	resp       *ai.Response
	err        error
	events     []ai.Event
	gotUser    string
	gotSession string
	gotMessage string
	gotWindow  []history.Message
}

func (f *fakeAI) Respond(_ context.Context, userID, sessionID, message string, window []history.Message) (*ai.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotUser, f.gotSession, f.gotMessage, f.gotWindow = userID, sessionID, message, window
	return f.resp, f.err
}

func (f *fakeAI) RespondStream(_ context.Context, userID, sessionID, message string, window []history.Message, sink func(ai.Event)) (*ai.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotUser, f.gotSession, f.gotMessage, f.gotWindow = userID, sessionID, message, window
	if sink != nil {
		for _, ev := range f.events {
			sink(ev)
		}
	}
	return f.resp, f.err
}

func (f *fakeAI) Summarize(context.Context, string) (string, error) { return "", nil }

// --- speech ---

type fakeSpeechSvc struct {
	mu            sync.Mutex
	transcript    string
	transcribeErr error
	audio         []byte
	synthErr      error
	speakURL      string
	speakErr      error
	spoken        []string
}

func (f *fakeSpeechSvc) Transcribe(_ context.Context, _ io.Reader, _ string) (string, error) {
	if f.transcribeErr != nil {
		return "", f.transcribeErr
	}
	return f.transcript, nil
}

func (f *fakeSpeechSvc) Synthesize(_ context.Context, _ string) ([]byte, error) {
	if f.synthErr != nil {
		return nil, f.synthErr
	}
	return f.audio, nil
}

func (f *fakeSpeechSvc) Speak(_ context.Context, _, text string) ([]byte, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.speakErr != nil {
		return nil, "", f.speakErr
	}
	f.spoken = append(f.spoken, text)
	return f.audio, f.speakURL, nil
}

// --- history ---

type fakeHistorySvc struct {
	mu            sync.Mutex
	transcript    []history.Message
	transcriptErr error
	lastAgent     string
	attached      map[int64]string
}

func (f *fakeHistorySvc) Append(_ context.Context, m history.Message) (history.Message, error) {
	return m, nil
}

func (f *fakeHistorySvc) Window(context.Context, string) ([]history.Message, error) {
	return nil, nil
}

func (f *fakeHistorySvc) Transcript(_ context.Context, _ string, _ int) ([]history.Message, error) {
	if f.transcriptErr != nil {
		return nil, f.transcriptErr
	}
	return f.transcript, nil
}

func (f *fakeHistorySvc) AttachAudio(_ context.Context, id int64, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.attached == nil {
		f.attached = make(map[int64]string)
	}
	f.attached[id] = url
	return nil
}

func (f *fakeHistorySvc) SetLastAgent(context.Context, string, string) error { return nil }

func (f *fakeHistorySvc) LastAgent(context.Context, string) (string, error) {
	return f.lastAgent, nil
}

func (f *fakeHistorySvc) ClearSession(context.Context, string) error { return nil }

// --- memory ---

type fakeMemoriesSvc struct {
	mu        sync.Mutex
	memories  []memory.Memory
	recallErr error
	gotQuery  string
	deleted   []string
}

func (f *fakeMemoriesSvc) Add(_ context.Context, userID, content string, metadata map[string]string) (memory.Memory, error) {
	return memory.Memory{ID: "mem-1", UserID: userID, Content: content, Metadata: metadata}, nil
}

func (f *fakeMemoriesSvc) Recall(_ context.Context, _, query string, _ int) ([]memory.Memory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotQuery = query
	if f.recallErr != nil {
		return nil, f.recallErr
	}
	return f.memories, nil
}

func (f *fakeMemoriesSvc) List(_ context.Context, _ string, _ int) ([]memory.Memory, error) {
	return f.memories, nil
}

func (f *fakeMemoriesSvc) Delete(_ context.Context, _, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id == "missing" {
		return sql.ErrNoRows
	}
	f.deleted = append(f.deleted, id)
	return nil
}

// --- rag ---

type fakeDocsSvc struct {
	mu       sync.Mutex
	docs     []rag.Document
	chunks   []rag.Chunk
	answer   string
	deleted  []string
	gotQuery string
	gotLimit int
}

func (f *fakeDocsSvc) Ingest(_ context.Context, title, _ string, metadata map[string]string) (rag.Document, error) {
	return rag.Document{ID: "doc-1", Title: title, Metadata: metadata, Chunks: 2}, nil
}

func (f *fakeDocsSvc) Query(_ context.Context, query string, limit int) ([]rag.Chunk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotQuery, f.gotLimit = query, limit
	return f.chunks, nil
}

func (f *fakeDocsSvc) Answer(context.Context, string) (string, []rag.Chunk, error) {
	return f.answer, f.chunks, nil
}

func (f *fakeDocsSvc) ListDocuments(context.Context, int) ([]rag.Document, error) {
	return f.docs, nil
}

func (f *fakeDocsSvc) DeleteDocument(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id == "missing" {
		return sql.ErrNoRows
	}
	f.deleted = append(f.deleted, id)
	return nil
}

// --- avatar ---

type fakeAvatarSvc struct {
	mu      sync.Mutex
	session avatar.Session
	err     error
	ended   []string
}

func (f *fakeAvatarSvc) Enabled() bool { return true }

func (f *fakeAvatarSvc) CreateSession(_ context.Context, personaName, _ string) (avatar.Session, error) {
	if f.err != nil {
		return avatar.Session{}, f.err
	}
	s := f.session
	s.PersonaName = personaName
	return s, nil
}

func (f *fakeAvatarSvc) EndSession(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.ended = append(f.ended, sessionID)
	return nil
}

// --- fixture ---

type apiFixture struct {
	ts       *httptest.Server
	sessions *fakeSessions
	ai       *fakeAI
	speech   *fakeSpeechSvc
	history  *fakeHistorySvc
	memories *fakeMemoriesSvc
	docs     *fakeDocsSvc
	avatars  *fakeAvatarSvc
	registry *agents.Registry
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	f := &apiFixture{
		sessions: &fakeSessions{
			session:  sessions.Session{ID: "sess-1", UserID: "user-1", DisplayName: "Ada"},
			identity: sessions.Identity{UserID: "user-1", SessionID: "sess-1"},
		},
		ai: &fakeAI{
			resp: &ai.Response{Agent: "finance", Content: "Detailed answer.", Summary: "Short answer.", MessageID: 7},
			events: []ai.Event{
				{Agent: "finance"},
				{Content: "Detailed answer."},
				{Summary: "Short answer."},
				{Done: true},
			},
		},
		speech: &fakeSpeechSvc{
			transcript: "what is inflation",
			audio:      []byte("mp3-bytes"),
			speakURL:   "https://cdn.example.com/sess-1/reply.mp3",
		},
		history: &fakeHistorySvc{
			transcript: []history.Message{
				{ID: 1, SessionID: "sess-1", Role: "user", Content: "hi"},
				{ID: 2, SessionID: "sess-1", Role: "assistant", Agent: "research", Content: "hello"},
			},
			lastAgent: "research",
		},
		memories: &fakeMemoriesSvc{
			memories: []memory.Memory{{ID: "mem-1", UserID: "user-1", Content: "prefers metric units"}},
		},
		docs: &fakeDocsSvc{
			docs:   []rag.Document{{ID: "doc-1", Title: "Handbook", Chunks: 3}},
			chunks: []rag.Chunk{{ID: "ch-1", DocumentID: "doc-1", Title: "Handbook", Seq: 0, Content: "chapter one"}},
			answer: "It is covered in chapter one.",
		},
		avatars: &fakeAvatarSvc{
			session: avatar.Session{SessionToken: "anam-token", SessionID: "anam-sess-1"},
		},
	}

	// File-backed registry so update handlers exercise the editable path.
	registry, err := agents.NewRegistry(filepath.Join(t.TempDir(), "agents.yaml"))
	require.NoError(t, err)
	f.registry = registry

	statusSvc := status.NewService()
	statusSvc.Register("postgres", func(context.Context) error { return nil })

	zl := logger.NewZapLogger(zap.NewNop().Sugar())

	r := chi.NewRouter()
	RegisterRoutes(
		r,
		NewSessionHandler(f.sessions),
		NewChatHandler(f.ai, f.history, zl),
		NewVoiceHandler(f.speech, f.ai, f.history, zl),
		NewMemoryHandler(f.memories),
		NewDocumentHandler(f.docs),
		NewAgentHandler(f.registry, f.history),
		NewAvatarHandler(f.avatars),
		NewRealtimeHandler(f.ai, f.speech, zl),
		statusSvc,
		f.sessions,
	)

	f.ts = httptest.NewServer(r)
	t.Cleanup(f.ts.Close)
	return f
}

// do sends an authenticated JSON request.
func (f *apiFixture) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, f.ts.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+testToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := f.ts.Client().Do(req)
	require.NoError(t, err)
	return resp
}

// doMultipart uploads one file field, the way browsers send recorded audio.
func (f *apiFixture) doMultipart(t *testing.T, path, field, filename string, content []byte) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, f.ts.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := f.ts.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}
