package delivery

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/ai"
)

func TestChatTurn(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodPost, "/chat", map[string]string{"message": "what is inflation"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Agent     string `json:"agent"`
		Content   string `json:"content"`
		Summary   string `json:"summary"`
		MessageID int64  `json:"message_id"`
	}
	decodeBody(t, resp, &out)

	assert.Equal(t, "finance", out.Agent)
	assert.Equal(t, "Detailed answer.", out.Content)
	assert.Equal(t, "Short answer.", out.Summary)
	assert.Equal(t, int64(7), out.MessageID)

	assert.Equal(t, "user-1", f.ai.gotUser)
	assert.Equal(t, "sess-1", f.ai.gotSession)
	assert.Equal(t, "what is inflation", f.ai.gotMessage)
	assert.Nil(t, f.ai.gotWindow)
}

// Old clients still ship their own transcript; the server accepts the field
// but answers from its stored history.
func TestChatIgnoresClientHistory(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodPost, "/chat", map[string]any{
		"message": "and now?",
		"conversation_history": []map[string]string{
			{"role": "user", "content": "earlier question"},
			{"role": "assistant", "content": "earlier answer"},
		},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "and now?", f.ai.gotMessage)
	assert.Nil(t, f.ai.gotWindow)
}

func TestChatRejectsForeignSessionBody(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodPost, "/chat", map[string]string{
		"session_id": "someone-elses-session",
		"message":    "hi",
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestChatAcceptsOwnSessionBody(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodPost, "/chat", map[string]string{
		"session_id": "sess-1",
		"message":    "hi",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestChatTurnFailure(t *testing.T) {
	f := newAPIFixture(t)
	f.ai.resp = nil
	f.ai.err = errors.New("boom")

	resp := f.do(t, http.MethodPost, "/chat", map[string]string{"message": "hi"})
	body := readBody(t, resp)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body, "assistant failed to respond")
	assert.NotContains(t, body, "boom", "internal errors stay out of responses")
}

func TestStreamEmitsStagedEvents(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodPost, "/multi-agent/stream", map[string]string{"message": "hi"})
	body := readBody(t, resp)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	want := []string{
		`data: {"agent":"finance"}`,
		`data: {"content":"Detailed answer."}`,
		`data: {"summary":"Short answer."}`,
		`data: {"done":true}`,
	}
	pos := -1
	for _, line := range want {
		at := strings.Index(body, line)
		require.GreaterOrEqual(t, at, 0, "missing %q in %q", line, body)
		assert.Greater(t, at, pos, "%q out of order", line)
		pos = at
	}
}

// The mismatch check runs before any SSE headers go out, so the client gets
// a plain 403.
func TestStreamRejectsForeignSessionBody(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodPost, "/multi-agent/stream", map[string]string{
		"session_id": "someone-elses-session",
		"message":    "hi",
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.NotEqual(t, "text/event-stream", resp.Header.Get("Content-Type"))
	resp.Body.Close()
}

func TestStreamFailureEmitsErrorEvent(t *testing.T) {
	f := newAPIFixture(t)
	f.ai.events = []ai.Event{{Agent: "finance"}}
	f.ai.resp = nil
	f.ai.err = errors.New("llm down")

	resp := f.do(t, http.MethodPost, "/multi-agent/stream", map[string]string{"message": "hi"})
	body := readBody(t, resp)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `data: {"agent":"finance"}`)
	assert.Contains(t, body, `data: {"error":"assistant failed to respond"}`)
	assert.NotContains(t, body, "llm down")
}

func TestGetHistory(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodGet, "/history/sess-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
			Agent   string `json:"agent"`
		} `json:"messages"`
	}
	decodeBody(t, resp, &out)

	require.Len(t, out.Messages, 2)
	assert.Equal(t, "user", out.Messages[0].Role)
	assert.Equal(t, "research", out.Messages[1].Agent)
}

func TestGetHistoryRejectsForeignSession(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodGet, "/history/other-session", nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}
