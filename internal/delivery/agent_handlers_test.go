package delivery

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/agents"
)

func TestListAgents(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodGet, "/agents", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Agents []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"agents"`
	}
	decodeBody(t, resp, &out)

	require.NotEmpty(t, out.Agents)
	names := make([]string, 0, len(out.Agents))
	for _, a := range out.Agents {
		names = append(names, a.Name)
	}
	assert.Contains(t, names, "finance")
	assert.Contains(t, names, "research")
}

func TestListAgentsIsPublic(t *testing.T) {
	f := newAPIFixture(t)

	// No Authorization header: the picker loads before sign-in.
	resp, err := http.Get(f.ts.URL + "/agents")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := readBody(t, resp)
	assert.Contains(t, body, "finance")
	assert.NotContains(t, body, "prompt")
	assert.NotContains(t, body, "You are the")
}

func TestLastAgent(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodGet, "/agents/last", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Agent string `json:"agent"`
	}
	decodeBody(t, resp, &out)
	assert.Equal(t, "research", out.Agent)
}

func TestUpdateAgent(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodPut, "/agents/finance", map[string]string{
		"description": "Money, markets and budgeting.",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	decodeBody(t, resp, &out)

	assert.Equal(t, "finance", out.Name)
	assert.Equal(t, "Money, markets and budgeting.", out.Description)

	got, ok := f.registry.Lookup("finance")
	require.True(t, ok)
	assert.Equal(t, "Money, markets and budgeting.", got.Description)
}

func TestUpdateUnknownAgent(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodPut, "/agents/astrology", map[string]string{"description": "stars"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestUpdateAgentRejectsEmptyPrompt(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodPut, "/agents/finance", map[string]string{"prompt": "   "})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestUpdateAgentReadOnlyRegistry(t *testing.T) {
	// No backing file: the built-in set cannot be edited.
	registry, err := agents.NewRegistry("")
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Put("/agents/{domain}", NewAgentHandler(registry, &fakeHistorySvc{}).Update)

	req := httptest.NewRequest(http.MethodPut, "/agents/finance", strings.NewReader(`{"description":"x"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "registry is read-only")
}
