package delivery

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMemories(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodGet, "/memories?query=units", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Memories []struct {
			ID      string `json:"id"`
			Content string `json:"content"`
		} `json:"memories"`
	}
	decodeBody(t, resp, &out)

	require.Len(t, out.Memories, 1)
	assert.Equal(t, "prefers metric units", out.Memories[0].Content)
	assert.Equal(t, "units", f.memories.gotQuery)
}

func TestAddMemory(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodPost, "/memories", map[string]any{
		"content":  "allergic to peanuts",
		"metadata": map[string]string{"source": "chat"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		ID      string            `json:"id"`
		UserID  string            `json:"user_id"`
		Content string            `json:"content"`
		Meta    map[string]string `json:"metadata"`
	}
	decodeBody(t, resp, &out)

	assert.Equal(t, "mem-1", out.ID)
	assert.Equal(t, "user-1", out.UserID)
	assert.Equal(t, "allergic to peanuts", out.Content)
	assert.Equal(t, "chat", out.Meta["source"])
}

func TestAddMemoryRequiresContent(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodPost, "/memories", map[string]string{"content": ""})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestDeleteMemory(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodDelete, "/memories/mem-1", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	assert.Equal(t, []string{"mem-1"}, f.memories.deleted)
}

func TestDeleteMemoryNotFound(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodDelete, "/memories/missing", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
