package delivery

import (
	"encoding/base64"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/speech"
)

func TestTranscribeUpload(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.doMultipart(t, "/voice/transcriptions", "file", "question.webm", []byte("fake-opus"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Text string `json:"text"`
	}
	decodeBody(t, resp, &out)
	assert.Equal(t, "what is inflation", out.Text)
}

func TestTranscribeMissingFile(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.doMultipart(t, "/voice/transcriptions", "wrong_field", "question.webm", []byte("fake-opus"))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestTranscribeSilence(t *testing.T) {
	f := newAPIFixture(t)
	f.speech.transcribeErr = speech.ErrNoSpeech

	resp := f.doMultipart(t, "/voice/transcriptions", "file", "silence.webm", []byte("fake-opus"))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var out struct {
		Error string `json:"error"`
	}
	decodeBody(t, resp, &out)
	assert.Equal(t, "empty transcription", out.Error)
}

func TestSpeak(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodPost, "/voice/speech", map[string]string{"text": "Short answer."})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "audio/mpeg", resp.Header.Get("Content-Type"))
	assert.Equal(t, f.speech.speakURL, resp.Header.Get("X-Audio-URL"))
	assert.Equal(t, "mp3-bytes", readBody(t, resp))
	assert.Equal(t, []string{"Short answer."}, f.speech.spoken)
}

func TestSpeakRequiresText(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodPost, "/voice/speech", map[string]string{"text": ""})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestVoiceTurn(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.doMultipart(t, "/voice/turn", "file", "question.webm", []byte("fake-opus"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Transcript string `json:"transcript"`
		Agent      string `json:"agent"`
		Content    string `json:"content"`
		Summary    string `json:"summary"`
		AudioB64   string `json:"audio_b64"`
		AudioURL   string `json:"audio_url"`
		MessageID  int64  `json:"message_id"`
	}
	decodeBody(t, resp, &out)

	assert.Equal(t, "what is inflation", out.Transcript)
	assert.Equal(t, "finance", out.Agent)
	assert.Equal(t, "Detailed answer.", out.Content)
	assert.Equal(t, "Short answer.", out.Summary)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("mp3-bytes")), out.AudioB64)
	assert.Equal(t, f.speech.speakURL, out.AudioURL)
	assert.Equal(t, int64(7), out.MessageID)

	// The summary, not the long answer, is what gets spoken.
	assert.Equal(t, []string{"Short answer."}, f.speech.spoken)
	assert.Equal(t, f.speech.speakURL, f.history.attached[7])
}

func TestVoiceTurnSynthesisFailureKeepsText(t *testing.T) {
	f := newAPIFixture(t)
	f.speech.speakErr = errors.New("tts down")

	resp := f.doMultipart(t, "/voice/turn", "file", "question.webm", []byte("fake-opus"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Content  string `json:"content"`
		AudioB64 string `json:"audio_b64"`
		AudioURL string `json:"audio_url"`
	}
	decodeBody(t, resp, &out)

	assert.Equal(t, "Detailed answer.", out.Content)
	assert.Empty(t, out.AudioB64)
	assert.Empty(t, out.AudioURL)
	assert.Empty(t, f.history.attached)
}

func TestVoiceTurnNoSpeech(t *testing.T) {
	f := newAPIFixture(t)
	f.speech.transcribeErr = speech.ErrNoSpeech

	resp := f.doMultipart(t, "/voice/turn", "file", "silence.webm", []byte("fake-opus"))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var out struct {
		Error string `json:"error"`
	}
	decodeBody(t, resp, &out)
	assert.Equal(t, "empty transcription", out.Error)
}
