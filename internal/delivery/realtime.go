package delivery

import (
	"bytes"
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/gorilla/websocket"

	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/ai"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/metrics"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/speech"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// realtimeRequest is one inbound frame. Type selects the input: "text" sends
// Text through the pipeline, "audio" transcribes AudioB64 first.
type realtimeRequest struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	AudioB64 string `json:"audio_b64"`
	Filename string `json:"filename"`
}

type RealtimeHandler struct {
	ai     ai.Service
	speech speech.Service
	log    *logger.ZapLogger
}

func NewRealtimeHandler(aiSvc ai.Service, speechSvc speech.Service, log *logger.ZapLogger) *RealtimeHandler {
	return &RealtimeHandler{ai: aiSvc, speech: speechSvc, log: log}
}

// Serve upgrades the connection and runs assistant turns over JSON frames
// until the client hangs up. Each turn streams the same stages as the SSE
// endpoint; a voice turn additionally gets its transcript up front and the
// spoken summary as base64 mp3 at the end. Typed input stays silent.
func (h *RealtimeHandler) Serve(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer conn.Close()

	metrics.StreamOpened()
	defer metrics.StreamClosed()

	for {
		var req realtimeRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}

		text := req.Text
		isVoice := req.Type == "audio"

		if isVoice {
			b, err := base64.StdEncoding.DecodeString(req.AudioB64)
			if err != nil {
				_ = conn.WriteJSON(map[string]any{"error": "invalid base64 audio"})
				continue
			}
			filename := req.Filename
			if filename == "" {
				filename = "turn.webm"
			}
			text, err = h.speech.Transcribe(r.Context(), bytes.NewReader(b), filename)
			if errors.Is(err, speech.ErrNoSpeech) {
				_ = conn.WriteJSON(map[string]any{"error": "empty transcription"})
				continue
			}
			if err != nil {
				h.log.Log(logger.LogEntry{Level: "error", Message: "realtime transcription failed", Error: err})
				_ = conn.WriteJSON(map[string]any{"error": "transcription failed"})
				continue
			}
			_ = conn.WriteJSON(map[string]any{"event": "transcript", "text": text})
		}

		if text == "" {
			_ = conn.WriteJSON(map[string]any{"error": "empty message"})
			continue
		}

		// done is written here, after the optional audio frame, not from the
		// sink: the client must know whether audio is still coming.
		resp, err := h.ai.RespondStream(r.Context(), id.UserID, id.SessionID, text, nil, func(ev ai.Event) {
			switch {
			case ev.Agent != "":
				_ = conn.WriteJSON(map[string]any{"event": "agent", "agent": ev.Agent})
			case ev.Content != "":
				_ = conn.WriteJSON(map[string]any{"event": "content", "content": ev.Content})
			case ev.Summary != "":
				_ = conn.WriteJSON(map[string]any{"event": "summary", "summary": ev.Summary})
			}
		})
		if err != nil {
			h.log.Log(logger.LogEntry{Level: "error", Message: "realtime turn failed", Error: err})
			_ = conn.WriteJSON(map[string]any{"error": "assistant failed to respond"})
			continue
		}

		if isVoice {
			audio, err := h.speech.Synthesize(r.Context(), resp.Summary)
			if err != nil {
				h.log.Log(logger.LogEntry{Level: "warn", Message: "realtime synthesis failed", Error: err})
			} else {
				_ = conn.WriteJSON(map[string]any{
					"event":     "audio",
					"mime":      "audio/mpeg",
					"audio_b64": base64.StdEncoding.EncodeToString(audio),
				})
			}
		}

		_ = conn.WriteJSON(map[string]any{"event": "done"})
	}
}
