package delivery

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/ai"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/history"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/speech"
)

const maxAudioUpload = 20 << 20 // 20 MiB

type VoiceHandler struct {
	speech  speech.Service
	ai      ai.Service
	history history.Service
	log     *logger.ZapLogger
}

func NewVoiceHandler(speechSvc speech.Service, aiSvc ai.Service, historySvc history.Service, log *logger.ZapLogger) *VoiceHandler {
	return &VoiceHandler{
		speech:  speechSvc,
		ai:      aiSvc,
		history: historySvc,
		log:     log,
	}
}

func (h *VoiceHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAudioUpload); err != nil {
		http.Error(w, "invalid multipart: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	text, err := h.speech.Transcribe(r.Context(), file, header.Filename)
	if errors.Is(err, speech.ErrNoSpeech) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "empty transcription"})
		return
	}
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "transcription failed", Error: err})
		http.Error(w, "transcription failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

// Speak returns the mp3 itself; the stored copy's URL rides in a header so
// clients that only want playback never make a second request.
func (h *VoiceHandler) Speak(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		http.Error(w, "missing text", http.StatusBadRequest)
		return
	}

	audio, url, err := h.speech.Speak(r.Context(), id.SessionID, req.Text)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "speech synthesis failed", Error: err})
		http.Error(w, "speech synthesis failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	w.Header().Set("X-Audio-URL", url)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}

// Turn is the full voice round trip: transcribe, answer, speak the summary.
// When synthesis fails the text reply is still returned.
func (h *VoiceHandler) Turn(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	if err := r.ParseMultipartForm(maxAudioUpload); err != nil {
		http.Error(w, "invalid multipart: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	transcript, err := h.speech.Transcribe(r.Context(), file, header.Filename)
	if errors.Is(err, speech.ErrNoSpeech) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "empty transcription"})
		return
	}
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "transcription failed", Error: err})
		http.Error(w, "transcription failed", http.StatusInternalServerError)
		return
	}

	resp, err := h.ai.Respond(r.Context(), id.UserID, id.SessionID, transcript, nil)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "voice turn failed", Error: err})
		http.Error(w, "assistant failed to respond", http.StatusInternalServerError)
		return
	}

	// The summary, not the long answer, is what gets spoken.
	audioB64, audioURL := "", ""
	if audio, url, err := h.speech.Speak(r.Context(), id.SessionID, resp.Summary); err != nil {
		h.log.Log(logger.LogEntry{Level: "warn", Message: "voice turn synthesis failed", Error: err})
	} else {
		audioB64 = base64.StdEncoding.EncodeToString(audio)
		audioURL = url
		if resp.MessageID != 0 {
			if err := h.history.AttachAudio(r.Context(), resp.MessageID, audioURL); err != nil {
				h.log.Log(logger.LogEntry{Level: "warn", Message: "attach audio failed", Error: err})
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transcript": transcript,
		"agent":      resp.Agent,
		"content":    resp.Content,
		"summary":    resp.Summary,
		"audio_b64":  audioB64,
		"audio_url":  audioURL,
		"message_id": resp.MessageID,
	})
}
