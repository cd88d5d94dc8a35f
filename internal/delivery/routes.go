package delivery

import (
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/sessions"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/status"
)

func RegisterRoutes(
	r chi.Router,
	hSession *SessionHandler,
	hChat *ChatHandler,
	hVoice *VoiceHandler,
	hMemory *MemoryHandler,
	hDocs *DocumentHandler,
	hAgents *AgentHandler,
	hAvatar *AvatarHandler,
	hRealtime *RealtimeHandler,
	statusSvc *status.Service,
	authSvc sessions.Service,
) {
	// --- entry (no token yet) ---
	r.With(httputil.RecoverMiddleware, MetricsMiddleware, RateLimit(10, time.Minute)).
		Post("/sessions", hSession.Start)

	// --- public agent cards (prompts never marshal, see agents.Agent) ---
	r.With(httputil.RecoverMiddleware, MetricsMiddleware).
		Get("/agents", hAgents.List)

	// --- ops ---
	r.With(httputil.RecoverMiddleware).
		Get("/status", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, statusSvc.Check(req.Context()))
		})
	r.With(httputil.RecoverMiddleware).
		Handle("/metrics", promhttp.Handler())

	// --- protected ---
	r.Route("/", func(pr chi.Router) {
		pr.Use(
			httputil.RecoverMiddleware,
			MetricsMiddleware,
			AuthMiddleware(authSvc),
		)

		// Shared limiters: one budget per IP across the whole group.
		chatLimit := RateLimit(30, time.Minute)
		voiceLimit := RateLimit(15, time.Minute)

		// --- chat ---
		pr.With(chatLimit).Post("/multi-agent/stream", hChat.Stream)
		pr.With(chatLimit).Post("/chat", hChat.Chat)
		pr.Get("/history/{session_id}", hChat.History)

		// --- sessions ---
		pr.Get("/sessions/{session_id}", hSession.Get)
		pr.Delete("/sessions/{session_id}", hSession.End)

		// --- voice ---
		pr.With(voiceLimit).Post("/voice/transcriptions", hVoice.Transcribe)
		pr.With(voiceLimit).Post("/voice/speech", hVoice.Speak)
		pr.With(voiceLimit).Post("/voice/turn", hVoice.Turn)
		pr.Get("/realtime", hRealtime.Serve)

		// --- memories ---
		pr.Get("/memories", hMemory.List)
		pr.Post("/memories", hMemory.Add)
		pr.Delete("/memories/{memory_id}", hMemory.Delete)

		// --- documents ---
		pr.Post("/documents", hDocs.Ingest)
		pr.Get("/documents", hDocs.List)
		pr.Get("/documents/search", hDocs.Search)
		pr.Delete("/documents/{document_id}", hDocs.Delete)
		pr.Post("/rag/answers", hDocs.Answer)

		// --- agents ---
		pr.Get("/agents/last", hAgents.Last)
		pr.Put("/agents/{domain}", hAgents.Update)

		// --- avatar ---
		pr.Post("/avatar/sessions", hAvatar.CreateSession)
		pr.Delete("/avatar/sessions/{avatar_session_id}", hAvatar.EndSession)
	})
}
