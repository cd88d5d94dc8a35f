package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/Vovarama1992/go-utils/logger"

	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/agents"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/ai"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/alerts"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/avatar"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/delivery"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/domain"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/history"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/infra"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/memory"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/rag"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/search"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/sessions"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/speech"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/status"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {

	// =========================================================================
	// ENV / DB INIT
	// =========================================================================

	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("db ping failed: %v", err)
	}
	defer db.Close()

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	zl := logger.NewZapLogger(baseLogger.Sugar())

	// =========================================================================
	// INFRASTRUCTURE
	// =========================================================================

	s3Client, err := infra.NewS3Client()
	if err != nil {
		log.Fatalf("failed to init s3: %v", err)
	}

	rdb, err := infra.NewRedisClient()
	if err != nil {
		log.Fatalf("failed to init redis: %v", err)
	}
	defer rdb.Close()

	// =========================================================================
	// REPOSITORIES
	// =========================================================================

	historyRepo := history.NewHistoryRepo(db)
	historyCache := history.NewRedisCache(rdb)
	memoryRepo := memory.NewMemoryRepo(db)
	ragRepo := rag.NewRagRepo(db)
	sessionRepo := sessions.NewSessionRepo(db)

	// =========================================================================
	// ERROR NOTIFICATION
	// =========================================================================

	alertInfra := alerts.NewInfra()
	alertService := alerts.NewService(alertInfra)

	// =========================================================================
	// CLIENTS (LLM / STT / TTS / SEARCH / AVATAR)
	// =========================================================================

	groqClient := ai.NewGroqClient()
	searchClient := search.NewClient()
	avatarClient := avatar.NewClient()

	// =========================================================================
	// DOMAIN SERVICES
	// =========================================================================

	registry, err := agents.NewRegistry(os.Getenv("AGENTS_FILE"))
	if err != nil {
		log.Fatalf("failed to load agents: %v", err)
	}
	supervisor := agents.NewSupervisor(groqClient, registry)

	tokenCounter, err := history.NewTokenCounter()
	if err != nil {
		log.Fatalf("failed to init token counter: %v", err)
	}
	historyService := history.NewService(historyRepo, historyCache, tokenCounter, alertService)

	memoryService := memory.NewService(memoryRepo)
	ragService := rag.NewService(ragRepo, groqClient)
	sessionService := sessions.NewService(sessionRepo, memoryService, historyCache)

	s3Service := domain.NewS3Service(s3Client)

	speechService := speech.NewService(
		groqClient, // Whisper
		groqClient, // PlayAI TTS
		s3Service,
		alertService,
	)

	aiService := ai.NewAiService(
		groqClient,
		supervisor,
		registry,
		historyService,
		memoryService,
		searchClient,
		ragService,
		alertService,
	)

	statusService := status.NewService()
	statusService.Register("postgres", func(ctx context.Context) error { return db.PingContext(ctx) })
	statusService.Register("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	statusService.Register("s3", s3Client.Ping)

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	// HANDLERS
	sessionHandler := delivery.NewSessionHandler(sessionService)
	chatHandler := delivery.NewChatHandler(aiService, historyService, zl)
	voiceHandler := delivery.NewVoiceHandler(speechService, aiService, historyService, zl)
	memoryHandler := delivery.NewMemoryHandler(memoryService)
	documentHandler := delivery.NewDocumentHandler(ragService)
	agentHandler := delivery.NewAgentHandler(registry, historyService)
	avatarHandler := delivery.NewAvatarHandler(avatarClient)
	realtimeHandler := delivery.NewRealtimeHandler(aiService, speechService, zl)

	// ROUTES
	delivery.RegisterRoutes(
		r,
		sessionHandler,
		chatHandler,
		voiceHandler,
		memoryHandler,
		documentHandler,
		agentHandler,
		avatarHandler,
		realtimeHandler,
		statusService,
		sessionService,
	)

	r.With(httputil.RecoverMiddleware).Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("pong"))
	})

	// =========================================================================
	// BACKGROUND JOBS
	// =========================================================================

	stopWatch, err := registry.Watch(context.Background(), alertService)
	if err != nil {
		log.Printf("[agents] watch disabled: %v", err)
	} else {
		defer stopWatch()
	}

	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			ctx := context.Background()
			n, err := sessionService.EndIdle(ctx, 24*time.Hour)
			if err != nil {
				alertService.Notify(ctx, "sessions", err, "idle session cleanup failed")
			} else if n > 0 {
				log.Printf("[cleanup-sessions] closed %d idle sessions", n)
			}
		}
	}()

	// =========================================================================
	// START SERVER
	// =========================================================================

	addr := ":" + port
	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "listening at " + addr,
		Service: "assistant",
	})

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
