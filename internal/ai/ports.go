package ai

import (
	"context"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/history"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/rag"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/search"
)

// LLMClient is the single inference provider. Chat, routing, summaries,
// transcription and speech all go through it.
type LLMClient interface {
	GetCompletion(ctx context.Context, messages []openai.ChatCompletionMessage, model string, temperature float32, maxTokens int) (string, error)
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Router picks the domain agent for a query.
type Router interface {
	Classify(ctx context.Context, query string) string
}

// Searcher is the slice of the search client the tool runner uses.
type Searcher interface {
	Enabled() bool
	SearchNews(ctx context.Context, query string, numResults int) ([]search.NewsResult, error)
	SearchFlights(ctx context.Context, departure, arrival, date string, numResults int) ([]search.FlightOption, error)
	SearchHotels(ctx context.Context, location, checkIn, checkOut string, numResults int) ([]search.HotelResult, error)
	SearchJobs(ctx context.Context, query, location string, numResults int) ([]search.JobResult, error)
	SearchRecipes(ctx context.Context, query string, numResults int) ([]search.RecipeResult, error)
	SearchProducts(ctx context.Context, query string, numResults int) ([]search.ProductResult, error)
}

// Retriever is the slice of the rag service the research agent uses.
type Retriever interface {
	Query(ctx context.Context, query string, limit int) ([]rag.Chunk, error)
}

// Response is one completed turn: the full answer plus the short form that
// the voice side speaks.
type Response struct {
	Agent     string `json:"agent"`
	Content   string `json:"content"`
	Summary   string `json:"summary"`
	MessageID int64  `json:"message_id"`
}

// Event is one stage of a streamed turn. Exactly one field is set.
type Event struct {
	Agent   string `json:"agent,omitempty"`
	Content string `json:"content,omitempty"`
	Summary string `json:"summary,omitempty"`
	Done    bool   `json:"done,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Service interface {
	// Respond runs the full pipeline: recall + window, route, tools, answer,
	// summary, persist. A non-nil window overrides the stored history (for
	// stateless clients that send their own transcript).
	Respond(ctx context.Context, userID, sessionID, message string, window []history.Message) (*Response, error)
	// RespondStream is Respond with each stage pushed to sink as soon as it
	// is ready: agent, content, summary, done.
	RespondStream(ctx context.Context, userID, sessionID, message string, window []history.Message, sink func(Event)) (*Response, error)
	Summarize(ctx context.Context, text string) (string, error)
}
