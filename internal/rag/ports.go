package rag

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

type Document struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Chunks    int               `json:"chunks"`
	CreatedAt time.Time         `json:"created_at"`
}

// Chunk is one retrievable slice of an ingested document.
type Chunk struct {
	ID         string  `json:"id"`
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	Seq        int     `json:"seq"`
	Content    string  `json:"content"`
	Rank       float64 `json:"rank"`
}

type Repo interface {
	CreateDocument(ctx context.Context, doc Document, chunks []string) (Document, error)
	SearchChunks(ctx context.Context, query string, limit int) ([]Chunk, error)
	ListDocuments(ctx context.Context, limit int) ([]Document, error)
	DeleteDocument(ctx context.Context, id string) error
}

// Completer is the slice of the inference client the answerer needs.
type Completer interface {
	GetCompletion(ctx context.Context, messages []openai.ChatCompletionMessage, model string, temperature float32, maxTokens int) (string, error)
}

type Service interface {
	Ingest(ctx context.Context, title, text string, metadata map[string]string) (Document, error)
	Query(ctx context.Context, query string, limit int) ([]Chunk, error)
	// Answer retrieves matching chunks and asks the model over them.
	Answer(ctx context.Context, question string) (string, []Chunk, error)
	ListDocuments(ctx context.Context, limit int) ([]Document, error)
	DeleteDocument(ctx context.Context, id string) error
}
