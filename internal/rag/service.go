package rag

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/metrics"
)

const (
	defaultRagModel   = "mixtral-8x7b-32768"
	defaultQueryLimit = 5
)

type ragService struct {
	repo  Repo
	llm   Completer
	model string
}

func NewService(repo Repo, llm Completer) Service {
	model := os.Getenv("GROQ_RAG_MODEL")
	if model == "" {
		model = defaultRagModel
	}
	return &ragService{repo: repo, llm: llm, model: model}
}

func (s *ragService) Ingest(ctx context.Context, title, text string, metadata map[string]string) (Document, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Document{}, fmt.Errorf("title required")
	}

	chunks := splitText(text)
	if len(chunks) == 0 {
		return Document{}, fmt.Errorf("document %q has no text", title)
	}

	doc, err := s.repo.CreateDocument(ctx, Document{Title: title, Metadata: metadata}, chunks)
	if err != nil {
		return Document{}, err
	}
	log.Printf("[rag] ingested %q: %d chunks", title, len(chunks))
	return doc, nil
}

func (s *ragService) Query(ctx context.Context, query string, limit int) ([]Chunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query required")
	}
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	return s.repo.SearchChunks(ctx, query, limit)
}

func (s *ragService) Answer(ctx context.Context, question string) (string, []Chunk, error) {
	chunks, err := s.Query(ctx, question, defaultQueryLimit)
	if err != nil {
		return "", nil, err
	}

	system := `You are a document assistant. Answer the question using the provided document excerpts.
Quote or paraphrase the excerpts; name the document title when you rely on one.
If the excerpts do not contain the answer, say so plainly.`
	if len(chunks) > 0 {
		var b strings.Builder
		for _, c := range chunks {
			fmt.Fprintf(&b, "[%s — part %d]\n%s\n\n", c.Title, c.Seq+1, c.Content)
		}
		system += "\n\nDocument excerpts:\n\n" + strings.TrimSpace(b.String())
	} else {
		system += "\n\nNo document excerpts matched this question."
	}

	start := time.Now()
	answer, err := s.llm.GetCompletion(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		{Role: openai.ChatMessageRoleUser, Content: question},
	}, s.model, 0.7, 1024)
	metrics.ObserveLLMCall("rag", s.model, time.Since(start), err)
	if err != nil {
		return "", nil, err
	}
	return answer, chunks, nil
}

func (s *ragService) ListDocuments(ctx context.Context, limit int) ([]Document, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListDocuments(ctx, limit)
}

func (s *ragService) DeleteDocument(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("id required")
	}
	return s.repo.DeleteDocument(ctx, id)
}
