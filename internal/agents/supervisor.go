package agents

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

const routingModel = "llama-3.1-8b-instant"

const fallbackDomain = "research"

// Completer is the slice of the inference client the supervisor needs.
type Completer interface {
	GetCompletion(ctx context.Context, messages []openai.ChatCompletionMessage, model string, temperature float32, maxTokens int) (string, error)
}

// Supervisor classifies a user query into one of the registered domains.
type Supervisor struct {
	llm      Completer
	registry *Registry
	model    string
}

func NewSupervisor(llm Completer, registry *Registry) *Supervisor {
	model := os.Getenv("GROQ_ROUTING_MODEL")
	if model == "" {
		model = routingModel
	}
	return &Supervisor{llm: llm, registry: registry, model: model}
}

// Classify picks the domain agent for a query. It never fails: anything the
// model returns outside the registered set falls back to research.
func (s *Supervisor) Classify(ctx context.Context, query string) string {
	domains := s.registry.Domains()

	start := time.Now()
	raw, err := s.llm.GetCompletion(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: s.classificationPrompt(domains, query)},
	}, s.model, 0.3, 16)
	metrics.ObserveLLMCall("route", s.model, time.Since(start), err)

	if err != nil {
		log.Printf("[agents] classification failed, using %s: %v", fallbackDomain, err)
		return fallbackDomain
	}

	domain := strings.ToLower(strings.TrimSpace(raw))
	domain = strings.Trim(domain, `."'!`)

	for _, d := range domains {
		if domain == d {
			return d
		}
	}
	log.Printf("[agents] model returned unknown domain %q, using %s", domain, fallbackDomain)
	return fallbackDomain
}

func (s *Supervisor) classificationPrompt(domains []string, query string) string {
	var defs strings.Builder
	for _, name := range domains {
		a, ok := s.registry.Lookup(name)
		if !ok {
			continue
		}
		def := a.Routing
		if def == "" {
			def = a.Description
		}
		fmt.Fprintf(&defs, "- %s: %s\n", name, def)
	}

	return fmt.Sprintf(`You are the supervisor agent responsible for routing user queries to the most appropriate specialized agent.

Analyze the user query and classify it into precisely one of these domains:
%s

DOMAIN DEFINITIONS:
%s
GUIDELINES:
- "Top stocks" or "stock price" -> finance
- "Top tech companies" (general) -> research
- "History of Apple" -> research
- "Apple stock analysis" -> finance
- If the query is ambiguous or falls between categories, prioritize 'research'.

User Query: %s

Respond with ONLY the domain name (one word, lowercase). Do not add punctuation or explanation.`,
		strings.Join(domains, ", "), defs.String(), query)
}
