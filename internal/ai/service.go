package ai

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"

	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/agents"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/alerts"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/history"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/memory"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/metrics"
)

const (
	llmTimeout     = 120 * time.Second
	summaryTimeout = 30 * time.Second

	chatTemperature    = 0.8
	chatMaxTokens      = 2048
	summaryTemperature = 0.3
	summaryMaxTokens   = 256

	recallLimit = 5
)

type AiService struct {
	llm      LLMClient
	router   Router
	registry *agents.Registry
	history  history.Service
	memories memory.Service
	tools    Searcher
	docs     Retriever
	notifier alerts.Notifier

	chatModel    string
	summaryModel string
}

func NewAiService(
	llm LLMClient,
	router Router,
	registry *agents.Registry,
	historySvc history.Service,
	memories memory.Service,
	tools Searcher,
	docs Retriever,
	notifier alerts.Notifier,
) *AiService {
	chatModel := strings.TrimSpace(os.Getenv("GROQ_CHAT_MODEL"))
	if chatModel == "" {
		chatModel = DefaultChatModel
	}
	summaryModel := strings.TrimSpace(os.Getenv("GROQ_SUMMARY_MODEL"))
	if summaryModel == "" {
		summaryModel = chatModel
	}

	return &AiService{
		llm:          llm,
		router:       router,
		registry:     registry,
		history:      historySvc,
		memories:     memories,
		tools:        tools,
		docs:         docs,
		notifier:     notifier,
		chatModel:    chatModel,
		summaryModel: summaryModel,
	}
}

// Groq error diagnosis
func analyzeGroqError(err error) string {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "status code: 401"):
		return "Invalid Groq API key."
	case strings.Contains(msg, "status code: 404"):
		return "Model not found."
	case strings.Contains(msg, "status code: 413"):
		return "Request exceeds the model context window."
	case strings.Contains(msg, "status code: 429"):
		return "Groq rate limit exceeded."
	case strings.Contains(msg, "status code: 400") && strings.Contains(msg, "model"):
		return "Wrong model name."
	case strings.Contains(msg, "status code: 400"):
		return "Malformed request to Groq."
	case strings.Contains(msg, "status code: 498"), strings.Contains(msg, "status code: 499"):
		return "Groq flex-tier capacity exhausted or request cancelled."
	case strings.Contains(msg, "status code: 500"), strings.Contains(msg, "status code: 503"):
		return "Groq internal error."
	}
	return "Unknown Groq error: " + err.Error()
}

func (s *AiService) notifyLLMError(ctx context.Context, sessionID, model string, err error) {
	diag := analyzeGroqError(err)
	s.notifier.Notify(ctx, "ai", err,
		fmt.Sprintf("LLM call failed\nSession: %s\nModel: %s\n%v\n\n%s",
			sessionID, model, err, diag))
}

func (s *AiService) Respond(
	ctx context.Context,
	userID, sessionID, message string,
	window []history.Message,
) (*Response, error) {
	return s.RespondStream(ctx, userID, sessionID, message, window, nil)
}

// === main entrypoint ===
func (s *AiService) RespondStream(
	ctx context.Context,
	userID, sessionID, message string,
	window []history.Message, // nil means use the stored transcript
	sink func(Event),
) (*Response, error) {

	emit := func(ev Event) {
		if sink != nil {
			sink(ev)
		}
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("message is empty")
	}
	if sessionID == "" || userID == "" {
		return nil, fmt.Errorf("session_id and user_id are required")
	}

	start := time.Now()
	log.Printf("[ai] >>> START session=%s user=%s", sessionID, userID)

	// 1) recall long-term memories and load the history window in parallel.
	// Both are best effort, a turn still works with neither.
	var (
		recalled []memory.Memory
		turns    []history.Message
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recalled, err = s.memories.Recall(gctx, userID, message, recallLimit)
		if err != nil {
			s.notifier.Notify(gctx, "memory", err,
				fmt.Sprintf("recall failed for user %s, answering without memories", userID))
			recalled = nil
		}
		return nil
	})
	g.Go(func() error {
		if window != nil {
			turns = window
			return nil
		}
		var err error
		turns, err = s.history.Window(gctx, sessionID)
		if err != nil {
			log.Printf("[ai] history window failed: %v", err)
			turns = nil
		}
		return nil
	})
	_ = g.Wait()
	log.Printf("[ai] history entries: %d, recalled memories: %d", len(turns), len(recalled))

	// 2) route to an agent
	domain := s.router.Classify(ctx, message)
	agent, ok := s.registry.Lookup(domain)
	if !ok {
		log.Printf("[ai] unknown agent %q, falling back to research", domain)
		if agent, ok = s.registry.Lookup("research"); !ok {
			return nil, fmt.Errorf("agent registry has no %q agent", domain)
		}
	}
	log.Printf("[ai] routed to agent=%s", agent.Name)
	emit(Event{Agent: agent.Name})

	// 3) run the agent's tools
	toolBlock := s.runTools(ctx, agent, message)

	// 4) assemble the prompt
	messages := buildMessages(agent, recalled, toolBlock, turns, message)

	// 5) chat completion
	ctxLLM, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()

	llmStart := time.Now()
	content, err := s.llm.GetCompletion(ctxLLM, messages, s.chatModel, chatTemperature, chatMaxTokens)
	metrics.ObserveLLMCall("chat", s.chatModel, time.Since(llmStart), err)
	log.Printf("[ai][%.1fs] completion done err=%v", time.Since(start).Seconds(), err)

	if err != nil {
		s.notifyLLMError(ctx, sessionID, s.chatModel, err)
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		err := fmt.Errorf("model %s returned an empty reply", s.chatModel)
		s.notifyLLMError(ctx, sessionID, s.chatModel, err)
		return nil, err
	}
	emit(Event{Content: content})

	// 6) spoken summary; a failed call degrades to a truncation
	summary, err := s.Summarize(ctx, content)
	if err != nil {
		log.Printf("[ai] summary failed, truncating: %v", err)
		s.notifier.Notify(ctx, "ai", err,
			fmt.Sprintf("summary failed for session %s, served truncation", sessionID))
		summary = fallbackSummary(content)
	}
	emit(Event{Summary: summary})

	// 7) persist both turns. The reply already exists at this point, so a
	// lost transcript row is reported but does not fail the request.
	if _, err := s.history.Append(ctx, history.Message{
		SessionID: sessionID,
		UserID:    userID,
		Role:      "user",
		Content:   message,
	}); err != nil {
		log.Printf("[ai] persist user turn: %v", err)
	}

	saved, err := s.history.Append(ctx, history.Message{
		SessionID: sessionID,
		UserID:    userID,
		Role:      "assistant",
		Agent:     agent.Name,
		Content:   content,
		Summary:   summary,
	})
	if err != nil {
		log.Printf("[ai] persist assistant turn: %v", err)
	}

	if err := s.history.SetLastAgent(ctx, sessionID, agent.Name); err != nil {
		log.Printf("[ai] set last agent: %v", err)
	}

	metrics.IncAgentTurn(agent.Name)
	log.Printf("[ai][%.1fs] turn done agent=%s", time.Since(start).Seconds(), agent.Name)
	emit(Event{Done: true})

	return &Response{
		Agent:     agent.Name,
		Content:   content,
		Summary:   summary,
		MessageID: saved.ID,
	}, nil
}

// Summarize compresses an answer into the short spoken form.
func (s *AiService) Summarize(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("nothing to summarize")
	}

	ctxLLM, cancel := context.WithTimeout(ctx, summaryTimeout)
	defer cancel()

	start := time.Now()
	summary, err := s.llm.GetCompletion(ctxLLM, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: summarySystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: text},
	}, s.summaryModel, summaryTemperature, summaryMaxTokens)
	metrics.ObserveLLMCall("summary", s.summaryModel, time.Since(start), err)
	if err != nil {
		return "", err
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return fallbackSummary(text), nil
	}
	return summary, nil
}

// buildMessages lays out the prompt: agent persona, recalled facts, tool
// results, conversation so far, current message.
func buildMessages(
	agent agents.Agent,
	recalled []memory.Memory,
	toolBlock string,
	turns []history.Message,
	userText string,
) []openai.ChatCompletionMessage {

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: agent.Prompt},
	}

	if block := buildMemoryBlock(recalled); block != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: block,
		})
	}

	if toolBlock != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: "Tool results for the current request:\n\n" + toolBlock,
		})
	}

	for _, t := range turns {
		content := strings.TrimSpace(t.Content)
		if content == "" {
			continue
		}
		role := openai.ChatMessageRoleUser
		if t.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: content,
		})
	}

	return append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userText,
	})
}
