package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"

	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/agents"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/metrics"
	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/search"
)

const (
	toolTimeout  = 12 * time.Second
	toolResults  = 5
	ragToolLimit = 3
)

// runTools executes the agent's tools against the user query in parallel and
// returns one prompt block with every result that came back. Tool failures
// are reported and skipped, a turn never fails because a tool did.
func (s *AiService) runTools(ctx context.Context, agent agents.Agent, query string) string {
	if len(agent.Tools) == 0 {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, toolTimeout)
	defer cancel()

	blocks := make([]string, len(agent.Tools))
	g, gctx := errgroup.WithContext(ctx)

	for i, tool := range agent.Tools {
		g.Go(func() error {
			block, err := s.runTool(gctx, tool, query)
			if errors.Is(err, search.ErrDisabled) {
				metrics.IncToolDisabled(tool)
				return nil
			}
			metrics.IncToolCall(tool, err)
			if err != nil {
				log.Printf("[ai] tool %s failed: %v", tool, err)
				s.notifier.Notify(gctx, "tools", err,
					fmt.Sprintf("tool %s failed for agent %s", tool, agent.Name))
				return nil
			}
			blocks[i] = block
			return nil
		})
	}
	_ = g.Wait()

	var nonEmpty []string
	for _, b := range blocks {
		if b != "" {
			nonEmpty = append(nonEmpty, b)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}

func (s *AiService) runTool(ctx context.Context, tool, query string) (string, error) {
	switch tool {
	case "news":
		items, err := s.tools.SearchNews(ctx, query, toolResults)
		if err != nil {
			return "", err
		}
		return formatNews(items), nil

	case "jobs":
		items, err := s.tools.SearchJobs(ctx, query, "", toolResults)
		if err != nil {
			return "", err
		}
		return formatJobs(items), nil

	case "recipes":
		items, err := s.tools.SearchRecipes(ctx, query, toolResults)
		if err != nil {
			return "", err
		}
		return formatRecipes(items), nil

	case "products":
		items, err := s.tools.SearchProducts(ctx, query, toolResults)
		if err != nil {
			return "", err
		}
		return formatProducts(items), nil

	case "flights":
		return s.runFlightsTool(ctx, query)

	case "hotels":
		return s.runHotelsTool(ctx, query)

	case "documents":
		chunks, err := s.docs.Query(ctx, query, ragToolLimit)
		if err != nil {
			return "", err
		}
		return formatChunks(chunks), nil

	default:
		return "", fmt.Errorf("unknown tool %q", tool)
	}
}

// flightQuery is what the extraction model pulls out of free text.
type flightQuery struct {
	Departure string `json:"departure"`
	Arrival   string `json:"arrival"`
	Date      string `json:"date"`
}

type hotelQuery struct {
	Location string `json:"location"`
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

// runFlightsTool needs structured parameters, so it asks the model to read
// them out of the query first. Queries without a usable route are skipped.
func (s *AiService) runFlightsTool(ctx context.Context, query string) (string, error) {
	if !s.tools.Enabled() {
		return "", search.ErrDisabled
	}

	var fq flightQuery
	if err := s.extractJSON(ctx, flightExtractionPrompt, query, &fq); err != nil {
		return "", fmt.Errorf("extract flight params: %w", err)
	}
	if fq.Departure == "" || fq.Arrival == "" || !validDate(fq.Date) {
		log.Printf("[ai] flights tool skipped, no usable route in query")
		return "", nil
	}

	items, err := s.tools.SearchFlights(ctx, fq.Departure, fq.Arrival, fq.Date, toolResults)
	if err != nil {
		return "", err
	}
	return formatFlights(items), nil
}

// runHotelsTool extracts the stay; missing dates default to one night
// starting tomorrow.
func (s *AiService) runHotelsTool(ctx context.Context, query string) (string, error) {
	if !s.tools.Enabled() {
		return "", search.ErrDisabled
	}

	var hq hotelQuery
	if err := s.extractJSON(ctx, hotelExtractionPrompt, query, &hq); err != nil {
		return "", fmt.Errorf("extract hotel params: %w", err)
	}
	if hq.Location == "" {
		log.Printf("[ai] hotels tool skipped, no location in query")
		return "", nil
	}
	if !validDate(hq.CheckIn) || !validDate(hq.CheckOut) {
		hq.CheckIn = time.Now().AddDate(0, 0, 1).Format("2006-01-02")
		hq.CheckOut = time.Now().AddDate(0, 0, 2).Format("2006-01-02")
	}

	items, err := s.tools.SearchHotels(ctx, hq.Location, hq.CheckIn, hq.CheckOut, toolResults)
	if err != nil {
		return "", err
	}
	return formatHotels(items), nil
}

const flightExtractionPrompt = `Extract flight search parameters from the user message.
Respond with ONLY a JSON object, no prose, shaped as:
{"departure": "<IATA airport code>", "arrival": "<IATA airport code>", "date": "<YYYY-MM-DD>"}
Use empty strings for anything the message does not state. Resolve city names to their main airport code.`

const hotelExtractionPrompt = `Extract hotel search parameters from the user message.
Respond with ONLY a JSON object, no prose, shaped as:
{"location": "<city or area>", "check_in": "<YYYY-MM-DD>", "check_out": "<YYYY-MM-DD>"}
Use empty strings for anything the message does not state.`

// extractJSON runs a small deterministic completion and decodes its output,
// tolerating markdown fences around the object.
func (s *AiService) extractJSON(ctx context.Context, system, query string, out any) error {
	start := time.Now()
	raw, err := s.llm.GetCompletion(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		{Role: openai.ChatMessageRoleUser, Content: query},
	}, s.chatModel, 0, 128)
	metrics.ObserveLLMCall("extract", s.chatModel, time.Since(start), err)
	if err != nil {
		return err
	}

	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("model returned unparseable JSON: %w", err)
	}
	return nil
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
