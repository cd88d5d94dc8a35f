package ai

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

const (
	// DefaultChatModel answers chat turns, routing and summaries.
	DefaultChatModel = "llama-3.1-8b-instant"

	defaultSTTModel = "whisper-large-v3"
	defaultTTSModel = "playai-tts"
	defaultTTSVoice = "Fritz-PlayAI"

	// defaultRPS keeps bursts inside the provider's request-per-minute cap.
	defaultRPS = 2
)

type GroqClient struct {
	client   *openai.Client
	limiter  *rate.Limiter
	sttModel string
	ttsModel string
	ttsVoice string
}

func NewGroqClient() *GroqClient {
	apiKey := strings.TrimSpace(os.Getenv("GROQ_API"))
	if apiKey == "" {
		log.Fatal("GROQ_API not set")
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = groqBaseURL

	rps := float64(defaultRPS)
	if raw := os.Getenv("GROQ_RPS"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			log.Fatalf("invalid GROQ_RPS %q", raw)
		}
		rps = parsed
	}

	return &GroqClient{
		client:   openai.NewClientWithConfig(cfg),
		limiter:  rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		sttModel: envOr("GROQ_STT_MODEL", defaultSTTModel),
		ttsModel: envOr("GROQ_TTS_MODEL", defaultTTSModel),
		ttsVoice: envOr("GROQ_TTS_VOICE", defaultTTSVoice),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (c *GroqClient) GetCompletion(ctx context.Context, messages []openai.ChatCompletionMessage, model string, temperature float32, maxTokens int) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	// the client drops a zero temperature from the payload, which would fall
	// back to the provider default instead of greedy decoding
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// Transcribe turns spoken audio into text. filename only carries the format
// hint the provider requires.
func (c *GroqClient) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	if filename == "" {
		filename = "audio.wav"
	}

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.sttModel,
		Reader:   audio,
		FilePath: filename,
		Format:   openai.AudioResponseFormatText,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}

// Synthesize renders text as spoken mp3 audio.
func (c *GroqClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(c.ttsModel),
		Input:          text,
		Voice:          openai.SpeechVoice(c.ttsVoice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read speech response: %w", err)
	}
	return audio, nil
}
