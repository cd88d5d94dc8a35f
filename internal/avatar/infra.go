package avatar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultBaseURL  = "https://api.anam.ai"
	defaultAvatarID = "30fa96d0-26c4-4e55-94a0-517025942e18"
	defaultVoiceID  = "6bfbe25a-979d-40f3-a92b-5394170af54b"
	defaultLLMID    = "CUSTOMER_CLIENT_V1"

	sessionLengthSeconds = 600
)

type Client struct {
	apiKey   string
	baseURL  string
	avatarID string
	voiceID  string
	client   *http.Client
}

func NewClient() *Client {
	c := &Client{
		apiKey:   strings.TrimSpace(os.Getenv("ANAM_API_KEY")),
		baseURL:  defaultBaseURL,
		avatarID: defaultAvatarID,
		voiceID:  defaultVoiceID,
		client:   &http.Client{Timeout: 30 * time.Second},
	}

	if v := os.Getenv("ANAM_API_BASE_URL"); v != "" {
		c.baseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("ANAM_AVATAR_ID"); v != "" {
		c.avatarID = v
	}
	if v := os.Getenv("ANAM_VOICE_ID"); v != "" {
		c.voiceID = v
	}

	if c.apiKey == "" {
		log.Println("[avatar] ANAM_API_KEY is not set, serving demo sessions")
	}
	return c
}

func (c *Client) Enabled() bool { return c.apiKey != "" }

type personaConfig struct {
	Name                    string `json:"name"`
	AvatarID                string `json:"avatarId"`
	VoiceID                 string `json:"voiceId"`
	LLMID                   string `json:"llmId"`
	SystemPrompt            string `json:"systemPrompt"`
	MaxSessionLengthSeconds int    `json:"maxSessionLengthSeconds"`
}

type sessionTokenRequest struct {
	PersonaConfig personaConfig `json:"personaConfig"`
}

type sessionTokenResponse struct {
	SessionToken string `json:"sessionToken"`
	SessionID    string `json:"sessionId"`
}

func (c *Client) CreateSession(ctx context.Context, personaName, systemPrompt string) (Session, error) {
	personaName = strings.TrimSpace(personaName)
	if personaName == "" {
		personaName = "AI Assistant"
	}
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = fmt.Sprintf("You are %s, a helpful AI assistant. "+
			"Provide accurate, conversational responses. "+
			"Keep your answers concise and engaging.", personaName)
	}

	if !c.Enabled() {
		return c.demoSession(personaName), nil
	}

	body, err := json.Marshal(sessionTokenRequest{PersonaConfig: personaConfig{
		Name:                    personaName,
		AvatarID:                c.avatarID,
		VoiceID:                 c.voiceID,
		LLMID:                   defaultLLMID,
		SystemPrompt:            systemPrompt,
		MaxSessionLengthSeconds: sessionLengthSeconds,
	}})
	if err != nil {
		return Session{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/auth/session-token", bytes.NewReader(body))
	if err != nil {
		return Session{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	// the avatar is decoration, a dead provider must not break the chat
	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("[avatar] session token request failed, serving demo: %v", err)
		return c.demoSession(personaName), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		log.Printf("[avatar] anam status %d: %s, serving demo", resp.StatusCode, string(raw))
		return c.demoSession(personaName), nil
	}

	var out sessionTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Session{}, fmt.Errorf("decode anam response: %w", err)
	}

	return Session{
		SessionToken: out.SessionToken,
		SessionID:    out.SessionID,
		PersonaName:  personaName,
		AvatarID:     c.avatarID,
		VoiceID:      c.voiceID,
	}, nil
}

func (c *Client) demoSession(personaName string) Session {
	slug := strings.ReplaceAll(strings.ToLower(personaName), " ", "-")
	return Session{
		SessionToken: "demo-token-" + slug,
		SessionID:    "demo-session-" + slug,
		PersonaName:  personaName,
		AvatarID:     c.avatarID,
		VoiceID:      c.voiceID,
		Demo:         true,
	}
}

func (c *Client) EndSession(ctx context.Context, sessionID string) error {
	if !c.Enabled() || strings.HasPrefix(sessionID, "demo-") {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.baseURL+"/v1/sessions/"+sessionID, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("end avatar session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("anam status %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}
