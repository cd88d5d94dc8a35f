package avatar

import "context"

// Session is what the web client needs to start the embedded avatar player.
type Session struct {
	SessionToken string `json:"session_token"`
	SessionID    string `json:"session_id,omitempty"`
	PersonaName  string `json:"persona_name"`
	AvatarID     string `json:"avatar_id"`
	VoiceID      string `json:"voice_id"`
	Demo         bool   `json:"demo"`
}

type Service interface {
	Enabled() bool
	// CreateSession issues a short-lived persona session token. Without an
	// API key (or when the provider is down) it degrades to a demo session
	// so the UI still renders.
	CreateSession(ctx context.Context, personaName, systemPrompt string) (Session, error)
	EndSession(ctx context.Context, sessionID string) error
}
