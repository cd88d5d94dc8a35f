package domain

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/ports"
)

type s3Service struct {
	client ports.S3Client
}

func NewS3Service(client ports.S3Client) ports.S3Service {
	return &s3Service{client: client}
}

// ObjectKey — bucket path for a spoken-reply clip
func (s *s3Service) ObjectKey(sessionID, filename string) string {
	date := time.Now().Format("2006-01-02")
	clean := filepath.Base(filename)
	return fmt.Sprintf("%s/%s/%s", sessionID, date, clean)
}

func (s *s3Service) SaveAudio(
	ctx context.Context,
	sessionID string,
	audio io.Reader,
	filename,
	contentType string,
) (string, error) {

	if sessionID == "" {
		return "", fmt.Errorf("sessionID required")
	}

	key := s.ObjectKey(sessionID, filename)

	// size = -1, the client buffers and measures
	return s.client.PutObject(ctx, key, audio, -1, contentType)
}
