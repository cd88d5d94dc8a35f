package ports

import (
	"context"
	"io"
)

type S3Service interface {
	ObjectKey(sessionID, filename string) string
	SaveAudio(ctx context.Context, sessionID string, audio io.Reader, filename, contentType string) (string, error)
}
