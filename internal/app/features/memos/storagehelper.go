// internal/app/features/memos/storagehelper.go
package memos

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
)

// uploadAudio stores a recording under a unique object key and returns the
// key. Keys are date-bucketed: memos/YYYY/MM/uuid.ext. The extension comes
// from the declared content type so downstream tooling can tell clips apart
// without fetching them.
func uploadAudio(ctx context.Context, store storage.Store, reader io.Reader, contentType string) (string, error) {
	now := time.Now().UTC()
	dateDir := fmt.Sprintf("memos/%04d/%02d", now.Year(), now.Month())
	name := fmt.Sprintf("%s%s", uuid.New().String()[:8], audioExt(contentType))
	path := filepath.ToSlash(filepath.Join(dateDir, name))

	opts := &storage.PutOptions{
		ContentType: contentType,
	}
	if err := store.Put(ctx, path, reader, opts); err != nil {
		return "", fmt.Errorf("failed to upload audio: %w", err)
	}
	return path, nil
}

// audioExt maps a capture content type to a file extension. The capture
// layer records AAC in an MPEG-4 container, so that is the default.
func audioExt(contentType string) string {
	switch contentType {
	case "audio/mp4", "audio/x-m4a", "audio/m4a":
		return ".m4a"
	case "audio/mpeg":
		return ".mp3"
	case "audio/wav", "audio/x-wav":
		return ".wav"
	case "audio/ogg":
		return ".ogg"
	case "audio/webm":
		return ".webm"
	default:
		return ".m4a"
	}
}
