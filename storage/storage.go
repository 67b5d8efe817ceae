// storage.go - Object storage for uploaded resources

package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ObjectStore keeps uploaded files and returns the public URL of each.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// NewKey builds a collision-free object key that keeps the file extension:
// 2026/10/6f1c...e2.png
func NewKey(filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 10 {
		ext = ""
	}
	return path.Join(fmt.Sprintf("%04d/%02d", now.Year(), int(now.Month())), uuid.NewString()+ext)
}

// MediaType groups a MIME type into image, video, audio or other.
func MediaType(mime string) string {
	for _, kind := range []string{"image", "video", "audio"} {
		if strings.HasPrefix(mime, kind+"/") {
			return kind
		}
	}
	return "other"
}

func joinURL(base, key string) string {
	return strings.TrimSuffix(base, "/") + "/" + key
}
