package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	shared "github.com/risithcha/nutritrack/pkg"
)

// LocalAdapter keeps blobs under Root/<bucket>/<object> for local development.
type LocalAdapter struct {
	Root string
}

func (a *LocalAdapter) path(bucket, object string) (string, error) {
	clean := filepath.Clean(filepath.Join(a.Root, bucket, object))
	if !strings.HasPrefix(clean, filepath.Clean(a.Root)+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object path %s/%s", bucket, object)
	}
	return clean, nil
}

func (a *LocalAdapter) Write(ctx context.Context, bucket, object string, data []byte) error {
	p, err := a.path(bucket, object)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

func (a *LocalAdapter) Read(ctx context.Context, bucket, object string) ([]byte, error) {
	p, err := a.path(bucket, object)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s/%s", shared.ErrNotFound, bucket, object)
	}
	return data, err
}

// DetectContentType sniffs the MIME type of an uploaded image.
func DetectContentType(data []byte) string {
	return http.DetectContentType(data)
}
