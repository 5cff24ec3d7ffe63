package integration

import (
	"context"
	"os"
	"path/filepath"
)

// FSObjectStore keeps fetched files on local disk and serves them under
// BasePath. Swap for an S3-backed implementation in deployments that need
// durable storage.
type FSObjectStore struct {
	// Dir is the directory files are written into. Created on first use.
	Dir string

	// BasePath prefixes the returned link, e.g. "/music/files".
	BasePath string
}

func (s *FSObjectStore) Put(_ context.Context, filename string, data []byte) (string, error) {
	if err := os.MkdirAll(s.Dir, 0750); err != nil {
		return "", err
	}

	// filepath.Base guards against path traversal in extractor-supplied names.
	name := filepath.Base(filename)
	if err := os.WriteFile(filepath.Join(s.Dir, name), data, 0640); err != nil {
		return "", err
	}
	return s.BasePath + "/" + name, nil
}
