package integration

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/tunecrate/tunecrate/internal/api/domain"
)

// HTTPDownloader fetches direct audio URLs over plain HTTP. It does not
// resolve streaming-site pages; deployments that need that plug in an
// extractor-backed Downloader instead.
type HTTPDownloader struct {
	Client *http.Client

	// MaxBytes caps the response size. Zero means 64 MiB.
	MaxBytes int64
}

const defaultMaxBytes = 64 << 20

func (d *HTTPDownloader) client() *http.Client {
	if d.Client != nil {
		return d.Client
	}
	return &http.Client{Timeout: 2 * time.Minute}
}

func (d *HTTPDownloader) Fetch(ctx context.Context, rawURL string) (domain.Track, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return domain.Track{}, fmt.Errorf("integration: unsupported url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return domain.Track{}, err
	}

	resp, err := d.client().Do(req)
	if err != nil {
		return domain.Track{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Track{}, fmt.Errorf("integration: fetch returned %s", resp.Status)
	}

	limit := d.MaxBytes
	if limit <= 0 {
		limit = defaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return domain.Track{}, err
	}

	filename := path.Base(u.Path)
	if filename == "/" || filename == "." || filename == "" {
		filename = "track.mp3"
	}

	return domain.Track{
		Title:    filename,
		Filename: filename,
		Data:     data,
		// Duration is unknown for raw fetches; the duration constraint
		// only applies to extractor-backed downloaders that report it.
	}, nil
}
