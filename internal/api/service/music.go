package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tunecrate/tunecrate/internal/api/domain"
	"github.com/tunecrate/tunecrate/internal/api/store"
	"github.com/tunecrate/tunecrate/pkg/slogx"
)

const (
	// OperationTTL bounds how long clients can poll a download operation.
	OperationTTL = 10 * time.Minute

	// DefaultMaxTrackMinutes rejects anything longer than a typical song.
	DefaultMaxTrackMinutes = 16.0

	// fetchTimeout bounds one background fetch-and-store cycle.
	fetchTimeout = 5 * time.Minute
)

// Downloader fetches the audio track behind a URL. Implementations wrap an
// external extractor; the service only sees the resulting Track.
type Downloader interface {
	Fetch(ctx context.Context, url string) (domain.Track, error)
}

// ObjectStore persists a fetched file and returns a link clients can
// download it from.
type ObjectStore interface {
	Put(ctx context.Context, filename string, data []byte) (link string, err error)
}

// MusicService proxies audio downloads. StartDownload returns immediately
// with an operation id; the fetch runs in the background and clients poll
// GetOperation until the status leaves pending or the record expires.
type MusicService struct {
	Operations store.Operations
	Downloader Downloader
	Objects    ObjectStore

	// MaxTrackMinutes overrides DefaultMaxTrackMinutes when > 0.
	MaxTrackMinutes float64
}

func (s *MusicService) maxMinutes() float64 {
	if s.MaxTrackMinutes > 0 {
		return s.MaxTrackMinutes
	}
	return DefaultMaxTrackMinutes
}

// StartDownload registers a pending operation and kicks off the fetch.
func (s *MusicService) StartDownload(ctx context.Context, url string) (string, error) {
	id := uuid.NewString()
	if err := s.Operations.Create(ctx, id, OperationTTL); err != nil {
		return "", err
	}

	l := slogx.FromContext(ctx)
	go s.fetch(l, id, url)

	l.Info("download started", slog.String("operation_id", id))
	return id, nil
}

// fetch runs detached from the request; it carries the request logger but
// not the request context, which is gone by the time we run.
func (s *MusicService) fetch(l *slog.Logger, id, url string) {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	track, err := s.Downloader.Fetch(ctx, url)
	if err != nil {
		l.Error("download fetch failed", slog.String("operation_id", id), slog.Any("error", err))
		s.finishWith(ctx, l, id, domain.OperationFailed)
		return
	}

	if track.DurationMinutes > s.maxMinutes() {
		s.finishWith(ctx, l, id, domain.OperationTooLong)
		return
	}

	link, err := s.Objects.Put(ctx, track.Filename, track.Data)
	if err != nil {
		l.Error("download store failed", slog.String("operation_id", id), slog.Any("error", err))
		s.finishWith(ctx, l, id, domain.OperationFailed)
		return
	}

	if err := s.Operations.Complete(ctx, id, track.Title, track.Filename, link); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			l.Error("download complete failed", slog.String("operation_id", id), slog.Any("error", err))
		}
	}
}

func (s *MusicService) finishWith(ctx context.Context, l *slog.Logger, id string, status domain.OperationStatus) {
	if err := s.Operations.Fail(ctx, id, status); err != nil && !errors.Is(err, store.ErrNotFound) {
		l.Error("download status update failed", slog.String("operation_id", id), slog.Any("error", err))
	}
}

// GetOperation reports the state of a download. Pending operations surface
// ErrFileNotReady, terminal failures their respective errors, and a ready
// operation returns the full record.
func (s *MusicService) GetOperation(ctx context.Context, id string) (domain.DownloadOperation, error) {
	op, err := s.Operations.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.DownloadOperation{}, domain.ErrOperationNotFound
		}
		return domain.DownloadOperation{}, err
	}

	switch op.Status {
	case domain.OperationPending:
		return op, domain.ErrFileNotReady
	case domain.OperationTooLong:
		return op, domain.ErrTrackTooLong
	case domain.OperationFailed:
		return op, domain.ErrOperationNotFound
	default:
		return op, nil
	}
}
