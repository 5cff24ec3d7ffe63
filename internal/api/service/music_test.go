package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tunecrate/tunecrate/internal/api/domain"
)

type fakeDownloader struct {
	track domain.Track
	err   error
}

func (d *fakeDownloader) Fetch(context.Context, string) (domain.Track, error) {
	return d.track, d.err
}

type fakeObjectStore struct {
	link string
	err  error
}

func (o *fakeObjectStore) Put(_ context.Context, filename string, _ []byte) (string, error) {
	if o.err != nil {
		return "", o.err
	}
	return o.link + "/" + filename, nil
}

func newMusic(e *env, d Downloader, o ObjectStore) *MusicService {
	return &MusicService{
		Operations: e.redis.Operations(),
		Downloader: d,
		Objects:    o,
	}
}

// waitFor polls until the operation leaves pending or the deadline hits.
func waitFor(t *testing.T, svc *MusicService, id string) (domain.DownloadOperation, error) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		op, err := svc.GetOperation(context.Background(), id)
		if !errors.Is(err, domain.ErrFileNotReady) {
			return op, err
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("operation never left pending")
	return domain.DownloadOperation{}, nil
}

func TestStartDownloadReady(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	svc := newMusic(e,
		&fakeDownloader{track: domain.Track{
			Title:           "Some Track",
			Filename:        "some-track.mp3",
			DurationMinutes: 3.5,
			Data:            []byte("audio"),
		}},
		&fakeObjectStore{link: "/music/files"},
	)

	id, err := svc.StartDownload(context.Background(), "https://example.com/watch?v=abc")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	op, err := waitFor(t, svc, id)
	require.NoError(t, err)
	require.Equal(t, domain.OperationReady, op.Status)
	require.Equal(t, "Some Track", op.Title)
	require.Equal(t, "some-track.mp3", op.Filename)
	require.Equal(t, "/music/files/some-track.mp3", op.Link)
}

func TestStartDownloadTooLong(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	svc := newMusic(e,
		&fakeDownloader{track: domain.Track{
			Title:           "Full Album",
			Filename:        "album.mp3",
			DurationMinutes: 74.0,
		}},
		&fakeObjectStore{link: "/music/files"},
	)

	id, err := svc.StartDownload(context.Background(), "https://example.com/watch?v=album")
	require.NoError(t, err)

	_, err = waitFor(t, svc, id)
	require.ErrorIs(t, err, domain.ErrTrackTooLong)
}

func TestStartDownloadFetchFails(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	svc := newMusic(e,
		&fakeDownloader{err: errors.New("extractor exploded")},
		&fakeObjectStore{link: "/music/files"},
	)

	id, err := svc.StartDownload(context.Background(), "https://example.com/watch?v=bad")
	require.NoError(t, err)

	_, err = waitFor(t, svc, id)
	require.ErrorIs(t, err, domain.ErrOperationNotFound)
}

func TestStartDownloadStoreFails(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	svc := newMusic(e,
		&fakeDownloader{track: domain.Track{Filename: "x.mp3", DurationMinutes: 1}},
		&fakeObjectStore{err: errors.New("bucket gone")},
	)

	id, err := svc.StartDownload(context.Background(), "https://example.com/watch?v=x")
	require.NoError(t, err)

	_, err = waitFor(t, svc, id)
	require.ErrorIs(t, err, domain.ErrOperationNotFound)
}

func TestGetOperationUnknown(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	svc := newMusic(e, &fakeDownloader{}, &fakeObjectStore{})

	_, err := svc.GetOperation(context.Background(), "no-such-operation")
	require.ErrorIs(t, err, domain.ErrOperationNotFound)
}

func TestGetOperationPending(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	svc := newMusic(e, &fakeDownloader{}, &fakeObjectStore{})

	require.NoError(t, e.redis.Operations().Create(context.Background(), "op-1", time.Minute))

	op, err := svc.GetOperation(context.Background(), "op-1")
	require.ErrorIs(t, err, domain.ErrFileNotReady)
	require.Equal(t, domain.OperationPending, op.Status)
}

func TestCustomDurationLimit(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	svc := newMusic(e,
		&fakeDownloader{track: domain.Track{Filename: "long.mp3", DurationMinutes: 20}},
		&fakeObjectStore{link: "/music/files"},
	)
	svc.MaxTrackMinutes = 30

	id, err := svc.StartDownload(context.Background(), "https://example.com/watch?v=long")
	require.NoError(t, err)

	op, err := waitFor(t, svc, id)
	require.NoError(t, err)
	require.Equal(t, domain.OperationReady, op.Status)
}
