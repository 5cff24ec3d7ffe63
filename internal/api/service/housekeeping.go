package service

import (
	"context"
	"log/slog"
	"time"
)

// HousekeepingService periodically prunes expired session records so the
// registry does not grow with abandoned logins. Download operations and
// verification codes expire on their own via key TTLs and need no sweeping.
type HousekeepingService struct {
	Auth     *AuthService
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates the worker. If interval is 0 or negative,
// defaults to 1 hour.
func NewHousekeepingService(auth *AuthService, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Auth:     auth,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the worker, blocking until any in-progress
// sweep finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run a sweep immediately on startup
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) sweep() {
	ctx := context.Background()

	pruned, err := s.Auth.PruneExpired(ctx)
	if err != nil {
		s.Logger.Error("session prune failed", "error", err)
		return
	}
	s.Logger.Info("session prune completed", "pruned", pruned)
}
