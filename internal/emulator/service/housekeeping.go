package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/fedauth/internal/emulator/store"
)

const DefaultHousekeepingInterval = time.Hour

// HousekeepingService deletes expired phone sessions, refresh tokens and
// signing keys on a timer.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewHousekeepingService defaults a non-positive interval to
// DefaultHousekeepingInterval.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = DefaultHousekeepingInterval
	}
	return &HousekeepingService{Store: st, Logger: logger, Interval: interval}
}

// Start sweeps once immediately and then every Interval until ctx ends or
// Stop is called. Starting twice is a no-op.
func (s *HousekeepingService) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.loop(ctx, s.done)
	s.Logger.Info("housekeeping started", "interval", s.Interval)
}

// Stop waits for an in-progress sweep. It is safe to call without Start.
func (s *HousekeepingService) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.Logger.Info("housekeeping stopped")
}

func (s *HousekeepingService) loop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		s.Cleanup(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Cleanup runs every sweep once and returns how many succeeded. One
// failing sweep does not skip the rest.
func (s *HousekeepingService) Cleanup(ctx context.Context) int {
	sweeps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"phone_sessions", s.Store.PhoneSessions().DeleteExpiredPhoneSessions},
		{"refresh_tokens", s.Store.RefreshTokens().DeleteExpiredRefreshTokens},
		{"signing_keys", s.Store.SigningKeys().DeleteExpiredSigningKeys},
	}

	start := time.Now()
	ok := 0
	for _, sw := range sweeps {
		if err := sw.run(ctx); err != nil {
			s.Logger.Error("housekeeping sweep failed", "sweep", sw.name, "err", err)
			continue
		}
		ok++
	}
	s.Logger.Debug("housekeeping pass done", "sweeps_ok", ok, "sweeps", len(sweeps), "took", time.Since(start))
	return ok
}
