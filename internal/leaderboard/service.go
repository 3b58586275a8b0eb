// internal/leaderboard/service.go

// Package leaderboard glues the snapshot store, the scoring engine, and the
// Redis cache into the ranked views served over HTTP. Data flows one way:
// load, score, rank, cache. Nothing here writes back to PostgreSQL.
package leaderboard

import (
	"context"
	"time"

	"fleet-backoffice/internal/common/logger"
	"fleet-backoffice/internal/common/metrics"
	"fleet-backoffice/internal/models"
	"fleet-backoffice/internal/scoring"
)

// Snapshotter loads the collections a full recomputation needs.
type Snapshotter interface {
	Leaders(ctx context.Context) ([]models.Leader, error)
	Riders(ctx context.Context) ([]models.Rider, error)
	Leads(ctx context.Context) ([]models.Lead, error)
}

// SnapshotCache stores the ranked result between refreshes.
type SnapshotCache interface {
	GetLeaderboard(ctx context.Context) ([]models.ScoredLeader, bool)
	SetLeaderboard(ctx context.Context, entries []models.ScoredLeader) error
	Invalidate(ctx context.Context) error
}

type Service struct {
	store  Snapshotter
	cache  SnapshotCache
	logger logger.Logger
}

func NewService(store Snapshotter, cache SnapshotCache, log logger.Logger) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		logger: log.WithFields(map[string]interface{}{"component": "leaderboard"}),
	}
}

// Refresh recomputes the full ranking from fresh snapshots and caches it.
// A cache write failure is logged but does not fail the refresh; the ranked
// result is still correct and served.
func (s *Service) Refresh(ctx context.Context) ([]models.ScoredLeader, error) {
	start := time.Now()

	leaders, err := s.store.Leaders(ctx)
	if err != nil {
		return nil, err
	}
	riders, err := s.store.Riders(ctx)
	if err != nil {
		return nil, err
	}
	leads, err := s.store.Leads(ctx)
	if err != nil {
		return nil, err
	}

	scored := scoring.ScoreAll(leaders, riders, leads, nil)
	ranked := scoring.Rank(scored)

	if err := s.cache.SetLeaderboard(ctx, ranked); err != nil {
		s.logger.Warn("leaderboard cache write failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	metrics.LeaderboardRefreshDuration.Observe(time.Since(start).Seconds())
	s.logger.Info("leaderboard refreshed", map[string]interface{}{
		"leaders":  len(ranked),
		"duration": time.Since(start).String(),
	})
	return ranked, nil
}

// Top returns the first n ranked leaders, recomputing on a cache miss.
// n <= 0 returns the full ranking.
func (s *Service) Top(ctx context.Context, n int) ([]models.ScoredLeader, error) {
	ranked, err := s.ranked(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// Podium returns the display ordering for the top-three widget: second
// place first, then first, then third.
func (s *Service) Podium(ctx context.Context) ([]models.ScoredLeader, error) {
	ranked, err := s.ranked(ctx)
	if err != nil {
		return nil, err
	}
	return scoring.PodiumOrder(ranked), nil
}

// Run refreshes on a fixed interval and whenever the change listener
// signals, until ctx is cancelled. Refresh failures are logged and the loop
// keeps going; the next tick retries.
func (s *Service) Run(ctx context.Context, interval time.Duration, changes <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
			if err := s.cache.Invalidate(ctx); err != nil {
				s.logger.Warn("cache invalidation failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
			if _, err := s.Refresh(ctx); err != nil {
				s.logger.Error("refresh after change failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil {
				s.logger.Error("scheduled refresh failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}
}

func (s *Service) ranked(ctx context.Context) ([]models.ScoredLeader, error) {
	if cached, ok := s.cache.GetLeaderboard(ctx); ok {
		return cached, nil
	}
	return s.Refresh(ctx)
}
