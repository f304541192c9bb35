package services

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"cropcare-service/internal/models"
	"cropcare-service/internal/repository"
)

const (
	OfficerStatsCacheKey = "cropcare:officer:stats"
	OfficerStatsCacheTTL = 30 * time.Second
	RecentReportsLimit   = 5
)

type IDashboardService interface {
	GetOfficerStats(ctx context.Context) (*models.OfficerStats, error)
	InvalidateStats(ctx context.Context)
}

type DashboardService struct {
	reports repository.IReportRepository
	cache   Cache

	// generation moves on every invalidation so a rebuild that raced with a
	// report change is not written back.
	generation atomic.Uint64
}

func NewDashboardService(reports repository.IReportRepository, cache Cache) *DashboardService {
	if cache == nil {
		cache = NoopCache{}
	}
	return &DashboardService{reports: reports, cache: cache}
}

func (s *DashboardService) GetOfficerStats(ctx context.Context) (*models.OfficerStats, error) {
	var cached models.OfficerStats
	hit, err := s.cache.Get(ctx, OfficerStatsCacheKey, &cached)
	if err != nil {
		slog.Warn("Officer stats cache read failed", "error", err)
	}
	if hit {
		return &cached, nil
	}

	gen := s.generation.Load()
	reports, err := s.reports.GetAll()
	if err != nil {
		return nil, err
	}
	stats := BuildOfficerStats(reports)

	if s.generation.Load() != gen {
		slog.Info("Officer stats changed while rebuilding, skipping cache write")
		return stats, nil
	}
	if err := s.cache.Set(ctx, OfficerStatsCacheKey, stats, OfficerStatsCacheTTL); err != nil {
		slog.Warn("Officer stats cache write failed", "error", err)
	}
	return stats, nil
}

func (s *DashboardService) InvalidateStats(ctx context.Context) {
	s.generation.Add(1)
	if err := s.cache.Delete(ctx, OfficerStatsCacheKey); err != nil {
		slog.Warn("Officer stats cache invalidation failed", "error", err)
	}
}

// BuildOfficerStats aggregates reports kept in creation order. Recent reports
// are the last five created, newest first.
func BuildOfficerStats(reports []models.Report) *models.OfficerStats {
	counts := make(map[string]int)
	for _, r := range reports {
		counts[r.Disease]++
	}

	n := min(RecentReportsLimit, len(reports))
	recent := make([]models.Report, 0, n)
	for i := len(reports) - 1; i >= len(reports)-n; i-- {
		recent = append(recent, reports[i])
	}

	return &models.OfficerStats{
		TotalReports:  len(reports),
		DiseaseCounts: counts,
		RecentReports: recent,
	}
}
