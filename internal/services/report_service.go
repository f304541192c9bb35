package services

import (
	"context"
	"fmt"

	"cropcare-service/internal/models"
	"cropcare-service/internal/repository"
)

type IReportService interface {
	List() ([]models.Report, error)
	Delete(ctx context.Context, id string) error
}

type ReportService struct {
	repo  repository.IReportRepository
	stats StatsInvalidator
}

func NewReportService(repo repository.IReportRepository, stats StatsInvalidator) IReportService {
	return &ReportService{repo: repo, stats: stats}
}

func (s *ReportService) List() ([]models.Report, error) {
	return s.repo.GetAll()
}

func (s *ReportService) Delete(ctx context.Context, id string) error {
	removed, err := s.repo.DeleteByID(id)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("report %s: %w", id, models.ErrNotFound)
	}
	if s.stats != nil {
		s.stats.InvalidateStats(ctx)
	}
	return nil
}
