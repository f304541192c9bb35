package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"cropcare-service/internal/event"
	"cropcare-service/internal/models"
	"cropcare-service/internal/repository"
	"cropcare-service/internal/utils"
)

const (
	FallbackPreventiveMeasures = "Consult your local agricultural officer."
	FallbackReason             = "Identified from leaf image analysis."
)

type IIngestionService interface {
	Ingest(ctx context.Context, verdict models.Verdict, imageRef string, dc *models.DetectionContext) models.IngestionResult
	Metrics() IngestionMetrics
}

type IngestionMetrics struct {
	ReportsCreated int64 `json:"reports_created"`
	ReportFailures int64 `json:"report_failures"`
	CropsUpdated   int64 `json:"crops_updated"`
	CropFailures   int64 `json:"crop_failures"`
}

// IngestionService turns a classifier verdict into report and crop
// bookkeeping. Bookkeeping failures are logged and counted, never returned.
type IngestionService struct {
	users      repository.IUserRepository
	reports    repository.IReportRepository
	dispatcher event.Dispatcher
	stats      StatsInvalidator
	recorder   OutcomeRecorder

	reportsCreated atomic.Int64
	reportFailures atomic.Int64
	cropsUpdated   atomic.Int64
	cropFailures   atomic.Int64
}

func NewIngestionService(
	users repository.IUserRepository,
	reports repository.IReportRepository,
	dispatcher event.Dispatcher,
	stats StatsInvalidator,
) *IngestionService {
	return &IngestionService{
		users:      users,
		reports:    reports,
		dispatcher: dispatcher,
		stats:      stats,
	}
}

func (s *IngestionService) RecordWith(r OutcomeRecorder) {
	s.recorder = r
}

func (s *IngestionService) Ingest(ctx context.Context, verdict models.Verdict, imageRef string, dc *models.DetectionContext) models.IngestionResult {
	result := models.IngestionResult{
		Verdict:       verdict,
		ReportOutcome: models.Skipped(),
		CropOutcome:   models.Skipped(),
	}
	dc = normalizeContext(dc)
	log := slog.With("operation", "IngestionService.Ingest", "status", verdict.Status, "image", imageRef)

	switch verdict.Status {
	case models.VerdictUnhealthy:
		report, err := s.recordReport(ctx, verdict, imageRef, dc)
		if err != nil {
			s.reportFailures.Add(1)
			log.Error("Failed to record disease report", "error", err)
			result.ReportOutcome = models.Failed(err)
		} else {
			s.reportsCreated.Add(1)
			result.Report = report
			result.ReportOutcome = models.Applied()
		}

		update := models.InfectedUpdate(
			verdict.Detected,
			orFallback(verdict.PreventiveMeasures, FallbackPreventiveMeasures),
			orFallback(verdict.Reason, FallbackReason),
			imageRef,
		)
		result.CropOutcome = s.applyCropUpdate(dc, update, log)

	case models.VerdictHealthy:
		result.CropOutcome = s.applyCropUpdate(dc, models.HealthyUpdate(), log)
		if result.CropOutcome.Status == models.OutcomeApplied && s.dispatcher != nil {
			s.dispatcher.Dispatch(event.CropHealthRestored, dc.Phone, map[string]any{
				"crop_id":    dc.CropID,
				"crop_index": dc.CropIndex,
			})
		}

	default:
		log.Info("Verdict status carries no bookkeeping")
	}

	if s.recorder != nil {
		s.recorder.RecordBookkeeping("report", result.ReportOutcome.Status)
		s.recorder.RecordBookkeeping("crop", result.CropOutcome.Status)
	}
	return result
}

func (s *IngestionService) recordReport(ctx context.Context, verdict models.Verdict, imageRef string, dc *models.DetectionContext) (*models.Report, error) {
	report, err := s.reports.Create(models.Report{
		Disease:            verdict.Detected,
		Confidence:         verdict.Confidence,
		Location:           s.resolveLocation(dc),
		Image:              imageRef,
		Reason:             verdict.Reason,
		PreventiveMeasures: verdict.PreventiveMeasures,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	if s.stats != nil {
		s.stats.InvalidateStats(ctx)
	}
	if s.dispatcher != nil {
		phone := ""
		if dc != nil {
			phone = dc.Phone
		}
		s.dispatcher.Dispatch(event.DiseaseDetected, phone, map[string]any{
			"report_id":  report.ID,
			"disease":    report.Disease,
			"confidence": report.Confidence,
			"location":   report.Location,
		})
	}
	return report, nil
}

// resolveLocation snapshots the farmer's location at report time.
func (s *IngestionService) resolveLocation(dc *models.DetectionContext) string {
	if dc == nil || dc.Phone == "" {
		return models.UnknownLocation
	}
	user, err := s.users.GetByPhone(dc.Phone)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			slog.Warn("Failed to look up reporting user, using unknown location", "phone", dc.Phone, "error", err)
		}
		return models.UnknownLocation
	}
	if user.Location == nil || strings.TrimSpace(*user.Location) == "" {
		return models.UnknownLocation
	}
	return *user.Location
}

// applyCropUpdate skips contexts that address no crop, and fails contexts
// whose crop index was malformed.
func (s *IngestionService) applyCropUpdate(dc *models.DetectionContext, update models.CropUpdate, log *slog.Logger) models.Outcome {
	if dc.Complete() {
		return s.mutateCrop(dc, update, log)
	}
	if dc != nil && dc.CropIndexErr != nil {
		s.cropFailures.Add(1)
		log.Warn("Crop health update not applied, malformed crop index",
			"phone", dc.Phone,
			"error", dc.CropIndexErr,
		)
		return models.Failed(dc.CropIndexErr)
	}
	return models.Skipped()
}

func (s *IngestionService) mutateCrop(dc *models.DetectionContext, update models.CropUpdate, log *slog.Logger) models.Outcome {
	var (
		ok  bool
		err error
	)
	if dc.CropID != "" {
		ok, err = s.users.MutateCropByID(dc.Phone, dc.CropID, update)
	} else {
		ok, err = s.users.MutateCrop(dc.Phone, *dc.CropIndex, update)
	}

	if err == nil && !ok {
		err = fmt.Errorf("crop for %s: %w", dc.Phone, models.ErrNotFound)
	}
	if err != nil {
		s.cropFailures.Add(1)
		log.Warn("Crop health update not applied",
			"phone", dc.Phone,
			"crop_id", dc.CropID,
			"crop_index", dc.CropIndex,
			"error", err,
		)
		return models.Failed(err)
	}
	s.cropsUpdated.Add(1)
	return models.Applied()
}

func (s *IngestionService) Metrics() IngestionMetrics {
	return IngestionMetrics{
		ReportsCreated: s.reportsCreated.Load(),
		ReportFailures: s.reportFailures.Load(),
		CropsUpdated:   s.cropsUpdated.Load(),
		CropFailures:   s.cropFailures.Load(),
	}
}

func normalizeContext(dc *models.DetectionContext) *models.DetectionContext {
	if dc == nil {
		return nil
	}
	out := *dc
	out.Phone = utils.NormalizePhone(out.Phone)
	out.CropID = strings.TrimSpace(out.CropID)
	return &out
}

func orFallback(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
