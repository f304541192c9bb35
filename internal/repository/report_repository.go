package repository

import (
	"fmt"
	"time"

	"cropcare-service/internal/database/jsonstore"
	"cropcare-service/internal/models"

	"github.com/google/uuid"
)

const ReportsCollection = "reports"

type IReportRepository interface {
	GetAll() ([]models.Report, error)
	Create(report models.Report) (*models.Report, error)
	DeleteByID(id string) (bool, error)
}

type ReportRepository struct {
	reports *jsonstore.Collection[models.Report]
	now     func() time.Time
}

func NewReportRepository(store *jsonstore.Store) IReportRepository {
	return &ReportRepository{
		reports: jsonstore.Open[models.Report](store, ReportsCollection),
		now:     time.Now,
	}
}

func (r *ReportRepository) GetAll() ([]models.Report, error) {
	return r.reports.List()
}

// Create stamps the report with a time-ordered id and the current time, then
// appends it.
func (r *ReportRepository) Create(report models.Report) (*models.Report, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate report id: %w", err)
	}
	report.ID = id.String()
	report.Timestamp = r.now().UTC()
	if report.Location == "" {
		report.Location = models.UnknownLocation
	}

	if err := r.reports.Append(report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepository) DeleteByID(id string) (bool, error) {
	return r.reports.DeleteWhere(func(rep models.Report) bool { return rep.ID == id })
}
