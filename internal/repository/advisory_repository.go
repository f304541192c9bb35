package repository

import (
	"fmt"
	"strings"
	"time"

	"cropcare-service/internal/database/jsonstore"
	"cropcare-service/internal/models"

	"github.com/google/uuid"
)

const AdvisoriesCollection = "advisories"

type IAdvisoryRepository interface {
	GetAll() ([]models.Advisory, error)
	Create(req models.CreateAdvisoryRequest) (*models.Advisory, error)
	DeleteByID(id string) (bool, error)
}

type AdvisoryRepository struct {
	advisories *jsonstore.Collection[models.Advisory]
	now        func() time.Time
}

func NewAdvisoryRepository(store *jsonstore.Store) IAdvisoryRepository {
	return &AdvisoryRepository{
		advisories: jsonstore.Open[models.Advisory](store, AdvisoriesCollection),
		now:        time.Now,
	}
}

func (r *AdvisoryRepository) GetAll() ([]models.Advisory, error) {
	return r.advisories.List()
}

// Create prepends the advisory so storage order is newest first.
func (r *AdvisoryRepository) Create(req models.CreateAdvisoryRequest) (*models.Advisory, error) {
	title := strings.TrimSpace(req.Title)
	message := strings.TrimSpace(req.Message)
	if title == "" || message == "" {
		return nil, fmt.Errorf("title and message are required: %w", models.ErrValidation)
	}

	advisory := models.Advisory{
		ID:           uuid.NewString(),
		Title:        title,
		Message:      message,
		TargetRegion: strings.TrimSpace(req.TargetRegion),
		Severity:     req.Severity,
		Date:         r.now().UTC().Format("2006-01-02"),
	}
	if advisory.TargetRegion == "" {
		advisory.TargetRegion = models.DefaultTargetRegion
	}
	if advisory.Severity == "" {
		advisory.Severity = models.SeverityInfo
	}

	if err := r.advisories.Prepend(advisory); err != nil {
		return nil, err
	}
	return &advisory, nil
}

func (r *AdvisoryRepository) DeleteByID(id string) (bool, error) {
	return r.advisories.DeleteWhere(func(a models.Advisory) bool { return a.ID == id })
}
