package services

import (
	"fmt"

	"cropcare-service/internal/event"
	"cropcare-service/internal/models"
	"cropcare-service/internal/repository"
)

type IAdvisoryService interface {
	List() ([]models.Advisory, error)
	Create(req models.CreateAdvisoryRequest) (*models.Advisory, error)
	Delete(id string) error
}

type AdvisoryService struct {
	repo       repository.IAdvisoryRepository
	dispatcher event.Dispatcher
}

func NewAdvisoryService(repo repository.IAdvisoryRepository, dispatcher event.Dispatcher) IAdvisoryService {
	return &AdvisoryService{repo: repo, dispatcher: dispatcher}
}

func (s *AdvisoryService) List() ([]models.Advisory, error) {
	return s.repo.GetAll()
}

func (s *AdvisoryService) Create(req models.CreateAdvisoryRequest) (*models.Advisory, error) {
	advisory, err := s.repo.Create(req)
	if err != nil {
		return nil, err
	}
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(event.AdvisoryPublished, "", map[string]any{
			"advisory_id":   advisory.ID,
			"title":         advisory.Title,
			"target_region": advisory.TargetRegion,
			"severity":      advisory.Severity,
		})
	}
	return advisory, nil
}

func (s *AdvisoryService) Delete(id string) error {
	removed, err := s.repo.DeleteByID(id)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("advisory %s: %w", id, models.ErrNotFound)
	}
	return nil
}
