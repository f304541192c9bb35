package services

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"time"

	"cropcare-service/internal/classifier"
	"cropcare-service/internal/models"
)

type IDetectionService interface {
	Detect(ctx context.Context, imagePath string, dc *models.DetectionContext) (*models.IngestionResult, error)
}

// DetectionService classifies a stored upload and feeds the verdict into
// ingestion. The image reference handed to ingestion is the stored file name.
type DetectionService struct {
	classifier classifier.Classifier
	ingestion  IIngestionService
	archive    ImageArchive
	jobs       JobSubmitter
}

func NewDetectionService(c classifier.Classifier, ingestion IIngestionService, archive ImageArchive, jobs JobSubmitter) *DetectionService {
	return &DetectionService{
		classifier: c,
		ingestion:  ingestion,
		archive:    archive,
		jobs:       jobs,
	}
}

func (s *DetectionService) Detect(ctx context.Context, imagePath string, dc *models.DetectionContext) (*models.IngestionResult, error) {
	imageRef := filepath.Base(imagePath)

	verdict, err := s.classifier.Classify(ctx, imagePath)
	if err == nil && verdict == nil {
		err = fmt.Errorf("%w: classifier returned no verdict", models.ErrUpstreamFailure)
	}
	if err != nil {
		slog.Error("Classifier failed, discarding upload", "image", imageRef, "error", err)
		if rmErr := os.Remove(imagePath); rmErr != nil && !os.IsNotExist(rmErr) {
			slog.Warn("Failed to remove rejected upload", "image", imageRef, "error", rmErr)
		}
		return nil, err
	}

	s.archiveImage(imagePath, imageRef)

	result := s.ingestion.Ingest(ctx, *verdict, imageRef, dc)
	return &result, nil
}

// archiveImage mirrors the upload to object storage in the background.
func (s *DetectionService) archiveImage(imagePath, imageRef string) {
	if s.archive == nil || s.jobs == nil {
		return
	}
	contentType := mime.TypeByExtension(filepath.Ext(imageRef))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	job := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		return s.archive.ArchiveImage(ctx, imageRef, imagePath, contentType)
	}
	if !s.jobs.TrySubmitJob(job) {
		slog.Warn("Image archive skipped, working pool unavailable", "image", imageRef)
	}
}
