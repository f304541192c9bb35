package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cropcare-service/internal/models"
	"cropcare-service/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeUpload(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("jpeg bytes"), 0644))
	return path
}

func TestDetect_ClassifiesIngestsAndArchives(t *testing.T) {
	store := newTestStore(t)
	users := repository.NewUserRepository(store)
	reports := repository.NewReportRepository(store)
	ingestion := NewIngestionService(users, reports, &fakeDispatcher{}, nil)
	cls := &fakeClassifier{verdict: &models.Verdict{Status: models.VerdictUnhealthy, Detected: "Apple Scab", Confidence: 0.6}}
	archive := &fakeArchive{}
	svc := NewDetectionService(cls, ingestion, archive, inlineJobs{})

	path := writeUpload(t, "1700000000-leaf.jpg")
	result, err := svc.Detect(context.Background(), path, nil)
	require.NoError(t, err)

	assert.Equal(t, "Apple Scab", result.Verdict.Detected)
	require.NotNil(t, result.Report)
	assert.Equal(t, "1700000000-leaf.jpg", result.Report.Image, "report stores the file name reference")
	assert.Equal(t, []string{"1700000000-leaf.jpg"}, archive.objects)
}

func TestDetect_ClassifierFailureMutatesNothing(t *testing.T) {
	store := newTestStore(t)
	reports := repository.NewReportRepository(store)
	ingestion := NewIngestionService(repository.NewUserRepository(store), reports, nil, nil)
	cls := &fakeClassifier{err: errors.Join(models.ErrUpstreamFailure, errors.New("exit status 1"))}
	archive := &fakeArchive{}
	svc := NewDetectionService(cls, ingestion, archive, inlineJobs{})

	path := writeUpload(t, "leaf.jpg")
	result, err := svc.Detect(context.Background(), path, nil)

	assert.Nil(t, result)
	assert.True(t, errors.Is(err, models.ErrUpstreamFailure))
	all, _ := reports.GetAll()
	assert.Empty(t, all)
	assert.Empty(t, archive.objects)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "rejected upload is removed")
}

func TestDetect_WithoutArchiveStillWorks(t *testing.T) {
	store := newTestStore(t)
	ingestion := NewIngestionService(repository.NewUserRepository(store), repository.NewReportRepository(store), nil, nil)
	cls := &fakeClassifier{verdict: &models.Verdict{Status: models.VerdictHealthy, Detected: "Healthy Corn"}}
	svc := NewDetectionService(cls, ingestion, nil, nil)

	result, err := svc.Detect(context.Background(), writeUpload(t, "corn.png"), nil)
	require.NoError(t, err)
	assert.Equal(t, models.VerdictHealthy, result.Verdict.Status)
}
