package repository

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"cropcare-service/internal/database/jsonstore"
	"cropcare-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

func newTestStore(t *testing.T) *jsonstore.Store {
	t.Helper()
	store, err := jsonstore.NewStore(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	return store
}

func strPtr(s string) *string { return &s }

func registerFarmer(t *testing.T, repo IUserRepository, phone string, crops ...string) *models.User {
	t.Helper()
	user := models.User{Phone: phone, Name: "Ravi", Location: strPtr("Nashik")}
	for _, c := range crops {
		user.Crops = append(user.Crops, models.Crop{Name: c})
	}
	created, err := repo.Create(user)
	require.NoError(t, err)
	return created
}

// ============================================================================
// TEST SUITE 1: USERS
// ============================================================================

func TestUserCreate_AssignsDefaults(t *testing.T) {
	repo := NewUserRepository(newTestStore(t))

	user := registerFarmer(t, repo, "9876543210", "Tomato")

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, models.RoleFarmer, user.Role, "role defaults to farmer")
	assert.False(t, user.JoinedAt.IsZero())
	require.Len(t, user.Crops, 1)
	assert.Equal(t, models.CropHealthy, user.Crops[0].Health)
	assert.NotEmpty(t, user.Crops[0].ID, "crops get a stable id")
}

func TestUserCreate_DuplicatePhoneConflictsAndLeavesStoreUnchanged(t *testing.T) {
	store := newTestStore(t)
	repo := NewUserRepository(store)
	registerFarmer(t, repo, "9876543210")

	path := filepath.Join(store.Dir(), "users.json")
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = repo.Create(models.User{Phone: "9876543210", Name: "Someone Else"})
	assert.True(t, errors.Is(err, models.ErrConflict))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUserCreate_MissingFieldsIsValidationError(t *testing.T) {
	repo := NewUserRepository(newTestStore(t))

	_, err := repo.Create(models.User{Name: "No Phone"})
	assert.True(t, errors.Is(err, models.ErrValidation))

	_, err = repo.Create(models.User{Phone: "9876543210"})
	assert.True(t, errors.Is(err, models.ErrValidation))

	_, err = repo.Create(models.User{Phone: "9876543210", Name: "x", Role: "admin"})
	assert.True(t, errors.Is(err, models.ErrValidation), "unknown role rejected")
}

func TestGetByPhone(t *testing.T) {
	repo := NewUserRepository(newTestStore(t))
	registerFarmer(t, repo, "9876543210")

	user, err := repo.GetByPhone("9876543210")
	require.NoError(t, err)
	assert.Equal(t, "Nashik", *user.Location)

	_, err = repo.GetByPhone("0000000000")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

// ============================================================================
// TEST SUITE 2: CROP MUTATION
// ============================================================================

func TestMutateCrop_ShallowMergeKeepsOtherFields(t *testing.T) {
	repo := NewUserRepository(newTestStore(t))
	registerFarmer(t, repo, "9876543210", "Tomato")

	ok, err := repo.MutateCrop("9876543210", 0, models.InfectedUpdate("Early Blight", "Rotate crops", "Fungus", "leaf.jpg"))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.MutateCrop("9876543210", 0, models.CropUpdate{Name: models.Value("Cherry Tomato")})
	require.NoError(t, err)
	require.True(t, ok)

	user, _ := repo.GetByPhone("9876543210")
	crop := user.Crops[0]
	assert.Equal(t, "Cherry Tomato", crop.Name)
	assert.Equal(t, models.CropInfected, crop.Health, "unset fields stay untouched")
	assert.Equal(t, "Early Blight", *crop.DiseaseName)
	assert.Equal(t, "leaf.jpg", *crop.ImageURL)
}

func TestMutateCrop_IsIdempotent(t *testing.T) {
	store := newTestStore(t)
	repo := NewUserRepository(store)
	registerFarmer(t, repo, "9876543210", "Tomato")
	update := models.InfectedUpdate("Leaf Mold", "Ventilate", "Humidity", "a.jpg")

	_, err := repo.MutateCrop("9876543210", 0, update)
	require.NoError(t, err)
	once, _ := repo.GetByPhone("9876543210")

	_, err = repo.MutateCrop("9876543210", 0, update)
	require.NoError(t, err)
	twice, _ := repo.GetByPhone("9876543210")

	assert.Equal(t, once.Crops, twice.Crops)
}

func TestMutateCrop_UnknownUserOrIndexReturnsFalse(t *testing.T) {
	repo := NewUserRepository(newTestStore(t))
	registerFarmer(t, repo, "9876543210", "Tomato")

	ok, err := repo.MutateCrop("0000000000", 0, models.HealthyUpdate())
	assert.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.MutateCrop("9876543210", 5, models.HealthyUpdate())
	assert.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.MutateCrop("9876543210", -1, models.HealthyUpdate())
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestMutateCrop_HealthyResetClearsDiseaseFields(t *testing.T) {
	repo := NewUserRepository(newTestStore(t))
	registerFarmer(t, repo, "9876543210", "Potato")
	_, err := repo.MutateCrop("9876543210", 0, models.InfectedUpdate("Late Blight", "Spray", "Water mould", "p.jpg"))
	require.NoError(t, err)

	ok, err := repo.MutateCrop("9876543210", 0, models.HealthyUpdate())
	require.NoError(t, err)
	assert.True(t, ok)

	user, _ := repo.GetByPhone("9876543210")
	crop := user.Crops[0]
	assert.Equal(t, models.CropHealthy, crop.Health)
	assert.Nil(t, crop.DiseaseName)
	assert.Nil(t, crop.PreventiveMeasures)
	assert.Nil(t, crop.Reason)
	assert.Nil(t, crop.ImageURL)
}

func TestMutateCrop_RejectsInvalidHealthState(t *testing.T) {
	repo := NewUserRepository(newTestStore(t))
	registerFarmer(t, repo, "9876543210", "Potato")

	_, err := repo.MutateCrop("9876543210", 0, models.CropUpdate{Health: models.Value(models.CropInfected)})
	assert.True(t, errors.Is(err, models.ErrValidation), "infected crop needs a disease name")

	user, _ := repo.GetByPhone("9876543210")
	assert.Equal(t, models.CropHealthy, user.Crops[0].Health)
}

func TestMutateCropByID(t *testing.T) {
	repo := NewUserRepository(newTestStore(t))
	user := registerFarmer(t, repo, "9876543210", "Tomato", "Corn")
	cornID := user.Crops[1].ID

	ok, err := repo.MutateCropByID("9876543210", cornID, models.InfectedUpdate("Common Rust", "Resistant hybrids", "Fungus", "c.jpg"))
	require.NoError(t, err)
	assert.True(t, ok)

	got, _ := repo.GetByPhone("9876543210")
	assert.Equal(t, models.CropHealthy, got.Crops[0].Health)
	assert.Equal(t, models.CropInfected, got.Crops[1].Health)

	ok, err = repo.MutateCropByID("9876543210", "missing", models.HealthyUpdate())
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestMutateCrop_ConcurrentMutationsOnDifferentCropsBothSurvive(t *testing.T) {
	repo := NewUserRepository(newTestStore(t))
	registerFarmer(t, repo, "9876543210", "Tomato", "Corn")

	for range 20 {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := repo.MutateCrop("9876543210", 0, models.InfectedUpdate("Early Blight", "m", "r", "0.jpg"))
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := repo.MutateCrop("9876543210", 1, models.InfectedUpdate("Common Rust", "m", "r", "1.jpg"))
			assert.NoError(t, err)
		}()
		wg.Wait()

		user, err := repo.GetByPhone("9876543210")
		require.NoError(t, err)
		assert.Equal(t, "Early Blight", *user.Crops[0].DiseaseName)
		assert.Equal(t, "Common Rust", *user.Crops[1].DiseaseName)

		_, _ = repo.MutateCrop("9876543210", 0, models.HealthyUpdate())
		_, _ = repo.MutateCrop("9876543210", 1, models.HealthyUpdate())
	}
}

func TestAppendCrop(t *testing.T) {
	repo := NewUserRepository(newTestStore(t))
	registerFarmer(t, repo, "9876543210")

	crop, err := repo.AppendCrop("9876543210", models.Crop{Name: "Grape"})
	require.NoError(t, err)
	require.NotNil(t, crop)
	assert.Equal(t, models.CropHealthy, crop.Health)
	assert.NotEmpty(t, crop.ID)

	user, _ := repo.GetByPhone("9876543210")
	require.Len(t, user.Crops, 1)
	assert.Equal(t, "Grape", user.Crops[0].Name)

	crop, err = repo.AppendCrop("0000000000", models.Crop{Name: "Grape"})
	assert.NoError(t, err)
	assert.Nil(t, crop, "unknown user appends nothing")
}

func TestAppendCrop_InitializesMissingCropList(t *testing.T) {
	store := newTestStore(t)
	legacy := `[{"id":"u1","phone":"111","name":"Old","role":"farmer","location":null,"joinedAt":"2024-01-01T00:00:00Z"}]`
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "users.json"), []byte(legacy), 0644))
	repo := NewUserRepository(store)

	crop, err := repo.AppendCrop("111", models.Crop{Name: "Apple"})
	require.NoError(t, err)
	require.NotNil(t, crop)

	user, _ := repo.GetByPhone("111")
	assert.Len(t, user.Crops, 1)
}

// ============================================================================
// TEST SUITE 3: REPORTS
// ============================================================================

func TestReportCreate_AppendsInOrder(t *testing.T) {
	repo := NewReportRepository(newTestStore(t))

	a, err := repo.Create(models.Report{Disease: "A", Confidence: 0.9})
	require.NoError(t, err)
	b, err := repo.Create(models.Report{Disease: "B", Confidence: 0.8})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, models.UnknownLocation, a.Location)

	all, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "A", all[0].Disease)
	assert.Equal(t, "B", all[1].Disease)
}

func TestReportDeleteByID(t *testing.T) {
	store := newTestStore(t)
	repo := NewReportRepository(store)
	a, _ := repo.Create(models.Report{Disease: "A"})
	_, _ = repo.Create(models.Report{Disease: "B"})
	path := filepath.Join(store.Dir(), "reports.json")

	before, _ := os.ReadFile(path)
	removed, err := repo.DeleteByID("does-not-exist")
	require.NoError(t, err)
	assert.False(t, removed)
	after, _ := os.ReadFile(path)
	assert.Equal(t, before, after, "missing id leaves bytes unchanged")

	removed, err = repo.DeleteByID(a.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	all, _ := repo.GetAll()
	assert.Len(t, all, 1)
}

// ============================================================================
// TEST SUITE 4: ADVISORIES
// ============================================================================

func TestAdvisoryCreate_PrependsWithDefaults(t *testing.T) {
	repo := &AdvisoryRepository{
		advisories: jsonstore.Open[models.Advisory](newTestStore(t), AdvisoriesCollection),
		now:        func() time.Time { return time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC) },
	}

	_, err := repo.Create(models.CreateAdvisoryRequest{Title: "A", Message: "first"})
	require.NoError(t, err)
	b, err := repo.Create(models.CreateAdvisoryRequest{Title: "B", Message: "second", Severity: models.SeverityCritical, TargetRegion: "Pune"})
	require.NoError(t, err)

	all, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "B", all[0].Title, "newest first")
	assert.Equal(t, "A", all[1].Title)
	assert.Equal(t, models.DefaultTargetRegion, all[1].TargetRegion)
	assert.Equal(t, models.SeverityInfo, all[1].Severity)
	assert.Equal(t, "2025-03-07", b.Date)
	assert.Equal(t, "Pune", b.TargetRegion)
}

func TestAdvisoryCreate_DateIsUTC(t *testing.T) {
	lateEvening := time.Date(2025, 3, 7, 21, 30, 0, 0, time.FixedZone("UTC-5", -5*60*60))
	repo := &AdvisoryRepository{
		advisories: jsonstore.Open[models.Advisory](newTestStore(t), AdvisoriesCollection),
		now:        func() time.Time { return lateEvening },
	}

	a, err := repo.Create(models.CreateAdvisoryRequest{Title: "Frost", Message: "Cover seedlings"})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-08", a.Date, "date follows the UTC calendar day")
}

func TestAdvisoryCreate_RequiresTitleAndMessage(t *testing.T) {
	repo := NewAdvisoryRepository(newTestStore(t))

	_, err := repo.Create(models.CreateAdvisoryRequest{Title: "  "})
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestAdvisoryDeleteByID(t *testing.T) {
	repo := NewAdvisoryRepository(newTestStore(t))
	a, _ := repo.Create(models.CreateAdvisoryRequest{Title: "A", Message: "m"})

	removed, err := repo.DeleteByID(a.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.DeleteByID(a.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}
