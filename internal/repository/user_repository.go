package repository

import (
	"fmt"
	"strings"
	"time"

	"cropcare-service/internal/database/jsonstore"
	"cropcare-service/internal/models"

	"github.com/google/uuid"
)

const UsersCollection = "users"

type IUserRepository interface {
	GetAll() ([]models.User, error)
	GetByPhone(phone string) (*models.User, error)
	Create(user models.User) (*models.User, error)
	MutateCrop(phone string, cropIndex int, update models.CropUpdate) (bool, error)
	MutateCropByID(phone, cropID string, update models.CropUpdate) (bool, error)
	AppendCrop(phone string, crop models.Crop) (*models.Crop, error)
}

type UserRepository struct {
	users *jsonstore.Collection[models.User]
	now   func() time.Time
}

func NewUserRepository(store *jsonstore.Store) IUserRepository {
	return &UserRepository{
		users: jsonstore.Open[models.User](store, UsersCollection),
		now:   time.Now,
	}
}

func (r *UserRepository) GetAll() ([]models.User, error) {
	return r.users.List()
}

// GetByPhone wraps models.ErrNotFound when no user owns the phone.
func (r *UserRepository) GetByPhone(phone string) (*models.User, error) {
	user, ok, err := r.users.Find(func(u models.User) bool { return u.Phone == phone })
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("user %s: %w", phone, models.ErrNotFound)
	}
	return &user, nil
}

func (r *UserRepository) Create(user models.User) (*models.User, error) {
	user.Phone = strings.TrimSpace(user.Phone)
	user.Name = strings.TrimSpace(user.Name)
	if user.Phone == "" || user.Name == "" {
		return nil, fmt.Errorf("phone and name are required: %w", models.ErrValidation)
	}
	if user.Role == "" {
		user.Role = models.RoleFarmer
	}
	if !user.Role.IsValid() {
		return nil, fmt.Errorf("unknown role %q: %w", user.Role, models.ErrValidation)
	}
	if user.Location != nil && strings.TrimSpace(*user.Location) == "" {
		user.Location = nil
	}

	crops := make([]models.Crop, 0, len(user.Crops))
	for _, c := range user.Crops {
		normalized, err := r.newCrop(c)
		if err != nil {
			return nil, err
		}
		crops = append(crops, normalized)
	}
	user.Crops = crops
	user.ID = uuid.NewString()
	user.JoinedAt = r.now().UTC()

	err := r.users.Update(func(users []models.User) ([]models.User, bool, error) {
		for _, u := range users {
			if u.Phone == user.Phone {
				return users, false, fmt.Errorf("user %s already registered: %w", user.Phone, models.ErrConflict)
			}
		}
		return append(users, user), true, nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// MutateCrop merges update into the crop at cropIndex. It returns false when
// the user or index does not exist.
func (r *UserRepository) MutateCrop(phone string, cropIndex int, update models.CropUpdate) (bool, error) {
	return r.mutate(phone, update, func(crops []models.Crop) int {
		if cropIndex < 0 || cropIndex >= len(crops) {
			return -1
		}
		return cropIndex
	})
}

func (r *UserRepository) MutateCropByID(phone, cropID string, update models.CropUpdate) (bool, error) {
	if cropID == "" {
		return false, nil
	}
	return r.mutate(phone, update, func(crops []models.Crop) int {
		for i, c := range crops {
			if c.ID == cropID {
				return i
			}
		}
		return -1
	})
}

func (r *UserRepository) mutate(phone string, update models.CropUpdate, locate func([]models.Crop) int) (bool, error) {
	found := false
	err := r.users.Update(func(users []models.User) ([]models.User, bool, error) {
		for ui := range users {
			if users[ui].Phone != phone {
				continue
			}
			idx := locate(users[ui].Crops)
			if idx < 0 {
				return users, false, nil
			}
			crop := users[ui].Crops[idx]
			update.Apply(&crop)
			if err := validateCrop(crop); err != nil {
				return users, false, err
			}
			users[ui].Crops[idx] = crop
			found = true
			return users, true, nil
		}
		return users, false, nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// AppendCrop adds a crop to the user's list and returns it with its assigned
// id. A missing user yields (nil, nil).
func (r *UserRepository) AppendCrop(phone string, crop models.Crop) (*models.Crop, error) {
	normalized, err := r.newCrop(crop)
	if err != nil {
		return nil, err
	}

	appended := false
	err = r.users.Update(func(users []models.User) ([]models.User, bool, error) {
		for ui := range users {
			if users[ui].Phone != phone {
				continue
			}
			if users[ui].Crops == nil {
				users[ui].Crops = []models.Crop{}
			}
			users[ui].Crops = append(users[ui].Crops, normalized)
			appended = true
			return users, true, nil
		}
		return users, false, nil
	})
	if err != nil {
		return nil, err
	}
	if !appended {
		return nil, nil
	}
	return &normalized, nil
}

func (r *UserRepository) newCrop(c models.Crop) (models.Crop, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return c, fmt.Errorf("crop name is required: %w", models.ErrValidation)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Health == "" {
		c.Health = models.CropHealthy
	}
	if c.Health == models.CropHealthy {
		c.DiseaseName, c.PreventiveMeasures, c.Reason, c.ImageURL = nil, nil, nil, nil
	}
	return c, validateCrop(c)
}

func validateCrop(c models.Crop) error {
	switch c.Health {
	case models.CropHealthy:
		if c.DiseaseName != nil || c.PreventiveMeasures != nil || c.Reason != nil || c.ImageURL != nil {
			return fmt.Errorf("healthy crop cannot carry disease details: %w", models.ErrValidation)
		}
	case models.CropInfected:
		if c.DiseaseName == nil || *c.DiseaseName == "" {
			return fmt.Errorf("infected crop needs a disease name: %w", models.ErrValidation)
		}
	default:
		return fmt.Errorf("unknown crop health %q: %w", c.Health, models.ErrValidation)
	}
	return nil
}
