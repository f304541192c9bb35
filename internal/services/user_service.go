package services

import (
	"fmt"

	"cropcare-service/internal/models"
	"cropcare-service/internal/repository"
	"cropcare-service/internal/utils"
)

type IUserService interface {
	Register(req models.RegisterUserRequest) (*models.User, error)
	GetByPhone(phone string) (*models.User, error)
	AddCrop(phone string, req models.AddCropRequest) (*models.Crop, error)
	UpdateCrop(phone, cropID string, update models.CropUpdate) (*models.Crop, error)
	ListFarmers() ([]models.User, error)
}

type UserService struct {
	repo repository.IUserRepository
}

func NewUserService(repo repository.IUserRepository) IUserService {
	return &UserService{repo: repo}
}

func (s *UserService) Register(req models.RegisterUserRequest) (*models.User, error) {
	phone := utils.NormalizePhone(req.Phone)
	if ok, err := utils.ValidatePhone(phone); !ok {
		return nil, fmt.Errorf("%v: %w", err, models.ErrValidation)
	}
	return s.repo.Create(models.User{
		Phone:    phone,
		Name:     req.Name,
		Role:     req.Role,
		Location: req.Location,
		Crops:    req.Crops,
	})
}

func (s *UserService) GetByPhone(phone string) (*models.User, error) {
	return s.repo.GetByPhone(utils.NormalizePhone(phone))
}

func (s *UserService) AddCrop(phone string, req models.AddCropRequest) (*models.Crop, error) {
	phone = utils.NormalizePhone(phone)
	crop, err := s.repo.AppendCrop(phone, models.Crop{Name: req.Name, Health: req.Health})
	if err != nil {
		return nil, err
	}
	if crop == nil {
		return nil, fmt.Errorf("user %s: %w", phone, models.ErrNotFound)
	}
	return crop, nil
}

// UpdateCrop applies a partial update to the crop with the given id and
// returns the merged crop.
func (s *UserService) UpdateCrop(phone, cropID string, update models.CropUpdate) (*models.Crop, error) {
	phone = utils.NormalizePhone(phone)
	ok, err := s.repo.MutateCropByID(phone, cropID, update)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("crop %s of user %s: %w", cropID, phone, models.ErrNotFound)
	}

	user, err := s.repo.GetByPhone(phone)
	if err != nil {
		return nil, err
	}
	for _, c := range user.Crops {
		if c.ID == cropID {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("crop %s of user %s: %w", cropID, phone, models.ErrNotFound)
}

func (s *UserService) ListFarmers() ([]models.User, error) {
	users, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	farmers := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.Role == models.RoleFarmer || u.Role == "" {
			farmers = append(farmers, u)
		}
	}
	return farmers, nil
}
