package account

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"covid-testing-server/internal/models"
)

var (
	ErrEmailTaken  = errors.New("user with this email already exists")
	ErrInvalidRole = errors.New("invalid role")
	ErrNotFound    = errors.New("user not found")
)

// NewUser carries the fields needed to open an account.
type NewUser struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      models.Role
}

// Service manages user accounts. It is shared by self registration, the
// admin endpoints and the create-user command.
type Service struct {
	DB *gorm.DB
}

// NewService creates a new account Service.
func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// Create stores a new user with a hashed password.
func (s *Service) Create(ctx context.Context, in NewUser) (*models.User, error) {
	if !in.Role.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, in.Role)
	}

	var existing models.User
	err := s.DB.WithContext(ctx).Where("email = ?", in.Email).First(&existing).Error
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("check email: %w", err)
	}

	user := models.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Role:      in.Role,
	}
	if err := user.SetPassword(in.Password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// Get loads a user by ID.
func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// List returns every user, optionally filtered by role.
func (s *Service) List(ctx context.Context, role models.Role) ([]models.User, error) {
	query := s.DB.WithContext(ctx).Order("created_at")
	if role != "" {
		query = query.Where("role = ?", role)
	}
	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
