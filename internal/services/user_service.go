package services

import (
	"context"
	"strings"

	"github.com/bookcycle/bookcycle-backend/internal/auth"
	"github.com/bookcycle/bookcycle-backend/internal/models"
	repo "github.com/bookcycle/bookcycle-backend/internal/repository"
)

// Actor is the request-scoped identity resolved by the auth middleware.
type Actor struct {
	ID   string
	Role models.Role
}

type UserService struct {
	users repo.Users
}

func NewUserService(users repo.Users) *UserService { return &UserService{users: users} }

func (s *UserService) Register(ctx context.Context, name, email, password, institution string) (models.User, error) {
	u := models.User{
		Name:        strings.TrimSpace(name),
		Email:       strings.ToLower(strings.TrimSpace(email)),
		Role:        models.RoleStudent,
		Institution: strings.TrimSpace(institution),
	}
	if err := u.Validate(); err != nil {
		return models.User{}, err
	}
	if len(password) < 6 {
		return models.User{}, ErrPasswordTooShort
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	u.PasswordHash = hash
	return s.users.Create(ctx, u)
}

func (s *UserService) Login(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	if err := auth.VerifyPassword(password, u.PasswordHash); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		return models.User{}, ErrAccountDisabled
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id string) (models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, f repo.UserFilter) ([]models.User, int, error) {
	return s.users.List(ctx, f)
}

// AdminCreate lets an admin provision a user with an explicit role.
func (s *UserService) AdminCreate(ctx context.Context, actor Actor, name, email, password string, role models.Role) (models.User, error) {
	if !actor.Role.IsAdmin() {
		return models.User{}, ErrForbidden
	}
	u := models.User{
		Name:  strings.TrimSpace(name),
		Email: strings.ToLower(strings.TrimSpace(email)),
		Role:  role,
	}
	if err := u.Validate(); err != nil {
		return models.User{}, err
	}
	if len(password) < 6 {
		return models.User{}, ErrPasswordTooShort
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	u.PasswordHash = hash
	return s.users.Create(ctx, u)
}

type UpdateUserInput struct {
	Name         *string         `json:"name"`
	Email        *string         `json:"email"`
	Institution  *string         `json:"institution"`
	Address      *models.Address `json:"address"`
	Phone        *string         `json:"phone"`
	Role         *models.Role    `json:"role"`
	IsActive     *bool           `json:"is_active"`
	RewardPoints *int            `json:"reward_points"`
}

// Update: users may edit their own profile fields; role, active flag and
// points are admin-only and silently ignored otherwise.
func (s *UserService) Update(ctx context.Context, actor Actor, id string, in UpdateUserInput) (models.User, error) {
	if !actor.Role.IsAdmin() && actor.ID != id {
		return models.User{}, ErrForbidden
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Institution != nil {
		u.Institution = *in.Institution
	}
	if in.Address != nil {
		u.Address = *in.Address
		if u.Address.Country == "" {
			u.Address.Country = "IN"
		}
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
	}
	if actor.Role.IsAdmin() {
		if in.Role != nil {
			if !in.Role.Valid() {
				return models.User{}, ErrInvalidRole
			}
			u.Role = *in.Role
		}
		if in.IsActive != nil {
			u.IsActive = *in.IsActive
		}
		if in.RewardPoints != nil {
			if *in.RewardPoints < 0 {
				return models.User{}, ErrNegativePoints
			}
			u.RewardPoints = *in.RewardPoints
		}
	}
	if err := u.Validate(); err != nil {
		return models.User{}, err
	}
	if err := s.users.Update(ctx, u); err != nil {
		return models.User{}, err
	}
	return s.users.GetByID(ctx, id)
}

func (s *UserService) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.Role.IsAdmin() {
		return ErrForbidden
	}
	return s.users.Delete(ctx, id)
}
