package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/emprestafacil/emprestafacil-api/internal/models"
	"github.com/emprestafacil/emprestafacil-api/internal/repository"
)

// UserService handles the admin-facing account operations
type UserService struct {
	repo repository.UserRepository
}

// NewUserService creates a new user service
func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) FindByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// List returns accounts with their resource counts
func (s *UserService) List(ctx context.Context, query *repository.ListQuery) ([]repository.UserUsage, int64, error) {
	return s.repo.List(ctx, query)
}

// PlatformStats is the admin overview payload
type PlatformStats struct {
	TotalUsers       int64            `json:"total_users"`
	NewUsersThisWeek int64            `json:"new_users_this_week"`
	UsersByPlan      map[string]int64 `json:"users_by_plan"`
}

// Stats aggregates platform-wide account numbers
func (s *UserService) Stats(ctx context.Context) (*PlatformStats, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	newThisWeek, err := s.repo.CountCreatedSince(ctx, time.Now().AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}

	byPlan, err := s.repo.CountByPlan(ctx)
	if err != nil {
		return nil, err
	}

	return &PlatformStats{
		TotalUsers:       total,
		NewUsersThisWeek: newThisWeek,
		UsersByPlan:      byPlan,
	}, nil
}

// SetPlan changes an account's subscription plan
func (s *UserService) SetPlan(ctx context.Context, userID uint, plan string) (*models.User, error) {
	if !models.ValidPlan(plan) {
		return nil, ErrInvalidPlan
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	user.Plan = plan
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
