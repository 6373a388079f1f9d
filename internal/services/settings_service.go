package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/emprestafacil/emprestafacil-api/internal/finance"
	"github.com/emprestafacil/emprestafacil-api/internal/models"
	"github.com/emprestafacil/emprestafacil-api/internal/repository"
)

// SettingsService manages the typed per-user configuration alongside
// the profile fields that the settings screen edits.
type SettingsService struct {
	settingsRepo repository.SettingsRepository
	userRepo     repository.UserRepository
}

// NewSettingsService creates a new settings service
func NewSettingsService(settingsRepo repository.SettingsRepository, userRepo repository.UserRepository) *SettingsService {
	return &SettingsService{settingsRepo: settingsRepo, userRepo: userRepo}
}

// SettingsInput carries the writable settings fields. Nil means keep
// the current value; unknown fields are rejected at binding, not
// silently stored.
type SettingsInput struct {
	Name                *string          `json:"name"`
	CompanyName         *string          `json:"company_name"`
	CompanyCNPJ         *string          `json:"company_cnpj"`
	CompanyAddress      *string          `json:"company_address"`
	DefaultInterestRate *decimal.Decimal `json:"default_interest_rate"`
	DailyInterestRate   *decimal.Decimal `json:"daily_interest_rate"`
	LateFeePercentage   *decimal.Decimal `json:"late_fee_percentage"`
	DueSoonAlerts       *bool            `json:"due_soon_alerts"`
	DarkMode            *bool            `json:"dark_mode"`
}

// Get returns the merged profile and settings view, creating the
// settings row with defaults on first access.
func (s *SettingsService) Get(ctx context.Context, userID uint) (*models.SettingsResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	settings, err := s.settingsRepo.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.toResponse(user, settings), nil
}

// Update applies the given fields and returns the merged view
func (s *SettingsService) Update(ctx context.Context, userID uint, input SettingsInput) (*models.SettingsResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	settings, err := s.settingsRepo.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	userChanged := false
	if input.Name != nil && *input.Name != "" {
		user.Name = *input.Name
		userChanged = true
	}
	if input.CompanyName != nil {
		user.CompanyName = input.CompanyName
		userChanged = true
	}
	if input.CompanyCNPJ != nil {
		user.CompanyCNPJ = input.CompanyCNPJ
		userChanged = true
	}
	if input.CompanyAddress != nil {
		user.CompanyAddress = input.CompanyAddress
		userChanged = true
	}
	if userChanged {
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	if input.DefaultInterestRate != nil {
		if input.DefaultInterestRate.IsNegative() {
			return nil, finance.ErrNegativeRate
		}
		settings.DefaultInterestRate = *input.DefaultInterestRate
	}
	if input.DailyInterestRate != nil {
		if input.DailyInterestRate.IsNegative() {
			return nil, finance.ErrNegativeRate
		}
		settings.DailyInterestRate = *input.DailyInterestRate
	}
	if input.LateFeePercentage != nil {
		if input.LateFeePercentage.IsNegative() {
			return nil, finance.ErrNegativeRate
		}
		settings.LateFeePercentage = *input.LateFeePercentage
	}
	if input.DueSoonAlerts != nil {
		settings.DueSoonAlerts = *input.DueSoonAlerts
	}
	if input.DarkMode != nil {
		settings.DarkMode = *input.DarkMode
	}

	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return nil, err
	}

	return s.toResponse(user, settings), nil
}

func (s *SettingsService) toResponse(user *models.User, settings *models.UserSettings) *models.SettingsResponse {
	return &models.SettingsResponse{
		Name:           user.Name,
		Email:          user.Email,
		CompanyName:    user.CompanyName,
		CompanyCNPJ:    user.CompanyCNPJ,
		CompanyAddress: user.CompanyAddress,
		Financial: models.FinancialOpts{
			DefaultInterestRate: settings.DefaultInterestRate,
			DailyInterestRate:   settings.DailyInterestRate,
			LateFeePercentage:   settings.LateFeePercentage,
		},
		Notifications: models.NotifyOpts{
			DueSoonAlerts: settings.DueSoonAlerts,
		},
		System: models.SystemOpts{
			DarkMode: settings.DarkMode,
		},
	}
}
