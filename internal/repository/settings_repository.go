package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/emprestafacil/emprestafacil-api/internal/models"
)

// SettingsRepository defines the interface for user settings data access
type SettingsRepository interface {
	FindByUser(ctx context.Context, userID uint) (*models.UserSettings, error)
	FindOrCreate(ctx context.Context, userID uint) (*models.UserSettings, error)
	Update(ctx context.Context, settings *models.UserSettings) error
}

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) FindByUser(ctx context.Context, userID uint) (*models.UserSettings, error) {
	var settings models.UserSettings
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// FindOrCreate returns the user's settings row, inserting the defaults
// on first access.
func (r *settingsRepository) FindOrCreate(ctx context.Context, userID uint) (*models.UserSettings, error) {
	settings, err := r.FindByUser(ctx, userID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	settings = models.DefaultUserSettings(userID)
	if err := r.db.WithContext(ctx).Create(settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *settingsRepository) Update(ctx context.Context, settings *models.UserSettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}
