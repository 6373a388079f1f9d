package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserSettings is the typed per-user configuration. The recognized
// option set is fixed: financial defaults applied to new loans, the
// due-soon alert switch and the UI dark-mode flag. One row per user,
// created with defaults on first read.
type UserSettings struct {
	ID                  uint            `gorm:"primaryKey" json:"-"`
	UserID              uint            `gorm:"uniqueIndex;not null" json:"-"`
	DefaultInterestRate decimal.Decimal `gorm:"type:decimal(8,2);default:30" json:"default_interest_rate"`
	DailyInterestRate   decimal.Decimal `gorm:"type:decimal(8,4);default:0.1" json:"daily_interest_rate"`
	LateFeePercentage   decimal.Decimal `gorm:"type:decimal(8,2);default:2" json:"late_fee_percentage"`
	DueSoonAlerts       bool            `gorm:"default:true" json:"due_soon_alerts"`
	DarkMode            bool            `gorm:"default:false" json:"dark_mode"`
	CreatedAt           time.Time       `json:"-"`
	UpdatedAt           time.Time       `json:"-"`

	// Associations
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for UserSettings
func (UserSettings) TableName() string {
	return "user_settings"
}

// DefaultUserSettings returns the settings applied to users that have
// never saved any.
func DefaultUserSettings(userID uint) *UserSettings {
	return &UserSettings{
		UserID:              userID,
		DefaultInterestRate: decimal.NewFromInt(30),
		DailyInterestRate:   decimal.RequireFromString("0.1"),
		LateFeePercentage:   decimal.NewFromInt(2),
		DueSoonAlerts:       true,
		DarkMode:            false,
	}
}

// SettingsResponse merges the user profile fields with the typed
// settings, mirroring what the settings endpoint returns.
type SettingsResponse struct {
	Name           string        `json:"name"`
	Email          string        `json:"email"`
	CompanyName    *string       `json:"company_name"`
	CompanyCNPJ    *string       `json:"company_cnpj"`
	CompanyAddress *string       `json:"company_address"`
	Financial      FinancialOpts `json:"financial"`
	Notifications  NotifyOpts    `json:"notifications"`
	System         SystemOpts    `json:"system"`
}

// FinancialOpts are the financial defaults applied to new loans.
type FinancialOpts struct {
	DefaultInterestRate decimal.Decimal `json:"default_interest_rate"`
	DailyInterestRate   decimal.Decimal `json:"daily_interest_rate"`
	LateFeePercentage   decimal.Decimal `json:"late_fee_percentage"`
}

// NotifyOpts are the notification switches.
type NotifyOpts struct {
	DueSoonAlerts bool `json:"due_soon_alerts"`
}

// SystemOpts are the UI preferences.
type SystemOpts struct {
	DarkMode bool `json:"dark_mode"`
}
