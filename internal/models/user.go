package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account holder (tenant). Every client, loan and
// payment in the system belongs to exactly one user.
type User struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"not null" json:"name"`
	Email             string    `gorm:"uniqueIndex;not null" json:"email"`
	EncryptedPassword string    `gorm:"column:encrypted_password;not null" json:"-"`
	IsAdmin           bool      `gorm:"default:false" json:"is_admin"`
	Plan              string    `gorm:"default:free;not null" json:"plan"`
	CompanyName       *string   `json:"company_name"`
	CompanyCNPJ       *string   `gorm:"column:company_cnpj" json:"company_cnpj"`
	CompanyAddress    *string   `json:"company_address"`
	WhatsappAPIToken  *string   `gorm:"column:whatsapp_api_token" json:"-"`
	CreatedAt         time.Time `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// Associations
	Clients  []Client      `gorm:"foreignKey:UserID" json:"clients,omitempty"`
	Loans    []Loan        `gorm:"foreignKey:UserID" json:"loans,omitempty"`
	Settings *UserSettings `gorm:"foreignKey:UserID" json:"settings,omitempty"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// Plan constants
const (
	PlanFree    = "free"
	PlanPro     = "pro"
	PlanPremium = "premium"
)

// ValidPlan reports whether s is a recognized subscription plan
func ValidPlan(s string) bool {
	return s == PlanFree || s == PlanPro || s == PlanPremium
}

// BeforeCreate hook for setting defaults
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Plan == "" {
		u.Plan = PlanFree
	}
	return nil
}

// UserResponse is the JSON response format for users
type UserResponse struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	IsAdmin        bool      `json:"is_admin"`
	Plan           string    `json:"plan"`
	CompanyName    *string   `json:"company_name"`
	CompanyCNPJ    *string   `json:"company_cnpj"`
	CompanyAddress *string   `json:"company_address"`
	CreatedAt      time.Time `json:"created_at"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		IsAdmin:        u.IsAdmin,
		Plan:           u.Plan,
		CompanyName:    u.CompanyName,
		CompanyCNPJ:    u.CompanyCNPJ,
		CompanyAddress: u.CompanyAddress,
		CreatedAt:      u.CreatedAt,
	}
}
