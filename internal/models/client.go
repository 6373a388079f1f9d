package models

import (
	"time"
)

// Client represents a borrower profile owned by one user. Deleting a
// client that still has loans is rejected; loans reference clients but
// are not owned by them.
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Name      string    `gorm:"not null" json:"name"`
	CPF       *string   `gorm:"column:cpf" json:"cpf"`
	Phone     string    `gorm:"not null" json:"phone"`
	Email     *string   `json:"email"`
	Address   string    `gorm:"not null" json:"address"`
	Notes     *string   `gorm:"type:text" json:"notes"`
	IsActive  bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	User  User   `gorm:"foreignKey:UserID" json:"-"`
	Loans []Loan `gorm:"foreignKey:ClientID" json:"loans,omitempty"`
}

// TableName specifies the table name for Client
func (Client) TableName() string {
	return "clients"
}

// ClientResponse is the JSON response format for clients
type ClientResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CPF       *string   `json:"cpf"`
	Phone     string    `json:"phone"`
	Email     *string   `json:"email"`
	Address   string    `json:"address"`
	Notes     *string   `json:"notes"`
	IsActive  bool      `json:"is_active"`
	LoanCount int64     `json:"loan_count"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse converts Client to ClientResponse. loanCount is passed in
// because it is aggregated separately by the repository.
func (c *Client) ToResponse(loanCount int64) ClientResponse {
	return ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		CPF:       c.CPF,
		Phone:     c.Phone,
		Email:     c.Email,
		Address:   c.Address,
		Notes:     c.Notes,
		IsActive:  c.IsActive,
		LoanCount: loanCount,
		CreatedAt: c.CreatedAt,
	}
}
