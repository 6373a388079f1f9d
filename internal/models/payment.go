package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment represents one recorded repayment against a loan. Payments are
// immutable after creation; they disappear only when their loan is
// deleted (cascade).
type Payment struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	LoanID      uint            `gorm:"not null;index" json:"loan_id"`
	UserID      uint            `gorm:"not null;index" json:"user_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	PaymentDate time.Time       `gorm:"type:date;not null;index" json:"payment_date"`
	Notes       *string         `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`

	// Associations
	Loan Loan `gorm:"foreignKey:LoanID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}
