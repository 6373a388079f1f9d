package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Loan represents one mutual-loan agreement. TotalAmount and
// InstallmentAmount are stored but always recomputed from Amount,
// InterestRate and Installments whenever either economic input changes.
// Status is a cache: the authoritative overdue determination is derived
// from the due date and the payment set at read time (see finance
// package), while "paid" is set by the lifecycle when payments cover
// the total.
type Loan struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	GUID              string          `gorm:"uniqueIndex;not null" json:"guid"`
	UserID            uint            `gorm:"not null;index" json:"user_id"`
	ClientID          uint            `gorm:"not null;index" json:"client_id"`
	LoanNumber        int             `gorm:"not null;index:idx_loans_user_number,unique,composite:user_number" json:"loan_number"`
	Amount            decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	InterestRate      decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"interest_rate"`
	Installments      int             `gorm:"not null;default:1" json:"installments"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total_amount"`
	InstallmentAmount decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"installment_amount"`
	LoanDate          time.Time       `gorm:"type:date;not null;index" json:"loan_date"`
	DueDate           *time.Time      `gorm:"type:date;index" json:"due_date"`
	Status            string          `gorm:"default:active;not null;index" json:"status"`
	DailyInterestRate decimal.Decimal `gorm:"type:decimal(8,4)" json:"daily_interest_rate"`
	LateFeePercentage decimal.Decimal `gorm:"type:decimal(8,2)" json:"late_fee_percentage"`
	Notes             *string         `gorm:"type:text" json:"notes"`
	CreatedAt         time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	// Associations
	User     User      `gorm:"foreignKey:UserID" json:"-"`
	Client   Client    `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Payments []Payment `gorm:"foreignKey:LoanID" json:"payments,omitempty"`
}

// TableName specifies the table name for Loan
func (Loan) TableName() string {
	return "loans"
}

// Loan status constants
const (
	LoanStatusActive  = "active"
	LoanStatusPaid    = "paid"
	LoanStatusOverdue = "overdue"
)

// ValidLoanStatus reports whether s is a recognized loan status
func ValidLoanStatus(s string) bool {
	return s == LoanStatusActive || s == LoanStatusPaid || s == LoanStatusOverdue
}

// MayMarkPaid returns true if the loan can transition to paid
func (l *Loan) MayMarkPaid() bool {
	return l.Status == LoanStatusActive || l.Status == LoanStatusOverdue
}

// MayMarkOverdue returns true if the loan can transition to overdue
func (l *Loan) MayMarkOverdue() bool {
	return l.Status == LoanStatusActive
}

// MayReactivate returns true if the loan can go back to active
func (l *Loan) MayReactivate() bool {
	return l.Status == LoanStatusOverdue || l.Status == LoanStatusPaid
}

// TotalPaid sums the loaded payment set. Callers that need the real
// figure must load Payments first; an unloaded slice sums to zero.
func (l *Loan) TotalPaid() decimal.Decimal {
	total := decimal.Zero
	for _, p := range l.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

// RemainingAmount returns TotalAmount minus the loaded payments. May be
// negative when overpaid; callers treat negative as fully settled.
func (l *Loan) RemainingAmount() decimal.Decimal {
	return l.TotalAmount.Sub(l.TotalPaid())
}

// LoanResponse is the JSON response format for loans, carrying the
// derived per-loan figures alongside the stored columns.
type LoanResponse struct {
	ID                uint            `json:"id"`
	GUID              string          `json:"guid"`
	ClientID          uint            `json:"client_id"`
	ClientName        string          `json:"client_name,omitempty"`
	LoanNumber        int             `json:"loan_number"`
	Amount            decimal.Decimal `json:"amount"`
	InterestRate      decimal.Decimal `json:"interest_rate"`
	Installments      int             `json:"installments"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	InstallmentAmount decimal.Decimal `json:"installment_amount"`
	LoanDate          time.Time       `json:"loan_date"`
	DueDate           *time.Time      `json:"due_date"`
	Status            string          `json:"status"`
	Notes             *string         `json:"notes"`
	TotalPaid         decimal.Decimal `json:"total_paid"`
	Remaining         decimal.Decimal `json:"remaining"`
	DaysOverdue       int             `json:"days_overdue"`
	DailyInterest     decimal.Decimal `json:"daily_interest"`
	LateFee           decimal.Decimal `json:"late_fee"`
	TotalOverdue      decimal.Decimal `json:"total_overdue"`
	Payments          []Payment       `json:"payments,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// LoanDocument represents a generated document (e.g. the signed loan
// contract PDF) stored on disk and linked to a loan.
type LoanDocument struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	LoanID    uint      `gorm:"not null;index" json:"loan_id"`
	Type      string    `gorm:"not null;index" json:"type"`
	FilePath  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`

	// Associations
	Loan Loan `gorm:"foreignKey:LoanID" json:"loan,omitempty"`
}

// TableName specifies the table name for LoanDocument
func (LoanDocument) TableName() string {
	return "loan_documents"
}

// Loan document type constants
const (
	LoanDocumentTypeContract = "contract"
)
