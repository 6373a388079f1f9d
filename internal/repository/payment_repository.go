package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/emprestafacil/emprestafacil-api/internal/models"
)

// PaymentRepository defines the interface for payment data access.
// Payments are append-only: there is no update method.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindByLoan(ctx context.Context, loanID uint) ([]models.Payment, error)
	FindByUser(ctx context.Context, userID uint, from, to time.Time) ([]models.Payment, error)
	FindRecent(ctx context.Context, userID uint, limit int) ([]models.Payment, error)
	SumByLoan(ctx context.Context, loanID uint) (decimal.Decimal, error)
	Count(ctx context.Context, userID uint) (int64, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) FindByLoan(ctx context.Context, loanID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("payment_date ASC, id ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) FindByUser(ctx context.Context, userID uint, from, to time.Time) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND payment_date >= ? AND payment_date < ?", userID, from, to).
		Order("payment_date ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) FindRecent(ctx context.Context, userID uint, limit int) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Preload("Loan").
		Preload("Loan.Client").
		Where("user_id = ?", userID).
		Order("payment_date DESC, id DESC").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}

// SumByLoan aggregates in memory rather than with SQL SUM so the
// decimal arithmetic stays exact.
func (r *paymentRepository) SumByLoan(ctx context.Context, loanID uint) (decimal.Decimal, error) {
	payments, err := r.FindByLoan(ctx, loanID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total, nil
}

func (r *paymentRepository) Count(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}
