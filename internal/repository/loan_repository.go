package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/emprestafacil/emprestafacil-api/internal/models"
)

// LoanRepository defines the interface for loan data access. Reads and
// writes are scoped by the owning user id except FindActivePastDue and
// FindDueSoon, which feed background jobs that sweep every tenant.
type LoanRepository interface {
	FindByID(ctx context.Context, userID, id uint) (*models.Loan, error)
	FindByIDWithPayments(ctx context.Context, userID, id uint) (*models.Loan, error)
	FindAllWithPayments(ctx context.Context, userID uint) ([]models.Loan, error)
	NextLoanNumber(ctx context.Context, userID uint) (int, error)
	Create(ctx context.Context, loan *models.Loan) error
	Update(ctx context.Context, loan *models.Loan) error
	UpdateStatus(ctx context.Context, id uint, status string) error
	Delete(ctx context.Context, userID, id uint) error
	List(ctx context.Context, userID uint, query *ListQuery) ([]models.Loan, int64, error)
	Count(ctx context.Context, userID uint) (int64, error)
	CountByStatus(ctx context.Context, userID uint) (map[string]int64, error)
	FindActivePastDue(ctx context.Context, before time.Time) ([]models.Loan, error)
	FindDueSoon(ctx context.Context, from, to time.Time) ([]models.Loan, error)
}

type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) FindByID(ctx context.Context, userID, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("user_id = ?", userID).
		First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) FindByIDWithPayments(ctx context.Context, userID, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("payment_date ASC, id ASC")
		}).
		Where("user_id = ?", userID).
		First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) FindAllWithPayments(ctx context.Context, userID uint) ([]models.Loan, error) {
	var loans []models.Loan
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Payments").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&loans).Error
	return loans, err
}

// NextLoanNumber returns MAX(loan_number)+1 for the user. Numbering is
// per tenant and starts at 1.
func (r *loanRepository) NextLoanNumber(ctx context.Context, userID uint) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&models.Loan{}).
		Where("user_id = ?", userID).
		Select("COALESCE(MAX(loan_number), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

func (r *loanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

func (r *loanRepository) Update(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Save(loan).Error
}

func (r *loanRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).Model(&models.Loan{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Delete removes the loan with its payments and documents in one
// transaction.
func (r *loanRepository) Delete(ctx context.Context, userID, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var loan models.Loan
		if err := tx.Where("user_id = ?", userID).First(&loan, id).Error; err != nil {
			return err
		}
		if err := tx.Where("loan_id = ?", id).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("loan_id = ?", id).Delete(&models.LoanDocument{}).Error; err != nil {
			return err
		}
		return tx.Delete(&loan).Error
	})
}

func (r *loanRepository) List(ctx context.Context, userID uint, query *ListQuery) ([]models.Loan, int64, error) {
	var loans []models.Loan
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Loan{}).Where("loans.user_id = ?", userID)

	// Apply search over client name and loan number
	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Joins("JOIN clients ON clients.id = loans.client_id").
			Where("clients.name ILIKE ? OR CAST(loans.loan_number AS TEXT) ILIKE ?", search, search)
	}

	// Apply status filter
	if query.Filters["status"] != "" {
		db = db.Where("loans.status = ?", query.Filters["status"])
	}

	// Apply client filter
	if query.Filters["client_id"] != "" {
		db = db.Where("loans.client_id = ?", query.Filters["client_id"])
	}

	// Count total
	db.Count(&total)

	// Apply sorting
	if query.SortBy != "" {
		order := "loans." + query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("loans.created_at DESC")
	}

	// Apply pagination
	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Preload("Client").Preload("Payments").Find(&loans).Error
	return loans, total, err
}

func (r *loanRepository) Count(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Loan{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

func (r *loanRepository) CountByStatus(ctx context.Context, userID uint) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Loan{}).
		Select("status, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// FindActivePastDue returns active loans from every tenant whose due
// date already passed, with payments loaded so callers can check the
// outstanding balance.
func (r *loanRepository) FindActivePastDue(ctx context.Context, before time.Time) ([]models.Loan, error) {
	var loans []models.Loan
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Payments").
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?", models.LoanStatusActive, before).
		Find(&loans).Error
	return loans, err
}

// FindDueSoon returns active loans due inside [from, to), across all
// tenants, for the due-soon alert job.
func (r *loanRepository) FindDueSoon(ctx context.Context, from, to time.Time) ([]models.Loan, error) {
	var loans []models.Loan
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("status = ? AND due_date >= ? AND due_date < ?", models.LoanStatusActive, from, to).
		Find(&loans).Error
	return loans, err
}
