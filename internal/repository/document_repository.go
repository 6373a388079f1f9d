package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/emprestafacil/emprestafacil-api/internal/models"
)

// DocumentRepository defines the interface for loan document data access
type DocumentRepository interface {
	Create(ctx context.Context, document *models.LoanDocument) error
	FindByLoan(ctx context.Context, loanID uint) ([]models.LoanDocument, error)
	FindLatestByType(ctx context.Context, loanID uint, docType string) (*models.LoanDocument, error)
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, document *models.LoanDocument) error {
	return r.db.WithContext(ctx).Create(document).Error
}

func (r *documentRepository) FindByLoan(ctx context.Context, loanID uint) ([]models.LoanDocument, error) {
	var documents []models.LoanDocument
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("created_at DESC").
		Find(&documents).Error
	return documents, err
}

func (r *documentRepository) FindLatestByType(ctx context.Context, loanID uint, docType string) (*models.LoanDocument, error) {
	var document models.LoanDocument
	err := r.db.WithContext(ctx).
		Where("loan_id = ? AND type = ?", loanID, docType).
		Order("created_at DESC").
		First(&document).Error
	if err != nil {
		return nil, err
	}
	return &document, nil
}
