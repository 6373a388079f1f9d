package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/emprestafacil/emprestafacil-api/internal/models"
)

// ClientRepository defines the interface for client data access. All
// reads and writes are scoped by the owning user id so one tenant can
// never touch another tenant's rows.
type ClientRepository interface {
	FindByID(ctx context.Context, userID, id uint) (*models.Client, error)
	Create(ctx context.Context, client *models.Client) error
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, userID, id uint) error
	List(ctx context.Context, userID uint, query *ListQuery) ([]models.Client, int64, error)
	Count(ctx context.Context, userID uint) (int64, error)
	CountLoans(ctx context.Context, clientID uint) (int64, error)
	LoanCounts(ctx context.Context, userID uint) (map[uint]int64, error)
}

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) FindByID(ctx context.Context, userID, id uint) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&client, id).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) Create(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *clientRepository) Update(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

func (r *clientRepository) Delete(ctx context.Context, userID, id uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Client{}, id).Error
}

func (r *clientRepository) List(ctx context.Context, userID uint, query *ListQuery) ([]models.Client, int64, error) {
	var clients []models.Client
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Client{}).Where("user_id = ?", userID)

	// Apply search
	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("name ILIKE ? OR cpf ILIKE ? OR phone ILIKE ? OR email ILIKE ?",
			search, search, search, search)
	}

	// Apply active filter
	if query.Filters["is_active"] != "" {
		db = db.Where("is_active = ?", query.Filters["is_active"] == "true")
	}

	// Count total
	db.Count(&total)

	// Apply sorting
	if query.SortBy != "" {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("name ASC")
	}

	// Apply pagination
	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Find(&clients).Error
	return clients, total, err
}

func (r *clientRepository) Count(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Client{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

func (r *clientRepository) CountLoans(ctx context.Context, clientID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Loan{}).
		Where("client_id = ?", clientID).
		Count(&total).Error
	return total, err
}

// LoanCounts returns loan totals keyed by client id for one user, so
// listings avoid one count query per client.
func (r *clientRepository) LoanCounts(ctx context.Context, userID uint) (map[uint]int64, error) {
	var rows []struct {
		ClientID uint
		Count    int64
	}
	err := r.db.WithContext(ctx).Model(&models.Loan{}).
		Select("client_id, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("client_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.ClientID] = row.Count
	}
	return counts, nil
}
