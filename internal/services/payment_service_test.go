package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/emprestafacil/emprestafacil-api/internal/jobs"
	"github.com/emprestafacil/emprestafacil-api/internal/models"
	"github.com/emprestafacil/emprestafacil-api/internal/repository"
)

// Mock PaymentRepository
type mockPaymentRepository struct {
	repository.PaymentRepository
	mockCreate     func(ctx context.Context, payment *models.Payment) error
	mockFindByLoan func(ctx context.Context, loanID uint) ([]models.Payment, error)
	mockSumByLoan  func(ctx context.Context, loanID uint) (decimal.Decimal, error)
}

func (m *mockPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, payment)
	}
	return nil
}

func (m *mockPaymentRepository) FindByLoan(ctx context.Context, loanID uint) ([]models.Payment, error) {
	if m.mockFindByLoan != nil {
		return m.mockFindByLoan(ctx, loanID)
	}
	return nil, nil
}

func (m *mockPaymentRepository) SumByLoan(ctx context.Context, loanID uint) (decimal.Decimal, error) {
	if m.mockSumByLoan != nil {
		return m.mockSumByLoan(ctx, loanID)
	}
	return decimal.Zero, nil
}

func (m *mockPaymentRepository) FindRecent(ctx context.Context, userID uint, limit int) ([]models.Payment, error) {
	return nil, nil
}

func newPaymentFixture(t *testing.T) (*PaymentService, *mockPaymentRepository, *mockLoanRepository, *jobs.Worker) {
	t.Helper()
	paymentRepo := &mockPaymentRepository{}
	loanRepo := &mockLoanRepository{}
	worker := jobs.NewWorker(1)
	t.Cleanup(worker.Shutdown)
	service := NewPaymentService(paymentRepo, loanRepo, NewNotificationService(&mockNotificationRepository{}), worker)
	return service, paymentRepo, loanRepo, worker
}

func TestPaymentServiceRecordSettlesLoan(t *testing.T) {
	service, paymentRepo, loanRepo, _ := newPaymentFixture(t)

	loanRepo.mockFindByID = func(ctx context.Context, userID, id uint) (*models.Loan, error) {
		return &models.Loan{
			ID: 5, UserID: 1, LoanNumber: 2, Status: models.LoanStatusActive,
			TotalAmount: decimal.NewFromInt(1300),
			Client:      models.Client{Name: "Cliente Teste"},
		}, nil
	}
	paymentRepo.mockCreate = func(ctx context.Context, payment *models.Payment) error {
		payment.ID = 11
		return nil
	}
	// Full payment set re-read after the insert
	paymentRepo.mockSumByLoan = func(ctx context.Context, loanID uint) (decimal.Decimal, error) {
		return decimal.NewFromInt(1300), nil
	}

	var persisted string
	loanRepo.mockUpdateStatus = func(ctx context.Context, id uint, status string) error {
		persisted = status
		return nil
	}

	payment, err := service.Record(context.Background(), 1, 5, PaymentInput{
		Amount:      decimal.NewFromInt(1300),
		PaymentDate: time.Now(),
	})
	require.NoError(t, err)

	assert.Equal(t, uint(11), payment.ID)
	assert.Equal(t, models.LoanStatusPaid, persisted)
}

func TestPaymentServiceRecordPartialKeepsStatus(t *testing.T) {
	service, paymentRepo, loanRepo, _ := newPaymentFixture(t)

	loanRepo.mockFindByID = func(ctx context.Context, userID, id uint) (*models.Loan, error) {
		return &models.Loan{
			ID: 5, UserID: 1, Status: models.LoanStatusActive,
			TotalAmount: decimal.NewFromInt(1300),
		}, nil
	}
	paymentRepo.mockSumByLoan = func(ctx context.Context, loanID uint) (decimal.Decimal, error) {
		return decimal.NewFromInt(500), nil
	}

	loanRepo.mockUpdateStatus = func(ctx context.Context, id uint, status string) error {
		t.Fatal("partial payment must not change loan status")
		return nil
	}

	_, err := service.Record(context.Background(), 1, 5, PaymentInput{
		Amount: decimal.NewFromInt(500),
	})
	require.NoError(t, err)
}

func TestPaymentServiceRecordOverpaymentSettles(t *testing.T) {
	service, paymentRepo, loanRepo, _ := newPaymentFixture(t)

	loanRepo.mockFindByID = func(ctx context.Context, userID, id uint) (*models.Loan, error) {
		return &models.Loan{
			ID: 5, UserID: 1, Status: models.LoanStatusOverdue,
			TotalAmount: decimal.NewFromInt(1000),
			Client:      models.Client{Name: "Cliente Teste"},
		}, nil
	}
	paymentRepo.mockSumByLoan = func(ctx context.Context, loanID uint) (decimal.Decimal, error) {
		return decimal.NewFromInt(1200), nil
	}

	var persisted string
	loanRepo.mockUpdateStatus = func(ctx context.Context, id uint, status string) error {
		persisted = status
		return nil
	}

	_, err := service.Record(context.Background(), 1, 5, PaymentInput{
		Amount: decimal.NewFromInt(1200),
	})
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusPaid, persisted)
}

func TestPaymentServiceRecordRejectsNonPositive(t *testing.T) {
	service, _, _, _ := newPaymentFixture(t)

	_, err := service.Record(context.Background(), 1, 5, PaymentInput{Amount: decimal.Zero})
	assert.ErrorIs(t, err, ErrNonPositivePayment)

	_, err = service.Record(context.Background(), 1, 5, PaymentInput{Amount: decimal.NewFromInt(-10)})
	assert.ErrorIs(t, err, ErrNonPositivePayment)
}

func TestPaymentServiceRecordForeignLoan(t *testing.T) {
	service, _, loanRepo, _ := newPaymentFixture(t)

	loanRepo.mockFindByID = func(ctx context.Context, userID, id uint) (*models.Loan, error) {
		return nil, gorm.ErrRecordNotFound
	}

	_, err := service.Record(context.Background(), 1, 99, PaymentInput{
		Amount: decimal.NewFromInt(100),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}
