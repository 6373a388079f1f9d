package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/emprestafacil/emprestafacil-api/internal/finance"
	"github.com/emprestafacil/emprestafacil-api/internal/jobs"
	"github.com/emprestafacil/emprestafacil-api/internal/models"
	"github.com/emprestafacil/emprestafacil-api/internal/repository"
	"github.com/emprestafacil/emprestafacil-api/internal/statemachine"
)

// PaymentService records repayments and settles loans
type PaymentService struct {
	repo            repository.PaymentRepository
	loanRepo        repository.LoanRepository
	notificationSvc *NotificationService
	worker          *jobs.Worker
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	repo repository.PaymentRepository,
	loanRepo repository.LoanRepository,
	notificationSvc *NotificationService,
	worker *jobs.Worker,
) *PaymentService {
	return &PaymentService{
		repo:            repo,
		loanRepo:        loanRepo,
		notificationSvc: notificationSvc,
		worker:          worker,
	}
}

// PaymentInput carries the fields accepted when recording a payment
type PaymentInput struct {
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
	Notes       *string         `json:"notes"`
}

// Record registers a repayment against a loan. After the insert the
// payment set is re-read and, when the paid total covers the loan
// total, the loan transitions to paid. Overpayment is accepted; the
// remaining figure just goes negative.
func (s *PaymentService) Record(ctx context.Context, userID, loanID uint, input PaymentInput) (*models.Payment, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrNonPositivePayment
	}

	loan, err := s.loanRepo.FindByID(ctx, userID, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	paymentDate := input.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	payment := &models.Payment{
		LoanID:      loan.ID,
		UserID:      userID,
		Amount:      input.Amount,
		PaymentDate: paymentDate,
		Notes:       input.Notes,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, err
	}

	// Re-read the full payment set instead of trusting the running
	// total; concurrent inserts settle the loan exactly once.
	totalPaid, err := s.repo.SumByLoan(ctx, loan.ID)
	if err != nil {
		return nil, err
	}

	if finance.IsSettled(loan.TotalAmount, totalPaid) && loan.MayMarkPaid() {
		m := statemachine.NewLoanFSM(loan)
		if err := m.MarkPaid(ctx); err == nil {
			if err := s.loanRepo.UpdateStatus(ctx, loan.ID, loan.Status); err != nil {
				return nil, err
			}
			s.notifySettled(loan)
		}
	}

	return payment, nil
}

// notifySettled emits the loan-settled notification off the request path
func (s *PaymentService) notifySettled(loan *models.Loan) {
	userID := loan.UserID
	number := loan.LoanNumber
	clientName := loan.Client.Name
	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.NotifyUser(ctx, userID,
			"Empréstimo quitado",
			fmt.Sprintf("O empréstimo #%d de %s foi totalmente pago", number, clientName),
			models.NotificationTypeLoanSettled,
		)
	})
}

// ListByLoan returns the payments of one loan, oldest first
func (s *PaymentService) ListByLoan(ctx context.Context, userID, loanID uint) ([]models.Payment, error) {
	if _, err := s.loanRepo.FindByID(ctx, userID, loanID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.repo.FindByLoan(ctx, loanID)
}

// Recent returns the user's latest payments for the dashboard feed
func (s *PaymentService) Recent(ctx context.Context, userID uint, limit int) ([]models.Payment, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.repo.FindRecent(ctx, userID, limit)
}
