package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/emprestafacil/emprestafacil-api/internal/finance"
	"github.com/emprestafacil/emprestafacil-api/internal/models"
	"github.com/emprestafacil/emprestafacil-api/internal/repository"
	"github.com/emprestafacil/emprestafacil-api/internal/statemachine"
	"github.com/emprestafacil/emprestafacil-api/pkg/logger"
)

// LoanService handles loan lifecycle and economics
type LoanService struct {
	loanRepo        repository.LoanRepository
	clientRepo      repository.ClientRepository
	settingsRepo    repository.SettingsRepository
	notificationSvc *NotificationService
}

// NewLoanService creates a new loan service
func NewLoanService(
	loanRepo repository.LoanRepository,
	clientRepo repository.ClientRepository,
	settingsRepo repository.SettingsRepository,
	notificationSvc *NotificationService,
) *LoanService {
	return &LoanService{
		loanRepo:        loanRepo,
		clientRepo:      clientRepo,
		settingsRepo:    settingsRepo,
		notificationSvc: notificationSvc,
	}
}

// LoanInput carries the writable loan fields. TotalAmount and
// InstallmentAmount are never accepted from the caller; they are always
// recomputed.
type LoanInput struct {
	ClientID          uint             `json:"client_id"`
	Amount            decimal.Decimal  `json:"amount"`
	InterestRate      decimal.Decimal  `json:"interest_rate"`
	Installments      int              `json:"installments"`
	LoanDate          time.Time        `json:"loan_date"`
	DueDate           *time.Time       `json:"due_date"`
	Notes             *string          `json:"notes"`
	DailyInterestRate *decimal.Decimal `json:"daily_interest_rate"`
	LateFeePercentage *decimal.Decimal `json:"late_fee_percentage"`
	Status            *string          `json:"status"`
}

// Create opens a new loan. Overdue rates fall back to the user's
// settings when not given, and the loan number is the next in the
// user's own sequence.
func (s *LoanService) Create(ctx context.Context, userID uint, input LoanInput) (*models.LoanResponse, error) {
	if _, err := s.clientRepo.FindByID(ctx, userID, input.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	eco, err := finance.ComputeLoanEconomics(input.Amount, input.InterestRate, input.Installments)
	if err != nil {
		return nil, err
	}

	settings, err := s.settingsRepo.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	dailyRate := settings.DailyInterestRate
	if input.DailyInterestRate != nil {
		dailyRate = *input.DailyInterestRate
	}
	lateFee := settings.LateFeePercentage
	if input.LateFeePercentage != nil {
		lateFee = *input.LateFeePercentage
	}

	number, err := s.loanRepo.NextLoanNumber(ctx, userID)
	if err != nil {
		return nil, err
	}

	loan := &models.Loan{
		GUID:              uuid.NewString(),
		UserID:            userID,
		ClientID:          input.ClientID,
		LoanNumber:        number,
		Amount:            input.Amount,
		InterestRate:      input.InterestRate,
		Installments:      input.Installments,
		TotalAmount:       eco.TotalAmount,
		InstallmentAmount: eco.InstallmentAmount,
		LoanDate:          input.LoanDate,
		DueDate:           input.DueDate,
		Status:            models.LoanStatusActive,
		DailyInterestRate: dailyRate,
		LateFeePercentage: lateFee,
		Notes:             input.Notes,
	}

	if err := s.loanRepo.Create(ctx, loan); err != nil {
		return nil, err
	}

	full, err := s.loanRepo.FindByIDWithPayments(ctx, userID, loan.ID)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(full, time.Now())
	return &resp, nil
}

// Get returns one loan with payments and derived figures
func (s *LoanService) Get(ctx context.Context, userID, id uint) (*models.LoanResponse, error) {
	loan, err := s.loanRepo.FindByIDWithPayments(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	resp := s.toResponse(loan, time.Now())
	return &resp, nil
}

// List returns the user's loans with derived figures
func (s *LoanService) List(ctx context.Context, userID uint, query *repository.ListQuery) ([]models.LoanResponse, int64, error) {
	loans, total, err := s.loanRepo.List(ctx, userID, query)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now()
	responses := make([]models.LoanResponse, 0, len(loans))
	for i := range loans {
		responses = append(responses, s.toResponse(&loans[i], now))
	}
	return responses, total, nil
}

// Update modifies a loan. Changing any economic input recomputes the
// derived amounts; a manual status change goes through the state
// machine and is rejected, leaving everything untouched, when the
// transition is invalid.
func (s *LoanService) Update(ctx context.Context, userID, id uint, input LoanInput) (*models.LoanResponse, error) {
	loan, err := s.loanRepo.FindByIDWithPayments(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if input.ClientID != 0 && input.ClientID != loan.ClientID {
		if _, err := s.clientRepo.FindByID(ctx, userID, input.ClientID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		loan.ClientID = input.ClientID
	}

	loan.Amount = input.Amount
	loan.InterestRate = input.InterestRate
	loan.Installments = input.Installments

	eco, err := finance.ComputeLoanEconomics(loan.Amount, loan.InterestRate, loan.Installments)
	if err != nil {
		return nil, err
	}
	loan.TotalAmount = eco.TotalAmount
	loan.InstallmentAmount = eco.InstallmentAmount

	if !input.LoanDate.IsZero() {
		loan.LoanDate = input.LoanDate
	}
	loan.DueDate = input.DueDate
	loan.Notes = input.Notes
	if input.DailyInterestRate != nil {
		loan.DailyInterestRate = *input.DailyInterestRate
	}
	if input.LateFeePercentage != nil {
		loan.LateFeePercentage = *input.LateFeePercentage
	}

	if input.Status != nil && *input.Status != loan.Status {
		if !models.ValidLoanStatus(*input.Status) {
			return nil, ErrInvalidStatus
		}
		if err := s.transition(ctx, loan, *input.Status); err != nil {
			return nil, err
		}
	}

	if err := s.loanRepo.Update(ctx, loan); err != nil {
		return nil, err
	}

	full, err := s.loanRepo.FindByIDWithPayments(ctx, userID, loan.ID)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(full, time.Now())
	return &resp, nil
}

// transition drives the state machine toward the requested status
func (s *LoanService) transition(ctx context.Context, loan *models.Loan, target string) error {
	m := statemachine.NewLoanFSM(loan)
	var err error
	switch target {
	case models.LoanStatusPaid:
		err = m.MarkPaid(ctx)
	case models.LoanStatusOverdue:
		err = m.MarkOverdue(ctx)
	case models.LoanStatusActive:
		err = m.Reactivate(ctx)
	default:
		return ErrInvalidStatus
	}
	if err != nil {
		return fmt.Errorf("%w: %s para %s", ErrInvalidState, loan.Status, target)
	}
	return nil
}

// Delete removes a loan along with its payments and documents
func (s *LoanService) Delete(ctx context.Context, userID, id uint) error {
	if err := s.loanRepo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// RefreshOverdueStatuses sweeps active loans past their due date across
// all tenants and flips the stored status cache to overdue. Runs from
// the background worker; failures on one loan do not stop the sweep.
func (s *LoanService) RefreshOverdueStatuses(ctx context.Context) error {
	loans, err := s.loanRepo.FindActivePastDue(ctx, time.Now())
	if err != nil {
		return err
	}

	flipped := 0
	for i := range loans {
		loan := &loans[i]
		if loan.RemainingAmount().LessThanOrEqual(decimal.Zero) {
			continue
		}

		if err := s.transition(ctx, loan, models.LoanStatusOverdue); err != nil {
			continue
		}
		if err := s.loanRepo.UpdateStatus(ctx, loan.ID, loan.Status); err != nil {
			logger.Error("failed to persist overdue status", "loan_id", loan.ID, "error", err)
			continue
		}
		flipped++

		s.notificationSvc.NotifyUser(ctx, loan.UserID,
			"Empréstimo em atraso",
			fmt.Sprintf("O empréstimo #%d de %s venceu e segue em aberto", loan.LoanNumber, loan.Client.Name),
			models.NotificationTypeLoanOverdue,
		)
	}

	if flipped > 0 {
		logger.Info("overdue sweep finished", "marked", flipped)
	}
	return nil
}

// NotifyDueSoon warns each user about active loans due in the next
// three days, honoring the per-user alert switch.
func (s *LoanService) NotifyDueSoon(ctx context.Context) error {
	now := time.Now()
	loans, err := s.loanRepo.FindDueSoon(ctx, now, now.AddDate(0, 0, 3))
	if err != nil {
		return err
	}

	for i := range loans {
		loan := &loans[i]
		settings, err := s.settingsRepo.FindOrCreate(ctx, loan.UserID)
		if err != nil || !settings.DueSoonAlerts {
			continue
		}

		s.notificationSvc.NotifyUser(ctx, loan.UserID,
			"Vencimento próximo",
			fmt.Sprintf("O empréstimo #%d de %s vence em %s", loan.LoanNumber, loan.Client.Name, loan.DueDate.Format("02/01/2006")),
			models.NotificationTypeSystem,
		)
	}
	return nil
}

// toResponse derives the per-loan figures at the given reference time.
// The returned status comes from the derivation, not the stored cache.
func (s *LoanService) toResponse(loan *models.Loan, now time.Time) models.LoanResponse {
	totalPaid := loan.TotalPaid()
	status := finance.DeriveStatus(loan.Status, loan.TotalAmount, totalPaid, loan.DueDate, now)

	overdue := finance.Overdue{DailyInterest: decimal.Zero, LateFee: decimal.Zero, TotalOverdue: decimal.Zero}
	if status == models.LoanStatusOverdue {
		overdue = finance.ComputeOverdue(loan.TotalAmount, totalPaid, loan.DueDate, now, loan.DailyInterestRate, loan.LateFeePercentage)
	}

	return models.LoanResponse{
		ID:                loan.ID,
		GUID:              loan.GUID,
		ClientID:          loan.ClientID,
		ClientName:        loan.Client.Name,
		LoanNumber:        loan.LoanNumber,
		Amount:            loan.Amount,
		InterestRate:      loan.InterestRate,
		Installments:      loan.Installments,
		TotalAmount:       loan.TotalAmount,
		InstallmentAmount: loan.InstallmentAmount,
		LoanDate:          loan.LoanDate,
		DueDate:           loan.DueDate,
		Status:            status,
		Notes:             loan.Notes,
		TotalPaid:         totalPaid,
		Remaining:         loan.TotalAmount.Sub(totalPaid),
		DaysOverdue:       overdue.DaysOverdue,
		DailyInterest:     overdue.DailyInterest,
		LateFee:           overdue.LateFee,
		TotalOverdue:      overdue.TotalOverdue,
		Payments:          loan.Payments,
		CreatedAt:         loan.CreatedAt,
	}
}
