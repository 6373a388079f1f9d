package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emprestafacil/emprestafacil-api/internal/models"
	"github.com/emprestafacil/emprestafacil-api/internal/repository"
)

// Mock LoanRepository
type mockLoanRepository struct {
	repository.LoanRepository
	mockFindByID             func(ctx context.Context, userID, id uint) (*models.Loan, error)
	mockFindByIDWithPayments func(ctx context.Context, userID, id uint) (*models.Loan, error)
	mockFindAllWithPayments  func(ctx context.Context, userID uint) ([]models.Loan, error)
	mockNextLoanNumber       func(ctx context.Context, userID uint) (int, error)
	mockCreate               func(ctx context.Context, loan *models.Loan) error
	mockUpdate               func(ctx context.Context, loan *models.Loan) error
	mockUpdateStatus         func(ctx context.Context, id uint, status string) error
	mockFindActivePastDue    func(ctx context.Context, before time.Time) ([]models.Loan, error)
}

func (m *mockLoanRepository) FindByID(ctx context.Context, userID, id uint) (*models.Loan, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, userID, id)
	}
	return nil, nil
}

func (m *mockLoanRepository) FindByIDWithPayments(ctx context.Context, userID, id uint) (*models.Loan, error) {
	if m.mockFindByIDWithPayments != nil {
		return m.mockFindByIDWithPayments(ctx, userID, id)
	}
	return nil, nil
}

func (m *mockLoanRepository) FindAllWithPayments(ctx context.Context, userID uint) ([]models.Loan, error) {
	if m.mockFindAllWithPayments != nil {
		return m.mockFindAllWithPayments(ctx, userID)
	}
	return nil, nil
}

func (m *mockLoanRepository) NextLoanNumber(ctx context.Context, userID uint) (int, error) {
	if m.mockNextLoanNumber != nil {
		return m.mockNextLoanNumber(ctx, userID)
	}
	return 1, nil
}

func (m *mockLoanRepository) Create(ctx context.Context, loan *models.Loan) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, loan)
	}
	return nil
}

func (m *mockLoanRepository) Update(ctx context.Context, loan *models.Loan) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, loan)
	}
	return nil
}

func (m *mockLoanRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	if m.mockUpdateStatus != nil {
		return m.mockUpdateStatus(ctx, id, status)
	}
	return nil
}

func (m *mockLoanRepository) FindActivePastDue(ctx context.Context, before time.Time) ([]models.Loan, error) {
	if m.mockFindActivePastDue != nil {
		return m.mockFindActivePastDue(ctx, before)
	}
	return nil, nil
}

// Mock ClientRepository
type mockClientRepository struct {
	repository.ClientRepository
	mockFindByID   func(ctx context.Context, userID, id uint) (*models.Client, error)
	mockCountLoans func(ctx context.Context, clientID uint) (int64, error)
	mockList       func(ctx context.Context, userID uint, query *repository.ListQuery) ([]models.Client, int64, error)
	mockCount      func(ctx context.Context, userID uint) (int64, error)
	mockDelete     func(ctx context.Context, userID, id uint) error
}

func (m *mockClientRepository) FindByID(ctx context.Context, userID, id uint) (*models.Client, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, userID, id)
	}
	return &models.Client{ID: id, UserID: userID, Name: "Cliente Teste"}, nil
}

func (m *mockClientRepository) CountLoans(ctx context.Context, clientID uint) (int64, error) {
	if m.mockCountLoans != nil {
		return m.mockCountLoans(ctx, clientID)
	}
	return 0, nil
}

func (m *mockClientRepository) List(ctx context.Context, userID uint, query *repository.ListQuery) ([]models.Client, int64, error) {
	if m.mockList != nil {
		return m.mockList(ctx, userID, query)
	}
	return nil, 0, nil
}

func (m *mockClientRepository) Count(ctx context.Context, userID uint) (int64, error) {
	if m.mockCount != nil {
		return m.mockCount(ctx, userID)
	}
	return 0, nil
}

func (m *mockClientRepository) Delete(ctx context.Context, userID, id uint) error {
	if m.mockDelete != nil {
		return m.mockDelete(ctx, userID, id)
	}
	return nil
}

// Mock SettingsRepository
type mockSettingsRepository struct {
	repository.SettingsRepository
	mockFindOrCreate func(ctx context.Context, userID uint) (*models.UserSettings, error)
}

func (m *mockSettingsRepository) FindOrCreate(ctx context.Context, userID uint) (*models.UserSettings, error) {
	if m.mockFindOrCreate != nil {
		return m.mockFindOrCreate(ctx, userID)
	}
	return models.DefaultUserSettings(userID), nil
}

// Mock NotificationRepository
type mockNotificationRepository struct {
	repository.NotificationRepository
	created []models.Notification
}

func (m *mockNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	m.created = append(m.created, *n)
	return nil
}

func TestLoanServiceCreate(t *testing.T) {
	loanRepo := &mockLoanRepository{}
	clientRepo := &mockClientRepository{}
	settingsRepo := &mockSettingsRepository{}
	notifRepo := &mockNotificationRepository{}
	service := NewLoanService(loanRepo, clientRepo, settingsRepo, NewNotificationService(notifRepo))

	var created *models.Loan
	loanRepo.mockNextLoanNumber = func(ctx context.Context, userID uint) (int, error) {
		return 4, nil
	}
	loanRepo.mockCreate = func(ctx context.Context, loan *models.Loan) error {
		loan.ID = 7
		created = loan
		return nil
	}
	loanRepo.mockFindByIDWithPayments = func(ctx context.Context, userID, id uint) (*models.Loan, error) {
		loan := *created
		loan.Client = models.Client{ID: loan.ClientID, Name: "Cliente Teste"}
		return &loan, nil
	}

	resp, err := service.Create(context.Background(), 1, LoanInput{
		ClientID:     2,
		Amount:       decimal.NewFromInt(1000),
		InterestRate: decimal.NewFromInt(30),
		Installments: 1,
		LoanDate:     time.Now(),
	})
	require.NoError(t, err)

	assert.Equal(t, 4, resp.LoanNumber)
	assert.Equal(t, models.LoanStatusActive, resp.Status)
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(1300)), "totalAmount = %s", resp.TotalAmount)
	assert.True(t, resp.InstallmentAmount.Equal(decimal.NewFromInt(1300)))
	assert.NotEmpty(t, created.GUID)

	// Overdue rates fall back to the user defaults
	assert.True(t, created.DailyInterestRate.Equal(decimal.RequireFromString("0.1")))
	assert.True(t, created.LateFeePercentage.Equal(decimal.NewFromInt(2)))
}

func TestLoanServiceCreateRejectsBadInput(t *testing.T) {
	loanRepo := &mockLoanRepository{}
	service := NewLoanService(loanRepo, &mockClientRepository{}, &mockSettingsRepository{}, NewNotificationService(&mockNotificationRepository{}))

	_, err := service.Create(context.Background(), 1, LoanInput{
		ClientID:     2,
		Amount:       decimal.NewFromInt(1000),
		InterestRate: decimal.NewFromInt(30),
		Installments: 0,
		LoanDate:     time.Now(),
	})
	assert.Error(t, err)
}

func TestLoanServiceUpdateRecomputesEconomics(t *testing.T) {
	loanRepo := &mockLoanRepository{}
	service := NewLoanService(loanRepo, &mockClientRepository{}, &mockSettingsRepository{}, NewNotificationService(&mockNotificationRepository{}))

	stored := &models.Loan{
		ID:                9,
		UserID:            1,
		ClientID:          2,
		LoanNumber:        1,
		Amount:            decimal.NewFromInt(1000),
		InterestRate:      decimal.NewFromInt(30),
		Installments:      2,
		TotalAmount:       decimal.NewFromInt(1300),
		InstallmentAmount: decimal.NewFromInt(650),
		LoanDate:          time.Now(),
		Status:            models.LoanStatusActive,
		Client:            models.Client{ID: 2, Name: "Cliente Teste"},
	}
	loanRepo.mockFindByIDWithPayments = func(ctx context.Context, userID, id uint) (*models.Loan, error) {
		loan := *stored
		return &loan, nil
	}
	loanRepo.mockUpdate = func(ctx context.Context, loan *models.Loan) error {
		stored = loan
		return nil
	}

	resp, err := service.Update(context.Background(), 1, 9, LoanInput{
		ClientID:     2,
		Amount:       decimal.NewFromInt(2000),
		InterestRate: decimal.NewFromInt(30),
		Installments: 2,
	})
	require.NoError(t, err)

	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(2600)), "totalAmount = %s", resp.TotalAmount)
	assert.True(t, resp.InstallmentAmount.Equal(decimal.NewFromInt(1300)))
}

func TestLoanServiceUpdateRejectsInvalidTransition(t *testing.T) {
	loanRepo := &mockLoanRepository{}
	service := NewLoanService(loanRepo, &mockClientRepository{}, &mockSettingsRepository{}, NewNotificationService(&mockNotificationRepository{}))

	updated := false
	loanRepo.mockFindByIDWithPayments = func(ctx context.Context, userID, id uint) (*models.Loan, error) {
		return &models.Loan{
			ID:           9,
			UserID:       1,
			ClientID:     2,
			Amount:       decimal.NewFromInt(1000),
			InterestRate: decimal.NewFromInt(30),
			Installments: 1,
			Status:       models.LoanStatusPaid,
		}, nil
	}
	loanRepo.mockUpdate = func(ctx context.Context, loan *models.Loan) error {
		updated = true
		return nil
	}

	// paid → overdue is not a legal transition
	target := models.LoanStatusOverdue
	_, err := service.Update(context.Background(), 1, 9, LoanInput{
		ClientID:     2,
		Amount:       decimal.NewFromInt(1000),
		InterestRate: decimal.NewFromInt(30),
		Installments: 1,
		Status:       &target,
	})
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.False(t, updated, "invalid transition must not persist anything")
}

func TestLoanServiceRefreshOverdueStatuses(t *testing.T) {
	loanRepo := &mockLoanRepository{}
	notifRepo := &mockNotificationRepository{}
	service := NewLoanService(loanRepo, &mockClientRepository{}, &mockSettingsRepository{}, NewNotificationService(notifRepo))

	due := time.Now().AddDate(0, 0, -5)
	settled := time.Now().AddDate(0, 0, -10)
	loanRepo.mockFindActivePastDue = func(ctx context.Context, before time.Time) ([]models.Loan, error) {
		return []models.Loan{
			{
				ID: 1, UserID: 1, LoanNumber: 1, Status: models.LoanStatusActive,
				TotalAmount: decimal.NewFromInt(1300), DueDate: &due,
				Client: models.Client{Name: "Em Atraso"},
			},
			{
				// Fully paid but the status cache was never flipped;
				// must not be marked overdue.
				ID: 2, UserID: 1, LoanNumber: 2, Status: models.LoanStatusActive,
				TotalAmount: decimal.NewFromInt(500), DueDate: &settled,
				Payments: []models.Payment{{Amount: decimal.NewFromInt(500)}},
				Client:   models.Client{Name: "Quitado"},
			},
		}, nil
	}

	var statusUpdates []uint
	loanRepo.mockUpdateStatus = func(ctx context.Context, id uint, status string) error {
		assert.Equal(t, models.LoanStatusOverdue, status)
		statusUpdates = append(statusUpdates, id)
		return nil
	}

	require.NoError(t, service.RefreshOverdueStatuses(context.Background()))

	assert.Equal(t, []uint{1}, statusUpdates)
	require.Len(t, notifRepo.created, 1)
	assert.Equal(t, models.NotificationTypeLoanOverdue, *notifRepo.created[0].NotificationType)
}

func TestLoanServiceDerivedResponse(t *testing.T) {
	loanRepo := &mockLoanRepository{}
	service := NewLoanService(loanRepo, &mockClientRepository{}, &mockSettingsRepository{}, NewNotificationService(&mockNotificationRepository{}))

	due := time.Now().AddDate(0, 0, -10)
	loanRepo.mockFindByIDWithPayments = func(ctx context.Context, userID, id uint) (*models.Loan, error) {
		return &models.Loan{
			ID: 3, UserID: 1, ClientID: 2, LoanNumber: 1,
			Amount:            decimal.NewFromInt(1000),
			InterestRate:      decimal.Zero,
			Installments:      1,
			TotalAmount:       decimal.NewFromInt(1000),
			InstallmentAmount: decimal.NewFromInt(1000),
			Status:            models.LoanStatusActive,
			DueDate:           &due,
			DailyInterestRate: decimal.RequireFromString("0.1"),
			LateFeePercentage: decimal.NewFromInt(2),
			Client:            models.Client{ID: 2, Name: "Cliente Teste"},
		}, nil
	}

	resp, err := service.Get(context.Background(), 1, 3)
	require.NoError(t, err)

	// Stored status says active but the loan is past due with a balance
	assert.Equal(t, models.LoanStatusOverdue, resp.Status)
	assert.Equal(t, 10, resp.DaysOverdue)
	assert.True(t, resp.DailyInterest.Equal(decimal.NewFromInt(10)), "dailyInterest = %s", resp.DailyInterest)
	assert.True(t, resp.LateFee.Equal(decimal.NewFromInt(20)))
	assert.True(t, resp.TotalOverdue.Equal(decimal.NewFromInt(1030)))
}
