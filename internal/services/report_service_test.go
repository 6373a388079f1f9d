package services

import (
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emprestafacil/emprestafacil-api/internal/models"
	"github.com/emprestafacil/emprestafacil-api/internal/repository"
)

func reportFixture() (*ReportService, *mockLoanRepository, *mockClientRepository, *mockPaymentRepository) {
	loanRepo := &mockLoanRepository{}
	clientRepo := &mockClientRepository{}
	paymentRepo := &mockPaymentRepository{}
	service := NewReportService(loanRepo, clientRepo, paymentRepo, nil)
	return service, loanRepo, clientRepo, paymentRepo
}

func TestPortfolioReport(t *testing.T) {
	service, loanRepo, clientRepo, _ := reportFixture()

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	pastDue := now.AddDate(0, 0, -10)
	futureDue := now.AddDate(0, 0, 30)

	clientRepo.mockList = func(ctx context.Context, userID uint, query *repository.ListQuery) ([]models.Client, int64, error) {
		return []models.Client{
			{ID: 1, Name: "Ana"},
			{ID: 2, Name: "Bruno"},
			{ID: 3, Name: "Carla"},
		}, 3, nil
	}

	loanRepo.mockFindAllWithPayments = func(ctx context.Context, userID uint) ([]models.Loan, error) {
		return []models.Loan{
			{
				// Ana: overdue and paid, Atrasado must win
				ID: 1, ClientID: 1, Client: models.Client{ID: 1, Name: "Ana"},
				Amount: decimal.NewFromInt(1000), TotalAmount: decimal.NewFromInt(1300),
				Status: models.LoanStatusActive, DueDate: &pastDue,
				LoanDate:          now.AddDate(0, -2, 0),
				DailyInterestRate: decimal.RequireFromString("0.1"),
				LateFeePercentage: decimal.NewFromInt(2),
			},
			{
				ID: 2, ClientID: 1, Client: models.Client{ID: 1, Name: "Ana"},
				Amount: decimal.NewFromInt(500), TotalAmount: decimal.NewFromInt(650),
				Status: models.LoanStatusPaid, LoanDate: now.AddDate(0, -3, 0),
				Payments: []models.Payment{{Amount: decimal.NewFromInt(650), PaymentDate: now.AddDate(0, -1, 0)}},
			},
			{
				// Bruno: single settled loan, Pago
				ID: 3, ClientID: 2, Client: models.Client{ID: 2, Name: "Bruno"},
				Amount: decimal.NewFromInt(2000), TotalAmount: decimal.NewFromInt(2600),
				Status: models.LoanStatusActive, DueDate: &futureDue,
				LoanDate: now.AddDate(0, -1, 0),
				Payments: []models.Payment{{Amount: decimal.NewFromInt(2600), PaymentDate: now}},
			},
		}, nil
	}

	report, err := service.Portfolio(context.Background(), 1, now)
	require.NoError(t, err)

	// Totals
	assert.True(t, report.Totals.TotalLent.Equal(decimal.NewFromInt(3500)), "totalLent = %s", report.Totals.TotalLent)
	assert.True(t, report.Totals.TotalReceived.Equal(decimal.NewFromInt(3250)))
	assert.True(t, report.Totals.NetProfit.Equal(decimal.NewFromInt(-250)))
	assert.True(t, report.Totals.TotalOutstanding.Equal(decimal.NewFromInt(1300)))

	// Distribution uses the derived status: loan 1 persisted as active
	// but past due, loan 3 persisted as active but fully paid
	assert.Equal(t, int64(0), report.StatusDistribution[models.LoanStatusActive])
	assert.Equal(t, int64(2), report.StatusDistribution[models.LoanStatusPaid])
	assert.Equal(t, int64(1), report.StatusDistribution[models.LoanStatusOverdue])

	// Six zero-filled monthly buckets
	require.Len(t, report.Monthly, 6)
	assert.Equal(t, "2026-01", report.Monthly[0].Month)
	assert.Equal(t, "2026-06", report.Monthly[5].Month)
	assert.True(t, report.Monthly[0].Lent.IsZero())
	assert.True(t, report.Monthly[4].Lent.Equal(decimal.NewFromInt(2000)), "may lent = %s", report.Monthly[4].Lent)
	assert.True(t, report.Monthly[5].Received.Equal(decimal.NewFromInt(2600)))

	// Per-client rows sorted descending by total owed
	require.Len(t, report.Clients, 3)
	assert.Equal(t, "Bruno", report.Clients[0].ClientName)
	assert.Equal(t, ClientLabelPaid, report.Clients[0].Label)
	assert.Equal(t, "Ana", report.Clients[1].ClientName)
	assert.Equal(t, ClientLabelOverdue, report.Clients[1].Label, "Atrasado must win over Pago")
	assert.Equal(t, "Carla", report.Clients[2].ClientName)
	assert.Equal(t, ClientLabelActive, report.Clients[2].Label, "no loans is never Pago")
	assert.Equal(t, 0, report.Clients[2].LoanCount)
}

func TestPortfolioMonthlyZeroActivity(t *testing.T) {
	service, loanRepo, clientRepo, _ := reportFixture()

	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	clientRepo.mockList = func(ctx context.Context, userID uint, query *repository.ListQuery) ([]models.Client, int64, error) {
		return nil, 0, nil
	}
	loanRepo.mockFindAllWithPayments = func(ctx context.Context, userID uint) ([]models.Loan, error) {
		return []models.Loan{
			{
				ID: 1, ClientID: 1, Amount: decimal.NewFromInt(100),
				TotalAmount: decimal.NewFromInt(130), Status: models.LoanStatusActive,
				LoanDate: now.AddDate(0, -2, 0),
				Payments: []models.Payment{{Amount: decimal.NewFromInt(50), PaymentDate: now}},
			},
		}, nil
	}

	report, err := service.Portfolio(context.Background(), 1, now)
	require.NoError(t, err)

	require.Len(t, report.Monthly, 6)
	zeroMonths := 0
	for _, p := range report.Monthly {
		if p.Lent.IsZero() && p.Received.IsZero() {
			zeroMonths++
		}
	}
	assert.Equal(t, 4, zeroMonths)
}

func TestDashboard(t *testing.T) {
	service, loanRepo, clientRepo, _ := reportFixture()

	now := time.Now()
	pastDue := now.AddDate(0, 0, -5)

	clientRepo.mockCount = func(ctx context.Context, userID uint) (int64, error) { return 4, nil }
	loanRepo.mockFindAllWithPayments = func(ctx context.Context, userID uint) ([]models.Loan, error) {
		return []models.Loan{
			{ID: 1, TotalAmount: decimal.NewFromInt(1300), Status: models.LoanStatusActive},
			{ID: 2, TotalAmount: decimal.NewFromInt(500), Status: models.LoanStatusActive, DueDate: &pastDue},
			{
				ID: 3, TotalAmount: decimal.NewFromInt(200), Status: models.LoanStatusPaid,
				Payments: []models.Payment{{Amount: decimal.NewFromInt(200), PaymentDate: now}},
			},
		}, nil
	}
	summary, err := service.Dashboard(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(4), summary.ClientCount)
	assert.Equal(t, int64(3), summary.LoanCount)
	assert.Equal(t, int64(1), summary.ActiveLoans)
	assert.Equal(t, int64(1), summary.OverdueLoans)
	assert.True(t, summary.TotalOutstanding.Equal(decimal.NewFromInt(1800)))
	assert.True(t, summary.ReceivedThisMonth.Equal(decimal.NewFromInt(200)))
}

func TestGenerateLoansCSV(t *testing.T) {
	service, loanRepo, _, _ := reportFixture()

	due := time.Now().AddDate(0, 0, -10)
	loanRepo.mockFindAllWithPayments = func(ctx context.Context, userID uint) ([]models.Loan, error) {
		return []models.Loan{
			{
				ID: 1, LoanNumber: 1, Client: models.Client{Name: "Ana"},
				Amount:            decimal.NewFromInt(1000),
				InterestRate:      decimal.NewFromInt(30),
				Installments:      1,
				TotalAmount:       decimal.NewFromInt(1300),
				LoanDate:          time.Now().AddDate(0, -1, 0),
				DueDate:           &due,
				Status:            models.LoanStatusActive,
				DailyInterestRate: decimal.RequireFromString("0.1"),
				LateFeePercentage: decimal.NewFromInt(2),
			},
		}, nil
	}

	buf, err := service.GenerateLoansCSV(context.Background(), 1)
	require.NoError(t, err)

	records, err := csv.NewReader(buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Nº", records[0][0])
	row := records[1]
	assert.Equal(t, "1", row[0])
	assert.Equal(t, "Ana", row[1])
	assert.Equal(t, "1300.00", row[5])
	assert.Equal(t, ClientLabelOverdue, row[8])
	assert.Equal(t, "10", row[11])
}
