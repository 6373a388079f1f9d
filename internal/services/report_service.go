package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"html/template"
	"os"
	"sort"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/shopspring/decimal"

	"github.com/emprestafacil/emprestafacil-api/internal/finance"
	"github.com/emprestafacil/emprestafacil-api/internal/models"
	"github.com/emprestafacil/emprestafacil-api/internal/repository"
)

// ReportService aggregates the portfolio figures for one user. All
// money math runs in memory over decimals; status always comes from
// the derivation, never from the stored cache.
type ReportService struct {
	loanRepo    repository.LoanRepository
	clientRepo  repository.ClientRepository
	paymentRepo repository.PaymentRepository
	userRepo    repository.UserRepository
}

// NewReportService creates a new report service
func NewReportService(
	loanRepo repository.LoanRepository,
	clientRepo repository.ClientRepository,
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
) *ReportService {
	return &ReportService{
		loanRepo:    loanRepo,
		clientRepo:  clientRepo,
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
	}
}

// PortfolioTotals are the headline figures of the portfolio report
type PortfolioTotals struct {
	TotalLent        decimal.Decimal `json:"total_lent"`
	TotalReceivable  decimal.Decimal `json:"total_receivable"`
	TotalReceived    decimal.Decimal `json:"total_received"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	OverdueExposure  decimal.Decimal `json:"overdue_exposure"`
	NetProfit        decimal.Decimal `json:"net_profit"`
	ExpectedProfit   decimal.Decimal `json:"expected_profit"`
}

// MonthlyPoint is one bucket of the six-month performance series
type MonthlyPoint struct {
	Month    string          `json:"month"`
	Lent     decimal.Decimal `json:"lent"`
	Received decimal.Decimal `json:"received"`
}

// ClientSummary is one row of the per-client breakdown
type ClientSummary struct {
	ClientID   uint            `json:"client_id"`
	ClientName string          `json:"client_name"`
	Label      string          `json:"label"`
	LoanCount  int             `json:"loan_count"`
	TotalLent  decimal.Decimal `json:"total_lent"`
	TotalOwed  decimal.Decimal `json:"total_owed"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
	Remaining  decimal.Decimal `json:"remaining"`
}

// Client summary labels. Atrasado wins over Pago, Pago over Ativo.
const (
	ClientLabelOverdue = "Atrasado"
	ClientLabelPaid    = "Pago"
	ClientLabelActive  = "Ativo"
)

// PortfolioReport is the full reporting payload
type PortfolioReport struct {
	Totals             PortfolioTotals  `json:"totals"`
	StatusDistribution map[string]int64 `json:"status_distribution"`
	Monthly            []MonthlyPoint   `json:"monthly"`
	Clients            []ClientSummary  `json:"clients"`
	GeneratedAt        time.Time        `json:"generated_at"`
}

// Portfolio builds the full report for one user at the given reference
// time.
func (s *ReportService) Portfolio(ctx context.Context, userID uint, now time.Time) (*PortfolioReport, error) {
	loans, err := s.loanRepo.FindAllWithPayments(ctx, userID)
	if err != nil {
		return nil, err
	}

	report := &PortfolioReport{
		Totals: PortfolioTotals{
			TotalLent:        decimal.Zero,
			TotalReceivable:  decimal.Zero,
			TotalReceived:    decimal.Zero,
			TotalOutstanding: decimal.Zero,
			OverdueExposure:  decimal.Zero,
			NetProfit:        decimal.Zero,
			ExpectedProfit:   decimal.Zero,
		},
		StatusDistribution: map[string]int64{
			models.LoanStatusActive:  0,
			models.LoanStatusPaid:    0,
			models.LoanStatusOverdue: 0,
		},
		GeneratedAt: now,
	}

	// Per-client rows cover active clients only; totals cover every loan.
	activeQuery := repository.NewListQuery()
	activeQuery.PerPage = 0
	activeQuery.Filters["is_active"] = "true"
	activeClients, _, err := s.clientRepo.List(ctx, userID, activeQuery)
	if err != nil {
		return nil, err
	}

	type clientAcc struct {
		summary    ClientSummary
		anyOverdue bool
		allPaid    bool
	}
	perClient := make(map[uint]*clientAcc, len(activeClients))
	for i := range activeClients {
		c := &activeClients[i]
		perClient[c.ID] = &clientAcc{
			summary: ClientSummary{
				ClientID:   c.ID,
				ClientName: c.Name,
				TotalLent:  decimal.Zero,
				TotalOwed:  decimal.Zero,
				TotalPaid:  decimal.Zero,
				Remaining:  decimal.Zero,
			},
			allPaid: true,
		}
	}

	for i := range loans {
		loan := &loans[i]
		totalPaid := loan.TotalPaid()
		remaining := loan.TotalAmount.Sub(totalPaid)
		status := finance.DeriveStatus(loan.Status, loan.TotalAmount, totalPaid, loan.DueDate, now)

		report.Totals.TotalLent = report.Totals.TotalLent.Add(loan.Amount)
		report.Totals.TotalReceivable = report.Totals.TotalReceivable.Add(loan.TotalAmount)
		report.Totals.TotalReceived = report.Totals.TotalReceived.Add(totalPaid)
		report.Totals.ExpectedProfit = report.Totals.ExpectedProfit.Add(loan.TotalAmount.Sub(loan.Amount))
		if status != models.LoanStatusPaid && remaining.GreaterThan(decimal.Zero) {
			report.Totals.TotalOutstanding = report.Totals.TotalOutstanding.Add(remaining)
		}
		if status == models.LoanStatusOverdue {
			overdue := finance.ComputeOverdue(loan.TotalAmount, totalPaid, loan.DueDate, now, loan.DailyInterestRate, loan.LateFeePercentage)
			report.Totals.OverdueExposure = report.Totals.OverdueExposure.Add(overdue.TotalOverdue)
		}

		report.StatusDistribution[status]++

		acc, ok := perClient[loan.ClientID]
		if !ok {
			// Loan belongs to an inactive client; counted in the
			// totals above but not listed.
			continue
		}
		acc.summary.LoanCount++
		acc.summary.TotalLent = acc.summary.TotalLent.Add(loan.Amount)
		acc.summary.TotalOwed = acc.summary.TotalOwed.Add(loan.TotalAmount)
		acc.summary.TotalPaid = acc.summary.TotalPaid.Add(totalPaid)
		acc.summary.Remaining = acc.summary.Remaining.Add(remaining)

		if status == models.LoanStatusOverdue {
			acc.anyOverdue = true
		}
		if status != models.LoanStatusPaid {
			acc.allPaid = false
		}
	}

	report.Totals.NetProfit = report.Totals.TotalReceived.Sub(report.Totals.TotalLent)

	report.Monthly = s.monthlySeries(loans, now)

	report.Clients = make([]ClientSummary, 0, len(perClient))
	for _, acc := range perClient {
		// Atrasado wins over Pago; Pago requires at least one loan
		switch {
		case acc.anyOverdue:
			acc.summary.Label = ClientLabelOverdue
		case acc.summary.LoanCount > 0 && acc.allPaid:
			acc.summary.Label = ClientLabelPaid
		default:
			acc.summary.Label = ClientLabelActive
		}
		report.Clients = append(report.Clients, acc.summary)
	}
	sort.Slice(report.Clients, func(i, j int) bool {
		return report.Clients[i].TotalOwed.GreaterThan(report.Clients[j].TotalOwed)
	})

	return report, nil
}

// monthlySeries buckets lent and received volume into the last six
// calendar months, zero-filled. Loans bucket by loan date and payments
// by payment date.
func (s *ReportService) monthlySeries(loans []models.Loan, now time.Time) []MonthlyPoint {
	points := make([]MonthlyPoint, 6)
	index := make(map[string]int, 6)
	for i := 0; i < 6; i++ {
		month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, i-5, 0)
		key := month.Format("2006-01")
		points[i] = MonthlyPoint{Month: key, Lent: decimal.Zero, Received: decimal.Zero}
		index[key] = i
	}

	for i := range loans {
		loan := &loans[i]
		if idx, ok := index[loan.LoanDate.Format("2006-01")]; ok {
			points[idx].Lent = points[idx].Lent.Add(loan.Amount)
		}
		for _, p := range loan.Payments {
			if idx, ok := index[p.PaymentDate.Format("2006-01")]; ok {
				points[idx].Received = points[idx].Received.Add(p.Amount)
			}
		}
	}

	return points
}

// DashboardSummary is the landing-page counters payload
type DashboardSummary struct {
	ClientCount       int64            `json:"client_count"`
	LoanCount         int64            `json:"loan_count"`
	ActiveLoans       int64            `json:"active_loans"`
	OverdueLoans      int64            `json:"overdue_loans"`
	TotalOutstanding  decimal.Decimal  `json:"total_outstanding"`
	ReceivedThisMonth decimal.Decimal  `json:"received_this_month"`
	RecentPayments    []models.Payment `json:"recent_payments"`
}

// Dashboard builds the landing-page counters for one user
func (s *ReportService) Dashboard(ctx context.Context, userID uint) (*DashboardSummary, error) {
	now := time.Now()

	clientCount, err := s.clientRepo.Count(ctx, userID)
	if err != nil {
		return nil, err
	}

	loans, err := s.loanRepo.FindAllWithPayments(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &DashboardSummary{
		ClientCount:       clientCount,
		LoanCount:         int64(len(loans)),
		TotalOutstanding:  decimal.Zero,
		ReceivedThisMonth: decimal.Zero,
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := range loans {
		loan := &loans[i]
		totalPaid := loan.TotalPaid()
		status := finance.DeriveStatus(loan.Status, loan.TotalAmount, totalPaid, loan.DueDate, now)

		switch status {
		case models.LoanStatusActive:
			summary.ActiveLoans++
		case models.LoanStatusOverdue:
			summary.OverdueLoans++
		}
		if status != models.LoanStatusPaid {
			remaining := loan.TotalAmount.Sub(totalPaid)
			if remaining.GreaterThan(decimal.Zero) {
				summary.TotalOutstanding = summary.TotalOutstanding.Add(remaining)
			}
		}

		for _, p := range loan.Payments {
			if !p.PaymentDate.Before(monthStart) {
				summary.ReceivedThisMonth = summary.ReceivedThisMonth.Add(p.Amount)
			}
		}
	}

	recent, err := s.paymentRepo.FindRecent(ctx, userID, 5)
	if err != nil {
		return nil, err
	}
	summary.RecentPayments = recent

	return summary, nil
}

// GenerateLoansCSV dumps the user's loans with derived figures
func (s *ReportService) GenerateLoansCSV(ctx context.Context, userID uint) (*bytes.Buffer, error) {
	loans, err := s.loanRepo.FindAllWithPayments(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	b := &bytes.Buffer{}
	w := csv.NewWriter(b)

	header := []string{"Nº", "Cliente", "Valor", "Juros %", "Parcelas", "Valor Total", "Data", "Vencimento", "Status", "Pago", "Restante", "Dias Atraso", "Total em Atraso"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	statusLabels := map[string]string{
		models.LoanStatusActive:  ClientLabelActive,
		models.LoanStatusPaid:    ClientLabelPaid,
		models.LoanStatusOverdue: ClientLabelOverdue,
	}

	for i := range loans {
		loan := &loans[i]
		totalPaid := loan.TotalPaid()
		status := finance.DeriveStatus(loan.Status, loan.TotalAmount, totalPaid, loan.DueDate, now)
		overdue := finance.Overdue{TotalOverdue: decimal.Zero}
		if status == models.LoanStatusOverdue {
			overdue = finance.ComputeOverdue(loan.TotalAmount, totalPaid, loan.DueDate, now, loan.DailyInterestRate, loan.LateFeePercentage)
		}

		dueDate := ""
		if loan.DueDate != nil {
			dueDate = loan.DueDate.Format("2006-01-02")
		}

		record := []string{
			fmt.Sprintf("%d", loan.LoanNumber),
			loan.Client.Name,
			loan.Amount.StringFixed(2),
			loan.InterestRate.StringFixed(2),
			fmt.Sprintf("%d", loan.Installments),
			loan.TotalAmount.StringFixed(2),
			loan.LoanDate.Format("2006-01-02"),
			dueDate,
			statusLabels[status],
			totalPaid.StringFixed(2),
			loan.TotalAmount.Sub(totalPaid).StringFixed(2),
			fmt.Sprintf("%d", overdue.DaysOverdue),
			overdue.TotalOverdue.StringFixed(2),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return b, nil
}

// Helper to generate PDF from HTML template
func (s *ReportService) generatePDF(templateName string, data interface{}) (*bytes.Buffer, error) {
	// Try path relative to project root (Prod)
	tmplPath := fmt.Sprintf("internal/services/templates/reports/%s", templateName)
	if _, err := os.Stat(tmplPath); os.IsNotExist(err) {
		// Try path relative to package (Test)
		tmplPath = fmt.Sprintf("templates/reports/%s", templateName)
	}

	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s (path: %s): %w", templateName, tmplPath, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create pdf generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(buf.Bytes()))
	page.EnableLocalFileAccess.Set(true)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create pdf: %w", err)
	}

	return pdfg.Buffer(), nil
}

// GenerateStatementPDF renders the user's portfolio statement as PDF
func (s *ReportService) GenerateStatementPDF(ctx context.Context, userID uint) (*bytes.Buffer, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	report, err := s.Portfolio(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	type clientRow struct {
		Name      string
		Label     string
		LoanCount int
		TotalOwed string
		TotalPaid string
		Remaining string
	}

	rows := make([]clientRow, 0, len(report.Clients))
	for _, c := range report.Clients {
		rows = append(rows, clientRow{
			Name:      c.ClientName,
			Label:     c.Label,
			LoanCount: c.LoanCount,
			TotalOwed: c.TotalOwed.StringFixed(2),
			TotalPaid: c.TotalPaid.StringFixed(2),
			Remaining: c.Remaining.StringFixed(2),
		})
	}

	companyName := user.Name
	if user.CompanyName != nil && *user.CompanyName != "" {
		companyName = *user.CompanyName
	}

	data := map[string]interface{}{
		"CompanyName":      companyName,
		"UserName":         user.Name,
		"Date":             now.Format("02/01/2006"),
		"TotalLent":        report.Totals.TotalLent.StringFixed(2),
		"TotalReceivable":  report.Totals.TotalReceivable.StringFixed(2),
		"TotalReceived":    report.Totals.TotalReceived.StringFixed(2),
		"TotalOutstanding": report.Totals.TotalOutstanding.StringFixed(2),
		"OverdueExposure":  report.Totals.OverdueExposure.StringFixed(2),
		"ActiveCount":      report.StatusDistribution[models.LoanStatusActive],
		"PaidCount":        report.StatusDistribution[models.LoanStatusPaid],
		"OverdueCount":     report.StatusDistribution[models.LoanStatusOverdue],
		"Clients":          rows,
	}

	return s.generatePDF("portfolio_statement.html", data)
}
