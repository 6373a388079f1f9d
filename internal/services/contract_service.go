package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"gorm.io/gorm"

	"github.com/emprestafacil/emprestafacil-api/internal/models"
	"github.com/emprestafacil/emprestafacil-api/internal/repository"
	"github.com/emprestafacil/emprestafacil-api/internal/storage"
)

// ContractService renders the loan agreement PDF and keeps the
// generated file linked to the loan.
type ContractService struct {
	loanRepo     repository.LoanRepository
	userRepo     repository.UserRepository
	documentRepo repository.DocumentRepository
	storage      *storage.LocalStorage
}

// NewContractService creates a new contract service
func NewContractService(
	loanRepo repository.LoanRepository,
	userRepo repository.UserRepository,
	documentRepo repository.DocumentRepository,
	storage *storage.LocalStorage,
) *ContractService {
	return &ContractService{
		loanRepo:     loanRepo,
		userRepo:     userRepo,
		documentRepo: documentRepo,
		storage:      storage,
	}
}

var ptMonths = []string{"", "janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro"}

func formatLongDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), ptMonths[t.Month()], t.Year())
}

// GenerateContractPDF renders the loan agreement and archives a copy.
// Every call produces a fresh document; the latest one is the current
// contract.
func (s *ContractService) GenerateContractPDF(ctx context.Context, userID, loanID uint) ([]byte, string, error) {
	loan, err := s.loanRepo.FindByIDWithPayments(ctx, userID, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}

	lender, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	data, err := s.renderContract(lender, loan)
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("contrato_%d.pdf", loan.LoanNumber)
	path, err := s.storage.UploadFromBytes(data, filename, "contracts")
	if err != nil {
		return nil, "", err
	}

	document := &models.LoanDocument{
		LoanID:   loan.ID,
		Type:     models.LoanDocumentTypeContract,
		FilePath: path,
	}
	if err := s.documentRepo.Create(ctx, document); err != nil {
		return nil, "", err
	}

	return data, filename, nil
}

// renderContract lays out the agreement with gofpdf
func (s *ContractService) renderContract(lender *models.User, loan *models.Loan) ([]byte, error) {
	lenderName := lender.Name
	if lender.CompanyName != nil && *lender.CompanyName != "" {
		lenderName = *lender.CompanyName
	}

	clientDoc := "____________________"
	if loan.Client.CPF != nil && *loan.Client.CPF != "" {
		clientDoc = *loan.Client.CPF
	}

	dueDateStr := "____________________"
	if loan.DueDate != nil {
		dueDateStr = formatLongDate(*loan.DueDate)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	// Latin-1 translator keeps the Portuguese accents readable with the
	// core fonts.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, tr("CONTRATO DE MÚTUO"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Empréstimo nº %d", loan.LoanNumber)), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	body := func(text string) {
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, tr(text), "", "J", false)
		pdf.Ln(3)
	}
	heading := func(text string) {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 7, tr(text), "", 1, "L", false, 0, "")
	}

	heading("DAS PARTES")
	body(fmt.Sprintf("CREDOR(A): %s.", lenderName))
	body(fmt.Sprintf("DEVEDOR(A): %s, CPF %s, telefone %s, residente em %s.",
		loan.Client.Name, clientDoc, loan.Client.Phone, loan.Client.Address))

	heading("DO OBJETO")
	body(fmt.Sprintf(
		"O(A) CREDOR(A) entrega ao(à) DEVEDOR(A), a título de empréstimo, a quantia de R$ %s, "+
			"na data de %s, que o(a) DEVEDOR(A) declara receber neste ato.",
		loan.Amount.StringFixed(2), formatLongDate(loan.LoanDate)))

	heading("DO PAGAMENTO")
	body(fmt.Sprintf(
		"O(A) DEVEDOR(A) pagará ao(à) CREDOR(A) o valor total de R$ %s, correspondente ao principal "+
			"acrescido de juros de %s%%, em %d parcela(s) de R$ %s, com vencimento final em %s.",
		loan.TotalAmount.StringFixed(2), loan.InterestRate.StringFixed(2),
		loan.Installments, loan.InstallmentAmount.StringFixed(2), dueDateStr))

	heading("DA MORA")
	body(fmt.Sprintf(
		"Em caso de atraso incidirão juros de mora de %s%% ao dia sobre o saldo devedor, "+
			"além de multa de %s%% aplicada uma única vez sobre o mesmo saldo.",
		loan.DailyInterestRate.String(), loan.LateFeePercentage.StringFixed(2)))

	heading("DO FORO")
	body("Fica eleito o foro da comarca do domicílio do(a) CREDOR(A) para dirimir quaisquer controvérsias oriundas deste contrato.")

	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, tr(formatLongDate(time.Now())), "", 1, "R", false, 0, "")
	pdf.Ln(14)

	pdf.CellFormat(90, 6, "_________________________________", "", 0, "C", false, 0, "")
	pdf.CellFormat(90, 6, "_________________________________", "", 1, "C", false, 0, "")
	pdf.CellFormat(90, 6, tr(lenderName), "", 0, "C", false, 0, "")
	pdf.CellFormat(90, 6, tr(loan.Client.Name), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(90, 5, "Credor(a)", "", 0, "C", false, 0, "")
	pdf.CellFormat(90, 5, "Devedor(a)", "", 1, "C", false, 0, "")

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LatestContract returns the newest stored contract file for a loan
func (s *ContractService) LatestContract(ctx context.Context, userID, loanID uint) (string, error) {
	if _, err := s.loanRepo.FindByID(ctx, userID, loanID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}

	document, err := s.documentRepo.FindLatestByType(ctx, loanID, models.LoanDocumentTypeContract)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}

	if !s.storage.Exists(document.FilePath) {
		return "", ErrNotFound
	}
	return s.storage.GetFullPath(document.FilePath), nil
}
