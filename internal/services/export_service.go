package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/emprestafacil/emprestafacil-api/internal/models"
)

// ExportService renders the portfolio report as downloadable files
type ExportService struct {
	reportSvc *ReportService
}

// NewExportService creates a new export service
func NewExportService(reportSvc *ReportService) *ExportService {
	return &ExportService{reportSvc: reportSvc}
}

// ExportXLSX writes the portfolio report as a spreadsheet
func (s *ExportService) ExportXLSX(ctx context.Context, userID uint) ([]byte, string, error) {
	report, err := s.reportSvc.Portfolio(ctx, userID, time.Now())
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Carteira"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	_ = f.SetCellValue(sheet, "A1", "Relatório da Carteira")
	_ = f.SetCellStyle(sheet, "A1", "A1", headerStyle)

	_ = f.SetCellValue(sheet, "A3", "Resumo Geral")
	_ = f.SetCellValue(sheet, "A4", "Métrica")
	_ = f.SetCellValue(sheet, "B4", "Valor")

	_ = f.SetCellValue(sheet, "A5", "Total Emprestado")
	_ = f.SetCellValue(sheet, "B5", report.Totals.TotalLent.InexactFloat64())
	_ = f.SetCellValue(sheet, "A6", "Total a Receber")
	_ = f.SetCellValue(sheet, "B6", report.Totals.TotalReceivable.InexactFloat64())
	_ = f.SetCellValue(sheet, "A7", "Total Recebido")
	_ = f.SetCellValue(sheet, "B7", report.Totals.TotalReceived.InexactFloat64())
	_ = f.SetCellValue(sheet, "A8", "Saldo em Aberto")
	_ = f.SetCellValue(sheet, "B8", report.Totals.TotalOutstanding.InexactFloat64())
	_ = f.SetCellValue(sheet, "A9", "Exposição em Atraso")
	_ = f.SetCellValue(sheet, "B9", report.Totals.OverdueExposure.InexactFloat64())
	_ = f.SetCellValue(sheet, "A10", "Lucro Líquido")
	_ = f.SetCellValue(sheet, "B10", report.Totals.NetProfit.InexactFloat64())

	_ = f.SetCellValue(sheet, "A12", "Distribuição por Status")
	_ = f.SetCellValue(sheet, "A13", "Status")
	_ = f.SetCellValue(sheet, "B13", "Quantidade")
	_ = f.SetCellValue(sheet, "A14", ClientLabelActive)
	_ = f.SetCellValue(sheet, "B14", report.StatusDistribution[models.LoanStatusActive])
	_ = f.SetCellValue(sheet, "A15", ClientLabelPaid)
	_ = f.SetCellValue(sheet, "B15", report.StatusDistribution[models.LoanStatusPaid])
	_ = f.SetCellValue(sheet, "A16", ClientLabelOverdue)
	_ = f.SetCellValue(sheet, "B16", report.StatusDistribution[models.LoanStatusOverdue])

	// Per-client breakdown on its own sheet
	clientSheet := "Clientes"
	_, _ = f.NewSheet(clientSheet)
	_ = f.SetCellValue(clientSheet, "A1", "Cliente")
	_ = f.SetCellValue(clientSheet, "B1", "Status")
	_ = f.SetCellValue(clientSheet, "C1", "Empréstimos")
	_ = f.SetCellValue(clientSheet, "D1", "Valor Total")
	_ = f.SetCellValue(clientSheet, "E1", "Pago")
	_ = f.SetCellValue(clientSheet, "F1", "Restante")

	for i, c := range report.Clients {
		row := i + 2
		_ = f.SetCellValue(clientSheet, fmt.Sprintf("A%d", row), c.ClientName)
		_ = f.SetCellValue(clientSheet, fmt.Sprintf("B%d", row), c.Label)
		_ = f.SetCellValue(clientSheet, fmt.Sprintf("C%d", row), c.LoanCount)
		_ = f.SetCellValue(clientSheet, fmt.Sprintf("D%d", row), c.TotalOwed.InexactFloat64())
		_ = f.SetCellValue(clientSheet, fmt.Sprintf("E%d", row), c.TotalPaid.InexactFloat64())
		_ = f.SetCellValue(clientSheet, fmt.Sprintf("F%d", row), c.Remaining.InexactFloat64())
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("relatorio_carteira_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ExportPDF writes the portfolio report as a compact PDF
func (s *ExportService) ExportPDF(ctx context.Context, userID uint) ([]byte, string, error) {
	report, err := s.reportSvc.Portfolio(ctx, userID, time.Now())
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Relatorio da Carteira")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Resumo Geral")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 10, "Total Emprestado:")
	pdf.Cell(40, 10, fmt.Sprintf("R$ %s", report.Totals.TotalLent.StringFixed(2)))
	pdf.Ln(6)

	pdf.Cell(60, 10, "Total a Receber:")
	pdf.Cell(40, 10, fmt.Sprintf("R$ %s", report.Totals.TotalReceivable.StringFixed(2)))
	pdf.Ln(6)

	pdf.Cell(60, 10, "Total Recebido:")
	pdf.Cell(40, 10, fmt.Sprintf("R$ %s", report.Totals.TotalReceived.StringFixed(2)))
	pdf.Ln(6)

	pdf.Cell(60, 10, "Saldo em Aberto:")
	pdf.Cell(40, 10, fmt.Sprintf("R$ %s", report.Totals.TotalOutstanding.StringFixed(2)))
	pdf.Ln(6)

	pdf.Cell(60, 10, "Exposicao em Atraso:")
	pdf.Cell(40, 10, fmt.Sprintf("R$ %s", report.Totals.OverdueExposure.StringFixed(2)))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Distribuicao por Status")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 10, "Ativos:")
	pdf.Cell(40, 10, fmt.Sprintf("%d", report.StatusDistribution[models.LoanStatusActive]))
	pdf.Ln(6)

	pdf.Cell(60, 10, "Pagos:")
	pdf.Cell(40, 10, fmt.Sprintf("%d", report.StatusDistribution[models.LoanStatusPaid]))
	pdf.Ln(6)

	pdf.Cell(60, 10, "Atrasados:")
	pdf.Cell(40, 10, fmt.Sprintf("%d", report.StatusDistribution[models.LoanStatusOverdue]))
	pdf.Ln(6)

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("relatorio_carteira_%s.pdf", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}
