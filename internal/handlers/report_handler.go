package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emprestafacil/emprestafacil-api/internal/middleware"
	"github.com/emprestafacil/emprestafacil-api/internal/services"
)

type ReportHandler struct {
	reportService *services.ReportService
	exportService *services.ExportService
}

func NewReportHandler(reportService *services.ReportService, exportService *services.ExportService) *ReportHandler {
	return &ReportHandler{reportService: reportService, exportService: exportService}
}

// @Summary Dashboard
// @Description Get the landing dashboard summary for the current user
// @Tags Reports
// @Produce json
// @Success 200 {object} services.DashboardSummary
// @Security BearerAuth
// @Router /dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	userID := middleware.GetUserID(c)
	summary, err := h.reportService.Dashboard(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// @Summary Portfolio Report
// @Description Get the full portfolio report: totals, status distribution, monthly series and per-client summaries
// @Tags Reports
// @Produce json
// @Success 200 {object} services.PortfolioReport
// @Security BearerAuth
// @Router /reports/portfolio [get]
func (h *ReportHandler) Portfolio(c *gin.Context) {
	userID := middleware.GetUserID(c)
	report, err := h.reportService.Portfolio(c.Request.Context(), userID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// @Summary Loans CSV
// @Description Download the loan book as CSV
// @Tags Reports
// @Produce text/csv
// @Success 200 {file} file "emprestimos.csv"
// @Security BearerAuth
// @Router /reports/loans_csv [get]
func (h *ReportHandler) LoansCSV(c *gin.Context) {
	userID := middleware.GetUserID(c)
	buf, err := h.reportService.GenerateLoansCSV(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=emprestimos.csv")
	c.String(http.StatusOK, buf.String())
}

// @Summary Portfolio Statement PDF
// @Description Download the portfolio statement as PDF
// @Tags Reports
// @Produce application/pdf
// @Success 200 {file} file "extrato.pdf"
// @Security BearerAuth
// @Router /reports/statement_pdf [get]
func (h *ReportHandler) StatementPDF(c *gin.Context) {
	userID := middleware.GetUserID(c)
	buf, err := h.reportService.GenerateStatementPDF(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=extrato_%d.pdf", userID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// @Summary Export Portfolio XLSX
// @Description Download the portfolio report as a spreadsheet
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file "relatorio_carteira.xlsx"
// @Security BearerAuth
// @Router /reports/portfolio_xlsx [get]
func (h *ReportHandler) ExportXLSX(c *gin.Context) {
	userID := middleware.GetUserID(c)
	data, filename, err := h.exportService.ExportXLSX(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// @Summary Export Portfolio PDF
// @Description Download the portfolio report as PDF
// @Tags Reports
// @Produce application/pdf
// @Success 200 {file} file "relatorio_carteira.pdf"
// @Security BearerAuth
// @Router /reports/summary_pdf [get]
func (h *ReportHandler) ExportPDF(c *gin.Context) {
	userID := middleware.GetUserID(c)
	data, filename, err := h.exportService.ExportPDF(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}
