package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/emprestafacil/emprestafacil-api/internal/middleware"
	"github.com/emprestafacil/emprestafacil-api/internal/services"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// @Summary Record Payment
// @Description Record a repayment against a loan. Settles the loan when the paid total covers the loan total.
// @Tags Payments
// @Accept json
// @Produce json
// @Param loan_id path int true "Loan ID"
// @Param request body services.PaymentInput true "Payment Data"
// @Success 201 {object} models.Payment
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /loans/{loan_id}/payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	loanID, _ := strconv.ParseUint(c.Param("loan_id"), 10, 32)

	var input services.PaymentInput
	if err := BindNestedOrFlat(c, "payment", &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.paymentService.Record(c.Request.Context(), userID, uint(loanID), input)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Empréstimo não encontrado"})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"payment": payment})
}

// @Summary List Loan Payments
// @Description Get the payments recorded against a loan, oldest first
// @Tags Payments
// @Accept json
// @Produce json
// @Param loan_id path int true "Loan ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /loans/{loan_id}/payments [get]
func (h *PaymentHandler) IndexByLoan(c *gin.Context) {
	userID := middleware.GetUserID(c)
	loanID, _ := strconv.ParseUint(c.Param("loan_id"), 10, 32)

	payments, err := h.paymentService.ListByLoan(c.Request.Context(), userID, uint(loanID))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Empréstimo não encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

// @Summary Recent Payments
// @Description Get the most recent payments across all of the user's loans
// @Tags Payments
// @Accept json
// @Produce json
// @Param limit query int false "Max rows" default(10)
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /payments/recent [get]
func (h *PaymentHandler) Recent(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = 10
	}

	payments, err := h.paymentService.Recent(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []gin.H
	for i := range payments {
		p := &payments[i]
		responses = append(responses, gin.H{
			"id":           p.ID,
			"loan_id":      p.LoanID,
			"amount":       p.Amount,
			"payment_date": p.PaymentDate,
			"notes":        p.Notes,
			"loan_number":  p.Loan.LoanNumber,
			"client_name":  p.Loan.Client.Name,
			"created_at":   p.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"payments": responses})
}
