package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/emprestafacil/emprestafacil-api/internal/middleware"
	"github.com/emprestafacil/emprestafacil-api/internal/services"
)

type ContractHandler struct {
	contractService *services.ContractService
}

func NewContractHandler(contractService *services.ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

// @Summary Generate Contract
// @Description Generate the loan contract PDF, store it and return it
// @Tags Contracts
// @Produce application/pdf
// @Param loan_id path int true "Loan ID"
// @Success 200 {file} file "contrato.pdf"
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /loans/{loan_id}/contract [post]
func (h *ContractHandler) Generate(c *gin.Context) {
	userID := middleware.GetUserID(c)
	loanID, _ := strconv.ParseUint(c.Param("loan_id"), 10, 32)

	data, filename, err := h.contractService.GenerateContractPDF(c.Request.Context(), userID, uint(loanID))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Empréstimo não encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}

// @Summary Download Contract
// @Description Download the latest generated contract for a loan
// @Tags Contracts
// @Produce application/pdf
// @Param loan_id path int true "Loan ID"
// @Success 200 {file} file "contrato.pdf"
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /loans/{loan_id}/contract [get]
func (h *ContractHandler) Download(c *gin.Context) {
	userID := middleware.GetUserID(c)
	loanID, _ := strconv.ParseUint(c.Param("loan_id"), 10, 32)

	path, err := h.contractService.LatestContract(c.Request.Context(), userID, uint(loanID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contrato não encontrado"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=contrato_%d.pdf", loanID))
	c.File(path)
}
