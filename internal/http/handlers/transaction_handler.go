package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"nestworth-api/internal/models"
	"nestworth-api/internal/repo"
	"nestworth-api/internal/services"
	"nestworth-api/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Matches the NUMERIC(12,2) bound on balances.
var maxAmount = decimal.RequireFromString("999999999.99")

type TransactionHandler struct {
	transactions *services.TransactionService
}

type TransactionCreateRequest struct {
	AccountID   *string         `json:"account_id"`
	Type        string          `json:"type" binding:"required,oneof=income expense"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Category    string          `json:"category" binding:"required,max=100"`
	Description string          `json:"description" binding:"required,max=255"`
	Notes       *string         `json:"notes"`
	Date        string          `json:"date" binding:"required"`
}

type TransactionUpdateRequest struct {
	AccountID     *string          `json:"account_id"`
	DetachAccount bool             `json:"detach_account"`
	Type          *string          `json:"type" binding:"omitempty,oneof=income expense"`
	Amount        *decimal.Decimal `json:"amount"`
	Category      *string          `json:"category" binding:"omitempty,min=1,max=100"`
	Description   *string          `json:"description" binding:"omitempty,min=1,max=255"`
	Notes         *string          `json:"notes"`
	Date          *string          `json:"date"`
}

func NewTransactionHandler(transactions *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

func (h *TransactionHandler) Create(c *gin.Context) {
	var req TransactionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}

	if err := validateAmount(req.Amount); err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}

	date, err := parseTransactionDate(req.Date)
	if err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}

	tx := &models.Transaction{
		UserID:      c.GetString("user_id"),
		AccountID:   req.AccountID,
		Type:        models.TransactionType(req.Type),
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Notes:       req.Notes,
		Date:        date,
	}

	created, err := h.transactions.Create(c.Request.Context(), tx)
	if err != nil {
		respondStoreError(c, err, "no transaction found with that ID")
		return
	}

	utils.RespondCreated(c, gin.H{"transaction": created})
}

func (h *TransactionHandler) List(c *gin.Context) {
	filters, err := parseTransactionFilters(c)
	if err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}

	items, total, err := h.transactions.List(c.Request.Context(), filters)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if items == nil {
		items = []models.Transaction{}
	}
	utils.RespondList(c, gin.H{"transactions": items},
		utils.NewPagination(filters.Page, filters.PerPage, total))
}

func (h *TransactionHandler) GetByID(c *gin.Context) {
	tx, err := h.transactions.GetByID(c.Request.Context(), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		respondStoreError(c, err, "no transaction found with that ID")
		return
	}

	utils.RespondOK(c, gin.H{"transaction": tx})
}

func (h *TransactionHandler) Update(c *gin.Context) {
	var req TransactionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}

	update := repo.TransactionUpdate{
		AccountID:    req.AccountID,
		ClearAccount: req.DetachAccount,
		Amount:       req.Amount,
		Category:     req.Category,
		Description:  req.Description,
		Notes:        req.Notes,
	}

	if req.Amount != nil {
		if err := validateAmount(*req.Amount); err != nil {
			utils.RespondValidationError(c, err.Error())
			return
		}
	}
	if req.Type != nil {
		txType := models.TransactionType(*req.Type)
		update.Type = &txType
	}
	if req.Date != nil {
		date, err := parseTransactionDate(*req.Date)
		if err != nil {
			utils.RespondValidationError(c, err.Error())
			return
		}
		update.Date = &date
	}

	tx, err := h.transactions.Update(c.Request.Context(), c.Param("id"), c.GetString("user_id"), update)
	if err != nil {
		respondStoreError(c, err, "no transaction found with that ID")
		return
	}

	utils.RespondOK(c, gin.H{"transaction": tx})
}

func (h *TransactionHandler) Delete(c *gin.Context) {
	err := h.transactions.Delete(c.Request.Context(), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		respondStoreError(c, err, "no transaction found with that ID")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *TransactionHandler) Summary(c *gin.Context) {
	summary, err := h.transactions.Summary(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, gin.H{"summary": gin.H{
		"totalIncome":   summary.TotalIncome,
		"totalExpenses": summary.TotalExpenses,
		"netAmount":     summary.NetAmount,
	}})
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be a positive number")
	}
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("amount cannot exceed %s", maxAmount)
	}
	return nil
}

func parseTransactionDate(value string) (time.Time, error) {
	date, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be in YYYY-MM-DD format")
	}
	if date.After(time.Now().UTC()) {
		return time.Time{}, fmt.Errorf("date cannot be in the future")
	}
	return date, nil
}

func parseTransactionFilters(c *gin.Context) (repo.TransactionFilters, error) {
	filters := repo.TransactionFilters{
		UserID:   c.GetString("user_id"),
		Category: c.Query("category"),
		SortBy:   c.Query("sort_by"),
		SortDir:  c.Query("sort_dir"),
		Page:     parseIntDefault(c.Query("page"), 1),
		PerPage:  parseIntDefault(c.Query("per_page"), 10),
	}

	if typeStr := c.Query("type"); typeStr != "" {
		txType := models.TransactionType(typeStr)
		if !txType.Valid() {
			return filters, fmt.Errorf("type must be income or expense")
		}
		filters.Type = &txType
	}

	if accountID := c.Query("account_id"); accountID != "" {
		filters.AccountID = &accountID
	}

	if dateFrom := c.Query("date_from"); dateFrom != "" {
		parsed, err := time.Parse(dateLayout, dateFrom)
		if err != nil {
			return filters, fmt.Errorf("date_from must be in YYYY-MM-DD format")
		}
		filters.DateFrom = &parsed
	}

	if dateTo := c.Query("date_to"); dateTo != "" {
		parsed, err := time.Parse(dateLayout, dateTo)
		if err != nil {
			return filters, fmt.Errorf("date_to must be in YYYY-MM-DD format")
		}
		filters.DateTo = &parsed
	}

	return filters, nil
}

func parseIntDefault(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
