package handlers

import (
	"net/http"

	"nestworth-api/internal/models"
	"nestworth-api/internal/repo"
	"nestworth-api/internal/services"
	"nestworth-api/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type AccountHandler struct {
	accounts *services.AccountService
}

type AccountCreateRequest struct {
	Name    string           `json:"name" binding:"required,min=1,max=100"`
	Type    string           `json:"type" binding:"required,oneof=checking savings credit investment other"`
	Balance *decimal.Decimal `json:"balance"`
}

type AccountUpdateRequest struct {
	Name *string `json:"name" binding:"omitempty,min=1,max=100"`
	Type *string `json:"type" binding:"omitempty,oneof=checking savings credit investment other"`
}

func NewAccountHandler(accounts *services.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

func (h *AccountHandler) Create(c *gin.Context) {
	var req AccountCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}

	balance := decimal.Zero
	if req.Balance != nil {
		balance = *req.Balance
	}

	account := &models.Account{
		UserID:  c.GetString("user_id"),
		Name:    req.Name,
		Type:    models.AccountType(req.Type),
		Balance: balance,
	}

	created, err := h.accounts.Create(c.Request.Context(), account)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondCreated(c, gin.H{"account": created})
}

func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.accounts.List(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if accounts == nil {
		accounts = []models.Account{}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"results": len(accounts),
		"data":    gin.H{"accounts": accounts},
	})
}

func (h *AccountHandler) GetByID(c *gin.Context) {
	account, err := h.accounts.GetByID(c.Request.Context(), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		respondStoreError(c, err, "no account found with that ID")
		return
	}

	utils.RespondOK(c, gin.H{"account": account})
}

func (h *AccountHandler) Update(c *gin.Context) {
	var req AccountUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}

	update := repo.AccountUpdate{Name: req.Name}
	if req.Type != nil {
		accountType := models.AccountType(*req.Type)
		update.Type = &accountType
	}

	account, err := h.accounts.Update(c.Request.Context(), c.Param("id"), c.GetString("user_id"), update)
	if err != nil {
		respondStoreError(c, err, "no account found with that ID")
		return
	}

	utils.RespondOK(c, gin.H{"account": account})
}

func (h *AccountHandler) Delete(c *gin.Context) {
	err := h.accounts.SoftDelete(c.Request.Context(), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		respondStoreError(c, err, "no account found with that ID")
		return
	}

	c.Status(http.StatusNoContent)
}

// Recompute rebuilds the cached balance from the transaction table.
func (h *AccountHandler) Recompute(c *gin.Context) {
	account, err := h.accounts.Recompute(c.Request.Context(), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		respondStoreError(c, err, "no account found with that ID")
		return
	}

	utils.RespondOK(c, gin.H{"account": account})
}

func (h *AccountHandler) Summary(c *gin.Context) {
	summary, err := h.accounts.Summary(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, gin.H{"summary": gin.H{
		"totalAccounts":  summary.TotalAccounts,
		"totalBalance":   summary.TotalBalance,
		"accountsByType": summary.AccountsByType,
		"balanceByType":  summary.BalanceByType,
	}})
}
