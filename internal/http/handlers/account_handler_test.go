package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"nestworth-api/internal/models"
	"nestworth-api/internal/repo"
	"nestworth-api/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccountStore struct {
	accounts map[string]*models.Account
	// recomputed maps account id to the balance RecomputeBalance should
	// restore, standing in for the transaction-table sum.
	recomputed map[string]decimal.Decimal
	nextID     int
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{
		accounts:   make(map[string]*models.Account),
		recomputed: make(map[string]decimal.Decimal),
		nextID:     1,
	}
}

func (fs *fakeAccountStore) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	account.ID = fmt.Sprintf("acct-%d", fs.nextID)
	fs.nextID++
	account.IsActive = true
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	fs.accounts[account.ID] = account
	return account, nil
}

func (fs *fakeAccountStore) GetByID(ctx context.Context, id, userID string) (*models.Account, error) {
	account, ok := fs.accounts[id]
	if !ok || account.UserID != userID {
		return nil, repo.ErrNotFound
	}
	return account, nil
}

func (fs *fakeAccountStore) List(ctx context.Context, userID string) ([]models.Account, error) {
	var out []models.Account
	for _, account := range fs.accounts {
		if account.UserID == userID && account.IsActive {
			out = append(out, *account)
		}
	}
	return out, nil
}

func (fs *fakeAccountStore) Update(ctx context.Context, id, userID string, update repo.AccountUpdate) (*models.Account, error) {
	account, err := fs.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if update.Name != nil {
		account.Name = *update.Name
	}
	if update.Type != nil {
		account.Type = *update.Type
	}
	account.UpdatedAt = time.Now()
	return account, nil
}

func (fs *fakeAccountStore) SoftDelete(ctx context.Context, id, userID string) error {
	account, err := fs.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}
	if !account.IsActive {
		return repo.ErrNotFound
	}
	account.IsActive = false
	return nil
}

func (fs *fakeAccountStore) RecomputeBalance(ctx context.Context, id, userID string) (*models.Account, error) {
	account, err := fs.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	account.Balance = fs.recomputed[id]
	return account, nil
}

func (fs *fakeAccountStore) Summary(ctx context.Context, userID string) (*repo.AccountSummary, error) {
	summary := &repo.AccountSummary{
		TotalBalance:   decimal.Zero,
		AccountsByType: make(map[models.AccountType]int64),
		BalanceByType:  make(map[models.AccountType]decimal.Decimal),
	}
	for _, account := range fs.accounts {
		if account.UserID != userID || !account.IsActive {
			continue
		}
		summary.TotalAccounts++
		summary.TotalBalance = summary.TotalBalance.Add(account.Balance)
		summary.AccountsByType[account.Type]++
		summary.BalanceByType[account.Type] = summary.BalanceByType[account.Type].Add(account.Balance)
	}
	return summary, nil
}

func accountTestRouter(store *fakeAccountStore, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewAccountHandler(services.NewAccountService(store))

	router := gin.New()
	router.Use(func(c *gin.Context) { c.Set("user_id", userID) })
	router.POST("/accounts", handler.Create)
	router.GET("/accounts", handler.List)
	router.GET("/accounts/summary", handler.Summary)
	router.GET("/accounts/:id", handler.GetByID)
	router.PATCH("/accounts/:id", handler.Update)
	router.DELETE("/accounts/:id", handler.Delete)
	router.POST("/accounts/:id/recompute", handler.Recompute)
	return router
}

func createAccount(t *testing.T, router *gin.Engine, body string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/accounts", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			Account struct {
				ID string `json:"id"`
			} `json:"account"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Data.Account.ID
}

func TestAccountCreateDefaultsToZeroBalance(t *testing.T) {
	store := newFakeAccountStore()
	router := accountTestRouter(store, "john")

	id := createAccount(t, router, `{"name": "Checking", "type": "checking"}`)
	assert.True(t, store.accounts[id].Balance.IsZero())
	assert.True(t, store.accounts[id].IsActive)
}

func TestAccountCreateRejectsBadType(t *testing.T) {
	store := newFakeAccountStore()
	router := accountTestRouter(store, "john")

	rec := doJSON(t, router, http.MethodPost, "/accounts", `{"name": "X", "type": "offshore"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"fail"`)
}

func TestAccountSoftDelete(t *testing.T) {
	store := newFakeAccountStore()
	router := accountTestRouter(store, "john")

	id := createAccount(t, router, `{"name": "Checking", "type": "checking"}`)

	rec := doJSON(t, router, http.MethodDelete, "/accounts/"+id, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Row retained, just inactive; the list no longer shows it.
	require.Contains(t, store.accounts, id)
	assert.False(t, store.accounts[id].IsActive)

	rec = doJSON(t, router, http.MethodGet, "/accounts", "")
	assert.Contains(t, rec.Body.String(), `"results":0`)

	// Deleting again reads as gone.
	rec = doJSON(t, router, http.MethodDelete, "/accounts/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAccountOwnershipScoping(t *testing.T) {
	store := newFakeAccountStore()
	johnRouter := accountTestRouter(store, "john")
	janeRouter := accountTestRouter(store, "jane")

	id := createAccount(t, johnRouter, `{"name": "Secret Savings", "type": "savings"}`)

	rec := doJSON(t, janeRouter, http.MethodGet, "/accounts/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Secret Savings")

	rec = doJSON(t, janeRouter, http.MethodPatch, "/accounts/"+id, `{"name": "Hijacked"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Secret Savings", store.accounts[id].Name)
}

func TestAccountRecompute(t *testing.T) {
	store := newFakeAccountStore()
	router := accountTestRouter(store, "john")

	id := createAccount(t, router, `{"name": "Checking", "type": "checking", "balance": 999}`)
	store.recomputed[id] = decimal.RequireFromString("379.50")

	rec := doJSON(t, router, http.MethodPost, "/accounts/"+id+"/recompute", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, store.accounts[id].Balance.Equal(decimal.RequireFromString("379.50")))
	assert.Contains(t, rec.Body.String(), "379.5")
}

func TestAccountSummary(t *testing.T) {
	store := newFakeAccountStore()
	router := accountTestRouter(store, "john")

	createAccount(t, router, `{"name": "Checking", "type": "checking", "balance": 100.25}`)
	createAccount(t, router, `{"name": "Savings", "type": "savings", "balance": 900}`)
	deleted := createAccount(t, router, `{"name": "Old", "type": "checking", "balance": 50}`)
	doJSON(t, router, http.MethodDelete, "/accounts/"+deleted, "")

	rec := doJSON(t, router, http.MethodGet, "/accounts/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Summary struct {
				TotalAccounts  int64                      `json:"totalAccounts"`
				TotalBalance   decimal.Decimal            `json:"totalBalance"`
				AccountsByType map[string]int64           `json:"accountsByType"`
				BalanceByType  map[string]decimal.Decimal `json:"balanceByType"`
			} `json:"summary"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Data.Summary.TotalAccounts)
	assert.True(t, resp.Data.Summary.TotalBalance.Equal(decimal.RequireFromString("1000.25")))
	assert.Equal(t, int64(1), resp.Data.Summary.AccountsByType["checking"])
	assert.True(t, resp.Data.Summary.BalanceByType["savings"].Equal(decimal.NewFromInt(900)))
}
