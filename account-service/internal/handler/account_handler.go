package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/meridianbank/banking/account-service/internal/domain"
	"github.com/meridianbank/banking/shared/cqrs"
	"github.com/meridianbank/banking/shared/middleware"
	"github.com/meridianbank/banking/shared/models"
	"github.com/meridianbank/banking/shared/utils"
)

// AccountCommander defines the write-side operations used by AccountHandler.
type AccountCommander interface {
	CreateAccount(ctx context.Context, cmd cqrs.CreateAccountCommand) (*domain.Account, error)
	Credit(ctx context.Context, cmd cqrs.CreditAccountCommand) (*domain.Account, error)
	Debit(ctx context.Context, cmd cqrs.DebitAccountCommand) (*domain.Account, error)
	BlockFunds(ctx context.Context, cmd cqrs.BlockFundsCommand) (*domain.Account, error)
	ReleaseFunds(ctx context.Context, cmd cqrs.ReleaseFundsCommand) (*domain.Account, error)
	Suspend(ctx context.Context, cmd cqrs.SuspendAccountCommand) (*domain.Account, error)
	Close(ctx context.Context, cmd cqrs.CloseAccountCommand) (*domain.Account, error)
}

// AccountQuerier defines the read-side operations used by AccountHandler.
type AccountQuerier interface {
	GetAccount(ctx context.Context, q cqrs.GetAccountQuery) (*models.AccountView, error)
	GetAccountByNumber(ctx context.Context, q cqrs.GetAccountByNumberQuery) (*models.AccountView, error)
	ListAccountsByOwner(ctx context.Context, q cqrs.ListAccountsByOwnerQuery) ([]models.AccountView, error)
	GetBalance(ctx context.Context, q cqrs.GetBalanceQuery) (*models.BalanceView, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	commands AccountCommander
	queries  AccountQuerier
}

func NewAccountHandler(commands AccountCommander, queries AccountQuerier) *AccountHandler {
	return &AccountHandler{commands: commands, queries: queries}
}

type CreateAccountRequest struct {
	AccountType string `json:"accountType" validate:"required,oneof=CHECKING SAVINGS BUSINESS JOINT STUDENT PREMIUM"`
	Currency    string `json:"currency" validate:"omitempty,len=3"`
}

type MoneyRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Currency    string          `json:"currency" validate:"required,len=3"`
	Description string          `json:"description" validate:"max=255"`
}

type ListAccountsResponse struct {
	Accounts []models.AccountView `json:"accounts"`
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	ownerID, _ := middleware.GetOwnerID(c)

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}

	account, err := h.commands.CreateAccount(c.Request.Context(), cqrs.CreateAccountCommand{
		OwnerID:     ownerID,
		AccountType: req.AccountType,
		Currency:    req.Currency,
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, accountToView(account))
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	ownerID, _ := middleware.GetOwnerID(c)

	views, err := h.queries.ListAccountsByOwner(c.Request.Context(), cqrs.ListAccountsByOwnerQuery{OwnerID: ownerID})
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListAccountsResponse{Accounts: views})
}

// ListAccountsByOwner serves the internal service-to-service lookup of all
// accounts owned by a given owner.
func (h *AccountHandler) ListAccountsByOwner(c *gin.Context) {
	ownerID := c.Param("ownerId")

	views, err := h.queries.ListAccountsByOwner(c.Request.Context(), cqrs.ListAccountsByOwnerQuery{OwnerID: ownerID})
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListAccountsResponse{Accounts: views})
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	view, err := h.queries.GetAccount(c.Request.Context(), cqrs.GetAccountQuery{
		AccountID: c.Param("accountId"),
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *AccountHandler) GetAccountByNumber(c *gin.Context) {
	accountNumber := c.Param("accountNumber")
	if !utils.ValidateAccountNumber(accountNumber) {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid account number format")
		return
	}

	view, err := h.queries.GetAccountByNumber(c.Request.Context(), cqrs.GetAccountByNumberQuery{
		AccountNumber: accountNumber,
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *AccountHandler) GetBalance(c *gin.Context) {
	balance, err := h.queries.GetBalance(c.Request.Context(), cqrs.GetBalanceQuery{
		AccountID: c.Param("accountId"),
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, balance)
}

func (h *AccountHandler) Credit(c *gin.Context) {
	req, ok := bindMoneyRequest(c)
	if !ok {
		return
	}

	account, err := h.commands.Credit(c.Request.Context(), cqrs.CreditAccountCommand{
		AccountID:   c.Param("accountId"),
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, accountToView(account))
}

func (h *AccountHandler) Debit(c *gin.Context) {
	req, ok := bindMoneyRequest(c)
	if !ok {
		return
	}

	account, err := h.commands.Debit(c.Request.Context(), cqrs.DebitAccountCommand{
		AccountID:   c.Param("accountId"),
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, accountToView(account))
}

func (h *AccountHandler) BlockFunds(c *gin.Context) {
	req, ok := bindMoneyRequest(c)
	if !ok {
		return
	}

	account, err := h.commands.BlockFunds(c.Request.Context(), cqrs.BlockFundsCommand{
		AccountID:   c.Param("accountId"),
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, accountToView(account))
}

func (h *AccountHandler) ReleaseFunds(c *gin.Context) {
	req, ok := bindMoneyRequest(c)
	if !ok {
		return
	}

	account, err := h.commands.ReleaseFunds(c.Request.Context(), cqrs.ReleaseFundsCommand{
		AccountID:   c.Param("accountId"),
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, accountToView(account))
}

func (h *AccountHandler) Suspend(c *gin.Context) {
	account, err := h.commands.Suspend(c.Request.Context(), cqrs.SuspendAccountCommand{
		AccountID: c.Param("accountId"),
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, accountToView(account))
}

func (h *AccountHandler) Close(c *gin.Context) {
	account, err := h.commands.Close(c.Request.Context(), cqrs.CloseAccountCommand{
		AccountID: c.Param("accountId"),
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, accountToView(account))
}

func bindMoneyRequest(c *gin.Context) (MoneyRequest, bool) {
	var req MoneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return req, false
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return req, false
	}
	return req, true
}

func accountToView(account *domain.Account) models.AccountView {
	return models.AccountView{
		ID:               account.ID,
		AccountNumber:    account.AccountNumber,
		OwnerID:          account.OwnerID,
		AccountType:      string(account.AccountType),
		Status:           string(account.Status),
		Balance:          account.Balance.Amount(),
		AvailableBalance: account.AvailableBalance.Amount(),
		Currency:         account.Balance.Currency(),
		DailyLimit:       account.DailyLimit,
		MonthlyLimit:     account.MonthlyLimit,
		CreatedAt:        account.CreatedAt,
		UpdatedAt:        account.UpdatedAt,
		ClosedAt:         account.ClosedAt,
	}
}
