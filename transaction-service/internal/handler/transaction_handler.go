package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/meridianbank/banking/shared/cqrs"
	"github.com/meridianbank/banking/shared/middleware"
	"github.com/meridianbank/banking/shared/models"
	"github.com/meridianbank/banking/transaction-service/internal/command"
	"github.com/meridianbank/banking/transaction-service/internal/domain"
)

// TransactionCommander defines the write-side operations used by
// TransactionHandler.
type TransactionCommander interface {
	CreateTransaction(ctx context.Context, cmd cqrs.CreateTransactionCommand) (*domain.Transaction, error)
	Process(ctx context.Context, cmd cqrs.ProcessTransactionCommand) (*domain.Transaction, error)
	Complete(ctx context.Context, cmd cqrs.CompleteTransactionCommand) (*domain.Transaction, error)
	Fail(ctx context.Context, cmd cqrs.FailTransactionCommand) (*domain.Transaction, error)
	Cancel(ctx context.Context, cmd cqrs.CancelTransactionCommand) (*domain.Transaction, error)
	Reverse(ctx context.Context, cmd cqrs.ReverseTransactionCommand) (*domain.Transaction, error)
}

// TransactionQuerier defines the read-side operations used by
// TransactionHandler.
type TransactionQuerier interface {
	GetTransaction(ctx context.Context, q cqrs.GetTransactionQuery) (*models.TransactionView, error)
	GetTransactionByReference(ctx context.Context, q cqrs.GetTransactionByReferenceQuery) (*models.TransactionView, error)
	ListTransactionsByAccount(ctx context.Context, q cqrs.ListTransactionsByAccountQuery) ([]models.TransactionView, error)
	ListTransactionsByOwner(ctx context.Context, q cqrs.ListTransactionsByOwnerQuery) ([]models.TransactionView, error)
	ListTransactionsByStatus(ctx context.Context, q cqrs.ListTransactionsByStatusQuery) ([]models.TransactionView, error)
	ListStalePendingTransactions(ctx context.Context, q cqrs.ListStalePendingTransactionsQuery) ([]models.TransactionView, error)
}

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	commands TransactionCommander
	queries  TransactionQuerier
}

func NewTransactionHandler(commands TransactionCommander, queries TransactionQuerier) *TransactionHandler {
	return &TransactionHandler{commands: commands, queries: queries}
}

type CreateTransactionRequest struct {
	Type              string          `json:"type" validate:"required,oneof=DEPOSIT WITHDRAWAL TRANSFER PAYMENT REFUND FEE INTEREST ADJUSTMENT"`
	Amount            decimal.Decimal `json:"amount" validate:"required"`
	Currency          string          `json:"currency" validate:"required,len=3"`
	SourceAccountID   string          `json:"sourceAccountId"`
	TargetAccountID   string          `json:"targetAccountId"`
	Description       string          `json:"description" validate:"max=500"`
	ExternalReference string          `json:"externalReference" validate:"max=100"`
}

// InternalCreateTransactionRequest is the service-to-service create. The
// owner comes from the body instead of a token, and the caller may ask for
// the record to be settled immediately (the movement already happened).
type InternalCreateTransactionRequest struct {
	CreateTransactionRequest
	OwnerID string `json:"ownerId" validate:"required"`
	Status  string `json:"status" validate:"omitempty,oneof=COMPLETED"`
}

type ListTransactionsResponse struct {
	Transactions []models.TransactionView `json:"transactions"`
}

type FailTransactionRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	ownerID, _ := middleware.GetOwnerID(c)

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	tx, err := h.commands.CreateTransaction(c.Request.Context(), cqrs.CreateTransactionCommand{
		Type:              req.Type,
		Amount:            req.Amount,
		Currency:          req.Currency,
		SourceAccountID:   req.SourceAccountID,
		TargetAccountID:   req.TargetAccountID,
		OwnerID:           ownerID,
		Description:       req.Description,
		ExternalReference: req.ExternalReference,
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, command.ToView(tx))
}

// CreateInternalTransaction records a movement reported by another service.
// When the caller asks for COMPLETED the record is settled in place: the
// movement it describes has already happened.
func (h *TransactionHandler) CreateInternalTransaction(c *gin.Context) {
	var req InternalCreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	ctx := c.Request.Context()
	tx, err := h.commands.CreateTransaction(ctx, cqrs.CreateTransactionCommand{
		Type:              req.Type,
		Amount:            req.Amount,
		Currency:          req.Currency,
		SourceAccountID:   req.SourceAccountID,
		TargetAccountID:   req.TargetAccountID,
		OwnerID:           req.OwnerID,
		Description:       req.Description,
		ExternalReference: req.ExternalReference,
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}

	if req.Status == string(domain.StatusCompleted) {
		if tx, err = h.commands.Process(ctx, cqrs.ProcessTransactionCommand{TransactionID: tx.ID}); err != nil {
			middleware.RespondWithDomainError(c, err)
			return
		}
		if tx, err = h.commands.Complete(ctx, cqrs.CompleteTransactionCommand{TransactionID: tx.ID}); err != nil {
			middleware.RespondWithDomainError(c, err)
			return
		}
	}

	c.JSON(http.StatusCreated, command.ToView(tx))
}

func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	view, err := h.queries.GetTransaction(c.Request.Context(), cqrs.GetTransactionQuery{
		TransactionID: c.Param("transactionId"),
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *TransactionHandler) GetTransactionByReference(c *gin.Context) {
	view, err := h.queries.GetTransactionByReference(c.Request.Context(), cqrs.GetTransactionByReferenceQuery{
		Reference: c.Param("reference"),
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *TransactionHandler) ListByAccount(c *gin.Context) {
	page, pageSize := paging(c)
	views, err := h.queries.ListTransactionsByAccount(c.Request.Context(), cqrs.ListTransactionsByAccountQuery{
		AccountID: c.Param("accountId"),
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListTransactionsResponse{Transactions: views})
}

func (h *TransactionHandler) ListByOwner(c *gin.Context) {
	page, pageSize := paging(c)
	views, err := h.queries.ListTransactionsByOwner(c.Request.Context(), cqrs.ListTransactionsByOwnerQuery{
		OwnerID:  c.Param("ownerId"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListTransactionsResponse{Transactions: views})
}

func (h *TransactionHandler) ListByStatus(c *gin.Context) {
	views, err := h.queries.ListTransactionsByStatus(c.Request.Context(), cqrs.ListTransactionsByStatusQuery{
		Status: c.Param("status"),
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListTransactionsResponse{Transactions: views})
}

func (h *TransactionHandler) ListStalePending(c *gin.Context) {
	olderThanHours, _ := strconv.Atoi(c.DefaultQuery("olderThanHours", "24"))
	views, err := h.queries.ListStalePendingTransactions(c.Request.Context(), cqrs.ListStalePendingTransactionsQuery{
		OlderThanHours: olderThanHours,
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListTransactionsResponse{Transactions: views})
}

func (h *TransactionHandler) Process(c *gin.Context) {
	tx, err := h.commands.Process(c.Request.Context(), cqrs.ProcessTransactionCommand{
		TransactionID: c.Param("transactionId"),
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, command.ToView(tx))
}

func (h *TransactionHandler) Complete(c *gin.Context) {
	tx, err := h.commands.Complete(c.Request.Context(), cqrs.CompleteTransactionCommand{
		TransactionID: c.Param("transactionId"),
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, command.ToView(tx))
}

func (h *TransactionHandler) Fail(c *gin.Context) {
	var req FailTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	tx, err := h.commands.Fail(c.Request.Context(), cqrs.FailTransactionCommand{
		TransactionID: c.Param("transactionId"),
		Reason:        req.Reason,
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, command.ToView(tx))
}

func (h *TransactionHandler) Cancel(c *gin.Context) {
	tx, err := h.commands.Cancel(c.Request.Context(), cqrs.CancelTransactionCommand{
		TransactionID: c.Param("transactionId"),
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, command.ToView(tx))
}

func (h *TransactionHandler) Reverse(c *gin.Context) {
	tx, err := h.commands.Reverse(c.Request.Context(), cqrs.ReverseTransactionCommand{
		TransactionID: c.Param("transactionId"),
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, command.ToView(tx))
}

func paging(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	return page, pageSize
}
