package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/meridianbank/banking/shared/cqrs"
	"github.com/meridianbank/banking/shared/errs"
	"github.com/meridianbank/banking/shared/models"
	"github.com/meridianbank/banking/shared/money"
	"github.com/meridianbank/banking/transaction-service/internal/domain"
)

// ---- mock implementations ----

type mockTransactionCommander struct {
	createFn   func(cqrs.CreateTransactionCommand) (*domain.Transaction, error)
	processFn  func(cqrs.ProcessTransactionCommand) (*domain.Transaction, error)
	completeFn func(cqrs.CompleteTransactionCommand) (*domain.Transaction, error)
	failFn     func(cqrs.FailTransactionCommand) (*domain.Transaction, error)
	cancelFn   func(cqrs.CancelTransactionCommand) (*domain.Transaction, error)
	reverseFn  func(cqrs.ReverseTransactionCommand) (*domain.Transaction, error)
}

func (m *mockTransactionCommander) CreateTransaction(_ context.Context, cmd cqrs.CreateTransactionCommand) (*domain.Transaction, error) {
	if m.createFn != nil {
		return m.createFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockTransactionCommander) Process(_ context.Context, cmd cqrs.ProcessTransactionCommand) (*domain.Transaction, error) {
	if m.processFn != nil {
		return m.processFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockTransactionCommander) Complete(_ context.Context, cmd cqrs.CompleteTransactionCommand) (*domain.Transaction, error) {
	if m.completeFn != nil {
		return m.completeFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockTransactionCommander) Fail(_ context.Context, cmd cqrs.FailTransactionCommand) (*domain.Transaction, error) {
	if m.failFn != nil {
		return m.failFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockTransactionCommander) Cancel(_ context.Context, cmd cqrs.CancelTransactionCommand) (*domain.Transaction, error) {
	if m.cancelFn != nil {
		return m.cancelFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockTransactionCommander) Reverse(_ context.Context, cmd cqrs.ReverseTransactionCommand) (*domain.Transaction, error) {
	if m.reverseFn != nil {
		return m.reverseFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}

type mockTransactionQuerier struct {
	getFn       func(cqrs.GetTransactionQuery) (*models.TransactionView, error)
	byRefFn     func(cqrs.GetTransactionByReferenceQuery) (*models.TransactionView, error)
	byAccountFn func(cqrs.ListTransactionsByAccountQuery) ([]models.TransactionView, error)
	byOwnerFn   func(cqrs.ListTransactionsByOwnerQuery) ([]models.TransactionView, error)
	byStatusFn  func(cqrs.ListTransactionsByStatusQuery) ([]models.TransactionView, error)
	staleFn     func(cqrs.ListStalePendingTransactionsQuery) ([]models.TransactionView, error)
}

func (m *mockTransactionQuerier) GetTransaction(_ context.Context, q cqrs.GetTransactionQuery) (*models.TransactionView, error) {
	if m.getFn != nil {
		return m.getFn(q)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockTransactionQuerier) GetTransactionByReference(_ context.Context, q cqrs.GetTransactionByReferenceQuery) (*models.TransactionView, error) {
	if m.byRefFn != nil {
		return m.byRefFn(q)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockTransactionQuerier) ListTransactionsByAccount(_ context.Context, q cqrs.ListTransactionsByAccountQuery) ([]models.TransactionView, error) {
	if m.byAccountFn != nil {
		return m.byAccountFn(q)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockTransactionQuerier) ListTransactionsByOwner(_ context.Context, q cqrs.ListTransactionsByOwnerQuery) ([]models.TransactionView, error) {
	if m.byOwnerFn != nil {
		return m.byOwnerFn(q)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockTransactionQuerier) ListTransactionsByStatus(_ context.Context, q cqrs.ListTransactionsByStatusQuery) ([]models.TransactionView, error) {
	if m.byStatusFn != nil {
		return m.byStatusFn(q)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockTransactionQuerier) ListStalePendingTransactions(_ context.Context, q cqrs.ListStalePendingTransactionsQuery) ([]models.TransactionView, error) {
	if m.staleFn != nil {
		return m.staleFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

// ---- helpers ----

func fakeAuth(ownerID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("ownerId", ownerID)
		c.Next()
	}
}

func newTransactionTestRouter(cmds TransactionCommander, qrys TransactionQuerier, ownerID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewTransactionHandler(cmds, qrys)

	v1 := r.Group("/v1/transactions")
	v1.Use(fakeAuth(ownerID))
	v1.POST("", h.CreateTransaction)
	v1.GET("/:transactionId", h.GetTransaction)
	v1.GET("/reference/:reference", h.GetTransactionByReference)
	v1.GET("/account/:accountId", h.ListByAccount)
	v1.GET("/owner/:ownerId", h.ListByOwner)
	v1.GET("/status/:status", h.ListByStatus)
	v1.GET("/pending/stale", h.ListStalePending)
	v1.POST("/:transactionId/process", h.Process)
	v1.POST("/:transactionId/complete", h.Complete)
	v1.POST("/:transactionId/fail", h.Fail)
	v1.POST("/:transactionId/cancel", h.Cancel)
	v1.POST("/:transactionId/reverse", h.Reverse)

	r.POST("/internal/transactions", h.CreateInternalTransaction)
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func pendingTransfer(t *testing.T) *domain.Transaction {
	t.Helper()
	tx, err := domain.NewTransaction(domain.TypeTransfer, money.MustNew("25.00", "USD"), "acc-1", "acc-2", "owner-1", "rent")
	if err != nil {
		t.Fatalf("NewTransaction: %v", err)
	}
	return tx
}

// ---- tests ----

func TestCreateTransactionEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		createFn   func(cqrs.CreateTransactionCommand) (*domain.Transaction, error)
		wantStatus int
	}{
		{
			name: "created",
			body: `{"type":"TRANSFER","amount":"25.00","currency":"USD","sourceAccountId":"acc-1","targetAccountId":"acc-2"}`,
			createFn: func(cmd cqrs.CreateTransactionCommand) (*domain.Transaction, error) {
				if cmd.OwnerID != "owner-1" {
					t.Errorf("expected owner from token, got %q", cmd.OwnerID)
				}
				return domain.NewTransaction(domain.TypeTransfer, money.MustNew("25.00", cmd.Currency),
					cmd.SourceAccountID, cmd.TargetAccountID, cmd.OwnerID, cmd.Description)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "malformed body",
			body:       `{"type":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown type rejected by validator",
			body:       `{"type":"GIFT","amount":"25.00","currency":"USD"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "transfer missing target",
			body: `{"type":"TRANSFER","amount":"25.00","currency":"USD","sourceAccountId":"acc-1"}`,
			createFn: func(cmd cqrs.CreateTransactionCommand) (*domain.Transaction, error) {
				return nil, errs.Validation("TRANSFER requires both source and target accounts")
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTransactionTestRouter(&mockTransactionCommander{createFn: tt.createFn}, &mockTransactionQuerier{}, "owner-1")
			w := doRequest(r, http.MethodPost, "/v1/transactions", tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body)
			}
		})
	}
}

func TestInternalCreateSettlesCompletedRecords(t *testing.T) {
	tx := pendingTransfer(t)
	var processed, completed bool
	cmds := &mockTransactionCommander{
		createFn: func(cmd cqrs.CreateTransactionCommand) (*domain.Transaction, error) {
			if cmd.OwnerID != "owner-7" {
				t.Errorf("expected owner from body, got %q", cmd.OwnerID)
			}
			return tx, nil
		},
		processFn: func(cmd cqrs.ProcessTransactionCommand) (*domain.Transaction, error) {
			processed = true
			return tx, tx.Process()
		},
		completeFn: func(cmd cqrs.CompleteTransactionCommand) (*domain.Transaction, error) {
			completed = true
			return tx, tx.Complete()
		},
	}
	r := newTransactionTestRouter(cmds, &mockTransactionQuerier{}, "owner-1")

	body := `{"type":"DEPOSIT","amount":"50.00","currency":"USD","targetAccountId":"acc-2","ownerId":"owner-7","status":"COMPLETED"}`
	w := doRequest(r, http.MethodPost, "/internal/transactions", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body)
	}
	if !processed || !completed {
		t.Error("COMPLETED request must run the full lifecycle")
	}
}

func TestInternalCreateRequiresOwner(t *testing.T) {
	r := newTransactionTestRouter(&mockTransactionCommander{}, &mockTransactionQuerier{}, "owner-1")

	body := `{"type":"DEPOSIT","amount":"50.00","currency":"USD","targetAccountId":"acc-2"}`
	w := doRequest(r, http.MethodPost, "/internal/transactions", body)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", w.Code, w.Body)
	}
}

func TestLifecycleEndpointStatuses(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		cmds       *mockTransactionCommander
		wantStatus int
	}{
		{
			name: "process ok",
			path: "/v1/transactions/tx-1/process",
			cmds: &mockTransactionCommander{
				processFn: func(cmd cqrs.ProcessTransactionCommand) (*domain.Transaction, error) {
					tx := pendingTransfer(t)
					return tx, tx.Process()
				},
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "complete from pending conflicts",
			path: "/v1/transactions/tx-1/complete",
			cmds: &mockTransactionCommander{
				completeFn: func(cmd cqrs.CompleteTransactionCommand) (*domain.Transaction, error) {
					return nil, errs.InvalidTransition("transaction", "completed", "PENDING")
				},
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "cancel unknown transaction",
			path: "/v1/transactions/missing/cancel",
			cmds: &mockTransactionCommander{
				cancelFn: func(cmd cqrs.CancelTransactionCommand) (*domain.Transaction, error) {
					return nil, errs.NotFound("transaction", cmd.TransactionID)
				},
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "fail with reason",
			path: "/v1/transactions/tx-1/fail",
			body: `{"reason":"card declined"}`,
			cmds: &mockTransactionCommander{
				failFn: func(cmd cqrs.FailTransactionCommand) (*domain.Transaction, error) {
					if cmd.Reason != "card declined" {
						t.Errorf("unexpected reason %q", cmd.Reason)
					}
					tx := pendingTransfer(t)
					return tx, tx.Fail(cmd.Reason)
				},
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "fail without reason",
			path:       "/v1/transactions/tx-1/fail",
			body:       `{}`,
			cmds:       &mockTransactionCommander{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "reverse twice conflicts",
			path: "/v1/transactions/tx-1/reverse",
			cmds: &mockTransactionCommander{
				reverseFn: func(cmd cqrs.ReverseTransactionCommand) (*domain.Transaction, error) {
					return nil, errs.InvalidTransition("transaction", "reversed", "REVERSED")
				},
			},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTransactionTestRouter(tt.cmds, &mockTransactionQuerier{}, "owner-1")
			w := doRequest(r, http.MethodPost, tt.path, tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body)
			}
		})
	}
}

func TestListByAccountReadsPaging(t *testing.T) {
	qrys := &mockTransactionQuerier{
		byAccountFn: func(q cqrs.ListTransactionsByAccountQuery) ([]models.TransactionView, error) {
			if q.AccountID != "acc-1" || q.Page != 2 || q.PageSize != 5 {
				t.Errorf("unexpected query: %+v", q)
			}
			return []models.TransactionView{{ID: "tx-1"}}, nil
		},
	}
	r := newTransactionTestRouter(&mockTransactionCommander{}, qrys, "owner-1")

	w := doRequest(r, http.MethodGet, "/v1/transactions/account/acc-1?page=2&pageSize=5", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp ListTransactionsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Transactions) != 1 || resp.Transactions[0].ID != "tx-1" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestGetByReference(t *testing.T) {
	qrys := &mockTransactionQuerier{
		byRefFn: func(q cqrs.GetTransactionByReferenceQuery) (*models.TransactionView, error) {
			if q.Reference == "TXN-AAAAAAAAAAAA" {
				return &models.TransactionView{ID: "tx-1", Reference: q.Reference}, nil
			}
			return nil, errs.NotFound("transaction", q.Reference)
		},
	}
	r := newTransactionTestRouter(&mockTransactionCommander{}, qrys, "owner-1")

	w := doRequest(r, http.MethodGet, "/v1/transactions/reference/TXN-AAAAAAAAAAAA", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	w = doRequest(r, http.MethodGet, "/v1/transactions/reference/TXN-BBBBBBBBBBBB", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestStalePendingQueryStringParsed(t *testing.T) {
	qrys := &mockTransactionQuerier{
		staleFn: func(q cqrs.ListStalePendingTransactionsQuery) ([]models.TransactionView, error) {
			if q.OlderThanHours != 48 {
				t.Errorf("expected 48, got %d", q.OlderThanHours)
			}
			return []models.TransactionView{}, nil
		},
	}
	r := newTransactionTestRouter(&mockTransactionCommander{}, qrys, "owner-1")

	w := doRequest(r, http.MethodGet, "/v1/transactions/pending/stale?olderThanHours=48", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}
