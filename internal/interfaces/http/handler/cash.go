package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/corebank/backend/internal/application/cashops"
	"github.com/corebank/backend/internal/infrastructure/logger"
	"github.com/corebank/backend/internal/interfaces/http/dto"
	"github.com/corebank/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader lets a client retry a cash operation without
// running it twice
const IdempotencyKeyHeader = "Idempotency-Key"

// IdempotencyStore remembers the response of a keyed cash operation
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Complete(ctx context.Context, key string, response []byte, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

// CashHandler handles customer cash operations and custodian endpoints
type CashHandler struct {
	BaseHandler
	cash           *cashops.Service
	idempotency    IdempotencyStore
	idempotencyTTL time.Duration
}

// CashHandlerOption configures a CashHandler
type CashHandlerOption func(*CashHandler)

// WithIdempotency replays the stored response when a request repeats an
// Idempotency-Key within ttl
func WithIdempotency(store IdempotencyStore, ttl time.Duration) CashHandlerOption {
	return func(h *CashHandler) {
		h.idempotency = store
		h.idempotencyTTL = ttl
	}
}

// NewCashHandler creates a new CashHandler
func NewCashHandler(cash *cashops.Service, opts ...CashHandlerOption) *CashHandler {
	h := &CashHandler{cash: cash, idempotencyTTL: 24 * time.Hour}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type operationFunc func(context.Context, cashops.OperationRequest) (*cashops.OperationResult, error)

// Withdraw pays cash out of the caller's till
// POST /cash/withdrawals
func (h *CashHandler) Withdraw(c *gin.Context) {
	h.operate(c, h.cash.Withdraw)
}

// Deposit takes cash into the caller's till
// POST /cash/deposits
func (h *CashHandler) Deposit(c *gin.Context) {
	h.operate(c, h.cash.Deposit)
}

// Transfer moves funds between two accounts
// POST /cash/transfers
func (h *CashHandler) Transfer(c *gin.Context) {
	h.operate(c, h.cash.Transfer)
}

func (h *CashHandler) operate(c *gin.Context, run operationFunc) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req dto.CashOperationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	var key string
	if header := c.GetHeader(IdempotencyKeyHeader); header != "" && h.idempotency != nil {
		key = caller.UserID.String() + ":" + header
		fresh, err := h.idempotency.Reserve(c.Request.Context(), key, h.idempotencyTTL)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		if !fresh {
			h.replay(c, key)
			return
		}
	}

	var destination *uuid.UUID
	if req.DestinationAccountID != nil {
		id := uuid.MustParse(*req.DestinationAccountID)
		destination = &id
	}

	result, err := run(c.Request.Context(), cashops.OperationRequest{
		BranchID:             caller.BranchID,
		UserID:               caller.UserID,
		CustomerID:           uuid.MustParse(req.CustomerID),
		AccountID:            uuid.MustParse(req.AccountID),
		DestinationAccountID: destination,
		ProductCode:          req.ProductCode,
		AccountType:          req.AccountType,
		Amount:               req.Amount,
		Fee:                  req.Fee,
		FeeInclusive:         req.FeeInclusive,
		SchemeCode:           req.SchemeCode,
		Denominations:        req.Denominations,
	})
	if err != nil {
		if key != "" {
			h.forget(c, key)
		}
		h.HandleError(c, err)
		return
	}
	resp := dto.ToOperationResponse(result)
	if key != "" {
		h.remember(c, key, resp)
	}
	h.Created(c, resp)
}

// replay answers a repeated key with the stored response, or 409 while
// the first request is still running
func (h *CashHandler) replay(c *gin.Context, key string) {
	body, err := h.idempotency.Get(c.Request.Context(), key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if body == nil {
		c.JSON(http.StatusConflict, dto.NewErrorResponse("REQUEST_IN_PROGRESS",
			"A request with this Idempotency-Key is still being processed", middleware.GetRequestID(c)))
		return
	}
	c.Header("Idempotent-Replayed", "true")
	h.Created(c, json.RawMessage(body))
}

func (h *CashHandler) remember(c *gin.Context, key string, resp dto.OperationResponse) {
	body, err := json.Marshal(resp)
	if err == nil {
		err = h.idempotency.Complete(c.Request.Context(), key, body, h.idempotencyTTL)
	}
	if err != nil {
		logger.L(c.Request.Context()).Warn("idempotent response not stored", zap.Error(err))
	}
}

func (h *CashHandler) forget(c *gin.Context, key string) {
	if err := h.idempotency.Release(c.Request.Context(), key); err != nil {
		logger.L(c.Request.Context()).Warn("idempotency key not released", zap.Error(err))
	}
}

// GetTransaction returns a committed operation
// GET /cash/transactions/:reference
func (h *CashHandler) GetTransaction(c *gin.Context) {
	tx, err := h.cash.GetTransaction(c.Request.Context(), c.Param("reference"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToTransactionResponse(tx))
}

// Position returns a custodian's balance next to its inventory
// GET /cash/custodians/:id/position
func (h *CashHandler) Position(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	p, err := h.cash.GetPosition(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToPositionResponse(p))
}

// OpenVault registers a branch vault
// POST /cash/vaults
func (h *CashHandler) OpenVault(c *gin.Context) {
	var req dto.OpenVaultRequest
	if !h.bindJSON(c, &req) {
		return
	}
	vault, err := h.cash.OpenVault(c.Request.Context(), uuid.MustParse(req.BranchID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.ToCustodianResponse(vault))
}

// Fund credits a vault or till with cash delivered to the branch
// POST /cash/custodians/:id/fund
func (h *CashHandler) Fund(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.FundRequest
	if !h.bindJSON(c, &req) {
		return
	}
	op, err := h.cash.Fund(c.Request.Context(), cashops.FundRequest{
		CustodianID:   id,
		UserID:        caller.UserID,
		Amount:        req.Amount,
		Denominations: req.Denominations,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.ToTellerOperationResponse(op))
}

// SuggestDenominations proposes a note and coin breakdown of ?amount
// GET /cash/denominations/suggest
func (h *CashHandler) SuggestDenominations(c *gin.Context) {
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		h.BadRequest(c, "amount must be a number")
		return
	}
	set, err := h.cash.SuggestDenominations(amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"amount": amount, "denominations": set})
}
