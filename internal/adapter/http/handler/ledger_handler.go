package handler

import (
	"dao-governance/internal/adapter/http/dto"
	"dao-governance/internal/adapter/http/middleware"
	"dao-governance/internal/core/domain"
	"dao-governance/internal/core/ports"
	"dao-governance/pkg/apperror"
	"dao-governance/pkg/response"

	"github.com/gin-gonic/gin"
)

// LedgerHandler handles token ledger endpoints.
type LedgerHandler struct {
	ledgerSvc ports.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerSvc ports.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc}
}

// Transfer handles POST /api/v1/ledger/transfers. The sender is the
// authenticated principal; there is no way to spend another account.
func (h *LedgerHandler) Transfer(c *gin.Context) {
	principal, ok := c.Get(middleware.CtxPrincipal)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	receipt, err := h.ledgerSvc.Transfer(
		c.Request.Context(),
		principal.(domain.Principal),
		domain.Principal(req.To),
		domain.Tokens(req.Amount),
	)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.TransferResponse{
		From:       receipt.From.String(),
		To:         receipt.To.String(),
		Amount:     uint64(receipt.Amount),
		Fee:        uint64(receipt.Fee),
		NewBalance: uint64(receipt.NewBalance),
	})
}

// Balance handles GET /api/v1/ledger/balance for the authenticated principal.
func (h *LedgerHandler) Balance(c *gin.Context) {
	principal, ok := c.Get(middleware.CtxPrincipal)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	balance, err := h.ledgerSvc.Balance(c.Request.Context(), principal.(domain.Principal))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{
		Principal: principal.(domain.Principal).String(),
		Balance:   uint64(balance),
	})
}

// ListAccounts handles GET /api/v1/ledger/accounts.
func (h *LedgerHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.ledgerSvc.Accounts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.AccountResponse, 0, len(accounts))
	for _, acc := range accounts {
		items = append(items, dto.AccountResponse{
			Owner:  acc.Owner.String(),
			Tokens: uint64(acc.Tokens),
		})
	}

	response.OK(c, items)
}
