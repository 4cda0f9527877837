package service

import (
	"context"

	"dao-governance/internal/core/domain"
	"dao-governance/internal/core/state"

	"github.com/rs/zerolog"
)

// LedgerServiceImpl implements ports.LedgerService over the in-memory
// governance state. All balance arithmetic happens inside the state's
// single critical section; this layer adds logging around it.
type LedgerServiceImpl struct {
	st  *state.State
	log zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(st *state.State, log zerolog.Logger) *LedgerServiceImpl {
	return &LedgerServiceImpl{st: st, log: log}
}

// Transfer moves amount from caller to recipient and burns the transfer fee
// from the caller. The caller must cover amount plus fee in one balance.
func (s *LedgerServiceImpl) Transfer(ctx context.Context, caller, to domain.Principal, amount domain.Tokens) (*domain.TransferReceipt, error) {
	receipt, err := s.st.Transfer(caller, to, amount)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("from", caller.String()).
		Str("to", to.String()).
		Uint64("amount", uint64(receipt.Amount)).
		Uint64("fee", uint64(receipt.Fee)).
		Msg("transfer applied")

	return &receipt, nil
}

// Balance returns the caller's current balance. Principals without an
// account read as zero.
func (s *LedgerServiceImpl) Balance(ctx context.Context, caller domain.Principal) (domain.Tokens, error) {
	return s.st.BalanceOf(caller), nil
}

// Accounts returns every account on the ledger, ordered by owner.
func (s *LedgerServiceImpl) Accounts(ctx context.Context) ([]domain.Account, error) {
	return s.st.Accounts(), nil
}
