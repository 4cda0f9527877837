package service

import (
	"context"
	"errors"
	"time"

	"dao-governance/internal/core/domain"
	"dao-governance/internal/core/ports"
	"dao-governance/internal/core/state"

	"github.com/rs/zerolog"
)

// ExecutorServiceImpl implements ports.ExecutorService. Each tick claims
// every Accepted proposal in one critical section, then performs the
// invocations outside the lock so ledger and voting traffic never stalls
// behind a slow target.
type ExecutorServiceImpl struct {
	st      *state.State
	invoker ports.ProposalInvoker
	timeout time.Duration
	log     zerolog.Logger
}

// NewExecutorService creates a new ExecutorServiceImpl. timeout bounds each
// individual proposal invocation.
func NewExecutorService(st *state.State, invoker ports.ProposalInvoker, timeout time.Duration, log zerolog.Logger) *ExecutorServiceImpl {
	return &ExecutorServiceImpl{
		st:      st,
		invoker: invoker,
		timeout: timeout,
		log:     log,
	}
}

// ExecuteTick runs one executor pass. Every claimed proposal is attempted
// exactly once and settles as Succeeded or Failed; a failure is recorded on
// the proposal and never returned to the caller. The only error out of here
// is a cancelled context, which leaves unattempted proposals in Executing.
func (s *ExecutorServiceImpl) ExecuteTick(ctx context.Context) (ports.TickReport, error) {
	claimed := s.st.ClaimAccepted()

	report := ports.TickReport{Claimed: len(claimed)}
	if len(claimed) == 0 {
		return report, nil
	}

	s.log.Debug().Int("claimed", len(claimed)).Msg("executor claimed accepted proposals")

	for _, proposal := range claimed {
		select {
		case <-ctx.Done():
			// Unattempted proposals stay Executing; restoring them
			// verbatim beats guessing an outcome we never observed.
			return report, ctx.Err()
		default:
		}

		if s.executeOne(ctx, proposal) {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}

	return report, nil
}

// executeOne invokes a single claimed proposal and finalizes its state.
// Reports true on success. Never retries: a failed invocation is failed
// for good.
func (s *ExecutorServiceImpl) executeOne(ctx context.Context, proposal domain.Proposal) bool {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.invoker.Invoke(callCtx, proposal.Payload.Target, proposal.Payload.Method, proposal.Payload.Message)
	if err == nil {
		if ferr := s.st.FinishExecution(proposal.ID, ""); ferr != nil {
			s.log.Warn().Err(ferr).Uint64("proposal_id", proposal.ID).Msg("could not finalize succeeded proposal")
		}
		s.log.Info().
			Uint64("proposal_id", proposal.ID).
			Str("target", proposal.Payload.Target.String()).
			Str("method", proposal.Payload.Method).
			Msg("proposal executed")
		return true
	}

	var invErr *domain.InvocationError
	if !errors.As(err, &invErr) {
		invErr = &domain.InvocationError{Code: 0, Message: err.Error()}
	}

	reason := domain.ExecutionFailureReason(proposal.Payload.Target, proposal.Payload.Method, invErr.Code, invErr.Message)
	if ferr := s.st.FinishExecution(proposal.ID, reason); ferr != nil {
		s.log.Warn().Err(ferr).Uint64("proposal_id", proposal.ID).Msg("could not finalize failed proposal")
	}

	s.log.Warn().
		Uint64("proposal_id", proposal.ID).
		Str("target", proposal.Payload.Target.String()).
		Str("method", proposal.Payload.Method).
		Int("code", invErr.Code).
		Str("message", invErr.Message).
		Msg("proposal execution failed")

	return false
}
