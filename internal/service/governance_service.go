package service

import (
	"context"

	"dao-governance/internal/core/domain"
	"dao-governance/internal/core/state"
	"dao-governance/pkg/apperror"

	"github.com/rs/zerolog"
)

// GovernanceServiceImpl implements ports.GovernanceService.
type GovernanceServiceImpl struct {
	st            *state.State
	selfPrincipal domain.Principal
	log           zerolog.Logger
}

// NewGovernanceService creates a new GovernanceServiceImpl. selfPrincipal is
// the engine's own identity: the only caller allowed to change system params.
func NewGovernanceService(st *state.State, selfPrincipal domain.Principal, log zerolog.Logger) *GovernanceServiceImpl {
	return &GovernanceServiceImpl{
		st:            st,
		selfPrincipal: selfPrincipal,
		log:           log,
	}
}

// SubmitProposal validates the payload, debits the submission deposit from
// the proposer, and records a new Open proposal. The deposit is burned and
// never refunded, whatever the proposal's eventual outcome.
func (s *GovernanceServiceImpl) SubmitProposal(ctx context.Context, caller domain.Principal, payload domain.ProposalPayload) (*domain.Proposal, error) {
	if err := payload.Validate(); err != nil {
		return nil, apperror.ErrInvalidProposalPayload(err.Error())
	}

	proposal, err := s.st.SubmitProposal(caller, payload)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Uint64("proposal_id", proposal.ID).
		Str("proposer", caller.String()).
		Str("target", payload.Target.String()).
		Str("method", payload.Method).
		Msg("proposal submitted")

	return &proposal, nil
}

// Vote records the caller's ballot with voting power equal to their balance
// at this moment. Crossing the vote threshold settles the proposal.
func (s *GovernanceServiceImpl) Vote(ctx context.Context, caller domain.Principal, proposalID uint64, choice domain.VoteChoice) (*domain.Proposal, error) {
	if !choice.Valid() {
		return nil, apperror.Validation("vote must be yes or no")
	}

	proposal, err := s.st.CastVote(caller, proposalID, choice)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Uint64("proposal_id", proposalID).
		Str("voter", caller.String()).
		Str("vote", string(choice)).
		Str("state", string(proposal.State)).
		Uint64("votes_yes", uint64(proposal.VotesYes)).
		Uint64("votes_no", uint64(proposal.VotesNo)).
		Msg("vote recorded")

	return &proposal, nil
}

// GetProposal returns the proposal with the given id.
func (s *GovernanceServiceImpl) GetProposal(ctx context.Context, id uint64) (*domain.Proposal, error) {
	proposal, ok := s.st.Proposal(id)
	if !ok {
		return nil, apperror.ErrNotFound("proposal")
	}
	return &proposal, nil
}

// ListProposals returns every proposal, ordered by id.
func (s *GovernanceServiceImpl) ListProposals(ctx context.Context) ([]domain.Proposal, error) {
	return s.st.Proposals(), nil
}

// GetParams returns the current system params.
func (s *GovernanceServiceImpl) GetParams(ctx context.Context) (domain.SystemParams, error) {
	return s.st.Params(), nil
}

// UpdateParams applies the patch when the caller is the engine's own
// principal. Any other caller is dropped without error or effect, so a
// malicious or misrouted update can never surface a distinguishable
// response.
func (s *GovernanceServiceImpl) UpdateParams(ctx context.Context, caller domain.Principal, patch domain.SystemParamsPatch) error {
	if caller != s.selfPrincipal {
		s.log.Warn().
			Str("caller", caller.String()).
			Msg("params update from foreign principal ignored")
		return nil
	}

	updated := s.st.UpdateParams(patch)

	s.log.Info().
		Uint64("transfer_fee", uint64(updated.TransferFee)).
		Uint64("vote_threshold", uint64(updated.ProposalVoteThreshold)).
		Uint64("submission_deposit", uint64(updated.ProposalSubmissionDeposit)).
		Msg("system params updated")

	return nil
}

// OverrideProposalState force-moves a proposal through the lifecycle on
// behalf of the engine's own principal. Foreign callers and unknown
// proposal ids are dropped silently; transitions the lifecycle forbids
// fail with InvalidTransition.
func (s *GovernanceServiceImpl) OverrideProposalState(ctx context.Context, caller domain.Principal, proposalID uint64, next domain.ProposalState, reason string) error {
	if caller != s.selfPrincipal {
		s.log.Warn().
			Str("caller", caller.String()).
			Uint64("proposal_id", proposalID).
			Msg("proposal state override from foreign principal ignored")
		return nil
	}

	if !next.Valid() {
		return apperror.Validation("unknown proposal state")
	}

	if err := s.st.OverrideProposalState(proposalID, next, reason); err != nil {
		return err
	}

	s.log.Info().
		Uint64("proposal_id", proposalID).
		Str("next_state", string(next)).
		Msg("proposal state overridden")

	return nil
}
