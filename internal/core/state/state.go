package state

import (
	"math"
	"sort"
	"sync"
	"time"

	"dao-governance/internal/core/domain"
	"dao-governance/pkg/apperror"
)

// State is the single authoritative governance state: the token ledger, the
// proposal store, and the system parameters, behind one mutex. Every exported
// method is one atomic step; nothing inside ever blocks on I/O, so the lock
// is only ever held for in-memory work. External calls happen between method
// calls, never inside them.
type State struct {
	mu sync.Mutex

	accounts  map[domain.Principal]domain.Tokens
	proposals map[uint64]*domain.Proposal
	params    domain.SystemParams

	nextProposalID uint64
	initialSupply  domain.Tokens
	burned         domain.Tokens

	// rev increments on every mutation; the persistence worker uses it to
	// skip writes when nothing changed.
	rev uint64

	clock func() time.Time
}

// Option configures a State.
type Option func(*State)

// WithClock overrides the time source (tests).
func WithClock(clock func() time.Time) Option {
	return func(s *State) {
		s.clock = clock
	}
}

// New builds a State from a snapshot. The proposal id counter resumes past
// the highest restored id, so ids stay unique across restarts. A zero
// InitialSupply is derived from the snapshot itself (genesis case).
func New(snap *domain.Snapshot, opts ...Option) *State {
	s := &State{
		accounts:       make(map[domain.Principal]domain.Tokens, len(snap.Accounts)),
		proposals:      make(map[uint64]*domain.Proposal, len(snap.Proposals)),
		params:         snap.Params,
		nextProposalID: 1,
		initialSupply:  snap.InitialSupply,
		burned:         snap.Burned,
		clock:          time.Now,
	}

	for _, acc := range snap.Accounts {
		s.accounts[acc.Owner] = acc.Tokens
	}
	for i := range snap.Proposals {
		p := snap.Proposals[i].Clone()
		s.proposals[p.ID] = &p
		if p.ID >= s.nextProposalID {
			s.nextProposalID = p.ID + 1
		}
	}

	if s.initialSupply == 0 {
		for _, tokens := range s.accounts {
			s.initialSupply += tokens
		}
		s.initialSupply += s.burned
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BalanceOf returns the balance of p, zero if p holds no account.
func (s *State) BalanceOf(p domain.Principal) domain.Tokens {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[p]
}

// Accounts returns all ledger entries, sorted by owner.
func (s *State) Accounts() []domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Account, 0, len(s.accounts))
	for owner, tokens := range s.accounts {
		out = append(out, domain.Account{Owner: owner, Tokens: tokens})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Owner < out[j].Owner })
	return out
}

// Transfer moves amount from caller to recipient. The caller pays amount
// plus the transfer fee; the fee is burned. The recipient account is created
// implicitly when absent. Fails without side effects on NoAccount or an
// insufficient balance.
func (s *State) Transfer(caller, to domain.Principal, amount domain.Tokens) (domain.TransferReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance, ok := s.accounts[caller]
	if !ok {
		return domain.TransferReceipt{}, apperror.ErrNoAccount()
	}

	fee := s.params.TransferFee
	if amount > math.MaxUint64-fee {
		return domain.TransferReceipt{}, apperror.ErrInsufficientFunds()
	}
	total := amount + fee
	if balance < total {
		return domain.TransferReceipt{}, apperror.ErrInsufficientFunds()
	}

	s.accounts[caller] = balance - total
	s.accounts[to] += amount
	s.burned += fee
	s.rev++

	return domain.TransferReceipt{
		From:       caller,
		To:         to,
		Amount:     amount,
		Fee:        fee,
		NewBalance: s.accounts[caller],
	}, nil
}

// SubmitProposal stores a new Open proposal after debiting the submission
// deposit from the caller. The deposit is burned and never refunded,
// whatever the proposal's fate. Ids are assigned from a strictly increasing
// counter starting at 1.
func (s *State) SubmitProposal(caller domain.Principal, payload domain.ProposalPayload) (domain.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deposit := s.params.ProposalSubmissionDeposit
	if err := s.debitLocked(caller, deposit); err != nil {
		return domain.Proposal{}, err
	}
	s.burned += deposit

	p := &domain.Proposal{
		ID:          s.nextProposalID,
		SubmittedAt: s.clock().UTC(),
		Proposer:    caller,
		Payload:     payload,
		State:       domain.ProposalStateOpen,
		Voters:      []domain.Principal{},
	}
	s.nextProposalID++
	s.proposals[p.ID] = p
	s.rev++

	return p.Clone(), nil
}

// CastVote records caller's ballot with weight equal to their live balance
// at this instant. Each principal votes at most once per proposal. While the
// proposal is Open, crossing the vote threshold moves it to Accepted or
// Rejected, the yes tally checked first. Later ballots still accumulate but
// can never move the state again.
func (s *State) CastVote(caller domain.Principal, proposalID uint64, choice domain.VoteChoice) (domain.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	power, ok := s.accounts[caller]
	if !ok {
		return domain.Proposal{}, apperror.ErrNoAccount()
	}

	p, ok := s.proposals[proposalID]
	if !ok {
		return domain.Proposal{}, apperror.ErrNotFound("Proposal")
	}

	if p.HasVoted(caller) {
		return domain.Proposal{}, apperror.ErrAlreadyVoted()
	}

	switch choice {
	case domain.VoteYes:
		p.VotesYes += power
	case domain.VoteNo:
		p.VotesNo += power
	default:
		return domain.Proposal{}, apperror.Validation("unknown vote choice")
	}
	p.Voters = append(p.Voters, caller)

	if p.State == domain.ProposalStateOpen {
		threshold := s.params.ProposalVoteThreshold
		if p.VotesYes >= threshold {
			p.State = domain.ProposalStateAccepted
		} else if p.VotesNo >= threshold {
			p.State = domain.ProposalStateRejected
		}
	}
	s.rev++

	return p.Clone(), nil
}

// Proposal returns a copy of the proposal, if present.
func (s *State) Proposal(id uint64) (domain.Proposal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.proposals[id]
	if !ok {
		return domain.Proposal{}, false
	}
	return p.Clone(), true
}

// Proposals returns copies of all proposals, sorted by id.
func (s *State) Proposals() []domain.Proposal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proposalsLocked()
}

// Params returns the current system parameters.
func (s *State) Params() domain.SystemParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// UpdateParams applies a partial parameter patch. Authorization is the
// caller's concern; the state applies whatever it is handed.
func (s *State) UpdateParams(patch domain.SystemParamsPatch) domain.SystemParams {
	s.mu.Lock()
	defer s.mu.Unlock()

	patch.ApplyTo(&s.params)
	if !patch.Empty() {
		s.rev++
	}
	return s.params
}

// OverrideProposalState force-moves a proposal along the transition graph.
// A missing proposal is a silent no-op. An illegal transition is rejected
// with InvalidTransition and changes nothing. reason is recorded only when
// the new state is Failed.
func (s *State) OverrideProposalState(id uint64, next domain.ProposalState, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.proposals[id]
	if !ok {
		return nil
	}
	return s.transitionLocked(p, next, reason)
}

// ClaimAccepted atomically moves every Accepted proposal to Executing and
// returns copies of the claimed proposals, sorted by id. Because the whole
// scan is one critical section, overlapping executor ticks can never claim
// the same proposal twice, and no observer sees Accepted afterwards.
func (s *State) ClaimAccepted() []domain.Proposal {
	s.mu.Lock()
	defer s.mu.Unlock()

	var claimed []domain.Proposal
	for _, p := range s.proposals {
		if p.State == domain.ProposalStateAccepted {
			p.State = domain.ProposalStateExecuting
			claimed = append(claimed, p.Clone())
		}
	}
	if len(claimed) > 0 {
		s.rev++
		sort.Slice(claimed, func(i, j int) bool { return claimed[i].ID < claimed[j].ID })
	}
	return claimed
}

// FinishExecution records the outcome of an executed proposal. An empty
// failureReason means success. The transition is validated like any other.
func (s *State) FinishExecution(id uint64, failureReason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.proposals[id]
	if !ok {
		return nil
	}
	if failureReason == "" {
		return s.transitionLocked(p, domain.ProposalStateSucceeded, "")
	}
	return s.transitionLocked(p, domain.ProposalStateFailed, failureReason)
}

// Stats returns supply accounting totals.
func (s *State) Stats() domain.LedgerStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.LedgerStats{
		InitialSupply: s.initialSupply,
		Burned:        s.burned,
		Circulating:   s.initialSupply - s.burned,
		Accounts:      len(s.accounts),
	}
}

// Snapshot returns a deep copy of the whole state, taken atomically.
func (s *State) Snapshot() *domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := make([]domain.Account, 0, len(s.accounts))
	for owner, tokens := range s.accounts {
		accounts = append(accounts, domain.Account{Owner: owner, Tokens: tokens})
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Owner < accounts[j].Owner })

	return &domain.Snapshot{
		Accounts:      accounts,
		Proposals:     s.proposalsLocked(),
		Params:        s.params,
		InitialSupply: s.initialSupply,
		Burned:        s.burned,
	}
}

// Rev returns the mutation counter.
func (s *State) Rev() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rev
}

// debitLocked removes amount from p's account. Callers hold the lock.
func (s *State) debitLocked(p domain.Principal, amount domain.Tokens) error {
	balance, ok := s.accounts[p]
	if !ok {
		return apperror.ErrNoAccount()
	}
	if balance < amount {
		return apperror.ErrInsufficientFunds()
	}
	s.accounts[p] = balance - amount
	return nil
}

// transitionLocked validates and applies a state transition. Callers hold
// the lock.
func (s *State) transitionLocked(p *domain.Proposal, next domain.ProposalState, reason string) error {
	if !p.State.CanTransitionTo(next) {
		return apperror.ErrInvalidTransition(string(p.State), string(next))
	}
	p.State = next
	if next == domain.ProposalStateFailed {
		p.FailureReason = reason
	}
	s.rev++
	return nil
}

func (s *State) proposalsLocked() []domain.Proposal {
	out := make([]domain.Proposal, 0, len(s.proposals))
	for _, p := range s.proposals {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
