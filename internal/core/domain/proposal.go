package domain

import (
	"errors"
	"time"
)

// ProposalState represents the lifecycle state of a proposal.
type ProposalState string

const (
	ProposalStateOpen      ProposalState = "OPEN"
	ProposalStateAccepted  ProposalState = "ACCEPTED"
	ProposalStateRejected  ProposalState = "REJECTED"
	ProposalStateExecuting ProposalState = "EXECUTING"
	ProposalStateSucceeded ProposalState = "SUCCEEDED"
	ProposalStateFailed    ProposalState = "FAILED"
)

// Valid reports whether s is a known state value.
func (s ProposalState) Valid() bool {
	switch s {
	case ProposalStateOpen, ProposalStateAccepted, ProposalStateRejected,
		ProposalStateExecuting, ProposalStateSucceeded, ProposalStateFailed:
		return true
	}
	return false
}

// IsTerminal returns true if the state admits no further transition.
func (s ProposalState) IsTerminal() bool {
	return s == ProposalStateRejected ||
		s == ProposalStateSucceeded ||
		s == ProposalStateFailed
}

// CanTransitionTo reports whether next is a legal forward transition.
// The graph: OPEN -> {ACCEPTED, REJECTED}, ACCEPTED -> EXECUTING,
// EXECUTING -> {SUCCEEDED, FAILED}. Terminal states have no outgoing edges.
func (s ProposalState) CanTransitionTo(next ProposalState) bool {
	switch s {
	case ProposalStateOpen:
		return next == ProposalStateAccepted || next == ProposalStateRejected
	case ProposalStateAccepted:
		return next == ProposalStateExecuting
	case ProposalStateExecuting:
		return next == ProposalStateSucceeded || next == ProposalStateFailed
	default:
		return false
	}
}

// VoteChoice is a ballot direction.
type VoteChoice string

const (
	VoteYes VoteChoice = "YES"
	VoteNo  VoteChoice = "NO"
)

// Valid reports whether v is a known choice.
func (v VoteChoice) Valid() bool {
	return v == VoteYes || v == VoteNo
}

// ProposalPayload is the invocation a proposal carries: a target principal,
// a method name on that target, and an opaque argument blob the engine never
// inspects.
type ProposalPayload struct {
	Target  Principal `json:"target"`
	Method  string    `json:"method"`
	Message []byte    `json:"message,omitempty"`
}

// Validate checks the payload is executable at all. The message may be empty.
func (p ProposalPayload) Validate() error {
	if p.Target == "" {
		return errors.New("target principal is empty")
	}
	if p.Method == "" {
		return errors.New("method name is empty")
	}
	return nil
}

// Proposal is a governance proposal with its running tally. Voters records
// every principal that has cast a ballot, in insertion order.
type Proposal struct {
	ID            uint64          `json:"id"`
	SubmittedAt   time.Time       `json:"submitted_at"`
	Proposer      Principal       `json:"proposer"`
	Payload       ProposalPayload `json:"payload"`
	State         ProposalState   `json:"state"`
	FailureReason string          `json:"failure_reason,omitempty"`
	VotesYes      Tokens          `json:"votes_yes"`
	VotesNo       Tokens          `json:"votes_no"`
	Voters        []Principal     `json:"voters"`
}

// HasVoted returns true if the principal already appears in the voter set.
func (p *Proposal) HasVoted(voter Principal) bool {
	for _, v := range p.Voters {
		if v == voter {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to hand out of the state's critical section.
func (p *Proposal) Clone() Proposal {
	cp := *p
	if p.Voters != nil {
		cp.Voters = make([]Principal, len(p.Voters))
		copy(cp.Voters, p.Voters)
	}
	if p.Payload.Message != nil {
		cp.Payload.Message = make([]byte, len(p.Payload.Message))
		copy(cp.Payload.Message, p.Payload.Message)
	}
	return cp
}
