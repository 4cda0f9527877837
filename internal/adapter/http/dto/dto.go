package dto

// LoginRequest is the request body for member login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// RegisterMemberRequest is the request body for member registration.
type RegisterMemberRequest struct {
	Principal string `json:"principal" binding:"required,min=1,max=100,safe_id"`
	Username  string `json:"username" binding:"required,min=3,max=50"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
}

// RegisterMemberResponse is the response body for successful registration.
// The secret key appears here once and is never retrievable again.
type RegisterMemberResponse struct {
	Principal string `json:"principal"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
}

// TransferRequest is the request body for a token transfer.
type TransferRequest struct {
	To     string `json:"to" binding:"required,min=1,max=100,safe_id"`
	Amount uint64 `json:"amount" binding:"required,gt=0"`
}

// TransferResponse echoes the settled transfer.
type TransferResponse struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Amount     uint64 `json:"amount"`
	Fee        uint64 `json:"fee"`
	NewBalance uint64 `json:"new_balance"`
}

// BalanceResponse is the response for a balance query.
type BalanceResponse struct {
	Principal string `json:"principal"`
	Balance   uint64 `json:"balance"`
}

// AccountResponse is one ledger entry in the accounts listing.
type AccountResponse struct {
	Owner  string `json:"owner"`
	Tokens uint64 `json:"tokens"`
}

// SubmitProposalRequest is the request body for proposal submission.
// Message is base64 in transit and opaque to the engine.
type SubmitProposalRequest struct {
	Target  string `json:"target" binding:"required,min=1,max=100,safe_id"`
	Method  string `json:"method" binding:"required,min=1,max=100"`
	Message []byte `json:"message,omitempty"`
}

// VoteRequest is the request body for casting a ballot.
type VoteRequest struct {
	Choice string `json:"choice" binding:"required,oneof=YES NO"`
}

// ProposalResponse is the wire form of a proposal.
type ProposalResponse struct {
	ID            uint64   `json:"id"`
	SubmittedAt   string   `json:"submitted_at"`
	Proposer      string   `json:"proposer"`
	Target        string   `json:"target"`
	Method        string   `json:"method"`
	Message       []byte   `json:"message,omitempty"`
	State         string   `json:"state"`
	FailureReason string   `json:"failure_reason,omitempty"`
	VotesYes      uint64   `json:"votes_yes"`
	VotesNo       uint64   `json:"votes_no"`
	Voters        []string `json:"voters"`
}

// ParamsResponse is the wire form of the system parameters.
type ParamsResponse struct {
	TransferFee               uint64 `json:"transfer_fee"`
	ProposalVoteThreshold     uint64 `json:"proposal_vote_threshold"`
	ProposalSubmissionDeposit uint64 `json:"proposal_submission_deposit"`
}

// UpdateParamsRequest is a partial parameter patch. Absent fields keep
// their current value.
type UpdateParamsRequest struct {
	TransferFee               *uint64 `json:"transfer_fee,omitempty"`
	ProposalVoteThreshold     *uint64 `json:"proposal_vote_threshold,omitempty"`
	ProposalSubmissionDeposit *uint64 `json:"proposal_submission_deposit,omitempty"`
}

// OverrideStateRequest force-moves a proposal to the given state.
type OverrideStateRequest struct {
	State  string `json:"state" binding:"required"`
	Reason string `json:"reason,omitempty"`
}

// LedgerStatsResponse is the supply accounting summary.
type LedgerStatsResponse struct {
	InitialSupply uint64 `json:"initial_supply"`
	Burned        uint64 `json:"burned"`
	Circulating   uint64 `json:"circulating"`
	Accounts      int    `json:"accounts"`
}
