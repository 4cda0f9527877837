package domain

// SystemParams are the tunable governance parameters, seeded at genesis and
// updatable only through a self-call by the engine's own principal.
type SystemParams struct {
	TransferFee               Tokens `json:"transfer_fee"`
	ProposalVoteThreshold     Tokens `json:"proposal_vote_threshold"`
	ProposalSubmissionDeposit Tokens `json:"proposal_submission_deposit"`
}

// SystemParamsPatch is a partial update: only non-nil fields overwrite.
type SystemParamsPatch struct {
	TransferFee               *Tokens `json:"transfer_fee,omitempty"`
	ProposalVoteThreshold     *Tokens `json:"proposal_vote_threshold,omitempty"`
	ProposalSubmissionDeposit *Tokens `json:"proposal_submission_deposit,omitempty"`
}

// ApplyTo overwrites the fields present in the patch.
func (p SystemParamsPatch) ApplyTo(params *SystemParams) {
	if p.TransferFee != nil {
		params.TransferFee = *p.TransferFee
	}
	if p.ProposalVoteThreshold != nil {
		params.ProposalVoteThreshold = *p.ProposalVoteThreshold
	}
	if p.ProposalSubmissionDeposit != nil {
		params.ProposalSubmissionDeposit = *p.ProposalSubmissionDeposit
	}
}

// Empty reports whether the patch changes nothing.
func (p SystemParamsPatch) Empty() bool {
	return p.TransferFee == nil &&
		p.ProposalVoteThreshold == nil &&
		p.ProposalSubmissionDeposit == nil
}
