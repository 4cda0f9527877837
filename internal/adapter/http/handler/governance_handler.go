package handler

import (
	"strconv"
	"time"

	"dao-governance/internal/adapter/http/dto"
	"dao-governance/internal/adapter/http/middleware"
	"dao-governance/internal/core/domain"
	"dao-governance/internal/core/ports"
	"dao-governance/pkg/apperror"
	"dao-governance/pkg/response"

	"github.com/gin-gonic/gin"
)

// GovernanceHandler handles proposal, voting, and parameter endpoints.
type GovernanceHandler struct {
	govSvc ports.GovernanceService
}

// NewGovernanceHandler creates a new GovernanceHandler.
func NewGovernanceHandler(govSvc ports.GovernanceService) *GovernanceHandler {
	return &GovernanceHandler{govSvc: govSvc}
}

// SubmitProposal handles POST /api/v1/proposals. The submission deposit is
// debited from the authenticated principal and burned.
func (h *GovernanceHandler) SubmitProposal(c *gin.Context) {
	principal, ok := c.Get(middleware.CtxPrincipal)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.SubmitProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	proposal, err := h.govSvc.SubmitProposal(c.Request.Context(), principal.(domain.Principal), domain.ProposalPayload{
		Target:  domain.Principal(req.Target),
		Method:  req.Method,
		Message: req.Message,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toProposalResponse(proposal))
}

// Vote handles POST /api/v1/proposals/:id/votes. Voting power is the
// caller's live balance at this moment.
func (h *GovernanceHandler) Vote(c *gin.Context) {
	principal, ok := c.Get(middleware.CtxPrincipal)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	proposalID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, apperror.Validation("proposal id must be a positive integer"))
		return
	}

	var req dto.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	proposal, err := h.govSvc.Vote(c.Request.Context(), principal.(domain.Principal), proposalID, domain.VoteChoice(req.Choice))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toProposalResponse(proposal))
}

// GetProposal handles GET /api/v1/proposals/:id.
func (h *GovernanceHandler) GetProposal(c *gin.Context) {
	proposalID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, apperror.Validation("proposal id must be a positive integer"))
		return
	}

	proposal, err := h.govSvc.GetProposal(c.Request.Context(), proposalID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toProposalResponse(proposal))
}

// ListProposals handles GET /api/v1/proposals.
func (h *GovernanceHandler) ListProposals(c *gin.Context) {
	proposals, err := h.govSvc.ListProposals(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.ProposalResponse, 0, len(proposals))
	for i := range proposals {
		items = append(items, toProposalResponse(&proposals[i]))
	}

	response.OK(c, items)
}

// GetParams handles GET /api/v1/params.
func (h *GovernanceHandler) GetParams(c *gin.Context) {
	params, err := h.govSvc.GetParams(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ParamsResponse{
		TransferFee:               uint64(params.TransferFee),
		ProposalVoteThreshold:     uint64(params.ProposalVoteThreshold),
		ProposalSubmissionDeposit: uint64(params.ProposalSubmissionDeposit),
	})
}

// toProposalResponse converts domain.Proposal to DTO.
func toProposalResponse(p *domain.Proposal) dto.ProposalResponse {
	voters := make([]string, 0, len(p.Voters))
	for _, v := range p.Voters {
		voters = append(voters, v.String())
	}

	return dto.ProposalResponse{
		ID:            p.ID,
		SubmittedAt:   p.SubmittedAt.Format(time.RFC3339),
		Proposer:      p.Proposer.String(),
		Target:        p.Payload.Target.String(),
		Method:        p.Payload.Method,
		Message:       p.Payload.Message,
		State:         string(p.State),
		FailureReason: p.FailureReason,
		VotesYes:      uint64(p.VotesYes),
		VotesNo:       uint64(p.VotesNo),
		Voters:        voters,
	}
}
