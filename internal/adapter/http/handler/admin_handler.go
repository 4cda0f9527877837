package handler

import (
	"net/http"
	"strconv"

	"dao-governance/internal/adapter/http/dto"
	"dao-governance/internal/adapter/http/middleware"
	"dao-governance/internal/core/domain"
	"dao-governance/internal/core/ports"
	"dao-governance/pkg/apperror"
	"dao-governance/pkg/response"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles the privileged operational surface: parameter
// patches, state overrides, member registration, executor ticks, and
// reporting.
type AdminHandler struct {
	govSvc       ports.GovernanceService
	authSvc      ports.AuthService
	executorSvc  ports.ExecutorService
	reportingSvc ports.ReportingService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	govSvc ports.GovernanceService,
	authSvc ports.AuthService,
	executorSvc ports.ExecutorService,
	reportingSvc ports.ReportingService,
) *AdminHandler {
	return &AdminHandler{
		govSvc:       govSvc,
		authSvc:      authSvc,
		executorSvc:  executorSvc,
		reportingSvc: reportingSvc,
	}
}

// UpdateParams handles PATCH /api/v1/admin/params. The service honours the
// patch only for the engine's own principal; every other caller gets the
// same 204 with nothing changed, so callers cannot probe for privilege.
func (h *AdminHandler) UpdateParams(c *gin.Context) {
	principal, ok := c.Get(middleware.CtxPrincipal)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.UpdateParamsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	err := h.govSvc.UpdateParams(c.Request.Context(), principal.(domain.Principal), toParamsPatch(req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// OverrideProposalState handles PUT /api/v1/admin/proposals/:id/state.
// Unprivileged callers and unknown proposal ids fall through to 204;
// only an illegal transition surfaces as an error.
func (h *AdminHandler) OverrideProposalState(c *gin.Context) {
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

	var req dto.OverrideStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	err = h.govSvc.OverrideProposalState(
		c.Request.Context(),
		principal.(domain.Principal),
		proposalID,
		domain.ProposalState(req.State),
		req.Reason,
	)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// RegisterMember handles POST /api/v1/admin/members.
func (h *AdminHandler) RegisterMember(c *gin.Context) {
	var req dto.RegisterMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.authSvc.RegisterMember(c.Request.Context(), ports.RegisterMemberRequest{
		Principal: domain.Principal(req.Principal),
		Username:  req.Username,
		Password:  req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.RegisterMemberResponse{
		Principal: result.Principal.String(),
		AccessKey: result.AccessKey,
		SecretKey: result.SecretKey,
	})
}

// Tick handles POST /api/v1/admin/tick, driving one executor pass.
func (h *AdminHandler) Tick(c *gin.Context) {
	report, err := h.executorSvc.ExecuteTick(c.Request.Context())
	if err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}

	response.OK(c, report)
}

// LedgerStats handles GET /api/v1/admin/ledger/stats.
func (h *AdminHandler) LedgerStats(c *gin.Context) {
	stats, err := h.reportingSvc.LedgerStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.LedgerStatsResponse{
		InitialSupply: uint64(stats.InitialSupply),
		Burned:        uint64(stats.Burned),
		Circulating:   uint64(stats.Circulating),
		Accounts:      stats.Accounts,
	})
}

// ExportProposals handles GET /api/v1/admin/proposals/export as a CSV
// download, outside the JSON envelope.
func (h *AdminHandler) ExportProposals(c *gin.Context) {
	data, err := h.reportingSvc.ExportProposalsCSV(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="proposals.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// toParamsPatch converts the wire patch to the domain patch.
func toParamsPatch(req dto.UpdateParamsRequest) domain.SystemParamsPatch {
	var patch domain.SystemParamsPatch
	if req.TransferFee != nil {
		v := domain.Tokens(*req.TransferFee)
		patch.TransferFee = &v
	}
	if req.ProposalVoteThreshold != nil {
		v := domain.Tokens(*req.ProposalVoteThreshold)
		patch.ProposalVoteThreshold = &v
	}
	if req.ProposalSubmissionDeposit != nil {
		v := domain.Tokens(*req.ProposalSubmissionDeposit)
		patch.ProposalSubmissionDeposit = &v
	}
	return patch
}
