package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/wmmalith63/credence-tender-management/internal/dto"
	"github.com/wmmalith63/credence-tender-management/internal/service"
	"github.com/wmmalith63/credence-tender-management/pkg/response"
)

// ProposalHandler proposal and vendor application HTTP handlers
type ProposalHandler struct {
	proposalSvc service.ProposalService
}

// NewProposalHandler creates a ProposalHandler
func NewProposalHandler(proposalSvc service.ProposalService) *ProposalHandler {
	return &ProposalHandler{proposalSvc: proposalSvc}
}

// SubmitProposal creates or updates the caller's proposal for a tender
// POST /api/v1/tenders/:ref/proposals
func (h *ProposalHandler) SubmitProposal(c *gin.Context) {
	var req dto.SubmitProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	resp, err := h.proposalSvc.Submit(c.Request.Context(), c.Param("ref"), p, &req)
	if err != nil {
		h.handleProposalError(c, err)
		return
	}

	if resp.Created {
		response.Created(c, resp)
		return
	}
	response.OK(c, resp)
}

// ListTenderProposals ranked by composite score
// GET /api/v1/tenders/:ref/proposals
func (h *ProposalHandler) ListTenderProposals(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	list, err := h.proposalSvc.ListByTender(c.Request.Context(), c.Param("ref"), p)
	if err != nil {
		h.handleProposalError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// ApplyForTender registers interest without a full proposal
// POST /api/v1/tenders/:ref/applications
func (h *ProposalHandler) ApplyForTender(c *gin.Context) {
	var req dto.VendorApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	resp, err := h.proposalSvc.Apply(c.Request.Context(), c.Param("ref"), p, &req)
	if err != nil {
		h.handleProposalError(c, err)
		return
	}
	response.Created(c, resp)
}

// GetProposal
// GET /api/v1/proposals/:id
func (h *ProposalHandler) GetProposal(c *gin.Context) {
	id, ok := mustParamID(c, "id")
	if !ok {
		return
	}
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	resp, err := h.proposalSvc.Get(c.Request.Context(), id, p)
	if err != nil {
		h.handleProposalError(c, err)
		return
	}
	response.OK(c, resp)
}

// ListMyProposals
// GET /api/v1/proposals/mine
func (h *ProposalHandler) ListMyProposals(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	list, err := h.proposalSvc.ListMine(c.Request.Context(), p)
	if err != nil {
		h.handleProposalError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

func (h *ProposalHandler) handleProposalError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProposalNotFound):
		response.NotFound(c, 30001, err.Error())
	case errors.Is(err, service.ErrTenderNotFound):
		response.NotFound(c, 20001, err.Error())
	case errors.Is(err, service.ErrProposalForbidden):
		response.Forbidden(c, 30003, err.Error())
	case errors.Is(err, service.ErrTenderNotOpen):
		response.Conflict(c, 30010, err.Error())
	case errors.Is(err, service.ErrApplicationExists):
		response.Conflict(c, 30011, err.Error())
	default:
		response.FromError(c, err)
	}
}
