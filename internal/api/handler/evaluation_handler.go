package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/wmmalith63/credence-tender-management/internal/dto"
	"github.com/wmmalith63/credence-tender-management/internal/service"
	"github.com/wmmalith63/credence-tender-management/pkg/response"
)

// EvaluationHandler scoring HTTP handlers
type EvaluationHandler struct {
	evaluationSvc service.EvaluationService
}

// NewEvaluationHandler creates an EvaluationHandler
func NewEvaluationHandler(evaluationSvc service.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{evaluationSvc: evaluationSvc}
}

// RecordEvaluation appends one criterion score and returns the new composite
// POST /api/v1/proposals/:id/evaluations
func (h *EvaluationHandler) RecordEvaluation(c *gin.Context) {
	id, ok := mustParamID(c, "id")
	if !ok {
		return
	}

	var req dto.RecordEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	resp, err := h.evaluationSvc.Record(c.Request.Context(), id, p, &req)
	if err != nil {
		h.handleEvaluationError(c, err)
		return
	}
	response.Created(c, resp)
}

// ListEvaluations
// GET /api/v1/proposals/:id/evaluations
func (h *EvaluationHandler) ListEvaluations(c *gin.Context) {
	id, ok := mustParamID(c, "id")
	if !ok {
		return
	}
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	list, err := h.evaluationSvc.ListByProposal(c.Request.Context(), id, p)
	if err != nil {
		h.handleEvaluationError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// RecomputeScore
// POST /api/v1/proposals/:id/recompute
func (h *EvaluationHandler) RecomputeScore(c *gin.Context) {
	id, ok := mustParamID(c, "id")
	if !ok {
		return
	}
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	resp, err := h.evaluationSvc.Recompute(c.Request.Context(), id, p)
	if err != nil {
		h.handleEvaluationError(c, err)
		return
	}
	response.OK(c, resp)
}

func (h *EvaluationHandler) handleEvaluationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProposalNotFound):
		response.NotFound(c, 30001, err.Error())
	case errors.Is(err, service.ErrEvaluationForbidden):
		response.Forbidden(c, 40003, err.Error())
	default:
		response.FromError(c, err)
	}
}
