package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/wmmalith63/credence-tender-management/internal/dto"
	"github.com/wmmalith63/credence-tender-management/internal/policy"
	"github.com/wmmalith63/credence-tender-management/internal/service"
	"github.com/wmmalith63/credence-tender-management/pkg/response"
)

// TenderHandler tender HTTP handlers
type TenderHandler struct {
	tenderSvc service.TenderService
}

// NewTenderHandler creates a TenderHandler
func NewTenderHandler(tenderSvc service.TenderService) *TenderHandler {
	return &TenderHandler{tenderSvc: tenderSvc}
}

// SaveTender creates a tender or updates the one with the same tender_number
// POST /api/v1/tenders
func (h *TenderHandler) SaveTender(c *gin.Context) {
	var req dto.SaveTenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	resp, err := h.tenderSvc.Save(c.Request.Context(), &req, p)
	if err != nil {
		h.handleTenderError(c, err)
		return
	}

	if resp.Created {
		response.Created(c, resp)
		return
	}
	response.OK(c, resp)
}

// UpdateTender
// PUT /api/v1/tenders/:ref
func (h *TenderHandler) UpdateTender(c *gin.Context) {
	var req dto.SaveTenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	resp, err := h.tenderSvc.Update(c.Request.Context(), c.Param("ref"), &req, p)
	if err != nil {
		h.handleTenderError(c, err)
		return
	}
	response.OK(c, resp)
}

// GetTender detail by id or tender_number
// GET /api/v1/tenders/:ref
func (h *TenderHandler) GetTender(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	resp, err := h.tenderSvc.Get(c.Request.Context(), c.Param("ref"), p)
	if err != nil {
		h.handleTenderError(c, err)
		return
	}
	response.OK(c, resp)
}

// ListTenders paged listing filtered by the caller's visibility
// GET /api/v1/tenders?status=&page=&page_size=
func (h *TenderHandler) ListTenders(c *gin.Context) {
	var req dto.TenderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	list, total, err := h.tenderSvc.List(c.Request.Context(), &req, p)
	if err != nil {
		h.handleTenderError(c, err)
		return
	}
	response.OKPage(c, list, total, req.Page, req.PageSize)
}

// DeleteTender
// DELETE /api/v1/tenders/:ref
func (h *TenderHandler) DeleteTender(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	if err := h.tenderSvc.Delete(c.Request.Context(), c.Param("ref"), p); err != nil {
		h.handleTenderError(c, err)
		return
	}
	response.OK(c, nil)
}

// PublishTender
// POST /api/v1/tenders/:ref/publish
func (h *TenderHandler) PublishTender(c *gin.Context) {
	h.transition(c, h.tenderSvc.Publish)
}

// CloseTender
// POST /api/v1/tenders/:ref/close
func (h *TenderHandler) CloseTender(c *gin.Context) {
	h.transition(c, h.tenderSvc.Close)
}

// MarkTenderEvaluated
// POST /api/v1/tenders/:ref/evaluated
func (h *TenderHandler) MarkTenderEvaluated(c *gin.Context) {
	h.transition(c, h.tenderSvc.MarkEvaluated)
}

type transitionFunc func(ctx context.Context, ref string, p policy.Principal) (*dto.TenderResponse, error)

func (h *TenderHandler) transition(c *gin.Context, fn transitionFunc) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	resp, err := fn(c.Request.Context(), c.Param("ref"), p)
	if err != nil {
		h.handleTenderError(c, err)
		return
	}
	response.OK(c, resp)
}

func (h *TenderHandler) handleTenderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTenderNotFound):
		response.NotFound(c, 20001, err.Error())
	case errors.Is(err, service.ErrTenderForbidden):
		response.Forbidden(c, 20003, err.Error())
	case errors.Is(err, service.ErrTenderNumberTaken):
		response.Conflict(c, 20009, err.Error())
	case errors.Is(err, service.ErrTenderInvalidTransition):
		response.Conflict(c, 20010, err.Error())
	case errors.Is(err, service.ErrTenderHasProposals):
		response.Conflict(c, 20011, err.Error())
	default:
		response.FromError(c, err)
	}
}
