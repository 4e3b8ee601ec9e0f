package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/wmmalith63/credence-tender-management/internal/service"
	"github.com/wmmalith63/credence-tender-management/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler results export HTTP handler
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportResults downloads the tender's ranking as .xlsx
// GET /api/v1/tenders/:ref/results/export
func (h *ExportHandler) ExportResults(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportResults(c.Request.Context(), c.Param("ref"), p)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTenderNotFound):
		response.NotFound(c, 20001, err.Error())
	case errors.Is(err, service.ErrExportNoProposals):
		response.NotFound(c, 50101, err.Error())
	case errors.Is(err, service.ErrExportForbidden):
		response.Forbidden(c, 50103, err.Error())
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.FromError(c, err)
	}
}
