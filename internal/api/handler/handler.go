package handler

import "github.com/wmmalith63/credence-tender-management/internal/service"

// Handler aggregates every HTTP handler
type Handler struct {
	Tender     *TenderHandler
	Proposal   *ProposalHandler
	Evaluation *EvaluationHandler
	Dashboard  *DashboardHandler
	Export     *ExportHandler
	Health     *HealthHandler
}

// NewHandler creates the aggregate
func NewHandler(svc *service.Service, health *HealthHandler) *Handler {
	return &Handler{
		Tender:     NewTenderHandler(svc.Tender),
		Proposal:   NewProposalHandler(svc.Proposal),
		Evaluation: NewEvaluationHandler(svc.Evaluation),
		Dashboard:  NewDashboardHandler(svc.Dashboard, svc.Calendar),
		Export:     NewExportHandler(svc.Export),
		Health:     health,
	}
}
