package service

import (
	"go.uber.org/zap"

	"github.com/wmmalith63/credence-tender-management/config"
	"github.com/wmmalith63/credence-tender-management/internal/repository"
	apperrors "github.com/wmmalith63/credence-tender-management/pkg/errors"
)

// Service aggregates every service
type Service struct {
	Tender     TenderService
	Proposal   ProposalService
	Evaluation EvaluationService
	Dashboard  DashboardService
	Export     ExportService
	Calendar   CalendarService
}

// NewService creates the aggregate
func NewService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) *Service {
	return &Service{
		Tender:     NewTenderService(repo, logger, cfg.Tender.DefaultPageSize),
		Proposal:   NewProposalService(repo, logger),
		Evaluation: NewEvaluationService(repo, logger),
		Dashboard:  NewDashboardService(repo, logger, cfg.Tender.DashboardListMax),
		Export:     NewExportService(repo, logger),
		Calendar:   NewCalendarService(repo, logger, cfg.Server.BaseURL),
	}
}

// storageFailure logs a persistence error and wraps it so that only its
// kind crosses the service boundary.
func storageFailure(logger *zap.Logger, op string, err error, fields ...zap.Field) error {
	logger.Error(op+" failed", append(fields, zap.Error(err))...)
	return apperrors.Storage(op, err)
}
