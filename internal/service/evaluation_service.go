package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wmmalith63/credence-tender-management/internal/dto"
	"github.com/wmmalith63/credence-tender-management/internal/model"
	"github.com/wmmalith63/credence-tender-management/internal/policy"
	"github.com/wmmalith63/credence-tender-management/internal/repository"
	"github.com/wmmalith63/credence-tender-management/internal/scoring"
	apperrors "github.com/wmmalith63/credence-tender-management/pkg/errors"
)

// ── Evaluation errors ──

var (
	ErrEvaluationForbidden = apperrors.New(apperrors.ErrPermissionDenied, "not allowed to evaluate proposals")
)

// EvaluationService records criterion scores and keeps each proposal's
// composite score current. Every recorded evaluation recomputes the
// composite from the full evaluation set and puts the proposal back
// under review.
type EvaluationService interface {
	Record(ctx context.Context, proposalID int64, p policy.Principal, req *dto.RecordEvaluationRequest) (*dto.RecordEvaluationResponse, error)
	Recompute(ctx context.Context, proposalID int64, p policy.Principal) (*dto.RecomputeResponse, error)
	ListByProposal(ctx context.Context, proposalID int64, p policy.Principal) ([]dto.EvaluationResponse, error)
}

type evaluationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEvaluationService creates an EvaluationService
func NewEvaluationService(repo *repository.Repository, logger *zap.Logger) EvaluationService {
	return &evaluationService{repo: repo, logger: logger}
}

// ────────────────────── Record ──────────────────────

func (s *evaluationService) Record(ctx context.Context, proposalID int64, p policy.Principal, req *dto.RecordEvaluationRequest) (*dto.RecordEvaluationResponse, error) {
	if !policy.Allow(p, policy.RecordEvaluation, policy.Resource{}) {
		return nil, ErrEvaluationForbidden
	}

	criteria := strings.TrimSpace(req.CriteriaName)
	if criteria == "" {
		return nil, apperrors.Validation("missing required fields", "criteria_name")
	}
	maxScore := scoring.DefaultMaxScore
	if req.MaxScore != nil {
		maxScore = *req.MaxScore
	}
	row := scoring.Row{Score: req.Score, Weight: req.CriteriaWeight, MaxScore: maxScore}
	if err := scoring.Validate(row); err != nil {
		return nil, err
	}

	ev := &model.Evaluation{
		ProposalID:     proposalID,
		EvaluatorID:    p.ID,
		CriteriaName:   criteria,
		CriteriaWeight: row.Weight,
		Score:          row.Score,
		MaxScore:       row.MaxScore,
		Comments:       req.Comments,
		EvaluationDate: time.Now(),
	}

	composite, err := s.repo.Evaluation.Record(ctx, ev, compositeOf)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, storageFailure(s.logger, "record evaluation", err, zap.Int64("proposal_id", proposalID))
	}

	s.logger.Info("evaluation recorded",
		zap.Int64("evaluation_id", ev.ID),
		zap.Int64("proposal_id", proposalID),
		zap.String("evaluator_id", p.ID),
		zap.String("criteria", criteria),
		zap.String("composite", composite.String()),
	)
	return &dto.RecordEvaluationResponse{EvaluationID: ev.ID, CompositeScore: composite}, nil
}

// ────────────────────── Recompute ──────────────────────

func (s *evaluationService) Recompute(ctx context.Context, proposalID int64, p policy.Principal) (*dto.RecomputeResponse, error) {
	if !policy.Allow(p, policy.RecomputeScore, policy.Resource{}) {
		return nil, ErrEvaluationForbidden
	}

	composite, err := s.repo.Evaluation.Rescore(ctx, proposalID, compositeOf)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, storageFailure(s.logger, "recompute score", err, zap.Int64("proposal_id", proposalID))
	}
	return &dto.RecomputeResponse{ProposalID: proposalID, CompositeScore: composite}, nil
}

// ────────────────────── ListByProposal ──────────────────────

func (s *evaluationService) ListByProposal(ctx context.Context, proposalID int64, p policy.Principal) ([]dto.EvaluationResponse, error) {
	if !policy.Allow(p, policy.ViewEvaluations, policy.Resource{}) {
		return nil, ErrEvaluationForbidden
	}
	proposal, err := s.repo.Proposal.GetByID(ctx, proposalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, storageFailure(s.logger, "find proposal", err, zap.Int64("proposal_id", proposalID))
	}

	// a proposal on a tender the caller cannot see does not exist for them
	tender, err := s.repo.Tender.GetByID(ctx, proposal.TenderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, storageFailure(s.logger, "find tender", err, zap.Int64("tender_id", proposal.TenderID))
	}
	if !policy.TenderVisibility(p).CanSee(tender.CreatedBy, tender.Status) {
		return nil, ErrProposalNotFound
	}

	evals, err := s.repo.Evaluation.ListByProposal(ctx, proposalID)
	if err != nil {
		return nil, storageFailure(s.logger, "list evaluations", err, zap.Int64("proposal_id", proposalID))
	}
	return toEvaluationResponses(evals), nil
}

// compositeOf adapts stored evaluations to the scoring engine
func compositeOf(evals []model.Evaluation) decimal.Decimal {
	rows := make([]scoring.Row, 0, len(evals))
	for _, e := range evals {
		rows = append(rows, scoring.Row{Score: e.Score, Weight: e.CriteriaWeight, MaxScore: e.MaxScore})
	}
	return scoring.Composite(rows)
}
