package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wmmalith63/credence-tender-management/internal/dto"
	"github.com/wmmalith63/credence-tender-management/internal/model"
	"github.com/wmmalith63/credence-tender-management/internal/policy"
	"github.com/wmmalith63/credence-tender-management/internal/repository"
	apperrors "github.com/wmmalith63/credence-tender-management/pkg/errors"
)

// ── Proposal errors ──

var (
	ErrProposalNotFound  = apperrors.New(apperrors.ErrNotFound, "proposal not found")
	ErrProposalForbidden = apperrors.New(apperrors.ErrPermissionDenied, "not allowed to access this proposal")
	ErrTenderNotOpen     = apperrors.New(apperrors.ErrConflict, "tender is not open for submissions")
	ErrApplicationExists = apperrors.New(apperrors.ErrConflict, "you have already applied for this tender")
)

// ProposalService vendor proposals and applications.
// A vendor holds at most one proposal per tender; resubmitting updates it.
type ProposalService interface {
	Submit(ctx context.Context, tenderRef string, p policy.Principal, req *dto.SubmitProposalRequest) (*dto.SubmitProposalResponse, error)
	Get(ctx context.Context, id int64, p policy.Principal) (*dto.ProposalResponse, error)
	ListByTender(ctx context.Context, tenderRef string, p policy.Principal) ([]dto.ProposalResponse, error)
	ListMine(ctx context.Context, p policy.Principal) ([]dto.ProposalResponse, error)
	Apply(ctx context.Context, tenderRef string, p policy.Principal, req *dto.VendorApplicationRequest) (*dto.VendorApplicationResponse, error)
}

type proposalService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewProposalService creates a ProposalService
func NewProposalService(repo *repository.Repository, logger *zap.Logger) ProposalService {
	return &proposalService{repo: repo, logger: logger}
}

// ────────────────────── Submit ──────────────────────

func (s *proposalService) Submit(ctx context.Context, tenderRef string, p policy.Principal, req *dto.SubmitProposalRequest) (*dto.SubmitProposalResponse, error) {
	if !policy.Allow(p, policy.SubmitProposal, policy.Resource{}) {
		return nil, ErrProposalForbidden
	}
	if strings.TrimSpace(req.ProposalTitle) == "" {
		return nil, apperrors.Validation("missing required fields", "proposal_title")
	}

	tender, err := resolveTender(ctx, s.repo, s.logger, tenderRef)
	if err != nil {
		return nil, err
	}
	if !openForSubmissions(tender, time.Now()) {
		return nil, ErrTenderNotOpen
	}

	companyID, err := s.companyOf(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = model.ProposalStatusDraft
		existing, err := s.repo.Proposal.GetByTenderAndVendor(ctx, tender.ID, p.ID)
		switch {
		case err == nil:
			status = existing.Status
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, storageFailure(s.logger, "find proposal", err, zap.Int64("tender_id", tender.ID))
		}
	}

	proposal := &model.Proposal{
		TenderID:            tender.ID,
		VendorID:            p.ID,
		CompanyID:           companyID,
		ProposalTitle:       strings.TrimSpace(req.ProposalTitle),
		ProposalDescription: req.ProposalDescription,
		ProposedBudget:      req.ProposedBudget.Round(2),
		Timeline:            req.Timeline,
		TechnicalApproach:   req.TechnicalApproach,
		TeamDetails:         req.TeamDetails,
		Status:              status,
	}

	created, err := s.repo.Proposal.Upsert(ctx, proposal)
	if err != nil {
		return nil, storageFailure(s.logger, "save proposal", err,
			zap.Int64("tender_id", tender.ID), zap.String("vendor_id", p.ID))
	}

	s.logger.Info("proposal saved",
		zap.Int64("proposal_id", proposal.ID),
		zap.Int64("tender_id", tender.ID),
		zap.String("vendor_id", p.ID),
		zap.String("status", proposal.Status),
		zap.Bool("created", created),
	)
	return &dto.SubmitProposalResponse{ID: proposal.ID, Status: proposal.Status, Created: created}, nil
}

// ────────────────────── Get / List ──────────────────────

func (s *proposalService) Get(ctx context.Context, id int64, p policy.Principal) (*dto.ProposalResponse, error) {
	proposal, err := s.repo.Proposal.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, storageFailure(s.logger, "find proposal", err, zap.Int64("proposal_id", id))
	}
	if !policy.Allow(p, policy.ViewProposal, policy.Resource{OwnerID: proposal.VendorID}) {
		return nil, ErrProposalForbidden
	}

	resp := toProposalResponse(proposal)
	if policy.Allow(p, policy.ViewEvaluations, policy.Resource{}) {
		evals, err := s.repo.Evaluation.ListByProposal(ctx, id)
		if err != nil {
			return nil, storageFailure(s.logger, "list evaluations", err, zap.Int64("proposal_id", id))
		}
		resp.Evaluations = toEvaluationResponses(evals)
	}
	return resp, nil
}

func (s *proposalService) ListByTender(ctx context.Context, tenderRef string, p policy.Principal) ([]dto.ProposalResponse, error) {
	if !policy.Allow(p, policy.ListTenderProposals, policy.Resource{}) {
		return nil, ErrProposalForbidden
	}
	tender, err := resolveTender(ctx, s.repo, s.logger, tenderRef)
	if err != nil {
		return nil, err
	}
	if !policy.TenderVisibility(p).CanSee(tender.CreatedBy, tender.Status) {
		return nil, ErrTenderNotFound
	}

	proposals, err := s.repo.Proposal.ListByTender(ctx, tender.ID)
	if err != nil {
		return nil, storageFailure(s.logger, "list proposals", err, zap.Int64("tender_id", tender.ID))
	}

	result := make([]dto.ProposalResponse, 0, len(proposals))
	for i := range proposals {
		resp := toProposalResponse(&proposals[i])
		resp.TenderNumber = tender.TenderNumber
		resp.TenderTitle = tender.Title
		result = append(result, *resp)
	}
	return result, nil
}

func (s *proposalService) ListMine(ctx context.Context, p policy.Principal) ([]dto.ProposalResponse, error) {
	if !p.IsVendorClass() {
		return nil, ErrProposalForbidden
	}
	proposals, err := s.repo.Proposal.ListByVendor(ctx, p.ID)
	if err != nil {
		return nil, storageFailure(s.logger, "list vendor proposals", err, zap.String("vendor_id", p.ID))
	}

	result := make([]dto.ProposalResponse, 0, len(proposals))
	for i := range proposals {
		result = append(result, *toProposalResponse(&proposals[i]))
	}
	return result, nil
}

// ────────────────────── Apply ──────────────────────

func (s *proposalService) Apply(ctx context.Context, tenderRef string, p policy.Principal, req *dto.VendorApplicationRequest) (*dto.VendorApplicationResponse, error) {
	if !policy.Allow(p, policy.ApplyForTender, policy.Resource{}) {
		return nil, ErrProposalForbidden
	}

	var missing []string
	if strings.TrimSpace(req.CompanyName) == "" {
		missing = append(missing, "company_name")
	}
	if strings.TrimSpace(req.ContactPerson) == "" {
		missing = append(missing, "contact_person")
	}
	if len(missing) > 0 {
		return nil, apperrors.Validation("missing required fields", missing...)
	}

	tender, err := resolveTender(ctx, s.repo, s.logger, tenderRef)
	if err != nil {
		return nil, err
	}
	if !policy.TenderVisibility(p).CanSee(tender.CreatedBy, tender.Status) {
		return nil, ErrTenderNotFound
	}
	if tender.Status != model.TenderStatusPublished {
		return nil, ErrTenderNotOpen
	}

	exists, err := s.repo.VendorApplication.Exists(ctx, tender.ID, p.ID)
	if err != nil {
		return nil, storageFailure(s.logger, "check application", err, zap.Int64("tender_id", tender.ID))
	}
	if exists {
		return nil, ErrApplicationExists
	}

	app := &model.VendorApplication{
		TenderID:          tender.ID,
		VendorID:          p.ID,
		CompanyName:       strings.TrimSpace(req.CompanyName),
		CompanyRegNo:      req.CompanyRegNo,
		ContactPerson:     strings.TrimSpace(req.ContactPerson),
		ContactEmail:      req.ContactEmail,
		ContactPhone:      req.ContactPhone,
		AdditionalNotes:   req.AdditionalNotes,
		ApplicationStatus: "submitted",
	}
	if err := s.repo.VendorApplication.Create(ctx, app); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrApplicationExists
		}
		return nil, storageFailure(s.logger, "create application", err, zap.Int64("tender_id", tender.ID))
	}

	s.logger.Info("vendor application submitted",
		zap.Int64("application_id", app.ID),
		zap.Int64("tender_id", tender.ID),
		zap.String("vendor_id", p.ID),
	)
	return &dto.VendorApplicationResponse{
		ID:                app.ID,
		TenderID:          app.TenderID,
		CompanyName:       app.CompanyName,
		ApplicationStatus: app.ApplicationStatus,
		SubmittedAt:       app.SubmittedAt,
	}, nil
}

// ── internal helpers ──

// companyOf resolves the vendor's company profile id; nil without a profile
func (s *proposalService) companyOf(ctx context.Context, userID string) (*int64, error) {
	company, err := s.repo.Company.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storageFailure(s.logger, "find company", err, zap.String("user_id", userID))
	}
	return &company.ID, nil
}

// openForSubmissions a published tender whose deadline, if any, has not passed
func openForSubmissions(t *model.Tender, now time.Time) bool {
	if t.Status != model.TenderStatusPublished {
		return false
	}
	return t.SubmissionDeadline == nil || now.Before(*t.SubmissionDeadline)
}

func toProposalResponse(p *model.Proposal) *dto.ProposalResponse {
	resp := &dto.ProposalResponse{
		ID:                  p.ID,
		TenderID:            p.TenderID,
		VendorID:            p.VendorID,
		CompanyID:           p.CompanyID,
		ProposalTitle:       p.ProposalTitle,
		ProposalDescription: p.ProposalDescription,
		ProposedBudget:      p.ProposedBudget,
		Timeline:            p.Timeline,
		TechnicalApproach:   p.TechnicalApproach,
		TeamDetails:         p.TeamDetails,
		Status:              p.Status,
		EvaluationScore:     p.EvaluationScore,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
	if p.Company != nil {
		resp.CompanyName = p.Company.CompanyName
	}
	if p.Tender != nil {
		resp.TenderNumber = p.Tender.TenderNumber
		resp.TenderTitle = p.Tender.Title
	}
	return resp
}

func toEvaluationResponses(evals []model.Evaluation) []dto.EvaluationResponse {
	out := make([]dto.EvaluationResponse, 0, len(evals))
	for _, e := range evals {
		out = append(out, dto.EvaluationResponse{
			ID:             e.ID,
			EvaluatorID:    e.EvaluatorID,
			CriteriaName:   e.CriteriaName,
			CriteriaWeight: e.CriteriaWeight,
			Score:          e.Score,
			MaxScore:       e.MaxScore,
			Comments:       e.Comments,
			EvaluationDate: e.EvaluationDate,
		})
	}
	return out
}
