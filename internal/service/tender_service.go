package service

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wmmalith63/credence-tender-management/internal/dto"
	"github.com/wmmalith63/credence-tender-management/internal/model"
	"github.com/wmmalith63/credence-tender-management/internal/policy"
	"github.com/wmmalith63/credence-tender-management/internal/repository"
	apperrors "github.com/wmmalith63/credence-tender-management/pkg/errors"
)

// ── Tender errors ──

var (
	ErrTenderNotFound          = apperrors.New(apperrors.ErrNotFound, "tender not found")
	ErrTenderForbidden         = apperrors.New(apperrors.ErrPermissionDenied, "not allowed to modify this tender")
	ErrTenderNumberTaken       = apperrors.New(apperrors.ErrConflict, "tender number already exists")
	ErrTenderInvalidTransition = apperrors.New(apperrors.ErrConflict, "tender status does not allow this action")
	ErrTenderHasProposals      = apperrors.New(apperrors.ErrConflict, "tender has proposals or applications and cannot be deleted")
)

// statusUKKSaved is the status a UKK submitter sends to request approval
const statusUKKSaved = "ukk_saved"

// TenderService tender lifecycle.
//
// States: draft -> pending_approval -> published -> closed -> evaluated.
// Administrators may set any status directly through Save; everyone
// else goes through the approval flow.
type TenderService interface {
	// Save creates or updates the tender identified by req.TenderNumber
	Save(ctx context.Context, req *dto.SaveTenderRequest, p policy.Principal) (*dto.SaveTenderResponse, error)
	// Update edits the tender addressed by ref (id or tender_number)
	Update(ctx context.Context, ref string, req *dto.SaveTenderRequest, p policy.Principal) (*dto.SaveTenderResponse, error)
	Get(ctx context.Context, ref string, p policy.Principal) (*dto.TenderResponse, error)
	List(ctx context.Context, req *dto.TenderListRequest, p policy.Principal) ([]dto.TenderResponse, int64, error)
	Publish(ctx context.Context, ref string, p policy.Principal) (*dto.TenderResponse, error)
	Close(ctx context.Context, ref string, p policy.Principal) (*dto.TenderResponse, error)
	MarkEvaluated(ctx context.Context, ref string, p policy.Principal) (*dto.TenderResponse, error)
	Delete(ctx context.Context, ref string, p policy.Principal) error
}

type tenderService struct {
	repo            *repository.Repository
	logger          *zap.Logger
	defaultPageSize int
}

// NewTenderService creates a TenderService
func NewTenderService(repo *repository.Repository, logger *zap.Logger, defaultPageSize int) TenderService {
	if defaultPageSize <= 0 {
		defaultPageSize = 20
	}
	return &tenderService{repo: repo, logger: logger, defaultPageSize: defaultPageSize}
}

// ────────────────────── Save ──────────────────────

func (s *tenderService) Save(ctx context.Context, req *dto.SaveTenderRequest, p policy.Principal) (*dto.SaveTenderResponse, error) {
	if err := validateTenderRequest(req, true); err != nil {
		return nil, err
	}

	existing, err := s.repo.Tender.GetByNumber(ctx, strings.TrimSpace(req.TenderNumber))
	switch {
	case err == nil:
		return s.update(ctx, existing, req, p)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.create(ctx, req, p)
	default:
		return nil, storageFailure(s.logger, "find tender by number", err, zap.String("tender_number", req.TenderNumber))
	}
}

func (s *tenderService) create(ctx context.Context, req *dto.SaveTenderRequest, p policy.Principal) (*dto.SaveTenderResponse, error) {
	if !policy.Allow(p, policy.CreateTender, policy.Resource{}) {
		return nil, ErrTenderForbidden
	}

	t := &model.Tender{CreatedBy: p.ID}
	if err := s.applyRequest(t, req); err != nil {
		return nil, err
	}
	t.Status = resolveStatus(p, req.Status, "")
	stampStatus(t, "", p.ID, time.Now())

	if err := s.persist(ctx, t, req); err != nil {
		return nil, err
	}

	s.logger.Info("tender created",
		zap.Int64("tender_id", t.ID),
		zap.String("tender_number", t.TenderNumber),
		zap.String("status", t.Status),
		zap.String("by", p.ID),
	)
	return &dto.SaveTenderResponse{ID: t.ID, Status: t.Status, Created: true}, nil
}

func (s *tenderService) update(ctx context.Context, t *model.Tender, req *dto.SaveTenderRequest, p policy.Principal) (*dto.SaveTenderResponse, error) {
	if !policy.Allow(p, policy.UpdateTender, policy.Resource{OwnerID: t.CreatedBy}) {
		return nil, ErrTenderForbidden
	}

	previous := t.Status
	if err := s.applyRequest(t, req); err != nil {
		return nil, err
	}
	t.Status = resolveStatus(p, req.Status, previous)
	stampStatus(t, previous, p.ID, time.Now())

	if err := s.persist(ctx, t, req); err != nil {
		return nil, err
	}

	s.logger.Info("tender updated",
		zap.Int64("tender_id", t.ID),
		zap.String("status", t.Status),
		zap.String("previous_status", previous),
		zap.String("by", p.ID),
	)
	return &dto.SaveTenderResponse{ID: t.ID, Status: t.Status}, nil
}

// ────────────────────── Update ──────────────────────

func (s *tenderService) Update(ctx context.Context, ref string, req *dto.SaveTenderRequest, p policy.Principal) (*dto.SaveTenderResponse, error) {
	t, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !policy.Allow(p, policy.UpdateTender, policy.Resource{OwnerID: t.CreatedBy}) {
		return nil, ErrTenderForbidden
	}
	if strings.TrimSpace(req.TenderNumber) == "" {
		req.TenderNumber = t.TenderNumber
	}
	if err := validateTenderRequest(req, true); err != nil {
		return nil, err
	}
	return s.update(ctx, t, req, p)
}

// ────────────────────── Get / List ──────────────────────

func (s *tenderService) Get(ctx context.Context, ref string, p policy.Principal) (*dto.TenderResponse, error) {
	t, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !policy.TenderVisibility(p).CanSee(t.CreatedBy, t.Status) {
		return nil, ErrTenderNotFound
	}

	resp := toTenderResponse(t)
	resp.CanEdit = policy.Allow(p, policy.UpdateTender, policy.Resource{OwnerID: t.CreatedBy})
	return resp, nil
}

func (s *tenderService) List(ctx context.Context, req *dto.TenderListRequest, p policy.Principal) ([]dto.TenderResponse, int64, error) {
	// normalised in place so the caller can report the effective page
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = s.defaultPageSize
	}

	filter, ok := visibilityFilter(policy.TenderVisibility(p), req.Status)
	if !ok {
		return []dto.TenderResponse{}, 0, nil
	}
	filter.Page = req.Page
	filter.PageSize = req.PageSize

	tenders, total, err := s.repo.Tender.List(ctx, filter)
	if err != nil {
		return nil, 0, storageFailure(s.logger, "list tenders", err)
	}

	result := make([]dto.TenderResponse, 0, len(tenders))
	for i := range tenders {
		resp := toTenderResponse(&tenders[i])
		resp.CanEdit = policy.Allow(p, policy.UpdateTender, policy.Resource{OwnerID: tenders[i].CreatedBy})
		result = append(result, *resp)
	}
	return result, total, nil
}

// ────────────────────── Transitions ──────────────────────

func (s *tenderService) Publish(ctx context.Context, ref string, p policy.Principal) (*dto.TenderResponse, error) {
	return s.transition(ctx, ref, p, policy.PublishTender,
		[]string{model.TenderStatusDraft, model.TenderStatusPendingApproval},
		model.TenderStatusPublished, "published_at", "published_by")
}

func (s *tenderService) Close(ctx context.Context, ref string, p policy.Principal) (*dto.TenderResponse, error) {
	return s.transition(ctx, ref, p, policy.CloseTender,
		[]string{model.TenderStatusPublished},
		model.TenderStatusClosed, "closed_at", "closed_by")
}

func (s *tenderService) MarkEvaluated(ctx context.Context, ref string, p policy.Principal) (*dto.TenderResponse, error) {
	return s.transition(ctx, ref, p, policy.MarkTenderEvaluated,
		[]string{model.TenderStatusClosed},
		model.TenderStatusEvaluated, "evaluated_at", "evaluated_by")
}

func (s *tenderService) transition(
	ctx context.Context, ref string, p policy.Principal, action policy.Action,
	from []string, to, atColumn, byColumn string,
) (*dto.TenderResponse, error) {
	if !policy.Allow(p, action, policy.Resource{}) {
		return nil, ErrTenderForbidden
	}

	t, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(from, t.Status) {
		return nil, ErrTenderInvalidTransition
	}

	err = s.repo.Tender.Transition(ctx, t.ID, from, map[string]interface{}{
		"status": to,
		atColumn: time.Now(),
		byColumn: p.ID,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrOptimisticLock) {
			return nil, ErrTenderInvalidTransition
		}
		return nil, storageFailure(s.logger, "transition tender", err, zap.Int64("tender_id", t.ID), zap.String("to", to))
	}

	s.logger.Info("tender status changed",
		zap.Int64("tender_id", t.ID),
		zap.String("from", t.Status),
		zap.String("to", to),
		zap.String("by", p.ID),
	)

	updated, err := s.repo.Tender.GetByID(ctx, t.ID)
	if err != nil {
		return nil, storageFailure(s.logger, "reload tender", err, zap.Int64("tender_id", t.ID))
	}
	return toTenderResponse(updated), nil
}

// ────────────────────── Delete ──────────────────────

func (s *tenderService) Delete(ctx context.Context, ref string, p policy.Principal) error {
	t, err := s.resolve(ctx, ref)
	if err != nil {
		return err
	}
	if !policy.Allow(p, policy.DeleteTender, policy.Resource{OwnerID: t.CreatedBy}) {
		return ErrTenderForbidden
	}

	if err := s.repo.Tender.DeleteWithDocuments(ctx, t.ID); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrTenderNotFound
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return ErrTenderHasProposals
		}
		return storageFailure(s.logger, "delete tender", err, zap.Int64("tender_id", t.ID))
	}

	s.logger.Info("tender deleted", zap.Int64("tender_id", t.ID), zap.String("by", p.ID))
	return nil
}

// ── internal helpers ──

func (s *tenderService) resolve(ctx context.Context, ref string) (*model.Tender, error) {
	return resolveTender(ctx, s.repo, s.logger, ref)
}

// resolveTender looks a tender up by surrogate id when ref is numeric,
// by tender_number otherwise.
func resolveTender(ctx context.Context, repo *repository.Repository, logger *zap.Logger, ref string) (*model.Tender, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrTenderNotFound
	}

	var (
		t   *model.Tender
		err error
	)
	if id, convErr := strconv.ParseInt(ref, 10, 64); convErr == nil {
		t, err = repo.Tender.GetByID(ctx, id)
	} else {
		t, err = repo.Tender.GetByNumber(ctx, ref)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenderNotFound
		}
		return nil, storageFailure(logger, "find tender", err, zap.String("ref", ref))
	}
	return t, nil
}

// visibilityFilter turns a policy visibility plus an optional requested
// status into a repository filter. ok is false when the requested status
// can never be visible.
func visibilityFilter(v policy.Visibility, status string) (repository.TenderFilter, bool) {
	f := repository.TenderFilter{OwnerID: v.OwnerID}
	if v.All {
		f.OwnerID = ""
	}
	if !v.All && v.OwnerID == "" {
		f.Statuses = v.Statuses
	}
	if status != "" {
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, status) {
			return f, false
		}
		f.Statuses = []string{status}
	}
	return f, true
}

// resolveStatus picks the stored status for a save. previous is empty on
// create.
func resolveStatus(p policy.Principal, requested, previous string) string {
	if policy.Allow(p, policy.SetTenderStatus, policy.Resource{}) {
		switch requested {
		case "":
			if previous == "" {
				return model.TenderStatusDraft
			}
			return previous
		case statusUKKSaved:
			return model.TenderStatusPendingApproval
		}
		if model.ValidTenderStatus(requested) {
			return requested
		}
		if previous == "" {
			return model.TenderStatusDraft
		}
		return previous
	}

	if previous == "" {
		if requested == statusUKKSaved && p.IsUKK() {
			return model.TenderStatusPendingApproval
		}
		return model.TenderStatusDraft
	}

	// non-administrators only ever move a draft forward to approval
	if requested == statusUKKSaved && p.IsUKK() && previous == model.TenderStatusDraft {
		return model.TenderStatusPendingApproval
	}
	return previous
}

// stampStatus records who moved the tender into its current status when
// it differs from previous.
func stampStatus(t *model.Tender, previous, by string, now time.Time) {
	if t.Status == previous {
		return
	}
	switch t.Status {
	case model.TenderStatusPublished:
		t.PublishedAt, t.PublishedBy = &now, &by
	case model.TenderStatusClosed:
		t.ClosedAt, t.ClosedBy = &now, &by
	case model.TenderStatusEvaluated:
		t.EvaluatedAt, t.EvaluatedBy = &now, &by
	}
}

func validateTenderRequest(req *dto.SaveTenderRequest, requireNumber bool) error {
	var missing []string
	if requireNumber && strings.TrimSpace(req.TenderNumber) == "" {
		missing = append(missing, "tender_number")
	}
	if strings.TrimSpace(req.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(req.Type) == "" {
		missing = append(missing, "type")
	}
	if len(missing) > 0 {
		return apperrors.Validation("missing required fields", missing...)
	}
	return nil
}

func (s *tenderService) applyRequest(t *model.Tender, req *dto.SaveTenderRequest) error {
	start, err := parseDate(req.ProductionStart, "production_start")
	if err != nil {
		return err
	}
	end, err := parseDate(req.ProductionEnd, "production_end")
	if err != nil {
		return err
	}
	if start != nil && end != nil && end.Before(*start) {
		return apperrors.Validation("production_end must not be before production_start", "production_end")
	}

	t.TenderNumber = strings.TrimSpace(req.TenderNumber)
	t.Title = strings.TrimSpace(req.Title)
	t.Description = req.Description
	t.Type = strings.TrimSpace(req.Type)
	t.Category = req.Category
	t.EpisodeDuration = req.EpisodeDuration
	t.TotalEpisodes = req.TotalEpisodes
	t.SubmissionDeadline = req.SubmissionDeadline
	t.EvaluationPeriod = req.EvaluationPeriod
	t.ProductionStart = start
	t.ProductionEnd = end
	t.TechnicalRequirements = req.TechnicalRequirements
	t.ContentRequirements = req.ContentRequirements

	t.BudgetPerEpisode = decimal.Zero
	if req.BudgetPerEpisode != nil {
		t.BudgetPerEpisode = req.BudgetPerEpisode.Round(2)
	}

	derived := t.BudgetPerEpisode.Mul(decimal.NewFromInt(int64(t.TotalEpisodes)))
	switch {
	case req.TotalBudget != nil:
		t.TotalBudget = req.TotalBudget.Round(2)
		if req.BudgetPerEpisode != nil && t.TotalEpisodes > 0 && !t.TotalBudget.Equal(derived) {
			s.logger.Warn("total budget does not match budget per episode x episodes",
				zap.String("tender_number", t.TenderNumber),
				zap.String("total_budget", t.TotalBudget.String()),
				zap.String("derived", derived.String()),
			)
		}
	case req.BudgetPerEpisode != nil && t.TotalEpisodes > 0:
		t.TotalBudget = derived
	default:
		t.TotalBudget = decimal.Zero
	}
	return nil
}

func (s *tenderService) persist(ctx context.Context, t *model.Tender, req *dto.SaveTenderRequest) error {
	if err := s.repo.Tender.Save(ctx, t, normalizeDocuments(req.RequiredDocuments)); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrTenderNumberTaken
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTenderNotFound
		}
		return storageFailure(s.logger, "save tender", err, zap.String("tender_number", t.TenderNumber))
	}
	return nil
}

// normalizeDocuments trims and de-duplicates; nil stays nil so the
// stored set is kept.
func normalizeDocuments(docs []string) []string {
	if docs == nil {
		return nil
	}
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		d = strings.TrimSpace(d)
		if d == "" || slices.Contains(out, d) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func parseDate(v *string, field string) (*time.Time, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", strings.TrimSpace(*v))
	if err != nil {
		return nil, apperrors.Validation("invalid date, expected YYYY-MM-DD", field)
	}
	return &d, nil
}

func toTenderResponse(t *model.Tender) *dto.TenderResponse {
	docs := make([]string, 0, len(t.RequiredDocuments))
	for _, d := range t.RequiredDocuments {
		docs = append(docs, d.DocumentType)
	}
	resp := &dto.TenderResponse{
		ID:                    t.ID,
		TenderNumber:          t.TenderNumber,
		Title:                 t.Title,
		Description:           t.Description,
		Type:                  t.Type,
		Category:              t.Category,
		EpisodeDuration:       t.EpisodeDuration,
		TotalEpisodes:         t.TotalEpisodes,
		BudgetPerEpisode:      t.BudgetPerEpisode,
		TotalBudget:           t.TotalBudget,
		SubmissionDeadline:    t.SubmissionDeadline,
		EvaluationPeriod:      t.EvaluationPeriod,
		TechnicalRequirements: t.TechnicalRequirements,
		ContentRequirements:   t.ContentRequirements,
		Status:                t.Status,
		CreatedBy:             t.CreatedBy,
		CreatedAt:             t.CreatedAt,
		UpdatedAt:             t.UpdatedAt,
		PublishedAt:           t.PublishedAt,
		PublishedBy:           t.PublishedBy,
		ClosedAt:              t.ClosedAt,
		ClosedBy:              t.ClosedBy,
		EvaluatedAt:           t.EvaluatedAt,
		EvaluatedBy:           t.EvaluatedBy,
		RequiredDocuments:     docs,
	}
	if t.ProductionStart != nil {
		resp.ProductionStart = t.ProductionStart.Format("2006-01-02")
	}
	if t.ProductionEnd != nil {
		resp.ProductionEnd = t.ProductionEnd.Format("2006-01-02")
	}
	return resp
}
