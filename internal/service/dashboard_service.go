package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/wmmalith63/credence-tender-management/internal/dto"
	"github.com/wmmalith63/credence-tender-management/internal/model"
	"github.com/wmmalith63/credence-tender-management/internal/policy"
	"github.com/wmmalith63/credence-tender-management/internal/repository"
)

// DashboardService read-only role specific summaries
type DashboardService interface {
	Stats(ctx context.Context, p policy.Principal) (*dto.DashboardStatsResponse, error)
	RecentActivities(ctx context.Context, p policy.Principal) ([]dto.TenderActivity, error)
	UpcomingDeadlines(ctx context.Context, p policy.Principal, now time.Time) ([]dto.TenderDeadline, error)
}

type dashboardService struct {
	repo    *repository.Repository
	logger  *zap.Logger
	listMax int
}

// NewDashboardService creates a DashboardService
func NewDashboardService(repo *repository.Repository, logger *zap.Logger, listMax int) DashboardService {
	if listMax <= 0 {
		listMax = 5
	}
	return &dashboardService{repo: repo, logger: logger, listMax: listMax}
}

func (s *dashboardService) Stats(ctx context.Context, p policy.Principal) (*dto.DashboardStatsResponse, error) {
	vis := policy.TenderVisibility(p)
	base, _ := visibilityFilter(vis, "")

	// administrators count tenders still being prepared as active
	active := base
	active.Statuses = []string{model.TenderStatusPublished}
	if p.IsAdminClass() {
		active.Statuses = []string{model.TenderStatusDraft, model.TenderStatusPublished}
	}

	resp := &dto.DashboardStatsResponse{}
	var err error
	if resp.ActiveTenders, err = s.repo.Dashboard.CountTenders(ctx, active); err != nil {
		return nil, storageFailure(s.logger, "count active tenders", err)
	}
	if resp.TendersByStatus, err = s.repo.Dashboard.CountTendersByStatus(ctx, base); err != nil {
		return nil, storageFailure(s.logger, "count tenders by status", err)
	}

	if p.IsVendorClass() {
		n, err := s.repo.Dashboard.CountProposals(ctx, p.ID, nil)
		if err != nil {
			return nil, storageFailure(s.logger, "count vendor proposals", err)
		}
		resp.MyProposals = &n
	}
	if p.IsAdminClass() {
		n, err := s.repo.Dashboard.CountProposals(ctx, "", nil)
		if err != nil {
			return nil, storageFailure(s.logger, "count proposals", err)
		}
		resp.TotalProposals = &n
	}
	if p.IsAdminClass() || p.IsEvaluatorClass() {
		n, err := s.repo.Dashboard.CountProposals(ctx, "", []string{model.ProposalStatusSubmitted})
		if err != nil {
			return nil, storageFailure(s.logger, "count pending evaluations", err)
		}
		resp.PendingEvaluations = &n
	}
	return resp, nil
}

func (s *dashboardService) RecentActivities(ctx context.Context, p policy.Principal) ([]dto.TenderActivity, error) {
	filter, _ := visibilityFilter(policy.TenderVisibility(p), "")
	filter.Page, filter.PageSize = 1, s.listMax

	tenders, _, err := s.repo.Tender.List(ctx, filter)
	if err != nil {
		return nil, storageFailure(s.logger, "list recent tenders", err)
	}

	out := make([]dto.TenderActivity, 0, len(tenders))
	for _, t := range tenders {
		out = append(out, dto.TenderActivity{
			ID:           t.ID,
			TenderNumber: t.TenderNumber,
			Title:        t.Title,
			Status:       t.Status,
			CreatedAt:    t.CreatedAt,
		})
	}
	return out, nil
}

func (s *dashboardService) UpcomingDeadlines(ctx context.Context, p policy.Principal, now time.Time) ([]dto.TenderDeadline, error) {
	tenders, err := upcomingTenders(ctx, s.repo, p, now, s.listMax)
	if err != nil {
		return nil, storageFailure(s.logger, "list upcoming deadlines", err)
	}

	out := make([]dto.TenderDeadline, 0, len(tenders))
	for _, t := range tenders {
		if t.SubmissionDeadline == nil {
			continue
		}
		out = append(out, dto.TenderDeadline{
			ID:                 t.ID,
			TenderNumber:       t.TenderNumber,
			Title:              t.Title,
			SubmissionDeadline: *t.SubmissionDeadline,
			DaysLeft:           daysLeft(now, *t.SubmissionDeadline),
		})
	}
	return out, nil
}

// upcomingTenders published tenders visible to p whose deadline is after now
func upcomingTenders(ctx context.Context, repo *repository.Repository, p policy.Principal, now time.Time, limit int) ([]model.Tender, error) {
	filter, ok := visibilityFilter(policy.TenderVisibility(p), model.TenderStatusPublished)
	if !ok {
		return nil, nil
	}
	return repo.Tender.ListUpcoming(ctx, filter, now, limit)
}

func daysLeft(now, deadline time.Time) int {
	return int(math.Ceil(deadline.Sub(now).Hours() / 24))
}
