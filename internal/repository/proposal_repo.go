package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wmmalith63/credence-tender-management/internal/model"
)

// proposalMutableColumns are rewritten on every resubmission
var proposalMutableColumns = []string{
	"company_id",
	"proposal_title",
	"proposal_description",
	"proposed_budget",
	"timeline",
	"technical_approach",
	"team_details",
	"status",
	"updated_at",
}

// ProposalRepository proposal data access
type ProposalRepository interface {
	// Upsert stores p as the single proposal of (p.TenderID, p.VendorID).
	// An existing row keeps its id and created_at; p is refreshed from
	// the stored row. created reports whether a new row was inserted.
	Upsert(ctx context.Context, p *model.Proposal) (created bool, err error)
	GetByID(ctx context.Context, id int64) (*model.Proposal, error)
	GetByTenderAndVendor(ctx context.Context, tenderID int64, vendorID string) (*model.Proposal, error)
	ListByTender(ctx context.Context, tenderID int64) ([]model.Proposal, error)
	ListByVendor(ctx context.Context, vendorID string) ([]model.Proposal, error)
}

type proposalRepo struct {
	db *gorm.DB
}

// NewProposalRepo creates a ProposalRepository
func NewProposalRepo(db *gorm.DB) ProposalRepository {
	return &proposalRepo{db: db}
}

func (r *proposalRepo) Upsert(ctx context.Context, p *model.Proposal) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Proposal
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tender_id = ? AND vendor_id = ?", p.TenderID, p.VendorID).
			First(&existing).Error

		switch {
		case err == nil:
			p.ID = existing.ID
			p.CreatedAt = existing.CreatedAt
			p.EvaluationScore = existing.EvaluationScore
			return tx.Model(&existing).
				Select(proposalMutableColumns).
				Updates(p).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			// the unique index turns a concurrent first submission into an update
			created = true
			return tx.Omit(clause.Associations).
				Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "tender_id"}, {Name: "vendor_id"}},
					DoUpdates: clause.AssignmentColumns(proposalMutableColumns),
				}).
				Create(p).Error
		default:
			return err
		}
	})
	if err != nil {
		return false, err
	}

	stored, err := r.GetByTenderAndVendor(ctx, p.TenderID, p.VendorID)
	if err != nil {
		return false, err
	}
	*p = *stored
	return created, nil
}

func (r *proposalRepo) GetByID(ctx context.Context, id int64) (*model.Proposal, error) {
	var p model.Proposal
	err := r.db.WithContext(ctx).
		Preload("Company").
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *proposalRepo) GetByTenderAndVendor(ctx context.Context, tenderID int64, vendorID string) (*model.Proposal, error) {
	var p model.Proposal
	err := r.db.WithContext(ctx).
		Where("tender_id = ? AND vendor_id = ?", tenderID, vendorID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *proposalRepo) ListByTender(ctx context.Context, tenderID int64) ([]model.Proposal, error) {
	var proposals []model.Proposal
	err := r.db.WithContext(ctx).
		Preload("Company").
		Where("tender_id = ?", tenderID).
		Order("evaluation_score DESC NULLS LAST, created_at ASC").
		Find(&proposals).Error
	return proposals, err
}

func (r *proposalRepo) ListByVendor(ctx context.Context, vendorID string) ([]model.Proposal, error) {
	var proposals []model.Proposal
	err := r.db.WithContext(ctx).
		Preload("Tender").
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Find(&proposals).Error
	return proposals, err
}
