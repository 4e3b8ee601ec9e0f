package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wmmalith63/credence-tender-management/internal/model"
)

// ScoreFunc derives a proposal's composite score from all its evaluations
type ScoreFunc func(evals []model.Evaluation) decimal.Decimal

// EvaluationRepository evaluation data access.
//
// Record and Rescore run inside one transaction that holds a row lock
// on the proposal, so concurrent evaluators are serialised and every
// recompute sees the full evaluation set including its own insert.
type EvaluationRepository interface {
	// Record appends ev, recomputes and stores the proposal score and
	// moves the proposal to under_review.
	Record(ctx context.Context, ev *model.Evaluation, score ScoreFunc) (decimal.Decimal, error)
	// Rescore recomputes without inserting. A proposal without
	// evaluations is left untouched and scores zero.
	Rescore(ctx context.Context, proposalID int64, score ScoreFunc) (decimal.Decimal, error)
	ListByProposal(ctx context.Context, proposalID int64) ([]model.Evaluation, error)
}

type evaluationRepo struct {
	db *gorm.DB
}

// NewEvaluationRepo creates an EvaluationRepository
func NewEvaluationRepo(db *gorm.DB) EvaluationRepository {
	return &evaluationRepo{db: db}
}

func (r *evaluationRepo) Record(ctx context.Context, ev *model.Evaluation, score ScoreFunc) (decimal.Decimal, error) {
	var composite decimal.Decimal
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockProposal(tx, ev.ProposalID); err != nil {
			return err
		}
		if err := tx.Create(ev).Error; err != nil {
			return err
		}
		var err error
		composite, err = rescoreLocked(tx, ev.ProposalID, score)
		return err
	})
	return composite, err
}

func (r *evaluationRepo) Rescore(ctx context.Context, proposalID int64, score ScoreFunc) (decimal.Decimal, error) {
	var composite decimal.Decimal
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockProposal(tx, proposalID); err != nil {
			return err
		}
		var err error
		composite, err = rescoreLocked(tx, proposalID, score)
		return err
	})
	return composite, err
}

func (r *evaluationRepo) ListByProposal(ctx context.Context, proposalID int64) ([]model.Evaluation, error) {
	var evals []model.Evaluation
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("evaluation_date ASC, id ASC").
		Find(&evals).Error
	return evals, err
}

// ── helpers ──

func lockProposal(tx *gorm.DB, proposalID int64) error {
	var p model.Proposal
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", proposalID).
		First(&p).Error
}

func rescoreLocked(tx *gorm.DB, proposalID int64, score ScoreFunc) (decimal.Decimal, error) {
	var evals []model.Evaluation
	if err := tx.Where("proposal_id = ?", proposalID).Find(&evals).Error; err != nil {
		return decimal.Zero, err
	}
	if len(evals) == 0 {
		return decimal.Zero, nil
	}

	composite := score(evals)
	err := tx.Model(&model.Proposal{}).
		Where("id = ?", proposalID).
		Updates(map[string]interface{}{
			"evaluation_score": composite,
			"status":           model.ProposalStatusUnderReview,
			"updated_at":       gorm.Expr("NOW()"),
		}).Error
	return composite, err
}
