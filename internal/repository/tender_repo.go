package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wmmalith63/credence-tender-management/internal/model"
	pkgerrors "github.com/wmmalith63/credence-tender-management/pkg/errors"
)

// TenderFilter narrows tender listings. An empty OwnerID and empty
// Statuses match every tender.
type TenderFilter struct {
	OwnerID  string
	Statuses []string
	Page     int
	PageSize int
}

// TenderRepository tender data access
type TenderRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Tender, error)
	GetByNumber(ctx context.Context, number string) (*model.Tender, error)
	List(ctx context.Context, f TenderFilter) ([]model.Tender, int64, error)
	ListUpcoming(ctx context.Context, f TenderFilter, after time.Time, limit int) ([]model.Tender, error)
	// Save inserts or updates t. When docs is non-nil the tender's
	// required document set is replaced inside the same transaction.
	Save(ctx context.Context, t *model.Tender, docs []string) error
	// Transition moves a tender to a new status only if its current
	// status is one of from. ErrOptimisticLock when nothing matched.
	Transition(ctx context.Context, id int64, from []string, updates map[string]interface{}) error
	DeleteWithDocuments(ctx context.Context, id int64) error
}

type tenderRepo struct {
	db *gorm.DB
}

// NewTenderRepo creates a TenderRepository
func NewTenderRepo(db *gorm.DB) TenderRepository {
	return &tenderRepo{db: db}
}

func (r *tenderRepo) GetByID(ctx context.Context, id int64) (*model.Tender, error) {
	var t model.Tender
	err := r.db.WithContext(ctx).
		Preload("RequiredDocuments", func(db *gorm.DB) *gorm.DB { return db.Order("document_type ASC") }).
		Where("id = ?", id).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tenderRepo) GetByNumber(ctx context.Context, number string) (*model.Tender, error) {
	var t model.Tender
	err := r.db.WithContext(ctx).
		Preload("RequiredDocuments", func(db *gorm.DB) *gorm.DB { return db.Order("document_type ASC") }).
		Where("tender_number = ?", number).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tenderRepo) filtered(ctx context.Context, f TenderFilter) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.Tender{})
	if f.OwnerID != "" {
		db = db.Where("created_by = ?", f.OwnerID)
	}
	if len(f.Statuses) > 0 {
		db = db.Where("status IN ?", f.Statuses)
	}
	return db
}

func (r *tenderRepo) List(ctx context.Context, f TenderFilter) ([]model.Tender, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize := f.Page, f.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	var tenders []model.Tender
	err := r.filtered(ctx, f).
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&tenders).Error
	return tenders, total, err
}

func (r *tenderRepo) ListUpcoming(ctx context.Context, f TenderFilter, after time.Time, limit int) ([]model.Tender, error) {
	var tenders []model.Tender
	err := r.filtered(ctx, f).
		Where("submission_deadline > ?", after).
		Order("submission_deadline ASC").
		Limit(limit).
		Find(&tenders).Error
	return tenders, err
}

func (r *tenderRepo) Save(ctx context.Context, t *model.Tender, docs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if t.ID == 0 {
			if err := tx.Omit(clause.Associations).Create(t).Error; err != nil {
				return err
			}
		} else {
			result := tx.Model(t).
				Select("*").
				Omit(clause.Associations, "id", "created_at", "created_by").
				Updates(t)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}

		if docs == nil {
			return nil
		}

		if err := tx.Where("tender_id = ?", t.ID).Delete(&model.RequiredDocument{}).Error; err != nil {
			return err
		}
		rows := make([]model.RequiredDocument, 0, len(docs))
		for _, d := range docs {
			rows = append(rows, model.RequiredDocument{TenderID: t.ID, DocumentType: d})
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		t.RequiredDocuments = rows
		return nil
	})
}

func (r *tenderRepo) Transition(ctx context.Context, id int64, from []string, updates map[string]interface{}) error {
	updates["updated_at"] = gorm.Expr("NOW()")
	result := r.db.WithContext(ctx).
		Model(&model.Tender{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *tenderRepo) DeleteWithDocuments(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tender_id = ?", id).Delete(&model.RequiredDocument{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&model.Tender{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
