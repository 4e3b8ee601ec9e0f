package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/wmmalith63/credence-tender-management/internal/model"
)

// CompanyRepository read-only company profile lookup
type CompanyRepository interface {
	GetByUserID(ctx context.Context, userID string) (*model.Company, error)
}

type companyRepo struct {
	db *gorm.DB
}

// NewCompanyRepo creates a CompanyRepository
func NewCompanyRepo(db *gorm.DB) CompanyRepository {
	return &companyRepo{db: db}
}

func (r *companyRepo) GetByUserID(ctx context.Context, userID string) (*model.Company, error) {
	var c model.Company
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// VendorApplicationRepository vendor interest registrations
type VendorApplicationRepository interface {
	// Create inserts a; the (tender_id, vendor_id) unique index yields
	// gorm.ErrDuplicatedKey on a second application.
	Create(ctx context.Context, a *model.VendorApplication) error
	Exists(ctx context.Context, tenderID int64, vendorID string) (bool, error)
}

type vendorApplicationRepo struct {
	db *gorm.DB
}

// NewVendorApplicationRepo creates a VendorApplicationRepository
func NewVendorApplicationRepo(db *gorm.DB) VendorApplicationRepository {
	return &vendorApplicationRepo{db: db}
}

func (r *vendorApplicationRepo) Create(ctx context.Context, a *model.VendorApplication) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *vendorApplicationRepo) Exists(ctx context.Context, tenderID int64, vendorID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.VendorApplication{}).
		Where("tender_id = ? AND vendor_id = ?", tenderID, vendorID).
		Count(&n).Error
	return n > 0, err
}
