package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"
)

// DashboardRepository read-only aggregate queries. Statements are built
// with squirrel and executed through gorm, which rebinds the "?"
// placeholders for PostgreSQL.
type DashboardRepository interface {
	CountTenders(ctx context.Context, f TenderFilter) (int64, error)
	CountTendersByStatus(ctx context.Context, f TenderFilter) (map[string]int64, error)
	CountProposals(ctx context.Context, vendorID string, statuses []string) (int64, error)
}

type dashboardRepo struct {
	db *gorm.DB
}

// NewDashboardRepo creates a DashboardRepository
func NewDashboardRepo(db *gorm.DB) DashboardRepository {
	return &dashboardRepo{db: db}
}

func tenderConditions(b sq.SelectBuilder, f TenderFilter) sq.SelectBuilder {
	if f.OwnerID != "" {
		b = b.Where(sq.Eq{"created_by": f.OwnerID})
	}
	if len(f.Statuses) > 0 {
		b = b.Where(sq.Eq{"status": f.Statuses})
	}
	return b
}

func (r *dashboardRepo) CountTenders(ctx context.Context, f TenderFilter) (int64, error) {
	query, args, err := tenderConditions(sq.Select("COUNT(*)").From("tenders"), f).ToSql()
	if err != nil {
		return 0, err
	}

	var n int64
	err = r.db.WithContext(ctx).Raw(query, args...).Scan(&n).Error
	return n, err
}

func (r *dashboardRepo) CountTendersByStatus(ctx context.Context, f TenderFilter) (map[string]int64, error) {
	query, args, err := tenderConditions(
		sq.Select("status", "COUNT(*) AS total").From("tenders"), f,
	).GroupBy("status").ToSql()
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Status string
		Total  int64
	}
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Total
	}
	return out, nil
}

func (r *dashboardRepo) CountProposals(ctx context.Context, vendorID string, statuses []string) (int64, error) {
	b := sq.Select("COUNT(*)").From("tender_proposals")
	if vendorID != "" {
		b = b.Where(sq.Eq{"vendor_id": vendorID})
	}
	if len(statuses) > 0 {
		b = b.Where(sq.Eq{"status": statuses})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}

	var n int64
	err = r.db.WithContext(ctx).Raw(query, args...).Scan(&n).Error
	return n, err
}
