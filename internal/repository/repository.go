package repository

import "gorm.io/gorm"

// Repository aggregates every repository
type Repository struct {
	Tender            TenderRepository
	Proposal          ProposalRepository
	Evaluation        EvaluationRepository
	Company           CompanyRepository
	VendorApplication VendorApplicationRepository
	Dashboard         DashboardRepository
}

// NewRepository creates the aggregate
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Tender:            NewTenderRepo(db),
		Proposal:          NewProposalRepo(db),
		Evaluation:        NewEvaluationRepo(db),
		Company:           NewCompanyRepo(db),
		VendorApplication: NewVendorApplicationRepo(db),
		Dashboard:         NewDashboardRepo(db),
	}
}
