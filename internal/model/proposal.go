package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Proposal statuses
const (
	ProposalStatusDraft       = "draft"
	ProposalStatusSubmitted   = "submitted"
	ProposalStatusUnderReview = "under_review"
)

// Proposal — tender_proposals, one per (tender_id, vendor_id)
type Proposal struct {
	ID                  int64               `gorm:"primaryKey;autoIncrement"                  json:"id"`
	TenderID            int64               `gorm:"not null"                                  json:"tender_id"`
	VendorID            string              `gorm:"type:varchar(64);not null"                 json:"vendor_id"`
	CompanyID           *int64              `json:"company_id,omitempty"`
	ProposalTitle       string              `gorm:"type:varchar(255);not null;default:''"     json:"proposal_title"`
	ProposalDescription string              `gorm:"type:text;not null;default:''"             json:"proposal_description"`
	ProposedBudget      decimal.Decimal     `gorm:"type:numeric(15,2);not null;default:0"     json:"proposed_budget"`
	Timeline            string              `gorm:"type:text;not null;default:''"             json:"timeline"`
	TechnicalApproach   string              `gorm:"type:text;not null;default:''"             json:"technical_approach"`
	TeamDetails         string              `gorm:"type:text;not null;default:''"             json:"team_details"`
	Status              string              `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`
	EvaluationScore     decimal.NullDecimal `gorm:"type:numeric(9,2)"                         json:"evaluation_score"`
	CreatedAt           time.Time           `gorm:"not null;default:CURRENT_TIMESTAMP"        json:"created_at"`
	UpdatedAt           time.Time           `gorm:"not null;default:CURRENT_TIMESTAMP"        json:"updated_at"`

	Tender  *Tender  `gorm:"foreignKey:TenderID"  json:"tender,omitempty"`
	Company *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
}

func (Proposal) TableName() string { return "tender_proposals" }

// Evaluation — tender_evaluations, append-only
type Evaluation struct {
	ID             int64           `gorm:"primaryKey;autoIncrement"                json:"id"`
	ProposalID     int64           `gorm:"not null;index"                          json:"proposal_id"`
	EvaluatorID    string          `gorm:"type:varchar(64);not null"               json:"evaluator_id"`
	CriteriaName   string          `gorm:"type:varchar(255);not null"              json:"criteria_name"`
	CriteriaWeight decimal.Decimal `gorm:"type:numeric(5,2);not null"              json:"criteria_weight"`
	Score          decimal.Decimal `gorm:"type:numeric(9,2);not null"              json:"score"`
	MaxScore       decimal.Decimal `gorm:"type:numeric(9,2);not null;default:100"  json:"max_score"`
	Comments       string          `gorm:"type:text;not null;default:''"           json:"comments"`
	EvaluationDate time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"      json:"evaluation_date"`
}

func (Evaluation) TableName() string { return "tender_evaluations" }
