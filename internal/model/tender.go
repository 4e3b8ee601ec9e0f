package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tender statuses
const (
	TenderStatusDraft           = "draft"
	TenderStatusPendingApproval = "pending_approval"
	TenderStatusPublished       = "published"
	TenderStatusClosed          = "closed"
	TenderStatusEvaluated       = "evaluated"
)

// ValidTenderStatus reports whether s is a stored tender status
func ValidTenderStatus(s string) bool {
	switch s {
	case TenderStatusDraft, TenderStatusPendingApproval, TenderStatusPublished, TenderStatusClosed, TenderStatusEvaluated:
		return true
	}
	return false
}

// Tender — tenders
type Tender struct {
	ID                    int64           `gorm:"primaryKey;autoIncrement"                  json:"id"`
	TenderNumber          string          `gorm:"type:varchar(50);not null;uniqueIndex"     json:"tender_number"`
	Title                 string          `gorm:"type:varchar(255);not null"                json:"title"`
	Description           string          `gorm:"type:text;not null;default:''"             json:"description"`
	Type                  string          `gorm:"type:varchar(100);not null"                json:"type"`
	Category              string          `gorm:"type:varchar(100);not null;default:''"     json:"category"`
	EpisodeDuration       string          `gorm:"type:varchar(50);not null;default:''"      json:"episode_duration"`
	TotalEpisodes         int             `gorm:"not null;default:0"                        json:"total_episodes"`
	BudgetPerEpisode      decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"     json:"budget_per_episode"`
	TotalBudget           decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"     json:"total_budget"`
	SubmissionDeadline    *time.Time      `json:"submission_deadline,omitempty"`
	EvaluationPeriod      string          `gorm:"type:varchar(100);not null;default:''"     json:"evaluation_period"`
	ProductionStart       *time.Time      `gorm:"type:date"                                 json:"production_start,omitempty"`
	ProductionEnd         *time.Time      `gorm:"type:date"                                 json:"production_end,omitempty"`
	TechnicalRequirements string          `gorm:"type:text;not null;default:''"             json:"technical_requirements"`
	ContentRequirements   string          `gorm:"type:text;not null;default:''"             json:"content_requirements"`
	Status                string          `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`
	CreatedBy             string          `gorm:"type:varchar(64);not null"                 json:"created_by"`
	CreatedAt             time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"        json:"created_at"`
	UpdatedAt             time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"        json:"updated_at"`
	PublishedAt           *time.Time      `json:"published_at,omitempty"`
	PublishedBy           *string         `gorm:"type:varchar(64)"                          json:"published_by,omitempty"`
	ClosedAt              *time.Time      `json:"closed_at,omitempty"`
	ClosedBy              *string         `gorm:"type:varchar(64)"                          json:"closed_by,omitempty"`
	EvaluatedAt           *time.Time      `json:"evaluated_at,omitempty"`
	EvaluatedBy           *string         `gorm:"type:varchar(64)"                          json:"evaluated_by,omitempty"`

	RequiredDocuments []RequiredDocument `gorm:"foreignKey:TenderID" json:"required_documents,omitempty"`
}

func (Tender) TableName() string { return "tenders" }

// RequiredDocument — tender_required_documents
type RequiredDocument struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"   json:"id"`
	TenderID     int64  `gorm:"not null"                   json:"tender_id"`
	DocumentType string `gorm:"type:varchar(100);not null" json:"document_type"`
}

func (RequiredDocument) TableName() string { return "tender_required_documents" }
