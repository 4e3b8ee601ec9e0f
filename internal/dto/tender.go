package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── Tender requests ──

// SaveTenderRequest create-or-update keyed by tender_number.
// tender_number, title and type are checked by the service so the error
// can list every missing field at once.
type SaveTenderRequest struct {
	TenderNumber          string           `json:"tender_number"          binding:"omitempty,max=50"`
	Title                 string           `json:"title"                  binding:"omitempty,max=255"`
	Description           string           `json:"description"`
	Type                  string           `json:"type"                   binding:"omitempty,max=100"`
	Category              string           `json:"category"               binding:"omitempty,max=100"`
	EpisodeDuration       string           `json:"episode_duration"       binding:"omitempty,max=50"`
	TotalEpisodes         int              `json:"total_episodes"         binding:"gte=0"`
	BudgetPerEpisode      *decimal.Decimal `json:"budget_per_episode"     binding:"omitempty,gte=0"`
	TotalBudget           *decimal.Decimal `json:"total_budget"           binding:"omitempty,gte=0"`
	SubmissionDeadline    *time.Time       `json:"submission_deadline"`
	EvaluationPeriod      string           `json:"evaluation_period"      binding:"omitempty,max=100"`
	ProductionStart       *string          `json:"production_start"       binding:"omitempty,datetime=2006-01-02"`
	ProductionEnd         *string          `json:"production_end"         binding:"omitempty,datetime=2006-01-02"`
	TechnicalRequirements string           `json:"technical_requirements"`
	ContentRequirements   string           `json:"content_requirements"`
	// Status is honoured verbatim for administrators only; "ukk_saved"
	// submits a UKK draft for approval.
	Status string `json:"status" binding:"omitempty,oneof=draft pending_approval published closed evaluated ukk_saved"`
	// RequiredDocuments replaces the stored set when present (even empty).
	RequiredDocuments []string `json:"required_documents" binding:"omitempty,dive,required,max=100"`
}

// TenderListRequest listing query
type TenderListRequest struct {
	Status   string `form:"status"    binding:"omitempty,oneof=draft pending_approval published closed evaluated"`
	Page     int    `form:"page"      binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ── Tender responses ──

// TenderResponse full tender view
type TenderResponse struct {
	ID                    int64           `json:"id"`
	TenderNumber          string          `json:"tender_number"`
	Title                 string          `json:"title"`
	Description           string          `json:"description"`
	Type                  string          `json:"type"`
	Category              string          `json:"category"`
	EpisodeDuration       string          `json:"episode_duration"`
	TotalEpisodes         int             `json:"total_episodes"`
	BudgetPerEpisode      decimal.Decimal `json:"budget_per_episode"`
	TotalBudget           decimal.Decimal `json:"total_budget"`
	SubmissionDeadline    *time.Time      `json:"submission_deadline,omitempty"`
	EvaluationPeriod      string          `json:"evaluation_period"`
	ProductionStart       string          `json:"production_start,omitempty"`
	ProductionEnd         string          `json:"production_end,omitempty"`
	TechnicalRequirements string          `json:"technical_requirements"`
	ContentRequirements   string          `json:"content_requirements"`
	Status                string          `json:"status"`
	CreatedBy             string          `json:"created_by"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
	PublishedAt           *time.Time      `json:"published_at,omitempty"`
	PublishedBy           *string         `json:"published_by,omitempty"`
	ClosedAt              *time.Time      `json:"closed_at,omitempty"`
	ClosedBy              *string         `json:"closed_by,omitempty"`
	EvaluatedAt           *time.Time      `json:"evaluated_at,omitempty"`
	EvaluatedBy           *string         `json:"evaluated_by,omitempty"`
	RequiredDocuments     []string        `json:"required_documents"`
	CanEdit               bool            `json:"can_edit"`
}

// SaveTenderResponse result of createOrUpdateTender
type SaveTenderResponse struct {
	ID      int64  `json:"id"`
	Status  string `json:"status"`
	Created bool   `json:"created"`
}
