package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── Proposal ──

// SubmitProposalRequest create or update the caller's proposal
type SubmitProposalRequest struct {
	ProposalTitle       string          `json:"proposal_title"       binding:"omitempty,max=255"`
	ProposalDescription string          `json:"proposal_description"`
	ProposedBudget      decimal.Decimal `json:"proposed_budget"      binding:"gte=0"`
	Timeline            string          `json:"timeline"`
	TechnicalApproach   string          `json:"technical_approach"`
	TeamDetails         string          `json:"team_details"`
	Status              string          `json:"status"               binding:"omitempty,oneof=draft submitted"`
}

// SubmitProposalResponse result of submitProposal
type SubmitProposalResponse struct {
	ID      int64  `json:"id"`
	Status  string `json:"status"`
	Created bool   `json:"created"`
}

// ProposalResponse proposal view; Evaluations only for admin and evaluator callers
type ProposalResponse struct {
	ID                  int64                `json:"id"`
	TenderID            int64                `json:"tender_id"`
	TenderNumber        string               `json:"tender_number,omitempty"`
	TenderTitle         string               `json:"tender_title,omitempty"`
	VendorID            string               `json:"vendor_id"`
	CompanyID           *int64               `json:"company_id,omitempty"`
	CompanyName         string               `json:"company_name,omitempty"`
	ProposalTitle       string               `json:"proposal_title"`
	ProposalDescription string               `json:"proposal_description"`
	ProposedBudget      decimal.Decimal      `json:"proposed_budget"`
	Timeline            string               `json:"timeline"`
	TechnicalApproach   string               `json:"technical_approach"`
	TeamDetails         string               `json:"team_details"`
	Status              string               `json:"status"`
	EvaluationScore     decimal.NullDecimal  `json:"evaluation_score"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
	Evaluations         []EvaluationResponse `json:"evaluations,omitempty"`
}

// ── Vendor application ──

// VendorApplicationRequest interest registration for a tender
type VendorApplicationRequest struct {
	CompanyName     string `json:"company_name"     binding:"omitempty,max=255"`
	CompanyRegNo    string `json:"company_reg_no"   binding:"omitempty,max=100"`
	ContactPerson   string `json:"contact_person"   binding:"omitempty,max=255"`
	ContactEmail    string `json:"contact_email"    binding:"omitempty,email"`
	ContactPhone    string `json:"contact_phone"    binding:"omitempty,max=50"`
	AdditionalNotes string `json:"additional_notes"`
}

// VendorApplicationResponse stored application
type VendorApplicationResponse struct {
	ID                int64     `json:"id"`
	TenderID          int64     `json:"tender_id"`
	CompanyName       string    `json:"company_name"`
	ApplicationStatus string    `json:"application_status"`
	SubmittedAt       time.Time `json:"submitted_at"`
}

// ── Evaluation ──

// RecordEvaluationRequest one criterion score; MaxScore defaults to 100
type RecordEvaluationRequest struct {
	CriteriaName   string           `json:"criteria_name"   binding:"omitempty,max=255"`
	CriteriaWeight decimal.Decimal  `json:"criteria_weight"`
	Score          decimal.Decimal  `json:"score"`
	MaxScore       *decimal.Decimal `json:"max_score"`
	Comments       string           `json:"comments"`
}

// RecordEvaluationResponse result of recordEvaluation
type RecordEvaluationResponse struct {
	EvaluationID   int64           `json:"evaluation_id"`
	CompositeScore decimal.Decimal `json:"composite_score"`
}

// RecomputeResponse result of a manual recompute
type RecomputeResponse struct {
	ProposalID     int64           `json:"proposal_id"`
	CompositeScore decimal.Decimal `json:"composite_score"`
}

// EvaluationResponse stored evaluation
type EvaluationResponse struct {
	ID             int64           `json:"id"`
	EvaluatorID    string          `json:"evaluator_id"`
	CriteriaName   string          `json:"criteria_name"`
	CriteriaWeight decimal.Decimal `json:"criteria_weight"`
	Score          decimal.Decimal `json:"score"`
	MaxScore       decimal.Decimal `json:"max_score"`
	Comments       string          `json:"comments"`
	EvaluationDate time.Time       `json:"evaluation_date"`
}
