package dto

import "time"

// DashboardStatsResponse role specific counters; absent counters do not
// apply to the caller's roles
type DashboardStatsResponse struct {
	ActiveTenders      int64            `json:"active_tenders"`
	MyProposals        *int64           `json:"my_proposals,omitempty"`
	TotalProposals     *int64           `json:"total_proposals,omitempty"`
	PendingEvaluations *int64           `json:"pending_evaluations,omitempty"`
	TendersByStatus    map[string]int64 `json:"tenders_by_status"`
}

// TenderActivity recent tender entry
type TenderActivity struct {
	ID           int64     `json:"id"`
	TenderNumber string    `json:"tender_number"`
	Title        string    `json:"title"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// TenderDeadline upcoming submission deadline
type TenderDeadline struct {
	ID                 int64     `json:"id"`
	TenderNumber       string    `json:"tender_number"`
	Title              string    `json:"title"`
	SubmissionDeadline time.Time `json:"submission_deadline"`
	DaysLeft           int       `json:"days_left"`
}
