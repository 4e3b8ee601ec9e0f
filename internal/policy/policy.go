// Package policy decides who may do what. Every role check in the
// service layer goes through Allow or TenderVisibility; nothing else
// inspects role strings.
package policy

import "slices"

// Roles as issued by the identity provider
const (
	RoleAdministrator   = "administrator"
	RoleTenderAdmin     = "tender_admin"
	RoleUKK             = "ukk"
	RoleJPSD            = "jpsd"
	RolePanel           = "panel"
	RoleVendor          = "vendor"
	RoleContentProducer = "content_producer"
	RoleEvaluator       = "evaluator"
	RoleTenderEvaluator = "tender_evaluator"
)

// Principal is the acting user: an id and a role set.
type Principal struct {
	ID    string
	Roles []string
}

// Has reports whether p holds any of roles
func (p Principal) Has(roles ...string) bool {
	for _, r := range roles {
		if slices.Contains(p.Roles, r) {
			return true
		}
	}
	return false
}

// IsAdministrator full administrator, may bypass the approval flow
func (p Principal) IsAdministrator() bool { return p.Has(RoleAdministrator) }

// IsAdminClass administrators and tender administrators; both see every tender
func (p Principal) IsAdminClass() bool { return p.Has(RoleAdministrator, RoleTenderAdmin) }

// IsVendorClass external bidding companies
func (p Principal) IsVendorClass() bool { return p.Has(RoleVendor, RoleContentProducer) }

// IsEvaluatorClass principals allowed to score proposals
func (p Principal) IsEvaluatorClass() bool {
	return p.Has(RoleEvaluator, RoleTenderEvaluator, RoleAdministrator)
}

// IsUKK self-service tender submitters
func (p Principal) IsUKK() bool { return p.Has(RoleUKK) }

// Action is something a principal attempts on a resource
type Action int

const (
	CreateTender Action = iota + 1
	UpdateTender
	DeleteTender
	PublishTender
	CloseTender
	MarkTenderEvaluated
	SetTenderStatus
	SubmitProposal
	ApplyForTender
	ViewProposal
	ListTenderProposals
	ViewEvaluations
	RecordEvaluation
	RecomputeScore
	ExportResults
)

var actionNames = map[Action]string{
	CreateTender:        "create_tender",
	UpdateTender:        "update_tender",
	DeleteTender:        "delete_tender",
	PublishTender:       "publish_tender",
	CloseTender:         "close_tender",
	MarkTenderEvaluated: "mark_tender_evaluated",
	SetTenderStatus:     "set_tender_status",
	SubmitProposal:      "submit_proposal",
	ApplyForTender:      "apply_for_tender",
	ViewProposal:        "view_proposal",
	ListTenderProposals: "list_tender_proposals",
	ViewEvaluations:     "view_evaluations",
	RecordEvaluation:    "record_evaluation",
	RecomputeScore:      "recompute_score",
	ExportResults:       "export_results",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "unknown"
}

// Resource is the minimal view of the target the policy needs.
// OwnerID is the tender creator or the proposal vendor.
type Resource struct {
	OwnerID string
}

// Allow is the single permission decision point.
func Allow(p Principal, action Action, res Resource) bool {
	if p.ID == "" {
		return false
	}

	switch action {
	case CreateTender:
		return p.IsAdminClass() || p.IsUKK()
	case UpdateTender, DeleteTender:
		if p.IsAdministrator() {
			return true
		}
		return res.OwnerID == p.ID && p.IsUKK()
	case PublishTender, CloseTender, MarkTenderEvaluated, SetTenderStatus, RecomputeScore:
		return p.IsAdministrator()
	case SubmitProposal, ApplyForTender:
		return p.IsVendorClass()
	case ViewProposal:
		if p.IsAdminClass() || p.IsEvaluatorClass() {
			return true
		}
		return p.IsVendorClass() && res.OwnerID == p.ID
	case ListTenderProposals, ViewEvaluations:
		return p.IsAdminClass() || p.IsEvaluatorClass()
	case ExportResults:
		return p.IsAdminClass()
	case RecordEvaluation:
		return p.IsEvaluatorClass()
	default:
		return false
	}
}

// Visibility is the tender filter a listing must apply.
// All wins over OwnerID, OwnerID over Statuses.
type Visibility struct {
	All      bool
	OwnerID  string
	Statuses []string
}

// PublicStatuses what non-owners outside administration may see
var PublicStatuses = []string{"published", "closed"}

// TenderVisibility returns the listing filter for p. Every listing and
// lookup path uses it.
func TenderVisibility(p Principal) Visibility {
	switch {
	case p.IsAdminClass():
		return Visibility{All: true}
	case p.IsUKK():
		return Visibility{OwnerID: p.ID}
	default:
		return Visibility{Statuses: slices.Clone(PublicStatuses)}
	}
}

// CanSee applies v to a single tender
func (v Visibility) CanSee(createdBy, status string) bool {
	switch {
	case v.All:
		return true
	case v.OwnerID != "":
		return createdBy == v.OwnerID
	default:
		return slices.Contains(v.Statuses, status)
	}
}
