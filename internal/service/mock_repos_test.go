package service

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wmmalith63/credence-tender-management/internal/model"
	"github.com/wmmalith63/credence-tender-management/internal/repository"
	apperrors "github.com/wmmalith63/credence-tender-management/pkg/errors"
)

// Mocks hand out copies so a service that mutates a loaded entity and
// then fails leaves the stored state untouched.

var errMockStorage = errors.New("mock storage failure")

// ── Mock TenderRepository ──

type mockTenderRepo struct {
	mu      sync.Mutex
	tenders map[int64]*model.Tender
	nextID  int64
	failAll bool
	// fkBlocked tender ids whose delete violates a foreign key
	fkBlocked map[int64]bool
}

func newMockTenderRepo() *mockTenderRepo {
	return &mockTenderRepo{tenders: make(map[int64]*model.Tender), fkBlocked: make(map[int64]bool)}
}

func copyTender(t *model.Tender) *model.Tender {
	c := *t
	c.RequiredDocuments = slices.Clone(t.RequiredDocuments)
	return &c
}

// seed stores t directly, assigning an id
func (m *mockTenderRepo) seed(t *model.Tender) *model.Tender {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t.ID = m.nextID
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().Add(time.Duration(m.nextID) * time.Second)
	}
	m.tenders[t.ID] = copyTender(t)
	return t
}

func (m *mockTenderRepo) stored(id int64) *model.Tender {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tenders[id]; ok {
		return copyTender(t)
	}
	return nil
}

func (m *mockTenderRepo) GetByID(_ context.Context, id int64) (*model.Tender, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errMockStorage
	}
	if t, ok := m.tenders[id]; ok {
		return copyTender(t), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTenderRepo) GetByNumber(_ context.Context, number string) (*model.Tender, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errMockStorage
	}
	for _, t := range m.tenders {
		if t.TenderNumber == number {
			return copyTender(t), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTenderRepo) matching(f repository.TenderFilter) []model.Tender {
	var out []model.Tender
	for _, t := range m.tenders {
		if f.OwnerID != "" && t.CreatedBy != f.OwnerID {
			continue
		}
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, t.Status) {
			continue
		}
		out = append(out, *copyTender(t))
	}
	return out
}

func (m *mockTenderRepo) List(_ context.Context, f repository.TenderFilter) ([]model.Tender, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, 0, errMockStorage
	}
	all := m.matching(f)
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	page, size := f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if size > 0 {
		start := (page - 1) * size
		if start >= len(all) {
			return []model.Tender{}, total, nil
		}
		end := min(start+size, len(all))
		all = all[start:end]
	}
	return all, total, nil
}

func (m *mockTenderRepo) ListUpcoming(_ context.Context, f repository.TenderFilter, after time.Time, limit int) ([]model.Tender, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errMockStorage
	}
	var out []model.Tender
	for _, t := range m.matching(f) {
		if t.SubmissionDeadline != nil && t.SubmissionDeadline.After(after) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmissionDeadline.Before(*out[j].SubmissionDeadline) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockTenderRepo) Save(_ context.Context, t *model.Tender, docs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return errMockStorage
	}
	for _, other := range m.tenders {
		if other.TenderNumber == t.TenderNumber && other.ID != t.ID {
			return gorm.ErrDuplicatedKey
		}
	}

	if t.ID == 0 {
		m.nextID++
		t.ID = m.nextID
		t.CreatedAt = time.Now()
	} else if prev, ok := m.tenders[t.ID]; ok {
		t.CreatedAt, t.CreatedBy = prev.CreatedAt, prev.CreatedBy
		if docs == nil {
			t.RequiredDocuments = slices.Clone(prev.RequiredDocuments)
		}
	} else {
		return gorm.ErrRecordNotFound
	}
	t.UpdatedAt = time.Now()

	if docs != nil {
		t.RequiredDocuments = make([]model.RequiredDocument, 0, len(docs))
		for i, d := range docs {
			t.RequiredDocuments = append(t.RequiredDocuments, model.RequiredDocument{ID: int64(i + 1), TenderID: t.ID, DocumentType: d})
		}
	}
	m.tenders[t.ID] = copyTender(t)
	return nil
}

func (m *mockTenderRepo) Transition(_ context.Context, id int64, from []string, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return errMockStorage
	}
	t, ok := m.tenders[id]
	if !ok || !slices.Contains(from, t.Status) {
		return apperrors.ErrOptimisticLock
	}
	for k, v := range updates {
		switch k {
		case "status":
			t.Status = v.(string)
		case "published_at", "closed_at", "evaluated_at":
			at := v.(time.Time)
			switch k {
			case "published_at":
				t.PublishedAt = &at
			case "closed_at":
				t.ClosedAt = &at
			default:
				t.EvaluatedAt = &at
			}
		case "published_by", "closed_by", "evaluated_by":
			by := v.(string)
			switch k {
			case "published_by":
				t.PublishedBy = &by
			case "closed_by":
				t.ClosedBy = &by
			default:
				t.EvaluatedBy = &by
			}
		}
	}
	return nil
}

func (m *mockTenderRepo) DeleteWithDocuments(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return errMockStorage
	}
	if _, ok := m.tenders[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	if m.fkBlocked[id] {
		return gorm.ErrForeignKeyViolated
	}
	delete(m.tenders, id)
	return nil
}

// ── Mock ProposalRepository ──

type mockProposalRepo struct {
	mu        sync.Mutex
	proposals map[int64]*model.Proposal
	nextID    int64
	tenders   *mockTenderRepo
	companies *mockCompanyRepo
}

func newMockProposalRepo(tenders *mockTenderRepo, companies *mockCompanyRepo) *mockProposalRepo {
	return &mockProposalRepo{proposals: make(map[int64]*model.Proposal), tenders: tenders, companies: companies}
}

func copyProposal(p *model.Proposal) *model.Proposal {
	c := *p
	return &c
}

func (m *mockProposalRepo) seed(p *model.Proposal) *model.Proposal {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = p.CreatedAt
	m.proposals[p.ID] = copyProposal(p)
	return p
}

func (m *mockProposalRepo) stored(id int64) *model.Proposal {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.proposals[id]; ok {
		return copyProposal(p)
	}
	return nil
}

func (m *mockProposalRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.proposals)
}

func (m *mockProposalRepo) Upsert(_ context.Context, p *model.Proposal) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.proposals {
		if existing.TenderID == p.TenderID && existing.VendorID == p.VendorID {
			p.ID = existing.ID
			p.CreatedAt = existing.CreatedAt
			p.EvaluationScore = existing.EvaluationScore
			p.UpdatedAt = time.Now()
			m.proposals[p.ID] = copyProposal(p)
			return false, nil
		}
	}
	m.nextID++
	p.ID = m.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.proposals[p.ID] = copyProposal(p)
	return true, nil
}

func (m *mockProposalRepo) GetByID(ctx context.Context, id int64) (*model.Proposal, error) {
	m.mu.Lock()
	p, ok := m.proposals[id]
	if !ok {
		m.mu.Unlock()
		return nil, gorm.ErrRecordNotFound
	}
	c := copyProposal(p)
	m.mu.Unlock()
	m.attachCompany(ctx, c)
	return c, nil
}

func (m *mockProposalRepo) GetByTenderAndVendor(_ context.Context, tenderID int64, vendorID string) (*model.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.proposals {
		if p.TenderID == tenderID && p.VendorID == vendorID {
			return copyProposal(p), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProposalRepo) ListByTender(ctx context.Context, tenderID int64) ([]model.Proposal, error) {
	m.mu.Lock()
	var out []model.Proposal
	for _, p := range m.proposals {
		if p.TenderID == tenderID {
			out = append(out, *copyProposal(p))
		}
	}
	m.mu.Unlock()

	// score DESC NULLS LAST, then id
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].EvaluationScore, out[j].EvaluationScore
		if a.Valid != b.Valid {
			return a.Valid
		}
		if a.Valid && !a.Decimal.Equal(b.Decimal) {
			return a.Decimal.GreaterThan(b.Decimal)
		}
		return out[i].ID < out[j].ID
	})
	for i := range out {
		m.attachCompany(ctx, &out[i])
	}
	return out, nil
}

func (m *mockProposalRepo) ListByVendor(ctx context.Context, vendorID string) ([]model.Proposal, error) {
	m.mu.Lock()
	var out []model.Proposal
	for _, p := range m.proposals {
		if p.VendorID == vendorID {
			out = append(out, *copyProposal(p))
		}
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	for i := range out {
		if t, err := m.tenders.GetByID(ctx, out[i].TenderID); err == nil {
			out[i].Tender = t
		}
	}
	return out, nil
}

func (m *mockProposalRepo) attachCompany(_ context.Context, p *model.Proposal) {
	if p.CompanyID == nil || m.companies == nil {
		return
	}
	if c := m.companies.byID(*p.CompanyID); c != nil {
		p.Company = c
	}
}

// ── Mock EvaluationRepository ──

type mockEvaluationRepo struct {
	mu        sync.Mutex
	evals     []model.Evaluation
	nextID    int64
	proposals *mockProposalRepo
}

func newMockEvaluationRepo(proposals *mockProposalRepo) *mockEvaluationRepo {
	return &mockEvaluationRepo{proposals: proposals}
}

func (m *mockEvaluationRepo) Record(_ context.Context, ev *model.Evaluation, score repository.ScoreFunc) (decimal.Decimal, error) {
	m.proposals.mu.Lock()
	defer m.proposals.mu.Unlock()
	if _, ok := m.proposals.proposals[ev.ProposalID]; !ok {
		return decimal.Zero, gorm.ErrRecordNotFound
	}

	m.mu.Lock()
	m.nextID++
	ev.ID = m.nextID
	m.evals = append(m.evals, *ev)
	m.mu.Unlock()

	return m.rescoreLocked(ev.ProposalID, score), nil
}

func (m *mockEvaluationRepo) Rescore(_ context.Context, proposalID int64, score repository.ScoreFunc) (decimal.Decimal, error) {
	m.proposals.mu.Lock()
	defer m.proposals.mu.Unlock()
	if _, ok := m.proposals.proposals[proposalID]; !ok {
		return decimal.Zero, gorm.ErrRecordNotFound
	}
	return m.rescoreLocked(proposalID, score), nil
}

// rescoreLocked expects the proposal mutex held
func (m *mockEvaluationRepo) rescoreLocked(proposalID int64, score repository.ScoreFunc) decimal.Decimal {
	evals := m.forProposal(proposalID)
	if len(evals) == 0 {
		return decimal.Zero
	}
	composite := score(evals)
	p := m.proposals.proposals[proposalID]
	p.EvaluationScore = decimal.NewNullDecimal(composite)
	p.Status = model.ProposalStatusUnderReview
	p.UpdatedAt = time.Now()
	return composite
}

func (m *mockEvaluationRepo) forProposal(proposalID int64) []model.Evaluation {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Evaluation
	for _, e := range m.evals {
		if e.ProposalID == proposalID {
			out = append(out, e)
		}
	}
	return out
}

func (m *mockEvaluationRepo) ListByProposal(_ context.Context, proposalID int64) ([]model.Evaluation, error) {
	return m.forProposal(proposalID), nil
}

// ── Mock CompanyRepository ──

type mockCompanyRepo struct {
	mu        sync.Mutex
	companies map[int64]*model.Company
	nextID    int64
}

func newMockCompanyRepo() *mockCompanyRepo {
	return &mockCompanyRepo{companies: make(map[int64]*model.Company)}
}

func (m *mockCompanyRepo) seed(c *model.Company) *model.Company {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	cp := *c
	m.companies[c.ID] = &cp
	return c
}

func (m *mockCompanyRepo) byID(id int64) *model.Company {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.companies[id]; ok {
		cp := *c
		return &cp
	}
	return nil
}

func (m *mockCompanyRepo) GetByUserID(_ context.Context, userID string) (*model.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.companies {
		if c.UserID == userID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock VendorApplicationRepository ──

type mockVendorApplicationRepo struct {
	mu     sync.Mutex
	apps   []model.VendorApplication
	nextID int64
	// skipExists makes Exists report false so the unique index path is hit
	skipExists bool
}

func newMockVendorApplicationRepo() *mockVendorApplicationRepo {
	return &mockVendorApplicationRepo{}
}

func (m *mockVendorApplicationRepo) Create(_ context.Context, a *model.VendorApplication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.apps {
		if existing.TenderID == a.TenderID && existing.VendorID == a.VendorID {
			return gorm.ErrDuplicatedKey
		}
	}
	m.nextID++
	a.ID = m.nextID
	a.SubmittedAt = time.Now()
	a.UpdatedAt = a.SubmittedAt
	m.apps = append(m.apps, *a)
	return nil
}

func (m *mockVendorApplicationRepo) Exists(_ context.Context, tenderID int64, vendorID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.skipExists {
		return false, nil
	}
	for _, a := range m.apps {
		if a.TenderID == tenderID && a.VendorID == vendorID {
			return true, nil
		}
	}
	return false, nil
}

// ── Mock DashboardRepository ──

type mockDashboardRepo struct {
	tenders   *mockTenderRepo
	proposals *mockProposalRepo
}

func newMockDashboardRepo(tenders *mockTenderRepo, proposals *mockProposalRepo) *mockDashboardRepo {
	return &mockDashboardRepo{tenders: tenders, proposals: proposals}
}

func (m *mockDashboardRepo) CountTenders(_ context.Context, f repository.TenderFilter) (int64, error) {
	m.tenders.mu.Lock()
	defer m.tenders.mu.Unlock()
	if m.tenders.failAll {
		return 0, errMockStorage
	}
	return int64(len(m.tenders.matching(f))), nil
}

func (m *mockDashboardRepo) CountTendersByStatus(_ context.Context, f repository.TenderFilter) (map[string]int64, error) {
	m.tenders.mu.Lock()
	defer m.tenders.mu.Unlock()
	if m.tenders.failAll {
		return nil, errMockStorage
	}
	out := make(map[string]int64)
	for _, t := range m.tenders.matching(f) {
		out[t.Status]++
	}
	return out, nil
}

func (m *mockDashboardRepo) CountProposals(_ context.Context, vendorID string, statuses []string) (int64, error) {
	m.proposals.mu.Lock()
	defer m.proposals.mu.Unlock()
	var n int64
	for _, p := range m.proposals.proposals {
		if vendorID != "" && p.VendorID != vendorID {
			continue
		}
		if len(statuses) > 0 && !slices.Contains(statuses, p.Status) {
			continue
		}
		n++
	}
	return n, nil
}

// ── Test fixture ──

type testRepos struct {
	tenders      *mockTenderRepo
	proposals    *mockProposalRepo
	evaluations  *mockEvaluationRepo
	companies    *mockCompanyRepo
	applications *mockVendorApplicationRepo
	repo         *repository.Repository
}

func newTestRepos() *testRepos {
	tenders := newMockTenderRepo()
	companies := newMockCompanyRepo()
	proposals := newMockProposalRepo(tenders, companies)
	evaluations := newMockEvaluationRepo(proposals)
	applications := newMockVendorApplicationRepo()

	return &testRepos{
		tenders:      tenders,
		proposals:    proposals,
		evaluations:  evaluations,
		companies:    companies,
		applications: applications,
		repo: &repository.Repository{
			Tender:            tenders,
			Proposal:          proposals,
			Evaluation:        evaluations,
			Company:           companies,
			VendorApplication: applications,
			Dashboard:         newMockDashboardRepo(tenders, proposals),
		},
	}
}
