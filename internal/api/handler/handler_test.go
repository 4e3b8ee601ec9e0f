package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/wmmalith63/credence-tender-management/internal/api/middleware"
	"github.com/wmmalith63/credence-tender-management/internal/api/validation"
	"github.com/wmmalith63/credence-tender-management/internal/dto"
	"github.com/wmmalith63/credence-tender-management/internal/policy"
	"github.com/wmmalith63/credence-tender-management/internal/service"
	apperrors "github.com/wmmalith63/credence-tender-management/pkg/errors"
	"github.com/wmmalith63/credence-tender-management/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validation.Register(); err != nil {
		panic(err)
	}
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock TenderService ──

type mockTenderService struct {
	saveResult *dto.SaveTenderResponse
	saveErr    error
	getResult  *dto.TenderResponse
	getErr     error
	listResult []dto.TenderResponse
	listTotal  int64
	listErr    error
	transErr   error
	deleteErr  error

	lastRef       string
	lastPrincipal policy.Principal
}

func (m *mockTenderService) Save(_ context.Context, _ *dto.SaveTenderRequest, p policy.Principal) (*dto.SaveTenderResponse, error) {
	m.lastPrincipal = p
	return m.saveResult, m.saveErr
}
func (m *mockTenderService) Update(_ context.Context, ref string, _ *dto.SaveTenderRequest, p policy.Principal) (*dto.SaveTenderResponse, error) {
	m.lastRef, m.lastPrincipal = ref, p
	return m.saveResult, m.saveErr
}
func (m *mockTenderService) Get(_ context.Context, ref string, _ policy.Principal) (*dto.TenderResponse, error) {
	m.lastRef = ref
	return m.getResult, m.getErr
}
func (m *mockTenderService) List(_ context.Context, req *dto.TenderListRequest, _ policy.Principal) ([]dto.TenderResponse, int64, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockTenderService) Publish(_ context.Context, ref string, _ policy.Principal) (*dto.TenderResponse, error) {
	m.lastRef = ref
	return m.getResult, m.transErr
}
func (m *mockTenderService) Close(_ context.Context, ref string, _ policy.Principal) (*dto.TenderResponse, error) {
	m.lastRef = ref
	return m.getResult, m.transErr
}
func (m *mockTenderService) MarkEvaluated(_ context.Context, ref string, _ policy.Principal) (*dto.TenderResponse, error) {
	m.lastRef = ref
	return m.getResult, m.transErr
}
func (m *mockTenderService) Delete(_ context.Context, ref string, _ policy.Principal) error {
	m.lastRef = ref
	return m.deleteErr
}

// ── Mock ProposalService ──

type mockProposalService struct {
	submitResult *dto.SubmitProposalResponse
	submitErr    error
	getResult    *dto.ProposalResponse
	getErr       error
	listResult   []dto.ProposalResponse
	listErr      error
	applyResult  *dto.VendorApplicationResponse
	applyErr     error

	lastID int64
}

func (m *mockProposalService) Submit(_ context.Context, _ string, _ policy.Principal, _ *dto.SubmitProposalRequest) (*dto.SubmitProposalResponse, error) {
	return m.submitResult, m.submitErr
}
func (m *mockProposalService) Get(_ context.Context, id int64, _ policy.Principal) (*dto.ProposalResponse, error) {
	m.lastID = id
	return m.getResult, m.getErr
}
func (m *mockProposalService) ListByTender(_ context.Context, _ string, _ policy.Principal) ([]dto.ProposalResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockProposalService) ListMine(_ context.Context, _ policy.Principal) ([]dto.ProposalResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockProposalService) Apply(_ context.Context, _ string, _ policy.Principal, _ *dto.VendorApplicationRequest) (*dto.VendorApplicationResponse, error) {
	return m.applyResult, m.applyErr
}

// ── Mock EvaluationService ──

type mockEvaluationService struct {
	recordResult    *dto.RecordEvaluationResponse
	recordErr       error
	recomputeResult *dto.RecomputeResponse
	recomputeErr    error
	listResult      []dto.EvaluationResponse
	listErr         error
}

func (m *mockEvaluationService) Record(_ context.Context, _ int64, _ policy.Principal, _ *dto.RecordEvaluationRequest) (*dto.RecordEvaluationResponse, error) {
	return m.recordResult, m.recordErr
}
func (m *mockEvaluationService) Recompute(_ context.Context, _ int64, _ policy.Principal) (*dto.RecomputeResponse, error) {
	return m.recomputeResult, m.recomputeErr
}
func (m *mockEvaluationService) ListByProposal(_ context.Context, _ int64, _ policy.Principal) ([]dto.EvaluationResponse, error) {
	return m.listResult, m.listErr
}

// ── Mock DashboardService / CalendarService ──

type mockDashboardService struct {
	stats     *dto.DashboardStatsResponse
	statsErr  error
	deadlines []dto.TenderDeadline
}

func (m *mockDashboardService) Stats(_ context.Context, _ policy.Principal) (*dto.DashboardStatsResponse, error) {
	return m.stats, m.statsErr
}
func (m *mockDashboardService) RecentActivities(_ context.Context, _ policy.Principal) ([]dto.TenderActivity, error) {
	return nil, nil
}
func (m *mockDashboardService) UpcomingDeadlines(_ context.Context, _ policy.Principal, _ time.Time) ([]dto.TenderDeadline, error) {
	return m.deadlines, nil
}

type mockCalendarService struct {
	body string
	err  error
}

func (m *mockCalendarService) DeadlinesCalendar(_ context.Context, _ policy.Principal, _ time.Time) (string, error) {
	return m.body, m.err
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportResults(_ context.Context, _ string, _ policy.Principal) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

// authAs stands in for JWTAuth
func authAs(userID string, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxUserID, userID)
		c.Set(middleware.CtxRoles, roles)
		c.Next()
	}
}

func serve(r *gin.Engine, method, path string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func detailFields(resp response.Response) []string {
	details, _ := resp.Details.(map[string]interface{})
	raw, _ := details["fields"].([]interface{})
	fields := make([]string, 0, len(raw))
	for _, f := range raw {
		s, _ := f.(string)
		fields = append(fields, s)
	}
	return fields
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

// ═══════════════════════════════════════════════════════════
// TenderHandler Tests
// ═══════════════════════════════════════════════════════════

func tenderRouter(mock *mockTenderService, roles ...string) *gin.Engine {
	h := NewTenderHandler(mock)
	r := gin.New()
	r.Use(authAs("user-1", roles...))
	r.POST("/tenders", h.SaveTender)
	r.GET("/tenders", h.ListTenders)
	r.GET("/tenders/:ref", h.GetTender)
	r.PUT("/tenders/:ref", h.UpdateTender)
	r.DELETE("/tenders/:ref", h.DeleteTender)
	r.POST("/tenders/:ref/publish", h.PublishTender)
	r.POST("/tenders/:ref/close", h.CloseTender)
	return r
}

func TestTenderHandler_SaveTender_Created(t *testing.T) {
	mock := &mockTenderService{saveResult: &dto.SaveTenderResponse{ID: 7, Status: "draft", Created: true}}
	r := tenderRouter(mock, policy.RoleUKK)

	w := serve(r, "POST", "/tenders", jsonBody(map[string]interface{}{
		"tender_number": "T-1",
		"title":         "Drama series",
		"type":          "drama",
	}))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if !parseResponse(w).Success {
		t.Error("expected success envelope")
	}
	if mock.lastPrincipal.ID != "user-1" || !mock.lastPrincipal.IsUKK() {
		t.Errorf("principal not forwarded: %+v", mock.lastPrincipal)
	}
}

func TestTenderHandler_SaveTender_UpdatedReturns200(t *testing.T) {
	mock := &mockTenderService{saveResult: &dto.SaveTenderResponse{ID: 7, Status: "draft"}}
	r := tenderRouter(mock, policy.RoleAdministrator)

	w := serve(r, "POST", "/tenders", jsonBody(map[string]interface{}{"tender_number": "T-1"}))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestTenderHandler_SaveTender_BadJSON(t *testing.T) {
	r := tenderRouter(&mockTenderService{}, policy.RoleAdministrator)

	w := serve(r, "POST", "/tenders", strings.NewReader("{not json"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != response.CodeValidation {
		t.Errorf("expected code %d, got %d", response.CodeValidation, resp.Code)
	}
}

func TestTenderHandler_SaveTender_BindingFields(t *testing.T) {
	r := tenderRouter(&mockTenderService{}, policy.RoleAdministrator)

	w := serve(r, "POST", "/tenders", jsonBody(map[string]interface{}{
		"tender_number":      "T-1",
		"status":             "archived",
		"budget_per_episode": "-5",
	}))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	fields := detailFields(parseResponse(w))
	if !contains(fields, "status") || !contains(fields, "budget_per_episode") {
		t.Errorf("expected status and budget_per_episode in %v", fields)
	}
}

func TestTenderHandler_SaveTender_ServiceValidation(t *testing.T) {
	mock := &mockTenderService{saveErr: apperrors.Validation("missing required fields", "title", "type")}
	r := tenderRouter(mock, policy.RoleAdministrator)

	w := serve(r, "POST", "/tenders", jsonBody(map[string]interface{}{"tender_number": "T-1"}))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	fields := detailFields(parseResponse(w))
	if len(fields) != 2 || fields[0] != "title" || fields[1] != "type" {
		t.Errorf("expected [title type], got %v", fields)
	}
}

func TestTenderHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"forbidden", service.ErrTenderForbidden, http.StatusForbidden, 20003},
		{"number taken", service.ErrTenderNumberTaken, http.StatusConflict, 20009},
		{"storage", apperrors.Storage("tenders.save", errors.New("connection refused")), http.StatusInternalServerError, response.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tenderRouter(&mockTenderService{saveErr: tt.err}, policy.RoleUKK)
			w := serve(r, "PUT", "/tenders/T-1", jsonBody(map[string]interface{}{"title": "x"}))
			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
			if strings.Contains(resp.Message, "connection refused") {
				t.Errorf("storage cause leaked: %s", resp.Message)
			}
		})
	}
}

func TestTenderHandler_GetTender_NotFound(t *testing.T) {
	mock := &mockTenderService{getErr: service.ErrTenderNotFound}
	r := tenderRouter(mock, policy.RoleVendor)

	w := serve(r, "GET", "/tenders/T-404", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 20001 {
		t.Errorf("expected code 20001, got %d", resp.Code)
	}
	if mock.lastRef != "T-404" {
		t.Errorf("expected ref T-404, got %s", mock.lastRef)
	}
}

func TestTenderHandler_ListTenders_Pagination(t *testing.T) {
	mock := &mockTenderService{
		listResult: []dto.TenderResponse{{ID: 1, TenderNumber: "T-1"}},
		listTotal:  12,
	}
	r := tenderRouter(mock, policy.RoleVendor)

	w := serve(r, "GET", "/tenders?page=2&page_size=5", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Data response.PageData `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	pg := body.Data.Pagination
	if pg.Page != 2 || pg.PageSize != 5 || pg.Total != 12 || pg.TotalPages != 3 {
		t.Errorf("unexpected pagination %+v", pg)
	}
}

func TestTenderHandler_ListTenders_DefaultPage(t *testing.T) {
	r := tenderRouter(&mockTenderService{}, policy.RoleVendor)

	w := serve(r, "GET", "/tenders", nil)
	var body struct {
		Data response.PageData `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Data.Pagination.Page != 1 || body.Data.Pagination.PageSize != 20 {
		t.Errorf("expected effective page 1 size 20, got %+v", body.Data.Pagination)
	}
}

func TestTenderHandler_ListTenders_BadStatus(t *testing.T) {
	r := tenderRouter(&mockTenderService{}, policy.RoleVendor)

	w := serve(r, "GET", "/tenders?status=archived", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestTenderHandler_PublishTender_InvalidTransition(t *testing.T) {
	mock := &mockTenderService{transErr: service.ErrTenderInvalidTransition}
	r := tenderRouter(mock, policy.RoleAdministrator)

	w := serve(r, "POST", "/tenders/T-9/publish", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 20010 {
		t.Errorf("expected code 20010, got %d", resp.Code)
	}
	if mock.lastRef != "T-9" {
		t.Errorf("expected ref T-9, got %s", mock.lastRef)
	}
}

func TestTenderHandler_DeleteTender_HasProposals(t *testing.T) {
	r := tenderRouter(&mockTenderService{deleteErr: service.ErrTenderHasProposals}, policy.RoleAdministrator)

	w := serve(r, "DELETE", "/tenders/5", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 20011 {
		t.Errorf("expected code 20011, got %d", resp.Code)
	}
}

func TestTenderHandler_Unauthenticated(t *testing.T) {
	h := NewTenderHandler(&mockTenderService{})
	r := gin.New()
	r.GET("/tenders/:ref", h.GetTender)

	w := serve(r, "GET", "/tenders/T-1", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ProposalHandler Tests
// ═══════════════════════════════════════════════════════════

func proposalRouter(mock *mockProposalService) *gin.Engine {
	h := NewProposalHandler(mock)
	r := gin.New()
	r.Use(authAs("vendor-1", policy.RoleVendor))
	r.POST("/tenders/:ref/proposals", h.SubmitProposal)
	r.GET("/tenders/:ref/proposals", h.ListTenderProposals)
	r.POST("/tenders/:ref/applications", h.ApplyForTender)
	r.GET("/proposals/mine", h.ListMyProposals)
	r.GET("/proposals/:id", h.GetProposal)
	return r
}

func TestProposalHandler_SubmitProposal(t *testing.T) {
	tests := []struct {
		name       string
		result     *dto.SubmitProposalResponse
		err        error
		wantStatus int
		wantCode   int
	}{
		{"created", &dto.SubmitProposalResponse{ID: 1, Status: "submitted", Created: true}, nil, http.StatusCreated, 0},
		{"resubmitted", &dto.SubmitProposalResponse{ID: 1, Status: "submitted"}, nil, http.StatusOK, 0},
		{"tender not open", nil, service.ErrTenderNotOpen, http.StatusConflict, 30010},
		{"forbidden", nil, service.ErrProposalForbidden, http.StatusForbidden, 30003},
		{"tender missing", nil, service.ErrTenderNotFound, http.StatusNotFound, 20001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := proposalRouter(&mockProposalService{submitResult: tt.result, submitErr: tt.err})
			w := serve(r, "POST", "/tenders/T-1/proposals", jsonBody(map[string]interface{}{
				"proposal_title":  "Pitch",
				"proposed_budget": "1000.00",
				"status":          "submitted",
			}))
			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestProposalHandler_SubmitProposal_NegativeBudget(t *testing.T) {
	r := proposalRouter(&mockProposalService{})

	w := serve(r, "POST", "/tenders/T-1/proposals", jsonBody(map[string]interface{}{
		"proposed_budget": "-1",
	}))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if fields := detailFields(parseResponse(w)); !contains(fields, "proposed_budget") {
		t.Errorf("expected proposed_budget in %v", fields)
	}
}

func TestProposalHandler_ApplyForTender_Duplicate(t *testing.T) {
	r := proposalRouter(&mockProposalService{applyErr: service.ErrApplicationExists})

	w := serve(r, "POST", "/tenders/T-1/applications", jsonBody(map[string]interface{}{
		"company_name":  "Studio",
		"contact_email": "ops@studio.example",
	}))
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 30011 {
		t.Errorf("expected code 30011, got %d", resp.Code)
	}
}

func TestProposalHandler_ApplyForTender_BadEmail(t *testing.T) {
	r := proposalRouter(&mockProposalService{})

	w := serve(r, "POST", "/tenders/T-1/applications", jsonBody(map[string]interface{}{
		"contact_email": "not-an-email",
	}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestProposalHandler_GetProposal(t *testing.T) {
	mock := &mockProposalService{getResult: &dto.ProposalResponse{ID: 42, ProposalTitle: "Pitch"}}
	r := proposalRouter(mock)

	w := serve(r, "GET", "/proposals/42", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.lastID != 42 {
		t.Errorf("expected id 42, got %d", mock.lastID)
	}

	w = serve(r, "GET", "/proposals/abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad id, got %d", w.Code)
	}
	if fields := detailFields(parseResponse(w)); !contains(fields, "id") {
		t.Errorf("expected id in %v", fields)
	}
}

func TestProposalHandler_ListMyProposals(t *testing.T) {
	mock := &mockProposalService{listResult: []dto.ProposalResponse{{ID: 1}, {ID: 2}}}
	r := proposalRouter(mock)

	w := serve(r, "GET", "/proposals/mine", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Data struct {
			List []dto.ProposalResponse `json:"list"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if len(body.Data.List) != 2 {
		t.Errorf("expected 2 proposals, got %d", len(body.Data.List))
	}
	if mock.lastID != 0 {
		t.Errorf("/proposals/mine must not route to GetProposal")
	}
}

// ═══════════════════════════════════════════════════════════
// EvaluationHandler Tests
// ═══════════════════════════════════════════════════════════

func evaluationRouter(mock *mockEvaluationService) *gin.Engine {
	h := NewEvaluationHandler(mock)
	r := gin.New()
	r.Use(authAs("eval-1", policy.RoleEvaluator))
	r.POST("/proposals/:id/evaluations", h.RecordEvaluation)
	r.GET("/proposals/:id/evaluations", h.ListEvaluations)
	r.POST("/proposals/:id/recompute", h.RecomputeScore)
	return r
}

func TestEvaluationHandler_RecordEvaluation(t *testing.T) {
	mock := &mockEvaluationService{recordResult: &dto.RecordEvaluationResponse{
		EvaluationID:   3,
		CompositeScore: decimal.NewFromInt(84),
	}}
	r := evaluationRouter(mock)

	w := serve(r, "POST", "/proposals/9/evaluations", jsonBody(map[string]interface{}{
		"criteria_name":   "Budget",
		"criteria_weight": "40",
		"score":           "90",
	}))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Data dto.RecordEvaluationResponse `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if !body.Data.CompositeScore.Equal(decimal.NewFromInt(84)) {
		t.Errorf("expected composite 84, got %s", body.Data.CompositeScore)
	}
}

func TestEvaluationHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"validation", apperrors.Validation("invalid evaluation", "score"), http.StatusBadRequest, response.CodeValidation},
		{"forbidden", service.ErrEvaluationForbidden, http.StatusForbidden, 40003},
		{"not found", service.ErrProposalNotFound, http.StatusNotFound, 30001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := evaluationRouter(&mockEvaluationService{recordErr: tt.err})
			w := serve(r, "POST", "/proposals/9/evaluations", jsonBody(map[string]interface{}{
				"criteria_name": "Budget",
			}))
			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestEvaluationHandler_RecomputeScore(t *testing.T) {
	mock := &mockEvaluationService{recomputeResult: &dto.RecomputeResponse{ProposalID: 9, CompositeScore: decimal.NewFromInt(85)}}
	r := evaluationRouter(mock)

	w := serve(r, "POST", "/proposals/9/recompute", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	w = serve(r, "POST", "/proposals/0/recompute", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for id 0, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// DashboardHandler Tests
// ═══════════════════════════════════════════════════════════

func dashboardRouter(dash *mockDashboardService, cal *mockCalendarService) *gin.Engine {
	h := NewDashboardHandler(dash, cal)
	r := gin.New()
	r.Use(authAs("vendor-1", policy.RoleVendor))
	r.GET("/dashboard/stats", h.GetStats)
	r.GET("/dashboard/deadlines", h.GetUpcomingDeadlines)
	r.GET("/dashboard/deadlines.ics", h.GetDeadlinesCalendar)
	return r
}

func TestDashboardHandler_GetStats(t *testing.T) {
	mine := int64(3)
	r := dashboardRouter(&mockDashboardService{stats: &dto.DashboardStatsResponse{ActiveTenders: 4, MyProposals: &mine}}, &mockCalendarService{})

	w := serve(r, "GET", "/dashboard/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "total_proposals") {
		t.Errorf("vendor stats must omit total_proposals: %s", w.Body.String())
	}
}

func TestDashboardHandler_GetStats_StorageFailure(t *testing.T) {
	r := dashboardRouter(&mockDashboardService{statsErr: apperrors.Storage("dashboard.stats", errors.New("timeout"))}, &mockCalendarService{})

	w := serve(r, "GET", "/dashboard/stats", nil)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestDashboardHandler_GetDeadlinesCalendar(t *testing.T) {
	ics := "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"
	r := dashboardRouter(&mockDashboardService{}, &mockCalendarService{body: ics})

	w := serve(r, "GET", "/dashboard/deadlines.ics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/calendar; charset=utf-8" {
		t.Errorf("unexpected content type %q", ct)
	}
	if w.Body.String() != ics {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportResults_Success(t *testing.T) {
	mock := &mockExportService{buf: bytes.NewBufferString("xlsx-bytes"), filename: "results_T-1.xlsx"}
	h := NewExportHandler(mock)
	r := gin.New()
	r.Use(authAs("admin-1", policy.RoleAdministrator))
	r.GET("/tenders/:ref/results/export", h.ExportResults)

	w := serve(r, "GET", "/tenders/T-1/results/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "results_T-1.xlsx") {
		t.Errorf("unexpected content disposition %q", cd)
	}
	if w.Body.String() != "xlsx-bytes" {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

func TestExportHandler_ExportResults_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"forbidden", service.ErrExportForbidden, http.StatusForbidden},
		{"no proposals", service.ErrExportNoProposals, http.StatusNotFound},
		{"generate failed", service.ErrExportGenerateFail, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewExportHandler(&mockExportService{err: tt.err})
			r := gin.New()
			r.Use(authAs("admin-1", policy.RoleTenderAdmin))
			r.GET("/tenders/:ref/results/export", h.ExportResults)

			w := serve(r, "GET", "/tenders/T-1/results/export", nil)
			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// HealthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestHealthHandler(t *testing.T) {
	up := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("dial tcp: refused") })

	tests := []struct {
		name       string
		checks     map[string]Pinger
		wantStatus int
		wantBody   string
	}{
		{"all up", map[string]Pinger{"database": up, "redis": up}, http.StatusOK, `"status":"ok"`},
		{"redis down", map[string]Pinger{"database": up, "redis": down}, http.StatusServiceUnavailable, `"redis":"down"`},
		{"nil check skipped", map[string]Pinger{"database": up, "redis": nil}, http.StatusOK, `"database":"up"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.checks)
			r := gin.New()
			r.GET("/health", h.Health)

			w := serve(r, "GET", "/health", nil)
			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("expected %s in %s", tt.wantBody, w.Body.String())
			}
		})
	}
}
