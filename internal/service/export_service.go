package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/wmmalith63/credence-tender-management/internal/model"
	"github.com/wmmalith63/credence-tender-management/internal/policy"
	"github.com/wmmalith63/credence-tender-management/internal/repository"
	apperrors "github.com/wmmalith63/credence-tender-management/pkg/errors"
)

// ── Export errors ──

var (
	ErrExportForbidden    = apperrors.New(apperrors.ErrPermissionDenied, "not allowed to export tender results")
	ErrExportNoProposals  = apperrors.New(apperrors.ErrNotFound, "tender has no proposals to export")
	ErrExportGenerateFail = apperrors.New(apperrors.ErrStorage, "failed to generate spreadsheet")
)

const (
	resultsSheet     = "Results"
	evaluationsSheet = "Evaluations"
)

// ExportService writes tender results as a spreadsheet.
//
// The workbook has a "Results" sheet ranking proposals by composite score
// (unscored proposals last) and an "Evaluations" sheet with one row per
// recorded criterion. The buffer is returned to the handler, which sets
// the download headers.
type ExportService interface {
	ExportResults(ctx context.Context, tenderRef string, p policy.Principal) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService creates an ExportService
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

func (s *exportService) ExportResults(ctx context.Context, tenderRef string, p policy.Principal) (*bytes.Buffer, string, error) {
	if !policy.Allow(p, policy.ExportResults, policy.Resource{}) {
		return nil, "", ErrExportForbidden
	}

	tender, err := resolveTender(ctx, s.repo, s.logger, tenderRef)
	if err != nil {
		return nil, "", err
	}

	// already ordered by score, highest first
	proposals, err := s.repo.Proposal.ListByTender(ctx, tender.ID)
	if err != nil {
		return nil, "", storageFailure(s.logger, "list proposals", err, zap.Int64("tender_id", tender.ID))
	}
	if len(proposals) == 0 {
		return nil, "", ErrExportNoProposals
	}

	evals := make(map[int64][]model.Evaluation, len(proposals))
	for _, pr := range proposals {
		list, err := s.repo.Evaluation.ListByProposal(ctx, pr.ID)
		if err != nil {
			return nil, "", storageFailure(s.logger, "list evaluations", err, zap.Int64("proposal_id", pr.ID))
		}
		evals[pr.ID] = list
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeResultsSheet(f, tender, proposals, evals); err != nil {
		s.logger.Error("write results sheet failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	if err := writeEvaluationsSheet(f, proposals, evals); err != nil {
		s.logger.Error("write evaluations sheet failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.DeleteSheet("Sheet1")

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write workbook failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	s.logger.Info("tender results exported",
		zap.Int64("tender_id", tender.ID),
		zap.Int("proposals", len(proposals)),
		zap.String("by", p.ID),
	)
	return buf, fmt.Sprintf("results_%s.xlsx", tender.TenderNumber), nil
}

func writeResultsSheet(f *excelize.File, tender *model.Tender, proposals []model.Proposal, evals map[int64][]model.Evaluation) error {
	idx, err := f.NewSheet(resultsSheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	headers := []string{"Rank", "Proposal", "Vendor", "Company", "Proposed Budget", "Status", "Criteria", "Composite Score"}

	f.SetCellValue(resultsSheet, "A1", fmt.Sprintf("%s - %s", tender.TenderNumber, tender.Title))
	f.MergeCell(resultsSheet, "A1", cell(colName(len(headers)-1), 1))
	f.SetCellStyle(resultsSheet, "A1", "A1", headerStyle)

	for i, h := range headers {
		f.SetCellValue(resultsSheet, cell(colName(i), 2), h)
	}
	f.SetCellStyle(resultsSheet, "A2", cell(colName(len(headers)-1), 2), headerStyle)

	f.SetColWidth(resultsSheet, "A", "A", 8)
	f.SetColWidth(resultsSheet, "B", "D", 28)
	f.SetColWidth(resultsSheet, "E", "H", 16)

	row := 3
	for i, pr := range proposals {
		company := ""
		if pr.Company != nil {
			company = pr.Company.CompanyName
		}
		score := "-"
		if pr.EvaluationScore.Valid {
			score = pr.EvaluationScore.Decimal.StringFixed(2)
		}

		f.SetCellValue(resultsSheet, cell("A", row), i+1)
		f.SetCellValue(resultsSheet, cell("B", row), pr.ProposalTitle)
		f.SetCellValue(resultsSheet, cell("C", row), pr.VendorID)
		f.SetCellValue(resultsSheet, cell("D", row), company)
		f.SetCellValue(resultsSheet, cell("E", row), pr.ProposedBudget.StringFixed(2))
		f.SetCellValue(resultsSheet, cell("F", row), pr.Status)
		f.SetCellValue(resultsSheet, cell("G", row), len(evals[pr.ID]))
		f.SetCellValue(resultsSheet, cell("H", row), score)
		row++
	}
	return nil
}

func writeEvaluationsSheet(f *excelize.File, proposals []model.Proposal, evals map[int64][]model.Evaluation) error {
	if _, err := f.NewSheet(evaluationsSheet); err != nil {
		return err
	}

	headers := []string{"Proposal ID", "Proposal", "Evaluator", "Criteria", "Weight", "Score", "Max Score", "Comments", "Date"}
	for i, h := range headers {
		f.SetCellValue(evaluationsSheet, cell(colName(i), 1), h)
	}
	f.SetColWidth(evaluationsSheet, "B", "D", 24)
	f.SetColWidth(evaluationsSheet, "H", "H", 40)

	row := 2
	for _, pr := range proposals {
		for _, e := range evals[pr.ID] {
			f.SetCellValue(evaluationsSheet, cell("A", row), pr.ID)
			f.SetCellValue(evaluationsSheet, cell("B", row), pr.ProposalTitle)
			f.SetCellValue(evaluationsSheet, cell("C", row), e.EvaluatorID)
			f.SetCellValue(evaluationsSheet, cell("D", row), e.CriteriaName)
			f.SetCellValue(evaluationsSheet, cell("E", row), e.CriteriaWeight.StringFixed(2))
			f.SetCellValue(evaluationsSheet, cell("F", row), e.Score.StringFixed(2))
			f.SetCellValue(evaluationsSheet, cell("G", row), e.MaxScore.StringFixed(2))
			f.SetCellValue(evaluationsSheet, cell("H", row), e.Comments)
			f.SetCellValue(evaluationsSheet, cell("I", row), e.EvaluationDate.Format("2006-01-02 15:04"))
			row++
		}
	}
	return nil
}

// ── helpers ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
