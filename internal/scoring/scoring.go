// Package scoring computes a proposal's composite score from its
// per-criterion evaluations.
//
// For every row the raw score is normalised to a 0-100 scale and
// multiplied by the criterion weight (percentage points):
//
//	normalized = score / max_score * 100
//	weighted   = normalized * weight / 100
//
// The composite is the plain sum of weighted values. It is not divided
// by the total weight, so weights that do not add up to 100 (repeated
// criteria, missing criteria) push the result above or below the 0-100
// range. A set whose total weight is zero scores 0.
package scoring

import (
	"github.com/shopspring/decimal"

	apperrors "github.com/wmmalith63/credence-tender-management/pkg/errors"
)

// Places the composite is rounded to, matching NUMERIC(9,2).
const Places = 2

var (
	hundred = decimal.NewFromInt(100)

	// DefaultMaxScore applies when a caller omits max_score
	DefaultMaxScore = hundred
)

// Row is one recorded evaluation as the engine sees it.
type Row struct {
	Score    decimal.Decimal
	Weight   decimal.Decimal
	MaxScore decimal.Decimal
}

// Composite returns the weighted sum for rows. It is a pure function of
// its input; rows must have passed Validate.
func Composite(rows []Row) decimal.Decimal {
	totalWeighted := decimal.Zero
	totalWeight := decimal.Zero

	for _, r := range rows {
		if !r.MaxScore.IsPositive() {
			continue
		}
		normalized := r.Score.Div(r.MaxScore).Mul(hundred)
		weighted := normalized.Mul(r.Weight).Div(hundred)
		totalWeighted = totalWeighted.Add(weighted)
		totalWeight = totalWeight.Add(r.Weight)
	}

	if !totalWeight.IsPositive() {
		return decimal.Zero
	}
	return totalWeighted.Round(Places)
}

// Validate checks one row before it is stored.
func Validate(r Row) error {
	var fields []string
	if !r.MaxScore.IsPositive() {
		fields = append(fields, "max_score")
	}
	if r.Weight.IsNegative() || r.Weight.GreaterThan(hundred) {
		fields = append(fields, "criteria_weight")
	}
	if r.Score.IsNegative() || (r.MaxScore.IsPositive() && r.Score.GreaterThan(r.MaxScore)) {
		fields = append(fields, "score")
	}
	if len(fields) > 0 {
		return apperrors.Validation("invalid evaluation values", fields...)
	}
	return nil
}
