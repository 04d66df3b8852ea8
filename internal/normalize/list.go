// internal/normalize/list.go
package normalize

import (
	"fmt"
	"strconv"

	"loan-review-console/internal/models"
)

// NormalizeList flattens a raw listing payload into display rows. The
// payload may be an envelope with an "items" or "data" array, or a bare
// array; anything else reads as an empty queue. Non-map entries are skipped.
func (n *Normalizer) NormalizeList(payload interface{}) []models.ListRow {
	entries := listEntries(payload)

	rows := make([]models.ListRow, 0, len(entries))
	for i, entry := range entries {
		item, ok := asMap(entry)
		if !ok {
			n.logger.Debug("Skipping non-object listing entry", map[string]interface{}{"index": i})
			continue
		}
		rows = append(rows, n.normalizeListRow(item, i))
	}
	return rows
}

func listEntries(payload interface{}) []interface{} {
	if envelope, ok := asMap(payload); ok {
		if entries, ok := arrayField(envelope, "items", "data", "applications"); ok {
			return entries
		}
		return nil
	}
	if entries, ok := asArray(payload); ok {
		return entries
	}
	return nil
}

func (n *Normalizer) normalizeListRow(item map[string]interface{}, index int) models.ListRow {
	row := models.ListRow{
		ApplicationID: identifier(item, "id", "application_id", "app_id"),
	}
	row.Key = row.ApplicationID
	if row.Key == "" {
		row.Key = fmt.Sprintf("row-%d", index)
	}

	row.BeneficiaryName = listBeneficiaryName(item)
	row.BeneficiaryID = identifier(item, "beneficiary_id", "applicant_id", "user_id")
	row.LoanType, _ = stringField(item, "loan_type", "type")
	if row.LoanType == "" {
		if loan, ok := mapField(item, "loan"); ok {
			row.LoanType, _ = stringField(loan, "type", "loan_type")
		}
	}

	if amount, ok := numberField(item, loanAmountFields...); ok && amount >= 0 {
		row.Amount = &amount
	}

	row.RiskScore, row.RiskLevel = listRisk(item)

	status, _ := stringField(item, "status", "lifecycle_status")
	row.Status = models.ParseStatus(status)
	row.StatusLabel = row.Status.Label()

	if raw, ok := stringField(item, "submitted_at", "created_at", "updated_at"); ok {
		if t := parseTimestamp(raw); !t.IsZero() {
			row.Submitted = t.Format("2006-01-02")
		}
	}
	if row.Submitted == "" {
		row.Submitted = models.DisplayDash
	}

	return row
}

// identifier reads the first usable id field, accepting numeric ids from
// older backend versions.
func identifier(m map[string]interface{}, keys ...string) string {
	if s, ok := stringField(m, keys...); ok {
		return s
	}
	for _, key := range keys {
		if v, exists := m[key]; exists {
			if f, ok := asNumber(v); ok {
				return strconv.FormatFloat(f, 'f', -1, 64)
			}
		}
	}
	return ""
}

func listBeneficiaryName(item map[string]interface{}) string {
	if name, ok := stringField(item, "beneficiary_name", "applicant_name", "name"); ok {
		return name
	}
	if nested, ok := mapField(item, "beneficiary", "applicant", "user"); ok {
		if name, ok := stringField(nested, "name", "full_name"); ok {
			return name
		}
	}
	return models.DisplayDash
}

// listRisk resolves the queue risk column. An explicit tier wins; otherwise
// the score buckets at under 40 for low and up to 70 for medium. No usable
// signal at all reads as medium.
func listRisk(item map[string]interface{}) (*int, models.RiskTier) {
	var score *int
	if f, ok := numberField(item, "risk_score", "score"); ok {
		s := clampScore(f)
		score = &s
	} else if nested, ok := mapField(item, "risk", "risk_analysis"); ok {
		if f, ok := numberField(nested, "score", "risk_score"); ok {
			s := clampScore(f)
			score = &s
		}
	}

	if tier, ok := stringField(item, "risk_tier", "risk_level"); ok {
		return score, models.ParseRiskTier(tier)
	}
	if nested, ok := mapField(item, "risk", "risk_analysis"); ok {
		if tier, ok := stringField(nested, "tier", "risk_tier", "level"); ok {
			return score, models.ParseRiskTier(tier)
		}
	}

	if score == nil {
		return nil, models.TierMedium
	}
	switch {
	case *score < 40:
		return score, models.TierLow
	case *score <= 70:
		return score, models.TierMedium
	default:
		return score, models.TierHigh
	}
}
