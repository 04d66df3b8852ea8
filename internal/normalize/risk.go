// internal/normalize/risk.go
package normalize

import (
	"encoding/json"
	"math"

	"loan-review-console/internal/models"
)

// NormalizeRisk reconciles the risk fields into a canonical assessment.
// Priority per attribute: nested risk object, then flattened scalar fields,
// then the JSON-blob field. The tier invariant holds unconditionally: the
// result is always low, medium or high.
func (n *Normalizer) NormalizeRisk(raw map[string]interface{}) models.RiskAssessment {
	sources := make([]map[string]interface{}, 0, 3)

	if nested, ok := mapField(raw, "risk", "risk_analysis"); ok {
		sources = append(sources, nested)
	}
	sources = append(sources, raw)
	if blob, ok := decodeRiskBlob(raw); ok {
		sources = append(sources, blob)
	}

	assessment := models.RiskAssessment{
		Tier:      models.TierMedium,
		Breakdown: []models.RiskFactor{},
	}

	for _, source := range sources {
		if f, ok := numberField(source, "score", "risk_score"); ok {
			score := clampScore(f)
			assessment.Score = &score
			break
		}
	}

	for _, source := range sources {
		if tier, ok := stringField(source, "tier", "risk_tier", "level", "risk_level"); ok {
			assessment.Tier = models.ParseRiskTier(tier)
			break
		}
	}

	for _, source := range sources {
		if entries, ok := arrayField(source, "breakdown", "risk_breakdown", "factors"); ok {
			assessment.Breakdown = normalizeBreakdown(entries)
			break
		}
	}

	return assessment
}

// decodeRiskBlob decodes the legacy risk_json string column when present.
func decodeRiskBlob(raw map[string]interface{}) (map[string]interface{}, bool) {
	blob, ok := asString(raw["risk_json"])
	if !ok {
		return nil, false
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(blob), &decoded); err != nil {
		return nil, false
	}
	return decoded, true
}

func clampScore(f float64) int {
	score := int(math.Round(f))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func normalizeBreakdown(entries []interface{}) []models.RiskFactor {
	factors := make([]models.RiskFactor, 0, len(entries))
	for _, entry := range entries {
		m, ok := asMap(entry)
		if !ok {
			continue
		}
		factor := models.RiskFactor{}
		factor.Key, _ = stringField(m, "key", "id", "name")
		factor.Label, _ = stringField(m, "label", "name", "key")
		if f, ok := numberField(m, "score", "value"); ok {
			factor.Score = clampScore(f)
		}
		if factor.Key == "" && factor.Label == "" {
			continue
		}
		factors = append(factors, factor)
	}
	return factors
}
