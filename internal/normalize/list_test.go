// internal/normalize/list_test.go
package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-review-console/internal/models"
)

func TestNormalizeList_Envelopes(t *testing.T) {
	n := newTestNormalizer(t)

	item := map[string]interface{}{"id": "A1", "status": "pending"}

	tests := []struct {
		name    string
		payload interface{}
		count   int
	}{
		{name: "items envelope", payload: map[string]interface{}{"items": []interface{}{item}}, count: 1},
		{name: "data envelope", payload: map[string]interface{}{"data": []interface{}{item}}, count: 1},
		{name: "bare array", payload: []interface{}{item}, count: 1},
		{name: "non-map entries skipped", payload: []interface{}{item, "junk", 42.0}, count: 1},
		{name: "unrecognized payload", payload: "nothing", count: 0},
		{name: "nil payload", payload: nil, count: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, n.NormalizeList(tt.payload), tt.count)
		})
	}
}

func TestNormalizeList_RiskBuckets(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		name     string
		item     map[string]interface{}
		expected models.RiskTier
	}{
		{name: "score 39 is low", item: map[string]interface{}{"risk_score": 39.0}, expected: models.TierLow},
		{name: "score 40 is medium", item: map[string]interface{}{"risk_score": 40.0}, expected: models.TierMedium},
		{name: "score 70 is medium", item: map[string]interface{}{"risk_score": 70.0}, expected: models.TierMedium},
		{name: "score 71 is high", item: map[string]interface{}{"risk_score": 71.0}, expected: models.TierHigh},
		{name: "no signal is medium", item: map[string]interface{}{}, expected: models.TierMedium},
		{
			name:     "explicit tier wins over score bucket",
			item:     map[string]interface{}{"risk_score": 10.0, "risk_tier": "high"},
			expected: models.TierHigh,
		},
		{
			name:     "nested risk tier",
			item:     map[string]interface{}{"risk": map[string]interface{}{"score": 90.0, "tier": "low"}},
			expected: models.TierLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := n.NormalizeList([]interface{}{tt.item})
			require.Len(t, rows, 1)
			assert.Equal(t, tt.expected, rows[0].RiskLevel)
		})
	}
}

func TestNormalizeList_RowFields(t *testing.T) {
	n := newTestNormalizer(t)

	rows := n.NormalizeList([]interface{}{
		map[string]interface{}{
			"id":               123.0,
			"beneficiary_name": "Asha Verma",
			"loan_type":        "dairy",
			"sanctioned_amount": 200000.0,
			"status":           "needs_more",
			"submitted_at":     "2025-03-14T10:30:00Z",
		},
		map[string]interface{}{},
	})

	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, "123", first.ApplicationID)
	assert.Equal(t, "123", first.Key)
	assert.Equal(t, "Asha Verma", first.BeneficiaryName)
	assert.Equal(t, "dairy", first.LoanType)
	require.NotNil(t, first.Amount)
	assert.Equal(t, 200000.0, *first.Amount)
	assert.Equal(t, models.StatusNeedsMoreInfo, first.Status)
	assert.Equal(t, "Needs More Info", first.StatusLabel)
	assert.Equal(t, "2025-03-14", first.Submitted)

	second := rows[1]
	assert.Equal(t, "row-1", second.Key)
	assert.Equal(t, models.DisplayDash, second.BeneficiaryName)
	assert.Equal(t, models.DisplayDash, second.Submitted)
	assert.Nil(t, second.Amount)
	assert.Equal(t, models.StatusPending, second.Status)
}
