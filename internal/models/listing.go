// internal/models/listing.go
package models

// ListRow is one application in the review queue listing, flattened for
// display regardless of which backend shape it came from.
type ListRow struct {
	Key             string   `json:"key"`
	ApplicationID   string   `json:"applicationId"`
	BeneficiaryName string   `json:"beneficiaryName"`
	BeneficiaryID   string   `json:"beneficiaryId"`
	LoanType        string   `json:"loanType"`
	Amount          *float64 `json:"amount"`
	RiskScore       *int     `json:"riskScore"`
	RiskLevel       RiskTier `json:"riskLevel"`
	Status          Status   `json:"status"`
	StatusLabel     string   `json:"statusLabel"`
	Submitted       string   `json:"submitted"`
}

// Stats summarizes the review queue for the dashboard header.
type Stats struct {
	Total            int                  `json:"total"`
	ByStatus         map[Status]int       `json:"byStatus"`
	RiskDistribution map[RiskTier]float64 `json:"riskDistribution"`
}
