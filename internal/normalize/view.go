// internal/normalize/view.go
package normalize

import (
	"loan-review-console/internal/common/logger"
	"loan-review-console/internal/models"
)

// Normalizer reconciles the divergent backend payload shapes into the
// canonical view model. It is the single schema-reconciliation layer: every
// consumer goes through it instead of carrying its own fallback chains.
// Building a view is pure and total; the only side effect is debug logging
// for dropped evidence.
type Normalizer struct {
	logger logger.Logger
}

func New(log logger.Logger) *Normalizer {
	return &Normalizer{logger: log}
}

// Loan amount candidates in priority order; the first defined value wins.
var loanAmountFields = []string{"sanctioned_amount", "disbursed_amount", "loan_amount", "amount"}

// BuildView reconstructs a full Application from a raw payload of any of
// the documented shapes. It never fails: each attribute degrades
// independently to its sentinel when the payload gives nothing usable.
func (n *Normalizer) BuildView(raw map[string]interface{}) *models.Application {
	if raw == nil {
		raw = map[string]interface{}{}
	}

	app := &models.Application{
		Beneficiary: n.normalizeBeneficiary(raw),
		Risk:        n.NormalizeRisk(raw),
		Evidence:    n.NormalizeEvidence(raw),
	}

	app.ID, _ = stringField(raw, "id", "application_id")
	app.ReferenceNumber, _ = stringField(raw, "loan_ref_no", "reference_number", "application_id")
	app.LoanType = n.normalizeLoanType(raw)
	app.Purpose, _ = stringField(raw, "purpose")

	if amount, ok := numberField(raw, loanAmountFields...); ok && amount >= 0 {
		app.LoanAmount = &amount
	}

	if ts, ok := stringField(raw, "submitted_at", "created_at", "updated_at"); ok {
		app.SubmittedAt = parseTimestamp(ts)
	}

	status, _ := stringField(raw, "status", "lifecycle_status")
	app.Status = models.ParseStatus(status)

	return app
}

// normalizeBeneficiary resolves the contact block with the same
// nested-then-flattened priority used for risk.
func (n *Normalizer) normalizeBeneficiary(raw map[string]interface{}) models.Beneficiary {
	b := models.Beneficiary{}

	if nested, ok := mapField(raw, "beneficiary"); ok {
		b.Name, _ = stringField(nested, "name", "full_name")
		b.Mobile, _ = stringField(nested, "mobile", "phone")
		b.Email, _ = stringField(nested, "email")
	}
	if b.Name == "" {
		b.Name, _ = stringField(raw, "beneficiary_name", "applicant_name", "name")
	}
	if b.Mobile == "" {
		b.Mobile, _ = stringField(raw, "beneficiary_mobile", "mobile", "phone")
	}
	if b.Email == "" {
		b.Email, _ = stringField(raw, "beneficiary_email", "email")
	}

	if user, ok := mapField(raw, "user"); ok {
		if b.Name == "" {
			b.Name, _ = stringField(user, "full_name", "name")
		}
		if b.Mobile == "" {
			b.Mobile, _ = stringField(user, "mobile", "phone")
		}
		if b.Email == "" {
			b.Email, _ = stringField(user, "email")
		}
	}

	return b
}

func (n *Normalizer) normalizeLoanType(raw map[string]interface{}) string {
	if loanType, ok := stringField(raw, "loan_type"); ok {
		return loanType
	}
	if loan, ok := mapField(raw, "loan"); ok {
		if loanType, ok := stringField(loan, "type"); ok {
			return loanType
		}
	}
	return ""
}
