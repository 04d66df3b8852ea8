// internal/models/application.go
package models

import (
	"strconv"
	"strings"
	"time"
)

// DisplayDash is the sentinel rendered for any value the backend did not
// provide in a usable form.
const DisplayDash = "—"

// Status is the canonical lifecycle state of a loan application. The backend
// is authoritative; client-requested action names are never assumed to equal
// the resulting status.
type Status string

const (
	StatusPending       Status = "pending"
	StatusApproved      Status = "approved"
	StatusRejected      Status = "rejected"
	StatusNeedsMoreInfo Status = "needs_more_info"
)

// statusAliases maps the slugs observed across backend contract versions to
// canonical statuses.
var statusAliases = map[string]Status{
	"pending":         StatusPending,
	"approved":        StatusApproved,
	"auto_approved":   StatusApproved,
	"rejected":        StatusRejected,
	"needs_more":      StatusNeedsMoreInfo,
	"needs_more_info": StatusNeedsMoreInfo,
	"video_required":  StatusPending,
}

// ParseStatus canonicalizes a raw status string. Matching is
// case-insensitive and tolerates dash-separated slugs. Anything
// unrecognized, including the empty string, resolves to pending.
func ParseStatus(raw string) Status {
	slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_")
	if status, ok := statusAliases[slug]; ok {
		return status
	}
	return StatusPending
}

// statusLabels are the operator-facing display names for each status.
var statusLabels = map[Status]string{
	StatusPending:       "Pending",
	StatusApproved:      "Approved",
	StatusRejected:      "Rejected",
	StatusNeedsMoreInfo: "Needs More Info",
}

// Label renders the status for display.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return statusLabels[StatusPending]
}

// IsFinal reports whether the application has reached a terminal decision.
func (s Status) IsFinal() bool {
	return s == StatusApproved || s == StatusRejected
}

// RiskTier is the coarse risk bucket for an application.
type RiskTier string

const (
	TierLow    RiskTier = "low"
	TierMedium RiskTier = "medium"
	TierHigh   RiskTier = "high"
)

// ParseRiskTier lower-cases and matches a raw tier string. Anything outside
// the three buckets, including absence, resolves to medium.
func ParseRiskTier(raw string) RiskTier {
	switch RiskTier(strings.ToLower(strings.TrimSpace(raw))) {
	case TierLow:
		return TierLow
	case TierHigh:
		return TierHigh
	default:
		return TierMedium
	}
}

// ActionKind is an operator action on an application under review.
type ActionKind string

const (
	ActionApprove                ActionKind = "approve"
	ActionReject                 ActionKind = "reject"
	ActionRequestMoreInfo        ActionKind = "request_more_info"
	ActionScheduleMeeting        ActionKind = "schedule_meeting"
	ActionStartVideoVerification ActionKind = "start_video_verification"
)

// AllActions lists every action kind in stable order.
var AllActions = []ActionKind{
	ActionApprove,
	ActionReject,
	ActionRequestMoreInfo,
	ActionScheduleMeeting,
	ActionStartVideoVerification,
}

// ParseActionKind matches a raw action string against the known kinds.
func ParseActionKind(raw string) (ActionKind, bool) {
	slug := ActionKind(strings.ToLower(strings.TrimSpace(raw)))
	for _, kind := range AllActions {
		if kind == slug {
			return kind, true
		}
	}
	return "", false
}

// IsTransition reports whether the action changes the application status on
// the backend, as opposed to triggering a side effect only.
func (a ActionKind) IsTransition() bool {
	switch a {
	case ActionApprove, ActionReject, ActionRequestMoreInfo:
		return true
	}
	return false
}

// Beneficiary is the contact block of an application, always resolved to
// this shape regardless of how the backend nested or flattened it.
type Beneficiary struct {
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
	Email  string `json:"email"`
}

// RiskFactor is one sub-factor of a risk breakdown.
type RiskFactor struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Score int    `json:"score"`
}

// RiskAssessment is the normalized risk block. Score is nil when the backend
// provided nothing usable; Tier is always one of the three buckets.
type RiskAssessment struct {
	Score     *int         `json:"score,omitempty"`
	Tier      RiskTier     `json:"tier"`
	Breakdown []RiskFactor `json:"breakdown"`
}

// ScoreDisplay renders the score for the operator, "N/A" when absent.
func (r RiskAssessment) ScoreDisplay() string {
	if r.Score == nil {
		return "N/A"
	}
	return strconv.Itoa(*r.Score)
}

// EvidenceItem is one piece of supporting documentation. ContentRef is
// always a displayable reference; items without usable content are dropped
// during normalization and never reach this type.
type EvidenceItem struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	MimeType   string `json:"mimeType"`
	ContentRef string `json:"contentRef"`
}

// Application is the canonical view model of one loan application under
// review. It is a read-only reconstruction of server state, rebuilt in full
// on every fetch.
type Application struct {
	ID              string          `json:"id"`
	ReferenceNumber string          `json:"referenceNumber"`
	Beneficiary     Beneficiary     `json:"beneficiary"`
	LoanType        string          `json:"loanType"`
	LoanAmount      *float64        `json:"loanAmount,omitempty"`
	Purpose         string          `json:"purpose,omitempty"`
	SubmittedAt     time.Time       `json:"submittedAt,omitempty"`
	Status          Status          `json:"status"`
	Risk            RiskAssessment  `json:"risk"`
	Evidence        []EvidenceItem  `json:"evidence"`
}

// AmountDisplay renders the loan amount, dash when unknown.
func (a *Application) AmountDisplay() string {
	if a.LoanAmount == nil {
		return DisplayDash
	}
	return strconv.FormatFloat(*a.LoanAmount, 'f', -1, 64)
}

// SubmittedDisplay renders the submission date, dash when unparsable or
// missing.
func (a *Application) SubmittedDisplay() string {
	if a.SubmittedAt.IsZero() {
		return DisplayDash
	}
	return a.SubmittedAt.Format("2006-01-02")
}
