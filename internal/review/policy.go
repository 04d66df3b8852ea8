// internal/review/policy.go
package review

import "loan-review-console/internal/models"

// ActionSet is the set of actions an operator may take on an application.
type ActionSet map[models.ActionKind]struct{}

func (s ActionSet) Contains(kind models.ActionKind) bool {
	_, ok := s[kind]
	return ok
}

// List returns the permitted actions in stable display order.
func (s ActionSet) List() []models.ActionKind {
	out := make([]models.ActionKind, 0, len(s))
	for _, kind := range models.AllActions {
		if s.Contains(kind) {
			out = append(out, kind)
		}
	}
	return out
}

// PermittedActions maps the current status and risk tier to the set of
// actions the console offers. Pure function; the rules compose
// independently:
//
//   - any non-final status keeps the three decision actions available
//   - a rejected applicant can still be routed to an appeal call
//   - a high-risk applicant can always be pulled into video verification
//
// An approved application therefore offers nothing unless its tier is high.
func PermittedActions(status models.Status, tier models.RiskTier) ActionSet {
	permitted := ActionSet{}

	if !status.IsFinal() {
		permitted[models.ActionApprove] = struct{}{}
		permitted[models.ActionReject] = struct{}{}
		permitted[models.ActionRequestMoreInfo] = struct{}{}
	}

	if status == models.StatusRejected {
		permitted[models.ActionScheduleMeeting] = struct{}{}
	}

	if tier == models.TierHigh {
		permitted[models.ActionStartVideoVerification] = struct{}{}
	}

	return permitted
}
