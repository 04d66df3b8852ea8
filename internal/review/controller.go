// internal/review/controller.go
package review

import (
	"context"
	"fmt"
	"sync"
	"time"

	"loan-review-console/internal/common/errors"
	"loan-review-console/internal/common/logger"
	"loan-review-console/internal/common/metrics"
	"loan-review-console/internal/models"
	"loan-review-console/internal/normalize"
)

// Phase is the controller's position in the review state machine.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseLoading    Phase = "loading"
	PhaseReady      Phase = "ready"
	PhaseLoadError  Phase = "load_error"
	PhaseSubmitting Phase = "submitting"
)

// ApplicationReader fetches the raw application payload from the backend of
// record. The payload shape varies across backend versions; the controller
// always runs it through the normalizer.
type ApplicationReader interface {
	FetchApplication(ctx context.Context, id string) (map[string]interface{}, error)
}

// StatusTransitioner submits a decision action and returns the
// authoritative resulting status.
type StatusTransitioner interface {
	SubmitTransition(ctx context.Context, id string, action models.ActionKind) (models.Status, error)
}

// MeetingRequest carries everything the notification collaborator needs to
// reach the beneficiary.
type MeetingRequest struct {
	ApplicationID string
	Mobile        string
	Email         string
	Link          string
}

// MeetingNotifier delivers the meeting link to the beneficiary.
// Fire-and-report: idempotency comes from the deterministic room id.
type MeetingNotifier interface {
	ScheduleMeeting(ctx context.Context, req MeetingRequest) error
}

// RoomProvider derives the per-application meeting room. Derivation is
// deterministic so retries always land in the same room.
type RoomProvider interface {
	RoomID(applicationID string) string
	JoinURL(applicationID string) string
}

// Decision is one confirmed operator decision, recorded for the history
// timeline.
type Decision struct {
	ApplicationID   string
	Action          models.ActionKind
	ResultingStatus models.Status
	MeetingLink     string
	DecidedAt       time.Time
}

// DecisionRecorder persists decisions. Recording is best effort: an audit
// write failure never rolls back a confirmed transition.
type DecisionRecorder interface {
	RecordDecision(ctx context.Context, decision Decision) error
}

// ActionResult is what the operator sees after an action completes.
type ActionResult struct {
	Action           models.ActionKind   `json:"action"`
	NewStatus        models.Status       `json:"newStatus,omitempty"`
	PermittedActions []models.ActionKind `json:"permittedActions,omitempty"`
	MeetingLink      string              `json:"meetingLink,omitempty"`
	RoomID           string              `json:"roomId,omitempty"`
	VideoURL         string              `json:"videoUrl,omitempty"`
	Notice           string              `json:"notice"`
}

// Dependencies wires the controller's collaborators.
type Dependencies struct {
	Reader      ApplicationReader
	Transitions StatusTransitioner
	Notifier    MeetingNotifier
	Rooms       RoomProvider
	Recorder    DecisionRecorder
	Normalizer  *normalize.Normalizer
	Logger      logger.Logger
}

// Controller owns the review workflow for a single application view: load,
// derive permitted actions, execute transitions and side effects, keep the
// view consistent with the server-confirmed outcome. Methods are safe for
// concurrent use; a generation counter discards responses that arrive after
// the view has moved on.
type Controller struct {
	mu            sync.Mutex
	phase         Phase
	gen           uint64
	applicationID string
	view          *models.Application
	loadMessage   string
	inFlight      models.ActionKind

	reader      ApplicationReader
	transitions StatusTransitioner
	notifier    MeetingNotifier
	rooms       RoomProvider
	recorder    DecisionRecorder
	normalizer  *normalize.Normalizer
	logger      logger.Logger
}

func NewController(deps Dependencies) *Controller {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	normalizer := deps.Normalizer
	if normalizer == nil {
		normalizer = normalize.New(log)
	}
	return &Controller{
		phase:       PhaseIdle,
		reader:      deps.Reader,
		transitions: deps.Transitions,
		notifier:    deps.Notifier,
		rooms:       deps.Rooms,
		recorder:    deps.Recorder,
		normalizer:  normalizer,
		logger:      log,
	}
}

// Phase returns the current state-machine phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// View returns the current view model, nil unless the controller is ready
// or submitting.
func (c *Controller) View() *models.Application {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// LoadMessage returns the user-facing message for the load_error phase.
func (c *Controller) LoadMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadMessage
}

// PermittedActions derives the action set from the loaded view. Empty until
// a load has completed, so no action is ever offered while the status is
// unknown.
func (c *Controller) PermittedActions() []models.ActionKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view == nil {
		return nil
	}
	return PermittedActions(c.view.Status, c.view.Risk.Tier).List()
}

// Load fetches the application and rebuilds the view model in full. A load
// started while another is in flight supersedes it: the older response is
// discarded when it lands.
func (c *Controller) Load(ctx context.Context, id string) (*models.Application, error) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.applicationID = id
	c.phase = PhaseLoading
	c.view = nil
	c.loadMessage = ""
	c.inFlight = ""
	c.mu.Unlock()

	raw, err := c.reader.FetchApplication(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		c.logger.Debug("Discarding stale load response", map[string]interface{}{
			"applicationId": id,
		})
		return nil, errors.NewStaleResponseError(id)
	}

	if err != nil {
		metrics.ReviewLoadsTotal.WithLabelValues("failure").Inc()
		stdErr := asLoadError(id, err)
		c.phase = PhaseLoadError
		c.loadMessage = stdErr.Message
		c.logger.Error("Application load failed", map[string]interface{}{
			"applicationId": id,
			"errorCode":     string(stdErr.Code),
			"details":       stdErr.Details,
		})
		return nil, stdErr
	}

	c.view = c.normalizer.BuildView(raw)
	c.phase = PhaseReady
	metrics.ReviewLoadsTotal.WithLabelValues("success").Inc()

	c.logger.Info("Application loaded", map[string]interface{}{
		"applicationId": id,
		"status":        string(c.view.Status),
		"riskTier":      string(c.view.Risk.Tier),
		"evidenceCount": len(c.view.Evidence),
	})

	return c.view, nil
}

// SubmitAction executes an operator action. Preconditions: a view is loaded,
// no other submission is in flight, and the action is in the permitted set.
func (c *Controller) SubmitAction(ctx context.Context, kind models.ActionKind) (*ActionResult, error) {
	c.mu.Lock()

	if c.phase == PhaseSubmitting {
		inFlight := c.inFlight
		c.mu.Unlock()
		return nil, errors.NewTransitionInFlightError(string(inFlight))
	}
	if c.phase != PhaseReady || c.view == nil {
		c.mu.Unlock()
		return nil, errors.NewNoApplicationLoadedError()
	}
	if !PermittedActions(c.view.Status, c.view.Risk.Tier).Contains(kind) {
		status, tier := c.view.Status, c.view.Risk.Tier
		c.mu.Unlock()
		return nil, errors.NewActionNotPermittedError(string(kind), string(status), string(tier))
	}

	id := c.applicationID
	beneficiary := c.view.Beneficiary

	// Video verification is a navigation handoff, not a tracked
	// transition: the room derives from the application id and the session
	// outcome is not ours to observe.
	if kind == models.ActionStartVideoVerification {
		c.mu.Unlock()
		return &ActionResult{
			Action:   kind,
			RoomID:   c.rooms.RoomID(id),
			VideoURL: c.rooms.JoinURL(id),
			Notice:   "Video verification room ready",
		}, nil
	}

	gen := c.gen
	c.phase = PhaseSubmitting
	c.inFlight = kind
	c.mu.Unlock()

	metrics.ReviewSubmissionsActive.WithLabelValues(string(kind)).Inc()
	defer metrics.ReviewSubmissionsActive.WithLabelValues(string(kind)).Dec()

	var result *ActionResult
	var err error
	if kind == models.ActionScheduleMeeting {
		result, err = c.scheduleMeeting(ctx, id, beneficiary)
	} else {
		result, err = c.submitTransition(ctx, id, kind)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		// The operator navigated away mid-flight. The outcome is reported
		// but never applied to the view that replaced this one.
		c.logger.Debug("Discarding stale action response", map[string]interface{}{
			"applicationId": id,
			"action":        string(kind),
		})
		return result, err
	}

	c.phase = PhaseReady
	c.inFlight = ""

	if err == nil && result.NewStatus != "" {
		c.view.Status = result.NewStatus
		result.PermittedActions = PermittedActions(c.view.Status, c.view.Risk.Tier).List()
	}

	return result, err
}

// submitTransition runs a decision action through the status-transition
// collaborator. Local state is only mutated from the returned authoritative
// status, never from the requested action name.
func (c *Controller) submitTransition(ctx context.Context, id string, kind models.ActionKind) (*ActionResult, error) {
	started := time.Now()
	newStatus, err := c.transitions.SubmitTransition(ctx, id, kind)
	metrics.ReviewTransitionDuration.WithLabelValues(string(kind)).Observe(time.Since(started).Seconds())

	if err != nil {
		metrics.ReviewTransitionsTotal.WithLabelValues(string(kind), "failure").Inc()
		return nil, errors.NewTransitionFailedError(id, string(kind), err)
	}

	metrics.ReviewTransitionsTotal.WithLabelValues(string(kind), "success").Inc()
	c.recordDecision(ctx, Decision{
		ApplicationID:   id,
		Action:          kind,
		ResultingStatus: newStatus,
		DecidedAt:       time.Now().UTC(),
	})

	c.logger.Info("Status transition confirmed", map[string]interface{}{
		"applicationId": id,
		"action":        string(kind),
		"newStatus":     string(newStatus),
	})

	return &ActionResult{
		Action:    kind,
		NewStatus: newStatus,
		Notice:    fmt.Sprintf("Status updated to %s", newStatus),
	}, nil
}

// scheduleMeeting sends the meeting link to the beneficiary. No local state
// changes either way; both outcomes surface as transient notices.
func (c *Controller) scheduleMeeting(ctx context.Context, id string, beneficiary models.Beneficiary) (*ActionResult, error) {
	link := c.rooms.JoinURL(id)

	err := c.notifier.ScheduleMeeting(ctx, MeetingRequest{
		ApplicationID: id,
		Mobile:        beneficiary.Mobile,
		Email:         beneficiary.Email,
		Link:          link,
	})
	if err != nil {
		metrics.SideEffectFailuresTotal.WithLabelValues(string(models.ActionScheduleMeeting)).Inc()
		return nil, errors.NewNotificationSendFailedError(id, err)
	}

	c.recordDecision(ctx, Decision{
		ApplicationID: id,
		Action:        models.ActionScheduleMeeting,
		MeetingLink:   link,
		DecidedAt:     time.Now().UTC(),
	})

	c.logger.Info("Meeting scheduled", map[string]interface{}{
		"applicationId": id,
		"link":          link,
	})

	return &ActionResult{
		Action:      models.ActionScheduleMeeting,
		MeetingLink: link,
		Notice:      "Meeting scheduled and SMS sent",
	}, nil
}

func (c *Controller) recordDecision(ctx context.Context, decision Decision) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.RecordDecision(ctx, decision); err != nil {
		c.logger.Warn("Failed to record decision", map[string]interface{}{
			"applicationId": decision.ApplicationID,
			"action":        string(decision.Action),
			"error":         err.Error(),
		})
	}
}

func asLoadError(id string, err error) *errors.StandardError {
	if stdErr, ok := err.(*errors.StandardError); ok {
		return stdErr
	}
	return errors.NewFetchFailedError(id, err)
}
