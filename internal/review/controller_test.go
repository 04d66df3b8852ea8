// internal/review/controller_test.go
package review

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-review-console/internal/common/errors"
	"loan-review-console/internal/common/logger"
	"loan-review-console/internal/models"
)

// ==========================
// Test Fakes
// ==========================

type fakeReader struct {
	mu       sync.Mutex
	payloads map[string]map[string]interface{}
	err      error
	calls    int
	blockOn  string
	started  chan struct{}
	release  chan struct{}
}

func (f *fakeReader) FetchApplication(ctx context.Context, id string) (map[string]interface{}, error) {
	f.mu.Lock()
	f.calls++
	block := f.blockOn == id
	f.mu.Unlock()

	if block {
		f.started <- struct{}{}
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	payload, ok := f.payloads[id]
	if !ok {
		return nil, errors.NewApplicationNotFoundError(id)
	}
	return payload, nil
}

type fakeTransitioner struct {
	mu      sync.Mutex
	status  models.Status
	err     error
	calls   int
	lastID  string
	lastAct models.ActionKind
	started chan struct{}
	release chan struct{}
}

func (f *fakeTransitioner) SubmitTransition(ctx context.Context, id string, action models.ActionKind) (models.Status, error) {
	f.mu.Lock()
	f.calls++
	f.lastID = id
	f.lastAct = action
	blocking := f.started != nil
	f.mu.Unlock()

	if blocking {
		f.started <- struct{}{}
		<-f.release
	}
	return f.status, f.err
}

func (f *fakeTransitioner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeNotifier struct {
	req   MeetingRequest
	err   error
	calls int
}

func (f *fakeNotifier) ScheduleMeeting(ctx context.Context, req MeetingRequest) error {
	f.calls++
	f.req = req
	return f.err
}

type fakeRooms struct{}

func (fakeRooms) RoomID(id string) string  { return "LoanRoom-" + id }
func (fakeRooms) JoinURL(id string) string { return "https://meet.example.com/LoanRoom-" + id }

type fakeRecorder struct {
	mu        sync.Mutex
	decisions []Decision
	err       error
}

func (f *fakeRecorder) RecordDecision(ctx context.Context, d Decision) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decisions = append(f.decisions, d)
	return f.err
}

func (f *fakeRecorder) recorded() []Decision {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Decision{}, f.decisions...)
}

// ==========================
// Test Helpers
// ==========================

func pendingHighPayload() map[string]interface{} {
	return map[string]interface{}{
		"id":     "A1",
		"status": "pending",
		"beneficiary": map[string]interface{}{
			"name":   "Asha Verma",
			"mobile": "+919800000001",
			"email":  "asha@example.com",
		},
		"risk": map[string]interface{}{"score": 85.0, "tier": "high"},
	}
}

func rejectedPayload() map[string]interface{} {
	return map[string]interface{}{
		"id":     "A1",
		"status": "rejected",
		"beneficiary": map[string]interface{}{
			"name":   "Asha Verma",
			"mobile": "+919800000001",
		},
	}
}

func newTestController(t *testing.T, deps Dependencies) *Controller {
	if deps.Logger == nil {
		deps.Logger = logger.NewTestLogger(t)
	}
	return NewController(deps)
}

// ==========================
// Load Tests
// ==========================

func TestController_Load_Success(t *testing.T) {
	reader := &fakeReader{payloads: map[string]map[string]interface{}{"A1": pendingHighPayload()}}
	c := newTestController(t, Dependencies{Reader: reader})

	view, err := c.Load(context.Background(), "A1")
	require.NoError(t, err)

	assert.Equal(t, PhaseReady, c.Phase())
	assert.Equal(t, models.StatusPending, view.Status)
	assert.Equal(t, models.TierHigh, view.Risk.Tier)
	assert.Equal(t, []models.ActionKind{
		models.ActionApprove,
		models.ActionReject,
		models.ActionRequestMoreInfo,
		models.ActionStartVideoVerification,
	}, c.PermittedActions())
}

func TestController_Load_Failure(t *testing.T) {
	reader := &fakeReader{err: fmt.Errorf("connection refused")}
	c := newTestController(t, Dependencies{Reader: reader})

	_, err := c.Load(context.Background(), "A1")
	require.Error(t, err)

	assert.Equal(t, PhaseLoadError, c.Phase())
	assert.Equal(t, errors.ErrCodeFetchFailed, errors.CodeOf(err))
	assert.Equal(t, "Unable to load application details", c.LoadMessage())
	assert.Nil(t, c.View())
	assert.Empty(t, c.PermittedActions())
}

func TestController_Load_NotFoundPassesThrough(t *testing.T) {
	reader := &fakeReader{payloads: map[string]map[string]interface{}{}}
	c := newTestController(t, Dependencies{Reader: reader})

	_, err := c.Load(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeApplicationNotFound, errors.CodeOf(err))
}

func TestController_Load_StaleResponseDiscarded(t *testing.T) {
	reader := &fakeReader{
		payloads: map[string]map[string]interface{}{
			"A1": pendingHighPayload(),
			"A2": {"id": "A2", "status": "approved"},
		},
		blockOn: "A1",
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	c := newTestController(t, Dependencies{Reader: reader})

	errCh := make(chan error, 1)
	go func() {
		_, err := c.Load(context.Background(), "A1")
		errCh <- err
	}()
	<-reader.started

	view, err := c.Load(context.Background(), "A2")
	require.NoError(t, err)
	assert.Equal(t, "A2", view.ID)

	close(reader.release)

	select {
	case err := <-errCh:
		assert.Equal(t, errors.ErrCodeStaleResponse, errors.CodeOf(err))
	case <-time.After(2 * time.Second):
		t.Fatal("stale load never returned")
	}

	// The stale response did not overwrite the newer view.
	assert.Equal(t, "A2", c.View().ID)
	assert.Equal(t, PhaseReady, c.Phase())
}

// ==========================
// Action Tests
// ==========================

func TestController_SubmitAction_ApproveUsesReturnedStatus(t *testing.T) {
	reader := &fakeReader{payloads: map[string]map[string]interface{}{"A1": pendingHighPayload()}}
	transitioner := &fakeTransitioner{status: models.StatusApproved}
	recorder := &fakeRecorder{}
	c := newTestController(t, Dependencies{
		Reader:      reader,
		Transitions: transitioner,
		Recorder:    recorder,
	})

	_, err := c.Load(context.Background(), "A1")
	require.NoError(t, err)

	result, err := c.SubmitAction(context.Background(), models.ActionApprove)
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, result.NewStatus)
	assert.Equal(t, models.StatusApproved, c.View().Status)
	assert.Equal(t, "Status updated to approved", result.Notice)
	assert.Equal(t, "A1", transitioner.lastID)
	assert.Equal(t, models.ActionApprove, transitioner.lastAct)

	// Approved at high risk leaves only video verification on the table.
	assert.Equal(t, []models.ActionKind{models.ActionStartVideoVerification}, result.PermittedActions)
	assert.Equal(t, PhaseReady, c.Phase())

	decisions := recorder.recorded()
	require.Len(t, decisions, 1)
	assert.Equal(t, models.ActionApprove, decisions[0].Action)
	assert.Equal(t, models.StatusApproved, decisions[0].ResultingStatus)
}

func TestController_SubmitAction_TransitionFailureKeepsView(t *testing.T) {
	reader := &fakeReader{payloads: map[string]map[string]interface{}{"A1": pendingHighPayload()}}
	transitioner := &fakeTransitioner{err: fmt.Errorf("backend down")}
	c := newTestController(t, Dependencies{Reader: reader, Transitions: transitioner})

	_, err := c.Load(context.Background(), "A1")
	require.NoError(t, err)

	_, err = c.SubmitAction(context.Background(), models.ActionReject)
	require.Error(t, err)

	assert.Equal(t, errors.ErrCodeTransitionFailed, errors.CodeOf(err))
	assert.Equal(t, models.StatusPending, c.View().Status)
	assert.Equal(t, PhaseReady, c.Phase())
}

func TestController_SubmitAction_RejectsWhileInFlight(t *testing.T) {
	reader := &fakeReader{payloads: map[string]map[string]interface{}{"A1": pendingHighPayload()}}
	transitioner := &fakeTransitioner{
		status:  models.StatusApproved,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	c := newTestController(t, Dependencies{Reader: reader, Transitions: transitioner})

	_, err := c.Load(context.Background(), "A1")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.SubmitAction(context.Background(), models.ActionApprove)
	}()
	<-transitioner.started

	_, err = c.SubmitAction(context.Background(), models.ActionReject)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeTransitionInFlight, errors.CodeOf(err))

	close(transitioner.release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("first submission never finished")
	}

	// The rejected second submission never reached the collaborator.
	assert.Equal(t, 1, transitioner.callCount())
}

func TestController_SubmitAction_NotPermitted(t *testing.T) {
	reader := &fakeReader{payloads: map[string]map[string]interface{}{"A1": {
		"id": "A1", "status": "approved",
	}}}
	transitioner := &fakeTransitioner{}
	c := newTestController(t, Dependencies{Reader: reader, Transitions: transitioner})

	_, err := c.Load(context.Background(), "A1")
	require.NoError(t, err)

	_, err = c.SubmitAction(context.Background(), models.ActionApprove)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeActionNotPermitted, errors.CodeOf(err))
	assert.Equal(t, 0, transitioner.callCount())
}

func TestController_SubmitAction_NoApplicationLoaded(t *testing.T) {
	c := newTestController(t, Dependencies{Reader: &fakeReader{}})

	_, err := c.SubmitAction(context.Background(), models.ActionApprove)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNoApplicationLoaded, errors.CodeOf(err))
}

// ==========================
// Side-Effect Tests
// ==========================

func TestController_ScheduleMeeting(t *testing.T) {
	reader := &fakeReader{payloads: map[string]map[string]interface{}{"A1": rejectedPayload()}}
	notifier := &fakeNotifier{}
	recorder := &fakeRecorder{}
	c := newTestController(t, Dependencies{
		Reader:   reader,
		Notifier: notifier,
		Rooms:    fakeRooms{},
		Recorder: recorder,
	})

	_, err := c.Load(context.Background(), "A1")
	require.NoError(t, err)

	result, err := c.SubmitAction(context.Background(), models.ActionScheduleMeeting)
	require.NoError(t, err)

	assert.Equal(t, "https://meet.example.com/LoanRoom-A1", result.MeetingLink)
	assert.Equal(t, "Meeting scheduled and SMS sent", result.Notice)
	assert.Empty(t, result.NewStatus)

	// The notifier received the beneficiary contact details and the link.
	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, "A1", notifier.req.ApplicationID)
	assert.Equal(t, "+919800000001", notifier.req.Mobile)
	assert.Equal(t, "https://meet.example.com/LoanRoom-A1", notifier.req.Link)

	// Status is untouched by the side effect.
	assert.Equal(t, models.StatusRejected, c.View().Status)

	decisions := recorder.recorded()
	require.Len(t, decisions, 1)
	assert.Equal(t, models.ActionScheduleMeeting, decisions[0].Action)
	assert.Equal(t, result.MeetingLink, decisions[0].MeetingLink)
}

func TestController_ScheduleMeeting_NotifierFailure(t *testing.T) {
	reader := &fakeReader{payloads: map[string]map[string]interface{}{"A1": rejectedPayload()}}
	notifier := &fakeNotifier{err: fmt.Errorf("sns unavailable")}
	c := newTestController(t, Dependencies{
		Reader:   reader,
		Notifier: notifier,
		Rooms:    fakeRooms{},
	})

	_, err := c.Load(context.Background(), "A1")
	require.NoError(t, err)

	_, err = c.SubmitAction(context.Background(), models.ActionScheduleMeeting)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNotificationSendFailed, errors.CodeOf(err))

	// Failure leaves the controller ready for a retry.
	assert.Equal(t, PhaseReady, c.Phase())
	assert.Equal(t, models.StatusRejected, c.View().Status)
}

func TestController_StartVideoVerification(t *testing.T) {
	reader := &fakeReader{payloads: map[string]map[string]interface{}{"A1": pendingHighPayload()}}
	transitioner := &fakeTransitioner{}
	c := newTestController(t, Dependencies{
		Reader:      reader,
		Transitions: transitioner,
		Rooms:       fakeRooms{},
	})

	_, err := c.Load(context.Background(), "A1")
	require.NoError(t, err)

	result, err := c.SubmitAction(context.Background(), models.ActionStartVideoVerification)
	require.NoError(t, err)

	assert.Equal(t, "LoanRoom-A1", result.RoomID)
	assert.Equal(t, "https://meet.example.com/LoanRoom-A1", result.VideoURL)
	assert.Empty(t, result.NewStatus)

	// A navigation handoff, not a transition: no backend call, still ready.
	assert.Equal(t, 0, transitioner.callCount())
	assert.Equal(t, PhaseReady, c.Phase())
	assert.Equal(t, models.StatusPending, c.View().Status)
}

func TestController_RecorderFailureDoesNotFailAction(t *testing.T) {
	reader := &fakeReader{payloads: map[string]map[string]interface{}{"A1": pendingHighPayload()}}
	transitioner := &fakeTransitioner{status: models.StatusApproved}
	recorder := &fakeRecorder{err: fmt.Errorf("insert failed")}
	c := newTestController(t, Dependencies{
		Reader:      reader,
		Transitions: transitioner,
		Recorder:    recorder,
	})

	_, err := c.Load(context.Background(), "A1")
	require.NoError(t, err)

	result, err := c.SubmitAction(context.Background(), models.ActionApprove)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, result.NewStatus)
}
