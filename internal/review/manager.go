// internal/review/manager.go
package review

import (
	"context"
	"sync"

	"loan-review-console/internal/common/errors"
	"loan-review-console/internal/models"
)

// Manager hands out one controller per application id so the in-flight
// submission guard holds across concurrent operator requests for the same
// application. Controllers for different applications share nothing.
type Manager struct {
	mu          sync.Mutex
	controllers map[string]*Controller
	deps        Dependencies
}

func NewManager(deps Dependencies) *Manager {
	return &Manager{
		controllers: make(map[string]*Controller),
		deps:        deps,
	}
}

// Controller returns the controller owning the given application view,
// creating it on first use.
func (m *Manager) Controller(applicationID string) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ctrl, ok := m.controllers[applicationID]; ok {
		return ctrl
	}
	ctrl := NewController(m.deps)
	m.controllers[applicationID] = ctrl
	return ctrl
}

// Load rebuilds the view for the given application in full.
func (m *Manager) Load(ctx context.Context, applicationID string) (*models.Application, error) {
	return m.Controller(applicationID).Load(ctx, applicationID)
}

// SubmitAction routes an operator action to the owning controller, loading
// the view first when none is held yet. A submission already in flight is
// rejected, never queued behind a reload.
func (m *Manager) SubmitAction(ctx context.Context, applicationID string, kind models.ActionKind) (*ActionResult, error) {
	ctrl := m.Controller(applicationID)

	result, err := ctrl.SubmitAction(ctx, kind)
	if stdErr, ok := err.(*errors.StandardError); ok && stdErr.Code == errors.ErrCodeNoApplicationLoaded {
		if _, loadErr := ctrl.Load(ctx, applicationID); loadErr != nil {
			return nil, loadErr
		}
		return ctrl.SubmitAction(ctx, kind)
	}
	return result, err
}
