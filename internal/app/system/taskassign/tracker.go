package taskassign

import (
	"context"
	"errors"
	"strings"
	"time"

	calltaskstore "github.com/dalemusser/mahallehub/internal/app/store/calltasks"
	"github.com/dalemusser/mahallehub/internal/app/system/authz"
	"github.com/dalemusser/mahallehub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/mahallehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// StatusStore reads and mutates single tasks.
type StatusStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.CallTask, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, ch calltaskstore.StatusChange) (models.CallTask, error)
}

// Tracker applies status transitions to call tasks.
//
// Any status may move to any other; there is no terminal state. Moving to
// called or unreachable stamps called_at and stores the note when one is
// given. Moving back to pending clears called_at and keeps the note.
type Tracker struct {
	tasks      StatusStore
	scope      ScopeChecker
	checkScope bool
	log        *zap.Logger
	now        func() time.Time
}

// NewTracker builds a Tracker. When checkScope is false any signed-in
// identity may update any task; when true the caller must be able to write
// the task's neighborhood.
func NewTracker(tasks StatusStore, scope ScopeChecker, checkScope bool, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{tasks: tasks, scope: scope, checkScope: checkScope, log: logger, now: time.Now}
}

// StatusUpdate is the result of UpdateStatus.
type StatusUpdate struct {
	Task           models.CallTask
	PreviousStatus string
}

// UpdateStatus moves task taskID to status. A nil note leaves the stored note
// untouched.
func (t *Tracker) UpdateStatus(ctx context.Context, taskID, status string, note *string, caller authz.Identity) (StatusUpdate, error) {
	if caller.NationalID == "" {
		return StatusUpdate{}, ErrUnauthorized
	}
	status = strings.TrimSpace(status)
	if !models.IsValidTaskStatus(status) {
		return StatusUpdate{}, ErrInvalidStatus
	}
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(taskID))
	if err != nil {
		return StatusUpdate{}, validationf("task id %q is malformed", taskID)
	}

	current, err := t.tasks.GetByID(ctx, oid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return StatusUpdate{}, ErrNotFound
	}
	if err != nil {
		t.log.Error("load call task", zap.String("task_id", taskID), zap.Error(err))
		return StatusUpdate{}, storage("load task", err)
	}

	if t.checkScope {
		if err := authorizeWrite(ctx, t.scope, caller, current.Neighborhood); err != nil {
			return StatusUpdate{}, err
		}
	}

	now := t.now().UTC()
	ch := calltaskstore.StatusChange{Status: status, At: now}
	if status != models.TaskPending {
		ch.CalledAt = &now
		ch.Note = htmlsanitize.PlainTextPtr(note)
	}

	updated, err := t.tasks.UpdateStatus(ctx, oid, ch)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return StatusUpdate{}, ErrNotFound
	}
	if err != nil {
		t.log.Error("update call task status",
			zap.String("task_id", taskID),
			zap.String("status", status),
			zap.Error(err))
		return StatusUpdate{}, storage("update status", err)
	}
	return StatusUpdate{Task: updated, PreviousStatus: current.Status}, nil
}
