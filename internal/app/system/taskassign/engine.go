// Package taskassign creates weekly call tasks and tracks their outcome.
//
// The engine samples citizens of a neighborhood that have a phone and no task
// for the week yet, and inserts one pending task per sampled citizen. There is
// no batch transaction: each insert is atomic on its own and the unique
// (citizen_id, week) index settles races, so a concurrent run for the same
// week can leave a batch partially applied. That outcome is reported, not
// treated as a failure.
package taskassign

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/mahallehub/internal/app/policy/scopepolicy"
	"github.com/dalemusser/mahallehub/internal/app/system/authz"
	"github.com/dalemusser/mahallehub/internal/app/system/weeks"
	"github.com/dalemusser/mahallehub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultCount is used when a request asks for zero or fewer tasks.
const DefaultCount = 10

// CitizenSampler draws random eligible citizens.
type CitizenSampler interface {
	SampleEligible(ctx context.Context, neighborhood string, exclude []string, n int) ([]models.Citizen, error)
}

// TaskStore is the persistence the engine and tracker need.
type TaskStore interface {
	CitizenIDsForWeek(ctx context.Context, neighborhood, week string) ([]string, error)
	InsertIfAbsent(ctx context.Context, t models.CallTask) (bool, error)
}

// ScopeChecker answers access questions for an identity.
type ScopeChecker interface {
	Calculate(ctx context.Context, id authz.Identity) (scopepolicy.Scope, error)
	CanReadNeighborhood(ctx context.Context, id authz.Identity, neighborhood string) (bool, error)
	CanWriteNeighborhood(ctx context.Context, id authz.Identity, neighborhood string) (bool, error)
}

// Request asks for weekly tasks in one neighborhood.
type Request struct {
	Neighborhood string
	// Week is a YYYY-Www label; empty means the current week.
	Week string
	// Count <= 0 means the default count.
	Count int
}

// Outcome reports what one engine run did.
type Outcome struct {
	Week      string `json:"week"`
	BatchID   string `json:"batch_id"`
	Requested int    `json:"requested"`
	// Selected is how many citizens the sample returned.
	Selected int `json:"selected"`
	// Created is how many tasks were inserted.
	Created int `json:"created"`
	// Skipped counts selections that lost a race to an existing task.
	Skipped int `json:"skipped"`
	// Failed counts inserts that hit a storage error.
	Failed int `json:"failed"`
}

// Engine creates weekly call tasks.
type Engine struct {
	citizens     CitizenSampler
	tasks        TaskStore
	scope        ScopeChecker
	log          *zap.Logger
	defaultCount int
	now          func() time.Time
	newBatchID   func() string
}

// Option customizes an Engine.
type Option func(*Engine)

// WithDefaultCount overrides DefaultCount.
func WithDefaultCount(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.defaultCount = n
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(citizens CitizenSampler, tasks TaskStore, scope ScopeChecker, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		citizens:     citizens,
		tasks:        tasks,
		scope:        scope,
		log:          logger,
		defaultCount: DefaultCount,
		now:          time.Now,
		newBatchID:   func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// CurrentWeek returns the label of the current week.
func (e *Engine) CurrentWeek() string {
	return weeks.Current(e.now())
}

// normalize fills defaults and validates the request.
func (e *Engine) normalize(req Request) (Request, error) {
	req.Neighborhood = strings.TrimSpace(req.Neighborhood)
	req.Week = strings.TrimSpace(req.Week)
	if req.Neighborhood == "" {
		return req, validationf("neighborhood is required")
	}
	if req.Week == "" {
		req.Week = weeks.Current(e.now())
	} else if !weeks.Valid(req.Week) {
		return req, validationf("week %q is not a YYYY-Www label", req.Week)
	}
	if req.Count <= 0 {
		req.Count = e.defaultCount
	}
	return req, nil
}

// authorizeWrite fails with ErrUnauthorized unless caller may write neighborhood.
func authorizeWrite(ctx context.Context, scope ScopeChecker, caller authz.Identity, neighborhood string) error {
	if caller.NationalID == "" {
		return ErrUnauthorized
	}
	ok, err := scope.CanWriteNeighborhood(ctx, caller, neighborhood)
	if err != nil {
		return storage("scope check", err)
	}
	if !ok {
		return ErrUnauthorized
	}
	return nil
}

// CreateWeeklyTasks samples up to req.Count eligible citizens of the
// neighborhood and creates a pending task for each. It returns
// ErrNoEligibleCitizens, together with an Outcome, when nobody is left to call.
func (e *Engine) CreateWeeklyTasks(ctx context.Context, req Request, caller authz.Identity) (Outcome, error) {
	if caller.NationalID == "" {
		return Outcome{}, ErrUnauthorized
	}
	req, err := e.normalize(req)
	if err != nil {
		return Outcome{}, err
	}
	if err := authorizeWrite(ctx, e.scope, caller, req.Neighborhood); err != nil {
		return Outcome{}, err
	}

	out := Outcome{Week: req.Week, Requested: req.Count, BatchID: e.newBatchID()}
	log := e.log.With(
		zap.String("neighborhood", req.Neighborhood),
		zap.String("week", req.Week),
		zap.String("batch_id", out.BatchID),
	)

	exclude, err := e.tasks.CitizenIDsForWeek(ctx, req.Neighborhood, req.Week)
	if err != nil {
		log.Error("load exclusion set", zap.Error(err))
		return Outcome{}, storage("load exclusion set", err)
	}

	selected, err := e.citizens.SampleEligible(ctx, req.Neighborhood, exclude, req.Count)
	if err != nil {
		log.Error("sample eligible citizens", zap.Error(err))
		return Outcome{}, storage("sample citizens", err)
	}
	out.Selected = len(selected)
	if len(selected) == 0 {
		return out, ErrNoEligibleCitizens
	}

	now := e.now().UTC()
	for _, c := range selected {
		task := models.CallTask{
			ID:             primitive.NewObjectID(),
			CitizenID:      c.NationalID,
			CitizenName:    c.FullName,
			Neighborhood:   req.Neighborhood,
			Week:           req.Week,
			AssignedByID:   caller.NationalID,
			AssignedByName: caller.Name,
			BatchID:        out.BatchID,
			Status:         models.TaskPending,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if c.Phone != nil {
			task.Phone = *c.Phone
		}

		inserted, err := e.tasks.InsertIfAbsent(ctx, task)
		switch {
		case err != nil:
			out.Failed++
			log.Warn("insert call task", zap.String("citizen_id", c.NationalID), zap.Error(err))
		case inserted:
			out.Created++
		default:
			out.Skipped++
		}
	}

	log.Info("weekly call tasks created",
		zap.Int("requested", out.Requested),
		zap.Int("selected", out.Selected),
		zap.Int("created", out.Created),
		zap.Int("skipped", out.Skipped),
		zap.Int("failed", out.Failed))
	return out, nil
}
