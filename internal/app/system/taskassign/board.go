package taskassign

import (
	"context"
	"strings"

	"github.com/dalemusser/mahallehub/internal/app/system/authz"
	"github.com/dalemusser/mahallehub/internal/app/system/weeks"
	"github.com/dalemusser/mahallehub/internal/domain/models"
	"go.uber.org/zap"
)

// BoardStore serves the weekly task board.
type BoardStore interface {
	ListByNeighborhoodWeek(ctx context.Context, neighborhood, week string) ([]models.CallTask, error)
	StatsByWeek(ctx context.Context, week string, neighborhoods []string) ([]models.NeighborhoodWeekStats, error)
	DeleteByNeighborhoodWeek(ctx context.Context, neighborhood, week string) (int64, error)
}

// Board exposes scoped reads and the bulk delete of a week's tasks.
type Board struct {
	tasks BoardStore
	scope ScopeChecker
	log   *zap.Logger
}

func NewBoard(tasks BoardStore, scope ScopeChecker, logger *zap.Logger) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Board{tasks: tasks, scope: scope, log: logger}
}

func checkWeek(week string) (string, error) {
	week = strings.TrimSpace(week)
	if week == "" {
		return "", validationf("week is required")
	}
	if !weeks.Valid(week) {
		return "", validationf("week %q is not a YYYY-Www label", week)
	}
	return week, nil
}

// ListTasks returns the tasks of a readable neighborhood for week.
func (b *Board) ListTasks(ctx context.Context, neighborhood, week string, caller authz.Identity) ([]models.CallTask, error) {
	if caller.NationalID == "" {
		return nil, ErrUnauthorized
	}
	neighborhood = strings.TrimSpace(neighborhood)
	if neighborhood == "" {
		return nil, validationf("neighborhood is required")
	}
	week, err := checkWeek(week)
	if err != nil {
		return nil, err
	}
	ok, err := b.scope.CanReadNeighborhood(ctx, caller, neighborhood)
	if err != nil {
		return nil, storage("scope check", err)
	}
	if !ok {
		return nil, ErrUnauthorized
	}

	tasks, err := b.tasks.ListByNeighborhoodWeek(ctx, neighborhood, week)
	if err != nil {
		b.log.Error("list call tasks", zap.String("neighborhood", neighborhood), zap.String("week", week), zap.Error(err))
		return nil, storage("list tasks", err)
	}
	if tasks == nil {
		tasks = []models.CallTask{}
	}
	return tasks, nil
}

// WeekStats returns per-neighborhood counts for week over the caller's scope.
func (b *Board) WeekStats(ctx context.Context, week string, caller authz.Identity) ([]models.NeighborhoodWeekStats, error) {
	if caller.NationalID == "" {
		return nil, ErrUnauthorized
	}
	week, err := checkWeek(week)
	if err != nil {
		return nil, err
	}
	scope, err := b.scope.Calculate(ctx, caller)
	if err != nil {
		return nil, storage("scope", err)
	}
	if scope.Empty() {
		return nil, ErrUnauthorized
	}

	stats, err := b.tasks.StatsByWeek(ctx, week, scope.Filter())
	if err != nil {
		b.log.Error("call task stats", zap.String("week", week), zap.Error(err))
		return nil, storage("week stats", err)
	}
	if stats == nil {
		stats = []models.NeighborhoodWeekStats{}
	}
	return stats, nil
}

// DeleteWeek removes every task of a writable neighborhood for week.
func (b *Board) DeleteWeek(ctx context.Context, neighborhood, week string, caller authz.Identity) (int64, error) {
	if caller.NationalID == "" {
		return 0, ErrUnauthorized
	}
	neighborhood = strings.TrimSpace(neighborhood)
	if neighborhood == "" {
		return 0, validationf("neighborhood is required")
	}
	week, err := checkWeek(week)
	if err != nil {
		return 0, err
	}
	if err := authorizeWrite(ctx, b.scope, caller, neighborhood); err != nil {
		return 0, err
	}

	n, err := b.tasks.DeleteByNeighborhoodWeek(ctx, neighborhood, week)
	if err != nil {
		b.log.Error("delete call tasks", zap.String("neighborhood", neighborhood), zap.String("week", week), zap.Error(err))
		return 0, storage("delete tasks", err)
	}
	b.log.Info("call tasks deleted",
		zap.String("neighborhood", neighborhood),
		zap.String("week", week),
		zap.Int64("deleted", n))
	return n, nil
}
