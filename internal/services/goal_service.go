package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"finanzas/internal/core"
	"finanzas/internal/engine"
)

// GoalStore is the storage surface goal tracking needs
type GoalStore interface {
	ListGoals(ctx context.Context) ([]core.SavingGoal, error)
	GetGoal(ctx context.Context, id int64) (core.SavingGoal, error)
	CreateGoal(ctx context.Context, g core.SavingGoal) (core.SavingGoal, error)
	UpdateGoal(ctx context.Context, g core.SavingGoal) (core.SavingGoal, error)
	DeleteGoal(ctx context.Context, id int64) error
	ListSavings(ctx context.Context) ([]core.SavingEntry, error)
}

// AlertPublisher pushes goal alerts to the notification queue
type AlertPublisher interface {
	PublishGoalAlert(ctx context.Context, goalID int64, level, message string) error
}

// GoalService tracks saving goal progress and publishes status alerts.
// It owns the alert deduplication state across recalculations.
type GoalService struct {
	store     GoalStore
	publisher AlertPublisher
	now       func() time.Time

	mu     sync.Mutex
	alerts engine.AlertState
}

func NewGoalService(store GoalStore, publisher AlertPublisher) *GoalService {
	return &GoalService{
		store:     store,
		publisher: publisher,
		now:       time.Now,
		alerts:    engine.NewAlertState(),
	}
}

// WithClock overrides the service clock. Used in tests.
func (s *GoalService) WithClock(now func() time.Time) *GoalService {
	s.now = now
	return s
}

// ListProgress recalculates progress for every goal, advances the alert
// state and publishes any newly fired alerts
func (s *GoalService) ListProgress(ctx context.Context, filter engine.GoalFilter, sortBy engine.GoalSort) ([]core.GoalProgress, error) {
	goals, err := s.store.ListGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	savings, err := s.store.ListSavings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list savings: %w", err)
	}

	s.mu.Lock()
	progress, next, events := engine.Recalculate(goals, savings, s.alerts, s.now())
	s.alerts = next
	s.mu.Unlock()

	s.publishAlerts(ctx, events)

	progress = engine.FilterGoals(progress, filter)
	return engine.SortGoals(progress, sortBy), nil
}

// GetProgress recalculates progress for a single goal without touching
// the alert state
func (s *GoalService) GetProgress(ctx context.Context, id int64) (core.GoalProgress, error) {
	goal, err := s.store.GetGoal(ctx, id)
	if err != nil {
		return core.GoalProgress{}, fmt.Errorf("get goal: %w", err)
	}
	savings, err := s.store.ListSavings(ctx)
	if err != nil {
		return core.GoalProgress{}, fmt.Errorf("list savings: %w", err)
	}

	total := goal.TotalSaved
	referenced := false
	linked := decimal.Zero
	for _, entry := range savings {
		if entry.SavingGoalID == goal.ID {
			referenced = true
			linked = linked.Add(entry.Amount)
		}
	}
	if referenced {
		total = linked
	}

	return engine.Progress(goal, total, s.now()), nil
}

func (s *GoalService) publishAlerts(ctx context.Context, events []core.AlertEvent) {
	if len(events) == 0 {
		return
	}
	if s.publisher == nil {
		slog.WarnContext(ctx, "Alert publisher not available, dropping goal alerts", "count", len(events))
		return
	}

	for _, e := range events {
		if err := s.publisher.PublishGoalAlert(ctx, e.GoalID, string(e.Level), e.Message); err != nil {
			// Alerts are best effort, progress listing must not fail
			slog.ErrorContext(ctx, "Failed to publish goal alert",
				"goal_id", e.GoalID,
				"level", string(e.Level),
				"error", err)
		}
	}
}

// CreateGoal validates and stores a new saving goal
func (s *GoalService) CreateGoal(ctx context.Context, g core.SavingGoal) (core.SavingGoal, error) {
	if err := g.Validate(); err != nil {
		return core.SavingGoal{}, err
	}

	created, err := s.store.CreateGoal(ctx, g)
	if err != nil {
		return core.SavingGoal{}, fmt.Errorf("create goal: %w", err)
	}
	return created, nil
}

// UpdateGoal validates and stores goal changes
func (s *GoalService) UpdateGoal(ctx context.Context, g core.SavingGoal) (core.SavingGoal, error) {
	if err := g.Validate(); err != nil {
		return core.SavingGoal{}, err
	}

	updated, err := s.store.UpdateGoal(ctx, g)
	if err != nil {
		return core.SavingGoal{}, fmt.Errorf("update goal: %w", err)
	}
	return updated, nil
}

// DeleteGoal removes a goal and forgets its alert history so a
// recreated goal with the same ID can alert again
func (s *GoalService) DeleteGoal(ctx context.Context, id int64) error {
	if err := s.store.DeleteGoal(ctx, id); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}

	s.mu.Lock()
	s.alerts = s.alerts.DropGoal(id)
	s.mu.Unlock()

	return nil
}
