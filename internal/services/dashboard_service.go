package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"finanzas/internal/cache"
	"finanzas/internal/core"
	"finanzas/internal/engine"
)

// DashboardStore is the storage surface the dashboard needs
type DashboardStore interface {
	ListIncomes(ctx context.Context) ([]core.Transaction, error)
	ListExpenses(ctx context.Context) ([]core.Transaction, error)
	ListSavings(ctx context.Context) ([]core.SavingEntry, error)
}

// Snapshot holds every list the aggregations are computed from
type Snapshot struct {
	Incomes  []core.Transaction
	Expenses []core.Transaction
	Savings  []core.SavingEntry
}

const snapshotCacheKey = "snapshot"

// DashboardService computes balances, period summaries and trends from
// the stored transactions. Snapshots are cached between writes.
type DashboardService struct {
	store       DashboardStore
	snapshots   *cache.LRUCache[Snapshot]
	hiddenLabel string
	locale      string
	now         func() time.Time
}

func NewDashboardService(store DashboardStore, snapshots *cache.LRUCache[Snapshot], hiddenLabel, locale string) *DashboardService {
	return &DashboardService{
		store:       store,
		snapshots:   snapshots,
		hiddenLabel: hiddenLabel,
		locale:      locale,
		now:         time.Now,
	}
}

// WithClock overrides the service clock. Used in tests.
func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

// FetchAll loads incomes, expenses and savings concurrently
func (s *DashboardService) FetchAll(ctx context.Context) (Snapshot, error) {
	if s.snapshots != nil {
		if snap, ok := s.snapshots.Get(snapshotCacheKey); ok {
			return snap, nil
		}
	}

	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		incomes, err := s.store.ListIncomes(gctx)
		if err != nil {
			return fmt.Errorf("list incomes: %w", err)
		}
		snap.Incomes = incomes
		return nil
	})
	g.Go(func() error {
		expenses, err := s.store.ListExpenses(gctx)
		if err != nil {
			return fmt.Errorf("list expenses: %w", err)
		}
		snap.Expenses = expenses
		return nil
	})
	g.Go(func() error {
		savings, err := s.store.ListSavings(gctx)
		if err != nil {
			return fmt.Errorf("list savings: %w", err)
		}
		snap.Savings = savings
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	if s.snapshots != nil {
		s.snapshots.Set(snapshotCacheKey, snap)
	}
	return snap, nil
}

// Invalidate drops the cached snapshot. Call after any write.
func (s *DashboardService) Invalidate() {
	if s.snapshots != nil {
		s.snapshots.Clear()
	}
}

// Expenses returns the raw expense list with hidden entries removed
func (s *DashboardService) Expenses(ctx context.Context) ([]core.Transaction, error) {
	snap, err := s.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	return engine.FilterHidden(snap.Expenses, s.hiddenLabel), nil
}

// Balance reconciles all-time totals into the net balance
func (s *DashboardService) Balance(ctx context.Context) (core.Balance, error) {
	snap, err := s.FetchAll(ctx)
	if err != nil {
		return core.Balance{}, err
	}

	incomes := engine.Summarize(snap.Incomes, s.now())
	expenses := engine.Summarize(snap.Expenses, s.now())
	savings := engine.SumSavings(snap.Savings)

	return engine.Reconcile(incomes.Total, expenses.Total, savings), nil
}

// ExpensesSummary aggregates expenses per window with the hidden
// category removed from every breakdown and total
func (s *DashboardService) ExpensesSummary(ctx context.Context) (core.PeriodSummary, error) {
	snap, err := s.FetchAll(ctx)
	if err != nil {
		return core.PeriodSummary{}, err
	}

	summary := engine.Summarize(snap.Expenses, s.now())
	return engine.ExcludeHidden(summary, s.hiddenLabel), nil
}

// IncomesSummary aggregates incomes per window
func (s *DashboardService) IncomesSummary(ctx context.Context) (core.PeriodSummary, error) {
	snap, err := s.FetchAll(ctx)
	if err != nil {
		return core.PeriodSummary{}, err
	}

	return engine.Summarize(snap.Incomes, s.now()), nil
}

// Trend bucketizes all three series for the requested range. The expense
// series carries the same hidden-category filter as the summaries, so the
// chart never shows money the breakdown hides.
func (s *DashboardService) Trend(ctx context.Context, rng engine.Range) (engine.Trend, error) {
	snap, err := s.FetchAll(ctx)
	if err != nil {
		return engine.Trend{}, err
	}

	expenses := engine.FilterHidden(snap.Expenses, s.hiddenLabel)
	return engine.BuildTrend(snap.Incomes, expenses, snap.Savings, rng, s.locale, s.now()), nil
}
