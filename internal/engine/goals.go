package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"finanzas/internal/core"
)

var (
	hundred = decimal.NewFromInt(100)
	near    = decimal.NewFromInt(80)
	almost  = decimal.NewFromInt(90)
)

// AlertState carries the per-goal status history and the set of one-time
// alert keys that already fired. It is an explicit value: Recalculate takes
// the prior state and returns the next one, so the engine holds no ambient
// mutable state. The caller keeps exactly one instance per session and
// drops per-goal entries when a goal is deleted.
type AlertState struct {
	lastStatus map[int64]core.GoalStatus
	fired      map[string]bool
}

// NewAlertState returns an empty state for a fresh session.
func NewAlertState() AlertState {
	return AlertState{
		lastStatus: make(map[int64]core.GoalStatus),
		fired:      make(map[string]bool),
	}
}

func (s AlertState) clone() AlertState {
	next := NewAlertState()
	for id, st := range s.lastStatus {
		next.lastStatus[id] = st
	}
	for k, v := range s.fired {
		next.fired[k] = v
	}
	return next
}

// DropGoal clears the history and fired keys for a deleted goal. Only
// deletion clears them; a goal leaving Late or Near keeps its keys so the
// one-time alerts never repeat.
func (s AlertState) DropGoal(id int64) AlertState {
	next := s.clone()
	delete(next.lastStatus, id)
	delete(next.fired, nearKey(id))
	delete(next.fired, lateKey(id))
	return next
}

func nearKey(id int64) string { return fmt.Sprintf("near-%d", id) }
func lateKey(id int64) string { return fmt.Sprintf("late-%d", id) }

// Progress computes the derived fields for one goal. totalSaved is the sum
// of savings entries referencing the goal; callers pass the goal's stored
// TotalSaved as fallback when nothing references it. Status precedence is
// fixed: Completed beats Late beats Near beats OnTrack.
func Progress(goal core.SavingGoal, totalSaved decimal.Decimal, now time.Time) core.GoalProgress {
	today := core.Midnight(now)
	target := core.Midnight(goal.TargetDate)

	remainingDays := int(math.Ceil(target.Sub(today).Hours() / 24))
	percent := totalSaved.Div(goal.TargetAmount).Mul(hundred)

	status := core.StatusOnTrack
	switch {
	case percent.GreaterThanOrEqual(hundred):
		status = core.StatusCompleted
	case today.After(target):
		status = core.StatusLate
	case percent.GreaterThanOrEqual(near) || remainingDays <= 14:
		status = core.StatusNear
	}

	return core.GoalProgress{
		SavingGoal:      goal,
		ComputedTotal:   totalSaved,
		ProgressPercent: percent,
		RemainingDays:   remainingDays,
		Status:          status,
	}
}

// Recalculate annotates every goal with its progress and diffs the computed
// statuses against the prior alert state, emitting transition alerts and
// one-time threshold alerts. It returns the annotated goals, the next alert
// state and the events to deliver, leaving the prior state untouched.
//
// A goal seen for the first time emits no transition alert (there is no
// prior value to compare), but threshold alerts may still fire for it.
// Both a transition alert and a threshold alert can fire for the same goal
// on the same recomputation; that duplication is intentional.
func Recalculate(goals []core.SavingGoal, savings []core.SavingEntry, prior AlertState, now time.Time) ([]core.GoalProgress, AlertState, []core.AlertEvent) {
	savedByGoal := make(map[int64]decimal.Decimal)
	referenced := make(map[int64]bool)
	for _, s := range savings {
		if s.SavingGoalID == 0 {
			continue
		}
		savedByGoal[s.SavingGoalID] = savedByGoal[s.SavingGoalID].Add(s.Amount)
		referenced[s.SavingGoalID] = true
	}

	next := prior.clone()
	annotated := make([]core.GoalProgress, 0, len(goals))
	var events []core.AlertEvent

	for _, goal := range goals {
		totalSaved := goal.TotalSaved
		if referenced[goal.ID] {
			totalSaved = savedByGoal[goal.ID]
		}
		gp := Progress(goal, totalSaved, now)
		annotated = append(annotated, gp)

		if prev, known := next.lastStatus[goal.ID]; known && prev != gp.Status {
			if ev, ok := transitionEvent(gp); ok {
				events = append(events, ev)
			}
		}
		next.lastStatus[goal.ID] = gp.Status

		if gp.Status == core.StatusLate && !next.fired[lateKey(goal.ID)] {
			events = append(events, core.AlertEvent{
				GoalID:  goal.ID,
				Level:   core.AlertError,
				Message: fmt.Sprintf("La meta %q esta retrasada", goal.Name),
			})
			next.fired[lateKey(goal.ID)] = true
		}
		if gp.ProgressPercent.GreaterThanOrEqual(almost) && gp.Status != core.StatusCompleted && !next.fired[nearKey(goal.ID)] {
			events = append(events, core.AlertEvent{
				GoalID:  goal.ID,
				Level:   core.AlertInfo,
				Message: fmt.Sprintf("%q va %s%% completada", goal.Name, gp.ProgressPercent.Round(0)),
			})
			next.fired[nearKey(goal.ID)] = true
		}
	}

	return annotated, next, events
}

func transitionEvent(gp core.GoalProgress) (core.AlertEvent, bool) {
	switch gp.Status {
	case core.StatusCompleted:
		return core.AlertEvent{GoalID: gp.ID, Level: core.AlertSuccess,
			Message: fmt.Sprintf("Meta %q completada", gp.Name)}, true
	case core.StatusLate:
		return core.AlertEvent{GoalID: gp.ID, Level: core.AlertError,
			Message: fmt.Sprintf("Meta %q esta retrasada", gp.Name)}, true
	case core.StatusNear:
		return core.AlertEvent{GoalID: gp.ID, Level: core.AlertInfo,
			Message: fmt.Sprintf("Meta %q esta cerca de cumplirse", gp.Name)}, true
	}
	return core.AlertEvent{}, false
}

// GoalFilter selects which annotated goals a listing shows.
type GoalFilter string

const (
	FilterAll       GoalFilter = "all"
	FilterActive    GoalFilter = "active"
	FilterNear      GoalFilter = "near"
	FilterLate      GoalFilter = "late"
	FilterCompleted GoalFilter = "completed"
)

// FilterGoals returns the goals matching the filter, preserving order.
func FilterGoals(goals []core.GoalProgress, f GoalFilter) []core.GoalProgress {
	out := make([]core.GoalProgress, 0, len(goals))
	for _, g := range goals {
		switch f {
		case FilterActive:
			if g.Status != core.StatusCompleted && g.IsActive {
				out = append(out, g)
			}
		case FilterNear:
			if g.Status == core.StatusNear {
				out = append(out, g)
			}
		case FilterLate:
			if g.Status == core.StatusLate {
				out = append(out, g)
			}
		case FilterCompleted:
			if g.Status == core.StatusCompleted {
				out = append(out, g)
			}
		default:
			out = append(out, g)
		}
	}
	return out
}

// GoalSort orders an annotated goal listing.
type GoalSort string

const (
	SortTargetDate     GoalSort = "date"
	SortTargetDateDesc GoalSort = "date-desc"
	SortProgress       GoalSort = "progress"
)

// SortGoals returns a sorted copy; the input slice is not mutated.
func SortGoals(goals []core.GoalProgress, by GoalSort) []core.GoalProgress {
	out := make([]core.GoalProgress, len(goals))
	copy(out, goals)
	switch by {
	case SortTargetDateDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].TargetDate.After(out[j].TargetDate) })
	case SortProgress:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].ProgressPercent.GreaterThan(out[j].ProgressPercent)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].TargetDate.Before(out[j].TargetDate) })
	}
	return out
}
