package core

import "github.com/shopspring/decimal"

// CategoryBucket is an amount aggregated under one category label.
type CategoryBucket struct {
	CategoryName string          `json:"categoryName"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
}

// PeriodSummary holds scalar totals and per-category breakdowns for a fixed
// set of trailing windows, all derived from one immutable snapshot of
// transactions. It is never partially updated: every refresh produces a
// whole new value.
type PeriodSummary struct {
	Total   decimal.Decimal `json:"total"`
	Weekly  decimal.Decimal `json:"weekly"`
	Monthly decimal.Decimal `json:"monthly"`
	Yearly  decimal.Decimal `json:"yearly"`

	ByCategory        []CategoryBucket `json:"byCategory"`
	WeeklyByCategory  []CategoryBucket `json:"weeklyByCategory"`
	MonthlyByCategory []CategoryBucket `json:"monthlyByCategory"`
	YearlyByCategory  []CategoryBucket `json:"yearlyByCategory"`
}

// TrendPoint is one time bucket of a trend series, holding the summed
// incomes, expenses and savings that fall inside it.
type TrendPoint struct {
	Label    string          `json:"label"`
	Incomes  decimal.Decimal `json:"incomes"`
	Expenses decimal.Decimal `json:"expenses"`
	Savings  decimal.Decimal `json:"savings"`
}

// Balance combines the three ledger totals into the two balance figures.
// NetBalance deducts savings a second time beyond the expense ledger:
// money set aside is not spent, but not available either.
type Balance struct {
	TotalIncomes  decimal.Decimal `json:"totalIncomes"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	TotalSavings  decimal.Decimal `json:"totalSavings"`
	Balance       decimal.Decimal `json:"balance"`
	NetBalance    decimal.Decimal `json:"netBalance"`
}

// GoalProgress is a SavingGoal annotated with derived progress fields.
// The derived fields are recomputed on every refresh, never persisted.
type GoalProgress struct {
	SavingGoal
	ComputedTotal   decimal.Decimal `json:"totalSaved"`
	ProgressPercent decimal.Decimal `json:"progressPercent"`
	RemainingDays   int             `json:"remainingDays"`
	Status          GoalStatus      `json:"status"`
}

// GoalStatus is the discrete classification of a goal's progress.
type GoalStatus string

const (
	StatusOnTrack   GoalStatus = "OnTrack"
	StatusNear      GoalStatus = "Near"
	StatusLate      GoalStatus = "Late"
	StatusCompleted GoalStatus = "Completed"
)

// AlertLevel classifies an alert event for the notification sink.
type AlertLevel string

const (
	AlertInfo    AlertLevel = "info"
	AlertSuccess AlertLevel = "success"
	AlertError   AlertLevel = "error"
)

// AlertEvent is a one-shot notification emitted by the goal engine.
type AlertEvent struct {
	GoalID  int64      `json:"goalId"`
	Level   AlertLevel `json:"level"`
	Message string     `json:"message"`
}
