// Package engine implements the financial aggregation and goal-tracking
// computations: reconciled balances, period-bucketed summaries, trend series
// and saving-goal progress. Every function is pure over in-memory lists;
// current time is always an explicit parameter and input slices are never
// mutated.
package engine

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finanzas/internal/core"
)

// GroupByCategory sums a transaction list per category label. Transactions
// without a label fall under core.FallbackCategory. The match on the raw
// label is case-sensitive; buckets come back sorted by descending amount
// (name as tiebreaker) so output is deterministic.
func GroupByCategory(items []core.Transaction) []core.CategoryBucket {
	totals := make(map[string]decimal.Decimal)
	for _, it := range items {
		key := it.CategoryLabel()
		totals[key] = totals[key].Add(it.Amount)
	}

	buckets := make([]core.CategoryBucket, 0, len(totals))
	for name, total := range totals {
		buckets = append(buckets, core.CategoryBucket{CategoryName: name, TotalAmount: total})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if c := buckets[i].TotalAmount.Cmp(buckets[j].TotalAmount); c != 0 {
			return c > 0
		}
		return buckets[i].CategoryName < buckets[j].CategoryName
	})
	return buckets
}

// Summarize computes the period summary for a transaction list at a given
// reference time. The three windows are evaluated independently against the
// same full list, so a transaction landing in more than one window counts
// in each of them. Window boundaries are inclusive and compared at day
// granularity (local midnight).
func Summarize(items []core.Transaction, now time.Time) core.PeriodSummary {
	today := core.Midnight(now)
	weekStart := today.AddDate(0, 0, -6)
	monthStart := today.AddDate(0, 0, -29)
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())

	var weekly, monthly, yearly []core.Transaction
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount)
		day := core.Midnight(it.Date)
		if !day.Before(weekStart) {
			weekly = append(weekly, it)
		}
		if !day.Before(monthStart) {
			monthly = append(monthly, it)
		}
		if !day.Before(yearStart) {
			yearly = append(yearly, it)
		}
	}

	return core.PeriodSummary{
		Total:             total,
		Weekly:            sumAmounts(weekly),
		Monthly:           sumAmounts(monthly),
		Yearly:            sumAmounts(yearly),
		ByCategory:        GroupByCategory(items),
		WeeklyByCategory:  GroupByCategory(weekly),
		MonthlyByCategory: GroupByCategory(monthly),
		YearlyByCategory:  GroupByCategory(yearly),
	}
}

func sumAmounts(items []core.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount)
	}
	return total
}

// ExcludeHidden removes buckets whose label matches hiddenLabel
// (case-insensitive) from every breakdown and subtracts each window's
// removed amount from that window's scalar total, clamped at zero.
// The input summary is left untouched.
func ExcludeHidden(s core.PeriodSummary, hiddenLabel string) core.PeriodSummary {
	out := s
	out.ByCategory, out.Total = dropHidden(s.ByCategory, s.Total, hiddenLabel)
	out.WeeklyByCategory, out.Weekly = dropHidden(s.WeeklyByCategory, s.Weekly, hiddenLabel)
	out.MonthlyByCategory, out.Monthly = dropHidden(s.MonthlyByCategory, s.Monthly, hiddenLabel)
	out.YearlyByCategory, out.Yearly = dropHidden(s.YearlyByCategory, s.Yearly, hiddenLabel)
	return out
}

func dropHidden(buckets []core.CategoryBucket, total decimal.Decimal, hiddenLabel string) ([]core.CategoryBucket, decimal.Decimal) {
	kept := make([]core.CategoryBucket, 0, len(buckets))
	removed := decimal.Zero
	for _, b := range buckets {
		if strings.EqualFold(b.CategoryName, hiddenLabel) {
			removed = removed.Add(b.TotalAmount)
			continue
		}
		kept = append(kept, b)
	}
	adjusted := total.Sub(removed)
	if adjusted.IsNegative() {
		adjusted = decimal.Zero
	}
	return kept, adjusted
}

// FilterHidden drops transactions whose category matches hiddenLabel
// (case-insensitive). Views listing raw transactions must apply this so
// that visible rows agree with the adjusted totals.
func FilterHidden(items []core.Transaction, hiddenLabel string) []core.Transaction {
	out := make([]core.Transaction, 0, len(items))
	for _, it := range items {
		if strings.EqualFold(it.CategoryName, hiddenLabel) {
			continue
		}
		out = append(out, it)
	}
	return out
}
