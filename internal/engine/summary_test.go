package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finanzas/internal/core"
)

func tx(amount float64, category string, date time.Time) core.Transaction {
	return core.Transaction{
		Description:  "tx",
		Amount:       decimal.NewFromFloat(amount),
		Date:         date,
		CategoryName: category,
	}
}

func bucketAmount(buckets []core.CategoryBucket, name string) (decimal.Decimal, bool) {
	for _, b := range buckets {
		if b.CategoryName == name {
			return b.TotalAmount, true
		}
	}
	return decimal.Zero, false
}

func sumBuckets(buckets []core.CategoryBucket) decimal.Decimal {
	total := decimal.Zero
	for _, b := range buckets {
		total = total.Add(b.TotalAmount)
	}
	return total
}

func TestGroupByCategory(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	items := []core.Transaction{
		tx(100, "Comida", now),
		tx(50, "Comida", now),
		tx(30, "Transporte", now),
		tx(20, "", now),
		tx(5, "   ", now),
	}

	buckets := GroupByCategory(items)
	if len(buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(buckets))
	}
	if got, _ := bucketAmount(buckets, "Comida"); !got.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("Comida = %s, want 150", got)
	}
	if got, _ := bucketAmount(buckets, core.FallbackCategory); !got.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("fallback = %s, want 25", got)
	}
	// Largest bucket first
	if buckets[0].CategoryName != "Comida" {
		t.Fatalf("expected Comida first, got %s", buckets[0].CategoryName)
	}
}

func TestGroupByCategoryCaseSensitiveLabels(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	buckets := GroupByCategory([]core.Transaction{
		tx(10, "comida", now),
		tx(20, "Comida", now),
	})
	if len(buckets) != 2 {
		t.Fatalf("raw labels aggregate case-sensitively; got %d buckets", len(buckets))
	}
}

func TestSummarizeWindows(t *testing.T) {
	// Scenario: expenses of 100 (catA) and 50 (catB) today, 30 (catA) 40 days
	// ago but still this year.
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	items := []core.Transaction{
		tx(100, "catA", now),
		tx(50, "catB", now),
		tx(30, "catA", now.AddDate(0, 0, -40)),
	}

	s := Summarize(items, now)

	if !s.Weekly.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("weekly = %s, want 150", s.Weekly)
	}
	if !s.Monthly.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("monthly = %s, want 150", s.Monthly)
	}
	if !s.Yearly.Equal(decimal.NewFromInt(180)) {
		t.Fatalf("yearly = %s, want 180", s.Yearly)
	}
	if !s.Total.Equal(decimal.NewFromInt(180)) {
		t.Fatalf("total = %s, want 180", s.Total)
	}

	if got, _ := bucketAmount(s.MonthlyByCategory, "catA"); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("monthly catA = %s, want 100", got)
	}
	if got, _ := bucketAmount(s.MonthlyByCategory, "catB"); !got.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("monthly catB = %s, want 50", got)
	}
	if got, _ := bucketAmount(s.YearlyByCategory, "catA"); !got.Equal(decimal.NewFromInt(130)) {
		t.Fatalf("yearly catA = %s, want 130", got)
	}
}

func TestSummarizeBoundariesInclusive(t *testing.T) {
	now := time.Date(2025, 6, 15, 23, 30, 0, 0, time.UTC)
	cases := []struct {
		name     string
		date     time.Time
		inWeek   bool
		inMonth  bool
		inYearly bool
	}{
		{"today", now, true, true, true},
		{"6 days ago early morning", time.Date(2025, 6, 9, 0, 30, 0, 0, time.UTC), true, true, true},
		{"7 days ago", time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC), false, true, true},
		{"29 days ago", time.Date(2025, 5, 17, 12, 0, 0, 0, time.UTC), false, true, true},
		{"30 days ago", time.Date(2025, 5, 16, 12, 0, 0, 0, time.UTC), false, false, true},
		{"january 1st", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), false, false, true},
		{"last year", time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC), false, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Summarize([]core.Transaction{tx(10, "c", tc.date)}, now)
			if got := s.Weekly.IsPositive(); got != tc.inWeek {
				t.Errorf("weekly inclusion = %v, want %v", got, tc.inWeek)
			}
			if got := s.Monthly.IsPositive(); got != tc.inMonth {
				t.Errorf("monthly inclusion = %v, want %v", got, tc.inMonth)
			}
			if got := s.Yearly.IsPositive(); got != tc.inYearly {
				t.Errorf("yearly inclusion = %v, want %v", got, tc.inYearly)
			}
		})
	}
}

func TestSummarizeBucketsMatchTotals(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	items := []core.Transaction{
		tx(100, "catA", now),
		tx(50, "catB", now.AddDate(0, 0, -3)),
		tx(75, "ahorros ocultos", now.AddDate(0, 0, -10)),
		tx(30, "", now.AddDate(0, 0, -40)),
		tx(12.5, "catA", now.AddDate(0, 0, -100)),
	}

	check := func(t *testing.T, s core.PeriodSummary) {
		t.Helper()
		pairs := []struct {
			name    string
			total   decimal.Decimal
			buckets []core.CategoryBucket
		}{
			{"weekly", s.Weekly, s.WeeklyByCategory},
			{"monthly", s.Monthly, s.MonthlyByCategory},
			{"yearly", s.Yearly, s.YearlyByCategory},
			{"total", s.Total, s.ByCategory},
		}
		for _, p := range pairs {
			if got := sumBuckets(p.buckets); !got.Equal(p.total) {
				t.Errorf("%s buckets sum to %s, scalar is %s", p.name, got, p.total)
			}
		}
	}

	s := Summarize(items, now)
	check(t, s)
	check(t, ExcludeHidden(s, "Ahorros Ocultos"))
}

func TestExcludeHidden(t *testing.T) {
	s := core.PeriodSummary{
		Monthly: decimal.NewFromInt(1000),
		MonthlyByCategory: []core.CategoryBucket{
			{CategoryName: "Comida", TotalAmount: decimal.NewFromInt(800)},
			{CategoryName: "Ahorros Ocultos", TotalAmount: decimal.NewFromInt(200)},
		},
	}

	got := ExcludeHidden(s, "ahorros ocultos")
	if !got.Monthly.Equal(decimal.NewFromInt(800)) {
		t.Fatalf("adjusted monthly = %s, want 800", got.Monthly)
	}
	if _, found := bucketAmount(got.MonthlyByCategory, "Ahorros Ocultos"); found {
		t.Fatalf("hidden bucket still present after exclusion")
	}
	// Input untouched
	if len(s.MonthlyByCategory) != 2 {
		t.Fatalf("input summary was mutated")
	}
}

func TestExcludeHiddenClampsAtZero(t *testing.T) {
	s := core.PeriodSummary{
		Weekly: decimal.NewFromInt(100),
		WeeklyByCategory: []core.CategoryBucket{
			{CategoryName: "oculto", TotalAmount: decimal.NewFromInt(150)},
		},
	}
	got := ExcludeHidden(s, "OCULTO")
	if !got.Weekly.IsZero() {
		t.Fatalf("adjusted weekly = %s, want 0", got.Weekly)
	}
}

func TestFilterHidden(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	items := []core.Transaction{
		tx(10, "Comida", now),
		tx(20, "Ahorros Ocultos", now),
		tx(30, "ahorros ocultos", now),
	}
	got := FilterHidden(items, "ahorros ocultos")
	if len(got) != 1 || got[0].CategoryName != "Comida" {
		t.Fatalf("expected only the visible transaction, got %v", got)
	}
}
