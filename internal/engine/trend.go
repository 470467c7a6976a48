package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"finanzas/internal/core"
)

// Range selects the span and granularity of a trend series.
type Range string

const (
	Range7D  Range = "7d"
	Range30D Range = "30d"
	Range3M  Range = "3m"
	Range6M  Range = "6m"
	Range12M Range = "12m"
)

// ParseRange validates a range string coming from the API boundary.
func ParseRange(s string) (Range, error) {
	switch Range(s) {
	case Range7D, Range30D, Range3M, Range6M, Range12M:
		return Range(s), nil
	}
	return "", fmt.Errorf("unsupported trend range %q", s)
}

func (r Range) days() int {
	switch r {
	case Range7D:
		return 7
	case Range30D:
		return 30
	}
	return 0
}

func (r Range) months() int {
	switch r {
	case Range3M:
		return 3
	case Range6M:
		return 6
	case Range12M:
		return 12
	}
	return 0
}

// Trend is an ordered series of time buckets plus the largest single value
// across all three series. MaxValue exists purely for proportional scaling
// by a chart consumer; zero means there is nothing to plot.
type Trend struct {
	Points   []core.TrendPoint `json:"points"`
	MaxValue decimal.Decimal   `json:"maxValue"`
}

// Bucket labels are localized abbreviated names; "es" is the default and
// matches the product's Spanish-facing UI.
var (
	weekdayAbbrev = map[string][7]string{
		"es": {"Dom", "Lun", "Mar", "Mie", "Jue", "Vie", "Sab"},
		"en": {"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	}
	monthAbbrev = map[string][12]string{
		"es": {"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"},
		"en": {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	}
)

func dayLabel(t time.Time, locale string) string {
	names, ok := weekdayAbbrev[locale]
	if !ok {
		names = weekdayAbbrev["es"]
	}
	return names[int(t.Weekday())]
}

func monthLabel(t time.Time, locale string) string {
	names, ok := monthAbbrev[locale]
	if !ok {
		names = monthAbbrev["es"]
	}
	return names[int(t.Month())-1]
}

// BuildTrend buckets the three series over the requested range, newest
// bucket last. Daily ranges (7d, 30d) bucket per calendar day in local
// time; month ranges bucket per calendar month, aligned to the first day
// of each of the trailing N months including the current one.
func BuildTrend(incomes, expenses []core.Transaction, savings []core.SavingEntry, rng Range, locale string, now time.Time) Trend {
	var points []core.TrendPoint
	if days := rng.days(); days > 0 {
		points = dailyPoints(incomes, expenses, savings, days, rng, locale, now)
	} else {
		points = monthlyPoints(incomes, expenses, savings, rng.months(), locale, now)
	}

	maxValue := decimal.Zero
	for _, p := range points {
		maxValue = decimal.Max(maxValue, p.Incomes, p.Expenses, p.Savings)
	}
	return Trend{Points: points, MaxValue: maxValue}
}

type dayKey struct{ year, month, day int }

func toDayKey(t time.Time) dayKey {
	return dayKey{t.Year(), int(t.Month()), t.Day()}
}

func dailyPoints(incomes, expenses []core.Transaction, savings []core.SavingEntry, days int, rng Range, locale string, now time.Time) []core.TrendPoint {
	incomeByDay := make(map[dayKey]decimal.Decimal)
	expenseByDay := make(map[dayKey]decimal.Decimal)
	savingByDay := make(map[dayKey]decimal.Decimal)
	for _, it := range incomes {
		k := toDayKey(it.Date)
		incomeByDay[k] = incomeByDay[k].Add(it.Amount)
	}
	for _, it := range expenses {
		k := toDayKey(it.Date)
		expenseByDay[k] = expenseByDay[k].Add(it.Amount)
	}
	for _, s := range savings {
		k := toDayKey(s.Date)
		savingByDay[k] = savingByDay[k].Add(s.Amount)
	}

	points := make([]core.TrendPoint, 0, days)
	today := core.Midnight(now)
	for i := days - 1; i >= 0; i-- {
		current := today.AddDate(0, 0, -i)
		label := dayLabel(current, locale)
		if rng == Range30D {
			label = fmt.Sprintf("%02d/%02d", current.Day(), int(current.Month()))
		}
		k := toDayKey(current)
		points = append(points, core.TrendPoint{
			Label:    label,
			Incomes:  incomeByDay[k],
			Expenses: expenseByDay[k],
			Savings:  savingByDay[k],
		})
	}
	return points
}

type monthKey struct{ year, month int }

func toMonthKey(t time.Time) monthKey {
	return monthKey{t.Year(), int(t.Month())}
}

func monthlyPoints(incomes, expenses []core.Transaction, savings []core.SavingEntry, months int, locale string, now time.Time) []core.TrendPoint {
	incomeByMonth := make(map[monthKey]decimal.Decimal)
	expenseByMonth := make(map[monthKey]decimal.Decimal)
	savingByMonth := make(map[monthKey]decimal.Decimal)
	for _, it := range incomes {
		k := toMonthKey(it.Date)
		incomeByMonth[k] = incomeByMonth[k].Add(it.Amount)
	}
	for _, it := range expenses {
		k := toMonthKey(it.Date)
		expenseByMonth[k] = expenseByMonth[k].Add(it.Amount)
	}
	for _, s := range savings {
		k := toMonthKey(s.Date)
		savingByMonth[k] = savingByMonth[k].Add(s.Amount)
	}

	points := make([]core.TrendPoint, 0, months)
	for i := months - 1; i >= 0; i-- {
		current := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, now.Location())
		k := toMonthKey(current)
		points = append(points, core.TrendPoint{
			Label:    monthLabel(current, locale),
			Incomes:  incomeByMonth[k],
			Expenses: expenseByMonth[k],
			Savings:  savingByMonth[k],
		})
	}
	return points
}
