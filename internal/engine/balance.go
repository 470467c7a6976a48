package engine

import (
	"github.com/shopspring/decimal"

	"finanzas/internal/core"
)

// Reconcile combines the three ledger totals into a Balance.
//
//	balance    = totalIncomes - totalExpenses
//	netBalance = balance - totalSavings
//
// Savings are money already set aside: not spent, but not available, so the
// net figure deducts them beyond the expense ledger. There are no failure
// modes; absent inputs are zero decimals.
func Reconcile(totalIncomes, totalExpenses, totalSavings decimal.Decimal) core.Balance {
	balance := totalIncomes.Sub(totalExpenses)
	return core.Balance{
		TotalIncomes:  totalIncomes,
		TotalExpenses: totalExpenses,
		TotalSavings:  totalSavings,
		Balance:       balance,
		NetBalance:    balance.Sub(totalSavings),
	}
}

// SumSavings totals a savings list, including entries not linked to any goal.
func SumSavings(entries []core.SavingEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total
}
