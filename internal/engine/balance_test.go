package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finanzas/internal/core"
)

func TestReconcile(t *testing.T) {
	cases := []struct {
		name                        string
		incomes, expenses, savings  int64
		wantBalance, wantNetBalance int64
	}{
		{"typical", 5000, 2000, 500, 3000, 2500},
		{"all zero", 0, 0, 0, 0, 0},
		{"savings push net negative", 1000, 800, 400, 200, -200},
		{"expenses exceed incomes", 100, 300, 50, -200, -250},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Reconcile(
				decimal.NewFromInt(tc.incomes),
				decimal.NewFromInt(tc.expenses),
				decimal.NewFromInt(tc.savings),
			)
			if !got.Balance.Equal(decimal.NewFromInt(tc.wantBalance)) {
				t.Errorf("balance = %s, want %d", got.Balance, tc.wantBalance)
			}
			if !got.NetBalance.Equal(decimal.NewFromInt(tc.wantNetBalance)) {
				t.Errorf("netBalance = %s, want %d", got.NetBalance, tc.wantNetBalance)
			}
			// netBalance is always I - E - S
			direct := decimal.NewFromInt(tc.incomes - tc.expenses - tc.savings)
			if !got.NetBalance.Equal(direct) {
				t.Errorf("netBalance = %s, direct I-E-S = %s", got.NetBalance, direct)
			}
		})
	}
}

func TestSumSavingsIncludesUnlinkedEntries(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	entries := []core.SavingEntry{
		{Amount: decimal.NewFromInt(100), Date: now, SavingGoalID: 1},
		{Amount: decimal.NewFromInt(50), Date: now}, // no goal reference
		{Amount: decimal.NewFromInt(25), Date: now, SavingGoalID: 2},
	}
	if got := SumSavings(entries); !got.Equal(decimal.NewFromInt(175)) {
		t.Fatalf("total savings = %s, want 175", got)
	}
}
