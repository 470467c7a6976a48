package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FallbackCategory is the label assigned to transactions without a category.
const FallbackCategory = "Sin categoria"

type (
	// Transaction is a single income or expense record. Which list it belongs
	// to (incomes vs expenses) implies the sign; Amount is always non-negative.
	Transaction struct {
		ID           int64           `json:"id"`
		Description  string          `json:"description"`
		Amount       decimal.Decimal `json:"amount"`
		Date         time.Time       `json:"date"`
		CategoryName string          `json:"category,omitempty"`
	}

	// SavingEntry is money set aside, optionally linked to one SavingGoal.
	// SavingGoalID 0 means unlinked: the entry counts toward total savings
	// but toward no goal's progress.
	SavingEntry struct {
		ID           int64           `json:"id"`
		Amount       decimal.Decimal `json:"amount"`
		Date         time.Time       `json:"date"`
		Note         string          `json:"note,omitempty"`
		SavingGoalID int64           `json:"savingGoalId,omitempty"`
	}

	// SavingGoal is a savings target with a deadline. TotalSaved is the
	// server-side fallback total, used only when no saving entries reference
	// the goal.
	SavingGoal struct {
		ID           int64           `json:"id"`
		Name         string          `json:"name"`
		TargetAmount decimal.Decimal `json:"targetAmount"`
		TargetDate   time.Time       `json:"targetDate"`
		IsActive     bool            `json:"isActive"`
		TotalSaved   decimal.Decimal `json:"totalSaved"`
	}

	// Category is a user-defined expense category.
	Category struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidTargetAmount = errors.New("target amount must be positive")
	ErrInvalidDate         = errors.New("invalid date")
	ErrEmptyDescription    = errors.New("empty description")
	ErrEmptyName           = errors.New("empty name")
	ErrMissingGoal         = errors.New("saving goal does not exist")
)

// CategoryLabel resolves the category label for aggregation, falling back to
// FallbackCategory when the raw label is empty.
func (t Transaction) CategoryLabel() string {
	if strings.TrimSpace(t.CategoryName) == "" {
		return FallbackCategory
	}
	return t.CategoryName
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (s SavingEntry) Validate() error {
	if !s.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if s.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(s.Note) > 200 {
		return errors.New("note too long (max 200 characters)")
	}
	return nil
}

func (g SavingGoal) Validate() error {
	if len(strings.TrimSpace(g.Name)) == 0 {
		return ErrEmptyName
	}
	if len(g.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	// Division by a non-positive target is rejected here, never handled in
	// the progress formula.
	if !g.TargetAmount.IsPositive() {
		return ErrInvalidTargetAmount
	}
	if g.TargetDate.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (c Category) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	return nil
}

// Midnight normalizes a timestamp to local midnight. Every day-granularity
// comparison in the engine (windows, remaining days) goes through this.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
