package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"finanzas/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("storage: not found")

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- Transactions (incomes and expenses share one shape) ---

func (r *SQLiteRepository) listTransactions(ctx context.Context, table string) ([]core.Transaction, error) {
	query := fmt.Sprintf(`SELECT id, description, amount, date, COALESCE(category_name, '')
		FROM %s ORDER BY date DESC, id DESC`, table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			tx         core.Transaction
			rawAmount  string
			rawDate    string
		)
		if err := rows.Scan(&tx.ID, &tx.Description, &rawAmount, &rawDate, &tx.CategoryName); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		if tx.Amount, err = decimal.NewFromString(rawAmount); err != nil {
			return nil, fmt.Errorf("parse amount for %s id %d: %w", table, tx.ID, err)
		}
		if tx.Date, err = time.Parse(dateLayout, rawDate); err != nil {
			return nil, fmt.Errorf("parse date for %s id %d: %w", table, tx.ID, err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) createTransaction(ctx context.Context, table string, t core.Transaction) (core.Transaction, error) {
	query := fmt.Sprintf(`INSERT INTO %s (description, amount, date, category_name)
		VALUES (?, ?, ?, NULLIF(?, ''))`, table)

	res, err := r.db.ExecContext(ctx, query,
		t.Description, t.Amount.String(), t.Date.Format(dateLayout), t.CategoryName)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create %s: %w", table, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("last insert id: %w", err)
	}
	t.ID = id

	slog.InfoContext(ctx, "Transaction saved",
		"table", table,
		"id", t.ID,
		"description", t.Description,
		"amount", t.Amount.String(),
		"category", t.CategoryLabel())

	return t, nil
}

func (r *SQLiteRepository) deleteRow(ctx context.Context, table string, id int64) error {
	res, err := r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListIncomes(ctx context.Context) ([]core.Transaction, error) {
	return r.listTransactions(ctx, "incomes")
}

func (r *SQLiteRepository) CreateIncome(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	return r.createTransaction(ctx, "incomes", t)
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, id int64) error {
	return r.deleteRow(ctx, "incomes", id)
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Transaction, error) {
	return r.listTransactions(ctx, "expenses")
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	return r.createTransaction(ctx, "expenses", t)
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	return r.deleteRow(ctx, "expenses", id)
}

// --- Savings ---

func (r *SQLiteRepository) ListSavings(ctx context.Context) ([]core.SavingEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, amount, date, COALESCE(note, ''), COALESCE(saving_goal_id, 0)
		FROM savings ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list savings: %w", err)
	}
	defer rows.Close()

	var out []core.SavingEntry
	for rows.Next() {
		var (
			s         core.SavingEntry
			rawAmount string
			rawDate   string
		)
		if err := rows.Scan(&s.ID, &rawAmount, &rawDate, &s.Note, &s.SavingGoalID); err != nil {
			return nil, fmt.Errorf("scan saving row: %w", err)
		}
		if s.Amount, err = decimal.NewFromString(rawAmount); err != nil {
			return nil, fmt.Errorf("parse amount for saving id %d: %w", s.ID, err)
		}
		if s.Date, err = time.Parse(dateLayout, rawDate); err != nil {
			return nil, fmt.Errorf("parse date for saving id %d: %w", s.ID, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateSaving(ctx context.Context, s core.SavingEntry) (core.SavingEntry, error) {
	if s.SavingGoalID != 0 {
		var exists int
		err := r.db.QueryRowContext(ctx,
			"SELECT COUNT(1) FROM saving_goals WHERE id = ?", s.SavingGoalID).Scan(&exists)
		if err != nil {
			return core.SavingEntry{}, fmt.Errorf("check saving goal: %w", err)
		}
		if exists == 0 {
			return core.SavingEntry{}, core.ErrMissingGoal
		}
	}

	res, err := r.db.ExecContext(ctx, `INSERT INTO savings (amount, date, note, saving_goal_id)
		VALUES (?, ?, NULLIF(?, ''), NULLIF(?, 0))`,
		s.Amount.String(), s.Date.Format(dateLayout), s.Note, s.SavingGoalID)
	if err != nil {
		return core.SavingEntry{}, fmt.Errorf("create saving: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.SavingEntry{}, fmt.Errorf("last insert id: %w", err)
	}
	s.ID = id

	slog.InfoContext(ctx, "Saving entry saved",
		"id", s.ID,
		"amount", s.Amount.String(),
		"goal_id", s.SavingGoalID)

	return s, nil
}

func (r *SQLiteRepository) DeleteSaving(ctx context.Context, id int64) error {
	return r.deleteRow(ctx, "savings", id)
}

// --- Saving goals ---

func (r *SQLiteRepository) scanGoal(scanner interface{ Scan(...any) error }) (core.SavingGoal, error) {
	var (
		g          core.SavingGoal
		rawTarget  string
		rawDate    string
		rawSaved   string
		activeFlag int
	)
	if err := scanner.Scan(&g.ID, &g.Name, &rawTarget, &rawDate, &activeFlag, &rawSaved); err != nil {
		return core.SavingGoal{}, err
	}

	var err error
	if g.TargetAmount, err = decimal.NewFromString(rawTarget); err != nil {
		return core.SavingGoal{}, fmt.Errorf("parse target amount for goal id %d: %w", g.ID, err)
	}
	if g.TargetDate, err = time.Parse(dateLayout, rawDate); err != nil {
		return core.SavingGoal{}, fmt.Errorf("parse target date for goal id %d: %w", g.ID, err)
	}
	if g.TotalSaved, err = decimal.NewFromString(rawSaved); err != nil {
		return core.SavingGoal{}, fmt.Errorf("parse total saved for goal id %d: %w", g.ID, err)
	}
	g.IsActive = activeFlag != 0
	return g, nil
}

const goalColumns = "id, name, target_amount, target_date, is_active, total_saved"

func (r *SQLiteRepository) ListGoals(ctx context.Context) ([]core.SavingGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+goalColumns+" FROM saving_goals ORDER BY target_date ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("list saving goals: %w", err)
	}
	defer rows.Close()

	var out []core.SavingGoal
	for rows.Next() {
		g, err := r.scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan saving goal: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, id int64) (core.SavingGoal, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+goalColumns+" FROM saving_goals WHERE id = ?", id)
	g, err := r.scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SavingGoal{}, ErrNotFound
	}
	if err != nil {
		return core.SavingGoal{}, fmt.Errorf("get saving goal: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.SavingGoal) (core.SavingGoal, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO saving_goals (name, target_amount, target_date, is_active, total_saved)
		VALUES (?, ?, ?, ?, ?)`,
		g.Name, g.TargetAmount.String(), g.TargetDate.Format(dateLayout), boolToInt(g.IsActive), g.TotalSaved.String())
	if err != nil {
		return core.SavingGoal{}, fmt.Errorf("create saving goal: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.SavingGoal{}, fmt.Errorf("last insert id: %w", err)
	}
	g.ID = id

	slog.InfoContext(ctx, "Saving goal created",
		"id", g.ID,
		"name", g.Name,
		"target_amount", g.TargetAmount.String(),
		"target_date", g.TargetDate.Format(dateLayout))

	return g, nil
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.SavingGoal) (core.SavingGoal, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE saving_goals
		SET name = ?, target_amount = ?, target_date = ?, is_active = ?, total_saved = ?
		WHERE id = ?`,
		g.Name, g.TargetAmount.String(), g.TargetDate.Format(dateLayout), boolToInt(g.IsActive), g.TotalSaved.String(), g.ID)
	if err != nil {
		return core.SavingGoal{}, fmt.Errorf("update saving goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.SavingGoal{}, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.SavingGoal{}, ErrNotFound
	}
	return g, nil
}

// DeleteGoal removes a goal. Linked saving entries are kept and unlinked
// by the ON DELETE SET NULL constraint.
func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id int64) error {
	return r.deleteRow(ctx, "saving_goals", id)
}

// --- Categories ---

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM categories ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, name string) (core.Category, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO categories (name) VALUES (?)", name)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("last insert id: %w", err)
	}
	return core.Category{ID: id, Name: name}, nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	return r.deleteRow(ctx, "categories", id)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
