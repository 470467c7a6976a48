package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finanzas/internal/core"
	"finanzas/internal/services"
	"finanzas/internal/storage"
)

// memStore backs both the handler Store and the service stores in tests.
type memStore struct {
	nextID     int64
	incomes    []core.Transaction
	expenses   []core.Transaction
	savings    []core.SavingEntry
	goals      []core.SavingGoal
	categories []core.Category
}

func newMemStore() *memStore {
	return &memStore{
		nextID:     1,
		categories: []core.Category{{ID: 1, Name: "Comida"}},
	}
}

func (m *memStore) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

func (m *memStore) ListIncomes(ctx context.Context) ([]core.Transaction, error) {
	return m.incomes, nil
}

func (m *memStore) ListExpenses(ctx context.Context) ([]core.Transaction, error) {
	return m.expenses, nil
}

func (m *memStore) ListSavings(ctx context.Context) ([]core.SavingEntry, error) {
	return m.savings, nil
}

func (m *memStore) CreateIncome(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = m.id()
	m.incomes = append(m.incomes, t)
	return t, nil
}

func (m *memStore) DeleteIncome(ctx context.Context, id int64) error {
	for i, t := range m.incomes {
		if t.ID == id {
			m.incomes = append(m.incomes[:i], m.incomes[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (m *memStore) CreateExpense(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = m.id()
	m.expenses = append(m.expenses, t)
	return t, nil
}

func (m *memStore) DeleteExpense(ctx context.Context, id int64) error {
	for i, t := range m.expenses {
		if t.ID == id {
			m.expenses = append(m.expenses[:i], m.expenses[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (m *memStore) CreateSaving(ctx context.Context, s core.SavingEntry) (core.SavingEntry, error) {
	if s.SavingGoalID != 0 {
		found := false
		for _, g := range m.goals {
			if g.ID == s.SavingGoalID {
				found = true
			}
		}
		if !found {
			return core.SavingEntry{}, core.ErrMissingGoal
		}
	}
	s.ID = m.id()
	m.savings = append(m.savings, s)
	return s, nil
}

func (m *memStore) DeleteSaving(ctx context.Context, id int64) error {
	for i, s := range m.savings {
		if s.ID == id {
			m.savings = append(m.savings[:i], m.savings[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (m *memStore) ListGoals(ctx context.Context) ([]core.SavingGoal, error) {
	return m.goals, nil
}

func (m *memStore) GetGoal(ctx context.Context, id int64) (core.SavingGoal, error) {
	for _, g := range m.goals {
		if g.ID == id {
			return g, nil
		}
	}
	return core.SavingGoal{}, storage.ErrNotFound
}

func (m *memStore) CreateGoal(ctx context.Context, g core.SavingGoal) (core.SavingGoal, error) {
	g.ID = m.id()
	m.goals = append(m.goals, g)
	return g, nil
}

func (m *memStore) UpdateGoal(ctx context.Context, g core.SavingGoal) (core.SavingGoal, error) {
	for i, existing := range m.goals {
		if existing.ID == g.ID {
			m.goals[i] = g
			return g, nil
		}
	}
	return core.SavingGoal{}, storage.ErrNotFound
}

func (m *memStore) DeleteGoal(ctx context.Context, id int64) error {
	for i, g := range m.goals {
		if g.ID == id {
			m.goals = append(m.goals[:i], m.goals[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (m *memStore) ListCategories(ctx context.Context) ([]core.Category, error) {
	return m.categories, nil
}

func (m *memStore) CreateCategory(ctx context.Context, name string) (core.Category, error) {
	for _, c := range m.categories {
		if strings.EqualFold(c.Name, name) {
			return core.Category{}, &uniqueErr{}
		}
	}
	c := core.Category{ID: m.id(), Name: name}
	m.categories = append(m.categories, c)
	return c, nil
}

func (m *memStore) DeleteCategory(ctx context.Context, id int64) error {
	for i, c := range m.categories {
		if c.ID == id {
			m.categories = append(m.categories[:i], m.categories[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

type uniqueErr struct{}

func (*uniqueErr) Error() string { return "constraint failed: UNIQUE constraint failed: categories.name" }

func newTestServer(t *testing.T, store *memStore) *Server {
	t.Helper()

	dashboard := services.NewDashboardService(store, nil, "ahorros ocultos", "es")
	goals := services.NewGoalService(store, nil)
	srv := NewServer(":0", store, dashboard, goals, "DOP")
	t.Cleanup(func() { srv.limiter.Stop() })
	return srv
}

func doRequest(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func amount(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, newMemStore())

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doRequest(srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rr.Code)
		}
	}
}

func TestSuspiciousRequestsFlaggedNotBlocked(t *testing.T) {
	srv := newTestServer(t, newMemStore())

	rr := doRequest(srv, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if got := srv.detector.GetMetrics().SuspiciousRequests; got != 0 {
		t.Fatalf("SuspiciousRequests = %d, want 0 after normal request", got)
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("User-Agent", "sqlmap/1.7")
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	// Flagged requests are counted but still served
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
	if got := srv.detector.GetMetrics().SuspiciousRequests; got != 1 {
		t.Errorf("SuspiciousRequests = %d, want 1", got)
	}
}

func TestCreateExpenseValidationAndSuccess(t *testing.T) {
	srv := newTestServer(t, newMemStore())

	// Invalid amount
	rr := doRequest(srv, http.MethodPost, "/api/expenses",
		`{"description": "Supermercado", "amount": "abc", "date": "2025-06-10"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid amount status = %d, want 422", rr.Code)
	}

	// Missing description
	rr = doRequest(srv, http.MethodPost, "/api/expenses",
		`{"amount": "150.50", "date": "2025-06-10"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing description status = %d, want 422", rr.Code)
	}

	// Success with mixed-case field names
	rr = doRequest(srv, http.MethodPost, "/api/expenses",
		`{"Description": "Supermercado", "AMOUNT": "150.50", "date": "2025-06-10", "Category": "Comida"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201: %s", rr.Code, rr.Body.String())
	}

	var created core.Transaction
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ID == 0 {
		t.Error("created expense should have an ID")
	}
	if !created.Amount.Equal(amount("150.50")) {
		t.Errorf("Amount = %s, want 150.50", created.Amount)
	}

	// List reflects the new expense
	rr = doRequest(srv, http.MethodGet, "/api/expenses", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rr.Code)
	}
	var list []core.Transaction
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("list length = %d, want 1", len(list))
	}
}

func TestDeleteExpenseNotFound(t *testing.T) {
	srv := newTestServer(t, newMemStore())

	rr := doRequest(srv, http.MethodDelete, "/api/expenses/99", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}

	rr = doRequest(srv, http.MethodDelete, "/api/expenses/abc", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("non numeric id status = %d, want 400", rr.Code)
	}
}

func TestBalanceEndpoint(t *testing.T) {
	store := newMemStore()
	now := time.Now()
	store.incomes = []core.Transaction{{ID: 1, Description: "Salario", Amount: amount("5000"), Date: now}}
	store.expenses = []core.Transaction{{ID: 2, Description: "Renta", Amount: amount("2000"), Date: now}}
	store.savings = []core.SavingEntry{{ID: 3, Amount: amount("500"), Date: now}}

	srv := newTestServer(t, store)

	rr := doRequest(srv, http.MethodGet, "/api/balance", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp struct {
		NetBalance decimal.Decimal `json:"netBalance"`
		Formatted  string          `json:"formatted"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode balance: %v", err)
	}
	if !resp.NetBalance.Equal(amount("2500")) {
		t.Errorf("netBalance = %s, want 2500", resp.NetBalance)
	}
	if resp.Formatted != "DOP 2500.00" {
		t.Errorf("formatted = %q, want %q", resp.Formatted, "DOP 2500.00")
	}
}

func TestExpensesSummaryHidesCategory(t *testing.T) {
	store := newMemStore()
	now := time.Now()
	store.expenses = []core.Transaction{
		{ID: 1, Description: "Supermercado", Amount: amount("1000"), Date: now, CategoryName: "Comida"},
		{ID: 2, Description: "Reserva", Amount: amount("300"), Date: now, CategoryName: "Ahorros Ocultos"},
	}

	srv := newTestServer(t, store)

	rr := doRequest(srv, http.MethodGet, "/api/expenses/summary", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var summary core.PeriodSummary
	if err := json.Unmarshal(rr.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if !summary.Total.Equal(amount("1000")) {
		t.Errorf("Total = %s, want 1000", summary.Total)
	}
	for _, b := range summary.ByCategory {
		if strings.EqualFold(b.CategoryName, "ahorros ocultos") {
			t.Errorf("hidden category leaked into breakdown: %+v", b)
		}
	}

	// The raw expense list hides those entries too
	rr = doRequest(srv, http.MethodGet, "/api/expenses", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rr.Code)
	}
	var list []core.Transaction
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("list length = %d, want 1", len(list))
	}
}

func TestTrendEndpoint(t *testing.T) {
	srv := newTestServer(t, newMemStore())

	rr := doRequest(srv, http.MethodGet, "/api/dashboard/trend?range=90d", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("invalid range status = %d, want 400", rr.Code)
	}

	rr = doRequest(srv, http.MethodGet, "/api/dashboard/trend?range=7d", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var trend struct {
		Points []core.TrendPoint `json:"points"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &trend); err != nil {
		t.Fatalf("decode trend: %v", err)
	}
	if len(trend.Points) != 7 {
		t.Errorf("points = %d, want 7", len(trend.Points))
	}
}

func TestGoalLifecycle(t *testing.T) {
	srv := newTestServer(t, newMemStore())

	rr := doRequest(srv, http.MethodPost, "/api/goals",
		`{"name": "Vacaciones", "targetAmount": "3000", "targetDate": "2026-12-31"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201: %s", rr.Code, rr.Body.String())
	}

	var created core.SavingGoal
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if !created.IsActive {
		t.Error("goal should default to active")
	}

	rr = doRequest(srv, http.MethodGet, "/api/goals?status=active", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rr.Code)
	}
	var progress []core.GoalProgress
	if err := json.Unmarshal(rr.Body.Bytes(), &progress); err != nil {
		t.Fatalf("decode progress: %v", err)
	}
	if len(progress) != 1 {
		t.Fatalf("progress length = %d, want 1", len(progress))
	}

	rr = doRequest(srv, http.MethodGet, "/api/goals?status=bogus", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bogus filter status = %d, want 400", rr.Code)
	}

	gid := created.ID
	rr = doRequest(srv, http.MethodDelete, "/api/goals/"+itoa(gid), "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rr.Code)
	}

	rr = doRequest(srv, http.MethodGet, "/api/goals/"+itoa(gid), "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("get deleted status = %d, want 404", rr.Code)
	}
}

func TestCreateSavingRejectsMissingGoal(t *testing.T) {
	srv := newTestServer(t, newMemStore())

	rr := doRequest(srv, http.MethodPost, "/api/savings",
		`{"amount": "200", "date": "2025-06-10", "savingGoalId": "42"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422: %s", rr.Code, rr.Body.String())
	}
}

func TestCategoryEndpoints(t *testing.T) {
	srv := newTestServer(t, newMemStore())

	rr := doRequest(srv, http.MethodPost, "/api/categories", `{"name": "Mascotas"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", rr.Code)
	}

	rr = doRequest(srv, http.MethodPost, "/api/categories", `{"name": "mascotas"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("duplicate status = %d, want 422", rr.Code)
	}

	rr = doRequest(srv, http.MethodGet, "/api/categories", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rr.Code)
	}
	var categories []core.Category
	if err := json.Unmarshal(rr.Body.Bytes(), &categories); err != nil {
		t.Fatalf("decode categories: %v", err)
	}
	if len(categories) != 2 {
		t.Errorf("categories length = %d, want 2", len(categories))
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
