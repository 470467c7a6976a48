package http

import (
	"errors"
	"log/slog"
	"net/http"

	"finanzas/internal/core"
	applog "finanzas/internal/log"
	"finanzas/internal/storage"
)

// transactionRequest is the write payload shared by incomes and expenses.
type transactionRequest struct {
	Description string `json:"description" validate:"required,max=200"`
	Amount      string `json:"amount" validate:"required"`
	Date        string `json:"date" validate:"required"`
	Category    string `json:"category" validate:"omitempty,max=100"`
}

// bindTransaction parses and validates the request body into a domain
// transaction. The second return value carries the error response to
// write when binding fails.
func (s *Server) bindTransaction(r *http.Request) (core.Transaction, *APIResponseBuilder) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		slog.ErrorContext(r.Context(), "Failed to parse request body", "error", err, "url", r.URL.Path)
		return core.Transaction{}, BadRequestError("Cuerpo de la peticion no valido")
	}

	req := transactionRequest{
		Description: parser.Get("description"),
		Amount:      parser.Get("amount"),
		Date:        parser.Get("date"),
		Category:    parser.Get("category"),
	}
	if err := s.validate.Struct(req); err != nil {
		return core.Transaction{}, UnprocessableEntityError("Datos incompletos o no validos")
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return core.Transaction{}, UnprocessableEntityError("Importe no valido")
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return core.Transaction{}, UnprocessableEntityError("Fecha no valida")
	}

	tx := core.Transaction{
		Description:  req.Description,
		Amount:       amount,
		Date:         date,
		CategoryName: req.Category,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, UnprocessableEntityError("Datos no validos: " + err.Error())
	}

	return tx, nil
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.dashboard.Expenses(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load expenses", "error", err)
		InternalServerError("Error cargando los movimientos").Write(w)
		return
	}

	if expenses == nil {
		expenses = []core.Transaction{}
	}
	NewAPIResponse().JSON(expenses).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	tx, errResp := s.bindTransaction(r)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	created, err := s.store.CreateExpense(r.Context(), tx)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to save expense",
			"error", err,
			"description", tx.Description,
			"amount", tx.Amount.String(),
			"category", tx.CategoryLabel())
		InternalServerError("Error guardando el gasto").Write(w)
		return
	}

	s.dashboard.Invalidate()
	s.logger.LogTransactionCreated(r.Context(), applog.ComponentDashboard,
		created.Description, created.Amount.String(), created.CategoryLabel())

	NewAPIResponse().Status(http.StatusCreated).JSON(created).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		BadRequestError("Identificador no valido").Write(w)
		return
	}

	if err := s.store.DeleteExpense(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFoundError("Movimiento no encontrado").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete expense", "error", err, "id", id)
		InternalServerError("Error eliminando el gasto").Write(w)
		return
	}

	s.dashboard.Invalidate()
	NewAPIResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	snap, err := s.dashboard.FetchAll(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load incomes", "error", err)
		InternalServerError("Error cargando los movimientos").Write(w)
		return
	}

	incomes := snap.Incomes
	if incomes == nil {
		incomes = []core.Transaction{}
	}
	NewAPIResponse().JSON(incomes).Write(w)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	tx, errResp := s.bindTransaction(r)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	created, err := s.store.CreateIncome(r.Context(), tx)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to save income",
			"error", err,
			"description", tx.Description,
			"amount", tx.Amount.String(),
			"category", tx.CategoryLabel())
		InternalServerError("Error guardando el ingreso").Write(w)
		return
	}

	s.dashboard.Invalidate()
	s.logger.LogTransactionCreated(r.Context(), applog.ComponentDashboard,
		created.Description, created.Amount.String(), created.CategoryLabel())

	NewAPIResponse().Status(http.StatusCreated).JSON(created).Write(w)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		BadRequestError("Identificador no valido").Write(w)
		return
	}

	if err := s.store.DeleteIncome(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFoundError("Movimiento no encontrado").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete income", "error", err, "id", id)
		InternalServerError("Error eliminando el ingreso").Write(w)
		return
	}

	s.dashboard.Invalidate()
	NewAPIResponse().Status(http.StatusNoContent).Write(w)
}
