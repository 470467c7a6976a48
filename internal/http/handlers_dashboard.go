package http

import (
	"log/slog"
	"net/http"

	"finanzas/internal/core"
	"finanzas/internal/engine"
)

// balanceResponse decorates the reconciled balance with a formatted
// net amount for direct display.
type balanceResponse struct {
	core.Balance
	Formatted string `json:"formatted"`
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.dashboard.Balance(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute balance", "error", err)
		InternalServerError("Error calculando el balance").Write(w)
		return
	}

	NewAPIResponse().JSON(balanceResponse{
		Balance:   balance,
		Formatted: core.FormatAmount(balance.NetBalance, s.currency),
	}).Write(w)
}

func (s *Server) handleExpensesSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.dashboard.ExpensesSummary(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to summarize expenses", "error", err)
		InternalServerError("Error calculando el resumen").Write(w)
		return
	}

	NewAPIResponse().JSON(summary).Write(w)
}

func (s *Server) handleIncomesSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.dashboard.IncomesSummary(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to summarize incomes", "error", err)
		InternalServerError("Error calculando el resumen").Write(w)
		return
	}

	NewAPIResponse().JSON(summary).Write(w)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	rangeParam := r.URL.Query().Get("range")
	if rangeParam == "" {
		rangeParam = string(engine.Range30D)
	}

	rng, err := engine.ParseRange(rangeParam)
	if err != nil {
		BadRequestError("Rango no valido").Write(w)
		return
	}

	trend, err := s.dashboard.Trend(r.Context(), rng)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to build trend", "error", err)
		InternalServerError("Error calculando la tendencia").Write(w)
		return
	}

	NewAPIResponse().JSON(trend).Write(w)
}
