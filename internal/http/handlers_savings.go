package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"finanzas/internal/core"
	"finanzas/internal/storage"
)

type savingRequest struct {
	Amount       string `json:"amount" validate:"required"`
	Date         string `json:"date" validate:"required"`
	Note         string `json:"note" validate:"omitempty,max=200"`
	SavingGoalID string `json:"savingGoalId" validate:"omitempty,number"`
}

func (s *Server) handleListSavings(w http.ResponseWriter, r *http.Request) {
	snap, err := s.dashboard.FetchAll(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load savings", "error", err)
		InternalServerError("Error cargando los ahorros").Write(w)
		return
	}

	savings := snap.Savings
	if savings == nil {
		savings = []core.SavingEntry{}
	}
	NewAPIResponse().JSON(savings).Write(w)
}

func (s *Server) handleCreateSaving(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		slog.ErrorContext(r.Context(), "Failed to parse request body", "error", err, "url", r.URL.Path)
		BadRequestError("Cuerpo de la peticion no valido").Write(w)
		return
	}

	req := savingRequest{
		Amount:       parser.Get("amount"),
		Date:         parser.Get("date"),
		Note:         parser.Get("note"),
		SavingGoalID: parser.Get("savingGoalId"),
	}
	if err := s.validate.Struct(req); err != nil {
		UnprocessableEntityError("Datos incompletos o no validos").Write(w)
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		UnprocessableEntityError("Importe no valido").Write(w)
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		UnprocessableEntityError("Fecha no valida").Write(w)
		return
	}

	entry := core.SavingEntry{
		Amount: amount,
		Date:   date,
		Note:   req.Note,
	}
	if req.SavingGoalID != "" {
		goalID, err := strconv.ParseInt(req.SavingGoalID, 10, 64)
		if err != nil {
			UnprocessableEntityError("Meta de ahorro no valida").Write(w)
			return
		}
		entry.SavingGoalID = goalID
	}
	if err := entry.Validate(); err != nil {
		UnprocessableEntityError("Datos no validos: " + err.Error()).Write(w)
		return
	}

	created, err := s.store.CreateSaving(r.Context(), entry)
	if err != nil {
		if errors.Is(err, core.ErrMissingGoal) {
			UnprocessableEntityError("La meta de ahorro no existe").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to save saving entry",
			"error", err,
			"amount", entry.Amount.String(),
			"saving_goal_id", entry.SavingGoalID)
		InternalServerError("Error guardando el ahorro").Write(w)
		return
	}

	s.dashboard.Invalidate()
	NewAPIResponse().Status(http.StatusCreated).JSON(created).Write(w)
}

func (s *Server) handleDeleteSaving(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		BadRequestError("Identificador no valido").Write(w)
		return
	}

	if err := s.store.DeleteSaving(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFoundError("Ahorro no encontrado").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete saving entry", "error", err, "id", id)
		InternalServerError("Error eliminando el ahorro").Write(w)
		return
	}

	s.dashboard.Invalidate()
	NewAPIResponse().Status(http.StatusNoContent).Write(w)
}
