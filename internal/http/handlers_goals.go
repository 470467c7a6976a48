package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"finanzas/internal/core"
	"finanzas/internal/engine"
	"finanzas/internal/storage"
)

type goalRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	TargetAmount string `json:"targetAmount" validate:"required"`
	TargetDate   string `json:"targetDate" validate:"required"`
	IsActive     string `json:"isActive" validate:"omitempty,boolean"`
	TotalSaved   string `json:"totalSaved"`
}

func parseGoalFilter(s string) (engine.GoalFilter, error) {
	if s == "" {
		return engine.FilterAll, nil
	}
	switch f := engine.GoalFilter(s); f {
	case engine.FilterAll, engine.FilterActive, engine.FilterNear, engine.FilterLate, engine.FilterCompleted:
		return f, nil
	}
	return "", fmt.Errorf("unsupported goal filter %q", s)
}

func parseGoalSort(s string) (engine.GoalSort, error) {
	if s == "" {
		return engine.SortTargetDate, nil
	}
	switch by := engine.GoalSort(s); by {
	case engine.SortTargetDate, engine.SortTargetDateDesc, engine.SortProgress:
		return by, nil
	}
	return "", fmt.Errorf("unsupported goal sort %q", s)
}

// bindGoal parses and validates the request body into a domain goal.
func (s *Server) bindGoal(r *http.Request) (core.SavingGoal, *APIResponseBuilder) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		slog.ErrorContext(r.Context(), "Failed to parse request body", "error", err, "url", r.URL.Path)
		return core.SavingGoal{}, BadRequestError("Cuerpo de la peticion no valido")
	}

	req := goalRequest{
		Name:         parser.Get("name"),
		TargetAmount: parser.Get("targetAmount"),
		TargetDate:   parser.Get("targetDate"),
		IsActive:     parser.Get("isActive"),
		TotalSaved:   parser.Get("totalSaved"),
	}
	if err := s.validate.Struct(req); err != nil {
		return core.SavingGoal{}, UnprocessableEntityError("Datos incompletos o no validos")
	}

	target, err := core.ParseAmount(req.TargetAmount)
	if err != nil {
		return core.SavingGoal{}, UnprocessableEntityError("Importe objetivo no valido")
	}

	date, err := parseDate(req.TargetDate)
	if err != nil {
		return core.SavingGoal{}, UnprocessableEntityError("Fecha no valida")
	}

	goal := core.SavingGoal{
		Name:         req.Name,
		TargetAmount: target,
		TargetDate:   date,
		IsActive:     true,
	}
	if req.IsActive != "" {
		active, err := strconv.ParseBool(req.IsActive)
		if err != nil {
			return core.SavingGoal{}, UnprocessableEntityError("Estado no valido")
		}
		goal.IsActive = active
	}
	if req.TotalSaved != "" {
		saved, err := core.ParseAmount(req.TotalSaved)
		if err != nil {
			return core.SavingGoal{}, UnprocessableEntityError("Importe ahorrado no valido")
		}
		goal.TotalSaved = saved
	}

	return goal, nil
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	filter, err := parseGoalFilter(r.URL.Query().Get("status"))
	if err != nil {
		BadRequestError("Filtro no valido").Write(w)
		return
	}
	sortBy, err := parseGoalSort(r.URL.Query().Get("sort"))
	if err != nil {
		BadRequestError("Orden no valido").Write(w)
		return
	}

	progress, err := s.goals.ListProgress(r.Context(), filter, sortBy)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list goal progress", "error", err)
		InternalServerError("Error cargando las metas").Write(w)
		return
	}

	if progress == nil {
		progress = []core.GoalProgress{}
	}
	NewAPIResponse().JSON(progress).Write(w)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	goal, errResp := s.bindGoal(r)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	created, err := s.goals.CreateGoal(r.Context(), goal)
	if err != nil {
		if errors.Is(err, core.ErrEmptyName) || errors.Is(err, core.ErrInvalidTargetAmount) || errors.Is(err, core.ErrInvalidDate) {
			UnprocessableEntityError("Datos no validos: " + err.Error()).Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to create goal", "error", err, "name", goal.Name)
		InternalServerError("Error guardando la meta").Write(w)
		return
	}

	NewAPIResponse().Status(http.StatusCreated).JSON(created).Write(w)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		BadRequestError("Identificador no valido").Write(w)
		return
	}

	progress, err := s.goals.GetProgress(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFoundError("Meta no encontrada").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to load goal progress", "error", err, "goal_id", id)
		InternalServerError("Error cargando la meta").Write(w)
		return
	}

	NewAPIResponse().JSON(progress).Write(w)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		BadRequestError("Identificador no valido").Write(w)
		return
	}

	goal, errResp := s.bindGoal(r)
	if errResp != nil {
		errResp.Write(w)
		return
	}
	goal.ID = id

	updated, err := s.goals.UpdateGoal(r.Context(), goal)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFoundError("Meta no encontrada").Write(w)
			return
		}
		if errors.Is(err, core.ErrEmptyName) || errors.Is(err, core.ErrInvalidTargetAmount) || errors.Is(err, core.ErrInvalidDate) {
			UnprocessableEntityError("Datos no validos: " + err.Error()).Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to update goal", "error", err, "goal_id", id)
		InternalServerError("Error guardando la meta").Write(w)
		return
	}

	NewAPIResponse().JSON(updated).Write(w)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		BadRequestError("Identificador no valido").Write(w)
		return
	}

	if err := s.goals.DeleteGoal(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFoundError("Meta no encontrada").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete goal", "error", err, "goal_id", id)
		InternalServerError("Error eliminando la meta").Write(w)
		return
	}

	NewAPIResponse().Status(http.StatusNoContent).Write(w)
}
