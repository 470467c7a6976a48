package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"finanzas/internal/core"
	"finanzas/internal/storage"
)

type categoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.store.ListCategories(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list categories", "error", err)
		InternalServerError("Error cargando las categorias").Write(w)
		return
	}

	if categories == nil {
		categories = []core.Category{}
	}
	NewAPIResponse().JSON(categories).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		slog.ErrorContext(r.Context(), "Failed to parse request body", "error", err, "url", r.URL.Path)
		BadRequestError("Cuerpo de la peticion no valido").Write(w)
		return
	}

	req := categoryRequest{Name: parser.Get("name")}
	if err := s.validate.Struct(req); err != nil {
		UnprocessableEntityError("Nombre no valido").Write(w)
		return
	}

	created, err := s.store.CreateCategory(r.Context(), req.Name)
	if err != nil {
		// Category names are unique case-insensitively
		if strings.Contains(err.Error(), "UNIQUE") {
			UnprocessableEntityError("La categoria ya existe").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to create category", "error", err, "name", req.Name)
		InternalServerError("Error guardando la categoria").Write(w)
		return
	}

	NewAPIResponse().Status(http.StatusCreated).JSON(created).Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r)
	if err != nil {
		BadRequestError("Identificador no valido").Write(w)
		return
	}

	if err := s.store.DeleteCategory(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFoundError("Categoria no encontrada").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete category", "error", err, "id", id)
		InternalServerError("Error eliminando la categoria").Write(w)
		return
	}

	NewAPIResponse().Status(http.StatusNoContent).Write(w)
}
