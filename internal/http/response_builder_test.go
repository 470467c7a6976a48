package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAPIResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewAPIResponse().
		Status(http.StatusOK).
		JSON(map[string]string{"status": "ok"}).
		Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Body is not valid JSON: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Body status = %q, want %q", body["status"], "ok")
	}
}

func TestAPIResponseBuilder_NoPayload(t *testing.T) {
	w := httptest.NewRecorder()

	NewAPIResponse().Status(http.StatusNoContent).Write(w)

	if w.Code != http.StatusNoContent {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusNoContent)
	}
	if w.Body.Len() != 0 {
		t.Errorf("Body = %q, want empty", w.Body.String())
	}
}

func TestAPIResponseBuilder_CustomHeader(t *testing.T) {
	w := httptest.NewRecorder()

	NewAPIResponse().
		Header("X-Custom", "value").
		Status(http.StatusCreated).
		Write(w)

	if w.Header().Get("X-Custom") != "value" {
		t.Errorf("Custom header not set")
	}
	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		builder    *APIResponseBuilder
		wantStatus int
		wantError  string
	}{
		{
			name:       "bad request",
			builder:    BadRequestError("Cuerpo de la peticion no valido"),
			wantStatus: http.StatusBadRequest,
			wantError:  "Cuerpo de la peticion no valido",
		},
		{
			name:       "unprocessable entity",
			builder:    UnprocessableEntityError("Importe no valido"),
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "Importe no valido",
		},
		{
			name:       "internal server error",
			builder:    InternalServerError("Error calculando el balance"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Error calculando el balance",
		},
		{
			name:       "not found",
			builder:    NotFoundError("Meta no encontrada"),
			wantStatus: http.StatusNotFound,
			wantError:  "Meta no encontrada",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantStatus)
			}

			var body errorBody
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("Body is not valid JSON: %v", err)
			}
			if body.Error != tt.wantError {
				t.Errorf("Error = %q, want %q", body.Error, tt.wantError)
			}
		})
	}
}

func TestTooManyRequestsError(t *testing.T) {
	w := httptest.NewRecorder()

	TooManyRequestsError().Write(w)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusTooManyRequests)
	}

	var body errorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Body is not valid JSON: %v", err)
	}
	if body.Error == "" {
		t.Error("Error message should not be empty")
	}
}
