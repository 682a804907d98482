package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"quiz-summary-service/internal/app"
	"quiz-summary-service/internal/domain"
)

type dataEnvelope struct {
	Data any `json:"data"`
}

type errorPayload struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorPayload{Error: msg})
}

// SummaryHandler serves the creator summary of a quiz as JSON. Each request is
// its own view; a denied requester is redirected home.
type SummaryHandler struct {
	service *app.SummaryService
	logger  *zap.Logger
}

func NewSummaryHandler(service *app.SummaryService, logger *zap.Logger) *SummaryHandler {
	return &SummaryHandler{service: service, logger: logger}
}

func (h *SummaryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	quizID := r.PathValue("id")

	view := app.NewView(app.WithNavigator(app.NavigatorFunc(func(path string) {
		http.Redirect(w, r, path, http.StatusSeeOther)
	})))
	defer view.Close()

	state, err := h.service.Load(r.Context(), view, user, quizID)
	switch {
	case err == nil && state.Status == domain.StatusRedirected:
		// navigator already wrote the redirect
	case err == nil:
		writeJSON(w, http.StatusOK, dataEnvelope{Data: state.Summary})
	case errors.Is(err, domain.ErrMalformedSummaryData):
		writeError(w, http.StatusInternalServerError, "failed to load quiz summary: "+err.Error())
	default:
		writeError(w, http.StatusBadGateway, "failed to load quiz summary")
	}
}
