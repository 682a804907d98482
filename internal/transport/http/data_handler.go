package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"quiz-summary-service/internal/app"
	"quiz-summary-service/internal/domain"
)

type cacheInvalidator interface {
	Invalidate(ctx context.Context, quizID string) error
}

// DataHandler exposes the quiz data API the summary pipeline consumes.
type DataHandler struct {
	source   app.QuizSource
	recorder app.AttemptRecorder
	logger   *zap.Logger
}

// NewDataHandler builds the handler. recorder may be nil when attempts are not stored locally.
func NewDataHandler(source app.QuizSource, recorder app.AttemptRecorder, logger *zap.Logger) *DataHandler {
	return &DataHandler{source: source, recorder: recorder, logger: logger}
}

func (h *DataHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.source.GetQuiz(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeSourceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dataEnvelope{Data: quiz})
}

func (h *DataHandler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.source.GetQuestions(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeSourceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dataEnvelope{Data: questions})
}

// GetStatistics is restricted to the quiz creator.
func (h *DataHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	quizID := r.PathValue("id")
	user, _ := UserFromContext(r.Context())

	quiz, err := h.source.GetQuiz(r.Context(), quizID)
	if err != nil {
		h.writeSourceError(w, err)
		return
	}
	if app.Authorize(user.ID, &quiz) == app.Denied {
		writeError(w, http.StatusForbidden, domain.ErrForbidden.Error())
		return
	}
	stats, err := h.source.GetStatistics(r.Context(), quizID)
	if err != nil {
		h.writeSourceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dataEnvelope{Data: stats})
}

type attemptRequest struct {
	Selected []int `json:"selected"`
}

func (h *DataHandler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	if h.recorder == nil {
		writeError(w, http.StatusNotImplemented, "attempts are not stored by this instance")
		return
	}
	quizID := r.PathValue("id")
	user, _ := UserFromContext(r.Context())

	var req attemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid attempt payload")
		return
	}

	attempt, err := h.recorder.SubmitAttempt(r.Context(), quizID, user.ID, req.Selected)
	switch {
	case errors.Is(err, domain.ErrInvalidAttempt):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.writeSourceError(w, err)
		return
	}

	if inv, ok := h.source.(cacheInvalidator); ok {
		if err := inv.Invalidate(r.Context(), quizID); err != nil {
			h.logger.Warn("cache invalidation failed", zap.String("quiz_id", quizID), zap.Error(err))
		}
	}
	writeJSON(w, http.StatusCreated, dataEnvelope{Data: attempt})
}

func (h *DataHandler) writeSourceError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrQuizNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.logger.Error("quiz data request failed", zap.Error(err))
	writeError(w, http.StatusBadGateway, "quiz data unavailable")
}
