package http

import (
	"net/http"

	"go.uber.org/zap"

	"quiz-summary-service/internal/app"
)

// RouterDeps are the components the HTTP surface is built from.
type RouterDeps struct {
	Service  *app.SummaryService
	Source   app.QuizSource
	Recorder app.AttemptRecorder
	Sessions app.SessionStore
	Logger   *zap.Logger
}

// NewRouter wires every route of the service.
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	auth := RequireUser(deps.Sessions, logger)
	summary := NewSummaryHandler(deps.Service, logger)
	data := NewDataHandler(deps.Source, deps.Recorder, logger)
	ws := NewWSHandler(deps.Service, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quiz summary service"))
	})

	mux.Handle("GET /api/quizzes/{id}", http.HandlerFunc(data.GetQuiz))
	mux.Handle("GET /api/quizzes/{id}/questions", http.HandlerFunc(data.GetQuestions))
	mux.Handle("GET /api/quizzes/{id}/statistics", auth(http.HandlerFunc(data.GetStatistics)))
	mux.Handle("POST /api/quizzes/{id}/attempts", auth(http.HandlerFunc(data.SubmitAttempt)))
	mux.Handle("GET /api/quizzes/{id}/summary", auth(summary))
	mux.Handle("GET /ws/summary", auth(http.HandlerFunc(ws.ServeWS)))

	return logRequests(logger, mux)
}
