package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quiz-summary-service/internal/app"
	"quiz-summary-service/internal/domain"
)

// WSHandler streams the summary view state of one connection. Each connection
// is a mounted view; navigating to another quiz supersedes the previous load.
type WSHandler struct {
	service  *app.SummaryService
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.SummaryService, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type loadPayload struct {
	QuizID string `json:"quizId"`
}

type redirectPayload struct {
	Path string `json:"path"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type wsError struct {
	Message string `json:"message"`
}

type loadingPayload struct {
	Done bool `json:"done"`
}

// outbox queues messages for the connection writer. push gives up once the
// connection is closing or the writer has stopped.
type outbox struct {
	send       chan outboundMessage[any]
	closing    chan struct{}
	writerDone chan struct{}
}

func newOutbox(size int) *outbox {
	return &outbox{
		send:       make(chan outboundMessage[any], size),
		closing:    make(chan struct{}),
		writerDone: make(chan struct{}),
	}
}

func (o *outbox) push(msg outboundMessage[any]) bool {
	select {
	case o.send <- msg:
		return true
	case <-o.closing:
		return false
	case <-o.writerDone:
		return false
	}
}

// ServeWS upgrades the request and serves summary loads for the authenticated user.
// An initial quizId query parameter starts the first load immediately.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "missing session", http.StatusUnauthorized)
		return
	}
	initialQuiz := r.URL.Query().Get("quizId")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancelLoads := context.WithCancel(r.Context())
	defer cancelLoads()

	out := newOutbox(16)
	updatesDone := make(chan struct{})
	enqueue := func(msg outboundMessage[any]) { out.push(msg) }

	view := app.NewView(
		app.WithNavigator(app.NavigatorFunc(func(path string) {
			enqueue(outboundMessage[any]{Type: "redirect", Payload: redirectPayload{Path: path}})
		})),
		app.WithLoadingReporter(app.LoadingReporterFunc(func(done bool) {
			enqueue(outboundMessage[any]{Type: "loading", Payload: loadingPayload{Done: done}})
		})),
	)
	updates, cancelUpdates := view.Subscribe()

	go func() {
		defer close(out.writerDone)
		for msg := range out.send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case state, ok := <-updates:
				if !ok {
					return
				}
				enqueue(outboundMessage[any]{Type: "state", Payload: state})
			case <-out.closing:
				return
			}
		}
	}()

	var loads sync.WaitGroup
	load := func(quizID string) {
		loads.Add(1)
		go func() {
			defer loads.Done()
			_, err := h.service.Load(ctx, view, user, quizID)
			if err != nil && !errors.Is(err, domain.ErrStaleLoad) && !errors.Is(err, domain.ErrViewClosed) {
				h.logger.Debug("ws summary load failed", zap.String("quiz_id", quizID), zap.Error(err))
			}
		}()
	}

	if initialQuiz != "" {
		load(initialQuiz)
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "load":
			var payload loadPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				enqueue(outboundMessage[any]{Type: "error", Payload: wsError{Message: "invalid load payload"}})
				continue
			}
			load(payload.QuizID)
		default:
			enqueue(outboundMessage[any]{Type: "error", Payload: wsError{Message: "unsupported message type"}})
		}
	}

	view.Close()
	cancelLoads()
	close(out.closing)
	loads.Wait()
	cancelUpdates()
	<-updatesDone
	close(out.send)
	<-out.writerDone
}
