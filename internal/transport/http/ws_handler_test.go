package http

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"quiz-summary-service/internal/domain"
)

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func dialSummary(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws/summary?" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readUntil(t *testing.T, conn *websocket.Conn, match func(wsMessage) bool) wsMessage {
	t.Helper()
	for i := 0; i < 10; i++ {
		var msg wsMessage
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json: %v", err)
		}
		if match(msg) {
			return msg
		}
	}
	t.Fatalf("expected message not received")
	return wsMessage{}
}

func stateWithStatus(status domain.Status) func(wsMessage) bool {
	return func(msg wsMessage) bool {
		if msg.Type != "state" {
			return false
		}
		var state domain.ViewState
		if err := json.Unmarshal(msg.Payload, &state); err != nil {
			return false
		}
		return state.Status == status
	}
}

func TestWebSocketSummaryFlow(t *testing.T) {
	server, _ := newTestServer(t)
	conn := dialSummary(t, server, "token=tok-u1&quizId=quiz-1")

	msg := readUntil(t, conn, stateWithStatus(domain.StatusReady))
	var state domain.ViewState
	if err := json.Unmarshal(msg.Payload, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state.Summary == nil || state.Summary.QuizID != "quiz-1" {
		t.Fatalf("expected summary for quiz-1, got %+v", state.Summary)
	}

	// quiz-2 belongs to u2
	load := map[string]any{"type": "load", "payload": map[string]any{"quizId": "quiz-2"}}
	if err := conn.WriteJSON(load); err != nil {
		t.Fatalf("write load: %v", err)
	}
	redirect := readUntil(t, conn, func(m wsMessage) bool { return m.Type == "redirect" })
	var payload redirectPayload
	if err := json.Unmarshal(redirect.Payload, &payload); err != nil {
		t.Fatalf("decode redirect: %v", err)
	}
	if payload.Path != domain.HomePath {
		t.Fatalf("expected redirect home, got %q", payload.Path)
	}
}

func TestWebSocketRejectsUnknownMessages(t *testing.T) {
	server, _ := newTestServer(t)
	conn := dialSummary(t, server, "token=tok-u1")

	if err := conn.WriteJSON(map[string]any{"type": "answer"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	readUntil(t, conn, func(m wsMessage) bool { return m.Type == "error" })
}

func TestWebSocketRequiresSession(t *testing.T) {
	server, _ := newTestServer(t)
	u := "ws" + server.URL[len("http"):] + "/ws/summary?quizId=quiz-1"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected dial to fail without a session")
	}
	if resp == nil || resp.StatusCode != 401 {
		t.Fatalf("expected 401 handshake response, got %+v", resp)
	}
}

func TestWebSocketReportsLoadingComplete(t *testing.T) {
	server, _ := newTestServer(t)
	conn := dialSummary(t, server, "token=tok-u1&quizId=quiz-1")

	readUntil(t, conn, func(m wsMessage) bool {
		if m.Type != "loading" {
			return false
		}
		var payload loadingPayload
		return json.Unmarshal(m.Payload, &payload) == nil && payload.Done
	})
}

func TestOutboxStopsWhenWriterExits(t *testing.T) {
	out := newOutbox(1)
	if !out.push(outboundMessage[any]{Type: "state"}) {
		t.Fatalf("expected first push to be queued")
	}
	close(out.writerDone)

	pushed := make(chan bool, 1)
	go func() { pushed <- out.push(outboundMessage[any]{Type: "state"}) }()
	select {
	case ok := <-pushed:
		if ok {
			t.Fatalf("expected push to be dropped after the writer stopped")
		}
	case <-time.After(time.Second):
		t.Fatalf("push blocked on a full queue with no writer")
	}
}

func TestOutboxStopsWhenClosing(t *testing.T) {
	out := newOutbox(0)
	close(out.closing)
	if out.push(outboundMessage[any]{Type: "error"}) {
		t.Fatalf("expected push to be dropped while closing")
	}
}
