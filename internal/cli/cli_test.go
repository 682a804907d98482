package cli

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"quiz-summary-service/internal/config"
	"quiz-summary-service/internal/domain"
)

func TestSeedDefinitionsReadsSampleFile(t *testing.T) {
	defs, err := seedDefinitions("../../config/quizzes.yaml")
	if err != nil {
		t.Fatalf("seed definitions: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("expected 2 quizzes, got %d", len(defs))
	}
	first := defs[0]
	if first.Quiz.ID != "quiz-1" || first.Quiz.CreatorID != "u1" {
		t.Fatalf("unexpected quiz %+v", first.Quiz)
	}
	if first.Questions[0].Text != "What is 2 + 2?" || first.Questions[0].CorrectOption != 1 {
		t.Fatalf("unexpected question %+v", first.Questions[0])
	}
}

func TestSeedDefinitionsFallback(t *testing.T) {
	defs, err := seedDefinitions("does-not-exist.yaml")
	if err != nil {
		t.Fatalf("expected fallback, got %v", err)
	}
	if len(defs) != 1 || defs[0].Quiz.ID != "quiz-1" {
		t.Fatalf("unexpected fallback %+v", defs)
	}
}

func memoryConfig() config.Config {
	var cfg config.Config
	cfg.Server.PublicOrigin = "http://localhost:8080"
	cfg.Quiz.SeedFile = "../../config/quizzes.yaml"
	cfg.Auth.Tokens = map[string]string{"dev-token-u1": "u1"}
	return cfg
}

func TestPrintSummaryForCreator(t *testing.T) {
	ctx := context.Background()
	rt, err := buildRuntime(ctx, memoryConfig(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("build runtime: %v", err)
	}
	defer rt.Close()

	var out bytes.Buffer
	if err := printSummary(ctx, &out, rt.service, domain.User{ID: "u1"}, "quiz-1"); err != nil {
		t.Fatalf("print summary: %v", err)
	}
	if !strings.Contains(out.String(), `"status": "ready"`) {
		t.Fatalf("expected ready state, got %s", out.String())
	}
	if !strings.Contains(out.String(), "http://localhost:8080/quiz/quiz-1") {
		t.Fatalf("expected sharable link, got %s", out.String())
	}
}

func TestPrintSummaryRedirectsOthers(t *testing.T) {
	ctx := context.Background()
	rt, err := buildRuntime(ctx, memoryConfig(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("build runtime: %v", err)
	}
	defer rt.Close()

	var out bytes.Buffer
	if err := printSummary(ctx, &out, rt.service, domain.User{ID: "u2"}, "quiz-1"); err != nil {
		t.Fatalf("print summary: %v", err)
	}
	if !strings.Contains(out.String(), "redirect: /") {
		t.Fatalf("expected redirect line, got %s", out.String())
	}
}

func TestRuntimeSeedsConfiguredTokens(t *testing.T) {
	ctx := context.Background()
	rt, err := buildRuntime(ctx, memoryConfig(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("build runtime: %v", err)
	}
	defer rt.Close()

	user, err := rt.sessions.Lookup(ctx, "dev-token-u1")
	if err != nil || user.ID != "u1" {
		t.Fatalf("expected seeded token for u1, got %+v err=%v", user, err)
	}
	if rt.recorder == nil {
		t.Fatalf("expected in-memory store to record attempts")
	}
}

func TestRunServerReturnsListenError(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	port := strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)

	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := "server:\n  port: \"" + port + "\"\nlog:\n  level: error\n"
	if err := os.WriteFile(path, []byte(cfg), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- runServer(context.Background(), path, "") }()

	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("expected listen error for a port in use")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("runServer did not return after failing to listen")
	}
}
