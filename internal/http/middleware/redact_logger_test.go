package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestRedact(t *testing.T) {
	cases := map[string]string{
		"":                   "",
		"farmer@example.com": "[REDACTED:email]",
		"call 555-123-4567":  "call [REDACTED:phone]",
		"days=7":             "days=7",
		"id=3f2b8c1e-7d4a-4b9e-9f11-2c3d4e5f6a7b": "id=[REDACTED:id]",
	}
	for in, want := range cases {
		if got := redact(in); got != want {
			t.Errorf("redact(%q) = %q, want %q", in, got, want)
		}
	}
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestRedactingLogger_UsesRouteTemplateAndMasksHeaders(t *testing.T) {
	buf := captureLog(t)

	r := newEngine(RequestID(), RedactingLogger(RedactOptions{MaskHeaders: []string{"X-Api-Key"}}))
	var scopedSet bool
	r.GET("/dashboard/:id", func(c *gin.Context) {
		_, scopedSet = c.Get(loggerKey)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/dashboard/3f2b8c1e-7d4a-4b9e-9f11-2c3d4e5f6a7b", nil)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("X-Api-Key", "k-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	if !scopedSet {
		t.Fatal("request-scoped logger not installed")
	}
	line := buf.String()
	if strings.Contains(line, "3f2b8c1e") || strings.Contains(line, "secret") || strings.Contains(line, "k-1") {
		t.Fatalf("sensitive data leaked: %s", line)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &entry); err != nil {
		t.Fatalf("log not JSON: %v", err)
	}
	if entry["route"] != "/dashboard/:id" || entry["level"] != "info" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestRedactingLogger_LevelFollowsStatus(t *testing.T) {
	buf := captureLog(t)

	r := newEngine(RedactingLogger(RedactOptions{}))
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/err", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bad", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/err", nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], `"level":"warn"`) || !strings.Contains(lines[1], `"level":"error"`) {
		t.Fatalf("levels wrong: %v", lines)
	}
}
