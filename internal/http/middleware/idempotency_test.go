package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type lookupCall struct {
	scope, key string
}

func TestIdempotencyValidator(t *testing.T) {
	var calls []lookupCall
	lookup := func(_ context.Context, scope, key string, _ time.Time) (bool, error) {
		calls = append(calls, lookupCall{scope, key})
		switch key {
		case "seen":
			return true, nil
		case "broken":
			return true, errors.New("db down")
		}
		return false, nil
	}

	type result struct {
		key    string
		replay bool
		bypass bool
	}
	var got result
	r := newEngine(IdempotencyValidator(IdempotencyOptions{MaxLen: 16, BasePath: "/api/"}, lookup))
	api := r.Group("/api")
	handler := func(c *gin.Context) {
		k, _ := GetIdempotencyKey(c)
		got = result{k, IsReplay(c), IsRateBypass(c)}
		c.Status(http.StatusOK)
	}
	api.POST("/signup", handler)
	api.GET("/dashboard/:id", handler)

	tests := []struct {
		name   string
		method string
		path   string
		key    string
		status int
		want   result
	}{
		{"no header", http.MethodPost, "/api/signup", "", 200, result{}},
		{"get ignored", http.MethodGet, "/api/dashboard/u1", "seen", 200, result{}},
		{"too long", http.MethodPost, "/api/signup", strings.Repeat("a", 17), 400, result{}},
		{"bad chars", http.MethodPost, "/api/signup", "a b", 400, result{}},
		{"fresh", http.MethodPost, "/api/signup", "fresh", 200, result{key: "fresh"}},
		{"replay", http.MethodPost, "/api/signup", "seen", 200, result{key: "seen", replay: true, bypass: true}},
		{"lookup error is a miss", http.MethodPost, "/api/signup", "broken", 200, result{key: "broken"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got = result{}
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.key != "" {
				req.Header.Set(HeaderIdempotencyKey, tc.key)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d", w.Code, tc.status)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}

	for _, c := range calls {
		if c.scope != "/signup" {
			t.Fatalf("lookup scope = %q, want /signup", c.scope)
		}
	}
}

func TestIdempotencyScope(t *testing.T) {
	cases := []struct{ route, base, want string }{
		{"/api/signup", "/api", "/signup"},
		{"/api/signup", "/api/", "/signup"},
		{"/signup", "", "/signup"},
		{"/api", "/api", "/"},
		{"", "", "/"},
	}
	for _, c := range cases {
		if got := IdempotencyScope(c.route, c.base); got != c.want {
			t.Errorf("IdempotencyScope(%q,%q) = %q, want %q", c.route, c.base, got, c.want)
		}
	}
}
