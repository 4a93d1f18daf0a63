package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/s3gate/component"
	apperrors "github.com/kbukum/s3gate/errors"
	"github.com/kbukum/s3gate/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := Config{Host: "127.0.0.1"}
	cfg.ApplyDefaults()
	cfg.Port = 0
	return New(cfg, logger.Nop())
}

func get(s *Server, method, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(method, path, http.NoBody))
	return rr
}

func TestConfigDefaultsAndValidate(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Port != 8080 || cfg.WriteTimeout != 300 || cfg.ShutdownTimeout != 10 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	cfg.Port = 70000
	cfg.CORS.AllowCredentials = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestHealthEndpointAggregates(t *testing.T) {
	tests := []struct {
		name       string
		components []component.Health
		wantCode   int
		wantStatus string
	}{
		{"healthy", []component.Health{{Name: "storage", Status: component.StatusHealthy}}, http.StatusOK, "healthy"},
		{"degraded", []component.Health{{Name: "storage", Status: component.StatusDegraded}}, http.StatusOK, "degraded"},
		{"unhealthy", []component.Health{
			{Name: "a", Status: component.StatusDegraded},
			{Name: "storage", Status: component.StatusUnhealthy},
		}, http.StatusServiceUnavailable, "unhealthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.RegisterDefaultEndpoints("s3gate", func(context.Context) []component.Health { return tt.components }, nil)

			rr := get(s, "GET", "/health")
			if rr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rr.Code)
			}
			var body map[string]any
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body["status"] != tt.wantStatus {
				t.Fatalf("expected %s, got %v", tt.wantStatus, body["status"])
			}

			ready := get(s, "GET", "/ready")
			if (ready.Code == http.StatusServiceUnavailable) != (tt.wantStatus == "unhealthy") {
				t.Fatalf("unexpected readiness code %d", ready.Code)
			}
		})
	}
}

func TestInfoAndVersionEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.RegisterDefaultEndpoints("s3gate", nil, map[string]any{"bucket": "data"})

	var info map[string]any
	rr := get(s, "GET", "/info")
	if err := json.Unmarshal(rr.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	if info["service"] != "s3gate" || info["bucket"] != "data" {
		t.Fatalf("unexpected info body %v", info)
	}

	var v map[string]any
	rr = get(s, "GET", "/version")
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatal(err)
	}
	if _, ok := v["version"]; !ok {
		t.Fatalf("expected version field, got %v", v)
	}
	if rr := get(s, "GET", "/live"); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 from /live, got %d", rr.Code)
	}
}

func TestRespondWithError(t *testing.T) {
	s := newTestServer(t)
	s.ApplyMiddleware(nil)
	r := s.GinEngine()
	r.GET("/app", func(c *gin.Context) { RespondWithError(c, apperrors.ObjectNotFound("a/b")) })
	r.HEAD("/app", func(c *gin.Context) { RespondWithError(c, apperrors.ObjectNotFound("a/b")) })
	r.GET("/plain", func(c *gin.Context) { RespondWithError(c, errors.New("boom")) })

	rr := get(s, "GET", "/app")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	var body apperrors.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error.Message != "File or folder not found: a/b" {
		t.Fatalf("unexpected message %q", body.Error.Message)
	}

	if rr := get(s, "HEAD", "/app"); rr.Code != http.StatusNotFound || rr.Body.Len() != 0 {
		t.Fatalf("expected bodiless 404, got %d %q", rr.Code, rr.Body.String())
	}
	if rr := get(s, "GET", "/plain"); rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	s.GinEngine().GET("/only-get", func(c *gin.Context) { c.Status(http.StatusOK) })
	if rr := get(s, "POST", "/only-get"); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestStartStop(t *testing.T) {
	s := newTestServer(t)
	s.RegisterDefaultEndpoints("s3gate", nil, nil)
	sc := NewComponent(s)

	if h := sc.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Fatalf("expected unhealthy before start, got %s", h.Status)
	}
	if err := sc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() { _ = sc.Stop(context.Background()) }()

	if h := sc.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Fatalf("expected healthy after start, got %s", h.Status)
	}

	resp, err := http.Get("http://" + s.Addr() + "/live")
	if err != nil {
		t.Fatalf("GET /live: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestRoutesSorted(t *testing.T) {
	s := newTestServer(t)
	s.RegisterDefaultEndpoints("s3gate", nil, nil)
	s.GinEngine().HEAD("/s3/get/*file_path", func(c *gin.Context) {})
	s.GinEngine().GET("/s3/get/*file_path", func(c *gin.Context) {})

	routes := NewComponent(s).Routes()
	if len(routes) != 7 {
		t.Fatalf("expected 7 routes, got %d", len(routes))
	}
	if routes[0].Method != "GET" || routes[1].Method != "HEAD" || routes[0].Path != "/s3/get/*file_path" {
		t.Fatalf("API routes should come first, GET before HEAD: %+v", routes[:2])
	}
	if !systemPaths[routes[len(routes)-1].Path] {
		t.Fatalf("system routes should come last: %+v", routes)
	}
}

func TestFormatHandlerName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"github.com/kbukum/s3gate/gateway.(*Handler).GetFile-fm", "Handler.GetFile"},
		{"github.com/kbukum/s3gate/server/endpoint.Health.func1", "health"},
		{"github.com/kbukum/s3gate/server/endpoint.Version.func1", "version"},
		{"main.main", "main"},
	}
	for _, tt := range tests {
		if got := formatHandlerName(tt.in); got != tt.want {
			t.Errorf("formatHandlerName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
