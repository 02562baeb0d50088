package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	httpH "github.com/yungbote/clanhub-backend/internal/http/handlers"
	"github.com/yungbote/clanhub-backend/internal/observability"
)

func TestRouterServesHealthAndMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterConfig{
		Metrics:       observability.NewMetrics(),
		HealthHandler: httpH.NewHealthHandler(nil),
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthcheck: want=200 got=%d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: want=200 got=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "clanhub_api_requests_total") {
		t.Fatalf("metrics: request counter missing from exposition")
	}
}

func TestRouterRejectsBadActorBeforeHandlers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterConfig{WeeklyHandler: httpH.NewWeeklyHandler(nil)})

	req := httptest.NewRequest(http.MethodGet, "/api/clans/"+uuid.NewString()+"/weekly", nil)
	req.Header.Set("X-User-Id", "nope")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad actor: want=400 got=%d", rec.Code)
	}
}

func TestRouterOmitsUnconfiguredRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterConfig{})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/clans/"+uuid.NewString()+"/history", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("history without handler: want=404 got=%d", rec.Code)
	}
}
