package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestGinMiddleware_CountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinMiddleware())
	router.GET("/api/v1/jobs/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+strings.Repeat("9", i+1), nil))
	}

	labels := prometheus.Labels{"method": http.MethodGet, "path": "/api/v1/jobs/:id", "status": "404"}
	if got := testutil.ToFloat64(requestTotal.With(labels)); got != 2 {
		t.Fatalf("expected 2 requests recorded under the route template, got %v", got)
	}
}

func TestObserveRateLimited(t *testing.T) {
	before := testutil.ToFloat64(rateLimitedTotal.WithLabelValues("/x"))
	ObserveRateLimited("/x")
	if got := testutil.ToFloat64(rateLimitedTotal.WithLabelValues("/x")); got != before+1 {
		t.Fatalf("expected counter to grow by one, got %v -> %v", before, got)
	}
}
