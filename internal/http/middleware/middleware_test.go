package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/moviegraph/internal/observability"
)

func TestCORSAllowsConfiguredOrigins(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	cases := []struct {
		configured []string
		origin     string
		allowed    bool
	}{
		{nil, "http://localhost:5173", true},
		{nil, "http://evil.example", false},
		{[]string{"https://movies.example"}, "https://movies.example", true},
		{[]string{"https://movies.example"}, "http://localhost:5173", false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.origin, func(t *testing.T) {
			t.Parallel()
			r := gin.New()
			r.Use(CORS(tc.configured...))
			r.GET("/api/stats/counts", func(c *gin.Context) {
				c.Status(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/stats/counts", nil)
			req.Header.Set("Origin", tc.origin)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			got := rec.Header().Get("Access-Control-Allow-Origin")
			if tc.allowed && got != tc.origin {
				t.Fatalf("allow-origin: want=%q got=%q", tc.origin, got)
			}
			if !tc.allowed && got != "" {
				t.Fatalf("allow-origin: want none got=%q", got)
			}
		})
	}
}

func TestTraceContextHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var seen string
	r.GET("/x", func(c *gin.Context) {
		seen = c.GetString("request_id")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerRequestID, "req-42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if seen != "req-42" || rec.Header().Get(headerRequestID) != "req-42" {
		t.Fatalf("request id: want=%q got ctx=%q header=%q", "req-42", seen, rec.Header().Get(headerRequestID))
	}
	if rec.Header().Get(headerTraceID) == "" {
		t.Fatalf("trace id header missing")
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if len(rec.Header().Get(headerRequestID)) != 36 {
		t.Fatalf("generated request id: got=%q", rec.Header().Get(headerRequestID))
	}
}

func TestMetricsMiddlewareLabelsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.NewMetrics()
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/movies/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/movies/27205", nil))

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	want := `mg_api_requests_total{method="GET",route="/api/movies/:id",status="418"} 1`
	if !strings.Contains(buf.String(), want) {
		t.Fatalf("missing %q in:\n%s", want, buf.String())
	}
}
