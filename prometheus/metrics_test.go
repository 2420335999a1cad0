package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestMetricsMiddlewareExposesRequests(t *testing.T) {
	e := echo.New()
	e.Use(MetricsMiddleware())
	e.GET("/ping", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/metrics", echo.WrapHandler(GetPrometheusHandler()))

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))
	RecordAuthError("missing_token")
	RecordPaymentTransition("completed")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	for _, want := range []string{
		`edupay_http_requests_total{endpoint="/ping",method="GET",status="204"}`,
		`edupay_auth_errors_total{type="missing_token"}`,
		`edupay_payment_transitions_total{to="completed"}`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %s", want)
		}
	}
}
