package handler

import (
	"net/http"

	"edupay-service/prometheus"

	"github.com/labstack/echo/v4"
)

// Welcome answers the root path
func Welcome(c echo.Context) error {
	return c.String(http.StatusOK, "Bienvenue sur le backend EduPay !")
}

// HealthCheck handles the health check endpoint
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "healthy",
		"service": "edupay-service",
	})
}

// MetricsHandler exposes Prometheus metrics
func MetricsHandler(c echo.Context) error {
	prometheus.GetPrometheusHandler().ServeHTTP(c.Response(), c.Request())
	return nil
}
