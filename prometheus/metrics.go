package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"edupay-service/pkg/config"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	LoginCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edupay_login_total",
			Help: "Total number of successful logins",
		},
		[]string{"role"},
	)

	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "edupay_school_register_total",
			Help: "Total number of school registrations",
		},
	)

	OTPCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edupay_otp_total",
			Help: "One-time code events",
		},
		[]string{"event"}, // requested, verified, expired, mismatch, swept
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edupay_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edupay_auth_errors_total",
			Help: "Total number of authentication and authorization errors",
		},
		[]string{"type"},
	)

	FeeOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edupay_fee_operations_total",
			Help: "Total number of fee operations",
		},
		[]string{"operation"},
	)

	PaymentTransitionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edupay_payment_transitions_total",
			Help: "Payment status transitions",
		},
		[]string{"to"},
	)
)

// Histogram metrics
var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edupay_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edupay_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// Gauge metrics
var (
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "edupay_info",
			Help: "Information about the EduPay service",
		},
		[]string{"version", "environment"},
	)
)

const version = "1.0.0"

func init() {
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(RegisterCounter)
	prometheus.MustRegister(OTPCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(FeeOperationCounter)
	prometheus.MustRegister(PaymentTransitionCounter)

	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	prometheus.MustRegister(InfoGauge)
}

// InitMetrics publishes the service info gauge
func InitMetrics(cfg *config.Config) {
	InfoGauge.With(prometheus.Labels{"version": version, "environment": cfg.Server.Env}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures a database operation; use as defer TrackDBOperation("query")(time.Now())
func TrackDBOperation(operation string) func(time.Time) {
	return func(start time.Time) {
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(time.Since(start).Seconds())
	}
}

// MetricsMiddleware captures request count and duration for each route
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			labels := prometheus.Labels{
				"endpoint": c.Path(),
				"method":   c.Request().Method,
				"status":   strconv.Itoa(c.Response().Status),
			}
			RequestDuration.With(labels).Observe(time.Since(start).Seconds())
			HTTPRequestCounter.With(labels).Inc()

			return err
		}
	}
}

func RecordLogin(role string) {
	LoginCounter.With(prometheus.Labels{"role": role}).Inc()
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

func RecordOTP(event string) {
	OTPCounter.With(prometheus.Labels{"event": event}).Inc()
}

func RecordFeeOperation(operation string) {
	FeeOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

func RecordPaymentTransition(to string) {
	PaymentTransitionCounter.With(prometheus.Labels{"to": to}).Inc()
}
