package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"edupay-service/internal/handler"
	"edupay-service/internal/jobs"
	"edupay-service/internal/middleware"
	"edupay-service/internal/notify"
	"edupay-service/internal/service"
	"edupay-service/internal/storage"
	"edupay-service/pkg/config"
	"edupay-service/pkg/crypto"
	"edupay-service/pkg/database"
	"edupay-service/pkg/jwtutil"
	"edupay-service/pkg/logger"
	"edupay-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()
	log.Info("Starting EduPay service...", cfg.LogConfig()...)

	// Amounts go out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	// Initialize database
	db, err := database.Open(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close(db)
	log.Info("Database connection established")

	tokens := jwtutil.NewJWTUtil(cfg.JWT.SigningKey, cfg.JWT.TTL())
	hasher := crypto.NewHasher(cfg.Auth.PasswordHashCost)

	var sender notify.Sender
	if cfg.OTP.WebhookURL != "" {
		sender = notify.NewWebhookSender(cfg.OTP.WebhookURL, 10*time.Second)
	} else {
		log.Warn("OTP_WEBHOOK_URL not set, one-time codes will be written to the log")
		sender = notify.NewLogSender(log)
	}

	otp := service.NewOTPService(db, hasher, tokens, sender, cfg.OTP.TTL, log)
	h := handler.New(handler.Services{
		OTP:      otp,
		Schools:  service.NewSchoolService(db, hasher, tokens, log),
		Admin:    service.NewAdminService(db, hasher, tokens, log),
		Children: service.NewChildService(db, log),
		Fees:     service.NewFeeService(db, log),
		Payments: service.NewPaymentService(db, storage.NewReceipts(cfg.Upload.Dir, cfg.Upload.MaxBytes), log),
	})

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)

	sweeper, err := jobs.NewOTPSweeper(otp, cfg.OTP.SweepSchedule, cfg.OTP.SweepGrace, log)
	if err != nil {
		log.Fatal("Failed to schedule OTP sweeper", zap.Error(err))
	}

	// Initialize Echo framework
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	handler.Register(e, h, tokens)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweeper.Start()
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	sweeper.Stop(shutdownCtx)
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
}
