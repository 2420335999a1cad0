package main

import (
	"context"
	"flag"
	"os"

	"edupay-service/internal/service"
	"edupay-service/pkg/config"
	"edupay-service/pkg/crypto"
	"edupay-service/pkg/database"
	"edupay-service/pkg/jwtutil"
	"edupay-service/pkg/logger"

	"go.uber.org/zap"
)

// Provisions a SuperUser. Usage: create-admin -email admin@example.com -password secret
func main() {
	email := flag.String("email", "", "administrator email")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "administrator password (defaults to $ADMIN_PASSWORD)")
	flag.Parse()

	if *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()

	if err := run(cfg, log, *email, *password); err != nil {
		log.Error("Failed to create administrator", zap.String("email", *email), zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

func run(cfg *config.Config, log *zap.Logger, email, password string) error {
	db, err := database.Open(&cfg.DB)
	if err != nil {
		return err
	}
	defer database.Close(db)

	tokens := jwtutil.NewJWTUtil(cfg.JWT.SigningKey, cfg.JWT.TTL())
	admins := service.NewAdminService(db, crypto.NewHasher(cfg.Auth.PasswordHashCost), tokens, log)

	_, err = admins.CreateSuperUser(context.Background(), email, password)
	return err
}
