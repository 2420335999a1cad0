package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

const defaultSigningKey = "changeme"

// DBConfig holds database configuration
type DBConfig struct {
	URL             string
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// GetDSN returns the PostgreSQL connection string. DATABASE_URL wins over the discrete DB_* settings.
func (c *DBConfig) GetDSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SigningKey      string
	ExpirationHours int
}

// TTL returns the default token lifetime
func (c JWTConfig) TTL() time.Duration {
	return time.Duration(c.ExpirationHours) * time.Hour
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// OTPConfig holds one-time code settings
type OTPConfig struct {
	TTL           time.Duration
	SweepSchedule string
	SweepGrace    time.Duration
	WebhookURL    string
}

// AuthConfig holds password hashing settings
type AuthConfig struct {
	PasswordHashCost int
}

// UploadConfig holds receipt upload settings
type UploadConfig struct {
	Dir      string
	MaxBytes int64
}

// Config holds all configuration
type Config struct {
	DB     DBConfig
	Server ServerConfig
	JWT    JWTConfig
	Log    LogConfig
	OTP    OTPConfig
	Auth   AuthConfig
	Upload UploadConfig
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: .env file not found, using environment variables\n")
	}

	config := &Config{
		DB: DBConfig{
			URL:             getEnv("DATABASE_URL", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "edupay"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Warn),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8001"),
			Env:  getEnv("APP_ENV", "development"),
		},
		JWT: JWTConfig{
			SigningKey:      getEnv("JWT_SIGNING_KEY", defaultSigningKey),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 168),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		OTP: OTPConfig{
			TTL:           getEnvAsDuration("OTP_TTL", 5*time.Minute),
			SweepSchedule: getEnv("OTP_SWEEP_SCHEDULE", "*/15 * * * *"),
			SweepGrace:    getEnvAsDuration("OTP_SWEEP_GRACE", 1*time.Hour),
			WebhookURL:    getEnv("OTP_WEBHOOK_URL", ""),
		},
		Auth: AuthConfig{
			PasswordHashCost: getEnvAsInt("PASSWORD_HASH_COST", 10),
		},
		Upload: UploadConfig{
			Dir:      getEnv("UPLOAD_DIR", "uploads"),
			MaxBytes: int64(getEnvAsInt("UPLOAD_MAX_BYTES", 5*1024*1024)),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Validate rejects settings that must never reach production
func (c *Config) Validate() error {
	if c.JWT.ExpirationHours <= 0 {
		return errors.New("JWT_EXPIRATION_HOURS must be positive")
	}
	if c.OTP.TTL <= 0 {
		return errors.New("OTP_TTL must be positive")
	}
	if c.Upload.MaxBytes <= 0 {
		return errors.New("UPLOAD_MAX_BYTES must be positive")
	}
	if !c.IsProduction() {
		return nil
	}
	if c.JWT.SigningKey == defaultSigningKey || c.JWT.SigningKey == "" {
		return errors.New("JWT_SIGNING_KEY must be set in production")
	}
	if c.OTP.WebhookURL == "" {
		return errors.New("OTP_WEBHOOK_URL must be set in production")
	}
	return nil
}

// LogConfig returns the configuration as zap fields, secrets excluded
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("environment", c.Server.Env),
		zap.String("db_host", c.DB.Host),
		zap.String("db_name", c.DB.DBName),
		zap.Bool("db_url_set", c.DB.URL != ""),
		zap.String("server_port", c.Server.Port),
		zap.Int("jwt_expiration_hours", c.JWT.ExpirationHours),
		zap.Duration("otp_ttl", c.OTP.TTL),
		zap.String("upload_dir", c.Upload.Dir),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsLogLevel(key string, defaultValue logger.LogLevel) logger.LogLevel {
	switch getEnv(key, "") {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}
