package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port       string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	// Token settings
	JWTSecret        string
	RefreshJWTSecret string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	// Initial admin, created when no admin profile exists
	AdminEmail    string
	AdminPassword string
	AdminFullName string
	// Verification codes; empty RedisAddr keeps codes in process memory
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	VerificationCodeTTL time.Duration
	// Mail; empty SMTPHost logs messages instead of sending them
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	ServiceName  string
}

func Load() *Config {
	jwtSecret := getenv("JWT_SECRET", "supersecret_change_me")
	return &Config{
		Port:                getenv("PORT", "8080"),
		DBHost:              getenv("DB_HOST", "localhost"),
		DBPort:              getenv("DB_PORT", "5432"),
		DBUser:              getenv("DB_USER", "postgres"),
		DBPassword:          getenv("DB_PASSWORD", "postgres"),
		DBName:              getenv("DB_NAME", "uhsms"),
		DBSSLMode:           getenv("DB_SSLMODE", "disable"),
		JWTSecret:           jwtSecret,
		RefreshJWTSecret:    getenv("REFRESH_JWT_SECRET", jwtSecret),
		AccessTokenTTL:      time.Duration(getenvInt("ACCESS_TOKEN_TTL_MINUTES", 15)) * time.Minute,
		RefreshTokenTTL:     time.Duration(getenvInt("REFRESH_TOKEN_TTL_DAYS", 30)) * 24 * time.Hour,
		AdminEmail:          getenv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword:       getenv("ADMIN_PASSWORD", "Admin12345"),
		AdminFullName:       getenv("ADMIN_FULL_NAME", "System Administrator"),
		RedisAddr:           getenv("REDIS_ADDR", ""),
		RedisPassword:       getenv("REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("REDIS_DB", 0),
		VerificationCodeTTL: getenvDuration("VERIFICATION_CODE_TTL", 10*time.Minute),
		SMTPHost:            getenv("SMTP_HOST", ""),
		SMTPPort:            getenvInt("SMTP_PORT", 587),
		SMTPUsername:        getenv("SMTP_USERNAME", ""),
		SMTPPassword:        getenv("SMTP_PASSWORD", ""),
		MailFrom:            getenv("MAIL_FROM", "UCU Hostel System <no-reply@localhost>"),
		ServiceName:         getenv("OTEL_SERVICE_NAME", "uhsms"),
	}
}

func getenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	if v := os.Getenv(key + "_SECONDS"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
