package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	LogLevel string

	// Account directory (Postgres).
	DBConn string

	// Session store (Redis).
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration

	// Carrier webhook authentication.
	CarrierAuthToken   string
	ValidateSignatures bool

	// Admin surface.
	JWTSecret         string
	AdminPasswordHash string

	// Voicemail notifications.
	SMTPHost         string
	SMTPPort         string
	SMTPUsername     string
	SMTPPassword     string
	SenderEmail      string
	ServiceDeskEmail string

	// Agent escalation.
	SupportQueue      string
	HoldMusicURL      string
	AgentSIPURI       string
	StatusCallbackURL string

	// Business hours for the call centre, in the local timezone.
	Timezone  string
	OpenHour  int
	CloseHour int
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "3000"),
		LogLevel:           getEnv("LOG_LEVEL", "INFO"),
		DBConn:             getEnv("DB_CONN", "host=localhost port=5432 user=ivr password=ivr dbname=ivr sslmode=disable"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		CarrierAuthToken:   getEnv("CARRIER_AUTH_TOKEN", ""),
		ValidateSignatures: getEnv("VALIDATE_SIGNATURES", "") != "",
		JWTSecret:          getEnv("JWT_SECRET", "secret"),
		AdminPasswordHash:  getEnv("ADMIN_PASSWORD_HASH", ""),
		SMTPHost:           getEnv("SMTP_HOST", "localhost"),
		SMTPPort:           getEnv("SMTP_PORT", "25"),
		SMTPUsername:       getEnv("SMTP_USERNAME", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		SenderEmail:        getEnv("SENDER_EMAIL", "ivr@fakebank.example"),
		ServiceDeskEmail:   getEnv("SERVICE_DESK_EMAIL", "servicedesk@fakebank.example"),
		SupportQueue:       getEnv("SUPPORT_QUEUE", "support"),
		HoldMusicURL:       getEnv("HOLD_MUSIC_URL", "https://assets.fakebank.example/hold.mp3"),
		AgentSIPURI:        getEnv("AGENT_SIP_URI", "sip:agent@fakebank.example"),
		StatusCallbackURL:  getEnv("STATUS_CALLBACK_URL", ""),
		Timezone:           getEnv("TIMEZONE", "Asia/Hong_Kong"),
	}

	var err error
	cfg.RedisDB, err = getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	cfg.OpenHour, err = getEnvInt("OPEN_HOUR", 9)
	if err != nil {
		return nil, err
	}
	cfg.CloseHour, err = getEnvInt("CLOSE_HOUR", 18)
	if err != nil {
		return nil, err
	}
	ttlSeconds, err := getEnvInt("SESSION_TTL_SECONDS", 4*60*60)
	if err != nil {
		return nil, err
	}
	cfg.SessionTTL = time.Duration(ttlSeconds) * time.Second

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("REDIS_ADDR is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.ValidateSignatures && cfg.CarrierAuthToken == "" {
		return nil, fmt.Errorf("CARRIER_AUTH_TOKEN is required when VALIDATE_SIGNATURES is set")
	}
	if cfg.OpenHour < 0 || cfg.OpenHour > 23 || cfg.CloseHour < 0 || cfg.CloseHour > 23 {
		return nil, fmt.Errorf("OPEN_HOUR and CLOSE_HOUR must be within 0-23")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
