package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"mediavault/internal/domain"
)

const (
	defaultPort           = "8080"
	defaultDatabaseURL    = "mediavault.db"
	defaultJWTSecret      = "change-me-jwt-secret"
	defaultJWTTTL         = "7h"
	defaultUploadDir      = "./uploads"
	defaultStagingDir     = "./uploads/.staging"
	defaultUploadBaseURL  = "http://localhost:8080/uploads/"
	defaultStorageBackend = "local"
	defaultLogFile        = ""
	defaultMediaBucket    = "mediavault"
)

// MediaConfig is the immutable remote media store configuration, injected
// into the media adapter at construction.
type MediaConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func (m MediaConfig) Configured() bool {
	return m.Endpoint != "" && m.AccessKey != "" && m.SecretKey != ""
}

type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

func (s SMTPConfig) Configured() bool {
	return s.Host != "" && s.User != "" && s.Pass != ""
}

type Config struct {
	AppEnv         string
	Port           string
	DatabaseURL    string
	JWTSecret      string
	JWTTTL         time.Duration
	ServiceToken   string // shared "Auth" header for public auth routes
	UploadDir      string
	StagingDir     string
	UploadBaseURL  string // base for projecting local file URLs
	StorageBackend domain.StorageBackend
	Media          MediaConfig
	SMTP           SMTPConfig
	LogFile        string
	Debug          bool
}

func Load() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.Port = getEnv("PORT", defaultPort)
	cfg.DatabaseURL = getEnv("DATABASE_URL", defaultDatabaseURL)
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.ServiceToken = strings.TrimSpace(os.Getenv("AUTH"))
	cfg.UploadDir = getEnv("UPLOAD_DIR", defaultUploadDir)
	cfg.StagingDir = getEnv("STAGING_DIR", defaultStagingDir)
	cfg.UploadBaseURL = getEnv("BACKEND_URL_UPLOADS", defaultUploadBaseURL)
	cfg.LogFile = getEnv("LOG_FILE", defaultLogFile)
	cfg.Debug = getEnv("DEBUG", "false") == "true"

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}

	backend := domain.StorageBackend(strings.ToLower(getEnv("STORAGE_BACKEND", defaultStorageBackend)))
	if !backend.Valid() {
		return nil, fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q",
			domain.BackendLocal, domain.BackendRemote, backend)
	}
	cfg.StorageBackend = backend

	cfg.Media = MediaConfig{
		Endpoint:  strings.TrimSpace(os.Getenv("MEDIA_ENDPOINT")),
		AccessKey: strings.TrimSpace(os.Getenv("MEDIA_ACCESS_KEY")),
		SecretKey: strings.TrimSpace(os.Getenv("MEDIA_SECRET_KEY")),
		Bucket:    getEnv("MEDIA_BUCKET", defaultMediaBucket),
		UseSSL:    getEnv("MEDIA_USE_SSL", "false") == "true",
	}

	smtpPort := 587
	if v := os.Getenv("EMAIL_PORT"); v != "" {
		smtpPort, err = strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("EMAIL_PORT: %w", err)
		}
	}
	cfg.SMTP = SMTPConfig{
		Host: os.Getenv("EMAIL_HOST"),
		Port: smtpPort,
		User: os.Getenv("EMAIL_USER"),
		Pass: os.Getenv("EMAIL_PASS"),
		From: getEnv("EMAIL_FROM", os.Getenv("EMAIL_USER")),
	}

	if cfg.StorageBackend == domain.BackendRemote && !cfg.Media.Configured() {
		return nil, fmt.Errorf("STORAGE_BACKEND=remote requires MEDIA_ENDPOINT, MEDIA_ACCESS_KEY and MEDIA_SECRET_KEY")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDurationEnv(key, fallback string) (time.Duration, error) {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, raw, err)
	}
	return d, nil
}
