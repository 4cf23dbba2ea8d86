// Package config loads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/neomorfeo/gestloc/internal/adapter/auth"
	"github.com/neomorfeo/gestloc/internal/app"
)

// Config is the complete runtime configuration.
type Config struct {
	Port          string
	DatabasePath  string
	UploadDir     string
	TempDir       string
	PublicBaseURL string

	SessionSecret      string
	SessionIdleTimeout time.Duration
	SecureCookies      bool
	AdminEmail         string
	AdminPasswordHash  string

	AdminBCC        []string
	MailFrom        string
	MailFromName    string
	SendGridAPIKey  string
	SendGridSandbox bool

	RenderTimeout  time.Duration
	MaxUploadBytes int64
	LogLevel       slog.Level

	Environment  string
	OTelExporter string
}

// Load reads .env files (when present) and then the environment. Variables
// already set in the environment win over the file.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	cfg := Config{
		Port:              envOrDefault("PORT", "8080"),
		DatabasePath:      envOrDefault("DATABASE_PATH", "gestloc.db"),
		UploadDir:         envOrDefault("UPLOAD_DIR", "uploads"),
		TempDir:           envOrDefault("TEMP_DIR", os.TempDir()+"/gestloc"),
		PublicBaseURL:     envOrDefault("PUBLIC_BASE_URL", "http://localhost:8080"),
		SessionSecret:     os.Getenv("SESSION_SECRET"),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		AdminBCC:          splitList(os.Getenv("ADMIN_BCC")),
		MailFrom:          envOrDefault("MAIL_FROM", "no-reply@localhost"),
		MailFromName:      envOrDefault("MAIL_FROM_NAME", "Gestion locative"),
		SendGridAPIKey:    os.Getenv("SENDGRID_API_KEY"),
		Environment:       envOrDefault("GESTLOC_ENV", "development"),
		OTelExporter:      envOrDefault("OTEL_EXPORTER", "stdout"),
	}

	var err error
	if cfg.SessionIdleTimeout, err = durationOrDefault("SESSION_IDLE_TIMEOUT", auth.DefaultIdleTimeout); err != nil {
		return Config{}, err
	}
	if cfg.RenderTimeout, err = durationOrDefault("RENDER_TIMEOUT", app.DefaultRenderTimeout); err != nil {
		return Config{}, err
	}
	if cfg.MaxUploadBytes, err = intOrDefault("MAX_UPLOAD_BYTES", app.DefaultMaxPhotoBytes); err != nil {
		return Config{}, err
	}
	if cfg.SendGridSandbox, err = boolOrDefault("SENDGRID_SANDBOX", false); err != nil {
		return Config{}, err
	}
	if cfg.SecureCookies, err = boolOrDefault("SECURE_COOKIES", strings.HasPrefix(cfg.PublicBaseURL, "https://")); err != nil {
		return Config{}, err
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(envOrDefault("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if len(c.SessionSecret) < 32 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 bytes"))
	}
	if c.AdminEmail == "" {
		errs = append(errs, errors.New("ADMIN_EMAIL is required"))
	}
	if c.AdminPasswordHash == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD_HASH is required"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	switch c.OTelExporter {
	case "stdout", "otlp", "none":
	default:
		errs = append(errs, fmt.Errorf("OTEL_EXPORTER %q must be stdout, otlp or none", c.OTelExporter))
	}
	return errors.Join(errs...)
}

// Development reports whether the instance runs outside production, where
// plain HTTP to the OTLP collector is accepted.
func (c Config) Development() bool {
	return c.Environment == "development"
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// durationOrDefault accepts Go durations ("90m") or a bare number of seconds.
func durationOrDefault(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func intOrDefault(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func boolOrDefault(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
