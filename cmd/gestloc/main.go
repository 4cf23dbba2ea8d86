package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/riandyrn/otelchi"

	"github.com/neomorfeo/gestloc/internal/adapter/auth"
	"github.com/neomorfeo/gestloc/internal/adapter/files"
	"github.com/neomorfeo/gestloc/internal/adapter/fsm"
	"github.com/neomorfeo/gestloc/internal/adapter/mail"
	"github.com/neomorfeo/gestloc/internal/adapter/otel"
	"github.com/neomorfeo/gestloc/internal/adapter/pdf"
	"github.com/neomorfeo/gestloc/internal/adapter/river"
	"github.com/neomorfeo/gestloc/internal/adapter/sqlite"
	"github.com/neomorfeo/gestloc/internal/app"
	"github.com/neomorfeo/gestloc/internal/config"

	handler "github.com/neomorfeo/gestloc/internal/adapter/http"
)

const version = "0.1.0"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		if err := hashPassword(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

// hashPassword reads a password on stdin and prints the bcrypt hash to put
// in ADMIN_PASSWORD_HASH.
func hashPassword() error {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("reading password: %w", err)
	}
	hash, err := auth.HashPassword(strings.TrimRight(line, "\r\n"))
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	fmt.Println(hash)
	return nil
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Telemetry ---
	providers, err := otel.Setup(ctx, otel.Config{
		ServiceName:    "gestloc",
		ServiceVersion: version,
		Environment:    cfg.Environment,
		Exporter:       cfg.OTelExporter,
		Insecure:       cfg.Development(),
		PublicBaseURL:  cfg.PublicBaseURL,
	})
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			slog.Error("otel shutdown", "error", err)
		}
	}()

	// --- Adapters (out) ---
	db, err := otel.OpenDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	store, err := sqlite.NewFromDB(db)
	if err != nil {
		db.Close()
		return fmt.Errorf("database: %w", err)
	}
	defer store.Close()

	templates, err := mail.LoadTemplates()
	if err != nil {
		return fmt.Errorf("mail templates: %w", err)
	}
	var mailer mail.Mailer = mail.LogMailer{}
	if cfg.SendGridAPIKey != "" {
		mailer = mail.NewSendGridMailer(cfg.SendGridAPIKey, cfg.MailFromName, cfg.MailFrom, cfg.SendGridSandbox)
	}

	riverClient, err := river.Setup(ctx, db, river.NewNotificationWorker(templates, mailer, cfg.AdminBCC))
	if err != nil {
		return fmt.Errorf("river: %w", err)
	}
	if err := riverClient.Start(ctx); err != nil {
		return fmt.Errorf("starting river: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := riverClient.Stop(stopCtx); err != nil {
			slog.Error("river shutdown", "error", err)
		}
	}()

	fileStore, err := files.New(cfg.UploadDir)
	if err != nil {
		return fmt.Errorf("uploads: %w", err)
	}
	renderer, err := pdf.New(cfg.TempDir, fileStore)
	if err != nil {
		return fmt.Errorf("renderer: %w", err)
	}

	sessions, err := auth.NewManager(cfg.SessionSecret, cfg.SessionIdleTimeout, cfg.SecureCookies)
	if err != nil {
		return fmt.Errorf("sessions: %w", err)
	}

	tracedStore := otel.NewTracingStore(store)
	notifier := otel.NewTracingNotifier(river.NewNotifier(riverClient))

	// --- Application ---
	candidatureValidator := fsm.NewCandidatureValidator()
	photos := app.NewPhotoService(tracedStore, fileStore, cfg.MaxUploadBytes)
	documents := app.NewDocumentService(tracedStore, otel.NewTracingRenderer(renderer), cfg.RenderTimeout)

	services := handler.Services{
		Logements:    app.NewLogementService(tracedStore),
		Candidatures: app.NewCandidatureService(tracedStore, candidatureValidator, notifier),
		Contracts:    app.NewContractService(tracedStore, fsm.NewContractValidator(), candidatureValidator, notifier, cfg.PublicBaseURL),
		Records:      app.NewRecordService(tracedStore),
		Photos:       photos,
		Documents:    documents,
		Audit:        app.NewAuditService(store.Audit()),
	}

	// --- Adapters (in) ---
	router := handler.NewRouter(handler.RouterConfig{
		Services: services,
		Files: handler.FileHandlers{
			Files:     fileStore,
			Photos:    photos,
			Documents: documents,
			TempDir:   renderer.Dir(),
			MaxBytes:  cfg.MaxUploadBytes,
		},
		Sessions:    sessions,
		Credentials: auth.Credentials{Email: cfg.AdminEmail, PasswordHash: cfg.AdminPasswordHash},
		Middlewares: []func(http.Handler) http.Handler{otelchi.Middleware("gestloc")},
	})

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("gestloc listening", "port", cfg.Port, "docs", "http://localhost:"+cfg.Port+"/docs")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	slog.Info("stopped")
	return nil
}
