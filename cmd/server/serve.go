package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/securecookie"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"workshopportal/internal/backend"
	"workshopportal/internal/captcha"
	"workshopportal/internal/config"
	"workshopportal/internal/database"
	"workshopportal/internal/handler"
	"workshopportal/internal/middleware"
	"workshopportal/internal/repository"
	"workshopportal/internal/session"
	"workshopportal/internal/telemetry"
)

const serviceName = "workshop-portal"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	shutdownTelemetry := telemetry.Setup(serviceName)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			slog.Error("telemetry shutdown", "error", err)
		}
	}()

	db, err := database.Open(cfg.DB)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db, "up"); err != nil {
		return err
	}

	sessionRepo := repository.NewSessionRepository(db, time.Duration(cfg.SessionMaxAge)*time.Second)
	attemptRepo := repository.NewAttemptRepository(db)

	cookies := session.NewGorillaStore(session.Options{
		HashKey:  []byte(cfg.SessionKey),
		BlockKey: []byte(cfg.SessionEncKey),
		MaxAge:   cfg.SessionMaxAge,
		Secure:   cfg.CookieSecure,
	})
	store := session.NewTrackedStore(session.NewCookieStore(cookies), sessionRepo)

	view, err := handler.NewRenderer(session.NewFlasher(cookies))
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	router := handler.NewRouter(handler.Deps{
		Store:    store,
		API:      backend.New(cfg.BackendURL, cfg.BackendTimeout),
		Sessions: sessionRepo,
		Attempts: attemptRepo,
		Captcha:  captcha.NewFlow(cookies, captcha.NewGenerator()),
		View:     view,
		Now:      time.Now,
	})

	root := middleware.Chain(router,
		middleware.LogRequest,
		middleware.Recover,
		csrfProtect(cfg),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelhttp.NewHandler(root, serviceName),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", server.Addr, "backend", cfg.BackendURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// csrfProtect guards every POST form. Over plain HTTP the origin check
// is relaxed, as gorilla/csrf otherwise assumes TLS.
func csrfProtect(cfg *config.Config) func(http.Handler) http.Handler {
	key := []byte(cfg.CSRFKey)
	if len(key) == 0 {
		slog.Warn("CSRF_KEY not set, generating a per-process key")
		key = securecookie.GenerateRandomKey(32)
	}

	protect := csrf.Protect(key,
		csrf.Secure(cfg.CookieSecure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
	)
	if cfg.CookieSecure {
		return protect
	}
	return func(next http.Handler) http.Handler {
		inner := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			inner.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}
