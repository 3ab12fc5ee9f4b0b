// Command profileapi serves the /profiles REST API the web client syncs against.
package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/janisto/profile-playground/internal/http/health"
	"github.com/janisto/profile-playground/internal/http/v1/routes"
	"github.com/janisto/profile-playground/internal/platform/config"
	"github.com/janisto/profile-playground/internal/platform/firebase"
	applog "github.com/janisto/profile-playground/internal/platform/logging"
	appmiddleware "github.com/janisto/profile-playground/internal/platform/middleware"
	"github.com/janisto/profile-playground/internal/platform/respond"
	"github.com/janisto/profile-playground/internal/service/profilestore"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

func main() {
	ctx := context.Background()
	defer func() {
		if err := applog.Sync(); err != nil {
			applog.LogError(ctx, "logger sync error", err)
		}
	}()
	if err := applog.Err(); err != nil {
		applog.LogError(ctx, "logger init error", err)
	}

	cfg, err := config.LoadAPI()
	if err != nil {
		applog.LogFatal(ctx, "config error", err)
	}

	svc, closer, err := openStore(ctx, cfg)
	if err != nil {
		applog.LogFatal(ctx, "profile store init failed", err, zap.String("store", cfg.Store))
	}
	defer func() {
		if err := closer.Close(); err != nil {
			applog.LogError(ctx, "profile store close error", err)
		}
	}()
	applog.LogInfo(ctx, "profile store ready",
		zap.String("store", cfg.Store),
		zap.String("environment", cfg.Environment),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(svc),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10, // 64 KB
	}

	listenErr := make(chan error, 1)
	go func() {
		applog.LogInfo(ctx, "server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			listenErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-listenErr:
		applog.LogFatal(ctx, "listen failed", err, zap.String("addr", srv.Addr))
	case <-stop:
		applog.LogInfo(ctx, "shutdown signal received")
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		applog.LogError(shutdownCtx, "server shutdown error", err)
	}
	applog.LogInfo(ctx, "server exited")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openStore returns the profile store named by cfg.Store and the resource to close on exit.
func openStore(ctx context.Context, cfg config.API) (profilestore.Service, io.Closer, error) {
	if cfg.Store == config.StoreMemory {
		return profilestore.NewMemoryStore(), nopCloser{}, nil
	}
	clients, err := firebase.InitializeClients(ctx, firebase.Config{
		ProjectID:                    cfg.ProjectID,
		GoogleApplicationCredentials: cfg.Credentials,
	})
	if err != nil {
		return nil, nil, err
	}
	return profilestore.NewFirestoreStore(clients.Firestore), clients, nil
}

func newRouter(svc profilestore.Service) http.Handler {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	router.Use(
		appmiddleware.Security(appmiddleware.APIContentSecurityPolicy, routes.DocsPath),
		appmiddleware.Vary(),
		appmiddleware.CORS(),
		appmiddleware.RequestID(),
		chimiddleware.RealIP,
		chimiddleware.RequestSize(1<<20), // 1 MB limit
		applog.RequestLogger(),
		applog.AccessLogger(),
		respond.Recoverer(),
	)

	router.Get("/health", health.Handler(map[string]health.Check{
		"store": func(ctx context.Context) error {
			_, err := svc.List(ctx)
			return err
		},
	}))

	api := routes.NewAPI(router, "Profile API", Version)
	routes.RegisterProfileAPI(api, svc)
	return router
}
