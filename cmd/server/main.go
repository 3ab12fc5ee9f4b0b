package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/janisto/profile-playground/internal/http/health"
	"github.com/janisto/profile-playground/internal/http/v1/routes"
	"github.com/janisto/profile-playground/internal/http/web"
	"github.com/janisto/profile-playground/internal/mirror"
	"github.com/janisto/profile-playground/internal/platform/config"
	applog "github.com/janisto/profile-playground/internal/platform/logging"
	appmiddleware "github.com/janisto/profile-playground/internal/platform/middleware"
	"github.com/janisto/profile-playground/internal/platform/respond"
	"github.com/janisto/profile-playground/internal/service/profilesync"
	"github.com/janisto/profile-playground/internal/service/remote"
	"github.com/janisto/profile-playground/internal/store"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

// apiPrefixes keep problem+json 404s instead of the page redirect.
var apiPrefixes = []string{"/v1/", routes.DocsPath, "/openapi", "/schemas"}

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

	cfg, err := config.LoadWeb()
	if err != nil {
		applog.LogFatal(ctx, "config error", err)
	}

	m, err := mirror.Open(cfg.MirrorDriver, cfg.MirrorPath)
	if err != nil {
		applog.LogFatal(ctx, "mirror open failed", err, zap.String("driver", cfg.MirrorDriver))
	}
	defer func() {
		if err := m.Close(); err != nil {
			applog.LogError(ctx, "mirror close error", err)
		}
	}()

	client := remote.NewClient(nil,
		remote.WithBaseURL(cfg.APIURL),
		remote.WithTimeout(cfg.APITimeout),
		remote.WithUserAgent("profile-playground/"+Version),
	)
	st := store.New()
	stopWatch := logStateChanges(st, applog.Logger())
	defer stopWatch()
	syncer := profilesync.New(st, m, client)

	srv := newHTTPServer(cfg.Port, newRouter(syncer, m))
	serve(ctx, srv)
}

// newRouter assembles the web client: HTML pages, the /v1 JSON endpoints and health.
func newRouter(syncer *profilesync.Syncer, m mirror.Mirror) http.Handler {
	router := chi.NewRouter()
	router.NotFound(web.NotFound(apiPrefixes...))
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	router.Use(
		appmiddleware.Security(appmiddleware.APIContentSecurityPolicy, routes.DocsPath),
		appmiddleware.Vary(),
		appmiddleware.CORS(),
		appmiddleware.RequestID(),
		// RealIP trusts X-Real-IP and X-Forwarded-For; run behind a trusted proxy.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(1<<20), // 1 MB limit
		applog.RequestLogger(),
		applog.AccessLogger(),
		respond.Recoverer(),
	)

	router.Get("/health", health.Handler(map[string]health.Check{
		"mirror": func(ctx context.Context) error {
			_, err := m.Load(ctx)
			return err
		},
	}))

	api := routes.NewAPI(router, "Profile Playground", Version)
	routes.Register(api, syncer.Store())
	web.New(syncer).Register(router)
	return router
}

// logStateChanges subscribes to st and logs profile and error transitions to logger.
// Other changes, such as the loading flag, are logged at debug level.
func logStateChanges(st *store.Store, logger *zap.Logger) (cancel func()) {
	var mu sync.Mutex
	var last store.State
	return st.Subscribe(func(s store.State) {
		mu.Lock()
		defer mu.Unlock()

		fields := []zap.Field{
			zap.Uint64("version", s.Version),
			zap.Bool("loading", s.Loading),
			zap.String("profile_id", stateProfileID(s)),
		}
		switch {
		case s.Error != "" && s.Error != last.Error:
			logger.Warn("profile state error", append(fields, zap.String("error", s.Error))...)
		case stateProfileID(s) != stateProfileID(last):
			logger.Info("profile state changed", fields...)
		default:
			logger.Debug("profile state changed", fields...)
		}
		last = s
	})
}

func stateProfileID(s store.State) string {
	if s.Profile == nil {
		return ""
	}
	return s.Profile.ID.String()
}

func newHTTPServer(port string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           h,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		// Longer than the upstream API timeout so page handlers can report it.
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 64 << 10, // 64 KB
	}
}

// serve runs srv until SIGINT or SIGTERM, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server) {
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
