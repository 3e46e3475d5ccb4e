package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"fundrecon/internal/config"
	apierrors "fundrecon/internal/errors"
	"fundrecon/internal/infrastructure"
	customMiddleware "fundrecon/internal/middleware"
	"fundrecon/internal/services"
	handlers "fundrecon/internal/transport/http"
	"fundrecon/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config                *config.Config
	Router                *chi.Mux
	Server                *http.Server
	Logger                *slog.Logger
	OTelProviders         *infrastructure.OTelProviders
	Metrics               *infrastructure.BusinessMetrics
	ErrorHandler          *apierrors.ErrorHandler
	ReconciliationService *services.ReconciliationService
	HealthService         *services.HealthService

	logCloser io.Closer
}

// NewApplication wires the web service from cfg. A nil cfg is loaded from
// the config file and environment.
func NewApplication(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
	}

	logger, closer, err := infrastructure.NewLogger(cfg.Logging, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	slog.SetDefault(logger)

	app, err := newApplication(cfg, logger)
	if err != nil {
		closer.Close()
		return nil, err
	}
	app.logCloser = closer
	return app, nil
}

func newApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("variant", cfg.Report.Variant),
		slog.Any("unit_types", cfg.Report.AllowedUnitTypes()))

	otelProviders, err := infrastructure.InitializeOTel(
		infrastructure.OTelConfigFrom(cfg.Telemetry, contracts.Version), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	app.initializeServices()

	if err := app.setupRouter(); err != nil {
		return nil, err
	}
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() {
	a.ReconciliationService = services.NewReconciliationService(a.Config.Report, services.Dependencies{
		Logger:  a.Logger,
		Tracer:  a.OTelProviders.Tracer,
		Metrics: a.Metrics,
	})

	a.HealthService = services.NewHealthService(contracts.Version, contracts.BuildTime, contracts.GitCommit, a.Logger)
	a.HealthService.RegisterProbe("reconciliation", func(ctx context.Context) error {
		return a.ReconciliationService.Ready()
	})
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
	if err != nil {
		return fmt.Errorf("failed to create OpenTelemetry middleware: %w", err)
	}

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → Timeout
		r.Use(otelMiddleware.Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.ErrorHandler))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				Logger:         a.Logger,
			}))
		}

		if rl := a.Config.Security.RateLimit; rl.Enabled {
			r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger).Handler)
		}

		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		a.setupHTMLRoutes(r)
		a.setupAPIRoutes(r)
		a.setupUploadRoutes(r)
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
	return nil
}

func (a *Application) setupHTMLRoutes(r chi.Router) {
	r.Get("/", handlers.ServeUploadForm(handlers.UploadPage{
		Title:          config.AppName,
		Action:         "/upload",
		FormField:      a.Config.Upload.FormField,
		MaxMegabytes:   a.Config.Upload.MaxBytes >> 20,
		Variants:       services.Variants(),
		DefaultVariant: a.Config.Report.Variant,
	}, a.Logger))
}

func (a *Application) setupAPIRoutes(r chi.Router) {
	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
	r.Mount("/api", healthHandler.Routes())
}

func (a *Application) setupUploadRoutes(r chi.Router) {
	uploadHandler := handlers.NewUploadHandler(a.ReconciliationService, a.Config.Upload, a.Logger, a.ErrorHandler)
	r.With(customMiddleware.BodyLimit(a.Config.Upload.MaxBytes)).Mount("/upload", uploadHandler.Routes())
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:              a.Config.Server.Address(),
		Handler:           a.Router,
		ReadTimeout:       a.Config.Server.ReadTimeout,
		ReadHeaderTimeout: a.Config.Server.ReadTimeout,
		WriteTimeout:      a.Config.Server.WriteTimeout,
		IdleTimeout:       a.Config.Server.IdleTimeout,
		MaxHeaderBytes:    a.Config.Server.MaxHeaderBytes,
	}
}

// Run listens on the configured address and serves until SIGINT or SIGTERM
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "Server listening",
			slog.String("address", ln.Addr().String()),
			slog.String("version", contracts.Version))

		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.WithoutCancel(ctx))
	})

	return g.Wait()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")

	if a.logCloser != nil {
		if err := a.logCloser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close log file: %w", err))
		}
	}
	return errors.Join(errs...)
}
