package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Gurusharan-Fintech/Finlense/internal/config"
	apierrors "github.com/Gurusharan-Fintech/Finlense/internal/errors"
	"github.com/Gurusharan-Fintech/Finlense/internal/exporter"
	"github.com/Gurusharan-Fintech/Finlense/internal/infrastructure"
	"github.com/Gurusharan-Fintech/Finlense/internal/marketdata"
	customMiddleware "github.com/Gurusharan-Fintech/Finlense/internal/middleware"
	"github.com/Gurusharan-Fintech/Finlense/internal/narrative"
	"github.com/Gurusharan-Fintech/Finlense/internal/services"
	"github.com/Gurusharan-Fintech/Finlense/internal/session"
	transport "github.com/Gurusharan-Fintech/Finlense/internal/transport/http"
	"github.com/Gurusharan-Fintech/Finlense/internal/websocket"
)

// Application is the composed service.
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Router        chi.Router

	market    *marketdata.Client
	sessions  *session.Store
	hub       *websocket.Hub
	poller    *websocket.QuotePoller
	dashboard *services.DashboardService
	reports   *services.ReportService

	server     *http.Server
	background context.CancelFunc
}

// NewApplication loads configuration and builds the full service.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return NewApplicationWithConfig(cfg)
}

// NewApplicationWithConfig builds the service from an explicit config.
func NewApplicationWithConfig(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
	}
	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

func (a *Application) initializeServices() {
	a.market = marketdata.NewClient(a.Config.Market, a.Logger)
	a.sessions = session.NewStore(a.Config.Session, a.Logger)

	runner := narrative.NewOllamaRunner(a.Config.Narrative, a.Logger)
	generator := narrative.NewGenerator(runner, a.Config.Narrative, a.Logger)

	a.dashboard = services.NewDashboardService(a.market, generator, a.Logger)
	a.reports = services.NewReportService(a.dashboard, generator, exporter.NewPDFRenderer(a.Logger), a.Logger)

	a.hub = websocket.NewHub(a.Config.WebSocket, a.Logger)
	a.poller = websocket.NewQuotePoller(a.hub, a.market, a.Config.WebSocket.QuotePoll, a.Logger)
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Minimal middleware only; nothing here may wrap the
	// ResponseWriter or the websocket upgrade breaks.
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.HandleFunc("/ws", a.handleWebSocket)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
			}))
		}
		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
		a.setupStaticRoutes(r)
	})

	a.Router = r
}

func (a *Application) setupAPIRoutes(r chi.Router) {
	errorHandler := apierrors.NewErrorHandler(a.Logger, false)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))

			healthHandler := transport.NewHealthHandler()
			r.Get("/health", healthHandler.GetHealth)
			r.Get("/version", healthHandler.GetVersion)

			r.Mount("/symbols", transport.NewSymbolsHandler().Routes())
			r.Mount("/session", transport.NewSessionHandler(a.sessions, a.Logger, errorHandler).Routes())
			r.Mount("/dashboard", transport.NewDashboardHandler(a.dashboard, a.sessions, a.Logger, errorHandler).Routes())
		})

		// Reports drive a headless browser; they get the longer budget.
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.ReportTimeout, a.Logger))
			r.Mount("/reports", transport.NewReportHandler(a.reports, a.Logger, errorHandler).Routes())
		})
	})
}

func (a *Application) setupStaticRoutes(r chi.Router) {
	staticDir := a.Config.StaticDir()
	if !a.Config.StylesheetExists() {
		// The dashboard still works unstyled.
		a.Logger.Warn("stylesheet missing, serving unstyled dashboard",
			slog.String("path", a.Config.Paths.Stylesheet))
	}

	fileServer := http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir)))
	r.Get("/static/*", func(w http.ResponseWriter, req *http.Request) {
		fileServer.ServeHTTP(w, req)
	})
}

func (a *Application) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWS(a.hub, w, r, a.Logger)
}

func (a *Application) createServer() {
	a.server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start launches the background workers and the HTTP listener. It
// blocks until the listener stops.
func (a *Application) Start(ctx context.Context) error {
	bgCtx, cancel := context.WithCancel(ctx)
	a.background = cancel

	a.hub.Start()
	a.sessions.StartJanitor(bgCtx)
	go a.poller.Run(bgCtx)

	a.Logger.Info("server starting",
		slog.String("addr", a.server.Addr),
		slog.String("version", infrastructure.ServiceVersion))

	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop shuts the service down gracefully.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.Info("server stopping")

	if a.background != nil {
		a.background()
	}
	a.hub.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var firstErr error
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		firstErr = fmt.Errorf("http shutdown: %w", err)
	}
	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("telemetry shutdown: %w", err)
	}
	if err := infrastructure.CloseLogFile(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing log file: %w", err)
	}
	return firstErr
}

// Run starts the application and blocks until SIGINT/SIGTERM.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- a.Start(ctx) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout+5*time.Second)
	defer cancel()
	return a.Stop(stopCtx)
}
