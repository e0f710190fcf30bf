package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/Gurusharan-Fintech/Finlense/internal/errors"
	"github.com/Gurusharan-Fintech/Finlense/internal/marketdata"
	"github.com/Gurusharan-Fintech/Finlense/internal/services"
)

type contextKey string

const tickerKey contextKey = "ticker"

// DashboardHandler serves the assembled dashboard payload and the
// narrative block.
type DashboardHandler struct {
	service      DashboardServiceInterface
	sessions     SessionStoreInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(service DashboardServiceInterface, sessions SessionStoreInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		sessions:     sessions,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Route("/{ticker}", func(r chi.Router) {
		r.Use(h.TickerCtx)
		r.Get("/", h.GetDashboard)
		r.Get("/narrative", h.GetNarrative)
	})

	return r
}

// TickerCtx validates the ticker path parameter against the symbol
// table and stores the normalized form in the request context.
func (h *DashboardHandler) TickerCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "ticker")
		symbol, err := marketdata.LookupSymbol(raw)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.UnknownTickerError(raw))
			return
		}
		ctx := context.WithValue(r.Context(), tickerKey, symbol.Ticker)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetDashboard handles GET /api/dashboard/{ticker}.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ticker := tickerFromContext(r.Context())
	period, interval, err := selectionFromQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	dashboard, err := h.service.GetDashboard(r.Context(), ticker, period, interval)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err, ticker))
		return
	}

	// Viewing a ticker updates the session's last selection.
	h.rememberSelection(w, r, ticker, period, interval)

	render.Status(r, http.StatusOK)
	render.JSON(w, r, dashboard)
}

// GetNarrative handles GET /api/dashboard/{ticker}/narrative.
func (h *DashboardHandler) GetNarrative(w http.ResponseWriter, r *http.Request) {
	ticker := tickerFromContext(r.Context())
	period, interval, err := selectionFromQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	block, err := h.service.GetNarrative(r.Context(), ticker, period, interval)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err, ticker))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, block)
}

func (h *DashboardHandler) rememberSelection(w http.ResponseWriter, r *http.Request, ticker string, period marketdata.Period, interval marketdata.Interval) {
	if h.sessions == nil {
		return
	}
	id := h.sessions.SessionID(w, r)
	state := h.sessions.Get(id)
	state.Ticker = ticker
	state.Period = period
	state.Interval = interval
	h.sessions.Put(id, state)
}

func tickerFromContext(ctx context.Context) string {
	ticker, _ := ctx.Value(tickerKey).(string)
	return ticker
}

// selectionFromQuery reads the period and interval query parameters,
// falling back to the dashboard defaults when absent.
func selectionFromQuery(r *http.Request) (marketdata.Period, marketdata.Interval, error) {
	period := marketdata.DefaultPeriod
	if raw := r.URL.Query().Get("period"); raw != "" {
		period = marketdata.Period(raw)
		if !period.Valid() {
			return "", "", apierrors.ErrInvalidPeriod
		}
	}

	interval := marketdata.DefaultInterval
	if raw := r.URL.Query().Get("interval"); raw != "" {
		interval = marketdata.Interval(raw)
		if !interval.Valid() {
			return "", "", apierrors.ErrInvalidInterval
		}
	}

	return period, interval, nil
}

// mapServiceError converts service and provider errors to API errors.
func mapServiceError(err error, ticker string) error {
	switch {
	case errors.Is(err, marketdata.ErrUnknownTicker):
		return apierrors.UnknownTickerError(ticker)
	case errors.Is(err, marketdata.ErrNoData):
		return apierrors.ErrNoMarketData
	case errors.Is(err, marketdata.ErrProvider):
		return apierrors.ErrProviderUnavailable
	case errors.Is(err, services.ErrInvalidPeriod):
		return apierrors.ErrInvalidPeriod
	case errors.Is(err, services.ErrInvalidInterval):
		return apierrors.ErrInvalidInterval
	case errors.Is(err, services.ErrReportRender):
		return apierrors.ReportError("requested", err)
	default:
		return err
	}
}
