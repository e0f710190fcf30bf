package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/Gurusharan-Fintech/Finlense/internal/errors"
	"github.com/Gurusharan-Fintech/Finlense/internal/marketdata"
	"github.com/Gurusharan-Fintech/Finlense/internal/middleware"
)

// SessionHandler reads and updates the browser's dashboard selection.
type SessionHandler struct {
	store        SessionStoreInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(store SessionStoreInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *SessionHandler {
	return &SessionHandler{
		store:        store,
		logger:       logger.With(slog.String("component", "session_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the session routes.
func (h *SessionHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.GetSession)
	r.Put("/", h.UpdateSession)

	return r
}

// GetSession handles GET /api/session.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := h.store.SessionID(w, r)
	render.Status(r, http.StatusOK)
	render.JSON(w, r, h.store.Get(id))
}

// sessionUpdateRequest is the PUT /api/session body.
type sessionUpdateRequest struct {
	Ticker   string `json:"ticker" validate:"omitempty,alphanum,min=1,max=10"`
	Period   string `json:"period" validate:"required,oneof=1mo 3mo 6mo 1y 2y 5y 10y ytd max"`
	Interval string `json:"interval" validate:"required,oneof=1d 1wk 1mo"`
}

// UpdateSession handles PUT /api/session.
func (h *SessionHandler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionUpdateRequest
	if apiErr := middleware.DecodeAndValidate(r, &req); apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	ticker := ""
	if req.Ticker != "" {
		symbol, err := marketdata.LookupSymbol(req.Ticker)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.UnknownTickerError(req.Ticker))
			return
		}
		ticker = symbol.Ticker
	}

	id := h.store.SessionID(w, r)
	state := h.store.Get(id)
	state.Ticker = ticker
	state.Period = marketdata.Period(req.Period)
	state.Interval = marketdata.Interval(req.Interval)
	h.store.Put(id, state)

	h.logger.DebugContext(r.Context(), "session updated",
		slog.String("ticker", ticker),
		slog.String("period", req.Period),
		slog.String("interval", req.Interval))

	render.Status(r, http.StatusOK)
	render.JSON(w, r, h.store.Get(id))
}
