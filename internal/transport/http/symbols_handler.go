package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/Gurusharan-Fintech/Finlense/internal/marketdata"
)

// SymbolsHandler lists the tickers and selections the dashboard offers.
type SymbolsHandler struct{}

// NewSymbolsHandler creates a symbols handler.
func NewSymbolsHandler() *SymbolsHandler {
	return &SymbolsHandler{}
}

// Routes returns the symbols routes.
func (h *SymbolsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.GetSymbols)
	return r
}

// symbolsResponse is the GET /api/symbols payload.
type symbolsResponse struct {
	Symbols   []marketdata.Symbol   `json:"symbols"`
	Periods   []marketdata.Period   `json:"periods"`
	Intervals []marketdata.Interval `json:"intervals"`
}

// GetSymbols handles GET /api/symbols.
func (h *SymbolsHandler) GetSymbols(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, symbolsResponse{
		Symbols:   marketdata.KnownSymbols(),
		Periods:   marketdata.Periods(),
		Intervals: marketdata.Intervals(),
	})
}
