package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/Gurusharan-Fintech/Finlense/internal/errors"
	"github.com/Gurusharan-Fintech/Finlense/internal/marketdata"
	"github.com/Gurusharan-Fintech/Finlense/internal/services"
)

// ReportHandler streams the downloadable Excel and PDF artifacts.
type ReportHandler struct {
	service      ReportServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewReportHandler creates a report handler.
func NewReportHandler(service ReportServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	return &ReportHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "report_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the report routes.
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/{ticker}", func(r chi.Router) {
		r.Use(h.TickerCtx)
		r.Get("/excel", h.DownloadExcel)
		r.Get("/pdf", h.DownloadPDF)
	})

	return r
}

// TickerCtx validates the ticker path parameter.
func (h *ReportHandler) TickerCtx(next http.Handler) http.Handler {
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

// DownloadExcel handles GET /api/reports/{ticker}/excel.
func (h *ReportHandler) DownloadExcel(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, "excel", h.service.ExcelReport)
}

// DownloadPDF handles GET /api/reports/{ticker}/pdf.
func (h *ReportHandler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, "pdf", h.service.PDFReport)
}

type reportFunc func(ctx context.Context, ticker string, period marketdata.Period, interval marketdata.Interval) (*services.Report, error)

func (h *ReportHandler) download(w http.ResponseWriter, r *http.Request, format string, build reportFunc) {
	ticker := tickerFromContext(r.Context())
	period, interval, err := selectionFromQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	report, err := build(r.Context(), ticker, period, interval)
	if err != nil {
		if errors.Is(err, services.ErrReportRender) {
			h.errorHandler.HandleError(w, r, apierrors.ReportError(format, err))
			return
		}
		h.errorHandler.HandleError(w, r, mapServiceError(err, ticker))
		return
	}

	h.logger.InfoContext(r.Context(), "streaming report",
		slog.String("ticker", ticker),
		slog.String("format", format),
		slog.String("filename", report.Filename))

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(report.Content)))
	w.WriteHeader(http.StatusOK)
	w.Write(report.Content)
}
