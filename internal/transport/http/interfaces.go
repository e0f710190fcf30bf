package http

import (
	"context"
	"net/http"

	"github.com/Gurusharan-Fintech/Finlense/internal/marketdata"
	"github.com/Gurusharan-Fintech/Finlense/internal/services"
	"github.com/Gurusharan-Fintech/Finlense/internal/session"
)

// DashboardServiceInterface is the dashboard surface the handlers use.
type DashboardServiceInterface interface {
	GetDashboard(ctx context.Context, ticker string, period marketdata.Period, interval marketdata.Interval) (*services.Dashboard, error)
	GetNarrative(ctx context.Context, ticker string, period marketdata.Period, interval marketdata.Interval) (*services.NarrativeBlock, error)
}

// ReportServiceInterface is the report surface the handlers use.
type ReportServiceInterface interface {
	ExcelReport(ctx context.Context, ticker string, period marketdata.Period, interval marketdata.Interval) (*services.Report, error)
	PDFReport(ctx context.Context, ticker string, period marketdata.Period, interval marketdata.Interval) (*services.Report, error)
}

// SessionStoreInterface is the session surface the handlers use.
type SessionStoreInterface interface {
	Get(id string) session.State
	Put(id string, state session.State)
	SessionID(w http.ResponseWriter, r *http.Request) string
}
