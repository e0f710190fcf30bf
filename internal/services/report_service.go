package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Gurusharan-Fintech/Finlense/internal/exporter"
	"github.com/Gurusharan-Fintech/Finlense/internal/marketdata"
	"github.com/Gurusharan-Fintech/Finlense/internal/narrative"
)

// PDFPrinter renders report data to PDF bytes.
type PDFPrinter interface {
	Render(ctx context.Context, data exporter.ReportData) ([]byte, error)
}

// Report is a rendered artifact ready to stream to the client.
type Report struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ReportService builds downloadable Excel and PDF reports.
type ReportService struct {
	dashboards *DashboardService
	generator  NarrativeGenerator
	printer    PDFPrinter
	logger     *slog.Logger
	now        func() time.Time
}

// NewReportService wires the report builder.
func NewReportService(dashboards *DashboardService, generator NarrativeGenerator, printer PDFPrinter, logger *slog.Logger) *ReportService {
	return &ReportService{
		dashboards: dashboards,
		generator:  generator,
		printer:    printer,
		logger:     logger.With(slog.String("service", "report")),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ExcelReport renders the workbook artifact for a ticker.
func (s *ReportService) ExcelReport(ctx context.Context, ticker string, period marketdata.Period, interval marketdata.Interval) (*Report, error) {
	data, err := s.buildReportData(ctx, ticker, period, interval)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := exporter.WriteExcel(&buf, data); err != nil {
		s.logger.ErrorContext(ctx, "excel render failed",
			slog.String("ticker", data.Ticker),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrReportRender, err)
	}

	report := &Report{
		Filename:    exporter.Filename(data.Ticker, "xlsx", data.GeneratedAt),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     buf.Bytes(),
	}
	s.logReport(ctx, report)
	return report, nil
}

// PDFReport renders the PDF artifact for a ticker.
func (s *ReportService) PDFReport(ctx context.Context, ticker string, period marketdata.Period, interval marketdata.Interval) (*Report, error) {
	data, err := s.buildReportData(ctx, ticker, period, interval)
	if err != nil {
		return nil, err
	}

	content, err := s.printer.Render(ctx, data)
	if err != nil {
		s.logger.ErrorContext(ctx, "pdf render failed",
			slog.String("ticker", data.Ticker),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrReportRender, err)
	}

	report := &Report{
		Filename:    exporter.Filename(data.Ticker, "pdf", data.GeneratedAt),
		ContentType: "application/pdf",
		Content:     content,
	}
	s.logReport(ctx, report)
	return report, nil
}

// buildReportData assembles everything a report embeds: the dashboard
// payload plus the narrative text and analogies.
func (s *ReportService) buildReportData(ctx context.Context, ticker string, period marketdata.Period, interval marketdata.Interval) (exporter.ReportData, error) {
	dashboard, err := s.dashboards.GetDashboard(ctx, ticker, period, interval)
	if err != nil {
		return exporter.ReportData{}, err
	}

	stats := dashboard.Analysis.Stats
	n := s.generator.Generate(ctx, dashboard.Symbol.Ticker, stats)

	return exporter.ReportData{
		Ticker:      dashboard.Symbol.Ticker,
		GeneratedAt: s.now(),
		Series:      dashboard.Series,
		Analysis:    dashboard.Analysis,
		Forecast:    dashboard.Forecast,
		Profile:     dashboard.Profile,
		Narrative:   &n,
		Analogies:   narrative.Analogies(dashboard.Profile, stats),
		News:        dashboard.News,
	}, nil
}

func (s *ReportService) logReport(ctx context.Context, report *Report) {
	s.logger.InfoContext(ctx, "report rendered",
		slog.String("filename", report.Filename),
		slog.Int("bytes", len(report.Content)))
}
