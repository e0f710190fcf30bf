// Package services implements the business logic layer between the
// HTTP handlers and the data providers.
//
// DashboardService assembles the full dashboard payload for a ticker:
// it fetches history, company profile, and news concurrently, then
// derives indicators, the price forecast, and headline sentiment.
// Profile and news failures degrade to warnings; only a missing price
// series is fatal.
//
// ReportService reuses the dashboard assembly and adds the narrative
// text, then renders the downloadable Excel and PDF artifacts.
//
// Services take context.Context on every call and log through the
// injected slog handler.
package services
