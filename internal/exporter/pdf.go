package exporter

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/Gurusharan-Fintech/Finlense/internal/marketdata"
)

// pdfTailRows is how many recent bars the PDF table shows.
const pdfTailRows = 10

// PDFRenderer prints the HTML report through a headless browser.
type PDFRenderer struct {
	logger *slog.Logger
}

// NewPDFRenderer creates a renderer. The browser is launched per
// render and torn down with it; report volume does not justify a
// long-lived instance.
func NewPDFRenderer(logger *slog.Logger) *PDFRenderer {
	return &PDFRenderer{logger: logger.With(slog.String("component", "pdf_renderer"))}
}

// Render produces the PDF bytes for a report. The caller bounds the
// whole operation through ctx.
func (r *PDFRenderer) Render(ctx context.Context, data ReportData) ([]byte, error) {
	html, err := RenderHTML(data)
	if err != nil {
		return nil, fmt.Errorf("rendering report html: %w", err)
	}
	return r.printHTML(ctx, html)
}

func (r *PDFRenderer) printHTML(ctx context.Context, html string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0.4).
				WithMarginBottom(0.4).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "pdf print failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("printing pdf: %w", err)
	}

	r.logger.InfoContext(ctx, "pdf rendered", slog.Int("bytes", len(pdf)))
	return pdf, nil
}

// reportView is the template input: raw SVG markup is pre-rendered and
// passed as trusted HTML.
type reportView struct {
	ReportData
	CompanyName string
	PriceChart  template.HTML
	VolumeChart template.HTML
	RSIChart    template.HTML
	TailBars    []marketdata.Bar
	Narrative   []string
}

// RenderHTML renders the report page used for PDF printing.
func RenderHTML(data ReportData) (string, error) {
	view := reportView{
		ReportData:  data,
		CompanyName: data.Ticker,
		PriceChart:  template.HTML(PriceChartSVG(data.Analysis, data.Forecast)),
		VolumeChart: template.HTML(VolumeChartSVG(data.Analysis)),
		RSIChart:    template.HTML(RSIChartSVG(data.Analysis)),
		TailBars:    tailBars(data.Series, pdfTailRows),
	}
	if data.Profile != nil && data.Profile.Name != "" {
		view.CompanyName = data.Profile.Name
	}
	if data.Narrative != nil {
		view.Narrative = strings.Split(data.Narrative.Text, "\n")
	}

	var b strings.Builder
	if err := reportTemplate.Execute(&b, view); err != nil {
		return "", err
	}
	return b.String(), nil
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"pct":   func(v float64) string { return fmt.Sprintf("%.2f%%", v) },
	"date":  func(v interface{ Format(string) string }) string { return v.Format("2006-01-02") },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; color: #222; margin: 24px; }
  h1 { margin-bottom: 0; }
  .meta { color: #666; font-size: 12px; margin-bottom: 18px; }
  .section { margin-top: 22px; }
  table { border-collapse: collapse; width: 100%; font-size: 11px; }
  th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: right; }
  th:first-child, td:first-child { text-align: left; }
  th { background: #f0f3f6; }
  .narrative { white-space: pre-wrap; font-size: 12px; background: #f7f8fa; padding: 12px; border-radius: 4px; }
  .summary { font-size: 12px; color: #444; }
</style>
</head>
<body>
<h1>{{.CompanyName}} ({{.Ticker}})</h1>
<div class="meta">Detailed report generated {{.GeneratedAt.Format "2006-01-02 15:04:05"}} UTC
{{- if .Profile}}{{if .Profile.Sector}} · {{.Profile.Sector}} / {{.Profile.Industry}}{{end}}{{end}}</div>

{{if .Profile}}{{if .Profile.Summary}}<div class="summary">{{.Profile.Summary}}</div>{{end}}{{end}}

<div class="section"><h2>Price & Moving Averages</h2>{{.PriceChart}}</div>
<div class="section"><h2>Volume</h2>{{.VolumeChart}}</div>
<div class="section"><h2>RSI (14)</h2>{{.RSIChart}}</div>

{{if .Analysis}}
<div class="section">
<h2>Summary Statistics</h2>
<table>
<tr><th>Latest Close</th><th>Change</th><th>Change %</th><th>7-Day Avg</th><th>30-Day Avg</th><th>Period High</th><th>Period Low</th></tr>
<tr>
<td>{{money .Analysis.Stats.LatestClose}}</td>
<td>{{money .Analysis.Stats.Change}}</td>
<td>{{pct .Analysis.Stats.ChangePct}}</td>
<td>{{money .Analysis.Stats.Avg7}}</td>
<td>{{money .Analysis.Stats.Avg30}}</td>
<td>{{money .Analysis.Stats.PeriodHigh}}</td>
<td>{{money .Analysis.Stats.PeriodLow}}</td>
</tr>
</table>
</div>
{{end}}

{{if .Narrative}}
<div class="section">
<h2>AI Analysis</h2>
<div class="narrative">{{range .Narrative}}{{.}}
{{end}}</div>
</div>
{{else}}
<div class="section"><h2>AI Analysis</h2><p>AI analysis not available locally.</p></div>
{{end}}

{{if .Analogies}}
<div class="section">
<h2>Storytelling</h2>
<table>
<tr><th>Topic</th><th>Analogy</th></tr>
{{range .Analogies}}<tr><td>{{.Topic}}</td><td style="text-align:left">{{.Text}}</td></tr>
{{end}}</table>
</div>
{{end}}

{{if .News}}
<div class="section">
<h2>Recent Headlines</h2>
<table>
<tr><th>Headline</th><th>Publisher</th><th>Sentiment</th></tr>
{{range .News}}<tr><td>{{.Title}}</td><td>{{.Publisher}}</td><td>{{.Label}}</td></tr>
{{end}}</table>
</div>
{{end}}

{{if .TailBars}}
<div class="section">
<h2>Recent Prices</h2>
<table>
<tr><th>Date</th><th>Open</th><th>High</th><th>Low</th><th>Close</th><th>Volume</th></tr>
{{range .TailBars}}<tr><td>{{date .Date}}</td><td>{{money .Open}}</td><td>{{money .High}}</td><td>{{money .Low}}</td><td>{{money .Close}}</td><td>{{.Volume}}</td></tr>
{{end}}</table>
</div>
{{end}}

</body>
</html>`))
