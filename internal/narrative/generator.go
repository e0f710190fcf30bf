// Package narrative produces the text analysis block of the dashboard.
// When the local language model binary is available it is invoked via
// subprocess; otherwise a deterministic fallback text is assembled from
// the computed statistics so the dashboard never shows an empty panel.
package narrative

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/Gurusharan-Fintech/Finlense/internal/config"
	"github.com/Gurusharan-Fintech/Finlense/internal/indicators"
)

// ErrModelUnavailable means the model binary is missing, timed out, or
// produced no output. Callers fall back rather than fail.
var ErrModelUnavailable = errors.New("local language model unavailable")

// Source values recorded on a generated narrative.
const (
	SourceModel    = "model"
	SourceFallback = "fallback"
)

// Narrative is the generated analysis text plus provenance.
type Narrative struct {
	Ticker      string    `json:"ticker"`
	Text        string    `json:"text"`
	Source      string    `json:"source"`
	Model       string    `json:"model,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Runner executes a prompt against a text-generation backend.
type Runner interface {
	Run(ctx context.Context, prompt string) (string, error)
}

// OllamaRunner invokes a local model binary as a subprocess, writing
// the prompt to stdin and reading the completion from stdout.
type OllamaRunner struct {
	command string
	model   string
	logger  *slog.Logger
}

// NewOllamaRunner creates a runner for the configured binary and model.
func NewOllamaRunner(cfg config.NarrativeConfig, logger *slog.Logger) *OllamaRunner {
	return &OllamaRunner{
		command: cfg.Command,
		model:   cfg.Model,
		logger:  logger.With(slog.String("component", "ollama_runner")),
	}
}

// Run executes `<command> run <model>` with the prompt on stdin. Any
// failure mode collapses to ErrModelUnavailable.
func (r *OllamaRunner) Run(ctx context.Context, prompt string) (string, error) {
	cmd := exec.CommandContext(ctx, r.command, "run", r.model)
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		switch {
		case errors.Is(err, exec.ErrNotFound):
			r.logger.WarnContext(ctx, "model binary not installed", slog.String("command", r.command))
		case ctx.Err() != nil:
			r.logger.WarnContext(ctx, "model invocation timed out", slog.String("model", r.model))
		default:
			r.logger.WarnContext(ctx, "model invocation failed",
				slog.String("model", r.model),
				slog.String("stderr", strings.TrimSpace(stderr.String())),
				slog.String("error", err.Error()))
		}
		return "", fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	text := strings.TrimSpace(stdout.String())
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", ErrModelUnavailable)
	}
	return text, nil
}

// Generator turns series statistics into narrative text.
type Generator struct {
	runner  Runner
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewGenerator wires a generator around the given runner.
func NewGenerator(runner Runner, cfg config.NarrativeConfig, logger *slog.Logger) *Generator {
	return &Generator{
		runner:  runner,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger.With(slog.String("component", "narrative")),
	}
}

// Generate produces the analysis text for a ticker. The model call is
// bounded by the configured timeout; on any model failure the fallback
// text is returned with Source set accordingly, never an error.
func (g *Generator) Generate(ctx context.Context, ticker string, stats indicators.Summary) Narrative {
	prompt := BuildPrompt(ticker, stats)

	runCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.runner.Run(runCtx, prompt)
	if err != nil {
		g.logger.InfoContext(ctx, "using fallback analysis", slog.String("ticker", ticker))
		return Narrative{
			Ticker:      ticker,
			Text:        FallbackText(ticker, stats),
			Source:      SourceFallback,
			GeneratedAt: time.Now().UTC(),
		}
	}

	return Narrative{
		Ticker:      ticker,
		Text:        text,
		Source:      SourceModel,
		Model:       g.model,
		GeneratedAt: time.Now().UTC(),
	}
}

// BuildPrompt assembles the model prompt from the headline statistics.
func BuildPrompt(ticker string, stats indicators.Summary) string {
	lines := []string{
		fmt.Sprintf("Analyze the stock %s.", ticker),
		fmt.Sprintf("Latest close: %.2f", stats.LatestClose),
		fmt.Sprintf("7-day avg: %.2f", stats.Avg7),
		fmt.Sprintf("30-day avg: %.2f", stats.Avg30),
		"Provide: 1) short professional summary; 2) key drivers and risks; 3) short-term prediction (30 days) with confidence level; 4) two-line takeaway.",
	}
	return strings.Join(lines, "\n")
}

// FallbackText renders the deterministic analysis used when the model
// is unavailable. Momentum direction compares the short-term average
// against the medium-term one.
func FallbackText(ticker string, stats indicators.Summary) string {
	if stats.Bars == 0 {
		return fmt.Sprintf("%s: limited price data available to compute numerical indicators.", ticker)
	}

	momentum := "sideways/downward pressure"
	if stats.Avg7 > stats.Avg30 {
		momentum = "upward momentum"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s latest close: $%.2f.\n", ticker, stats.LatestClose)
	fmt.Fprintf(&b, "Short-term vs medium-term: 7-day avg $%.2f vs 30-day avg $%.2f -> %s.\n\n", stats.Avg7, stats.Avg30, momentum)
	b.WriteString("Key drivers: industry dynamics, macro conditions, and recent company updates. ")
	b.WriteString("Key risks: market volatility and execution risk. ")
	b.WriteString("Conservative short-term outlook: neutral — watch moving averages and volume for confirmation.\n\n")
	b.WriteString("Two-line takeaway: Monitor momentum and risk events; consider sizing positions conservatively.")
	return b.String()
}
