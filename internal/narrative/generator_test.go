package narrative

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gurusharan-Fintech/Finlense/internal/config"
	"github.com/Gurusharan-Fintech/Finlense/internal/indicators"
	"github.com/Gurusharan-Fintech/Finlense/internal/marketdata"
)

type stubRunner struct {
	text string
	err  error
}

func (s *stubRunner) Run(ctx context.Context, prompt string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testConfig() config.NarrativeConfig {
	return config.NarrativeConfig{Command: "ollama", Model: "mistral", Timeout: time.Second}
}

func testStats() indicators.Summary {
	return indicators.Summary{LatestClose: 186.90, Avg7: 185.20, Avg30: 181.75, Bars: 120}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("AAPL", testStats())

	lines := strings.Split(prompt, "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Analyze the stock AAPL.", lines[0])
	assert.Equal(t, "Latest close: 186.90", lines[1])
	assert.Equal(t, "7-day avg: 185.20", lines[2])
	assert.Equal(t, "30-day avg: 181.75", lines[3])
	assert.Contains(t, lines[4], "short-term prediction (30 days)")
}

func TestGenerate_ModelAvailable(t *testing.T) {
	gen := NewGenerator(&stubRunner{text: "Model says up."}, testConfig(), testLogger())

	n := gen.Generate(context.Background(), "AAPL", testStats())

	assert.Equal(t, SourceModel, n.Source)
	assert.Equal(t, "mistral", n.Model)
	assert.Equal(t, "Model says up.", n.Text)
	assert.False(t, n.GeneratedAt.IsZero())
}

func TestGenerate_FallsBack(t *testing.T) {
	gen := NewGenerator(&stubRunner{err: ErrModelUnavailable}, testConfig(), testLogger())

	n := gen.Generate(context.Background(), "AAPL", testStats())

	assert.Equal(t, SourceFallback, n.Source)
	assert.Empty(t, n.Model)
	assert.Contains(t, n.Text, "AAPL latest close: $186.90")
	assert.Contains(t, n.Text, "upward momentum")
}

func TestGenerate_NeverReturnsErrorOnArbitraryFailure(t *testing.T) {
	gen := NewGenerator(&stubRunner{err: errors.New("boom")}, testConfig(), testLogger())

	n := gen.Generate(context.Background(), "TSLA", testStats())
	assert.Equal(t, SourceFallback, n.Source)
	assert.NotEmpty(t, n.Text)
}

func TestFallbackText(t *testing.T) {
	t.Run("downward pressure", func(t *testing.T) {
		stats := indicators.Summary{LatestClose: 100, Avg7: 95, Avg30: 105, Bars: 60}
		text := FallbackText("MSFT", stats)
		assert.Contains(t, text, "sideways/downward pressure")
		assert.Contains(t, text, "Two-line takeaway")
	})

	t.Run("no bars", func(t *testing.T) {
		text := FallbackText("MSFT", indicators.Summary{})
		assert.Contains(t, text, "limited price data")
	})
}

func TestOllamaRunner_MissingBinary(t *testing.T) {
	runner := NewOllamaRunner(config.NarrativeConfig{
		Command: "definitely-not-a-real-binary-xyz",
		Model:   "mistral",
		Timeout: time.Second,
	}, testLogger())

	_, err := runner.Run(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestAnalogies(t *testing.T) {
	t.Run("fixed ticker story first", func(t *testing.T) {
		profile := &marketdata.CompanyProfile{Ticker: "TSLA", TrailingPE: 65}
		out := Analogies(profile, testStats())

		require.NotEmpty(t, out)
		assert.Equal(t, "TSLA", out[0].Topic)
		assert.Contains(t, out[0].Text, "aces math")
	})

	t.Run("high pe maps to supercar", func(t *testing.T) {
		profile := &marketdata.CompanyProfile{Ticker: "XYZ", TrailingPE: 55}
		out := Analogies(profile, indicators.Summary{})

		require.NotEmpty(t, out)
		assert.Equal(t, "Valuation", out[0].Topic)
		assert.Contains(t, out[0].Text, "supercar")
	})

	t.Run("momentum from stats only", func(t *testing.T) {
		out := Analogies(nil, indicators.Summary{Avg7: 90, Avg30: 100, Bars: 40})
		require.Len(t, out, 1)
		assert.Equal(t, "Momentum", out[0].Topic)
		assert.Contains(t, out[0].Text, "easing off")
	})

	t.Run("nil profile and empty stats", func(t *testing.T) {
		assert.Empty(t, Analogies(nil, indicators.Summary{}))
	})
}
