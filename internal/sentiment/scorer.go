// Package sentiment implements a deterministic keyword-based sentiment
// scorer for news headlines. It runs offline and needs no model; the
// narrative layer uses it to color headline lists and to feed the
// fallback text when the language model is unavailable.
package sentiment

import (
	"math"
	"strings"
	"time"

	"github.com/Gurusharan-Fintech/Finlense/internal/marketdata"
)

// Keyword dictionaries (lowercase). Weights express how strongly a
// phrase signals direction, not probability.
var bullishWords = map[string]float64{
	"bullish": 0.7, "rally": 0.6, "surge": 0.7, "soar": 0.7,
	"upbeat": 0.5, "positive": 0.4, "growth": 0.4, "upgrade": 0.6,
	"outperform": 0.6, "buy": 0.5, "strong": 0.4, "recovery": 0.5,
	"breakout": 0.6, "record high": 0.7, "all-time high": 0.7,
	"beat": 0.5, "exceeds": 0.5, "expansion": 0.4, "profit": 0.3,
	"dividend": 0.4, "gains": 0.4, "record deliveries": 0.6,
}

var bearishWords = map[string]float64{
	"bearish": 0.7, "crash": 0.8, "plunge": 0.7, "slump": 0.6,
	"tumble": 0.6, "negative": 0.4, "downgrade": 0.6,
	"underperform": 0.6, "sell": 0.5, "weak": 0.4, "decline": 0.5,
	"loss": 0.4, "selloff": 0.7, "fall": 0.4, "correction": 0.5,
	"lawsuit": 0.5, "fraud": 0.8, "recall": 0.5, "investigation": 0.5,
	"cut": 0.3, "miss": 0.5, "warning": 0.5, "concern": 0.3,
	"under pressure": 0.5, "layoff": 0.5,
}

// ScoredHeadline is a news item annotated with its sentiment.
type ScoredHeadline struct {
	Title       string    `json:"title"`
	Link        string    `json:"link,omitempty"`
	Publisher   string    `json:"publisher,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
	Score       float64   `json:"score"`
	Confidence  float64   `json:"confidence"`
	Label       string    `json:"label"`
}

// Aggregate is the overall mood across a headline set.
type Aggregate struct {
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
	Label      string  `json:"label"`
	Headlines  int     `json:"headlines"`
}

// ScoreHeadline scores a single headline. The score ranges from -1
// (very bearish) to +1 (very bullish); confidence grows with the
// number of keyword matches.
func ScoreHeadline(headline string) (score, confidence float64) {
	lower := strings.ToLower(headline)

	var bull, bear float64
	matches := 0

	for word, weight := range bullishWords {
		if strings.Contains(lower, word) {
			bull += weight
			matches++
		}
	}
	for word, weight := range bearishWords {
		if strings.Contains(lower, word) {
			bear += weight
			matches++
		}
	}

	if matches == 0 || bull+bear == 0 {
		return 0, 0.1
	}

	score = (bull - bear) / (bull + bear)
	confidence = math.Min(float64(matches)*0.15+0.2, 0.85)
	return score, confidence
}

// ScoreNews scores every headline in the set.
func ScoreNews(items []marketdata.NewsItem) []ScoredHeadline {
	out := make([]ScoredHeadline, 0, len(items))
	for _, item := range items {
		score, confidence := ScoreHeadline(item.Title)
		out = append(out, ScoredHeadline{
			Title:       item.Title,
			Link:        item.Link,
			Publisher:   item.Publisher,
			PublishedAt: item.PublishedAt,
			Score:       score,
			Confidence:  confidence,
			Label:       Label(score),
		})
	}
	return out
}

// Summarize computes the confidence- and recency-weighted aggregate
// mood across scored headlines. Weight halves every 24 hours of age.
func Summarize(scored []ScoredHeadline) Aggregate {
	if len(scored) == 0 {
		return Aggregate{Label: "Neutral"}
	}

	now := time.Now()
	var weightedSum, totalWeight, confSum float64

	for _, s := range scored {
		w := s.Confidence
		if !s.PublishedAt.IsZero() {
			age := now.Sub(s.PublishedAt).Hours()
			if age < 0 {
				age = 0
			}
			w *= math.Exp(-math.Ln2 * age / 24)
		}
		weightedSum += s.Score * w
		totalWeight += w
		confSum += s.Confidence
	}

	agg := Aggregate{
		Confidence: confSum / float64(len(scored)),
		Headlines:  len(scored),
	}
	if totalWeight > 0 {
		agg.Score = weightedSum / totalWeight
	}
	agg.Label = Label(agg.Score)
	return agg
}

// Label maps a score to its display label.
func Label(score float64) string {
	switch {
	case score > 0.3:
		return "Bullish"
	case score > 0.1:
		return "Slightly Bullish"
	case score < -0.3:
		return "Bearish"
	case score < -0.1:
		return "Slightly Bearish"
	default:
		return "Neutral"
	}
}
