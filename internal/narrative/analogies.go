package narrative

import (
	"fmt"

	"github.com/Gurusharan-Fintech/Finlense/internal/indicators"
	"github.com/Gurusharan-Fintech/Finlense/internal/marketdata"
)

// Analogy is one storytelling line mapping a financial fact to an
// everyday picture.
type Analogy struct {
	Topic string `json:"topic"`
	Text  string `json:"text"`
}

// tickerAnalogies are the hand-written stories for well-known names.
var tickerAnalogies = map[string]string{
	"TSLA": "Tesla is the student who aces math but forgets homework: brilliant on innovation, erratic on delivery.",
	"AAPL": "Apple is like the friend who always flexes the newest iPhone: premium habits, loyal circle, steady allowance.",
	"AMZN": "Amazon is the neighbor whose garage swallowed the whole street: everything passes through it eventually.",
	"NVDA": "NVIDIA is the only shovel seller in a gold rush: everyone digging for AI buys from the same store.",
	"KO":   "Coca-Cola is the grandparent of the portfolio: no surprises, a card with a small check every quarter.",
}

// Analogies builds the storytelling block for a ticker. The fixed
// ticker story comes first when one exists; the rest are derived from
// the company's ratios and the indicator summary with plain if/else
// thresholds.
func Analogies(profile *marketdata.CompanyProfile, stats indicators.Summary) []Analogy {
	out := make([]Analogy, 0, 4)

	ticker := ""
	if profile != nil {
		ticker = profile.Ticker
	}
	if story, ok := tickerAnalogies[ticker]; ok {
		out = append(out, Analogy{Topic: ticker, Text: story})
	}

	if profile != nil {
		if profile.TrailingPE >= 40 {
			out = append(out, Analogy{
				Topic: "Valuation",
				Text:  fmt.Sprintf("A P/E of %.0f is a supercar at full speed: thrilling while the road is smooth, expensive at the first bump.", profile.TrailingPE),
			})
		} else if profile.TrailingPE > 0 && profile.TrailingPE <= 12 {
			out = append(out, Analogy{
				Topic: "Valuation",
				Text:  fmt.Sprintf("A P/E of %.0f is the reliable used sedan: nobody brags about it, but it usually starts in the morning.", profile.TrailingPE),
			})
		}

		if profile.ProfitMargin >= 0.20 {
			out = append(out, Analogy{
				Topic: "Margins",
				Text:  "Margins this wide are a lemonade stand that sells the lemons too: most of every dollar stays home.",
			})
		} else if profile.ProfitMargin > 0 && profile.ProfitMargin < 0.05 {
			out = append(out, Analogy{
				Topic: "Margins",
				Text:  "Thin margins are a water bucket with pinholes: it works, but only while nobody bumps the table.",
			})
		}

		if profile.DividendYield >= 0.03 {
			out = append(out, Analogy{
				Topic: "Dividend",
				Text:  "A yield above 3% is the apartment that pays its own rent: the check arrives whether the market smiles or not.",
			})
		}
	}

	if stats.Bars > 0 {
		if stats.Avg7 > stats.Avg30 {
			out = append(out, Analogy{
				Topic: "Momentum",
				Text:  "The 7-day average running above the 30-day is a sprinter pulling ahead of the pack: the recent pace is faster than the season average.",
			})
		} else {
			out = append(out, Analogy{
				Topic: "Momentum",
				Text:  "The 7-day average trailing the 30-day is a runner easing off mid-race: the recent pace has cooled versus the season average.",
			})
		}
	}

	return out
}
