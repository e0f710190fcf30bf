package marketdata

import (
	"sort"
	"strings"
)

// Symbol is one entry of the static ticker lookup table.
type Symbol struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Sector string `json:"sector"`
}

// knownSymbols is the small static lookup table tickers are validated
// against. The table is intentionally curated, not exhaustive; it
// mirrors the symbols the dashboard frontend offers.
var knownSymbols = map[string]Symbol{
	"AAPL":  {Ticker: "AAPL", Name: "Apple Inc.", Sector: "Technology"},
	"MSFT":  {Ticker: "MSFT", Name: "Microsoft Corporation", Sector: "Technology"},
	"GOOGL": {Ticker: "GOOGL", Name: "Alphabet Inc.", Sector: "Communication Services"},
	"AMZN":  {Ticker: "AMZN", Name: "Amazon.com, Inc.", Sector: "Consumer Cyclical"},
	"META":  {Ticker: "META", Name: "Meta Platforms, Inc.", Sector: "Communication Services"},
	"TSLA":  {Ticker: "TSLA", Name: "Tesla, Inc.", Sector: "Consumer Cyclical"},
	"NVDA":  {Ticker: "NVDA", Name: "NVIDIA Corporation", Sector: "Technology"},
	"NFLX":  {Ticker: "NFLX", Name: "Netflix, Inc.", Sector: "Communication Services"},
	"AMD":   {Ticker: "AMD", Name: "Advanced Micro Devices, Inc.", Sector: "Technology"},
	"INTC":  {Ticker: "INTC", Name: "Intel Corporation", Sector: "Technology"},
	"JPM":   {Ticker: "JPM", Name: "JPMorgan Chase & Co.", Sector: "Financial Services"},
	"BAC":   {Ticker: "BAC", Name: "Bank of America Corporation", Sector: "Financial Services"},
	"V":     {Ticker: "V", Name: "Visa Inc.", Sector: "Financial Services"},
	"WMT":   {Ticker: "WMT", Name: "Walmart Inc.", Sector: "Consumer Defensive"},
	"KO":    {Ticker: "KO", Name: "The Coca-Cola Company", Sector: "Consumer Defensive"},
	"DIS":   {Ticker: "DIS", Name: "The Walt Disney Company", Sector: "Communication Services"},
	"BA":    {Ticker: "BA", Name: "The Boeing Company", Sector: "Industrials"},
	"XOM":   {Ticker: "XOM", Name: "Exxon Mobil Corporation", Sector: "Energy"},
	"PFE":   {Ticker: "PFE", Name: "Pfizer Inc.", Sector: "Healthcare"},
	"UNH":   {Ticker: "UNH", Name: "UnitedHealth Group Incorporated", Sector: "Healthcare"},
}

// NormalizeTicker uppercases and trims a raw ticker string.
func NormalizeTicker(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// LookupSymbol validates a raw ticker against the static symbol table.
// Returns ErrUnknownTicker for anything not in the table.
func LookupSymbol(raw string) (Symbol, error) {
	sym, ok := knownSymbols[NormalizeTicker(raw)]
	if !ok {
		return Symbol{}, ErrUnknownTicker
	}
	return sym, nil
}

// KnownSymbols returns the symbol table sorted by ticker.
func KnownSymbols() []Symbol {
	out := make([]Symbol, 0, len(knownSymbols))
	for _, sym := range knownSymbols {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}
