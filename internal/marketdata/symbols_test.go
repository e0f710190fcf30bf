package marketdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupSymbol(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"exact", "AAPL", "AAPL", false},
		{"lowercase", "tsla", "TSLA", false},
		{"surrounding whitespace", "  msft ", "MSFT", false},
		{"unknown", "ZZZZ", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sym, err := LookupSymbol(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownTicker)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, sym.Ticker)
			assert.NotEmpty(t, sym.Name)
		})
	}
}

func TestKnownSymbols_Sorted(t *testing.T) {
	symbols := KnownSymbols()
	require.NotEmpty(t, symbols)
	for i := 1; i < len(symbols); i++ {
		assert.Less(t, symbols[i-1].Ticker, symbols[i].Ticker)
	}
}

func TestPeriodValid(t *testing.T) {
	for _, p := range Periods() {
		assert.True(t, p.Valid(), string(p))
	}
	assert.False(t, Period("7y").Valid())
	assert.False(t, Period("").Valid())
}

func TestIntervalValid(t *testing.T) {
	for _, iv := range Intervals() {
		assert.True(t, iv.Valid(), string(iv))
	}
	assert.False(t, Interval("5m").Valid())
}
