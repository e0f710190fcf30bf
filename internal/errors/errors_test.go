package errors

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	err := New(http.StatusNotFound, "UNKNOWN_TICKER", "Ticker symbol not recognized")
	assert.Equal(t, "Ticker symbol not recognized", err.Error())
	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.Equal(t, "UNKNOWN_TICKER", err.ErrorCode)
}

func TestUnknownTickerError(t *testing.T) {
	err := UnknownTickerError("ZZZZ")
	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.Contains(t, err.Message, "ZZZZ")
	assert.Equal(t, "ZZZZ", err.Details)
}

func TestErrValidation(t *testing.T) {
	err := ErrValidation("period", "unsupported period")
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)

	details, ok := err.Details.(ValidationError)
	require.True(t, ok)
	assert.Equal(t, "period", details.Field)
	assert.Equal(t, "unsupported period", details.Message)
}

func TestReportError(t *testing.T) {
	err := ReportError("PDF", assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
	assert.Contains(t, err.Message, "PDF")
}

func TestProblemDetailsMarshalJSON(t *testing.T) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeUnknownTicker,
		"Not Found",
		"Ticker ZZZZ is not known",
		"/api/dashboard/ZZZZ",
	).WithExtension("trace_id", "abc-123")

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, TypeUnknownTicker, decoded["type"])
	assert.Equal(t, float64(http.StatusNotFound), decoded["status"])
	assert.Equal(t, "abc-123", decoded["trace_id"])
	assert.Equal(t, "/api/dashboard/ZZZZ", decoded["instance"])
}

func TestNewValidationErrors(t *testing.T) {
	err := NewValidationErrors([]ValidationError{
		{Field: "ticker", Message: "required"},
		{Field: "interval", Message: "unsupported"},
	})

	details, ok := err.Details.(ValidationErrors)
	require.True(t, ok)
	assert.Len(t, details.Errors, 2)
}
