package services

import "errors"

// Service-level errors. Provider and ticker errors pass through from
// the marketdata package unchanged.
var (
	ErrReportRender    = errors.New("report rendering failed")
	ErrInvalidPeriod   = errors.New("invalid period")
	ErrInvalidInterval = errors.New("invalid interval")
)
