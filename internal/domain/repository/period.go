package repository

import "time"

// Period is the user-facing lookback selector for news and analysis.
type Period string

const (
	Period1Mo Period = "1mo"
	Period3Mo Period = "3mo"
	Period6Mo Period = "6mo"
	Period1Y  Period = "1y"
)

// IsValidPeriod returns true if p is a supported period.
func IsValidPeriod(p Period) bool {
	switch p {
	case Period1Mo, Period3Mo, Period6Mo, Period1Y:
		return true
	default:
		return false
	}
}

// DefaultPeriod returns the default lookback period.
func DefaultPeriod() Period { return Period1Mo }

// NormalizePeriod converts raw string to a valid period (or default).
func NormalizePeriod(s string) Period {
	if s == "" {
		return DefaultPeriod()
	}
	p := Period(s)
	if IsValidPeriod(p) {
		return p
	}
	return DefaultPeriod()
}

// Days returns the lookback window in days. Unrecognized periods fall back to 30.
func (p Period) Days() int {
	switch p {
	case Period3Mo:
		return 90
	case Period6Mo:
		return 180
	case Period1Y:
		return 365
	default:
		return 30
	}
}

// Lookback returns the window as a duration.
func (p Period) Lookback() time.Duration {
	return time.Duration(p.Days()) * 24 * time.Hour
}
