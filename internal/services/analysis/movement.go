package analysis

import (
	"math"
	"time"

	"StockScribe/internal/domain/models"
	"StockScribe/pkg/util"
)

// Analyzer classifies price movement from a single quote snapshot.
type Analyzer struct {
	now func() time.Time
}

type Option func(*Analyzer)

// WithClock overrides the analysis date clock.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze derives the movement classification for q. It fails with a
// *models.ValidationError when the snapshot is unusable: nil quote,
// non-positive current price, or an inverted high/low range.
func (a *Analyzer) Analyze(q *models.Quote) (*models.PriceAnalysis, error) {
	if q == nil {
		return nil, &models.ValidationError{Reason: "no data to analyze"}
	}
	if q.Current <= 0 {
		return nil, &models.ValidationError{Field: "current_price", Reason: "must be greater than 0"}
	}
	if q.High < q.Low {
		return nil, &models.ValidationError{Field: "day_range", Reason: "high price is less than low price"}
	}

	// classification runs on the raw percent change, rounding applies to
	// the returned fields only
	movement, strength := classify(q.ChangePercent)

	dayRange := q.High - q.Low
	rangePercent := dayRange / q.Current * 100

	res := &models.PriceAnalysis{
		Date:          util.FormatDate(a.now()),
		CurrentPrice:  round2(q.Current),
		PreviousClose: round2(q.PrevClose),
		PriceChange:   round2(q.Change),
		PercentChange: round2(q.ChangePercent),
		Movement:      movement,
		Strength:      strength,
		DayHigh:       round2(q.High),
		DayLow:        round2(q.Low),
		DayRange:      round2(dayRange),
		RangePercent:  round2(rangePercent),
	}
	res.Description = describe(movement, strength)
	return res, nil
}

func classify(pct float64) (models.Movement, models.Strength) {
	switch {
	case pct > 0:
		return models.MovementUp, strengthOf(pct)
	case pct < 0:
		return models.MovementDown, strengthOf(-pct)
	default:
		return models.MovementUnchanged, models.StrengthNone
	}
}

func strengthOf(abs float64) models.Strength {
	switch {
	case abs > 5:
		return models.StrengthVeryStrong
	case abs > 2:
		return models.StrengthStrong
	case abs > 1:
		return models.StrengthModerate
	default:
		return models.StrengthSlight
	}
}

func describe(m models.Movement, s models.Strength) string {
	if s == models.StrengthNone {
		return "Stock moved " + string(m)
	}
	return "Stock moved " + string(s) + " " + string(m)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
