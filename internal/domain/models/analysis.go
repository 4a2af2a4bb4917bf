package models

// Movement is the direction bucket of a price change.
type Movement string

const (
	MovementUp        Movement = "up"
	MovementDown      Movement = "down"
	MovementUnchanged Movement = "unchanged"
)

// Strength is the magnitude bucket of a percent change.
type Strength string

const (
	StrengthNone       Strength = ""
	StrengthSlight     Strength = "slightly"
	StrengthModerate   Strength = "moderately"
	StrengthStrong     Strength = "strongly"
	StrengthVeryStrong Strength = "very strongly"
)

// PriceAnalysis is the classified movement derived from one Quote.
// All float fields are rounded to two decimals.
type PriceAnalysis struct {
	Date          string // YYYY-MM-DD
	CurrentPrice  float64
	PreviousClose float64
	PriceChange   float64
	PercentChange float64
	Movement      Movement
	Strength      Strength
	DayHigh       float64
	DayLow        float64
	DayRange      float64
	RangePercent  float64
	Description   string
}

// Trend renders the "{strength} {movement}" phrase used in prompts, with the
// strength dropped when the price was unchanged.
func (a *PriceAnalysis) Trend() string {
	if a.Strength == StrengthNone {
		return string(a.Movement)
	}
	return string(a.Strength) + " " + string(a.Movement)
}
