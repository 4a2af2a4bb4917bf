package models

import "time"

// Quote is one snapshot from the primary quote provider. Fields mirror the
// provider wire record o/h/l/c/pc/d/dp.
// Note: no transport (json/http) concerns here.
type Quote struct {
	Open          float64
	High          float64
	Low           float64
	Current       float64
	PrevClose     float64
	Change        float64
	ChangePercent float64
	ObservedAt    time.Time
}

// CompanyProfile carries the descriptive fields used when building prompts.
type CompanyProfile struct {
	Symbol string
	Name   string
}
