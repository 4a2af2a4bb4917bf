package models

import "time"

// Generation is one persisted script-generation artifact. The json shape is
// the Kafka message schema and the history API payload.
type Generation struct {
	ID          string    `json:"id"`
	Symbol      string    `json:"symbol"`
	Period      string    `json:"period"`
	CompanyName string    `json:"company_name"`
	Prompt      string    `json:"prompt"`
	Script      string    `json:"script"`
	ImpactTable string    `json:"impact_table"`
	NewsLines   []string  `json:"news_lines,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
