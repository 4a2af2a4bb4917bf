package models

// Requests for the generation HTTP endpoints. Defined in domain for consistency and reuse.

type GenerateRequest struct {
	Symbol string `json:"symbol" validate:"required,min=1,max=12"`
	Period string `json:"period" default:"1mo" validate:"oneof=1mo 3mo 6mo 1y"`
}

type HistoryRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required"`
	Limit  int    `query:"limit" json:"limit" default:"10" validate:"gte=1,lte=100"`
}

type SearchRequest struct {
	Query string `query:"q" json:"q" validate:"required,min=1"`
	Limit int    `query:"limit" json:"limit" default:"10" validate:"gte=1,lte=50"`
}
