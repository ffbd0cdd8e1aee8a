package models

// Requests for the prices HTTP endpoints. Defined in domain for consistency and reuse.

type HistoryRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required"`
	Interval string `query:"interval" json:"interval" validate:"required"`
	// Limit is optional; when omitted the catalog default for the requested
	// interval applies downstream.
	Limit    int    `query:"limit" json:"limit" validate:"omitempty,gte=1,lte=2000"`
}

type MarketCapRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}
