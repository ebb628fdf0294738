package models

// Requests for wave HTTP endpoints. Defined in domain for consistency and reuse.

type SeriesRequest struct {
	Symbol     string `query:"symbol" json:"symbol" validate:"required"`
	From       string `query:"from" json:"from"`
	To         string `query:"to" json:"to"`
	Resolution string `query:"resolution" json:"resolution" default:"M1" validate:"oneof=M1 H1 D1 W1"`
	Typical    string `query:"typical" json:"typical" default:"HLC" validate:"oneof=HLC HL"`
	Kind       string `query:"kind" json:"kind" default:"full" validate:"oneof=full rawMonowaves mergedMonowaves simpleTrim neelyTrim"`
	Format     string `query:"format" json:"format" default:"json" validate:"oneof=json csv"`
}

type ResolutionsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
}

type AnalyzeRequest struct {
	Symbol string `query:"symbol" json:"symbol" default:"upload" validate:"required,max=64"`
}
