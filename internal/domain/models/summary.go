package models

import "time"

// WaveSummary is a compact view of one analysed input, shared by the HTTP
// API and the results topic.
// Note: no transport (json/http) concerns beyond field tags here.
type WaveSummary struct {
	Symbol      string         `json:"symbol"`
	Finest      string         `json:"finest"`
	Bars        int            `json:"bars"`
	From        time.Time      `json:"from"`
	To          time.Time      `json:"to"`
	Available   []string       `json:"available"`
	Entries     []SummaryEntry `json:"entries"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// SummaryEntry describes the decomposition of one resolution/typical pair.
type SummaryEntry struct {
	Resolution         string        `json:"resolution"`
	Typical            string        `json:"typical"`
	Bars               int           `json:"bars"`
	RawMonowaves       int           `json:"raw_monowaves"`
	MergedMonowaves    int           `json:"merged_monowaves"`
	DirectionalActions int           `json:"directional_actions"`
	Actions            []ActionPoint `json:"actions"`
}

// ActionPoint is the boundary of one directional action.
type ActionPoint struct {
	Direction  string    `json:"direction"`
	TimeStart  time.Time `json:"time_start"`
	TimeEnd    time.Time `json:"time_end"`
	ValueStart float64   `json:"value_start"`
	ValueEnd   float64   `json:"value_end"`
	Monowaves  int       `json:"monowaves"`
}

// AnalysisJob asks for a batch analysis of one symbol over a time range.
type AnalysisJob struct {
	Symbol string    `json:"symbol" validate:"required"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
}
