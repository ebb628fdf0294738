package models

import "time"

// Direction of a price movement.
type Direction int8

const (
	DirectionDown Direction = -1
	DirectionFlat Direction = 0
	DirectionUp   Direction = 1
)

// DirectionOf returns the sign of v as a Direction.
func DirectionOf(v float64) Direction {
	switch {
	case v > 0:
		return DirectionUp
	case v < 0:
		return DirectionDown
	default:
		return DirectionFlat
	}
}

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	default:
		return "flat"
	}
}

// Monowave is a maximal monotonic run of the typical price. StartIndex and
// EndIndex point into the series the wave was cut from; the boundary bar is
// shared with the neighbouring waves.
type Monowave struct {
	StartIndex int       `json:"start_index"`
	EndIndex   int       `json:"end_index"`
	TimeStart  time.Time `json:"time_start"`
	TimeEnd    time.Time `json:"time_end"`
	ValueStart float64   `json:"value_start"`
	ValueEnd   float64   `json:"value_end"`
	Direction  Direction `json:"direction"`
	// Advance is ValueEnd - ValueStart.
	Advance float64 `json:"advance"`
	// RelativeAdvance is 100 * Advance / previous Advance, or 100 for the
	// first wave of a series.
	RelativeAdvance float64 `json:"relative_advance"`
	Closed          bool    `json:"closed"`
}

// Bars is the number of bars spanned, boundaries included.
func (m Monowave) Bars() int { return m.EndIndex - m.StartIndex + 1 }

// DirectionalAction merges consecutive monowaves of one trend.
type DirectionalAction struct {
	Direction  Direction `json:"direction"`
	StartIndex int       `json:"start_index"`
	EndIndex   int       `json:"end_index"`
	TimeStart  time.Time `json:"time_start"`
	TimeEnd    time.Time `json:"time_end"`
	ValueStart float64   `json:"value_start"`
	ValueEnd   float64   `json:"value_end"`
	// FirstMonowave and LastMonowave index the raw monowave slice.
	FirstMonowave int `json:"first_monowave"`
	LastMonowave  int `json:"last_monowave"`
	MonowaveCount int `json:"monowave_count"`
	// Ratio is the net price change per millisecond.
	Ratio  float64 `json:"ratio"`
	Closed bool    `json:"closed"`
}
