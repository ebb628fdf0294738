package models

import (
	"fmt"
	"time"
)

// Bar is one OHLC sample. Typical is zero until computed; the volume fields
// are zero when the source does not provide them.
type Bar struct {
	Date       time.Time `json:"date"`
	Open       float64   `json:"open"`
	High       float64   `json:"high"`
	Low        float64   `json:"low"`
	Close      float64   `json:"close"`
	Typical    float64   `json:"typical,omitempty"`
	TickVolume float64   `json:"tick_volume,omitempty"`
	Volume     float64   `json:"volume,omitempty"`
	Spread     float64   `json:"spread,omitempty"`
}

// Series stores bars of one resolution and typical type as parallel columns.
// Every column always has the same length.
type Series struct {
	Resolution  Resolution
	TypicalType TypicalType

	Date       []time.Time
	Open       []float64
	High       []float64
	Low        []float64
	Close      []float64
	Typical    []float64
	TickVolume []float64
	Volume     []float64
	Spread     []float64
}

// NewSeries allocates an empty series with room for capacity bars.
func NewSeries(res Resolution, typ TypicalType, capacity int) *Series {
	return &Series{
		Resolution:  res,
		TypicalType: typ,
		Date:        make([]time.Time, 0, capacity),
		Open:        make([]float64, 0, capacity),
		High:        make([]float64, 0, capacity),
		Low:         make([]float64, 0, capacity),
		Close:       make([]float64, 0, capacity),
		Typical:     make([]float64, 0, capacity),
		TickVolume:  make([]float64, 0, capacity),
		Volume:      make([]float64, 0, capacity),
		Spread:      make([]float64, 0, capacity),
	}
}

// SeriesFromBars copies bars into a new series.
func SeriesFromBars(res Resolution, typ TypicalType, bars []Bar) *Series {
	s := NewSeries(res, typ, len(bars))
	for _, b := range bars {
		s.Append(b)
	}
	return s
}

func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Date)
}

// Append adds b at the end of every column.
func (s *Series) Append(b Bar) {
	s.Date = append(s.Date, b.Date)
	s.Open = append(s.Open, b.Open)
	s.High = append(s.High, b.High)
	s.Low = append(s.Low, b.Low)
	s.Close = append(s.Close, b.Close)
	s.Typical = append(s.Typical, b.Typical)
	s.TickVolume = append(s.TickVolume, b.TickVolume)
	s.Volume = append(s.Volume, b.Volume)
	s.Spread = append(s.Spread, b.Spread)
}

// Bar returns the i-th bar.
func (s *Series) Bar(i int) Bar {
	return Bar{
		Date:       s.Date[i],
		Open:       s.Open[i],
		High:       s.High[i],
		Low:        s.Low[i],
		Close:      s.Close[i],
		Typical:    s.Typical[i],
		TickVolume: s.TickVolume[i],
		Volume:     s.Volume[i],
		Spread:     s.Spread[i],
	}
}

// Bars returns a copy of the series as a slice of bars.
func (s *Series) Bars() []Bar {
	out := make([]Bar, s.Len())
	for i := range out {
		out[i] = s.Bar(i)
	}
	return out
}

// Clone returns a deep copy that shares no backing arrays with s.
func (s *Series) Clone() *Series {
	if s == nil {
		return nil
	}
	return s.Slice(0, s.Len())
}

// Slice copies the bars in [from, to) into a new series.
func (s *Series) Slice(from, to int) *Series {
	out := NewSeries(s.Resolution, s.TypicalType, to-from)
	out.Date = append(out.Date, s.Date[from:to]...)
	out.Open = append(out.Open, s.Open[from:to]...)
	out.High = append(out.High, s.High[from:to]...)
	out.Low = append(out.Low, s.Low[from:to]...)
	out.Close = append(out.Close, s.Close[from:to]...)
	out.Typical = append(out.Typical, s.Typical[from:to]...)
	out.TickVolume = append(out.TickVolume, s.TickVolume[from:to]...)
	out.Volume = append(out.Volume, s.Volume[from:to]...)
	out.Spread = append(out.Spread, s.Spread[from:to]...)
	return out
}

// DropHead removes the first n bars in place.
func (s *Series) DropHead(n int) {
	if n <= 0 {
		return
	}
	s.Date = s.Date[n:]
	s.Open = s.Open[n:]
	s.High = s.High[n:]
	s.Low = s.Low[n:]
	s.Close = s.Close[n:]
	s.Typical = s.Typical[n:]
	s.TickVolume = s.TickVolume[n:]
	s.Volume = s.Volume[n:]
	s.Spread = s.Spread[n:]
}

// Validate checks the column-length and strictly-increasing-date invariants.
func (s *Series) Validate() error {
	n := len(s.Date)
	cols := map[string]int{
		"open":        len(s.Open),
		"high":        len(s.High),
		"low":         len(s.Low),
		"close":       len(s.Close),
		"typical":     len(s.Typical),
		"tick_volume": len(s.TickVolume),
		"volume":      len(s.Volume),
		"spread":      len(s.Spread),
	}
	for name, l := range cols {
		if l != n {
			return fmt.Errorf("column %s has %d values, want %d", name, l, n)
		}
	}
	for i := 1; i < n; i++ {
		if !s.Date[i].After(s.Date[i-1]) {
			return fmt.Errorf("date at index %d (%s) is not after %s", i, s.Date[i].Format(time.RFC3339), s.Date[i-1].Format(time.RFC3339))
		}
	}
	return nil
}
