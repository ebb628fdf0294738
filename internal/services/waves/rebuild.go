package waves

import (
	"fmt"

	"NeelyWave/internal/domain/models"
)

// MergeByDirectionalActions rebuilds a monowave sequence whose boundaries are
// the directional-action boundaries of s: one wave per action, values read
// back from the typical column. Relative advances are recomputed against the
// previous merged wave.
func MergeByDirectionalActions(s *models.Series, actions []models.DirectionalAction) ([]models.Monowave, error) {
	n := s.Len()
	out := make([]models.Monowave, 0, len(actions))
	for i, a := range actions {
		if a.StartIndex < 0 || a.EndIndex >= n || a.StartIndex > a.EndIndex {
			return nil, fmt.Errorf("%w: action %d spans [%d, %d] over %d bars", ErrInvariant, i, a.StartIndex, a.EndIndex, n)
		}
		m := models.Monowave{
			StartIndex: a.StartIndex,
			EndIndex:   a.EndIndex,
			TimeStart:  s.Date[a.StartIndex],
			TimeEnd:    s.Date[a.EndIndex],
			ValueStart: s.Typical[a.StartIndex],
			ValueEnd:   s.Typical[a.EndIndex],
			Closed:     true,
		}
		m.Advance = m.ValueEnd - m.ValueStart
		m.Direction = models.DirectionOf(m.Advance)
		prev, hasPrev := lastAdvance(out)
		m.RelativeAdvance = relativeAdvance(m.Advance, prev, hasPrev)
		out = append(out, m)
	}
	return out, nil
}

// TrimSeries reconstructs an OHLCT series from a wave decomposition of s: the
// first bar of every wave plus the final bar of the last one.
func TrimSeries(s *models.Series, ws []models.Monowave) *models.Series {
	out := models.NewSeries(s.Resolution, s.TypicalType, len(ws)+1)
	if len(ws) == 0 {
		return out
	}
	for _, m := range ws {
		out.Append(s.Bar(m.StartIndex))
	}
	last := ws[len(ws)-1]
	if last.EndIndex != last.StartIndex {
		out.Append(s.Bar(last.EndIndex))
	}
	return out
}

// MonowaveSeries renders each wave of s as one bar: Date and Open from the
// start point, Close and Typical from the end point, High/Low the typical
// extremes inside the wave and volumes summed over the bars the wave adds.
func MonowaveSeries(s *models.Series, ws []models.Monowave) *models.Series {
	out := models.NewSeries(s.Resolution, s.TypicalType, len(ws))
	for i, m := range ws {
		b := models.Bar{
			Date:    m.TimeStart,
			Open:    m.ValueStart,
			High:    m.ValueStart,
			Low:     m.ValueStart,
			Close:   m.ValueEnd,
			Typical: m.ValueEnd,
		}
		from := m.StartIndex + 1
		if i == 0 {
			from = m.StartIndex
		}
		for j := m.StartIndex; j <= m.EndIndex; j++ {
			if s.Typical[j] > b.High {
				b.High = s.Typical[j]
			}
			if s.Typical[j] < b.Low {
				b.Low = s.Typical[j]
			}
			if j >= from {
				b.TickVolume += s.TickVolume[j]
				b.Volume += s.Volume[j]
				b.Spread += s.Spread[j]
			}
		}
		out.Append(b)
	}
	return out
}
