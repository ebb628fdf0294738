package waves

import (
	"fmt"
	"math"

	"NeelyWave/internal/domain/models"
)

// firstRelativeAdvance is reported for a wave with no predecessor.
const firstRelativeAdvance = 100.0

// fromSeriesStart opens the first monowave of s at its first bar.
func fromSeriesStart(s *models.Series) models.Monowave {
	return models.Monowave{
		StartIndex: 0,
		EndIndex:   0,
		TimeStart:  s.Date[0],
		TimeEnd:    s.Date[0],
		ValueStart: s.Typical[0],
		ValueEnd:   s.Typical[0],
	}
}

// fromPriorMonowave opens a monowave seeded at the terminal point of prior.
// Only the seed values are copied; the new wave keeps no link to prior.
func fromPriorMonowave(prior models.Monowave) models.Monowave {
	return models.Monowave{
		StartIndex: prior.EndIndex,
		EndIndex:   prior.EndIndex,
		TimeStart:  prior.TimeEnd,
		TimeEnd:    prior.TimeEnd,
		ValueStart: prior.ValueEnd,
		ValueEnd:   prior.ValueEnd,
	}
}

// closeMonowave ends m at bar end. prevAdvance is the advance of the previous
// closed wave; hasPrev is false for the first wave of the series.
func closeMonowave(m *models.Monowave, s *models.Series, end int, prevAdvance float64, hasPrev bool) {
	m.EndIndex = end
	m.TimeEnd = s.Date[end]
	m.ValueEnd = s.Typical[end]
	m.Advance = m.ValueEnd - m.ValueStart
	m.Direction = models.DirectionOf(m.Advance)
	m.RelativeAdvance = relativeAdvance(m.Advance, prevAdvance, hasPrev)
	m.Closed = true
}

func relativeAdvance(advance, prevAdvance float64, hasPrev bool) float64 {
	if !hasPrev || prevAdvance == 0 {
		return firstRelativeAdvance
	}
	return 100 * advance / prevAdvance
}

// Segment cuts the typical-price series of s into alternating monowaves.
//
// At each bar i the step Typical[i]-Typical[i-1] is multiplied by the advance
// accumulated so far. A non-negative product extends the open wave; a negative
// one closes it at bar i-1, opens the next wave there and evaluates bar i
// again against the new wave. The last wave is closed on the final bar.
func Segment(s *models.Series) ([]models.Monowave, error) {
	n := s.Len()
	if n == 0 {
		return nil, ErrEmptySeries
	}
	if len(s.Typical) != n {
		return nil, fmt.Errorf("%w: typical column has %d values for %d bars", ErrInvariant, len(s.Typical), n)
	}

	out := make([]models.Monowave, 0, n/4+1)
	cur := fromSeriesStart(s)
	var advance float64

	for i := 1; i < n; {
		delta := s.Typical[i] - s.Typical[i-1]
		p := delta * advance
		if math.IsNaN(p) {
			return nil, fmt.Errorf("%w: non-finite typical value near bar %d", ErrInvariant, i)
		}
		if p >= 0 {
			cur.EndIndex = i
			advance = s.Typical[i] - cur.ValueStart
			i++
			continue
		}
		prev, hasPrev := lastAdvance(out)
		closeMonowave(&cur, s, i-1, prev, hasPrev)
		out = append(out, cur)
		cur = fromPriorMonowave(cur)
		advance = 0
	}

	prev, hasPrev := lastAdvance(out)
	closeMonowave(&cur, s, n-1, prev, hasPrev)
	return append(out, cur), nil
}

func lastAdvance(ws []models.Monowave) (float64, bool) {
	if len(ws) == 0 {
		return 0, false
	}
	return ws[len(ws)-1].Advance, true
}
