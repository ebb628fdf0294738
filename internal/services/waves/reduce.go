package waves

import (
	"fmt"
	"time"

	"NeelyWave/internal/domain/models"
)

// window is the running aggregation state for one target resolution.
type window struct {
	out *models.Series
	t0  time.Time
	dur time.Duration
}

// Reduce aggregates the finest series into every coarser resolution of the
// enumeration in one forward pass, keeping one open window per target.
//
// A bar joins the open window while bar.Date - t0 < duration, where t0 is the
// date of the bar that opened the window. High/Low are the window extremes,
// volumes are summed, Open and Date come from the opening bar and Close from
// the last bar inside the window.
//
// Every target gets at least one bar: a single-bar input yields single-bar
// reductions duplicating it.
func Reduce(finest *models.Series) (map[models.Resolution]*models.Series, error) {
	n := finest.Len()
	if n == 0 {
		return nil, ErrEmptySeries
	}
	if !finest.Resolution.Valid() {
		return nil, fmt.Errorf("%w: finest resolution %s", ErrInvariant, finest.Resolution)
	}

	targets := finest.Resolution.Coarser()
	windows := make([]*window, 0, len(targets))
	first := finest.Bar(0)
	for _, res := range targets {
		w := &window{
			out: models.NewSeries(res, finest.TypicalType, estimateBars(finest, res)),
			t0:  first.Date,
			dur: res.Duration(),
		}
		w.out.Append(first)
		windows = append(windows, w)
	}

	for i := 1; i < n; i++ {
		date := finest.Date[i]
		for _, w := range windows {
			last := w.out.Len() - 1
			if date.Sub(w.t0) < w.dur {
				if finest.High[i] > w.out.High[last] {
					w.out.High[last] = finest.High[i]
				}
				if finest.Low[i] < w.out.Low[last] {
					w.out.Low[last] = finest.Low[i]
				}
				w.out.TickVolume[last] += finest.TickVolume[i]
				w.out.Volume[last] += finest.Volume[i]
				w.out.Spread[last] += finest.Spread[i]
				continue
			}
			// window closes on the previous input bar
			w.out.Close[last] = finest.Close[i-1]
			w.t0 = date
			w.out.Append(finest.Bar(i))
		}
	}

	out := make(map[models.Resolution]*models.Series, len(windows))
	for _, w := range windows {
		w.out.Close[w.out.Len()-1] = finest.Close[n-1]
		// typical values are recomputed per type afterwards
		for j := range w.out.Typical {
			w.out.Typical[j] = 0
		}
		out[w.out.Resolution] = w.out
	}
	return out, nil
}

func estimateBars(finest *models.Series, res models.Resolution) int {
	n := finest.Len()
	span := finest.Date[n-1].Sub(finest.Date[0])
	est := int(span/res.Duration()) + 1
	if est > n {
		est = n
	}
	if est < 1 {
		est = 1
	}
	return est
}
