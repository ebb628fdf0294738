package waves

import "NeelyWave/internal/domain/models"

// Rule of Neutrality thresholds, in percent of the retraced wave. They are
// Fibonacci retracement levels and are not configurable.
const (
	// A retracement beyond this ends the directional action.
	reversalRetracement = -100.0
	// A retracement beyond this re-seeds an action that so far holds a single wave.
	reseedRetracement = -61.8
)

func openAction(ws []models.Monowave, i int) models.DirectionalAction {
	m := ws[i]
	return models.DirectionalAction{
		Direction:     m.Direction,
		StartIndex:    m.StartIndex,
		EndIndex:      m.StartIndex,
		TimeStart:     m.TimeStart,
		TimeEnd:       m.TimeStart,
		ValueStart:    m.ValueStart,
		ValueEnd:      m.ValueStart,
		FirstMonowave: i,
		LastMonowave:  i,
		MonowaveCount: 1,
	}
}

func closeAction(a *models.DirectionalAction, ws []models.Monowave, last int) {
	m := ws[last]
	a.EndIndex = m.EndIndex
	a.TimeEnd = m.TimeEnd
	a.ValueEnd = m.ValueEnd
	a.LastMonowave = last
	a.Ratio = 0
	if ms := a.TimeEnd.Sub(a.TimeStart).Milliseconds(); ms != 0 {
		a.Ratio = (a.ValueEnd - a.ValueStart) / float64(ms)
	}
	a.Closed = true
}

// EvaluateDirectionalActions merges raw monowaves into directional actions.
//
// A wave in the action's direction extends it. An opposite wave that retraces
// more than 100% of its predecessor closes the action on the previous wave and
// opens a new one. An opposite wave retracing more than 61.8% while the action
// still holds a single wave re-seeds the action from that wave. Any weaker
// retracement is absorbed without changing the action.
func EvaluateDirectionalActions(ws []models.Monowave) []models.DirectionalAction {
	if len(ws) == 0 {
		return nil
	}

	out := make([]models.DirectionalAction, 0, len(ws)/2+1)
	cur := openAction(ws, 0)
	for i := 1; i < len(ws); i++ {
		m := ws[i]
		if m.Direction == cur.Direction {
			cur.MonowaveCount++
			continue
		}
		switch {
		case m.RelativeAdvance < reversalRetracement:
			closeAction(&cur, ws, i-1)
			out = append(out, cur)
			cur = openAction(ws, i)
		case m.RelativeAdvance < reseedRetracement && cur.MonowaveCount == 1:
			cur = openAction(ws, i)
		}
	}
	closeAction(&cur, ws, len(ws)-1)
	return append(out, cur)
}
