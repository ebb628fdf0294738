package waves

import (
	"time"

	"NeelyWave/internal/domain/models"
)

// entry holds everything derived for one resolution and typical type.
type entry struct {
	series  [models.NumKinds]*models.Series
	raw     []models.Monowave
	merged  []models.Monowave
	actions []models.DirectionalAction
}

// Store is the result of one pipeline run, indexed by resolution and typical
// type. A nil entry marks a resolution the input was too short to produce.
// Accessors hand out copies; the store itself is never mutated after Run.
type Store struct {
	finest  models.Resolution
	bars    int
	from    time.Time
	to      time.Time
	entries [models.NumResolutions][models.NumTypicalTypes]*entry
}

func (s *Store) entry(res models.Resolution, typ models.TypicalType) *entry {
	if s == nil || !res.Valid() || !typ.Valid() {
		return nil
	}
	return s.entries[res][typ]
}

// Finest is the resolution detected for the input.
func (s *Store) Finest() models.Resolution { return s.finest }

// InputBars is the number of bars the store was built from.
func (s *Store) InputBars() int { return s.bars }

// Series returns a copy of the kind series for res and typ. ok is false when
// the resolution is unavailable.
func (s *Store) Series(res models.Resolution, typ models.TypicalType, kind models.Kind) (*models.Series, bool) {
	e := s.entry(res, typ)
	if e == nil || !kind.Valid() || e.series[kind] == nil {
		return nil, false
	}
	return e.series[kind].Clone(), true
}

// Monowaves returns the raw or merged decomposition for res and typ.
func (s *Store) Monowaves(res models.Resolution, typ models.TypicalType, merged bool) ([]models.Monowave, bool) {
	e := s.entry(res, typ)
	if e == nil {
		return nil, false
	}
	src := e.raw
	if merged {
		src = e.merged
	}
	return append([]models.Monowave(nil), src...), true
}

// Actions returns the directional actions for res and typ.
func (s *Store) Actions(res models.Resolution, typ models.TypicalType) ([]models.DirectionalAction, bool) {
	e := s.entry(res, typ)
	if e == nil {
		return nil, false
	}
	return append([]models.DirectionalAction(nil), e.actions...), true
}

// AvailableResolutions lists the resolutions that hold data, finest first.
func (s *Store) AvailableResolutions() []models.Resolution {
	out := make([]models.Resolution, 0, models.NumResolutions)
	for _, res := range models.Resolutions() {
		if s.Available(res) {
			out = append(out, res)
		}
	}
	return out
}

// Available reports whether res holds data for at least one typical type.
func (s *Store) Available(res models.Resolution) bool {
	for _, typ := range models.TypicalTypes() {
		if s.entry(res, typ) != nil {
			return true
		}
	}
	return false
}

// TypicalTypes lists the typical types computed for res.
func (s *Store) TypicalTypes(res models.Resolution) []models.TypicalType {
	var out []models.TypicalType
	for _, typ := range models.TypicalTypes() {
		if s.entry(res, typ) != nil {
			out = append(out, typ)
		}
	}
	return out
}

// Summary condenses the store into the form published to consumers.
func (s *Store) Summary(symbol string) *models.WaveSummary {
	sum := &models.WaveSummary{
		Symbol:      symbol,
		Finest:      s.finest.String(),
		Bars:        s.bars,
		From:        s.from,
		To:          s.to,
		GeneratedAt: time.Now().UTC(),
	}
	for _, res := range s.AvailableResolutions() {
		sum.Available = append(sum.Available, res.String())
		for _, typ := range models.TypicalTypes() {
			e := s.entry(res, typ)
			if e == nil {
				continue
			}
			se := models.SummaryEntry{
				Resolution:         res.String(),
				Typical:            typ.String(),
				Bars:               e.series[models.KindFull].Len(),
				RawMonowaves:       len(e.raw),
				MergedMonowaves:    len(e.merged),
				DirectionalActions: len(e.actions),
				Actions:            make([]models.ActionPoint, 0, len(e.actions)),
			}
			for _, a := range e.actions {
				se.Actions = append(se.Actions, models.ActionPoint{
					Direction:  a.Direction.String(),
					TimeStart:  a.TimeStart,
					TimeEnd:    a.TimeEnd,
					ValueStart: a.ValueStart,
					ValueEnd:   a.ValueEnd,
					Monowaves:  a.MonowaveCount,
				})
			}
			sum.Entries = append(sum.Entries, se)
		}
	}
	return sum
}
