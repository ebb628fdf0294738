package waves

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"NeelyWave/internal/domain/models"
)

// RequiredHeaders are the normalised column names every input must carry.
var RequiredHeaders = []string{"date", "open", "high", "low", "close"}

// NormalizeHeader lowercases h and drops every character that is not a letter
// or a digit, so "<DATE>", "Date " and "date" compare equal.
func NormalizeHeader(h string) string {
	var b strings.Builder
	b.Grow(len(h))
	for _, r := range h {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// CheckHeader verifies that every required column is present.
func CheckHeader(headers []string) error {
	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		seen[NormalizeHeader(h)] = true
	}
	var missing []string
	for _, req := range RequiredHeaders {
		if !seen[req] {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidHeader, strings.Join(missing, ", "))
	}
	return nil
}

// DetectResolution derives the finest resolution from the spacing of the
// first two bars.
func DetectResolution(bars []models.Bar) (models.Resolution, error) {
	if len(bars) == 0 {
		return 0, ErrEmptySeries
	}
	if len(bars) < 2 {
		return 0, ErrInsufficientData
	}
	spacing := bars[1].Date.Sub(bars[0].Date)
	if spacing <= 0 {
		return 0, fmt.Errorf("%w: first two bars at %s and %s", ErrUnsortedSeries,
			bars[0].Date.Format(time.RFC3339), bars[1].Date.Format(time.RFC3339))
	}
	res, ok := models.ResolutionForSpacing(spacing)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownResolutionSpacing, spacing)
	}
	return res, nil
}

// Ingest validates bars, which must be sorted oldest first, and runs the whole
// pipeline on them. Any error leaves no partial result behind.
func Ingest(ctx context.Context, bars []models.Bar, opts ...Option) (*Store, error) {
	res, err := DetectResolution(bars)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(bars); i++ {
		if !bars[i].Date.After(bars[i-1].Date) {
			return nil, fmt.Errorf("%w: bar %d at %s", ErrUnsortedSeries, i, bars[i].Date.Format(time.RFC3339))
		}
	}
	for i, b := range bars {
		if name, ok := nonFinitePrice(b); ok {
			return nil, fmt.Errorf("%w: bar %d %s", ErrNonFiniteValue, i, name)
		}
	}

	finest := models.SeriesFromBars(res, models.DefaultTypicalType, bars)
	return NewOrchestrator(opts...).Run(ctx, finest)
}

func nonFinitePrice(b models.Bar) (string, bool) {
	for _, f := range [...]struct {
		name string
		v    float64
	}{{"open", b.Open}, {"high", b.High}, {"low", b.Low}, {"close", b.Close}} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return f.name, true
		}
	}
	return "", false
}
