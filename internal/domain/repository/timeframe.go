package repository

import "NeelyWave/internal/domain/models"

// DefaultResolution is used when a request names no resolution.
func DefaultResolution() models.Resolution { return models.ResolutionM1 }

// NormalizeResolution converts a raw string to a valid resolution (or default).
func NormalizeResolution(s string) models.Resolution {
	if s == "" {
		return DefaultResolution()
	}
	r, err := models.ParseResolution(s)
	if err != nil {
		return DefaultResolution()
	}
	return r
}

// NormalizeTypicalType converts a raw string to a valid typical type (or default).
func NormalizeTypicalType(s string) models.TypicalType {
	t, err := models.ParseTypicalType(s)
	if err != nil {
		return models.DefaultTypicalType
	}
	return t
}

// NormalizeKind converts a raw string to a valid series kind (or full).
func NormalizeKind(s string) models.Kind {
	k, err := models.ParseKind(s)
	if err != nil {
		return models.KindFull
	}
	return k
}
