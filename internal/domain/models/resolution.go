package models

import (
	"fmt"
	"time"
)

// Resolution is a bar-duration tier, ordered from finest to coarsest.
type Resolution int

const (
	ResolutionM1 Resolution = iota
	ResolutionH1
	ResolutionD1
	ResolutionW1

	NumResolutions = int(ResolutionW1) + 1
)

var resolutionCodes = [NumResolutions]string{"M1", "H1", "D1", "W1"}

var resolutionDurations = [NumResolutions]time.Duration{
	time.Minute,
	time.Hour,
	24 * time.Hour,
	7 * 24 * time.Hour,
}

// Resolutions returns every resolution from finest to coarsest.
func Resolutions() []Resolution {
	out := make([]Resolution, NumResolutions)
	for i := range out {
		out[i] = Resolution(i)
	}
	return out
}

// Valid reports whether r belongs to the enumeration.
func (r Resolution) Valid() bool { return r >= 0 && int(r) < NumResolutions }

// Duration is the reduction window of r.
func (r Resolution) Duration() time.Duration {
	if !r.Valid() {
		return 0
	}
	return resolutionDurations[r]
}

func (r Resolution) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Resolution(%d)", int(r))
	}
	return resolutionCodes[r]
}

// Coarser returns the resolutions strictly coarser than r, finest first.
func (r Resolution) Coarser() []Resolution {
	if !r.Valid() {
		return nil
	}
	out := make([]Resolution, 0, NumResolutions-int(r)-1)
	for c := r + 1; int(c) < NumResolutions; c++ {
		out = append(out, c)
	}
	return out
}

// ParseResolution accepts the short codes M1, H1, D1, W1.
func ParseResolution(s string) (Resolution, error) {
	for i, code := range resolutionCodes {
		if code == s {
			return Resolution(i), nil
		}
	}
	return 0, fmt.Errorf("unknown resolution %q", s)
}

// ResolutionForSpacing maps the spacing between two consecutive bars to a
// resolution. Only exact matches are accepted.
func ResolutionForSpacing(d time.Duration) (Resolution, bool) {
	for i, dur := range resolutionDurations {
		if dur == d {
			return Resolution(i), true
		}
	}
	return 0, false
}

// TypicalType selects the formula used to derive the typical price.
type TypicalType int

const (
	TypicalHLC TypicalType = iota // (High + Low + Close) / 3
	TypicalHL                     // (High + Low) / 2

	NumTypicalTypes = int(TypicalHL) + 1
)

// DefaultTypicalType is the type the reducer works on before copying.
const DefaultTypicalType = TypicalHLC

var typicalCodes = [NumTypicalTypes]string{"HLC", "HL"}

// TypicalTypes returns every supported typical-price type.
func TypicalTypes() []TypicalType {
	out := make([]TypicalType, NumTypicalTypes)
	for i := range out {
		out[i] = TypicalType(i)
	}
	return out
}

func (t TypicalType) Valid() bool { return t >= 0 && int(t) < NumTypicalTypes }

func (t TypicalType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("TypicalType(%d)", int(t))
	}
	return typicalCodes[t]
}

// ParseTypicalType accepts HLC or HL.
func ParseTypicalType(s string) (TypicalType, error) {
	for i, code := range typicalCodes {
		if code == s {
			return TypicalType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown typical type %q", s)
}

// Kind tags the derived series stored per resolution and typical type.
type Kind int

const (
	KindFull            Kind = iota // raw OHLC + typical
	KindRawMonowaves                // monowaves before the rule of neutrality
	KindMergedMonowaves             // monowaves bounded by directional actions
	KindSimpleTrim                  // one bar per raw monowave edge
	KindNeelyTrim                   // one bar per merged monowave edge

	NumKinds = int(KindNeelyTrim) + 1
)

var kindCodes = [NumKinds]string{"full", "rawMonowaves", "mergedMonowaves", "simpleTrim", "neelyTrim"}

func Kinds() []Kind {
	out := make([]Kind, NumKinds)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

func (k Kind) Valid() bool { return k >= 0 && int(k) < NumKinds }

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindCodes[k]
}

// ParseKind accepts the lower camel case kind names.
func ParseKind(s string) (Kind, error) {
	for i, code := range kindCodes {
		if code == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown series kind %q", s)
}
