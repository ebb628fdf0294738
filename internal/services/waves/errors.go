package waves

import "errors"

// Ingest rejections. Any of these aborts the whole pipeline for the input.
var (
	ErrInvalidHeader            = errors.New("waves: input lacks a required column")
	ErrEmptySeries              = errors.New("waves: empty series")
	ErrInsufficientData         = errors.New("waves: at least two bars are required")
	ErrUnknownResolutionSpacing = errors.New("waves: bar spacing matches no resolution")
	ErrUnsortedSeries           = errors.New("waves: timestamps are not strictly increasing")
	ErrMalformedRow             = errors.New("waves: row has an unparsable value")
	ErrNonFiniteValue           = errors.New("waves: price is NaN or infinite")
)

// Programming errors. They never reach a user as a validation failure.
var (
	ErrUnsupportedTypicalType = errors.New("waves: unsupported typical type")
	ErrInvariant              = errors.New("waves: pipeline invariant violated")
	ErrPipelineOrder          = errors.New("waves: pipeline stage called out of order")
)

// IsRejection reports whether err is an ingest rejection the caller can fix
// by supplying different input.
func IsRejection(err error) bool {
	return errors.Is(err, ErrInvalidHeader) ||
		errors.Is(err, ErrEmptySeries) ||
		errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrUnknownResolutionSpacing) ||
		errors.Is(err, ErrUnsortedSeries) ||
		errors.Is(err, ErrMalformedRow) ||
		errors.Is(err, ErrNonFiniteValue)
}
