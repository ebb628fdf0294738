package waves

import (
	"fmt"

	"NeelyWave/internal/domain/models"
)

// TypicalPrice applies the typ formula to one bar.
func TypicalPrice(typ models.TypicalType, high, low, close float64) (float64, error) {
	switch typ {
	case models.TypicalHLC:
		return (high + low + close) / 3.0, nil
	case models.TypicalHL:
		return (high + low) / 2.0, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedTypicalType, typ)
	}
}

// CalculateTypical fills s.Typical using typ and records typ on the series.
// Nothing else in s is touched, so it can be re-run safely.
func CalculateTypical(s *models.Series, typ models.TypicalType) error {
	if !typ.Valid() {
		return fmt.Errorf("%w: %s", ErrUnsupportedTypicalType, typ)
	}
	n := s.Len()
	if cap(s.Typical) < n {
		s.Typical = make([]float64, n)
	}
	s.Typical = s.Typical[:n]
	for i := 0; i < n; i++ {
		// typ was validated above
		s.Typical[i], _ = TypicalPrice(typ, s.High[i], s.Low[i], s.Close[i])
	}
	s.TypicalType = typ
	return nil
}
