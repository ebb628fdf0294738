package waves

import "NeelyWave/internal/domain/models"

// MinimumIndex returns the index of the lowest typical value; ties resolve to
// the first occurrence. It returns -1 for an empty series.
func MinimumIndex(s *models.Series) int {
	if s.Len() == 0 {
		return -1
	}
	idx := 0
	for i := 1; i < len(s.Typical); i++ {
		if s.Typical[i] < s.Typical[idx] {
			idx = i
		}
	}
	return idx
}

// TrimToMinimum drops every bar before the global typical-price minimum so the
// series starts at its lowest point, and returns how many bars were removed.
// Running it twice removes nothing the second time.
func TrimToMinimum(s *models.Series) int {
	cut := MinimumIndex(s)
	if cut <= 0 {
		return 0
	}
	s.DropHead(cut)
	return cut
}
