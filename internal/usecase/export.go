package usecase

import (
	"fmt"
	"os"
	"path/filepath"

	"NeelyWave/internal/domain/models"
	"NeelyWave/internal/services/waves"
)

// SeriesFileName names the export of one stored series.
func SeriesFileName(res models.Resolution, typ models.TypicalType, kind models.Kind) string {
	return fmt.Sprintf("%s_%s_%s.csv", res, typ, kind)
}

// ExportStore writes every stored series of every available resolution into
// dir as CSV tables and returns the paths written, finest resolution first.
func ExportStore(store *waves.Store, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	var written []string
	for _, res := range store.AvailableResolutions() {
		for _, typ := range store.TypicalTypes(res) {
			for _, kind := range models.Kinds() {
				s, ok := store.Series(res, typ, kind)
				if !ok {
					continue
				}
				path := filepath.Join(dir, SeriesFileName(res, typ, kind))
				if err := writeSeriesFile(path, s); err != nil {
					return written, err
				}
				written = append(written, path)
			}
		}
	}
	return written, nil
}

func writeSeriesFile(path string, s *models.Series) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := waves.WriteCSV(f, s); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
