package usecase

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"NeelyWave/internal/domain/models"
)

func TestSeriesFileName(t *testing.T) {
	got := SeriesFileName(models.ResolutionH1, models.TypicalHL, models.KindNeelyTrim)
	if got != "H1_HL_neelyTrim.csv" {
		t.Fatalf("got %q", got)
	}
}

func TestExportStore(t *testing.T) {
	uc := newUseCase(nil, nil, nil, AnalysisConfig{TypicalTypes: models.TypicalTypes()})
	res, err := uc.AnalyzeBars(context.Background(), "EURUSD", minuteBars(180))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	dir := filepath.Join(t.TempDir(), "out")
	paths, err := ExportStore(res.Store, dir)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(paths) == 0 {
		t.Fatalf("nothing written")
	}

	seen := map[string]bool{}
	for _, p := range paths {
		name := filepath.Base(p)
		seen[name] = true
	}
	for _, want := range []string{"M1_HLC_full.csv", "M1_HL_full.csv", "M1_HLC_rawMonowaves.csv", "W1_HL_neelyTrim.csv"} {
		if !seen[want] {
			t.Fatalf("missing %s in %v", want, paths)
		}
	}

	b, err := os.ReadFile(filepath.Join(dir, "M1_HLC_full.csv"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(string(b), "Date,Open,High,Low,Close,Typical\n") {
		t.Fatalf("unexpected header: %q", strings.SplitN(string(b), "\n", 2)[0])
	}
}
