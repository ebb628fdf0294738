package repository

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"NeelyWave/internal/domain/models"
	domrepo "NeelyWave/internal/domain/repository"
	"NeelyWave/internal/services/waves"
	applogger "NeelyWave/pkg/logger"
	"NeelyWave/pkg/util"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVBarSource reads <dir>/<symbol>.csv files, one symbol per file.
type CSVBarSource struct {
	dir string
	l   *applogger.Logger
}

func NewCSVBarSource(dir string, l *applogger.Logger) *CSVBarSource {
	if l == nil {
		l = applogger.Nop()
	}
	return &CSVBarSource{dir: dir, l: l}
}

// GetBars parses the symbol's file and keeps bars inside [from, to]. A zero
// bound is open.
func (s *CSVBarSource) GetBars(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	if symbol == "" || filepath.Base(symbol) != symbol || strings.HasPrefix(symbol, ".") {
		return nil, fmt.Errorf("%w: %q", domrepo.ErrSymbolNotFound, symbol)
	}
	path := filepath.Join(s.dir, symbol+".csv")
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domrepo.ErrSymbolNotFound, symbol)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	start := time.Now()
	bars, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bars = filterRange(bars, from, to)
	s.l.Debug("csv bars loaded",
		applogger.String("symbol", symbol),
		applogger.Int("rows", len(bars)),
		applogger.Duration("duration_ms", time.Since(start)))
	return bars, nil
}

func filterRange(bars []models.Bar, from, to time.Time) []models.Bar {
	if from.IsZero() && to.IsZero() {
		return bars
	}
	out := bars[:0]
	for _, b := range bars {
		if !from.IsZero() && b.Date.Before(from) {
			continue
		}
		if !to.IsZero() && b.Date.After(to) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// ParseCSV decodes a bar table. UTF-8 and BOM-marked UTF-16 input are
// accepted; the delimiter is the first of tab, semicolon or comma found in the
// header line. Headers are matched after normalisation, so MetaTrader's
// "<DATE>\t<TIME>\t<OPEN>..." works as well as "Date,Open,...". A separate
// time column is joined to the date. Newest-first input is reversed.
func ParseCSV(r io.Reader) ([]models.Bar, error) {
	br := bufio.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	head, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(bytes.TrimSpace(head)) == 0 {
		return nil, waves.ErrEmptySeries
	}

	cr := csv.NewReader(br)
	cr.Comma = detectDelimiter(head)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := waves.CheckHeader(header); err != nil {
		return nil, err
	}
	cols := columnIndex(header)

	var bars []models.Bar
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", waves.ErrMalformedRow, line, err)
		}
		if blank(rec) {
			continue
		}
		b, err := cols.bar(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", waves.ErrMalformedRow, line, err)
		}
		bars = append(bars, b)
	}

	if len(bars) > 1 && bars[0].Date.After(bars[len(bars)-1].Date) {
		for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
			bars[i], bars[j] = bars[j], bars[i]
		}
	}
	return bars, nil
}

func detectDelimiter(head []byte) rune {
	line := head
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		line = head[:i]
	}
	for _, d := range []byte{'\t', ';', ','} {
		if bytes.IndexByte(line, d) >= 0 {
			return rune(d)
		}
	}
	return ','
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// columns holds the position of each known column, -1 when absent.
type columns struct {
	date, clock, open, high, low, close int
	tickVol, vol, spread                int
}

func columnIndex(header []string) columns {
	c := columns{-1, -1, -1, -1, -1, -1, -1, -1, -1}
	for i, h := range header {
		switch waves.NormalizeHeader(h) {
		case "date":
			c.date = i
		case "time":
			c.clock = i
		case "open":
			c.open = i
		case "high":
			c.high = i
		case "low":
			c.low = i
		case "close":
			c.close = i
		case "tickvol", "tickvolume":
			c.tickVol = i
		case "vol", "volume", "realvolume":
			c.vol = i
		case "spread":
			c.spread = i
		}
	}
	return c
}

func (c columns) bar(rec []string) (models.Bar, error) {
	var b models.Bar
	field := func(i int) string {
		if i < 0 || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	date, ok := util.JoinDateTime(field(c.date), field(c.clock))
	if !ok {
		return b, fmt.Errorf("bad date %q", strings.TrimSpace(field(c.date)+" "+field(c.clock)))
	}
	b.Date = date

	required := []struct {
		name string
		idx  int
		dst  *float64
	}{
		{"open", c.open, &b.Open},
		{"high", c.high, &b.High},
		{"low", c.low, &b.Low},
		{"close", c.close, &b.Close},
	}
	for _, f := range required {
		v, err := strconv.ParseFloat(field(f.idx), 64)
		if err != nil || !finite(v) {
			return b, fmt.Errorf("bad %s %q", f.name, field(f.idx))
		}
		*f.dst = v
	}

	optional := []struct {
		idx int
		dst *float64
	}{
		{c.tickVol, &b.TickVolume},
		{c.vol, &b.Volume},
		{c.spread, &b.Spread},
	}
	for _, f := range optional {
		if raw := field(f.idx); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || !finite(v) {
				return b, fmt.Errorf("bad value %q", raw)
			}
			*f.dst = v
		}
	}
	return b, nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
