package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"NeelyWave/internal/domain/models"
	domrepo "NeelyWave/internal/domain/repository"
	pkgch "NeelyWave/pkg/clickhouse"
	applogger "NeelyWave/pkg/logger"
)

const barColumns = "ts, open, high, low, close, tick_volume, volume, spread"

// insertChunk bounds the rows of one multi-row INSERT.
const insertChunk = 2000

// CHBarSource reads finest-resolution candles from a ClickHouse table keyed
// by (symbol, ts).
type CHBarSource struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHBarSource(ch *pkgch.Client, table string, l *applogger.Logger) *CHBarSource {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHBarSource{db: ch.DB(), table: qualify(ch.Database(), table), l: l}
}

func qualify(database, table string) string {
	if database == "" || strings.Contains(table, ".") {
		return table
	}
	return database + "." + table
}

// CandleSchema returns the statements creating the candle table.
func CandleSchema(database, table string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            symbol LowCardinality(String),
            ts DateTime64(3, 'UTC'),
            open Float64,
            high Float64,
            low Float64,
            close Float64,
            tick_volume Float64,
            volume Float64,
            spread Float64
        ) ENGINE = ReplacingMergeTree
        ORDER BY (symbol, ts)`, qualify(database, table)),
	}
}

func selectQuery(table, symbol string, from, to time.Time) (string, []interface{}) {
	where := []string{"symbol = ?"}
	args := []interface{}{symbol}
	if !from.IsZero() {
		where = append(where, "ts >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		where = append(where, "ts <= ?")
		args = append(args, to.UTC())
	}
	q := fmt.Sprintf("SELECT %s FROM %s FINAL WHERE %s ORDER BY ts ASC",
		barColumns, table, strings.Join(where, " AND "))
	return q, args
}

// GetBars returns bars in [from, to], oldest first. A zero bound is open.
func (s *CHBarSource) GetBars(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	start := time.Now()
	q, args := selectQuery(s.table, symbol, from, to)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		s.l.Error("clickhouse get_bars query error",
			applogger.String("table", s.table),
			applogger.String("symbol", symbol),
			applogger.Error(err))
		return nil, fmt.Errorf("get bars: %w", err)
	}
	defer rows.Close()

	out := make([]models.Bar, 0, 1024)
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.TickVolume, &b.Volume, &b.Spread); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		b.Date = b.Date.UTC()
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", domrepo.ErrSymbolNotFound, symbol)
	}
	s.l.Debug("clickhouse get_bars ok",
		applogger.String("table", s.table),
		applogger.String("symbol", symbol),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)))
	return out, nil
}

// StoreBars inserts bars for symbol using multi-row VALUES statements.
func (s *CHBarSource) StoreBars(ctx context.Context, symbol string, bars []models.Bar) error {
	for start := 0; start < len(bars); start += insertChunk {
		end := start + insertChunk
		if end > len(bars) {
			end = len(bars)
		}
		q, args := insertQuery(s.table, symbol, bars[start:end])
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert bars %d-%d: %w", start, end, err)
		}
	}
	return nil
}

func insertQuery(table, symbol string, bars []models.Bar) (string, []interface{}) {
	values := make([]string, 0, len(bars))
	args := make([]interface{}, 0, len(bars)*9)
	for _, b := range bars {
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args, symbol, b.Date.UTC(), b.Open, b.High, b.Low, b.Close, b.TickVolume, b.Volume, b.Spread)
	}
	q := fmt.Sprintf("INSERT INTO %s (symbol, %s) VALUES %s", table, barColumns, strings.Join(values, ","))
	return q, args
}

// Health pings the database.
func (s *CHBarSource) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
