// Command wavecount segments one CSV export into monowaves at every
// resolution and writes each stored series as <resolution>_<typical>_<kind>.csv.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"NeelyWave/internal/domain/models"
	"NeelyWave/internal/repository"
	"NeelyWave/internal/usecase"
	pkgch "NeelyWave/pkg/clickhouse"
	"NeelyWave/pkg/config"
	"NeelyWave/pkg/logger"
)

func main() {
	in := flag.String("in", "", "input CSV file (MetaTrader or Date,Open,High,Low,Close)")
	out := flag.String("out", "out", "output directory")
	symbol := flag.String("symbol", "", "symbol name, defaults to the input file name")
	typical := flag.String("typical", "HLC,HL", "comma separated typical types")
	store := flag.Bool("store", false, "also load the bars into ClickHouse")
	configPath := flag.String("config", "config/config.yaml", "config file used by -store")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	l, err := logger.New(&logger.Config{Level: *level, Format: "console", Output: "stderr"})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *symbol == "" {
		*symbol = strings.TrimSuffix(filepath.Base(*in), filepath.Ext(*in))
	}

	if err := run(l, *in, *out, *symbol, *typical, *store, *configPath); err != nil {
		l.Error("wavecount failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(l *logger.Logger, in, out, symbol, typical string, store bool, configPath string) error {
	types, err := parseTypicalTypes(typical)
	if err != nil {
		return err
	}

	f, err := os.Open(in)
	if err != nil {
		return err
	}
	bars, err := repository.ParseCSV(f)
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}
	l.Info("bars loaded", logger.String("file", in), logger.Int("rows", len(bars)))

	ctx := context.Background()
	if store {
		if err := storeBars(ctx, l, configPath, symbol, bars); err != nil {
			return err
		}
	}

	uc := usecase.NewWaveAnalysisUseCase(nil, nil, nil, l, usecase.AnalysisConfig{TypicalTypes: types, Parallel: true})
	res, err := uc.AnalyzeBars(ctx, symbol, bars)
	if err != nil {
		return err
	}

	paths, err := usecase.ExportStore(res.Store, out)
	if err != nil {
		return err
	}
	l.Info("series exported", logger.String("dir", out), logger.Int("files", len(paths)))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res.Summary)
}

func parseTypicalTypes(s string) ([]models.TypicalType, error) {
	var out []models.TypicalType
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t, err := models.ParseTypicalType(part)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no typical types given")
	}
	return out, nil
}

func storeBars(ctx context.Context, l *logger.Logger, configPath, symbol string, bars []models.Bar) error {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return err
	}
	ch, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return fmt.Errorf("clickhouse client: %w", err)
	}
	defer ch.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()
	if err := ch.InitSchema(ctx, repository.CandleSchema(cfg.ClickHouse.Database, cfg.ClickHouse.Table)); err != nil {
		return err
	}
	src := repository.NewCHBarSource(ch, cfg.ClickHouse.Table, l)
	if err := src.StoreBars(ctx, symbol, bars); err != nil {
		return err
	}
	l.Info("bars stored", logger.String("symbol", symbol), logger.Int("rows", len(bars)))
	return nil
}
