// Command render computes a single frame offline and writes it as JSON, or
// writes the pinned region's trajectory chart.
//
// Usage:
//
//	go run ./cmd/render \
//	  -data data/modis_states.csv \
//	  -variable NDVI -period 2024-07 -pin Texas \
//	  -chart svg -out texas_ndvi.svg
//
// Without -chart the frame is written as JSON. Without -out output goes to
// stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/modis-choropleth/internal/adapter/chart"
	"github.com/couchcryptid/modis-choropleth/internal/app"
	"github.com/couchcryptid/modis-choropleth/internal/config"
	"github.com/couchcryptid/modis-choropleth/internal/domain"
)

type options struct {
	cfg      *config.Config
	variable string
	period   string
	index    int
	pin      string
	chart    string
	out      string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	opts := options{cfg: cfg}
	flag.StringVar(&cfg.DataPath, "data", cfg.DataPath, "observation CSV or SQLite file")
	flag.StringVar(&cfg.DataSource, "source", cfg.DataSource, "data source: csv or sqlite")
	flag.StringVar(&cfg.DataFormat, "format", cfg.DataFormat, "CSV layout: auto, long or wide")
	flag.StringVar(&cfg.SQLiteTable, "table", cfg.SQLiteTable, "SQLite table name")
	flag.StringVar(&cfg.VariablesFile, "variables", cfg.VariablesFile, "variable catalog YAML")
	flag.StringVar(&cfg.BoundariesPath, "boundaries", cfg.BoundariesPath, "GeoJSON boundary file")
	flag.StringVar(&opts.variable, "variable", cfg.DefaultVariable, "variable id (default: first registered)")
	flag.StringVar(&opts.period, "period", "", "period, e.g. 2024-07 (overrides -index)")
	flag.IntVar(&opts.index, "index", 0, "time index")
	flag.StringVar(&opts.pin, "pin", "", "region to pin")
	flag.StringVar(&opts.chart, "chart", "", "write the trajectory chart instead of JSON: svg or png")
	flag.StringVar(&opts.out, "out", "", "output file (default stdout)")
	flag.Parse()

	if code := run(context.Background(), opts, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

func run(ctx context.Context, opts options, stdout io.Writer) int {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ds, err := app.Load(ctx, opts.cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load:", err)
		return 1
	}

	variable := opts.variable
	if variable == "" {
		ids := ds.Engine.Registry().IDs()
		if len(ids) == 0 {
			fmt.Fprintln(os.Stderr, "dataset has no variables")
			return 1
		}
		variable = ids[0]
	}

	period, err := resolvePeriod(ds.Engine.Store().Periods(), opts.period, opts.index)
	if err != nil {
		fmt.Fprintln(os.Stderr, "period:", err)
		return 2
	}
	if opts.pin != "" && !ds.Engine.HasRegion(opts.pin) {
		fmt.Fprintf(os.Stderr, "pin: %v: %q\n", domain.ErrUnknownRegion, opts.pin)
		return 2
	}

	frame, err := ds.Engine.Render(variable, period, opts.pin)
	if err != nil {
		fmt.Fprintln(os.Stderr, "render:", err)
		return 2
	}

	w := stdout
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			fmt.Fprintln(os.Stderr, "output:", err)
			return 1
		}
		defer f.Close()
		w = f
	}

	if opts.chart == "" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(frame); err != nil {
			fmt.Fprintln(os.Stderr, "write:", err)
			return 1
		}
		return 0
	}

	format, err := chart.ParseFormat(opts.chart)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if opts.pin == "" {
		fmt.Fprintln(os.Stderr, "-chart requires -pin")
		return 2
	}
	labels := chart.Labels{Title: opts.pin + " " + variable, YAxis: variable}
	if err := chart.New(0, 0).Render(w, format, labels, frame.Trajectory, frame.Tracked); err != nil {
		fmt.Fprintln(os.Stderr, "chart:", err)
		return 1
	}
	return 0
}

// resolvePeriod picks the period named by s, or the one at index i.
func resolvePeriod(periods []domain.Period, s string, i int) (domain.Period, error) {
	axis := domain.NewTimeAxis(periods)
	if axis.Len() == 0 {
		return "", nil
	}
	if s == "" {
		return axis.At(i)
	}
	want, err := domain.ParsePeriod(s)
	if err != nil {
		return "", err
	}
	for _, p := range axis.AllPeriods() {
		if p == want {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: period %s not in dataset", domain.ErrIndexOutOfRange, want)
}
