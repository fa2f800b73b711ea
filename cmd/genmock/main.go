// Command genmock writes a deterministic synthetic MODIS dataset for local
// runs and demos: monthly NDVI, EVI, LST_Day, LST_Night and ET per state,
// with a sprinkling of missing months. Values follow a seasonal cycle
// shifted by latitude so the map changes visibly over time.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -csv-out data/modis_states.csv \
//	  -sqlite-out data/modis_states.db \
//	  -start 2024 -years 2
package main

import (
	"context"
	"flag"
	"fmt"
	"hash/fnv"
	"log"
	"math"
	"os"

	"github.com/couchcryptid/modis-choropleth/internal/adapter/boundary"
	"github.com/couchcryptid/modis-choropleth/internal/domain"
	"github.com/couchcryptid/modis-choropleth/internal/ingest"
)

// state is a region name with an approximate centroid latitude.
type state struct {
	name string
	lat  float64
}

var defaultStates = []state{
	{"Alabama", 32.8}, {"Arizona", 34.3}, {"California", 37.2}, {"Colorado", 39.0},
	{"Florida", 28.6}, {"Georgia", 32.7}, {"Illinois", 40.0}, {"Iowa", 42.1},
	{"Kansas", 38.5}, {"Maine", 45.4}, {"Michigan", 44.3}, {"Minnesota", 46.3},
	{"Montana", 47.0}, {"Nebraska", 41.5}, {"Nevada", 39.3}, {"New Mexico", 34.4},
	{"New York", 42.9}, {"North Dakota", 47.5}, {"Ohio", 40.3}, {"Oklahoma", 35.6},
	{"Oregon", 43.9}, {"Pennsylvania", 40.9}, {"Texas", 31.5}, {"Utah", 39.3},
	{"Washington", 47.4}, {"Wyoming", 43.0},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvOut := flag.String("csv-out", "data/modis_states.csv", "output CSV path (empty to skip)")
	sqliteOut := flag.String("sqlite-out", "", "output SQLite path (empty to skip)")
	table := flag.String("table", "observations", "SQLite table name")
	boundaries := flag.String("boundaries", "", "GeoJSON file whose feature names replace the built-in state list")
	start := flag.Int("start", 2024, "first year")
	years := flag.Int("years", 2, "number of years")
	flag.Parse()

	states := defaultStates
	if *boundaries != "" {
		c, err := boundary.LoadFile(*boundaries, boundary.DefaultNameProperty)
		if err != nil {
			return err
		}
		states = statesFromBoundaries(c)
	}

	obs, err := generate(states, *start, *years)
	if err != nil {
		return err
	}

	if *csvOut != "" {
		f, err := os.Create(*csvOut)
		if err != nil {
			return err
		}
		if err := ingest.WriteCSV(f, obs); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", *csvOut, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("wrote %d observations to %s\n", len(obs), *csvOut)
	}
	if *sqliteOut != "" {
		if err := ingest.SaveSQLite(context.Background(), *sqliteOut, *table, obs); err != nil {
			return err
		}
		fmt.Printf("wrote %d observations to %s (table %s)\n", len(obs), *sqliteOut, *table)
	}
	return nil
}

// statesFromBoundaries uses each feature's bounding-box centre as latitude.
func statesFromBoundaries(c *boundary.Collection) []state {
	out := make([]state, 0, c.Len())
	for _, name := range c.Names() {
		g, _ := c.Geometry(name)
		out = append(out, state{name: name, lat: g.Bound().Center().Lat()})
	}
	return out
}

func generate(states []state, startYear, years int) ([]domain.Observation, error) {
	var out []domain.Observation
	for _, s := range states {
		for y := startYear; y < startYear+years; y++ {
			for m := 1; m <= 12; m++ {
				period, err := domain.PeriodOf(y, m)
				if err != nil {
					return nil, err
				}
				for _, v := range variables {
					o := domain.Observation{Region: s.name, Period: period, Variable: v.id}
					if !missing(s.name, period, v.id) {
						o.Value = domain.Float(round2(v.value(s.lat, m)))
					}
					out = append(out, o)
				}
			}
		}
	}
	return out, nil
}

type variable struct {
	id    string
	value func(lat float64, month int) float64
}

// season is 1 in mid-summer and -1 in mid-winter.
func season(month int) float64 {
	return math.Cos(2 * math.Pi * float64(month-7) / 12)
}

var variables = []variable{
	{"NDVI", func(lat float64, m int) float64 { return 0.45 + 0.25*season(m) - 0.004*(lat-40) }},
	{"EVI", func(lat float64, m int) float64 { return 0.3 + 0.18*season(m) - 0.003*(lat-40) }},
	{"LST_Day", func(lat float64, m int) float64 { return 22 + 14*season(m) - 0.8*(lat-35) }},
	{"LST_Night", func(lat float64, m int) float64 { return 8 + 11*season(m) - 0.7*(lat-35) }},
	{"ET", func(lat float64, m int) float64 { return math.Max(0, 60+50*season(m)-1.5*(lat-35)) }},
}

// missing drops roughly one value in forty, deterministically.
func missing(region string, period domain.Period, variable string) bool {
	h := fnv.New32a()
	fmt.Fprintf(h, "%s|%s|%s", region, period, variable)
	return h.Sum32()%40 == 0
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
