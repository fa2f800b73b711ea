package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/modis-choropleth/internal/domain"
)

var (
	regionAliases = []string{"region", "state", "state_name", "name"}
	periodAliases = []string{"period", "time", "date", "year_month"}
)

// header resolves column positions by case-insensitive name.
type header struct {
	names []string
	index map[string]int
}

func newHeader(names []string) header {
	h := header{names: names, index: make(map[string]int, len(names))}
	for i, n := range names {
		n = strings.TrimSpace(n)
		if i == 0 {
			n = strings.TrimPrefix(n, "\ufeff")
		}
		h.names[i] = n
		key := strings.ToLower(n)
		if _, dup := h.index[key]; !dup {
			h.index[key] = i
		}
	}
	return h
}

func (h header) find(aliases ...string) (int, bool) {
	for _, a := range aliases {
		if i, ok := h.index[a]; ok {
			return i, true
		}
	}
	return -1, false
}

// periodReader extracts the period of a row: from a period column, from
// year and month columns, or from a month column alone.
type periodReader struct {
	period, year, month int
}

func newPeriodReader(h header) (periodReader, []int, error) {
	pr := periodReader{period: -1, year: -1, month: -1}
	if i, ok := h.find(periodAliases...); ok {
		pr.period = i
		keys := []int{i}
		// Year and month beside a period column are redundant keys, not
		// variables.
		for _, name := range []string{"year", "month"} {
			if j, ok := h.find(name); ok {
				keys = append(keys, j)
			}
		}
		return pr, keys, nil
	}
	month, hasMonth := h.find("month")
	if !hasMonth {
		return pr, nil, errors.New("missing period column (period, time, date, or year/month)")
	}
	pr.month = month
	keys := []int{month}
	if year, ok := h.find("year"); ok {
		pr.year = year
		keys = append(keys, year)
	}
	return pr, keys, nil
}

func (pr periodReader) read(row []string) (domain.Period, error) {
	if pr.period >= 0 {
		return domain.ParsePeriod(row[pr.period])
	}
	month, err := strconv.Atoi(strings.TrimSpace(row[pr.month]))
	if err != nil {
		return "", fmt.Errorf("invalid month %q", row[pr.month])
	}
	year := 0
	if pr.year >= 0 {
		year, err = strconv.Atoi(strings.TrimSpace(row[pr.year]))
		if err != nil {
			return "", fmt.Errorf("invalid year %q", row[pr.year])
		}
	}
	return domain.PeriodOf(year, month)
}

// LoadCSV opens path and parses it with ReadCSV.
func LoadCSV(path string, opts Options) ([]domain.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, opts)
}

// ReadCSV parses a long or wide observation table. Row numbers in errors
// are 1-based and count the header.
func ReadCSV(r io.Reader, opts Options) ([]domain.Observation, error) {
	cr := csv.NewReader(r)

	names, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	h := newHeader(names)

	regionCol, ok := h.find(regionAliases...)
	if !ok {
		return nil, errors.New("missing region column (region, state, or name)")
	}
	periods, periodCols, err := newPeriodReader(h)
	if err != nil {
		return nil, err
	}

	format := opts.Format
	varCol, hasVar := h.find("variable")
	valCol, hasVal := h.find("value")
	if format == "" || format == FormatAuto {
		format = FormatWide
		if hasVar && hasVal {
			format = FormatLong
		}
	}

	var rowFn func(region string, period domain.Period, row []string) ([]domain.Observation, error)
	switch format {
	case FormatLong:
		if !hasVar || !hasVal {
			return nil, errors.New("long format needs variable and value columns")
		}
		rowFn = func(region string, period domain.Period, row []string) ([]domain.Observation, error) {
			variable := strings.TrimSpace(row[varCol])
			if variable == "" {
				return nil, errors.New("empty variable")
			}
			v, err := parseValue(row[valCol])
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", h.names[valCol], err)
			}
			return []domain.Observation{{Region: region, Period: period, Variable: variable, Value: v}}, nil
		}
	case FormatWide:
		cols := wideColumns(h, append(periodCols, regionCol), opts.IgnoreColumns)
		if len(cols) == 0 {
			return nil, errors.New("wide format has no variable columns")
		}
		rowFn = func(region string, period domain.Period, row []string) ([]domain.Observation, error) {
			out := make([]domain.Observation, 0, len(cols))
			for _, c := range cols {
				v, err := parseValue(row[c])
				if err != nil {
					return nil, fmt.Errorf("column %q: %w", h.names[c], err)
				}
				out = append(out, domain.Observation{Region: region, Period: period, Variable: h.names[c], Value: v})
			}
			return out, nil
		}
	default:
		return nil, fmt.Errorf("unknown data format %q", format)
	}

	var out []domain.Observation
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}

		region := strings.TrimSpace(row[regionCol])
		if region == "" {
			return nil, fmt.Errorf("row %d: empty region", line)
		}
		period, err := periods.read(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		recs, err := rowFn(region, period, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		out = append(out, recs...)
	}

	return applyDuplicatePolicy(out, opts.Duplicates)
}

func wideColumns(h header, keys []int, ignore []string) []int {
	skip := make(map[int]bool, len(keys))
	for _, k := range keys {
		skip[k] = true
	}
	for _, name := range ignore {
		if i, ok := h.index[strings.ToLower(name)]; ok {
			skip[i] = true
		}
	}
	var cols []int
	for i, n := range h.names {
		if skip[i] || n == "" {
			continue
		}
		cols = append(cols, i)
	}
	return cols
}
