package ingest

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/couchcryptid/modis-choropleth/internal/domain"
)

// WriteCSV writes observations as a long table with region, period,
// variable and value columns. Absent values are written as empty cells.
func WriteCSV(w io.Writer, observations []domain.Observation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"region", "period", "variable", "value"}); err != nil {
		return err
	}
	for _, o := range observations {
		value := ""
		if o.Value != nil {
			value = strconv.FormatFloat(*o.Value, 'f', -1, 64)
		}
		if err := cw.Write([]string{o.Region, string(o.Period), o.Variable, value}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
