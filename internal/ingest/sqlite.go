package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"regexp"

	"github.com/couchcryptid/modis-choropleth/internal/domain"
	_ "modernc.org/sqlite"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// LoadSQLite reads observations from a table with region, period, variable
// and value columns. A NULL value is an absent measurement.
func LoadSQLite(ctx context.Context, path, table string, opts Options) ([]domain.Observation, error) {
	if !identifierRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT region, period, variable, value FROM "`+table+`"`) //nolint:gosec // identifier validated above
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var out []domain.Observation
	for n := 1; rows.Next(); n++ {
		var (
			region, period, variable string
			value                    sql.NullFloat64
		)
		if err := rows.Scan(&region, &period, &variable, &value); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", n, err)
		}
		if region == "" || variable == "" {
			return nil, fmt.Errorf("row %d: empty region or variable", n)
		}
		p, err := domain.ParsePeriod(period)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n, err)
		}
		o := domain.Observation{Region: region, Period: p, Variable: variable}
		if value.Valid {
			if math.IsInf(value.Float64, 0) {
				return nil, fmt.Errorf("row %d: invalid number %v", n, value.Float64)
			}
			v := value.Float64
			o.Value = &v
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}

	return applyDuplicatePolicy(out, opts.Duplicates)
}

// SaveSQLite writes observations into table, creating it if needed. Absent
// values are stored as NULL.
func SaveSQLite(ctx context.Context, path, table string, observations []domain.Observation) error {
	if !identifierRe.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	//nolint:gosec // identifier validated above
	if _, err := tx.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS "`+table+`" (region TEXT NOT NULL, period TEXT NOT NULL, variable TEXT NOT NULL, value REAL)`); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO "`+table+`" (region, period, variable, value) VALUES (?, ?, ?, ?)`) //nolint:gosec // identifier validated above
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range observations {
		var value sql.NullFloat64
		if o.Value != nil {
			value = sql.NullFloat64{Float64: *o.Value, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, o.Region, string(o.Period), o.Variable, value); err != nil {
			return fmt.Errorf("insert %s/%s/%s: %w", o.Region, o.Period, o.Variable, err)
		}
	}
	return tx.Commit()
}
