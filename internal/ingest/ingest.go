// Package ingest loads observation tables and validates them into
// domain.Observation records. Malformed input fails the whole load; nothing
// half-parsed reaches the domain.
package ingest

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/couchcryptid/modis-choropleth/internal/domain"
)

// Format selects the table layout.
type Format string

const (
	// FormatAuto picks long when both a variable and a value column exist.
	FormatAuto Format = "auto"
	// FormatLong has one row per region, period and variable.
	FormatLong Format = "long"
	// FormatWide has one row per region and period, one column per variable.
	FormatWide Format = "wide"
)

// DuplicatePolicy decides what happens when a (region, period, variable)
// triple occurs more than once.
type DuplicatePolicy string

const (
	// DuplicatesLast keeps the last row.
	DuplicatesLast DuplicatePolicy = "last"
	// DuplicatesReject fails the load.
	DuplicatesReject DuplicatePolicy = "reject"
)

// ErrDuplicate is returned under DuplicatesReject.
var ErrDuplicate = errors.New("duplicate observation")

// Options controls parsing.
type Options struct {
	Format     Format
	Duplicates DuplicatePolicy
	// IgnoreColumns are skipped in wide format, e.g. FIPS codes.
	IgnoreColumns []string
}

// ParseFormat validates a format name. Empty means auto.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatLong:
		return FormatLong, nil
	case FormatWide:
		return FormatWide, nil
	default:
		return "", fmt.Errorf("unknown data format %q", s)
	}
}

// ParseDuplicatePolicy validates a policy name. Empty means last.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(strings.ToLower(s)) {
	case "", DuplicatesLast:
		return DuplicatesLast, nil
	case DuplicatesReject:
		return DuplicatesReject, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q", s)
	}
}

// absentTokens are cell spellings that mean "no measurement".
var absentTokens = map[string]bool{"": true, "na": true, "n/a": true, "null": true, "nan": true, "none": true}

// parseValue returns nil for an absent cell and an error for a malformed one.
func parseValue(cell string) (*float64, error) {
	cell = strings.TrimSpace(cell)
	if absentTokens[strings.ToLower(cell)] {
		return nil, nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsInf(v, 0) {
		return nil, fmt.Errorf("invalid number %q", cell)
	}
	return &v, nil
}

type obsKey struct {
	region   string
	period   domain.Period
	variable string
}

// applyDuplicatePolicy returns the observations unchanged under
// DuplicatesLast (the store resolves collisions) and fails on the first
// collision under DuplicatesReject.
func applyDuplicatePolicy(obs []domain.Observation, policy DuplicatePolicy) ([]domain.Observation, error) {
	if policy != DuplicatesReject {
		return obs, nil
	}
	seen := make(map[obsKey]struct{}, len(obs))
	for _, o := range obs {
		k := obsKey{region: o.Region, period: o.Period, variable: o.Variable}
		if _, dup := seen[k]; dup {
			return nil, fmt.Errorf("%w: region %q period %s variable %q", ErrDuplicate, o.Region, o.Period, o.Variable)
		}
		seen[k] = struct{}{}
	}
	return obs, nil
}
