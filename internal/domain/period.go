package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Period is a normalized, zero-padded time bucket. "YYYY-MM" for datasets
// that carry a year, "MM" for month-only datasets. Because every component is
// zero-padded, string order equals chronological order.
type Period string

// PeriodOf builds a Period from a year and month. A zero year produces a
// month-only period.
func PeriodOf(year, month int) (Period, error) {
	if month < 1 || month > 12 {
		return "", fmt.Errorf("month %d out of range 1-12", month)
	}
	if year == 0 {
		return Period(fmt.Sprintf("%02d", month)), nil
	}
	if year < 0 || year > 9999 {
		return "", fmt.Errorf("year %d out of range", year)
	}
	return Period(fmt.Sprintf("%04d-%02d", year, month)), nil
}

// ParsePeriod normalizes the period spellings seen in source data:
// "2024-01", "2024-1", "2024/01", "202401" and a bare month "1" or "01".
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty period")
	}

	if sep := strings.IndexAny(s, "-/"); sep >= 0 {
		year, errY := strconv.Atoi(s[:sep])
		month, errM := strconv.Atoi(s[sep+1:])
		if errY != nil || errM != nil || year == 0 {
			return "", fmt.Errorf("invalid period %q", s)
		}
		return PeriodOf(year, month)
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return "", fmt.Errorf("invalid period %q", s)
	}
	if len(s) == 6 {
		return PeriodOf(n/100, n%100)
	}
	if len(s) <= 2 {
		return PeriodOf(0, n)
	}
	return "", fmt.Errorf("invalid period %q", s)
}

func (p Period) String() string { return string(p) }
