package domain

import (
	"math"
	"slices"
	"sort"
)

type sliceKey struct {
	period   Period
	variable string
}

type seriesKey struct {
	region   string
	variable string
}

// Slice maps region names to the defined values of one (period, variable) pair.
type Slice map[string]float64

// Lookup returns the value for region and whether it is present. A missing
// region is distinct from a legitimate zero.
func (s Slice) Lookup(region string) (float64, bool) {
	v, ok := s[region]
	return v, ok
}

// Values returns the slice's defined values ordered by region name.
func (s Slice) Values() []float64 {
	regions := make([]string, 0, len(s))
	for r := range s {
		regions = append(regions, r)
	}
	sort.Strings(regions)
	out := make([]float64, len(regions))
	for i, r := range regions {
		out[i] = s[r]
	}
	return out
}

// Store indexes observations by (period, variable) and by (region, variable).
// It is built once and never mutated, so concurrent readers need no locking.
type Store struct {
	slices     map[sliceKey]Slice
	series     map[seriesKey]map[Period]*float64
	periods    []Period
	variables  []string
	regions    []string
	count      int
	duplicates int
}

// NewStore builds a Store from a flat observation list. When the same
// (region, period, variable) triple appears more than once the last row wins
// and the collision is counted in Duplicates.
func NewStore(observations []Observation) *Store {
	s := &Store{
		slices: make(map[sliceKey]Slice),
		series: make(map[seriesKey]map[Period]*float64),
	}

	periods := make(map[Period]struct{})
	variables := make(map[string]struct{})
	regions := make(map[string]struct{})

	for _, o := range observations {
		periods[o.Period] = struct{}{}
		variables[o.Variable] = struct{}{}
		regions[o.Region] = struct{}{}

		sk := seriesKey{region: o.Region, variable: o.Variable}
		byPeriod, ok := s.series[sk]
		if !ok {
			byPeriod = make(map[Period]*float64)
			s.series[sk] = byPeriod
		}
		if _, dup := byPeriod[o.Period]; dup {
			s.duplicates++
		} else {
			s.count++
		}

		var value *float64
		if o.Value != nil && !math.IsNaN(*o.Value) {
			v := *o.Value
			value = &v
		}
		byPeriod[o.Period] = value

		key := sliceKey{period: o.Period, variable: o.Variable}
		slice, ok := s.slices[key]
		if !ok {
			slice = make(Slice)
			s.slices[key] = slice
		}
		if value != nil {
			slice[o.Region] = *value
		} else {
			delete(slice, o.Region)
		}
	}

	s.periods = sortedKeys(periods)
	s.variables = sortedKeys(variables)
	s.regions = sortedKeys(regions)
	return s
}

// ValuesAt returns the region→value slice for a period and variable. The
// result is never nil; absent regions simply have no entry.
func (s *Store) ValuesAt(period Period, variable string) Slice {
	if slice, ok := s.slices[sliceKey{period: period, variable: variable}]; ok {
		return slice
	}
	return Slice{}
}

// SeriesFor returns one point per period of the store, ascending. Periods
// without a defined value for the region are gaps.
func (s *Store) SeriesFor(region, variable string) []Point {
	byPeriod := s.series[seriesKey{region: region, variable: variable}]
	out := make([]Point, len(s.periods))
	for i, p := range s.periods {
		out[i] = Point{Period: p}
		if v := byPeriod[p]; v != nil {
			val := *v
			out[i].Value = &val
		}
	}
	return out
}

// Range returns the minimum and maximum defined value of a variable across
// every period. ok is false when the variable has no defined values.
func (s *Store) Range(variable string) (lo, hi float64, ok bool) {
	for key, slice := range s.slices {
		if key.variable != variable {
			continue
		}
		for _, v := range slice {
			if !ok {
				lo, hi, ok = v, v, true
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	return lo, hi, ok
}

// Periods returns every distinct period, ascending.
func (s *Store) Periods() []Period { return slices.Clone(s.periods) }

// Variables returns every distinct variable id, sorted.
func (s *Store) Variables() []string { return slices.Clone(s.variables) }

// Regions returns every distinct region name, sorted.
func (s *Store) Regions() []string { return slices.Clone(s.regions) }

// Len returns the number of unique (region, period, variable) triples.
func (s *Store) Len() int { return s.count }

// Empty reports whether the store holds no observations.
func (s *Store) Empty() bool { return s.count == 0 }

// Duplicates returns how many rows overwrote an earlier row with the same key.
func (s *Store) Duplicates() int { return s.duplicates }

func sortedKeys[K ~string](m map[K]struct{}) []K {
	out := make([]K, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
