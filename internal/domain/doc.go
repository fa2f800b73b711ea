// Package domain turns a time-indexed table of satellite-derived state
// observations into the visual state of a choropleth map and a line chart.
//
// # Data Source
//
// Observations come from monthly MODIS products aggregated per U.S. state:
// vegetation indices (NDVI, EVI), land-surface temperature (LST_Day,
// LST_Night) and evapotranspiration (ET). Each observation is a
// (region, period, variable, value) tuple. Values may be missing; a missing
// value is never coerced to zero.
//
// # Periods
//
// Periods are zero-padded strings so that string order is chronological:
//
//	"2024-01" … "2025-12"   datasets with year and month
//	"01" … "12"             month-only datasets
//
// See [ParsePeriod] for the spellings accepted on input.
//
// # Colour Modes
//
// Every variable has exactly one [ColorMode]:
//
//	Binned:      step function over ascending breakpoints, one palette colour
//	             per bucket (len(palette) == len(breakpoints)+1).
//	             v < b[0] → palette[0]; b[i] ≤ v < b[i+1] → palette[i+1];
//	             v ≥ b[last] → palette[last].
//	Continuous:  value clamped into [min, max] and mapped through an
//	             [Interpolator] (viridis, magma, greens).
//
// Continuous domains follow a [DomainPolicy]:
//
//	fixed   configured bounds
//	global  min/max over all periods of the variable (default). Colours are
//	        comparable across time steps.
//	slice   min/max of the visible slice. Maximizes contrast within one
//	        month but the same colour means different values in different
//	        months.
//
// Regions without a value always get [NoDataColor].
//
// # Rendering
//
// [Render] is a pure function of the store, registry, region set and
// selection. It is recomputed in full on every state change; frames are
// never patched incrementally.
package domain
