package domain

import (
	"fmt"
	"slices"
)

// Frame is everything a renderer needs to draw one state of the map and chart.
type Frame struct {
	Variable     string            `json:"variable"`
	Period       Period            `json:"period,omitempty"`
	RegionColors map[string]string `json:"region_colors"`
	Legend       []LegendBucket    `json:"legend"`
	Trajectory   []Point           `json:"trajectory,omitempty"`
	Tracked      *Point            `json:"tracked,omitempty"`
}

// Render computes region colours, legend buckets and the pinned region's
// trajectory for one (variable, period) state. It has no side effects.
//
// An empty store yields an empty frame without error. Regions with no
// defined value get NoDataColor. A pinned region without a value at period
// has a trajectory but no tracked point.
func Render(store *Store, registry *Registry, regions []string, variableID string, period Period, pinned string) (Frame, error) {
	frame := Frame{Variable: variableID, Period: period, RegionColors: map[string]string{}}
	if store == nil || store.Empty() {
		return frame, nil
	}

	spec, err := registry.Resolve(variableID)
	if err != nil {
		return Frame{}, err
	}

	slice := store.ValuesAt(period, variableID)
	mode := spec.Mode.Fit(slice.Values())

	for _, region := range regions {
		v, ok := slice.Lookup(region)
		if !ok {
			frame.RegionColors[region] = NoDataColor
			continue
		}
		frame.RegionColors[region] = mode.ColorFor(&v)
	}
	frame.Legend = mode.Legend()

	if pinned == "" {
		return frame, nil
	}
	frame.Trajectory = store.SeriesFor(pinned, variableID)
	for _, p := range frame.Trajectory {
		if p.Period == period && p.Defined() {
			tracked := p
			frame.Tracked = &tracked
			break
		}
	}
	return frame, nil
}

// Renderer produces frames for a selection. Engine is the canonical
// implementation; decorators such as caches wrap it.
type Renderer interface {
	Render(variableID string, period Period, pinned string) (Frame, error)
}

// HoverInfo is the transient payload shown when pointing at a region.
type HoverInfo struct {
	Region   string   `json:"region"`
	Variable string   `json:"variable"`
	Unit     string   `json:"unit,omitempty"`
	Value    *float64 `json:"value"`
	Display  string   `json:"display"`
}

// Engine binds the immutable store, registry and region set.
type Engine struct {
	store    *Store
	registry *Registry
	regions  []string
	known    map[string]struct{}
}

// NewEngine creates an Engine. When regions is empty the store's regions
// are used, so the map still renders without a boundary collection.
func NewEngine(store *Store, registry *Registry, regions []string) *Engine {
	if len(regions) == 0 {
		regions = store.Regions()
	}
	rs := slices.Clone(regions)
	slices.Sort(rs)
	rs = slices.Compact(rs)

	known := make(map[string]struct{}, len(rs))
	for _, r := range rs {
		known[r] = struct{}{}
	}
	return &Engine{store: store, registry: registry, regions: rs, known: known}
}

func (e *Engine) Render(variableID string, period Period, pinned string) (Frame, error) {
	return Render(e.store, e.registry, e.regions, variableID, period, pinned)
}

// Inspect builds the hover payload for region. An absent value is reported
// as "N/A", not as an error.
func (e *Engine) Inspect(variableID string, period Period, region string) (HoverInfo, error) {
	spec, err := e.registry.Resolve(variableID)
	if err != nil {
		return HoverInfo{}, err
	}
	info := HoverInfo{Region: region, Variable: spec.ID, Unit: spec.Unit, Display: "N/A"}
	if v, ok := e.store.ValuesAt(period, variableID).Lookup(region); ok {
		info.Value = &v
		info.Display = fmt.Sprintf("%.2f", v)
	}
	return info, nil
}

// HasRegion reports whether name is part of the region set.
func (e *Engine) HasRegion(name string) bool {
	_, ok := e.known[name]
	return ok
}

// Regions returns the region set, sorted.
func (e *Engine) Regions() []string { return slices.Clone(e.regions) }

// Store returns the observation store.
func (e *Engine) Store() *Store { return e.store }

// Registry returns the variable registry.
func (e *Engine) Registry() *Registry { return e.registry }
