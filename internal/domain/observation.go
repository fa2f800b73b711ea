package domain

// Observation is one measured value for a region, period and variable.
// A nil Value means the source row carried no measurement.
type Observation struct {
	Region   string   `json:"region"`
	Period   Period   `json:"period"`
	Variable string   `json:"variable"`
	Value    *float64 `json:"value"`
}

// Point is one entry of a region's time series. Value is nil for a gap.
type Point struct {
	Period Period   `json:"period"`
	Value  *float64 `json:"value"`
}

// Defined reports whether the point carries a measurement.
func (p Point) Defined() bool { return p.Value != nil }

// Float returns a pointer to v, for building observations in code.
func Float(v float64) *float64 { return &v }
