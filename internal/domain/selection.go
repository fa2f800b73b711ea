package domain

// Selection is the user's current view choice. It is a value: every
// transition returns a new Selection and leaves the receiver untouched.
type Selection struct {
	Variable  string `json:"variable"`
	TimeIndex int    `json:"time_index"`
	Pinned    string `json:"pinned,omitempty"`
}

// WithVariable returns a copy showing variable id.
func (s Selection) WithVariable(id string) Selection {
	s.Variable = id
	return s
}

// WithTimeIndex returns a copy positioned at time index i.
func (s Selection) WithTimeIndex(i int) Selection {
	s.TimeIndex = i
	return s
}

// TogglePin pins region, or un-pins it if it is already pinned.
func (s Selection) TogglePin(region string) Selection {
	if s.Pinned == region {
		s.Pinned = ""
		return s
	}
	s.Pinned = region
	return s
}

// HasPin reports whether a region is pinned.
func (s Selection) HasPin() bool { return s.Pinned != "" }
