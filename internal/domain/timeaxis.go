package domain

import (
	"fmt"
	"slices"
)

// TimeAxis is the ordered, deduplicated list of periods plus a cursor.
// It is owned by a single goroutine; it does no locking.
type TimeAxis struct {
	periods []Period
	index   int
}

// NewTimeAxis sorts and deduplicates periods. The cursor starts at 0.
func NewTimeAxis(periods []Period) *TimeAxis {
	ps := slices.Clone(periods)
	slices.Sort(ps)
	return &TimeAxis{periods: slices.Compact(ps)}
}

// AllPeriods returns the periods in ascending order.
func (a *TimeAxis) AllPeriods() []Period { return slices.Clone(a.periods) }

// Len returns the number of periods.
func (a *TimeAxis) Len() int { return len(a.periods) }

// Index returns the cursor position.
func (a *TimeAxis) Index() int { return a.index }

// Advance moves the cursor one step, wrapping to 0 past the last period,
// and returns the new index. It is a no-op on an empty axis.
func (a *TimeAxis) Advance() int {
	if len(a.periods) == 0 {
		return 0
	}
	a.index = (a.index + 1) % len(a.periods)
	return a.index
}

// SetIndex moves the cursor to i.
func (a *TimeAxis) SetIndex(i int) error {
	if i < 0 || i >= len(a.periods) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(a.periods))
	}
	a.index = i
	return nil
}

// Current returns the period under the cursor.
func (a *TimeAxis) Current() (Period, error) {
	return a.At(a.index)
}

// At returns the period at index i.
func (a *TimeAxis) At(i int) (Period, error) {
	if len(a.periods) == 0 {
		return "", ErrEmptyAxis
	}
	if i < 0 || i >= len(a.periods) {
		return "", fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(a.periods))
	}
	return a.periods[i], nil
}
