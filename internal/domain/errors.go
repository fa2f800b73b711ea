package domain

import "errors"

var (
	// ErrUnknownVariable is returned when a variable id is not registered.
	ErrUnknownVariable = errors.New("unknown variable")

	// ErrIndexOutOfRange is returned when a time index falls outside the axis.
	// The axis fails fast instead of wrapping; clamping is the caller's job.
	ErrIndexOutOfRange = errors.New("time index out of range")

	// ErrEmptyAxis is returned by the time axis when the dataset has no periods.
	ErrEmptyAxis = errors.New("time axis is empty")

	// ErrUnknownRegion is returned when a region name is not part of the region set.
	ErrUnknownRegion = errors.New("unknown region")
)
