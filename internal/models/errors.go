package models

import "errors"

var (
	// ErrInvalidParameter is returned when an algorithm parameter is rejected
	// before any pixel work starts.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidImage is returned for nil or zero-sized inputs and for
	// mismatched dimensions between inputs that must agree.
	ErrInvalidImage = errors.New("invalid image")
)
