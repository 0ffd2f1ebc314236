package service

import "errors"

var (
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrRideNotFound    = errors.New("ride not found")
	ErrEmptyTrace      = errors.New("cannot record a ride from an empty trace")
	ErrInvalidFilter   = errors.New("invalid path filter")
)
