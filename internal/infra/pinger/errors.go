package pinger

import "errors"

var (
	// ErrPingerAlreadyRegistered is returned when attempting to register a pinger that already exists
	ErrPingerAlreadyRegistered = errors.New("pinger already registered")

	// ErrNeverPinged is reported for a pinger that has not completed a ping yet
	ErrNeverPinged = errors.New("never pinged")
)
