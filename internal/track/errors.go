package track

import "errors"

// Graph and persistence errors.
var (
	// ErrNoRecord means no persisted state exists yet; callers treat it as a first run.
	ErrNoRecord = errors.New("no persisted record")

	// ErrMalformedRecord means persisted state does not match the expected topology.
	ErrMalformedRecord = errors.New("malformed persisted record")

	ErrCurveTooShort = errors.New("curve needs at least two nodes")
	ErrCurveClosed   = errors.New("curve is closed")
	ErrSplineIndex   = errors.New("spline index out of range")
)
