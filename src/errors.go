package wxsame

import "errors"

// Sentinel errors for the core's validation and lifecycle failures.
var (
	// ErrMalformedInput covers a confidence vector whose length doesn't
	// match its byte sequence.
	ErrMalformedInput = errors.New("wxsame: malformed input")

	// ErrAlreadyComplete is returned by AddHeader once a SAMEMessage has
	// latched fully received.
	ErrAlreadyComplete = errors.New("wxsame: message is already complete")

	// ErrInvalidFIPSLength is returned when a FIPS query is neither 5
	// nor 6 characters.
	ErrInvalidFIPSLength = errors.New("wxsame: fips code must be 5 or 6 characters")
)
