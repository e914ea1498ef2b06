package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrInvalidID: identifier is not a well-formed store key
// - ErrUnavailable: the store could not be reached or failed mid-operation
var (
	ErrInvalidID   = errors.New("invalid identifier")
	ErrUnavailable = errors.New("unavailable")
)
