package domain

import "errors"

// Sentinel errors surfaced at the view boundary. The API layer maps
// ErrMissingParameter to 400 and everything else to 500; a failed view
// never returns partial data alongside an error.
var (
	// ErrSourceUnavailable reports a network or upstream failure reaching
	// the tracker or the sheet service. The whole fetch is discarded.
	ErrSourceUnavailable = errors.New("upstream source unavailable")

	// ErrFetchIncomplete reports a violated pagination invariant: the
	// server-reported total could not be reached without the offset
	// stalling or the iteration cap being hit.
	ErrFetchIncomplete = errors.New("fetch incomplete: pagination did not converge")

	// ErrMissingParameter reports a required query parameter that was
	// absent from the request. Checked before any fetch is attempted.
	ErrMissingParameter = errors.New("missing required parameter")
)
