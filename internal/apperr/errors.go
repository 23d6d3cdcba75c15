package apperr

import "errors"

var (
	// ErrUnauthorized marks sign-in rejections and stale-token report fetches.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNoToken means an authenticated call was attempted before any sign-in.
	ErrNoToken = errors.New("no session token")
	// ErrMalformedReport means the report payload arrived but its shape could
	// not be normalized. Distinct from a fetch failure.
	ErrMalformedReport = errors.New("malformed report payload")
	// ErrNoNote means no daily note exists for a report date.
	ErrNoNote = errors.New("no note for date")
)
