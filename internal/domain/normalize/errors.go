package normalize

import "errors"

// Sentinel kinds for malformed record data. Callers can errors.Is against
// these to distinguish data errors from anything else.
var (
	ErrBadAmount        = errors.New("unparseable amount")
	ErrBadCurrency      = errors.New("unrecognized currency code")
	ErrMissingTimestamp = errors.New("missing posting timestamp")
)
