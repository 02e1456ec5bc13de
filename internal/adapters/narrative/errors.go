package narrative

import "errors"

// Sentinel kinds for narrative provider errors.
var (
	ErrUnknownProvider = errors.New("unknown narrative provider")
	ErrUnavailable     = errors.New("narrative provider unavailable")
	ErrEmptyResponse   = errors.New("narrative provider returned no text")
)
