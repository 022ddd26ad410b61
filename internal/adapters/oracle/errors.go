package oracle

import "errors"

// Sentinel kinds for oracle errors.
var (
	ErrGenerateFailed = errors.New("review generation failed")
	ErrEmptyReply     = errors.New("oracle returned no choices")
	ErrMalformedReply = errors.New("malformed oracle reply")
)
