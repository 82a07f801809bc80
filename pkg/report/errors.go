package report

import "errors"

var (
	// ErrInvalid is returned when a payload does not match its schema.
	ErrInvalid = errors.New("invalid report data")

	// ErrUnsupportedVersion is returned for payloads tagged with an unknown schema version.
	ErrUnsupportedVersion = errors.New("unsupported report schema version")
)
