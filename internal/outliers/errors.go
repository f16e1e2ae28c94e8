package outliers

import "errors"

var (
	// ErrMalformedStatKey: a non team_vs_team stat key has no " - " separator.
	// Recovered with the full key as label, never fatal.
	ErrMalformedStatKey = errors.New("malformed stat key")

	// ErrMissingField: a structurally required record field is absent
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidRank: rank is negative
	ErrInvalidRank = errors.New("invalid rank")

	// ErrInvalidHeightPolicy: the height configuration is not monotonic or has no visible floor
	ErrInvalidHeightPolicy = errors.New("invalid height policy")
)
