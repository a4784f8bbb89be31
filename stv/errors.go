package stv

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned from New when the constructor's arguments
// violate one of the contracts in spec §4.1 — num_winners out of
// range, or a preference list referencing an unknown candidate, or a
// duplicate candidate within one list. Construction never starts a
// tabulation when this is returned.
var ErrInvalidInput = errors.New("invalid input")

// ErrInternalInvariant marks a detected pre- or post-condition failure
// — a ballot's top preference not in remaining after a transfer. The
// tally sum is not checked against the ballot weight sum. These should be
// impossible; seeing this error means the engine has a bug, not that
// the caller did anything wrong.
var ErrInternalInvariant = errors.New("internal invariant violation")

// invalidInputf wraps a formatted message under ErrInvalidInput, in the
// teacher's errors.Is-friendly wrapping style (vote/vote.go).
func invalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...)
}

func internalInvariantf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInternalInvariant}, args...)...)
}
