package fixplex

import (
	"errors"
	"fmt"

	"golang.org/x/xerrors"
)

// Sentinel errors returned by the exported Solver API. Callers should
// match against these with errors.Is rather than string comparison.
var (
	// ErrInconsistent is returned when an operation would violate a
	// basis or row invariant the caller is responsible for upholding
	// (e.g. add_row with base not present, or base already base of
	// another row).
	ErrInconsistent = errors.New("fixplex: inconsistent operation")

	// ErrDomainEmpty is returned by set_bounds-family calls when the
	// resulting interval intersection is empty.
	ErrDomainEmpty = errors.New("fixplex: variable domain is empty")

	// ErrNullVar names the sentinel null variable used where a real
	// variable id was required. No Solver method currently returns it.
	ErrNullVar = errors.New("fixplex: null_var is not a valid variable")

	// ErrNotBase names a variable that is not currently a row's base.
	// No Solver method currently returns it.
	ErrNotBase = errors.New("fixplex: variable is not a row base")

	// ErrEvenDenominator is returned by FromRational when the supplied
	// denominator is even and therefore has no odd_inverse.
	ErrEvenDenominator = errors.New("fixplex: even denominator has no modular inverse")

	// ErrNoPop describes a pop of more levels than have been pushed.
	// Pop has no error result and is not a source of it: asked for more
	// levels than exist, it stops once the trail has none left.
	ErrNoPop = errors.New("fixplex: pop count exceeds push depth")
)

// InternalInvariantBroken is raised (via panic) when a well_formed /
// well_formed_row check fails. This mirrors the source's treatment of
// invariant violations as a fatal design-bug condition rather than a
// recoverable error (spec.md §7): callers are never expected to recover
// from it in production, only in tests that want a readable failure
// message.
type InternalInvariantBroken struct {
	Reason string
}

func (e *InternalInvariantBroken) Error() string {
	return fmt.Sprintf("fixplex: internal invariant broken: %s", e.Reason)
}

// assertWellFormed panics with an InternalInvariantBroken when cond is
// false. Called from WellFormed/wellFormedRow and from DepSet's
// stale-reference check; it does not call Solver.Trace.
func assertWellFormed(cond bool, format string, args ...any) {
	if cond {
		return
	}
	panic(&InternalInvariantBroken{Reason: fmt.Sprintf(format, args...)})
}

// wrapf wraps err with additional context while remaining errors.Is
// compatible with the sentinel it wraps, via golang.org/x/xerrors.
func wrapf(err error, format string, args ...any) error {
	args = append(args, err)
	return xerrors.Errorf(format+": %w", args...)
}
