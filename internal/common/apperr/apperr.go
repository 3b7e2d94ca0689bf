package apperr

import "errors"

// Sentinel errors returned by the core. None of them is fatal to the
// process: callers either re-prompt the user or treat the operation as a
// no-op. Wrap with fmt.Errorf("...: %w", err) to add context.
var (
	// ErrInvalidCoordinate marks a location sample whose latitude or
	// longitude is outside the valid range. The sample is dropped.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrIncompleteConfig marks a safe-exit arm attempt without a target
	// time or with an empty contact set.
	ErrIncompleteConfig = errors.New("incomplete safe-exit config")

	// ErrAlreadyTriggered marks an arm attempt while a triggered safe-exit
	// protocol awaits reset.
	ErrAlreadyTriggered = errors.New("safe-exit already triggered")

	// ErrNoLocation marks a position-dependent operation for a user with no
	// location on record yet.
	ErrNoLocation = errors.New("no location on record")

	// ErrAlertNotFound marks an operation on an unknown alert id.
	ErrAlertNotFound = errors.New("alert not found")

	// ErrAlertTerminal marks a track attempt on a resolved or expired alert.
	ErrAlertTerminal = errors.New("alert already terminal")

	// ErrLookupUnavailable marks a failed external lookup (geocode, police,
	// hotline, legal, notification). The last known value stays in place and
	// the lookup is retried on the next qualifying location change.
	ErrLookupUnavailable = errors.New("lookup unavailable")
)
