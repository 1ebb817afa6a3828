package visit

import "errors"

var (
	ErrEntryNotFound = errors.New("visit queue entry not found")

	// ErrCapacityExceeded is returned when the queue for the requested date
	// already holds the configured daily maximum.
	ErrCapacityExceeded = errors.New("the visit queue for this date is full")

	// ErrAlreadyQueued maps the (visit_date, patient) uniqueness violation.
	ErrAlreadyQueued = errors.New("patient is already queued for this date")

	ErrDateRequired = errors.New("visit date is required")
)
