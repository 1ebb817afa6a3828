package record

import "errors"

var (
	ErrRecordNotFound = errors.New("medical record not found")

	// ErrDuplicateMedication maps the (record, medication) uniqueness
	// violation: a medication appears at most once per record.
	ErrDuplicateMedication = errors.New("medication appears more than once in the prescription")

	// ErrQueueEntryTaken means another record already links this queue entry.
	ErrQueueEntryTaken = errors.New("a record already exists for this queue entry")
)
