package record

import "github.com/google/uuid"

// LineDiff describes how the stored line set must change to match a desired
// set. Stock adjustments fire only for the genuine deltas, so resubmitting an
// unchanged prescription is a no-op on inventory.
type LineDiff struct {
	// Added lines must be created and their quantity decremented from stock.
	Added []LineInput
	// Removed lines must be deleted and their quantity returned to stock.
	Removed []PrescriptionLine
	// Changed lines keep their row but the quantity (and instructions)
	// changed; stock is adjusted by QuantityDelta.
	Changed []LineChange
}

type LineChange struct {
	Existing      PrescriptionLine
	Desired       LineInput
	QuantityDelta int // desired - existing; positive means more stock consumed
}

// DiffLines compares the stored lines of a record against the desired set,
// keyed by medication.
func DiffLines(existing []PrescriptionLine, desired []LineInput) LineDiff {
	var diff LineDiff

	current := make(map[uuid.UUID]PrescriptionLine, len(existing))
	for _, l := range existing {
		current[l.MedicationID] = l
	}

	seen := make(map[uuid.UUID]struct{}, len(desired))
	for _, want := range desired {
		seen[want.MedicationID] = struct{}{}

		have, ok := current[want.MedicationID]
		if !ok {
			diff.Added = append(diff.Added, want)
			continue
		}
		if have.Quantity != want.Quantity || !uuidPtrEqual(have.InstructionsID, want.InstructionsID) {
			diff.Changed = append(diff.Changed, LineChange{
				Existing:      have,
				Desired:       want,
				QuantityDelta: want.Quantity - have.Quantity,
			})
		}
	}

	for _, l := range existing {
		if _, ok := seen[l.MedicationID]; !ok {
			diff.Removed = append(diff.Removed, l)
		}
	}

	return diff
}

// Empty reports whether the diff requires no writes at all.
func (d LineDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
