package record

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffLinesNoChanges(t *testing.T) {
	medA := uuid.New()
	instr := uuid.New()

	existing := []PrescriptionLine{
		{MedicationID: medA, Quantity: 5, InstructionsID: &instr},
	}
	desired := []LineInput{
		{MedicationID: medA, Quantity: 5, InstructionsID: &instr},
	}

	diff := DiffLines(existing, desired)
	assert.True(t, diff.Empty())
}

func TestDiffLinesAddRemoveChange(t *testing.T) {
	medA := uuid.New()
	medB := uuid.New()
	medC := uuid.New()

	existing := []PrescriptionLine{
		{MedicationID: medA, Quantity: 5},
		{MedicationID: medB, Quantity: 2},
	}
	desired := []LineInput{
		{MedicationID: medA, Quantity: 8}, // changed: +3
		{MedicationID: medC, Quantity: 1}, // added
		// medB removed
	}

	diff := DiffLines(existing, desired)

	require.Len(t, diff.Added, 1)
	assert.Equal(t, medC, diff.Added[0].MedicationID)

	require.Len(t, diff.Removed, 1)
	assert.Equal(t, medB, diff.Removed[0].MedicationID)

	require.Len(t, diff.Changed, 1)
	assert.Equal(t, medA, diff.Changed[0].Existing.MedicationID)
	assert.Equal(t, 3, diff.Changed[0].QuantityDelta)
}

func TestDiffLinesInstructionsOnlyChange(t *testing.T) {
	medA := uuid.New()
	oldInstr := uuid.New()
	newInstr := uuid.New()

	existing := []PrescriptionLine{
		{MedicationID: medA, Quantity: 4, InstructionsID: &oldInstr},
	}
	desired := []LineInput{
		{MedicationID: medA, Quantity: 4, InstructionsID: &newInstr},
	}

	diff := DiffLines(existing, desired)

	require.Len(t, diff.Changed, 1)
	assert.Zero(t, diff.Changed[0].QuantityDelta)
	assert.Empty(t, diff.Added)
	assert.Empty(t, diff.Removed)
}

func TestDiffLinesFromEmpty(t *testing.T) {
	medA := uuid.New()

	diff := DiffLines(nil, []LineInput{{MedicationID: medA, Quantity: 2}})

	require.Len(t, diff.Added, 1)
	assert.Empty(t, diff.Removed)
	assert.Empty(t, diff.Changed)
}
