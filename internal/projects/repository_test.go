package projects

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleStepsFillsMissingEntries(t *testing.T) {
	rows := []stepRow{
		{ProjectID: "p1", StepID: 3, Completed: true,
			DocumentURL:  sql.NullString{String: "https://example.com/d.pdf", Valid: true},
			DocumentName: sql.NullString{String: "d.pdf", Valid: true},
			UpdatedAt:    sql.NullTime{Time: time.Now(), Valid: true}},
		{ProjectID: "p1", StepID: 1, Completed: true},
	}

	steps, err := assembleSteps(rows)
	require.NoError(t, err)
	require.Len(t, steps, 8)

	for i, step := range steps {
		assert.Equal(t, i+1, step.StepID)
	}
	assert.True(t, steps[0].Completed)
	assert.True(t, steps[2].Completed)
	assert.Equal(t, "d.pdf", steps[2].DocumentName)
	require.NotNil(t, steps[2].UpdatedAt)

	// Unpersisted steps come back incomplete with no document.
	assert.False(t, steps[3].Completed)
	assert.Empty(t, steps[3].DocumentURL)
	assert.Nil(t, steps[3].UpdatedAt)
}

func TestAssembleStepsRejectsUnknownStepID(t *testing.T) {
	_, err := assembleSteps([]stepRow{{ProjectID: "p1", StepID: 99}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown step 99")
}

func TestMapStepRowClearsInvalidNulls(t *testing.T) {
	step, err := mapStepRow(stepRow{ProjectID: "p1", StepID: 5})
	require.NoError(t, err)
	assert.Empty(t, step.DocumentURL)
	assert.Empty(t, step.DocumentName)
	assert.Nil(t, step.UpdatedAt)
}
