package interview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockmate-ai/mockmate/internal/models"
)

func TestAccumulatorAppendKeepsOrder(t *testing.T) {
	a := NewAccumulator()

	require.True(t, a.Append(models.RoleInterviewer, "Tell me about Go."))
	require.True(t, a.Append(models.RoleCandidate, "I use it daily."))
	require.True(t, a.Append(models.RoleInterviewer, "What about channels?"))

	got := a.Snapshot()
	require.Len(t, got, 3)
	assert.Equal(t, models.RoleInterviewer, got[0].Role)
	assert.Equal(t, "I use it daily.", got[1].Content)
	assert.Equal(t, "What about channels?", got[2].Content)
}

func TestAccumulatorDropsBlankUtterances(t *testing.T) {
	a := NewAccumulator()

	assert.False(t, a.Append(models.RoleCandidate, ""))
	assert.False(t, a.Append(models.RoleCandidate, "   "))
	assert.False(t, a.Append(models.RoleCandidate, "\n\t"))
	assert.Equal(t, 0, a.Len())
}

func TestAccumulatorSealFreezes(t *testing.T) {
	a := NewAccumulator()
	a.Append(models.RoleCandidate, "answer one")

	first := a.Seal()
	require.Len(t, first, 1)

	assert.False(t, a.Append(models.RoleCandidate, "too late"))

	second := a.Seal()
	assert.Equal(t, first, second)
}

func TestAccumulatorSnapshotIsACopy(t *testing.T) {
	a := NewAccumulator()
	a.Append(models.RoleCandidate, "original")

	snap := a.Snapshot()
	snap[0].Content = "mutated"

	assert.Equal(t, "original", a.Snapshot()[0].Content)
}

func TestAccumulatorResetClearsSealedState(t *testing.T) {
	a := NewAccumulator()
	a.Append(models.RoleCandidate, "first session")
	a.Seal()

	a.Reset()
	assert.Equal(t, 0, a.Len())
	assert.True(t, a.Append(models.RoleCandidate, "second session"))
}
