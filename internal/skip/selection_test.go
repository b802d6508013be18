package skip

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeObjectEngine() *Engine {
	plate := plateWith(0, 10, 20, 30)
	e := NewEngine()
	e.PlateChanged(&plate, nil)
	return e
}

func TestEngine_ToggleRespectsRemainingObject(t *testing.T) {
	e := threeObjectEngine()

	require.NoError(t, e.Toggle(10))
	require.NoError(t, e.Toggle(20))
	assert.Equal(t, []int{10, 20}, e.Pending())
	assert.Equal(t, 1, e.Remaining())

	err := e.Toggle(30)
	assert.ErrorIs(t, err, ErrSelectionInvalid)
	assert.Equal(t, []int{10, 20}, e.Pending(), "rejected toggle leaves state unchanged")
}

func TestEngine_CommitFoldsPendingIntoSkipped(t *testing.T) {
	e := threeObjectEngine()
	require.NoError(t, e.Toggle(10))
	require.NoError(t, e.Toggle(20))

	var sent []int
	err := e.Commit(context.Background(), func(_ context.Context, ids []int) error {
		sent = ids
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20}, sent)
	assert.Equal(t, []int{10, 20}, e.Skipped())
	assert.Empty(t, e.Pending())
}

func TestEngine_CommitFailureKeepsPending(t *testing.T) {
	e := threeObjectEngine()
	require.NoError(t, e.Toggle(10))

	boom := errors.New("printer offline")
	err := e.Commit(context.Background(), func(context.Context, []int) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{10}, e.Pending())
	assert.Empty(t, e.Skipped())

	assert.ErrorIs(t, NewEngine().Commit(context.Background(), nil), ErrNothingPending)
}

func TestEngine_ExternalSkipPrunesPending(t *testing.T) {
	e := threeObjectEngine()
	require.NoError(t, e.Toggle(20))

	e.DeviceSkippedUpdated([]int{10, 20, 30})
	assert.Empty(t, e.Pending())
	assert.Equal(t, []int{10, 20, 30}, e.Skipped())
	assert.False(t, e.CanApply())
}

func TestEngine_ToggleIgnoresSkippedAndUnknown(t *testing.T) {
	e := threeObjectEngine()
	e.DeviceSkippedUpdated([]int{10, 99})

	assert.NoError(t, e.Toggle(10))
	assert.NoError(t, e.Toggle(99))
	assert.NoError(t, e.Toggle(0))
	assert.Empty(t, e.Pending())
	assert.Equal(t, []int{10}, e.Skipped())
	assert.Equal(t, ObjectSkipped, e.State(10))
	assert.Equal(t, ObjectAvailable, e.State(20))
}

func TestEngine_ToggleRemovesPending(t *testing.T) {
	e := threeObjectEngine()
	require.NoError(t, e.Toggle(10))
	assert.Equal(t, ObjectSelected, e.State(10))
	require.NoError(t, e.Toggle(10))
	assert.Equal(t, ObjectAvailable, e.State(10))
	assert.False(t, e.CanApply())
}

func TestEngine_PlateChangedResetsAndSeeds(t *testing.T) {
	e := threeObjectEngine()
	require.NoError(t, e.Toggle(10))

	plate := plateWith(1, 1, 2, 3, 4)
	plate.Objects[3].SkippedAtSource = true
	e.PlateChanged(&plate, []int{2, 10})

	assert.Empty(t, e.Pending())
	assert.Equal(t, []int{2, 4}, e.Skipped())
	assert.Equal(t, 4, e.Total())
	assert.False(t, e.Has(10))

	e.PlateChanged(nil, []int{1})
	assert.Zero(t, e.Total())
	assert.Empty(t, e.Skipped())
	e.DeviceSkippedUpdated([]int{1})
	assert.Empty(t, e.Skipped())
}

func TestEngine_CommittedIgnoresForeignIDs(t *testing.T) {
	e := threeObjectEngine()
	e.Committed([]int{10, 77})
	assert.Equal(t, []int{10}, e.Skipped())
}

func TestEngine_RandomSequencesKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		n := 2 + rng.Intn(12)
		plate := plateWith(1, sequentialIDs(n)...)
		e := NewEngine()
		e.PlateChanged(&plate, nil)

		for step := 0; step < 60; step++ {
			switch rng.Intn(6) {
			case 0:
				var list []int
				for id := 1; id <= n; id++ {
					if rng.Intn(5) == 0 {
						list = append(list, id)
					}
				}
				e.DeviceSkippedUpdated(list)
			case 1:
				e.Committed(e.Pending())
			default:
				before := len(e.Pending())
				err := e.Toggle(rng.Intn(n + 2))
				if err != nil {
					require.ErrorIs(t, err, ErrSelectionInvalid)
					require.Len(t, e.Pending(), before)
				}
				require.LessOrEqual(t, len(e.Pending()), max(e.Total()-len(e.Skipped())-1, before))
			}

			for _, id := range e.Pending() {
				require.NotEqual(t, ObjectSkipped, e.State(id), "pending %d is also skipped", id)
			}
		}
	}
}
