package conflict

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaurvahtra/listq/internal/models"
)

func TestHasConflict_EmptinessRule(t *testing.T) {
	// Both empty: never a conflict
	assert.False(t, HasConflict(nil, nil))
	assert.False(t, HasConflict("", nil))
	assert.False(t, HasConflict(nil, ""))
	assert.False(t, HasConflict("", ""))

	// Exactly one empty: always a conflict
	assert.True(t, HasConflict("a", ""))
	assert.True(t, HasConflict("", "a"))
	assert.True(t, HasConflict("a", nil))

	// Both set: plain inequality
	assert.False(t, HasConflict("a", "a"))
	assert.True(t, HasConflict("a", "b"))
	assert.False(t, HasConflict(3, 3))
	assert.True(t, HasConflict(3, 5))

	// Composite values: deep comparison
	assert.False(t, HasConflict(map[string]int{"a": 1}, map[string]int{"a": 1}))
	assert.True(t, HasConflict([]int{1, 2}, []int{1, 3}))
	assert.False(t, HasConflict([]int{1, 2}, []int{1, 2}))
}

func TestDetect_NoConflict(t *testing.T) {
	local := &models.Item{ID: "item-1", Name: "Milk", Quantity: 2, UpdatedAt: 1000}
	remote := &models.Item{ID: "item-1", Name: "Milk", Quantity: 2, UpdatedAt: 2000}

	c, err := Detect(local, remote)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestDetect_IDMismatchFailsLoudly(t *testing.T) {
	local := &models.Item{ID: "item-1", Name: "Milk"}
	remote := &models.Item{ID: "item-2", Name: "Milk"}

	_, err := Detect(local, remote)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIDMismatch))

	_, err = Detect(nil, remote)
	assert.True(t, errors.Is(err, ErrNilItem))
}

func TestDetect_NameConflictRequiresManual(t *testing.T) {
	local := &models.Item{ID: "item-1", Name: "Milk", UpdatedAt: 1000}
	remote := &models.Item{ID: "item-1", Name: "Whole Milk", UpdatedAt: 1100}

	c, err := Detect(local, remote)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.True(t, c.RequiresManual)
	assert.True(t, c.HasField(FieldName))
	assert.Nil(t, AutoResolve(c))
}

func TestDetect_FieldConflictValues(t *testing.T) {
	local := &models.Item{ID: "item-1", Name: "Milk", Quantity: 2, Notes: "2%", UpdatedAt: 1000}
	remote := &models.Item{ID: "item-1", Name: "Milk", Quantity: 5, Notes: "", UpdatedAt: 2000}

	c, err := Detect(local, remote)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.False(t, c.RequiresManual)
	require.Len(t, c.FieldConflicts, 2)

	assert.True(t, c.HasField(FieldQuantity))
	assert.True(t, c.HasField(FieldNotes))
	for _, fc := range c.FieldConflicts {
		assert.Equal(t, int64(1000), fc.LocalTimestamp)
		assert.Equal(t, int64(2000), fc.RemoteTimestamp)
	}
}

func TestResolve_LastWriteWins(t *testing.T) {
	local := &models.Item{ID: "item-1", Name: "Milk", Quantity: 2, UpdatedAt: 2000}
	remote := &models.Item{ID: "item-1", Name: "Milk", Quantity: 5, UpdatedAt: 1000}
	c := &models.Conflict{ItemID: "item-1", Local: local, Remote: remote}

	winner, err := Resolve(c, models.StrategyLastWriteWins)
	require.NoError(t, err)
	assert.Equal(t, 2, winner.Quantity)

	// Exact tie breaks toward remote
	local.UpdatedAt = 1000
	winner, err = Resolve(c, models.StrategyLastWriteWins)
	require.NoError(t, err)
	assert.Equal(t, 5, winner.Quantity)
}

func TestResolve_PreferSides(t *testing.T) {
	local := &models.Item{ID: "item-1", Quantity: 2, UpdatedAt: 1000}
	remote := &models.Item{ID: "item-1", Quantity: 5, UpdatedAt: 2000}
	c := &models.Conflict{ItemID: "item-1", Local: local, Remote: remote}

	winner, err := Resolve(c, models.StrategyPreferLocal)
	require.NoError(t, err)
	assert.Equal(t, 2, winner.Quantity)

	winner, err = Resolve(c, models.StrategyPreferRemote)
	require.NoError(t, err)
	assert.Equal(t, 5, winner.Quantity)
}

func TestResolve_PreferGotten(t *testing.T) {
	local := &models.Item{ID: "item-1", Gotten: true, Quantity: 2, UpdatedAt: 1000}
	remote := &models.Item{ID: "item-1", Gotten: false, Quantity: 5, UpdatedAt: 9000}
	c := &models.Conflict{ItemID: "item-1", Local: local, Remote: remote}

	// The gotten side wins entirely, even when older
	winner, err := Resolve(c, models.StrategyPreferGotten)
	require.NoError(t, err)
	assert.True(t, winner.Gotten)
	assert.Equal(t, 2, winner.Quantity)

	// Both gotten: fall back to last-write-wins
	remote.Gotten = true
	winner, err = Resolve(c, models.StrategyPreferGotten)
	require.NoError(t, err)
	assert.Equal(t, 5, winner.Quantity)
}

func TestResolve_ManualAlwaysFails(t *testing.T) {
	c := &models.Conflict{
		ItemID: "item-1",
		Local:  &models.Item{ID: "item-1"},
		Remote: &models.Item{ID: "item-1"},
	}

	_, err := Resolve(c, models.StrategyManual)
	assert.True(t, errors.Is(err, ErrManualResolution))

	_, err = Resolve(c, models.ResolutionStrategy("bogus"))
	assert.Error(t, err)
}

func TestAutoResolve_GottenPreference(t *testing.T) {
	local := &models.Item{ID: "item-1", Name: "Milk", Gotten: false, Quantity: 2, UpdatedAt: 1000}
	remote := &models.Item{ID: "item-1", Name: "Milk", Gotten: true, Quantity: 3, UpdatedAt: 1500}

	c, err := Detect(local, remote)
	require.NoError(t, err)
	require.NotNil(t, c)

	merged := AutoResolve(c)
	require.NotNil(t, merged)
	assert.True(t, merged.Gotten)
	assert.Equal(t, 3, merged.Quantity)
}

func TestAutoResolve_StaleTimestampGap(t *testing.T) {
	// More than 5 minutes apart: one side is stale, last write wins
	local := &models.Item{ID: "item-1", Name: "Milk", Notes: "old", UpdatedAt: 1000}
	remote := &models.Item{ID: "item-1", Name: "Milk", Notes: "new", UpdatedAt: 1000 + 6*60*1000}

	c, err := Detect(local, remote)
	require.NoError(t, err)
	require.NotNil(t, c)

	merged := AutoResolve(c)
	require.NotNil(t, merged)
	assert.Equal(t, "new", merged.Notes)
}

func TestAutoResolve_NotesMerge(t *testing.T) {
	local := &models.Item{ID: "item-1", Name: "Milk", Notes: "lactose free", UpdatedAt: 1000}
	remote := &models.Item{ID: "item-1", Name: "Milk", Notes: "2 liters", UpdatedAt: 1500}

	c, err := Detect(local, remote)
	require.NoError(t, err)
	require.NotNil(t, c)

	merged := AutoResolve(c)
	require.NotNil(t, merged)
	assert.Equal(t, "lactose free; 2 liters", merged.Notes)
}

func TestAutoResolve_QuantityMax(t *testing.T) {
	local := &models.Item{ID: "item-1", Name: "Milk", Quantity: 3, UpdatedAt: 1000}
	remote := &models.Item{ID: "item-1", Name: "Milk", Quantity: 5, UpdatedAt: 1500}

	c, err := Detect(local, remote)
	require.NoError(t, err)
	require.NotNil(t, c)

	merged := AutoResolve(c)
	require.NotNil(t, merged)
	assert.Equal(t, 5, merged.Quantity)
}

func TestMergeFields(t *testing.T) {
	local := &models.Item{ID: "item-1", Name: "Milk", Quantity: 4, Gotten: true, Notes: "2%", UpdatedAt: 1000}
	remote := &models.Item{ID: "item-1", Name: "Whole Milk", Quantity: 2, Gotten: false, Notes: "2% organic", UpdatedAt: 2000}

	merged := MergeFields(local, remote)

	assert.True(t, merged.Gotten, "gotten ORs toward true")
	assert.Equal(t, 4, merged.Quantity, "quantity takes the max")
	assert.Equal(t, "2% organic", merged.Notes, "substring collapses to the longer string")
	assert.Equal(t, "Whole Milk", merged.Name, "other fields follow the later timestamp")
	assert.Equal(t, int64(2000), merged.UpdatedAt)
}

func TestMergeFields_Deterministic(t *testing.T) {
	local := &models.Item{ID: "item-1", Name: "Milk", Quantity: 1, Notes: "a", UpdatedAt: 1000}
	remote := &models.Item{ID: "item-1", Name: "Milk", Quantity: 2, Notes: "b", UpdatedAt: 1000}

	first := MergeFields(local, remote)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, MergeFields(local, remote))
	}
}
