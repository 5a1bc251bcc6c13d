package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/kaurvahtra/listq/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(filepath.Join(t.TempDir(), "listq.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSaveLoadQueue(t *testing.T) {
	st := newTestStore(t)

	// Fresh store has no snapshot
	mutations, err := st.LoadQueue()
	require.NoError(t, err)
	assert.Nil(t, mutations)

	in := []*models.Mutation{
		{
			ID:        "mut-1",
			Type:      models.MutationDelete,
			Delete:    &models.DeletePayload{ItemID: "item-1"},
			Timestamp: 100,
			Priority:  models.PriorityDelete,
			Status:    models.StatusPending,
		},
		{
			ID:        "mut-2",
			Type:      models.MutationAdd,
			Add:       &models.AddPayload{Item: &models.Item{ID: "item-2", Name: "Milk"}},
			Timestamp: 50,
			Priority:  models.PriorityAdd,
			Status:    models.StatusFailed,
			Error:     "network unreachable",
		},
	}
	require.NoError(t, st.SaveQueue(in))

	out, err := st.LoadQueue()
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "mut-1", out[0].ID)
	assert.Equal(t, models.MutationDelete, out[0].Type)
	assert.Equal(t, "item-1", out[0].Delete.ItemID)
	assert.Equal(t, "Milk", out[1].Add.Item.Name)
	assert.Equal(t, "network unreachable", out[1].Error)
}

func TestSaveQueue_UpdatesMeta(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, st.SaveQueue([]*models.Mutation{{ID: "mut-1"}, {ID: "mut-2"}}))

	count, err := st.ItemCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	updated, err := st.LastUpdated()
	require.NoError(t, err)
	assert.Greater(t, updated, int64(0))
}

func TestLastProcessed(t *testing.T) {
	st := newTestStore(t)

	ts, err := st.LastProcessed()
	require.NoError(t, err)
	assert.Zero(t, ts)

	require.NoError(t, st.SetLastProcessed(12345))
	ts, err = st.LastProcessed()
	require.NoError(t, err)
	assert.Equal(t, int64(12345), ts)
}

func TestLoadQueue_CorruptSnapshot(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.SaveQueue([]*models.Mutation{{ID: "mut-1"}}))

	// Corrupt the snapshot directly
	err := st.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketQueue).Put(keyMutations, []byte("{not json"))
	})
	require.NoError(t, err)

	_, err = st.LoadQueue()
	assert.Error(t, err)
}

func TestMigrateLegacy(t *testing.T) {
	st := newTestStore(t)
	dir := t.TempDir()

	legacy := []*models.Mutation{
		{ID: "mut-1", Type: models.MutationAdd, Add: &models.AddPayload{Item: &models.Item{ID: "item-1", Name: "Eggs"}}},
	}
	data, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, LegacyQueueFile), data, 0644))

	n, err := st.MigrateLegacy(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Imported into the store, legacy file renamed
	mutations, err := st.LoadQueue()
	require.NoError(t, err)
	require.Len(t, mutations, 1)
	assert.Equal(t, "mut-1", mutations[0].ID)

	_, err = os.Stat(filepath.Join(dir, LegacyQueueFile))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, LegacyQueueFile+".imported"))
	assert.NoError(t, err)

	// Second run is a no-op
	n, err = st.MigrateLegacy(dir)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMigrateLegacy_NoFile(t *testing.T) {
	st := newTestStore(t)

	n, err := st.MigrateLegacy(t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMigrateLegacy_CorruptFile(t *testing.T) {
	st := newTestStore(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, LegacyQueueFile), []byte("{bad"), 0644))

	n, err := st.MigrateLegacy(dir)
	require.NoError(t, err)
	assert.Zero(t, n)

	// Abandoned, not imported
	_, err = os.Stat(filepath.Join(dir, LegacyQueueFile+".corrupt"))
	assert.NoError(t, err)
}

func TestDeviceID_StablePerStore(t *testing.T) {
	st := newTestStore(t)

	id, err := st.DeviceID()
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	again, err := st.DeviceID()
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestKVRoundTrip(t *testing.T) {
	st := newTestStore(t)

	v, err := st.GetValue("missing")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, st.SetValue("device_id", "dev-1"))
	v, err = st.GetValue("device_id")
	require.NoError(t, err)
	assert.Equal(t, "dev-1", v)
}
