package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/kaurvahtra/listq/internal/models"
	bolt "go.etcd.io/bbolt"
)

// SaveQueue writes the entire ordered mutation slice as one snapshot and
// updates the display metadata in the same transaction.
func (s *Store) SaveQueue(mutations []*models.Mutation) error {
	data, err := json.Marshal(mutations)
	if err != nil {
		return fmt.Errorf("marshal queue: %w", err)
	}

	now := time.Now().UnixMilli()

	return s.db.Update(func(tx *bolt.Tx) error {
		qb := tx.Bucket(bucketQueue)
		if qb == nil {
			return fmt.Errorf("queue bucket not found")
		}
		if err := qb.Put(keyMutations, data); err != nil {
			return fmt.Errorf("write queue snapshot: %w", err)
		}

		mb := tx.Bucket(bucketMeta)
		if mb == nil {
			return fmt.Errorf("meta bucket not found")
		}
		if err := mb.Put(keyLastUpdated, []byte(strconv.FormatInt(now, 10))); err != nil {
			return err
		}
		return mb.Put(keyItemCount, []byte(strconv.Itoa(len(mutations))))
	})
}

// LoadQueue reads the persisted queue snapshot. A missing snapshot returns a
// nil slice; a corrupt one returns an error so the caller can decide to
// degrade to an empty queue.
func (s *Store) LoadQueue() ([]*models.Mutation, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketQueue)
		if b == nil {
			return nil
		}
		if v := b.Get(keyMutations); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read queue snapshot: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var mutations []*models.Mutation
	if err := json.Unmarshal(data, &mutations); err != nil {
		return nil, fmt.Errorf("unmarshal queue snapshot: %w", err)
	}
	return mutations, nil
}

// LastUpdated returns the timestamp of the last queue save, 0 if never saved.
func (s *Store) LastUpdated() (int64, error) {
	return s.metaInt64(keyLastUpdated)
}

// ItemCount returns the persisted queue length at the last save.
func (s *Store) ItemCount() (int, error) {
	v, err := s.metaInt64(keyItemCount)
	return int(v), err
}

// LastProcessed returns when the queue was last processed, 0 if never.
func (s *Store) LastProcessed() (int64, error) {
	return s.metaInt64(keyLastProcessed)
}

// SetLastProcessed records when the queue was last processed.
func (s *Store) SetLastProcessed(ts int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		if b == nil {
			return fmt.Errorf("meta bucket not found")
		}
		return b.Put(keyLastProcessed, []byte(strconv.FormatInt(ts, 10)))
	})
}

// metaInt64 reads an integer meta key, returning 0 when unset or unparsable.
// Metadata is display-only, never load-bearing for correctness.
func (s *Store) metaInt64(key []byte) (int64, error) {
	var val int64
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		if b == nil {
			return nil
		}
		v := b.Get(key)
		if v == nil {
			return nil
		}
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return nil
		}
		val = n
		return nil
	})
	return val, err
}
