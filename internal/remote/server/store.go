// Package server implements the listq-server HTTP handlers and middleware.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/kaurvahtra/listq/internal/models"
)

// Sentinel errors for expected conditions.
var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
)

// itemsBucket holds per-list nested buckets, keyed by list name, each
// mapping item id -> JSON item.
var itemsBucket = []byte("items")

// Store is the server-side item store, one bbolt file for all lists.
type Store struct {
	db *bolt.DB
}

// NewStore opens or creates a bbolt database at the given path.
func NewStore(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(itemsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create items bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// listBucket returns the nested bucket for a list, creating it if needed.
func listBucket(tx *bolt.Tx, list string, create bool) (*bolt.Bucket, error) {
	root := tx.Bucket(itemsBucket)
	if create {
		return root.CreateBucketIfNotExists([]byte(list))
	}
	b := root.Bucket([]byte(list))
	if b == nil {
		return nil, nil
	}
	return b, nil
}

// CreateItem stores a new item. Fails with ErrExists on a duplicate id.
func (s *Store) CreateItem(list string, item *models.Item) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := listBucket(tx, list, true)
		if err != nil {
			return err
		}
		if b.Get([]byte(item.ID)) != nil {
			return ErrExists
		}
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshal item: %w", err)
		}
		return b.Put([]byte(item.ID), data)
	})
}

// GetItem fetches one item.
func (s *Store) GetItem(list, id string) (*models.Item, error) {
	var item *models.Item
	err := s.db.View(func(tx *bolt.Tx) error {
		b, err := listBucket(tx, list, false)
		if err != nil {
			return err
		}
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(id))
		if v == nil {
			return ErrNotFound
		}
		item = &models.Item{}
		return json.Unmarshal(v, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem applies a patch to a stored item and stamps the update time.
func (s *Store) UpdateItem(list, id string, patch *models.ItemPatch) (*models.Item, error) {
	var updated *models.Item
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := listBucket(tx, list, false)
		if err != nil {
			return err
		}
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(id))
		if v == nil {
			return ErrNotFound
		}
		var item models.Item
		if err := json.Unmarshal(v, &item); err != nil {
			return fmt.Errorf("unmarshal item: %w", err)
		}
		updated = patch.Apply(&item)
		updated.UpdatedAt = time.Now().UnixMilli()
		data, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("marshal item: %w", err)
		}
		return b.Put([]byte(id), data)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteItem removes an item. Unknown ids are a no-op.
func (s *Store) DeleteItem(list, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := listBucket(tx, list, false)
		if err != nil || b == nil {
			return err
		}
		return b.Delete([]byte(id))
	})
}

// ListItems returns every item on a list.
func (s *Store) ListItems(list string) ([]*models.Item, error) {
	items := []*models.Item{}
	err := s.db.View(func(tx *bolt.Tx) error {
		b, err := listBucket(tx, list, false)
		if err != nil || b == nil {
			return err
		}
		return b.ForEach(func(_, v []byte) error {
			var item models.Item
			if err := json.Unmarshal(v, &item); err != nil {
				return fmt.Errorf("unmarshal item: %w", err)
			}
			items = append(items, &item)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}
