package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kaurvahtra/listq/internal/models"
)

// LegacyQueueFile is the flat-file queue used by v0 clients before the
// bbolt store existed.
const LegacyQueueFile = "queue.json"

// MigrateLegacy imports a v0 queue.json file from dir into the bbolt store,
// then renames the file so the import runs only once. It is a no-op when no
// legacy file exists or when the store already holds a snapshot.
// Returns the number of mutations imported.
func (s *Store) MigrateLegacy(dir string) (int, error) {
	existing, err := s.LoadQueue()
	if err == nil && existing != nil {
		return 0, nil
	}

	path := filepath.Join(dir, LegacyQueueFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read legacy queue: %w", err)
	}

	var mutations []*models.Mutation
	if err := json.Unmarshal(data, &mutations); err != nil {
		// A corrupt legacy file is abandoned, not fatal.
		return 0, os.Rename(path, path+".corrupt")
	}

	if err := s.SaveQueue(mutations); err != nil {
		return 0, fmt.Errorf("import legacy queue: %w", err)
	}

	if err := os.Rename(path, path+".imported"); err != nil {
		return len(mutations), fmt.Errorf("rename legacy queue: %w", err)
	}

	return len(mutations), nil
}
