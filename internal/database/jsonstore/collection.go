// Package jsonstore keeps each collection as one JSON array file and rewrites
// the whole file on every mutation.
package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"cropcare-service/internal/models"
)

// Collection is a mutex-guarded JSON array file of T. Every operation runs
// read-whole, modify in memory, write-whole under the collection lock.
type Collection[T any] struct {
	mu   sync.Mutex
	path string
	name string
}

// Store owns the data directory all collections live in. It hands out one
// Collection per name so every caller shares the same lock.
type Store struct {
	dir string

	mu          sync.Mutex
	collections map[string]any
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create data directory %s: %v", models.ErrStorageIO, dir, err)
	}
	slog.Info("JSON data directory ready", "dir", dir)
	return &Store{dir: dir, collections: map[string]any{}}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Open returns the collection stored in <dir>/<name>.json. The file itself is
// created lazily on first access. Opening a name twice yields the same
// Collection; opening it with a different record type panics.
func Open[T any](s *Store, name string) *Collection[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.collections[name]; ok {
		c, ok := existing.(*Collection[T])
		if !ok {
			panic(fmt.Sprintf("jsonstore: collection %q already opened with record type %T", name, existing))
		}
		return c
	}

	c := &Collection[T]{
		path: filepath.Join(s.dir, name+".json"),
		name: name,
	}
	s.collections[name] = c
	return c
}

func (c *Collection[T]) Path() string {
	return c.path
}

// List returns every record in storage order.
func (c *Collection[T]) List() ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load()
}

// Find returns the first record matching pred.
func (c *Collection[T]) Find(pred func(T) bool) (T, bool, error) {
	var zero T
	records, err := c.List()
	if err != nil {
		return zero, false, err
	}
	for _, r := range records {
		if pred(r) {
			return r, true, nil
		}
	}
	return zero, false, nil
}

func (c *Collection[T]) Append(rec T) error {
	return c.Update(func(records []T) ([]T, bool, error) {
		return append(records, rec), true, nil
	})
}

func (c *Collection[T]) Prepend(rec T) error {
	return c.Update(func(records []T) ([]T, bool, error) {
		return append([]T{rec}, records...), true, nil
	})
}

// DeleteWhere removes the first record matching pred. The file is only
// rewritten when something was removed.
func (c *Collection[T]) DeleteWhere(pred func(T) bool) (bool, error) {
	removed := false
	err := c.Update(func(records []T) ([]T, bool, error) {
		for i, r := range records {
			if pred(r) {
				removed = true
				return append(records[:i], records[i+1:]...), true, nil
			}
		}
		return records, false, nil
	})
	return removed, err
}

// Update hands the current records to fn and persists the returned slice when
// fn reports a change. An error from fn aborts without writing.
func (c *Collection[T]) Update(fn func(records []T) ([]T, bool, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load()
	if err != nil {
		return err
	}
	next, changed, err := fn(records)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return c.save(next)
}

func (c *Collection[T]) load() ([]T, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		if err := c.save([]T{}); err != nil {
			return nil, err
		}
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", models.ErrStorageIO, c.name, err)
	}

	records := []T{}
	if len(data) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s: %v", models.ErrStorageIO, c.name, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// save writes to a temp file beside the target and renames it into place so
// readers never observe a half-written collection.
func (c *Collection[T]) save(records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to encode %s: %v", models.ErrStorageIO, c.name, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), "."+c.name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file for %s: %v", models.ErrStorageIO, c.name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: failed to write %s: %v", models.ErrStorageIO, c.name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: failed to close %s: %v", models.ErrStorageIO, c.name, err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: failed to replace %s: %v", models.ErrStorageIO, c.name, err)
	}
	return nil
}
