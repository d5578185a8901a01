package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultFlatFileLimit is the hard size ceiling of the fallback tier,
// mirroring a typical browser localStorage quota.
const DefaultFlatFileLimit = 5 << 20

// FlatFile is the fallback backend: the whole key space serialized into one
// JSON document on every write, with a hard byte ceiling.
type FlatFile struct {
	path  string
	limit int

	mu     sync.Mutex
	data   map[string]json.RawMessage
	loaded bool
}

// NewFlatFile builds a flat-file backend at path. A limit of 0 uses
// DefaultFlatFileLimit.
func NewFlatFile(path string, limit int) *FlatFile {
	if limit <= 0 {
		limit = DefaultFlatFileLimit
	}
	return &FlatFile{path: path, limit: limit}
}

// Name implements Backend.
func (f *FlatFile) Name() string { return "flatfile" }

// Save stores value under key. Returns ErrCapacity when the serialized
// document would exceed the ceiling; the previous contents stay intact.
func (f *FlatFile) Save(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ensureLoaded(); err != nil {
		return err
	}

	prev, existed := f.data[key]
	f.data[key] = json.RawMessage(value)
	if err := f.flush(); err != nil {
		if existed {
			f.data[key] = prev
		} else {
			delete(f.data, key)
		}
		return err
	}
	return nil
}

// Load fetches the value stored under key.
func (f *FlatFile) Load(ctx context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ensureLoaded(); err != nil {
		return nil, false, err
	}
	raw, ok := f.data[key]
	if !ok {
		return nil, false, nil
	}
	return raw, true, nil
}

// Remove deletes the value stored under key.
func (f *FlatFile) Remove(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ensureLoaded(); err != nil {
		return err
	}
	if _, ok := f.data[key]; !ok {
		return nil
	}
	delete(f.data, key)
	return f.flush()
}

// Clear deletes every stored value.
func (f *FlatFile) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = map[string]json.RawMessage{}
	f.loaded = true
	return f.flush()
}

func (f *FlatFile) ensureLoaded() error {
	if f.loaded {
		return nil
	}
	f.data = map[string]json.RawMessage{}
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			f.loaded = true
			return nil
		}
		return fmt.Errorf("failed to read flat store: %w", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &f.data); err != nil {
			// corrupt contents start fresh
			f.data = map[string]json.RawMessage{}
		}
	}
	f.loaded = true
	return nil
}

func (f *FlatFile) flush() error {
	doc, err := json.Marshal(f.data)
	if err != nil {
		return fmt.Errorf("failed to serialize flat store: %w", err)
	}
	if len(doc) > f.limit {
		return fmt.Errorf("flat store would grow to %d bytes (limit %d): %w",
			len(doc), f.limit, ErrCapacity)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("failed to create flat store dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(f.path), "flatstore-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp flat store: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(doc); err != nil {
		return fmt.Errorf("failed to write flat store: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close flat store: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("failed to replace flat store: %w", err)
	}
	return nil
}
