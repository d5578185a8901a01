// Package storage provides durable key-value persistence with a two-tier
// backend fallback: a transactional SQLite store backed by a flat JSON file.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mkondo/facedrill/internal/model"
)

// Logical storage keys shared by all components.
const (
	KeySession        = "faceTrainer.session"
	KeyStats          = "faceTrainer.stats"
	KeyLastRegion     = "faceTrainer.lastRegion"
	KeyLastDifficulty = "faceTrainer.lastDifficulty"
)

// FaceDataKey returns the key holding a region's FaceRecord list.
func FaceDataKey(region model.Region) string {
	return fmt.Sprintf("face-data-%s", region)
}

// FaceImageKey returns the key holding one face's image blob.
func FaceImageKey(id string) string {
	return fmt.Sprintf("face-image-%s", id)
}

// ErrCapacity is returned by a backend whose hard size ceiling is exceeded.
var ErrCapacity = errors.New("storage capacity exceeded")

// Backend is one storage tier. Values are opaque JSON documents.
type Backend interface {
	Save(ctx context.Context, key string, value []byte) error
	Load(ctx context.Context, key string) (value []byte, found bool, err error)
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Name() string
}

// EvictFunc frees one domain record to recover from ErrCapacity.
type EvictFunc func(ctx context.Context) error

// Store tries the primary backend first on every call and falls back to the
// secondary tier on failure. Reads that hit only the fallback tier migrate
// the value into the primary before returning it.
type Store struct {
	primary  Backend
	fallback Backend
	evict    EvictFunc
	log      *zap.Logger
}

// New builds a tiered store. Either backend may be nil when unavailable,
// but not both.
func New(primary, fallback Backend, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{primary: primary, fallback: fallback, log: log}
}

// SetEvictFunc installs the capacity-recovery hook. The store calls it once
// when the fallback tier reports ErrCapacity, then retries the write exactly
// once before surfacing the error.
func (s *Store) SetEvictFunc(fn EvictFunc) {
	s.evict = fn
}

// Save marshals value to JSON and writes it to the first tier that accepts it.
func (s *Store) Save(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	if s.primary != nil {
		if err := s.primary.Save(ctx, key, raw); err == nil {
			return nil
		} else {
			s.log.Warn("primary save failed, using fallback",
				zap.String("key", key), zap.String("backend", s.primary.Name()), zap.Error(err))
		}
	}
	if s.fallback == nil {
		return fmt.Errorf("failed to save %s: no backend available", key)
	}

	err = s.fallback.Save(ctx, key, raw)
	if errors.Is(err, ErrCapacity) && s.evict != nil {
		if evictErr := s.evict(ctx); evictErr != nil {
			return fmt.Errorf("failed to save %s after eviction attempt: %w", key, err)
		}
		err = s.fallback.Save(ctx, key, raw)
	}
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// Load reads key into the target, trying the primary tier first. A hit in the
// fallback tier is migrated: written through to the primary and, when that
// succeeds, deleted from the fallback. Returns false when the key is absent
// in both tiers.
func (s *Store) Load(ctx context.Context, key string, into any) (bool, error) {
	if s.primary != nil {
		raw, found, err := s.primary.Load(ctx, key)
		if err != nil {
			s.log.Warn("primary load failed, trying fallback",
				zap.String("key", key), zap.Error(err))
		} else if found {
			return true, unmarshalValue(key, raw, into)
		}
	}
	if s.fallback == nil {
		return false, nil
	}

	raw, found, err := s.fallback.Load(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if !found {
		return false, nil
	}
	s.migrate(ctx, key, raw)
	return true, unmarshalValue(key, raw, into)
}

func (s *Store) migrate(ctx context.Context, key string, raw []byte) {
	if s.primary == nil {
		return
	}
	if err := s.primary.Save(ctx, key, raw); err != nil {
		s.log.Warn("migration to primary failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.fallback.Remove(ctx, key); err != nil {
		s.log.Warn("failed to drop migrated legacy copy", zap.String("key", key), zap.Error(err))
		return
	}
	s.log.Debug("migrated legacy value to primary", zap.String("key", key))
}

// Remove deletes key from both tiers. Absence is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	var firstErr error
	if s.primary != nil {
		if err := s.primary.Remove(ctx, key); err != nil {
			firstErr = err
		}
	}
	if s.fallback != nil {
		if err := s.fallback.Remove(ctx, key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return fmt.Errorf("failed to remove %s: %w", key, firstErr)
	}
	return nil
}

// Clear wipes both tiers.
func (s *Store) Clear(ctx context.Context) error {
	var firstErr error
	if s.primary != nil {
		if err := s.primary.Clear(ctx); err != nil {
			firstErr = err
		}
	}
	if s.fallback != nil {
		if err := s.fallback.Clear(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return fmt.Errorf("failed to clear storage: %w", firstErr)
	}
	return nil
}

func unmarshalValue(key string, raw []byte, into any) error {
	if err := json.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}
