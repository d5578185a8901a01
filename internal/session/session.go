// Package session persists the in-progress practice run so an interrupted
// drill can be resumed, along with the last chosen region and difficulty.
package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mkondo/facedrill/internal/model"
	"github.com/mkondo/facedrill/internal/storage"
)

// Store reads and writes session state through the tiered key-value store.
type Store struct {
	kv  *storage.Store
	log *zap.Logger
}

// New builds a session Store.
func New(kv *storage.Store, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{kv: kv, log: log}
}

// Save persists the snapshot.
func (s *Store) Save(ctx context.Context, snap *model.SessionSnapshot) error {
	if snap == nil || !snap.Valid() {
		return fmt.Errorf("refusing to save invalid session snapshot")
	}
	if err := s.kv.Save(ctx, storage.KeySession, snap); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load returns the stored snapshot, or nil when none exists. A corrupt or
// structurally invalid snapshot is discarded and reported as absent.
func (s *Store) Load(ctx context.Context) (*model.SessionSnapshot, error) {
	var snap model.SessionSnapshot
	ok, err := s.kv.Load(ctx, storage.KeySession, &snap)
	if err != nil {
		s.log.Warn("discarding unreadable session", zap.Error(err))
		_ = s.kv.Remove(ctx, storage.KeySession)
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	if !snap.Valid() {
		s.log.Warn("discarding invalid session snapshot")
		_ = s.kv.Remove(ctx, storage.KeySession)
		return nil, nil
	}
	return &snap, nil
}

// Clear removes any stored snapshot.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Remove(ctx, storage.KeySession); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// SaveLastRegion records the region preference for the next launch.
func (s *Store) SaveLastRegion(ctx context.Context, region model.Region) error {
	return s.kv.Save(ctx, storage.KeyLastRegion, region)
}

// LastRegion returns the recorded region preference, or ok=false when unset
// or no longer a known region.
func (s *Store) LastRegion(ctx context.Context) (model.Region, bool) {
	var raw string
	ok, err := s.kv.Load(ctx, storage.KeyLastRegion, &raw)
	if err != nil || !ok {
		return "", false
	}
	region, err := model.ParseRegion(raw)
	if err != nil {
		return "", false
	}
	return region, true
}

// SaveLastDifficulty records the difficulty preference for the next launch.
func (s *Store) SaveLastDifficulty(ctx context.Context, key string) error {
	return s.kv.Save(ctx, storage.KeyLastDifficulty, key)
}

// LastDifficulty returns the recorded difficulty preference.
func (s *Store) LastDifficulty(ctx context.Context) (string, bool) {
	var key string
	ok, err := s.kv.Load(ctx, storage.KeyLastDifficulty, &key)
	if err != nil || !ok || key == "" {
		return "", false
	}
	return key, true
}
