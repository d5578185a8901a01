package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// brokenBackend fails every operation, simulating an unavailable primary tier.
type brokenBackend struct{}

func (brokenBackend) Save(ctx context.Context, key string, value []byte) error {
	return errors.New("backend unavailable")
}

func (brokenBackend) Load(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, errors.New("backend unavailable")
}

func (brokenBackend) Remove(ctx context.Context, key string) error {
	return errors.New("backend unavailable")
}

func (brokenBackend) Clear(ctx context.Context) error {
	return errors.New("backend unavailable")
}

func (brokenBackend) Name() string { return "broken" }

func TestTieredSaveFallsBackWhenPrimaryFails(t *testing.T) {
	ctx := context.Background()
	flat := NewFlatFile(filepath.Join(t.TempDir(), "flat.json"), 0)
	store := New(brokenBackend{}, flat, zap.NewNop())

	require.NoError(t, store.Save(ctx, "k", map[string]int{"a": 1}))

	// The flat tier received the write.
	raw, found, err := flat.Load(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"a":1}`, string(raw))

	// A load with the primary still failing returns the same value.
	var got map[string]int
	found, err = store.Load(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, map[string]int{"a": 1}, got)
}

func TestTieredLoadMigratesLegacyValue(t *testing.T) {
	ctx := context.Background()
	primary := openTestSQLite(t)
	flat := NewFlatFile(filepath.Join(t.TempDir(), "flat.json"), 0)

	// Seed only the legacy tier.
	require.NoError(t, flat.Save(ctx, KeySession, []byte(`{"region":"japan"}`)))

	store := New(primary, flat, zap.NewNop())
	var got map[string]string
	found, err := store.Load(ctx, KeySession, &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "japan", got["region"])

	// Migration happened: the primary now holds the value and the legacy
	// copy is gone.
	raw, found, err := primary.Load(ctx, KeySession)
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"region":"japan"}`, string(raw))
	_, found, err = flat.Load(ctx, KeySession)
	require.NoError(t, err)
	assert.False(t, found)

	// A read with the legacy tier cleared still succeeds.
	require.NoError(t, flat.Clear(ctx))
	got = nil
	found, err = store.Load(ctx, KeySession, &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "japan", got["region"])
}

func TestTieredCapacityEvictionRetriesOnce(t *testing.T) {
	ctx := context.Background()
	flat := NewFlatFile(filepath.Join(t.TempDir(), "flat.json"), 100)
	store := New(brokenBackend{}, flat, zap.NewNop())

	require.NoError(t, store.Save(ctx, "old-record", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"))

	evictions := 0
	store.SetEvictFunc(func(ctx context.Context) error {
		evictions++
		return flat.Remove(ctx, "old-record")
	})

	require.NoError(t, store.Save(ctx, "new-record", "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"))
	assert.Equal(t, 1, evictions)

	var got string
	found, err := store.Load(ctx, "new-record", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", got)
	found, err = store.Load(ctx, "old-record", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestTieredCapacityErrorSurfacesWhenEvictionCannotHelp(t *testing.T) {
	ctx := context.Background()
	flat := NewFlatFile(filepath.Join(t.TempDir(), "flat.json"), 16)
	store := New(nil, flat, zap.NewNop())
	store.SetEvictFunc(func(ctx context.Context) error { return nil })

	err := store.Save(ctx, "k", "a value far beyond the tiny ceiling of this store")
	require.ErrorIs(t, err, ErrCapacity)
}

func TestTieredRemoveClearsBothTiers(t *testing.T) {
	ctx := context.Background()
	primary := openTestSQLite(t)
	flat := NewFlatFile(filepath.Join(t.TempDir(), "flat.json"), 0)
	store := New(primary, flat, zap.NewNop())

	require.NoError(t, primary.Save(ctx, "k", []byte(`1`)))
	require.NoError(t, flat.Save(ctx, "k", []byte(`1`)))
	require.NoError(t, store.Remove(ctx, "k"))

	_, found, err := primary.Load(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
	_, found, err = flat.Load(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}
