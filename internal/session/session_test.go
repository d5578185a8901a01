package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkondo/facedrill/internal/model"
	"github.com/mkondo/facedrill/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	primary, err := storage.OpenSQLite(filepath.Join(dir, "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = primary.Close()
	})
	fallback := storage.NewFlatFile(filepath.Join(dir, "fallback.json"), storage.DefaultFlatFileLimit)
	return New(storage.New(primary, fallback, nil), nil)
}

func sampleSnapshot() *model.SessionSnapshot {
	return &model.SessionSnapshot{
		Region:       model.RegionJapan,
		Difficulty:   "medium",
		CurrentIndex: 1,
		TimePerFace:  8,
		Pairs: []model.FacePair{
			{ID: "f1", Name: model.Name{ID: 1, FirstName: "太郎", LastName: "山田", Gender: model.GenderMale}, FaceURL: "data:image/jpeg;base64,x", Region: model.RegionJapan},
			{ID: "f2", Name: model.Name{ID: 2, FirstName: "花子", LastName: "佐藤", Gender: model.GenderFemale}, FaceURL: "data:image/jpeg;base64,y", Region: model.RegionJapan},
		},
	}
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Save(ctx, sampleSnapshot()))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sampleSnapshot(), got)
}

func TestLoadAbsentSessionReturnsNil(t *testing.T) {
	store := newTestStore(t)
	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLoadInvalidSnapshotDiscards(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	// out-of-range index makes the snapshot structurally invalid
	require.NoError(t, store.kv.Save(ctx, storage.KeySession, &model.SessionSnapshot{
		Region:       model.RegionUSA,
		Difficulty:   "easy",
		CurrentIndex: 99,
		TimePerFace:  10,
		Pairs:        []model.FacePair{{ID: "f1", FaceURL: "u", Region: model.RegionUSA}},
	}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	// the broken snapshot is gone for good
	var raw map[string]any
	ok, err := store.kv.Load(ctx, storage.KeySession, &raw)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveRejectsInvalidSnapshot(t *testing.T) {
	store := newTestStore(t)
	err := store.Save(context.Background(), &model.SessionSnapshot{Region: model.RegionJapan})
	require.Error(t, err)
}

func TestClearRemovesSession(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Save(ctx, sampleSnapshot()))
	require.NoError(t, store.Clear(ctx))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLastPreferencesRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, ok := store.LastRegion(ctx)
	assert.False(t, ok)
	_, ok = store.LastDifficulty(ctx)
	assert.False(t, ok)

	require.NoError(t, store.SaveLastRegion(ctx, model.RegionEurope))
	require.NoError(t, store.SaveLastDifficulty(ctx, "hard"))

	region, ok := store.LastRegion(ctx)
	require.True(t, ok)
	assert.Equal(t, model.RegionEurope, region)

	diff, ok := store.LastDifficulty(ctx)
	require.True(t, ok)
	assert.Equal(t, "hard", diff)
}

func TestLastRegionRejectsUnknownValue(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.kv.Save(ctx, storage.KeyLastRegion, "narnia"))
	_, ok := store.LastRegion(ctx)
	assert.False(t, ok)
}
