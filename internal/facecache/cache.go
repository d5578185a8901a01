// Package facecache generates face records with plausible demographics and
// keeps a bounded per-region pool of them, with the image payloads stored
// separately from the metadata lists.
package facecache

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkondo/facedrill/internal/faceapi"
	"github.com/mkondo/facedrill/internal/model"
	"github.com/mkondo/facedrill/internal/pick"
	"github.com/mkondo/facedrill/internal/storage"
)

// MaxFacesPerRegion bounds how many faces a region keeps before the oldest
// is evicted.
const MaxFacesPerRegion = 200

// ImageSource resolves a displayable image URL for a region.
type ImageSource interface {
	FetchFace(ctx context.Context, region model.Region) string
}

// ImageOptimizer shrinks an image URL to the cache bound.
type ImageOptimizer interface {
	Optimize(ctx context.Context, imageURL string) string
}

// Cache is the per-region face pool. It assumes a single process owns the
// underlying store; the mutex only serializes access between goroutines of
// that process. Store writes happen outside the mutex so the capacity
// eviction hook can re-enter the cache safely.
type Cache struct {
	store *storage.Store
	src   ImageSource
	opt   ImageOptimizer
	log   *zap.Logger

	maxPerRegion int

	mu     sync.Mutex
	rnd    *rand.Rand
	faces  map[model.Region][]model.FaceRecord
	known  map[model.Region]bool
	inited bool
}

// Option adjusts Cache construction.
type Option func(*Cache)

// WithMaxPerRegion overrides the per-region pool bound (tests).
func WithMaxPerRegion(n int) Option {
	return func(c *Cache) { c.maxPerRegion = n }
}

// WithRand seeds demographic generation (tests).
func WithRand(rnd *rand.Rand) Option {
	return func(c *Cache) { c.rnd = rnd }
}

// New builds a Cache and registers it as the store's capacity eviction hook:
// when a fallback write hits the size ceiling, the globally oldest face is
// dropped to make room.
func New(store *storage.Store, src ImageSource, opt ImageOptimizer, log *zap.Logger, opts ...Option) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Cache{
		store:        store,
		src:          src,
		opt:          opt,
		log:          log,
		maxPerRegion: MaxFacesPerRegion,
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
		faces:        map[model.Region][]model.FaceRecord{},
		known:        map[model.Region]bool{},
	}
	for _, o := range opts {
		o(c)
	}
	store.SetEvictFunc(c.removeOldestGlobal)
	return c
}

// Init loads every region's face list into memory. Calling it again is a
// no-op.
func (c *Cache) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inited {
		return nil
	}
	for _, region := range model.AllRegions {
		c.loadRegionLocked(ctx, region)
	}
	c.inited = true
	return nil
}

// loadRegionLocked reads the region's stored face list. Unreadable data is
// replaced with an empty list so one corrupt value never takes the whole
// cache down.
func (c *Cache) loadRegionLocked(ctx context.Context, region model.Region) {
	if c.known[region] {
		return
	}
	var list []model.FaceRecord
	if _, err := c.store.Load(ctx, storage.FaceDataKey(region), &list); err != nil {
		c.log.Warn("stored face list unreadable, starting empty",
			zap.String("region", string(region)), zap.Error(err))
		list = nil
	}
	c.faces[region] = list
	c.known[region] = true
}

// demographic weightings for generated faces
var (
	genderChoices = []pick.Choice[model.Gender]{
		{Value: model.GenderMale, Weight: 2},
		{Value: model.GenderFemale, Weight: 3},
	}
	ageChoices = []pick.Choice[model.AgeGroup]{
		{Value: model.AgeTeens, Weight: 1},
		{Value: model.AgeTwenties, Weight: 3},
		{Value: model.AgeThirties, Weight: 2},
		{Value: model.AgeFourtiesFifties, Weight: 3},
		{Value: model.AgeSixtiesPlus, Weight: 2},
	}
)

// GenerateFace creates one new face for the region: weighted demographics,
// a fetched and optimized image, and a fresh record appended to the pool.
// When the pool is at capacity the oldest records are evicted first.
func (c *Cache) GenerateFace(ctx context.Context, region model.Region) (model.GeneratedFace, error) {
	img := c.opt.Optimize(ctx, c.src.FetchFace(ctx, region))

	c.mu.Lock()
	c.loadRegionLocked(ctx, region)

	gender := pick.Weighted(c.rnd, genderChoices)
	ageGroup := pick.Weighted(c.rnd, ageChoices)
	lo, hi := ageGroup.AgeRange()
	rec := model.FaceRecord{
		ID:       uuid.NewString(),
		Gender:   gender,
		Age:      pick.UniformInt(c.rnd, lo, hi),
		AgeGroup: ageGroup,
		Region:   region,
		Created:  time.Now().UnixMilli(),
	}
	rec.FilePath = fmt.Sprintf("assets/face-data/%s/%s.jpg", region, rec.ID)

	var evicted []model.FaceRecord
	for len(c.faces[region]) >= c.maxPerRegion {
		evicted = append(evicted, c.popOldestLocked(region))
	}
	c.faces[region] = append(c.faces[region], rec)
	snapshot := c.snapshotLocked(region)
	c.mu.Unlock()

	for _, old := range evicted {
		if err := c.store.Remove(ctx, storage.FaceImageKey(old.ID)); err != nil {
			return model.GeneratedFace{}, err
		}
	}
	if err := c.persistRegion(ctx, region, snapshot); err != nil {
		return model.GeneratedFace{}, err
	}
	if err := c.store.Save(ctx, storage.FaceImageKey(rec.ID), img); err != nil {
		return model.GeneratedFace{}, fmt.Errorf("failed to save face image: %w", err)
	}

	c.log.Debug("generated face",
		zap.String("region", string(region)),
		zap.String("id", rec.ID),
		zap.Int("age", rec.Age))
	return model.GeneratedFace{FaceRecord: rec, ImageURL: img}, nil
}

// GetRandomFaces returns count distinct faces for the region, generating new
// ones first when the pool is short.
func (c *Cache) GetRandomFaces(ctx context.Context, region model.Region, count int) ([]model.GeneratedFace, error) {
	c.mu.Lock()
	c.loadRegionLocked(ctx, region)
	deficit := count - len(c.faces[region])
	c.mu.Unlock()

	for i := 0; i < deficit; i++ {
		if _, err := c.GenerateFace(ctx, region); err != nil {
			return nil, err
		}
	}

	c.mu.Lock()
	pool := c.faces[region]
	if count > len(pool) {
		count = len(pool)
	}
	picked := pick.Sample(c.rnd, pool, count)
	c.mu.Unlock()

	return c.attachImages(ctx, picked)
}

// GenerateFacesForTest returns count faces for a test run. Below the
// per-region cap every face is freshly generated; at the cap only a fifth
// are, with the matching evictions handled by GenerateFace, and the rest
// come from the existing pool.
func (c *Cache) GenerateFacesForTest(ctx context.Context, region model.Region, count int) ([]model.GeneratedFace, error) {
	c.mu.Lock()
	c.loadRegionLocked(ctx, region)
	atCap := len(c.faces[region]) >= c.maxPerRegion
	c.mu.Unlock()

	fresh := count
	if atCap {
		fresh = (count + 4) / 5
		if fresh < 1 {
			fresh = 1
		}
		if fresh > count {
			fresh = count
		}
	}

	out := make([]model.GeneratedFace, 0, count)
	seen := map[string]bool{}
	for i := 0; i < fresh; i++ {
		face, err := c.GenerateFace(ctx, region)
		if err != nil {
			return nil, err
		}
		out = append(out, face)
		seen[face.ID] = true
	}
	if len(out) == count {
		return out, nil
	}

	// Sample a full count so duplicates of the fresh faces can be skipped
	// without coming up short.
	rest, err := c.GetRandomFaces(ctx, region, count)
	if err != nil {
		return nil, err
	}
	for _, face := range rest {
		if len(out) == count {
			break
		}
		if seen[face.ID] {
			continue
		}
		out = append(out, face)
		seen[face.ID] = true
	}
	return out, nil
}

// GetFaceCount reports the region's pool size.
func (c *Cache) GetFaceCount(ctx context.Context, region model.Region) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadRegionLocked(ctx, region)
	return len(c.faces[region]), nil
}

// GetFaceImage loads a stored image by face id. An absent image yields the
// default asset rather than an error.
func (c *Cache) GetFaceImage(ctx context.Context, id string) (string, error) {
	var img string
	ok, err := c.store.Load(ctx, storage.FaceImageKey(id), &img)
	if err != nil {
		return "", fmt.Errorf("failed to load face image %s: %w", id, err)
	}
	if !ok || img == "" {
		return faceapi.DefaultFaceAsset, nil
	}
	return img, nil
}

// RemoveOldestImage evicts the region's oldest face record and its image.
func (c *Cache) RemoveOldestImage(ctx context.Context, region model.Region) error {
	c.mu.Lock()
	c.loadRegionLocked(ctx, region)
	if len(c.faces[region]) == 0 {
		c.mu.Unlock()
		return nil
	}
	oldest := c.popOldestLocked(region)
	snapshot := c.snapshotLocked(region)
	c.mu.Unlock()

	if err := c.store.Remove(ctx, storage.FaceImageKey(oldest.ID)); err != nil {
		return err
	}
	if err := c.persistRegion(ctx, region, snapshot); err != nil {
		return err
	}
	c.log.Debug("evicted oldest face",
		zap.String("region", string(region)), zap.String("id", oldest.ID))
	return nil
}

// ClearRegionData drops the region's face list and every image it references.
func (c *Cache) ClearRegionData(ctx context.Context, region model.Region) error {
	c.mu.Lock()
	c.loadRegionLocked(ctx, region)
	dropped := c.faces[region]
	c.faces[region] = nil
	c.mu.Unlock()

	for _, rec := range dropped {
		if err := c.store.Remove(ctx, storage.FaceImageKey(rec.ID)); err != nil {
			return err
		}
	}
	if err := c.store.Remove(ctx, storage.FaceDataKey(region)); err != nil {
		return err
	}
	c.log.Info("cleared region faces", zap.String("region", string(region)))
	return nil
}

// ClearAllData drops every region's pool.
func (c *Cache) ClearAllData(ctx context.Context) error {
	for _, region := range model.AllRegions {
		if err := c.ClearRegionData(ctx, region); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cache) attachImages(ctx context.Context, recs []model.FaceRecord) ([]model.GeneratedFace, error) {
	out := make([]model.GeneratedFace, 0, len(recs))
	for _, rec := range recs {
		img, err := c.GetFaceImage(ctx, rec.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, model.GeneratedFace{FaceRecord: rec, ImageURL: img})
	}
	return out, nil
}

// popOldestLocked removes and returns the region's oldest record. Insertion
// order breaks timestamp ties.
func (c *Cache) popOldestLocked(region model.Region) model.FaceRecord {
	pool := c.faces[region]
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].Created < pool[j].Created })
	oldest := pool[0]
	c.faces[region] = pool[1:]
	return oldest
}

func (c *Cache) snapshotLocked(region model.Region) []model.FaceRecord {
	snapshot := make([]model.FaceRecord, len(c.faces[region]))
	copy(snapshot, c.faces[region])
	return snapshot
}

// removeOldestGlobal is the store's capacity eviction hook. It drops the
// oldest record across all regions.
func (c *Cache) removeOldestGlobal(ctx context.Context) error {
	c.mu.Lock()
	var (
		target model.Region
		found  bool
		oldest int64
	)
	for _, region := range model.AllRegions {
		c.loadRegionLocked(ctx, region)
		for _, rec := range c.faces[region] {
			if !found || rec.Created < oldest {
				target, oldest, found = region, rec.Created, true
			}
		}
	}
	c.mu.Unlock()

	if !found {
		return fmt.Errorf("no faces left to evict")
	}
	return c.RemoveOldestImage(ctx, target)
}

func (c *Cache) persistRegion(ctx context.Context, region model.Region, snapshot []model.FaceRecord) error {
	if err := c.store.Save(ctx, storage.FaceDataKey(region), snapshot); err != nil {
		return fmt.Errorf("failed to save face list for %s: %w", region, err)
	}
	return nil
}
