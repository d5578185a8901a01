// Package trainer builds and drives practice runs: pairing cached faces with
// names, tracking the in-progress session and folding finished tests into
// the statistics.
package trainer

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/mkondo/facedrill/internal/model"
	"github.com/mkondo/facedrill/internal/names"
	"github.com/mkondo/facedrill/internal/pick"
	"github.com/mkondo/facedrill/internal/session"
	"github.com/mkondo/facedrill/internal/stats"
)

const (
	fetchAttempts = 3
	retryDelay    = 500 * time.Millisecond

	// OptionCount is how many name choices a test question offers.
	OptionCount = 4
)

// FacePool supplies faces for a run.
type FacePool interface {
	GetRandomFaces(ctx context.Context, region model.Region, count int) ([]model.GeneratedFace, error)
	GenerateFacesForTest(ctx context.Context, region model.Region, count int) ([]model.GeneratedFace, error)
}

// Trainer orchestrates practice runs.
type Trainer struct {
	pool     FacePool
	sessions *session.Store
	stats    *stats.Aggregator
	log      *zap.Logger

	rnd   *rand.Rand
	sleep func(time.Duration)
	now   func() time.Time
}

// Option adjusts Trainer construction.
type Option func(*Trainer)

// WithRand seeds name selection and shuffling (tests).
func WithRand(rnd *rand.Rand) Option {
	return func(t *Trainer) { t.rnd = rnd }
}

// WithSleep overrides the retry delay sleeper (tests).
func WithSleep(sleep func(time.Duration)) Option {
	return func(t *Trainer) { t.sleep = sleep }
}

// WithNow overrides the clock (tests).
func WithNow(now func() time.Time) Option {
	return func(t *Trainer) { t.now = now }
}

// New builds a Trainer.
func New(pool FacePool, sessions *session.Store, agg *stats.Aggregator, log *zap.Logger, opts ...Option) *Trainer {
	if log == nil {
		log = zap.NewNop()
	}
	t := &Trainer{
		pool:     pool,
		sessions: sessions,
		stats:    agg,
		log:      log,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:    time.Sleep,
		now:      time.Now,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// BuildRun assembles a learning run: level.Count faces paired with distinct
// names, persisted as the active session. The chosen region and difficulty
// become the defaults for the next launch.
func (t *Trainer) BuildRun(ctx context.Context, region model.Region, level model.DifficultyLevel) (*model.SessionSnapshot, error) {
	faces, err := t.fetchWithRetry(ctx, region, level.Count, t.pool.GetRandomFaces)
	if err != nil {
		return nil, err
	}
	return t.assemble(ctx, region, level, faces)
}

// BuildTestRun assembles a test run. A share of the faces is freshly
// generated so repeated tests do not recycle the same pool.
func (t *Trainer) BuildTestRun(ctx context.Context, region model.Region, level model.DifficultyLevel) (*model.SessionSnapshot, error) {
	faces, err := t.fetchWithRetry(ctx, region, level.Count, t.pool.GenerateFacesForTest)
	if err != nil {
		return nil, err
	}
	return t.assemble(ctx, region, level, faces)
}

type fetchFunc func(ctx context.Context, region model.Region, count int) ([]model.GeneratedFace, error)

// fetchWithRetry retries transient pool failures a few times before giving
// up.
func (t *Trainer) fetchWithRetry(ctx context.Context, region model.Region, count int, fetch fetchFunc) ([]model.GeneratedFace, error) {
	var lastErr error
	for attempt := 1; attempt <= fetchAttempts; attempt++ {
		faces, err := fetch(ctx, region, count)
		if err == nil {
			if len(faces) == 0 {
				return nil, fmt.Errorf("no faces available for region %s", region)
			}
			return faces, nil
		}
		lastErr = err
		t.log.Warn("face fetch attempt failed",
			zap.Int("attempt", attempt), zap.Error(err))
		if attempt < fetchAttempts {
			t.sleep(retryDelay)
		}
	}
	return nil, fmt.Errorf("failed to fetch faces after %d attempts: %w", fetchAttempts, lastErr)
}

func (t *Trainer) assemble(ctx context.Context, region model.Region, level model.DifficultyLevel, faces []model.GeneratedFace) (*model.SessionSnapshot, error) {
	picked := names.RandomNames(region, len(faces), t.rnd)
	if len(picked) < len(faces) {
		faces = faces[:len(picked)]
	}

	pairs := make([]model.FacePair, len(faces))
	for i, face := range faces {
		pairs[i] = model.FacePair{
			ID:      face.ID,
			Name:    picked[i],
			FaceURL: face.ImageURL,
			Region:  region,
		}
	}

	snap := &model.SessionSnapshot{
		Region:      region,
		Difficulty:  level.Key,
		Pairs:       pairs,
		TimePerFace: level.TimePerFace,
	}
	if err := t.sessions.Save(ctx, snap); err != nil {
		return nil, err
	}
	if err := t.sessions.SaveLastRegion(ctx, region); err != nil {
		return nil, err
	}
	if err := t.sessions.SaveLastDifficulty(ctx, level.Key); err != nil {
		return nil, err
	}
	t.log.Info("built run",
		zap.String("region", string(region)),
		zap.String("difficulty", level.Key),
		zap.Int("faces", len(pairs)))
	return snap, nil
}

// Resume returns the stored session, or nil when there is nothing to resume.
func (t *Trainer) Resume(ctx context.Context) (*model.SessionSnapshot, error) {
	return t.sessions.Load(ctx)
}

// Advance moves the session to the next face and persists the new position.
// It reports whether another face remains.
func (t *Trainer) Advance(ctx context.Context, snap *model.SessionSnapshot) (bool, error) {
	if snap.CurrentIndex+1 >= len(snap.Pairs) {
		return false, nil
	}
	snap.CurrentIndex++
	if err := t.sessions.Save(ctx, snap); err != nil {
		return false, err
	}
	return true, nil
}

// Abandon discards the stored session.
func (t *Trainer) Abandon(ctx context.Context) error {
	return t.sessions.Clear(ctx)
}

// Complete folds the answers into the statistics and clears the session.
func (t *Trainer) Complete(ctx context.Context, snap *model.SessionSnapshot, answers []model.TestAnswer) (model.TestResult, error) {
	correct := 0
	for _, ans := range answers {
		if ans.Correct {
			correct++
		}
	}
	result := model.TestResult{
		Region:       snap.Region,
		CorrectCount: correct,
		TotalCount:   len(answers),
		Faces:        answers,
		Timestamp:    t.now().UnixMilli(),
	}
	if err := t.stats.RecordResult(ctx, result); err != nil {
		return model.TestResult{}, err
	}
	if err := t.sessions.Clear(ctx); err != nil {
		return model.TestResult{}, err
	}
	return result, nil
}

// BuildOptions returns the shuffled answer choices for one question: the
// correct name plus distractors drawn first from the other pairs, then from
// the region's dataset.
func (t *Trainer) BuildOptions(snap *model.SessionSnapshot, idx int) []model.Name {
	correct := snap.Pairs[idx].Name
	options := []model.Name{correct}
	used := map[int]bool{correct.ID: true}

	others := make([]model.Name, 0, len(snap.Pairs)-1)
	for i, pair := range snap.Pairs {
		if i == idx || used[pair.Name.ID] {
			continue
		}
		others = append(others, pair.Name)
		used[pair.Name.ID] = true
	}
	for _, n := range pick.Shuffle(t.rnd, others) {
		if len(options) == OptionCount {
			break
		}
		options = append(options, n)
	}

	// small runs may not carry enough distinct names
	if len(options) < OptionCount {
		for _, n := range names.Names(snap.Region) {
			if len(options) == OptionCount {
				break
			}
			if used[n.ID] {
				continue
			}
			options = append(options, n)
			used[n.ID] = true
		}
	}

	return pick.Shuffle(t.rnd, options)
}
