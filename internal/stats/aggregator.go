// Package stats accumulates test results into long-lived learning statistics
// and renders them for the terminal.
package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/mkondo/facedrill/internal/model"
	"github.com/mkondo/facedrill/internal/storage"
)

const (
	// MaxWeakFaces bounds the persisted weak-face list.
	MaxWeakFaces = 20
	// MaxRecentResults bounds the persisted recent-result list.
	MaxRecentResults = 10

	// weakFaceTTL is how long an uncorrected weak face is remembered.
	weakFaceTTL = 3 * 30 * 24 * time.Hour

	// progressTestTarget is the test count treated as full practice volume.
	progressTestTarget = 30
)

// Aggregator folds test results into persistent statistics. It keeps the
// current snapshot in memory and writes it through on every change.
type Aggregator struct {
	kv   *storage.Store
	log  *zap.Logger
	now  func() time.Time
	data *model.StatsData
}

// Option adjusts Aggregator construction.
type Option func(*Aggregator)

// WithNow overrides the clock (tests).
func WithNow(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// New builds an Aggregator. Call Init before recording results.
func New(kv *storage.Store, log *zap.Logger, opts ...Option) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	a := &Aggregator{kv: kv, log: log, now: time.Now}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Init loads the stored statistics, starting fresh when none exist.
func (a *Aggregator) Init(ctx context.Context) error {
	data := model.NewStatsData()
	ok, err := a.kv.Load(ctx, storage.KeyStats, &data)
	if err != nil {
		a.log.Warn("stored stats unreadable, starting fresh", zap.Error(err))
		data = model.NewStatsData()
	} else if !ok {
		data = model.NewStatsData()
	}
	if data.RegionStats == nil {
		data.RegionStats = map[model.Region]*model.RegionStat{}
	}
	a.data = &data
	return nil
}

// RecordResult folds one test result into the statistics and persists them.
func (a *Aggregator) RecordResult(ctx context.Context, result model.TestResult) error {
	if a.data == nil {
		if err := a.Init(ctx); err != nil {
			return err
		}
	}
	if result.TotalCount <= 0 {
		return fmt.Errorf("test result has no answers")
	}
	nowMs := a.now().UnixMilli()
	if result.Timestamp == 0 {
		result.Timestamp = nowMs
	}

	score := result.Score()

	// running mean, overall then per region
	a.data.TotalTests++
	a.data.AverageScore = runningMean(a.data.AverageScore, a.data.TotalTests, score)

	rs := a.data.RegionStats[result.Region]
	if rs == nil {
		rs = &model.RegionStat{}
		a.data.RegionStats[result.Region] = rs
	}
	rs.Tests++
	rs.AverageScore = runningMean(rs.AverageScore, rs.Tests, score)
	rs.LastTestDate = result.Timestamp

	a.updateWeakFaces(result, nowMs)
	a.addRecentResult(result)
	a.data.LastTestDate = result.Timestamp

	if err := a.persist(ctx); err != nil {
		return err
	}
	a.log.Info("recorded test result",
		zap.String("region", string(result.Region)),
		zap.Int("correct", result.CorrectCount),
		zap.Int("total", result.TotalCount),
		zap.Float64("score", score))
	return nil
}

func runningMean(avg float64, n int, value float64) float64 {
	return (avg*float64(n-1) + value) / float64(n)
}

// updateWeakFaces upserts every incorrectly answered face, prunes entries not
// missed within the TTL, and keeps the most-missed MaxWeakFaces.
func (a *Aggregator) updateWeakFaces(result model.TestResult, nowMs int64) {
	for _, ans := range result.Faces {
		if ans.Correct {
			continue
		}
		found := false
		for i := range a.data.WeakFaces {
			wf := &a.data.WeakFaces[i]
			if wf.FaceURL == ans.FaceURL && wf.Name.ID == ans.Name.ID {
				wf.Count++
				wf.LastIncorrect = nowMs
				found = true
				break
			}
		}
		if !found {
			a.data.WeakFaces = append(a.data.WeakFaces, model.WeakFace{
				FaceURL:       ans.FaceURL,
				Name:          ans.Name,
				Region:        result.Region,
				Count:         1,
				LastIncorrect: nowMs,
			})
		}
	}

	cutoff := nowMs - weakFaceTTL.Milliseconds()
	kept := a.data.WeakFaces[:0]
	for _, wf := range a.data.WeakFaces {
		if wf.LastIncorrect > cutoff {
			kept = append(kept, wf)
		}
	}
	a.data.WeakFaces = kept

	sort.SliceStable(a.data.WeakFaces, func(i, j int) bool {
		return a.data.WeakFaces[i].Count > a.data.WeakFaces[j].Count
	})
	if len(a.data.WeakFaces) > MaxWeakFaces {
		a.data.WeakFaces = a.data.WeakFaces[:MaxWeakFaces]
	}
}

// addRecentResult prepends the result, newest first.
func (a *Aggregator) addRecentResult(result model.TestResult) {
	a.data.RecentResults = append([]model.TestResult{result}, a.data.RecentResults...)
	if len(a.data.RecentResults) > MaxRecentResults {
		a.data.RecentResults = a.data.RecentResults[:MaxRecentResults]
	}
}

// GetStats returns a copy of the current statistics snapshot.
func (a *Aggregator) GetStats(ctx context.Context) (model.StatsData, error) {
	if a.data == nil {
		if err := a.Init(ctx); err != nil {
			return model.StatsData{}, err
		}
	}
	out := *a.data
	out.RegionStats = make(map[model.Region]*model.RegionStat, len(a.data.RegionStats))
	for region, rs := range a.data.RegionStats {
		cp := *rs
		out.RegionStats[region] = &cp
	}
	out.WeakFaces = append([]model.WeakFace(nil), a.data.WeakFaces...)
	out.RecentResults = append([]model.TestResult(nil), a.data.RecentResults...)
	return out, nil
}

// GetWeakFaces lists weak faces, optionally filtered to one region and
// capped at limit. A zero limit means no cap.
func (a *Aggregator) GetWeakFaces(ctx context.Context, region model.Region, limit int) ([]model.WeakFace, error) {
	if a.data == nil {
		if err := a.Init(ctx); err != nil {
			return nil, err
		}
	}
	var out []model.WeakFace
	for _, wf := range a.data.WeakFaces {
		if region != "" && wf.Region != region {
			continue
		}
		out = append(out, wf)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetRecentResults lists recent results newest first, capped at limit. A zero
// limit means no cap.
func (a *Aggregator) GetRecentResults(ctx context.Context, limit int) ([]model.TestResult, error) {
	if a.data == nil {
		if err := a.Init(ctx); err != nil {
			return nil, err
		}
	}
	out := append([]model.TestResult(nil), a.data.RecentResults...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Progress estimates overall learning progress as a 0-100 value: practice
// volume weighs 30%, average score 50% and region coverage 20%.
func (a *Aggregator) Progress(ctx context.Context) (int, error) {
	if a.data == nil {
		if err := a.Init(ctx); err != nil {
			return 0, err
		}
	}
	volume := float64(a.data.TotalTests) / progressTestTarget
	if volume > 1 {
		volume = 1
	}
	coverage := float64(len(a.data.RegionStats)) / float64(len(model.AllRegions))
	total := volume*0.3 + a.data.AverageScore/100*0.5 + coverage*0.2
	return int(total*100 + 0.5), nil
}

// Reset discards all statistics.
func (a *Aggregator) Reset(ctx context.Context) error {
	fresh := model.NewStatsData()
	a.data = &fresh
	if err := a.persist(ctx); err != nil {
		return err
	}
	a.log.Info("statistics reset")
	return nil
}

func (a *Aggregator) persist(ctx context.Context) error {
	if err := a.kv.Save(ctx, storage.KeyStats, a.data); err != nil {
		return fmt.Errorf("failed to save stats: %w", err)
	}
	return nil
}
