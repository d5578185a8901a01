package tui

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkondo/facedrill/internal/model"
	"github.com/mkondo/facedrill/internal/session"
	"github.com/mkondo/facedrill/internal/stats"
	"github.com/mkondo/facedrill/internal/storage"
	"github.com/mkondo/facedrill/internal/trainer"
)

type staticPool struct{}

func (staticPool) GetRandomFaces(_ context.Context, region model.Region, count int) ([]model.GeneratedFace, error) {
	out := make([]model.GeneratedFace, count)
	for i := range out {
		out[i] = model.GeneratedFace{
			FaceRecord: model.FaceRecord{ID: fmt.Sprintf("face-%d", i), Region: region},
			ImageURL:   "assets/default-face.jpg",
		}
	}
	return out, nil
}

func (p staticPool) GenerateFacesForTest(ctx context.Context, region model.Region, count int) ([]model.GeneratedFace, error) {
	return p.GetRandomFaces(ctx, region, count)
}

func newTestModel(t *testing.T) (*Model, *trainer.Trainer) {
	t.Helper()
	dir := t.TempDir()
	primary, err := storage.OpenSQLite(filepath.Join(dir, "tui.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = primary.Close()
	})
	kv := storage.New(primary, storage.NewFlatFile(filepath.Join(dir, "fallback.json"), storage.DefaultFlatFileLimit), nil)
	sessions := session.New(kv, nil)
	agg := stats.New(kv, nil)
	require.NoError(t, agg.Init(context.Background()))

	tr := trainer.New(staticPool{}, sessions, agg, nil,
		trainer.WithRand(rand.New(rand.NewSource(5))),
		trainer.WithSleep(func(time.Duration) {}))

	level, ok := trainer.LevelByKey("easy")
	require.True(t, ok)
	m := NewModel(context.Background(), tr, model.RegionUSA, level, nil, nil)
	return m, tr
}

func key(s string) tea.KeyMsg {
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestFreshModelStartsLearning(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Equal(t, phaseLearn, m.phase)
	assert.Contains(t, m.View(), "Memorize")
	assert.Contains(t, m.View(), "face 1/5")
}

func TestLearningNavigatesForwardAndBack(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(key("l"))
	assert.Equal(t, 1, m.snap.CurrentIndex)
	m.Update(key("h"))
	assert.Equal(t, 0, m.snap.CurrentIndex)
	// cannot go before the first card
	m.Update(key("h"))
	assert.Equal(t, 0, m.snap.CurrentIndex)
}

func TestLearningRollsIntoQuiz(t *testing.T) {
	m, _ := newTestModel(t)

	for i := 0; i < len(m.snap.Pairs); i++ {
		m.Update(key("l"))
	}
	assert.Equal(t, phaseQuiz, m.phase)
	require.Len(t, m.options, trainer.OptionCount)
	assert.Contains(t, m.View(), "Who is this?")
}

func TestQuizCompletesIntoResults(t *testing.T) {
	m, tr := newTestModel(t)

	for i := 0; i < len(m.snap.Pairs); i++ {
		m.Update(key("l"))
	}
	require.Equal(t, phaseQuiz, m.phase)

	for m.phase == phaseQuiz {
		// always answer the first option
		m.Update(key("1"))
	}
	require.Equal(t, phaseResults, m.phase)
	require.NotNil(t, m.result)
	assert.Equal(t, 5, m.result.TotalCount)
	assert.Contains(t, m.View(), "Score:")

	// the session is gone once the test is recorded
	stored, err := tr.Resume(context.Background())
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestResumePromptShownForStoredSession(t *testing.T) {
	m, tr := newTestModel(t)

	// quit mid-run keeps the session, a new model should offer to resume
	m.Update(key("l"))
	snap, err := tr.Resume(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)

	level, _ := trainer.LevelByKey("easy")
	resumed := NewModel(context.Background(), tr, model.RegionUSA, level, snap, nil)
	assert.Equal(t, phaseResume, resumed.phase)
	assert.Contains(t, resumed.View(), "Resume previous session?")
	assert.Contains(t, resumed.View(), "face 2 of 5")

	resumed.Update(key("y"))
	assert.Equal(t, phaseLearn, resumed.phase)
	assert.Equal(t, 1, resumed.snap.CurrentIndex)
}

func TestResumeDeclinedStartsOver(t *testing.T) {
	m, tr := newTestModel(t)
	m.Update(key("l"))

	snap, err := tr.Resume(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)

	level, _ := trainer.LevelByKey("easy")
	resumed := NewModel(context.Background(), tr, model.RegionUSA, level, snap, nil)
	resumed.Update(key("n"))
	assert.Equal(t, phaseLearn, resumed.phase)
	assert.Equal(t, 0, resumed.snap.CurrentIndex)
}
