package trainer

import "github.com/mkondo/facedrill/internal/model"

// Levels are the built-in difficulty presets, easiest first.
var Levels = []model.DifficultyLevel{
	{Key: "easy", Name: "Easy", Count: 5, TimePerFace: 10},
	{Key: "medium", Name: "Medium", Count: 10, TimePerFace: 8},
	{Key: "hard", Name: "Hard", Count: 15, TimePerFace: 6},
}

// DefaultLevel is used when no preference is stored.
var DefaultLevel = Levels[1]

// LevelByKey looks up a preset by its key.
func LevelByKey(key string) (model.DifficultyLevel, bool) {
	for _, l := range Levels {
		if l.Key == key {
			return l, true
		}
	}
	return model.DifficultyLevel{}, false
}

// LevelByCount returns the preset whose face count is closest to n. Ties go
// to the easier preset.
func LevelByCount(n int) model.DifficultyLevel {
	best := Levels[0]
	bestDiff := abs(n - best.Count)
	for _, l := range Levels[1:] {
		if d := abs(n - l.Count); d < bestDiff {
			best, bestDiff = l, d
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
