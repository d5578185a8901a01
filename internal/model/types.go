// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Region identifies one of the fixed face/name data partitions.
type Region string

// Supported regions.
const (
	RegionJapan  Region = "japan"
	RegionUSA    Region = "usa"
	RegionEurope Region = "europe"
	RegionAsia   Region = "asia"
)

// AllRegions lists every supported region in display order.
var AllRegions = []Region{RegionJapan, RegionUSA, RegionEurope, RegionAsia}

// ParseRegion validates a region identifier.
func ParseRegion(s string) (Region, error) {
	r := Region(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllRegions {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown region %q (available: japan, usa, europe, asia)", s)
}

// Gender of a synthetic face or name.
type Gender string

// Gender values.
const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// AgeGroup is a coarse age band for face metadata.
type AgeGroup string

// Age bands.
const (
	AgeTeens           AgeGroup = "teens"
	AgeTwenties        AgeGroup = "twenties"
	AgeThirties        AgeGroup = "thirties"
	AgeFourtiesFifties AgeGroup = "fourties_fifties"
	AgeSixtiesPlus     AgeGroup = "sixties_plus"
)

// AgeRange returns the inclusive numeric bounds of an age band.
func (g AgeGroup) AgeRange() (min, max int) {
	switch g {
	case AgeTeens:
		return 13, 19
	case AgeTwenties:
		return 20, 29
	case AgeThirties:
		return 30, 39
	case AgeFourtiesFifties:
		return 40, 59
	case AgeSixtiesPlus:
		return 60, 85
	default:
		return 20, 40
	}
}

// FaceRecord is the stored metadata for one generated face. Immutable once
// created except FilePath, which is set when the image blob is committed.
type FaceRecord struct {
	ID       string   `json:"id"`
	Gender   Gender   `json:"gender"`
	Age      int      `json:"age"`
	AgeGroup AgeGroup `json:"ageGroup"`
	Region   Region   `json:"region"`
	Created  int64    `json:"created"` // unix milliseconds
	FilePath string   `json:"filePath,omitempty"`
}

// CreatedTime returns the creation timestamp as a time.Time.
func (r FaceRecord) CreatedTime() time.Time {
	return time.UnixMilli(r.Created)
}

// GeneratedFace pairs a FaceRecord with the displayable form of its image.
type GeneratedFace struct {
	FaceRecord
	ImageURL string `json:"imageData"`
}

// Name is one synthetic name entry from a region's name table.
type Name struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Gender    Gender `json:"gender"`
}

// Display formats the full name in the region's customary order.
func (n Name) Display(region Region) string {
	if n.FirstName == "" || n.LastName == "" {
		if n.FirstName != "" {
			return n.FirstName
		}
		return n.LastName
	}
	if region == RegionJapan || region == RegionAsia {
		return n.LastName + " " + n.FirstName
	}
	return n.FirstName + " " + n.LastName
}

// FacePair is one face/name pairing inside a learning run.
type FacePair struct {
	ID      string `json:"id"`
	Name    Name   `json:"name"`
	FaceURL string `json:"faceUrl"`
	Region  Region `json:"region"`
}

// SessionSnapshot is the resumable state of an in-progress learning run.
// At most one snapshot exists at a time.
type SessionSnapshot struct {
	Region       Region     `json:"region"`
	Difficulty   string     `json:"difficulty"`
	CurrentIndex int        `json:"currentIndex"`
	Pairs        []FacePair `json:"facesAndNames"`
	TimePerFace  int        `json:"timePerFace"` // seconds
}

// Valid reports whether the snapshot is internally consistent.
func (s *SessionSnapshot) Valid() bool {
	if s == nil || len(s.Pairs) == 0 {
		return false
	}
	return s.CurrentIndex >= 0 && s.CurrentIndex < len(s.Pairs)
}

// TestAnswer records the outcome for a single face in a test pass.
type TestAnswer struct {
	FaceURL    string `json:"faceUrl"`
	Name       Name   `json:"name"`
	UserAnswer *Name  `json:"userAnswer"`
	Correct    bool   `json:"correct"`
}

// TestResult is one completed test pass, fed into the stats aggregate.
type TestResult struct {
	Region       Region       `json:"region"`
	CorrectCount int          `json:"correctCount"`
	TotalCount   int          `json:"totalCount"`
	Faces        []TestAnswer `json:"faces"`
	Timestamp    int64        `json:"timestamp"` // unix milliseconds
}

// Score returns the result as a 0-100 percentage.
func (r TestResult) Score() float64 {
	if r.TotalCount == 0 {
		return 0
	}
	return float64(r.CorrectCount) / float64(r.TotalCount) * 100
}

// RegionStat is the running accuracy aggregate for one region.
type RegionStat struct {
	Tests        int     `json:"tests"`
	AverageScore float64 `json:"averageScore"`
	LastTestDate int64   `json:"lastTestDate"` // unix milliseconds
}

// WeakFace is a face/name pair the user keeps getting wrong.
type WeakFace struct {
	FaceURL       string `json:"faceUrl"`
	Name          Name   `json:"name"`
	Region        Region `json:"region"`
	Count         int    `json:"count"`
	LastIncorrect int64  `json:"lastIncorrect"` // unix milliseconds
}

// StatsData is the process-wide longitudinal statistics aggregate.
type StatsData struct {
	TotalTests    int                    `json:"totalTests"`
	AverageScore  float64                `json:"averageScore"`
	RegionStats   map[Region]*RegionStat `json:"regionStats"`
	WeakFaces     []WeakFace             `json:"weakFaces"`
	RecentResults []TestResult           `json:"recentResults"`
	LastTestDate  int64                  `json:"lastTestDate"` // unix milliseconds
}

// NewStatsData returns an empty aggregate with initialized maps.
func NewStatsData() StatsData {
	return StatsData{RegionStats: map[Region]*RegionStat{}}
}

// DifficultyLevel defines one practice difficulty preset.
type DifficultyLevel struct {
	Key         string
	Name        string
	Count       int
	TimePerFace int // seconds
}
