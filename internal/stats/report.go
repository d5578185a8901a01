package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/mkondo/facedrill/internal/model"
)

const sparkChars = " .:-=+*#%@"

// RenderSummary prints the statistics overview: totals, per-region table,
// weak faces and a sparkline of recent scores.
func RenderSummary(w io.Writer, data model.StatsData, progress int) error {
	if data.TotalTests == 0 {
		_, err := fmt.Fprintln(w, "No test results yet.")
		return err
	}

	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Tests: %d\n", data.TotalTests); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg score: %.1f%%\n", data.AverageScore); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Progress: %d%% %s\n", progress, progressBar(progress, barWidth())); err != nil {
		return err
	}
	if data.LastTestDate > 0 {
		last := time.UnixMilli(data.LastTestDate).Format("2006-01-02 15:04")
		if _, err := fmt.Fprintf(w, "Last test: %s\n", last); err != nil {
			return err
		}
	}

	if err := renderRegions(w, data); err != nil {
		return err
	}
	if err := RenderWeakFaces(w, data.WeakFaces); err != nil {
		return err
	}
	return renderRecent(w, data.RecentResults)
}

func renderRegions(w io.Writer, data model.StatsData) error {
	if len(data.RegionStats) == 0 {
		return nil
	}
	regions := make([]model.Region, 0, len(data.RegionStats))
	for region := range data.RegionStats {
		regions = append(regions, region)
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i] < regions[j] })

	tbl := newTable([]int{alignLeft, alignRight, alignRight}, "Region", "Tests", "Avg")
	for _, region := range regions {
		rs := data.RegionStats[region]
		tbl.addRow(string(region), fmt.Sprintf("%d", rs.Tests), fmt.Sprintf("%.1f%%", rs.AverageScore))
	}

	if _, err := fmt.Fprintln(w, "\nRegions"); err != nil {
		return err
	}
	return tbl.writeTo(w)
}

// RenderWeakFaces prints the weak-face table, most-missed first.
func RenderWeakFaces(w io.Writer, weak []model.WeakFace) error {
	if len(weak) == 0 {
		return nil
	}
	tbl := newTable([]int{alignLeft, alignLeft, alignRight}, "Name", "Region", "Missed")
	for _, wf := range weak {
		tbl.addRow(wf.Name.Display(wf.Region), string(wf.Region), fmt.Sprintf("%d", wf.Count))
	}

	if _, err := fmt.Fprintln(w, "\nWeak faces"); err != nil {
		return err
	}
	return tbl.writeTo(w)
}

func renderRecent(w io.Writer, recent []model.TestResult) error {
	if len(recent) == 0 {
		return nil
	}
	// recent results are stored newest first, plot oldest to newest
	scores := make([]float64, len(recent))
	for i, r := range recent {
		scores[len(recent)-1-i] = r.Score()
	}
	if _, err := fmt.Fprintf(w, "\nRecent scores: %s\n", Sparkline(scores)); err != nil {
		return err
	}
	return nil
}

// barWidth sizes the progress bar to half the terminal, with a sane default
// when the output is not a terminal.
func barWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w >= 40 {
		return w / 2
	}
	return 30
}

func progressBar(progress, width int) string {
	if width < 4 {
		width = 4
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	filled := progress * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}
