// Package history aggregates a user's study history into the counts shown
// on the statistics page. All functions are pure: "now" is always passed in.
package history

import (
	"math"
	"time"

	"github.com/conorfennell/stepquiz/internal/domain"
)

// DayLayout is the format of DailyActivity keys.
const DayLayout = "2006-01-02"

// WeekStart is the first day of a calendar week.
const WeekStart = time.Sunday

// MaxLevel is the highest heatmap intensity level.
const MaxLevel = 4

// Counts are the time-bucketed study counts for one history snapshot.
// The buckets are cumulative: everything in Today is also in Week, Month
// and Total.
type Counts struct {
	Today int
	Week  int
	Month int
	Total int
	// DailyActivity maps a DayLayout date to the number of questions whose
	// last study fell on that day.
	DailyActivity map[string]int
}

// startOfDay truncates t to local midnight in t's location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ComputeCounts buckets every studied entry of h relative to now. Calendar
// days are evaluated in now's location. Entries with no LastStudied are
// skipped and do not count toward Total.
//
// Month starts on the first of the month, or on the week start when the
// current week began in the previous month, so Week is always within Month.
func ComputeCounts(h domain.StudyHistory, now time.Time) Counts {
	loc := now.Location()
	today := startOfDay(now)
	weekStart := today.AddDate(0, 0, -int((today.Weekday()-WeekStart+7)%7))
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
	if weekStart.Before(monthStart) {
		monthStart = weekStart
	}

	c := Counts{DailyActivity: make(map[string]int)}
	for _, rec := range h {
		if !rec.Studied() {
			continue
		}
		day := startOfDay(rec.LastStudied.In(loc))
		c.DailyActivity[day.Format(DayLayout)]++
		c.Total++
		if !day.Before(today) {
			c.Today++
		}
		if !day.Before(weekStart) {
			c.Week++
		}
		if !day.Before(monthStart) {
			c.Month++
		}
	}
	return c
}

// HeatmapCell is one day of the activity heatmap.
type HeatmapCell struct {
	Date  string
	Count int
	Level int
}

// Heatmap is a run of days, oldest first, whose length is a multiple of 7.
type Heatmap []HeatmapCell

// Weeks splits the heatmap into 7-day columns.
func (h Heatmap) Weeks() [][]HeatmapCell {
	var weeks [][]HeatmapCell
	for i := 0; i+7 <= len(h); i += 7 {
		weeks = append(weeks, h[i:i+7])
	}
	return weeks
}

// BuildHeatmap lays out weekCount consecutive weeks of activity ending on
// now's day. Levels are scaled against the busiest day anywhere in
// activity, not only the visible window.
func BuildHeatmap(activity map[string]int, weekCount int, now time.Time) Heatmap {
	if weekCount <= 0 {
		return Heatmap{}
	}

	maxCount := 1
	for _, n := range activity {
		if n > maxCount {
			maxCount = n
		}
	}

	days := weekCount * 7
	today := startOfDay(now)
	cells := make(Heatmap, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i).Format(DayLayout)
		count := activity[date]
		cells = append(cells, HeatmapCell{
			Date:  date,
			Count: count,
			Level: level(count, maxCount),
		})
	}
	return cells
}

func level(count, maxCount int) int {
	if count <= 0 {
		return 0
	}
	l := int(math.Ceil(float64(count) / float64(maxCount) * MaxLevel))
	return min(l, MaxLevel)
}
