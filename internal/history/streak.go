package history

import (
	"sort"
	"time"

	"github.com/conorfennell/stepquiz/internal/domain"
)

// StreakInfo describes runs of consecutive active days.
type StreakInfo struct {
	// Current counts the active days ending today, or ending yesterday when
	// nothing has been studied yet today.
	Current int
	Longest int
}

// Streak computes streaks from the DailyActivity of ComputeCounts.
func Streak(activity map[string]int, now time.Time) StreakInfo {
	var info StreakInfo

	day := startOfDay(now)
	if activity[day.Format(DayLayout)] == 0 {
		day = day.AddDate(0, 0, -1)
	}
	for activity[day.Format(DayLayout)] > 0 {
		info.Current++
		day = day.AddDate(0, 0, -1)
	}

	var dates []time.Time
	for key, n := range activity {
		if n <= 0 {
			continue
		}
		d, err := time.ParseInLocation(DayLayout, key, now.Location())
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	run := 0
	for i, d := range dates {
		if i > 0 && dates[i-1].AddDate(0, 0, 1).Equal(d) {
			run++
		} else {
			run = 1
		}
		info.Longest = max(info.Longest, run)
	}
	return info
}

// MasteryCounts summarise the state flags across a history snapshot.
type MasteryCounts struct {
	Studied  int
	Correct  int
	Errors   int
	Mastered int
}

// Mastery counts flags across every record, studied or not.
func Mastery(h domain.StudyHistory) MasteryCounts {
	var m MasteryCounts
	for _, rec := range h {
		if rec.Studied() {
			m.Studied++
		}
		if rec.IsCorrect {
			m.Correct++
		}
		if rec.IsError {
			m.Errors++
		}
		if rec.IsMastered {
			m.Mastered++
		}
	}
	return m
}
