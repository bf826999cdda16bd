// Package study derives the per-question view of a subject's question list
// from a study history snapshot.
package study

import (
	"math"
	"math/rand/v2"
	"sort"
	"strconv"
	"time"

	"github.com/conorfennell/stepquiz/internal/domain"
	"github.com/conorfennell/stepquiz/internal/render"
)

// Status is the study state of a question in the list view.
type Status int

// The values double as sort weights.
const (
	StatusNew Status = iota
	StatusError
	StatusStudied
	StatusMastered
)

func (s Status) String() string {
	switch s {
	case StatusError:
		return "error"
	case StatusStudied:
		return "studied"
	case StatusMastered:
		return "mastered"
	default:
		return "new"
	}
}

// LabelZH is the Chinese badge text for the status.
func (s Status) LabelZH() string {
	switch s {
	case StatusError:
		return "错题"
	case StatusStudied:
		return "已学习"
	case StatusMastered:
		return "已掌握"
	default:
		return "未学习"
	}
}

// StatusOf resolves a record's status. Mastery wins over errors, and
// errors win over a plain study.
func StatusOf(rec domain.StudyRecord) Status {
	switch {
	case rec.IsMastered:
		return StatusMastered
	case rec.IsError:
		return StatusError
	case rec.Studied():
		return StatusStudied
	default:
		return StatusNew
	}
}

// DaysSince returns whole days elapsed since the record was last studied.
// ok is false when it never was.
func DaysSince(rec domain.StudyRecord, now time.Time) (days int, ok bool) {
	if !rec.Studied() {
		return 0, false
	}
	return int(now.Sub(rec.LastStudied) / (24 * time.Hour)), true
}

// TagLimit is how many tags a list row shows.
const TagLimit = 3

// Row is one line of a subject's question list.
type Row struct {
	QuestionID string
	Key        string
	Status     Status
	Days       int
	HasDays    bool
	Tags       []string
	// sinceStudied orders rows by recency; never studied sorts last.
	sinceStudied float64
}

// Rows builds the list rows for questions of a subject.
func Rows(subjectKey string, questions []*domain.Question, h domain.StudyHistory, now time.Time) []Row {
	rows := make([]Row, 0, len(questions))
	for _, q := range questions {
		key := domain.QuestionKey(subjectKey, q.ID)
		rec := h[key]
		days, ok := DaysSince(rec, now)
		since := math.Inf(1)
		if ok {
			since = float64(now.Sub(rec.LastStudied))
		}
		rows = append(rows, Row{
			QuestionID:   q.ID,
			Key:          key,
			Status:       StatusOf(rec),
			Days:         days,
			HasDays:      ok,
			Tags:         render.FormatTags(q.Tags, TagLimit),
			sinceStudied: since,
		})
	}
	return rows
}

// Sort columns.
const (
	ByID     = "id"
	ByStatus = "status"
	ByDays   = "days"
)

// Sort orders rows in place by column. Unknown columns leave rows as they are.
func Sort(rows []Row, column string, ascending bool) {
	var less func(a, b Row) bool
	switch column {
	case ByID:
		less = func(a, b Row) bool { return lessID(a.QuestionID, b.QuestionID) }
	case ByStatus:
		less = func(a, b Row) bool { return a.Status < b.Status }
	case ByDays:
		less = func(a, b Row) bool { return a.sinceStudied < b.sinceStudied }
	default:
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if ascending {
			return less(rows[i], rows[j])
		}
		return less(rows[j], rows[i])
	})
}

// lessID compares numerically when both ids are numbers.
func lessID(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}

// Shuffle randomises the row order.
func Shuffle(rows []Row, rng *rand.Rand) {
	rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
}

// ErrorQuestions keeps the questions whose record is flagged as an error,
// preserving order.
func ErrorQuestions(subjectKey string, questions []*domain.Question, h domain.StudyHistory) []*domain.Question {
	var out []*domain.Question
	for _, q := range questions {
		if h[domain.QuestionKey(subjectKey, q.ID)].IsError {
			out = append(out, q)
		}
	}
	return out
}

// ErrorCount counts the error rows.
func ErrorCount(rows []Row) int {
	n := 0
	for _, r := range rows {
		if r.Status == StatusError {
			n++
		}
	}
	return n
}

// ErrorKeys returns the sorted keys of every error record across subjects.
func ErrorKeys(h domain.StudyHistory) []string {
	var keys []string
	for key, rec := range h {
		if rec.IsError {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Neighbours returns the ids before and after id in questions. Empty
// strings mean there is no such neighbour; pos is -1 when id is absent.
func Neighbours(questions []*domain.Question, id string) (prev, next string, pos int) {
	for i, q := range questions {
		if q.ID != id {
			continue
		}
		if i > 0 {
			prev = questions[i-1].ID
		}
		if i < len(questions)-1 {
			next = questions[i+1].ID
		}
		return prev, next, i
	}
	return "", "", -1
}
