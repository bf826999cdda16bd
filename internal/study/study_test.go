package study

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/stepquiz/internal/domain"
)

var now = time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)

func TestStatusOf(t *testing.T) {
	testCases := []struct {
		name string
		rec  domain.StudyRecord
		want Status
	}{
		{name: "never studied", rec: domain.StudyRecord{}, want: StatusNew},
		{name: "studied", rec: domain.StudyRecord{LastStudied: now, IsCorrect: true}, want: StatusStudied},
		{name: "error", rec: domain.StudyRecord{LastStudied: now, IsError: true}, want: StatusError},
		{name: "mastered beats error", rec: domain.StudyRecord{LastStudied: now, IsError: true, IsMastered: true}, want: StatusMastered},
		{name: "mastered without study", rec: domain.StudyRecord{IsMastered: true}, want: StatusMastered},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusOf(tc.rec))
		})
	}
}

func TestDaysSince(t *testing.T) {
	days, ok := DaysSince(domain.StudyRecord{LastStudied: now.Add(-50 * time.Hour)}, now)
	assert.True(t, ok)
	assert.Equal(t, 2, days)

	_, ok = DaysSince(domain.StudyRecord{}, now)
	assert.False(t, ok)
}

func questions(ids ...string) []*domain.Question {
	qs := make([]*domain.Question, len(ids))
	for i, id := range ids {
		qs[i] = &domain.Question{ID: id, CorrectAnswer: "A", Tags: domain.Tags{"a", "b", "c", "d"}}
	}
	return qs
}

func ids(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.QuestionID
	}
	return out
}

func sampleRows() []Row {
	h := domain.StudyHistory{
		"cvs_10": {LastStudied: now.Add(-72 * time.Hour), IsError: true},
		"cvs_2":  {LastStudied: now.Add(-1 * time.Hour), IsCorrect: true},
		"cvs_33": {LastStudied: now.Add(-24 * time.Hour), IsMastered: true},
	}
	return Rows("cvs", questions("10", "2", "33", "4"), h, now)
}

func TestRows(t *testing.T) {
	rows := sampleRows()

	require.Len(t, rows, 4)
	assert.Equal(t, "cvs_10", rows[0].Key)
	assert.Equal(t, StatusError, rows[0].Status)
	assert.Equal(t, 3, rows[0].Days)
	assert.True(t, rows[0].HasDays)
	assert.Equal(t, []string{"a", "b", "c"}, rows[0].Tags)
	assert.Equal(t, StatusNew, rows[3].Status)
	assert.False(t, rows[3].HasDays)
	assert.Equal(t, 1, ErrorCount(rows))
}

func TestSort(t *testing.T) {
	testCases := []struct {
		column    string
		ascending bool
		want      []string
	}{
		{ByID, true, []string{"2", "4", "10", "33"}},
		{ByID, false, []string{"33", "10", "4", "2"}},
		{ByStatus, true, []string{"4", "10", "2", "33"}},
		{ByStatus, false, []string{"33", "2", "10", "4"}},
		{ByDays, true, []string{"2", "33", "10", "4"}},
		{ByDays, false, []string{"4", "10", "33", "2"}},
		{"bogus", true, []string{"10", "2", "33", "4"}},
	}

	for _, tc := range testCases {
		name := tc.column
		if !tc.ascending {
			name += " desc"
		}
		t.Run(name, func(t *testing.T) {
			rows := sampleRows()
			Sort(rows, tc.column, tc.ascending)
			assert.Equal(t, tc.want, ids(rows))
		})
	}
}

func TestSort_NonNumericIDs(t *testing.T) {
	rows := Rows("cvs", questions("b", "10", "a"), nil, now)
	Sort(rows, ByID, true)
	assert.Equal(t, []string{"10", "a", "b"}, ids(rows))
}

func TestShuffle(t *testing.T) {
	rows := sampleRows()
	Shuffle(rows, rand.New(rand.NewPCG(1, 2)))
	assert.ElementsMatch(t, []string{"10", "2", "33", "4"}, ids(rows))
}

func TestErrorQuestions(t *testing.T) {
	h := domain.StudyHistory{
		"cvs_1":   {LastStudied: now, IsError: true},
		"cvs_3":   {LastStudied: now, IsError: true},
		"blood_2": {LastStudied: now, IsError: true},
		"cvs_2":   {LastStudied: now, IsCorrect: true},
	}

	got := ErrorQuestions("cvs", questions("1", "2", "3"), h)

	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)
	assert.Equal(t, []string{"blood_2", "cvs_1", "cvs_3"}, ErrorKeys(h))
}

func TestNeighbours(t *testing.T) {
	qs := questions("1", "2", "3")

	prev, next, pos := Neighbours(qs, "2")
	assert.Equal(t, "1", prev)
	assert.Equal(t, "3", next)
	assert.Equal(t, 1, pos)

	prev, next, pos = Neighbours(qs, "1")
	assert.Empty(t, prev)
	assert.Equal(t, "2", next)
	assert.Zero(t, pos)

	prev, next, pos = Neighbours(qs, "3")
	assert.Equal(t, "2", prev)
	assert.Empty(t, next)
	assert.Equal(t, 2, pos)

	_, _, pos = Neighbours(qs, "9")
	assert.Equal(t, -1, pos)
}
