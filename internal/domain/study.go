package domain

import "time"

// StudyRecord is the latest study outcome for one question.
type StudyRecord struct {
	// LastStudied is zero when the question was never answered, which
	// happens when only the mastery flag was toggled.
	LastStudied time.Time `json:"lastStudied,omitzero"`
	IsCorrect   bool      `json:"isCorrect"`
	IsError     bool      `json:"isError"`
	IsMastered  bool      `json:"isMastered"`
}

// Studied reports whether the record carries a study timestamp.
func (r StudyRecord) Studied() bool {
	return !r.LastStudied.IsZero()
}

// StudyHistory maps a composite question key to its study record.
type StudyHistory map[string]StudyRecord

// QuestionKey builds the composite key "subjectKey_questionID" that
// identifies a question across all subjects.
func QuestionKey(subjectKey, questionID string) string {
	return subjectKey + "_" + questionID
}

// UserStats are the running counters kept on a user's account.
// TotalStudied only grows on correct answers; TotalErrors on incorrect ones.
type UserStats struct {
	TotalStudied  int `json:"totalStudied"`
	TotalMastered int `json:"totalMastered"`
	TotalErrors   int `json:"totalErrors"`
}

// User is a study account.
type User struct {
	ID        string
	Email     string
	CreatedAt time.Time
	Stats     UserStats
}

// Language selects which side of a LocalizedText is rendered.
type Language string

const (
	LangZH   Language = "zh"
	LangEN   Language = "en"
	LangBoth Language = "both"
)

// ParseLanguage maps a user supplied value to a Language, defaulting to English.
func ParseLanguage(s string) Language {
	switch Language(s) {
	case LangZH, LangEN, LangBoth:
		return Language(s)
	default:
		return LangEN
	}
}
