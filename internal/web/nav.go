package web

import (
	"math/rand/v2"
	"net/url"
	"strconv"

	"github.com/conorfennell/stepquiz/internal/domain"
	"github.com/conorfennell/stepquiz/internal/study"
)

// navState is the question order picked on a subject list. It travels on
// the quiz page links and forms so previous/next follow the list.
type navState struct {
	Mode  string
	Sort  string
	Order string
	// Seed replays a shuffled list; 0 means no shuffle.
	Seed uint64
}

func navStateFrom(v url.Values) navState {
	n := navState{
		Mode:  v.Get("mode"),
		Sort:  v.Get("sort"),
		Order: v.Get("order"),
	}
	if n.Mode != errorsMode {
		n.Mode = ""
	}
	if seed, err := strconv.ParseUint(v.Get("seed"), 10, 64); err == nil {
		n.Seed = seed
	}
	return n
}

// Values encodes the non-empty fields.
func (n navState) Values() url.Values {
	v := url.Values{}
	if n.Mode != "" {
		v.Set("mode", n.Mode)
	}
	if n.Seed != 0 {
		v.Set("seed", strconv.FormatUint(n.Seed, 10))
	} else if n.Sort != "" {
		v.Set("sort", n.Sort)
		if n.Order != "" {
			v.Set("order", n.Order)
		}
	}
	return v
}

// Query is Values as a URL query suffix, empty when there is nothing to keep.
func (n navState) Query() string {
	v := n.Values()
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// withMode returns a copy navigating in mode.
func (n navState) withMode(mode string) navState {
	n.Mode = mode
	return n
}

// arrange orders rows the way the subject list shows them.
func (n navState) arrange(rows []study.Row) {
	switch {
	case n.Seed != 0:
		study.Shuffle(rows, rand.New(rand.NewPCG(n.Seed, n.Seed)))
	case n.Sort != "":
		study.Sort(rows, n.Sort, n.Order != "desc")
	}
}

// sequence returns the questions a quiz page steps through: the subject in
// list order, narrowed to error questions in error mode.
func (n navState) sequence(subjectKey string, questions []*domain.Question, rows []study.Row, h domain.StudyHistory) []*domain.Question {
	byID := make(map[string]*domain.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	ordered := make([]*domain.Question, 0, len(rows))
	for _, r := range rows {
		ordered = append(ordered, byID[r.QuestionID])
	}
	if n.Mode == errorsMode {
		return study.ErrorQuestions(subjectKey, ordered, h)
	}
	return ordered
}
