package web

import (
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/conorfennell/stepquiz/internal/content"
	"github.com/conorfennell/stepquiz/internal/domain"
	"github.com/conorfennell/stepquiz/internal/history"
	"github.com/conorfennell/stepquiz/internal/render"
	"github.com/conorfennell/stepquiz/internal/study"
)

const errorsMode = "errors"

// answerResult is shown under a question once an option was submitted.
type answerResult struct {
	Selected      string
	Correct       bool
	CorrectAnswer string
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	}
}

// handleSubjects renders the subject grid and the account counters.
func (s *Server) handleSubjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.session(r)
		if err != nil {
			s.serverError(w, r, "failed to resolve session", err)
			return
		}
		data := s.pageData(r, sess, "Subjects")
		data["Subjects"] = s.loader.Subjects()
		data["Stats"] = sess.User.Stats
		s.render(w, r, http.StatusOK, "subjects", data)
	}
}

// loadSubject resolves the {key} path value and its questions. It writes
// the error response itself and returns ok=false when the caller must stop.
func (s *Server) loadSubject(w http.ResponseWriter, r *http.Request, sess *Session) (domain.Subject, []*domain.Question, bool) {
	key := r.PathValue("key")
	subject, err := s.loader.Subject(key)
	if err != nil {
		s.notFound(w, r, sess)
		return subject, nil, false
	}
	questions, err := s.loader.LoadSubject(r.Context(), key)
	if err != nil {
		if content.IsNotFound(err) {
			s.notFound(w, r, sess)
		} else {
			s.serverError(w, r, "failed to load subject", err)
		}
		return subject, nil, false
	}
	return subject, questions, true
}

// handleSubject renders the question list of one subject.
func (s *Server) handleSubject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.session(r)
		if err != nil {
			s.serverError(w, r, "failed to resolve session", err)
			return
		}
		subject, questions, ok := s.loadSubject(w, r, sess)
		if !ok {
			return
		}
		h, err := s.db.StudyHistory(r.Context(), sess.User.ID)
		if err != nil {
			s.serverError(w, r, "failed to load study history", err)
			return
		}

		rows := study.Rows(subject.Key, questions, h, s.now())
		query := r.URL.Query()
		nav := navStateFrom(query)
		nav.Mode = ""
		if query.Get("shuffle") == "1" {
			s.rngMu.Lock()
			nav.Seed = s.rng.Uint64() | 1
			s.rngMu.Unlock()
		}
		nav.arrange(rows)

		data := s.pageData(r, sess, subject.NameEN)
		data["Subject"] = subject
		data["Rows"] = rows
		data["RowQuery"] = nav.Query()
		data["ErrorCount"] = study.ErrorCount(rows)
		errNav := nav.withMode(errorsMode)
		if errs := errNav.sequence(subject.Key, questions, rows, h); len(errs) > 0 {
			data["FirstError"] = questionURL(subject.Key, errs[0].ID) + errNav.Query()
		}
		data["Sort"] = nav.Sort
		data["Order"] = nav.Order
		s.render(w, r, http.StatusOK, "subject", data)
	}
}

func findQuestion(questions []*domain.Question, id string) *domain.Question {
	for _, q := range questions {
		if q.ID == id {
			return q
		}
	}
	return nil
}

// questionPage builds the quiz page for id. Previous and next follow the
// list order of nav, narrowed to the error questions of h in error mode.
// It returns nil if id is not part of the navigated list.
func (s *Server) questionPage(r *http.Request, sess *Session, subject domain.Subject, questions []*domain.Question, h domain.StudyHistory, id string, nav navState) map[string]any {
	rows := study.Rows(subject.Key, questions, h, s.now())
	nav.arrange(rows)
	list := nav.sequence(subject.Key, questions, rows, h)
	q := findQuestion(list, id)
	if q == nil {
		return nil
	}
	prev, next, pos := study.Neighbours(list, id)

	data := s.pageData(r, sess, subject.NameEN+" #"+id)
	data["Subject"] = subject
	data["Question"] = render.Question(q, sess.Lang, s.loader.ExhibitResolver(subject))
	data["Status"] = study.StatusOf(h[domain.QuestionKey(subject.Key, id)])
	if prev != "" {
		data["PrevURL"] = questionURL(subject.Key, prev) + nav.Query()
	}
	if next != "" {
		data["NextURL"] = questionURL(subject.Key, next) + nav.Query()
	}
	data["Position"] = pos + 1
	data["Count"] = len(list)
	data["Mode"] = nav.Mode
	data["Nav"] = nav.Values()
	return data
}

// handleQuestion renders one question without its answer.
func (s *Server) handleQuestion() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.session(r)
		if err != nil {
			s.serverError(w, r, "failed to resolve session", err)
			return
		}
		subject, questions, ok := s.loadSubject(w, r, sess)
		if !ok {
			return
		}
		h, err := s.db.StudyHistory(r.Context(), sess.User.ID)
		if err != nil {
			s.serverError(w, r, "failed to load study history", err)
			return
		}

		data := s.questionPage(r, sess, subject, questions, h, r.PathValue("qid"), navStateFrom(r.URL.Query()))
		if data == nil {
			s.notFound(w, r, sess)
			return
		}
		s.render(w, r, http.StatusOK, "question", data)
	}
}

// handleAnswer records the submitted option and renders the question with
// its answer and explanation.
func (s *Server) handleAnswer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.session(r)
		if err != nil {
			s.serverError(w, r, "failed to resolve session", err)
			return
		}
		subject, questions, ok := s.loadSubject(w, r, sess)
		if !ok {
			return
		}
		id := r.PathValue("qid")
		q := findQuestion(questions, id)
		if q == nil {
			s.notFound(w, r, sess)
			return
		}
		option := strings.ToUpper(strings.TrimSpace(r.PostFormValue("option")))
		if !slices.Contains(domain.OptionLetters, option) {
			http.Error(w, "Invalid option", http.StatusBadRequest)
			return
		}

		// Navigation is built from the history before this answer so a
		// corrected error question keeps its place in error review.
		h, err := s.db.StudyHistory(r.Context(), sess.User.ID)
		if err != nil {
			s.serverError(w, r, "failed to load study history", err)
			return
		}
		key := domain.QuestionKey(subject.Key, id)
		correct := q.IsCorrect(option)
		if err := s.db.RecordAnswer(r.Context(), sess.User.ID, key, correct, s.now()); err != nil {
			s.serverError(w, r, "failed to record answer", err)
			return
		}
		s.logger.DebugContext(r.Context(), "answer recorded", "question", key, "correct", correct)

		nav := navStateFrom(r.PostForm)
		data := s.questionPage(r, sess, subject, questions, h, id, nav)
		if data == nil {
			data = s.questionPage(r, sess, subject, questions, h, id, nav.withMode(""))
		}
		data["Status"] = study.StatusOf(domain.StudyRecord{LastStudied: s.now(), IsCorrect: correct, IsError: !correct})
		data["Result"] = answerResult{Selected: option, Correct: correct, CorrectAnswer: q.CorrectAnswer}
		data["Path"] = questionURL(subject.Key, id) + nav.Query()
		s.render(w, r, http.StatusOK, "question", data)
	}
}

// handleMastery sets or clears the mastered flag and returns to the question.
func (s *Server) handleMastery() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.session(r)
		if err != nil {
			s.serverError(w, r, "failed to resolve session", err)
			return
		}
		subject, questions, ok := s.loadSubject(w, r, sess)
		if !ok {
			return
		}
		id := r.PathValue("qid")
		if findQuestion(questions, id) == nil {
			s.notFound(w, r, sess)
			return
		}
		mastered, err := strconv.ParseBool(r.PostFormValue("mastered"))
		if err != nil {
			http.Error(w, "Invalid mastered value", http.StatusBadRequest)
			return
		}

		key := domain.QuestionKey(subject.Key, id)
		if err := s.db.SetMastered(r.Context(), sess.User.ID, key, mastered); err != nil {
			s.serverError(w, r, "failed to update mastery", err)
			return
		}

		target := questionURL(subject.Key, id) + navStateFrom(r.PostForm).Query()
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

func questionURL(subjectKey, id string) string {
	return "/subjects/" + url.PathEscape(subjectKey) + "/questions/" + url.PathEscape(id)
}

// handleStats renders the activity counts, heatmap, streak and mastery.
func (s *Server) handleStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.session(r)
		if err != nil {
			s.serverError(w, r, "failed to resolve session", err)
			return
		}
		h, err := s.db.StudyHistory(r.Context(), sess.User.ID)
		if err != nil {
			s.serverError(w, r, "failed to load study history", err)
			return
		}

		now := s.now()
		counts := history.ComputeCounts(h, now)
		data := s.pageData(r, sess, "Statistics")
		data["Counts"] = counts
		data["Heatmap"] = history.BuildHeatmap(counts.DailyActivity, s.settings.HeatmapWeeks, now)
		data["Streak"] = history.Streak(counts.DailyActivity, now)
		data["Mastery"] = history.Mastery(h)
		data["ErrorKeys"] = study.ErrorKeys(h)
		data["Stats"] = sess.User.Stats
		s.render(w, r, http.StatusOK, "stats", data)
	}
}

// handleLang stores the display language and returns to the page it was
// changed on.
func (s *Server) handleLang() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setLanguage(w, domain.ParseLanguage(r.PostFormValue("lang")))

		next := r.PostFormValue("next")
		if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
			next = "/"
		}
		http.Redirect(w, r, next, http.StatusSeeOther)
	}
}

// handleSync triggers a manual sync and renders its report.
func (s *Server) handleSync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.session(r)
		if err != nil {
			s.serverError(w, r, "failed to resolve session", err)
			return
		}

		// Run in the foreground to make the user wait
		report, err := s.runSync(r.Context())
		data := s.pageData(r, sess, "Sync")
		data["Path"] = "/"
		data["Report"] = report
		status := http.StatusOK
		if err != nil {
			s.logger.ErrorContext(r.Context(), "sync failed", "error", err)
			data["Error"] = err.Error()
			status = http.StatusBadGateway
		}
		s.render(w, r, status, "sync_result", data)
	}
}
