package web

import (
	"fmt"
	"html"
	"html/template"
	"net/http"
	"time"

	"github.com/conorfennell/stepquiz/internal/domain"
)

const langCookie = "lang"

// Session is the user and display language a request is served for.
type Session struct {
	User *domain.User
	Lang domain.Language
}

// session resolves the configured study account and the language cookie.
func (s *Server) session(r *http.Request) (*Session, error) {
	user, err := s.db.EnsureUser(r.Context(), s.settings.UserEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	return &Session{User: user, Lang: requestLanguage(r)}, nil
}

func requestLanguage(r *http.Request) domain.Language {
	c, err := r.Cookie(langCookie)
	if err != nil {
		return domain.LangEN
	}
	return domain.ParseLanguage(c.Value)
}

func setLanguage(w http.ResponseWriter, lang domain.Language) {
	http.SetCookie(w, &http.Cookie{
		Name:     langCookie,
		Value:    string(lang),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// bilingual emits both labels; the stylesheet hides the one the page
// language does not show.
func bilingual(zh, en string) template.HTML {
	return template.HTML(`<span class="text-zh">` + html.EscapeString(zh) + `</span>` +
		`<span class="text-en">` + html.EscapeString(en) + `</span>`)
}

var funcs = template.FuncMap{
	"tr": bilingual,
	"subjectName": func(s domain.Subject) template.HTML {
		return bilingual(s.NameZH, s.NameEN)
	},
	"questionURL": func(subjectKey, id, query string) string {
		return questionURL(subjectKey, id) + query
	},
}
