package render

import (
	"html/template"

	"github.com/conorfennell/stepquiz/internal/domain"
)

// Option is one answer choice ready for display.
type Option struct {
	Letter string
	Text   template.HTML
}

// QuestionView is a question resolved for one language.
type QuestionView struct {
	ID            string
	Stem          template.HTML
	Prompt        template.HTML
	Options       []Option
	CorrectAnswer string
	CorrectText   template.HTML
	Explanation   template.HTML
	Tags          []string
}

// Options lists the choices present on q in A–E order.
func Options(q *domain.Question, lang domain.Language) []Option {
	var opts []Option
	for _, letter := range domain.OptionLetters {
		text, ok := q.Options[letter]
		if !ok || text.IsEmpty() {
			continue
		}
		opts = append(opts, Option{Letter: letter, Text: template.HTML(ResolveText(text, lang))})
	}
	return opts
}

// Question renders every part of q. Exhibits are substituted in the stem and
// the explanation, and the explanation is split into paragraphs.
func Question(q *domain.Question, lang domain.Language, resolve ExhibitURLFunc) QuestionView {
	stem := SubstituteExhibits(ResolveText(q.Stem, lang), q, resolve)
	explanation := SubstituteExhibits(ResolveText(q.Explanation, lang), q, resolve)

	return QuestionView{
		ID:            q.ID,
		Stem:          template.HTML(stem),
		Prompt:        template.HTML(ResolveText(q.Prompt, lang)),
		Options:       Options(q, lang),
		CorrectAnswer: q.CorrectAnswer,
		CorrectText:   template.HTML(ResolveText(q.Options[q.CorrectAnswer], lang)),
		Explanation:   Paragraphs(FormatExplanation(explanation)),
		Tags:          FormatTags(q.Tags, 0),
	}
}
